package domain

import "time"

// AuthSession is the in-memory authenticated identity. It is reconstructed
// at boot from the durable refresh credential and never persisted itself.
type AuthSession struct {
	AccessToken        string
	AccountID          string
	Username           string
	DisplayName        string
	OnboardingComplete bool
	ExpiresAt          time.Time
}

func (s AuthSession) Authenticated() bool {
	return s.AccessToken != ""
}

type Credentials struct {
	Username string
	Password string
}

type Registration struct {
	Username    string
	Password    string
	DisplayName string
}
