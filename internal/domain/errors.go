package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoSession           = errors.New("no active game session")
	ErrNoRefreshCredential = errors.New("no refresh credential stored")
	ErrNextQuestionPending = errors.New("next question not available yet")
	ErrSecretNotFound      = errors.New("secret not found")
)

type ErrorKind string

const (
	KindTransport  ErrorKind = "transport"
	KindValidation ErrorKind = "validation"
	KindAuth       ErrorKind = "auth"
	KindNotFound   ErrorKind = "not_found"
)

// RemoteError is the typed result every remote-call failure is converted to
// at the cache/executor boundary. Transport failures are retryable within a
// resource's budget; the other kinds are permanent.
type RemoteError struct {
	Kind   ErrorKind
	Detail string
	Status int
}

func (e *RemoteError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Kind, e.Detail, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// KindOf classifies err. Errors that are not RemoteError values count as
// transport failures, so unknown failures stay retryable.
func KindOf(err error) ErrorKind {
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.Kind
	}
	return KindTransport
}

// Retryable reports whether err may be retried within a retry budget.
// Validation rejections, auth failures and missing resources never are.
func Retryable(err error) bool {
	return KindOf(err) == KindTransport
}
