package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
	"github.com/lifesim-quest/lifesim-cli/internal/ports"
)

// RefreshTokenKey is where the durable refresh credential lives in the
// secret store. The access token itself is never persisted.
const RefreshTokenKey = "auth/refresh_token"

// AuthClient talks to the authentication endpoints. Login, Register and
// Refresh store the rotated refresh credential before returning; Logout
// revokes it server side and deletes the local copy regardless.
type AuthClient struct {
	Client  *Client
	Secrets ports.SecretStore
}

var _ ports.AuthAPI = (*AuthClient)(nil)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registrationRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (a *AuthClient) Login(ctx context.Context, creds domain.Credentials) (domain.AuthSession, error) {
	body := credentialsRequest{Username: creds.Username, Password: creds.Password}
	return a.exchange(ctx, "/api/auth/login", body)
}

func (a *AuthClient) Register(ctx context.Context, reg domain.Registration) (domain.AuthSession, error) {
	body := registrationRequest{
		Username:    reg.Username,
		Password:    reg.Password,
		DisplayName: reg.DisplayName,
	}
	return a.exchange(ctx, "/api/auth/register", body)
}

func (a *AuthClient) Refresh(ctx context.Context) (domain.AuthSession, error) {
	stored, err := a.Secrets.Get(ctx, RefreshTokenKey)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return domain.AuthSession{}, domain.ErrNoRefreshCredential
		}
		return domain.AuthSession{}, fmt.Errorf("load refresh credential: %w", err)
	}

	session, err := a.exchange(ctx, "/api/auth/refresh", refreshRequest{RefreshToken: stored})
	if err != nil {
		// A rejected credential is dead; drop it so the next boot goes
		// straight to guest mode instead of retrying a revoked token.
		if domain.KindOf(err) == domain.KindAuth {
			_ = a.Secrets.Delete(ctx, RefreshTokenKey)
		}
		return domain.AuthSession{}, err
	}
	return session, nil
}

func (a *AuthClient) Logout(ctx context.Context) error {
	defer func() { _ = a.Secrets.Delete(ctx, RefreshTokenKey) }()

	stored, err := a.Secrets.Get(ctx, RefreshTokenKey)
	if err != nil {
		return nil
	}

	if err := a.Client.doJSON(ctx, http.MethodPost, "/api/auth/logout", refreshRequest{RefreshToken: stored}, nil); err != nil {
		return fmt.Errorf("revoke refresh credential: %w", err)
	}
	return nil
}

func (a *AuthClient) exchange(ctx context.Context, path string, body any) (domain.AuthSession, error) {
	var pair tokenPairResponse
	if err := a.Client.doJSON(ctx, http.MethodPost, path, body, &pair); err != nil {
		return domain.AuthSession{}, err
	}
	if pair.AccessToken == "" {
		return domain.AuthSession{}, &domain.RemoteError{Kind: domain.KindTransport, Detail: "token response missing access token"}
	}

	session, err := sessionFromAccessToken(pair.AccessToken)
	if err != nil {
		return domain.AuthSession{}, err
	}

	if pair.RefreshToken != "" {
		if err := a.Secrets.Put(ctx, RefreshTokenKey, pair.RefreshToken); err != nil {
			return domain.AuthSession{}, fmt.Errorf("store refresh credential: %w", err)
		}
	}
	return session, nil
}

type accessTokenClaims struct {
	AccountID          string `json:"account_id"`
	Username           string `json:"username"`
	DisplayName        string `json:"display_name"`
	OnboardingComplete bool   `json:"onboarding_complete"`
	jwt.RegisteredClaims
}

// sessionFromAccessToken reads the identity claims without verifying the
// signature. The server is the sole issuer and verifier; the client only
// needs the claims for display and expiry scheduling.
func sessionFromAccessToken(token string) (domain.AuthSession, error) {
	var claims accessTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return domain.AuthSession{}, fmt.Errorf("parse access token: %w", err)
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	return domain.AuthSession{
		AccessToken:        token,
		AccountID:          claims.AccountID,
		Username:           claims.Username,
		DisplayName:        claims.DisplayName,
		OnboardingComplete: claims.OnboardingComplete,
		ExpiresAt:          expiresAt,
	}, nil
}
