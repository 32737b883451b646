package ports

import (
	"context"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
)

// AuthAPI is the authentication service. Refresh exchanges the stored
// refresh credential for a fresh session and returns
// domain.ErrNoRefreshCredential when nothing is stored.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.AuthSession, error)
	Register(ctx context.Context, reg domain.Registration) (domain.AuthSession, error)
	Refresh(ctx context.Context) (domain.AuthSession, error)
	Logout(ctx context.Context) error
}
