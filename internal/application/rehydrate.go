package application

import (
	"context"
	"log/slog"
	"sync"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
	"github.com/lifesim-quest/lifesim-cli/internal/ports"
)

// Rehydrator restores the authenticated session at process start by
// exchanging the durable refresh credential for a fresh access token. It
// runs at most once per process; a failure of any kind silently falls back
// to a guest session and is never retried within the process.
type Rehydrator struct {
	api    ports.AuthAPI
	logger *slog.Logger

	once sync.Once
	done chan struct{}

	mu      sync.RWMutex
	session domain.AuthSession
}

var _ AuthGate = (*Rehydrator)(nil)

func NewRehydrator(api ports.AuthAPI, logger *slog.Logger) *Rehydrator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Rehydrator{
		api:    api,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Run performs the single refresh exchange. Safe to call from multiple
// goroutines; only the first call does work.
func (r *Rehydrator) Run(ctx context.Context) {
	r.once.Do(func() {
		defer close(r.done)

		session, err := r.api.Refresh(ctx)
		if err != nil {
			r.logger.Debug("auth rehydration failed, continuing as guest", "error", err)
			return
		}

		r.mu.Lock()
		r.session = session
		r.mu.Unlock()
	})
}

// Wait blocks until rehydration has resolved, success or failure.
// Authenticated queries gate on this so none fires with a half-restored
// identity.
func (r *Rehydrator) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Rehydrator) Session() domain.AuthSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session
}

// SetSession replaces the in-memory identity after an explicit login or
// registration.
func (r *Rehydrator) SetSession(session domain.AuthSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = session
}

// Clear drops the in-memory identity on logout.
func (r *Rehydrator) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.session = domain.AuthSession{}
}

// AccessToken is a token source for the HTTP clients; empty for guests.
func (r *Rehydrator) AccessToken() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session.AccessToken
}
