package application

import (
	"context"
	"fmt"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
	"github.com/lifesim-quest/lifesim-cli/internal/ports"
)

// AuthGate blocks authenticated queries until auth rehydration has resolved,
// success or failure.
type AuthGate interface {
	Wait(ctx context.Context) error
}

// Queries are the remote reads, routed through the cache's staleness and
// retry policies.
type Queries struct {
	cache *Cache
	api   ports.GameAPI
	gate  AuthGate
}

func NewQueries(cache *Cache, api ports.GameAPI, gate AuthGate) *Queries {
	return &Queries{cache: cache, api: api, gate: gate}
}

func (q *Queries) waitForAuth(ctx context.Context) error {
	if q.gate == nil {
		return nil
	}
	return q.gate.Wait(ctx)
}

func (q *Queries) PlayerState(ctx context.Context, session domain.SessionID) (domain.PlayerState, error) {
	if session == "" {
		return domain.PlayerState{}, domain.ErrNoSession
	}
	if err := q.waitForAuth(ctx); err != nil {
		return domain.PlayerState{}, err
	}

	value, err := q.cache.Read(ctx, PlayerStateKey(session), func(ctx context.Context) (any, error) {
		return q.api.GetState(ctx, session)
	})
	if err != nil {
		return domain.PlayerState{}, fmt.Errorf("player state: %w", err)
	}

	return value.(domain.PlayerState), nil
}

func (q *Queries) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	value, err := q.cache.Read(ctx, LeaderboardKey(limit), func(ctx context.Context) (any, error) {
		return q.api.Leaderboard(ctx, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}

	return value.([]domain.LeaderboardEntry), nil
}

func (q *Queries) Health(ctx context.Context) (domain.Health, error) {
	value, err := q.cache.Read(ctx, HealthKey(), func(ctx context.Context) (any, error) {
		return q.api.Health(ctx)
	})
	if err != nil {
		return domain.Health{}, fmt.Errorf("health: %w", err)
	}

	return value.(domain.Health), nil
}

// WatchLeaderboard re-reads the leaderboard on its refresh interval until
// ctx is done.
func (q *Queries) WatchLeaderboard(ctx context.Context, limit int, onUpdate func([]domain.LeaderboardEntry, error)) {
	q.cache.Watch(ctx, LeaderboardKey(limit), func(ctx context.Context) (any, error) {
		return q.api.Leaderboard(ctx, limit)
	}, func(value any, err error) {
		if err != nil {
			onUpdate(nil, err)
			return
		}
		onUpdate(value.([]domain.LeaderboardEntry), nil)
	})
}
