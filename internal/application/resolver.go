package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
	"github.com/lifesim-quest/lifesim-cli/internal/ports"
)

type ResolverState string

const (
	ResolverIdle     ResolverState = "idle"
	ResolverFetching ResolverState = "fetching"
	ResolverReady    ResolverState = "ready"
)

// NextQuestionResolver guarantees the player always has a narrative and
// options to show after a decision. The server may batch-generate the next
// turn asynchronously, so the decision response may or may not embed it;
// when it does not, the resolver issues a dedicated fetch that is never
// served from cache.
type NextQuestionResolver struct {
	cache  *Cache
	api    ports.GameAPI
	logger *slog.Logger

	mu    sync.Mutex
	state ResolverState
	turn  domain.NarrativeTurn
}

func NewNextQuestionResolver(cache *Cache, api ports.GameAPI, logger *slog.Logger) *NextQuestionResolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &NextQuestionResolver{
		cache:  cache,
		api:    api,
		logger: logger,
		state:  ResolverIdle,
	}
}

func (r *NextQuestionResolver) State() ResolverState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Turn returns the last resolved turn; valid only in the ready state.
func (r *NextQuestionResolver) Turn() (domain.NarrativeTurn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.turn, r.state == ResolverReady
}

// Resolve obtains the next turn after a successful decision: from the
// embedded response when present, otherwise by fetching. A failed fetch
// leaves the resolver fetching and returns an error; the game never
// advances to an undefined turn.
func (r *NextQuestionResolver) Resolve(ctx context.Context, session domain.SessionID, outcome domain.DecisionOutcome) (domain.NarrativeTurn, error) {
	if outcome.Next != nil && outcome.Next.Complete() {
		r.setReady(*outcome.Next)
		return *outcome.Next, nil
	}

	r.setState(ResolverFetching)

	value, err := r.cache.Read(ctx, NextQuestionKey(session), func(ctx context.Context) (any, error) {
		return r.api.NextQuestion(ctx, session)
	})
	if err != nil {
		return domain.NarrativeTurn{}, fmt.Errorf("%w: %w", domain.ErrNextQuestionPending, err)
	}

	next := value.(domain.NextQuestion)
	if !next.Turn.Complete() {
		return domain.NarrativeTurn{}, fmt.Errorf("%w: server returned an empty turn", domain.ErrNextQuestionPending)
	}

	r.logger.Debug("next question resolved", "session", session, "precomputed", next.WasPrecomputed)
	r.setReady(next.Turn)
	return next.Turn, nil
}

func (r *NextQuestionResolver) setState(state ResolverState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = state
}

func (r *NextQuestionResolver) setReady(turn domain.NarrativeTurn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = ResolverReady
	r.turn = turn
}
