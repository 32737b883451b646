package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
)

func newTestResolver(api *fakeGameAPI) *NextQuestionResolver {
	cache := NewCache(newFixedClock(time.Now()), nil)
	return NewNextQuestionResolver(cache, api, nil)
}

func TestResolverUsesEmbeddedTurn(t *testing.T) {
	t.Parallel()

	api := &fakeGameAPI{}
	resolver := newTestResolver(api)

	embedded := domain.NarrativeTurn{
		Narrative: "Rent is due.",
		Options:   []domain.DecisionOption{{Label: "Pay it"}, {Label: "Negotiate"}},
	}
	turn, err := resolver.Resolve(context.Background(), "s1", domain.DecisionOutcome{Next: &embedded})
	require.NoError(t, err)

	assert.Equal(t, embedded, turn)
	assert.Equal(t, ResolverReady, resolver.State())
	assert.Equal(t, 0, api.NextCalls(), "no fetch when the response embeds the turn")
}

func TestResolverFetchesWhenTurnAbsent(t *testing.T) {
	t.Parallel()

	fetched := domain.NarrativeTurn{
		Narrative: "Your landlord calls.",
		Options:   []domain.DecisionOption{{Label: "Answer"}},
	}
	api := &fakeGameAPI{
		nextFn: func(ctx context.Context, session domain.SessionID) (domain.NextQuestion, error) {
			return domain.NextQuestion{Turn: fetched, WasPrecomputed: false}, nil
		},
	}
	resolver := newTestResolver(api)

	turn, err := resolver.Resolve(context.Background(), "s1", domain.DecisionOutcome{})
	require.NoError(t, err)

	assert.Equal(t, fetched, turn)
	assert.True(t, turn.Complete())
	assert.Equal(t, ResolverReady, resolver.State())
	assert.Equal(t, 1, api.NextCalls())

	current, ok := resolver.Turn()
	require.True(t, ok)
	assert.Equal(t, fetched, current)
}

func TestResolverFetchAlwaysHitsNetwork(t *testing.T) {
	t.Parallel()

	api := &fakeGameAPI{
		nextFn: func(ctx context.Context, session domain.SessionID) (domain.NextQuestion, error) {
			return domain.NextQuestion{Turn: domain.NarrativeTurn{
				Narrative: "n",
				Options:   []domain.DecisionOption{{Label: "a"}},
			}}, nil
		},
	}
	resolver := newTestResolver(api)

	_, err := resolver.Resolve(context.Background(), "s1", domain.DecisionOutcome{})
	require.NoError(t, err)
	_, err = resolver.Resolve(context.Background(), "s1", domain.DecisionOutcome{})
	require.NoError(t, err)

	assert.Equal(t, 2, api.NextCalls(), "next-question reads are never served from cache")
}

func TestResolverStaysFetchingOnFailure(t *testing.T) {
	t.Parallel()

	api := &fakeGameAPI{
		nextFn: func(ctx context.Context, session domain.SessionID) (domain.NextQuestion, error) {
			return domain.NextQuestion{}, &domain.RemoteError{Kind: domain.KindValidation, Detail: "session closed", Status: 422}
		},
	}
	resolver := newTestResolver(api)

	_, err := resolver.Resolve(context.Background(), "s1", domain.DecisionOutcome{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNextQuestionPending))
	assert.Equal(t, ResolverFetching, resolver.State(), "the game must not advance to an undefined turn")

	_, ok := resolver.Turn()
	assert.False(t, ok)
}

func TestResolverRejectsIncompleteEmbeddedTurn(t *testing.T) {
	t.Parallel()

	fetched := domain.NarrativeTurn{
		Narrative: "Fetched instead.",
		Options:   []domain.DecisionOption{{Label: "Go on"}},
	}
	api := &fakeGameAPI{
		nextFn: func(ctx context.Context, session domain.SessionID) (domain.NextQuestion, error) {
			return domain.NextQuestion{Turn: fetched, WasPrecomputed: true}, nil
		},
	}
	resolver := newTestResolver(api)

	// An embedded turn without options is not enough to show; fall back.
	turn, err := resolver.Resolve(context.Background(), "s1", domain.DecisionOutcome{
		Next: &domain.NarrativeTurn{Narrative: "No options here."},
	})
	require.NoError(t, err)
	assert.Equal(t, fetched, turn)
	assert.Equal(t, 1, api.NextCalls())
}

func TestResolverRejectsEmptyFetchedTurn(t *testing.T) {
	t.Parallel()

	api := &fakeGameAPI{
		nextFn: func(ctx context.Context, session domain.SessionID) (domain.NextQuestion, error) {
			return domain.NextQuestion{}, nil
		},
	}
	resolver := newTestResolver(api)

	_, err := resolver.Resolve(context.Background(), "s1", domain.DecisionOutcome{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNextQuestionPending))
	assert.Equal(t, ResolverFetching, resolver.State())
}
