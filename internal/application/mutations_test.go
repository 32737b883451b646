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

func newTestExecutor(api *fakeGameAPI) (*Executor, *Cache, *fakeLocalStore) {
	cache := NewCache(newFixedClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)), nil)
	local := &fakeLocalStore{}
	return NewExecutor(cache, api, local), cache, local
}

func TestOnboardSeedsSessionAndCache(t *testing.T) {
	t.Parallel()

	initialState := domain.PlayerState{Session: "s1", Money: 500, Status: domain.GameStatusActive}
	api := &fakeGameAPI{
		createFn: func(ctx context.Context, profile domain.Profile) (domain.GameStart, error) {
			return domain.GameStart{
				State: initialState,
				Initial: domain.NarrativeTurn{
					Narrative: "You graduate.",
					Options:   []domain.DecisionOption{{Label: "Get a job"}},
				},
			}, nil
		},
	}
	executor, cache, local := newTestExecutor(api)

	start, err := executor.Onboard(context.Background(), domain.Profile{PlayerName: "Vilma", Age: 22})
	require.NoError(t, err)

	assert.Equal(t, domain.SessionID("s1"), local.Session())
	value, ok := cache.Peek(PlayerStateKey("s1"))
	require.True(t, ok)
	assert.Equal(t, initialState, value)
	require.NotNil(t, local.CurrentTurn())
	assert.Equal(t, "You graduate.", local.CurrentTurn().Narrative)
	assert.Equal(t, start.Initial, *local.CurrentTurn())
}

func TestStepCommitsServerStateOverProjection(t *testing.T) {
	t.Parallel()

	before := domain.PlayerState{Session: "s1", Money: 1000}
	// Server totals differ from the client's projection on purpose.
	after := domain.PlayerState{Session: "s1", Money: 940, FIScore: 3.5}
	api := &fakeGameAPI{
		decisionFn: func(ctx context.Context, session domain.SessionID, choice domain.DecisionChoice) (domain.DecisionOutcome, error) {
			return domain.DecisionOutcome{
				UpdatedState:         after,
				ConsequenceNarrative: "You picked up the night shift.",
				TransactionSummary:   []domain.Transaction{{Description: "Night shift pay", Amount: 120}},
			}, nil
		},
	}
	executor, cache, local := newTestExecutor(api)
	cache.Commit(PlayerStateKey("s1"), before)

	outcome, err := executor.Step(context.Background(), "s1", domain.DecisionChoice{
		Label:   "Take the shift",
		Index:   0,
		Effects: domain.OptionEffects{Money: -50},
	})
	require.NoError(t, err)
	assert.Equal(t, after, outcome.UpdatedState)

	value, ok := cache.Peek(PlayerStateKey("s1"))
	require.True(t, ok)
	assert.Equal(t, after, value, "the server snapshot wins over the optimistic guess")
	assert.Len(t, local.Transactions(), 1)
}

func TestStepAppliesOptimisticProjectionBeforeDispatch(t *testing.T) {
	t.Parallel()

	before := domain.PlayerState{
		Session: "s1",
		Money:   1000,
		Metrics: domain.LifeMetrics{Energy: 70},
	}

	var observed domain.PlayerState
	var cacheRef *Cache
	api := &fakeGameAPI{}
	api.decisionFn = func(ctx context.Context, session domain.SessionID, choice domain.DecisionChoice) (domain.DecisionOutcome, error) {
		if value, ok := cacheRef.Peek(PlayerStateKey(session)); ok {
			observed = value.(domain.PlayerState)
		}
		return domain.DecisionOutcome{UpdatedState: before}, nil
	}
	executor, cache, _ := newTestExecutor(api)
	cacheRef = cache
	cache.Commit(PlayerStateKey("s1"), before)

	_, err := executor.Step(context.Background(), "s1", domain.DecisionChoice{
		Label:   "Party all week",
		Effects: domain.OptionEffects{Money: -200, Energy: -20, SocialLife: 15},
	})
	require.NoError(t, err)

	assert.Equal(t, 800.0, observed.Money, "projection visible while the call is in flight")
	assert.Equal(t, 50, observed.Metrics.Energy)
	assert.Equal(t, 15, observed.Metrics.SocialLife)
}

func TestStepRollsBackToSnapshotOnFailure(t *testing.T) {
	t.Parallel()

	before := domain.PlayerState{Session: "s1", Money: 1000, Metrics: domain.LifeMetrics{Energy: 70}}
	api := &fakeGameAPI{
		decisionFn: func(ctx context.Context, session domain.SessionID, choice domain.DecisionChoice) (domain.DecisionOutcome, error) {
			return domain.DecisionOutcome{}, &domain.RemoteError{Kind: domain.KindValidation, Detail: "option no longer valid", Status: 422}
		},
	}
	executor, cache, _ := newTestExecutor(api)
	cache.Commit(PlayerStateKey("s1"), before)

	_, err := executor.Step(context.Background(), "s1", domain.DecisionChoice{
		Label:   "Buy a boat",
		Effects: domain.OptionEffects{Money: -900},
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))

	value, ok := cache.Peek(PlayerStateKey("s1"))
	require.True(t, ok)
	assert.Equal(t, before, value, "rollback restores the pre-dispatch snapshot exactly")
}

func TestUpdateExpensesRollbackRestoresRemovedSubscription(t *testing.T) {
	t.Parallel()

	before := domain.PlayerState{
		Session:         "s1",
		MonthlyExpenses: 855,
		ActiveSubscriptions: []domain.Subscription{
			{ID: "netflix", Name: "Netflix", Amount: 15},
			{ID: "gym", Name: "Gym membership", Amount: 40},
		},
	}

	var projectionSeen bool
	var cacheRef *Cache
	api := &fakeGameAPI{}
	api.expensesFn = func(ctx context.Context, session domain.SessionID, update domain.ExpenseUpdate) (domain.PlayerState, error) {
		if value, ok := cacheRef.Peek(PlayerStateKey(session)); ok {
			_, hasNetflix := value.(domain.PlayerState).Subscription("netflix")
			projectionSeen = !hasNetflix
		}
		return domain.PlayerState{}, &domain.RemoteError{Kind: domain.KindValidation, Detail: "cannot cancel", Status: 422}
	}
	executor, cache, _ := newTestExecutor(api)
	cacheRef = cache
	cache.Commit(PlayerStateKey("s1"), before)

	_, err := executor.UpdateExpenses(context.Background(), "s1", domain.ExpenseUpdate{
		RemovedIDs:  []string{"netflix"},
		Adjustments: domain.OptionEffects{MonthlyExpenses: -15},
	})
	require.Error(t, err)
	assert.True(t, projectionSeen, "netflix must be gone from the cache while the call is in flight")

	value, ok := cache.Peek(PlayerStateKey("s1"))
	require.True(t, ok)
	restored := value.(domain.PlayerState)
	_, hasNetflix := restored.Subscription("netflix")
	assert.True(t, hasNetflix, "rollback restores the cancelled subscription")
	assert.Equal(t, before, restored)
}

func TestUpdateExpensesCommitsServerState(t *testing.T) {
	t.Parallel()

	before := domain.PlayerState{
		Session:             "s1",
		MonthlyExpenses:     855,
		ActiveSubscriptions: []domain.Subscription{{ID: "netflix", Name: "Netflix", Amount: 15}},
	}
	after := domain.PlayerState{Session: "s1", MonthlyExpenses: 840}
	api := &fakeGameAPI{
		expensesFn: func(ctx context.Context, session domain.SessionID, update domain.ExpenseUpdate) (domain.PlayerState, error) {
			return after, nil
		},
	}
	executor, cache, _ := newTestExecutor(api)
	cache.Commit(PlayerStateKey("s1"), before)

	state, err := executor.UpdateExpenses(context.Background(), "s1", domain.ExpenseUpdate{RemovedIDs: []string{"netflix"}})
	require.NoError(t, err)
	assert.Equal(t, after, state)

	value, _ := cache.Peek(PlayerStateKey("s1"))
	assert.Equal(t, after, value)
}

func TestFinishInvalidatesLeaderboardAndState(t *testing.T) {
	t.Parallel()

	api := &fakeGameAPI{
		finishFn: func(ctx context.Context, session domain.SessionID, nickname string) (domain.LeaderboardEntry, error) {
			return domain.LeaderboardEntry{Rank: 3, PlayerName: nickname}, nil
		},
		boardFn: func(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
			return []domain.LeaderboardEntry{}, nil
		},
		stateFn: func(ctx context.Context, session domain.SessionID) (domain.PlayerState, error) {
			return domain.PlayerState{Session: session, Status: domain.GameStatusCompleted}, nil
		},
	}
	executor, cache, local := newTestExecutor(api)
	queries := NewQueries(cache, api, nil)
	local.SetCurrentTurn(&domain.NarrativeTurn{Narrative: "n"})
	cache.Commit(PlayerStateKey("s1"), domain.PlayerState{Session: "s1", Status: domain.GameStatusActive})

	_, err := queries.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Equal(t, 1, api.LeaderboardCalls())

	entry, err := executor.Finish(context.Background(), "s1", "Vilma")
	require.NoError(t, err)
	assert.Equal(t, 3, entry.Rank)
	assert.Nil(t, local.CurrentTurn())

	_, err = queries.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, api.LeaderboardCalls(), "finish invalidates the leaderboard")

	_, err = queries.PlayerState(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, api.StateCalls(), "finish invalidates the player state")
}

func TestFinishRollsBackSnapshotOnFailure(t *testing.T) {
	t.Parallel()

	before := domain.PlayerState{Session: "s1", Status: domain.GameStatusActive}
	api := &fakeGameAPI{
		finishFn: func(ctx context.Context, session domain.SessionID, nickname string) (domain.LeaderboardEntry, error) {
			return domain.LeaderboardEntry{}, &domain.RemoteError{Kind: domain.KindTransport, Detail: "unreachable"}
		},
	}
	executor, cache, _ := newTestExecutor(api)
	cache.Commit(PlayerStateKey("s1"), before)

	_, err := executor.Finish(context.Background(), "s1", "Vilma")
	require.Error(t, err)

	value, ok := cache.Peek(PlayerStateKey("s1"))
	require.True(t, ok)
	assert.Equal(t, before, value)
}

func TestSecondMutationSnapshotsAfterFirstCommit(t *testing.T) {
	t.Parallel()

	s0 := domain.PlayerState{Session: "s1", Money: 1000}
	s1 := domain.PlayerState{Session: "s1", Money: 900}

	firstDispatched := make(chan struct{})
	releaseFirst := make(chan struct{})
	call := 0
	api := &fakeGameAPI{}
	api.decisionFn = func(ctx context.Context, session domain.SessionID, choice domain.DecisionChoice) (domain.DecisionOutcome, error) {
		call++
		if call == 1 {
			close(firstDispatched)
			<-releaseFirst
			return domain.DecisionOutcome{UpdatedState: s1}, nil
		}
		return domain.DecisionOutcome{}, &domain.RemoteError{Kind: domain.KindValidation, Detail: "double click", Status: 422}
	}
	executor, cache, _ := newTestExecutor(api)
	cache.Commit(PlayerStateKey("s1"), s0)

	firstDone := make(chan error, 1)
	go func() {
		_, err := executor.Step(context.Background(), "s1", domain.DecisionChoice{Label: "a", Effects: domain.OptionEffects{Money: -100}})
		firstDone <- err
	}()

	<-firstDispatched
	secondDone := make(chan error, 1)
	go func() {
		_, err := executor.Step(context.Background(), "s1", domain.DecisionChoice{Label: "a", Effects: domain.OptionEffects{Money: -100}})
		secondDone <- err
	}()

	close(releaseFirst)
	require.NoError(t, <-firstDone)
	require.Error(t, <-secondDone)

	value, ok := cache.Peek(PlayerStateKey("s1"))
	require.True(t, ok)
	assert.Equal(t, s1, value, "the second rollback must not resurrect state older than the first commit")
}

func TestStepWithoutSessionFails(t *testing.T) {
	t.Parallel()

	executor, _, _ := newTestExecutor(&fakeGameAPI{})
	_, err := executor.Step(context.Background(), "", domain.DecisionChoice{Label: "a"})
	assert.True(t, errors.Is(err, domain.ErrNoSession))
}
