package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
	"github.com/lifesim-quest/lifesim-cli/internal/ports"
)

// Executor runs state-changing calls against the cache with the optimistic
// update protocol: supersede in-flight reads, snapshot, optimistically
// apply (when the mutation has a local projection), dispatch, then commit
// the server state or restore the snapshot. The per-key lock serializes
// mutations so a second mutation snapshots after the first's optimistic
// apply, never before.
type Executor struct {
	cache *Cache
	api   ports.GameAPI
	local ports.GameStateStore

	mu       sync.Mutex
	keyLocks map[Key]*sync.Mutex
}

func NewExecutor(cache *Cache, api ports.GameAPI, local ports.GameStateStore) *Executor {
	return &Executor{
		cache:    cache,
		api:      api,
		local:    local,
		keyLocks: map[Key]*sync.Mutex{},
	}
}

func (e *Executor) lockKey(key Key) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock := e.keyLocks[key]
	if lock == nil {
		lock = &sync.Mutex{}
		e.keyLocks[key] = lock
	}
	return lock
}

// Onboard creates a new game session, records its id in the local store and
// seeds the player-state cache from the embedded initial state.
func (e *Executor) Onboard(ctx context.Context, profile domain.Profile) (domain.GameStart, error) {
	start, err := e.api.CreateSession(ctx, profile)
	if err != nil {
		return domain.GameStart{}, fmt.Errorf("create session: %w", err)
	}

	if err := e.local.SetSession(start.State.Session); err != nil {
		return domain.GameStart{}, fmt.Errorf("persist session id: %w", err)
	}

	e.cache.Commit(PlayerStateKey(start.State.Session), start.State)

	initial := start.Initial
	e.local.SetCurrentTurn(&initial)

	return start, nil
}

// Step applies a decision. The chosen option's effects are projected onto
// the cached state for zero-latency feedback; the server's returned state
// replaces the projection on success, the pre-dispatch snapshot on failure.
func (e *Executor) Step(ctx context.Context, session domain.SessionID, choice domain.DecisionChoice) (domain.DecisionOutcome, error) {
	if session == "" {
		return domain.DecisionOutcome{}, domain.ErrNoSession
	}

	key := PlayerStateKey(session)
	lock := e.lockKey(key)
	lock.Lock()
	defer lock.Unlock()

	e.cache.Supersede(key)
	snap := e.cache.TakeSnapshot(key)
	if prev, ok := snap.Value(); ok {
		e.cache.Put(key, projectEffects(prev.(domain.PlayerState), choice.Effects))
	}

	outcome, err := e.api.ApplyDecision(ctx, session, choice)
	if err != nil {
		e.cache.Restore(key, snap)
		return domain.DecisionOutcome{}, fmt.Errorf("apply decision: %w", err)
	}

	e.cache.Commit(key, outcome.UpdatedState)
	e.local.SetConsequence(outcome.ConsequenceNarrative)
	if len(outcome.TransactionSummary) > 0 {
		e.local.AppendTransactions(outcome.TransactionSummary)
	}

	return outcome, nil
}

// UpdateExpenses removes recurring expense lines. The removal is applied
// locally before dispatch; the stat adjustments are a best-effort preview
// that the server's snapshot overwrites on success.
func (e *Executor) UpdateExpenses(ctx context.Context, session domain.SessionID, update domain.ExpenseUpdate) (domain.PlayerState, error) {
	if session == "" {
		return domain.PlayerState{}, domain.ErrNoSession
	}

	key := PlayerStateKey(session)
	lock := e.lockKey(key)
	lock.Lock()
	defer lock.Unlock()

	e.cache.Supersede(key)
	snap := e.cache.TakeSnapshot(key)
	if prev, ok := snap.Value(); ok {
		e.cache.Put(key, projectExpenseRemoval(prev.(domain.PlayerState), update))
	}

	state, err := e.api.UpdateExpenses(ctx, session, update)
	if err != nil {
		e.cache.Restore(key, snap)
		return domain.PlayerState{}, fmt.Errorf("update expenses: %w", err)
	}

	e.cache.Commit(key, state)
	return state, nil
}

// Finish completes the game. No local projection exists for it, but the
// protocol's supersede and snapshot steps still run, and the leaderboard is
// invalidated since the mutation affects it without returning it.
func (e *Executor) Finish(ctx context.Context, session domain.SessionID, nickname string) (domain.LeaderboardEntry, error) {
	if session == "" {
		return domain.LeaderboardEntry{}, domain.ErrNoSession
	}

	key := PlayerStateKey(session)
	lock := e.lockKey(key)
	lock.Lock()
	defer lock.Unlock()

	e.cache.Supersede(key)
	snap := e.cache.TakeSnapshot(key)

	entry, err := e.api.FinishGame(ctx, session, nickname)
	if err != nil {
		e.cache.Restore(key, snap)
		return domain.LeaderboardEntry{}, fmt.Errorf("finish game: %w", err)
	}

	e.cache.Invalidate(key)
	e.cache.InvalidateResource(ResourceLeaderboard)
	e.local.SetCurrentTurn(nil)

	return entry, nil
}

func projectEffects(state domain.PlayerState, effects domain.OptionEffects) domain.PlayerState {
	state.Money += effects.Money
	state.MonthlyIncome += effects.MonthlyIncome
	state.MonthlyExpenses += effects.MonthlyExpenses
	state.Investments += effects.Investments
	state.Debts += effects.Debts

	state.Metrics.Energy = clampMetric(state.Metrics.Energy + effects.Energy)
	state.Metrics.Motivation = clampMetric(state.Metrics.Motivation + effects.Motivation)
	state.Metrics.SocialLife = clampMetric(state.Metrics.SocialLife + effects.SocialLife)
	state.Metrics.FinancialKnowledge = clampMetric(state.Metrics.FinancialKnowledge + effects.FinancialKnowledge)

	return state
}

func projectExpenseRemoval(state domain.PlayerState, update domain.ExpenseUpdate) domain.PlayerState {
	removed := make(map[string]struct{}, len(update.RemovedIDs))
	for _, id := range update.RemovedIDs {
		removed[id] = struct{}{}
	}

	kept := make([]domain.Subscription, 0, len(state.ActiveSubscriptions))
	for _, sub := range state.ActiveSubscriptions {
		if _, gone := removed[sub.ID]; gone {
			continue
		}
		kept = append(kept, sub)
	}
	state.ActiveSubscriptions = kept

	return projectEffects(state, update.Adjustments)
}

func clampMetric(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
