package application

import (
	"context"
	"sync"
	"time"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFixedClock(now time.Time) *fixedClock {
	return &fixedClock{now: now}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeGameAPI struct {
	mu               sync.Mutex
	stateCalls       int
	nextCalls        int
	leaderboardCalls int
	healthCalls      int

	createFn   func(ctx context.Context, profile domain.Profile) (domain.GameStart, error)
	stateFn    func(ctx context.Context, session domain.SessionID) (domain.PlayerState, error)
	decisionFn func(ctx context.Context, session domain.SessionID, choice domain.DecisionChoice) (domain.DecisionOutcome, error)
	nextFn     func(ctx context.Context, session domain.SessionID) (domain.NextQuestion, error)
	expensesFn func(ctx context.Context, session domain.SessionID, update domain.ExpenseUpdate) (domain.PlayerState, error)
	finishFn   func(ctx context.Context, session domain.SessionID, nickname string) (domain.LeaderboardEntry, error)
	boardFn    func(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	healthFn   func(ctx context.Context) (domain.Health, error)
}

func (f *fakeGameAPI) count(counter *int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*counter++
}

func (f *fakeGameAPI) StateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateCalls
}

func (f *fakeGameAPI) NextCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.nextCalls
}

func (f *fakeGameAPI) LeaderboardCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.leaderboardCalls
}

func (f *fakeGameAPI) CreateSession(ctx context.Context, profile domain.Profile) (domain.GameStart, error) {
	return f.createFn(ctx, profile)
}

func (f *fakeGameAPI) GetState(ctx context.Context, session domain.SessionID) (domain.PlayerState, error) {
	f.count(&f.stateCalls)
	return f.stateFn(ctx, session)
}

func (f *fakeGameAPI) ApplyDecision(ctx context.Context, session domain.SessionID, choice domain.DecisionChoice) (domain.DecisionOutcome, error) {
	return f.decisionFn(ctx, session, choice)
}

func (f *fakeGameAPI) NextQuestion(ctx context.Context, session domain.SessionID) (domain.NextQuestion, error) {
	f.count(&f.nextCalls)
	return f.nextFn(ctx, session)
}

func (f *fakeGameAPI) UpdateExpenses(ctx context.Context, session domain.SessionID, update domain.ExpenseUpdate) (domain.PlayerState, error) {
	return f.expensesFn(ctx, session, update)
}

func (f *fakeGameAPI) FinishGame(ctx context.Context, session domain.SessionID, nickname string) (domain.LeaderboardEntry, error) {
	return f.finishFn(ctx, session, nickname)
}

func (f *fakeGameAPI) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	f.count(&f.leaderboardCalls)
	return f.boardFn(ctx, limit)
}

func (f *fakeGameAPI) Health(ctx context.Context) (domain.Health, error) {
	f.count(&f.healthCalls)
	return f.healthFn(ctx)
}

type fakeAuthAPI struct {
	mu           sync.Mutex
	refreshCalls int
	refreshFn    func(ctx context.Context) (domain.AuthSession, error)
}

func (f *fakeAuthAPI) Login(ctx context.Context, creds domain.Credentials) (domain.AuthSession, error) {
	return domain.AuthSession{}, nil
}

func (f *fakeAuthAPI) Register(ctx context.Context, reg domain.Registration) (domain.AuthSession, error) {
	return domain.AuthSession{}, nil
}

func (f *fakeAuthAPI) Refresh(ctx context.Context) (domain.AuthSession, error) {
	f.mu.Lock()
	f.refreshCalls++
	f.mu.Unlock()
	return f.refreshFn(ctx)
}

func (f *fakeAuthAPI) Logout(ctx context.Context) error {
	return nil
}

func (f *fakeAuthAPI) RefreshCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

type fakeLocalStore struct {
	mu           sync.Mutex
	session      domain.SessionID
	turn         *domain.NarrativeTurn
	consequence  string
	transactions []domain.Transaction
}

func (s *fakeLocalStore) Session() domain.SessionID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *fakeLocalStore) SetSession(id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = id
	return nil
}

func (s *fakeLocalStore) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = ""
	s.turn = nil
	s.consequence = ""
	return nil
}

func (s *fakeLocalStore) ResetGame() error {
	if err := s.ClearSession(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = nil
	return nil
}

func (s *fakeLocalStore) CurrentTurn() *domain.NarrativeTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn
}

func (s *fakeLocalStore) SetCurrentTurn(turn *domain.NarrativeTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turn = turn
}

func (s *fakeLocalStore) SetConsequence(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consequence = text
}

func (s *fakeLocalStore) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Transaction(nil), s.transactions...)
}

func (s *fakeLocalStore) AppendTransactions(txns []domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, txns...)
}
