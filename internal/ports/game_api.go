package ports

import (
	"context"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
)

// GameAPI is the remote simulation service. Implementations convert every
// failure into a domain.RemoteError so callers can classify it.
type GameAPI interface {
	CreateSession(ctx context.Context, profile domain.Profile) (domain.GameStart, error)
	GetState(ctx context.Context, session domain.SessionID) (domain.PlayerState, error)
	ApplyDecision(ctx context.Context, session domain.SessionID, choice domain.DecisionChoice) (domain.DecisionOutcome, error)
	NextQuestion(ctx context.Context, session domain.SessionID) (domain.NextQuestion, error)
	UpdateExpenses(ctx context.Context, session domain.SessionID, update domain.ExpenseUpdate) (domain.PlayerState, error)
	FinishGame(ctx context.Context, session domain.SessionID, nickname string) (domain.LeaderboardEntry, error)
	Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)
	Health(ctx context.Context) (domain.Health, error)
}
