package ports

import "github.com/lifesim-quest/lifesim-cli/internal/domain"

// GameStateStore is the persisted local store seen from the application
// layer: session identity plus the transient narrative cache and the
// locally accumulated transaction log.
type GameStateStore interface {
	Session() domain.SessionID
	SetSession(id domain.SessionID) error
	ClearSession() error
	ResetGame() error

	CurrentTurn() *domain.NarrativeTurn
	SetCurrentTurn(turn *domain.NarrativeTurn)
	SetConsequence(text string)

	Transactions() []domain.Transaction
	AppendTransactions(txns []domain.Transaction)
}
