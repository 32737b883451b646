package domain

type SessionID string

type GameStatus string

const (
	GameStatusActive    GameStatus = "active"
	GameStatusCompleted GameStatus = "completed"
	GameStatusAbandoned GameStatus = "abandoned"
)

// LifeMetrics are the 0-100 wellbeing scores tracked alongside the finances.
type LifeMetrics struct {
	Energy             int
	Motivation         int
	SocialLife         int
	FinancialKnowledge int
}

type Asset struct {
	Type  string
	Value float64
}

// Subscription is one recurring expense line the player can cancel.
type Subscription struct {
	ID     string
	Name   string
	Amount float64
}

// PlayerState is a full snapshot of the simulation for one session. The
// server is the sole writer of truth; clients replace the whole value on
// every successful read or mutation, never merge into it.
type PlayerState struct {
	Session     SessionID
	CurrentStep int
	CurrentAge  int
	YearsPassed float64

	Money           float64
	MonthlyIncome   float64
	MonthlyExpenses float64
	Investments     float64
	PassiveIncome   float64
	Debts           float64
	FIScore         float64

	Metrics LifeMetrics

	Assets              map[string]Asset
	ActiveSubscriptions []Subscription
	Status              GameStatus
}

// Subscription returns the active subscription with the given id, if any.
func (s PlayerState) Subscription(id string) (Subscription, bool) {
	for _, sub := range s.ActiveSubscriptions {
		if sub.ID == id {
			return sub, true
		}
	}
	return Subscription{}, false
}

type Health struct {
	Status string
}

func (h Health) OK() bool {
	return h.Status == "ok" || h.Status == "healthy"
}
