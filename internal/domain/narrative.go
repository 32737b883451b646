package domain

// OptionEffects are the client-visible deltas attached to a decision option.
// They are a preview only: the server recomputes derived fields (totals,
// FI score) when the decision is applied, and its snapshot always wins.
type OptionEffects struct {
	Money           float64
	MonthlyIncome   float64
	MonthlyExpenses float64
	Investments     float64
	Debts           float64

	Energy             int
	Motivation         int
	SocialLife         int
	FinancialKnowledge int
}

type DecisionOption struct {
	Label   string
	Effects OptionEffects
}

// NarrativeTurn is the decision currently offered to the player: a piece of
// story plus an ordered list of options. Exactly one turn is active at a time.
type NarrativeTurn struct {
	Narrative string
	Options   []DecisionOption
}

// Complete reports whether the turn carries enough content to show: both a
// narrative and at least one option.
func (t NarrativeTurn) Complete() bool {
	return t.Narrative != "" && len(t.Options) > 0
}

// DecisionChoice is the option the player picked, echoed back to the server
// with its index and preview effects.
type DecisionChoice struct {
	Label   string
	Index   int
	Effects OptionEffects
}

type Transaction struct {
	Description string
	Amount      float64
	Category    string
}

type CashFlow struct {
	Income   float64
	Expenses float64
	Net      float64
}

// MetricsDelta is the change the decision caused in each life metric.
type MetricsDelta struct {
	Energy             int
	Motivation         int
	SocialLife         int
	FinancialKnowledge int
}

// DecisionOutcome is the server's response to an applied decision. Next is
// nil when the server did not pre-compute the following turn; callers must
// fall back to a dedicated next-question fetch.
type DecisionOutcome struct {
	UpdatedState         PlayerState
	ConsequenceNarrative string
	LearningMoment       string
	Next                 *NarrativeTurn
	TransactionSummary   []Transaction
	MonthlyCashFlow      *CashFlow
	MetricsChanges       *MetricsDelta
}

// NextQuestion is the result of the fallback fetch. WasPrecomputed is
// diagnostic only: it records whether the server had the turn ready or
// generated it on demand.
type NextQuestion struct {
	Turn           NarrativeTurn
	WasPrecomputed bool
}

// ExpenseUpdate removes recurring expense lines and carries the client's
// pre-computed stat adjustments for the preview.
type ExpenseUpdate struct {
	RemovedIDs  []string
	Adjustments OptionEffects
}
