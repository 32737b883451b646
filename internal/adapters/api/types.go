package api

import (
	"time"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
)

// Wire payloads for the simulation service. Field names follow the
// service's snake_case JSON contract.

type playerStatePayload struct {
	SessionID   string  `json:"session_id"`
	CurrentStep int     `json:"current_step"`
	CurrentAge  int     `json:"current_age"`
	YearsPassed float64 `json:"years_passed"`

	Money           float64 `json:"money"`
	MonthlyIncome   float64 `json:"monthly_income"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
	Investments     float64 `json:"investments"`
	PassiveIncome   float64 `json:"passive_income"`
	Debts           float64 `json:"debts"`
	FIScore         float64 `json:"fi_score"`

	Energy             int `json:"energy"`
	Motivation         int `json:"motivation"`
	SocialLife         int `json:"social_life"`
	FinancialKnowledge int `json:"financial_knowledge"`

	Assets              map[string]assetPayload `json:"assets"`
	ActiveSubscriptions []subscriptionPayload   `json:"active_subscriptions"`
	GameStatus          string                  `json:"game_status"`
}

type assetPayload struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

type subscriptionPayload struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

func (p playerStatePayload) toDomain() domain.PlayerState {
	state := domain.PlayerState{
		Session:         domain.SessionID(p.SessionID),
		CurrentStep:     p.CurrentStep,
		CurrentAge:      p.CurrentAge,
		YearsPassed:     p.YearsPassed,
		Money:           p.Money,
		MonthlyIncome:   p.MonthlyIncome,
		MonthlyExpenses: p.MonthlyExpenses,
		Investments:     p.Investments,
		PassiveIncome:   p.PassiveIncome,
		Debts:           p.Debts,
		FIScore:         p.FIScore,
		Metrics: domain.LifeMetrics{
			Energy:             p.Energy,
			Motivation:         p.Motivation,
			SocialLife:         p.SocialLife,
			FinancialKnowledge: p.FinancialKnowledge,
		},
		Status: domain.GameStatus(p.GameStatus),
	}

	if len(p.Assets) > 0 {
		state.Assets = make(map[string]domain.Asset, len(p.Assets))
		for name, asset := range p.Assets {
			state.Assets[name] = domain.Asset{Type: asset.Type, Value: asset.Value}
		}
	}

	for _, sub := range p.ActiveSubscriptions {
		state.ActiveSubscriptions = append(state.ActiveSubscriptions, domain.Subscription{
			ID:     sub.ID,
			Name:   sub.Name,
			Amount: sub.Amount,
		})
	}

	return state
}

type optionEffectsPayload struct {
	Money           float64 `json:"money,omitempty"`
	MonthlyIncome   float64 `json:"monthly_income,omitempty"`
	MonthlyExpenses float64 `json:"monthly_expenses,omitempty"`
	Investments     float64 `json:"investments,omitempty"`
	Debts           float64 `json:"debts,omitempty"`

	Energy             int `json:"energy,omitempty"`
	Motivation         int `json:"motivation,omitempty"`
	SocialLife         int `json:"social_life,omitempty"`
	FinancialKnowledge int `json:"financial_knowledge,omitempty"`
}

func effectsToPayload(e domain.OptionEffects) optionEffectsPayload {
	return optionEffectsPayload{
		Money:              e.Money,
		MonthlyIncome:      e.MonthlyIncome,
		MonthlyExpenses:    e.MonthlyExpenses,
		Investments:        e.Investments,
		Debts:              e.Debts,
		Energy:             e.Energy,
		Motivation:         e.Motivation,
		SocialLife:         e.SocialLife,
		FinancialKnowledge: e.FinancialKnowledge,
	}
}

func (p optionEffectsPayload) toDomain() domain.OptionEffects {
	return domain.OptionEffects{
		Money:              p.Money,
		MonthlyIncome:      p.MonthlyIncome,
		MonthlyExpenses:    p.MonthlyExpenses,
		Investments:        p.Investments,
		Debts:              p.Debts,
		Energy:             p.Energy,
		Motivation:         p.Motivation,
		SocialLife:         p.SocialLife,
		FinancialKnowledge: p.FinancialKnowledge,
	}
}

type optionPayload struct {
	Label   string               `json:"label"`
	Effects optionEffectsPayload `json:"effects"`
}

func optionsToDomain(options []optionPayload) []domain.DecisionOption {
	converted := make([]domain.DecisionOption, 0, len(options))
	for _, option := range options {
		converted = append(converted, domain.DecisionOption{
			Label:   option.Label,
			Effects: option.Effects.toDomain(),
		})
	}
	return converted
}

type onboardingRequest struct {
	PlayerName      string          `json:"player_name"`
	Age             int             `json:"age"`
	City            string          `json:"city"`
	EducationPath   string          `json:"education_path"`
	RiskAttitude    string          `json:"risk_attitude"`
	MonthlyIncome   float64         `json:"monthly_income"`
	MonthlyExpenses float64         `json:"monthly_expenses"`
	StartingSavings float64         `json:"starting_savings"`
	StartingDebt    float64         `json:"starting_debt"`
	Aspirations     map[string]bool `json:"aspirations"`
}

type onboardingResponse struct {
	GameState        playerStatePayload `json:"game_state"`
	InitialNarrative string             `json:"initial_narrative"`
	InitialOptions   []optionPayload    `json:"initial_options"`
}

type decisionRequest struct {
	SessionID     string               `json:"session_id"`
	ChosenOption  string               `json:"chosen_option"`
	OptionIndex   int                  `json:"option_index"`
	OptionEffects optionEffectsPayload `json:"option_effects"`
}

type transactionPayload struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category,omitempty"`
}

type cashFlowPayload struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

type metricsDeltaPayload struct {
	Energy             int `json:"energy"`
	Motivation         int `json:"motivation"`
	SocialLife         int `json:"social_life"`
	FinancialKnowledge int `json:"financial_knowledge"`
}

type decisionResponse struct {
	ConsequenceNarrative string               `json:"consequence_narrative"`
	UpdatedState         playerStatePayload   `json:"updated_state"`
	LearningMoment       string               `json:"learning_moment,omitempty"`
	NextNarrative        string               `json:"next_narrative,omitempty"`
	NextOptions          []optionPayload      `json:"next_options,omitempty"`
	TransactionSummary   []transactionPayload `json:"transaction_summary,omitempty"`
	MonthlyCashFlow      *cashFlowPayload     `json:"monthly_cash_flow,omitempty"`
	LifeMetricsChanges   *metricsDeltaPayload `json:"life_metrics_changes,omitempty"`
}

func (r decisionResponse) toDomain() domain.DecisionOutcome {
	outcome := domain.DecisionOutcome{
		UpdatedState:         r.UpdatedState.toDomain(),
		ConsequenceNarrative: r.ConsequenceNarrative,
		LearningMoment:       r.LearningMoment,
	}

	if r.NextNarrative != "" && len(r.NextOptions) > 0 {
		outcome.Next = &domain.NarrativeTurn{
			Narrative: r.NextNarrative,
			Options:   optionsToDomain(r.NextOptions),
		}
	}

	for _, txn := range r.TransactionSummary {
		outcome.TransactionSummary = append(outcome.TransactionSummary, domain.Transaction{
			Description: txn.Description,
			Amount:      txn.Amount,
			Category:    txn.Category,
		})
	}

	if r.MonthlyCashFlow != nil {
		outcome.MonthlyCashFlow = &domain.CashFlow{
			Income:   r.MonthlyCashFlow.Income,
			Expenses: r.MonthlyCashFlow.Expenses,
			Net:      r.MonthlyCashFlow.Net,
		}
	}

	if r.LifeMetricsChanges != nil {
		outcome.MetricsChanges = &domain.MetricsDelta{
			Energy:             r.LifeMetricsChanges.Energy,
			Motivation:         r.LifeMetricsChanges.Motivation,
			SocialLife:         r.LifeMetricsChanges.SocialLife,
			FinancialKnowledge: r.LifeMetricsChanges.FinancialKnowledge,
		}
	}

	return outcome
}

type nextQuestionResponse struct {
	NextNarrative  string          `json:"next_narrative"`
	NextOptions    []optionPayload `json:"next_options"`
	WasPrecomputed bool            `json:"was_precomputed"`
}

type expenseUpdateRequest struct {
	SessionID       string               `json:"session_id"`
	RemovedIDs      []string             `json:"removed_ids"`
	StatAdjustments optionEffectsPayload `json:"stat_adjustments"`
}

type expenseUpdateResponse struct {
	UpdatedState playerStatePayload `json:"updated_state"`
}

type finishRequest struct {
	SessionID string `json:"session_id"`
	Nickname  string `json:"nickname"`
}

type leaderboardEntryPayload struct {
	Rank          int       `json:"rank"`
	PlayerName    string    `json:"player_name"`
	FinalFIScore  float64   `json:"final_fi_score"`
	BalanceScore  float64   `json:"balance_score"`
	Age           int       `json:"age"`
	EducationPath string    `json:"education_path"`
	CompletedAt   time.Time `json:"completed_at"`
}

func (p leaderboardEntryPayload) toDomain() domain.LeaderboardEntry {
	return domain.LeaderboardEntry{
		Rank:          p.Rank,
		PlayerName:    p.PlayerName,
		FinalFIScore:  p.FinalFIScore,
		BalanceScore:  p.BalanceScore,
		Age:           p.Age,
		EducationPath: domain.EducationPath(p.EducationPath),
		CompletedAt:   p.CompletedAt,
	}
}

type finishResponse struct {
	LeaderboardEntry leaderboardEntryPayload `json:"leaderboard_entry"`
}

type healthResponse struct {
	Status string `json:"status"`
}

type apiErrorResponse struct {
	Detail string `json:"detail"`
}
