package game

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
)

// StateOptions controls how a player snapshot is rendered.
type StateOptions struct {
	// Stale marks the snapshot as possibly behind the server.
	Stale bool
}

// RenderState draws the financial dashboard for one snapshot.
func RenderState(state domain.PlayerState, opts StateOptions) (string, error) {
	return render(func(s styles) string {
		return renderStateView(state, opts, s)
	})
}

// RenderTurn draws the active narrative turn with its numbered options.
func RenderTurn(turn domain.NarrativeTurn) (string, error) {
	return render(func(s styles) string {
		return renderTurnView(turn, s)
	})
}

// RenderOutcome draws the consequence of an applied decision.
func RenderOutcome(outcome domain.DecisionOutcome) (string, error) {
	return render(func(s styles) string {
		return renderOutcomeView(outcome, s)
	})
}

// RenderLeaderboard draws the ranked completion table.
func RenderLeaderboard(entries []domain.LeaderboardEntry) (string, error) {
	return render(func(s styles) string {
		return renderLeaderboardView(entries, s)
	})
}

func renderStateView(state domain.PlayerState, opts StateOptions, s styles) string {
	title := fmt.Sprintf("Life at %d (month %d)", state.CurrentAge, state.CurrentStep)
	if opts.Stale {
		title += " " + s.warning.Render("[possibly stale]")
	}

	lines := []string{
		s.title.Render(title),
		s.header.Render(fmt.Sprintf("session: %s  status: %s", state.Session, state.Status)),
		"",
		moneyLine("Cash", state.Money, s),
		moneyLine("Investments", state.Investments, s),
		moneyLine("Debts", -state.Debts, s),
		s.detail.Render(fmt.Sprintf("%-14s %s/mo in, %s/mo out (passive %s)",
			"Cash flow:",
			formatMoney(state.MonthlyIncome),
			formatMoney(state.MonthlyExpenses),
			formatMoney(state.PassiveIncome))),
		s.detail.Render(fmt.Sprintf("%-14s %.1f", "FI score:", state.FIScore)),
		"",
		metricLine("Energy", state.Metrics.Energy, s),
		metricLine("Motivation", state.Metrics.Motivation, s),
		metricLine("Social life", state.Metrics.SocialLife, s),
		metricLine("Fin. knowledge", state.Metrics.FinancialKnowledge, s),
	}

	if len(state.ActiveSubscriptions) > 0 {
		lines = append(lines, s.section.Render(s.header.Render("Recurring expenses")))
		for _, sub := range state.ActiveSubscriptions {
			lines = append(lines, s.detail.Render(fmt.Sprintf("  %-12s %s/mo  (%s)", sub.Name, formatMoney(sub.Amount), sub.ID)))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderTurnView(turn domain.NarrativeTurn, s styles) string {
	lines := []string{
		s.narrative.Render(turn.Narrative),
		"",
	}

	for i, option := range turn.Options {
		label := s.optionIdx.Render(fmt.Sprintf("%d)", i+1)) + " " + s.option.Render(option.Label)
		if hint := effectsHint(option.Effects); hint != "" {
			label += " " + s.effect.Render(hint)
		}
		lines = append(lines, label)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderOutcomeView(outcome domain.DecisionOutcome, s styles) string {
	lines := []string{s.narrative.Render(outcome.ConsequenceNarrative)}

	if outcome.LearningMoment != "" {
		lines = append(lines, s.section.Render(s.lesson.Render("Lesson: "+outcome.LearningMoment)))
	}

	if len(outcome.TransactionSummary) > 0 {
		lines = append(lines, s.section.Render(s.header.Render("This month")))
		for _, txn := range outcome.TransactionSummary {
			amount := s.money.Render(formatMoney(txn.Amount))
			if txn.Amount < 0 {
				amount = s.negative.Render(formatMoney(txn.Amount))
			}
			lines = append(lines, s.detail.Render("  "+txn.Description+"  ")+amount)
		}
	}

	if flow := outcome.MonthlyCashFlow; flow != nil {
		net := s.money.Render(formatMoney(flow.Net))
		if flow.Net < 0 {
			net = s.negative.Render(formatMoney(flow.Net))
		}
		lines = append(lines, s.detail.Render(fmt.Sprintf("Cash flow: %s in, %s out, net ", formatMoney(flow.Income), formatMoney(flow.Expenses)))+net)
	}

	if delta := outcome.MetricsChanges; delta != nil {
		if hint := metricsHint(*delta); hint != "" {
			lines = append(lines, s.effect.Render(hint))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderLeaderboardView(entries []domain.LeaderboardEntry, s styles) string {
	lines := []string{
		s.title.Render("Leaderboard"),
		s.header.Render(fmt.Sprintf("players: %d", len(entries))),
	}

	if len(entries) == 0 {
		lines = append(lines, s.empty.Render("No completed runs yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, entry := range entries {
		rank := s.rank.Render(fmt.Sprintf("%3d.", entry.Rank))
		detail := s.detail.Render(fmt.Sprintf(" %-16s FI %.1f  balance %.1f  age %d (%s)",
			entry.PlayerName, entry.FinalFIScore, entry.BalanceScore, entry.Age, entry.EducationPath))
		lines = append(lines, rank+detail)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func moneyLine(label string, amount float64, s styles) string {
	value := s.money.Render(formatMoney(amount))
	if amount < 0 {
		value = s.negative.Render(formatMoney(amount))
	}
	return s.metricKey.Render(fmt.Sprintf("%-14s ", label+":")) + value
}

func metricLine(label string, value int, s styles) string {
	bar := renderMeter(value, 20, s)
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.metricKey.Render(fmt.Sprintf("%-14s ", label+":")),
		bar,
		s.detail.Render(fmt.Sprintf(" %3d", clampScore(value))),
	)
}

// renderMeter draws a 0-100 score as a fixed-width bar.
func renderMeter(score int, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	fraction := float64(clampScore(score)) / 100.0
	filled := int(math.Round(float64(width) * fraction))
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatMoney(amount float64) string {
	if amount < 0 {
		return fmt.Sprintf("-€%.0f", -amount)
	}
	return fmt.Sprintf("€%.0f", amount)
}

// effectsHint summarizes an option's preview deltas, money first.
func effectsHint(effects domain.OptionEffects) string {
	parts := make([]string, 0, 4)

	appendMoney := func(label string, v float64) {
		if v != 0 {
			parts = append(parts, fmt.Sprintf("%s %+.0f", label, v))
		}
	}
	appendMoney("money", effects.Money)
	appendMoney("income", effects.MonthlyIncome)
	appendMoney("expenses", effects.MonthlyExpenses)
	appendMoney("invest", effects.Investments)
	appendMoney("debt", effects.Debts)

	appendMetric := func(label string, v int) {
		if v != 0 {
			parts = append(parts, fmt.Sprintf("%s %+d", label, v))
		}
	}
	appendMetric("energy", effects.Energy)
	appendMetric("motivation", effects.Motivation)
	appendMetric("social", effects.SocialLife)
	appendMetric("knowledge", effects.FinancialKnowledge)

	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func metricsHint(delta domain.MetricsDelta) string {
	return effectsHint(domain.OptionEffects{
		Energy:             delta.Energy,
		Motivation:         delta.Motivation,
		SocialLife:         delta.SocialLife,
		FinancialKnowledge: delta.FinancialKnowledge,
	})
}
