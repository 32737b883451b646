package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	gamerender "github.com/lifesim-quest/lifesim-cli/internal/adapters/render/game"
	"github.com/lifesim-quest/lifesim-cli/internal/domain"
)

func newExpensesCmd(app *app) *cobra.Command {
	var remove []string

	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "List recurring expenses, or cancel them with --remove",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := app.local.Session()
			if session == "" {
				return fmt.Errorf("no run in progress: %w (use 'lifesim new')", domain.ErrNoSession)
			}

			app.rehydrate(cmd.Context())

			var state domain.PlayerState
			err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching player state...", func(ctx context.Context) error {
				var err error
				state, err = app.queries.PlayerState(ctx, session)
				return err
			})
			if err != nil {
				return fmt.Errorf("expenses: %w", err)
			}

			if len(remove) == 0 {
				return printSubscriptions(cmd, state)
			}

			update, err := buildExpenseUpdate(state, remove)
			if err != nil {
				return err
			}

			var updated domain.PlayerState
			err = runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Cancelling expenses...", func(ctx context.Context) error {
				var err error
				updated, err = app.executor.UpdateExpenses(ctx, session, update)
				return err
			})
			if err != nil {
				return fmt.Errorf("cancel expenses: %w", err)
			}

			rendered, err := gamerender.RenderState(updated, gamerender.StateOptions{})
			if err != nil {
				return fmt.Errorf("render state: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringSliceVar(&remove, "remove", nil, "Subscription ids to cancel (repeat or comma-separate)")

	return cmd
}

// buildExpenseUpdate validates the ids against the current snapshot and
// pre-computes the preview deltas the server expects echoed back.
func buildExpenseUpdate(state domain.PlayerState, ids []string) (domain.ExpenseUpdate, error) {
	var saved float64
	for _, id := range ids {
		sub, ok := state.Subscription(id)
		if !ok {
			return domain.ExpenseUpdate{}, fmt.Errorf("unknown subscription id %q", id)
		}
		saved += sub.Amount
	}

	return domain.ExpenseUpdate{
		RemovedIDs:  ids,
		Adjustments: domain.OptionEffects{MonthlyExpenses: -saved},
	}, nil
}

func printSubscriptions(cmd *cobra.Command, state domain.PlayerState) error {
	if len(state.ActiveSubscriptions) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No recurring expenses.")
		return err
	}

	for _, sub := range state.ActiveSubscriptions {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%-12s %8.2f/mo  (%s)\n", sub.Name, sub.Amount, sub.ID)
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), "Cancel with: lifesim expenses --remove <id>")
	return err
}
