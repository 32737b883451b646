package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	gamerender "github.com/lifesim-quest/lifesim-cli/internal/adapters/render/game"
	"github.com/lifesim-quest/lifesim-cli/internal/domain"
)

func newPlayCmd(app *app) *cobra.Command {
	var choose int

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Show the current decision, or apply one with --choose",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := app.local.Session()
			if session == "" {
				return fmt.Errorf("no run in progress: %w (use 'lifesim new')", domain.ErrNoSession)
			}

			app.rehydrate(cmd.Context())

			turn, err := currentTurn(cmd, app, session)
			if err != nil {
				return err
			}

			if choose <= 0 {
				return printTurn(cmd, turn)
			}

			if choose > len(turn.Options) {
				return fmt.Errorf("option %d out of range: the turn has %d options", choose, len(turn.Options))
			}
			option := turn.Options[choose-1]

			var outcome domain.DecisionOutcome
			err = runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Applying your decision...", func(ctx context.Context) error {
				var err error
				outcome, err = app.executor.Step(ctx, session, domain.DecisionChoice{
					Label:   option.Label,
					Index:   choose - 1,
					Effects: option.Effects,
				})
				return err
			})
			if err != nil {
				return fmt.Errorf("play: %w", err)
			}

			rendered, err := gamerender.RenderOutcome(outcome)
			if err != nil {
				return fmt.Errorf("render outcome: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)

			next, err := app.resolver.Resolve(cmd.Context(), session, outcome)
			if err != nil {
				if errors.Is(err, domain.ErrNextQuestionPending) {
					app.local.SetCurrentTurn(nil)
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "The next month is still being prepared; run 'lifesim play' again in a moment.")
					return nil
				}
				return fmt.Errorf("next question: %w", err)
			}

			app.local.SetCurrentTurn(&next)
			return printTurn(cmd, next)
		},
	}

	cmd.Flags().IntVar(&choose, "choose", 0, "Apply option N of the current turn (1-based)")

	return cmd
}

// currentTurn returns the cached turn, falling back to a next-question fetch
// after a restart wiped the transient cache.
func currentTurn(cmd *cobra.Command, app *app, session domain.SessionID) (domain.NarrativeTurn, error) {
	if cached := app.local.CurrentTurn(); cached != nil {
		return *cached, nil
	}

	var turn domain.NarrativeTurn
	err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching the current decision...", func(ctx context.Context) error {
		var err error
		turn, err = app.resolver.Resolve(ctx, session, domain.DecisionOutcome{})
		return err
	})
	if err != nil {
		return domain.NarrativeTurn{}, fmt.Errorf("fetch current decision: %w", err)
	}

	app.local.SetCurrentTurn(&turn)
	return turn, nil
}

func printTurn(cmd *cobra.Command, turn domain.NarrativeTurn) error {
	rendered, err := gamerender.RenderTurn(turn)
	if err != nil {
		return fmt.Errorf("render turn: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Decide with: lifesim play --choose N")
	return nil
}
