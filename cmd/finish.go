package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
)

func newFinishCmd(app *app) *cobra.Command {
	var nickname string

	cmd := &cobra.Command{
		Use:   "finish",
		Short: "End the run and submit the result to the leaderboard",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := app.local.Session()
			if session == "" {
				return fmt.Errorf("no run in progress: %w", domain.ErrNoSession)
			}

			app.rehydrate(cmd.Context())

			if nickname == "" {
				nickname = app.local.Preferences().Nickname
			}

			var entry domain.LeaderboardEntry
			err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Submitting your run...", func(ctx context.Context) error {
				var err error
				entry, err = app.executor.Finish(ctx, session, nickname)
				return err
			})
			if err != nil {
				return fmt.Errorf("finish: %w", err)
			}

			if err := app.local.ClearSession(); err != nil {
				return fmt.Errorf("clear finished session: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Run complete: rank %d, FI score %.1f, balance %.1f\n",
				entry.Rank, entry.FinalFIScore, entry.BalanceScore)
			return nil
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "Leaderboard name (defaults to the stored preference)")

	return cmd
}
