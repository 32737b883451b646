package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	gamerender "github.com/lifesim-quest/lifesim-cli/internal/adapters/render/game"
	"github.com/lifesim-quest/lifesim-cli/internal/domain"
)

func newLeaderboardCmd(app *app) *cobra.Command {
	var (
		limit  int
		watch  bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top completed runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if watch {
				return watchLeaderboard(cmd, app, limit)
			}

			var entries []domain.LeaderboardEntry
			err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Fetching leaderboard...", func(ctx context.Context) error {
				var err error
				entries, err = app.queries.Leaderboard(ctx, limit)
				return err
			})
			if err != nil {
				return fmt.Errorf("leaderboard: %w", err)
			}

			return printLeaderboard(cmd, entries, asJSON)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of entries to fetch")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep refreshing until interrupted")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")

	return cmd
}

func watchLeaderboard(cmd *cobra.Command, app *app, limit int) error {
	entries, err := app.queries.Leaderboard(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	if err := printLeaderboard(cmd, entries, false); err != nil {
		return err
	}

	app.queries.WatchLeaderboard(cmd.Context(), limit, func(entries []domain.LeaderboardEntry, err error) {
		if err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "refresh failed: %v\n", err)
			return
		}
		if err := printLeaderboard(cmd, entries, false); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "render failed: %v\n", err)
		}
	})
	return nil
}

func printLeaderboard(cmd *cobra.Command, entries []domain.LeaderboardEntry, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	rendered, err := gamerender.RenderLeaderboard(entries)
	if err != nil {
		return fmt.Errorf("render leaderboard: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
