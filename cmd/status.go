package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	gamerender "github.com/lifesim-quest/lifesim-cli/internal/adapters/render/game"
	"github.com/lifesim-quest/lifesim-cli/internal/domain"
)

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current player snapshot",
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
				return fmt.Errorf("status: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(state)
			}

			rendered, err := gamerender.RenderState(state, gamerender.StateOptions{})
			if err != nil {
				return fmt.Errorf("render state: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw snapshot as JSON")

	return cmd
}
