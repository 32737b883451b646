package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
)

func newHealthCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check whether the simulation service is reachable",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var health domain.Health
			err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Checking service health...", func(ctx context.Context) error {
				var err error
				health, err = app.queries.Health(ctx)
				return err
			})
			if err != nil {
				return fmt.Errorf("health: %w", err)
			}

			if !health.OK() {
				return fmt.Errorf("service unhealthy: %s", health.Status)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Service healthy (%s)\n", health.Status)
			return nil
		},
	}
}
