package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Abandon the local run and clear the transaction log",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.local.ResetGame(); err != nil {
				return fmt.Errorf("reset: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Local run cleared")
			return nil
		},
	}
}
