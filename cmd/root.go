package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lifesim",
		Short:         "LifeSim CLI: play the financial independence simulation from the terminal",
		Long:          "lifesim is a terminal client for the LifeSim simulation service: create a run, make monthly decisions, trim recurring expenses, and chase the leaderboard.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newLoginCmd(app),
		newRegisterCmd(app),
		newLogoutCmd(app),
		newNewCmd(app),
		newPlayCmd(app),
		newStatusCmd(app),
		newExpensesCmd(app),
		newFinishCmd(app),
		newLeaderboardCmd(app),
		newHealthCmd(app),
		newResetCmd(app),
	)

	return rootCmd
}
