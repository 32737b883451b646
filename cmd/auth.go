package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lifesim-quest/lifesim-cli/internal/domain"
)

func newLoginCmd(app *app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the refresh credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := app.authAPI.Login(cmd.Context(), domain.Credentials{
				Username: username,
				Password: password,
			})
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			app.rehydrator.SetSession(session)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", displayName(session))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Account username")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newRegisterCmd(app *app) *cobra.Command {
	var username, password, display string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, err := app.authAPI.Register(cmd.Context(), domain.Registration{
				Username:    username,
				Password:    password,
				DisplayName: display,
			})
			if err != nil {
				return fmt.Errorf("register: %w", err)
			}

			app.rehydrator.SetSession(session)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", displayName(session))
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Account username")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().StringVar(&display, "display-name", "", "Name shown on the leaderboard")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func newLogoutCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the stored refresh credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.authAPI.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("logout: %w", err)
			}

			app.rehydrator.Clear()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func displayName(session domain.AuthSession) string {
	if session.DisplayName != "" {
		return session.DisplayName
	}
	return session.Username
}
