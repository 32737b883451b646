package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	gamerender "github.com/lifesim-quest/lifesim-cli/internal/adapters/render/game"
	"github.com/lifesim-quest/lifesim-cli/internal/domain"
)

func newNewCmd(app *app) *cobra.Command {
	var (
		name      string
		age       int
		city      string
		education string
		risk      string
		income    float64
		expenses  float64
		savings   float64
		debt      float64
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new simulation run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if existing := app.local.Session(); existing != "" {
				return fmt.Errorf("a run is already in progress (session %s); finish it or use 'lifesim reset' first", existing)
			}

			app.rehydrate(cmd.Context())

			var start domain.GameStart
			err := runFetchSpinner(cmd.Context(), cmd.ErrOrStderr(), "Starting your run...", func(ctx context.Context) error {
				var err error
				start, err = app.executor.Onboard(ctx, domain.Profile{
					PlayerName:      name,
					Age:             age,
					City:            city,
					EducationPath:   domain.EducationPath(education),
					RiskAttitude:    domain.RiskAttitude(risk),
					MonthlyIncome:   income,
					MonthlyExpenses: expenses,
					StartingSavings: savings,
					StartingDebt:    debt,
				})
				return err
			})
			if err != nil {
				return fmt.Errorf("start run: %w", err)
			}

			rendered, err := gamerender.RenderState(start.State, gamerender.StateOptions{})
			if err != nil {
				return fmt.Errorf("render state: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), rendered)

			turn, err := gamerender.RenderTurn(start.Initial)
			if err != nil {
				return fmt.Errorf("render turn: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), turn)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Decide with: lifesim play --choose N")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name")
	cmd.Flags().IntVar(&age, "age", 18, "Starting age")
	cmd.Flags().StringVar(&city, "city", "", "Starting city")
	cmd.Flags().StringVar(&education, "education", string(domain.EducationHighSchool), "Education path: high_school, vocational, university, working")
	cmd.Flags().StringVar(&risk, "risk", string(domain.RiskBalanced), "Risk attitude: risk_averse, balanced, risk_seeking")
	cmd.Flags().Float64Var(&income, "income", 0, "Monthly income")
	cmd.Flags().Float64Var(&expenses, "expenses", 0, "Monthly expenses")
	cmd.Flags().Float64Var(&savings, "savings", 0, "Starting savings")
	cmd.Flags().Float64Var(&debt, "debt", 0, "Starting debt")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
