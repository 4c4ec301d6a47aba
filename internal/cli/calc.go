package cli

import (
	"fmt"

	"coding-relay-console/internal/domain"
	"github.com/spf13/cobra"
)

// NewCalcCmd evaluates the score calculator without touching any service.
func NewCalcCmd() *cobra.Command {
	var (
		difficulty string
		passed     int
		hidden     string
	)
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Print the points a submission would earn",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := domain.ParseDifficulty(difficulty)
			if !d.Valid() {
				return domain.Invalid("difficulty", "select easy, medium or hard")
			}
			if passed < domain.MinTestCasesPassed || passed > domain.MaxTestCasesPassed {
				return domain.Invalid("passed", "select between 1 and 5 test cases")
			}
			viewed, err := domain.ParseYesNo("hidden", hidden)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), domain.CalculatePoints(d, passed, viewed))
			return nil
		},
	}
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "easy, medium or hard")
	cmd.Flags().IntVar(&passed, "passed", 0, "test cases passed (1-5)")
	cmd.Flags().StringVar(&hidden, "hidden", "no", "hidden test cases viewed (yes/no)")
	return cmd
}
