package cli

import (
	"fmt"

	"github.com/alexanderramin/taskflow/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var sprintID string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded sprint closures",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			runs, err := app.Closure.History(cmd.Context(), sprintID, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(runs, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&sprintID, "sprint", "s", "", "Only closures of this sprint")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs")

	return cmd
}
