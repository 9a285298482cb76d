package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/taskflow/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newProjectCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(newProjectDeleteCmd(app))

	return cmd
}

func newProjectDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete PROJECT_ID",
		Short: "Delete a project with its tasks and sprints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID := args[0]
			out := cmd.OutOrStdout()

			if !yes {
				if !app.interactive() {
					return fmt.Errorf("refusing to delete project %s without --yes", projectID)
				}
				ok, err := confirm(fmt.Sprintf("Delete project %s with all of its tasks and sprints?", projectID))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(out, formatter.Dim("Nothing changed."))
					return nil
				}
			}

			err := runWork(cmd.Context(), app.interactive(), out, "Deleting project...", func(ctx context.Context) error {
				return app.Projects.Delete(ctx, projectID)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.StyleGreen.Render("✔ Deleted project "+projectID))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}
