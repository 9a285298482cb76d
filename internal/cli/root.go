package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the top-level "taskflow" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var opts GlobalOptions

	root := &cobra.Command{
		Use:           "taskflow",
		Short:         "Close sprints and browse tasks across the project services",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Bootstrap == nil {
				return nil
			}
			return app.Bootstrap(opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "Config file (default <data-dir>/config.yaml)")
	pf.StringVar(&opts.DataDir, "data-dir", "", "Directory for config and journal (default ~/.taskflow)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	pf.StringVar(&opts.LogFile, "log-file", "", "Write logs to this file instead of stderr")
	pf.StringVar(&opts.Operator, "operator", "", "Operator user ID sent as X-User-Id")

	root.AddCommand(
		newSprintCmd(app),
		newTasksCmd(app),
		newHistoryCmd(app),
		newProjectCmd(app),
	)

	return root
}
