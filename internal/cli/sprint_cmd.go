package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/taskflow/internal/cli/formatter"
	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/migration"
	"github.com/alexanderramin/taskflow/internal/service"
	"github.com/spf13/cobra"
)

func newSprintCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sprint",
		Short: "List and close sprints",
	}

	cmd.AddCommand(
		newSprintListCmd(app),
		newSprintCloseCmd(app, migration.ActionCancel),
		newSprintCloseCmd(app, migration.ActionDelete),
	)

	return cmd
}

func projectFlag(app *App, project string) (string, error) {
	project = strings.TrimSpace(project)
	if project == "" {
		project = app.DefaultProject
	}
	if project == "" {
		return "", fmt.Errorf("project ID is required (--project)")
	}
	return project, nil
}

func newSprintListCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a project's sprints",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := projectFlag(app, project)
			if err != nil {
				return err
			}
			sprints, err := app.Closure.ListSprints(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSprintList(sprints))
			return nil
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", "", "Project ID")

	return cmd
}

type closeOptions struct {
	project string
	moves   moveFlag
	all     destinationFlag
	yes     bool
	dryRun  bool
}

func newSprintCloseCmd(app *App, action migration.CloseAction) *cobra.Command {
	var opts closeOptions

	verb := "cancel"
	short := "Cancel a sprint, moving its incomplete tasks first"
	if action == migration.ActionDelete {
		verb = "delete"
		short = "Delete a sprint, moving its incomplete tasks first"
	}

	cmd := &cobra.Command{
		Use:   verb + " SPRINT_ID",
		Short: short,
		Long: short + `.

Every incomplete task goes to the backlog unless told otherwise. Use
--all to change the default and --move to choose per task, e.g.

  taskflow sprint ` + verb + ` S1 -p P1 --all keep --move WEB-12=sprint:S2

Without --move or --all an interactive terminal shows a form instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSprintClose(cmd.Context(), cmd.OutOrStdout(), app, action, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.project, "project", "p", "", "Project ID")
	cmd.Flags().Var(&opts.moves, "move", "Destination for one task: TASK=backlog|keep|sprint:ID (repeatable)")
	cmd.Flags().Var(&opts.all, "all", "Destination for every task: backlog|keep|sprint:ID")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Show the plan without changing anything")

	return cmd
}

func runSprintClose(ctx context.Context, out io.Writer, app *App, action migration.CloseAction, sprintID string, opts *closeOptions) error {
	projectID, err := projectFlag(app, opts.project)
	if err != nil {
		return err
	}

	printer := newFeedbackPrinter(out)
	session, err := app.Closure.Open(ctx, service.OpenRequest{
		SprintID:  sprintID,
		ProjectID: projectID,
		Action:    action,
		Feedback:  printer,
	})
	if err != nil {
		return err
	}
	defer session.Close()

	// an unknown task list cannot be migrated; a missing sprint list only
	// limits the destinations
	for _, fetchErr := range session.FetchErrors() {
		if errors.Is(fetchErr, migration.ErrLoadTasks) {
			return fmt.Errorf("could not load the sprint: %w", fetchErr)
		}
	}

	useForm := app.interactive() && len(opts.moves.specs) == 0 && !opts.all.set && !opts.dryRun
	if useForm {
		confirmed, err := runClosureForm(session)
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, formatter.Dim("Nothing changed."))
			return nil
		}
	} else if err := applyCloseFlags(session, opts); err != nil {
		return err
	}

	fmt.Fprint(out, formatter.FormatClosurePreview(previewOf(session)))

	if opts.dryRun {
		fmt.Fprintln(out, formatter.Dim("Dry run: nothing changed."))
		return nil
	}
	if ok, reason := session.CanSubmit(); !ok {
		return errors.New(reason)
	}
	if !useForm && !opts.yes && app.interactive() {
		confirmed, err := confirm(fmt.Sprintf("%s sprint %s?", capitalize(string(action)), sprintName(session)))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(out, formatter.Dim("Nothing changed."))
			return nil
		}
	}

	printer.mute(true)
	var outcome *migration.Outcome
	err = runWork(ctx, app.interactive(), out, "Closing sprint...", func(ctx context.Context) error {
		var submitErr error
		outcome, submitErr = app.Closure.Submit(ctx, session)
		return submitErr
	})
	printer.mute(false)

	if outcome != nil {
		fmt.Fprint(out, formatter.FormatOutcome(outcome, len(session.Tasks())))
	}
	if errors.Is(err, domain.ErrConflict) {
		return fmt.Errorf("sprint changed since it was loaded; reopen and try again: %w", err)
	}
	return err
}

// applyCloseFlags applies --all first so --move overrides it per task.
func applyCloseFlags(session *migration.Session, opts *closeOptions) error {
	if opts.all.set {
		if err := session.SetAll(opts.all.Dest, opts.all.Target); err != nil {
			return err
		}
	}
	for _, spec := range opts.moves.specs {
		id, err := resolveTaskRef(session.Tasks(), spec.Task)
		if err != nil {
			return err
		}
		if err := session.SetChoice(id, spec.Dest, spec.Target); err != nil {
			return err
		}
	}
	return nil
}

// resolveTaskRef matches an exact ID, then a short key (case-insensitive),
// then a unique ID prefix.
func resolveTaskRef(tasks []domain.Task, ref string) (string, error) {
	for _, t := range tasks {
		if t.ID == ref {
			return t.ID, nil
		}
	}
	for _, t := range tasks {
		if t.ShortKey != "" && strings.EqualFold(t.ShortKey, ref) {
			return t.ID, nil
		}
	}

	var matches []string
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("task not found in sprint: %q", ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("task ID prefix %q is ambiguous (%d matches)", ref, len(matches))
	}
}

func previewOf(session *migration.Session) formatter.ClosurePreview {
	return formatter.ClosurePreview{
		SprintName: sprintName(session),
		Action:     session.Action(),
		Tasks:      session.Tasks(),
		Choices:    session.Choices(),
		Candidates: session.Candidates(),
	}
}

func sprintName(session *migration.Session) string {
	if sp, ok := session.Sprint(); ok && sp.Name != "" {
		return sp.Name
	}
	return session.SprintID()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
