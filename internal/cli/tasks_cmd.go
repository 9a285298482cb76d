package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskflow/internal/cli/formatter"
	"github.com/alexanderramin/taskflow/internal/filter"
	"github.com/alexanderramin/taskflow/internal/service"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

type tasksOptions struct {
	project     string
	sprint      string
	query       string
	statuses    []string
	assignees   []string
	priorities  []string
	labels      []string
	createdFrom dateFlag
	createdTo   dateFlag
	updatedFrom dateFlag
	updatedTo   dateFlag
	view        quickFlag
	sort        sortFlag
	reverse     bool
	locale      string
	interactive bool
}

func newTasksCmd(app *App) *cobra.Command {
	var opts tasksOptions

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List, filter and sort a project's or sprint's tasks",
		Long: `List, filter and sort a project's or sprint's tasks.

Every filter narrows the list; repeated values of one filter widen it.
Sort keys: updated, created, due (alias due-date), status, title.
Tasks missing the sort field always come last.

Quick views narrow the list to your own tasks: assigned, done, overdue
(past due and not done) or recent (your 20 most recently updated).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := service.Scope{SprintID: strings.TrimSpace(opts.sprint)}
			if scope.SprintID == "" {
				projectID, err := projectFlag(app, opts.project)
				if err != nil {
					return err
				}
				scope.ProjectID = projectID
			}

			st, err := opts.state(app.now())
			if err != nil {
				return err
			}
			sort, err := opts.sortSpec(app.Locale)
			if err != nil {
				return err
			}

			if opts.interactive {
				if !app.interactive() {
					return fmt.Errorf("--interactive needs a terminal")
				}
				return runTaskBrowser(cmd.Context(), cmd.OutOrStdout(), app, scope, st, sort)
			}

			var listing *service.TaskListing
			if scope.SprintID != "" {
				listing, err = app.Tasks.SprintTasks(cmd.Context(), scope.SprintID, st, sort)
			} else {
				listing, err = app.Tasks.ProjectTasks(cmd.Context(), scope.ProjectID, st, sort)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if summary := formatter.FormatFilterSummary(st, sort); summary != "" {
				fmt.Fprintln(out, summary)
			}
			if st.Quick.View != filter.QuickNone {
				if counts := formatter.FormatQuickCounts(listing.Quick, st.Quick.View); counts != "" {
					fmt.Fprintln(out, counts)
				}
			}
			fmt.Fprint(out, formatter.FormatTaskList(listing.Tasks, listing.Total, app.now()))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.project, "project", "p", "", "Project ID")
	f.StringVarP(&opts.sprint, "sprint", "s", "", "Sprint ID (overrides --project)")
	f.StringVarP(&opts.query, "query", "q", "", "Text to find in title, description or key")
	f.StringSliceVar(&opts.statuses, "status", nil, "Status: todo, in-progress, review, done (repeatable)")
	f.StringSliceVar(&opts.assignees, "assignee", nil, "Assignee user ID (repeatable)")
	f.StringSliceVar(&opts.priorities, "priority", nil, "Priority: lowest..highest, blocker (repeatable)")
	f.StringSliceVar(&opts.labels, "label", nil, "Label (repeatable)")
	f.Var(&opts.createdFrom, "created-from", "Created on or after (YYYY-MM-DD)")
	f.Var(&opts.createdTo, "created-to", "Created on or before (YYYY-MM-DD)")
	f.Var(&opts.updatedFrom, "updated-from", "Updated on or after (YYYY-MM-DD)")
	f.Var(&opts.updatedTo, "updated-to", "Updated on or before (YYYY-MM-DD)")
	f.Var(&opts.view, "view", "Quick view of your tasks: assigned|done|overdue|recent")
	f.Var(&opts.sort, "sort", "Sort key: updated|created|due|status|title")
	f.BoolVar(&opts.reverse, "reverse", false, "Reverse the sort direction")
	f.StringVar(&opts.locale, "locale", "", "Collation locale for text sorts (BCP 47, e.g. de)")
	f.BoolVarP(&opts.interactive, "interactive", "i", false, "Browse and refine the list interactively")

	return cmd
}

func (o *tasksOptions) state(now time.Time) (filter.State, error) {
	statuses, err := parseStatuses(o.statuses)
	if err != nil {
		return filter.State{}, err
	}
	priorities, err := parsePriorities(o.priorities)
	if err != nil {
		return filter.State{}, err
	}
	return filter.State{
		Query:      o.query,
		Statuses:   statuses,
		Assignees:  o.assignees,
		Priorities: priorities,
		Labels:     o.labels,
		Created:    filter.DateRange{From: o.createdFrom.t, To: o.createdTo.t},
		Updated:    filter.DateRange{From: o.updatedFrom.t, To: o.updatedTo.t},
		Quick:      filter.Quick{View: o.view.view, Now: now},
	}, nil
}

func (o *tasksOptions) sortSpec(fallback language.Tag) (filter.Sort, error) {
	tag := fallback
	if o.locale != "" {
		parsed, err := language.Parse(o.locale)
		if err != nil {
			return filter.Sort{}, fmt.Errorf("invalid locale %q: %w", o.locale, err)
		}
		tag = parsed
	}
	return filter.Sort{Key: o.sort.key, Reverse: o.reverse, Locale: tag}, nil
}
