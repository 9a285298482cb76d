package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/migration"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// ClosurePreview is what the operator reviews before submitting.
type ClosurePreview struct {
	SprintName string
	Action     migration.CloseAction
	Tasks      []domain.Task
	Choices    []migration.Choice
	Candidates []domain.Sprint
}

// FormatClosurePreview lists every incomplete task with its chosen
// destination.
func FormatClosurePreview(p ClosurePreview) string {
	var b strings.Builder
	verb := "Cancel"
	if p.Action == migration.ActionDelete {
		verb = "Delete"
	}
	b.WriteString(Header(fmt.Sprintf("%s sprint %s", verb, p.SprintName)))
	b.WriteString("\n")

	if len(p.Tasks) == 0 {
		b.WriteString(Dim("No incomplete tasks. The sprint will be closed directly."))
		b.WriteString("\n")
		return b.String()
	}

	names := make(map[string]string, len(p.Candidates))
	for _, sp := range p.Candidates {
		names[sp.ID] = sp.Name
	}
	dest := make(map[string]migration.Choice, len(p.Choices))
	for _, c := range p.Choices {
		dest[c.TaskID] = c
	}

	rows := make([][]string, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		rows = append(rows, []string{
			taskKey(t),
			Truncate(t.Title, 48),
			TaskStatusPill(t.Status),
			DestinationLabel(dest[t.ID], names),
		})
	}
	b.WriteString(RenderTable([]string{"KEY", "TITLE", "STATUS", "DESTINATION"}, rows))
	return b.String()
}

// DestinationLabel describes one choice; names maps sprint IDs to names.
func DestinationLabel(c migration.Choice, names map[string]string) string {
	switch c.Destination {
	case migration.DestinationBacklog:
		return StyleBlue.Render("→ backlog")
	case migration.DestinationKeep:
		return StyleDim.Render("· keep in closed sprint")
	case migration.DestinationSprint:
		if c.TargetSprintID == "" {
			return StyleRed.Render("→ sprint (not chosen)")
		}
		name := names[c.TargetSprintID]
		if name == "" {
			name = c.TargetSprintID
		}
		return StyleGreen.Render("→ " + name)
	default:
		return StyleDim.Render(string(c.Destination))
	}
}

// FormatOutcome summarises a submit: the result, how many tasks moved and
// every warning. A failed transition's message is left to the caller.
func FormatOutcome(out *migration.Outcome, taskCount int) string {
	var b strings.Builder
	moved := out.MovedCount()

	switch out.State {
	case migration.StateSucceeded:
		b.WriteString(StyleGreen.Render(fmt.Sprintf("✔ Sprint %s", out.Action.Past())))
	case migration.StatePartiallyFailed:
		b.WriteString(StyleYellow.Render(fmt.Sprintf("▲ Sprint %s with %d warning(s)", out.Action.Past(), len(out.Warnings))))
	default:
		b.WriteString(StyleRed.Render("✖ Sprint was not closed"))
	}
	b.WriteString("\n")

	if taskCount > 0 {
		pct := float64(moved) / float64(taskCount)
		fmt.Fprintf(&b, "  %s %d of %d task(s) moved\n", RenderProgress(pct, 20), moved, taskCount)
	}
	for _, w := range out.Warnings {
		b.WriteString("  " + StyleYellow.Render("! "+w) + "\n")
	}
	return b.String()
}

// RenderProgress renders a bar like [████░░░░] 45%.
func RenderProgress(pct float64, width int) string {
	pct = min(max(pct, 0), 1)
	width = max(width, 2)

	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}

// FormatHistory renders journaled runs, newest first.
func FormatHistory(runs []*domain.MigrationRun, now time.Time) string {
	if len(runs) == 0 {
		return Dim("No sprint closures recorded.") + "\n"
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		moved := 0
		for _, s := range r.Steps {
			if (s.Kind == "backlog" || s.Kind == "sprint") && s.Status == "ok" {
				moved += len(s.TaskIDs)
			}
		}
		rows = append(rows, []string{
			TimestampFrom(r.StartedAt, now),
			r.SprintID,
			r.Action,
			RunStatePill(r.State),
			fmt.Sprintf("%d", moved),
			fmt.Sprintf("%d", r.Notified),
			Truncate(r.Error, 40),
		})
	}
	return RenderTable([]string{"WHEN", "SPRINT", "ACTION", "RESULT", "MOVED", "NOTIFIED", "ERROR"}, rows)
}
