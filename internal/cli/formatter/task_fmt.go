package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/filter"
)

// FormatTaskList renders the visible tasks as a table followed by a
// "Showing N of M" footer.
func FormatTaskList(tasks []domain.Task, total int, now time.Time) string {
	if total == 0 {
		return Dim("No tasks found.") + "\n"
	}
	if len(tasks) == 0 {
		return Dim(fmt.Sprintf("No tasks match the current filters (%d hidden).", total)) + "\n"
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			taskKey(t),
			Truncate(t.Title, 48),
			TaskStatusPill(t.Status),
			PriorityBadge(t.Priority),
			assignee(t),
			DueStyled(t.DueDate, now),
			labels(t.Tags),
		})
	}

	var b strings.Builder
	b.WriteString(RenderTable([]string{"KEY", "TITLE", "STATUS", "PRIORITY", "ASSIGNEE", "DUE", "LABELS"}, rows))
	b.WriteString(Dim(fmt.Sprintf("Showing %d of %d tasks", len(tasks), total)))
	b.WriteString("\n")
	return b.String()
}

// FormatFilterSummary describes the active criteria on one line, or returns
// "" when nothing filters or sorts the list.
func FormatFilterSummary(st filter.State, s filter.Sort) string {
	var parts []string
	if st.Quick.View != filter.QuickNone {
		parts = append(parts, "view "+string(st.Quick.View))
	}
	if q := strings.TrimSpace(st.Query); q != "" {
		parts = append(parts, fmt.Sprintf("query %q", q))
	}
	if len(st.Statuses) > 0 {
		vals := make([]string, len(st.Statuses))
		for i, v := range st.Statuses {
			vals[i] = string(v)
		}
		parts = append(parts, "status "+strings.Join(vals, "|"))
	}
	if len(st.Priorities) > 0 {
		vals := make([]string, len(st.Priorities))
		for i, v := range st.Priorities {
			vals[i] = string(v)
		}
		parts = append(parts, "priority "+strings.Join(vals, "|"))
	}
	if len(st.Assignees) > 0 {
		parts = append(parts, "assignee "+strings.Join(st.Assignees, "|"))
	}
	if len(st.Labels) > 0 {
		parts = append(parts, "label "+strings.Join(st.Labels, "|"))
	}
	if r := formatRange(st.Created); r != "" {
		parts = append(parts, "created "+r)
	}
	if r := formatRange(st.Updated); r != "" {
		parts = append(parts, "updated "+r)
	}
	if s.Key != filter.SortNone {
		dir := ""
		if s.Reverse {
			dir = " (reversed)"
		}
		parts = append(parts, "sorted by "+string(s.Key)+dir)
	}
	if len(parts) == 0 {
		return ""
	}
	return Dim("Filters: " + strings.Join(parts, ", "))
}

// FormatQuickCounts renders "Views: assigned 4 · done 1 ..." with the active
// view highlighted. Empty when counts is nil.
func FormatQuickCounts(counts map[filter.QuickView]int, active filter.QuickView) string {
	if counts == nil {
		return ""
	}
	parts := make([]string, 0, len(filter.QuickViews))
	for _, v := range filter.QuickViews {
		part := fmt.Sprintf("%s %d", v, counts[v])
		if v == active {
			part = Bold(part)
		}
		parts = append(parts, part)
	}
	return Dim("Views: ") + strings.Join(parts, Dim(" · "))
}

// FormatSprintList renders a project's sprints.
func FormatSprintList(sprints []domain.Sprint) string {
	if len(sprints) == 0 {
		return Dim("No sprints found.") + "\n"
	}
	rows := make([][]string, 0, len(sprints))
	for _, sp := range sprints {
		rows = append(rows, []string{
			sp.ID,
			Truncate(sp.Name, 40),
			SprintStatusPill(sp.Status),
			dateOrDash(sp.StartDate),
			dateOrDash(sp.EndDate),
		})
	}
	return RenderTable([]string{"ID", "NAME", "STATUS", "START", "END"}, rows)
}

func taskKey(t domain.Task) string {
	if t.ShortKey != "" {
		return t.ShortKey
	}
	return TruncID(t.ID)
}

func assignee(t domain.Task) string {
	switch {
	case t.AssigneeName != "":
		return t.AssigneeName
	case t.AssigneeID != "":
		return TruncID(t.AssigneeID)
	default:
		return Dim("unassigned")
	}
}

func labels(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return StylePurple.Render(strings.Join(tags, ", "))
}

func dateOrDash(t *time.Time) string {
	if t == nil {
		return Dim("--")
	}
	return t.Format("2006-01-02")
}

func formatRange(r filter.DateRange) string {
	switch {
	case r.IsZero():
		return ""
	case r.From.IsZero():
		return "until " + r.To.Format("2006-01-02")
	case r.To.IsZero():
		return "from " + r.From.Format("2006-01-02")
	default:
		return r.From.Format("2006-01-02") + ".." + r.To.Format("2006-01-02")
	}
}
