package formatter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/filter"
	"github.com/alexanderramin/taskflow/internal/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelativeDateFrom(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name  string
		input time.Time
		want  string
	}{
		{"today", now, "Today"},
		{"tomorrow", now.Add(day), "Tomorrow"},
		{"yesterday", now.Add(-day), "Yesterday"},
		{"3 days future", now.Add(3 * day), "In 3d"},
		{"3 days past", now.Add(-3 * day), "3d ago"},
		{"3 weeks future", now.Add(21 * day), "In 3w"},
		{"3 months future", now.Add(90 * day), "In 3mo"},
		{"2 weeks past", now.Add(-14 * day), "2w ago"},
		{"3 months past", now.Add(-90 * day), "3mo ago"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeDateFrom(tt.input, now))
		})
	}
}

func TestTimestampFrom(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "Just now", TimestampFrom(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m ago", TimestampFrom(now.Add(-5*time.Minute), now))
	assert.Equal(t, "3h ago", TimestampFrom(now.Add(-3*time.Hour), now))
	assert.Equal(t, "Feb 5, 2026 12:00", TimestampFrom(now.Add(-48*time.Hour), now))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "…", Truncate("abc", 1))
	assert.Equal(t, "héllo", Truncate("héllo", 5), "counts runes")
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := RenderTable([]string{"A", "B"}, [][]string{{"long cell", "x"}, {"s", "y"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, strings.Index(lines[2], "x"), strings.Index(lines[3], "y"))
	assert.Empty(t, RenderTable(nil, nil))
}

func TestFormatTaskList(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tasks := []domain.Task{
		{ID: "t1", ShortKey: "WEB-1", Title: "Fix login", Status: domain.TaskInProgress, Priority: domain.PriorityHigh, AssigneeName: "Alice", Tags: []string{"bug"}},
		{ID: "t2", ShortKey: "WEB-2", Title: "Write docs", Status: domain.TaskTodo},
	}

	out := FormatTaskList(tasks, 5, now)
	assert.Contains(t, out, "WEB-1")
	assert.Contains(t, out, "Fix login")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "unassigned")
	assert.Contains(t, out, "Showing 2 of 5 tasks")

	assert.Contains(t, FormatTaskList(nil, 0, now), "No tasks found.")
	assert.Contains(t, FormatTaskList(nil, 3, now), "3 hidden")
}

func TestFormatFilterSummary(t *testing.T) {
	assert.Empty(t, FormatFilterSummary(filter.State{}, filter.Sort{}))

	st := filter.State{
		Query:    "login",
		Statuses: []domain.TaskStatus{domain.TaskTodo, domain.TaskReview},
		Created:  filter.DateRange{From: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	out := FormatFilterSummary(st, filter.Sort{Key: filter.SortDue, Reverse: true})
	assert.Contains(t, out, `query "login"`)
	assert.Contains(t, out, "status TODO|REVIEW")
	assert.Contains(t, out, "created from 2026-01-01")
	assert.Contains(t, out, "sorted by due (reversed)")

	out = FormatFilterSummary(filter.State{Quick: filter.Quick{View: filter.QuickRecent}}, filter.Sort{})
	assert.Contains(t, out, "view recent")
}

func TestFormatQuickCounts(t *testing.T) {
	assert.Empty(t, FormatQuickCounts(nil, filter.QuickNone))

	out := FormatQuickCounts(map[filter.QuickView]int{
		filter.QuickAssigned: 7,
		filter.QuickDone:     2,
		filter.QuickOverdue:  1,
		filter.QuickRecent:   7,
	}, filter.QuickDone)
	assert.Contains(t, out, "assigned 7")
	assert.Contains(t, out, "done 2")
	assert.Contains(t, out, "overdue 1")
	assert.Contains(t, out, "recent 7")
}

func TestFormatClosurePreview(t *testing.T) {
	out := FormatClosurePreview(ClosurePreview{
		SprintName: "Sprint A",
		Action:     migration.ActionCancel,
		Tasks: []domain.Task{
			{ID: "t1", Title: "one"},
			{ID: "t2", Title: "two"},
			{ID: "t3", Title: "three"},
			{ID: "t4", Title: "four"},
		},
		Choices: []migration.Choice{
			{TaskID: "t1", Destination: migration.DestinationBacklog},
			{TaskID: "t2", Destination: migration.DestinationSprint, TargetSprintID: "sprint-b"},
			{TaskID: "t3", Destination: migration.DestinationKeep},
			{TaskID: "t4", Destination: migration.DestinationSprint},
		},
		Candidates: []domain.Sprint{{ID: "sprint-b", Name: "Sprint B"}},
	})

	assert.Contains(t, out, "CANCEL SPRINT SPRINT A")
	assert.Contains(t, out, "→ backlog")
	assert.Contains(t, out, "→ Sprint B")
	assert.Contains(t, out, "keep in closed sprint")
	assert.Contains(t, out, "not chosen")

	empty := FormatClosurePreview(ClosurePreview{SprintName: "Sprint A", Action: migration.ActionDelete})
	assert.Contains(t, empty, "DELETE SPRINT")
	assert.Contains(t, empty, "No incomplete tasks")
}

func TestFormatOutcome(t *testing.T) {
	out := &migration.Outcome{
		Action: migration.ActionCancel,
		State:  migration.StatePartiallyFailed,
		Steps: []migration.StepResult{
			{Kind: migration.StepBacklog, TaskIDs: []string{"a", "b"}, Status: migration.StepOK},
			{Kind: migration.StepSprint, TaskIDs: []string{"c"}, Status: migration.StepFailed},
		},
		Warnings: []string{"Failed to move 1 task(s) to sprint Sprint B: timeout"},
	}
	got := FormatOutcome(out, 3)
	assert.Contains(t, got, "Sprint cancelled with 1 warning(s)")
	assert.Contains(t, got, "2 of 3 task(s) moved")
	assert.Contains(t, got, "Sprint B: timeout")

	failed := &migration.Outcome{Action: migration.ActionDelete, State: migration.StateFailed, Err: errors.New("Only PROJECT_OWNER may delete sprints")}
	got = FormatOutcome(failed, 0)
	assert.Contains(t, got, "Sprint was not closed")
	assert.NotContains(t, got, "PROJECT_OWNER", "the error is reported by the caller")
	assert.NotContains(t, got, "moved")
}

func TestRenderProgress(t *testing.T) {
	assert.Contains(t, RenderProgress(0.5, 10), " 50%")
	assert.Contains(t, RenderProgress(2, 4), "100%")
	assert.Contains(t, RenderProgress(-1, 4), "  0%")
}

func TestFormatHistory(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []*domain.MigrationRun{{
		SprintID:  "sprint-a",
		Action:    "delete",
		State:     "failed",
		Error:     "Only PROJECT_OWNER may delete sprints",
		StartedAt: now.Add(-2 * time.Hour),
		Steps: []domain.MigrationStep{
			{Kind: "backlog", TaskIDs: []string{"t1", "t2"}, Status: "ok"},
			{Kind: "transition", Status: "failed"},
		},
	}}
	out := FormatHistory(runs, now)
	assert.Contains(t, out, "2h ago")
	assert.Contains(t, out, "sprint-a")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "Only PROJECT_OWNER may delete sprints")

	assert.Contains(t, FormatHistory(nil, now), "No sprint closures recorded.")
}
