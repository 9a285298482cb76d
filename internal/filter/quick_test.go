package filter

import (
	"fmt"
	"testing"
	"time"

	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quickNow = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func quickTasks() []domain.Task {
	return []domain.Task{
		{ID: "late", Title: "Late", Status: domain.TaskInProgress, AssigneeID: "me",
			DueDate: at("2024-06-10T11:59:59Z"), UpdatedAt: at("2024-06-01T00:00:00Z")},
		{ID: "due-now", Title: "Due now", Status: domain.TaskTodo, AssigneeID: "me",
			DueDate: at("2024-06-10T12:00:00Z"), UpdatedAt: at("2024-06-03T00:00:00Z")},
		{ID: "late-done", Title: "Late but done", Status: domain.TaskDone, AssigneeID: "me",
			DueDate: at("2024-06-01T00:00:00Z"), UpdatedAt: at("2024-06-05T00:00:00Z")},
		{ID: "no-due", Title: "No due date", Status: domain.TaskTodo, AssigneeID: "me"},
		{ID: "theirs", Title: "Someone else", Status: domain.TaskTodo, AssigneeID: "them",
			DueDate: at("2024-06-01T00:00:00Z"), UpdatedAt: at("2024-06-09T00:00:00Z")},
		{ID: "nobody", Title: "Unassigned", Status: domain.TaskDone,
			DueDate: at("2024-06-01T00:00:00Z")},
	}
}

func TestApply_QuickViews(t *testing.T) {
	tests := []struct {
		name     string
		view     QuickView
		operator string
		want     []string
	}{
		{"none keeps everything", QuickNone, "me", []string{"late", "due-now", "late-done", "no-due", "theirs", "nobody"}},
		{"assigned to me", QuickAssigned, "me", []string{"late", "due-now", "late-done", "no-due"}},
		{"done is mine and DONE", QuickDone, "me", []string{"late-done"}},
		{"overdue excludes due exactly now and DONE", QuickOverdue, "me", []string{"late"}},
		{"overdue only counts my tasks", QuickOverdue, "them", []string{"theirs"}},
		{"recent keeps my tasks in input order", QuickRecent, "me", []string{"late", "due-now", "late-done", "no-due"}},
		{"no operator owns nothing", QuickAssigned, "", []string{}},
		{"no operator has no recent tasks", QuickRecent, "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := State{Quick: Quick{View: tt.view, Operator: tt.operator, Now: quickNow}}
			assert.Equal(t, tt.want, ids(Apply(quickTasks(), st)))
		})
	}
}

func TestApply_OverdueBoundary(t *testing.T) {
	due := quickNow
	tests := []struct {
		name   string
		due    *time.Time
		status domain.TaskStatus
		want   bool
	}{
		{"one nanosecond before now", ptr(due.Add(-time.Nanosecond)), domain.TaskTodo, true},
		{"exactly now", ptr(due), domain.TaskTodo, false},
		{"after now", ptr(due.Add(time.Minute)), domain.TaskTodo, false},
		{"past due but DONE", ptr(due.Add(-48 * time.Hour)), domain.TaskDone, false},
		{"past due in review", ptr(due.Add(-48 * time.Hour)), domain.TaskReview, true},
		{"no due date", nil, domain.TaskTodo, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := []domain.Task{{ID: "t", Status: tt.status, AssigneeID: "me", DueDate: tt.due}}
			st := State{Quick: Quick{View: QuickOverdue, Operator: "me", Now: quickNow}}
			assert.Equal(t, tt.want, len(Apply(tasks, st)) == 1)
		})
	}
}

func TestApply_QuickViewCombinesWithOtherCriteria(t *testing.T) {
	st := State{
		Query: "due",
		Quick: Quick{View: QuickAssigned, Operator: "me", Now: quickNow},
	}
	assert.Equal(t, []string{"due-now", "no-due"}, ids(Apply(quickTasks(), st)))
}

func TestApply_RecentKeepsTopTwentyOfMine(t *testing.T) {
	var tasks []domain.Task
	for i := range 25 {
		tasks = append(tasks, domain.Task{
			ID:         fmt.Sprintf("t%02d", i),
			Title:      fmt.Sprintf("t%02d", i),
			Status:     domain.TaskTodo,
			AssigneeID: "me",
			UpdatedAt:  ptr(quickNow.Add(time.Duration(i) * time.Hour)),
		})
	}
	st := State{Quick: Quick{View: QuickRecent, Operator: "me", Now: quickNow}}

	got := Derive(tasks, st, Sort{Key: SortUpdated})
	require.Len(t, got, RecentLimit)
	assert.Equal(t, "t24", got[0].ID)
	assert.Equal(t, "t05", got[RecentLimit-1].ID)

	// the ranking runs before other criteria, so narrowing never pulls in
	// older tasks
	st.Query = "t0"
	assert.Equal(t, []string{"t05", "t06", "t07", "t08", "t09"}, ids(Apply(tasks, st)))
}

func TestQuickCounts(t *testing.T) {
	counts := QuickCounts(quickTasks(), "me", quickNow)
	assert.Equal(t, map[QuickView]int{
		QuickAssigned: 4,
		QuickDone:     1,
		QuickOverdue:  1,
		QuickRecent:   4,
	}, counts)

	assert.Equal(t, 0, QuickCounts(quickTasks(), "", quickNow)[QuickAssigned])
}

func TestParseQuickView(t *testing.T) {
	for in, want := range map[string]QuickView{
		"":               QuickNone,
		"none":           QuickNone,
		"assigned":       QuickAssigned,
		"assigned-to-me": QuickAssigned,
		"Done":           QuickDone,
		" overdue ":      QuickOverdue,
		"recent-views":   QuickRecent,
	} {
		got, err := ParseQuickView(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseQuickView("starred")
	assert.ErrorContains(t, err, "unknown view")
}

func TestState_ClearKeepsQuickOperator(t *testing.T) {
	st := State{Query: "x", Quick: Quick{View: QuickDone, Operator: "me", Now: quickNow}}
	assert.False(t, st.IsEmpty())

	st.Clear()
	assert.True(t, st.IsEmpty())
	assert.Equal(t, "me", st.Quick.Operator)
	assert.Equal(t, quickNow, st.Quick.Now)
}

func ptr(t time.Time) *time.Time { return &t }
