package filter

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/taskflow/internal/domain"
)

// QuickView is a preset scoped to the operator's own tasks. It combines with
// every other criterion of a State.
type QuickView string

const (
	QuickNone     QuickView = ""
	QuickAssigned QuickView = "assigned"
	QuickDone     QuickView = "done"
	QuickOverdue  QuickView = "overdue"
	QuickRecent   QuickView = "recent"
)

// QuickViews lists the presets in display order.
var QuickViews = []QuickView{QuickAssigned, QuickDone, QuickOverdue, QuickRecent}

// RecentLimit caps the recent view.
const RecentLimit = 20

// ParseQuickView accepts a view name, a long alias, or "none".
func ParseQuickView(s string) (QuickView, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "all":
		return QuickNone, nil
	case "assigned", "assigned-to-me", "mine":
		return QuickAssigned, nil
	case "done":
		return QuickDone, nil
	case "overdue":
		return QuickOverdue, nil
	case "recent", "recent-views":
		return QuickRecent, nil
	}
	return QuickNone, fmt.Errorf("unknown view %q (want assigned, done, overdue or recent)", s)
}

// Quick selects a preset for one operator. A zero Now means the current time.
type Quick struct {
	View     QuickView
	Operator string
	Now      time.Time
}

// IsZero reports whether no preset is selected.
func (q Quick) IsZero() bool { return q.View == QuickNone }

func (q Quick) now() time.Time {
	if q.Now.IsZero() {
		return time.Now()
	}
	return q.Now
}

// QuickCounts returns how many of tasks each preset would show for operator.
// An empty operator owns nothing.
func QuickCounts(tasks []domain.Task, operator string, now time.Time) map[QuickView]int {
	counts := make(map[QuickView]int, len(QuickViews))
	for _, v := range QuickViews {
		counts[v] = 0
	}
	for i := range tasks {
		t := &tasks[i]
		if t.ID == "" || !mine(t, operator) {
			continue
		}
		counts[QuickAssigned]++
		if t.Status == domain.TaskDone {
			counts[QuickDone]++
		}
		if overdue(t, now) {
			counts[QuickOverdue]++
		}
	}
	counts[QuickRecent] = min(RecentLimit, counts[QuickAssigned])
	return counts
}

type quickMatcher struct {
	view     QuickView
	operator string
	now      time.Time
	recent   map[string]bool
}

func newQuickMatcher(q Quick, tasks []domain.Task) quickMatcher {
	m := quickMatcher{view: q.View, operator: q.Operator, now: q.now()}
	if q.View == QuickRecent {
		m.recent = recentIDs(tasks, q.Operator)
	}
	return m
}

func (m quickMatcher) match(t *domain.Task) bool {
	switch m.view {
	case QuickNone:
		return true
	case QuickAssigned:
		return mine(t, m.operator)
	case QuickDone:
		return mine(t, m.operator) && t.Status == domain.TaskDone
	case QuickOverdue:
		return mine(t, m.operator) && overdue(t, m.now)
	case QuickRecent:
		return m.recent[t.ID]
	}
	return false
}

func mine(t *domain.Task, operator string) bool {
	return operator != "" && t.AssigneeID == operator
}

// overdue is strict: a task due exactly now is not yet overdue.
func overdue(t *domain.Task, now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != domain.TaskDone
}

// recentIDs picks the operator's most recently updated tasks. The ranking
// runs over the whole input so other criteria narrow the set, never refill it.
func recentIDs(tasks []domain.Task, operator string) map[string]bool {
	var own []*domain.Task
	for i := range tasks {
		if tasks[i].ID != "" && mine(&tasks[i], operator) {
			own = append(own, &tasks[i])
		}
	}
	slices.SortStableFunc(own, func(a, b *domain.Task) int {
		return compareTimeDesc(UpdatedTime(a), UpdatedTime(b))
	})
	ids := make(map[string]bool, min(len(own), RecentLimit))
	for _, t := range own[:min(len(own), RecentLimit)] {
		ids[t.ID] = true
	}
	return ids
}

func compareTimeDesc(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return b.Compare(*a)
}
