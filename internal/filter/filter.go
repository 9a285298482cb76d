package filter

import (
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/taskflow/internal/domain"
)

// Derive applies st and then s to tasks and returns a new slice. The input
// is never modified. Tasks without an ID are dropped.
func Derive(tasks []domain.Task, st State, s Sort) []domain.Task {
	out := Apply(tasks, st)
	s.Apply(out)
	return out
}

// Apply returns the tasks matching every populated criterion of st, in
// input order.
func Apply(tasks []domain.Task, st State) []domain.Task {
	m := newMatcher(st, tasks)
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.ID == "" {
			continue
		}
		if m.match(&t) {
			out = append(out, t)
		}
	}
	return out
}

type matcher struct {
	query      string
	statuses   []domain.TaskStatus
	assignees  []string
	priorities []domain.Priority
	labels     []string
	created    DateRange
	updated    DateRange
	quick      quickMatcher
}

func newMatcher(st State, tasks []domain.Task) matcher {
	return matcher{
		query:      strings.ToLower(strings.TrimSpace(st.Query)),
		statuses:   st.Statuses,
		assignees:  st.Assignees,
		priorities: st.Priorities,
		labels:     st.Labels,
		created:    st.Created,
		updated:    st.Updated,
		quick:      newQuickMatcher(st.Quick, tasks),
	}
}

func (m matcher) match(t *domain.Task) bool {
	if m.query != "" && !matchesQuery(t, m.query) {
		return false
	}
	if len(m.statuses) > 0 && !slices.Contains(m.statuses, t.Status) {
		return false
	}
	if len(m.assignees) > 0 && (t.AssigneeID == "" || !slices.Contains(m.assignees, t.AssigneeID)) {
		return false
	}
	if len(m.priorities) > 0 && (t.Priority == "" || !slices.Contains(m.priorities, t.Priority)) {
		return false
	}
	if len(m.labels) > 0 && !slices.ContainsFunc(t.Tags, func(tag string) bool {
		return slices.Contains(m.labels, tag)
	}) {
		return false
	}
	if !inRange(t.CreatedAt, m.created) {
		return false
	}
	if !inRange(UpdatedTime(t), m.updated) {
		return false
	}
	return m.quick.match(t)
}

func matchesQuery(t *domain.Task, q string) bool {
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q) ||
		strings.Contains(strings.ToLower(t.ShortKey), q)
}

// inRange excludes tasks lacking the timestamp once the range is populated.
func inRange(ts *time.Time, r DateRange) bool {
	if r.IsZero() {
		return true
	}
	return ts != nil && r.Contains(*ts)
}

// UpdatedTime is the timestamp used for the "updated" criterion and sort
// key: UpdatedAt, or CompletedAt for services that do not report updates.
func UpdatedTime(t *domain.Task) *time.Time {
	if t.UpdatedAt != nil {
		return t.UpdatedAt
	}
	return t.CompletedAt
}
