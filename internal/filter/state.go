// Package filter derives display-ready task lists from a raw task list, a
// filter state and a sort key. It performs no I/O.
package filter

import (
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/taskflow/internal/domain"
)

// DateRange is an inclusive range. A zero bound is unbounded on that side.
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t falls inside the range. To is widened to the
// last nanosecond of its calendar day in its own location.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(EndOfDay(r.To)) {
		return false
	}
	return true
}

// EndOfDay returns 23:59:59.999999999 on t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// State is the operator's current filter selection. Every empty criterion
// matches all tasks.
type State struct {
	Query      string
	Statuses   []domain.TaskStatus
	Assignees  []string
	Priorities []domain.Priority
	Labels     []string
	Created    DateRange
	Updated    DateRange
	Quick      Quick
}

// IsEmpty reports whether no criterion is populated.
func (s State) IsEmpty() bool {
	return strings.TrimSpace(s.Query) == "" &&
		len(s.Statuses) == 0 &&
		len(s.Assignees) == 0 &&
		len(s.Priorities) == 0 &&
		len(s.Labels) == 0 &&
		s.Created.IsZero() &&
		s.Updated.IsZero() &&
		s.Quick.IsZero()
}

// Clear resets every criterion. The operator and clock of the quick view are
// kept so a preset can be selected again.
func (s *State) Clear() {
	*s = State{Quick: Quick{Operator: s.Quick.Operator, Now: s.Quick.Now}}
}

// ToggleStatus adds status to the selection, or removes it when present.
func (s *State) ToggleStatus(status domain.TaskStatus) {
	s.Statuses = toggle(s.Statuses, status)
}

// ToggleAssignee adds or removes an assignee ID.
func (s *State) ToggleAssignee(id string) {
	s.Assignees = toggle(s.Assignees, id)
}

// TogglePriority adds or removes a priority.
func (s *State) TogglePriority(p domain.Priority) {
	s.Priorities = toggle(s.Priorities, p)
}

// ToggleLabel adds or removes a label.
func (s *State) ToggleLabel(label string) {
	s.Labels = toggle(s.Labels, label)
}

// Clone returns a deep copy so callers can keep a snapshot.
func (s State) Clone() State {
	s.Statuses = slices.Clone(s.Statuses)
	s.Assignees = slices.Clone(s.Assignees)
	s.Priorities = slices.Clone(s.Priorities)
	s.Labels = slices.Clone(s.Labels)
	return s
}

func toggle[T comparable](set []T, v T) []T {
	if i := slices.Index(set, v); i >= 0 {
		return slices.Delete(slices.Clone(set), i, i+1)
	}
	return append(slices.Clone(set), v)
}

// AvailableLabels returns the distinct non-empty tags across tasks in order
// of first appearance.
func AvailableLabels(tasks []domain.Task) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, t := range tasks {
		for _, tag := range t.Tags {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			labels = append(labels, tag)
		}
	}
	return labels
}
