package filter

import (
	"slices"

	"github.com/alexanderramin/taskflow/internal/domain"
)

// View memoizes Derive. The result is recomputed only after one of its
// inputs is replaced.
type View struct {
	tasks []domain.Task
	state State
	sort  Sort

	cached []domain.Task
	dirty  bool

	computations int
}

// NewView creates a View over tasks.
func NewView(tasks []domain.Task, st State, s Sort) *View {
	return &View{tasks: tasks, state: st.Clone(), sort: s, dirty: true}
}

func (v *View) SetTasks(tasks []domain.Task) {
	v.tasks = tasks
	v.dirty = true
}

func (v *View) SetState(st State) {
	v.state = st.Clone()
	v.dirty = true
}

func (v *View) SetSort(s Sort) {
	v.sort = s
	v.dirty = true
}

func (v *View) State() State { return v.state.Clone() }

func (v *View) Sort() Sort { return v.sort }

// Tasks returns the derived list. Callers receive a copy and may modify it.
func (v *View) Tasks() []domain.Task {
	if v.dirty {
		v.cached = Derive(v.tasks, v.state, v.sort)
		v.dirty = false
		v.computations++
	}
	return slices.Clone(v.cached)
}

// Total is the number of raw tasks before filtering.
func (v *View) Total() int { return len(v.tasks) }

// AvailableLabels lists labels across the raw tasks.
func (v *View) AvailableLabels() []string { return AvailableLabels(v.tasks) }
