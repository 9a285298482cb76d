package migration

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/identity"
)

// Session is one open migration dialog. It is safe for concurrent use so a
// UI can poll State and CanSubmit while Submit runs.
type Session struct {
	m *Migrator

	mu         sync.Mutex
	id         string
	sprintID   string
	projectID  string
	action     CloseAction
	state      State
	sprint     *domain.Sprint
	tasks      []domain.Task
	candidates []domain.Sprint
	choices    []Choice
	fetchErrs  []error
	submitting bool
	closed     bool
	last       *Outcome
}

func (s *Session) ID() string          { return s.id }
func (s *Session) SprintID() string    { return s.sprintID }
func (s *Session) ProjectID() string   { return s.projectID }
func (s *Session) Action() CloseAction { return s.action }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Sprint returns the closing sprint's record when the project listing
// contained it.
func (s *Session) Sprint() (domain.Sprint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sprint == nil {
		return domain.Sprint{}, false
	}
	return *s.sprint, true
}

// Tasks returns the incomplete tasks being migrated.
func (s *Session) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Candidates returns the sprints that may receive tasks.
func (s *Session) Candidates() []domain.Sprint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.candidates)
}

// Choices returns the current choice per task, in task order.
func (s *Session) Choices() []Choice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.choices)
}

// FetchErrors returns the errors from Open's fetches, if any. They wrap
// ErrLoadTasks or ErrLoadSprints.
func (s *Session) FetchErrors() []error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.fetchErrs)
}

// Outcome returns the result of the most recent Submit, or nil.
func (s *Session) Outcome() *Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// SetChoice records the destination for one task. The target is ignored
// unless destination is DestinationSprint. An empty target is accepted but
// blocks submission until filled in.
func (s *Session) SetChoice(taskID string, dest Destination, targetSprintID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editableLocked(); err != nil {
		return err
	}
	if !dest.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidDestination, dest)
	}

	i := slices.IndexFunc(s.choices, func(c Choice) bool { return c.TaskID == taskID })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTask, taskID)
	}

	if dest != DestinationSprint {
		targetSprintID = ""
	}
	if targetSprintID != "" && !s.isCandidateLocked(targetSprintID) {
		return fmt.Errorf("%w: %s", ErrInvalidTarget, targetSprintID)
	}

	s.choices[i] = Choice{TaskID: taskID, Destination: dest, TargetSprintID: targetSprintID}
	return nil
}

// SetAll applies the same destination to every task.
func (s *Session) SetAll(dest Destination, targetSprintID string) error {
	for _, c := range s.Choices() {
		if err := s.SetChoice(c.TaskID, dest, targetSprintID); err != nil {
			return err
		}
	}
	return nil
}

// CanSubmit reports whether Submit would issue requests, and if not, why.
func (s *Session) CanSubmit() (bool, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.submitting {
		return false, "submission in progress"
	}
	if err := s.editableLocked(); err != nil {
		return false, err.Error()
	}
	if err := ValidatePlan(s.choices, s.isCandidateLocked); err != nil {
		return false, err.Error()
	}
	return true, ""
}

// Plan returns the batched requests the current choices produce.
func (s *Session) Plan() Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Partition(s.choices)
}

// Close discards the session. It fails while a submit is running; there is
// no cancellation once requests have started.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return ErrSubmitInFlight
	}
	s.closed = true
	return nil
}

// Submit moves every task per its choice and then closes the sprint.
//
// Validation failures return before any request. A failed move is recorded
// as a warning and does not stop later steps. A failed transition leaves the
// session in StateFailed so Submit can be called again; the returned error
// is the service's rejection unchanged.
//
// Once requests start, cancelling ctx has no effect: every group and the
// transition are sent. Each request is still bounded by the gateway's own
// timeout.
func (s *Session) Submit(ctx context.Context) (*Outcome, error) {
	m := s.m

	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if err := s.editableLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	operatorID, err := s.resolveOperator()
	if err != nil {
		s.mu.Unlock()
		m.feedback.Error(err.Error())
		return nil, err
	}

	if err := ValidatePlan(s.choices, s.isCandidateLocked); err != nil {
		s.mu.Unlock()
		wrapped := fmt.Errorf("%w: %w", ErrIncompletePlan, err)
		m.feedback.Error(wrapped.Error())
		return nil, wrapped
	}

	plan := Partition(s.choices)
	version := ""
	if s.sprint != nil {
		version = s.sprint.Version
	}
	s.submitting = true
	s.mu.Unlock()

	s.transition(StateSubmitting)
	ctx = context.WithoutCancel(ctx)

	out := &Outcome{
		RunID:      m.newID(),
		SessionID:  s.id,
		Action:     s.action,
		SprintID:   s.sprintID,
		ProjectID:  s.projectID,
		OperatorID: operatorID,
		StartedAt:  m.now(),
	}

	s.runMoves(ctx, operatorID, plan, out)

	transitionErr := s.runTransition(ctx, operatorID, version, out)
	out.FinishedAt = m.now()

	switch {
	case transitionErr != nil:
		out.State = StateFailed
		out.Err = transitionErr
	case len(out.Warnings) > 0:
		out.State = StatePartiallyFailed
	default:
		out.State = StateSucceeded
	}

	s.mu.Lock()
	s.submitting = false
	s.last = out
	if out.State.Terminal() {
		s.closed = true
	}
	s.mu.Unlock()

	s.transition(out.State)

	if transitionErr != nil {
		return out, transitionErr
	}

	if out.State == StatePartiallyFailed {
		m.feedback.Warn(fmt.Sprintf("Sprint %s with %d warning(s)", s.action.Past(), len(out.Warnings)))
	} else {
		m.feedback.Success(fmt.Sprintf("Sprint %s", s.action.Past()))
	}
	if m.onComplete != nil {
		m.onComplete(out)
	}
	return out, nil
}

func (s *Session) runMoves(ctx context.Context, operatorID string, plan Plan, out *Outcome) {
	m := s.m

	if len(plan.Backlog) > 0 {
		err := m.gateway.MoveToBacklog(ctx, operatorID, plan.Backlog)
		s.record(out, StepResult{Kind: StepBacklog, TaskIDs: plan.Backlog}, err,
			fmt.Sprintf("Failed to move %d task(s) to backlog", len(plan.Backlog)))
	}

	for _, g := range plan.Sprints {
		err := m.gateway.MoveToSprint(ctx, operatorID, g.SprintID, g.TaskIDs)
		s.record(out, StepResult{Kind: StepSprint, TargetSprintID: g.SprintID, TaskIDs: g.TaskIDs}, err,
			fmt.Sprintf("Failed to move %d task(s) to sprint %s", len(g.TaskIDs), s.sprintName(g.SprintID)))
	}

	if len(plan.Keep) > 0 {
		step := StepResult{Kind: StepKeep, TaskIDs: plan.Keep, Status: StepSkipped}
		out.Steps = append(out.Steps, step)
		m.observer.OnStep(s.id, step)
		m.feedback.Info(fmt.Sprintf("%d task(s) stay in the closed sprint", len(plan.Keep)))
	}
}

func (s *Session) runTransition(ctx context.Context, operatorID, version string, out *Outcome) error {
	m := s.m

	var err error
	switch s.action {
	case ActionDelete:
		err = m.gateway.SoftDeleteSprint(ctx, operatorID, s.sprintID, version)
	default:
		err = m.gateway.CancelSprint(ctx, operatorID, s.sprintID, version)
	}

	step := StepResult{Kind: StepTransition, TargetSprintID: s.sprintID, Status: StepOK}
	if err != nil {
		step.Status = StepFailed
		step.Err = err
	}
	out.Steps = append(out.Steps, step)
	m.observer.OnStep(s.id, step)

	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			m.feedback.Error("Sprint changed since it was loaded; reopen and try again: " + err.Error())
		} else {
			m.feedback.Error(err.Error())
		}
	}
	return err
}

func (s *Session) record(out *Outcome, step StepResult, err error, failMsg string) {
	m := s.m

	step.Status = StepOK
	if err != nil {
		step.Status = StepFailed
		step.Err = err
		warning := failMsg + ": " + err.Error()
		out.Warnings = append(out.Warnings, warning)
		m.feedback.Warn(warning)
	}
	out.Steps = append(out.Steps, step)
	m.observer.OnStep(s.id, step)
}

func (s *Session) transition(to State) {
	s.mu.Lock()
	from := s.state
	s.state = to
	s.mu.Unlock()
	s.m.observer.OnStateChange(s.id, from, to)
}

func (s *Session) resolveOperator() (string, error) {
	id, err := identity.Resolve(s.m.identity)
	switch {
	case errors.Is(err, identity.ErrMissing):
		return "", ErrNoOperator
	case err != nil:
		return "", fmt.Errorf("%w: %w", ErrInvalidOperator, err)
	}
	return id, nil
}

func (s *Session) editableLocked() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.submitting {
		return ErrSubmitInFlight
	}
	if s.state != StateReady && s.state != StateFailed {
		return ErrNotReady
	}
	return nil
}

func (s *Session) isCandidateLocked(sprintID string) bool {
	return slices.ContainsFunc(s.candidates, func(sp domain.Sprint) bool { return sp.ID == sprintID })
}

func (s *Session) sprintName(sprintID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sp := range s.candidates {
		if sp.ID == sprintID && sp.Name != "" {
			return sp.Name
		}
	}
	return sprintID
}
