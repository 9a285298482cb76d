package migration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/identity"
	"github.com/google/uuid"
)

// Migrator opens migration sessions against a Gateway.
type Migrator struct {
	gateway    Gateway
	identity   identity.Provider
	feedback   Feedback
	observer   Observer
	onComplete func(*Outcome)
	now        func() time.Time
	newID      func() string
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithFeedback sets where operator-facing messages go.
func WithFeedback(f Feedback) Option {
	return func(m *Migrator) { m.feedback = f }
}

// WithObserver sets the session event observer.
func WithObserver(o Observer) Option {
	return func(m *Migrator) { m.observer = o }
}

// WithOnComplete registers a callback run after a sprint is closed, typically
// to refresh the caller's view.
func WithOnComplete(fn func(*Outcome)) Option {
	return func(m *Migrator) { m.onComplete = fn }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Migrator) { m.now = now }
}

// NewMigrator creates a Migrator.
func NewMigrator(gateway Gateway, ids identity.Provider, opts ...Option) *Migrator {
	m := &Migrator{
		gateway:  gateway,
		identity: ids,
		feedback: NoopFeedback{},
		observer: NoopObserver{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open starts a session for closing sprintID. It fetches the sprint's
// incomplete tasks and the project's sprints; a failed fetch is reported
// through Feedback and the session is still returned ready with whatever
// data was loaded.
func (m *Migrator) Open(ctx context.Context, sprintID, projectID string, action CloseAction) (*Session, error) {
	sprintID = strings.TrimSpace(sprintID)
	projectID = strings.TrimSpace(projectID)
	if sprintID == "" || projectID == "" {
		return nil, ErrMissingID
	}
	if _, err := ParseCloseAction(string(action)); err != nil {
		return nil, fmt.Errorf("%w %q", err, action)
	}

	s := &Session{
		m:         m,
		id:        m.newID(),
		sprintID:  sprintID,
		projectID: projectID,
		action:    action,
		state:     StateIdle,
	}
	s.transition(StateFetching)

	tasks, err := m.gateway.IncompleteTasks(ctx, sprintID)
	if err != nil {
		s.fetchErrs = append(s.fetchErrs, fmt.Errorf("%w: %w", ErrLoadTasks, err))
		m.feedback.Error("Failed to load incomplete tasks: " + err.Error())
	}

	sprints, err := m.gateway.ProjectSprints(ctx, projectID)
	if err != nil {
		s.fetchErrs = append(s.fetchErrs, fmt.Errorf("%w: %w", ErrLoadSprints, err))
		m.feedback.Error("Failed to load sprints: " + err.Error())
	}

	s.load(tasks, sprints)
	if s.sprint == nil {
		s.lookupSprint(ctx)
	}
	s.transition(StateReady)
	return s, nil
}

// lookupSprint fetches the closing sprint on its own. Without it the
// transition is sent without a version precondition.
func (s *Session) lookupSprint(ctx context.Context) {
	lookup, ok := s.m.gateway.(SprintLookup)
	if !ok {
		return
	}
	sp, err := lookup.Sprint(ctx, s.sprintID)
	if err != nil || sp == nil {
		return
	}
	s.sprint = sp
}

func (s *Session) load(tasks []domain.Task, sprints []domain.Sprint) {
	seen := make(map[string]bool)
	for _, t := range tasks {
		if t.ID == "" || seen[t.ID] || !t.Incomplete() {
			continue
		}
		seen[t.ID] = true
		s.tasks = append(s.tasks, t)
		s.choices = append(s.choices, Choice{TaskID: t.ID, Destination: DestinationBacklog})
	}

	for _, sp := range sprints {
		if sp.ID == s.sprintID {
			closing := sp
			s.sprint = &closing
			continue
		}
		if sp.ID != "" && sp.AcceptsMigratedTasks() {
			s.candidates = append(s.candidates, sp)
		}
	}
}
