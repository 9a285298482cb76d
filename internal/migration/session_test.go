package migration

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/identity"
	"github.com/alexanderramin/taskflow/internal/remote"
	"github.com/alexanderramin/taskflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	projectID = "project-1"
	closingID = "sprint-a"
	sprintB   = "sprint-b"
)

type fixture struct {
	gw       *testutil.FakeGateway
	feedback *testutil.RecordingFeedback
	observer *recordingObserver
	migrator *Migrator
	tasks    []domain.Task
	done     []*Outcome
}

type recordingObserver struct {
	mu          sync.Mutex
	transitions []State
	steps       []StepResult
}

func (o *recordingObserver) OnStateChange(_ string, _, to State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.transitions = append(o.transitions, to)
}

func (o *recordingObserver) OnStep(_ string, step StepResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.steps = append(o.steps, step)
}

func newFixture(t *testing.T, ids identity.Provider) *fixture {
	t.Helper()
	f := &fixture{
		gw:       testutil.NewFakeGateway(),
		feedback: &testutil.RecordingFeedback{},
		observer: &recordingObserver{},
	}
	f.tasks = []domain.Task{
		testutil.NewTestTask("task one", testutil.WithTaskID("task1"), testutil.WithSprint(closingID)),
		testutil.NewTestTask("task two", testutil.WithTaskID("task2"), testutil.WithSprint(closingID)),
		testutil.NewTestTask("task three", testutil.WithTaskID("task3"), testutil.WithSprint(closingID)),
	}
	f.gw.AddTasks(closingID, f.tasks...)
	f.gw.AddSprints(projectID,
		testutil.NewTestSprint(closingID, "Sprint A", testutil.WithVersion("v7")),
		testutil.NewTestSprint(sprintB, "Sprint B", testutil.WithSprintStatus(domain.SprintNotStarted)),
		testutil.NewTestSprint("sprint-old", "Old", testutil.WithSprintStatus(domain.SprintCompleted)),
	)
	f.migrator = NewMigrator(f.gw, ids,
		WithFeedback(f.feedback),
		WithObserver(f.observer),
		WithOnComplete(func(o *Outcome) { f.done = append(f.done, o) }),
	)
	return f
}

func (f *fixture) open(t *testing.T, action CloseAction) *Session {
	t.Helper()
	s, err := f.migrator.Open(context.Background(), closingID, projectID, action)
	require.NoError(t, err)
	require.Equal(t, StateReady, s.State())
	return s
}

func TestOpen_LoadsTasksAndCandidates(t *testing.T) {
	f := newFixture(t, identity.Static(testutil.OperatorID))
	s := f.open(t, ActionCancel)

	require.Len(t, s.Tasks(), 3)
	candidates := s.Candidates()
	require.Len(t, candidates, 1, "closing and completed sprints are not candidates")
	assert.Equal(t, sprintB, candidates[0].ID)

	sprint, ok := s.Sprint()
	require.True(t, ok)
	assert.Equal(t, "v7", sprint.Version)

	for _, c := range s.Choices() {
		assert.Equal(t, DestinationBacklog, c.Destination, "default destination")
	}
	assert.Equal(t, []State{StateFetching, StateReady}, f.observer.transitions)
	assert.Empty(t, f.gw.Calls(), "open issues no writes")
}

// lookupGateway adds single-sprint lookup to the fake.
type lookupGateway struct {
	*testutil.FakeGateway
	sprint  *domain.Sprint
	lookups int
}

func (g *lookupGateway) Sprint(context.Context, string) (*domain.Sprint, error) {
	g.lookups++
	if g.sprint == nil {
		return nil, domain.ErrNotFound
	}
	return g.sprint, nil
}

func TestOpen_LooksUpClosingSprintWhenNotListed(t *testing.T) {
	f := newFixture(t, identity.Static(testutil.OperatorID))
	f.gw.ProjectSprintsErr = errors.New("sprint service down")
	sp := testutil.NewTestSprint(closingID, "Sprint A", testutil.WithVersion("v9"))
	gw := &lookupGateway{FakeGateway: f.gw, sprint: &sp}

	m := NewMigrator(gw, identity.Static(testutil.OperatorID))
	s, err := m.Open(context.Background(), closingID, projectID, ActionCancel)
	require.NoError(t, err)

	got, ok := s.Sprint()
	require.True(t, ok)
	assert.Equal(t, "v9", got.Version)
	assert.Equal(t, 1, gw.lookups)

	_, err = s.Submit(context.Background())
	require.NoError(t, err)
	calls := f.gw.Calls()
	assert.Equal(t, "v9", calls[len(calls)-1].Version)
}

func TestOpen_ListedSprintSkipsLookup(t *testing.T) {
	f := newFixture(t, identity.Static(testutil.OperatorID))
	gw := &lookupGateway{FakeGateway: f.gw}

	m := NewMigrator(gw, identity.Static(testutil.OperatorID))
	_, err := m.Open(context.Background(), closingID, projectID, ActionCancel)
	require.NoError(t, err)
	assert.Zero(t, gw.lookups)
}

func TestOpen_DropsTasksWithoutIDAndDoneTasks(t *testing.T) {
	f := newFixture(t, identity.Static(testutil.OperatorID))
	f.gw.AddTasks(closingID,
		domain.Task{Title: "no id"},
		testutil.NewTestTask("done", testutil.WithStatus(domain.TaskDone)),
	)

	s := f.open(t, ActionCancel)
	assert.Len(t, s.Tasks(), 3)
}

func TestOpen_InvalidInput(t *testing.T) {
	f := newFixture(t, identity.Static(testutil.OperatorID))

	_, err := f.migrator.Open(context.Background(), "", projectID, ActionCancel)
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = f.migrator.Open(context.Background(), closingID, " ", ActionCancel)
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = f.migrator.Open(context.Background(), closingID, projectID, "archive")
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestOpen_FetchFailureKeepsPartialData(t *testing.T) {
	f := newFixture(t, identity.Static(testutil.OperatorID))
	f.gw.ProjectSprintsErr = errors.New("sprint service down")

	s := f.open(t, ActionCancel)

	assert.Len(t, s.Tasks(), 3)
	assert.Empty(t, s.Candidates())
	require.Len(t, s.FetchErrors(), 1)
	assert.Contains(t, s.FetchErrors()[0].Error(), "sprint service down")
	assert.ErrorIs(t, s.FetchErrors()[0], ErrLoadSprints)
	assert.NotErrorIs(t, s.FetchErrors()[0], ErrLoadTasks)
	require.Len(t, f.feedback.Errors, 1)
	assert.Contains(t, f.feedback.Errors[0], "sprint service down")
}

func TestSetChoice_Errors(t *testing.T) {
	f := newFixture(t, identity.Static(testutil.OperatorID))
	s := f.open(t, ActionCancel)

	assert.ErrorIs(t, s.SetChoice("nope", DestinationBacklog, ""), ErrUnknownTask)
	assert.ErrorIs(t, s.SetChoice("task1", DestinationSprint, "sprint-old"), ErrInvalidTarget)
	assert.ErrorIs(t, s.SetChoice("task1", DestinationSprint, closingID), ErrInvalidTarget)
	assert.ErrorIs(t, s.SetChoice("task1", "archive", ""), ErrInvalidDestination)

	require.NoError(t, s.SetChoice("task1", DestinationKeep, sprintB))
	assert.Equal(t, Choice{TaskID: "task1", Destination: DestinationKeep}, s.Choices()[0], "target cleared")
}

func TestSubmit_OrderedCallsPerDestinationGroup(t *testing.T) {
	f := newFixture(t, identity.Static(testutil.OperatorID))
	s := f.open(t, ActionCancel)

	require.NoError(t, s.SetChoice("task1", DestinationBacklog, ""))
	require.NoError(t, s.SetChoice("task2", DestinationSprint, sprintB))
	require.NoError(t, s.SetChoice("task3", DestinationKeep, ""))

	ok, reason := s.CanSubmit()
	require.True(t, ok, reason)

	out, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []testutil.Call{
		{Method: "MoveToBacklog", OperatorID: testutil.OperatorID, TaskIDs: []string{"task1"}},
		{Method: "MoveToSprint", OperatorID: testutil.OperatorID, SprintID: sprintB, TaskIDs: []string{"task2"}},
		{Method: "CancelSprint", OperatorID: testutil.OperatorID, SprintID: closingID, Version: "v7"},
	}, f.gw.Calls())

	for _, c := range f.gw.Calls() {
		assert.NotContains(t, c.TaskIDs, "task3")
	}

	assert.Equal(t, StateSucceeded, out.State)
	assert.Equal(t, StateSucceeded, s.State())
	assert.Equal(t, 2, out.MovedCount())
	require.Len(t, out.Steps, 4)
	assert.Equal(t, StepKeep, out.Steps[2].Kind)
	assert.Equal(t, StepSkipped, out.Steps[2].Status)
	assert.Equal(t, []string{"Sprint cancelled"}, f.feedback.Successes)
	assert.Len(t, f.feedback.Infos, 1)
	require.Len(t, f.done, 1, "completion callback runs once")
	assert.Same(t, out, f.done[0])

	assert.ErrorIs(t, s.SetChoice("task1", DestinationKeep, ""), ErrSessionClosed)
	_, err = s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Len(t, f.gw.Calls(), 3)
}

// cancelAfterBacklog cancels the submit context as soon as the backlog move
// returns, the way an operator's interrupt would.
type cancelAfterBacklog struct {
	*remote.Client
	cancel context.CancelFunc
}

func (g *cancelAfterBacklog) MoveToBacklog(ctx context.Context, operatorID string, taskIDs []string) error {
	err := g.Client.MoveToBacklog(ctx, operatorID, taskIDs)
	g.cancel()
	return err
}

func TestSubmit_CallerCancellationDoesNotInterruptRequests(t *testing.T) {
	backend := testutil.NewFakeBackend(t)
	backend.AddSprints(
		testutil.NewTestSprint(closingID, "Sprint A", testutil.WithVersion("4")),
		testutil.NewTestSprint(sprintB, "Sprint B", testutil.WithSprintStatus(domain.SprintNotStarted)),
	)
	backend.AddTasks(
		testutil.NewTestTask("task one", testutil.WithTaskID("task1"), testutil.WithSprint(closingID)),
		testutil.NewTestTask("task two", testutil.WithTaskID("task2"), testutil.WithSprint(closingID)),
	)

	cfg := remote.DefaultConfig()
	cfg.SprintsURL = backend.URL()
	cfg.TasksURL = backend.URL()
	cfg.Timeout = 2 * time.Second
	cfg.MaxRetries = 0

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gw := &cancelAfterBacklog{Client: remote.NewClient(cfg, nil), cancel: cancel}

	s, err := NewMigrator(gw, identity.Static(testutil.OperatorID)).Open(ctx, closingID, projectID, ActionCancel)
	require.NoError(t, err)
	require.NoError(t, s.SetChoice("task2", DestinationSprint, sprintB))

	out, err := s.Submit(ctx)
	require.NoError(t, err)
	require.Error(t, ctx.Err(), "caller context was cancelled mid-submit")
	assert.Equal(t, StateSucceeded, out.State)
	assert.Empty(t, out.Warnings)

	var writes []string
	for _, r := range backend.Requests() {
		if r.Method != http.MethodGet {
			writes = append(writes, r.Route)
		}
	}
	assert.Equal(t, []string{
		testutil.RouteMoveToBacklog,
		testutil.RouteMoveToSprint,
		testutil.RouteCancelSprint,
	}, writes)

	sp, ok := backend.Sprint(closingID)
	require.True(t, ok)
	assert.Equal(t, domain.SprintCancelled, sp.Status)
}

func TestSubmit_SprintWithoutTargetIsDisabled(t *testing.T) {
	f := newFixture(t, identity.Static(testutil.OperatorID))
	s := f.open(t, ActionCancel)

	require.NoError(t, s.SetChoice("task2", DestinationSprint, ""))

	ok, reason := s.CanSubmit()
	assert.False(t, ok)
	assert.Contains(t, reason, "choices[task2].target_sprint_id")

	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrIncompletePlan)
	assert.Empty(t, f.gw.Calls())
	assert.Equal(t, StateReady, s.State())
}

func TestSubmit_BacklogFailureDoesNotBlockLaterSteps(t *testing.T) {
	f := newFixture(t, identity.Static(testutil.OperatorID))
	f.gw.MoveToBacklogErr = &remote.APIError{Op: "move to backlog", StatusCode: http.StatusInternalServerError, Message: "database locked"}
	s := f.open(t, ActionCancel)

	require.NoError(t, s.SetChoice("task2", DestinationSprint, sprintB))

	out, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"MoveToBacklog", "MoveToSprint", "CancelSprint"}, f.gw.Methods())
	assert.Equal(t, StatePartiallyFailed, out.State)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "database locked")
	assert.Equal(t, StepFailed, out.Steps[0].Status)
	assert.Equal(t, StepOK, out.Steps[1].Status)
	assert.Len(t, f.feedback.Warnings, 2, "step warning and summary")
	assert.Len(t, f.done, 1)
}

func TestSubmit_AuthorizationRejectionSurfacedVerbatim(t *testing.T) {
	const msg = "Only PROJECT_OWNER may delete sprints"

	f := newFixture(t, identity.Static(testutil.OperatorID))
	f.gw.SoftDeleteSprintErr = &remote.APIError{Op: "delete sprint", StatusCode: http.StatusForbidden, Message: msg}
	s := f.open(t, ActionDelete)

	require.NoError(t, s.SetChoice("task3", DestinationKeep, ""))

	out, err := s.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, msg, err.Error())
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, []string{msg}, f.feedback.Errors)

	methods := f.gw.Methods()
	assert.Equal(t, "SoftDeleteSprint", methods[len(methods)-1], "no calls after the transition")
	assert.Equal(t, StateFailed, out.State)
	assert.Equal(t, StateFailed, s.State())
	assert.Empty(t, f.done)

	// session stays open for a retry
	f.gw.SoftDeleteSprintErr = nil
	out, err = s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSucceeded, out.State)
}

func TestSubmit_StaleVersionIsConflict(t *testing.T) {
	f := newFixture(t, identity.Static(testutil.OperatorID))
	f.gw.CancelSprintErr = &remote.APIError{Op: "cancel sprint", StatusCode: http.StatusPreconditionFailed, Message: "version mismatch"}
	s := f.open(t, ActionCancel)

	_, err := s.Submit(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NotErrorIs(t, err, domain.ErrForbidden)

	calls := f.gw.Calls()
	assert.Equal(t, "v7", calls[len(calls)-1].Version)
	assert.Equal(t, StateFailed, s.State())
}

func TestSubmit_OperatorValidation(t *testing.T) {
	tests := []struct {
		name string
		ids  identity.Provider
		want error
	}{
		{"missing", identity.Static(""), ErrNoOperator},
		{"malformed", identity.Static("alice"), ErrInvalidOperator},
		{"nil uuid", identity.Static("00000000-0000-0000-0000-000000000000"), ErrInvalidOperator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.ids)
			s := f.open(t, ActionCancel)

			_, err := s.Submit(context.Background())
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.gw.Calls())
			assert.Equal(t, StateReady, s.State())
			assert.Len(t, f.feedback.Errors, 1)
		})
	}
}

func TestSubmit_NoTasksOnlyTransitions(t *testing.T) {
	f := newFixture(t, identity.Static(testutil.OperatorID))
	s, err := f.migrator.Open(context.Background(), "sprint-empty", projectID, ActionDelete)
	require.NoError(t, err)

	_, err = s.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []testutil.Call{
		{Method: "SoftDeleteSprint", OperatorID: testutil.OperatorID, SprintID: "sprint-empty"},
	}, f.gw.Calls())
}

func TestSubmit_ObserverSeesEveryTransitionAndStep(t *testing.T) {
	f := newFixture(t, identity.Static(testutil.OperatorID))
	s := f.open(t, ActionCancel)

	_, err := s.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []State{StateFetching, StateReady, StateSubmitting, StateSucceeded}, f.observer.transitions)
	require.Len(t, f.observer.steps, 2)
	assert.Equal(t, StepBacklog, f.observer.steps[0].Kind)
	assert.Equal(t, StepTransition, f.observer.steps[1].Kind)
}

// blockingGateway holds MoveToBacklog until released.
type blockingGateway struct {
	*testutil.FakeGateway
	started chan struct{}
	release chan struct{}
}

func (b *blockingGateway) MoveToBacklog(ctx context.Context, operatorID string, taskIDs []string) error {
	close(b.started)
	<-b.release
	return b.FakeGateway.MoveToBacklog(ctx, operatorID, taskIDs)
}

func TestSubmit_InFlightGuards(t *testing.T) {
	f := newFixture(t, identity.Static(testutil.OperatorID))
	gw := &blockingGateway{FakeGateway: f.gw, started: make(chan struct{}), release: make(chan struct{})}
	m := NewMigrator(gw, identity.Static(testutil.OperatorID))

	s, err := m.Open(context.Background(), closingID, projectID, ActionCancel)
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Submit(context.Background())
		errc <- err
	}()

	select {
	case <-gw.started:
	case <-time.After(2 * time.Second):
		t.Fatal("submit did not start")
	}

	assert.Equal(t, StateSubmitting, s.State())
	assert.ErrorIs(t, s.Close(), ErrSubmitInFlight)
	_, err = s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.ErrorIs(t, s.SetChoice("task1", DestinationKeep, ""), ErrSubmitInFlight)
	ok, _ := s.CanSubmit()
	assert.False(t, ok)

	close(gw.release)
	require.NoError(t, <-errc)
	assert.Equal(t, []string{"MoveToBacklog", "CancelSprint"}, f.gw.Methods())
}

func TestClose_DiscardsSession(t *testing.T) {
	f := newFixture(t, identity.Static(testutil.OperatorID))
	s := f.open(t, ActionCancel)

	require.NoError(t, s.Close())
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Empty(t, f.gw.Calls())
}
