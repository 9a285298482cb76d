package testutil

import (
	"context"
	"slices"
	"sync"

	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/remote"
)

// Call records one write made against a FakeGateway.
type Call struct {
	Method     string
	OperatorID string
	SprintID   string
	TaskIDs    []string
	Version    string
	ProjectID  string
}

// FakeGateway is an in-memory sprint service that records every write.
type FakeGateway struct {
	mu      sync.Mutex
	tasks         map[string][]domain.Task   // sprintID -> incomplete tasks
	projectTasks  map[string][]domain.Task   // projectID -> all tasks
	sprints       map[string][]domain.Sprint // projectID -> sprints
	notifications []remote.Notification
	calls         []Call

	// Error injection for testing
	IncompleteTasksErr  error
	ProjectSprintsErr   error
	MoveToBacklogErr    error
	MoveToSprintErr     map[string]error // target sprintID -> error
	CancelSprintErr     error
	SoftDeleteSprintErr error
	ProjectTasksErr     error
	DeleteProjectErr    error
	NotificationErr     map[string]error // recipient -> error
}

// NewFakeGateway creates an empty FakeGateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		tasks:           make(map[string][]domain.Task),
		projectTasks:    make(map[string][]domain.Task),
		sprints:         make(map[string][]domain.Sprint),
		MoveToSprintErr: make(map[string]error),
		NotificationErr: make(map[string]error),
	}
}

// AddTasks adds incomplete tasks to a sprint.
func (f *FakeGateway) AddTasks(sprintID string, tasks ...domain.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[sprintID] = append(f.tasks[sprintID], tasks...)
}

// AddProjectTasks adds tasks to a project's full task list.
func (f *FakeGateway) AddProjectTasks(projectID string, tasks ...domain.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projectTasks[projectID] = append(f.projectTasks[projectID], tasks...)
}

// Notifications returns the notifications delivered so far.
func (f *FakeGateway) Notifications() []remote.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.notifications)
}

// AddSprints adds sprints to a project.
func (f *FakeGateway) AddSprints(projectID string, sprints ...domain.Sprint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sprints[projectID] = append(f.sprints[projectID], sprints...)
}

// Calls returns the writes made so far, in order.
func (f *FakeGateway) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Methods returns just the method names of Calls.
func (f *FakeGateway) Methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Method
	}
	return out
}

func (f *FakeGateway) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.TaskIDs = slices.Clone(c.TaskIDs)
	f.calls = append(f.calls, c)
}

func (f *FakeGateway) IncompleteTasks(ctx context.Context, sprintID string) ([]domain.Task, error) {
	if f.IncompleteTasksErr != nil {
		return nil, f.IncompleteTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tasks[sprintID]), nil
}

func (f *FakeGateway) ProjectSprints(ctx context.Context, projectID string) ([]domain.Sprint, error) {
	if f.ProjectSprintsErr != nil {
		return nil, f.ProjectSprintsErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.sprints[projectID]), nil
}

func (f *FakeGateway) MoveToBacklog(ctx context.Context, operatorID string, taskIDs []string) error {
	f.record(Call{Method: "MoveToBacklog", OperatorID: operatorID, TaskIDs: taskIDs})
	return f.MoveToBacklogErr
}

func (f *FakeGateway) MoveToSprint(ctx context.Context, operatorID, sprintID string, taskIDs []string) error {
	f.record(Call{Method: "MoveToSprint", OperatorID: operatorID, SprintID: sprintID, TaskIDs: taskIDs})
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.MoveToSprintErr[sprintID]
}

func (f *FakeGateway) CancelSprint(ctx context.Context, operatorID, sprintID, expectedVersion string) error {
	f.record(Call{Method: "CancelSprint", OperatorID: operatorID, SprintID: sprintID, Version: expectedVersion})
	return f.CancelSprintErr
}

func (f *FakeGateway) SoftDeleteSprint(ctx context.Context, operatorID, sprintID, expectedVersion string) error {
	f.record(Call{Method: "SoftDeleteSprint", OperatorID: operatorID, SprintID: sprintID, Version: expectedVersion})
	return f.SoftDeleteSprintErr
}

func (f *FakeGateway) ProjectTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	if f.ProjectTasksErr != nil {
		return nil, f.ProjectTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.projectTasks[projectID]), nil
}

// SprintTasks returns the project tasks that belong to sprintID.
func (f *FakeGateway) SprintTasks(ctx context.Context, sprintID string) ([]domain.Task, error) {
	if f.ProjectTasksErr != nil {
		return nil, f.ProjectTasksErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Task
	for _, tasks := range f.projectTasks {
		for _, t := range tasks {
			if t.SprintID == sprintID {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *FakeGateway) DeleteProject(ctx context.Context, operatorID, projectID string) error {
	f.record(Call{Method: "DeleteProject", OperatorID: operatorID, ProjectID: projectID})
	return f.DeleteProjectErr
}

func (f *FakeGateway) CreateNotification(ctx context.Context, operatorID string, n remote.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.NotificationErr[n.RecipientUserID]; err != nil {
		return err
	}
	f.notifications = append(f.notifications, n)
	return nil
}

// RecordingFeedback collects operator-facing messages by level.
type RecordingFeedback struct {
	mu        sync.Mutex
	Infos     []string
	Successes []string
	Warnings  []string
	Errors    []string
}

func (r *RecordingFeedback) Info(msg string)    { r.add(&r.Infos, msg) }
func (r *RecordingFeedback) Success(msg string) { r.add(&r.Successes, msg) }
func (r *RecordingFeedback) Warn(msg string)    { r.add(&r.Warnings, msg) }
func (r *RecordingFeedback) Error(msg string)   { r.add(&r.Errors, msg) }

func (r *RecordingFeedback) add(dst *[]string, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	*dst = append(*dst, msg)
}
