package service

import (
	"context"

	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/filter"
	"github.com/alexanderramin/taskflow/internal/migration"
	"github.com/alexanderramin/taskflow/internal/notify"
)

// SprintGateway is the sprint service as the closure use case sees it.
type SprintGateway interface {
	migration.Gateway
}

// TaskSource lists tasks from the task service.
type TaskSource interface {
	ProjectTasks(ctx context.Context, projectID string) ([]domain.Task, error)
	SprintTasks(ctx context.Context, sprintID string) ([]domain.Task, error)
}

// ProjectGateway deletes projects on the project service.
type ProjectGateway interface {
	DeleteProject(ctx context.Context, operatorID, projectID string) error
}

// SprintNotifier informs assignees after a sprint closes.
type SprintNotifier interface {
	SprintClosed(ctx context.Context, ev notify.SprintClosed) (notify.Result, error)
}

// OpenRequest identifies the sprint to close.
type OpenRequest struct {
	SprintID  string
	ProjectID string
	Action    migration.CloseAction
	Feedback  migration.Feedback // nil discards messages
}

type SprintClosureService interface {
	ListSprints(ctx context.Context, projectID string) ([]domain.Sprint, error)
	Open(ctx context.Context, req OpenRequest) (*migration.Session, error)
	Submit(ctx context.Context, session *migration.Session) (*migration.Outcome, error)
	History(ctx context.Context, sprintID string, limit int) ([]*domain.MigrationRun, error)
}

// TaskListing is a filtered, sorted view over a task list.
type TaskListing struct {
	Tasks  []domain.Task
	Total  int
	Labels []string
	// Quick counts each quick view over the unfiltered list. Nil when the
	// operator is unknown.
	Quick map[filter.QuickView]int
}

// Scope selects a task list. SprintID wins when both are set.
type Scope struct {
	ProjectID string
	SprintID  string
}

type TaskQueryService interface {
	ProjectTasks(ctx context.Context, projectID string, st filter.State, s filter.Sort) (*TaskListing, error)
	SprintTasks(ctx context.Context, sprintID string, st filter.State, s filter.Sort) (*TaskListing, error)

	// Browse loads the scope's tasks once and returns a View the caller
	// re-filters locally.
	Browse(ctx context.Context, scope Scope) (*filter.View, error)
}

type ProjectService interface {
	Delete(ctx context.Context, projectID string) error
}
