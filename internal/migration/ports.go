package migration

import (
	"context"

	"github.com/alexanderramin/taskflow/internal/domain"
)

// Gateway is the subset of the sprint service a migration needs.
type Gateway interface {
	IncompleteTasks(ctx context.Context, sprintID string) ([]domain.Task, error)
	ProjectSprints(ctx context.Context, projectID string) ([]domain.Sprint, error)

	MoveToBacklog(ctx context.Context, operatorID string, taskIDs []string) error
	MoveToSprint(ctx context.Context, operatorID, sprintID string, taskIDs []string) error

	// CancelSprint and SoftDeleteSprint send expectedVersion as a
	// precondition when it is non-empty.
	CancelSprint(ctx context.Context, operatorID, sprintID, expectedVersion string) error
	SoftDeleteSprint(ctx context.Context, operatorID, sprintID, expectedVersion string) error
}

// SprintLookup is implemented by gateways that can fetch one sprint. Open
// uses it when the project listing does not include the closing sprint.
type SprintLookup interface {
	Sprint(ctx context.Context, sprintID string) (*domain.Sprint, error)
}

// Feedback shows short operator-facing messages.
type Feedback interface {
	Info(msg string)
	Success(msg string)
	Warn(msg string)
	Error(msg string)
}

// NoopFeedback discards all messages.
type NoopFeedback struct{}

func (NoopFeedback) Info(string)    {}
func (NoopFeedback) Success(string) {}
func (NoopFeedback) Warn(string)    {}
func (NoopFeedback) Error(string)   {}
