// Package testutil provides fixtures, fakes and database helpers for tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/google/uuid"
)

// OperatorID is a well-formed operator identifier for tests.
const OperatorID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

var testKeyCounter atomic.Int64

// Task options
type TaskOption func(*domain.Task)

func WithTaskID(id string) TaskOption {
	return func(t *domain.Task) { t.ID = id }
}

func WithStatus(s domain.TaskStatus) TaskOption {
	return func(t *domain.Task) { t.Status = s }
}

func WithAssignee(id, name string) TaskOption {
	return func(t *domain.Task) {
		t.AssigneeID = id
		t.AssigneeName = name
	}
}

func WithSprint(id string) TaskOption {
	return func(t *domain.Task) { t.SprintID = id }
}

func WithPriority(p domain.Priority) TaskOption {
	return func(t *domain.Task) { t.Priority = p }
}

func WithTags(tags ...string) TaskOption {
	return func(t *domain.Task) { t.Tags = tags }
}

func WithCreatedAt(ts time.Time) TaskOption {
	return func(t *domain.Task) { t.CreatedAt = &ts }
}

func WithDueDate(ts time.Time) TaskOption {
	return func(t *domain.Task) { t.DueDate = &ts }
}

func NewTestTask(title string, opts ...TaskOption) domain.Task {
	n := testKeyCounter.Add(1)
	t := domain.Task{
		ID:        uuid.NewString(),
		ShortKey:  fmt.Sprintf("TST-%d", n),
		Title:     title,
		Status:    domain.TaskTodo,
		Priority:  domain.PriorityMedium,
		ProjectID: "project-1",
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// Sprint options
type SprintOption func(*domain.Sprint)

func WithSprintStatus(s domain.SprintStatus) SprintOption {
	return func(sp *domain.Sprint) { sp.Status = s }
}

func WithVersion(v string) SprintOption {
	return func(sp *domain.Sprint) { sp.Version = v }
}

func WithProject(id string) SprintOption {
	return func(sp *domain.Sprint) { sp.ProjectID = id }
}

func NewTestSprint(id, name string, opts ...SprintOption) domain.Sprint {
	now := time.Now().UTC()
	end := now.AddDate(0, 0, 14)
	sp := domain.Sprint{
		ID:        id,
		Name:      name,
		Status:    domain.SprintActive,
		ProjectID: "project-1",
		StartDate: &now,
		EndDate:   &end,
	}
	for _, opt := range opts {
		opt(&sp)
	}
	return sp
}
