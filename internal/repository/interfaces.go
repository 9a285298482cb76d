package repository

import (
	"context"

	"github.com/alexanderramin/taskflow/internal/domain"
)

// RunRepo persists the migration audit journal.
type RunRepo interface {
	// Create inserts a run and all of its steps. Callers wrap it in a
	// unit of work so both land together.
	Create(ctx context.Context, run *domain.MigrationRun) error
	GetByID(ctx context.Context, id string) (*domain.MigrationRun, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.MigrationRun, error)
	ListBySprint(ctx context.Context, sprintID string) ([]*domain.MigrationRun, error)
	SetNotified(ctx context.Context, id string, count int) error
}
