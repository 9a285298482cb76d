package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/taskflow/internal/db"
	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRun(id, sprintID string, started time.Time) *domain.MigrationRun {
	return &domain.MigrationRun{
		ID:         id,
		SessionID:  "session-" + id,
		SprintID:   sprintID,
		ProjectID:  "project-1",
		Action:     "cancel",
		OperatorID: testutil.OperatorID,
		State:      "partially_failed",
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Steps: []domain.MigrationStep{
			{Kind: "backlog", TaskIDs: []string{"t1", "t4"}, Status: "failed", Error: "database locked"},
			{Kind: "sprint", TargetSprintID: "sprint-b", TaskIDs: []string{"t2"}, Status: "ok"},
			{Kind: "keep", TaskIDs: []string{"t3"}, Status: "skipped"},
			{Kind: "transition", TargetSprintID: sprintID, Status: "ok"},
		},
	}
}

func TestRunRepo_CreateAndGet(t *testing.T) {
	database := testutil.NewTestDB(t)
	repo := NewSQLiteRunRepo(database)
	ctx := context.Background()

	started := time.Date(2024, 5, 10, 9, 30, 0, 123000000, time.UTC)
	run := newRun("r1", "sprint-a", started)
	require.NoError(t, repo.Create(ctx, run))

	got, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)

	assert.Equal(t, "session-r1", got.SessionID)
	assert.Equal(t, "partially_failed", got.State)
	assert.True(t, got.StartedAt.Equal(started))
	assert.Equal(t, 1500*time.Millisecond, got.Duration())
	require.Len(t, got.Steps, 4)
	assert.Equal(t, 1, got.Steps[0].Seq)
	assert.Equal(t, []string{"t1", "t4"}, got.Steps[0].TaskIDs)
	assert.Equal(t, "database locked", got.Steps[0].Error)
	assert.Equal(t, "sprint-b", got.Steps[1].TargetSprintID)
	assert.Equal(t, []string{}, got.Steps[3].TaskIDs)
	assert.True(t, got.Failed())
}

func TestRunRepo_GetByID_NotFound(t *testing.T) {
	repo := NewSQLiteRunRepo(testutil.NewTestDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunRepo_ListRecentAndBySprint(t *testing.T) {
	repo := NewSQLiteRunRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newRun("r1", "sprint-a", base)))
	require.NoError(t, repo.Create(ctx, newRun("r2", "sprint-b", base.Add(500*time.Millisecond))))
	require.NoError(t, repo.Create(ctx, newRun("r3", "sprint-a", base.Add(2*time.Second))))

	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "r3", recent[0].ID)
	assert.Equal(t, "r2", recent[1].ID)
	assert.Len(t, recent[0].Steps, 4, "steps are loaded for listed runs")

	bySprint, err := repo.ListBySprint(ctx, "sprint-a")
	require.NoError(t, err)
	require.Len(t, bySprint, 2)
	assert.Equal(t, "r3", bySprint[0].ID)
	assert.Equal(t, "r1", bySprint[1].ID)

	none, err := repo.ListBySprint(ctx, "sprint-z")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRunRepo_SetNotified(t *testing.T) {
	repo := NewSQLiteRunRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newRun("r1", "sprint-a", time.Now())))
	require.NoError(t, repo.SetNotified(ctx, "r1", 3))

	got, err := repo.GetByID(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Notified)

	assert.ErrorIs(t, repo.SetNotified(ctx, "missing", 1), domain.ErrNotFound)
}

func TestRunRepo_CreateInsideUnitOfWorkIsAtomic(t *testing.T) {
	database := testutil.NewTestDB(t)
	boom := errors.New("disk full")
	uow := &testutil.FlakyUoW{Inner: testutil.NewTestUoW(database), FailAt: 3, Err: boom}
	ctx := context.Background()

	err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return NewSQLiteRunRepo(tx).Create(ctx, newRun("r1", "sprint-a", time.Now()))
	})
	require.ErrorIs(t, err, boom)

	_, err = NewSQLiteRunRepo(database).GetByID(ctx, "r1")
	assert.ErrorIs(t, err, domain.ErrNotFound, "run rolled back with its steps")

	var steps int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM migration_steps`).Scan(&steps))
	assert.Zero(t, steps)
}
