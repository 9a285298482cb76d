package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/taskflow/internal/db"
	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/identity"
	"github.com/alexanderramin/taskflow/internal/migration"
	"github.com/alexanderramin/taskflow/internal/notify"
	"github.com/alexanderramin/taskflow/internal/repository"
	"github.com/rs/zerolog"
)

type sprintClosureService struct {
	gateway  SprintGateway
	ids      identity.Provider
	runs     repository.RunRepo
	uow      db.UnitOfWork
	notifier SprintNotifier
	log      zerolog.Logger
	observer UseCaseObserver
}

// NewSprintClosureService wires the migrator to the journal and notifier.
// runs, uow and notifier may be nil to disable those features.
func NewSprintClosureService(
	gateway SprintGateway,
	ids identity.Provider,
	runs repository.RunRepo,
	uow db.UnitOfWork,
	notifier SprintNotifier,
	log zerolog.Logger,
	observers ...UseCaseObserver,
) SprintClosureService {
	return &sprintClosureService{
		gateway:  gateway,
		ids:      ids,
		runs:     runs,
		uow:      uow,
		notifier: notifier,
		log:      log,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *sprintClosureService) ListSprints(ctx context.Context, projectID string) ([]domain.Sprint, error) {
	sprints, err := s.gateway.ProjectSprints(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing sprints: %w", err)
	}
	return sprints, nil
}

func (s *sprintClosureService) Open(ctx context.Context, req OpenRequest) (session *migration.Session, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"sprint_id":  req.SprintID,
		"project_id": req.ProjectID,
		"action":     string(req.Action),
	}
	defer observe(ctx, s.observer, "open-sprint-closure", startedAt, fields, &err)

	opts := []migration.Option{migration.WithObserver(migration.NewLogObserver(s.log))}
	if req.Feedback != nil {
		opts = append(opts, migration.WithFeedback(req.Feedback))
	}

	m := migration.NewMigrator(s.gateway, s.ids, opts...)
	session, err = m.Open(ctx, req.SprintID, req.ProjectID, req.Action)
	if err != nil {
		return nil, err
	}
	fields["task_count"] = len(session.Tasks())
	fields["fetch_errors"] = len(session.FetchErrors())
	return session, nil
}

// Submit runs the session's submit, then records it in the journal and
// notifies assignees when the sprint closed. Journal and notification
// problems are logged and never change the result.
func (s *sprintClosureService) Submit(ctx context.Context, session *migration.Session) (out *migration.Outcome, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"sprint_id": session.SprintID(),
		"action":    string(session.Action()),
	}
	defer observe(ctx, s.observer, "submit-sprint-closure", startedAt, fields, &err)

	out, err = session.Submit(ctx)
	if out == nil {
		return nil, err
	}
	fields["state"] = string(out.State)
	fields["warnings"] = len(out.Warnings)

	// the outcome is final; record and notify even if the caller gave up
	ctx = context.WithoutCancel(ctx)
	s.record(ctx, out)

	if out.State.Terminal() {
		fields["notified"] = s.notify(ctx, session, out)
	}
	return out, err
}

func (s *sprintClosureService) History(ctx context.Context, sprintID string, limit int) ([]*domain.MigrationRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	if sprintID != "" {
		runs, err := s.runs.ListBySprint(ctx, sprintID)
		if err != nil {
			return nil, fmt.Errorf("listing runs for sprint: %w", err)
		}
		if limit > 0 && len(runs) > limit {
			runs = runs[:limit]
		}
		return runs, nil
	}
	runs, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent runs: %w", err)
	}
	return runs, nil
}

func (s *sprintClosureService) record(ctx context.Context, out *migration.Outcome) {
	if s.uow == nil {
		return
	}
	run := RunFromOutcome(out)
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteRunRepo(tx).Create(ctx, run)
	})
	if err != nil {
		s.log.Warn().Err(err).Str("run_id", out.RunID).Msg("journal write failed")
	}
}

func (s *sprintClosureService) notify(ctx context.Context, session *migration.Session, out *migration.Outcome) int {
	if s.notifier == nil {
		return 0
	}
	name := ""
	if sprint, ok := session.Sprint(); ok {
		name = sprint.Name
	}

	res, err := s.notifier.SprintClosed(ctx, notify.SprintClosed{
		SprintID:   out.SprintID,
		SprintName: name,
		ProjectID:  out.ProjectID,
		Verb:       out.Action.Past(),
		OperatorID: out.OperatorID,
		Tasks:      session.Tasks(),
	})
	if err != nil {
		if !errors.Is(err, notify.ErrNoRecipients) {
			s.log.Warn().Err(err).Str("run_id", out.RunID).Msg("sprint notification failed")
		}
		return 0
	}

	if s.runs != nil {
		if err := s.runs.SetNotified(ctx, out.RunID, res.Delivered); err != nil {
			s.log.Warn().Err(err).Str("run_id", out.RunID).Msg("journal update failed")
		}
	}
	return res.Delivered
}

// RunFromOutcome converts a submit outcome into its journal record.
func RunFromOutcome(out *migration.Outcome) *domain.MigrationRun {
	run := &domain.MigrationRun{
		ID:         out.RunID,
		SessionID:  out.SessionID,
		SprintID:   out.SprintID,
		ProjectID:  out.ProjectID,
		Action:     string(out.Action),
		OperatorID: out.OperatorID,
		State:      string(out.State),
		StartedAt:  out.StartedAt,
		FinishedAt: out.FinishedAt,
	}
	if out.Err != nil {
		run.Error = out.Err.Error()
	}
	for _, step := range out.Steps {
		rec := domain.MigrationStep{
			Kind:           string(step.Kind),
			TargetSprintID: step.TargetSprintID,
			TaskIDs:        step.TaskIDs,
			Status:         string(step.Status),
		}
		if step.Err != nil {
			rec.Error = step.Err.Error()
		}
		run.Steps = append(run.Steps, rec)
	}
	return run
}
