package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/filter"
	"github.com/alexanderramin/taskflow/internal/identity"
)

type taskQueryService struct {
	tasks    TaskSource
	ids      identity.Provider
	observer UseCaseObserver
	now      func() time.Time
}

// NewTaskQueryService builds the read side. ids scopes the quick views to the
// operator; listings without a quick view work without one.
func NewTaskQueryService(tasks TaskSource, ids identity.Provider, observers ...UseCaseObserver) TaskQueryService {
	return &taskQueryService{
		tasks:    tasks,
		ids:      ids,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

func (s *taskQueryService) ProjectTasks(ctx context.Context, projectID string, st filter.State, sort filter.Sort) (listing *TaskListing, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": projectID, "sort": string(sort.Key)}
	defer observe(ctx, s.observer, "project-tasks", startedAt, fields, &err)

	if err := s.scopeQuick(&st); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ProjectTasks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading project tasks: %w", err)
	}
	listing = derive(tasks, st, sort)
	if st.Quick.View != filter.QuickNone {
		fields["view"] = string(st.Quick.View)
	}
	fields["total"] = listing.Total
	fields["shown"] = len(listing.Tasks)
	return listing, nil
}

func (s *taskQueryService) SprintTasks(ctx context.Context, sprintID string, st filter.State, sort filter.Sort) (listing *TaskListing, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"sprint_id": sprintID, "sort": string(sort.Key)}
	defer observe(ctx, s.observer, "sprint-tasks", startedAt, fields, &err)

	if err := s.scopeQuick(&st); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.SprintTasks(ctx, sprintID)
	if err != nil {
		return nil, fmt.Errorf("loading sprint tasks: %w", err)
	}
	listing = derive(tasks, st, sort)
	if st.Quick.View != filter.QuickNone {
		fields["view"] = string(st.Quick.View)
	}
	fields["total"] = listing.Total
	fields["shown"] = len(listing.Tasks)
	return listing, nil
}

func (s *taskQueryService) Browse(ctx context.Context, scope Scope) (view *filter.View, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": scope.ProjectID, "sprint_id": scope.SprintID}
	defer observe(ctx, s.observer, "browse-tasks", startedAt, fields, &err)

	var tasks []domain.Task
	switch {
	case scope.SprintID != "":
		tasks, err = s.tasks.SprintTasks(ctx, scope.SprintID)
	case scope.ProjectID != "":
		tasks, err = s.tasks.ProjectTasks(ctx, scope.ProjectID)
	default:
		return nil, errors.New("a project or sprint is required")
	}
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	fields["total"] = len(tasks)

	var st filter.State
	st.Quick.Operator = s.operator()
	return filter.NewView(tasks, st, filter.Sort{}), nil
}

// scopeQuick fills the operator and clock of a selected quick view.
func (s *taskQueryService) scopeQuick(st *filter.State) error {
	if st.Quick.Now.IsZero() {
		st.Quick.Now = s.now()
	}
	if st.Quick.Operator != "" {
		return nil
	}
	if st.Quick.View == filter.QuickNone {
		st.Quick.Operator = s.operator()
		return nil
	}
	op, err := identity.Resolve(s.ids)
	if err != nil {
		return fmt.Errorf("view %q needs the operator: %w", st.Quick.View, err)
	}
	st.Quick.Operator = op
	return nil
}

// operator is best-effort; an unknown operator just owns no tasks.
func (s *taskQueryService) operator() string {
	op, err := identity.Resolve(s.ids)
	if err != nil {
		return ""
	}
	return op
}

func derive(tasks []domain.Task, st filter.State, sort filter.Sort) *TaskListing {
	view := filter.NewView(tasks, st, sort)
	listing := &TaskListing{
		Tasks:  view.Tasks(),
		Total:  view.Total(),
		Labels: view.AvailableLabels(),
	}
	if st.Quick.Operator != "" {
		listing.Quick = filter.QuickCounts(tasks, st.Quick.Operator, st.Quick.Now)
	}
	return listing
}
