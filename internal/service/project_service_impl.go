package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alexanderramin/taskflow/internal/identity"
)

type projectService struct {
	projects ProjectGateway
	ids      identity.Provider
	observer UseCaseObserver
}

func NewProjectService(projects ProjectGateway, ids identity.Provider, observers ...UseCaseObserver) ProjectService {
	return &projectService{projects: projects, ids: ids, observer: useCaseObserverOrNoop(observers)}
}

// Delete issues one delete call and leaves any cascade (tasks, sprints,
// member notifications) to the project service.
func (s *projectService) Delete(ctx context.Context, projectID string) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": projectID}
	defer observe(ctx, s.observer, "delete-project", startedAt, fields, &err)

	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return errors.New("project id is required")
	}

	operatorID, err := identity.Resolve(s.ids)
	if err != nil {
		return err
	}

	if err = s.projects.DeleteProject(ctx, operatorID, projectID); err != nil {
		return err
	}
	return nil
}
