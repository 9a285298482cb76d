package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/alexanderramin/taskflow/internal/domain"
)

// IncompleteTasks lists the tasks of a sprint that are not DONE.
func (c *Client) IncompleteTasks(ctx context.Context, sprintID string) ([]domain.Task, error) {
	var dtos []taskDTO
	_, err := c.do(ctx, request{
		op:     "incomplete tasks",
		method: http.MethodGet,
		base:   c.cfg.SprintsURL,
		path:   fmt.Sprintf("/api/sprints/%s/incomplete-tasks", url.PathEscape(sprintID)),
	}, &dtos)
	if err != nil {
		return nil, err
	}
	return tasksToDomain(dtos), nil
}

// ProjectSprints lists every sprint of a project.
func (c *Client) ProjectSprints(ctx context.Context, projectID string) ([]domain.Sprint, error) {
	var dtos []sprintDTO
	_, err := c.do(ctx, request{
		op:     "project sprints",
		method: http.MethodGet,
		base:   c.cfg.SprintsURL,
		path:   fmt.Sprintf("/api/sprints/project/%s", url.PathEscape(projectID)),
	}, &dtos)
	if err != nil {
		return nil, err
	}
	sprints := make([]domain.Sprint, 0, len(dtos))
	for _, d := range dtos {
		sprints = append(sprints, d.toDomain())
	}
	return sprints, nil
}

// Sprint fetches one sprint. The version comes from the body when present,
// otherwise from the ETag header.
func (c *Client) Sprint(ctx context.Context, sprintID string) (*domain.Sprint, error) {
	var dto sprintDTO
	resp, err := c.do(ctx, request{
		op:     "get sprint",
		method: http.MethodGet,
		base:   c.cfg.SprintsURL,
		path:   fmt.Sprintf("/api/sprints/%s", url.PathEscape(sprintID)),
	}, &dto)
	if err != nil {
		return nil, err
	}
	sprint := dto.toDomain()
	if sprint.Version == "" && resp != nil {
		sprint.Version = strings.Trim(strings.TrimPrefix(resp.header.Get("ETag"), "W/"), `"`)
	}
	return &sprint, nil
}

// MoveToBacklog detaches the given tasks from their sprint in one request.
func (c *Client) MoveToBacklog(ctx context.Context, operatorID string, taskIDs []string) error {
	_, err := c.do(ctx, request{
		op:         "move to backlog",
		method:     http.MethodPut,
		base:       c.cfg.SprintsURL,
		path:       "/api/sprints/move-specific-tasks-to-backlog",
		operatorID: operatorID,
		body:       taskIDsBody{TaskIDs: taskIDs},
	}, nil)
	return err
}

// MoveToSprint attaches the given tasks to sprintID in one request.
func (c *Client) MoveToSprint(ctx context.Context, operatorID, sprintID string, taskIDs []string) error {
	_, err := c.do(ctx, request{
		op:         "move to sprint",
		method:     http.MethodPut,
		base:       c.cfg.SprintsURL,
		path:       fmt.Sprintf("/api/sprints/move-specific-tasks-to-sprint/%s", url.PathEscape(sprintID)),
		operatorID: operatorID,
		body:       taskIDsBody{TaskIDs: taskIDs},
	}, nil)
	return err
}

// CancelSprint transitions the sprint to CANCELLED. A non-empty
// expectedVersion is sent as If-Match.
func (c *Client) CancelSprint(ctx context.Context, operatorID, sprintID, expectedVersion string) error {
	return c.transition(ctx, "cancel sprint", "cancel", operatorID, sprintID, expectedVersion)
}

// SoftDeleteSprint transitions the sprint to DELETED. A non-empty
// expectedVersion is sent as If-Match.
func (c *Client) SoftDeleteSprint(ctx context.Context, operatorID, sprintID, expectedVersion string) error {
	return c.transition(ctx, "delete sprint", "soft-delete", operatorID, sprintID, expectedVersion)
}

func (c *Client) transition(ctx context.Context, op, verb, operatorID, sprintID, expectedVersion string) error {
	_, err := c.do(ctx, request{
		op:         op,
		method:     http.MethodPut,
		base:       c.cfg.SprintsURL,
		path:       fmt.Sprintf("/api/sprints/%s/%s", url.PathEscape(sprintID), verb),
		operatorID: operatorID,
		ifMatch:    expectedVersion,
	}, nil)
	return err
}
