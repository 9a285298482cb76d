package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/alexanderramin/taskflow/internal/domain"
)

// ProjectTasks lists every task of a project.
func (c *Client) ProjectTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	return c.listTasks(ctx, "project tasks", fmt.Sprintf("/api/tasks/project/%s", url.PathEscape(projectID)))
}

// SprintTasks lists every task of a sprint.
func (c *Client) SprintTasks(ctx context.Context, sprintID string) ([]domain.Task, error) {
	return c.listTasks(ctx, "sprint tasks", fmt.Sprintf("/api/tasks/sprint/%s", url.PathEscape(sprintID)))
}

func (c *Client) listTasks(ctx context.Context, op, path string) ([]domain.Task, error) {
	var dtos []taskDTO
	_, err := c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		base:   c.cfg.TasksURL,
		path:   path,
	}, &dtos)
	if err != nil {
		return nil, err
	}
	return tasksToDomain(dtos), nil
}
