package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// DeleteProject asks the project service to delete a project. The service
// owns any cascade to tasks, sprints and notifications.
func (c *Client) DeleteProject(ctx context.Context, operatorID, projectID string) error {
	_, err := c.do(ctx, request{
		op:         "delete project",
		method:     http.MethodDelete,
		base:       c.cfg.ProjectsURL,
		path:       fmt.Sprintf("/api/projects/%s", url.PathEscape(projectID)),
		operatorID: operatorID,
	}, nil)
	return err
}
