package remote

import (
	"context"
	"net/http"
)

// NotificationType enumerates the notification kinds this client sends.
type NotificationType string

const NotificationSprintUpdated NotificationType = "SPRINT_UPDATED"

// Notification is the body of POST /api/notifications/create.
type Notification struct {
	Type            NotificationType `json:"type"`
	Title           string           `json:"title"`
	Message         string           `json:"message"`
	RecipientUserID string           `json:"recipientUserId"`
	ActorUserID     string           `json:"actorUserId"`
	ProjectID       string           `json:"projectId,omitempty"`
	SprintID        string           `json:"sprintId,omitempty"`
	TaskID          string           `json:"taskId,omitempty"`
}

// CreateNotification delivers one notification.
func (c *Client) CreateNotification(ctx context.Context, operatorID string, n Notification) error {
	_, err := c.do(ctx, request{
		op:         "create notification",
		method:     http.MethodPost,
		base:       c.cfg.NotificationsURL,
		path:       "/api/notifications/create",
		operatorID: operatorID,
		body:       n,
	}, nil)
	return err
}
