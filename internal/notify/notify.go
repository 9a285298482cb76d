// Package notify tells assignees that the sprint holding their tasks closed.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/taskflow/internal/domain"
	"github.com/alexanderramin/taskflow/internal/remote"
	"github.com/rs/zerolog"
)

// ErrNoRecipients indicates no assignee other than the operator was found.
// Nothing is sent in that case.
var ErrNoRecipients = errors.New("no notification recipients")

// Sender delivers one notification.
type Sender interface {
	CreateNotification(ctx context.Context, operatorID string, n remote.Notification) error
}

// SprintClosed describes a closed sprint and the tasks it held.
type SprintClosed struct {
	SprintID   string
	SprintName string
	ProjectID  string
	Verb       string // "cancelled" or "deleted"
	OperatorID string
	Tasks      []domain.Task
}

// Result counts deliveries.
type Result struct {
	Recipients []string
	Delivered  int
	Failed     int
}

// Notifier sends SPRINT_UPDATED notifications.
type Notifier struct {
	sender Sender
	log    zerolog.Logger
}

func NewNotifier(sender Sender, log zerolog.Logger) *Notifier {
	return &Notifier{sender: sender, log: log.With().Str("component", "notify").Logger()}
}

// Recipients returns the distinct assignees of tasks, excluding the operator,
// in order of first appearance.
func Recipients(tasks []domain.Task, operatorID string) []string {
	seen := map[string]bool{"": true, operatorID: true}
	var out []string
	for _, t := range tasks {
		if seen[t.AssigneeID] {
			continue
		}
		seen[t.AssigneeID] = true
		out = append(out, t.AssigneeID)
	}
	return out
}

// SprintClosed notifies each recipient once. A failed delivery is logged and
// counted; it does not stop the others.
func (n *Notifier) SprintClosed(ctx context.Context, ev SprintClosed) (Result, error) {
	recipients := Recipients(ev.Tasks, ev.OperatorID)
	res := Result{Recipients: recipients}
	if len(recipients) == 0 {
		n.log.Info().
			Str("sprint_id", ev.SprintID).
			Msg("no recipients for sprint notification, skipping")
		return res, ErrNoRecipients
	}

	counts := make(map[string]int)
	for _, t := range ev.Tasks {
		counts[t.AssigneeID]++
	}

	name := ev.SprintName
	if name == "" {
		name = ev.SprintID
	}

	for _, userID := range recipients {
		err := n.sender.CreateNotification(ctx, ev.OperatorID, remote.Notification{
			Type:            remote.NotificationSprintUpdated,
			Title:           fmt.Sprintf("Sprint %s", ev.Verb),
			Message:         fmt.Sprintf("Sprint %q was %s. %d of your incomplete tasks were affected.", name, ev.Verb, counts[userID]),
			RecipientUserID: userID,
			ActorUserID:     ev.OperatorID,
			ProjectID:       ev.ProjectID,
			SprintID:        ev.SprintID,
		})
		if err != nil {
			res.Failed++
			n.log.Warn().Err(err).
				Str("sprint_id", ev.SprintID).
				Str("recipient", userID).
				Msg("sprint notification failed")
			continue
		}
		res.Delivered++
	}
	return res, nil
}
