package domain

import "time"

type Task struct {
	ID           string
	ShortKey     string
	Title        string
	Description  string
	Status       TaskStatus
	StoryPoints  *int
	AssigneeID   string
	AssigneeName string
	ProjectID    string
	SprintID     string
	ParentTaskID string
	Priority     Priority
	Tags         []string

	DueDate     *time.Time
	CreatedAt   *time.Time
	UpdatedAt   *time.Time
	CompletedAt *time.Time
}

// Incomplete reports whether the task has not reached the terminal DONE state.
func (t *Task) Incomplete() bool {
	return t.Status != TaskDone
}

// InBacklog reports whether the task is not attached to any sprint.
func (t *Task) InBacklog() bool {
	return t.SprintID == ""
}

// DisplayKey returns the short key when present, otherwise a truncated ID.
func (t *Task) DisplayKey() string {
	if t.ShortKey != "" {
		return t.ShortKey
	}
	if len(t.ID) >= 8 {
		return t.ID[:8]
	}
	return t.ID
}
