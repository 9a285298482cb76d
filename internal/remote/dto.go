package remote

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/alexanderramin/taskflow/internal/domain"
)

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type taskDTO struct {
	ID           string   `json:"id"`
	ShortKey     string   `json:"shortKey"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Status       string   `json:"status"`
	StoryPoint   *int     `json:"storyPoint"`
	StoryPoints  *int     `json:"storyPoints"`
	AssigneeID   string   `json:"assigneeId"`
	AssigneeName string   `json:"assigneeName"`
	ProjectID    string   `json:"projectId"`
	SprintID     string   `json:"sprintId"`
	ParentTaskID string   `json:"parentTaskId"`
	Priority     string   `json:"priority"`
	Tags         []string `json:"tags"`
	DueDate      string   `json:"dueDate"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
	CompletedAt  string   `json:"completedAt"`
}

func (d taskDTO) toDomain() domain.Task {
	points := d.StoryPoint
	if points == nil {
		points = d.StoryPoints
	}
	priority := domain.Priority(strings.ToUpper(d.Priority))
	if priority == "BLOCK" {
		priority = domain.PriorityBlocker
	}
	return domain.Task{
		ID:           d.ID,
		ShortKey:     d.ShortKey,
		Title:        d.Title,
		Description:  d.Description,
		Status:       domain.TaskStatus(strings.ToUpper(d.Status)),
		StoryPoints:  points,
		AssigneeID:   d.AssigneeID,
		AssigneeName: d.AssigneeName,
		ProjectID:    d.ProjectID,
		SprintID:     d.SprintID,
		ParentTaskID: d.ParentTaskID,
		Priority:     priority,
		Tags:         d.Tags,
		DueDate:      parseTime(d.DueDate),
		CreatedAt:    parseTime(d.CreatedAt),
		UpdatedAt:    parseTime(d.UpdatedAt),
		CompletedAt:  parseTime(d.CompletedAt),
	}
}

func tasksToDomain(dtos []taskDTO) []domain.Task {
	tasks := make([]domain.Task, 0, len(dtos))
	for _, d := range dtos {
		tasks = append(tasks, d.toDomain())
	}
	return tasks
}

type sprintDTO struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Goal      string     `json:"goal"`
	Status    string     `json:"status"`
	ProjectID string     `json:"projectId"`
	StartDate string     `json:"startDate"`
	EndDate   string     `json:"endDate"`
	Version   flexString `json:"version"`
}

func (d sprintDTO) toDomain() domain.Sprint {
	return domain.Sprint{
		ID:        d.ID,
		Name:      d.Name,
		Goal:      d.Goal,
		Status:    domain.SprintStatus(strings.ToUpper(d.Status)),
		ProjectID: d.ProjectID,
		StartDate: parseTime(d.StartDate),
		EndDate:   parseTime(d.EndDate),
		Version:   string(d.Version),
	}
}

type taskIDsBody struct {
	TaskIDs []string `json:"taskIds"`
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime accepts the timestamp shapes the services emit. Empty or
// unparseable values yield nil.
func parseTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
