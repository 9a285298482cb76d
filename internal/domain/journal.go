package domain

import "time"

// MigrationRun is the local audit record of one sprint-closure submit.
type MigrationRun struct {
	ID         string
	SessionID  string
	SprintID   string
	ProjectID  string
	Action     string
	OperatorID string
	State      string
	Error      string
	Notified   int // notifications delivered after the sprint closed
	StartedAt  time.Time
	FinishedAt time.Time
	Steps      []MigrationStep
}

// MigrationStep is one request (or skipped group) within a run.
type MigrationStep struct {
	Seq            int
	Kind           string
	TargetSprintID string
	TaskIDs        []string
	Status         string
	Error          string
}

// Failed reports whether any step failed.
func (r *MigrationRun) Failed() bool {
	for _, s := range r.Steps {
		if s.Status == "failed" {
			return true
		}
	}
	return false
}

// Duration returns how long the submit took.
func (r *MigrationRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
