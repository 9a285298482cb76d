package domain

import "time"

type Sprint struct {
	ID        string
	Name      string
	Goal      string
	Status    SprintStatus
	ProjectID string
	StartDate *time.Time
	EndDate   *time.Time

	// Version is the opaque concurrency token issued by the sprint service.
	// Empty when the service did not supply one.
	Version string
}

// AcceptsMigratedTasks reports whether tasks moved out of a closing sprint
// may be placed into this sprint.
func (s *Sprint) AcceptsMigratedTasks() bool {
	return s.Status == SprintNotStarted || s.Status == SprintActive
}

// Closed reports whether the sprint has reached a terminal state.
func (s *Sprint) Closed() bool {
	switch s.Status {
	case SprintCompleted, SprintCancelled, SprintDeleted:
		return true
	default:
		return false
	}
}
