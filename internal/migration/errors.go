package migration

import "errors"

var (
	// ErrUnknownAction indicates a close action other than cancel or delete.
	ErrUnknownAction = errors.New("unknown close action")

	// ErrMissingID indicates an empty sprint or project identifier.
	ErrMissingID = errors.New("sprint and project ids are required")

	// ErrUnknownTask indicates a choice for a task not in the session.
	ErrUnknownTask = errors.New("task is not an incomplete task of this sprint")

	// ErrInvalidDestination indicates a destination other than backlog, sprint or keep.
	ErrInvalidDestination = errors.New("invalid destination")

	// ErrInvalidTarget indicates a target sprint that cannot receive tasks.
	ErrInvalidTarget = errors.New("target sprint cannot receive migrated tasks")

	// ErrNotReady indicates the session is not in a state that accepts the call.
	ErrNotReady = errors.New("migration session is not ready")

	// ErrSubmitInFlight indicates a submit is already running.
	ErrSubmitInFlight = errors.New("migration already submitting")

	// ErrSessionClosed indicates the session was closed or completed.
	ErrSessionClosed = errors.New("migration session is closed")

	// ErrNoOperator indicates no authenticated operator is available.
	ErrNoOperator = errors.New("no operator identity available")

	// ErrInvalidOperator indicates the operator identifier is malformed.
	ErrInvalidOperator = errors.New("operator identity is malformed")

	// ErrLoadTasks wraps a failure to fetch the sprint's incomplete tasks.
	ErrLoadTasks = errors.New("loading incomplete tasks")

	// ErrLoadSprints wraps a failure to fetch the project's sprints.
	ErrLoadSprints = errors.New("loading project sprints")

	// ErrIncompletePlan indicates at least one sprint choice lacks a valid target.
	ErrIncompletePlan = errors.New("migration plan is incomplete")
)
