// Package migration closes a sprint after moving each of its incomplete
// tasks to the backlog, to another sprint, or leaving it in place.
package migration

import (
	"time"
)

// CloseAction is the terminal transition applied to the closing sprint.
type CloseAction string

const (
	ActionCancel CloseAction = "cancel"
	ActionDelete CloseAction = "delete"
)

// ParseCloseAction validates a user-supplied action name.
func ParseCloseAction(s string) (CloseAction, error) {
	switch CloseAction(s) {
	case ActionCancel, ActionDelete:
		return CloseAction(s), nil
	}
	return "", ErrUnknownAction
}

// Past returns the action as a past participle for messages.
func (a CloseAction) Past() string {
	if a == ActionDelete {
		return "deleted"
	}
	return "cancelled"
}

// Destination is where an incomplete task goes when its sprint closes.
type Destination string

const (
	DestinationBacklog Destination = "backlog"
	DestinationSprint  Destination = "sprint"
	DestinationKeep    Destination = "keep"
)

// Valid reports whether d is a known destination.
func (d Destination) Valid() bool {
	switch d {
	case DestinationBacklog, DestinationSprint, DestinationKeep:
		return true
	}
	return false
}

// Choice is the operator's decision for one task. TargetSprintID is set only
// for DestinationSprint.
type Choice struct {
	TaskID         string
	Destination    Destination
	TargetSprintID string
}

// State is the lifecycle of a migration session.
type State string

const (
	StateIdle            State = "idle"
	StateFetching        State = "fetching"
	StateReady           State = "ready"
	StateSubmitting      State = "submitting"
	StateSucceeded       State = "succeeded"
	StatePartiallyFailed State = "partially_failed"
	StateFailed          State = "failed"
)

// Terminal reports whether the session has closed the sprint.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StatePartiallyFailed
}

// SprintGroup is one batched move into a target sprint.
type SprintGroup struct {
	SprintID string
	TaskIDs  []string
}

// Plan is the partition of choices into batched requests. Task order follows
// the session's task order; sprint groups appear in order of first use.
type Plan struct {
	Backlog []string
	Sprints []SprintGroup
	Keep    []string
}

// StepKind identifies what a step did.
type StepKind string

const (
	StepBacklog    StepKind = "backlog"
	StepSprint     StepKind = "sprint"
	StepKeep       StepKind = "keep"
	StepTransition StepKind = "transition"
)

// StepStatus is the result of one step.
type StepStatus string

const (
	StepOK      StepStatus = "ok"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

// StepResult records one request (or the absence of one for kept tasks).
type StepResult struct {
	Kind           StepKind
	TargetSprintID string
	TaskIDs        []string
	Status         StepStatus
	Err            error
}

// Outcome summarises one Submit call. RunID is unique per call; SessionID
// is shared by retries within one session.
type Outcome struct {
	RunID      string
	SessionID  string
	Action     CloseAction
	SprintID   string
	ProjectID  string
	OperatorID string
	State      State
	Steps      []StepResult
	Warnings   []string
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// MovedCount returns the number of tasks whose move succeeded.
func (o *Outcome) MovedCount() int {
	n := 0
	for _, s := range o.Steps {
		if (s.Kind == StepBacklog || s.Kind == StepSprint) && s.Status == StepOK {
			n += len(s.TaskIDs)
		}
	}
	return n
}
