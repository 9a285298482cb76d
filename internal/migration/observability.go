package migration

import (
	"github.com/rs/zerolog"
)

// Observer receives every state change and step result of a session.
type Observer interface {
	OnStateChange(runID string, from, to State)
	OnStep(runID string, step StepResult)
}

// LogObserver writes session events to a zerolog logger.
type LogObserver struct {
	log zerolog.Logger
}

// NewLogObserver creates an Observer that logs events to log.
func NewLogObserver(log zerolog.Logger) *LogObserver {
	return &LogObserver{log: log.With().Str("component", "migration").Logger()}
}

func (o *LogObserver) OnStateChange(runID string, from, to State) {
	o.log.Debug().
		Str("run_id", runID).
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("state change")
}

func (o *LogObserver) OnStep(runID string, step StepResult) {
	e := o.log.Info()
	if step.Status == StepFailed {
		e = o.log.Warn().Err(step.Err)
	}
	e.Str("run_id", runID).
		Str("kind", string(step.Kind)).
		Str("target_sprint_id", step.TargetSprintID).
		Strs("task_ids", step.TaskIDs).
		Str("status", string(step.Status)).
		Msg("migration step")
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnStateChange(string, State, State) {}
func (NoopObserver) OnStep(string, StepResult)          {}
