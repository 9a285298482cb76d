package migration

import (
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
)

// Partition groups choices into one backlog batch, one batch per target
// sprint and the kept tasks. It does not validate targets.
func Partition(choices []Choice) Plan {
	var plan Plan
	groupIndex := make(map[string]int)

	for _, c := range choices {
		switch c.Destination {
		case DestinationBacklog:
			plan.Backlog = append(plan.Backlog, c.TaskID)
		case DestinationSprint:
			i, ok := groupIndex[c.TargetSprintID]
			if !ok {
				i = len(plan.Sprints)
				groupIndex[c.TargetSprintID] = i
				plan.Sprints = append(plan.Sprints, SprintGroup{SprintID: c.TargetSprintID})
			}
			plan.Sprints[i].TaskIDs = append(plan.Sprints[i].TaskIDs, c.TaskID)
		case DestinationKeep:
			plan.Keep = append(plan.Keep, c.TaskID)
		}
	}
	return plan
}

// ValidatePlan checks that every sprint choice names a candidate sprint.
// isCandidate reports whether a sprint may receive tasks.
func ValidatePlan(choices []Choice, isCandidate func(sprintID string) bool) error {
	var errs criterio.FieldErrorsBuilder
	for _, c := range choices {
		prefix := fmt.Sprintf("choices[%s]", c.TaskID)
		switch c.Destination {
		case DestinationBacklog, DestinationKeep:
		case DestinationSprint:
			switch {
			case c.TargetSprintID == "":
				errs = errs.Append(prefix+".target_sprint_id", errors.New("select a target sprint"))
			case !isCandidate(c.TargetSprintID):
				errs = errs.Append(prefix+".target_sprint_id", ErrInvalidTarget)
			}
		default:
			errs = errs.Append(prefix+".destination", fmt.Errorf("%w %q", ErrInvalidDestination, c.Destination))
		}
	}
	return errs.ToError()
}
