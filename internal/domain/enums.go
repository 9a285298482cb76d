package domain

type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskReview     TaskStatus = "REVIEW"
	TaskDone       TaskStatus = "DONE"
)

// ValidTaskStatuses is the canonical set of accepted task status strings.
var ValidTaskStatuses = map[TaskStatus]bool{
	TaskTodo: true, TaskInProgress: true, TaskReview: true, TaskDone: true,
}

type Priority string

const (
	PriorityLowest  Priority = "LOWEST"
	PriorityLow     Priority = "LOW"
	PriorityMedium  Priority = "MEDIUM"
	PriorityHigh    Priority = "HIGH"
	PriorityHighest Priority = "HIGHEST"
	PriorityBlocker Priority = "BLOCKER"
)

// ValidPriorities is the canonical set of accepted priority strings.
var ValidPriorities = map[Priority]bool{
	PriorityLowest: true, PriorityLow: true, PriorityMedium: true,
	PriorityHigh: true, PriorityHighest: true, PriorityBlocker: true,
}

type SprintStatus string

const (
	SprintNotStarted SprintStatus = "NOT_STARTED"
	SprintActive     SprintStatus = "ACTIVE"
	SprintCompleted  SprintStatus = "COMPLETED"
	SprintCancelled  SprintStatus = "CANCELLED"
	SprintDeleted    SprintStatus = "DELETED"
)
