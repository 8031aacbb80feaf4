package queue

import "github.com/dmitrymomot/taskqueue/pkg/statemachine"

type lifecycleEvent string

const (
	eventSchedule lifecycleEvent = "schedule"
	eventStart    lifecycleEvent = "start"
	eventSucceed  lifecycleEvent = "succeed"
	eventFail     lifecycleEvent = "fail"
	eventStop     lifecycleEvent = "stop"
)

// lifecycle is the task record state machine.
// Succeeded and Stopped have no outgoing edges.
var lifecycle = statemachine.MustNew(
	statemachine.WithTransitions(eventSchedule, TaskStatusQueued, TaskStatusQueued, TaskStatusFailed),
	statemachine.WithTransition(TaskStatusQueued, TaskStatusRunning, eventStart),
	statemachine.WithTransition(TaskStatusRunning, TaskStatusSucceeded, eventSucceed),
	statemachine.WithTransition(TaskStatusRunning, TaskStatusFailed, eventFail),
	statemachine.WithTransitions(eventStop, TaskStatusStopped, TaskStatusQueued, TaskStatusRunning, TaskStatusFailed),
)

// IsTerminal reports whether a record in this status will never run again
func (s TaskStatus) IsTerminal() bool {
	return lifecycle.IsTerminal(s)
}
