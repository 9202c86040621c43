package models

// ProgressEventType names the events emitted over a run's progress
// stream. Events fire in causal order: plan_created, plan_ready, then
// any number of progress events, then exactly one of complete or error.
type ProgressEventType string

const (
	EventPlanCreated ProgressEventType = "plan_created"
	EventPlanReady   ProgressEventType = "plan_ready"
	EventProgress    ProgressEventType = "progress"
	EventComplete    ProgressEventType = "complete"
	EventError       ProgressEventType = "error"
)

// ProgressEvent is one event on the stream. Plan is a snapshot the
// consumer may retain; the pipeline never mutates it after emission.
type ProgressEvent struct {
	Type         ProgressEventType `json:"type"`
	Plan         *ScrapePlan       `json:"plan,omitempty"`
	RunningTasks []ScrapeTask      `json:"runningTasks,omitempty"`
	RunningJobs  int               `json:"runningJobs,omitempty"`
	Message      string            `json:"message,omitempty"`
}

// Terminal reports whether no further events follow this one
func (e ProgressEvent) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}
