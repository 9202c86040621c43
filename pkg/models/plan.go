package models

import "time"

// QueryCategory tags why a search query was generated
type QueryCategory string

const (
	CategoryTitle          QueryCategory = "title"
	CategoryPrimarySkill   QueryCategory = "primary_skill"
	CategorySecondarySkill QueryCategory = "secondary_skill"
	CategoryCombination    QueryCategory = "combination"
	CategorySpecialized    QueryCategory = "specialized"
	CategoryRemote         QueryCategory = "remote"
	CategoryKeyword        QueryCategory = "keyword"
)

// SearchQuery is one generated board query. Immutable once created.
type SearchQuery struct {
	Query    string        `json:"query"`
	Location string        `json:"location,omitempty"`
	Remote   bool          `json:"remote,omitempty"`
	Priority int           `json:"priority"` // 1..10, higher first
	Category QueryCategory `json:"category"`
}

// BoardPriority ranks one board for a given analysis run
type BoardPriority struct {
	Board    string `json:"board"`
	Priority int    `json:"priority"`
	Reason   string `json:"reason,omitempty"`
}

// ScrapeMode controls the breadth of a discovery run
type ScrapeMode string

const (
	ModeFull  ScrapeMode = "full"
	ModeQuick ScrapeMode = "quick"
)

// TaskStatus is the lifecycle state of one scrape task
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskSkipped   TaskStatus = "skipped"
)

// Terminal reports whether the status is final
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskSkipped
}

// ScrapeTask is one (board, query) unit of work. Created by the planner
// and mutated only by the executing pipeline.
type ScrapeTask struct {
	ID        string      `json:"id"`
	Board     string      `json:"board"`
	Query     SearchQuery `json:"query"`
	Status    TaskStatus  `json:"status"`
	JobsFound int         `json:"jobsFound"`
	Error     string      `json:"error,omitempty"`
	StartedAt *time.Time  `json:"startedAt,omitempty"`
	EndedAt   *time.Time  `json:"endedAt,omitempty"`
}

// PlanStatus is the lifecycle state of a whole run
type PlanStatus string

const (
	PlanPending   PlanStatus = "pending"
	PlanRunning   PlanStatus = "running"
	PlanCompleted PlanStatus = "completed"
	PlanFailed    PlanStatus = "failed"
	PlanCancelled PlanStatus = "cancelled"
)

// ScrapePlan is one end-to-end discovery run for a user. The executing
// pipeline owns the plan for the duration of a run; observers only see
// cloned snapshots or post-completion persisted state.
type ScrapePlan struct {
	ID                string       `json:"id"`
	UserID            string       `json:"userId"`
	Mode              ScrapeMode   `json:"mode"`
	Status            PlanStatus   `json:"status"`
	Tasks             []ScrapeTask `json:"tasks"`
	TotalJobsFound    int          `json:"totalJobsFound"`
	NewJobsAdded      int          `json:"newJobsAdded"`
	DuplicatesSkipped int          `json:"duplicatesSkipped"`
	TasksFailed       int          `json:"tasksFailed"`
	CreatedAt         time.Time    `json:"createdAt"`
	StartedAt         *time.Time   `json:"startedAt,omitempty"`
	CompletedAt       *time.Time   `json:"completedAt,omitempty"`
}

// Clone returns a deep copy safe to hand to observers while the
// pipeline keeps mutating the original.
func (p *ScrapePlan) Clone() *ScrapePlan {
	cp := *p
	cp.Tasks = make([]ScrapeTask, len(p.Tasks))
	copy(cp.Tasks, p.Tasks)
	for i := range cp.Tasks {
		if t := p.Tasks[i].StartedAt; t != nil {
			started := *t
			cp.Tasks[i].StartedAt = &started
		}
		if t := p.Tasks[i].EndedAt; t != nil {
			ended := *t
			cp.Tasks[i].EndedAt = &ended
		}
	}
	if p.StartedAt != nil {
		started := *p.StartedAt
		cp.StartedAt = &started
	}
	if p.CompletedAt != nil {
		completed := *p.CompletedAt
		cp.CompletedAt = &completed
	}
	return &cp
}

// RunningTasks returns summaries of tasks currently in flight
func (p *ScrapePlan) RunningTasks() []ScrapeTask {
	var running []ScrapeTask
	for _, t := range p.Tasks {
		if t.Status == TaskRunning {
			running = append(running, t)
		}
	}
	return running
}

// HistoryEntry records one finished run for the run-history list
type HistoryEntry struct {
	PlanID         string     `json:"planId"`
	Mode           ScrapeMode `json:"mode"`
	Status         PlanStatus `json:"status"`
	TotalJobsFound int        `json:"totalJobsFound"`
	NewJobsAdded   int        `json:"newJobsAdded"`
	TasksFailed    int        `json:"tasksFailed"`
	CompletedAt    time.Time  `json:"completedAt"`
}
