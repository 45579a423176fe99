package models

import (
	"strings"
	"time"
)

// TaskStatus is the kanban column a task sits in
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"

	// StatusAll is only meaningful inside TaskFilters
	StatusAll TaskStatus = "ALL"
)

// TaskPriority ranks how urgent a task is
type TaskPriority string

const (
	PriorityCritical TaskPriority = "CRITICAL"
	PriorityHigh     TaskPriority = "HIGH"
	PriorityMedium   TaskPriority = "MEDIUM"
	PriorityLow      TaskPriority = "LOW"

	// PriorityAll is only meaningful inside TaskFilters
	PriorityAll TaskPriority = "ALL"
)

// Statuses returns the task statuses in board order
func Statuses() []TaskStatus {
	return []TaskStatus{StatusTodo, StatusInProgress, StatusDone}
}

// Priorities returns the task priorities, most urgent first
func Priorities() []TaskPriority {
	return []TaskPriority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// Valid reports whether s is one of the task statuses (ALL excluded)
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Label returns the human readable column name
func (s TaskStatus) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusDone:
		return "Done"
	case StatusAll:
		return "All"
	}
	return string(s)
}

// Next returns the column to the right, or s itself on the last column
func (s TaskStatus) Next() TaskStatus {
	switch s {
	case StatusTodo:
		return StatusInProgress
	case StatusInProgress:
		return StatusDone
	}
	return s
}

// Prev returns the column to the left, or s itself on the first column
func (s TaskStatus) Prev() TaskStatus {
	switch s {
	case StatusDone:
		return StatusInProgress
	case StatusInProgress:
		return StatusTodo
	}
	return s
}

// ParseStatus parses a status name case-insensitively. "ALL" is accepted.
func ParseStatus(s string) (TaskStatus, bool) {
	st := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	if st.Valid() || st == StatusAll {
		return st, true
	}
	return "", false
}

// Valid reports whether p is one of the task priorities (ALL excluded)
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Label returns the human readable priority name
func (p TaskPriority) Label() string {
	switch p {
	case PriorityCritical:
		return "Critical"
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	case PriorityAll:
		return "All"
	}
	return string(p)
}

// ParsePriority parses a priority name case-insensitively. "ALL" is accepted.
func ParsePriority(s string) (TaskPriority, bool) {
	p := TaskPriority(strings.ToUpper(strings.TrimSpace(s)))
	if p.Valid() || p == PriorityAll {
		return p, true
	}
	return "", false
}

// Task represents a single tracked task
type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	Responsible string       `json:"responsible"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   *time.Time   `json:"updatedAt,omitempty"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"` // nil unless moved into DONE by an update
}

// TaskInput holds the fields a caller supplies when creating a task
type TaskInput struct {
	Title       string
	Description string
	Priority    TaskPriority
	Status      TaskStatus
	Responsible string
}

// TaskPatch is a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *TaskPriority
	Status      *TaskStatus
	Responsible *string
}

// TaskFilters narrows the task list shown to the user
type TaskFilters struct {
	Search   string
	Status   TaskStatus   // StatusAll or a concrete status
	Priority TaskPriority // PriorityAll or a concrete priority
}

// DefaultFilters returns filters that let every task through
func DefaultFilters() TaskFilters {
	return TaskFilters{
		Search:   "",
		Status:   StatusAll,
		Priority: PriorityAll,
	}
}

// ViewMode is how the task list is presented
type ViewMode string

const (
	ViewKanban ViewMode = "kanban"
	ViewList   ViewMode = "list"
)

// Valid reports whether m is a known view mode
func (m ViewMode) Valid() bool {
	return m == ViewKanban || m == ViewList
}

// Toggle flips between kanban and list
func (m ViewMode) Toggle() ViewMode {
	if m == ViewList {
		return ViewKanban
	}
	return ViewList
}
