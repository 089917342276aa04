package domain

import "time"

// Priority is the urgency level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is the domain entity: a single to-do item.
// Does not depend on Gin, GORM or Redis.
type Task struct {
	ID          int64
	Title       string
	Description *string
	Completed   bool
	DueDate     *time.Time
	Priority    Priority
}

// TaskPatch holds the fields of a partial update. Nil means "leave as is".
// DueDate is tri-state: DueDateSet=false keeps the column, DueDateSet=true
// with a nil DueDate clears it.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *Priority
	DueDateSet  bool
	DueDate     *time.Time
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil &&
		p.Priority == nil && !p.DueDateSet
}
