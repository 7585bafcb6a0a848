package domain

import (
	"fmt"
	"time"
)

// Priority is the task priority level.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ParsePriority validates a priority string.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return Priority(s), nil
	}
	return "", fmt.Errorf("priority must be High, Medium or Low, got %q", s)
}

// Domain entity. Does not depend on Gin, Postgres or Redis.
// DueDate carries a calendar date only (midnight UTC).
type Task struct {
	ID        int64
	UserID    int64
	Content   string
	Priority  Priority
	DueDate   time.Time
	Completed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskFilter holds the optional listing predicates. A nil field adds no
// predicate; set fields are combined with AND after owner scoping.
type TaskFilter struct {
	Search    *string
	Completed *bool
	Priority  *Priority
	DueDate   *time.Time
}
