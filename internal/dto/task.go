package dto

import (
	"errors"
	"fmt"
	"time"

	dom "taskward/internal/domain"
)

// ErrInvalidFilter marks an unrecognized /tasks filter value; handlers match
// it with errors.Is to reject the request instead of failing it server-side.
var ErrInvalidFilter = errors.New("invalid filter value")

const dueDateLayout = "2006-01-02"

// ParseDueDate parses a date-only value ("2006-01-02"). The stored value is
// midnight UTC of that day.
func ParseDueDate(s string) (time.Time, error) {
	t, err := time.Parse(dueDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("due_date: use YYYY-MM-DD, got %q", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// TaskForm is the body for POST /add_task and POST /edit_task/{id}
// (form-encoded or JSON). All fields are required; due_date stays a string
// here because form binding cannot run custom unmarshalers, the handler
// parses it with ParseDueDate.
type TaskForm struct {
	Content  string `form:"content" json:"content" binding:"required,min=1,max=1000"`
	Priority string `form:"priority" json:"priority" binding:"required,oneof=High Medium Low"`
	DueDate  string `form:"due_date" json:"due_date" binding:"required"`
}

// ListTasksQuery carries the raw /tasks query parameters. Empty values mean
// "no predicate".
type ListTasksQuery struct {
	Search   string `form:"search"`
	Status   string `form:"status"`
	Priority string `form:"priority"`
	DueDate  string `form:"due_date"`
}

// Filter validates the raw parameters and builds the domain filter. Any
// unrecognized value fails the whole request instead of being dropped.
func (q ListTasksQuery) Filter() (dom.TaskFilter, error) {
	var f dom.TaskFilter
	if q.Search != "" {
		s := q.Search
		f.Search = &s
	}
	switch q.Status {
	case "":
	case "True":
		v := true
		f.Completed = &v
	case "False":
		v := false
		f.Completed = &v
	default:
		return dom.TaskFilter{}, fmt.Errorf(`%w: status must be "True" or "False", got %q`, ErrInvalidFilter, q.Status)
	}
	if q.Priority != "" {
		p, err := dom.ParsePriority(q.Priority)
		if err != nil {
			return dom.TaskFilter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		f.Priority = &p
	}
	if q.DueDate != "" {
		d, err := ParseDueDate(q.DueDate)
		if err != nil {
			return dom.TaskFilter{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		f.DueDate = &d
	}
	return f, nil
}

type TaskResponse struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Priority  string    `json:"priority"`
	DueDate   string    `json:"due_date"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListTasksResponse struct {
	Items []TaskResponse `json:"items"`
}

// FromTask maps a domain task to its response shape.
func FromTask(t dom.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		Content:   t.Content,
		Priority:  string(t.Priority),
		DueDate:   t.DueDate.Format(dueDateLayout),
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// FromTasks maps a slice of tasks, never returning nil items.
func FromTasks(list []dom.Task) []TaskResponse {
	out := make([]TaskResponse, len(list))
	for i := range list {
		out[i] = FromTask(list[i])
	}
	return out
}
