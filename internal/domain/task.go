package domain

import (
	"slices"
	"time"
)

// Status is the workflow column a task sits in.
type Status string

// Task statuses in board order.
const (
	StatusTodo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// Statuses lists the board columns in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// Priority is the urgency of a task.
type Priority string

// Task priorities.
const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Task is a unit of work inside a project.
type Task struct {
	ID          string `json:"id"`
	ProjectID   string `json:"projectId" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`

	// AssignedTo lists user IDs. Entries are weak references.
	AssignedTo []string `json:"assignedTo"`

	Priority  Priority `json:"priority" validate:"required,oneof=Low Medium High"`
	Status    Status   `json:"status" validate:"required,oneof='To Do' 'In Progress' 'Done'"`
	StartDate Date     `json:"startDate"`
	EndDate   Date     `json:"endDate"`

	// Comments is append-only and owned by the task.
	Comments []Comment `json:"comments"`
}

// Comment is an immutable note attached to a task.
type Comment struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	// UserName is denormalized from the author at creation time.
	UserName  string    `json:"userName"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsAssigned reports whether userID is among the assignees.
func (t *Task) IsAssigned(userID string) bool {
	return slices.Contains(t.AssignedTo, userID)
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	t.AssignedTo = slices.Clone(t.AssignedTo)
	if t.AssignedTo == nil {
		t.AssignedTo = []string{}
	}
	t.Comments = slices.Clone(t.Comments)
	if t.Comments == nil {
		t.Comments = []Comment{}
	}
	return t
}
