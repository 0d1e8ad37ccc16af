// internal/models/task.go
package models

import (
	"strings"
	"time"
)

// Priority is the urgency bucket of a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists the accepted values in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Rank orders priorities for sorting: High=1, Medium=2, Low=3.
// Anything else ranks after Low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return 4
}

// ParsePriority accepts the canonical names case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	for _, p := range Priorities {
		if strings.EqualFold(strings.TrimSpace(s), string(p)) {
			return p, true
		}
	}
	return "", false
}

// Reminder is the persisted reminder setting of a task.
type Reminder struct {
	Enabled bool       `json:"enabled"`
	Time    *time.Time `json:"time"`
}

// Armed reports whether the reminder should still fire after now.
func (r Reminder) Armed(now time.Time) bool {
	return r.Enabled && r.Time != nil && r.Time.After(now)
}

// Equal compares two reminders by value.
func (r Reminder) Equal(o Reminder) bool {
	if r.Enabled != o.Enabled {
		return false
	}
	if r.Time == nil || o.Time == nil {
		return r.Time == nil && o.Time == nil
	}
	return r.Time.Equal(*o.Time)
}

// Task represents a single task record.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	DueDate     *time.Time `json:"dueDate"`
	Priority    Priority   `json:"priority"`
	Reminder    Reminder   `json:"reminder"`
	OwnerID     *string    `json:"ownerId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// set by the reminder dispatcher, never exposed
	ReminderFiredAt *time.Time `json:"-"`
}

// NewTask returns a task carrying the documented defaults.
func NewTask() Task {
	return Task{Priority: PriorityMedium}
}

// OwnedBy reports whether the task has the given non-empty owner.
func (t Task) OwnedBy(userID string) bool {
	return t.OwnerID != nil && userID != "" && *t.OwnerID == userID
}
