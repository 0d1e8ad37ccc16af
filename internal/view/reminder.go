package view

import (
	"errors"
	"time"

	"taskverse/internal/models"
)

var (
	ErrNoDueDate       = errors.New("task has no due date")
	ErrLeadTimeElapsed = errors.New("reminder lead time has already passed")
	ErrNegativeLead    = errors.New("lead time must not be negative")
)

// ScheduleReminder returns when a reminder leadMinutes before the task's due
// date fires. It is rejected when there is no due date or that moment is not
// after now.
func ScheduleReminder(t models.Task, leadMinutes int, now time.Time) (time.Time, error) {
	if t.DueDate == nil {
		return time.Time{}, ErrNoDueDate
	}
	if leadMinutes < 0 {
		return time.Time{}, ErrNegativeLead
	}
	fireAt := t.DueDate.Add(-time.Duration(leadMinutes) * time.Minute)
	if !fireAt.After(now) {
		return time.Time{}, ErrLeadTimeElapsed
	}
	return fireAt, nil
}

// ReminderPatch is the update that persists an accepted reminder.
func ReminderPatch(fireAt time.Time) models.TaskPatch {
	at := fireAt.UTC()
	return models.TaskPatch{Reminder: &models.Reminder{Enabled: true, Time: &at}}
}
