package view

import (
	"fmt"
	"time"

	"taskverse/internal/models"
)

const (
	OverdueLabel = "Overdue!"

	// CountdownInterval is the refresh cadence of the countdown table.
	CountdownInterval = time.Minute
)

// TimeRemaining renders the time left until due as "{d}d {h}h {m}m", or
// OverdueLabel once due has been reached. ok is false when there is no due date.
func TimeRemaining(due *time.Time, now time.Time) (text string, ok bool) {
	if due == nil {
		return "", false
	}
	diff := due.Sub(now)
	if diff <= 0 {
		return OverdueLabel, true
	}
	days := int64(diff / (24 * time.Hour))
	hours := int64(diff/time.Hour) % 24
	minutes := int64(diff/time.Minute) % 60
	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes), true
}

// Countdowns builds the countdown side-table keyed by task id. Tasks without
// a due date get no entry.
func Countdowns(tasks []models.Task, now time.Time) map[string]string {
	out := make(map[string]string, len(tasks))
	for _, t := range tasks {
		if text, ok := TimeRemaining(t.DueDate, now); ok {
			out[t.ID] = text
		}
	}
	return out
}
