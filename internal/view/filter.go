// Package view derives what the dashboard shows from the working copy of
// tasks: the filtered and sorted list, aggregate stats, countdown strings and
// reminder fire times. Everything except Session is a pure function.
package view

import (
	"sort"
	"strings"

	"taskverse/internal/models"
)

// FilterMode selects tasks by completion state.
type FilterMode string

const (
	FilterAll       FilterMode = "all"
	FilterCompleted FilterMode = "completed"
	FilterPending   FilterMode = "pending"
)

var FilterModes = []FilterMode{FilterAll, FilterCompleted, FilterPending}

// ParseFilterMode maps "" to FilterAll.
func ParseFilterMode(s string) (FilterMode, bool) {
	if strings.TrimSpace(s) == "" {
		return FilterAll, true
	}
	for _, m := range FilterModes {
		if strings.EqualFold(s, string(m)) {
			return m, true
		}
	}
	return "", false
}

// Next cycles all -> completed -> pending -> all.
func (m FilterMode) Next() FilterMode {
	for i, f := range FilterModes {
		if f == m {
			return FilterModes[(i+1)%len(FilterModes)]
		}
	}
	return FilterAll
}

func (m FilterMode) keep(t models.Task) bool {
	switch m {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	}
	return true
}

// VisibleTasks filters all by mode and a case-insensitive substring match on
// title or description, then orders the result by priority rank and due date
// (no due date sorts last). The sort is stable and the input is not modified.
func VisibleTasks(all []models.Task, mode FilterMode, search string) []models.Task {
	needle := strings.ToLower(search)
	out := make([]models.Task, 0, len(all))
	for _, t := range all {
		if !mode.keep(t) {
			continue
		}
		if needle != "" && !matches(t, needle) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return before(out[i], out[j])
	})
	return out
}

func matches(t models.Task, needle string) bool {
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}

func before(a, b models.Task) bool {
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return ra < rb
	}
	switch {
	case a.DueDate == nil:
		return false
	case b.DueDate == nil:
		return true
	}
	return a.DueDate.Before(*b.DueDate)
}
