package view

import "taskverse/internal/models"

// Stats aggregates the working copy. Completed+Pending always equals Total.
type Stats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func ComputeStats(all []models.Task) Stats {
	s := Stats{Total: len(all)}
	for _, t := range all {
		if t.Completed {
			s.Completed++
		}
	}
	s.Pending = s.Total - s.Completed
	return s
}
