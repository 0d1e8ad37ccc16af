package services

import (
	"context"
	"io"
	"time"

	"taskverse/internal/pdf"
	"taskverse/internal/view"
)

// ReportService renders the dashboard view of the task list as a PDF.
type ReportService interface {
	TaskReport(ctx context.Context, w io.Writer, mode view.FilterMode, search string, now time.Time) error
}

type reportService struct {
	tasks TaskService
	gen   pdf.Generator
}

func NewReportService(tasks TaskService, gen pdf.Generator) ReportService {
	return &reportService{tasks: tasks, gen: gen}
}

func (s *reportService) TaskReport(ctx context.Context, w io.Writer, mode view.FilterMode, search string, now time.Time) error {
	all, err := s.tasks.List(ctx)
	if err != nil {
		return err
	}
	visible := view.VisibleTasks(all, mode, search)
	stats := view.ComputeStats(all)

	data := pdf.TaskReportData{
		GeneratedAt: now,
		Filter:      string(mode),
		Search:      search,
		Total:       stats.Total,
		Completed:   stats.Completed,
		Pending:     stats.Pending,
		Rows:        make([]pdf.TaskReportRow, 0, len(visible)),
	}
	for _, t := range visible {
		row := pdf.TaskReportRow{
			Title:       t.Title,
			Description: t.Description,
			Priority:    string(t.Priority),
			Status:      "pending",
		}
		if t.Completed {
			row.Status = "done"
		}
		if t.DueDate != nil {
			row.Due = t.DueDate.UTC().Format("2006-01-02 15:04")
		}
		if text, ok := view.TimeRemaining(t.DueDate, now); ok && !t.Completed {
			row.Countdown = text
		}
		data.Rows = append(data.Rows, row)
	}
	return s.gen.GenerateTaskReport(w, data)
}
