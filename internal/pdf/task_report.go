package pdf

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator renders task reports. Kept as an interface so services can fake it.
type Generator interface {
	GenerateTaskReport(w io.Writer, data TaskReportData) error
}

type TaskReportRow struct {
	Title       string
	Description string
	Priority    string
	Due         string
	Status      string
	Countdown   string
}

type TaskReportData struct {
	GeneratedAt time.Time
	Filter      string
	Search      string
	Total       int
	Completed   int
	Pending     int
	Rows        []TaskReportRow
}

// TaskReportGenerator draws with a UTF-8 TTF when FontPath exists, otherwise
// with the core Helvetica font.
type TaskReportGenerator struct {
	FontPath string
	fontName string
}

func NewTaskReportGenerator(fontPath string) *TaskReportGenerator {
	return &TaskReportGenerator{FontPath: fontPath, fontName: "DejaVu"}
}

func (g *TaskReportGenerator) GenerateTaskReport(w io.Writer, data TaskReportData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Task report", true)
	pdf.SetAuthor("taskverse", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	font, tr := g.setupFont(pdf)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(font, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(font, "B", 18)
	pdf.CellFormat(0, 10, "Tasks", "", 1, "C", false, 0, "")
	pdf.SetFont(font, "", 10)
	pdf.CellFormat(0, 6, "Generated "+data.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"), "", 1, "C", false, 0, "")
	hr(pdf)

	sectionTitle(pdf, font, "Summary")
	kvLine(pdf, font, "Filter", data.Filter)
	if data.Search != "" {
		kvLine(pdf, font, "Search", tr(data.Search))
	}
	kvLine(pdf, font, "Total", fmt.Sprint(data.Total))
	kvLine(pdf, font, "Completed", fmt.Sprint(data.Completed))
	kvLine(pdf, font, "Pending", fmt.Sprint(data.Pending))
	hr(pdf)

	sectionTitle(pdf, font, fmt.Sprintf("Visible tasks (%d)", len(data.Rows)))
	if len(data.Rows) == 0 {
		pdf.SetFont(font, "", 11)
		pdf.CellFormat(0, 7, "No tasks match.", "", 1, "L", false, 0, "")
	}
	for i, row := range data.Rows {
		pdf.SetFont(font, "B", 11)
		pdf.MultiCell(0, 6, fmt.Sprintf("%d. %s", i+1, tr(row.Title)), "", "L", false)
		pdf.SetFont(font, "", 10)
		meta := fmt.Sprintf("%s priority  |  %s", row.Priority, row.Status)
		if row.Due != "" {
			meta += "  |  due " + row.Due
		}
		if row.Countdown != "" {
			meta += "  |  " + row.Countdown
		}
		pdf.CellFormat(0, 5, meta, "", 1, "L", false, 0, "")
		if row.Description != "" {
			pdf.MultiCell(0, 5, tr(row.Description), "", "L", false)
		}
		pdf.Ln(2)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return pdf.Output(w)
}

func (g *TaskReportGenerator) setupFont(pdf *gofpdf.Fpdf) (string, func(string) string) {
	if g.FontPath != "" {
		if _, err := os.Stat(g.FontPath); err == nil {
			pdf.AddUTF8Font(g.fontName, "", g.FontPath)
			pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
			return g.fontName, func(s string) string { return s }
		}
	}
	return "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
}

func sectionTitle(pdf *gofpdf.Fpdf, font, s string) {
	pdf.SetFont(font, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(font, "", 11)
}

func kvLine(pdf *gofpdf.Fpdf, font, key, val string) {
	pdf.SetFont(font, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(font, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
