package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskverse/internal/models"
	"taskverse/internal/view"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statsStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	doneStyle     = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("241"))
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	alertStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("214")).Padding(0, 1)
	formStyle     = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)

	priorityStyles = map[models.Priority]lipgloss.Style{
		models.PriorityHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		models.PriorityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	}
)

func (m *Model) View() string {
	snap := m.session.Snapshot()
	var b strings.Builder

	b.WriteString(titleStyle.Render("Taskverse"))
	b.WriteString("  ")
	b.WriteString(statsStyle.Render(fmt.Sprintf("Total %d | Completed %d | Pending %d",
		snap.Stats.Total, snap.Stats.Completed, snap.Stats.Pending)))
	b.WriteString("\n")
	line := "Filter: " + string(snap.Filter)
	if snap.Search != "" {
		line += "  Search: " + snap.Search
	}
	b.WriteString(statsStyle.Render(line))
	b.WriteString("\n\n")

	if len(snap.Visible) == 0 {
		b.WriteString(helpStyle.Render("No tasks"))
		b.WriteString("\n")
	}
	for i, t := range snap.Visible {
		b.WriteString(m.renderRow(t, snap, i == m.cursor))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.mode {
	case modeSearch:
		b.WriteString("Search: " + m.input.View() + "\n")
	case modeReminder:
		b.WriteString("Remind me: " + m.input.View() + "\n")
	case modeConfirmDelete:
		title := m.target
		if t, ok := m.session.Task(m.target); ok {
			title = t.Title
		}
		b.WriteString(fmt.Sprintf("Delete %q? (y/n)\n", title))
	case modeAdd, modeEdit:
		b.WriteString(m.renderForm())
		b.WriteString("\n")
	}

	if m.alert != "" {
		b.WriteString(alertStyle.Render(m.alert))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statsStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help()))
	return b.String()
}

func (m *Model) renderRow(t models.Task, snap view.Snapshot, selected bool) string {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	pr := string(t.Priority)
	if st, ok := priorityStyles[t.Priority]; ok {
		pr = st.Render(fmt.Sprintf("%-6s", t.Priority))
	}
	title := t.Title
	if t.Completed {
		title = doneStyle.Render(title)
	}
	row := fmt.Sprintf("%s %s %s", check, pr, title)

	if t.DueDate != nil {
		row += "  due " + t.DueDate.Local().Format("Jan 2 15:04")
		if cd, ok := snap.Countdowns[t.ID]; ok {
			if cd == view.OverdueLabel {
				row += " " + overdueStyle.Render(cd)
			} else {
				row += " (" + cd + ")"
			}
		}
	}
	if _, armed := m.session.Armed(t.ID); armed {
		row += "  [reminder]"
	}
	if snap.Editing != nil && snap.Editing.ID == t.ID {
		row += "  (editing)"
	}

	if selected {
		return selectedStyle.Render("> ") + row
	}
	return "  " + row
}

func (m *Model) renderForm() string {
	labels := []string{"Title", "Description", "Due", "Priority"}
	var b strings.Builder
	for i, f := range m.fields {
		marker := "  "
		if i == m.focus {
			marker = "> "
		}
		b.WriteString(fmt.Sprintf("%s%-12s %s\n", marker, labels[i], f.View()))
	}
	return formStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (m *Model) help() string {
	switch m.mode {
	case modeSearch, modeReminder:
		return "enter confirm | esc cancel"
	case modeAdd:
		return "tab next field | enter add | esc cancel"
	case modeEdit:
		return "tab next field | enter save | esc cancel"
	case modeConfirmDelete:
		return "y delete | any other key cancels"
	}
	return "a add | e edit | space toggle | d delete | f filter | / search | r reminder | R reload | q quit"
}
