// Package tui is the terminal dashboard. Update is the only place session
// state changes; network calls run as commands whose results come back as
// messages.
package tui

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskverse/internal/models"
	"taskverse/internal/view"
)

// TaskAPI is the subset of the API client the dashboard needs.
type TaskAPI interface {
	List(ctx context.Context) ([]models.Task, error)
	Create(ctx context.Context, patch models.TaskPatch) (models.Task, error)
	Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id string) error
}

type mode int

const (
	modeList mode = iota
	modeAdd
	modeEdit
	modeSearch
	modeReminder
	modeConfirmDelete
)

// add/edit form fields
const (
	fieldTitle = iota
	fieldDescription
	fieldDue
	fieldPriority
	fieldCount
)

type tasksLoadedMsg struct {
	tasks []models.Task
	err   error
}

type taskCreatedMsg struct {
	task models.Task
	err  error
}

type taskUpdatedMsg struct {
	id   string
	task *models.Task
	edit bool
	err  error
}

type taskDeletedMsg struct {
	id  string
	err error
}

type countdownMsg time.Time

type reminderMsg view.Alarm

type Model struct {
	api     TaskAPI
	session *view.Session
	now     func() time.Time
	timeout time.Duration

	mode   mode
	cursor int
	input  textinput.Model
	fields []textinput.Model
	focus  int
	target string

	status string
	alert  string
	width  int
}

type Option func(*Model)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(m *Model) { m.now = now } }

// WithTimeout bounds every API call.
func WithTimeout(d time.Duration) Option { return func(m *Model) { m.timeout = d } }

func New(api TaskAPI, opts ...Option) *Model {
	m := &Model{
		api:     api,
		session: view.NewSession(),
		now:     time.Now,
		timeout: 15 * time.Second,
		input:   textinput.New(),
		width:   80,
	}
	m.input.CharLimit = 200
	placeholders := []string{"Title", "Description", "Due (YYYY-MM-DD or RFC3339)", "Priority (Low, Medium, High)"}
	for i := 0; i < fieldCount; i++ {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 200
		m.fields = append(m.fields, ti)
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	m.status = "Loading tasks..."
	return tea.Batch(m.fetch(), countdownTick())
}

// ---- commands

func (m *Model) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.timeout)
}

func (m *Model) fetch() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		tasks, err := m.api.List(ctx)
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

func (m *Model) create(patch models.TaskPatch) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		t, err := m.api.Create(ctx, patch)
		return taskCreatedMsg{task: t, err: err}
	}
}

func (m *Model) update(id string, patch models.TaskPatch, edit bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		t, err := m.api.Update(ctx, id, patch)
		return taskUpdatedMsg{id: id, task: t, edit: edit, err: err}
	}
}

func (m *Model) remove(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := m.ctx()
		defer cancel()
		return taskDeletedMsg{id: id, err: m.api.Delete(ctx, id)}
	}
}

func countdownTick() tea.Cmd {
	return tea.Tick(view.CountdownInterval, func(t time.Time) tea.Msg { return countdownMsg(t) })
}

// schedule turns session alarms into one-shot timers. A timer that outlives
// its alarm is ignored by FireReminder.
func (m *Model) schedule(alarms []view.Alarm) tea.Cmd {
	if len(alarms) == 0 {
		return nil
	}
	now := m.now()
	cmds := make([]tea.Cmd, 0, len(alarms))
	for _, a := range alarms {
		a := a
		d := a.At.Sub(now)
		if d < 0 {
			d = 0
		}
		cmds = append(cmds, tea.Tick(d, func(time.Time) tea.Msg { return reminderMsg(a) }))
	}
	return tea.Batch(cmds...)
}

// ---- update

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tasksLoadedMsg:
		if msg.err != nil {
			log.Printf("[tui][load][err] %v", msg.err)
			m.status = "Load failed: " + msg.err.Error()
			return m, nil
		}
		alarms := m.session.Load(msg.tasks, m.now())
		m.status = fmt.Sprintf("Loaded %d tasks", len(msg.tasks))
		m.clampCursor()
		return m, m.schedule(alarms)

	case taskCreatedMsg:
		if msg.err != nil {
			log.Printf("[tui][create][err] %v", msg.err)
			m.status = "Create failed: " + msg.err.Error()
			return m, nil
		}
		alarms := m.session.Created(msg.task, m.now())
		m.status = "Created " + msg.task.Title
		return m, m.schedule(alarms)

	case taskUpdatedMsg:
		return m.handleUpdated(msg)

	case taskDeletedMsg:
		if msg.err != nil {
			log.Printf("[tui][delete][err] id=%s %v", msg.id, msg.err)
			m.status = "Delete failed: " + msg.err.Error()
			return m, nil
		}
		m.session.Deleted(msg.id)
		m.clampCursor()
		m.status = "Deleted"
		return m, nil

	case countdownMsg:
		m.session.Tick(time.Time(msg))
		return m, countdownTick()

	case reminderMsg:
		if t, ok := m.session.FireReminder(msg.TaskID, msg.At); ok {
			m.alert = "Reminder: " + t.Title
			if text, ok := view.TimeRemaining(t.DueDate, m.now()); ok {
				m.alert += " (" + text + " left)"
			}
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.alert != "" {
			m.alert = ""
			return m, nil
		}
		switch m.mode {
		case modeAdd:
			return m.handleAddKey(msg)
		case modeEdit:
			return m.handleEditKey(msg)
		case modeSearch:
			return m.handleSearchKey(msg)
		case modeReminder:
			return m.handleReminderKey(msg)
		case modeConfirmDelete:
			return m.handleConfirmKey(msg)
		}
		return m.handleListKey(msg)
	}
	return m, nil
}

func (m *Model) handleUpdated(msg taskUpdatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.Printf("[tui][update][err] id=%s %v", msg.id, msg.err)
		m.status = "Update failed: " + msg.err.Error()
		return m, nil
	}
	if msg.task == nil {
		// removed elsewhere; the server acknowledged without data
		m.status = "Task no longer exists, reloading"
		if msg.edit {
			m.session.CancelEdit()
			m.leave()
		}
		return m, m.fetch()
	}
	now := m.now()
	var alarms []view.Alarm
	if msg.edit {
		alarms = m.session.CommitEdit(*msg.task, now)
		if _, still := m.session.Editing(); !still && m.mode == modeEdit {
			m.leave()
		}
	} else {
		alarms, _ = m.session.Updated(*msg.task, now)
	}
	m.clampCursor()
	m.status = "Saved " + msg.task.Title
	if at, ok := m.session.Armed(msg.task.ID); ok {
		m.status += ", reminder at " + at.Local().Format("Jan 2 15:04")
	}
	return m, m.schedule(alarms)
}

func (m *Model) selected() (models.Task, bool) {
	vis := m.session.Snapshot().Visible
	if m.cursor < 0 || m.cursor >= len(vis) {
		return models.Task{}, false
	}
	return vis[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.session.Snapshot().Visible)
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) openInput(md mode, placeholder, value string) tea.Cmd {
	m.mode = md
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) leave() {
	m.mode = modeList
	m.target = ""
	m.input.Blur()
	for i := range m.fields {
		m.fields[i].Blur()
	}
}

func (m *Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.session.Snapshot().Visible)-1 {
			m.cursor++
		}
	case "a":
		return m, m.openAddForm()
	case "e":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		abandoned, err := m.session.StartEdit(t.ID)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		if abandoned != "" {
			m.status = "Discarded unsaved changes"
		}
		return m, m.openEditForm()
	case " ":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		done := !t.Completed
		return m, m.update(t.ID, models.TaskPatch{Completed: &done}, false)
	case "d":
		if t, ok := m.selected(); ok {
			m.mode = modeConfirmDelete
			m.target = t.ID
		}
	case "f":
		m.session.SetFilter(m.session.Filter().Next())
		m.clampCursor()
	case "/":
		return m, m.openInput(modeSearch, "Search title or description", m.session.Snapshot().Search)
	case "r":
		t, ok := m.selected()
		if !ok {
			return m, nil
		}
		if t.DueDate == nil {
			m.alert = "Set a due date before adding a reminder"
			return m, nil
		}
		m.target = t.ID
		return m, m.openInput(modeReminder, "Minutes before due", "")
	case "R":
		m.status = "Reloading..."
		return m, m.fetch()
	case "esc":
		m.status = ""
	}
	return m, nil
}

func (m *Model) openAddForm() tea.Cmd {
	m.mode = modeAdd
	m.focus = fieldTitle
	for i := range m.fields {
		m.fields[i].SetValue("")
		m.fields[i].Blur()
	}
	m.fields[fieldPriority].SetValue(string(models.PriorityMedium))
	return m.fields[fieldTitle].Focus()
}

func (m *Model) handleAddKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.leave()
		return m, nil
	case "tab", "down":
		return m, m.focusField((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m, m.focusField((m.focus + fieldCount - 1) % fieldCount)
	case "enter":
		title := strings.TrimSpace(m.fields[fieldTitle].Value())
		if err := view.ValidateTitle(title); err != nil {
			m.alert = "Title is required"
			return m, nil
		}
		f, err := m.readForm()
		if err != nil {
			m.alert = err.Error()
			return m, nil
		}
		patch := models.TaskPatch{Title: &title, DueDate: f.due, Priority: &f.priority}
		if desc := strings.TrimSpace(f.description); desc != "" {
			patch.Description = &desc
		}
		m.leave()
		return m, m.create(patch)
	}
	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) openEditForm() tea.Cmd {
	d, _ := m.session.Editing()
	m.mode = modeEdit
	m.focus = fieldTitle
	m.fields[fieldTitle].SetValue(d.Title)
	m.fields[fieldDescription].SetValue(d.Description)
	due := ""
	if d.DueDate != nil {
		due = d.DueDate.UTC().Format(time.RFC3339)
	}
	m.fields[fieldDue].SetValue(due)
	m.fields[fieldPriority].SetValue(string(d.Priority))
	for i := range m.fields {
		m.fields[i].Blur()
	}
	return m.fields[fieldTitle].Focus()
}

type formValues struct {
	title       string
	description string
	due         *time.Time
	priority    models.Priority
}

// readForm parses the four form fields shared by add and edit.
func (m *Model) readForm() (formValues, error) {
	f := formValues{
		title:       m.fields[fieldTitle].Value(),
		description: m.fields[fieldDescription].Value(),
	}
	if s := strings.TrimSpace(m.fields[fieldDue].Value()); s != "" {
		due, err := models.ParseFlexTime(s)
		if err != nil {
			return formValues{}, err
		}
		f.due = &due
	}
	p, ok := models.ParsePriority(m.fields[fieldPriority].Value())
	if !ok {
		return formValues{}, models.ErrInvalidPriority
	}
	f.priority = p
	return f, nil
}

// draft reads the edit form back into a Draft.
func (m *Model) draft() (view.Draft, error) {
	d, ok := m.session.Editing()
	if !ok {
		return view.Draft{}, view.ErrNotEditing
	}
	f, err := m.readForm()
	if err != nil {
		return view.Draft{}, err
	}
	d.Title = f.title
	d.Description = f.description
	d.DueDate = f.due
	d.Priority = f.priority
	return d, nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.session.CancelEdit()
		m.leave()
		m.status = "Edit cancelled"
		return m, nil
	case "tab", "down":
		return m, m.focusField((m.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return m, m.focusField((m.focus + fieldCount - 1) % fieldCount)
	case "enter":
		d, err := m.draft()
		if err != nil {
			m.alert = err.Error()
			return m, nil
		}
		if err := m.session.SetDraft(d); err != nil {
			m.alert = err.Error()
			return m, nil
		}
		id, patch, err := m.session.SaveEdit()
		if err != nil {
			m.alert = "Title is required"
			return m, nil
		}
		m.status = "Saving..."
		return m, m.update(id, patch, true)
	}
	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) focusField(i int) tea.Cmd {
	m.fields[m.focus].Blur()
	m.focus = i
	return m.fields[i].Focus()
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.session.SetSearch("")
		m.leave()
		m.clampCursor()
		return m, nil
	case "enter":
		m.leave()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SetSearch(m.input.Value())
	m.clampCursor()
	return m, cmd
}

func (m *Model) handleReminderKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.leave()
		return m, nil
	case "enter":
		id := m.target
		m.leave()
		t, ok := m.session.Task(id)
		if !ok {
			return m, nil
		}
		lead, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
		if err != nil {
			m.alert = "Enter the lead time in whole minutes"
			return m, nil
		}
		fireAt, err := view.ScheduleReminder(t, lead, m.now())
		if err != nil {
			m.alert = err.Error()
			return m, nil
		}
		return m, m.update(id, view.ReminderPatch(fireAt), false)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.target
	m.leave()
	if msg.String() == "y" || msg.String() == "Y" {
		return m, m.remove(id)
	}
	m.status = "Delete cancelled"
	return m, nil
}
