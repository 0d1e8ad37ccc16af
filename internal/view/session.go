package view

import (
	"errors"
	"strings"
	"time"

	"taskverse/internal/models"
)

var (
	ErrEmptyTitle  = errors.New("title is required")
	ErrUnknownTask = errors.New("task is not in the working copy")
	ErrNotEditing  = errors.New("no task is being edited")
)

// ValidateTitle rejects titles that are empty after trimming.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// Draft is the edit slot contents for one task.
type Draft struct {
	ID          string
	Title       string
	Description string
	DueDate     *time.Time
	Priority    models.Priority
}

func draftOf(t models.Task) Draft {
	d := Draft{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
	}
	if t.DueDate != nil {
		due := *t.DueDate
		d.DueDate = &due
	}
	return d
}

// Patch is the update sent to the server when the draft is saved.
func (d Draft) Patch() models.TaskPatch {
	title := strings.TrimSpace(d.Title)
	desc := d.Description
	pr := d.Priority
	p := models.TaskPatch{Title: &title, Description: &desc, Priority: &pr}
	if d.DueDate == nil {
		p.ClearDueDate = true
	} else {
		due := *d.DueDate
		p.DueDate = &due
	}
	return p
}

// Alarm is a reminder the host must schedule: when At arrives it calls
// FireReminder(TaskID, At).
type Alarm struct {
	TaskID string
	At     time.Time
}

// Snapshot is everything a renderer needs, detached from the session.
type Snapshot struct {
	Visible    []models.Task
	Stats      Stats
	Countdowns map[string]string
	Filter     FilterMode
	Search     string
	Editing    *Draft
	Ticked     bool
}

// Session owns the dashboard state: the working copy of tasks, filter and
// search, the single edit slot, the countdown table and armed reminders.
// It is not safe for concurrent use; the host serializes all calls.
type Session struct {
	tasks      []models.Task
	filter     FilterMode
	search     string
	editing    *Draft
	countdowns map[string]string
	ticked     bool
	alarms     map[string]time.Time
}

func NewSession() *Session {
	return &Session{
		filter:     FilterAll,
		countdowns: map[string]string{},
		alarms:     map[string]time.Time{},
	}
}

// armable reports whether a persisted reminder should get a session timer.
// Completed tasks never fire.
func armable(t models.Task, now time.Time) bool {
	return !t.Completed && t.Reminder.Armed(now)
}

func (s *Session) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Load replaces the working copy with a fresh fetch and returns the
// reminders to schedule. Previously armed reminders are dropped.
func (s *Session) Load(tasks []models.Task, now time.Time) []Alarm {
	s.tasks = append([]models.Task(nil), tasks...)
	if s.editing != nil && s.indexOf(s.editing.ID) < 0 {
		s.editing = nil
	}
	s.alarms = map[string]time.Time{}
	var out []Alarm
	for _, t := range s.tasks {
		if armable(t, now) {
			s.alarms[t.ID] = *t.Reminder.Time
			out = append(out, Alarm{TaskID: t.ID, At: *t.Reminder.Time})
		}
	}
	s.Tick(now)
	return out
}

// Created prepends a task the server accepted.
func (s *Session) Created(t models.Task, now time.Time) []Alarm {
	s.tasks = append([]models.Task{t}, s.tasks...)
	return s.refresh(t, now)
}

// Updated replaces the task with the server's copy. It reports false when
// the task is not in the working copy.
func (s *Session) Updated(t models.Task, now time.Time) ([]Alarm, bool) {
	i := s.indexOf(t.ID)
	if i < 0 {
		return nil, false
	}
	s.tasks[i] = t
	return s.refresh(t, now), true
}

func (s *Session) refresh(t models.Task, now time.Time) []Alarm {
	if s.ticked {
		if text, ok := TimeRemaining(t.DueDate, now); ok {
			s.countdowns[t.ID] = text
		} else {
			delete(s.countdowns, t.ID)
		}
	}
	if armable(t, now) {
		at := *t.Reminder.Time
		if cur, ok := s.alarms[t.ID]; ok && cur.Equal(at) {
			return nil
		}
		s.alarms[t.ID] = at
		return []Alarm{{TaskID: t.ID, At: at}}
	}
	delete(s.alarms, t.ID)
	return nil
}

// Deleted removes a task after server success. Its draft, countdown and
// reminder go with it.
func (s *Session) Deleted(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	delete(s.countdowns, id)
	delete(s.alarms, id)
	if s.editing != nil && s.editing.ID == id {
		s.editing = nil
	}
	return true
}

func (s *Session) SetFilter(m FilterMode) { s.filter = m }

func (s *Session) Filter() FilterMode { return s.filter }

func (s *Session) SetSearch(text string) { s.search = text }

// Task returns the working copy entry for id.
func (s *Session) Task(id string) (models.Task, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return models.Task{}, false
}

// Tasks returns a copy of the working copy in server order.
func (s *Session) Tasks() []models.Task {
	return append([]models.Task(nil), s.tasks...)
}

// StartEdit opens the edit slot on id. If another task was being edited its
// unsaved draft is discarded and its id returned.
func (s *Session) StartEdit(id string) (abandoned string, err error) {
	i := s.indexOf(id)
	if i < 0 {
		return "", ErrUnknownTask
	}
	if s.editing != nil && s.editing.ID != id {
		abandoned = s.editing.ID
	}
	d := draftOf(s.tasks[i])
	s.editing = &d
	return abandoned, nil
}

// Editing returns the current draft.
func (s *Session) Editing() (Draft, bool) {
	if s.editing == nil {
		return Draft{}, false
	}
	return *s.editing, true
}

// SetDraft replaces the draft of the task being edited.
func (s *Session) SetDraft(d Draft) error {
	if s.editing == nil || s.editing.ID != d.ID {
		return ErrNotEditing
	}
	s.editing = &d
	return nil
}

// CancelEdit closes the edit slot without saving.
func (s *Session) CancelEdit() bool {
	was := s.editing != nil
	s.editing = nil
	return was
}

// SaveEdit validates the draft and returns the update to send. The slot
// stays open until CommitEdit, so a failed request keeps the draft.
func (s *Session) SaveEdit() (string, models.TaskPatch, error) {
	if s.editing == nil {
		return "", models.TaskPatch{}, ErrNotEditing
	}
	if err := ValidateTitle(s.editing.Title); err != nil {
		return "", models.TaskPatch{}, err
	}
	return s.editing.ID, s.editing.Patch(), nil
}

// CommitEdit applies the server's copy after a successful save and closes
// the slot if it still belongs to that task.
func (s *Session) CommitEdit(t models.Task, now time.Time) []Alarm {
	alarms, _ := s.Updated(t, now)
	if s.editing != nil && s.editing.ID == t.ID {
		s.editing = nil
	}
	return alarms
}

// Tick recomputes the countdown table.
func (s *Session) Tick(now time.Time) {
	s.countdowns = Countdowns(s.tasks, now)
	s.ticked = true
}

// ArmReminder records an accepted reminder for id.
func (s *Session) ArmReminder(id string, at time.Time) (Alarm, error) {
	if s.indexOf(id) < 0 {
		return Alarm{}, ErrUnknownTask
	}
	s.alarms[id] = at
	return Alarm{TaskID: id, At: at}, nil
}

// DisarmReminder cancels the session reminder for id.
func (s *Session) DisarmReminder(id string) bool {
	_, ok := s.alarms[id]
	delete(s.alarms, id)
	return ok
}

// FireReminder consumes the alarm for id if it is still the one armed for
// at. Stale alarms (disarmed, re-armed at another time, task deleted or
// completed) report false.
func (s *Session) FireReminder(id string, at time.Time) (models.Task, bool) {
	cur, ok := s.alarms[id]
	if !ok || !cur.Equal(at) {
		return models.Task{}, false
	}
	delete(s.alarms, id)
	t, ok := s.Task(id)
	if !ok || t.Completed {
		return models.Task{}, false
	}
	return t, true
}

// Armed returns the pending reminder time for id.
func (s *Session) Armed(id string) (time.Time, bool) {
	at, ok := s.alarms[id]
	return at, ok
}

func (s *Session) Snapshot() Snapshot {
	cd := make(map[string]string, len(s.countdowns))
	for k, v := range s.countdowns {
		cd[k] = v
	}
	snap := Snapshot{
		Visible:    VisibleTasks(s.tasks, s.filter, s.search),
		Stats:      ComputeStats(s.tasks),
		Countdowns: cd,
		Filter:     s.filter,
		Search:     s.search,
		Ticked:     s.ticked,
	}
	if s.editing != nil {
		d := *s.editing
		snap.Editing = &d
	}
	return snap
}
