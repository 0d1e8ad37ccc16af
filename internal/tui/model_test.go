package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskverse/internal/models"
	"taskverse/internal/view"
)

var t0 = time.Date(2030, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeAPI struct {
	tasks   []models.Task
	created int
	updates []models.TaskPatch
	deleted []string
	fail    error
}

func (f *fakeAPI) List(context.Context) ([]models.Task, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	return append([]models.Task(nil), f.tasks...), nil
}

func (f *fakeAPI) Create(_ context.Context, p models.TaskPatch) (models.Task, error) {
	if f.fail != nil {
		return models.Task{}, f.fail
	}
	f.created++
	t := models.NewTask()
	p.Apply(&t)
	t.ID = fmt.Sprintf("new-%d", f.created)
	f.tasks = append([]models.Task{t}, f.tasks...)
	return t, nil
}

func (f *fakeAPI) Update(_ context.Context, id string, p models.TaskPatch) (*models.Task, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.updates = append(f.updates, p)
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			p.Apply(&f.tasks[i])
			cp := f.tasks[i]
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	if f.fail != nil {
		return f.fail
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, s string) tea.Cmd {
	_, cmd := m.Update(keyMsg(s))
	return cmd
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

// run executes an API command and feeds its result back into the model.
func run(t *testing.T, m *Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	_, next := m.Update(cmd())
	return next
}

func due(d time.Duration) *time.Time {
	v := t0.Add(d)
	return &v
}

func newLoaded(t *testing.T, tasks ...models.Task) (*Model, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{tasks: tasks}
	m := New(api, WithClock(func() time.Time { return t0 }))
	run(t, m, m.fetch())
	return m, api
}

func TestLoadRendersStatsAndCountdown(t *testing.T) {
	m, _ := newLoaded(t,
		models.Task{ID: "1", Title: "Pay rent", Priority: models.PriorityHigh, DueDate: due(26*time.Hour + 5*time.Minute)},
		models.Task{ID: "2", Title: "Read book", Priority: models.PriorityLow, Completed: true},
	)
	out := m.View()
	assert.Contains(t, out, "Total 2 | Completed 1 | Pending 1")
	assert.Contains(t, out, "Pay rent")
	assert.Contains(t, out, "1d 2h 5m")

	_, cmd := m.Update(countdownMsg(t0.Add(26 * time.Hour)))
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "0d 0h 5m")
}

func TestLoadFailureKeepsWorkingCopy(t *testing.T) {
	m, api := newLoaded(t, models.Task{ID: "1", Title: "keep me", Priority: models.PriorityMedium})
	api.fail = errors.New("offline")
	run(t, m, press(m, "R"))
	assert.Len(t, m.session.Tasks(), 1)
	assert.Contains(t, m.View(), "Load failed")
}

func TestAddTask(t *testing.T) {
	m, api := newLoaded(t)
	press(m, "a")
	typeText(m, "Buy milk")
	cmd := press(m, "enter")
	run(t, m, cmd)

	assert.Equal(t, 1, api.created)
	require.Len(t, m.session.Tasks(), 1)
	assert.Equal(t, "Buy milk", m.session.Tasks()[0].Title)
	assert.Equal(t, modeList, m.mode)
}

func TestAddTaskWithDetails(t *testing.T) {
	m, api := newLoaded(t)
	press(m, "a")
	assert.Equal(t, "Medium", m.fields[fieldPriority].Value())

	typeText(m, "Dentist")
	press(m, "tab")
	typeText(m, "yearly checkup")
	press(m, "tab")
	typeText(m, "2030-05-03")
	m.fields[fieldPriority].SetValue("high")
	run(t, m, press(m, "enter"))

	require.Equal(t, 1, api.created)
	task := m.session.Tasks()[0]
	assert.Equal(t, "Dentist", task.Title)
	assert.Equal(t, "yearly checkup", task.Description)
	assert.Equal(t, models.PriorityHigh, task.Priority)
	require.NotNil(t, task.DueDate)
	assert.True(t, task.DueDate.Equal(time.Date(2030, 5, 3, 0, 0, 0, 0, time.UTC)))
}

func TestAddRejectsBadPriority(t *testing.T) {
	m, api := newLoaded(t)
	press(m, "a")
	typeText(m, "Dentist")
	m.fields[fieldPriority].SetValue("urgent")
	assert.Nil(t, press(m, "enter"))
	assert.Equal(t, 0, api.created)
	assert.NotEmpty(t, m.alert)
	assert.Equal(t, modeAdd, m.mode)
}

func TestAddRejectsEmptyTitle(t *testing.T) {
	m, api := newLoaded(t)
	press(m, "a")
	typeText(m, "   ")
	cmd := press(m, "enter")
	assert.Nil(t, cmd)
	assert.Equal(t, 0, api.created)
	assert.Contains(t, m.View(), "Title is required")

	// any key dismisses the alert; the add prompt stays open
	press(m, "x")
	assert.Empty(t, m.alert)
	assert.Equal(t, modeAdd, m.mode)
}

func TestToggleComplete(t *testing.T) {
	m, _ := newLoaded(t, models.Task{ID: "1", Title: "a", Priority: models.PriorityMedium})
	run(t, m, press(m, " "))
	task, ok := m.session.Task("1")
	require.True(t, ok)
	assert.True(t, task.Completed)
}

func TestFailedUpdateLeavesTaskUnchanged(t *testing.T) {
	m, api := newLoaded(t, models.Task{ID: "1", Title: "a", Priority: models.PriorityMedium})
	api.fail = errors.New("500 Server Error")
	run(t, m, press(m, " "))
	task, _ := m.session.Task("1")
	assert.False(t, task.Completed)
	assert.Contains(t, m.View(), "Update failed")
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, api := newLoaded(t, models.Task{ID: "1", Title: "a", Priority: models.PriorityMedium})

	press(m, "d")
	assert.Contains(t, m.View(), `Delete "a"? (y/n)`)
	assert.Nil(t, press(m, "n"))
	assert.Empty(t, api.deleted)

	press(m, "d")
	run(t, m, press(m, "y"))
	assert.Equal(t, []string{"1"}, api.deleted)
	assert.Empty(t, m.session.Tasks())
}

func TestFilterAndSearch(t *testing.T) {
	m, _ := newLoaded(t,
		models.Task{ID: "1", Title: "Buy milk", Priority: models.PriorityMedium},
		models.Task{ID: "2", Title: "Walk dog", Priority: models.PriorityMedium, Completed: true},
	)

	press(m, "f")
	assert.Equal(t, view.FilterCompleted, m.session.Filter())
	snap := m.session.Snapshot()
	require.Len(t, snap.Visible, 1)
	assert.Equal(t, "2", snap.Visible[0].ID)

	press(m, "f") // pending
	press(m, "f") // all
	press(m, "/")
	typeText(m, "MILK")
	snap = m.session.Snapshot()
	require.Len(t, snap.Visible, 1)
	assert.Equal(t, "1", snap.Visible[0].ID)

	press(m, "esc")
	assert.Len(t, m.session.Snapshot().Visible, 2)
}

func TestEditSave(t *testing.T) {
	m, api := newLoaded(t, models.Task{ID: "1", Title: "old", Priority: models.PriorityLow})

	press(m, "e")
	require.Equal(t, modeEdit, m.mode)
	m.fields[fieldTitle].SetValue("  new title ")
	m.fields[fieldPriority].SetValue("high")
	run(t, m, press(m, "enter"))

	task, _ := m.session.Task("1")
	assert.Equal(t, "new title", task.Title)
	assert.Equal(t, models.PriorityHigh, task.Priority)
	assert.Equal(t, modeList, m.mode)
	_, editing := m.session.Editing()
	assert.False(t, editing)
	require.Len(t, api.updates, 1)
	assert.True(t, api.updates[0].ClearDueDate)
}

func TestEditRejectsEmptyTitleAndKeepsDraft(t *testing.T) {
	m, api := newLoaded(t, models.Task{ID: "1", Title: "old", Priority: models.PriorityLow})
	press(m, "e")
	m.fields[fieldTitle].SetValue(" ")
	assert.Nil(t, press(m, "enter"))
	assert.Empty(t, api.updates)
	assert.Equal(t, modeEdit, m.mode)
	_, editing := m.session.Editing()
	assert.True(t, editing)

	press(m, "x") // dismiss alert
	press(m, "esc")
	_, editing = m.session.Editing()
	assert.False(t, editing)
	task, _ := m.session.Task("1")
	assert.Equal(t, "old", task.Title)
}

func TestReminderFiresOnce(t *testing.T) {
	m, api := newLoaded(t, models.Task{ID: "1", Title: "Dentist", Priority: models.PriorityMedium, DueDate: due(2 * time.Hour)})

	press(m, "r")
	typeText(m, "30")
	next := run(t, m, press(m, "enter"))
	assert.NotNil(t, next, "alarm timer scheduled")
	require.Len(t, api.updates, 1)

	at, ok := m.session.Armed("1")
	require.True(t, ok)
	assert.Equal(t, t0.Add(90*time.Minute), at)

	// a stale timer for another time is ignored
	m.Update(reminderMsg(view.Alarm{TaskID: "1", At: at.Add(time.Minute)}))
	assert.Empty(t, m.alert)

	m.Update(reminderMsg(view.Alarm{TaskID: "1", At: at}))
	assert.Contains(t, m.alert, "Reminder: Dentist")

	press(m, "x")
	m.Update(reminderMsg(view.Alarm{TaskID: "1", At: at}))
	assert.Empty(t, m.alert)
}

func TestReminderRejectedWhenLeadElapsed(t *testing.T) {
	m, api := newLoaded(t, models.Task{ID: "1", Title: "Soon", Priority: models.PriorityMedium, DueDate: due(10 * time.Minute)})
	press(m, "r")
	typeText(m, "15")
	assert.Nil(t, press(m, "enter"))
	assert.Empty(t, api.updates)
	assert.Equal(t, view.ErrLeadTimeElapsed.Error(), m.alert)
}

func TestCompletingDisarmsReminder(t *testing.T) {
	at := t0.Add(time.Hour)
	m, _ := newLoaded(t, models.Task{
		ID: "1", Title: "Call", Priority: models.PriorityMedium, DueDate: due(2 * time.Hour),
		Reminder: models.Reminder{Enabled: true, Time: &at},
	})
	_, armed := m.session.Armed("1")
	require.True(t, armed)

	run(t, m, press(m, " "))
	_, armed = m.session.Armed("1")
	assert.False(t, armed)

	m.Update(reminderMsg(view.Alarm{TaskID: "1", At: at}))
	assert.Empty(t, m.alert)
}

func TestQuit(t *testing.T) {
	m, _ := newLoaded(t)
	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
