package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskverse/internal/models"
)

func withReminder(t models.Task, fire *time.Time) models.Task {
	t.Reminder = models.Reminder{Enabled: true, Time: fire}
	return t
}

func TestSessionLoadArmsFutureReminders(t *testing.T) {
	s := NewSession()
	alarms := s.Load([]models.Task{
		withReminder(task("future", "f", models.PriorityLow, at(2*time.Hour), false), at(time.Hour)),
		withReminder(task("past", "p", models.PriorityLow, at(2*time.Hour), false), at(-time.Minute)),
		withReminder(task("done", "d", models.PriorityLow, at(2*time.Hour), true), at(time.Hour)),
		task("plain", "x", models.PriorityLow, nil, false),
	}, base)

	require.Len(t, alarms, 1)
	assert.Equal(t, Alarm{TaskID: "future", At: *at(time.Hour)}, alarms[0])

	snap := s.Snapshot()
	assert.True(t, snap.Ticked)
	assert.Equal(t, "0d 2h 0m", snap.Countdowns["future"])
	_, ok := snap.Countdowns["plain"]
	assert.False(t, ok)
}

func TestSessionCreatedPrepends(t *testing.T) {
	s := NewSession()
	s.Load([]models.Task{task("old", "old", models.PriorityLow, nil, false)}, base)
	s.Created(task("new", "new", models.PriorityLow, at(time.Hour), false), base)

	assert.Equal(t, []string{"new", "old"}, ids(s.Tasks()))
	assert.Equal(t, "0d 1h 0m", s.Snapshot().Countdowns["new"])
}

func TestSessionUpdatedUnknownTask(t *testing.T) {
	s := NewSession()
	s.Load(nil, base)
	_, ok := s.Updated(task("ghost", "g", models.PriorityLow, nil, false), base)
	assert.False(t, ok)
	assert.Empty(t, s.Tasks())
}

func TestSessionDeletedClearsEverything(t *testing.T) {
	s := NewSession()
	s.Load([]models.Task{
		withReminder(task("a", "a", models.PriorityLow, at(2*time.Hour), false), at(time.Hour)),
		task("b", "b", models.PriorityLow, nil, false),
	}, base)
	_, err := s.StartEdit("a")
	require.NoError(t, err)

	assert.True(t, s.Deleted("a"))
	assert.False(t, s.Deleted("a"))

	_, editing := s.Editing()
	assert.False(t, editing)
	_, armed := s.Armed("a")
	assert.False(t, armed)
	_, ok := s.Snapshot().Countdowns["a"]
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, ids(s.Tasks()))
}

func TestSessionEditLifecycle(t *testing.T) {
	s := NewSession()
	s.Load([]models.Task{
		task("a", "first", models.PriorityLow, nil, false),
		task("b", "second", models.PriorityHigh, at(time.Hour), false),
	}, base)

	abandoned, err := s.StartEdit("a")
	require.NoError(t, err)
	assert.Empty(t, abandoned)

	d, ok := s.Editing()
	require.True(t, ok)
	d.Title = "first (edited)"
	require.NoError(t, s.SetDraft(d))

	// switching tasks discards the unsaved draft of the first
	abandoned, err = s.StartEdit("b")
	require.NoError(t, err)
	assert.Equal(t, "a", abandoned)

	d, _ = s.Editing()
	assert.Equal(t, "second", d.Title)

	orig, _ := s.Task("a")
	assert.Equal(t, "first", orig.Title)

	assert.ErrorIs(t, s.SetDraft(Draft{ID: "a", Title: "x"}), ErrNotEditing)

	_, err = s.StartEdit("missing")
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestSessionSaveEditRejectsEmptyTitle(t *testing.T) {
	s := NewSession()
	s.Load([]models.Task{task("a", "keep", models.PriorityLow, nil, false)}, base)
	_, err := s.StartEdit("a")
	require.NoError(t, err)

	d, _ := s.Editing()
	d.Title = "   "
	require.NoError(t, s.SetDraft(d))

	_, _, err = s.SaveEdit()
	assert.ErrorIs(t, err, ErrEmptyTitle)

	stored, _ := s.Task("a")
	assert.Equal(t, "keep", stored.Title)
	_, still := s.Editing()
	assert.True(t, still, "draft stays open after validation failure")
}

func TestSessionSaveAndCommit(t *testing.T) {
	s := NewSession()
	s.Load([]models.Task{task("a", "old", models.PriorityLow, at(time.Hour), false)}, base)
	_, err := s.StartEdit("a")
	require.NoError(t, err)

	d, _ := s.Editing()
	d.Title = "  new  "
	d.Priority = models.PriorityHigh
	d.DueDate = nil
	require.NoError(t, s.SetDraft(d))

	id, patch, err := s.SaveEdit()
	require.NoError(t, err)
	assert.Equal(t, "a", id)
	require.NotNil(t, patch.Title)
	assert.Equal(t, "new", *patch.Title)
	assert.True(t, patch.ClearDueDate)

	// slot stays open until the server confirms
	_, still := s.Editing()
	assert.True(t, still)

	server := task("a", "new", models.PriorityHigh, nil, false)
	s.CommitEdit(server, base)

	_, still = s.Editing()
	assert.False(t, still)
	got, _ := s.Task("a")
	assert.Equal(t, "new", got.Title)
	_, ok := s.Snapshot().Countdowns["a"]
	assert.False(t, ok)
}

func TestSessionCancelEdit(t *testing.T) {
	s := NewSession()
	s.Load([]models.Task{task("a", "a", models.PriorityLow, nil, false)}, base)
	assert.False(t, s.CancelEdit())
	_, err := s.StartEdit("a")
	require.NoError(t, err)
	assert.True(t, s.CancelEdit())
	_, _, err = s.SaveEdit()
	assert.ErrorIs(t, err, ErrNotEditing)
}

func TestSessionReminders(t *testing.T) {
	s := NewSession()
	s.Load([]models.Task{task("a", "a", models.PriorityLow, at(2*time.Hour), false)}, base)

	fireAt := base.Add(time.Hour)
	alarm, err := s.ArmReminder("a", fireAt)
	require.NoError(t, err)
	assert.Equal(t, Alarm{TaskID: "a", At: fireAt}, alarm)

	// a stale tick for another time is ignored
	_, ok := s.FireReminder("a", base.Add(time.Minute))
	assert.False(t, ok)

	got, ok := s.FireReminder("a", fireAt)
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)

	// fires once
	_, ok = s.FireReminder("a", fireAt)
	assert.False(t, ok)

	_, err = s.ArmReminder("missing", fireAt)
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestSessionDisarmAndCompletion(t *testing.T) {
	s := NewSession()
	s.Load([]models.Task{task("a", "a", models.PriorityLow, at(2*time.Hour), false)}, base)
	fireAt := base.Add(time.Hour)

	_, err := s.ArmReminder("a", fireAt)
	require.NoError(t, err)
	assert.True(t, s.DisarmReminder("a"))
	_, ok := s.FireReminder("a", fireAt)
	assert.False(t, ok)

	_, err = s.ArmReminder("a", fireAt)
	require.NoError(t, err)
	done := withReminder(task("a", "a", models.PriorityLow, at(2*time.Hour), true), &fireAt)
	alarms, found := s.Updated(done, base)
	require.True(t, found)
	assert.Empty(t, alarms)
	_, ok = s.FireReminder("a", fireAt)
	assert.False(t, ok)
}

func TestSessionUpdatedArmsPersistedReminder(t *testing.T) {
	s := NewSession()
	s.Load([]models.Task{task("a", "a", models.PriorityLow, at(2*time.Hour), false)}, base)

	fireAt := base.Add(time.Hour)
	updated := withReminder(task("a", "a", models.PriorityLow, at(2*time.Hour), false), &fireAt)
	alarms, ok := s.Updated(updated, base)
	require.True(t, ok)
	assert.Equal(t, []Alarm{{TaskID: "a", At: fireAt}}, alarms)

	// same reminder again is not rescheduled
	alarms, _ = s.Updated(updated, base)
	assert.Empty(t, alarms)
}

func TestSessionTickRefreshesCountdowns(t *testing.T) {
	s := NewSession()
	assert.False(t, s.Snapshot().Ticked)
	s.Load([]models.Task{task("a", "a", models.PriorityLow, at(time.Hour), false)}, base)
	assert.Equal(t, "0d 1h 0m", s.Snapshot().Countdowns["a"])

	s.Tick(base.Add(CountdownInterval))
	assert.Equal(t, "0d 0h 59m", s.Snapshot().Countdowns["a"])

	s.Tick(base.Add(time.Hour))
	assert.Equal(t, OverdueLabel, s.Snapshot().Countdowns["a"])
}

func TestSessionSnapshotUsesFilterAndSearch(t *testing.T) {
	s := NewSession()
	s.Load([]models.Task{
		task("1", "Groceries", models.PriorityLow, nil, false),
		task("2", "Taxes", models.PriorityHigh, nil, true),
	}, base)

	s.SetFilter(FilterCompleted)
	assert.Equal(t, []string{"2"}, ids(s.Snapshot().Visible))

	s.SetFilter(FilterAll)
	s.SetSearch("GROC")
	snap := s.Snapshot()
	assert.Equal(t, []string{"1"}, ids(snap.Visible))
	assert.Equal(t, Stats{Total: 2, Completed: 1, Pending: 1}, snap.Stats)
	assert.Equal(t, "GROC", snap.Search)
}
