package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskverse/internal/models"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := base.Add(d)
	return &t
}

func task(id, title string, pr models.Priority, due *time.Time, done bool) models.Task {
	return models.Task{ID: id, Title: title, Priority: pr, DueDate: due, Completed: done}
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestVisibleTasksOrdering(t *testing.T) {
	all := []models.Task{
		task("a", "low later", models.PriorityLow, at(48*time.Hour), false),
		task("b", "high none", models.PriorityHigh, nil, false),
		task("c", "high soon", models.PriorityHigh, at(time.Hour), false),
		task("d", "medium", models.PriorityMedium, at(2*time.Hour), false),
		task("e", "high later", models.PriorityHigh, at(5*time.Hour), false),
	}
	got := VisibleTasks(all, FilterAll, "")
	assert.Equal(t, []string{"c", "e", "b", "d", "a"}, ids(got))
}

func TestVisibleTasksStableForTies(t *testing.T) {
	all := []models.Task{
		task("x", "one", models.PriorityMedium, nil, false),
		task("y", "two", models.PriorityMedium, nil, false),
		task("z", "three", models.PriorityMedium, nil, false),
	}
	assert.Equal(t, []string{"x", "y", "z"}, ids(VisibleTasks(all, FilterAll, "")))
}

func TestVisibleTasksUnknownPriorityLast(t *testing.T) {
	all := []models.Task{
		task("odd", "odd", models.Priority("Urgent"), at(time.Minute), false),
		task("low", "low", models.PriorityLow, nil, false),
	}
	assert.Equal(t, []string{"low", "odd"}, ids(VisibleTasks(all, FilterAll, "")))
}

func TestVisibleTasksFilterAndSearch(t *testing.T) {
	all := []models.Task{
		task("1", "Buy milk", models.PriorityMedium, nil, false),
		task("2", "Write report", models.PriorityHigh, nil, true),
		{ID: "3", Title: "Call", Description: "ask about MILK delivery", Priority: models.PriorityLow},
	}

	tests := []struct {
		name   string
		mode   FilterMode
		search string
		want   []string
	}{
		{"all", FilterAll, "", []string{"2", "1", "3"}},
		{"completed", FilterCompleted, "", []string{"2"}},
		{"pending", FilterPending, "", []string{"1", "3"}},
		{"search title and description case-insensitively", FilterAll, "milk", []string{"1", "3"}},
		{"search with filter", FilterCompleted, "milk", []string{}},
		{"no match", FilterAll, "zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(VisibleTasks(all, tt.mode, tt.search)))
		})
	}
}

func TestVisibleTasksIsPureAndIdempotent(t *testing.T) {
	all := []models.Task{
		task("a", "a", models.PriorityLow, nil, false),
		task("b", "b", models.PriorityHigh, nil, false),
	}
	first := VisibleTasks(all, FilterAll, "")
	second := VisibleTasks(all, FilterAll, "")
	assert.Equal(t, first, second)
	assert.Equal(t, []string{"a", "b"}, ids(all), "input order must not change")

	again := VisibleTasks(first, FilterAll, "")
	assert.Equal(t, ids(first), ids(again))
}

func TestFilterModeParseAndNext(t *testing.T) {
	m, ok := ParseFilterMode("")
	require.True(t, ok)
	assert.Equal(t, FilterAll, m)

	m, ok = ParseFilterMode("Pending")
	require.True(t, ok)
	assert.Equal(t, FilterPending, m)

	_, ok = ParseFilterMode("archived")
	assert.False(t, ok)

	assert.Equal(t, FilterCompleted, FilterAll.Next())
	assert.Equal(t, FilterPending, FilterCompleted.Next())
	assert.Equal(t, FilterAll, FilterPending.Next())
}

func TestComputeStats(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats(nil))

	all := []models.Task{
		task("1", "a", models.PriorityLow, nil, true),
		task("2", "b", models.PriorityLow, nil, false),
		task("3", "c", models.PriorityLow, nil, true),
	}
	s := ComputeStats(all)
	assert.Equal(t, Stats{Total: 3, Completed: 2, Pending: 1}, s)
	assert.Equal(t, s.Total, s.Completed+s.Pending)
}

func TestTimeRemaining(t *testing.T) {
	tests := []struct {
		name string
		due  *time.Time
		want string
		ok   bool
	}{
		{"no due date", nil, "", false},
		{"one day one hour", at(90000 * time.Second), "1d 1h 0m", true},
		{"minutes only", at(59*time.Minute + 30*time.Second), "0d 0h 59m", true},
		{"exactly now", at(0), OverdueLabel, true},
		{"one second late", at(-time.Second), OverdueLabel, true},
		{"multi day", at(3*24*time.Hour + 4*time.Hour + 5*time.Minute), "3d 4h 5m", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TimeRemaining(tt.due, base)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountdownsSkipsUndated(t *testing.T) {
	all := []models.Task{
		task("a", "a", models.PriorityLow, at(time.Hour), false),
		task("b", "b", models.PriorityLow, nil, false),
	}
	assert.Equal(t, map[string]string{"a": "0d 1h 0m"}, Countdowns(all, base))
}

func TestScheduleReminder(t *testing.T) {
	t.Run("fires lead minutes before due", func(t *testing.T) {
		fireAt, err := ScheduleReminder(task("a", "a", models.PriorityLow, at(time.Hour), false), 30, base)
		require.NoError(t, err)
		assert.Equal(t, base.Add(30*time.Minute), fireAt)
	})
	t.Run("lead time already passed", func(t *testing.T) {
		_, err := ScheduleReminder(task("a", "a", models.PriorityLow, at(10*time.Minute), false), 30, base)
		assert.ErrorIs(t, err, ErrLeadTimeElapsed)
	})
	t.Run("fire time equal to now", func(t *testing.T) {
		_, err := ScheduleReminder(task("a", "a", models.PriorityLow, at(30*time.Minute), false), 30, base)
		assert.ErrorIs(t, err, ErrLeadTimeElapsed)
	})
	t.Run("no due date", func(t *testing.T) {
		_, err := ScheduleReminder(task("a", "a", models.PriorityLow, nil, false), 5, base)
		assert.ErrorIs(t, err, ErrNoDueDate)
	})
	t.Run("negative lead", func(t *testing.T) {
		_, err := ScheduleReminder(task("a", "a", models.PriorityLow, at(time.Hour), false), -1, base)
		assert.ErrorIs(t, err, ErrNegativeLead)
	})
}

func TestReminderPatch(t *testing.T) {
	p := ReminderPatch(base)
	require.NotNil(t, p.Reminder)
	assert.True(t, p.Reminder.Enabled)
	assert.True(t, p.Reminder.Time.Equal(base))
	assert.Nil(t, p.Title)
}

func TestValidateTitle(t *testing.T) {
	assert.ErrorIs(t, ValidateTitle(""), ErrEmptyTitle)
	assert.ErrorIs(t, ValidateTitle("   \t"), ErrEmptyTitle)
	assert.NoError(t, ValidateTitle(" x "))
}
