package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskverse/internal/database"
	"taskverse/internal/models"
)

type TaskRepository interface {
	// Store assigns id and timestamps, trims title and description, and inserts.
	Store(ctx context.Context, task *models.Task) error
	// FindByID returns nil, nil when no task has that id.
	FindByID(ctx context.Context, id string) (*models.Task, error)
	// FindAll returns every task, newest first.
	FindAll(ctx context.Context) ([]models.Task, error)
	// Update overwrites the mutable columns and reports whether a row matched.
	// The fired marker is cleared when resetReminder is set and left as stored
	// otherwise.
	Update(ctx context.Context, task *models.Task, resetReminder bool) (bool, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id string) (bool, error)

	ListDueForReminder(ctx context.Context, now time.Time, limit int) ([]models.Task, error)
	SetReminderFired(ctx context.Context, id string, at time.Time) error
}

type taskRepository struct {
	db  *database.DB
	now func() time.Time
}

func NewTaskRepository(db *database.DB) TaskRepository {
	return &taskRepository{db: db, now: time.Now}
}

const taskColumns = `id, title, description, completed, due_date, priority,
	reminder_enabled, reminder_time, reminder_fired_at, owner_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t                   models.Task
		priority            string
		due, remAt, firedAt sql.NullTime
		owner               sql.NullString
	)
	if err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed, &due, &priority,
		&t.Reminder.Enabled, &remAt, &firedAt, &owner, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Priority = models.Priority(priority)
	t.DueDate = timePtr(due)
	t.Reminder.Time = timePtr(remAt)
	t.ReminderFiredAt = timePtr(firedAt)
	if owner.Valid {
		o := owner.String
		t.OwnerID = &o
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func (r *taskRepository) Store(ctx context.Context, task *models.Task) error {
	now := r.now().UTC()
	task.ID = uuid.NewString()
	task.Title = strings.TrimSpace(task.Title)
	task.Description = strings.TrimSpace(task.Description)
	task.CreatedAt = now
	task.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO tasks (` + taskColumns + `)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.Completed, nullTime(task.DueDate), string(task.Priority),
		task.Reminder.Enabled, nullTime(task.Reminder.Time), nullTime(task.ReminderFiredAt), nullString(task.OwnerID),
		task.CreatedAt, task.UpdatedAt,
	)
	return err
}

func (r *taskRepository) FindByID(ctx context.Context, id string) (*models.Task, error) {
	query := r.db.Rebind(`SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`)
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return task, err
}

func (r *taskRepository) FindAll(ctx context.Context) ([]models.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task, resetReminder bool) (bool, error) {
	task.Title = strings.TrimSpace(task.Title)
	task.Description = strings.TrimSpace(task.Description)
	task.UpdatedAt = r.now().UTC()

	query := r.db.Rebind(`
		UPDATE tasks SET
			title=?, description=?, completed=?, due_date=?, priority=?,
			reminder_enabled=?, reminder_time=?,
			reminder_fired_at=CASE WHEN ? THEN NULL ELSE reminder_fired_at END,
			updated_at=?
		WHERE id=?`)
	res, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.Completed, nullTime(task.DueDate), string(task.Priority),
		task.Reminder.Enabled, nullTime(task.Reminder.Time), resetReminder, task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if n > 0 && resetReminder {
		task.ReminderFiredAt = nil
	}
	return n > 0, err
}

func (r *taskRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListDueForReminder returns enabled, unfired reminders of open tasks whose
// time has been reached, oldest first.
func (r *taskRepository) ListDueForReminder(ctx context.Context, now time.Time, limit int) ([]models.Task, error) {
	query := r.db.Rebind(`
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE reminder_enabled = ?
		  AND reminder_time IS NOT NULL
		  AND reminder_time <= ?
		  AND reminder_fired_at IS NULL
		  AND completed = ?
		ORDER BY reminder_time ASC
		LIMIT ?`)
	rows, err := r.db.QueryContext(ctx, query, true, now.UTC(), false, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *taskRepository) SetReminderFired(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE tasks SET reminder_fired_at = ? WHERE id = ? AND reminder_fired_at IS NULL`),
		at.UTC(), id)
	return err
}
