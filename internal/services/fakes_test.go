package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"taskverse/internal/database"
	"taskverse/internal/models"
)

var errDown = errors.New("connection refused")

// memTaskRepo is an in-memory TaskRepository, newest first.
type memTaskRepo struct {
	mu      sync.Mutex
	tasks   []models.Task
	fail    bool
	findAll int
	// afterFindAll runs once, after the snapshot is taken and the lock released.
	afterFindAll func()
}

func (r *memTaskRepo) Store(_ context.Context, t *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errDown
	}
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	r.tasks = append([]models.Task{*t}, r.tasks...)
	return nil
}

func (r *memTaskRepo) FindByID(_ context.Context, id string) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return nil, errDown
	}
	for _, t := range r.tasks {
		if t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memTaskRepo) FindAll(ctx context.Context) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.findAll++
	if r.fail {
		r.mu.Unlock()
		return nil, errDown
	}
	out := append([]models.Task{}, r.tasks...)
	hook := r.afterFindAll
	r.afterFindAll = nil
	r.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (r *memTaskRepo) Update(_ context.Context, t *models.Task, resetReminder bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return false, errDown
	}
	for i := range r.tasks {
		if r.tasks[i].ID == t.ID {
			t.UpdatedAt = time.Now().UTC()
			if resetReminder {
				t.ReminderFiredAt = nil
			} else {
				t.ReminderFiredAt = r.tasks[i].ReminderFiredAt
			}
			r.tasks[i] = *t
			return true, nil
		}
	}
	return false, nil
}

func (r *memTaskRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return false, errDown
	}
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memTaskRepo) ListDueForReminder(_ context.Context, now time.Time, limit int) ([]models.Task, error) {
	return nil, nil
}

func (r *memTaskRepo) SetReminderFired(_ context.Context, id string, at time.Time) error {
	return nil
}

// memCache is an in-memory TaskListCache.
type memCache struct {
	mu          sync.Mutex
	list        []models.Task
	gen         int64
	sets        int
	invalidated int
}

func (c *memCache) GetList(context.Context) ([]models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list, nil
}

func (c *memCache) Generation(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen, nil
}

func (c *memCache) SetList(_ context.Context, gen int64, l []models.Task) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false, nil
	}
	c.sets++
	c.list = append([]models.Task{}, l...)
	return true, nil
}

func (c *memCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	c.gen++
	c.list = nil
	return nil
}

func newSQLite(t *testing.T) *database.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite", filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))
	return db
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
