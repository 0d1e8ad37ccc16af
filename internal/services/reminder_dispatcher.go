package services

import (
	"context"
	"log"
	"time"

	"taskverse/internal/models"
	"taskverse/internal/repositories"
)

// ReminderNotifier delivers one fired reminder to its owner.
type ReminderNotifier interface {
	Name() string
	NotifyReminder(ctx context.Context, user *models.User, task models.Task) error
}

// ReminderDispatcher fires persisted reminders whose time has come. Each
// reminder fires once: it is marked fired whether or not delivery worked.
type ReminderDispatcher struct {
	tasks     repositories.TaskRepository
	users     repositories.UserRepository
	notifiers []ReminderNotifier
	interval  time.Duration
	batch     int
	now       func() time.Time
}

func NewReminderDispatcher(tasks repositories.TaskRepository, users repositories.UserRepository, interval time.Duration, batch int, notifiers ...ReminderNotifier) *ReminderDispatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &ReminderDispatcher{
		tasks:     tasks,
		users:     users,
		notifiers: notifiers,
		interval:  interval,
		batch:     batch,
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled.
func (d *ReminderDispatcher) Run(ctx context.Context) error {
	log.Printf("[reminder] dispatcher started interval=%s notifiers=%d", d.interval, len(d.notifiers))
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		if _, err := d.DispatchDue(ctx, d.now()); err != nil && ctx.Err() == nil {
			log.Printf("[reminder][err] %v", err)
		}
		select {
		case <-ctx.Done():
			log.Printf("[reminder] dispatcher stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// DispatchDue fires every reminder due at now and returns how many were
// marked fired.
func (d *ReminderDispatcher) DispatchDue(ctx context.Context, now time.Time) (int, error) {
	due, err := d.tasks.ListDueForReminder(ctx, now, d.batch)
	if err != nil {
		return 0, storeErr(err)
	}
	fired := 0
	for _, task := range due {
		d.deliver(ctx, task)
		if err := d.tasks.SetReminderFired(ctx, task.ID, now); err != nil {
			log.Printf("[reminder][fire][err] id=%s mark fired: %v", task.ID, err)
			continue
		}
		fired++
	}
	return fired, nil
}

func (d *ReminderDispatcher) deliver(ctx context.Context, task models.Task) {
	if task.OwnerID == nil {
		log.Printf("[reminder][fire] guest task id=%s title=%q", task.ID, task.Title)
		return
	}
	user, err := d.users.GetByID(ctx, *task.OwnerID)
	if err != nil {
		log.Printf("[reminder][fire][err] id=%s owner=%s: %v", task.ID, *task.OwnerID, err)
		return
	}
	if user == nil {
		log.Printf("[reminder][fire] id=%s owner=%s no longer exists", task.ID, *task.OwnerID)
		return
	}
	for _, n := range d.notifiers {
		if err := n.NotifyReminder(ctx, user, task); err != nil {
			log.Printf("[reminder][fire][%s][err] id=%s: %v", n.Name(), task.ID, err)
			continue
		}
	}
	log.Printf("[reminder][fire] id=%s owner=%s title=%q", task.ID, user.ID, task.Title)
}
