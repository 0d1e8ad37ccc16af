package services

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"taskverse/internal/authz"
	"taskverse/internal/models"
	"taskverse/internal/repositories"
)

// TaskService defines the task business logic behind the REST surface.
type TaskService interface {
	// List returns all tasks, newest first.
	List(ctx context.Context) ([]models.Task, error)
	// Create applies defaults, records ownerID (empty for guests) and persists.
	Create(ctx context.Context, patch models.TaskPatch, ownerID string) (*models.Task, error)
	// Update returns ErrTaskNotFound when no task has id.
	Update(ctx context.Context, id string, patch models.TaskPatch, callerID string) (*models.Task, error)
	// Delete succeeds for unknown ids.
	Delete(ctx context.Context, id, callerID string) error
}

// TaskListCache is the optional read-through cache for List. Invalidate
// bumps the generation, and SetList only stores a list read under the
// current one.
type TaskListCache interface {
	GetList(ctx context.Context) ([]models.Task, error)
	Generation(ctx context.Context) (int64, error)
	SetList(ctx context.Context, gen int64, list []models.Task) (bool, error)
	Invalidate(ctx context.Context) error
}

type taskService struct {
	repo             repositories.TaskRepository
	cache            TaskListCache
	enforceOwnership bool
	group            singleflight.Group
}

// NewTaskService creates a TaskService. cache may be nil.
func NewTaskService(repo repositories.TaskRepository, cache TaskListCache, enforceOwnership bool) TaskService {
	return &taskService{repo: repo, cache: cache, enforceOwnership: enforceOwnership}
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// ParseTaskID canonicalizes a task id or returns ErrInvalidIdentifier.
func ParseTaskID(id string) (string, error) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", ErrInvalidIdentifier
	}
	return u.String(), nil
}

func (s *taskService) List(ctx context.Context) ([]models.Task, error) {
	if s.cache == nil {
		return s.load(ctx)
	}
	cached, err := s.cache.GetList(ctx)
	if err != nil {
		log.Printf("[task][list][cache][err] %v", err)
	} else if cached != nil {
		return cached, nil
	}

	gen, err := s.cache.Generation(ctx)
	if err != nil {
		log.Printf("[task][list][cache][err] generation: %v", err)
		return s.load(ctx)
	}

	// callers arriving after a write never join a fill started before it
	v, err, shared := s.group.Do("list:"+strconv.FormatInt(gen, 10), func() (any, error) {
		fillCtx := context.WithoutCancel(ctx)
		tasks, err := s.load(fillCtx)
		if err != nil {
			return nil, err
		}
		stored, err := s.cache.SetList(fillCtx, gen, tasks)
		if err != nil {
			log.Printf("[task][list][cache][err] set: %v", err)
		} else if !stored {
			log.Printf("[task][list][cache] fill dropped, list changed while loading")
		}
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Printf("[task][list] coalesced cache fill")
	}
	return v.([]models.Task), nil
}

func (s *taskService) load(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return tasks, nil
}

func (s *taskService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("[task][cache][err] invalidate: %v", err)
	}
}

func (s *taskService) Create(ctx context.Context, patch models.TaskPatch, ownerID string) (*models.Task, error) {
	task := models.NewTask()
	patch.Apply(&task)
	if ownerID != "" {
		owner := ownerID
		task.OwnerID = &owner
	}
	if err := s.repo.Store(ctx, &task); err != nil {
		return nil, storeErr(err)
	}
	s.invalidate(ctx)
	return &task, nil
}

func (s *taskService) Update(ctx context.Context, id string, patch models.TaskPatch, callerID string) (*models.Task, error) {
	id, err := ParseTaskID(id)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if existing == nil {
		return nil, ErrTaskNotFound
	}
	if !authz.CanModify(existing.OwnerID, callerID, s.enforceOwnership) {
		return nil, ErrForbidden
	}

	// a new reminder setting fires again
	reminderChanged := patch.Apply(existing)
	ok, err := s.repo.Update(ctx, existing, reminderChanged)
	if err != nil {
		return nil, storeErr(err)
	}
	if !ok {
		return nil, ErrTaskNotFound
	}
	s.invalidate(ctx)
	return existing, nil
}

func (s *taskService) Delete(ctx context.Context, id, callerID string) error {
	id, err := ParseTaskID(id)
	if err != nil {
		return err
	}
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeErr(err)
	}
	if existing == nil {
		return nil
	}
	if !authz.CanModify(existing.OwnerID, callerID, s.enforceOwnership) {
		return ErrForbidden
	}
	if _, err := s.repo.Delete(ctx, id); err != nil {
		return storeErr(err)
	}
	s.invalidate(ctx)
	return nil
}
