package service

import (
	"context"
	"errors"
	"strings"
	"time"

	dom "taskward/internal/domain"
	"taskward/internal/repo"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"

	"taskward/internal/cache"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrEmptyContent = errors.New("content is required")
)

// TaskService owns task validation and the cached listing path. All calls are
// made on behalf of a user id resolved by the session middleware; the service
// never trusts a task id without it.
type TaskService struct {
	repo  repo.TaskRepo
	cache *cache.TaskCache
	sf    singleflight.Group
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(r repo.TaskRepo, c *cache.TaskCache) *TaskService {
	return &TaskService{repo: r, cache: c}
}

func (s *TaskService) Create(ctx context.Context, userID int64, content string, priority dom.Priority, dueDate time.Time) (dom.Task, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return dom.Task{}, ErrEmptyContent
	}
	t, err := s.repo.Create(ctx, dom.Task{
		UserID:   userID,
		Content:  content,
		Priority: priority,
		DueDate:  dueDate,
	})
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// List returns the user's tasks under the given filter. Identical concurrent
// listings share one cache-or-database round trip via singleflight.
func (s *TaskService) List(ctx context.Context, userID int64, f dom.TaskFilter) ([]dom.Task, error) {
	if s.cache == nil {
		return s.repo.List(ctx, userID, f)
	}
	key := cache.ListKey(userID, f)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		if list, err := s.cache.GetList(ctx, userID, f); err == nil && list != nil {
			return list, nil
		}
		list, err := s.repo.List(ctx, userID, f)
		if err != nil {
			return nil, err
		}
		_ = s.cache.SetList(ctx, userID, f, list)
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]dom.Task), nil
}

func (s *TaskService) GetByID(ctx context.Context, userID, id int64) (dom.Task, error) {
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	return t, nil
}

// Edit overwrites content, priority and due date in one scoped statement.
// Concurrent edits to the same task are last-write-wins.
func (s *TaskService) Edit(ctx context.Context, userID, id int64, content string, priority dom.Priority, dueDate time.Time) (dom.Task, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return dom.Task{}, ErrEmptyContent
	}
	t, err := s.repo.Update(ctx, userID, id, dom.Task{
		Content:  content,
		Priority: priority,
		DueDate:  dueDate,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// Toggle flips the completed flag and returns the task in its new state.
func (s *TaskService) Toggle(ctx context.Context, userID, id int64) (dom.Task, error) {
	t, err := s.repo.ToggleCompleted(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// Delete removes the task. Deleting a missing or foreign task reports
// ErrNotFound, so a repeated delete never claims success twice.
func (s *TaskService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.invalidateCache(ctx, userID)
	return nil
}

func (s *TaskService) invalidateCache(ctx context.Context, userID int64) {
	if s.cache != nil {
		_ = s.cache.InvalidateUser(ctx, userID)
	}
}
