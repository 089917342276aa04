package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	dom "github.com/annie987/todo/internal/domain"
	"github.com/annie987/todo/internal/repo"
	"github.com/annie987/todo/internal/utils"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("task not found")
	ErrInvalidInput = errors.New("invalid task")
)

// ListCache is the read-through cache in front of List.
// cache.TaskCache implements it.
type ListCache interface {
	GetList(ctx context.Context) ([]dom.Task, error)
	SetList(ctx context.Context, list []dom.Task) error
	Invalidate(ctx context.Context) error
}

// CreateInput is what a new task is made from.
type CreateInput struct {
	Title       string
	Description *string
	Completed   bool
	DueDate     *time.Time
	Priority    string
}

type TaskService struct {
	repo  repo.TaskRepo
	cache ListCache
	sf    singleflight.Group
	// gen counts cache invalidations. A list fill started under an older
	// generation must not stay in the cache.
	gen atomic.Uint64
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(r repo.TaskRepo, c ListCache) *TaskService {
	return &TaskService{repo: r, cache: c}
}

func (s *TaskService) Create(ctx context.Context, in CreateInput) (dom.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return dom.Task{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	prio, err := parsePriority(in.Priority)
	if err != nil {
		return dom.Task{}, err
	}

	t, err := s.repo.Create(ctx, dom.Task{
		Title:       in.Title,
		Description: in.Description,
		Completed:   in.Completed,
		DueDate:     in.DueDate,
		Priority:    prio,
	})
	if err != nil {
		return dom.Task{}, translate(err)
	}
	s.invalidateCache(ctx)
	return t, nil
}

func (s *TaskService) List(ctx context.Context) ([]dom.Task, error) {
	if s.cache != nil {
		v, err, _ := s.sf.Do("list", func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx); err == nil && list != nil {
				return list, nil
			}
			gen := s.gen.Load()
			list, err := s.repo.List(ctx)
			if err != nil {
				return nil, err
			}
			if s.gen.Load() != gen {
				return list, nil
			}
			_ = s.cache.SetList(ctx, list)
			if s.gen.Load() != gen {
				s.dropCache(ctx)
			}
			return list, nil
		})
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		return v.([]dom.Task), nil
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return list, nil
}

func (s *TaskService) GetByID(ctx context.Context, id int64) (dom.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return dom.Task{}, translate(err)
	}
	return t, nil
}

// Update overwrites only the fields set in patch.
func (s *TaskService) Update(ctx context.Context, id int64, title, desc *string, completed *bool, priority *string, dueSet bool, dueDate *time.Time) (dom.Task, error) {
	patch := dom.TaskPatch{
		Title:       title,
		Description: desc,
		Completed:   completed,
		DueDateSet:  dueSet,
		DueDate:     dueDate,
	}
	if title != nil && strings.TrimSpace(*title) == "" {
		return dom.Task{}, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
	}
	if priority != nil {
		p, err := parsePriority(*priority)
		if err != nil {
			return dom.Task{}, err
		}
		patch.Priority = &p
	}

	t, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return dom.Task{}, translate(err)
	}
	if !patch.Empty() {
		s.invalidateCache(ctx)
	}
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return translate(err)
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *TaskService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.gen.Add(1)
		s.dropCache(ctx)
	}
}

func (s *TaskService) dropCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("task cache invalidate: %v", err)
	}
}

// parsePriority defaults an empty value to low and rejects unknown levels.
func parsePriority(s string) (dom.Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return dom.PriorityLow, nil
	}
	p := dom.Priority(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: priority %q must be one of low, medium, high", ErrInvalidInput, s)
	}
	return p, nil
}

// translate maps storage errors onto the service's sentinels.
func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case utils.IsPGConstraintViolation(err):
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return err
}
