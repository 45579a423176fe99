// Package store owns the canonical task collection. Every mutation that
// changes the collection is followed by exactly one full-collection save.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tgienger/taskflow/internal/models"
	"go.uber.org/zap"
)

// Persister loads and saves the whole task collection
type Persister interface {
	Load() []models.Task
	Save(tasks []models.Task)
}

// Store is the only sanctioned way to read or change tasks
type Store struct {
	mu        sync.Mutex
	persister Persister
	tasks     []models.Task
	filters   models.TaskFilters

	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the UUID generator
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New loads the persisted collection and returns a ready Store.
// Saving is only done after mutations, never here.
func New(p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		filters:   models.DefaultFilters(),
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("store")

	s.tasks = p.Load()
	if s.tasks == nil {
		s.tasks = []models.Task{}
	}
	s.logger.Info("tasks loaded", zap.Int("count", len(s.tasks)))
	return s
}

// Create adds a new task to the front of the collection
func (s *Store) Create(in models.TaskInput) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := models.Task{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      in.Status,
		Responsible: in.Responsible,
		CreatedAt:   s.now(),
	}

	tasks := make([]models.Task, 0, len(s.tasks)+1)
	tasks = append(tasks, task)
	tasks = append(tasks, s.tasks...)
	s.commit(tasks)

	s.logger.Debug("task created", zap.String("id", task.ID))
	return task
}

// Update merges patch into the task with the given id. Unknown ids are ignored.
func (s *Store) Update(id string, patch models.TaskPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.logger.Debug("update of unknown task ignored", zap.String("id", id))
		return
	}

	prev := s.tasks[idx]
	task := prev
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Responsible != nil {
		task.Responsible = *patch.Responsible
	}

	now := s.now()
	task.UpdatedAt = &now

	switch {
	case patch.Status != nil && *patch.Status == models.StatusDone && prev.Status != models.StatusDone:
		completed := now
		task.CompletedAt = &completed
	case patch.Status != nil && *patch.Status != models.StatusDone && prev.Status == models.StatusDone:
		task.CompletedAt = nil
	}

	tasks := s.snapshot()
	tasks[idx] = task
	s.commit(tasks)

	s.logger.Debug("task updated", zap.String("id", id), zap.String("status", string(task.Status)))
}

// ChangeStatus moves a task to another column
func (s *Store) ChangeStatus(id string, status models.TaskStatus) {
	s.Update(id, models.TaskPatch{Status: &status})
}

// Delete removes the task with the given id. Unknown ids are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		s.logger.Debug("delete of unknown task ignored", zap.String("id", id))
		return
	}

	tasks := make([]models.Task, 0, len(s.tasks)-1)
	tasks = append(tasks, s.tasks[:idx]...)
	tasks = append(tasks, s.tasks[idx+1:]...)
	s.commit(tasks)

	s.logger.Debug("task deleted", zap.String("id", id))
}

// Get returns the task with the given id
func (s *Store) Get(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return models.Task{}, false
	}
	return cloneTask(s.tasks[idx]), true
}

// AllTasks returns the unfiltered collection, newest first
func (s *Store) AllTasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Filters returns the active filters
func (s *Store) Filters() models.TaskFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// SetFilters replaces the active filters
func (s *Store) SetFilters(f models.TaskFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = f
}

// Tasks returns the tasks passing the active filters, in collection order
func (s *Store) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Filter(s.snapshot(), s.filters)
}

// commit installs tasks as the canonical collection and persists it.
// Must be called with mu held.
func (s *Store) commit(tasks []models.Task) {
	s.tasks = tasks
	s.persister.Save(s.snapshot())
}

// snapshot copies the collection so callers and the persister never
// alias the canonical tasks. Must be called with mu held.
func (s *Store) snapshot() []models.Task {
	out := make([]models.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = cloneTask(t)
	}
	return out
}

// cloneTask copies t including its timestamp pointers
func cloneTask(t models.Task) models.Task {
	t.UpdatedAt = cloneTime(t.UpdatedAt)
	t.CompletedAt = cloneTime(t.CompletedAt)
	return t
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
