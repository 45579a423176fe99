// Package storage persists the task collection as a single JSON value
// under a fixed key of a key-value medium.
package storage

import (
	"encoding/json"
	"fmt"

	"github.com/tgienger/taskflow/internal/models"
	"go.uber.org/zap"
)

const (
	// TasksKey holds the whole task collection
	TasksKey = "taskflow_tasks"
	// ViewModeKey holds the kanban/list preference
	ViewModeKey = "taskflow_view_mode"
)

// Medium is a durable key-value store. A missing key reads as "".
type Medium interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// TaskStorage translates between the in-memory task slice and the medium.
// Load and Save never return errors; failures are logged and absorbed.
type TaskStorage struct {
	medium Medium
	logger *zap.Logger
}

// New creates a TaskStorage on top of medium
func New(medium Medium, logger *zap.Logger) *TaskStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskStorage{
		medium: medium,
		logger: logger.Named("storage"),
	}
}

// Load returns the stored tasks. An absent key, a read failure or
// undecodable data all yield an empty slice.
func (s *TaskStorage) Load() []models.Task {
	tasks, err := s.load()
	if err != nil {
		s.logger.Error("error loading tasks from storage", zap.String("key", TasksKey), zap.Error(err))
		return []models.Task{}
	}
	return tasks
}

func (s *TaskStorage) load() ([]models.Task, error) {
	raw, err := s.medium.GetSetting(TasksKey)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	if raw == "" {
		return []models.Task{}, nil
	}

	var tasks []models.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if tasks == nil {
		// stored "null"
		tasks = []models.Task{}
	}
	return tasks, nil
}

// Save overwrites the stored collection with tasks
func (s *TaskStorage) Save(tasks []models.Task) {
	if err := s.save(tasks); err != nil {
		s.logger.Error("error saving tasks to storage",
			zap.String("key", TasksKey),
			zap.Int("count", len(tasks)),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("tasks saved", zap.Int("count", len(tasks)))
}

func (s *TaskStorage) save(tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := s.medium.SetSetting(TasksKey, string(data)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// LoadViewMode returns the saved view mode, falling back to fallback
// when nothing valid is stored
func (s *TaskStorage) LoadViewMode(fallback models.ViewMode) models.ViewMode {
	raw, err := s.medium.GetSetting(ViewModeKey)
	if err != nil {
		s.logger.Error("error loading view mode", zap.Error(err))
		return fallback
	}
	if mode := models.ViewMode(raw); mode.Valid() {
		return mode
	}
	return fallback
}

// SaveViewMode stores the view mode preference
func (s *TaskStorage) SaveViewMode(mode models.ViewMode) {
	if err := s.medium.SetSetting(ViewModeKey, string(mode)); err != nil {
		s.logger.Error("error saving view mode", zap.String("mode", string(mode)), zap.Error(err))
	}
}
