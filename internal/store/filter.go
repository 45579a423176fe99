package store

import (
	"strings"

	"github.com/tgienger/taskflow/internal/models"
)

// Matches reports whether task passes f. An empty search matches everything;
// an empty status or priority is treated like ALL.
func Matches(task models.Task, f models.TaskFilters) bool {
	search := strings.ToLower(f.Search)
	matchesSearch := strings.Contains(strings.ToLower(task.Title), search) ||
		strings.Contains(strings.ToLower(task.Responsible), search)

	matchesStatus := f.Status == models.StatusAll || f.Status == "" || f.Status == task.Status
	matchesPriority := f.Priority == models.PriorityAll || f.Priority == "" || f.Priority == task.Priority

	return matchesSearch && matchesStatus && matchesPriority
}

// Filter returns the tasks passing f, keeping their order
func Filter(tasks []models.Task, f models.TaskFilters) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if Matches(t, f) {
			out = append(out, t)
		}
	}
	return out
}

// Columns groups the filtered view by status for the kanban board.
// Every status has an entry, possibly empty.
func (s *Store) Columns() map[models.TaskStatus][]models.Task {
	cols := make(map[models.TaskStatus][]models.Task, len(models.Statuses()))
	for _, st := range models.Statuses() {
		cols[st] = []models.Task{}
	}
	for _, t := range s.Tasks() {
		cols[t.Status] = append(cols[t.Status], t)
	}
	return cols
}

// Stats counts tasks per status
type Stats struct {
	Total      int
	Todo       int
	InProgress int
	Done       int
}

// Stats counts the unfiltered collection
func (s *Store) Stats() Stats {
	var st Stats
	for _, t := range s.AllTasks() {
		st.Total++
		switch t.Status {
		case models.StatusTodo:
			st.Todo++
		case models.StatusInProgress:
			st.InProgress++
		case models.StatusDone:
			st.Done++
		}
	}
	return st
}
