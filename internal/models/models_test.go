package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusNeighbours(t *testing.T) {
	assert.Equal(t, StatusInProgress, StatusTodo.Next())
	assert.Equal(t, StatusDone, StatusInProgress.Next())
	assert.Equal(t, StatusDone, StatusDone.Next())

	assert.Equal(t, StatusTodo, StatusTodo.Prev())
	assert.Equal(t, StatusTodo, StatusInProgress.Prev())
	assert.Equal(t, StatusInProgress, StatusDone.Prev())
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want TaskStatus
		ok   bool
	}{
		{"todo", StatusTodo, true},
		{" In_Progress ", StatusInProgress, true},
		{"DONE", StatusDone, true},
		{"all", StatusAll, true},
		{"blocked", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseStatus(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParsePriority(t *testing.T) {
	p, ok := ParsePriority("critical")
	assert.True(t, ok)
	assert.Equal(t, PriorityCritical, p)

	p, ok = ParsePriority("ALL")
	assert.True(t, ok)
	assert.Equal(t, PriorityAll, p)

	_, ok = ParsePriority("urgent")
	assert.False(t, ok)
}

func TestValidExcludesAll(t *testing.T) {
	assert.False(t, StatusAll.Valid())
	assert.False(t, PriorityAll.Valid())
	for _, s := range Statuses() {
		assert.True(t, s.Valid())
	}
	for _, p := range Priorities() {
		assert.True(t, p.Valid())
	}
}

func TestDefaultFiltersPassEverything(t *testing.T) {
	f := DefaultFilters()
	assert.Empty(t, f.Search)
	assert.Equal(t, StatusAll, f.Status)
	assert.Equal(t, PriorityAll, f.Priority)
}

func TestViewModeToggle(t *testing.T) {
	assert.Equal(t, ViewList, ViewKanban.Toggle())
	assert.Equal(t, ViewKanban, ViewList.Toggle())
	assert.Equal(t, ViewList, ViewMode("").Toggle())
	assert.False(t, ViewMode("grid").Valid())
}
