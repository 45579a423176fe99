package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/taskflow/internal/models"
	"github.com/tgienger/taskflow/internal/storage"
)

// fakePersister records every save
type fakePersister struct {
	mu      sync.Mutex
	initial []models.Task
	loads   int
	saves   [][]models.Task
}

func (f *fakePersister) Load() []models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.initial
}

func (f *fakePersister) Save(tasks []models.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves = append(f.saves, tasks)
}

func (f *fakePersister) lastSave(t *testing.T) []models.Task {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.saves)
	return f.saves[len(f.saves)-1]
}

// tickingClock advances one second per reading
type tickingClock struct {
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestStore(p *fakePersister) (*Store, *tickingClock) {
	clock := &tickingClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	seq := 0
	s := New(p,
		WithClock(clock.Now),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("task-%d", seq)
		}),
	)
	return s, clock
}

func ptr[T any](v T) *T { return &v }

func planRelease() models.TaskInput {
	return models.TaskInput{
		Title:       "Plan release",
		Responsible: "Carla",
		Status:      models.StatusTodo,
		Priority:    models.PriorityMedium,
	}
}

func TestNewLoadsOnceAndNeverSaves(t *testing.T) {
	p := &fakePersister{initial: []models.Task{{ID: "x", Title: "existing", Status: models.StatusTodo}}}

	s, _ := newTestStore(p)

	assert.Equal(t, 1, p.loads)
	assert.Empty(t, p.saves)
	require.Len(t, s.AllTasks(), 1)
	assert.Equal(t, "existing", s.AllTasks()[0].Title)
}

func TestNewWithNilLoadIsEmpty(t *testing.T) {
	s, _ := newTestStore(&fakePersister{})
	assert.NotNil(t, s.AllTasks())
	assert.Empty(t, s.Tasks())
}

func TestCreateStampsTask(t *testing.T) {
	p := &fakePersister{}
	s, clock := newTestStore(p)

	task := s.Create(planRelease())

	assert.Equal(t, "task-1", task.ID)
	assert.Equal(t, clock.now, task.CreatedAt)
	assert.Nil(t, task.UpdatedAt)
	assert.Nil(t, task.CompletedAt)
	assert.Equal(t, "Plan release", task.Title)
	assert.Equal(t, models.PriorityMedium, task.Priority)
}

func TestCreateUsesUniqueIDs(t *testing.T) {
	s := New(&fakePersister{})

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		task := s.Create(planRelease())
		require.NotEmpty(t, task.ID)
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
}

func TestCreatePrepends(t *testing.T) {
	s, _ := newTestStore(&fakePersister{})

	first := s.Create(models.TaskInput{Title: "first", Status: models.StatusTodo})
	second := s.Create(models.TaskInput{Title: "second", Status: models.StatusTodo})

	all := s.AllTasks()
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
}

func TestCreateDoneHasNoCompletedAt(t *testing.T) {
	s, _ := newTestStore(&fakePersister{})

	task := s.Create(models.TaskInput{Title: "already done", Status: models.StatusDone})

	assert.Nil(t, task.CompletedAt)
}

func TestUpdateMergesPatch(t *testing.T) {
	s, clock := newTestStore(&fakePersister{})
	task := s.Create(planRelease())

	s.Update(task.ID, models.TaskPatch{
		Title:    ptr("Plan release v2"),
		Priority: ptr(models.PriorityCritical),
	})

	got, ok := s.Get(task.ID)
	require.True(t, ok)
	assert.Equal(t, "Plan release v2", got.Title)
	assert.Equal(t, models.PriorityCritical, got.Priority)
	assert.Equal(t, "Carla", got.Responsible)
	assert.Equal(t, models.StatusTodo, got.Status)
	assert.Equal(t, task.CreatedAt, got.CreatedAt)
	require.NotNil(t, got.UpdatedAt)
	assert.Equal(t, clock.now, *got.UpdatedAt)
	assert.Nil(t, got.CompletedAt)
}

func TestCompletionTimestampLifecycle(t *testing.T) {
	s, _ := newTestStore(&fakePersister{})
	task := s.Create(planRelease())

	s.ChangeStatus(task.ID, models.StatusDone)
	done, _ := s.Get(task.ID)
	require.NotNil(t, done.CompletedAt)
	require.NotNil(t, done.UpdatedAt)
	assert.Equal(t, *done.UpdatedAt, *done.CompletedAt)
	assert.False(t, done.CreatedAt.After(*done.UpdatedAt))
	firstCompleted := *done.CompletedAt

	// DONE -> DONE keeps the original completion time
	s.Update(task.ID, models.TaskPatch{Status: ptr(models.StatusDone)})
	again, _ := s.Get(task.ID)
	require.NotNil(t, again.CompletedAt)
	assert.Equal(t, firstCompleted, *again.CompletedAt)
	assert.True(t, again.UpdatedAt.After(*done.UpdatedAt))

	s.ChangeStatus(task.ID, models.StatusTodo)
	reopened, _ := s.Get(task.ID)
	assert.Nil(t, reopened.CompletedAt)
	assert.Equal(t, models.StatusTodo, reopened.Status)
}

func TestUpdateWithoutStatusKeepsCompletedAt(t *testing.T) {
	s, _ := newTestStore(&fakePersister{})
	task := s.Create(planRelease())
	s.ChangeStatus(task.ID, models.StatusDone)
	done, _ := s.Get(task.ID)

	s.Update(task.ID, models.TaskPatch{Description: ptr("notes")})

	got, _ := s.Get(task.ID)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, *done.CompletedAt, *got.CompletedAt)
}

func TestInProgressToTodoLeavesCompletedAtUnset(t *testing.T) {
	s, _ := newTestStore(&fakePersister{})
	task := s.Create(planRelease())

	s.ChangeStatus(task.ID, models.StatusInProgress)
	s.ChangeStatus(task.ID, models.StatusTodo)

	got, _ := s.Get(task.ID)
	assert.Nil(t, got.CompletedAt)
}

func TestMissingIDIsNoOp(t *testing.T) {
	p := &fakePersister{}
	s, _ := newTestStore(p)
	s.Create(planRelease())
	before := s.AllTasks()
	saves := len(p.saves)

	s.Update("nonexistent", models.TaskPatch{Title: ptr("x")})
	s.ChangeStatus("nonexistent", models.StatusDone)
	s.Delete("nonexistent")

	assert.Equal(t, before, s.AllTasks())
	assert.Len(t, p.saves, saves)
}

func TestDelete(t *testing.T) {
	s, _ := newTestStore(&fakePersister{})
	a := s.Create(models.TaskInput{Title: "a"})
	b := s.Create(models.TaskInput{Title: "b"})
	c := s.Create(models.TaskInput{Title: "c"})

	s.Delete(b.ID)

	all := s.AllTasks()
	require.Len(t, all, 2)
	assert.Equal(t, c.ID, all[0].ID)
	assert.Equal(t, a.ID, all[1].ID)
	_, ok := s.Get(b.ID)
	assert.False(t, ok)
}

func TestEndToEndSaves(t *testing.T) {
	p := &fakePersister{}
	s, _ := newTestStore(p)

	a := s.Create(planRelease())
	require.Len(t, p.saves, 1)
	require.Len(t, p.saves[0], 1)
	assert.Equal(t, a, p.saves[0][0])

	s.ChangeStatus(a.ID, models.StatusDone)
	require.Len(t, p.saves, 2)
	require.Len(t, p.saves[1], 1)
	saved := p.saves[1][0]
	assert.Equal(t, models.StatusDone, saved.Status)
	assert.NotNil(t, saved.CompletedAt)
	assert.NotNil(t, saved.UpdatedAt)
	// earlier snapshot is untouched
	assert.Equal(t, models.StatusTodo, p.saves[0][0].Status)
	assert.Nil(t, p.saves[0][0].CompletedAt)

	s.Delete(a.ID)
	require.Len(t, p.saves, 3)
	assert.NotNil(t, p.saves[2])
	assert.Empty(t, p.saves[2])
}

func TestOneSavePerMutation(t *testing.T) {
	p := &fakePersister{}
	s, _ := newTestStore(p)

	a := s.Create(models.TaskInput{Title: "a", Status: models.StatusTodo})
	b := s.Create(models.TaskInput{Title: "b", Status: models.StatusTodo})
	s.Update(a.ID, models.TaskPatch{Title: ptr("a2")})
	s.ChangeStatus(b.ID, models.StatusInProgress)
	s.Delete(a.ID)

	require.Len(t, p.saves, 5)
	for i := 1; i < len(p.saves); i++ {
		assert.NotEqual(t, p.saves[i-1], p.saves[i], "snapshot %d equals previous", i)
	}
	assert.Equal(t, s.AllTasks(), p.lastSave(t))
}

func TestFilterSetterDoesNotSave(t *testing.T) {
	p := &fakePersister{}
	s, _ := newTestStore(p)

	s.SetFilters(models.TaskFilters{Search: "x", Status: models.StatusDone, Priority: models.PriorityAll})

	assert.Empty(t, p.saves)
	assert.Equal(t, "x", s.Filters().Search)
}

func TestAllTasksIsACopy(t *testing.T) {
	s, _ := newTestStore(&fakePersister{})
	s.Create(models.TaskInput{Title: "original"})

	all := s.AllTasks()
	all[0].Title = "mutated"

	assert.Equal(t, "original", s.AllTasks()[0].Title)
}

func TestCopiesDoNotShareTimestamps(t *testing.T) {
	p := &fakePersister{}
	s, _ := newTestStore(p)
	task := s.Create(models.TaskInput{Title: "a", Status: models.StatusTodo})
	s.ChangeStatus(task.ID, models.StatusDone)

	want, ok := s.Get(task.ID)
	require.True(t, ok)
	require.NotNil(t, want.CompletedAt)
	require.NotNil(t, want.UpdatedAt)
	completed, updated := *want.CompletedAt, *want.UpdatedAt

	all := s.AllTasks()
	*all[0].CompletedAt = time.Time{}
	*all[0].UpdatedAt = time.Time{}
	filtered := s.Tasks()
	*filtered[0].CompletedAt = time.Time{}
	got, _ := s.Get(task.ID)
	*got.UpdatedAt = time.Time{}

	got, _ = s.Get(task.ID)
	assert.Equal(t, completed, *got.CompletedAt)
	assert.Equal(t, updated, *got.UpdatedAt)

	saved := p.lastSave(t)
	assert.Equal(t, completed, *saved[0].CompletedAt)
	assert.Equal(t, updated, *saved[0].UpdatedAt)
}

func TestPersistsThroughStorage(t *testing.T) {
	medium := storage.NewMemoryMedium()
	s := New(storage.New(medium, nil))

	a := s.Create(planRelease())
	s.ChangeStatus(a.ID, models.StatusDone)

	reloaded := New(storage.New(medium, nil))
	got, ok := reloaded.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, models.StatusDone, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(*mustGet(t, s, a.ID).CompletedAt))
}

func TestStartupDoesNotClobberStoredTasks(t *testing.T) {
	medium := storage.NewMemoryMedium()
	first := New(storage.New(medium, nil))
	first.Create(planRelease())

	raw, err := medium.GetSetting(storage.TasksKey)
	require.NoError(t, err)

	New(storage.New(medium, nil))

	after, err := medium.GetSetting(storage.TasksKey)
	require.NoError(t, err)
	assert.Equal(t, raw, after)
}

func mustGet(t *testing.T, s *Store, id string) models.Task {
	t.Helper()
	task, ok := s.Get(id)
	require.True(t, ok)
	return task
}
