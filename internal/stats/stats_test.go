package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/pmdash/internal/event"
	"github.com/tgienger/pmdash/internal/models"
	"github.com/tgienger/pmdash/internal/store"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func due(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func task(id string, status models.TaskStatus, dueDate *time.Time) models.Task {
	return models.Task{ID: id, Title: id, Status: status, DueDate: dueDate}
}

func TestCompute_Counts(t *testing.T) {
	projects := []models.Project{
		{ID: "p1", Tasks: []models.Task{
			task("a", models.StatusCompleted, nil),
			task("b", models.StatusTodo, nil),
		}},
		{ID: "p2", Tasks: []models.Task{
			task("c", models.StatusCompleted, nil),
		}},
		{ID: "p3"},
	}

	s := Compute(projects, nil, now)

	assert.Equal(t, 3, s.TotalProjects)
	assert.Equal(t, 3, s.TotalTasks)
	assert.Equal(t, 2, s.CompletedTasks)
	assert.LessOrEqual(t, s.CompletedTasks, s.TotalTasks)
	assert.Empty(t, s.UpcomingDeadlines)
	assert.Empty(t, s.RecentActivity)
}

func TestCompute_TasksThisWeek(t *testing.T) {
	projects := []models.Project{{ID: "p1", Tasks: []models.Task{
		task("now", models.StatusTodo, due(0)),
		task("end-of-week", models.StatusCompleted, due(7*24*time.Hour)),
		task("past", models.StatusTodo, due(-time.Second)),
		task("too-late", models.StatusTodo, due(7*24*time.Hour+time.Second)),
		task("no-date", models.StatusTodo, nil),
	}}}

	s := Compute(projects, nil, now)

	assert.Equal(t, 2, s.TasksThisWeek, "window is inclusive at both ends and counts completed tasks")
}

func TestCompute_UpcomingDeadlines(t *testing.T) {
	t.Run("filters, sorts and keeps the window inclusive", func(t *testing.T) {
		projects := []models.Project{{ID: "p1", Tasks: []models.Task{
			task("day-3", models.StatusTodo, due(3*24*time.Hour)),
			task("done", models.StatusCompleted, due(time.Hour)),
			task("day-1", models.StatusReview, due(24*time.Hour)),
			task("day-4", models.StatusTodo, due(4*24*time.Hour)),
			task("now", models.StatusInProgress, due(0)),
			task("yesterday", models.StatusTodo, due(-24*time.Hour)),
		}}}

		s := Compute(projects, nil, now)

		var ids []string
		for _, d := range s.UpcomingDeadlines {
			ids = append(ids, d.ID)
		}
		assert.Equal(t, []string{"now", "day-1", "day-3"}, ids)
	})

	t.Run("caps at five and breaks ties by flatten order", func(t *testing.T) {
		same := due(time.Hour)
		var first, second []models.Task
		for i := 0; i < 4; i++ {
			first = append(first, task(fmt.Sprintf("p1-%d", i), models.StatusTodo, same))
			second = append(second, task(fmt.Sprintf("p2-%d", i), models.StatusTodo, same))
		}
		projects := []models.Project{{ID: "p1", Tasks: first}, {ID: "p2", Tasks: second}}

		s := Compute(projects, nil, now)

		require.Len(t, s.UpcomingDeadlines, MaxUpcomingDeadlines)
		assert.Equal(t, "p1-0", s.UpcomingDeadlines[0].ID)
		assert.Equal(t, "p1-3", s.UpcomingDeadlines[3].ID)
		assert.Equal(t, "p2-0", s.UpcomingDeadlines[4].ID)
		for _, d := range s.UpcomingDeadlines {
			assert.NotEqual(t, models.StatusCompleted, d.Status)
			assert.True(t, within(*d.DueDate, now, now.AddDate(0, 0, 3)))
		}
	})
}

func TestCompute_RecentActivity(t *testing.T) {
	var activities []models.Activity
	for i := 0; i < 15; i++ {
		activities = append(activities, models.Activity{
			ID:        fmt.Sprintf("a%d", i),
			Timestamp: now.Add(time.Duration(i%5) * time.Minute),
		})
	}

	s := Compute(nil, activities, now)

	require.Len(t, s.RecentActivity, MaxRecentActivity)
	for i := 1; i < len(s.RecentActivity); i++ {
		assert.False(t, s.RecentActivity[i].Timestamp.After(s.RecentActivity[i-1].Timestamp))
	}
	// a4, a9 and a14 share the newest timestamp and keep collection order
	assert.Equal(t, "a4", s.RecentActivity[0].ID)
	assert.Equal(t, "a9", s.RecentActivity[1].ID)
	assert.Equal(t, "a14", s.RecentActivity[2].ID)

	assert.Equal(t, "a0", activities[0].ID, "input is not reordered")
}

func TestAggregator(t *testing.T) {
	bus := event.NewBus(nil)
	s := store.New(models.Snapshot{CurrentUser: models.User{ID: "user-1", Name: "Alice"}},
		store.WithBus(bus),
		store.WithClock(func() time.Time { return now }))

	agg := NewAggregator(s, func() time.Time { return now })
	agg.Attach(bus)
	assert.Equal(t, 0, agg.Stats().TotalProjects)

	p, err := s.CreateProject(store.ProjectInput{Name: "Acme"})
	require.NoError(t, err)
	_, err = s.CreateTask(p.ID, store.TaskInput{Title: "Do X", Status: models.StatusTodo, DueDate: due(time.Hour)})
	require.NoError(t, err)

	got := agg.Stats()
	assert.Equal(t, 1, got.TotalProjects)
	assert.Equal(t, 1, got.TotalTasks)
	assert.Equal(t, 1, got.TasksThisWeek)
	require.Len(t, got.UpcomingDeadlines, 1)
	assert.Len(t, got.RecentActivity, 2)

	require.True(t, s.DeleteProject(p.ID))
	got = agg.Stats()
	assert.Equal(t, 0, got.TotalTasks, "deleted project's tasks no longer count")
	assert.Len(t, got.RecentActivity, 3, "activities survive project deletion")
}
