// Package stats derives the dashboard summary from a snapshot of projects
// and activities.
package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/tgienger/pmdash/internal/event"
	"github.com/tgienger/pmdash/internal/models"
)

const (
	// MaxUpcomingDeadlines caps DashboardStats.UpcomingDeadlines
	MaxUpcomingDeadlines = 5
	// MaxRecentActivity caps DashboardStats.RecentActivity
	MaxRecentActivity = 10

	weekDays     = 7
	deadlineDays = 3
)

// Compute recomputes dashboard stats. Tasks are considered in project order,
// then task order; ties in both sorts keep that order.
func Compute(projects []models.Project, activities []models.Activity, now time.Time) models.DashboardStats {
	var all []models.Task
	for _, p := range projects {
		all = append(all, p.Tasks...)
	}

	stats := models.DashboardStats{
		TotalProjects:     len(projects),
		TotalTasks:        len(all),
		UpcomingDeadlines: []models.Task{},
		RecentActivity:    []models.Activity{},
	}

	weekEnd := now.AddDate(0, 0, weekDays)
	deadlineEnd := now.AddDate(0, 0, deadlineDays)

	for _, t := range all {
		if t.Status == models.StatusCompleted {
			stats.CompletedTasks++
		}
		if t.DueDate == nil {
			continue
		}
		if within(*t.DueDate, now, weekEnd) {
			stats.TasksThisWeek++
		}
		if t.Status != models.StatusCompleted && within(*t.DueDate, now, deadlineEnd) {
			stats.UpcomingDeadlines = append(stats.UpcomingDeadlines, t.Clone())
		}
	}

	sort.SliceStable(stats.UpcomingDeadlines, func(i, j int) bool {
		return stats.UpcomingDeadlines[i].DueDate.Before(*stats.UpcomingDeadlines[j].DueDate)
	})
	if len(stats.UpcomingDeadlines) > MaxUpcomingDeadlines {
		stats.UpcomingDeadlines = stats.UpcomingDeadlines[:MaxUpcomingDeadlines]
	}

	recent := append([]models.Activity{}, activities...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Timestamp.After(recent[j].Timestamp)
	})
	if len(recent) > MaxRecentActivity {
		recent = recent[:MaxRecentActivity]
	}
	stats.RecentActivity = recent

	return stats
}

// within reports whether t lies in [start, end], both ends inclusive
func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// Source is what the Aggregator reads from; *store.Store satisfies it
type Source interface {
	Projects() []models.Project
	Activities() []models.Activity
}

// Aggregator caches the latest stats and recomputes them whenever the
// store reports a change. There is no incremental update.
type Aggregator struct {
	source Source
	now    func() time.Time

	mu    sync.RWMutex
	stats models.DashboardStats
}

// NewAggregator computes an initial value from source
func NewAggregator(source Source, now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	a := &Aggregator{source: source, now: now}
	a.Refresh()
	return a
}

// Attach subscribes the aggregator to store change events and returns the
// subscription id
func (a *Aggregator) Attach(bus *event.Bus) string {
	return bus.Subscribe(event.TypeStoreChanged, func(event.Event) {
		a.Refresh()
	})
}

// Refresh recomputes from the current source snapshot
func (a *Aggregator) Refresh() models.DashboardStats {
	s := Compute(a.source.Projects(), a.source.Activities(), a.now())

	a.mu.Lock()
	a.stats = s
	a.mu.Unlock()
	return s
}

// Stats returns the last computed stats
func (a *Aggregator) Stats() models.DashboardStats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stats
}
