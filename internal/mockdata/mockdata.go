// Package mockdata builds the demo workspace the dashboard starts with
package mockdata

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"

	"github.com/tgienger/pmdash/internal/models"
)

const day = 24 * time.Hour

// ActivityCount is the number of seeded activities
const ActivityCount = 20

var users = []models.User{
	{ID: "user-1", Name: "John Doe", Email: "john@example.com"},
	{ID: "user-2", Name: "Jane Smith", Email: "jane@example.com"},
	{ID: "user-3", Name: "Bob Johnson", Email: "bob@example.com"},
	{ID: "user-4", Name: "Alice Williams", Email: "alice@example.com"},
}

type projectSeed struct {
	name        string
	description string
	color       string
	category    string
	tasks       int
	members     []int
	createdAgo  int // days
	updatedAgo  int // days
}

var projectSeeds = []projectSeed{
	{
		name:        "Website Redesign",
		description: "Modernize the company website with a fresh look and improved functionality.",
		color:       "#3B82F6",
		category:    "Marketing",
		tasks:       8,
		members:     []int{0, 1, 2},
		createdAgo:  30,
	},
	{
		name:        "Mobile App Development",
		description: "Create a cross-platform mobile application for our customers.",
		color:       "#14B8A6",
		category:    "Development",
		tasks:       12,
		members:     []int{0, 3},
		createdAgo:  60,
		updatedAgo:  2,
	},
	{
		name:        "Q3 Marketing Campaign",
		description: "Plan and execute the marketing strategy for Q3.",
		color:       "#F59E0B",
		category:    "Marketing",
		tasks:       6,
		members:     []int{0, 1},
		createdAgo:  15,
		updatedAgo:  1,
	},
	{
		name:        "Product Launch",
		description: "Coordinate all aspects of the new product launch.",
		color:       "#EC4899",
		category:    "Product",
		tasks:       10,
		members:     []int{0, 1, 2, 3},
		createdAgo:  45,
		updatedAgo:  3,
	},
}

var priorities = []models.Priority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh}

var activityKinds = []string{
	"created the project",
	"updated the project description",
	"added a new task",
	"completed task",
	"assigned task to",
	"updated task status to in-progress",
	"commented on task",
	"attached a file to task",
	"updated project settings",
	"added a new team member",
}

// Users returns the demo team; the first user is the current user
func Users() []models.User {
	return append([]models.User{}, users...)
}

// Generate returns a fresh demo workspace. The result depends only on the
// state of rng and on now.
func Generate(rng *rand.Rand, now time.Time) models.Snapshot {
	snap := models.Snapshot{
		CurrentUser: users[0],
		Users:       Users(),
		Projects:    make([]models.Project, 0, len(projectSeeds)),
		Activities:  make([]models.Activity, 0, ActivityCount),
		Active:      models.NoSelection(),
	}

	for i, seed := range projectSeeds {
		id := fmt.Sprintf("project-%d", i+1)
		p := models.Project{
			ID:          id,
			Name:        seed.name,
			Description: seed.description,
			Color:       seed.color,
			Category:    seed.category,
			Tasks:       generateTasks(rng, id, i+1, seed.tasks, now),
			CreatedAt:   now.Add(-time.Duration(seed.createdAgo) * day),
			UpdatedAt:   now.Add(-time.Duration(seed.updatedAgo) * day),
		}
		for _, m := range seed.members {
			p.Members = append(p.Members, users[m])
		}
		snap.Projects = append(snap.Projects, p)
	}

	for i := 0; i < ActivityCount; i++ {
		snap.Activities = append(snap.Activities, generateActivity(rng, i+1, snap.Projects, now))
	}
	sort.SliceStable(snap.Activities, func(a, b int) bool {
		return snap.Activities[a].Timestamp.After(snap.Activities[b].Timestamp)
	})

	return snap
}

func generateTasks(rng *rand.Rand, projectID string, projectNum, count int, now time.Time) []models.Task {
	tasks := make([]models.Task, 0, count)
	for i := 1; i <= count; i++ {
		status := models.Statuses[rng.IntN(len(models.Statuses))]
		due := now.Add(time.Duration(rng.IntN(14)) * day)
		assignee := users[rng.IntN(len(users))]

		t := models.Task{
			ID:          fmt.Sprintf("task-%s-%d", projectID, i),
			Title:       fmt.Sprintf("Task %d for Project %d", i, projectNum),
			Description: fmt.Sprintf("This is a detailed description for task %d. It contains all the necessary information to complete this task.", i),
			Status:      status,
			Priority:    priorities[rng.IntN(len(priorities))],
			DueDate:     &due,
			Assignee:    &assignee,
			CreatedAt:   now.Add(-time.Duration(rng.Int64N(int64(7 * day)))),
			UpdatedAt:   now,
			ProjectID:   projectID,
			Comments:    []models.Comment{},
			Attachments: []models.Attachment{},
		}
		if status == models.StatusCompleted {
			spent := rng.IntN(120)
			t.TimeSpent = &spent
		}
		tasks = append(tasks, t)
	}
	return tasks
}

func generateActivity(rng *rand.Rand, n int, projects []models.Project, now time.Time) models.Activity {
	p := projects[rng.IntN(len(projects))]
	user := users[rng.IntN(len(users))]
	kind := activityKinds[rng.IntN(len(activityKinds))]

	a := models.Activity{
		ID:        fmt.Sprintf("activity-%d", n),
		User:      user,
		ProjectID: p.ID,
	}

	switch {
	case !strings.Contains(kind, "task"):
		a.Description = fmt.Sprintf("%s %s \"%s\"", user.Name, kind, p.Name)
	case len(p.Tasks) == 0:
		a.Description = fmt.Sprintf("%s %s in project \"%s\"", user.Name, kind, p.Name)
	default:
		t := p.Tasks[rng.IntN(len(p.Tasks))]
		a.TaskID = t.ID
		a.Description = taskActivity(rng, kind, user.Name, t.Title)
	}

	a.Timestamp = now.Add(-time.Duration(rng.Int64N(int64(7 * day))))
	return a
}

func taskActivity(rng *rand.Rand, kind, who, title string) string {
	switch kind {
	case "added a new task":
		return fmt.Sprintf("%s added a new task \"%s\"", who, title)
	case "completed task":
		return fmt.Sprintf("%s marked task \"%s\" as completed", who, title)
	case "assigned task to":
		assignee := users[rng.IntN(len(users))]
		return fmt.Sprintf("%s assigned task \"%s\" to %s", who, title, assignee.Name)
	case "updated task status to in-progress":
		return fmt.Sprintf("%s updated task \"%s\" status to in-progress", who, title)
	case "commented on task":
		return fmt.Sprintf("%s commented on task \"%s\"", who, title)
	default:
		return fmt.Sprintf("%s attached a file to task \"%s\"", who, title)
	}
}
