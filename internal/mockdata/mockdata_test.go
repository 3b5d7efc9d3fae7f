package mockdata

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/pmdash/internal/models"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestGenerate_Shape(t *testing.T) {
	snap := Generate(seeded(1), now)

	require.Len(t, snap.Users, 4)
	assert.Equal(t, snap.Users[0], snap.CurrentUser)
	assert.True(t, snap.Active.IsNone())

	want := map[string]int{
		"Website Redesign":       8,
		"Mobile App Development": 12,
		"Q3 Marketing Campaign":  6,
		"Product Launch":         10,
	}
	require.Len(t, snap.Projects, 4)
	for _, p := range snap.Projects {
		assert.Len(t, p.Tasks, want[p.Name], p.Name)
	}
	assert.Len(t, snap.Projects[3].Members, 4)
	assert.Equal(t, "#14B8A6", snap.Projects[1].Color)
}

func TestGenerate_TaskInvariants(t *testing.T) {
	snap := Generate(seeded(2), now)

	seen := map[string]bool{}
	for _, p := range snap.Projects {
		for _, task := range p.Tasks {
			assert.Equal(t, p.ID, task.ProjectID)
			assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
			seen[task.ID] = true

			require.NotNil(t, task.DueDate)
			assert.False(t, task.DueDate.Before(now))
			assert.True(t, task.DueDate.Before(now.AddDate(0, 0, 14)))
			assert.Contains(t, models.Statuses, task.Status)
			if task.Status != models.StatusCompleted {
				assert.Nil(t, task.TimeSpent)
			}
		}
	}
}

func TestGenerate_Activities(t *testing.T) {
	snap := Generate(seeded(3), now)

	require.Len(t, snap.Activities, ActivityCount)
	for i, a := range snap.Activities {
		assert.False(t, a.Timestamp.After(now))
		assert.True(t, a.Timestamp.After(now.AddDate(0, 0, -7)))
		if i > 0 {
			assert.False(t, a.Timestamp.After(snap.Activities[i-1].Timestamp), "newest first")
		}
		assert.NotEmpty(t, a.Description)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(seeded(42), now)
	b := Generate(seeded(42), now)
	assert.Equal(t, a, b)

	c := Generate(seeded(43), now)
	assert.NotEqual(t, a.Activities, c.Activities)
}
