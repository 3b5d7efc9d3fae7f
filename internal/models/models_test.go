package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSelection(t *testing.T) {
	var zero Selection
	assert.True(t, zero.IsNone())
	assert.Equal(t, NoSelection(), zero)

	id, ok := Selected("project-1").ProjectID()
	assert.True(t, ok)
	assert.Equal(t, "project-1", id)

	assert.True(t, Selected("").IsNone(), "empty id means no selection")
}

func TestProjectClone(t *testing.T) {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	p := Project{
		ID:      "p",
		Members: []User{{ID: "u1"}},
		Tasks: []Task{{
			ID:       "t",
			DueDate:  &due,
			Assignee: &User{ID: "u1"},
			Comments: []Comment{{ID: "c"}},
		}},
	}

	c := p.Clone()
	c.Members[0].ID = "changed"
	c.Tasks[0].Title = "changed"
	*c.Tasks[0].DueDate = due.Add(time.Hour)
	c.Tasks[0].Assignee.ID = "changed"
	c.Tasks[0].Comments[0].ID = "changed"

	assert.Equal(t, "u1", p.Members[0].ID)
	assert.Empty(t, p.Tasks[0].Title)
	assert.Equal(t, due, *p.Tasks[0].DueDate)
	assert.Equal(t, "u1", p.Tasks[0].Assignee.ID)
	assert.Equal(t, "c", p.Tasks[0].Comments[0].ID)
}

func TestTasksByStatus(t *testing.T) {
	p := Project{Tasks: []Task{
		{ID: "a", Status: StatusTodo},
		{ID: "b", Status: StatusReview},
		{ID: "c", Status: StatusTodo},
	}}

	todo := p.TasksByStatus(StatusTodo)
	assert.Len(t, todo, 2)
	assert.Equal(t, "a", todo[0].ID)
	assert.Equal(t, "c", todo[1].ID)
	assert.Empty(t, p.TasksByStatus(StatusCompleted))
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "In Progress", StatusInProgress.Label())
	assert.Equal(t, "blocked", TaskStatus("blocked").Label(), "unknown statuses render as-is")
}
