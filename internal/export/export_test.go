package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/pmdash/internal/models"
	"gopkg.in/yaml.v3"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sampleDocument() Document {
	due := now.Add(24 * time.Hour)
	alice := models.User{ID: "user-1", Name: "Alice", Email: "alice@example.com"}
	snap := models.Snapshot{
		CurrentUser: alice,
		Users:       []models.User{alice},
		Projects: []models.Project{{
			ID: "project-1", Name: "Acme", Color: "#3B82F6", Members: []models.User{alice},
			Tasks: []models.Task{{
				ID: "task-1", Title: "Do X", Status: models.StatusTodo, Priority: models.PriorityHigh,
				DueDate: &due, ProjectID: "project-1", Comments: []models.Comment{}, Attachments: []models.Attachment{},
			}},
		}},
		Activities: []models.Activity{{ID: "activity-1", Description: `Project "Acme" was created`, User: alice, Timestamp: now, ProjectID: "project-1"}},
		Active:     models.Selected("project-1"),
	}
	return NewDocument(snap, models.DashboardStats{TotalProjects: 1, TotalTasks: 1}, now)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("yaml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestWrite_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleDocument(), FormatYAML))

	out := buf.String()
	assert.Contains(t, out, "activeProject: project-1")
	assert.Contains(t, out, "status: todo")

	var got Document
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, 1, got.Stats.TotalProjects)
	require.Len(t, got.Projects, 1)
	assert.Equal(t, "Acme", got.Projects[0].Name)
	assert.True(t, got.Projects[0].Tasks[0].DueDate.Equal(now.Add(24*time.Hour)))
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleDocument(), FormatJSON))

	var raw map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	assert.Equal(t, "project-1", raw["activeProject"])
	assert.Contains(t, raw, "projects")
	stats, ok := raw["stats"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), stats["totalTasks"])
}

func TestWrite_UnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, sampleDocument(), Format("xml")))
}
