package db

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/pmdash/internal/mockdata"
	"github.com/tgienger/pmdash/internal/models"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "nested", "pmdash.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSettings(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	v, err := db.GetSetting(ctx, SettingLastProjectID)
	require.NoError(t, err)
	assert.Equal(t, "", v, "missing keys read as empty")

	require.NoError(t, db.SetSetting(ctx, SettingLastProjectID, "project-1"))
	require.NoError(t, db.SetSetting(ctx, SettingLastProjectID, "project-2"))

	v, err = db.GetSetting(ctx, SettingLastProjectID)
	require.NoError(t, err)
	assert.Equal(t, "project-2", v)
}

func TestLoadSnapshot_Empty(t *testing.T) {
	db := openTestDB(t)

	_, err := db.LoadSnapshot(context.Background())
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSnapshot_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	snap := mockdata.Generate(rand.New(rand.NewPCG(7, 7)), now)
	snap.Active = models.Selected("project-2")

	task := &snap.Projects[0].Tasks[0]
	task.Comments = []models.Comment{{ID: "comment-1", Content: "looks good", User: snap.Users[1], CreatedAt: now}}
	task.Attachments = []models.Attachment{{
		ID: "attachment-1", Name: "spec.pdf", URL: "https://example.com/spec.pdf",
		Type: "application/pdf", Size: 1024, UploadedBy: snap.Users[2], UploadedAt: now,
	}}
	snap.Projects[1].Tasks[0].DueDate = nil
	snap.Projects[1].Tasks[0].Assignee = nil

	require.NoError(t, db.SaveSnapshot(ctx, snap))

	got, err := db.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap, got)
}

func TestSaveSnapshot_Replaces(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	first := mockdata.Generate(rand.New(rand.NewPCG(1, 1)), now)
	require.NoError(t, db.SaveSnapshot(ctx, first))

	alice := models.User{ID: "user-9", Name: "Alice"}
	ghost := models.User{ID: "user-ghost", Name: "Former Member"}
	second := models.Snapshot{
		CurrentUser: alice,
		Users:       []models.User{alice},
		Projects:    []models.Project{},
		Activities: []models.Activity{{
			ID: "activity-x", Description: `Project "Old" was deleted`, User: ghost,
			Timestamp: now, ProjectID: models.DeletedProjectID,
		}},
	}
	require.NoError(t, db.SaveSnapshot(ctx, second))

	got, err := db.LoadSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, alice, got.CurrentUser)
	assert.Equal(t, []models.User{alice}, got.Users, "unlisted users stay out of the user list")
	assert.Empty(t, got.Projects)
	require.Len(t, got.Activities, 1)
	assert.Equal(t, ghost, got.Activities[0].User)
	assert.Equal(t, models.DeletedProjectID, got.Activities[0].ProjectID)
	assert.True(t, got.Active.IsNone())
}
