package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/tgienger/pmdash/internal/models"
)

// ErrNoSnapshot is returned by LoadSnapshot when nothing has been saved yet
var ErrNoSnapshot = errors.New("no saved snapshot")

// SaveSnapshot replaces the stored workspace with snap in one transaction
func (db *DB) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"activities", "attachments", "comments", "tasks", "project_members", "projects", "users"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	if err := insertUsers(ctx, tx, snap); err != nil {
		return err
	}
	if err := insertProjects(ctx, tx, snap.Projects); err != nil {
		return err
	}
	if err := insertActivities(ctx, tx, snap.Activities); err != nil {
		return err
	}

	if err := setSetting(ctx, tx, SettingCurrentUser, snap.CurrentUser.ID); err != nil {
		return err
	}
	lastProject, _ := snap.Active.ProjectID()
	if err := setSetting(ctx, tx, SettingLastProjectID, lastProject); err != nil {
		return err
	}

	return tx.Commit()
}

// LoadSnapshot reads back the last saved workspace
func (db *DB) LoadSnapshot(ctx context.Context) (models.Snapshot, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return models.Snapshot{}, err
	}
	defer tx.Rollback()

	currentID, err := getSetting(ctx, tx, SettingCurrentUser)
	if err != nil {
		return models.Snapshot{}, err
	}
	if currentID == "" {
		return models.Snapshot{}, ErrNoSnapshot
	}

	listed, byID, err := loadUsers(ctx, tx)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load users: %w", err)
	}
	projects, err := loadProjects(ctx, tx, byID)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load projects: %w", err)
	}
	activities, err := loadActivities(ctx, tx, byID)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("load activities: %w", err)
	}
	lastProject, err := getSetting(ctx, tx, SettingLastProjectID)
	if err != nil {
		return models.Snapshot{}, err
	}

	return models.Snapshot{
		CurrentUser: byID[currentID],
		Users:       listed,
		Projects:    projects,
		Activities:  activities,
		Active:      models.Selected(lastProject),
	}, nil
}
