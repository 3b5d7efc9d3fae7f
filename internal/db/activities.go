package db

import (
	"context"
	"fmt"

	"github.com/tgienger/pmdash/internal/models"
)

func insertActivities(ctx context.Context, q querier, activities []models.Activity) error {
	for i, a := range activities {
		_, err := q.ExecContext(ctx, `
			INSERT INTO activities (id, description, user_id, project_id, task_id, position, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, a.ID, a.Description, a.User.ID, a.ProjectID, a.TaskID, i, a.Timestamp)
		if err != nil {
			return fmt.Errorf("insert activity %s: %w", a.ID, err)
		}
	}
	return nil
}

// loadActivities returns the log in saved order (newest first)
func loadActivities(ctx context.Context, q querier, users map[string]models.User) ([]models.Activity, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, description, user_id, project_id, task_id, timestamp
		FROM activities ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		var userID string
		if err := rows.Scan(&a.ID, &a.Description, &userID, &a.ProjectID, &a.TaskID, &a.Timestamp); err != nil {
			return nil, err
		}
		a.User = users[userID]
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
