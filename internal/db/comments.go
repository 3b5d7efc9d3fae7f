package db

import (
	"context"
	"fmt"

	"github.com/tgienger/pmdash/internal/models"
)

func insertComments(ctx context.Context, q querier, taskID string, comments []models.Comment) error {
	for i, c := range comments {
		_, err := q.ExecContext(ctx, `
			INSERT INTO comments (id, task_id, user_id, content, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, c.ID, taskID, c.User.ID, c.Content, i, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert comment %s: %w", c.ID, err)
		}
	}
	return nil
}

// loadComments returns a task's comments oldest first
func loadComments(ctx context.Context, q querier, taskID string, users map[string]models.User) ([]models.Comment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, user_id, content, created_at
		FROM comments WHERE task_id = ? ORDER BY position
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		var userID string
		if err := rows.Scan(&c.ID, &userID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.User = users[userID]
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func insertAttachments(ctx context.Context, q querier, taskID string, attachments []models.Attachment) error {
	for i, a := range attachments {
		_, err := q.ExecContext(ctx, `
			INSERT INTO attachments (id, task_id, name, url, type, size, uploaded_by, position, uploaded_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, a.ID, taskID, a.Name, a.URL, a.Type, a.Size, a.UploadedBy.ID, i, a.UploadedAt)
		if err != nil {
			return fmt.Errorf("insert attachment %s: %w", a.ID, err)
		}
	}
	return nil
}

func loadAttachments(ctx context.Context, q querier, taskID string, users map[string]models.User) ([]models.Attachment, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, url, type, size, uploaded_by, uploaded_at
		FROM attachments WHERE task_id = ? ORDER BY position
	`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attachments := []models.Attachment{}
	for rows.Next() {
		var a models.Attachment
		var userID string
		if err := rows.Scan(&a.ID, &a.Name, &a.URL, &a.Type, &a.Size, &userID, &a.UploadedAt); err != nil {
			return nil, err
		}
		a.UploadedBy = users[userID]
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}
