package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tgienger/pmdash/internal/models"
)

func insertTasks(ctx context.Context, q querier, tasks []models.Task) error {
	for i, t := range tasks {
		var due sql.NullTime
		if t.DueDate != nil {
			due = sql.NullTime{Time: *t.DueDate, Valid: true}
		}
		var assignee sql.NullString
		if t.Assignee != nil {
			assignee = sql.NullString{String: t.Assignee.ID, Valid: true}
		}
		var spent sql.NullInt64
		if t.TimeSpent != nil {
			spent = sql.NullInt64{Int64: int64(*t.TimeSpent), Valid: true}
		}

		_, err := q.ExecContext(ctx, `
			INSERT INTO tasks (id, project_id, title, description, status, priority,
				due_date, assignee_id, time_spent, position, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, t.ID, t.ProjectID, t.Title, t.Description, string(t.Status), string(t.Priority),
			due, assignee, spent, i, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}

		if err := insertComments(ctx, q, t.ID, t.Comments); err != nil {
			return err
		}
		if err := insertAttachments(ctx, q, t.ID, t.Attachments); err != nil {
			return err
		}
	}
	return nil
}

// loadTasks returns a project's tasks in list order
func loadTasks(ctx context.Context, q querier, projectID string, users map[string]models.User) ([]models.Task, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, project_id, title, description, status, priority,
			due_date, assignee_id, time_spent, created_at, updated_at
		FROM tasks WHERE project_id = ? ORDER BY position
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		var status, priority string
		var due sql.NullTime
		var assignee sql.NullString
		var spent sql.NullInt64
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status, &priority,
			&due, &assignee, &spent, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Status = models.TaskStatus(status)
		t.Priority = models.Priority(priority)
		if due.Valid {
			d := due.Time
			t.DueDate = &d
		}
		if assignee.Valid {
			u := users[assignee.String]
			t.Assignee = &u
		}
		if spent.Valid {
			m := int(spent.Int64)
			t.TimeSpent = &m
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range tasks {
		t := &tasks[i]
		if t.Comments, err = loadComments(ctx, q, t.ID, users); err != nil {
			return nil, err
		}
		if t.Attachments, err = loadAttachments(ctx, q, t.ID, users); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}
