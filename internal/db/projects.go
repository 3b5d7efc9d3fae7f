package db

import (
	"context"
	"fmt"

	"github.com/tgienger/pmdash/internal/models"
)

func insertProjects(ctx context.Context, q querier, projects []models.Project) error {
	for i, p := range projects {
		_, err := q.ExecContext(ctx, `
			INSERT INTO projects (id, name, description, color, category, position, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.Name, p.Description, p.Color, p.Category, i, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert project %s: %w", p.ID, err)
		}

		for j, m := range p.Members {
			_, err := q.ExecContext(ctx, `
				INSERT INTO project_members (project_id, user_id, position) VALUES (?, ?, ?)
			`, p.ID, m.ID, j)
			if err != nil {
				return fmt.Errorf("insert member %s of %s: %w", m.ID, p.ID, err)
			}
		}

		if err := insertTasks(ctx, q, p.Tasks); err != nil {
			return err
		}
	}
	return nil
}

// loadProjects returns all projects in saved order, with members and tasks
func loadProjects(ctx context.Context, q querier, users map[string]models.User) ([]models.Project, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, description, color, category, created_at, updated_at
		FROM projects ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for i := range projects {
		p := &projects[i]
		if p.Members, err = loadMembers(ctx, q, p.ID, users); err != nil {
			return nil, err
		}
		if p.Tasks, err = loadTasks(ctx, q, p.ID, users); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func loadMembers(ctx context.Context, q querier, projectID string, users map[string]models.User) ([]models.User, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT user_id FROM project_members WHERE project_id = ? ORDER BY position
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []models.User{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, users[id])
	}
	return members, rows.Err()
}
