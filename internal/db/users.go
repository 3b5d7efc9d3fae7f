package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tgienger/pmdash/internal/models"
)

// insertUsers writes every user the snapshot references. Users in
// snap.Users keep their list position; the rest are stored unlisted.
func insertUsers(ctx context.Context, q querier, snap models.Snapshot) error {
	written := map[string]bool{}
	write := func(u models.User, position sql.NullInt64) error {
		if written[u.ID] {
			return nil
		}
		written[u.ID] = true
		_, err := q.ExecContext(ctx, `
			INSERT INTO users (id, name, email, avatar, position) VALUES (?, ?, ?, ?, ?)
		`, u.ID, u.Name, u.Email, u.Avatar, position)
		if err != nil {
			return fmt.Errorf("insert user %s: %w", u.ID, err)
		}
		return nil
	}

	for i, u := range snap.Users {
		if err := write(u, sql.NullInt64{Int64: int64(i), Valid: true}); err != nil {
			return err
		}
	}

	unlisted := []models.User{snap.CurrentUser}
	for _, p := range snap.Projects {
		unlisted = append(unlisted, p.Members...)
		for _, t := range p.Tasks {
			if t.Assignee != nil {
				unlisted = append(unlisted, *t.Assignee)
			}
			for _, c := range t.Comments {
				unlisted = append(unlisted, c.User)
			}
			for _, a := range t.Attachments {
				unlisted = append(unlisted, a.UploadedBy)
			}
		}
	}
	for _, a := range snap.Activities {
		unlisted = append(unlisted, a.User)
	}
	for _, u := range unlisted {
		if err := write(u, sql.NullInt64{}); err != nil {
			return err
		}
	}
	return nil
}

// loadUsers returns the listed users in order and every stored user by id
func loadUsers(ctx context.Context, q querier) ([]models.User, map[string]models.User, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, email, avatar, position FROM users ORDER BY position
	`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	listed := []models.User{}
	byID := map[string]models.User{}
	for rows.Next() {
		var u models.User
		var position sql.NullInt64
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Avatar, &position); err != nil {
			return nil, nil, err
		}
		byID[u.ID] = u
		if position.Valid {
			listed = append(listed, u)
		}
	}
	return listed, byID, rows.Err()
}
