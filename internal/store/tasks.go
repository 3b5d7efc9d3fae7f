package store

import (
	"fmt"
	"time"

	"github.com/tgienger/pmdash/internal/event"
	"github.com/tgienger/pmdash/internal/models"
)

// TaskInput holds the caller-supplied fields of a new task
type TaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.Priority
	DueDate     *time.Time
	Assignee    *models.User
	TimeSpent   *int
}

// TaskUpdate is a partial task update; nil fields are left unchanged.
// ClearDueDate and Unassign remove the optional values.
type TaskUpdate struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.Priority
	DueDate      *time.Time
	ClearDueDate bool
	Assignee     *models.User
	Unassign     bool
	TimeSpent    *int
}

// CreateTask appends a new task to the project's task list
func (s *Store) CreateTask(projectID string, in TaskInput) (models.Task, error) {
	var created models.Task
	ok := s.apply(func() (change, bool) {
		i := s.projectIndex(projectID)
		if i < 0 {
			return change{}, false
		}
		now := s.now()
		t := models.Task{
			ID:          s.newID("task"),
			Title:       in.Title,
			Description: in.Description,
			Status:      in.Status,
			Priority:    in.Priority,
			CreatedAt:   now,
			UpdatedAt:   now,
			ProjectID:   projectID,
			Comments:    []models.Comment{},
			Attachments: []models.Attachment{},
		}
		if in.DueDate != nil {
			d := *in.DueDate
			t.DueDate = &d
		}
		if in.Assignee != nil {
			a := *in.Assignee
			t.Assignee = &a
		}
		if in.TimeSpent != nil {
			m := *in.TimeSpent
			t.TimeSpent = &m
		}

		p := &s.projects[i]
		p.Tasks = append(p.Tasks, t)
		p.UpdatedAt = now

		act := s.recordLocked(taskCreated(t.Title), projectID, t.ID, now)
		created = t.Clone()
		return change{op: event.OpTaskCreated, projectID: projectID, taskID: t.ID, activityID: act.ID}, true
	})
	if !ok {
		return models.Task{}, fmt.Errorf("create task in %q: %w", projectID, ErrProjectNotFound)
	}
	return created, nil
}

// UpdateTask merges upd into the task. Exactly one activity is recorded:
// a status change wins over a reassignment, which wins over a generic update.
// Returns false if the project/task pair does not resolve.
func (s *Store) UpdateTask(projectID, taskID string, upd TaskUpdate) bool {
	return s.apply(func() (change, bool) {
		i := s.projectIndex(projectID)
		if i < 0 {
			return change{}, false
		}
		p := &s.projects[i]
		j := taskIndex(p, taskID)
		if j < 0 {
			return change{}, false
		}
		t := &p.Tasks[j]
		description := taskUpdateDescription(*t, upd)

		if upd.Title != nil {
			t.Title = *upd.Title
		}
		if upd.Description != nil {
			t.Description = *upd.Description
		}
		if upd.Status != nil {
			t.Status = *upd.Status
		}
		if upd.Priority != nil {
			t.Priority = *upd.Priority
		}
		switch {
		case upd.ClearDueDate:
			t.DueDate = nil
		case upd.DueDate != nil:
			d := *upd.DueDate
			t.DueDate = &d
		}
		switch {
		case upd.Unassign:
			t.Assignee = nil
		case upd.Assignee != nil:
			a := *upd.Assignee
			t.Assignee = &a
		}
		if upd.TimeSpent != nil {
			m := *upd.TimeSpent
			t.TimeSpent = &m
		}

		now := s.now()
		t.UpdatedAt = now
		p.UpdatedAt = now

		act := s.recordLocked(description, projectID, taskID, now)
		return change{op: event.OpTaskUpdated, projectID: projectID, taskID: taskID, activityID: act.ID}, true
	})
}

// DeleteTask removes a task from its project. Returns false if not found.
func (s *Store) DeleteTask(projectID, taskID string) bool {
	return s.apply(func() (change, bool) {
		i := s.projectIndex(projectID)
		if i < 0 {
			return change{}, false
		}
		p := &s.projects[i]
		j := taskIndex(p, taskID)
		if j < 0 {
			return change{}, false
		}
		title := p.Tasks[j].Title
		p.Tasks = append(p.Tasks[:j:j], p.Tasks[j+1:]...)

		now := s.now()
		p.UpdatedAt = now
		act := s.recordLocked(taskDeleted(title), projectID, "", now)
		return change{op: event.OpTaskDeleted, projectID: projectID, taskID: taskID, activityID: act.ID}, true
	})
}

// AddComment appends a comment by the current user to a task.
// Returns false if the project/task pair does not resolve.
func (s *Store) AddComment(projectID, taskID, content string) (models.Comment, bool) {
	var added models.Comment
	ok := s.apply(func() (change, bool) {
		i := s.projectIndex(projectID)
		if i < 0 {
			return change{}, false
		}
		p := &s.projects[i]
		j := taskIndex(p, taskID)
		if j < 0 {
			return change{}, false
		}
		now := s.now()
		added = models.Comment{
			ID:        s.newID("comment"),
			Content:   content,
			User:      s.currentUser,
			CreatedAt: now,
		}
		t := &p.Tasks[j]
		t.Comments = append(t.Comments, added)
		t.UpdatedAt = now
		p.UpdatedAt = now

		act := s.recordLocked(commentAdded(t.Title), projectID, taskID, now)
		return change{op: event.OpCommentAdded, projectID: projectID, taskID: taskID, activityID: act.ID}, true
	})
	return added, ok
}
