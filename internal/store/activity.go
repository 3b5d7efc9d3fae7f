package store

import (
	"fmt"
	"time"

	"github.com/tgienger/pmdash/internal/models"
)

// recordLocked prepends an activity by the current user. Caller holds s.mu.
func (s *Store) recordLocked(description, projectID, taskID string, at time.Time) models.Activity {
	a := models.Activity{
		ID:          s.newID("activity"),
		Description: description,
		User:        s.currentUser,
		Timestamp:   at,
		ProjectID:   projectID,
		TaskID:      taskID,
	}
	s.activities = append([]models.Activity{a}, s.activities...)
	return a
}

// Activities returns the activity log, newest first
func (s *Store) Activities() []models.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Activity{}, s.activities...)
}

// ProjectActivities returns the activities recorded against one project, newest first
func (s *Store) ProjectActivities(projectID string) []models.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Activity
	for _, a := range s.activities {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out
}

func projectCreated(name string) string {
	return fmt.Sprintf("Project \"%s\" was created", name)
}

func projectUpdated() string {
	return "Project was updated"
}

func projectDeleted(name string) string {
	return fmt.Sprintf("Project \"%s\" was deleted", name)
}

func taskCreated(title string) string {
	return fmt.Sprintf("Task \"%s\" was created", title)
}

func taskDeleted(title string) string {
	return fmt.Sprintf("Task \"%s\" was deleted", title)
}

func commentAdded(title string) string {
	return fmt.Sprintf("Task \"%s\" received a comment", title)
}

// taskUpdateDescription picks the message for an update against the task's
// state before the update is applied.
func taskUpdateDescription(before models.Task, upd TaskUpdate) string {
	switch {
	case upd.Status != nil && *upd.Status != before.Status:
		return fmt.Sprintf("Task \"%s\" status changed to %s", before.Title, *upd.Status)
	case upd.Assignee != nil && (before.Assignee == nil || before.Assignee.ID != upd.Assignee.ID):
		return fmt.Sprintf("Task \"%s\" was assigned to %s", before.Title, upd.Assignee.Name)
	default:
		return fmt.Sprintf("Task \"%s\" was updated", before.Title)
	}
}
