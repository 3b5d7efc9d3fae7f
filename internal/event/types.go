// Package event provides a synchronous pub-sub bus used to tell the stats
// aggregator and the TUI that the store changed.
package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns "category.action", e.g. "store.changed".
	EventType() string
	Timestamp() time.Time
}

const (
	TypeStoreChanged     = "store.changed"
	TypeSelectionChanged = "selection.changed"
	TypeImportCompleted  = "import.completed"
)

// Op names the store mutation behind a StoreChanged event
type Op string

const (
	OpProjectCreated Op = "project.created"
	OpProjectUpdated Op = "project.updated"
	OpProjectDeleted Op = "project.deleted"
	OpTaskCreated    Op = "task.created"
	OpTaskUpdated    Op = "task.updated"
	OpTaskDeleted    Op = "task.deleted"
	OpCommentAdded   Op = "comment.added"
)

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string, at time.Time) baseEvent {
	return baseEvent{eventType: eventType, timestamp: at}
}

// StoreChanged is published after every successful store mutation.
type StoreChanged struct {
	baseEvent
	Op         Op
	ProjectID  string
	TaskID     string
	ActivityID string
}

// NewStoreChanged creates a StoreChanged event.
func NewStoreChanged(op Op, projectID, taskID, activityID string, at time.Time) StoreChanged {
	return StoreChanged{
		baseEvent:  newBaseEvent(TypeStoreChanged, at),
		Op:         op,
		ProjectID:  projectID,
		TaskID:     taskID,
		ActivityID: activityID,
	}
}

// SelectionChanged is published when the active project changes.
type SelectionChanged struct {
	baseEvent
	ProjectID string // empty when the selection was cleared
}

// NewSelectionChanged creates a SelectionChanged event.
func NewSelectionChanged(projectID string, at time.Time) SelectionChanged {
	return SelectionChanged{
		baseEvent: newBaseEvent(TypeSelectionChanged, at),
		ProjectID: projectID,
	}
}

// ImportCompleted is published when a CSV import finished replaying.
type ImportCompleted struct {
	baseEvent
	Source   string
	Projects int
	Tasks    int
}

// NewImportCompleted creates an ImportCompleted event.
func NewImportCompleted(source string, projects, tasks int, at time.Time) ImportCompleted {
	return ImportCompleted{
		baseEvent: newBaseEvent(TypeImportCompleted, at),
		Source:    source,
		Projects:  projects,
		Tasks:     tasks,
	}
}
