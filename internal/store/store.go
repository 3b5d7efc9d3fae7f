// Package store holds the canonical in-memory dashboard state: users,
// projects with their embedded tasks, the activity log and the active
// project selection. All writes go through the mutation methods, which
// record an activity and publish a change event on success.
package store

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tgienger/pmdash/internal/event"
	"github.com/tgienger/pmdash/internal/models"
)

var (
	// ErrNameRequired is returned when a project is created without a name
	ErrNameRequired = errors.New("project name is required")
	// ErrProjectNotFound is returned when a task targets an unknown project
	ErrProjectNotFound = errors.New("project not found")
)

// Store is the single writer of dashboard state. It is safe for concurrent
// use; mutations are serialized and run to completion one at a time.
type Store struct {
	mu          sync.RWMutex
	currentUser models.User
	users       []models.User
	projects    []models.Project
	activities  []models.Activity // newest first
	active      models.Selection

	now    func() time.Time
	newID  func(prefix string) string
	bus    *event.Bus
	logger *slog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides id generation. The generator receives the
// entity prefix ("project", "task", "activity", "comment").
func WithIDGenerator(gen func(prefix string) string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithBus publishes change events on bus
func WithBus(bus *event.Bus) Option {
	return func(s *Store) { s.bus = bus }
}

// WithLogger sets the logger used for mutation tracing
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewID returns "<prefix>-<uuid>"
func NewID(prefix string) string {
	return prefix + "-" + uuid.New().String()
}

// New creates a store seeded with a copy of snap
func New(snap models.Snapshot, opts ...Option) *Store {
	s := &Store{
		currentUser: snap.CurrentUser,
		users:       append([]models.User{}, snap.Users...),
		projects:    make([]models.Project, len(snap.Projects)),
		activities:  append([]models.Activity{}, snap.Activities...),
		active:      snap.Active,
		now:         time.Now,
		newID:       NewID,
		logger:      slog.Default(),
	}
	for i, p := range snap.Projects {
		s.projects[i] = p.Clone()
	}
	if len(s.users) == 0 && s.currentUser.ID != "" {
		s.users = []models.User{s.currentUser}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// change describes a successful mutation
type change struct {
	op               event.Op
	projectID        string
	taskID           string
	activityID       string
	selectionCleared bool
}

// apply runs fn under the write lock and, if it reports a change,
// publishes the resulting events after the lock is released.
func (s *Store) apply(fn func() (change, bool)) bool {
	c, ok := func() (change, bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return fn()
	}()
	if !ok {
		return false
	}

	s.logger.Debug("store mutation",
		"op", c.op,
		"project_id", c.projectID,
		"task_id", c.taskID,
		"activity_id", c.activityID)

	if s.bus != nil {
		at := s.now()
		s.bus.Publish(event.NewStoreChanged(c.op, c.projectID, c.taskID, c.activityID, at))
		if c.selectionCleared {
			s.bus.Publish(event.NewSelectionChanged("", at))
		}
	}
	return true
}

func (s *Store) projectIndex(id string) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func taskIndex(p *models.Project, id string) int {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// CurrentUser returns the user performing mutations
func (s *Store) CurrentUser() models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentUser
}

// Users returns all known users
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.User{}, s.users...)
}

// Projects returns a deep copy of all projects in creation order
func (s *Store) Projects() []models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := make([]models.Project, len(s.projects))
	for i, p := range s.projects {
		projects[i] = p.Clone()
	}
	return projects
}

// Project returns a copy of the project with the given id
func (s *Store) Project(id string) (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.projectIndex(id)
	if i < 0 {
		return models.Project{}, false
	}
	return s.projects[i].Clone(), true
}

// Snapshot returns a deep copy of the whole state
func (s *Store) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := models.Snapshot{
		CurrentUser: s.currentUser,
		Users:       append([]models.User{}, s.users...),
		Projects:    make([]models.Project, len(s.projects)),
		Activities:  append([]models.Activity{}, s.activities...),
		Active:      s.active,
	}
	for i, p := range s.projects {
		snap.Projects[i] = p.Clone()
	}
	return snap
}

// ProjectInput holds the caller-supplied fields of a new project
type ProjectInput struct {
	Name        string
	Description string
	Color       string
	Category    string
}

// ProjectUpdate is a partial project update; nil fields are left unchanged
type ProjectUpdate struct {
	Name        *string
	Description *string
	Color       *string
	Category    *string
	Members     []models.User
}

// CreateProject adds a project owned by the current user
func (s *Store) CreateProject(in ProjectInput) (models.Project, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.Project{}, ErrNameRequired
	}

	var created models.Project
	s.apply(func() (change, bool) {
		now := s.now()
		p := models.Project{
			ID:          s.newID("project"),
			Name:        in.Name,
			Description: in.Description,
			Color:       in.Color,
			Category:    in.Category,
			Tasks:       []models.Task{},
			Members:     []models.User{s.currentUser},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.projects = append(s.projects, p)
		act := s.recordLocked(projectCreated(p.Name), p.ID, "", now)
		created = p.Clone()
		return change{op: event.OpProjectCreated, projectID: p.ID, activityID: act.ID}, true
	})
	return created, nil
}

// UpdateProject merges upd into the project. Returns false if id is unknown.
func (s *Store) UpdateProject(id string, upd ProjectUpdate) bool {
	return s.apply(func() (change, bool) {
		i := s.projectIndex(id)
		if i < 0 {
			return change{}, false
		}
		p := &s.projects[i]
		if upd.Name != nil {
			p.Name = *upd.Name
		}
		if upd.Description != nil {
			p.Description = *upd.Description
		}
		if upd.Color != nil {
			p.Color = *upd.Color
		}
		if upd.Category != nil {
			p.Category = *upd.Category
		}
		if upd.Members != nil {
			p.Members = append([]models.User{}, upd.Members...)
		}
		now := s.now()
		p.UpdatedAt = now
		act := s.recordLocked(projectUpdated(), id, "", now)
		return change{op: event.OpProjectUpdated, projectID: id, activityID: act.ID}, true
	})
}

// DeleteProject removes a project and its tasks. Activities that reference
// it are kept. Returns false if id is unknown.
func (s *Store) DeleteProject(id string) bool {
	return s.apply(func() (change, bool) {
		i := s.projectIndex(id)
		if i < 0 {
			return change{}, false
		}
		name := s.projects[i].Name
		s.projects = append(s.projects[:i:i], s.projects[i+1:]...)

		act := s.recordLocked(projectDeleted(name), models.DeletedProjectID, "", s.now())

		cleared := false
		if selected, ok := s.active.ProjectID(); ok && selected == id {
			s.active = models.NoSelection()
			cleared = true
		}
		return change{op: event.OpProjectDeleted, projectID: id, activityID: act.ID, selectionCleared: cleared}, true
	})
}

// SetActiveProject replaces the current selection without validating it
func (s *Store) SetActiveProject(sel models.Selection) {
	s.mu.Lock()
	s.active = sel
	s.mu.Unlock()

	if s.bus != nil {
		id, _ := sel.ProjectID()
		s.bus.Publish(event.NewSelectionChanged(id, s.now()))
	}
}

// Selection returns the current selection
func (s *Store) Selection() models.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// ActiveProject returns the selected project, if any and if it still exists
func (s *Store) ActiveProject() (models.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.active.ProjectID()
	if !ok {
		return models.Project{}, false
	}
	i := s.projectIndex(id)
	if i < 0 {
		return models.Project{}, false
	}
	return s.projects[i].Clone(), true
}

// Ptr returns a pointer to v, for building partial updates
func Ptr[T any](v T) *T {
	return &v
}
