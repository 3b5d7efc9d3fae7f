package models

import "time"

// DeletedProjectID marks activities whose project no longer exists
const DeletedProjectID = "deleted"

// TaskStatus is the kanban column a task sits in
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusReview     TaskStatus = "review"
	StatusCompleted  TaskStatus = "completed"
)

// Statuses lists the board columns in display order
var Statuses = []TaskStatus{StatusTodo, StatusInProgress, StatusReview, StatusCompleted}

// Label returns the column title for a status
func (s TaskStatus) Label() string {
	switch s {
	case StatusTodo:
		return "To Do"
	case StatusInProgress:
		return "In Progress"
	case StatusReview:
		return "Review"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

// Priority of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// User is a team member. Users are referenced, never owned.
type User struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Email  string `json:"email" yaml:"email"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// Comment represents a comment on a task
type Comment struct {
	ID        string    `json:"id" yaml:"id"`
	Content   string    `json:"content" yaml:"content"`
	User      User      `json:"user" yaml:"user"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Attachment is a file attached to a task
type Attachment struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	URL        string    `json:"url" yaml:"url"`
	Type       string    `json:"type" yaml:"type"`
	Size       int64     `json:"size" yaml:"size"`
	UploadedBy User      `json:"uploadedBy" yaml:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt" yaml:"uploadedAt"`
}

// Task represents a single task. It is owned by the project whose ID is in ProjectID.
type Task struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description" yaml:"description"`
	Status      TaskStatus   `json:"status" yaml:"status"`
	Priority    Priority     `json:"priority" yaml:"priority"`
	DueDate     *time.Time   `json:"dueDate,omitempty" yaml:"dueDate,omitempty"`
	Assignee    *User        `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	CreatedAt   time.Time    `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt" yaml:"updatedAt"`
	ProjectID   string       `json:"projectId" yaml:"projectId"`
	TimeSpent   *int         `json:"timeSpent,omitempty" yaml:"timeSpent,omitempty"` // minutes
	Comments    []Comment    `json:"comments" yaml:"comments"`
	Attachments []Attachment `json:"attachments" yaml:"attachments"`
}

// Clone returns a copy that shares no mutable state with t
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Assignee != nil {
		a := *t.Assignee
		c.Assignee = &a
	}
	if t.TimeSpent != nil {
		m := *t.TimeSpent
		c.TimeSpent = &m
	}
	c.Comments = append([]Comment{}, t.Comments...)
	c.Attachments = append([]Attachment{}, t.Attachments...)
	return c
}

// Project represents a task management project
type Project struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Color       string    `json:"color" yaml:"color"`
	Category    string    `json:"category,omitempty" yaml:"category,omitempty"`
	Tasks       []Task    `json:"tasks" yaml:"tasks"`
	Members     []User    `json:"members" yaml:"members"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Clone returns a deep copy of the project and its tasks
func (p Project) Clone() Project {
	c := p
	c.Tasks = make([]Task, len(p.Tasks))
	for i, t := range p.Tasks {
		c.Tasks[i] = t.Clone()
	}
	c.Members = append([]User{}, p.Members...)
	return c
}

// TasksByStatus returns the project's tasks in the given column, in list order
func (p Project) TasksByStatus(status TaskStatus) []Task {
	var tasks []Task
	for _, t := range p.Tasks {
		if t.Status == status {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

// Activity is an immutable, human-readable record of a mutation.
// ProjectID is a weak reference and may name a deleted project.
type Activity struct {
	ID          string    `json:"id" yaml:"id"`
	Description string    `json:"description" yaml:"description"`
	User        User      `json:"user" yaml:"user"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
	ProjectID   string    `json:"projectId" yaml:"projectId"`
	TaskID      string    `json:"taskId,omitempty" yaml:"taskId,omitempty"`
}

// DashboardStats is derived from projects and activities, never stored
type DashboardStats struct {
	TotalProjects     int        `json:"totalProjects" yaml:"totalProjects"`
	TotalTasks        int        `json:"totalTasks" yaml:"totalTasks"`
	CompletedTasks    int        `json:"completedTasks" yaml:"completedTasks"`
	TasksThisWeek     int        `json:"tasksThisWeek" yaml:"tasksThisWeek"`
	UpcomingDeadlines []Task     `json:"upcomingDeadlines" yaml:"upcomingDeadlines"`
	RecentActivity    []Activity `json:"recentActivity" yaml:"recentActivity"`
}

// Selection is the active project: either none or a selected project id.
// The zero value is NoSelection.
type Selection struct {
	projectID string
}

// NoSelection returns the empty selection
func NoSelection() Selection { return Selection{} }

// Selected returns a selection pointing at projectID. An empty id means no selection.
func Selected(projectID string) Selection { return Selection{projectID: projectID} }

// ProjectID returns the selected project id and whether one is selected
func (s Selection) ProjectID() (string, bool) {
	return s.projectID, s.projectID != ""
}

// IsNone reports whether no project is selected
func (s Selection) IsNone() bool { return s.projectID == "" }

// Snapshot is the complete state of the store
type Snapshot struct {
	CurrentUser User       `json:"currentUser" yaml:"currentUser"`
	Users       []User     `json:"users" yaml:"users"`
	Projects    []Project  `json:"projects" yaml:"projects"`
	Activities  []Activity `json:"activities" yaml:"activities"`
	Active      Selection  `json:"-" yaml:"-"`
}
