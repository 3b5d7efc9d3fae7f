// Package ui is the bubbletea front end: dashboard, project list, kanban
// board and CSV import prompt.
package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/pmdash/internal/event"
	"github.com/tgienger/pmdash/internal/models"
	"github.com/tgienger/pmdash/internal/store"
	"github.com/tgienger/pmdash/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewDashboard View = iota
	ViewProjects
	ViewBoard
	ViewImport
)

// StoreChangedMsg tells the app to re-read the store
type StoreChangedMsg struct {
	EventType string
}

// Forward subscribes to bus and sends a StoreChangedMsg for every store,
// selection or import event. Sends happen off the publishing goroutine
// because mutations are published from inside Update.
func Forward(bus *event.Bus, send func(tea.Msg)) string {
	return bus.SubscribeAll(func(e event.Event) {
		switch e.EventType() {
		case event.TypeStoreChanged, event.TypeSelectionChanged, event.TypeImportCompleted:
			msg := StoreChangedMsg{EventType: e.EventType()}
			go send(msg)
		}
	})
}

type App struct {
	store       *store.Store
	now         func() time.Time
	currentView View
	dashboard   *views.DashboardView
	projectList *views.ProjectListView
	board       *views.BoardView
	importView  *views.ImportView
	width       int
	height      int
}

// Creates a new application
func NewApp(s *store.Store, stats views.StatsSource, importer views.FileImporter, now func() time.Time) *App {
	return &App{
		store:       s,
		now:         now,
		currentView: ViewDashboard,
		dashboard:   views.NewDashboardView(stats, now),
		projectList: views.NewProjectListView(s),
		importView:  views.NewImportView(importer),
	}
}

// CurrentView returns the active view
func (a *App) CurrentView() View {
	return a.currentView
}

func (a *App) Init() tea.Cmd {
	// Reopen the last selected project
	if p, ok := a.store.ActiveProject(); ok {
		return a.openProject(p.ID)
	}
	return a.dashboard.Init()
}

func (a *App) openProject(id string) tea.Cmd {
	a.currentView = ViewBoard
	a.board = views.NewBoardView(a.store, id, a.now)

	// Save as last opened project
	if current, _ := a.store.Selection().ProjectID(); current != id {
		a.store.SetActiveProject(models.Selected(id))
	}

	return tea.Batch(
		a.board.Init(),
		a.resize,
	)
}

func (a *App) resize() tea.Msg {
	return tea.WindowSizeMsg{Width: a.width, Height: a.height}
}

func (a *App) switchTo(v View, init tea.Cmd) tea.Cmd {
	a.currentView = v
	return tea.Batch(init, a.resize)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Views that persist across switches always get the new size
		a.dashboard.Update(msg)
		a.projectList.Update(msg)
		a.importView.Update(msg)
		if a.board != nil {
			a.board.Update(msg)
		}
		return a, nil

	case StoreChangedMsg:
		a.refresh()
		return a, nil

	case views.SelectedProject:
		return a, a.openProject(msg.ProjectID)

	case views.BackToProjects:
		a.board = nil
		if !a.store.Selection().IsNone() {
			a.store.SetActiveProject(models.NoSelection())
		}
		a.projectList.Refresh()
		return a, a.switchTo(ViewProjects, a.projectList.Init())

	case views.OpenProjects:
		a.projectList.Refresh()
		return a, a.switchTo(ViewProjects, a.projectList.Init())

	case views.OpenImport:
		return a, a.switchTo(ViewImport, a.importView.Init())

	case views.BackToDashboard:
		a.dashboard.Refresh()
		return a, a.switchTo(ViewDashboard, a.dashboard.Init())
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewDashboard:
		_, cmd = a.dashboard.Update(msg)
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	case ViewBoard:
		if a.board != nil {
			_, cmd = a.board.Update(msg)
		}
	case ViewImport:
		_, cmd = a.importView.Update(msg)
	}

	return a, cmd
}

// refresh re-reads the store into every live view. A board whose project
// was deleted falls back to the project list.
func (a *App) refresh() {
	a.dashboard.Refresh()
	if !a.projectList.Creating() {
		a.projectList.Refresh()
	}
	if a.board != nil {
		a.board.Refresh()
		if !a.board.Exists() && a.currentView == ViewBoard {
			a.board = nil
			a.currentView = ViewProjects
		}
	}
}

func (a *App) View() string {
	switch a.currentView {
	case ViewProjects:
		return a.projectList.View()
	case ViewBoard:
		if a.board != nil {
			return a.board.View()
		}
	case ViewImport:
		return a.importView.View()
	}
	return a.dashboard.View()
}
