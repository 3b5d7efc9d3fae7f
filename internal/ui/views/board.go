package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/pmdash/internal/models"
	"github.com/tgienger/pmdash/internal/store"
	"github.com/tgienger/pmdash/internal/ui/keys"
	"github.com/tgienger/pmdash/internal/ui/styles"
)

// maxActivityLines caps the project activity panel
const maxActivityLines = 10

// BoardView is the kanban board of one project
type BoardView struct {
	store     *store.Store
	projectID string
	project   models.Project
	exists    bool
	now       func() time.Time
	styles    *styles.Styles
	keys      keys.KeyMap

	width  int
	height int

	// cursor
	col  int
	rows [4]int

	// Quick add
	adding   bool
	addInput textinput.Model

	// Task detail
	viewingTask    bool
	viewingTaskID  string
	commentInput   textarea.Model
	commentFocused bool

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	showActivity  bool
	showHelpPopup bool

	// result of the last action, shown above the help line
	status string
}

// NewBoardView creates the board for a project
func NewBoardView(s *store.Store, projectID string, now func() time.Time) *BoardView {
	addInput := textinput.New()
	addInput.Placeholder = "Task title"
	addInput.CharLimit = 200

	commentInput := textarea.New()
	commentInput.Placeholder = "Add a comment..."
	commentInput.CharLimit = 2000
	commentInput.SetWidth(50)
	commentInput.SetHeight(3)
	commentInput.ShowLineNumbers = false

	v := &BoardView{
		store:        s,
		projectID:    projectID,
		now:          now,
		styles:       styles.NewStyles(),
		keys:         keys.DefaultKeyMap(),
		addInput:     addInput,
		commentInput: commentInput,
	}
	v.Refresh()
	return v
}

// Refresh re-reads the project and keeps cursors in range
func (v *BoardView) Refresh() {
	v.project, v.exists = v.store.Project(v.projectID)
	for i, status := range models.Statuses {
		n := len(v.project.TasksByStatus(status))
		v.rows[i] = clamp(v.rows[i], 0, max(n-1, 0))
	}
	if v.viewingTask {
		if _, ok := v.task(v.viewingTaskID); !ok {
			v.viewingTask = false
		}
	}
}

// Exists reports whether the project is still in the store
func (v *BoardView) Exists() bool {
	return v.exists
}

// ProjectID returns the id of the project on the board
func (v *BoardView) ProjectID() string {
	return v.projectID
}

func (v *BoardView) column(i int) []models.Task {
	return v.project.TasksByStatus(models.Statuses[i])
}

// selected returns the task under the cursor
func (v *BoardView) selected() (models.Task, bool) {
	tasks := v.column(v.col)
	if len(tasks) == 0 {
		return models.Task{}, false
	}
	return tasks[v.rows[v.col]], true
}

func (v *BoardView) task(id string) (models.Task, bool) {
	for _, t := range v.project.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

func (v *BoardView) Init() tea.Cmd {
	return nil
}

func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if !v.exists {
			return v, func() tea.Msg { return BackToProjects{} }
		}
		switch {
		case v.confirmingDelete:
			return v.updateConfirmDelete(msg)
		case v.adding:
			return v.updateAdding(msg)
		case v.viewingTask:
			return v.updateViewingTask(msg)
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *BoardView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true

	case key.Matches(msg, v.keys.Left):
		if v.col > 0 {
			v.col--
		}

	case key.Matches(msg, v.keys.Right):
		if v.col < len(models.Statuses)-1 {
			v.col++
		}

	case key.Matches(msg, v.keys.Up):
		if v.rows[v.col] > 0 {
			v.rows[v.col]--
		}

	case key.Matches(msg, v.keys.Down):
		if v.rows[v.col] < len(v.column(v.col))-1 {
			v.rows[v.col]++
		}

	case key.Matches(msg, v.keys.PrevStatus):
		v.moveSelected(-1)

	case key.Matches(msg, v.keys.NextStatus):
		v.moveSelected(1)

	case key.Matches(msg, v.keys.New):
		v.adding = true
		v.addInput.Reset()
		v.addInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Assign):
		v.cycleAssignee()

	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = t.ID
			v.deleteTargetName = t.Title
		}

	case key.Matches(msg, v.keys.Activity):
		v.showActivity = !v.showActivity

	case key.Matches(msg, v.keys.Enter):
		if t, ok := v.selected(); ok {
			v.viewingTask = true
			v.viewingTaskID = t.ID
		}
	}
	return v, nil
}

// moveSelected moves the selected task dir columns over; the cursor follows it
func (v *BoardView) moveSelected(dir int) {
	t, ok := v.selected()
	if !ok {
		return
	}
	target := v.col + dir
	if target < 0 || target >= len(models.Statuses) {
		return
	}
	status := models.Statuses[target]
	if !v.store.UpdateTask(v.projectID, t.ID, store.TaskUpdate{Status: &status}) {
		return
	}
	v.status = fmt.Sprintf("Moved \"%s\" to %s", t.Title, status.Label())
	v.Refresh()
	v.col = target
	for i, moved := range v.column(target) {
		if moved.ID == t.ID {
			v.rows[target] = i
		}
	}
}

// cycleAssignee assigns the selected task to the next project member
func (v *BoardView) cycleAssignee() {
	t, ok := v.selected()
	if !ok || len(v.project.Members) == 0 {
		return
	}
	next := 0
	if t.Assignee != nil {
		for i, m := range v.project.Members {
			if m.ID == t.Assignee.ID {
				next = (i + 1) % len(v.project.Members)
				break
			}
		}
	}
	member := v.project.Members[next]
	if v.store.UpdateTask(v.projectID, t.ID, store.TaskUpdate{Assignee: &member}) {
		v.status = fmt.Sprintf("Assigned \"%s\" to %s", t.Title, member.Name)
	}
	v.Refresh()
}

func (v *BoardView) updateAdding(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.adding = false
		v.addInput.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		title := strings.TrimSpace(v.addInput.Value())
		v.adding = false
		v.addInput.Blur()
		if title == "" {
			return v, nil
		}
		created, err := v.store.CreateTask(v.projectID, store.TaskInput{
			Title:    title,
			Status:   models.Statuses[v.col],
			Priority: models.PriorityMedium,
		})
		if err != nil {
			v.status = err.Error()
			return v, nil
		}
		v.status = fmt.Sprintf("Added \"%s\"", created.Title)
		v.Refresh()
		tasks := v.column(v.col)
		for i, t := range tasks {
			if t.ID == created.ID {
				v.rows[v.col] = i
			}
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.addInput, cmd = v.addInput.Update(msg)
	return v, cmd
}

func (v *BoardView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if v.store.DeleteTask(v.projectID, v.deleteTargetID) {
			v.status = fmt.Sprintf("Deleted \"%s\"", v.deleteTargetName)
		}
		v.confirmingDelete = false
		v.viewingTask = false
		v.Refresh()
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *BoardView) updateViewingTask(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle comment input mode
	if v.commentFocused {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.commentFocused = false
			v.commentInput.Blur()
			return v, nil
		case msg.String() == "ctrl+s":
			v.submitComment()
			return v, nil
		default:
			var cmd tea.Cmd
			v.commentInput, cmd = v.commentInput.Update(msg)
			return v, cmd
		}
	}

	switch {
	case key.Matches(msg, v.keys.Back):
		v.viewingTask = false
		return v, nil
	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.task(v.viewingTaskID); ok {
			v.confirmingDelete = true
			v.deleteTargetID = t.ID
			v.deleteTargetName = t.Title
		}
		return v, nil
	case key.Matches(msg, v.keys.Comment):
		v.commentFocused = true
		v.commentInput.Focus()
		return v, textarea.Blink
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *BoardView) submitComment() {
	content := strings.TrimSpace(v.commentInput.Value())
	if content == "" {
		return
	}
	if _, ok := v.store.AddComment(v.projectID, v.viewingTaskID, content); !ok {
		return
	}

	// Clear the input and reload
	v.commentInput.Reset()
	v.commentFocused = false
	v.commentInput.Blur()
	v.Refresh()
}

// View renders the view
func (v *BoardView) View() string {
	if !v.exists {
		return v.styles.TitleMuted.Render("This project no longer exists. Press any key to go back.")
	}
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.viewingTask {
		return v.renderTaskView()
	}

	s := v.styles
	title := s.Title.Render(styles.Swatch(v.project.Color) + " " + v.project.Name)
	if v.project.Description != "" {
		title += "\n" + s.TitleMuted.Render(v.project.Description)
	}

	parts := []string{title, "", v.renderColumns()}
	if v.adding {
		parts = append(parts, "",
			s.InputFocused.Width(clamp(styles.ContentWidth(v.width)-6, 20, 50)).Render(v.addInput.View()),
			s.TitleMuted.Render(fmt.Sprintf("Adding to %s • ↵ save • esc cancel", models.Statuses[v.col].Label())))
	}
	if v.showActivity {
		parts = append(parts, "", v.renderActivity())
	}
	if v.status != "" {
		parts = append(parts, s.StatusBar.Render(v.status))
	}
	parts = append(parts, v.renderHelp())

	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, parts...), v.width, v.height)
}

func (v *BoardView) renderColumns() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth == 0 {
		contentWidth = styles.MaxWidth
	}
	colWidth := max(contentWidth/len(models.Statuses)-4, 12)

	// card = 2 lines + blank
	visible := max((v.height-14)/3, 1)

	var cols []string
	for i, status := range models.Statuses {
		tasks := v.column(i)
		header := s.ColumnTitle.Foreground(styles.StatusColor(status)).
			Render(fmt.Sprintf("%s (%d)", status.Label(), len(tasks)))

		lines := []string{header}
		start := 0
		if v.rows[i] >= visible {
			start = v.rows[i] - visible + 1
		}
		end := min(start+visible, len(tasks))
		for j := start; j < end; j++ {
			lines = append(lines, "", v.renderCard(tasks[j], colWidth, i == v.col && j == v.rows[i]))
		}
		if len(tasks) == 0 {
			lines = append(lines, "", s.TitleMuted.Render("empty"))
		}
		if end < len(tasks) {
			lines = append(lines, s.TitleMuted.Render(fmt.Sprintf("+%d more", len(tasks)-end)))
		}

		colStyle := s.Column
		if i == v.col {
			colStyle = s.ColumnFocused
		}
		cols = append(cols, colStyle.Width(colWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (v *BoardView) renderCard(t models.Task, width int, selected bool) string {
	s := v.styles
	titleStyle := s.TaskCard
	if selected {
		titleStyle = s.TaskSelected
	}

	meta := lipgloss.NewStyle().Foreground(styles.PriorityColor(t.Priority)).Render(string(t.Priority))
	if t.DueDate != nil {
		meta += " " + s.TitleMuted.Render(t.DueDate.Format("Jan 2"))
	}
	if t.Assignee != nil {
		meta += " " + s.TitleMuted.Render(initials(t.Assignee.Name))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Width(width).Render(truncate(t.Title, width)),
		meta,
	)
}

func (v *BoardView) renderActivity() string {
	s := v.styles
	activities := v.store.ProjectActivities(v.projectID)
	if len(activities) > maxActivityLines {
		activities = activities[:maxActivityLines]
	}

	lines := []string{s.ColumnTitle.Render("Project Activity")}
	if len(activities) == 0 {
		lines = append(lines, s.TitleMuted.Render("No activity yet"))
	}
	now := v.now()
	for _, a := range activities {
		lines = append(lines, fmt.Sprintf("%s: %s  %s",
			a.User.Name, a.Description, s.TitleMuted.Render(relativeTime(a.Timestamp, now))))
	}
	return s.Popup.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *BoardView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 60 {
		return helpLine(v.styles, "?", "help")
	}
	return helpLine(v.styles,
		"←→↑↓", "move",
		"[ ]", "status",
		"n", "new",
		"a", "assign",
		"↵", "open",
		"d", "del",
		"v", "activity",
		"esc", "back",
	)
}

func (v *BoardView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("←/→") + "    switch column",
		s.HelpKey.Render("↑/↓") + "    select task",
		s.HelpKey.Render("[ ]") + "    move task to previous/next status",
		s.HelpKey.Render("n") + "      quick add task",
		s.HelpKey.Render("a") + "      cycle assignee",
		s.HelpKey.Render("↵") + "      task details",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("v") + "      project activity",
		s.HelpKey.Render("esc") + "    back to projects",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *BoardView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("\"%s\" will be removed.", v.deleteTargetName)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *BoardView) renderTaskView() string {
	t, ok := v.task(v.viewingTaskID)
	if !ok {
		return ""
	}

	s := v.styles
	labelStyle := s.TitleMuted
	textWidth := clamp(styles.ContentWidth(v.width)-10, 20, 70)
	v.commentInput.SetWidth(clamp(textWidth, 20, 50))

	descText := t.Description
	if descText == "" {
		descText = s.TitleMuted.Render("No description")
	}
	assignee := "Unassigned"
	if t.Assignee != nil {
		assignee = t.Assignee.Name
	}
	due := "None"
	if t.DueDate != nil {
		due = t.DueDate.Format("Jan 2, 2006")
	}

	var commentsContent string
	if len(t.Comments) == 0 {
		commentsContent = s.TitleMuted.Render("No comments yet")
	} else {
		var commentLines []string
		for _, c := range t.Comments {
			header := fmt.Sprintf("%s • %s", c.User.Name, c.CreatedAt.Format("Jan 2, 2006 3:04 PM"))
			commentLines = append(commentLines, lipgloss.JoinVertical(lipgloss.Left,
				s.TitleMuted.Render(header),
				lipgloss.NewStyle().Width(textWidth).Render(c.Content),
			))
		}
		commentsContent = lipgloss.JoinVertical(lipgloss.Left, commentLines...)
	}

	commentInputStyle := s.Input
	if v.commentFocused {
		commentInputStyle = s.InputFocused
	}

	var helpText string
	if v.commentFocused {
		helpText = s.Help.Render(
			fmt.Sprintf("%s submit • %s cancel",
				s.HelpKey.Render("ctrl+s"),
				s.HelpKey.Render("esc"),
			),
		)
	} else {
		helpText = s.Help.Render(
			fmt.Sprintf("%s comment • %s delete • %s back",
				s.HelpKey.Render("c"),
				s.HelpKey.Render("d"),
				s.HelpKey.Render("esc"),
			),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.MarginBottom(1).Render(t.Title),
		labelStyle.Render("Status"),
		lipgloss.NewStyle().Foreground(styles.StatusColor(t.Status)).Render(t.Status.Label()),
		"",
		labelStyle.Render("Priority"),
		lipgloss.NewStyle().Foreground(styles.PriorityColor(t.Priority)).Render(string(t.Priority)),
		"",
		labelStyle.Render("Assignee"),
		assignee,
		"",
		labelStyle.Render("Due"),
		due,
		"",
		labelStyle.Render("Description"),
		lipgloss.NewStyle().Width(textWidth).Render(descText),
		"",
		labelStyle.Render("Comments"),
		commentsContent,
		"",
		commentInputStyle.Render(v.commentInput.View()),
		"",
		helpText,
	)

	padded := lipgloss.NewStyle().Padding(1, 2).Render(content)
	return styles.CenterView(padded, v.width, v.height)
}

// initials returns up to two leading letters of a name
func initials(name string) string {
	var out []rune
	for _, f := range strings.Fields(name) {
		out = append(out, []rune(f)[0])
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}
