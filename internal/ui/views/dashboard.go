package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/pmdash/internal/models"
	"github.com/tgienger/pmdash/internal/ui/keys"
	"github.com/tgienger/pmdash/internal/ui/styles"
)

// StatsSource provides the current dashboard stats; *stats.Aggregator satisfies it
type StatsSource interface {
	Stats() models.DashboardStats
}

// DashboardView shows the stat cards, upcoming deadlines and recent activity
type DashboardView struct {
	stats  StatsSource
	now    func() time.Time
	styles *styles.Styles
	keys   keys.KeyMap

	current models.DashboardStats
	width   int
	height  int
}

// NewDashboardView creates the dashboard
func NewDashboardView(source StatsSource, now func() time.Time) *DashboardView {
	v := &DashboardView{
		stats:  source,
		now:    now,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
	v.Refresh()
	return v
}

// Refresh re-reads the stats
func (v *DashboardView) Refresh() {
	v.current = v.stats.Stats()
}

func (v *DashboardView) Init() tea.Cmd {
	return nil
}

func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Projects), key.Matches(msg, v.keys.Enter):
			return v, func() tea.Msg { return OpenProjects{} }
		case key.Matches(msg, v.keys.Import):
			return v, func() tea.Msg { return OpenImport{} }
		}
	}
	return v, nil
}

// View renders the view
func (v *DashboardView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth == 0 {
		contentWidth = styles.MaxWidth
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Dashboard"),
		"",
		v.renderCards(contentWidth),
		"",
		s.ColumnTitle.Render("Upcoming Deadlines"),
		v.renderDeadlines(contentWidth),
		"",
		s.ColumnTitle.Render("Recent Activity"),
		v.renderActivity(contentWidth),
		"",
		v.renderHelp(),
	)
	return styles.CenterView(lipgloss.NewStyle().Padding(1, 2).Render(content), v.width, v.height)
}

func (v *DashboardView) renderCards(contentWidth int) string {
	st := v.current
	cards := []struct {
		label string
		value string
	}{
		{"Total Projects", fmt.Sprint(st.TotalProjects)},
		{"Total Tasks", fmt.Sprint(st.TotalTasks)},
		{"Completed", fmt.Sprintf("%d/%d", st.CompletedTasks, st.TotalTasks)},
		{"Due This Week", fmt.Sprint(st.TasksThisWeek)},
	}

	// four cards per row, two when narrow
	perRow := 4
	if contentWidth < 70 {
		perRow = 2
	}
	cardWidth := max(contentWidth/perRow-4, 12)

	var rows, row []string
	for i, c := range cards {
		card := v.styles.Card.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
			v.styles.CardValue.Render(c.value),
			v.styles.CardLabel.Render(c.label),
		))
		row = append(row, card)
		if len(row) == perRow || i == len(cards)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *DashboardView) renderDeadlines(contentWidth int) string {
	s := v.styles
	if len(v.current.UpcomingDeadlines) == 0 {
		return s.TitleMuted.Render("No upcoming deadlines")
	}

	var lines []string
	for _, t := range v.current.UpcomingDeadlines {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.Format("Jan 2")
		}
		priority := lipgloss.NewStyle().Foreground(styles.PriorityColor(t.Priority)).Render(string(t.Priority))
		title := truncate(t.Title, contentWidth-30)
		lines = append(lines, fmt.Sprintf("%s  %s  %s", s.HelpKey.Render(fmt.Sprintf("%-6s", due)), title, priority))
	}
	return strings.Join(lines, "\n")
}

func (v *DashboardView) renderActivity(contentWidth int) string {
	s := v.styles
	if len(v.current.RecentActivity) == 0 {
		return s.TitleMuted.Render("No recent activity")
	}

	now := v.now()
	var lines []string
	for _, a := range v.current.RecentActivity {
		when := s.TitleMuted.Render(relativeTime(a.Timestamp, now))
		text := truncate(a.User.Name+": "+a.Description, contentWidth-20)
		lines = append(lines, text+"  "+when)
	}
	return strings.Join(lines, "\n")
}

func (v *DashboardView) renderHelp() string {
	return helpLine(v.styles, "p", "projects", "i", "import", "q", "quit")
}
