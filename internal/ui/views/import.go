package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/pmdash/internal/csvimport"
	"github.com/tgienger/pmdash/internal/ui/keys"
	"github.com/tgienger/pmdash/internal/ui/styles"
)

// FileImporter imports a CSV file; *csvimport.Importer satisfies it
type FileImporter interface {
	ImportFile(ctx context.Context, path string) (csvimport.Result, error)
}

type importDoneMsg struct {
	result csvimport.Result
	err    error
}

// ImportView prompts for a CSV path and reports the outcome
type ImportView struct {
	importer FileImporter
	styles   *styles.Styles
	keys     keys.KeyMap
	input    textinput.Model

	running bool
	done    bool
	result  csvimport.Result
	err     error

	width  int
	height int
}

// NewImportView creates the import prompt
func NewImportView(importer FileImporter) *ImportView {
	input := textinput.New()
	input.Placeholder = "path/to/projects.csv"
	input.CharLimit = 500

	return &ImportView{
		importer: importer,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		input:    input,
	}
}

func (v *ImportView) Init() tea.Cmd {
	v.input.Reset()
	v.done = false
	v.err = nil
	v.input.Focus()
	return textinput.Blink
}

func (v *ImportView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case importDoneMsg:
		v.running = false
		v.done = true
		v.result = msg.result
		v.err = msg.err
		return v, nil

	case tea.KeyMsg:
		if v.running {
			return v, nil
		}
		switch {
		case key.Matches(msg, v.keys.Back):
			v.input.Blur()
			return v, func() tea.Msg { return BackToDashboard{} }
		case key.Matches(msg, v.keys.Enter):
			path := strings.TrimSpace(v.input.Value())
			if path == "" {
				return v, nil
			}
			v.running = true
			v.done = false
			importer := v.importer
			return v, func() tea.Msg {
				res, err := importer.ImportFile(context.Background(), path)
				return importDoneMsg{result: res, err: err}
			}
		}
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// View renders the view
func (v *ImportView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 60)

	status := s.TitleMuted.Render(fmt.Sprintf("Required columns: %s", strings.Join(csvimport.RequiredColumns, ", ")))
	switch {
	case v.running:
		status = s.TitleMuted.Render("Importing...")
	case v.done && v.err != nil:
		status = lipgloss.NewStyle().Foreground(styles.Current.Error).Render(csvimport.UserMessage(v.err))
	case v.done:
		status = lipgloss.NewStyle().Foreground(styles.Current.Success).Render(
			fmt.Sprintf("%s (%d projects, %d tasks)", csvimport.UserMessage(nil), v.result.Projects, v.result.Tasks))
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Import CSV"),
		"",
		"File:",
		s.InputFocused.Width(inputWidth).Render(v.input.View()),
		"",
		lipgloss.NewStyle().Width(inputWidth).Render(status),
		"",
		helpLine(s, "↵", "import", "esc", "back"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}
