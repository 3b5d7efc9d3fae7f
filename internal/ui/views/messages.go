package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/pmdash/internal/ui/styles"
)

// SelectedProject opens the board for a project
type SelectedProject struct {
	ProjectID string
}

// BackToProjects returns to the project list
type BackToProjects struct{}

// BackToDashboard returns to the dashboard
type BackToDashboard struct{}

// OpenProjects shows the project list
type OpenProjects struct{}

// OpenImport shows the CSV import prompt
type OpenImport struct{}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// relativeTime renders t as "N minutes ago" relative to now
func relativeTime(t, now time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	default:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// truncate shortens s to width runes, adding an ellipsis when cut
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

// helpLine renders alternating key/description pairs as "key desc • key desc"
func helpLine(s *styles.Styles, pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, s.HelpKey.Render(pairs[i])+" "+s.HelpDesc.Render(pairs[i+1]))
	}
	return s.Help.Render(strings.Join(parts, " • "))
}
