// Package csvimport turns a flat, comma-delimited text blob into project and
// task creation requests and replays them through the store.
//
// The format is deliberately naive: lines are split on '\n' and cells on ','.
// There is no quoting or escaping, so a comma inside a value shifts every
// following column.
package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

// Column names
const (
	ColProjectName        = "Project Name"
	ColProjectDescription = "Project Description"
	ColProjectCategory    = "Project Category"
	ColProjectColor       = "Project Color"
	ColTaskTitle          = "Task Title"
	ColTaskDescription    = "Task Description"
	ColTaskStatus         = "Task Status"
	ColTaskPriority       = "Task Priority"
	ColDueDate            = "Due Date"
)

// DefaultColor is used when a project row has no Project Color
const DefaultColor = "#3B82F6"

// RequiredColumns must all appear in the header row
var RequiredColumns = []string{
	ColProjectName,
	ColProjectDescription,
	ColTaskTitle,
	ColTaskDescription,
	ColTaskStatus,
	ColTaskPriority,
}

// MissingColumnsError lists the required columns absent from the header,
// in RequiredColumns order
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "Missing required columns: " + strings.Join(e.Columns, ", ")
}

// ErrMalformedRow is returned when a data row has no cell for a required column
var ErrMalformedRow = errors.New("row is missing required cells")

// TaskRequest is one pending task creation
type TaskRequest struct {
	Title       string
	Description string
	Status      string // lower-cased, not validated
	Priority    string // lower-cased, not validated
	DueDate     string // verbatim
}

// ProjectRequest is one pending project creation with its tasks in row order
type ProjectRequest struct {
	Name        string
	Description string
	Category    string
	Color       string
	Tasks       []TaskRequest
}

// Parse validates the header and groups rows by project name. Projects are
// returned in first-seen order; the first row of a project fixes its
// description, category and color. A row without a cell for every required
// column fails the whole parse with ErrMalformedRow.
func Parse(text string) ([]ProjectRequest, error) {
	lines := strings.Split(text, "\n")
	headers := splitCells(lines[0])
	if missing := missingColumns(headers); len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var projects []ProjectRequest
	index := map[string]int{}

	for n, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		row := zip(headers, splitCells(line))
		for _, col := range RequiredColumns {
			if _, ok := row[col]; !ok {
				return nil, fmt.Errorf("line %d: %w: no %q cell", n+2, ErrMalformedRow, col)
			}
		}

		name := row[ColProjectName]
		i, ok := index[name]
		if !ok {
			color := row[ColProjectColor]
			if color == "" {
				color = DefaultColor
			}
			projects = append(projects, ProjectRequest{
				Name:        name,
				Description: row[ColProjectDescription],
				Category:    row[ColProjectCategory],
				Color:       color,
			})
			i = len(projects) - 1
			index[name] = i
		}

		projects[i].Tasks = append(projects[i].Tasks, TaskRequest{
			Title:       row[ColTaskTitle],
			Description: row[ColTaskDescription],
			Status:      strings.ToLower(row[ColTaskStatus]),
			Priority:    strings.ToLower(row[ColTaskPriority]),
			DueDate:     row[ColDueDate],
		})
	}

	return projects, nil
}

func splitCells(line string) []string {
	cells := strings.Split(line, ",")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

func missingColumns(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// zip maps header names to cells. Headers past the last cell are absent
// from the row, so optional columns read as empty; extra cells are dropped.
// A repeated header keeps its last cell.
func zip(headers, cells []string) map[string]string {
	row := make(map[string]string, len(headers))
	for i, h := range headers {
		if i < len(cells) {
			row[h] = cells[i]
		}
	}
	return row
}
