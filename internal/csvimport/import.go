package csvimport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/tgienger/pmdash/internal/event"
	"github.com/tgienger/pmdash/internal/models"
	"github.com/tgienger/pmdash/internal/store"
)

// ErrNotCSV is returned by ImportFile for files without a .csv extension
var ErrNotCSV = errors.New("not a csv file")

// Creator replays creation requests; *store.Store satisfies it
type Creator interface {
	CreateProject(in store.ProjectInput) (models.Project, error)
	CreateTask(projectID string, in store.TaskInput) (models.Task, error)
}

// Result counts what an import created
type Result struct {
	Projects int
	Tasks    int
}

// Importer parses CSV text and replays it through a Creator
type Importer struct {
	creator Creator
	bus     *event.Bus
	logger  *slog.Logger
	now     func() time.Time
}

// NewImporter creates an importer. bus may be nil.
func NewImporter(creator Creator, bus *event.Bus, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{creator: creator, bus: bus, logger: logger, now: time.Now}
}

// ImportFile reads path and imports it
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	if !strings.EqualFold(filepath.Ext(path), ".csv") {
		return Result{}, fmt.Errorf("%s: %w", path, ErrNotCSV)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}
	return im.Import(ctx, path, string(data))
}

// Import parses text and creates every project, then its tasks, one call at
// a time in first-seen/row order. Parse errors abort before any mutation.
// A replay error stops the import and leaves what was already created.
func (im *Importer) Import(ctx context.Context, source, text string) (Result, error) {
	requests, err := Parse(text)
	if err != nil {
		im.logger.Warn("csv import rejected", "source", source, "error", err)
		return Result{}, err
	}

	var res Result
	for _, req := range requests {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		p, err := im.creator.CreateProject(store.ProjectInput{
			Name:        req.Name,
			Description: req.Description,
			Category:    req.Category,
			Color:       req.Color,
		})
		if err != nil {
			im.logger.Error("csv import failed", "source", source, "project", req.Name, "error", err)
			return res, fmt.Errorf("import project %q: %w", req.Name, err)
		}
		res.Projects++

		for _, tr := range req.Tasks {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			if _, err := im.creator.CreateTask(p.ID, taskInput(tr)); err != nil {
				im.logger.Error("csv import failed", "source", source, "task", tr.Title, "error", err)
				return res, fmt.Errorf("import task %q: %w", tr.Title, err)
			}
			res.Tasks++
		}
	}

	im.logger.Info("csv import completed", "source", source, "projects", res.Projects, "tasks", res.Tasks)
	if im.bus != nil {
		im.bus.Publish(event.NewImportCompleted(source, res.Projects, res.Tasks, im.now()))
	}
	return res, nil
}

func taskInput(tr TaskRequest) store.TaskInput {
	return store.TaskInput{
		Title:       tr.Title,
		Description: tr.Description,
		Status:      models.TaskStatus(tr.Status),
		Priority:    models.Priority(tr.Priority),
		DueDate:     parseDueDate(tr.DueDate),
	}
}

// parseDueDate accepts any layout dateparse understands. Unparseable values
// mean "no due date": such a task can never fall inside a stats window.
func parseDueDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}
	return &t
}

// UserMessage turns an import error into the text shown to the user
func UserMessage(err error) string {
	var missing *MissingColumnsError
	switch {
	case err == nil:
		return "Projects and tasks imported successfully"
	case errors.As(err, &missing):
		return missing.Error()
	case errors.Is(err, ErrNotCSV):
		return "Please upload a CSV file"
	default:
		return "Error processing CSV file. Please check the format and try again."
	}
}
