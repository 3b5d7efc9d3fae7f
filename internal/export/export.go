// Package export writes the workspace and its dashboard stats as YAML or JSON
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/tgienger/pmdash/internal/models"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Formats lists the supported formats
var Formats = []Format{FormatYAML, FormatJSON}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("unknown export format %q (want yaml or json)", s)
	}
	return f, nil
}

// Document is the exported workspace
type Document struct {
	GeneratedAt   time.Time             `json:"generatedAt" yaml:"generatedAt"`
	ActiveProject string                `json:"activeProject,omitempty" yaml:"activeProject,omitempty"`
	Stats         models.DashboardStats `json:"stats" yaml:"stats"`
	CurrentUser   models.User           `json:"currentUser" yaml:"currentUser"`
	Users         []models.User         `json:"users" yaml:"users"`
	Projects      []models.Project      `json:"projects" yaml:"projects"`
	Activities    []models.Activity     `json:"activities" yaml:"activities"`
}

// NewDocument assembles a document from a snapshot and its stats
func NewDocument(snap models.Snapshot, stats models.DashboardStats, at time.Time) Document {
	active, _ := snap.Active.ProjectID()
	return Document{
		GeneratedAt:   at,
		ActiveProject: active,
		Stats:         stats,
		CurrentUser:   snap.CurrentUser,
		Users:         snap.Users,
		Projects:      snap.Projects,
		Activities:    snap.Activities,
	}
}

// Write encodes doc to w
func Write(w io.Writer, doc Document, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
