package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/robfig/cron/v3"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "watch.debounce_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError
	errors = append(errors, c.validateStorage()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateWatch()...)
	return errors
}

func (c *Config) validateStorage() []ValidationError {
	var errors []ValidationError
	if spec := c.Storage.AutosaveSchedule; spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			errors = append(errors, ValidationError{
				Field:   "storage.autosave_schedule",
				Value:   spec,
				Message: "must be a cron expression or @every duration",
			})
		}
	}
	return errors
}

func (c *Config) validateLogging() []ValidationError {
	if slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		return nil
	}
	return []ValidationError{{
		Field:   "logging.level",
		Value:   c.Logging.Level,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
	}}
}

func (c *Config) validateWatch() []ValidationError {
	var errors []ValidationError
	if !doublestar.ValidatePattern(c.Watch.Pattern) || c.Watch.Pattern == "" {
		errors = append(errors, ValidationError{
			Field:   "watch.pattern",
			Value:   c.Watch.Pattern,
			Message: "must be a valid glob pattern",
		})
	}
	if c.Watch.DebounceMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: "must be non-negative",
		})
	}
	return errors
}
