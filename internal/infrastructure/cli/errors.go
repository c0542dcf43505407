package cli

import (
	"errors"
	"fmt"

	"github.com/frops/planner/internal/infrastructure/config"
	"github.com/frops/planner/pkg/domain/navigation"
	"github.com/frops/planner/pkg/domain/planning"
	"github.com/frops/planner/pkg/domain/timeline"
	"github.com/frops/planner/pkg/storage"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var validation *planning.ValidationError
	if errors.As(err, &validation) {
		return NewCLIError(validation.Error(), hintForField(validation.Field), err)
	}

	var transition *navigation.TransitionError
	if errors.As(err, &transition) {
		return NewCLIError(transition.Error(), "Check the allowed views for this timeline", err)
	}

	switch {
	case errors.Is(err, planning.ErrProjectNotFound):
		return NewCLIError("project not found", "Run 'planner project list' to see available projects", err)
	case errors.Is(err, planning.ErrTaskNotFound):
		return NewCLIError("task not found", "Run 'planner task list' to see available tasks", err)
	case errors.Is(err, planning.ErrInvalidInput):
		return NewCLIError("invalid input", "Run the command with --help to see the expected arguments", err)
	case errors.Is(err, timeline.ErrInvalidRange):
		return NewCLIError("invalid timeline window", "Use --month YYYY-MM and a positive --span", err)
	case errors.Is(err, timeline.ErrUnknownGranularity):
		return NewCLIError("unknown view", "Use --view week or --view month", err)
	case errors.Is(err, config.ErrInvalidConfig):
		return NewCLIError("invalid configuration", fmt.Sprintf("Fix %s/%s or the PLANNER_* environment variables", storage.Dir, storage.ConfigFile), err)
	case errors.Is(err, storage.ErrUnknownBackend):
		return NewCLIError("unknown storage backend", "Set storage.backend to file, sqlite, gorm or memory", err)
	}

	return err
}

func hintForField(field string) string {
	switch field {
	case "code":
		return "Task codes look like TEAM-123"
	case "startDate", "endDate":
		return "Dates use the YYYY-MM-DD format and the end must not be before the start"
	case "name":
		return "Give the project a non-empty name"
	case "title":
		return "Give the task a non-empty title"
	default:
		return ""
	}
}
