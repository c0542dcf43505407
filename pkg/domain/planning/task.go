// Package planning holds the project and task model shared by storage,
// services and the timeline.
package planning

import (
	"strings"
	"time"

	"github.com/frops/planner/pkg/domain/calendar"
)

// Project groups tasks.
type Project struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// Task is a coded unit of work scheduled between two calendar dates.
type Task struct {
	ID        string        `json:"id" yaml:"id"`
	Title     string        `json:"title" yaml:"title"`
	Code      string        `json:"code" yaml:"code"`
	StartDate calendar.Date `json:"startDate" yaml:"start_date"`
	EndDate   calendar.Date `json:"endDate" yaml:"end_date"`
	ProjectID string        `json:"projectId,omitempty" yaml:"project_id,omitempty"`
	CreatedAt time.Time     `json:"createdAt" yaml:"created_at"`
}

// Team returns the team prefix of the task code.
func (t Task) Team() string {
	return TeamOf(t.Code)
}

// TaskInput is the payload accepted when creating a task.
type TaskInput struct {
	Title     string `json:"title"`
	Code      string `json:"code"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	ProjectID string `json:"projectId,omitempty"`
}

// Validate checks required fields, the code format and date order, and
// returns the parsed dates.
func (in TaskInput) Validate() (start, end calendar.Date, err error) {
	if strings.TrimSpace(in.Title) == "" {
		return start, end, &ValidationError{Field: "title", Reason: "is required"}
	}
	if _, err := NewTaskCode(in.Code); err != nil {
		return start, end, err
	}
	if in.StartDate == "" {
		return start, end, &ValidationError{Field: "startDate", Reason: "is required"}
	}
	if in.EndDate == "" {
		return start, end, &ValidationError{Field: "endDate", Reason: "is required"}
	}
	start, err = calendar.Parse(in.StartDate)
	if err != nil {
		return start, end, &ValidationError{Field: "startDate", Reason: err.Error()}
	}
	end, err = calendar.Parse(in.EndDate)
	if err != nil {
		return start, end, &ValidationError{Field: "endDate", Reason: err.Error()}
	}
	if end.Before(start) {
		return start, end, &ValidationError{Field: "endDate", Reason: "must not be before startDate"}
	}
	return start, end, nil
}
