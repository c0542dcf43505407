package sdk

import "github.com/frops/planner/pkg/domain/timeline"

// SchemaInfo is the content of the planner://schema resource.
type SchemaInfo struct {
	SchemaVersion string            `json:"schema_version"`
	ServerVersion string            `json:"server_version"`
	Tools         []string          `json:"tools"`
	Resources     []string          `json:"resources"`
	Deprecated    []DeprecatedField `json:"deprecated"`
}

// TimelineSettings is the content of the planner://timeline/settings
// resource.
type TimelineSettings struct {
	View         timeline.Granularity      `json:"view"`
	Span         int                       `json:"span"`
	WeekStartsOn string                    `json:"week_starts_on"`
	PeriodWidth  float64                   `json:"period_width"`
	RowHeight    float64                   `json:"row_height"`
	Teams        map[string]timeline.Color `json:"teams"`
	Fallback     timeline.Color            `json:"fallback"`
}

// DeprecatedField describes a tool argument scheduled for removal.
type DeprecatedField struct {
	Tool      string `json:"tool"`
	Field     string `json:"field"`
	Since     string `json:"since"`
	RemovedIn string `json:"removed_in"`
	Migration string `json:"migration"`
}

// TaskRequest holds the arguments of planner_create_task. Dates are
// YYYY-MM-DD strings and are validated by the server.
type TaskRequest struct {
	Title     string
	Code      string
	StartDate string
	EndDate   string
	ProjectID string
}

func (r TaskRequest) args() map[string]any {
	args := map[string]any{
		"title":      r.Title,
		"code":       r.Code,
		"start_date": r.StartDate,
		"end_date":   r.EndDate,
	}
	if r.ProjectID != "" {
		args["project_id"] = r.ProjectID
	}
	return args
}

// TimelineRequest selects the window of planner_timeline. Zero fields fall
// back to the server's configured defaults.
type TimelineRequest struct {
	ProjectID string
	// Month is the first visible month as YYYY-MM.
	Month string
	// View is "week" or "month".
	View string
	Span int
}

func (r TimelineRequest) args(format string) map[string]any {
	args := map[string]any{}
	if r.ProjectID != "" {
		args["project_id"] = r.ProjectID
	}
	if r.Month != "" {
		args["month"] = r.Month
	}
	if r.View != "" {
		args["view"] = r.View
	}
	if r.Span > 0 {
		args["span"] = r.Span
	}
	if format != "" {
		args["format"] = format
	}
	return args
}
