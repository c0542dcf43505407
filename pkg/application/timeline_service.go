package application

import (
	"context"

	"github.com/frops/planner/pkg/domain/calendar"
	"github.com/frops/planner/pkg/domain/planning"
	"github.com/frops/planner/pkg/domain/timeline"
)

// TimelineService composes timeline views from stored tasks.
type TimelineService struct {
	tasks    planning.TaskRepository
	projects planning.ProjectRepository
	opts     timeline.Options
	clock    calendar.Clock
}

// NewTimelineService creates a service. A nil clock uses time.Now.
func NewTimelineService(tasks planning.TaskRepository, projects planning.ProjectRepository, opts timeline.Options, clock calendar.Clock) *TimelineService {
	return &TimelineService{tasks: tasks, projects: projects, opts: opts, clock: clock}
}

// Today returns the current calendar day.
func (s *TimelineService) Today() calendar.Date {
	return calendar.Today(s.clock)
}

// Options returns the layout options views are composed with.
func (s *TimelineService) Options() timeline.Options {
	return s.opts
}

// Build lists the tasks of projectID (all tasks when empty) and composes
// the view for cfg. The layout is recomputed on every call.
func (s *TimelineService) Build(ctx context.Context, projectID string, cfg timeline.ViewConfig) (*timeline.View, error) {
	if projectID != "" {
		if _, err := s.projects.GetProject(ctx, projectID); err != nil {
			return nil, err
		}
	}

	tasks, err := s.tasks.ListTasks(ctx, planning.TaskFilter{ProjectID: projectID})
	if err != nil {
		return nil, err
	}

	return timeline.Compose(cfg, tasks, s.Today(), s.opts)
}
