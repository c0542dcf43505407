package wiring

import (
	"time"

	"github.com/frops/planner/internal/infrastructure/config"
	"github.com/frops/planner/internal/infrastructure/logging"
	"github.com/frops/planner/pkg/application"
	"github.com/frops/planner/pkg/domain/calendar"
	"github.com/frops/planner/pkg/domain/timeline"
)

// AppServices exposes the application services wired to a workspace.
type AppServices struct {
	Workspace *Workspace
	Audit     *application.AuditService
	Projects  *application.ProjectService
	Tasks     *application.TaskService
	Timeline  *application.TimelineService
}

// BuildAppServices loads the configuration for root and wires every
// service against it.
func BuildAppServices(root string) (*AppServices, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	ws, err := NewWorkspace(root, cfg, logger)
	if err != nil {
		return nil, err
	}
	return NewAppServices(ws, time.Now), nil
}

// NewAppServices wires the services for an opened workspace. clock
// supplies "today" for the timeline.
func NewAppServices(ws *Workspace, clock calendar.Clock) *AppServices {
	audit := application.NewAuditService(ws.Events, ws.Publisher, actor(), ws.Logger)

	opts := ws.Config.TimelineOptions()
	opts.Tracer = timeline.NewSlogTracer(ws.Logger)

	return &AppServices{
		Workspace: ws,
		Audit:     audit,
		Projects:  application.NewProjectService(ws.Repo, audit),
		Tasks:     application.NewTaskService(ws.Repo, ws.Repo, audit),
		Timeline:  application.NewTimelineService(ws.Repo, ws.Repo, opts, clock),
	}
}

// Close releases the workspace.
func (s *AppServices) Close() error {
	return s.Workspace.Close()
}
