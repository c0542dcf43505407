package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/frops/planner/internal/infrastructure/wiring"
	"github.com/frops/planner/pkg/application"
	"github.com/frops/planner/pkg/domain/navigation"
	"github.com/frops/planner/pkg/domain/planning"
	"github.com/frops/planner/pkg/domain/timeline"
	"github.com/frops/planner/pkg/render"
)

type Server struct {
	mcpServer   *mcp.Server
	projectSvc  *application.ProjectService
	taskSvc     *application.TaskService
	timelineSvc *application.TimelineService
	view        navigation.Options
}

var (
	Version     = "dev"
	BuildCommit = "unknown"
	BuildDate   = "unknown"
)

// mcpErr returns a user-friendly error for MCP clients.
// Internal details are omitted; only the friendly message is returned.
func mcpErr(friendly string) error {
	return fmt.Errorf("%s", friendly)
}

// toolErr passes validation and lookup failures through, since they tell
// the caller what to fix, and replaces anything else with friendly.
func toolErr(err error, friendly string) error {
	switch {
	case errors.Is(err, planning.ErrInvalidInput),
		errors.Is(err, planning.ErrProjectNotFound),
		errors.Is(err, planning.ErrTaskNotFound),
		errors.Is(err, timeline.ErrInvalidRange),
		errors.Is(err, timeline.ErrUnknownGranularity):
		return mcpErr(err.Error())
	default:
		return mcpErr(friendly)
	}
}

// NewServer opens the workspace at root and exposes it over MCP.
func NewServer(root string) (*Server, error) {
	services, err := wiring.BuildAppServices(root)
	if err != nil {
		return nil, fmt.Errorf("build services: %w", err)
	}
	if services == nil {
		return nil, fmt.Errorf("services initialization returned nil")
	}
	return NewServerWithServices(services), nil
}

// NewServerWithServices exposes already wired services over MCP.
func NewServerWithServices(services *wiring.AppServices) *Server {
	info := mcp.ServerInfo{
		Name:    "planner",
		Version: Version,
	}

	view := navigation.Options{}
	if services.Workspace != nil && services.Workspace.Config != nil {
		view = services.Workspace.Config.NavigationOptions()
	}

	s := &Server{
		mcpServer: mcp.NewServer(info,
			mcp.WithTitle("Planner MCP Server"),
			mcp.WithDescription("Planner exposes projects, tasks and the computed timeline layout to MCP clients."),
			mcp.WithBuildInfo(BuildCommit, BuildDate),
			mcp.WithInstructions("Use tools to list and create projects and tasks, and to read the timeline for a month window."),
		),
		projectSvc:  services.Projects,
		taskSvc:     services.Tasks,
		timelineSvc: services.Timeline,
		view:        view,
	}

	s.registerTools()
	s.registerResources()
	return s
}

type CreateProjectArgs struct {
	Name string `json:"name" jsonschema:"description=The name of the project"`
}

type ListTasksArgs struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"description=Only list tasks of this project. Empty lists every task"`
}

type CreateTaskArgs struct {
	Title     string `json:"title" jsonschema:"description=Task title"`
	Code      string `json:"code" jsonschema:"description=Task code in PREFIX-NUMBER form. The prefix selects the team color"`
	StartDate string `json:"start_date" jsonschema:"description=Start date as YYYY-MM-DD"`
	EndDate   string `json:"end_date" jsonschema:"description=End date as YYYY-MM-DD. Must not be before start_date"`
	ProjectID string `json:"project_id,omitempty" jsonschema:"description=Project the task belongs to"`
}

type DeleteTaskArgs struct {
	ID string `json:"id" jsonschema:"description=ID of the task to delete"`
}

type TimelineArgs struct {
	ProjectID string  `json:"project_id,omitempty" jsonschema:"description=Only place tasks of this project"`
	Month     string  `json:"month,omitempty" jsonschema:"description=First visible month as YYYY-MM. Defaults to the current month"`
	View      string  `json:"view,omitempty" jsonschema:"description=Column granularity: week or month"`
	Span      FlexInt `json:"span,omitempty" jsonschema:"description=Number of visible months"`
	Format    string  `json:"format,omitempty" jsonschema:"description=json (default) or svg"`
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("planner_list_projects").
		Description("List all projects in creation order").
		Handler(s.handleListProjects)

	s.mcpServer.Tool("planner_create_project").
		Description("Create a new project").
		Handler(s.handleCreateProject)

	s.mcpServer.Tool("planner_list_tasks").
		Description("List tasks, optionally for a single project").
		Handler(s.handleListTasks)

	s.mcpServer.Tool("planner_create_task").
		Description("Create a task with a title, code and inclusive date range").
		Handler(s.handleCreateTask)

	s.mcpServer.Tool("planner_delete_task").
		Description("Delete a task by ID").
		Handler(s.handleDeleteTask)

	s.mcpServer.Tool("planner_timeline").
		Description("Compute the timeline for a month window: columns, placed task bars and the today marker").
		Handler(s.handleTimeline)
}

func (s *Server) handleListProjects(ctx context.Context, args struct{}) (any, error) {
	projects, err := s.projectSvc.ListProjects(ctx)
	if err != nil {
		return nil, mcpErr("Failed to list projects. Check that the workspace is initialized.")
	}
	return projects, nil
}

func (s *Server) handleCreateProject(ctx context.Context, args CreateProjectArgs) (any, error) {
	project, err := s.projectSvc.CreateProject(ctx, args.Name)
	if err != nil {
		return nil, toolErr(err, "Failed to create project.")
	}
	return project, nil
}

func (s *Server) handleListTasks(ctx context.Context, args ListTasksArgs) (any, error) {
	if args.ProjectID != "" {
		if _, err := s.projectSvc.GetProject(ctx, args.ProjectID); err != nil {
			return nil, toolErr(err, "Failed to load project.")
		}
	}
	tasks, err := s.taskSvc.ListTasks(ctx, args.ProjectID)
	if err != nil {
		return nil, mcpErr("Failed to list tasks.")
	}
	return tasks, nil
}

func (s *Server) handleCreateTask(ctx context.Context, args CreateTaskArgs) (any, error) {
	task, err := s.taskSvc.CreateTask(ctx, planning.TaskInput{
		Title:     args.Title,
		Code:      args.Code,
		StartDate: args.StartDate,
		EndDate:   args.EndDate,
		ProjectID: args.ProjectID,
	})
	if err != nil {
		return nil, toolErr(err, "Failed to create task.")
	}
	return task, nil
}

func (s *Server) handleDeleteTask(ctx context.Context, args DeleteTaskArgs) (string, error) {
	if err := s.taskSvc.DeleteTask(ctx, args.ID); err != nil {
		return "", toolErr(err, "Failed to delete task.")
	}
	return fmt.Sprintf("Task %s deleted", args.ID), nil
}

func (s *Server) handleTimeline(ctx context.Context, args TimelineArgs) (any, error) {
	q := url.Values{}
	if args.Month != "" {
		q.Set("month", args.Month)
	}
	if args.View != "" {
		q.Set("view", args.View)
	}
	if args.Span > 0 {
		q.Set("span", strconv.Itoa(int(args.Span)))
	}

	defaults := s.view
	defaults.Today = s.timelineSvc.Today()
	nav, err := navigation.FromQuery(q, defaults)
	if err != nil {
		return nil, mcpErr(err.Error())
	}

	view, err := s.timelineSvc.Build(ctx, args.ProjectID, nav.ViewConfig())
	if err != nil {
		return nil, toolErr(err, "Failed to build timeline.")
	}

	switch args.Format {
	case "", "json":
		return view, nil
	case "svg":
		return render.SVG(view, render.DefaultSVGStyle()), nil
	default:
		return nil, mcpErr(fmt.Sprintf("Unknown format %q. Use json or svg.", args.Format))
	}
}

func (s *Server) Start() error {
	return s.StartStdio()
}

func (s *Server) StartStdio() error {
	return s.ServeStdio(context.Background())
}

func (s *Server) StartHTTP(addr string) error {
	return s.ServeHTTP(context.Background(), addr)
}

func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr, mcp.WithDefaultCORS())
}
