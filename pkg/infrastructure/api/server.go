// Package api serves the JSON REST API for projects, tasks and timelines.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/frops/planner/pkg/application"
	"github.com/frops/planner/pkg/domain/navigation"
)

// maxImportSize bounds the body of an import request.
const maxImportSize = 1 << 20 // 1MB

// Services are the application services the API delegates to.
type Services struct {
	Projects *application.ProjectService
	Tasks    *application.TaskService
	Timeline *application.TimelineService
	Audit    *application.AuditService
}

// Server is the REST API.
type Server struct {
	svc    Services
	view   navigation.Options
	logger *slog.Logger
	router *gin.Engine
}

// NewServer creates the API router. view supplies the default granularity,
// span and week start for timeline requests; its Today field is ignored. A
// nil logger uses slog.Default().
func NewServer(svc Services, view navigation.Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	s := &Server{
		svc:    svc,
		view:   view,
		logger: logger.With("component", "api"),
		router: router,
	}

	api := router.Group("/api")
	{
		api.GET("/projects", s.handleListProjects)
		api.POST("/projects", s.handleCreateProject)
		api.GET("/projects/:id", s.handleGetProject)

		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.POST("/tasks/import", s.handleImportTasks)
		api.DELETE("/tasks", s.handleDeleteTaskQuery)
		api.DELETE("/tasks/:id", s.handleDeleteTask)

		api.GET("/timeline", s.handleTimeline)
		api.GET("/timeline.svg", s.handleTimelineSVG)

		api.GET("/events", s.handleEvents)
	}

	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the API on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
