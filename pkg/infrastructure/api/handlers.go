package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/frops/planner/pkg/domain/events"
	"github.com/frops/planner/pkg/domain/navigation"
	"github.com/frops/planner/pkg/domain/timeline"
	"github.com/frops/planner/pkg/render"
)

// Projects

func (s *Server) handleListProjects(c *gin.Context) {
	projects, err := s.svc.Projects.ListProjects(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(projects))
}

type createProjectRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid JSON body")
		return
	}

	project, err := s.svc.Projects.CreateProject(c.Request.Context(), req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (s *Server) handleGetProject(c *gin.Context) {
	project, err := s.svc.Projects.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

// Tasks

func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.svc.Tasks.ListTasks(c.Request.Context(), c.Query("projectId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(tasks))
}

func (s *Server) handleCreateTask(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize))
	if err != nil {
		badRequest(c, "unreadable body")
		return
	}

	in, err := s.svc.Tasks.ValidatePayload(body)
	if err != nil {
		s.fail(c, err)
		return
	}

	task, err := s.svc.Tasks.CreateTask(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleImportTasks(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportSize+1))
	if err != nil {
		badRequest(c, "unreadable body")
		return
	}
	if len(body) > maxImportSize {
		badRequest(c, "payload exceeds maximum size of 1MB")
		return
	}

	result, err := s.svc.Tasks.ImportTasks(c.Request.Context(), c.Query("projectId"), body)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	s.deleteTask(c, c.Param("id"))
}

// handleDeleteTaskQuery accepts the id as a query parameter.
func (s *Server) handleDeleteTaskQuery(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		badRequest(c, "Task ID is required")
		return
	}
	s.deleteTask(c, id)
}

func (s *Server) deleteTask(c *gin.Context, id string) {
	if err := s.svc.Tasks.DeleteTask(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Timeline

func (s *Server) buildView(c *gin.Context) (*timeline.View, bool) {
	defaults := s.view
	defaults.Today = s.svc.Timeline.Today()

	nav, err := navigation.FromQuery(c.Request.URL.Query(), defaults)
	if err != nil {
		badRequest(c, err.Error())
		return nil, false
	}

	view, err := s.svc.Timeline.Build(c.Request.Context(), c.Query("projectId"), nav.ViewConfig())
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return view, true
}

func (s *Server) handleTimeline(c *gin.Context) {
	view, ok := s.buildView(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleTimelineSVG(c *gin.Context) {
	view, ok := s.buildView(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", []byte(render.SVG(view, render.DefaultSVGStyle())))
}

// Events

func (s *Server) handleEvents(c *gin.Context) {
	if s.svc.Audit == nil {
		c.JSON(http.StatusOK, []*events.Event{})
		return
	}

	q := events.Query{
		AggregateType: c.Query("aggregateType"),
		AggregateID:   c.Query("aggregateId"),
		Types:         c.QueryArray("type"),
		Limit:         100,
	}
	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		q.Limit = limit
	}

	history, err := s.svc.Audit.History(q)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(history))
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

