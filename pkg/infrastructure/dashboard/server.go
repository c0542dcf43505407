// Package dashboard serves the server-rendered planner UI: the project
// list, and per project a task form, task list and timeline.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/frops/planner/pkg/domain/calendar"
	"github.com/frops/planner/pkg/domain/navigation"
	"github.com/frops/planner/pkg/domain/planning"
	"github.com/frops/planner/pkg/domain/timeline"
	"github.com/frops/planner/pkg/infrastructure/api"
)

//go:embed templates/*
var templatesFS embed.FS

// Options configures the dashboard.
type Options struct {
	Addr string
	// View supplies the default granularity, span and week start.
	View navigation.Options
	// Events, when set, is mounted at /events for live refresh.
	Events http.Handler
	Logger *slog.Logger
}

// Server is the dashboard HTTP server.
type Server struct {
	addr   string
	svc    api.Services
	view   navigation.Options
	api    http.Handler
	events http.Handler
	logger *slog.Logger
	tmpl   *template.Template
}

// NewServer creates a dashboard over svc. The JSON API is served under
// /api/ from the same process.
func NewServer(svc api.Services, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	funcMap := template.FuncMap{
		"px":         px,
		"formatDate": formatDate,
		"formatTime": formatTime,
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Server{
		addr:   opts.Addr,
		svc:    svc,
		view:   opts.View,
		api:    api.NewServer(svc, opts.View, opts.Logger).Handler(),
		events: opts.Events,
		logger: opts.Logger.With("component", "dashboard"),
		tmpl:   tmpl,
	}, nil
}

// Handler returns the dashboard routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /projects", s.handleCreateProject)
	mux.HandleFunc("GET /projects/{id}", s.handleProject)
	mux.HandleFunc("POST /projects/{id}/tasks", s.handleCreateTask)
	mux.HandleFunc("POST /tasks/{id}/delete", s.handleDeleteTask)
	mux.Handle("/api/", s.api)
	if s.events != nil {
		mux.Handle("GET /events", s.events)
	}

	return mux
}

// shutdownTimeout bounds the graceful shutdown in Serve.
const shutdownTimeout = 5 * time.Second

// Run listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then closes open event
// streams and shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	// Request contexts derive from base so shutdown can end /events streams.
	base, cancel := context.WithCancel(context.Background())
	defer cancel()

	// No write timeout: /events streams stay open.
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return base },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard server starting", "addr", ln.Addr().String())
		errCh <- server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("dashboard server stopping")
	cancel()
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// IndexData is rendered by index.html.
type IndexData struct {
	Title    string
	Projects []planning.Project
	Name     string
	Error    string
}

// ProjectData is rendered by project.html.
type ProjectData struct {
	Title   string
	Project *planning.Project
	Tasks   []planning.Task
	View    *timeline.View
	Nav     NavLinks
	Form    planning.TaskInput
	// TaskAction is the task form target, keeping the current view.
	TaskAction string
	Error      string
	Live       bool
}

// NavLinks are the hrefs of the timeline controls. Current is the raw
// query of the page itself.
type NavLinks struct {
	Current     string
	Previous    string
	Next        string
	Today       string
	Toggle      string
	Granularity timeline.Granularity
	Label       string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderIndex(w, r, http.StatusOK, IndexData{})
}

func (s *Server) renderIndex(w http.ResponseWriter, r *http.Request, status int, data IndexData) {
	data.Title = "Project Planner"
	projects, err := s.svc.Projects.ListProjects(r.Context())
	if err != nil {
		s.logger.Error("failed to list projects", "error", err)
		data.Error = "Could not load projects."
		status = http.StatusInternalServerError
	}
	data.Projects = projects
	s.render(w, status, "index.html", data)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	project, err := s.svc.Projects.CreateProject(r.Context(), name)
	if err != nil {
		s.renderIndex(w, r, api.StatusFor(err), IndexData{Name: name, Error: err.Error()})
		return
	}
	http.Redirect(w, r, "/projects/"+url.PathEscape(project.ID), http.StatusSeeOther)
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	s.renderProject(w, r, http.StatusOK, planning.TaskInput{}, "")
}

func (s *Server) renderProject(w http.ResponseWriter, r *http.Request, status int, form planning.TaskInput, formErr string) {
	ctx := r.Context()
	id := r.PathValue("id")

	project, err := s.svc.Projects.GetProject(ctx, id)
	if err != nil {
		s.renderError(w, api.StatusFor(err), err)
		return
	}

	defaults := s.view
	defaults.Today = s.svc.Timeline.Today()
	nav, err := navigation.FromQuery(r.URL.Query(), defaults)
	if err != nil {
		s.renderError(w, http.StatusBadRequest, err)
		return
	}

	tasks, err := s.svc.Tasks.ListTasks(ctx, project.ID)
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}

	view, err := s.svc.Timeline.Build(ctx, project.ID, nav.ViewConfig())
	if err != nil {
		s.renderError(w, api.StatusFor(err), err)
		return
	}

	links, err := navLinks(nav, defaults.Today)
	if err != nil {
		s.renderError(w, http.StatusInternalServerError, err)
		return
	}

	s.render(w, status, "project.html", ProjectData{
		Title:   project.Name,
		Project: project,
		Tasks:   tasks,
		View:    view,
		Nav:     links,
		Form:    form,
		Error:   formErr,
		Live:    s.events != nil,

		TaskAction: "/projects/" + url.PathEscape(project.ID) + "/tasks?" + links.Current,
	})
}

func navLinks(nav *navigation.Navigator, today calendar.Date) (NavLinks, error) {
	links := NavLinks{
		Current:     nav.Query().Encode(),
		Granularity: nav.Granularity(),
		Label:       windowLabel(nav),
	}

	moves := []struct {
		dst  *string
		move func(*navigation.Navigator) error
	}{
		{&links.Previous, func(n *navigation.Navigator) error { n.Previous(); return nil }},
		{&links.Next, func(n *navigation.Navigator) error { n.Next(); return nil }},
		{&links.Today, func(n *navigation.Navigator) error { n.Today(today); return nil }},
	}
	for _, m := range moves {
		q, err := nav.QueryFor(m.move)
		if err != nil {
			return links, err
		}
		*m.dst = "?" + q.Encode()
	}

	// A disabled granularity leaves the toggle link empty.
	if q, err := nav.QueryFor((*navigation.Navigator).Toggle); err == nil {
		links.Toggle = "?" + q.Encode()
	}
	return links, nil
}

func windowLabel(nav *navigation.Navigator) string {
	start, end := nav.Window()
	if nav.Span() == 1 {
		return start.Format("January 2006")
	}
	return start.Format("Jan 2006") + " - " + end.Format("Jan 2006")
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	in := planning.TaskInput{
		Title:     r.FormValue("title"),
		Code:      r.FormValue("code"),
		StartDate: r.FormValue("startDate"),
		EndDate:   r.FormValue("endDate"),
		ProjectID: r.PathValue("id"),
	}

	if _, err := s.svc.Tasks.CreateTask(r.Context(), in); err != nil {
		if api.StatusFor(err) == http.StatusBadRequest {
			s.renderProject(w, r, http.StatusBadRequest, in, err.Error())
			return
		}
		s.renderError(w, api.StatusFor(err), err)
		return
	}
	http.Redirect(w, r, projectURL(in.ProjectID, r.URL.RawQuery), http.StatusSeeOther)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	task, err := s.svc.Tasks.GetTask(ctx, id)
	if err != nil {
		s.renderError(w, api.StatusFor(err), err)
		return
	}
	if err := s.svc.Tasks.DeleteTask(ctx, id); err != nil {
		s.renderError(w, api.StatusFor(err), err)
		return
	}

	if task.ProjectID == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, projectURL(task.ProjectID, r.FormValue("return")), http.StatusSeeOther)
}

func projectURL(id, rawQuery string) string {
	u := "/projects/" + url.PathEscape(id)
	if rawQuery != "" {
		u += "?" + rawQuery
	}
	return u
}

func (s *Server) renderError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		msg = "Something went wrong."
	}
	s.render(w, status, "error.html", map[string]any{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": msg,
	})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("template error", "template", name, "error", err)
	}
}

// Template helper functions

func px(f float64) string {
	return fmt.Sprintf("%.2fpx", f)
}

func formatDate(d calendar.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.Format("Jan 2, 2006")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}
