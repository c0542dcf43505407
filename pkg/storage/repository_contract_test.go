package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/frops/planner/pkg/domain/calendar"
	"github.com/frops/planner/pkg/domain/planning"
)

// TestRepositoryContract runs the same behaviour checks against every backend.
func TestRepositoryContract(t *testing.T) {
	backends := []struct {
		name string
		open func(t *testing.T) planning.Repository
	}{
		{"memory", func(t *testing.T) planning.Repository { return NewMemoryRepository() }},
		{"file", func(t *testing.T) planning.Repository { return NewFilesystemRepository(t.TempDir()) }},
		{"sqlite", func(t *testing.T) planning.Repository {
			repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "planner.db"))
			if err != nil {
				t.Fatalf("NewSQLiteRepository: %v", err)
			}
			return repo
		}},
		{"gorm", func(t *testing.T) planning.Repository {
			repo, err := NewGormRepository(filepath.Join(t.TempDir(), "planner-orm.db"))
			if err != nil {
				t.Fatalf("NewGormRepository: %v", err)
			}
			return repo
		}},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			checks := []struct {
				name string
				fn   func(t *testing.T, repo planning.Repository)
			}{
				{"projects", testProjects},
				{"tasks", testTasks},
				{"delete", testDelete},
				{"not found", testNotFound},
				{"duplicate ids", testDuplicateIDs},
			}
			for _, c := range checks {
				t.Run(c.name, func(t *testing.T) {
					repo := b.open(t)
					t.Cleanup(func() { _ = repo.Close() })
					c.fn(t, repo)
				})
			}
		})
	}
}

var created = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

func seedProject(t *testing.T, repo planning.Repository, id, name string) {
	t.Helper()
	if err := repo.CreateProject(context.Background(), &planning.Project{ID: id, Name: name, CreatedAt: created}); err != nil {
		t.Fatalf("CreateProject(%s): %v", id, err)
	}
}

func seedTask(t *testing.T, repo planning.Repository, id, projectID, code string) {
	t.Helper()
	task := &planning.Task{
		ID:        id,
		Title:     "Task " + id,
		Code:      code,
		StartDate: calendar.MustParse("2024-03-10"),
		EndDate:   calendar.MustParse("2024-03-15"),
		ProjectID: projectID,
		CreatedAt: created,
	}
	if err := repo.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("CreateTask(%s): %v", id, err)
	}
}

func testProjects(t *testing.T, repo planning.Repository) {
	ctx := context.Background()

	empty, err := repo.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no projects, got %d", len(empty))
	}

	seedProject(t, repo, "p2", "Zeta")
	seedProject(t, repo, "p1", "Alpha")

	projects, err := repo.ListProjects(ctx)
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 2 || projects[0].ID != "p2" || projects[1].ID != "p1" {
		t.Fatalf("expected projects in insertion order, got %+v", projects)
	}

	p, err := repo.GetProject(ctx, "p1")
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if p.Name != "Alpha" || !p.CreatedAt.Equal(created) {
		t.Errorf("unexpected project %+v", p)
	}
}

func testTasks(t *testing.T, repo planning.Repository) {
	ctx := context.Background()
	seedProject(t, repo, "p1", "Alpha")
	seedProject(t, repo, "p2", "Beta")
	seedTask(t, repo, "t1", "p1", "FOO-1")
	seedTask(t, repo, "t2", "p2", "ABC-2")
	seedTask(t, repo, "t3", "p1", "BAR-3")

	all, err := repo.ListTasks(ctx, planning.TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(all))
	}

	p1, err := repo.ListTasks(ctx, planning.TaskFilter{ProjectID: "p1"})
	if err != nil {
		t.Fatalf("ListTasks(p1): %v", err)
	}
	if len(p1) != 2 || p1[0].ID != "t1" || p1[1].ID != "t3" {
		t.Fatalf("expected t1,t3 for p1, got %+v", p1)
	}

	got, err := repo.GetTask(ctx, "t2")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Code != "ABC-2" || got.ProjectID != "p2" {
		t.Errorf("unexpected task %+v", got)
	}
	if got.StartDate.String() != "2024-03-10" || got.EndDate.String() != "2024-03-15" {
		t.Errorf("dates not preserved: %s..%s", got.StartDate, got.EndDate)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created at = %v, want %v", got.CreatedAt, created)
	}
}

func testDelete(t *testing.T, repo planning.Repository) {
	ctx := context.Background()
	seedProject(t, repo, "p1", "Alpha")
	seedTask(t, repo, "t1", "p1", "FOO-1")
	seedTask(t, repo, "t2", "p1", "FOO-2")

	if err := repo.DeleteTask(ctx, "t1"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	remaining, err := repo.ListTasks(ctx, planning.TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != "t2" {
		t.Fatalf("expected only t2, got %+v", remaining)
	}

	if err := repo.DeleteTask(ctx, "t1"); !errors.Is(err, planning.ErrTaskNotFound) {
		t.Errorf("second delete: expected ErrTaskNotFound, got %v", err)
	}
}

func testNotFound(t *testing.T, repo planning.Repository) {
	ctx := context.Background()
	if _, err := repo.GetTask(ctx, "missing"); !errors.Is(err, planning.ErrTaskNotFound) {
		t.Errorf("GetTask: expected ErrTaskNotFound, got %v", err)
	}
	if _, err := repo.GetProject(ctx, "missing"); !errors.Is(err, planning.ErrProjectNotFound) {
		t.Errorf("GetProject: expected ErrProjectNotFound, got %v", err)
	}
	tasks, err := repo.ListTasks(ctx, planning.TaskFilter{ProjectID: "missing"})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", tasks)
	}
}

func testDuplicateIDs(t *testing.T, repo planning.Repository) {
	ctx := context.Background()
	seedProject(t, repo, "p1", "Alpha")
	if err := repo.CreateProject(ctx, &planning.Project{ID: "p1", Name: "Again", CreatedAt: created}); err == nil {
		t.Error("expected error for duplicate project id")
	}
	seedTask(t, repo, "t1", "p1", "FOO-1")
	if err := repo.CreateTask(ctx, &planning.Task{ID: "t1", Title: "x", Code: "FOO-9", CreatedAt: created}); err == nil {
		t.Error("expected error for duplicate task id")
	}
}
