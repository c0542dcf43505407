package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"

	"github.com/frops/planner/pkg/domain/planning"
)

// FilesystemRepository stores projects and tasks as JSON documents in the
// workspace directory. Reads are retried to ride out concurrent writers
// replacing the files.
type FilesystemRepository struct {
	mu          sync.Mutex
	ws          *Workspace
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		ws: NewWorkspace(root),
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Workspace returns the workspace the repository writes into.
func (r *FilesystemRepository) Workspace() *Workspace {
	return r.ws
}

func (r *FilesystemRepository) ListTasks(ctx context.Context, filter planning.TaskFilter) ([]planning.Task, error) {
	tasks, err := loadDocument[planning.Task](ctx, r, TasksFile)
	if err != nil {
		return nil, err
	}
	result := make([]planning.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Matches(t) {
			result = append(result, t)
		}
	}
	return result, nil
}

func (r *FilesystemRepository) GetTask(ctx context.Context, id string) (*planning.Task, error) {
	tasks, err := loadDocument[planning.Task](ctx, r, TasksFile)
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", planning.ErrTaskNotFound, id)
}

func (r *FilesystemRepository) CreateTask(ctx context.Context, task *planning.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := loadDocument[planning.Task](ctx, r, TasksFile)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		if t.ID == task.ID {
			return fmt.Errorf("task %s already exists", task.ID)
		}
	}
	return r.save(TasksFile, append(tasks, *task))
}

func (r *FilesystemRepository) DeleteTask(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tasks, err := loadDocument[planning.Task](ctx, r, TasksFile)
	if err != nil {
		return err
	}
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return fmt.Errorf("%w: %s", planning.ErrTaskNotFound, id)
	}
	return r.save(TasksFile, kept)
}

func (r *FilesystemRepository) ListProjects(ctx context.Context) ([]planning.Project, error) {
	projects, err := loadDocument[planning.Project](ctx, r, ProjectsFile)
	if err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []planning.Project{}
	}
	return projects, nil
}

func (r *FilesystemRepository) GetProject(ctx context.Context, id string) (*planning.Project, error) {
	projects, err := loadDocument[planning.Project](ctx, r, ProjectsFile)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", planning.ErrProjectNotFound, id)
}

func (r *FilesystemRepository) CreateProject(ctx context.Context, project *planning.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	projects, err := loadDocument[planning.Project](ctx, r, ProjectsFile)
	if err != nil {
		return err
	}
	for _, p := range projects {
		if p.ID == project.ID {
			return fmt.Errorf("project %s already exists", project.ID)
		}
	}
	return r.save(ProjectsFile, append(projects, *project))
}

// Close is a no-op; every operation opens and closes its own files.
func (r *FilesystemRepository) Close() error {
	return nil
}

// loadDocument reads a JSON array document. A missing file is an empty list.
func loadDocument[T any](ctx context.Context, r *FilesystemRepository, filename string) ([]T, error) {
	retryer := retry.New[[]T](r.retryConfig)

	return retryer.Do(ctx, func(ctx context.Context) ([]T, error) {
		path, err := r.ws.ResolvePath(filename)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", filename, err)
		}

		var items []T
		if len(data) == 0 {
			return items, nil
		}
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", filename, err)
		}
		return items, nil
	})
}

// save replaces filename atomically through a temporary file.
func (r *FilesystemRepository) save(filename string, v any) error {
	path, err := r.ws.ResolvePath(filename)
	if err != nil {
		return err
	}
	if err := r.ws.Initialize(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filename, err)
	}

	tmp, err := os.CreateTemp(r.ws.Dir(), filename+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", filename, err)
	}
	// G306: CreateTemp already uses 0600
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", filename, err)
	}
	return nil
}
