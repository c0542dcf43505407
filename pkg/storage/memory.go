package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/frops/planner/pkg/domain/planning"
)

// MemoryRepository keeps projects and tasks in process memory. Its lifetime
// is the lifetime of the value; nothing is shared between instances.
type MemoryRepository struct {
	mu       sync.RWMutex
	projects []planning.Project
	tasks    []planning.Task
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) ListTasks(_ context.Context, filter planning.TaskFilter) ([]planning.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]planning.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if filter.Matches(t) {
			result = append(result, t)
		}
	}
	return result, nil
}

func (r *MemoryRepository) GetTask(_ context.Context, id string) (*planning.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tasks {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", planning.ErrTaskNotFound, id)
}

func (r *MemoryRepository) CreateTask(_ context.Context, task *planning.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tasks {
		if t.ID == task.ID {
			return fmt.Errorf("task %s already exists", task.ID)
		}
	}
	r.tasks = append(r.tasks, *task)
	return nil
}

func (r *MemoryRepository) DeleteTask(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, t := range r.tasks {
		if t.ID == id {
			r.tasks = append(r.tasks[:i:i], r.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", planning.ErrTaskNotFound, id)
}

func (r *MemoryRepository) ListProjects(_ context.Context) ([]planning.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]planning.Project, len(r.projects))
	copy(out, r.projects)
	return out, nil
}

func (r *MemoryRepository) GetProject(_ context.Context, id string) (*planning.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", planning.ErrProjectNotFound, id)
}

func (r *MemoryRepository) CreateProject(_ context.Context, project *planning.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.projects {
		if p.ID == project.ID {
			return fmt.Errorf("project %s already exists", project.ID)
		}
	}
	r.projects = append(r.projects, *project)
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}
