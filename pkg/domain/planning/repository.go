package planning

import "context"

// TaskFilter narrows ListTasks. An empty ProjectID matches every task.
type TaskFilter struct {
	ProjectID string
}

// Matches reports whether t passes the filter.
func (f TaskFilter) Matches(t Task) bool {
	return f.ProjectID == "" || t.ProjectID == f.ProjectID
}

// TaskRepository handles persistence of tasks. Implementations return tasks
// in creation order.
type TaskRepository interface {
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	GetTask(ctx context.Context, id string) (*Task, error)
	CreateTask(ctx context.Context, task *Task) error
	DeleteTask(ctx context.Context, id string) error
}

// ProjectRepository handles persistence of projects.
type ProjectRepository interface {
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, id string) (*Project, error)
	CreateProject(ctx context.Context, project *Project) error
}

// Repository is the full persistence surface a storage backend provides.
type Repository interface {
	TaskRepository
	ProjectRepository
	Close() error
}
