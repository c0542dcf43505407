package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frops/planner/pkg/domain/events"
	"github.com/frops/planner/pkg/domain/planning"
)

type ProjectService struct {
	repo  planning.ProjectRepository
	audit *AuditService
	now   func() time.Time
}

func NewProjectService(repo planning.ProjectRepository, audit *AuditService) *ProjectService {
	return &ProjectService{repo: repo, audit: audit, now: time.Now}
}

func (s *ProjectService) ListProjects(ctx context.Context) ([]planning.Project, error) {
	return s.repo.ListProjects(ctx)
}

func (s *ProjectService) GetProject(ctx context.Context, id string) (*planning.Project, error) {
	return s.repo.GetProject(ctx, id)
}

// CreateProject stores a project with a generated ID.
func (s *ProjectService) CreateProject(ctx context.Context, name string) (*planning.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &planning.ValidationError{Field: "name", Reason: "is required"}
	}

	project := &planning.Project{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateProject(ctx, project); err != nil {
		return nil, err
	}

	if err := s.audit.Record(events.New(events.TypeProjectCreated, events.AggregateProject, project.ID, map[string]any{
		"name": project.Name,
	})); err != nil {
		return nil, err
	}
	return project, nil
}
