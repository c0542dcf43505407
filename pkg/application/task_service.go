package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frops/planner/pkg/domain/events"
	"github.com/frops/planner/pkg/domain/planning"
)

type TaskService struct {
	tasks    planning.TaskRepository
	projects planning.ProjectRepository
	audit    *AuditService
	now      func() time.Time
}

func NewTaskService(tasks planning.TaskRepository, projects planning.ProjectRepository, audit *AuditService) *TaskService {
	return &TaskService{tasks: tasks, projects: projects, audit: audit, now: time.Now}
}

// ListTasks returns tasks in creation order. An empty projectID lists all.
func (s *TaskService) ListTasks(ctx context.Context, projectID string) ([]planning.Task, error) {
	return s.tasks.ListTasks(ctx, planning.TaskFilter{ProjectID: projectID})
}

// GetTask returns a single task.
func (s *TaskService) GetTask(ctx context.Context, id string) (*planning.Task, error) {
	return s.tasks.GetTask(ctx, id)
}

// CreateTask validates the input, checks that the project exists and stores
// the task.
func (s *TaskService) CreateTask(ctx context.Context, in planning.TaskInput) (*planning.Task, error) {
	task, err := s.prepare(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	if err := s.audit.Record(taskCreatedEvent(task)); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return &planning.ValidationError{Field: "id", Reason: "is required"}
	}
	task, err := s.tasks.GetTask(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		return err
	}
	return s.audit.Record(events.New(events.TypeTaskDeleted, events.AggregateTask, id, map[string]any{
		"code":       task.Code,
		"project_id": task.ProjectID,
	}))
}

// ValidatePayload checks a single JSON task payload against the task schema
// and the domain rules without storing anything.
func (s *TaskService) ValidatePayload(payload []byte) (planning.TaskInput, error) {
	var in planning.TaskInput
	if err := validateSchema(taskSchemaLoader, payload); err != nil {
		return in, err
	}
	if err := json.Unmarshal(payload, &in); err != nil {
		return in, fmt.Errorf("decode task: %w", err)
	}
	if _, _, err := in.Validate(); err != nil {
		return in, err
	}
	return in, nil
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Created []planning.Task `json:"created"`
}

// ImportTasks creates every task in a JSON array. The whole payload is
// validated first; nothing is stored if any entry is invalid. projectID, when
// set, applies to entries that do not name a project.
func (s *TaskService) ImportTasks(ctx context.Context, projectID string, payload []byte) (*ImportResult, error) {
	if err := validateSchema(taskListSchemaLoader, payload); err != nil {
		return nil, err
	}

	var inputs []planning.TaskInput
	if err := json.Unmarshal(payload, &inputs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	prepared := make([]*planning.Task, 0, len(inputs))
	for i, in := range inputs {
		if in.ProjectID == "" {
			in.ProjectID = projectID
		}
		task, err := s.prepare(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		prepared = append(prepared, task)
	}

	result := &ImportResult{Created: make([]planning.Task, 0, len(prepared))}
	for _, task := range prepared {
		if err := s.tasks.CreateTask(ctx, task); err != nil {
			return result, fmt.Errorf("import %s: %w", task.Code, err)
		}
		if err := s.audit.Record(taskCreatedEvent(task)); err != nil {
			return result, err
		}
		result.Created = append(result.Created, *task)
	}
	return result, nil
}

func (s *TaskService) prepare(ctx context.Context, in planning.TaskInput) (*planning.Task, error) {
	start, end, err := in.Validate()
	if err != nil {
		return nil, err
	}
	if in.ProjectID != "" {
		if _, err := s.projects.GetProject(ctx, in.ProjectID); err != nil {
			return nil, err
		}
	}
	code, _ := planning.NewTaskCode(in.Code)
	return &planning.Task{
		ID:        uuid.New().String(),
		Title:     strings.TrimSpace(in.Title),
		Code:      code.String(),
		StartDate: start,
		EndDate:   end,
		ProjectID: in.ProjectID,
		CreatedAt: s.now().UTC(),
	}, nil
}

func taskCreatedEvent(t *planning.Task) *events.Event {
	return events.New(events.TypeTaskCreated, events.AggregateTask, t.ID, map[string]any{
		"code":       t.Code,
		"title":      t.Title,
		"project_id": t.ProjectID,
		"start_date": t.StartDate.String(),
		"end_date":   t.EndDate.String(),
	})
}
