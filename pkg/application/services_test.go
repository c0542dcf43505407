package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frops/planner/pkg/application"
	"github.com/frops/planner/pkg/domain/calendar"
	"github.com/frops/planner/pkg/domain/events"
	"github.com/frops/planner/pkg/domain/planning"
	"github.com/frops/planner/pkg/domain/timeline"
	"github.com/frops/planner/pkg/storage"
)

type fixture struct {
	repo      *storage.MemoryRepository
	store     *storage.MemoryEventStore
	published []*events.Event
	audit     *application.AuditService
	projects  *application.ProjectService
	tasks     *application.TaskService
	timeline  *application.TimelineService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:  storage.NewMemoryRepository(),
		store: storage.NewMemoryEventStore(),
	}
	pub := storage.NewInMemoryEventPublisher(nil)
	pub.Subscribe(func(e *events.Event) error {
		f.published = append(f.published, e)
		return nil
	})
	f.audit = application.NewAuditService(f.store, pub, "tester", nil)
	f.projects = application.NewProjectService(f.repo, f.audit)
	f.tasks = application.NewTaskService(f.repo, f.repo, f.audit)
	clock := func() time.Time { return time.Date(2024, 3, 13, 15, 0, 0, 0, time.UTC) }
	f.timeline = application.NewTimelineService(f.repo, f.repo, timeline.Options{}, clock)
	return f
}

func (f *fixture) project(t *testing.T, name string) *planning.Project {
	t.Helper()
	p, err := f.projects.CreateProject(context.Background(), name)
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return p
}

func TestProjectService_CreateProject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.projects.CreateProject(ctx, "  Apollo  ")
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if p.ID == "" || p.Name != "Apollo" || p.CreatedAt.IsZero() {
		t.Errorf("unexpected project %+v", p)
	}

	got, err := f.projects.GetProject(ctx, p.ID)
	if err != nil || got.Name != "Apollo" {
		t.Fatalf("GetProject = %+v, %v", got, err)
	}

	if _, err := f.projects.CreateProject(ctx, "   "); !errors.Is(err, planning.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for blank name, got %v", err)
	}

	list, _ := f.projects.ListProjects(ctx)
	if len(list) != 1 {
		t.Errorf("expected 1 project, got %d", len(list))
	}
	if len(f.published) != 1 || f.published[0].Type != events.TypeProjectCreated {
		t.Errorf("expected project.created to be published, got %+v", f.published)
	}
	if f.published[0].Actor != "tester" {
		t.Errorf("actor = %q, want tester", f.published[0].Actor)
	}
}

func TestTaskService_CreateTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Apollo")

	tests := []struct {
		name    string
		input   planning.TaskInput
		wantErr error
	}{
		{"valid", planning.TaskInput{Title: "Build", Code: "FOO-1", StartDate: "2024-03-10", EndDate: "2024-03-15", ProjectID: p.ID}, nil},
		{"single day", planning.TaskInput{Title: "Ship", Code: "BAR-2", StartDate: "2024-03-20", EndDate: "2024-03-20", ProjectID: p.ID}, nil},
		{"bad code", planning.TaskInput{Title: "Build", Code: "foo-1", StartDate: "2024-03-10", EndDate: "2024-03-15", ProjectID: p.ID}, planning.ErrInvalidInput},
		{"end before start", planning.TaskInput{Title: "Build", Code: "FOO-3", StartDate: "2024-03-10", EndDate: "2024-03-01", ProjectID: p.ID}, planning.ErrInvalidInput},
		{"missing title", planning.TaskInput{Code: "FOO-4", StartDate: "2024-03-10", EndDate: "2024-03-15", ProjectID: p.ID}, planning.ErrInvalidInput},
		{"unknown project", planning.TaskInput{Title: "Build", Code: "FOO-5", StartDate: "2024-03-10", EndDate: "2024-03-15", ProjectID: "nope"}, planning.ErrProjectNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := f.tasks.CreateTask(ctx, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTask failed: %v", err)
			}
			if task.ID == "" || task.Code != tt.input.Code || task.StartDate.String() != tt.input.StartDate {
				t.Errorf("unexpected task %+v", task)
			}
		})
	}

	list, err := f.tasks.ListTasks(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 stored tasks, got %d", len(list))
	}
}

func TestTaskService_DeleteTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Apollo")

	task, err := f.tasks.CreateTask(ctx, planning.TaskInput{Title: "Build", Code: "FOO-1", StartDate: "2024-03-10", EndDate: "2024-03-15", ProjectID: p.ID})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err := f.tasks.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if err := f.tasks.DeleteTask(ctx, task.ID); !errors.Is(err, planning.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
	if err := f.tasks.DeleteTask(ctx, ""); !errors.Is(err, planning.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty id, got %v", err)
	}

	history, err := f.audit.History(events.Query{AggregateType: events.AggregateTask})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 || history[1].Type != events.TypeTaskDeleted {
		t.Errorf("expected created+deleted history, got %+v", history)
	}
	if v, _ := f.audit.VerifyIntegrity(); len(v) != 0 {
		t.Errorf("unexpected integrity violations: %v", v)
	}
}

func TestTaskService_ValidatePayload(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"valid", `{"title":"Build","code":"FOO-1","startDate":"2024-03-10","endDate":"2024-03-15"}`, false},
		{"missing field", `{"title":"Build","code":"FOO-1","startDate":"2024-03-10"}`, true},
		{"bad code", `{"title":"Build","code":"F1","startDate":"2024-03-10","endDate":"2024-03-15"}`, true},
		{"unknown field", `{"title":"Build","code":"FOO-1","startDate":"2024-03-10","endDate":"2024-03-15","owner":"x"}`, true},
		{"impossible date", `{"title":"Build","code":"FOO-1","startDate":"2024-02-30","endDate":"2024-03-15"}`, true},
		{"not json", `{`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.tasks.ValidatePayload([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidatePayload error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, planning.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestTaskService_ImportTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Apollo")

	payload := []byte(`[
		{"title":"Design","code":"FOO-1","startDate":"2024-03-01","endDate":"2024-03-05"},
		{"title":"Build","code":"ABC-2","startDate":"2024-03-06","endDate":"2024-03-20"}
	]`)
	result, err := f.tasks.ImportTasks(ctx, p.ID, payload)
	if err != nil {
		t.Fatalf("ImportTasks failed: %v", err)
	}
	if len(result.Created) != 2 || result.Created[0].ProjectID != p.ID {
		t.Fatalf("unexpected import result %+v", result)
	}

	bad := []byte(`[
		{"title":"Ok","code":"FOO-3","startDate":"2024-03-01","endDate":"2024-03-05"},
		{"title":"Bad","code":"FOO-4","startDate":"2024-03-09","endDate":"2024-03-05"}
	]`)
	if _, err := f.tasks.ImportTasks(ctx, p.ID, bad); !errors.Is(err, planning.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	list, _ := f.tasks.ListTasks(ctx, p.ID)
	if len(list) != 2 {
		t.Errorf("invalid import should store nothing, have %d tasks", len(list))
	}

	var schemaErr *application.SchemaError
	_, err = f.tasks.ImportTasks(ctx, p.ID, []byte(`{"title":"not a list"}`))
	if !errors.As(err, &schemaErr) || len(schemaErr.Problems) == 0 {
		t.Errorf("expected SchemaError, got %v", err)
	}
}

func TestTimelineService_Build(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.project(t, "Apollo")
	other := f.project(t, "Other")

	mustCreate := func(in planning.TaskInput) {
		if _, err := f.tasks.CreateTask(ctx, in); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}
	mustCreate(planning.TaskInput{Title: "Build", Code: "FOO-1", StartDate: "2024-03-10", EndDate: "2024-03-15", ProjectID: p.ID})
	mustCreate(planning.TaskInput{Title: "Later", Code: "ABC-1", StartDate: "2024-05-01", EndDate: "2024-05-03", ProjectID: p.ID})
	mustCreate(planning.TaskInput{Title: "Other", Code: "BAR-1", StartDate: "2024-03-01", EndDate: "2024-03-03", ProjectID: other.ID})

	cfg := timeline.ViewConfig{
		WindowStart:  calendar.MustParse("2024-03-01"),
		WindowEnd:    calendar.MustParse("2024-03-31"),
		Granularity:  timeline.Month,
		WeekStartsOn: timeline.StartWeekOn(time.Monday),
	}
	view, err := f.timeline.Build(ctx, p.ID, cfg)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(view.Tasks) != 1 || view.Tasks[0].Task.Code != "FOO-1" {
		t.Fatalf("expected only FOO-1 placed, got %+v", view.Tasks)
	}
	if !view.Today.Visible || view.Today.Date.String() != "2024-03-13" {
		t.Errorf("unexpected today marker %+v", view.Today)
	}

	if _, err := f.timeline.Build(ctx, "missing", cfg); !errors.Is(err, planning.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}

	cfg.WindowEnd = calendar.MustParse("2024-02-01")
	if _, err := f.timeline.Build(ctx, p.ID, cfg); !errors.Is(err, timeline.ErrInvalidRange) {
		t.Errorf("expected ErrInvalidRange, got %v", err)
	}
}

type failingStore struct{}

func (failingStore) Append(*events.Event) error        { return errors.New("disk full") }
func (failingStore) LoadAll() ([]*events.Event, error) { return nil, errors.New("disk full") }
func (failingStore) Count() (int, error)               { return 0, errors.New("disk full") }

func TestAuditService_AppendFailure(t *testing.T) {
	audit := application.NewAuditService(failingStore{}, nil, "", nil)
	projects := application.NewProjectService(storage.NewMemoryRepository(), audit)
	if _, err := projects.CreateProject(context.Background(), "Apollo"); err == nil {
		t.Error("expected error when the event store fails")
	}
	if _, err := audit.History(events.Query{}); err == nil {
		t.Error("expected History to surface store errors")
	}
}
