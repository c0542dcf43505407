package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/frops/planner/internal/infrastructure/config"
	"github.com/frops/planner/pkg/domain/events"
	"github.com/frops/planner/pkg/domain/timeline"
	"github.com/frops/planner/pkg/storage"
)

func TestInit(t *testing.T) {
	dir := t.TempDir()

	out := mustRun(t, dir, "init", "--backend", "sqlite")
	if !strings.Contains(out, "storage: sqlite") {
		t.Errorf("unexpected output: %s", out)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("backend = %q", cfg.Storage.Backend)
	}

	_, err = runCLI(t, dir, "", "init")
	var cliErr *CLIError
	if !errors.As(err, &cliErr) || cliErr.Message != "workspace already initialized" {
		t.Errorf("expected already initialized error, got %v", err)
	}
}

func TestInit_RejectsUnknownBackend(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "", "init", "--backend", "csv")
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected invalid config, got %v", err)
	}
}

func TestWorkspaceFlag_MissingDir(t *testing.T) {
	_, err := runCLI(t, filepath.Join(t.TempDir(), "missing"), "", "project", "list")
	if err == nil || !strings.Contains(err.Error(), "workspace path") {
		t.Errorf("expected workspace path error, got %v", err)
	}
}

func TestProjectCommands(t *testing.T) {
	dir := t.TempDir()

	if out := mustRun(t, dir, "project", "list"); !strings.Contains(out, "No projects yet") {
		t.Errorf("expected empty message, got %s", out)
	}

	p := createProject(t, dir, "Website Launch")

	out := mustRun(t, dir, "project", "list")
	if !strings.Contains(out, "Website Launch") || !strings.Contains(out, p.ID) {
		t.Errorf("project list missing project: %s", out)
	}

	mustRun(t, dir, "task", "add", "--title", "Design", "--code", "FOO-1",
		"--start", "2024-03-10", "--end", "2024-03-15", "--project", p.ID)

	out = mustRun(t, dir, "project", "show", p.ID)
	for _, want := range []string{"Website Launch", "Tasks: 1", "FOO-1", "2024-03-10"} {
		if !strings.Contains(out, want) {
			t.Errorf("project show missing %q: %s", want, out)
		}
	}

	_, err := runCLI(t, dir, "", "project", "show", "missing")
	var cliErr *CLIError
	if !errors.As(err, &cliErr) || !strings.Contains(cliErr.Hint, "planner project list") {
		t.Errorf("expected mapped not found error, got %v", err)
	}

	_, err = runCLI(t, dir, "", "project", "create", " ")
	if !errors.As(err, &cliErr) || cliErr.Hint == "" {
		t.Errorf("expected validation error with hint, got %v", err)
	}
}

func TestTaskCommands(t *testing.T) {
	dir := t.TempDir()
	p := createProject(t, dir, "Launch")

	out := mustRun(t, dir, "task", "add", "--title", "Design", "--code", "FOO-1",
		"--start", "2024-03-10", "--end", "2024-03-15", "--project", p.ID)
	if !strings.Contains(out, "Created task FOO-1") {
		t.Errorf("unexpected output: %s", out)
	}

	tests := []struct {
		name string
		args []string
		hint string
	}{
		{"end before start", []string{"--title", "X", "--code", "FOO-2", "--start", "2024-03-15", "--end", "2024-03-10"}, "YYYY-MM-DD"},
		{"bad code", []string{"--title", "X", "--code", "foo", "--start", "2024-03-10", "--end", "2024-03-15"}, "TEAM-123"},
		{"missing title", []string{"--code", "FOO-3", "--start", "2024-03-10", "--end", "2024-03-15"}, "title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, dir, "", append([]string{"task", "add"}, tt.args...)...)
			var cliErr *CLIError
			if !errors.As(err, &cliErr) || !strings.Contains(cliErr.Hint, tt.hint) {
				t.Errorf("expected hint containing %q, got %v", tt.hint, err)
			}
		})
	}

	tasks := listTasks(t, dir, "--project", p.ID)
	if len(tasks) != 1 || tasks[0].Code != "FOO-1" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}

	if out := mustRun(t, dir, "task", "list"); !strings.Contains(out, "Design") {
		t.Errorf("task table missing task: %s", out)
	}

	mustRun(t, dir, "task", "rm", tasks[0].ID)
	if got := listTasks(t, dir); len(got) != 0 {
		t.Errorf("expected no tasks after rm, got %d", len(got))
	}
	if _, err := runCLI(t, dir, "", "task", "rm", tasks[0].ID); err == nil {
		t.Error("expected error removing a missing task")
	}
}

func TestTaskImport(t *testing.T) {
	dir := t.TempDir()
	p := createProject(t, dir, "Launch")

	payload := `[
		{"title": "Design", "code": "FOO-1", "startDate": "2024-03-10", "endDate": "2024-03-15"},
		{"title": "Build", "code": "BAR-2", "startDate": "2024-03-12", "endDate": "2024-03-20"}
	]`
	file := filepath.Join(t.TempDir(), "tasks.json")
	if err := os.WriteFile(file, []byte(payload), 0600); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, dir, "task", "import", file, "--project", p.ID)
	if !strings.Contains(out, "Imported 2 task(s)") {
		t.Errorf("unexpected output: %s", out)
	}
	if got := listTasks(t, dir, "--project", p.ID); len(got) != 2 {
		t.Errorf("expected 2 imported tasks, got %d", len(got))
	}

	bad := `[{"title": "Ok", "code": "FOO-3", "startDate": "2024-03-10", "endDate": "2024-03-15"},
		{"title": "Bad", "code": "FOO-4", "startDate": "2024-03-15", "endDate": "2024-03-10"}]`
	if _, err := runCLI(t, dir, bad, "task", "import", "-"); err == nil {
		t.Error("expected invalid import to fail")
	}
	if got := listTasks(t, dir); len(got) != 2 {
		t.Errorf("failed import must not store anything, got %d tasks", len(got))
	}

	if _, err := runCLI(t, dir, "", "task", "import", filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestTimelineCommand(t *testing.T) {
	dir := t.TempDir()
	p := createProject(t, dir, "Launch")
	mustRun(t, dir, "task", "add", "--title", "Design", "--code", "FOO-1",
		"--start", "2024-03-10", "--end", "2024-03-15", "--project", p.ID)

	out := mustRun(t, dir, "timeline", "--month", "2024-03", "--project", p.ID)
	for _, want := range []string{"March 2024 (month view)", "FOO-1", "█"} {
		if !strings.Contains(out, want) {
			t.Errorf("timeline missing %q:\n%s", want, out)
		}
	}

	out = mustRun(t, dir, "timeline", "--month", "2024-03", "--view", "week", "--json")
	var view timeline.View
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if view.Config.Granularity != timeline.Week || len(view.Tasks) != 1 {
		t.Errorf("unexpected view: %+v, %d tasks", view.Config, len(view.Tasks))
	}

	svgPath := filepath.Join(t.TempDir(), "timeline.svg")
	out = mustRun(t, dir, "timeline", "--month", "2024-02", "--span", "2", "--svg", svgPath)
	if !strings.Contains(out, "Feb 2024 - Mar 2024") {
		t.Errorf("unexpected svg output message: %s", out)
	}
	data, err := os.ReadFile(svgPath)
	if err != nil || !strings.Contains(string(data), "<svg") {
		t.Errorf("svg not written: %v", err)
	}

	for _, args := range [][]string{
		{"--month", "2024-13"},
		{"--view", "day"},
		{"--span", "-1"},
	} {
		if _, err := runCLI(t, dir, "", append([]string{"timeline"}, args...)...); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}

	if _, err := runCLI(t, dir, "", "timeline", "--project", "missing"); err == nil {
		t.Error("expected error for unknown project")
	}
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	p := createProject(t, dir, "Launch")
	mustRun(t, dir, "task", "add", "--title", "Design", "--code", "FOO-1",
		"--start", "2024-03-10", "--end", "2024-03-15", "--project", p.ID)

	out := mustRun(t, dir, "history")
	if !strings.Contains(out, events.TypeProjectCreated) || !strings.Contains(out, events.TypeTaskCreated) {
		t.Errorf("history missing events: %s", out)
	}

	var evts []events.Event
	if err := json.Unmarshal([]byte(mustRun(t, dir, "history", "--json", "--type", events.TypeTaskCreated)), &evts); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(evts) != 1 || evts[0].Data["code"] != "FOO-1" {
		t.Errorf("unexpected filtered history: %+v", evts)
	}

	if out := mustRun(t, dir, "history", "--verify"); !strings.Contains(out, "integrity verified") {
		t.Errorf("unexpected verify output: %s", out)
	}

	logPath := filepath.Join(dir, storage.Dir, storage.EventsFile)
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	tampered := strings.Replace(string(data), "FOO-1", "FOO-9", 1)
	if err := os.WriteFile(logPath, []byte(tampered), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, dir, "", "history", "--verify"); err == nil {
		t.Error("expected tampered log to fail verification")
	}
}

func TestMCPCommand_UnknownTransport(t *testing.T) {
	_, err := runCLI(t, t.TempDir(), "", "mcp", "--transport", "ws")
	var cliErr *CLIError
	if !errors.As(err, &cliErr) || !strings.Contains(cliErr.Message, "unsupported transport") {
		t.Errorf("expected unsupported transport error, got %v", err)
	}
}

func TestOpenAPICommand(t *testing.T) {
	out := mustRun(t, t.TempDir(), "openapi")
	if !strings.Contains(out, "/tools/planner_timeline") {
		t.Errorf("openapi output missing timeline tool: %.200s", out)
	}
}

func TestPrintError(t *testing.T) {
	var b strings.Builder
	printError(&b, NewCLIError("task not found", "Run 'planner task list'", nil))
	if b.String() != "Error: task not found\nHint: Run 'planner task list'\n" {
		t.Errorf("unexpected output: %q", b.String())
	}

	b.Reset()
	printError(&b, errors.New("boom"))
	if b.String() != "Error: boom\n" {
		t.Errorf("unexpected output: %q", b.String())
	}
}

func TestRootHelp(t *testing.T) {
	out := mustRun(t, t.TempDir(), "--help")
	for _, want := range []string{"init", "project", "task", "timeline", "history", "serve", "mcp", "--workspace"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestWebhooksCommand_NoEndpoints(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "init")

	if out := mustRun(t, dir, "webhooks", "list"); !strings.Contains(out, "No webhooks configured.") {
		t.Errorf("unexpected list output: %s", out)
	}

	_, err := runCLI(t, dir, "", "webhooks", "retry")
	var cliErr *CLIError
	if !errors.As(err, &cliErr) || cliErr.Message != "no webhooks configured" {
		t.Errorf("expected no webhooks error, got %v", err)
	}
}
