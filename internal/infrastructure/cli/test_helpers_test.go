package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/frops/planner/internal/infrastructure/config"
	"github.com/frops/planner/pkg/domain/planning"
)

// runCLI executes a fresh command tree against the workspace dir.
func runCLI(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvStorage, "")
	t.Setenv(config.EnvAddr, "")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--workspace", dir, "--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, dir, "", args...)
	if err != nil {
		t.Fatalf("planner %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func createProject(t *testing.T, dir, name string) planning.Project {
	t.Helper()
	mustRun(t, dir, "project", "create", name)

	var projects []planning.Project
	if err := json.Unmarshal([]byte(mustRun(t, dir, "project", "list", "--json")), &projects); err != nil {
		t.Fatalf("decode projects: %v", err)
	}
	for _, p := range projects {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("project %q not listed", name)
	return planning.Project{}
}

func listTasks(t *testing.T, dir string, args ...string) []planning.Task {
	t.Helper()
	var tasks []planning.Task
	out := mustRun(t, dir, append([]string{"task", "list", "--json"}, args...)...)
	if err := json.Unmarshal([]byte(out), &tasks); err != nil {
		t.Fatalf("decode tasks: %v\n%s", err, out)
	}
	return tasks
}
