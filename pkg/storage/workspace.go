package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir is the workspace directory created by `planner init`.
const Dir = ".planner"

const (
	ConfigFile     = "config.yaml"
	ProjectsFile   = "projects.json"
	TasksFile      = "tasks.json"
	EventsFile     = "events.jsonl"
	DeadLetterFile = "deadletters.jsonl"
	DatabaseFile   = "planner.db"
)

// Workspace locates files inside a project's .planner directory.
type Workspace struct {
	root string
}

func NewWorkspace(root string) *Workspace {
	return &Workspace{root: root}
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// Dir returns the absolute .planner directory.
func (w *Workspace) Dir() string {
	return filepath.Join(w.root, Dir)
}

// ResolvePath ensures the path is a direct child of the .planner directory.
func (w *Workspace) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := filepath.Clean(w.Dir())
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))

	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (w *Workspace) Initialize() error {
	// G301: Use 0700 for directories
	if err := os.MkdirAll(w.Dir(), 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", Dir, err)
	}
	return nil
}

func (w *Workspace) IsInitialized() bool {
	info, err := os.Stat(w.Dir())
	return err == nil && info.IsDir()
}
