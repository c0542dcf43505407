package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/frops/planner/internal/infrastructure/wiring"
)

func loadServices(root string) (*wiring.AppServices, error) {
	services, err := wiring.BuildAppServices(root)
	if err != nil {
		return nil, MapError(fmt.Errorf("failed to build services: %w", err))
	}
	return services, nil
}

// workspaceRoot resolves the --workspace flag, defaulting to the working
// directory.
func (o *rootOptions) workspaceRoot() (string, error) {
	if o.workspace != "" {
		abs, err := filepath.Abs(o.workspace)
		if err != nil {
			return "", fmt.Errorf("invalid workspace path %q: %w", o.workspace, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return "", fmt.Errorf("workspace path %q: %w", abs, err)
		}
		if !info.IsDir() {
			return "", fmt.Errorf("workspace path %q is not a directory", abs)
		}
		return abs, nil
	}
	return os.Getwd()
}

func (o *rootOptions) loadServices() (*wiring.AppServices, error) {
	root, err := o.workspaceRoot()
	if err != nil {
		return nil, err
	}
	return loadServices(root)
}
