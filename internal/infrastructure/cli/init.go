package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/frops/planner/internal/infrastructure/config"
	"github.com/frops/planner/pkg/storage"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a planner workspace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := opts.workspaceRoot()
			if err != nil {
				return err
			}

			configPath := filepath.Join(root, storage.Dir, storage.ConfigFile)
			if _, err := os.Stat(configPath); err == nil {
				return NewCLIError("workspace already initialized", fmt.Sprintf("Edit %s to change settings", configPath), nil)
			}

			cfg := config.Default()
			if backend != "" {
				cfg.Storage.Backend = backend
			}
			if err := cfg.Validate(); err != nil {
				return MapError(err)
			}
			if err := config.Save(root, cfg); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Initialized planner workspace in %s (storage: %s)\n",
				filepath.Join(root, storage.Dir), cfg.Storage.Backend)
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "Storage backend: file, sqlite, gorm or memory")
	return cmd
}
