package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/frops/planner/pkg/domain/planning"
)

// maxImportSize bounds task import payloads read from files or stdin.
const maxImportSize = 1 << 20

func newTaskCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		newTaskListCmd(opts),
		newTaskAddCmd(opts),
		newTaskRemoveCmd(opts),
		newTaskImportCmd(opts),
	)
	return cmd
}

func newTaskListCmd(opts *rootOptions) *cobra.Command {
	var (
		projectID string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := opts.loadServices()
			if err != nil {
				return err
			}
			defer func() { _ = services.Close() }()

			ctx := cmd.Context()
			if projectID != "" {
				if _, err := services.Projects.GetProject(ctx, projectID); err != nil {
					return MapError(err)
				}
			}
			tasks, err := services.Tasks.ListTasks(ctx, projectID)
			if err != nil {
				return MapError(fmt.Errorf("failed to list tasks: %w", err))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, nonNil(tasks))
			}
			if len(tasks) == 0 {
				_, _ = fmt.Fprintln(out, "No tasks.")
				return nil
			}
			_, _ = fmt.Fprint(out, renderTasks(tasks, opts.noColor))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Only list tasks of this project ID")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newTaskAddCmd(opts *rootOptions) *cobra.Command {
	var in planning.TaskInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Example: `  planner task add --title "Design review" --code FOO-12 \
    --start 2024-03-10 --end 2024-03-15 --project <id>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := opts.loadServices()
			if err != nil {
				return err
			}
			defer func() { _ = services.Close() }()

			task, err := services.Tasks.CreateTask(cmd.Context(), in)
			if err != nil {
				return MapError(fmt.Errorf("failed to create task: %w", err))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created task %s %q (%s to %s) with ID %s\n",
				task.Code, task.Title, task.StartDate, task.EndDate, task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&in.Code, "code", "", "Task code, e.g. FOO-12")
	cmd.Flags().StringVar(&in.StartDate, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.EndDate, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.ProjectID, "project", "", "Project ID")
	return cmd
}

func newTaskRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := opts.loadServices()
			if err != nil {
				return err
			}
			defer func() { _ = services.Close() }()

			if err := services.Tasks.DeleteTask(cmd.Context(), args[0]); err != nil {
				return MapError(fmt.Errorf("failed to delete task: %w", err))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		},
	}
}

func newTaskImportCmd(opts *rootOptions) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Import a JSON array of tasks",
		Long: `Import reads a JSON array of task objects with title, code, startDate,
endDate and optional projectId. The whole file is validated before anything
is stored. Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			services, err := opts.loadServices()
			if err != nil {
				return err
			}
			defer func() { _ = services.Close() }()

			result, err := services.Tasks.ImportTasks(cmd.Context(), projectID, payload)
			if err != nil {
				return MapError(fmt.Errorf("failed to import tasks: %w", err))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d task(s)\n", len(result.Created))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Project ID for entries that do not name one")
	return cmd
}

func readPayload(stdin io.Reader, path string) ([]byte, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path) // #nosec G304 -- path is supplied by the CLI user
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	data, err := io.ReadAll(io.LimitReader(r, maxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}
	if len(data) > maxImportSize {
		return nil, NewCLIError("import file too large", "Split the import into files under 1 MB", nil)
	}
	return data, nil
}
