package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"

	"github.com/frops/planner/pkg/domain/planning"
)

func newProjectCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(
		newProjectListCmd(opts),
		newProjectCreateCmd(opts),
		newProjectShowCmd(opts),
	)
	return cmd
}

func newProjectListCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := opts.loadServices()
			if err != nil {
				return err
			}
			defer func() { _ = services.Close() }()

			projects, err := services.Projects.ListProjects(cmd.Context())
			if err != nil {
				return MapError(fmt.Errorf("failed to list projects: %w", err))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, nonNil(projects))
			}
			if len(projects) == 0 {
				_, _ = fmt.Fprintln(out, "No projects yet. Create one with 'planner project create <name>'.")
				return nil
			}

			rows := make([]table.Row, 0, len(projects))
			for _, p := range projects {
				rows = append(rows, table.Row{p.ID, p.Name, p.CreatedAt.Format("2006-01-02")})
			}
			_, _ = fmt.Fprint(out, renderTable([]string{"ID", "Name", "Created"}, rows, opts.noColor))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newProjectCreateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := opts.loadServices()
			if err != nil {
				return err
			}
			defer func() { _ = services.Close() }()

			project, err := services.Projects.CreateProject(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return MapError(fmt.Errorf("failed to create project: %w", err))
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created project %q (%s)\n", project.Name, project.ID)
			return nil
		},
	}
}

func newProjectShowCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := opts.loadServices()
			if err != nil {
				return err
			}
			defer func() { _ = services.Close() }()

			ctx := cmd.Context()
			project, err := services.Projects.GetProject(ctx, args[0])
			if err != nil {
				return MapError(fmt.Errorf("failed to load project: %w", err))
			}
			tasks, err := services.Tasks.ListTasks(ctx, project.ID)
			if err != nil {
				return MapError(fmt.Errorf("failed to list tasks: %w", err))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, map[string]any{
					"project": project,
					"tasks":   nonNil(tasks),
				})
			}

			_, _ = fmt.Fprintln(out, heading(project.Name, opts.noColor))
			_, _ = fmt.Fprintln(out, muted("ID: "+project.ID+"  Created: "+project.CreatedAt.Format("2006-01-02")+"  Tasks: "+strconv.Itoa(len(tasks)), opts.noColor))
			if len(tasks) > 0 {
				_, _ = fmt.Fprintln(out)
				_, _ = fmt.Fprint(out, renderTasks(tasks, opts.noColor))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func renderTasks(tasks []planning.Task, noColor bool) string {
	rows := make([]table.Row, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, table.Row{t.Code, t.Title, t.StartDate.String(), t.EndDate.String(), t.ID})
	}
	return renderTable([]string{"Code", "Title", "Start", "End", "ID"}, rows, noColor)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
