package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// rootOptions holds the global flags shared by every command.
type rootOptions struct {
	workspace string
	noColor   bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:     "planner",
		Version: Version,
		Short:   "Plan projects on a calendar timeline",
		Long: `Planner keeps projects and dated tasks in a local workspace and lays
them out on a week or month timeline.

Use it from the terminal, serve the dashboard and JSON API, or expose the
workspace to MCP clients.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.workspace, "workspace", "w", "", "Workspace directory (defaults to the current directory)")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(
		newInitCmd(opts),
		newProjectCmd(opts),
		newTaskCmd(opts),
		newTimelineCmd(opts),
		newHistoryCmd(opts),
		newServeCmd(opts),
		newMCPCmd(opts),
		newOpenAPICmd(opts),
		newWebhooksCmd(opts),
	)
	return cmd
}

// Execute runs the CLI and prints mapped errors with their hints.
// This is called by main.main().
func Execute() error {
	cmd := NewRootCmd()
	err := cmd.Execute()
	if err != nil {
		printError(cmd.ErrOrStderr(), err)
	}
	return err
}

func printError(w io.Writer, err error) {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		_, _ = fmt.Fprintf(w, "Error: %s\n", cliErr.Message)
		if cliErr.Hint != "" {
			_, _ = fmt.Fprintf(w, "Hint: %s\n", cliErr.Hint)
		}
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
}
