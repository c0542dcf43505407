package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"
)

func newWebhooksCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhooks",
		Short: "Inspect and retry failed webhook deliveries",
	}
	cmd.AddCommand(newWebhooksListCmd(opts), newWebhooksRetryCmd(opts))
	return cmd
}

func newWebhooksListCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List failed deliveries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := opts.loadServices()
			if err != nil {
				return err
			}
			defer func() { _ = services.Close() }()

			out := cmd.OutOrStdout()
			notifier := services.Workspace.Notifier
			if notifier == nil {
				_, _ = fmt.Fprintln(out, "No webhooks configured.")
				return nil
			}
			entries, err := notifier.DeadLetters()
			if err != nil {
				return fmt.Errorf("failed to read dead letters: %w", err)
			}

			if asJSON {
				return writeJSON(out, nonNil(entries))
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(out, "No failed deliveries.")
				return nil
			}

			rows := make([]table.Row, 0, len(entries))
			for _, dl := range entries {
				rows = append(rows, table.Row{
					dl.Timestamp.Local().Format(time.DateTime),
					dl.WebhookName,
					dl.EventType,
					strconv.Itoa(dl.Attempts),
					dl.Error,
				})
			}
			_, _ = fmt.Fprint(out, renderTable([]string{"Failed", "Webhook", "Event", "Attempts", "Error"}, rows, opts.noColor))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newWebhooksRetryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Resend failed deliveries to their endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := opts.loadServices()
			if err != nil {
				return err
			}
			defer func() { _ = services.Close() }()

			notifier := services.Workspace.Notifier
			if notifier == nil {
				return NewCLIError("no webhooks configured", "Add endpoints under webhooks: in .planner/config.yaml", nil)
			}
			res, err := notifier.Redeliver(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to redeliver: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Delivered %d, still failing %d, skipped %d\n", res.Delivered, res.Failed, res.Skipped)
			if res.Failed > 0 {
				return NewCLIError(fmt.Sprintf("%d deliveries still failing", res.Failed), "Run 'planner webhooks list' to see the errors", nil)
			}
			return nil
		},
	}
}
