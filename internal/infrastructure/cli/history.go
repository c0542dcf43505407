package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/spf13/cobra"

	"github.com/frops/planner/pkg/domain/events"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		q      events.Query
		limit  int
		verify bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the audit log of workspace changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := opts.loadServices()
			if err != nil {
				return err
			}
			defer func() { _ = services.Close() }()

			out := cmd.OutOrStdout()
			if verify {
				problems, err := services.Audit.VerifyIntegrity()
				if err != nil {
					return fmt.Errorf("failed to verify audit log: %w", err)
				}
				if len(problems) > 0 {
					for _, p := range problems {
						_, _ = fmt.Fprintf(out, "  - %s\n", p)
					}
					return NewCLIError(fmt.Sprintf("audit log integrity check failed (%d problem(s))", len(problems)),
						"The event log was edited outside planner", nil)
				}
				_, _ = fmt.Fprintln(out, "Audit log integrity verified.")
				return nil
			}

			q.Limit = limit
			evts, err := services.Audit.History(q)
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}

			if asJSON {
				return writeJSON(out, nonNil(evts))
			}
			if len(evts) == 0 {
				_, _ = fmt.Fprintln(out, "No events recorded.")
				return nil
			}

			rows := make([]table.Row, 0, len(evts))
			for i := len(evts) - 1; i >= 0; i-- {
				e := evts[i]
				rows = append(rows, table.Row{
					e.Timestamp.Local().Format(time.DateTime),
					e.Actor,
					e.Type,
					e.AggregateID,
					summarize(e.Data),
				})
			}
			_, _ = fmt.Fprint(out, renderTable([]string{"Time", "Actor", "Event", "Aggregate", "Details"}, rows, opts.noColor))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&q.Types, "type", nil, "Only show these event types")
	cmd.Flags().StringVar(&q.AggregateType, "aggregate", "", "Only show events of this aggregate type (project, task)")
	cmd.Flags().StringVar(&q.AggregateID, "id", "", "Only show events of this aggregate ID")
	cmd.Flags().IntVar(&limit, "limit", 50, "Show at most this many events, newest first")
	cmd.Flags().BoolVar(&verify, "verify", false, "Verify the audit log hash chain")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

// summarize renders event data as sorted key=value pairs.
func summarize(data map[string]any) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := fmt.Sprint(data[k]); v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, " ")
}
