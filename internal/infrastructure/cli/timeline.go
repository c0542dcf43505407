package cli

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/frops/planner/pkg/domain/navigation"
	"github.com/frops/planner/pkg/domain/timeline"
	"github.com/frops/planner/pkg/render"
)

type timelineFlags struct {
	projectID   string
	month       string
	view        string
	span        int
	svgPath     string
	asJSON      bool
	interactive bool
}

func newTimelineCmd(opts *rootOptions) *cobra.Command {
	var f timelineFlags

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Show tasks on a week or month timeline",
		Example: `  planner timeline --month 2024-03 --view week
  planner timeline --project <id> --span 3 --svg roadmap.svg
  planner timeline --interactive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := opts.loadServices()
			if err != nil {
				return err
			}
			defer func() { _ = services.Close() }()

			defaults := services.Workspace.Config.NavigationOptions()
			defaults.Today = services.Timeline.Today()
			nav, err := navigation.FromQuery(f.query(), defaults)
			if err != nil {
				return NewCLIError(err.Error(), "Use --month YYYY-MM, --view week|month and --span 1-"+strconv.Itoa(navigation.MaxSpan), err)
			}

			ctx := cmd.Context()
			build := func(cfg timeline.ViewConfig) (*timeline.View, error) {
				return services.Timeline.Build(ctx, f.projectID, cfg)
			}

			if f.interactive {
				m, err := newTimelineModel(nav, build, defaults.Today, opts.noColor)
				if err != nil {
					return MapError(err)
				}
				p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(cmd.InOrStdin()), tea.WithOutput(cmd.OutOrStdout()))
				if _, err := p.Run(); err != nil {
					return fmt.Errorf("timeline run failed: %w", err)
				}
				return nil
			}

			view, err := build(nav.ViewConfig())
			if err != nil {
				return MapError(fmt.Errorf("failed to build timeline: %w", err))
			}

			out := cmd.OutOrStdout()
			switch {
			case f.svgPath != "":
				if err := writeSVGFile(f.svgPath, view); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "Wrote %s (%d task(s), %s)\n", f.svgPath, len(view.Tasks), windowLabel(nav))
				return nil
			case f.asJSON:
				return writeJSON(out, view)
			default:
				printTimeline(out, nav, view, opts.noColor)
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&f.projectID, "project", "", "Only show tasks of this project ID")
	cmd.Flags().StringVar(&f.month, "month", "", "First visible month (YYYY-MM), defaults to the current month")
	cmd.Flags().StringVar(&f.view, "view", "", "Column granularity: week or month")
	cmd.Flags().IntVar(&f.span, "span", 0, "Number of visible months")
	cmd.Flags().StringVar(&f.svgPath, "svg", "", "Write the timeline as SVG to this file")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the composed view as JSON")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "Browse months interactively")
	cmd.MarkFlagsMutuallyExclusive("svg", "json", "interactive")
	return cmd
}

// query maps the flags onto the navigation query parameters.
func (f timelineFlags) query() url.Values {
	q := url.Values{}
	if f.month != "" {
		q.Set("month", f.month)
	}
	if f.view != "" {
		q.Set("view", f.view)
	}
	if f.span != 0 {
		q.Set("span", strconv.Itoa(f.span))
	}
	return q
}

func printTimeline(w io.Writer, nav *navigation.Navigator, view *timeline.View, noColor bool) {
	_, _ = fmt.Fprintln(w, heading(windowLabel(nav)+" ("+string(nav.Granularity())+" view)", noColor))
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprint(w, render.Terminal(view, render.TerminalOptions{NoColor: noColor}))
}

func writeSVGFile(path string, view *timeline.View) error {
	f, err := os.Create(path) // #nosec G304 -- path is supplied by the CLI user
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := render.WriteSVG(f, view, render.DefaultSVGStyle()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func windowLabel(nav *navigation.Navigator) string {
	start, end := nav.Window()
	if nav.Span() == 1 {
		return start.Format("January 2006")
	}
	return start.Format("Jan 2006") + " - " + end.Format("Jan 2006")
}
