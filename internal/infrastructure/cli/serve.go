package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/frops/planner/internal/infrastructure/sse"
	"github.com/frops/planner/internal/infrastructure/watch"
	"github.com/frops/planner/internal/infrastructure/wiring"
	"github.com/frops/planner/pkg/infrastructure/api"
	"github.com/frops/planner/pkg/infrastructure/dashboard"
	"github.com/frops/planner/pkg/storage"
)

type serveOptions struct {
	addr  string
	watch bool
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var so serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard and JSON API",
		Long: `Serve starts the web dashboard with the JSON API under /api and a live
event stream under /events. With --watch, changes made to the workspace by
other processes refresh open pages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := opts.loadServices()
			if err != nil {
				return err
			}
			defer func() { _ = services.Close() }()

			if so.addr == "" {
				so.addr = services.Workspace.Config.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, services, so, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&so.addr, "addr", "", "Listen address (defaults to server.addr from the config)")
	cmd.Flags().BoolVar(&so.watch, "watch", false, "Watch the workspace for external changes")
	return cmd
}

func runServe(ctx context.Context, services *wiring.AppServices, so serveOptions, out io.Writer) error {
	ws := services.Workspace
	events := sse.NewHandler(ws.Publisher)

	server, err := dashboard.NewServer(api.Services{
		Projects: services.Projects,
		Tasks:    services.Tasks,
		Timeline: services.Timeline,
		Audit:    services.Audit,
	}, dashboard.Options{
		Addr:   so.addr,
		View:   ws.Config.NavigationOptions(),
		Events: events,
		Logger: ws.Logger,
	})
	if err != nil {
		return err
	}

	if so.watch {
		dir := storage.NewWorkspace(ws.Root)
		if err := dir.Initialize(); err != nil {
			return err
		}
		w, err := watch.New(watch.Options{
			Filter: watch.DefaultFilter(),
			Logger: ws.Logger,
		}, watch.PublishTo(ws.Publisher, filepath.Base(ws.Root), ws.Logger))
		if err != nil {
			return err
		}
		if err := w.Add(dir.Dir()); err != nil {
			return err
		}
		go func() { _ = w.Run(ctx) }()
		_, _ = fmt.Fprintf(out, "Watching %s for changes\n", dir.Dir())
	}

	_, _ = fmt.Fprintf(out, "Dashboard: http://%s/\n", displayAddr(so.addr))
	_, _ = fmt.Fprintln(out, "Press Ctrl+C to stop")
	return server.Run(ctx)
}

// displayAddr turns ":8080" into a browsable host:port.
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
