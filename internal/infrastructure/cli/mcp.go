package cli

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	inframcp "github.com/frops/planner/internal/infrastructure/mcp"
)

func newMCPCmd(opts *rootOptions) *cobra.Command {
	var (
		transport string
		addr      string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the planner MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := opts.loadServices()
			if err != nil {
				return err
			}
			defer func() { _ = services.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := inframcp.NewServerWithServices(services)
			switch strings.ToLower(transport) {
			case "stdio", "":
				err = server.ServeStdio(ctx)
			case "http":
				err = server.ServeHTTP(ctx, addr)
			default:
				return NewCLIError(fmt.Sprintf("unsupported transport: %s", transport), "Use --transport stdio or --transport http", nil)
			}
			if err != nil && ctx.Err() == nil {
				return fmt.Errorf("mcp server: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport to use (stdio, http)")
	cmd.Flags().StringVar(&addr, "addr", ":8090", "Address for the http transport")
	return cmd
}

func newOpenAPICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "openapi",
		Short: "Generate an OpenAPI 3.0 spec from MCP tool registrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			services, err := opts.loadServices()
			if err != nil {
				return err
			}
			defer func() { _ = services.Close() }()

			data, err := inframcp.NewServerWithServices(services).OpenAPI()
			if err != nil {
				return fmt.Errorf("failed to generate OpenAPI spec: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
