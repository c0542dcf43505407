package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/mcp-go/client"

	"github.com/frops/planner/pkg/domain/planning"
	"github.com/frops/planner/pkg/domain/timeline"
)

const (
	schemaURI   = "planner://schema"
	settingsURI = "planner://timeline/settings"
)

// Client is a typed Go client for the planner MCP server.
type Client struct {
	mcp      *client.Client
	retryCfg retry.Config
	timeout  time.Duration
}

// NewClient creates a client over the given MCP transport.
func NewClient(transport client.Transport, opts ...Option) *Client {
	o := options{
		timeout:      defaultTimeout,
		maxAttempts:  defaultMaxAttempts,
		initialDelay: defaultInitialDelay,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return &Client{
		mcp:     client.New(transport, client.WithTimeout(o.timeout)),
		timeout: o.timeout,
		retryCfg: retry.Config{
			MaxAttempts:   o.maxAttempts,
			InitialDelay:  o.initialDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Initialize performs the MCP initialize handshake.
func (c *Client) Initialize(ctx context.Context) (*client.ServerInfo, error) {
	return c.mcp.Initialize(ctx)
}

// Close closes the underlying transport.
func (c *Client) Close() error {
	return c.mcp.Close()
}

// call invokes a tool, retrying transport failures. A tool-level error is
// returned as *ToolError without retrying.
func (c *Client) call(ctx context.Context, tool string, args map[string]any) (*client.ToolResult, error) {
	r := retry.New[*client.ToolResult](c.retryCfg)
	result, err := r.Do(ctx, func(ctx context.Context) (*client.ToolResult, error) {
		return c.mcp.CallTool(ctx, tool, args)
	})
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", tool, err)
	}
	if result.IsError {
		msg := ""
		if len(result.Content) > 0 {
			msg = result.Content[0].Text
		}
		return nil, &ToolError{Tool: tool, Message: msg}
	}
	return result, nil
}

func textResult(result *client.ToolResult) (string, error) {
	if len(result.Content) == 0 {
		return "", ErrNoContent
	}
	return result.Content[0].Text, nil
}

func unmarshalText[T any](result *client.ToolResult) (T, error) {
	var v T
	text, err := textResult(result)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return v, fmt.Errorf("unmarshal: %w", err)
	}
	return v, nil
}

// GetSchema reads the planner://schema resource.
func (c *Client) GetSchema(ctx context.Context) (*SchemaInfo, error) {
	return readJSON[SchemaInfo](ctx, c, schemaURI)
}

// TimelineSettings returns the server's default view, span, geometry and
// team colors.
func (c *Client) TimelineSettings(ctx context.Context) (*TimelineSettings, error) {
	return readJSON[TimelineSettings](ctx, c, settingsURI)
}

func readJSON[T any](ctx context.Context, c *Client, uri string) (*T, error) {
	rc, err := c.mcp.ReadResource(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}
	v := new(T)
	if err := json.Unmarshal([]byte(rc.Text), v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", uri, err)
	}
	return v, nil
}

// Compatible returns an error when the server's schema major version
// differs from SupportedSchemaMajor.
func (c *Client) Compatible(ctx context.Context) error {
	info, err := c.GetSchema(ctx)
	if err != nil {
		return fmt.Errorf("check compatibility: %w", err)
	}
	if major := majorVersion(info.SchemaVersion); major != SupportedSchemaMajor {
		return fmt.Errorf("incompatible schema: server=%s (major %s), client supports major %s",
			info.SchemaVersion, major, SupportedSchemaMajor)
	}
	return nil
}

func majorVersion(v string) string {
	major, _, _ := strings.Cut(v, ".")
	return major
}

// ListProjects returns all projects in creation order.
func (c *Client) ListProjects(ctx context.Context) ([]planning.Project, error) {
	res, err := c.call(ctx, "planner_list_projects", nil)
	if err != nil {
		return nil, err
	}
	return unmarshalText[[]planning.Project](res)
}

// CreateProject creates a project with the given name.
func (c *Client) CreateProject(ctx context.Context, name string) (*planning.Project, error) {
	res, err := c.call(ctx, "planner_create_project", map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	return unmarshalText[*planning.Project](res)
}

// ListTasks returns the tasks of a project, or every task when projectID is
// empty.
func (c *Client) ListTasks(ctx context.Context, projectID string) ([]planning.Task, error) {
	var args map[string]any
	if projectID != "" {
		args = map[string]any{"project_id": projectID}
	}
	res, err := c.call(ctx, "planner_list_tasks", args)
	if err != nil {
		return nil, err
	}
	return unmarshalText[[]planning.Task](res)
}

// CreateTask creates a task and returns it as stored.
func (c *Client) CreateTask(ctx context.Context, req TaskRequest) (*planning.Task, error) {
	res, err := c.call(ctx, "planner_create_task", req.args())
	if err != nil {
		return nil, err
	}
	return unmarshalText[*planning.Task](res)
}

// DeleteTask deletes a task and returns the server's confirmation.
func (c *Client) DeleteTask(ctx context.Context, id string) (string, error) {
	res, err := c.call(ctx, "planner_delete_task", map[string]any{"id": id})
	if err != nil {
		return "", err
	}
	return textResult(res)
}

// Timeline returns the computed layout of the requested window.
func (c *Client) Timeline(ctx context.Context, req TimelineRequest) (*timeline.View, error) {
	res, err := c.call(ctx, "planner_timeline", req.args("json"))
	if err != nil {
		return nil, err
	}
	return unmarshalText[*timeline.View](res)
}

// TimelineSVG returns the requested window rendered as an SVG document.
func (c *Client) TimelineSVG(ctx context.Context, req TimelineRequest) (string, error) {
	res, err := c.call(ctx, "planner_timeline", req.args("svg"))
	if err != nil {
		return "", err
	}
	return textResult(res)
}
