// Package sdk provides a typed Go client for the planner MCP server.
//
// The client wraps mcp-go/client.CallTool with one method per planner tool
// and retries transport failures via fortify.
//
// Usage:
//
//	transport, _ := client.NewStdioTransport("planner", "mcp")
//	c := sdk.NewClient(transport)
//	defer c.Close()
//
//	_, _ = c.Initialize(ctx)
//	view, _ := c.Timeline(ctx, sdk.TimelineRequest{Month: "2024-03", View: "week"})
//	fmt.Println(len(view.Tasks))
package sdk
