package mcp

import (
	"encoding/json"
	"sort"
	"strings"

	mcplib "github.com/felixgeelhaar/mcp-go"
)

// OpenAPISpec is the subset of an OpenAPI 3.0 document the tool catalogue
// needs.
type OpenAPISpec struct {
	OpenAPI string              `json:"openapi"`
	Info    OpenAPIInfo         `json:"info"`
	Tags    []OpenAPITag        `json:"tags,omitempty"`
	Paths   map[string]PathItem `json:"paths"`
}

type OpenAPIInfo struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version"`
}

type OpenAPITag struct {
	Name string `json:"name"`
}

// PathItem holds the single POST operation of a tool path.
type PathItem struct {
	Post *Operation `json:"post,omitempty"`
}

type Operation struct {
	OperationID string              `json:"operationId"`
	Summary     string              `json:"summary,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	RequestBody *RequestBody        `json:"requestBody,omitempty"`
	Responses   map[string]Response `json:"responses"`
}

type RequestBody struct {
	Required bool                 `json:"required"`
	Content  map[string]MediaType `json:"content"`
}

type MediaType struct {
	Schema any `json:"schema,omitempty"`
}

type Response struct {
	Description string               `json:"description"`
	Content     map[string]MediaType `json:"content,omitempty"`
}

// OpenAPI returns the tool catalogue of this server as OpenAPI JSON.
func (s *Server) OpenAPI() ([]byte, error) {
	return GenerateOpenAPI(s.mcpServer)
}

// GenerateOpenAPI maps every registered tool to POST /tools/{name}. Tools
// are tagged by the noun in their name, so planner_create_task lands under
// "task".
func GenerateOpenAPI(srv *mcplib.Server) ([]byte, error) {
	tools := srv.Tools()

	paths := make(map[string]PathItem, len(tools))
	tagSet := make(map[string]struct{})
	for _, t := range tools {
		tag := toolTag(t.Name)
		tagSet[tag] = struct{}{}

		op := &Operation{
			OperationID: t.Name,
			Summary:     t.Description,
			Tags:        []string{tag},
			Responses: map[string]Response{
				"200": {Description: "Tool result", Content: resultContent(t.Name)},
				"400": {Description: "Invalid arguments"},
				"404": {Description: "Project or task not found"},
				"500": {Description: "Internal error"},
			},
		}
		if propertyCount(t.InputSchema) > 0 {
			op.RequestBody = &RequestBody{
				Required: true,
				Content:  map[string]MediaType{"application/json": {Schema: t.InputSchema}},
			}
		}
		paths["/tools/"+t.Name] = PathItem{Post: op}
	}

	tags := make([]OpenAPITag, 0, len(tagSet))
	for name := range tagSet {
		tags = append(tags, OpenAPITag{Name: name})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })

	return json.MarshalIndent(OpenAPISpec{
		OpenAPI: "3.0.3",
		Info: OpenAPIInfo{
			Title:       "Planner MCP API",
			Description: "Planner MCP tools exposed as POST endpoints.",
			Version:     SchemaVersion,
		},
		Tags:  tags,
		Paths: paths,
	}, "", "  ")
}

// toolTag returns the singular noun of a tool name: planner_list_projects
// gives "project".
func toolTag(name string) string {
	parts := strings.Split(name, "_")
	noun := parts[len(parts)-1]
	if len(parts) > 2 {
		noun = strings.TrimSuffix(noun, "s")
	}
	return noun
}

// resultContent describes what a tool returns: delete confirmations are
// text, the timeline is JSON or SVG depending on its format argument.
func resultContent(tool string) map[string]MediaType {
	switch tool {
	case "planner_delete_task":
		return map[string]MediaType{"text/plain": {}}
	case "planner_timeline":
		return map[string]MediaType{"application/json": {}, "image/svg+xml": {}}
	default:
		return map[string]MediaType{"application/json": {}}
	}
}

// propertyCount reads the number of top-level properties of a tool input
// schema. mcp-go generates *schema.Schema values; hand-registered tools may
// carry plain maps, so both go through their JSON form.
func propertyCount(inputSchema any) int {
	if inputSchema == nil {
		return 0
	}
	raw, err := json.Marshal(inputSchema)
	if err != nil {
		return 0
	}
	var doc struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0
	}
	return len(doc.Properties)
}
