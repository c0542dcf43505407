package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	mcplib "github.com/felixgeelhaar/mcp-go"

	"github.com/frops/planner/pkg/domain/timeline"
)

// SchemaVersion is the semver of the tool argument and result shapes.
// Bump the major when a tool or field is removed.
const SchemaVersion = "1.0.0"

const (
	schemaURI   = "planner://schema"
	settingsURI = "planner://timeline/settings"
)

// DeprecatedField announces a tool argument scheduled for removal.
type DeprecatedField struct {
	Tool      string `json:"tool"`
	Field     string `json:"field"`
	Since     string `json:"since"`
	RemovedIn string `json:"removed_in"`
	Migration string `json:"migration"`
}

// deprecations is empty until the first 1.x field is retired.
var deprecations = []DeprecatedField{}

type schemaDoc struct {
	SchemaVersion string            `json:"schema_version"`
	ServerVersion string            `json:"server_version"`
	Tools         []string          `json:"tools"`
	Resources     []string          `json:"resources"`
	Deprecated    []DeprecatedField `json:"deprecated"`
}

// settingsDoc describes how the timeline tool lays out a window when the
// caller passes no view or span.
type settingsDoc struct {
	View         timeline.Granularity      `json:"view"`
	Span         int                       `json:"span"`
	WeekStartsOn string                    `json:"week_starts_on"`
	PeriodWidth  float64                   `json:"period_width"`
	RowHeight    float64                   `json:"row_height"`
	Teams        map[string]timeline.Color `json:"teams"`
	Fallback     timeline.Color            `json:"fallback"`
}

func (s *Server) registerResources() {
	s.jsonResource(schemaURI, "Tool schema version, tool names and deprecations", func() any {
		return schemaDoc{
			SchemaVersion: SchemaVersion,
			ServerVersion: Version,
			Tools:         s.toolNames(),
			Resources:     []string{schemaURI, settingsURI},
			Deprecated:    deprecations,
		}
	})
	s.jsonResource(settingsURI, "Default view, span, geometry and team colors of the timeline", s.settings)
}

func (s *Server) settings() any {
	opts := s.timelineSvc.Options()
	geometry := timeline.DefaultOptions()
	if opts.PeriodWidth > 0 {
		geometry.PeriodWidth = opts.PeriodWidth
	}
	if opts.RowHeight > 0 {
		geometry.RowHeight = opts.RowHeight
	}

	doc := settingsDoc{
		View:         s.view.Granularity,
		Span:         max(s.view.Span, 1),
		WeekStartsOn: timeline.ViewConfig{WeekStartsOn: s.view.WeekStartsOn}.WeekStart().String(),
		PeriodWidth:  geometry.PeriodWidth,
		RowHeight:    geometry.RowHeight,
		Teams:        opts.Palette.Teams(),
		Fallback:     opts.Palette.Fallback(),
	}
	if doc.View == "" {
		doc.View = timeline.Month
	}
	return doc
}

// jsonResource registers a read-only resource whose body is build()
// encoded as JSON on every read.
func (s *Server) jsonResource(uri, description string, build func() any) {
	s.mcpServer.Resource(uri).
		Name(uri).
		Description(description).
		MimeType("application/json").
		Handler(func(_ context.Context, _ string, _ map[string]string) (*mcplib.ResourceContent, error) {
			data, err := json.Marshal(build())
			if err != nil {
				return nil, fmt.Errorf("encode %s: %w", uri, err)
			}
			return &mcplib.ResourceContent{URI: uri, MimeType: "application/json", Text: string(data)}, nil
		})
}

func (s *Server) toolNames() []string {
	var names []string
	for _, t := range s.mcpServer.Tools() {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}
