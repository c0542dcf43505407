// Package config loads the workspace configuration from
// .planner/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/frops/planner/pkg/domain/calendar"
	"github.com/frops/planner/pkg/domain/events"
	"github.com/frops/planner/pkg/domain/navigation"
	"github.com/frops/planner/pkg/domain/timeline"
	"github.com/frops/planner/pkg/storage"
)

// Environment overrides applied after the file is read.
const (
	EnvStorage = "PLANNER_STORAGE"
	EnvAddr    = "PLANNER_ADDR"
)

// ErrInvalidConfig is matched by every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full workspace configuration.
type Config struct {
	Server   ServerConfig             `yaml:"server"`
	Storage  StorageConfig            `yaml:"storage"`
	Timeline TimelineConfig           `yaml:"timeline"`
	Teams    map[string]string        `yaml:"teams,omitempty"`
	Log      LogConfig                `yaml:"log"`
	Webhooks []events.WebhookEndpoint `yaml:"webhooks,omitempty"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"`
	// Path overrides the database file for the sqlite and gorm backends.
	Path string `yaml:"path,omitempty"`
}

// TimelineConfig holds layout geometry and the initial view.
type TimelineConfig struct {
	PeriodWidth  float64 `yaml:"period_width"`
	RowHeight    float64 `yaml:"row_height"`
	Margin       float64 `yaml:"margin"`
	MinWidth     float64 `yaml:"min_width"`
	WeekStartsOn string  `yaml:"week_starts_on"`
	MonthSpan    int     `yaml:"month_span"`
	DefaultView  string  `yaml:"default_view"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Addr: "localhost:8080"},
		Storage: StorageConfig{Backend: string(storage.BackendFile)},
		Timeline: TimelineConfig{
			PeriodWidth:  timeline.DefaultPeriodWidth,
			RowHeight:    timeline.DefaultRowHeight,
			Margin:       timeline.DefaultMargin,
			MinWidth:     timeline.DefaultMinWidth,
			WeekStartsOn: "monday",
			MonthSpan:    1,
			DefaultView:  string(timeline.Month),
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the configuration for the workspace at root, overlays it on
// Default and applies environment overrides. A missing file is not an
// error.
func Load(root string) (*Config, error) {
	cfg := Default()

	path, err := storage.NewWorkspace(root).ResolvePath(storage.ConfigFile)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", storage.ConfigFile, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to the workspace at root.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	ws := storage.NewWorkspace(root)
	path, err := ws.ResolvePath(storage.ConfigFile)
	if err != nil {
		return err
	}
	if err := ws.Initialize(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvStorage); ok && v != "" {
		c.Storage.Backend = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate checks every field that has a restricted set of values.
func (c *Config) Validate() error {
	if !slices.Contains(storage.Backends(), storage.Backend(c.Storage.Backend)) {
		return invalid("storage.backend", "unknown backend %q", c.Storage.Backend)
	}
	if _, err := calendar.ParseWeekday(c.Timeline.WeekStartsOn); err != nil {
		return invalid("timeline.week_starts_on", "%v", err)
	}
	if _, err := timeline.ParseGranularity(c.Timeline.DefaultView); err != nil {
		return invalid("timeline.default_view", "%v", err)
	}
	if c.Timeline.MonthSpan < 1 || c.Timeline.MonthSpan > navigation.MaxSpan {
		return invalid("timeline.month_span", "must be between 1 and %d", navigation.MaxSpan)
	}
	for team, hex := range c.Teams {
		if !hexColor.MatchString(hex) {
			return invalid("teams."+team, "%q is not a #rrggbb color", hex)
		}
	}
	for i, w := range c.Webhooks {
		if w.URL == "" {
			return invalid(fmt.Sprintf("webhooks[%d].url", i), "is required")
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return invalid("log.format", "must be text or json")
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, field, fmt.Sprintf(format, args...))
}

// WeekStart returns the configured first day of the week.
func (c *Config) WeekStart() time.Weekday {
	wd, err := calendar.ParseWeekday(c.Timeline.WeekStartsOn)
	if err != nil {
		return time.Monday
	}
	return wd
}

// View returns the configured initial granularity.
func (c *Config) View() timeline.Granularity {
	g, err := timeline.ParseGranularity(c.Timeline.DefaultView)
	if err != nil {
		return timeline.Month
	}
	return g
}

// Palette returns the default team colors extended with the configured
// teams.
func (c *Config) Palette() timeline.Palette {
	p := timeline.DefaultPalette()
	for team, hex := range c.Teams {
		p = p.With(strings.ToUpper(team), timeline.Color{Name: strings.ToLower(team), Hex: hex})
	}
	return p
}

// TimelineOptions returns the layout options for the configured geometry.
func (c *Config) TimelineOptions() timeline.Options {
	return timeline.Options{
		PeriodWidth: c.Timeline.PeriodWidth,
		RowHeight:   c.Timeline.RowHeight,
		Margin:      c.Timeline.Margin,
		MinWidth:    c.Timeline.MinWidth,
		Palette:     c.Palette(),
	}
}

// NavigationOptions returns the initial view mode, span and week start.
// Callers set Today.
func (c *Config) NavigationOptions() navigation.Options {
	return navigation.Options{
		Granularity:  c.View(),
		Span:         c.Timeline.MonthSpan,
		WeekStartsOn: timeline.StartWeekOn(c.WeekStart()),
	}
}

// StorageOptions returns the repository options for root.
func (c *Config) StorageOptions(root string) storage.Options {
	return storage.Options{
		Backend: storage.Backend(c.Storage.Backend),
		Root:    root,
		Path:    c.Storage.Path,
	}
}
