package timeline

import (
	"log/slog"

	"github.com/frops/planner/pkg/domain/planning"
)

// SkipReason explains why a task was left off the timeline.
type SkipReason string

const (
	SkipOutsideWindow SkipReason = "outside_window"
	SkipMissingDates  SkipReason = "missing_dates"
)

// Tracer observes layout decisions.
type Tracer interface {
	PeriodsGenerated(cfg ViewConfig, periods []Period)
	TaskPlaced(p PlacedTask)
	TaskSkipped(t planning.Task, reason SkipReason)
}

// NopTracer discards all events.
type NopTracer struct{}

func (NopTracer) PeriodsGenerated(ViewConfig, []Period) {}
func (NopTracer) TaskPlaced(PlacedTask)                 {}
func (NopTracer) TaskSkipped(planning.Task, SkipReason) {}

// SlogTracer writes layout decisions at debug level.
type SlogTracer struct {
	logger *slog.Logger
}

// NewSlogTracer creates a tracer. A nil logger uses slog.Default().
func NewSlogTracer(logger *slog.Logger) *SlogTracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogTracer{logger: logger.With("component", "timeline")}
}

func (t *SlogTracer) PeriodsGenerated(cfg ViewConfig, periods []Period) {
	t.logger.Debug("periods generated",
		"granularity", cfg.Granularity,
		"window_start", cfg.WindowStart.String(),
		"window_end", cfg.WindowEnd.String(),
		"count", len(periods))
}

func (t *SlogTracer) TaskPlaced(p PlacedTask) {
	t.logger.Debug("task placed",
		"code", p.Task.Code,
		"row", p.Row,
		"left", p.Left,
		"width", p.Width)
}

func (t *SlogTracer) TaskSkipped(task planning.Task, reason SkipReason) {
	t.logger.Debug("task skipped", "code", task.Code, "id", task.ID, "reason", string(reason))
}
