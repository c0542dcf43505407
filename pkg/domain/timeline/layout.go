package timeline

import (
	"github.com/frops/planner/pkg/domain/calendar"
	"github.com/frops/planner/pkg/domain/planning"
)

// Default geometry, in pixels.
const (
	DefaultPeriodWidth = 200
	DefaultRowHeight   = 30
	DefaultMargin      = 40
	DefaultMinWidth    = 5
)

// Options controls layout geometry. Zero fields take their defaults.
type Options struct {
	PeriodWidth float64
	RowHeight   float64
	Margin      float64
	// MinWidth is the width of bars whose end does not lie after their
	// start. Narrow bars with a positive extent keep their real width.
	MinWidth    float64
	Palette     Palette
	Tracer      Tracer
}

// DefaultOptions returns the default geometry with the default palette.
func DefaultOptions() Options {
	return Options{}.normalized()
}

func (o Options) normalized() Options {
	if o.PeriodWidth <= 0 {
		o.PeriodWidth = DefaultPeriodWidth
	}
	if o.RowHeight <= 0 {
		o.RowHeight = DefaultRowHeight
	}
	if o.Margin < 0 {
		o.Margin = 0
	} else if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
	if o.MinWidth <= 0 {
		o.MinWidth = DefaultMinWidth
	}
	if o.Palette.IsZero() {
		o.Palette = DefaultPalette()
	}
	if o.Tracer == nil {
		o.Tracer = NopTracer{}
	}
	return o
}

// PlacedTask is a task with its bar geometry.
type PlacedTask struct {
	Task         planning.Task `json:"task"`
	Left         float64       `json:"left"`
	Width        float64       `json:"width"`
	Row          int           `json:"row"`
	Color        Color         `json:"color"`
	ClippedStart bool          `json:"clippedStart"`
	ClippedEnd   bool          `json:"clippedEnd"`
}

// Top returns the vertical pixel offset of the bar.
func (p PlacedTask) Top(rowHeight float64) float64 {
	return float64(p.Row) * rowHeight
}

// Layout places the tasks that intersect [windowStart, windowEnd]. Tasks
// keep their input order and each visible task gets its own row. Bars are
// clipped to the window. A bar whose end is not after its start gets
// opts.MinWidth.
func Layout(tasks []planning.Task, m *Mapper, windowStart, windowEnd calendar.Date, opts Options) []PlacedTask {
	opts = opts.normalized()
	placed := make([]PlacedTask, 0, len(tasks))

	for _, t := range tasks {
		start, end, ok := effectiveDates(t)
		if !ok {
			opts.Tracer.TaskSkipped(t, SkipMissingDates)
			continue
		}
		if end.Before(windowStart) || start.After(windowEnd) {
			opts.Tracer.TaskSkipped(t, SkipOutsideWindow)
			continue
		}

		startPos := m.PositionOf(calendar.Max(start, windowStart))
		endPos := m.PositionOf(calendar.Min(end, windowEnd))

		width := (endPos - startPos) * opts.PeriodWidth
		if endPos <= startPos {
			width = opts.MinWidth
		}

		p := PlacedTask{
			Task:         t,
			Left:         startPos * opts.PeriodWidth,
			Width:        width,
			Row:          len(placed),
			Color:        opts.Palette.ColorFor(t.Code),
			ClippedStart: start.Before(windowStart),
			ClippedEnd:   end.After(windowEnd),
		}
		opts.Tracer.TaskPlaced(p)
		placed = append(placed, p)
	}

	return placed
}

// ContainerHeight returns the pixel height needed for rows visible tasks.
func ContainerHeight(rows int, opts Options) float64 {
	opts = opts.normalized()
	return float64(rows)*opts.RowHeight + opts.Margin
}

// effectiveDates treats a task with a single date as a one-day task.
func effectiveDates(t planning.Task) (start, end calendar.Date, ok bool) {
	start, end = t.StartDate, t.EndDate
	switch {
	case start.IsZero() && end.IsZero():
		return start, end, false
	case start.IsZero():
		start = end
	case end.IsZero():
		end = start
	}
	return start, end, true
}
