package timeline

import (
	"fmt"
	"time"

	"github.com/frops/planner/pkg/domain/calendar"
	"github.com/frops/planner/pkg/domain/planning"
)

// DefaultWeekStart is the first day of the week when none is configured.
const DefaultWeekStart = time.Monday

// ViewConfig selects what the timeline shows. A nil WeekStartsOn means
// DefaultWeekStart.
type ViewConfig struct {
	WindowStart  calendar.Date `json:"windowStart"`
	WindowEnd    calendar.Date `json:"windowEnd"`
	Granularity  Granularity   `json:"granularity"`
	WeekStartsOn *time.Weekday `json:"weekStartsOn,omitempty"`
}

// StartWeekOn returns d as a WeekStartsOn value.
func StartWeekOn(d time.Weekday) *time.Weekday { return &d }

// WeekStart returns the first day of the week of c.
func (c ViewConfig) WeekStart() time.Weekday {
	if c.WeekStartsOn == nil {
		return DefaultWeekStart
	}
	return *c.WeekStartsOn
}

// Column is a labelled period header.
type Column struct {
	Period Period  `json:"period"`
	Label  string  `json:"label"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
}

// Separator is a vertical day line. Boundary is set on the first day of a
// period.
type Separator struct {
	Left     float64       `json:"left"`
	Date     calendar.Date `json:"date"`
	Boundary bool          `json:"boundary"`
}

// View is the fully composed timeline, ready for rendering.
type View struct {
	Config      ViewConfig   `json:"config"`
	Columns     []Column     `json:"columns"`
	Separators  []Separator  `json:"separators"`
	Tasks       []PlacedTask `json:"tasks"`
	Today       Marker       `json:"today"`
	PeriodWidth float64      `json:"periodWidth"`
	RowHeight   float64      `json:"rowHeight"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
}

// Label formats a period header: "Jan 1 - Jan 7" for weeks and
// "January 2024" for months.
func Label(p Period, g Granularity) string {
	if g == Week {
		return fmt.Sprintf("%s - %s", p.Start.Format("Jan 2"), p.End.Format("Jan 2"))
	}
	return p.Start.Format("January 2006")
}

// Compose runs the whole pipeline for cfg: periods, columns, day
// separators, task layout and the today marker.
func Compose(cfg ViewConfig, tasks []planning.Task, today calendar.Date, opts Options) (*View, error) {
	opts = opts.normalized()
	cfg.WeekStartsOn = StartWeekOn(cfg.WeekStart())

	periods, err := GeneratePeriods(cfg.WindowStart, cfg.WindowEnd, cfg.Granularity, cfg.WeekStart())
	if err != nil {
		return nil, err
	}
	opts.Tracer.PeriodsGenerated(cfg, periods)

	m := NewMapper(periods)
	w := opts.PeriodWidth

	columns := make([]Column, len(periods))
	var separators []Separator
	for i, p := range periods {
		columns[i] = Column{
			Period: p,
			Label:  Label(p, cfg.Granularity),
			Left:   float64(i) * w,
			Width:  w,
		}
		for d := p.Start; !d.After(p.End); d = d.AddDays(1) {
			separators = append(separators, Separator{
				Left:     m.PixelOf(d, w),
				Date:     d,
				Boundary: d.Equal(p.Start),
			})
		}
	}

	placed := Layout(tasks, m, cfg.WindowStart, cfg.WindowEnd, opts)

	return &View{
		Config:      cfg,
		Columns:     columns,
		Separators:  separators,
		Tasks:       placed,
		Today:       TodayMarker(m, cfg.WindowStart, cfg.WindowEnd, today, w),
		PeriodWidth: w,
		RowHeight:   opts.RowHeight,
		Width:       float64(len(periods)) * w,
		Height:      ContainerHeight(len(placed), opts),
	}, nil
}
