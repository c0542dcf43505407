// Package navigation moves the visible timeline window between months and
// switches between week and month columns.
package navigation

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/frops/planner/pkg/domain/calendar"
	"github.com/frops/planner/pkg/domain/timeline"
)

// ErrTransitionNotAllowed is matched by every TransitionError.
var ErrTransitionNotAllowed = errors.New("view transition not allowed")

// TransitionError reports an event the current view mode does not accept.
type TransitionError struct {
	Event string
	From  timeline.Granularity
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("the action %q is not allowed in %s view", e.Event, e.From)
}

// Is allows errors.Is to work with TransitionError.
func (e *TransitionError) Is(target error) bool {
	return target == ErrTransitionNotAllowed
}

// MaxSpan bounds the number of months a window may cover.
const MaxSpan = 24

// Options configures a Navigator.
type Options struct {
	Today        calendar.Date
	Granularity  timeline.Granularity
	Span         int
	// WeekStartsOn is the first day of week columns. Nil means
	// timeline.DefaultWeekStart.
	WeekStartsOn *time.Weekday
	// Allowed restricts the view modes. Empty allows both.
	Allowed      []timeline.Granularity
}

// Navigator holds the month cursor and view mode of one timeline. The window
// always starts on the first day of the cursor month and covers Span whole
// months. A Navigator is not safe for concurrent use.
type Navigator struct {
	cursor       calendar.Date
	span         int
	weekStartsOn time.Weekday
	allowed      []timeline.Granularity
	fsm          *granularityMachine
}

// New creates a Navigator positioned on the month of opts.Today.
func New(opts Options) (*Navigator, error) {
	if opts.Today.IsZero() {
		return nil, errors.New("navigator requires a current date")
	}
	if opts.Granularity == "" {
		opts.Granularity = timeline.Month
	}
	if opts.Span <= 0 {
		opts.Span = 1
	}
	if opts.Span > MaxSpan {
		return nil, fmt.Errorf("span %d exceeds maximum of %d months", opts.Span, MaxSpan)
	}
	if opts.Granularity != timeline.Week && opts.Granularity != timeline.Month {
		return nil, fmt.Errorf("%w: %q", timeline.ErrUnknownGranularity, opts.Granularity)
	}

	fsm, err := newGranularityMachine(opts.Granularity, opts.Allowed)
	if err != nil {
		return nil, err
	}

	return &Navigator{
		cursor:       opts.Today.StartOfMonth(),
		span:         opts.Span,
		weekStartsOn: timeline.ViewConfig{WeekStartsOn: opts.WeekStartsOn}.WeekStart(),
		allowed:      opts.Allowed,
		fsm:          fsm,
	}, nil
}

// Cursor returns the first day of the first visible month.
func (n *Navigator) Cursor() calendar.Date { return n.cursor }

// Span returns the number of visible months.
func (n *Navigator) Span() int { return n.span }

// Granularity returns the current view mode.
func (n *Navigator) Granularity() timeline.Granularity { return n.fsm.current() }

// Next moves the window one month forward.
func (n *Navigator) Next() { n.cursor = n.cursor.AddMonths(1) }

// Previous moves the window one month back.
func (n *Navigator) Previous() { n.cursor = n.cursor.AddMonths(-1) }

// Today moves the window to the month containing d.
func (n *Navigator) Today(d calendar.Date) { n.cursor = d.StartOfMonth() }

// Toggle switches between week and month columns.
func (n *Navigator) Toggle() error { return n.fsm.send(EventToggle) }

// ZoomIn switches from month to week columns.
func (n *Navigator) ZoomIn() error { return n.fsm.send(EventZoomIn) }

// ZoomOut switches from week to month columns.
func (n *Navigator) ZoomOut() error { return n.fsm.send(EventZoomOut) }

// Window returns the inclusive bounds of the visible range.
func (n *Navigator) Window() (start, end calendar.Date) {
	return n.cursor, n.cursor.AddMonths(n.span - 1).EndOfMonth()
}

// ViewConfig returns the configuration for the current position.
func (n *Navigator) ViewConfig() timeline.ViewConfig {
	start, end := n.Window()
	return timeline.ViewConfig{
		WindowStart:  start,
		WindowEnd:    end,
		Granularity:  n.Granularity(),
		WeekStartsOn: timeline.StartWeekOn(n.weekStartsOn),
	}
}

// Query encodes the navigator position as URL query parameters.
func (n *Navigator) Query() url.Values {
	q := url.Values{}
	q.Set("month", n.cursor.Format(monthLayout))
	q.Set("view", string(n.Granularity()))
	if n.span != 1 {
		q.Set("span", strconv.Itoa(n.span))
	}
	return q
}

const monthLayout = "2006-01"

// ParseMonth parses a YYYY-MM string into the first day of that month.
func ParseMonth(s string) (calendar.Date, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return calendar.FromTime(t), nil
}

// FromQuery builds a Navigator from month, view and span parameters. Missing
// parameters fall back to defaults.
func FromQuery(q url.Values, defaults Options) (*Navigator, error) {
	opts := defaults
	if v := q.Get("month"); v != "" {
		month, err := ParseMonth(v)
		if err != nil {
			return nil, err
		}
		opts.Today = month
	}
	if v := q.Get("view"); v != "" {
		g, err := timeline.ParseGranularity(v)
		if err != nil {
			return nil, err
		}
		opts.Granularity = g
	}
	if v := q.Get("span"); v != "" {
		span, err := strconv.Atoi(v)
		if err != nil || span < 1 {
			return nil, fmt.Errorf("invalid span %q: expected a positive number of months", v)
		}
		opts.Span = span
	}
	return New(opts)
}

// QueryFor returns the query of the navigator after applying move, leaving
// n unchanged. Dashboards use it to build previous/next links.
func (n *Navigator) QueryFor(move func(*Navigator) error) (url.Values, error) {
	clone, err := n.clone()
	if err != nil {
		return nil, err
	}
	if err := move(clone); err != nil {
		return nil, err
	}
	return clone.Query(), nil
}

func (n *Navigator) clone() (*Navigator, error) {
	fsm, err := newGranularityMachine(n.Granularity(), n.allowed)
	if err != nil {
		return nil, err
	}
	c := *n
	c.fsm = fsm
	return &c, nil
}
