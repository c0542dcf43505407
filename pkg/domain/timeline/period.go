package timeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/frops/planner/pkg/domain/calendar"
)

// Granularity is the calendar unit of one timeline column.
type Granularity string

const (
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ParseGranularity accepts "week"/"weeks" and "month"/"months".
func ParseGranularity(s string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "week", "weeks":
		return Week, nil
	case "month", "months":
		return Month, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownGranularity, s)
	}
}

// Period is one column of the grid. Start and End are both inclusive.
type Period struct {
	Start calendar.Date `json:"start"`
	End   calendar.Date `json:"end"`
}

// Days returns the number of calendar days in the period.
func (p Period) Days() int {
	return p.Start.DaysUntil(p.End) + 1
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d calendar.Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// GeneratePeriods returns the whole weeks or months that intersect
// [start, end], in order. The first period starts on or before start and the
// last ends on or after end; periods are never partial.
func GeneratePeriods(start, end calendar.Date, g Granularity, weekStartsOn time.Weekday) ([]Period, error) {
	if start.IsZero() || end.IsZero() || end.Before(start) {
		return nil, &InvalidRangeError{Start: start, End: end}
	}

	var periods []Period
	switch g {
	case Week:
		first := start.StartOfWeek(weekStartsOn)
		periods = make([]Period, 0, first.DaysUntil(end)/7+1)
		for cur := first; !cur.After(end); cur = cur.AddDays(7) {
			periods = append(periods, Period{Start: cur, End: cur.AddDays(6)})
		}
	case Month:
		for cur := start.StartOfMonth(); !cur.After(end); cur = cur.AddMonths(1) {
			periods = append(periods, Period{Start: cur, End: cur.EndOfMonth()})
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGranularity, g)
	}

	return periods, nil
}
