package timeline

import (
	"sort"

	"github.com/frops/planner/pkg/domain/calendar"
)

// Mapper converts dates into continuous positions along the timeline axis.
// The integer part of a position is the period index and the fractional part
// is the day offset within that period divided by the period's day count.
//
// A Mapper is immutable and safe for concurrent use.
type Mapper struct {
	periods []Period
}

// NewMapper creates a Mapper over contiguous periods as returned by
// GeneratePeriods.
func NewMapper(periods []Period) *Mapper {
	cp := make([]Period, len(periods))
	copy(cp, periods)
	return &Mapper{periods: cp}
}

// PeriodCount returns the number of periods, which is also the largest
// position the mapper can return.
func (m *Mapper) PeriodCount() int {
	return len(m.periods)
}

// Periods returns a copy of the underlying periods.
func (m *Mapper) Periods() []Period {
	cp := make([]Period, len(m.periods))
	copy(cp, m.periods)
	return cp
}

// PositionOf returns the position of d. Dates before the first period clamp
// to 0 and dates after the last period clamp to PeriodCount().
func (m *Mapper) PositionOf(d calendar.Date) float64 {
	n := len(m.periods)
	if n == 0 || d.Before(m.periods[0].Start) {
		return 0
	}
	if d.After(m.periods[n-1].End) {
		return float64(n)
	}

	i := sort.Search(n, func(i int) bool { return m.periods[i].Start.After(d) }) - 1
	p := m.periods[i]
	return float64(i) + float64(p.Start.DaysUntil(d))/float64(p.Days())
}

// PixelOf returns PositionOf(d) scaled by periodWidth.
func (m *Mapper) PixelOf(d calendar.Date, periodWidth float64) float64 {
	return m.PositionOf(d) * periodWidth
}
