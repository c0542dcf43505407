package timeline

import "github.com/frops/planner/pkg/domain/calendar"

// Marker is the vertical "today" line.
type Marker struct {
	Visible     bool          `json:"visible"`
	PixelOffset float64       `json:"pixelOffset"`
	Date        calendar.Date `json:"date"`
}

// TodayMarker positions today within the window. The marker is hidden when
// today lies outside [windowStart, windowEnd].
func TodayMarker(m *Mapper, windowStart, windowEnd, today calendar.Date, periodWidth float64) Marker {
	if periodWidth <= 0 {
		periodWidth = DefaultPeriodWidth
	}
	if today.IsZero() || today.Before(windowStart) || today.After(windowEnd) {
		return Marker{Date: today}
	}
	return Marker{
		Visible:     true,
		PixelOffset: m.PixelOf(today, periodWidth),
		Date:        today,
	}
}
