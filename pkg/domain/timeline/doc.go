// Package timeline turns dated tasks into timeline geometry.
//
// The pipeline is GeneratePeriods -> NewMapper -> Layout and TodayMarker,
// composed by Compose. Every step is a pure function of its inputs: nothing
// is cached between calls, so a changed window, granularity or task list is
// handled by simply calling Compose again.
package timeline
