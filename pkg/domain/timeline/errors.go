package timeline

import (
	"errors"
	"fmt"

	"github.com/frops/planner/pkg/domain/calendar"
)

var (
	// ErrInvalidRange is matched by every InvalidRangeError.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrUnknownGranularity indicates a granularity other than week or month.
	ErrUnknownGranularity = errors.New("unknown granularity")
)

// InvalidRangeError reports a window whose end precedes its start, or a
// window with a missing bound.
type InvalidRangeError struct {
	Start calendar.Date
	End   calendar.Date
}

func (e *InvalidRangeError) Error() string {
	if e.Start.IsZero() || e.End.IsZero() {
		return fmt.Sprintf("invalid date range %q..%q: both bounds are required", e.Start, e.End)
	}
	return fmt.Sprintf("invalid date range %s..%s: end is before start", e.Start, e.End)
}

// Is allows errors.Is to work with InvalidRangeError.
func (e *InvalidRangeError) Is(target error) bool {
	return target == ErrInvalidRange
}
