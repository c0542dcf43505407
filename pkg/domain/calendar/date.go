// Package calendar provides a day-precision Date type and the week/month
// arithmetic used to lay out timelines.
package calendar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const layout = "2006-01-02"

// Date is a calendar date without time of day. The zero value is the
// "unknown" date and sorts before every real date.
type Date struct {
	t time.Time
}

// Clock returns the current instant. Production code passes time.Now.
type Clock func() time.Time

// New creates a Date from year, month and day. Out-of-range values are
// normalized the way time.Date normalizes them.
func New(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates t to its calendar day in t's own location.
func FromTime(t time.Time) Date {
	if t.IsZero() {
		return Date{}
	}
	return New(t.Year(), t.Month(), t.Day())
}

// Today returns the current local calendar day according to clock.
func Today(clock Clock) Date {
	if clock == nil {
		clock = time.Now
	}
	return FromTime(clock())
}

// Parse parses a YYYY-MM-DD string. 0001-01-01 is the zero Date, which
// stands for an unknown date, so it is rejected.
func Parse(s string) (Date, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	if t.IsZero() {
		return Date{}, fmt.Errorf("invalid date %q: reserved for unknown dates", s)
	}
	return Date{t}, nil
}

// MustParse is Parse for literals in tests and tables.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseLenient returns the zero Date for unparseable input.
func ParseLenient(s string) Date {
	d, err := Parse(s)
	if err != nil {
		return Date{}
	}
	return d
}

func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time { return d.t }

// String returns the date as YYYY-MM-DD, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(layout)
}

// Format formats the date with a time layout.
func (d Date) Format(layout string) string { return d.t.Format(layout) }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }
func (d Date) After(o Date) bool  { return d.t.After(o.t) }
func (d Date) Equal(o Date) bool  { return d.t.Equal(o.t) }

// Compare returns -1, 0 or +1.
func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

// AddDays returns d shifted by n days.
func (d Date) AddDays(n int) Date { return Date{d.t.AddDate(0, 0, n)} }

// AddMonths shifts d by n months, clamping the day to the target month's
// length so Jan 31 + 1 month is the last day of February.
func (d Date) AddMonths(n int) Date {
	first := New(d.Year(), d.Month()+time.Month(n), 1)
	day := min(d.Day(), first.DaysInMonth())
	return New(first.Year(), first.Month(), day)
}

// DaysUntil returns the number of days from d to o (negative if o is earlier).
func (d Date) DaysUntil(o Date) int {
	return int(o.t.Sub(d.t).Hours() / 24)
}

// StartOfWeek returns the most recent day on or before d that falls on weekStartsOn.
func (d Date) StartOfWeek(weekStartsOn time.Weekday) Date {
	back := (int(d.Weekday()) - int(weekStartsOn) + 7) % 7
	return d.AddDays(-back)
}

// EndOfWeek returns the last day of the week containing d.
func (d Date) EndOfWeek(weekStartsOn time.Weekday) Date {
	return d.StartOfWeek(weekStartsOn).AddDays(6)
}

func (d Date) StartOfMonth() Date { return New(d.Year(), d.Month(), 1) }

func (d Date) EndOfMonth() Date { return New(d.Year(), d.Month()+1, 0) }

func (d Date) DaysInMonth() int { return d.EndOfMonth().Day() }

// Min returns the earlier of a and b.
func Min(a, b Date) Date {
	if b.Before(a) {
		return b
	}
	return a
}

// Max returns the later of a and b.
func Max(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler. Empty strings decode to the zero Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Date) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Value == "" {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseWeekday accepts full or three-letter English weekday names.
func ParseWeekday(s string) (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		name := wd.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, name[:3]) {
			return wd, nil
		}
	}
	return time.Monday, fmt.Errorf("unknown weekday %q", s)
}
