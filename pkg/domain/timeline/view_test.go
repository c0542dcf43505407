package timeline

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/frops/planner/pkg/domain/calendar"
	"github.com/frops/planner/pkg/domain/planning"
)

func marchConfig(g Granularity) ViewConfig {
	return ViewConfig{
		WindowStart:  calendar.MustParse("2024-03-01"),
		WindowEnd:    calendar.MustParse("2024-03-31"),
		Granularity:  g,
		WeekStartsOn: StartWeekOn(time.Monday),
	}
}

func TestTodayMarker(t *testing.T) {
	cfg := marchConfig(Week)
	periods, _ := GeneratePeriods(cfg.WindowStart, cfg.WindowEnd, cfg.Granularity, cfg.WeekStart())
	m := NewMapper(periods)

	tests := []struct {
		name    string
		today   string
		visible bool
	}{
		{"inside", "2024-03-13", true},
		{"first day", "2024-03-01", true},
		{"last day", "2024-03-31", true},
		{"before", "2024-02-29", false},
		{"after", "2024-04-01", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			today := calendar.MustParse(tt.today)
			mk := TodayMarker(m, cfg.WindowStart, cfg.WindowEnd, today, 200)
			if mk.Visible != tt.visible {
				t.Fatalf("visible = %v, want %v", mk.Visible, tt.visible)
			}
			if tt.visible && !approx(mk.PixelOffset, m.PositionOf(today)*200) {
				t.Errorf("offset = %v, want %v", mk.PixelOffset, m.PositionOf(today)*200)
			}
		})
	}
}

func TestTodayMarker_TimeOfDayIgnored(t *testing.T) {
	cfg := marchConfig(Month)
	periods, _ := GeneratePeriods(cfg.WindowStart, cfg.WindowEnd, cfg.Granularity, cfg.WeekStart())
	m := NewMapper(periods)

	morning := calendar.FromTime(time.Date(2024, 3, 31, 0, 1, 0, 0, time.UTC))
	night := calendar.FromTime(time.Date(2024, 3, 31, 23, 59, 0, 0, time.UTC))
	a := TodayMarker(m, cfg.WindowStart, cfg.WindowEnd, morning, 200)
	b := TodayMarker(m, cfg.WindowStart, cfg.WindowEnd, night, 200)
	if a != b || !a.Visible {
		t.Errorf("marker changed within a day: %+v vs %+v", a, b)
	}
}

func TestCompose_Month(t *testing.T) {
	tasks := []planning.Task{
		task("FOO-1", "2024-03-10", "2024-03-15"),
		task("BAR-2", "2024-04-01", "2024-04-03"),
	}
	v, err := Compose(marchConfig(Month), tasks, calendar.MustParse("2024-03-13"), Options{})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if len(v.Columns) != 1 || v.Columns[0].Label != "March 2024" {
		t.Fatalf("unexpected columns: %+v", v.Columns)
	}
	if len(v.Separators) != 31 {
		t.Errorf("expected 31 day separators, got %d", len(v.Separators))
	}
	if !v.Separators[0].Boundary || v.Separators[1].Boundary {
		t.Error("only the first day of a period is a boundary")
	}
	if len(v.Tasks) != 1 {
		t.Errorf("expected 1 visible task, got %d", len(v.Tasks))
	}
	if v.Width != 200 || v.Height != 70 {
		t.Errorf("size = %vx%v, want 200x70", v.Width, v.Height)
	}
	if !v.Today.Visible {
		t.Error("expected today marker to be visible")
	}
}

func TestCompose_WeekLabels(t *testing.T) {
	v, err := Compose(marchConfig(Week), nil, calendar.MustParse("2030-01-01"), Options{})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	want := []string{
		"Feb 26 - Mar 3",
		"Mar 4 - Mar 10",
		"Mar 11 - Mar 17",
		"Mar 18 - Mar 24",
		"Mar 25 - Mar 31",
	}
	if len(v.Columns) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(v.Columns))
	}
	for i, w := range want {
		if v.Columns[i].Label != w {
			t.Errorf("column %d label = %q, want %q", i, v.Columns[i].Label, w)
		}
		if v.Columns[i].Left != float64(i)*200 {
			t.Errorf("column %d left = %v", i, v.Columns[i].Left)
		}
	}
	if v.Today.Visible {
		t.Error("expected today marker to be hidden")
	}
	if v.Height != DefaultMargin {
		t.Errorf("empty view height = %v, want %v", v.Height, float64(DefaultMargin))
	}
	if len(v.Tasks) != 0 || v.Tasks == nil {
		t.Errorf("expected empty non-nil task list, got %#v", v.Tasks)
	}
}

func TestCompose_WeekStartDefaultsToMonday(t *testing.T) {
	cfg := marchConfig(Week)
	cfg.WeekStartsOn = nil

	v, err := Compose(cfg, nil, calendar.MustParse("2024-03-13"), Options{})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	first := v.Columns[0].Period.Start
	if first.String() != "2024-02-26" || first.Weekday() != time.Monday {
		t.Errorf("first week starts %s (%s), want Monday 2024-02-26", first, first.Weekday())
	}
	if v.Config.WeekStartsOn == nil || *v.Config.WeekStartsOn != time.Monday {
		t.Errorf("composed config should record the resolved week start, got %v", v.Config.WeekStartsOn)
	}

	cfg.WeekStartsOn = StartWeekOn(time.Sunday)
	v, err = Compose(cfg, nil, calendar.MustParse("2024-03-13"), Options{})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if got := v.Columns[0].Period.Start.String(); got != "2024-02-25" {
		t.Errorf("explicit Sunday start: first week starts %s, want 2024-02-25", got)
	}
}

func TestCompose_InvalidRange(t *testing.T) {
	cfg := marchConfig(Month)
	cfg.WindowStart, cfg.WindowEnd = cfg.WindowEnd, cfg.WindowStart
	_, err := Compose(cfg, nil, cfg.WindowStart, Options{})
	if !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestCompose_Tracer(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tasks := []planning.Task{
		task("FOO-1", "2024-03-10", "2024-03-15"),
		task("FOO-2", "2023-01-01", "2023-01-02"),
	}
	if _, err := Compose(marchConfig(Month), tasks, calendar.MustParse("2024-03-13"), Options{Tracer: NewSlogTracer(logger)}); err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"periods generated", "task placed", "task skipped", "reason=outside_window", "component=timeline"} {
		if !strings.Contains(out, want) {
			t.Errorf("trace output missing %q:\n%s", want, out)
		}
	}
}
