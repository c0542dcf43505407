package navigation_test

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/frops/planner/pkg/domain/calendar"
	"github.com/frops/planner/pkg/domain/navigation"
	"github.com/frops/planner/pkg/domain/timeline"
)

func newNavigator(t *testing.T, opts navigation.Options) *navigation.Navigator {
	t.Helper()
	if opts.Today.IsZero() {
		opts.Today = calendar.MustParse("2024-03-13")
	}
	n, err := navigation.New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return n
}

func TestNavigator_Window(t *testing.T) {
	n := newNavigator(t, navigation.Options{})
	start, end := n.Window()
	if start.String() != "2024-03-01" || end.String() != "2024-03-31" {
		t.Errorf("window = %s..%s, want March 2024", start, end)
	}
	if n.Granularity() != timeline.Month {
		t.Errorf("default granularity = %s, want month", n.Granularity())
	}
}

func TestNavigator_Span(t *testing.T) {
	n := newNavigator(t, navigation.Options{Span: 3, Today: calendar.MustParse("2024-12-05")})
	start, end := n.Window()
	if start.String() != "2024-12-01" || end.String() != "2025-02-28" {
		t.Errorf("window = %s..%s", start, end)
	}

	if _, err := navigation.New(navigation.Options{Today: start, Span: navigation.MaxSpan + 1}); err == nil {
		t.Error("expected error for span over the maximum")
	}
}

func TestNavigator_PreviousNextToday(t *testing.T) {
	n := newNavigator(t, navigation.Options{Today: calendar.MustParse("2024-01-31")})

	n.Next()
	if got := n.Cursor().String(); got != "2024-02-01" {
		t.Errorf("after Next cursor = %s, want 2024-02-01", got)
	}
	_, end := n.Window()
	if end.String() != "2024-02-29" {
		t.Errorf("February window ends %s", end)
	}

	n.Previous()
	n.Previous()
	if got := n.Cursor().String(); got != "2023-12-01" {
		t.Errorf("after Previous cursor = %s, want 2023-12-01", got)
	}

	n.Today(calendar.MustParse("2024-07-19"))
	if got := n.Cursor().String(); got != "2024-07-01" {
		t.Errorf("after Today cursor = %s, want 2024-07-01", got)
	}
}

func TestNavigator_GranularityTransitions(t *testing.T) {
	n := newNavigator(t, navigation.Options{Granularity: timeline.Month})

	if err := n.ZoomOut(); !errors.Is(err, navigation.ErrTransitionNotAllowed) {
		t.Fatalf("ZoomOut from month: expected ErrTransitionNotAllowed, got %v", err)
	}
	if err := n.ZoomIn(); err != nil {
		t.Fatalf("ZoomIn failed: %v", err)
	}
	if n.Granularity() != timeline.Week {
		t.Errorf("after ZoomIn granularity = %s, want week", n.Granularity())
	}
	if err := n.ZoomIn(); err == nil {
		t.Error("ZoomIn from week should fail")
	}
	if err := n.Toggle(); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if n.Granularity() != timeline.Month {
		t.Errorf("after Toggle granularity = %s, want month", n.Granularity())
	}
}

func TestNavigator_AllowedGranularities(t *testing.T) {
	n := newNavigator(t, navigation.Options{Allowed: []timeline.Granularity{timeline.Month}})
	if err := n.Toggle(); !errors.Is(err, navigation.ErrTransitionNotAllowed) {
		t.Fatalf("expected toggle to be refused, got %v", err)
	}
	if n.Granularity() != timeline.Month {
		t.Errorf("granularity changed to %s", n.Granularity())
	}

	_, err := navigation.New(navigation.Options{
		Today:       calendar.MustParse("2024-03-01"),
		Granularity: timeline.Week,
		Allowed:     []timeline.Granularity{timeline.Month},
	})
	if err == nil {
		t.Error("expected error for disabled initial granularity")
	}
}

func TestNavigator_ViewConfigComposes(t *testing.T) {
	n := newNavigator(t, navigation.Options{Granularity: timeline.Week, WeekStartsOn: timeline.StartWeekOn(time.Sunday)})
	cfg := n.ViewConfig()
	if cfg.WeekStart() != time.Sunday || cfg.Granularity != timeline.Week {
		t.Fatalf("unexpected config %+v", cfg)
	}
	v, err := timeline.Compose(cfg, nil, calendar.MustParse("2024-03-13"), timeline.Options{})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if v.Columns[0].Period.Start.String() != "2024-02-25" {
		t.Errorf("first week starts %s, want 2024-02-25", v.Columns[0].Period.Start)
	}
}

func TestNavigator_WeekStartDefaultsToMonday(t *testing.T) {
	n := newNavigator(t, navigation.Options{Granularity: timeline.Week})
	cfg := n.ViewConfig()
	if cfg.WeekStartsOn == nil || *cfg.WeekStartsOn != time.Monday {
		t.Fatalf("unset week start resolved to %v, want Monday", cfg.WeekStartsOn)
	}
	v, err := timeline.Compose(cfg, nil, calendar.MustParse("2024-03-13"), timeline.Options{})
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}
	if got := v.Columns[0].Period.Start.String(); got != "2024-02-26" {
		t.Errorf("first week starts %s, want 2024-02-26", got)
	}
}

func TestNavigator_QueryRoundTrip(t *testing.T) {
	n := newNavigator(t, navigation.Options{Granularity: timeline.Week, Span: 2})
	n.Next()

	q := n.Query()
	if q.Get("month") != "2024-04" || q.Get("view") != "week" || q.Get("span") != "2" {
		t.Fatalf("unexpected query %v", q)
	}

	back, err := navigation.FromQuery(q, navigation.Options{Today: calendar.MustParse("2000-01-01")})
	if err != nil {
		t.Fatalf("FromQuery failed: %v", err)
	}
	if !back.Cursor().Equal(n.Cursor()) || back.Granularity() != n.Granularity() || back.Span() != n.Span() {
		t.Errorf("round trip mismatch: %v vs %v", back.Query(), q)
	}
}

func TestFromQuery(t *testing.T) {
	defaults := navigation.Options{Today: calendar.MustParse("2024-03-13")}
	tests := []struct {
		name      string
		query     string
		wantMonth string
		wantView  timeline.Granularity
		wantErr   bool
	}{
		{"defaults", "", "2024-03-01", timeline.Month, false},
		{"month and view", "month=2023-11&view=week", "2023-11-01", timeline.Week, false},
		{"plural view", "view=weeks", "2024-03-01", timeline.Week, false},
		{"bad month", "month=2023-13", "", "", true},
		{"bad view", "view=year", "", "", true},
		{"bad span", "span=0", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			n, err := navigation.FromQuery(q, defaults)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromQuery error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if n.Cursor().String() != tt.wantMonth {
				t.Errorf("cursor = %s, want %s", n.Cursor(), tt.wantMonth)
			}
			if n.Granularity() != tt.wantView {
				t.Errorf("view = %s, want %s", n.Granularity(), tt.wantView)
			}
		})
	}
}

func TestNavigator_QueryFor(t *testing.T) {
	n := newNavigator(t, navigation.Options{})
	next, err := n.QueryFor(func(c *navigation.Navigator) error { c.Next(); return nil })
	if err != nil {
		t.Fatalf("QueryFor failed: %v", err)
	}
	if next.Get("month") != "2024-04" {
		t.Errorf("next month = %s, want 2024-04", next.Get("month"))
	}
	if n.Cursor().String() != "2024-03-01" {
		t.Error("QueryFor moved the original navigator")
	}

	if _, err := n.QueryFor((*navigation.Navigator).ZoomOut); err == nil {
		t.Error("expected zoom out from month to fail")
	}
}
