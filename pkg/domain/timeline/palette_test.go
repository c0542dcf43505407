package timeline

import "testing"

func TestPalette_ColorFor(t *testing.T) {
	p := DefaultPalette()
	tests := []struct {
		code string
		want Color
	}{
		{"FOO-1", Blue},
		{"ABC-22", Green},
		{"BAR-3", Purple},
		{"ZZZ-4", Gray},
		{"FOO", Gray},
		{"", Gray},
		{"foo-1", Gray},
	}
	for _, tt := range tests {
		if got := p.ColorFor(tt.code); got != tt.want {
			t.Errorf("ColorFor(%q) = %+v, want %+v", tt.code, got, tt.want)
		}
	}
}

func TestPalette_ZeroValue(t *testing.T) {
	var p Palette
	if got := p.ColorFor("BAR-1"); got != Purple {
		t.Errorf("zero palette ColorFor = %+v, want purple", got)
	}
	if p.Fallback() != Gray {
		t.Errorf("zero palette fallback = %+v", p.Fallback())
	}
}

func TestPalette_WithDoesNotMutate(t *testing.T) {
	base := DefaultPalette()
	red := Color{Name: "red", Hex: "#ef4444"}
	next := base.With("FOO", red)

	if base.ColorFor("FOO-1") != Blue {
		t.Error("With mutated the original palette")
	}
	if next.ColorFor("FOO-1") != red {
		t.Error("With did not apply the override")
	}
}

func TestNewPalette_DefaultFallback(t *testing.T) {
	p := NewPalette(map[string]Color{"OPS": Green}, Color{})
	if p.ColorFor("DEV-1") != Gray {
		t.Errorf("expected gray fallback, got %+v", p.ColorFor("DEV-1"))
	}
	if len(p.Teams()) != 1 {
		t.Errorf("expected 1 team, got %d", len(p.Teams()))
	}
}
