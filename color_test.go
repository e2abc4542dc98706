package deskgraph

import (
	"errors"
	"testing"
)

const colorEpsilon = 1e-6

func assertColor(t *testing.T, name string, got, want Color) {
	t.Helper()
	d := [4]float64{got.R - want.R, got.G - want.G, got.B - want.B, got.A - want.A}
	for _, x := range d {
		if x > colorEpsilon || x < -colorEpsilon {
			t.Errorf("%s = %+v, want %+v", name, got, want)
			return
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
	}{
		{"#ff0000", Color{1, 0, 0, 1}},
		{"#F00", Color{1, 0, 0, 1}},
		{"#00ff0080", Color{0, 1, 0, 128.0 / 255}},
		{"#0f08", Color{0, 1, 0, 136.0 / 255}},
		{"rgb(255, 128, 0)", Color{1, 128.0 / 255, 0, 1}},
		{"rgba(0, 0, 255, 128)", Color{0, 0, 1, 128.0 / 255}},
		{"rgba(0, 0, 255, 0.5)", Color{0, 0, 1, 0.5}},
		{"rgb(300, -5, 0)", Color{1, 0, 0, 1}},
		{"Red", Color{1, 0, 0, 1}},
		{"  white ", Color{1, 1, 1, 1}},
		{"transparent", Color{}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		assertColor(t, tt.in, got, tt.want)
	}
}

func TestParseColorErrors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrInvalidValue},
		{"#12", ErrInvalidValue},
		{"#gggggg", ErrInvalidValue},
		{"notacolor", ErrInvalidValue},
		{"rgb(1, 2)", ErrInvalidArity},
		{"rgb(a, b, c)", ErrInvalidValue},
	}
	for _, tt := range tests {
		if _, err := ParseColor(tt.in); !errors.Is(err, tt.want) {
			t.Errorf("ParseColor(%q) err = %v, want %v", tt.in, err, tt.want)
		}
	}
}

func TestParseGradientStops(t *testing.T) {
	tests := []struct {
		in      string
		kind    PaintKind
		angle   float64
		circle  bool
		offsets []float64
	}{
		{"linearGradient(90, red, blue)", PaintLinear, 90, false, []float64{0, 1}},
		{"linearGradient(45deg, red, lime 25%, blue)", PaintLinear, 45, false, []float64{0, 0.25, 1}},
		{"linearGradient(red, lime, blue)", PaintLinear, 0, false, []float64{0, 0.5, 1}},
		{"linearGradient(0, red 10%, lime, white, blue 70%)", PaintLinear, 0, false, []float64{0.1, 0.3, 0.5, 0.7}},
		{"radialGradient(circle, #fff, #000)", PaintRadial, 0, true, []float64{0, 1}},
		{"radialGradient(rgba(0,0,0,0.5), black 80%)", PaintRadial, 0, false, []float64{0, 0.8}},
	}
	for _, tt := range tests {
		cs, err := ParseColorSpec(tt.in)
		if err != nil {
			t.Errorf("ParseColorSpec(%q): %v", tt.in, err)
			continue
		}
		if cs.Kind != tt.kind {
			t.Errorf("%s: kind = %v, want %v", tt.in, cs.Kind, tt.kind)
		}
		if cs.Angle != tt.angle {
			t.Errorf("%s: angle = %v, want %v", tt.in, cs.Angle, tt.angle)
		}
		if cs.Circle != tt.circle {
			t.Errorf("%s: circle = %v, want %v", tt.in, cs.Circle, tt.circle)
		}
		if len(cs.Stops) != len(tt.offsets) {
			t.Errorf("%s: %d stops, want %d", tt.in, len(cs.Stops), len(tt.offsets))
			continue
		}
		for i, off := range tt.offsets {
			assertNear(t, tt.in+" offset", cs.Stops[i].Offset, off)
		}
		if cs.String() != tt.in {
			t.Errorf("String() = %q, want %q", cs.String(), tt.in)
		}
	}
}

func TestParseGradientErrors(t *testing.T) {
	if _, err := ParseColorSpec("linearGradient(90, red)"); !errors.Is(err, ErrInvalidArity) {
		t.Errorf("single stop: err = %v, want ErrInvalidArity", err)
	}
	if _, err := ParseColorSpec("linearGradient(90, red, nope)"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("bad stop: err = %v, want ErrInvalidValue", err)
	}
}

func TestColorSpecAt(t *testing.T) {
	cs, err := ParseColorSpec("linearGradient(0, red, blue)")
	if err != nil {
		t.Fatal(err)
	}
	assertColor(t, "At(-1)", cs.At(-1), Color{1, 0, 0, 1})
	assertColor(t, "At(0.5)", cs.At(0.5), Color{0.5, 0, 0.5, 1})
	assertColor(t, "At(2)", cs.At(2), Color{0, 0, 1, 1})
}

func TestLinearSamplerSpansBox(t *testing.T) {
	cs, _ := ParseColorSpec("linearGradient(0, black, white)")
	s := cs.Resolve(Rect{X: 0, Y: 0, Width: 100, Height: 10})
	assertColor(t, "left", s.ColorAt(Vec2{0, 5}), Color{0, 0, 0, 1})
	assertColor(t, "middle", s.ColorAt(Vec2{50, 5}), Color{0.5, 0.5, 0.5, 1})
	assertColor(t, "right", s.ColorAt(Vec2{100, 5}), Color{1, 1, 1, 1})

	down, _ := ParseColorSpec("linearGradient(90, black, white)")
	s = down.Resolve(Rect{X: 0, Y: 0, Width: 10, Height: 100})
	assertColor(t, "top", s.ColorAt(Vec2{5, 0}), Color{0, 0, 0, 1})
	assertColor(t, "bottom", s.ColorAt(Vec2{5, 100}), Color{1, 1, 1, 1})
}

func TestRadialSampler(t *testing.T) {
	cs, _ := ParseColorSpec("radialGradient(circle, white, black)")
	s := cs.Resolve(Rect{X: 0, Y: 0, Width: 200, Height: 100})
	assertColor(t, "center", s.ColorAt(Vec2{100, 50}), Color{1, 1, 1, 1})
	assertColor(t, "radius", s.ColorAt(Vec2{150, 50}), Color{0, 0, 0, 1})
}

func TestColorSpecVisible(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"red", true},
		{"transparent", false},
		{"rgba(1,2,3,0)", false},
		{"linearGradient(0, transparent, transparent)", false},
		{"linearGradient(0, transparent, red)", true},
	}
	for _, tt := range tests {
		cs, err := ParseColorSpec(tt.in)
		if err != nil {
			t.Fatalf("ParseColorSpec(%q): %v", tt.in, err)
		}
		if got := cs.Visible(); got != tt.want {
			t.Errorf("Visible(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestColorRGBAIsPremultiplied(t *testing.T) {
	c := Color{1, 0, 0, 0.5}.RGBA()
	if c.R != 128 || c.A != 128 || c.G != 0 {
		t.Errorf("RGBA() = %+v, want {128 0 0 128}", c)
	}
}

func TestSolidColorString(t *testing.T) {
	if got := SolidColor(Color{1, 0, 0, 1}).String(); got != "rgba(255,0,0,255)" {
		t.Errorf("String() = %q", got)
	}
}
