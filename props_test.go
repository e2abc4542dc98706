package deskgraph

import (
	"errors"
	"slices"
	"testing"
)

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want any
	}{
		{"x", "12.5", 12.5},
		{"x", int32(7), 7.0},
		{"show", "yes", true},
		{"show", "0", false},
		{"show", 2, true},
		{"text", 3, "3"},
		{"padding", "4, 8", []float64{4, 8}},
		{"padding", []any{1, 2.5, 3, 4}, []float64{1, 2.5, 3, 4}},
		{"strokeDashes", 2, []float64{2}},
		{"fillColor", "#ff0000", "#ff0000"},
		{"orientation", "Vertical", "Vertical"},
		{"onLeftMouseUp", "save", HandlerToken("save")},
	}
	for _, tt := range tests {
		k, ok := LookupProp(tt.name)
		if !ok {
			t.Fatalf("LookupProp(%q) failed", tt.name)
		}
		v, err := coerceValue(k, tt.raw)
		if err != nil {
			t.Errorf("%s = %v: %v", tt.name, tt.raw, err)
			continue
		}
		got := v.Interface()
		if want, ok := tt.want.([]float64); ok {
			if !slices.Equal(got.([]float64), want) {
				t.Errorf("%s = %v: got %v, want %v", tt.name, tt.raw, got, want)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("%s = %v: got %v (%T), want %v", tt.name, tt.raw, got, got, tt.want)
		}
	}
}

func TestCoerceValueErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want error
	}{
		{"x", "ten", ErrInvalidValue},
		{"x", "12px", ErrInvalidValue},
		{"show", "maybe", ErrInvalidValue},
		{"orientation", "diagonal", ErrInvalidValue},
		{"type", "star", ErrInvalidValue},
		{"padding", []float64{1, 2, 3}, ErrInvalidArity},
		{"transformMatrix", "1 0 0 1", ErrInvalidArity},
		{"strokeDashes", []float64{}, ErrInvalidArity},
		{"strokeDashes", []float64{1, -1}, ErrInvalidValue},
		{"strokeDashes", []float64{0, 0}, ErrInvalidValue},
		{"fillColor", "#12", ErrInvalidValue},
		{"fillColor", 42, ErrInvalidValue},
		{"onLeftMouseUp", 1, ErrInvalidValue},
		{"ops", "a", ErrInvalidValue},
	}
	for _, tt := range tests {
		k, _ := LookupProp(tt.name)
		if _, err := coerceValue(k, tt.raw); !errors.Is(err, tt.want) {
			t.Errorf("%s = %v: err = %v, want %v", tt.name, tt.raw, err, tt.want)
		}
	}
}

func TestCoerceCombineOps(t *testing.T) {
	k, _ := LookupProp("ops")
	v, err := coerceValue(k, []any{
		map[string]any{"id": "a"},
		map[string]any{"id": "b", "mode": "xor", "consume": true},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []CombineOp{{ID: "a"}, {ID: "b", Mode: CombineXor, Consume: true}}
	if got := v.Interface().([]CombineOp); !slices.Equal(got, want) {
		t.Errorf("ops = %v, want %v", got, want)
	}

	for _, bad := range []any{
		[]any{map[string]any{"mode": "xor"}},
		[]any{map[string]any{"id": "a", "mode": "subtract"}},
		[]any{"a"},
	} {
		if _, err := coerceValue(k, bad); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("ops %v: err = %v, want ErrInvalidValue", bad, err)
		}
	}
}

func TestLookupProp(t *testing.T) {
	for name, want := range map[string]PropKey{"fillColor": PropFillColor, "FILLCOLOR": PropFillColor, "x": PropX} {
		if got, ok := LookupProp(name); !ok || got != want {
			t.Errorf("LookupProp(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := LookupProp("sparkle"); ok {
		t.Error("unknown property resolved")
	}
	if PropFillColor.String() != "fillColor" {
		t.Errorf("String() = %q", PropFillColor.String())
	}
}

func TestCompilePatchRejectsWhole(t *testing.T) {
	_, err := compilePatch(Props{"x": 1, "y": "oops"})
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("err = %v, want ErrInvalidValue", err)
	}

	cp, err := compilePatch(Props{"x": 1, "fillColor": nil, "myData": 3})
	if err != nil {
		t.Fatal(err)
	}
	if !cp.has[PropX] || !cp.has[PropFillColor] {
		t.Error("compiled patch is missing known keys")
	}
	if e, ok := cp.lookup(PropFillColor); !ok || !e.unset {
		t.Error("nil value did not compile to an unset")
	}
	if cp.flags&flagTransform == 0 || cp.flags&flagGeometry == 0 {
		t.Errorf("flags = %b, want transform and geometry", cp.flags)
	}
}

func TestCompilePatchRejectsDuplicateNames(t *testing.T) {
	tests := []Props{
		{"hitTest": true, "hitTestEnabled": false},
		{"onLeftDoubleClick": HandlerToken("a"), "onLeftMouseDoubleClick": HandlerToken("b")},
		{"width": 10, "Width": 20},
	}
	for _, p := range tests {
		if _, err := compilePatch(p); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("compilePatch(%v) err = %v, want ErrInvalidValue", p, err)
		}
	}

	cp, err := compilePatch(Props{"hitTestEnabled": false})
	if err != nil {
		t.Fatal(err)
	}
	if e, ok := cp.lookup(PropHitTest); !ok || e.val.b {
		t.Errorf("hitTestEnabled alias = %+v, %v", e, ok)
	}
}

func TestNormalizePadding(t *testing.T) {
	tests := []struct {
		in   []float64
		want [4]float64
	}{
		{[]float64{5}, [4]float64{5, 5, 5, 5}},
		{[]float64{5, 10}, [4]float64{5, 10, 5, 10}},
		{[]float64{1, 2, 3, 4}, [4]float64{1, 2, 3, 4}},
		{nil, [4]float64{}},
	}
	for _, tt := range tests {
		if got := normalizePadding(tt.in); got != tt.want {
			t.Errorf("normalizePadding(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPaddingGrowsBox(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, KindShape, "p", Props{"width": 20, "height": 10, "padding": "5, 10", "backgroundColor": "black"})
	if got := hitID(s, 27, 2); got != "p" {
		t.Errorf("inside the padding = %q, want p", got)
	}
	if got := hitID(s, 31, 2); got != "" {
		t.Errorf("beyond the padding = %q, want miss", got)
	}
}
