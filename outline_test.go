package deskgraph

import (
	"math"
	"testing"
)

func TestRoundedRectFullRadiusIsEllipse(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 120, Height: 60}
	got := RoundedRectOutline(r, 100, 100, 0.25)
	want := EllipseOutline(r, 0.25)
	if len(got.Contours) != 1 || len(got.Contours[0].Points) != len(want.Contours[0].Points) {
		t.Fatalf("rounded rect = %d contours, want the ellipse", len(got.Contours))
	}
	for i, p := range got.Contours[0].Points {
		q := want.Contours[0].Points[i]
		assertNear(t, "x", p.X, q.X)
		assertNear(t, "y", p.Y, q.Y)
	}
}

func TestRoundedRectZeroRadiusIsRect(t *testing.T) {
	r := Rect{Width: 30, Height: 20}
	got := RoundedRectOutline(r, 0, 5, 0.25)
	if n := len(got.Contours[0].Points); n != 4 {
		t.Errorf("%d points, want 4", n)
	}
	assertNear(t, "area", math.Abs(got.Area()), 600)
}

func TestRoundedRectCorners(t *testing.T) {
	o := RoundedRectOutline(Rect{Width: 100, Height: 100}, 20, 20, 0.1)
	if o.Contains(Vec2{1, 1}) {
		t.Error("corner point is inside")
	}
	if !o.Contains(Vec2{50, 1}) || !o.Contains(Vec2{1, 50}) {
		t.Error("edge midpoints are outside")
	}
	want := 100*100 - (4-math.Pi)*20*20
	if a := math.Abs(o.Area()); math.Abs(a-want)/want > 0.01 {
		t.Errorf("area = %v, want about %v", a, want)
	}
}

func TestEllipseOutline(t *testing.T) {
	o := EllipseOutline(Rect{Width: 200, Height: 100}, 0.05)
	if !o.Contains(Vec2{100, 50}) {
		t.Error("center is outside")
	}
	if o.Contains(Vec2{5, 5}) {
		t.Error("box corner is inside")
	}
	want := math.Pi * 100 * 50
	if a := math.Abs(o.Area()); math.Abs(a-want)/want > 0.01 {
		t.Errorf("area = %v, want about %v", a, want)
	}
	if !EllipseOutline(Rect{Width: 0, Height: 10}, 0.1).Empty() {
		t.Error("zero-width ellipse is not empty")
	}
}

func TestArcOutlineZeroSweepIsEmpty(t *testing.T) {
	tests := []struct{ start, end float64 }{
		{0, 0},
		{45, 45},
		{0, 360},
		{-90, 270},
	}
	for _, tt := range tests {
		o := ArcOutline(Vec2{}, 10, 10, tt.start, tt.end, true, true, 0.1)
		if !o.Empty() {
			t.Errorf("arc %v..%v is not empty", tt.start, tt.end)
		}
		if o.Contains(Vec2{}) {
			t.Errorf("empty arc %v..%v contains a point", tt.start, tt.end)
		}
	}
}

func TestArcOutlineChord(t *testing.T) {
	// Clockwise from +X to +Y sweeps the lower right quadrant on screen.
	o := ArcOutline(Vec2{}, 10, 10, 0, 90, true, true, 0.05)
	if !o.Contains(Vec2{6, 6}) {
		t.Error("point between chord and arc is outside")
	}
	if o.Contains(Vec2{3, 3}) {
		t.Error("point on the center side of the chord is inside")
	}
	if o.Contains(Vec2{-6, -6}) {
		t.Error("point in the opposite quadrant is inside")
	}

	// Counter-clockwise covers the other three quadrants.
	ccw := ArcOutline(Vec2{}, 10, 10, 0, 90, false, true, 0.05)
	if !ccw.Contains(Vec2{-6, -6}) {
		t.Error("counter-clockwise arc misses the opposite quadrant")
	}
	if ccw.Contains(Vec2{6, 6}) {
		t.Error("counter-clockwise arc covers the clockwise segment")
	}
}

func TestOutlineWindingNonzero(t *testing.T) {
	var o Outline
	o.Append(RectOutline(Rect{Width: 10, Height: 10}))
	o.Append(RectOutline(Rect{X: 5, Width: 10, Height: 10}))
	if w := o.Winding(Vec2{7, 5}); w != 2 {
		t.Errorf("winding in overlap = %d, want 2", w)
	}
	if !o.Contains(Vec2{7, 5}) {
		t.Error("overlap not contained under nonzero")
	}
	if w := o.Winding(Vec2{20, 5}); w != 0 {
		t.Errorf("winding outside = %d, want 0", w)
	}
}

func TestOutlineOpenContoursHaveNoInterior(t *testing.T) {
	o := Outline{Contours: []Contour{{Points: []Vec2{{0, 0}, {10, 0}, {10, 10}, {0, 10}}}}}
	if o.Contains(Vec2{5, 5}) {
		t.Error("open contour contains a point")
	}
	if o.HasClosed() {
		t.Error("HasClosed on an open contour")
	}
	if o.Empty() {
		t.Error("open contour reported empty")
	}
	if !o.NearEdge(Vec2{5, 1}, 1.5) {
		t.Error("NearEdge missed a point by an open edge")
	}
	if o.NearEdge(Vec2{1, 5}, 0.5) {
		t.Error("NearEdge matched the missing closing edge")
	}
}

func TestOutlineEmpty(t *testing.T) {
	var o Outline
	if !o.Empty() || o.HasClosed() {
		t.Error("zero outline is not empty")
	}
	if b := o.Bounds(); b != (Rect{}) {
		t.Errorf("bounds = %+v, want zero", b)
	}
	if o.Contains(Vec2{}) {
		t.Error("zero outline contains the origin")
	}
}

func TestOutlineTransform(t *testing.T) {
	o := RectOutline(Rect{Width: 10, Height: 20}).Translate(5, 7)
	if b := o.Bounds(); b != (Rect{X: 5, Y: 7, Width: 10, Height: 20}) {
		t.Errorf("translated bounds = %+v", b)
	}
	r := RectOutline(Rect{Width: 10, Height: 20}).Transform(RotateDegrees(90))
	b := r.Bounds()
	assertNear(t, "rotated width", b.Width, 20)
	assertNear(t, "rotated height", b.Height, 10)
	assertNear(t, "rotated area", math.Abs(r.Area()), 200)
}
