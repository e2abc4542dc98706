package deskgraph

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func hitID(s *Scene, x, y float64) string {
	r := s.HitTest(Vec2{x, y})
	if r == nil {
		return ""
	}
	return r.Ref.ID
}

func TestHitTestBarFilledPortionOnly(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, KindBar, "bar", Props{"width": 200, "height": 20, "value": 0.5, "backgroundColor": "#333"})

	if got := hitID(s, 90, 10); got != "bar" {
		t.Errorf("hit at x=90 = %q, want bar", got)
	}
	if got := hitID(s, 150, 10); got != "" {
		t.Errorf("hit at x=150 = %q, want miss", got)
	}

	// Opting the background in makes the empty portion hit.
	if err := s.SetProperties("bar", Props{"hitTestBackground": true}); err != nil {
		t.Fatal(err)
	}
	if got := hitID(s, 150, 10); got != "bar" {
		t.Errorf("hit at x=150 with background = %q, want bar", got)
	}
}

func TestHitTestVerticalBarFillsFromBottom(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, KindBar, "bar", Props{"width": 20, "height": 100, "value": 0.25, "orientation": "vertical"})

	if got := hitID(s, 10, 90); got != "bar" {
		t.Errorf("hit near bottom = %q, want bar", got)
	}
	if got := hitID(s, 10, 10); got != "" {
		t.Errorf("hit near top = %q, want miss", got)
	}
}

func TestHitTestDisabledNeverHits(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, KindShape, "under", Props{"width": 100, "height": 100, "fillColor": "blue"})
	mustAdd(t, s, KindShape, "ghost", Props{"width": 100, "height": 100, "fillColor": "red", "hitTest": false})

	for _, p := range []Vec2{{1, 1}, {50, 50}, {99, 99}} {
		r := s.HitTest(p)
		if r == nil {
			t.Fatalf("HitTest(%v) = nil, want under", p)
		}
		if r.Ref.ID == "ghost" {
			t.Errorf("HitTest(%v) returned element with hit testing disabled", p)
		}
	}
}

func TestHitTestDisabledContainerStillHitsChildren(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, KindShape, "C", Props{"x": 10, "y": 10, "width": 100, "height": 100, "fillColor": "gray", "hitTest": false})
	mustAdd(t, s, KindShape, "child", Props{"container": "C", "width": 20, "height": 20, "fillColor": "white"})

	if got := hitID(s, 15, 15); got != "child" {
		t.Errorf("hit on child = %q, want child", got)
	}
	if got := hitID(s, 80, 80); got != "" {
		t.Errorf("hit on disabled container = %q, want miss", got)
	}
}

func TestHitTestReversePaintOrder(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, KindShape, "back", Props{"width": 100, "height": 100, "fillColor": "blue"})
	mustAdd(t, s, KindShape, "front", Props{"x": 50, "width": 100, "height": 100, "fillColor": "red"})

	if got := hitID(s, 75, 50); got != "front" {
		t.Errorf("overlap hit = %q, want front", got)
	}
	if got := hitID(s, 25, 50); got != "back" {
		t.Errorf("back-only hit = %q, want back", got)
	}

	// Children paint after their container but before its later siblings.
	mustAdd(t, s, KindShape, "child", Props{"container": "back", "x": 10, "width": 60, "height": 30, "fillColor": "green"})
	if got := hitID(s, 20, 10); got != "child" {
		t.Errorf("child hit = %q, want child", got)
	}
	if got := hitID(s, 60, 10); got != "front" {
		t.Errorf("child under front sibling = %q, want front", got)
	}
}

func TestHitTestHiddenSubtree(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, KindShape, "C", Props{"width": 100, "height": 100, "fillColor": "gray", "show": false})
	mustAdd(t, s, KindShape, "child", Props{"container": "C", "width": 20, "height": 20, "fillColor": "white"})

	if got := hitID(s, 10, 10); got != "" {
		t.Errorf("hit in hidden subtree = %q, want miss", got)
	}
}

func TestHitTestRoundedRectEqualsEllipse(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, KindShape, "pill", Props{"width": 120, "height": 60, "radius": 60, "fillColor": "white"})

	corners := []Vec2{{0.5, 0.5}, {119.5, 0.5}, {0.5, 59.5}, {119.5, 59.5}}
	for _, p := range corners {
		if r := s.HitTest(p); r != nil {
			t.Errorf("corner %v hit %q, want miss", p, r.Ref.ID)
		}
	}
	if got := hitID(s, 60, 30); got != "pill" {
		t.Errorf("center hit = %q, want pill", got)
	}
}

func TestHitTestExactGeometryNotBounds(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, KindShape, "tri", Props{"type": "path", "pathData": "M0 0 L100 0 L0 100 Z", "fillColor": "white"})

	if got := hitID(s, 20, 20); got != "tri" {
		t.Errorf("inside triangle = %q, want tri", got)
	}
	if got := hitID(s, 80, 80); got != "" {
		t.Errorf("outside triangle, inside bounds = %q, want miss", got)
	}
}

func TestHitTestTransparentFillMisses(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, KindShape, "clear", Props{"width": 50, "height": 50, "fillColor": "rgba(0,0,0,0)"})
	if got := hitID(s, 25, 25); got != "" {
		t.Errorf("transparent fill = %q, want miss", got)
	}
}

func TestHitTestStrokeOnly(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, KindShape, "ring", Props{"x": 10, "y": 10, "width": 100, "height": 100, "strokeColor": "white", "strokeWidth": 4})

	if got := hitID(s, 10, 60); got != "ring" {
		t.Errorf("on stroke = %q, want ring", got)
	}
	if got := hitID(s, 60, 60); got != "" {
		t.Errorf("inside unfilled shape = %q, want miss", got)
	}
}

// bezierAt returns the point and unit normal of the Bézier with control
// points p at t.
func bezierAt(p []Vec2, t float64) (pt, normal Vec2) {
	pts := append([]Vec2(nil), p...)
	var d Vec2
	for n := len(pts) - 1; n > 0; n-- {
		if n == 1 {
			d = Vec2{pts[1].X - pts[0].X, pts[1].Y - pts[0].Y}
		}
		for i := 0; i < n; i++ {
			pts[i] = Vec2{pts[i].X + (pts[i+1].X-pts[i].X)*t, pts[i].Y + (pts[i+1].Y-pts[i].Y)*t}
		}
	}
	l := math.Hypot(d.X, d.Y)
	return pts[0], Vec2{-d.Y / l, d.X / l}
}

func TestHitTestQuadraticCurveStroke(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, KindShape, "q", Props{
		"type": "curve", "startX": 0, "startY": 0, "controlX": 50, "controlY": 100, "endX": 100, "endY": 0,
		"strokeColor": "white", "strokeWidth": 2,
	})
	ctrl := []Vec2{{0, 0}, {50, 100}, {100, 0}}
	for _, tt := range []float64{0.2, 0.5, 0.8} {
		pt, n := bezierAt(ctrl, tt)
		for _, off := range []float64{-0.4, 0.4} {
			if got := hitID(s, pt.X+n.X*off, pt.Y+n.Y*off); got != "q" {
				t.Errorf("t=%v offset %v = %q, want q", tt, off, got)
			}
		}
		if got := hitID(s, pt.X+n.X*3, pt.Y+n.Y*3); got != "" {
			t.Errorf("t=%v offset 3 = %q, want miss", tt, got)
		}
	}
	// Between the curve and its chord, with no fill.
	if got := hitID(s, 50, 20); got != "" {
		t.Errorf("unfilled hull = %q, want miss", got)
	}
}

func TestHitTestCubicCurveFill(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, KindShape, "c", Props{
		"type": "curve", "curveType": "cubic",
		"startX": 0, "startY": 0, "controlX": 0, "controlY": 100,
		"control2X": 100, "control2Y": 100, "endX": 100, "endY": 0,
		"fillColor": "white",
	})
	ctrl := []Vec2{{0, 0}, {0, 100}, {100, 100}, {100, 0}}
	for _, tt := range []float64{0.25, 0.5, 0.75} {
		pt, n := bezierAt(ctrl, tt)
		// The normal points out of the closed region for this winding.
		if got := hitID(s, pt.X-n.X*0.4, pt.Y-n.Y*0.4); got != "c" {
			t.Errorf("t=%v just inside = %q, want c", tt, got)
		}
		if got := hitID(s, pt.X+n.X*0.4, pt.Y+n.Y*0.4); got != "" {
			t.Errorf("t=%v just outside = %q, want miss", tt, got)
		}
	}
}

func TestHitResultCoordinates(t *testing.T) {
	s := NewScene(WithWindowOrigin(Vec2{1000, 500}))
	mustAdd(t, s, KindShape, "box", Props{"x": 20, "y": 40, "width": 200, "height": 100, "fillColor": "white"})

	r := s.HitTest(Vec2{70, 65})
	if r == nil {
		t.Fatal("HitTest = nil")
	}
	assertNear(t, "local x", r.Local.X, 50)
	assertNear(t, "local y", r.Local.Y, 25)
	assertNear(t, "percent x", r.Percent.X, 25)
	assertNear(t, "percent y", r.Percent.Y, 25)
	assertNear(t, "client x", r.Client.X, 70)
	assertNear(t, "screen x", r.Screen.X, 1070)
	assertNear(t, "screen y", r.Screen.Y, 565)
}

func TestHitResultCursor(t *testing.T) {
	s := NewScene()
	mustAdd(t, s, KindShape, "plain", Props{"width": 10, "height": 10, "fillColor": "white"})
	mustAdd(t, s, KindShape, "button", Props{"x": 20, "width": 10, "height": 10, "fillColor": "white", "onLeftMouseUp": HandlerToken("t")})
	mustAdd(t, s, KindShape, "custom", Props{"x": 40, "width": 10, "height": 10, "fillColor": "white", "cursor": "crosshair"})

	tests := []struct {
		x    float64
		want string
	}{
		{5, ""},
		{25, "hand"},
		{45, "crosshair"},
	}
	for _, tt := range tests {
		r := s.HitTest(Vec2{tt.x, 5})
		if r == nil {
			t.Fatalf("HitTest(%v) = nil", tt.x)
		}
		if r.Cursor != tt.want {
			t.Errorf("cursor at x=%v = %q, want %q", tt.x, r.Cursor, tt.want)
		}
	}
}

func TestHitTestImageMask(t *testing.T) {
	mask := image.NewAlpha(image.Rect(0, 0, 2, 1))
	mask.SetAlpha(0, 0, color.Alpha{A: 255}) // left half opaque

	s := NewScene()
	ref := mustAdd(t, s, KindImage, "img", Props{"width": 100, "height": 50})
	e := &s.elems[ref.slot]
	e.res = resourceState{resolved: true, width: 2, height: 1, mask: mask}

	if got := hitID(s, 25, 25); got != "img" {
		t.Errorf("opaque half = %q, want img", got)
	}
	if got := hitID(s, 75, 25); got != "" {
		t.Errorf("transparent half = %q, want miss", got)
	}
}

func TestHitTestEmptyScene(t *testing.T) {
	if r := NewScene().HitTest(Vec2{1, 1}); r != nil {
		t.Errorf("HitTest on empty scene = %+v, want nil", r)
	}
}
