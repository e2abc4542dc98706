package deskgraph

import "math"

// Contour is one flattened sub-path. Closed contours have an implicit edge
// from the last point back to the first.
type Contour struct {
	Points []Vec2
	Closed bool
}

// Outline is the resolved vector geometry of an element: zero or more
// contours in a single coordinate space. The zero Outline is empty, which is
// a valid state that paints nothing and never hit-tests positive.
type Outline struct {
	Contours []Contour
}

// Empty reports whether the outline encloses no area and has no open runs.
func (o Outline) Empty() bool {
	for _, c := range o.Contours {
		if len(c.Points) >= 2 {
			return false
		}
	}
	return true
}

// HasClosed reports whether the outline has at least one closed contour with
// three or more points.
func (o Outline) HasClosed() bool {
	for _, c := range o.Contours {
		if c.Closed && len(c.Points) >= 3 {
			return true
		}
	}
	return false
}

// Bounds returns the axis-aligned bounds of every point in the outline.
func (o Outline) Bounds() Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range o.Contours {
		for _, p := range c.Points {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	if minX > maxX {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Winding returns the nonzero winding number of the closed contours around p.
func (o Outline) Winding(p Vec2) int {
	w := 0
	for _, c := range o.Contours {
		if !c.Closed || len(c.Points) < 3 {
			continue
		}
		w += contourWinding(c.Points, p)
	}
	return w
}

// Contains reports whether p lies inside the closed contours under the
// nonzero fill rule.
func (o Outline) Contains(p Vec2) bool {
	return o.Winding(p) != 0
}

func contourWinding(pts []Vec2, p Vec2) int {
	w := 0
	n := len(pts)
	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		if a.Y <= p.Y {
			if b.Y > p.Y && cross(a, b, p) > 0 {
				w++
			}
		} else if b.Y <= p.Y && cross(a, b, p) < 0 {
			w--
		}
	}
	return w
}

// cross is the z component of (b-a) x (p-a).
func cross(a, b, p Vec2) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (p.X-a.X)*(b.Y-a.Y)
}

// Area returns the signed area of the closed contours. Positive area means
// the contour turns clockwise on screen (Y down).
func (o Outline) Area() float64 {
	var total float64
	for _, c := range o.Contours {
		if c.Closed {
			total += signedArea(c.Points)
		}
	}
	return total
}

func signedArea(pts []Vec2) float64 {
	var a float64
	n := len(pts)
	for i := 0; i < n; i++ {
		p, q := pts[i], pts[(i+1)%n]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// Transform returns a copy of the outline with every point mapped by m.
func (o Outline) Transform(m Matrix) Outline {
	out := Outline{Contours: make([]Contour, len(o.Contours))}
	for i, c := range o.Contours {
		pts := make([]Vec2, len(c.Points))
		for j, p := range c.Points {
			pts[j] = m.Apply(p)
		}
		out.Contours[i] = Contour{Points: pts, Closed: c.Closed}
	}
	return out
}

// Translate returns a copy of the outline shifted by (dx, dy).
func (o Outline) Translate(dx, dy float64) Outline {
	return o.Transform(Translate(dx, dy))
}

// Append adds every contour of other to o.
func (o *Outline) Append(other Outline) {
	o.Contours = append(o.Contours, other.Contours...)
}

// NearEdge reports whether p lies within dist of any edge of the outline,
// open or closed.
func (o Outline) NearEdge(p Vec2, dist float64) bool {
	d2 := dist * dist
	for _, c := range o.Contours {
		n := len(c.Points)
		if n == 1 && sqDist(c.Points[0], p) <= d2 {
			return true
		}
		last := n - 1
		if c.Closed {
			last = n
		}
		for i := 0; i < last; i++ {
			if segmentDistSq(c.Points[i], c.Points[(i+1)%n], p) <= d2 {
				return true
			}
		}
	}
	return false
}

func sqDist(a, b Vec2) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// segmentDistSq returns the squared distance from p to segment ab.
func segmentDistSq(a, b, p Vec2) float64 {
	abx, aby := b.X-a.X, b.Y-a.Y
	l2 := abx*abx + aby*aby
	if l2 == 0 {
		return sqDist(a, p)
	}
	t := clamp01(((p.X-a.X)*abx + (p.Y-a.Y)*aby) / l2)
	return sqDist(Vec2{a.X + t*abx, a.Y + t*aby}, p)
}

// --- Primitive builders ---

// RectOutline returns the closed rectangle outline.
func RectOutline(r Rect) Outline {
	if r.Width <= 0 || r.Height <= 0 {
		return Outline{}
	}
	return Outline{Contours: []Contour{{
		Points: []Vec2{
			{r.X, r.Y},
			{r.X + r.Width, r.Y},
			{r.X + r.Width, r.Y + r.Height},
			{r.X, r.Y + r.Height},
		},
		Closed: true,
	}}}
}

// RoundedRectOutline returns a rectangle with elliptical corners. rx and ry
// are clamped to half the width and height respectively, so radii that reach
// both halves produce the inscribed ellipse.
func RoundedRectOutline(r Rect, rx, ry, tol float64) Outline {
	if r.Width <= 0 || r.Height <= 0 {
		return Outline{}
	}
	rx = clamp(rx, 0, r.Width/2)
	ry = clamp(ry, 0, r.Height/2)
	if rx == 0 || ry == 0 {
		return RectOutline(r)
	}
	if rx == r.Width/2 && ry == r.Height/2 {
		return EllipseOutline(r, tol)
	}
	var pts []Vec2
	corner := func(cx, cy, start float64) {
		pts = appendArc(pts, Vec2{cx, cy}, rx, ry, start, math.Pi/2, tol)
	}
	corner(r.X+r.Width-rx, r.Y+ry, -math.Pi/2)
	corner(r.X+r.Width-rx, r.Y+r.Height-ry, 0)
	corner(r.X+rx, r.Y+r.Height-ry, math.Pi/2)
	corner(r.X+rx, r.Y+ry, math.Pi)
	return Outline{Contours: []Contour{{Points: dedupe(pts), Closed: true}}}
}

// EllipseOutline returns the ellipse inscribed in r.
func EllipseOutline(r Rect, tol float64) Outline {
	if r.Width <= 0 || r.Height <= 0 {
		return Outline{}
	}
	c := r.Center()
	pts := appendArc(nil, c, r.Width/2, r.Height/2, 0, 2*math.Pi, tol)
	return Outline{Contours: []Contour{{Points: pts[:len(pts)-1], Closed: true}}}
}

// arcSegments returns how many chords keep an arc of radius r and the given
// sweep within tol of the true curve.
func arcSegments(r, sweep, tol float64) int {
	if r <= tol {
		return max(4, int(math.Ceil(math.Abs(sweep)/(math.Pi/2))))
	}
	step := 2 * math.Acos(1-tol/r)
	n := int(math.Ceil(math.Abs(sweep) / step))
	return max(n, 4)
}

// appendArc appends points of an elliptical arc, including both endpoints.
// Angles are radians, measured clockwise on screen from +X.
func appendArc(pts []Vec2, c Vec2, rx, ry, start, sweep, tol float64) []Vec2 {
	n := arcSegments(math.Max(rx, ry), sweep, tol)
	for i := 0; i <= n; i++ {
		a := start + sweep*float64(i)/float64(n)
		sin, cos := math.Sincos(a)
		pts = append(pts, Vec2{c.X + rx*cos, c.Y + ry*sin})
	}
	return pts
}

// dedupe drops consecutive points closer than 1e-9, including a closing
// point that repeats the first.
func dedupe(pts []Vec2) []Vec2 {
	if len(pts) < 2 {
		return pts
	}
	out := pts[:1]
	for _, p := range pts[1:] {
		if sqDist(p, out[len(out)-1]) > 1e-18 {
			out = append(out, p)
		}
	}
	if len(out) > 1 && sqDist(out[0], out[len(out)-1]) <= 1e-18 {
		out = out[:len(out)-1]
	}
	return out
}
