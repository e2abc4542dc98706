package deskgraph

import "math"

const (
	defaultRoundLineThickness = 2
	roundLineTickWidth        = 2
	minRoundLineSweep         = 0.001 // degrees
)

func roundLineMaxThickness(e *element) float64 {
	t := e.num(PropThickness, defaultRoundLineThickness)
	return math.Max(t, e.num(PropEndThickness, -1))
}

// roundLineParts builds the background ring, the value ring and the tick
// marks of a round line centered in c.
func roundLineParts(e *element, c Rect, tol float64) []part {
	t0 := e.num(PropThickness, defaultRoundLineThickness)
	t1 := e.num(PropEndThickness, -1)
	if t1 < 0 {
		t1 = t0
	}
	r := e.num(PropRadius, 0)
	if r <= 0 {
		r = (math.Min(c.Width, c.Height) - t0) / 2
	}
	if r <= 0 || t0 <= 0 {
		return nil
	}

	rl := ring{
		center: c.Center(),
		radius: r,
		start:  e.num(PropStartAngle, 0) - 90,
		t0:     t0,
		t1:     t1,
		tol:    tol,
	}
	dir := 1.0
	if !e.flag(PropClockwise, true) {
		dir = -1
	}
	total := e.num(PropTotalAngle, 360)
	capType := e.str(PropCapType, "flat")
	rl.startCap = ParseLineCap(e.str(PropStartCap, capType))
	rl.endCap = ParseLineCap(e.str(PropEndCap, capType))
	if d, ok := e.array(PropDashArray); ok {
		rl.dashes = make([]float64, len(d))
		for i, v := range d {
			rl.dashes[i] = v * t0
		}
	}

	var parts []part
	if bg, ok := e.colorSpec(PropLineColorBg); ok {
		bgRing := rl
		bgRing.t1 = t0
		bgRing.dashes = nil
		bgRing.sweep = total * dir
		if o := bgRing.outline(); !o.Empty() {
			parts = append(parts, part{layer: LayerFill, outline: o, paintKey: PropLineColorBg, paintDef: bg, paintBox: c, hit: true})
		}
	}

	rl.sweep = total * clamp01(e.num(PropValue, 0)) * dir
	if math.Abs(rl.sweep) >= minRoundLineSweep {
		if o := rl.outline(); !o.Empty() {
			parts = append(parts, part{layer: LayerFill, outline: o, paintKey: PropLineColor, paintDef: SolidColor(defaultLineColor), paintBox: c, hit: true})
		}
	}

	if ticks := int(e.num(PropTicks, 0)); ticks > 0 {
		tickLen := t0 * 1.5
		st := StrokeStyle{Width: roundLineTickWidth}
		var o Outline
		for i := 0; i <= ticks; i++ {
			a := (rl.start + dir*float64(i)*total/float64(ticks)) * math.Pi / 180
			sin, cos := math.Sincos(a)
			inner := Vec2{rl.center.X + (r-tickLen/2)*cos, rl.center.Y + (r-tickLen/2)*sin}
			outer := Vec2{rl.center.X + (r+tickLen/2)*cos, rl.center.Y + (r+tickLen/2)*sin}
			o.Append(st.Expand(Outline{Contours: []Contour{{Points: []Vec2{inner, outer}}}}, tol))
		}
		parts = append(parts, part{layer: LayerStroke, outline: o, paintKey: PropLineColor, paintDef: SolidColor(defaultLineColor), paintBox: c, hit: true})
	}
	return parts
}

// ring is an annular arc along a centerline of the given radius. Thickness
// tapers linearly from t0 to t1 over the sweep.
type ring struct {
	center   Vec2
	radius   float64
	start    float64 // degrees
	sweep    float64 // degrees, signed
	t0, t1   float64
	startCap LineCap
	endCap   LineCap
	dashes   []float64 // lengths along the centerline
	tol      float64
}

func (r ring) thickness(f float64) float64 {
	return r.t0 + (r.t1-r.t0)*f
}

func (r ring) pointAt(f, offset float64) Vec2 {
	a := (r.start + r.sweep*f) * math.Pi / 180
	sin, cos := math.Sincos(a)
	return Vec2{r.center.X + (r.radius+offset)*cos, r.center.Y + (r.radius+offset)*sin}
}

// tangentAt is the unit direction of travel at fraction f.
func (r ring) tangentAt(f float64) Vec2 {
	a := (r.start + r.sweep*f) * math.Pi / 180
	sin, cos := math.Sincos(a)
	if r.sweep < 0 {
		return Vec2{sin, -cos}
	}
	return Vec2{-sin, cos}
}

func (r ring) outline() Outline {
	if r.sweep == 0 {
		return Outline{}
	}
	sweep := r.sweep
	if math.Abs(sweep) > 360 {
		sweep = math.Copysign(360, sweep)
		r.sweep = sweep
	}
	var o Outline
	if len(r.dashes) == 0 {
		r.sector(&o, 0, 1)
		r.caps(&o)
		return o
	}

	length := r.radius * math.Abs(sweep) * math.Pi / 180
	pattern := r.dashes
	if len(pattern)%2 == 1 {
		pattern = append(append([]float64(nil), pattern...), pattern...)
	}
	var period float64
	for _, d := range pattern {
		period += d
	}
	if period <= 0 || length <= 0 {
		r.sector(&o, 0, 1)
		r.caps(&o)
		return o
	}
	pos := 0.0
	for idx := 0; pos < length; idx = (idx + 1) % len(pattern) {
		end := math.Min(pos+pattern[idx], length)
		if idx%2 == 0 && end > pos {
			r.sector(&o, pos/length, end/length)
		}
		pos = end
	}
	r.caps(&o)
	return o
}

// sector appends the ring piece between fractions fa and fb.
func (r ring) sector(o *Outline, fa, fb float64) {
	span := (fb - fa) * r.sweep * math.Pi / 180
	n := arcSegments(r.radius+math.Max(r.t0, r.t1)/2, span, r.tol)
	pts := make([]Vec2, 0, 2*(n+1))
	for i := 0; i <= n; i++ {
		f := fa + (fb-fa)*float64(i)/float64(n)
		pts = append(pts, r.pointAt(f, r.thickness(f)/2))
	}
	for i := n; i >= 0; i-- {
		f := fa + (fb-fa)*float64(i)/float64(n)
		inner := -math.Min(r.thickness(f)/2, r.radius)
		pts = append(pts, r.pointAt(f, inner))
	}
	o.Contours = append(o.Contours, oriented(dedupe(pts)))
}

func (r ring) caps(o *Outline) {
	if math.Abs(r.sweep) >= 360 {
		return
	}
	p0 := r.pointAt(0, 0)
	appendCap(o, p0, p0.Add(r.tangentAt(0)), r.t0/2, r.startCap, r.tol)
	p1 := r.pointAt(1, 0)
	appendCap(o, p1, p1.Sub(r.tangentAt(1)), r.t1/2, r.endCap, r.tol)
}
