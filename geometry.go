package deskgraph

import (
	"math"
	"strings"

	"github.com/tdewolff/canvas"
)

// Layer orders the paint operations of one element.
type Layer uint8

const (
	LayerBackground Layer = iota // backgroundColor in the padded box
	LayerFill                    // shape fill, bar fill, round-line rings
	LayerStroke                  // shape stroke, round-line ticks
	LayerContent                 // text or image pixels from a ContentDrawer
	LayerBevel                   // bevel bands on top of everything
)

func (l Layer) String() string {
	switch l {
	case LayerBackground:
		return "background"
	case LayerFill:
		return "fill"
	case LayerStroke:
		return "stroke"
	case LayerContent:
		return "content"
	case LayerBevel:
		return "bevel"
	}
	return "unknown"
}

// part is one paintable and hit-testable piece of an element.
type part struct {
	layer    Layer
	outline  Outline
	paintKey PropKey // PropID means paintDef only
	paintDef ColorSpec
	paintBox Rect
	hit      bool // participates in hit-testing
	alphaHit bool // only where the painted alpha is non-zero
	content  bool // pixels come from a ContentDrawer
	masked   bool // hits gated by the resource alpha mask
}

// geometry is the derived geometry of one element in local space.
type geometry struct {
	box     Rect // padded box
	content Rect // box minus padding
	parts   []part
}

var (
	defaultBevelLight = Color{1, 1, 1, 200.0 / 255}
	defaultBevelDark  = Color{0, 0, 0, 150.0 / 255}
	defaultBarColor   = Color{0, 1, 0, 1}
	defaultLineColor  = Color{0, 1, 0, 1}
)

const (
	shapeRectangle = "rectangle"
	shapeEllipse   = "ellipse"
	shapeLine      = "line"
	shapeArc       = "arc"
	shapeCurve     = "curve"
	shapePath      = "path"
	shapeCombine   = "combine"
)

func shapeType(e *element) string {
	return strings.ToLower(e.str(PropType, shapeRectangle))
}

// freeform shapes take their box from their outline instead of width and
// height.
func freeformShape(t string) bool {
	switch t {
	case shapeLine, shapeCurve, shapePath, shapeCombine:
		return true
	}
	return false
}

// boxOf returns the element's padded box in local space.
func (s *Scene) boxOf(e *element) Rect {
	return s.geometryOf(e).box
}

// contentSize returns the content size of e. ok is false for text and image
// elements whose size is neither declared nor resolved yet.
func (s *Scene) contentSize(e *element) (w, h float64, ok bool) {
	w, h = e.width, e.height
	if e.hasWidth && e.hasHeight {
		return w, h, true
	}
	switch e.kind {
	case KindText, KindImage:
		if !e.res.resolved {
			return w, h, e.hasWidth && e.hasHeight
		}
		rw, rh := e.res.width, e.res.height
		switch {
		case !e.hasWidth && !e.hasHeight:
			w, h = rw, rh
		case !e.hasWidth:
			w = rw
			if e.kind == KindImage && rh > 0 && preserveAspect(e) {
				w = h * rw / rh
			}
		default:
			h = rh
			if e.kind == KindImage && rw > 0 && preserveAspect(e) {
				h = w * rh / rw
			}
		}
		return w, h, true
	case KindShape:
		t := shapeType(e)
		if freeformShape(t) {
			b := s.geometryOf(e).box
			return b.Width, b.Height, true
		}
		if t == shapeEllipse || t == shapeArc {
			r := e.num(PropRadius, 0)
			if !e.hasWidth {
				w = 2 * e.num(PropRadiusX, r)
			}
			if !e.hasHeight {
				h = 2 * e.num(PropRadiusY, r)
			}
		}
	case KindRoundLine:
		if r := e.num(PropRadius, 0); r > 0 {
			d := 2*r + roundLineMaxThickness(e)
			if !e.hasWidth {
				w = d
			}
			if !e.hasHeight {
				h = d
			}
		}
	}
	return math.Max(w, 0), math.Max(h, 0), true
}

func preserveAspect(e *element) bool {
	switch strings.ToLower(e.str(PropPreserveAspectRatio, "preserve")) {
	case "stretch", "none", "0":
		return false
	}
	return true
}

// geometryOf returns the cached geometry of e, building it if needed.
func (s *Scene) geometryOf(e *element) *geometry {
	if e.geom != nil {
		return e.geom
	}
	g := &geometry{}
	e.geom = g // guards the recursion from contentSize for freeform shapes
	tol := s.opts.flattenTolerance

	pad := e.padding()
	freeform := e.kind == KindShape && freeformShape(shapeType(e))
	if !freeform {
		w, h, _ := s.contentSize(e)
		g.content = Rect{X: pad[0], Y: pad[1], Width: w, Height: h}
		g.box = Rect{Width: w + pad[0] + pad[2], Height: h + pad[1] + pad[3]}
	}

	var body []part
	switch e.kind {
	case KindText:
		body = append(body, part{layer: LayerContent, outline: RectOutline(g.box), hit: true, content: true, paintKey: PropFontColor, paintDef: SolidColor(ColorWhite), paintBox: g.content})
	case KindImage:
		body = append(body, part{layer: LayerContent, outline: RectOutline(g.content), hit: true, content: true, masked: true, paintKey: PropImageTint, paintDef: SolidColor(ColorWhite), paintBox: g.content})
	case KindBar:
		body = s.barParts(e, g.content, tol)
	case KindShape:
		body = s.shapeParts(e, g.content, tol)
	case KindRoundLine:
		body = roundLineParts(e, g.content, tol)
	}

	if freeform {
		var b Rect
		first := true
		for _, p := range body {
			pb := p.outline.Bounds()
			if p.outline.Empty() {
				continue
			}
			if first {
				b, first = pb, false
				continue
			}
			b = unionRect(b, pb)
		}
		g.content = b
		g.box = Rect{X: b.X - pad[0], Y: b.Y - pad[1], Width: b.Width + pad[0] + pad[2], Height: b.Height + pad[1] + pad[3]}
		for n := range body {
			if body[n].paintBox == (Rect{}) {
				body[n].paintBox = b
			}
		}
	}

	parts := make([]part, 0, len(body)+3)
	if bg, ok := e.colorSpec(PropBackgroundColor); ok && bg.Visible() {
		r := e.num(PropBackgroundColorRadius, 0)
		parts = append(parts, part{
			layer:    LayerBackground,
			outline:  RoundedRectOutline(g.box, r, r, tol),
			paintKey: PropBackgroundColor,
			paintDef: bg,
			paintBox: g.box,
			hit:      e.kind != KindBar || e.flag(PropHitTestBackground, false),
		})
	}
	parts = append(parts, body...)
	parts = append(parts, bevelParts(e, g.box)...)
	g.parts = parts
	return g
}

func unionRect(a, b Rect) Rect {
	x0 := math.Min(a.X, b.X)
	y0 := math.Min(a.Y, b.Y)
	x1 := math.Max(a.X+a.Width, b.X+b.Width)
	y1 := math.Max(a.Y+a.Height, b.Y+b.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// barParts returns the filled portion of a bar. The value is clamped to
// [0, 1]; horizontal bars fill from the left, vertical bars from the bottom.
func (s *Scene) barParts(e *element, c Rect, tol float64) []part {
	v := clamp01(e.num(PropValue, 0))
	fill := c
	if strings.EqualFold(e.str(PropOrientation, "horizontal"), "vertical") {
		fill.Height = c.Height * v
		fill.Y = c.Y + c.Height - fill.Height
	} else {
		fill.Width = c.Width * v
	}
	r := e.num(PropBarCornerRadius, 0)
	return []part{{
		layer:    LayerFill,
		outline:  RoundedRectOutline(fill, r, r, tol),
		paintKey: PropBarColor,
		paintDef: SolidColor(defaultBarColor),
		paintBox: fill,
		hit:      true,
	}}
}

// shapePath returns the outline of a shape before stroking, and whether it
// can be filled.
func (s *Scene) shapePath(e *element, c Rect, tol float64) (Outline, bool) {
	switch t := shapeType(e); t {
	case shapeEllipse:
		return EllipseOutline(c, tol), true
	case shapeLine:
		p0 := Vec2{e.num(PropStartX, 0), e.num(PropStartY, 0)}
		p1 := Vec2{e.num(PropEndX, 0), e.num(PropEndY, 0)}
		return Outline{Contours: []Contour{{Points: []Vec2{p0, p1}}}}, false
	case shapeArc:
		r := e.num(PropRadius, 0)
		rx := e.num(PropRadiusX, r)
		ry := e.num(PropRadiusY, r)
		if rx <= 0 {
			rx = c.Width / 2
		}
		if ry <= 0 {
			ry = c.Height / 2
		}
		fill, _ := e.colorSpec(PropFillColor)
		closed := fill.Visible()
		return ArcOutline(c.Center(), rx, ry, e.num(PropStartAngle, 0), e.num(PropEndAngle, 0), e.flag(PropClockwise, true), closed, tol), closed
	case shapeCurve:
		p0 := Vec2{e.num(PropStartX, 0), e.num(PropStartY, 0)}
		p3 := Vec2{e.num(PropEndX, 0), e.num(PropEndY, 0)}
		c1 := Vec2{e.num(PropControlX, 0), e.num(PropControlY, 0)}
		ct := strings.ToLower(e.str(PropCurveType, ""))
		if ct == "" {
			ct = "quadratic"
			if e.has(PropControl2X) || e.has(PropControl2Y) {
				ct = "cubic"
			}
		}
		p := &canvas.Path{}
		p.MoveTo(p0.X, p0.Y)
		if ct == "cubic" {
			c2 := Vec2{e.num(PropControl2X, c1.X), e.num(PropControl2Y, c1.Y)}
			p.CubeTo(c1.X, c1.Y, c2.X, c2.Y, p3.X, p3.Y)
		} else {
			p.QuadTo(c1.X, c1.Y, p3.X, p3.Y)
		}
		o := outlineFromPath(flattenPath(p, tol))
		fill, _ := e.colorSpec(PropFillColor)
		for n := range o.Contours {
			o.Contours[n].Closed = fill.Visible()
		}
		return o, true
	case shapePath:
		o, err := ParsePathData(e.str(PropPathData, ""), tol)
		if err != nil {
			Logger().Warn("deskgraph: malformed path data", "id", e.id, "err", err)
		}
		return o, true
	case shapeCombine:
		if e.combine == nil {
			return Outline{}, true
		}
		return e.combine.local, true
	default:
		r := e.num(PropRadius, 0)
		return RoundedRectOutline(c, e.num(PropRadiusX, r), e.num(PropRadiusY, r), tol), true
	}
}

// ArcOutline returns an elliptical arc around c. Angles are degrees with 0 on
// +X, normalized into [0, 360) before the sweep is taken. A sweep of zero is
// empty. closed joins the ends with a chord.
func ArcOutline(c Vec2, rx, ry, startDeg, endDeg float64, clockwise, closed bool, tol float64) Outline {
	start := normalizeDegrees(startDeg)
	sweep := normalizeDegrees(endDeg) - start
	if sweep == 0 || rx <= 0 || ry <= 0 {
		return Outline{}
	}
	if clockwise && sweep < 0 {
		sweep += 360
	} else if !clockwise && sweep > 0 {
		sweep -= 360
	}
	pts := appendArc(nil, c, rx, ry, start*math.Pi/180, sweep*math.Pi/180, tol)
	return Outline{Contours: []Contour{{Points: dedupe(pts), Closed: closed}}}
}

func normalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

func strokeStyleOf(e *element) StrokeStyle {
	st := StrokeStyle{
		Width:      e.num(PropStrokeWidth, 1),
		StartCap:   ParseLineCap(e.str(PropStrokeStartCap, "")),
		EndCap:     ParseLineCap(e.str(PropStrokeEndCap, "")),
		DashCap:    ParseLineCap(e.str(PropStrokeDashCap, "")),
		Join:       ParseLineJoin(e.str(PropStrokeLineJoin, "")),
		MiterLimit: e.num(PropStrokeMiterLimit, defaultMiterLimit),
	}
	if d, ok := e.array(PropStrokeDashes); ok {
		st.Dashes = d
		st.DashOffset = e.num(PropStrokeDashOffset, 0)
	}
	return st
}

// shapeParts returns the fill and stroke of a shape. Fill and stroke are only
// present when their colors are set.
func (s *Scene) shapeParts(e *element, c Rect, tol float64) []part {
	path, fillable := s.shapePath(e, c, tol)
	if path.Empty() {
		return nil
	}
	box := c
	if box.Empty() {
		box = path.Bounds()
	}
	var parts []part
	if fill, ok := e.colorSpec(PropFillColor); ok && fillable && path.HasClosed() {
		parts = append(parts, part{
			layer:    LayerFill,
			outline:  path,
			paintKey: PropFillColor,
			paintDef: fill,
			paintBox: box,
			hit:      true,
			alphaHit: true,
		})
	}
	if stroke, ok := e.colorSpec(PropStrokeColor); ok {
		if expanded := strokeStyleOf(e).Expand(path, tol); !expanded.Empty() {
			parts = append(parts, part{
				layer:    LayerStroke,
				outline:  expanded,
				paintKey: PropStrokeColor,
				paintDef: stroke,
				paintBox: box,
				hit:      true,
				alphaHit: true,
			})
		}
	}
	return parts
}

// bevelParts returns the light and dark bands drawn inside the box edges.
func bevelParts(e *element, box Rect) []part {
	kind := strings.ToLower(e.str(PropBevelType, "none"))
	bw := e.num(PropBevelWidth, 1)
	if kind == "none" || bw <= 0 || box.Empty() {
		return nil
	}
	bw = math.Min(bw, math.Min(box.Width, box.Height)/2)
	light := func(o Outline) part {
		return part{layer: LayerBevel, outline: o, paintKey: PropBevelColor, paintDef: SolidColor(defaultBevelLight), paintBox: box}
	}
	dark := func(o Outline) part {
		return part{layer: LayerBevel, outline: o, paintKey: PropBevelColor2, paintDef: SolidColor(defaultBevelDark), paintBox: box}
	}
	tl, br := bevelBands(box, bw)
	switch kind {
	case "raised":
		return []part{light(tl), dark(br)}
	case "sunken":
		return []part{dark(tl), light(br)}
	case "emboss":
		inner := Rect{X: box.X + bw/2, Y: box.Y + bw/2, Width: box.Width - bw, Height: box.Height - bw}
		itl, ibr := bevelBands(inner, bw/2)
		otl, obr := bevelBands(box, bw/2)
		return []part{dark(otl), light(obr), light(itl), dark(ibr)}
	case "pillow":
		inner := Rect{X: box.X + bw/2, Y: box.Y + bw/2, Width: box.Width - bw, Height: box.Height - bw}
		itl, ibr := bevelBands(inner, bw/2)
		otl, obr := bevelBands(box, bw/2)
		return []part{light(otl), dark(obr), dark(itl), light(ibr)}
	}
	return nil
}

// bevelBands splits the frame of width bw inside r into its top-left and
// bottom-right halves, mitered at the corners.
func bevelBands(r Rect, bw float64) (topLeft, bottomRight Outline) {
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.Width, r.Y+r.Height
	tl := []Vec2{{x0, y0}, {x1, y0}, {x1 - bw, y0 + bw}, {x0 + bw, y0 + bw}, {x0 + bw, y1 - bw}, {x0, y1}}
	br := []Vec2{{x1, y0}, {x1, y1}, {x0, y1}, {x0 + bw, y1 - bw}, {x1 - bw, y1 - bw}, {x1 - bw, y0 + bw}}
	return Outline{Contours: []Contour{oriented(tl)}}, Outline{Contours: []Contour{oriented(br)}}
}

// samplersOf returns the resolved paint of every part of e, in part order.
// Content parts without a paint property resolve to their default.
func (s *Scene) samplersOf(e *element) []Sampler {
	g := s.geometryOf(e)
	if e.samplers != nil && len(e.samplers) == len(g.parts) {
		return e.samplers
	}
	out := make([]Sampler, len(g.parts))
	for n := range g.parts {
		out[n] = paintSpec(e, &g.parts[n]).Resolve(g.parts[n].paintBox)
	}
	e.samplers = out
	return out
}

func paintSpec(e *element, p *part) ColorSpec {
	if p.paintKey != PropID {
		if cs, ok := e.colorSpec(p.paintKey); ok {
			return cs
		}
	}
	return p.paintDef
}
