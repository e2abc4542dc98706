package deskgraph

import (
	"math"
	"slices"
	"strings"

	"github.com/tdewolff/canvas"
)

// LineCap is the shape drawn at the open ends of a stroke or dash.
type LineCap uint8

const (
	CapFlat     LineCap = iota // ends exactly at the endpoint
	CapSquare                  // extends by half the width
	CapRound                   // half disc of half the width
	CapTriangle                // point at half the width past the endpoint
)

// ParseLineCap maps "flat", "square", "round", "triangle" (any case) to a
// LineCap. Unknown names map to CapFlat.
func ParseLineCap(s string) LineCap {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "square":
		return CapSquare
	case "round":
		return CapRound
	case "triangle":
		return CapTriangle
	default:
		return CapFlat
	}
}

// LineJoin is the shape drawn where two stroked segments meet.
type LineJoin uint8

const (
	JoinMiter LineJoin = iota // sharp corner, beveled past MiterLimit
	JoinRound                 // disc of half the width
	JoinBevel                 // straight cut between the outer corners
)

// ParseLineJoin maps "miter", "round", "bevel" (any case) to a LineJoin.
// "miterOrBevel" and unknown names map to JoinMiter.
func ParseLineJoin(s string) LineJoin {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "round":
		return JoinRound
	case "bevel":
		return JoinBevel
	default:
		return JoinMiter
	}
}

const defaultMiterLimit = 10

// StrokeStyle describes how an outline is stroked.
type StrokeStyle struct {
	Width      float64
	StartCap   LineCap
	EndCap     LineCap
	DashCap    LineCap
	Join       LineJoin
	MiterLimit float64 // ratio of miter length to half the width

	// Dashes alternates dash and gap lengths, in multiples of Width. An odd
	// count is repeated once to make it even. Empty means solid.
	Dashes     []float64
	DashOffset float64
}

// Expand returns the area covered by stroking o. The body and joins come from
// canvas; caps are added per end so start, end and dash ends can differ.
// Every piece is oriented so the nonzero rule paints their union.
func (s StrokeStyle) Expand(o Outline, tol float64) Outline {
	if s.Width <= 0 {
		return Outline{}
	}
	var out Outline
	for _, c := range o.Contours {
		pts := dedupe(append([]Vec2(nil), c.Points...))
		if len(pts) == 0 {
			continue
		}
		if len(pts) == 1 {
			s.appendDot(&out, pts[0], tol)
			continue
		}
		closed := c.Closed && len(pts) >= 3
		path := pathFromPoints(pts, closed)
		dashes := s.dashLengths()
		if dashes == nil {
			s.strokePath(&out, path, closed, s.StartCap, s.EndCap, tol)
			continue
		}
		first, last := pts[0], pts[len(pts)-1]
		for _, dash := range path.Dash(s.DashOffset*s.Width, dashes...).Split() {
			coords := dash.Coords()
			if len(coords) < 2 {
				continue
			}
			sc, ec := s.DashCap, s.DashCap
			if !closed && sqDist(vecOf(coords[0]), first) < 1e-12 {
				sc = s.StartCap
			}
			if !closed && sqDist(vecOf(coords[len(coords)-1]), last) < 1e-12 {
				ec = s.EndCap
			}
			s.strokePath(&out, dash, dash.Closed(), sc, ec, tol)
		}
	}
	return out
}

// dashLengths returns the dash pattern in absolute lengths, or nil for a
// solid stroke.
func (s StrokeStyle) dashLengths() []float64 {
	if len(s.Dashes) == 0 {
		return nil
	}
	d := make([]float64, len(s.Dashes))
	var total float64
	for i, v := range s.Dashes {
		d[i] = math.Abs(v) * s.Width
		total += d[i]
	}
	if total <= 0 {
		return nil
	}
	return d
}

func (s StrokeStyle) joiner() canvas.Joiner {
	switch s.Join {
	case JoinRound:
		return canvas.RoundJoin
	case JoinBevel:
		return canvas.BevelJoin
	}
	limit := s.MiterLimit
	if limit <= 0 {
		limit = defaultMiterLimit
	}
	return canvas.MiterJoiner{GapJoiner: canvas.BevelJoin, Limit: limit}
}

// strokePath appends the stroke of one subpath of polyline p.
func (s StrokeStyle) strokePath(out *Outline, p *canvas.Path, closed bool, startCap, endCap LineCap, tol float64) {
	body := outlineFromPath(flattenPath(p.Stroke(s.Width, canvas.ButtCap, s.joiner()), tol))
	var area float64
	for n := range body.Contours {
		body.Contours[n].Closed = true
		area += signedArea(body.Contours[n].Points)
	}
	if area < 0 {
		for _, c := range body.Contours {
			slices.Reverse(c.Points)
		}
	}
	out.Contours = append(out.Contours, body.Contours...)
	if closed {
		return
	}
	coords := p.Coords()
	n := len(coords)
	if n < 2 {
		return
	}
	hw := s.Width / 2
	appendCap(out, vecOf(coords[0]), vecOf(coords[1]), hw, startCap, tol)
	appendCap(out, vecOf(coords[n-1]), vecOf(coords[n-2]), hw, endCap, tol)
}

// appendDot covers a zero-length stroke. Only caps with extent paint.
func (s StrokeStyle) appendDot(out *Outline, p Vec2, tol float64) {
	hw := s.Width / 2
	switch s.StartCap {
	case CapRound:
		out.Contours = append(out.Contours, circleContour(p, hw, tol))
	case CapSquare:
		out.Contours = append(out.Contours, oriented([]Vec2{
			{p.X - hw, p.Y - hw}, {p.X + hw, p.Y - hw}, {p.X + hw, p.Y + hw}, {p.X - hw, p.Y + hw},
		}))
	}
}

// appendCap adds the cap at end p of a segment whose other end is q.
func appendCap(out *Outline, p, q Vec2, hw float64, c LineCap, tol float64) {
	d := p.Sub(q)
	l := d.Len()
	if l == 0 {
		return
	}
	d = d.Scale(hw / l)
	n := Vec2{-d.Y, d.X}
	switch c {
	case CapSquare:
		out.Contours = append(out.Contours, oriented([]Vec2{p.Add(n), p.Add(n).Add(d), p.Sub(n).Add(d), p.Sub(n)}))
	case CapRound:
		out.Contours = append(out.Contours, circleContour(p, hw, tol))
	case CapTriangle:
		out.Contours = append(out.Contours, oriented([]Vec2{p.Add(n), p.Add(d), p.Sub(n)}))
	}
}

func circleContour(c Vec2, r, tol float64) Contour {
	pts := appendArc(nil, c, r, r, 0, 2*math.Pi, tol)
	return Contour{Points: pts[:len(pts)-1], Closed: true}
}

// oriented returns a closed contour whose signed area is non-negative.
func oriented(pts []Vec2) Contour {
	if signedArea(pts) < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	return Contour{Points: pts, Closed: true}
}
