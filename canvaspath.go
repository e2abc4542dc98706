package deskgraph

import "github.com/tdewolff/canvas"

// flattenPath replaces every curve and arc of p with line segments that stay
// within tol of it. canvas flattens at canvas.Tolerance, so the path is
// scaled into that tolerance and back.
func flattenPath(p *canvas.Path, tol float64) *canvas.Path {
	if tol <= 0 || tol == canvas.Tolerance {
		return p.Flatten()
	}
	k := canvas.Tolerance / tol
	return p.Transform(canvas.Identity.Scale(k, k)).Flatten().Transform(canvas.Identity.Scale(1/k, 1/k))
}

// outlineFromPath converts a flattened path into contours, one per subpath.
func outlineFromPath(p *canvas.Path) Outline {
	var o Outline
	for _, sp := range p.Split() {
		coords := sp.Coords()
		pts := make([]Vec2, len(coords))
		for i, c := range coords {
			pts[i] = vecOf(c)
		}
		pts = dedupe(pts)
		if len(pts) < 2 {
			continue
		}
		o.Contours = append(o.Contours, Contour{Points: pts, Closed: sp.Closed()})
	}
	return o
}

// pathFromPoints builds a polyline path.
func pathFromPoints(pts []Vec2, closed bool) *canvas.Path {
	p := &canvas.Path{}
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt.X, pt.Y)
			continue
		}
		p.LineTo(pt.X, pt.Y)
	}
	if closed {
		p.Close()
	}
	return p
}

func vecOf(p canvas.Point) Vec2 {
	return Vec2{p.X, p.Y}
}
