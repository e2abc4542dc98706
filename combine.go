package deskgraph

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Combine returns the boolean combination of the closed contours of a and b
// under the nonzero fill rule. Open contours are ignored. Points closer than
// eps are treated as coincident. The result is made of closed contours whose
// interior lies on their left (right-hand normal pointing out), so an empty
// result is a valid outline.
func Combine(a, b Outline, mode CombineMode, eps float64) Outline {
	if eps <= 0 {
		eps = defaultEpsilon
	}
	c := &combiner{eps: eps, a: closedOnly(a), b: closedOnly(b)}
	c.collect(c.a)
	c.collect(c.b)
	if len(c.edges) == 0 {
		return Outline{}
	}
	c.split()
	kept := c.classify(mode)
	return c.chain(kept)
}

func closedOnly(o Outline) Outline {
	out := Outline{Contours: make([]Contour, 0, len(o.Contours))}
	for _, c := range o.Contours {
		if c.Closed && len(c.Points) >= 3 {
			out.Contours = append(out.Contours, c)
		}
	}
	return out
}

type gridKey struct{ x, y int64 }

type splitPoint struct {
	t float64
	p Vec2
}

type rawEdge struct {
	p, q   Vec2
	splits []splitPoint
}

type subEdge struct {
	from, to gridKey
}

type combiner struct {
	eps   float64
	a, b  Outline
	edges []rawEdge

	points map[gridKey]Vec2
}

func (c *combiner) key(p Vec2) gridKey {
	k := gridKey{int64(math.Round(p.X / c.eps)), int64(math.Round(p.Y / c.eps))}
	if _, ok := c.points[k]; !ok {
		c.points[k] = p
	}
	return k
}

func (c *combiner) collect(o Outline) {
	for _, ct := range o.Contours {
		n := len(ct.Points)
		for i := 0; i < n; i++ {
			p, q := ct.Points[i], ct.Points[(i+1)%n]
			if sqDist(p, q) <= c.eps*c.eps {
				continue
			}
			c.edges = append(c.edges, rawEdge{p: p, q: q})
		}
	}
}

// split records every pairwise intersection, including the ends of collinear
// overlaps, on both edges involved.
func (c *combiner) split() {
	bounds := make([]Rect, len(c.edges))
	for i, e := range c.edges {
		bounds[i] = Rect{
			X: math.Min(e.p.X, e.q.X) - c.eps, Y: math.Min(e.p.Y, e.q.Y) - c.eps,
			Width: math.Abs(e.p.X-e.q.X) + 2*c.eps, Height: math.Abs(e.p.Y-e.q.Y) + 2*c.eps,
		}
	}
	for i := range c.edges {
		for j := i + 1; j < len(c.edges); j++ {
			if bounds[i].Intersects(bounds[j]) {
				c.intersect(i, j)
			}
		}
	}
}

func (c *combiner) intersect(i, j int) {
	e1, e2 := &c.edges[i], &c.edges[j]
	d1 := e1.q.Sub(e1.p)
	d2 := e2.q.Sub(e2.p)
	l1 := d1.Len()
	l2 := d2.Len()
	denom := d1.X*d2.Y - d1.Y*d2.X

	if math.Abs(denom) <= c.eps*l1*l2*1e-3 || math.Abs(denom) < 1e-18 {
		// Parallel: only collinear overlaps matter.
		if math.Abs(cross(e1.p, e1.q, e2.p))/l1 > c.eps {
			return
		}
		c.splitAtPoint(e1, e2.p)
		c.splitAtPoint(e1, e2.q)
		c.splitAtPoint(e2, e1.p)
		c.splitAtPoint(e2, e1.q)
		return
	}

	w := e2.p.Sub(e1.p)
	t := (w.X*d2.Y - w.Y*d2.X) / denom
	u := (w.X*d1.Y - w.Y*d1.X) / denom
	te := c.eps / l1
	ue := c.eps / l2
	if t < -te || t > 1+te || u < -ue || u > 1+ue {
		return
	}
	// Prefer existing vertices so both edges share exact coordinates.
	var p Vec2
	switch {
	case t <= te:
		p = e1.p
	case t >= 1-te:
		p = e1.q
	case u <= ue:
		p = e2.p
	case u >= 1-ue:
		p = e2.q
	default:
		p = e1.p.Add(d1.Scale(t))
	}
	if t > te && t < 1-te {
		e1.splits = append(e1.splits, splitPoint{t: t, p: p})
	}
	if u > ue && u < 1-ue {
		e2.splits = append(e2.splits, splitPoint{t: u, p: p})
	}
}

// splitAtPoint splits e at p when p lies strictly inside it.
func (c *combiner) splitAtPoint(e *rawEdge, p Vec2) {
	d := e.q.Sub(e.p)
	l2 := d.X*d.X + d.Y*d.Y
	t := ((p.X-e.p.X)*d.X + (p.Y-e.p.Y)*d.Y) / l2
	te := c.eps / math.Sqrt(l2)
	if t <= te || t >= 1-te {
		return
	}
	e.splits = append(e.splits, splitPoint{t: t, p: p})
}

// classify cuts every edge at its split points and keeps the pieces where the
// result differs across the piece, oriented with the result on the left.
func (c *combiner) classify(mode CombineMode) []subEdge {
	c.points = make(map[gridKey]Vec2, 2*len(c.edges))
	seen := make(map[[2]gridKey]bool, len(c.edges))
	var kept []subEdge

	for i := range c.edges {
		e := &c.edges[i]
		sort.Slice(e.splits, func(a, b int) bool { return e.splits[a].t < e.splits[b].t })
		prev := c.key(e.p)
		pts := make([]gridKey, 0, len(e.splits)+2)
		pts = append(pts, prev)
		for _, sp := range e.splits {
			k := c.key(sp.p)
			if k != pts[len(pts)-1] {
				pts = append(pts, k)
			}
		}
		if k := c.key(e.q); k != pts[len(pts)-1] {
			pts = append(pts, k)
		}

		for n := 0; n+1 < len(pts); n++ {
			from, to := pts[n], pts[n+1]
			id := [2]gridKey{from, to}
			if lessKey(to, from) {
				id = [2]gridKey{to, from}
			}
			if seen[id] {
				continue
			}
			seen[id] = true

			p, q := c.points[from], c.points[to]
			d := q.Sub(p)
			l := d.Len()
			if l == 0 {
				continue
			}
			off := math.Min(1e-4, l/4)
			nrm := Vec2{-d.Y / l * off, d.X / l * off}
			mid := p.Add(q).Scale(0.5)
			left := c.inside(mid.Add(nrm), mode)
			right := c.inside(mid.Sub(nrm), mode)
			switch {
			case left && !right:
				kept = append(kept, subEdge{from: from, to: to})
			case right && !left:
				kept = append(kept, subEdge{from: to, to: from})
			}
		}
	}
	return kept
}

func lessKey(a, b gridKey) bool {
	if a.x != b.x {
		return a.x < b.x
	}
	return a.y < b.y
}

func (c *combiner) inside(p Vec2, mode CombineMode) bool {
	inA := c.a.Contains(p)
	inB := c.b.Contains(p)
	switch mode {
	case CombineIntersect:
		return inA && inB
	case CombineXor:
		return inA != inB
	default:
		return inA || inB
	}
}

// chain links kept edges into closed contours, starting each contour from
// the leftmost unused edge.
func (c *combiner) chain(kept []subEdge) Outline {
	sort.SliceStable(kept, func(i, j int) bool {
		return lessKey(kept[i].from, kept[j].from)
	})
	out := make(map[gridKey][]int, len(kept))
	for i, e := range kept {
		out[e.from] = append(out[e.from], i)
	}
	used := make([]bool, len(kept))

	var result Outline
	for start := range kept {
		if used[start] {
			continue
		}
		used[start] = true
		origin := kept[start].from
		keys := []gridKey{origin}
		cur := kept[start].to
		closed := false
		for steps := 0; steps <= len(kept); steps++ {
			if cur == origin {
				closed = true
				break
			}
			keys = append(keys, cur)
			next := -1
			for _, cand := range out[cur] {
				if !used[cand] {
					next = cand
					break
				}
			}
			if next < 0 {
				break
			}
			used[next] = true
			cur = kept[next].to
		}
		if !closed || len(keys) < 3 {
			continue
		}
		pts := make([]Vec2, len(keys))
		for n, k := range keys {
			pts[n] = c.points[k]
		}
		if pts = dropCollinear(pts, c.eps); len(pts) >= 3 {
			result.Contours = append(result.Contours, Contour{Points: pts, Closed: true})
		}
	}
	return result
}

// dropCollinear removes vertices of a closed polygon that lie on the segment
// between their neighbours.
func dropCollinear(pts []Vec2, eps float64) []Vec2 {
	for changed := true; changed && len(pts) >= 3; {
		changed = false
		n := len(pts)
		out := pts[:0:0]
		for i := 0; i < n; i++ {
			a, v, b := pts[(i+n-1)%n], pts[i], pts[(i+1)%n]
			l := b.Sub(a).Len()
			if l > 0 && math.Abs(cross(a, b, v))/l <= eps && (v.X-a.X)*(b.X-v.X)+(v.Y-a.Y)*(b.Y-v.Y) >= 0 {
				changed = true
				continue
			}
			out = append(out, v)
		}
		pts = out
		if changed && len(pts) < 3 {
			return pts
		}
	}
	return pts
}

// --- Scene integration ---

// CombineSpec describes a combine shape: a base operand followed by ops
// applied left to right.
type CombineSpec struct {
	Base    string
	Consume bool // remove the base element once combined
	Ops     []CombineOp
	Props   Props // extra properties for the result element
}

// combineState is the owned result of a combine shape.
type combineState struct {
	root      Outline            // result in root space when built
	local     Outline            // result in the element's outline space
	snapshots map[string]Outline // consumed operands, root space
}

// Combine creates or updates the combine shape id from spec. Every operand
// must exist; otherwise ErrUnknownReference is returned and nothing changes.
func (s *Scene) Combine(id string, spec CombineSpec) (ElementRef, error) {
	props := make(Props, len(spec.Props)+4)
	for k, v := range spec.Props {
		props[k] = v
	}
	props["type"] = shapeCombine
	props["base"] = spec.Base
	props["consume"] = spec.Consume
	props["ops"] = spec.Ops
	return s.AddElement(KindShape, id, props)
}

// RebuildCombine recomputes a combine shape from its live operands, using the
// stored snapshot for operands it consumed.
func (s *Scene) RebuildCombine(id string) error {
	i, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("deskgraph: rebuild combine %q: %w", id, ErrUnknownReference)
	}
	e := &s.elems[i]
	if e.kind != KindShape || shapeType(e) != shapeCombine {
		return fmt.Errorf("deskgraph: rebuild combine %q: not a combine shape: %w", id, ErrInvalidValue)
	}
	if err := s.validateCombineRefs(i, id, &compiledPatch{}); err != nil {
		return err
	}
	s.buildCombine(i)
	return nil
}

// patchedCombine reports whether applying cp leaves slot a combine shape and
// touches its definition.
func (s *Scene) patchedCombine(slot int32, cp *compiledPatch) bool {
	t := ""
	if slot >= 0 {
		t = shapeType(&s.elems[slot])
	}
	if pe, ok := cp.lookup(PropType); ok {
		t = shapeRectangle
		if !pe.unset {
			t = strings.ToLower(pe.val.str)
		}
	}
	if t != shapeCombine {
		return false
	}
	return cp.has[PropType] || cp.has[PropBase] || cp.has[PropOps] || cp.has[PropConsume]
}

func (s *Scene) validateCombineRefs(slot int32, id string, cp *compiledPatch) error {
	var base string
	var ops []CombineOp
	var snaps map[string]Outline
	if slot >= 0 {
		e := &s.elems[slot]
		base = e.str(PropBase, "")
		if v, ok := e.vals[PropOps]; ok {
			ops = v.ops
		}
		if e.combine != nil {
			snaps = e.combine.snapshots
		}
	}
	if pe, ok := cp.lookup(PropBase); ok {
		base = ""
		if !pe.unset {
			base = pe.val.str
		}
	}
	if pe, ok := cp.lookup(PropOps); ok {
		ops = nil
		if !pe.unset {
			ops = pe.val.ops
		}
	}
	check := func(ref string) error {
		if ref == id {
			return fmt.Errorf("deskgraph: combine %q uses itself as an operand: %w", id, ErrInvalidValue)
		}
		if _, ok := s.byID[ref]; ok {
			return nil
		}
		if _, ok := snaps[ref]; ok {
			return nil
		}
		return fmt.Errorf("deskgraph: combine %q operand %q: %w", id, ref, ErrUnknownReference)
	}
	if err := check(base); err != nil {
		return err
	}
	for _, op := range ops {
		if err := check(op.ID); err != nil {
			return err
		}
	}
	return nil
}

// operandOutline returns the closed outline of element j in root space.
func (s *Scene) operandOutline(j int32) Outline {
	e := &s.elems[j]
	g := s.geometryOf(e)
	var local Outline
	if e.kind == KindShape {
		local, _ = s.shapePath(e, g.content, s.opts.flattenTolerance)
		local = closedOnly(local)
	} else {
		local = RectOutline(g.box)
	}
	return local.Transform(s.worldTransform(j))
}

// combineBase is the transform from the combine shape's outline space to
// root space, ignoring its own rotation.
func (s *Scene) combineBase(i int32) Matrix {
	e := &s.elems[i]
	m := Identity
	if e.parent >= 0 {
		off := s.contentOffset(&s.elems[e.parent])
		m = s.worldTransform(e.parent).Multiply(Translate(off.X, off.Y))
	}
	return m.Multiply(Translate(e.x, e.y))
}

// buildCombine computes the result of combine shape i, then removes the
// operands marked for consumption.
func (s *Scene) buildCombine(i int32) {
	e := &s.elems[i]
	st := e.combine
	if st == nil {
		st = &combineState{snapshots: make(map[string]Outline)}
	}
	operand := func(ref string) (Outline, bool) {
		if j, ok := s.byID[ref]; ok && j != i {
			return s.operandOutline(j), true
		}
		o, ok := st.snapshots[ref]
		return o, ok
	}

	baseID := e.str(PropBase, "")
	var ops []CombineOp
	if v, ok := e.vals[PropOps]; ok {
		ops = v.ops
	}
	result, _ := operand(baseID)
	for _, op := range ops {
		o, ok := operand(op.ID)
		if !ok {
			continue
		}
		result = Combine(result, o, op.Mode, s.opts.epsilon)
	}
	st.root = result
	s.elems[i].combine = st

	consume := func(ref string) {
		j, ok := s.byID[ref]
		if !ok || j == i {
			return
		}
		st.snapshots[ref] = s.operandOutline(j)
		s.removeSlot(j)
	}
	if e.flag(PropConsume, false) {
		consume(baseID)
	}
	for _, op := range ops {
		if op.Consume {
			consume(op.ID)
		}
	}

	// Consuming an ancestor orphans i, so resolve its frame afterwards.
	st.local = result.Transform(s.combineBase(i).Invert())
	e = &s.elems[i]
	e.invalidateGeometry()
	s.markSubtreeDirty(i)
	Logger().Debug("deskgraph: combined shape", "id", s.elems[i].id, "contours", len(result.Contours))
}
