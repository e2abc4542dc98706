package deskgraph

import "image"

// HitResult describes the element under a pointer. All four coordinate
// systems come from the same transform pass.
type HitResult struct {
	Ref     ElementRef
	Local   Vec2   // element local space
	Percent Vec2   // Local relative to the element box, 0-100
	Client  Vec2   // window space
	Screen  Vec2   // Client plus the window origin
	Cursor  string // "" for the default cursor
}

// HitTest returns the topmost element whose geometry contains the window
// point p, or nil.
func (s *Scene) HitTest(p Vec2) *HitResult {
	return s.hitTest(p, p.Add(s.windowOrigin))
}

// HitTestEvent hit-tests a host pointer event, keeping its screen
// coordinates.
func (s *Scene) HitTestEvent(ev PointerEvent) *HitResult {
	return s.hitTest(Vec2{ev.ClientX, ev.ClientY}, Vec2{ev.ScreenX, ev.ScreenY})
}

func (s *Scene) hitTest(client, screen Vec2) *HitResult {
	s.hitBuf = s.collectHittable(s.hitBuf[:0])

	// Iterate backward (reverse painter order): topmost element first.
	for n := len(s.hitBuf) - 1; n >= 0; n-- {
		i := s.hitBuf[n]
		s.worldTransform(i)
		e := &s.elems[i]
		local := e.worldInv.Apply(client)
		if s.containsLocal(e, local) {
			r := s.resultFor(i, local, client, screen)
			return &r
		}
	}
	return nil
}

// collectHittable walks the scene in painter order, appending visible
// elements with hit-testing enabled. Children of an element with hit-testing
// disabled are still collected.
func (s *Scene) collectHittable(buf []int32) []int32 {
	var walk func(i int32)
	walk = func(i int32) {
		e := &s.elems[i]
		if !e.show {
			return
		}
		if e.hitTest {
			buf = append(buf, i)
		}
		for _, c := range e.children {
			walk(c)
		}
	}
	for _, i := range s.roots {
		walk(i)
	}
	return buf
}

// containsLocal tests the per-kind hit predicate of e at a local point.
func (s *Scene) containsLocal(e *element, p Vec2) bool {
	g := s.geometryOf(e)
	if !g.box.Contains(p.X, p.Y) && !outlineBoundsContain(g, p) {
		return false
	}
	var samplers []Sampler
	for n := range g.parts {
		pt := &g.parts[n]
		if !pt.hit || !pt.outline.Contains(p) {
			continue
		}
		if pt.masked && !s.maskAllows(e, g, p) {
			continue
		}
		if pt.alphaHit {
			if samplers == nil {
				samplers = s.samplersOf(e)
			}
			if samplers[n].ColorAt(p).A <= 0 {
				continue
			}
		}
		return true
	}
	return false
}

// outlineBoundsContain covers parts that reach outside the box, such as
// strokes centered on the box edge.
func outlineBoundsContain(g *geometry, p Vec2) bool {
	for n := range g.parts {
		if b := g.parts[n].outline.Bounds(); b.Contains(p.X, p.Y) {
			return true
		}
	}
	return false
}

// maskAllows gates an image hit by the resource alpha mask scaled to the
// content box. Without a mask the whole content box hits.
func (s *Scene) maskAllows(e *element, g *geometry, p Vec2) bool {
	m := s.scaledMask(e, g.content)
	if m == nil {
		return true
	}
	x := int(p.X - g.content.X)
	y := int(p.Y - g.content.Y)
	if !(image.Point{x, y}).In(m.Bounds()) {
		return false
	}
	return m.AlphaAt(x, y).A > 0
}

// resultFor builds the hit result for slot i.
func (s *Scene) resultFor(i int32, local, client, screen Vec2) HitResult {
	e := &s.elems[i]
	box := s.boxOf(e)
	var pct Vec2
	if box.Width > 0 {
		pct.X = (local.X - box.X) / box.Width * 100
	}
	if box.Height > 0 {
		pct.Y = (local.Y - box.Y) / box.Height * 100
	}
	return HitResult{
		Ref:     e.ref(i),
		Local:   local,
		Percent: pct,
		Client:  client,
		Screen:  screen,
		Cursor:  cursorFor(e),
	}
}

// cursorFor resolves the pointer cursor over e: its cursor property, else
// "hand" when it has mouse handlers.
func cursorFor(e *element) string {
	if e.cursor != "" {
		return e.cursor
	}
	if e.hasHandlers() {
		return "hand"
	}
	return ""
}
