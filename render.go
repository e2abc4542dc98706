package deskgraph

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// PaintOp is a single fill emitted in paint order. Outline is in the
// element's local space; Transform maps it to the root space.
type PaintOp struct {
	Ref       ElementRef
	Layer     Layer
	Outline   Outline
	Transform Matrix
	Paint     Sampler
	PaintBox  Rect
	AntiAlias bool

	// Content is set for text and image pixels, which come from a
	// ContentDrawer rather than from Paint alone.
	Content bool
}

// ContentDrawer draws text and image pixels for content ops. Without one,
// Draw skips content ops.
type ContentDrawer interface {
	DrawContent(dst *ebiten.Image, op PaintOp)
}

// PaintList returns every visible part of every visible element, in paint
// order: elements back to front, parts in layer order within an element.
func (s *Scene) PaintList() []PaintOp {
	var ops []PaintOp
	var walk func(i int32)
	walk = func(i int32) {
		e := &s.elems[i]
		if !e.show {
			return
		}
		g := s.geometryOf(e)
		samplers := s.samplersOf(e)
		world := s.worldTransform(i)
		for n := range g.parts {
			pt := &g.parts[n]
			if pt.outline.Empty() {
				continue
			}
			if !pt.content && !paintSpec(e, pt).Visible() {
				continue
			}
			ops = append(ops, PaintOp{
				Ref:       e.ref(i),
				Layer:     pt.layer,
				Outline:   pt.outline,
				Transform: world,
				Paint:     samplers[n],
				PaintBox:  pt.paintBox,
				AntiAlias: e.antiAlias,
				Content:   pt.content,
			})
		}
		for _, c := range e.children {
			walk(c)
		}
	}
	for _, i := range s.roots {
		walk(i)
	}
	return ops
}

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// Renderer rasterizes a scene's paint list onto ebiten images. It keeps
// vertex buffers between frames.
type Renderer struct {
	Content ContentDrawer

	scene *Scene
	path  vector.Path
	verts []ebiten.Vertex
	inds  []uint16
	stats paintStats
}

// NewRenderer creates a renderer for s.
func NewRenderer(s *Scene, content ContentDrawer) *Renderer {
	return &Renderer{Content: content, scene: s}
}

// Draw paints the scene onto dst. Every vertex is colored by sampling the
// op's paint at its local position, so gradients follow the geometry.
func (r *Renderer) Draw(dst *ebiten.Image) {
	r.stats = paintStats{}
	for _, op := range r.scene.PaintList() {
		if op.Content {
			if r.Content != nil {
				r.Content.DrawContent(dst, op)
				r.stats.content++
			}
			continue
		}
		r.fill(dst, op)
	}
	if r.scene.debug {
		r.stats.log()
	}
}

// fill tessellates the closed contours of op and draws them with the
// nonzero rule.
func (r *Renderer) fill(dst *ebiten.Image, op PaintOp) {
	r.path = vector.Path{}
	closed := 0
	for _, c := range op.Outline.Contours {
		if !c.Closed || len(c.Points) < 3 {
			continue
		}
		r.path.MoveTo(float32(c.Points[0].X), float32(c.Points[0].Y))
		for _, p := range c.Points[1:] {
			r.path.LineTo(float32(p.X), float32(p.Y))
		}
		r.path.Close()
		closed++
	}
	if closed == 0 {
		return
	}
	r.verts, r.inds = r.path.AppendVerticesAndIndicesForFilling(r.verts[:0], r.inds[:0])
	for n := range r.verts {
		v := &r.verts[n]
		local := Vec2{float64(v.DstX), float64(v.DstY)}
		c := op.Paint.ColorAt(local)
		w := op.Transform.Apply(local)
		v.DstX, v.DstY = float32(w.X), float32(w.Y)
		v.SrcX, v.SrcY = 1, 1
		v.ColorR, v.ColorG, v.ColorB, v.ColorA = float32(c.R), float32(c.G), float32(c.B), float32(c.A)
	}
	dst.DrawTriangles(r.verts, r.inds, whiteSubImage, &ebiten.DrawTrianglesOptions{
		AntiAlias: op.AntiAlias,
		FillRule:  ebiten.FillRuleNonZero,
	})
	r.stats.ops++
	r.stats.triangles += len(r.inds) / 3
}

// Stats returns the counters of the last Draw.
func (r *Renderer) Stats() (ops, triangles, content int) {
	return r.stats.ops, r.stats.triangles, r.stats.content
}
