package deskgraph

import (
	"context"
	"image"
)

// ElementRef is a stable handle to an element. A ref goes stale when the
// element is removed, even if the id is later reused.
type ElementRef struct {
	ID   string
	Kind Kind

	slot int32
	gen  uint32
}

// Valid reports whether the ref was returned for a live element. Use
// Scene.Alive to check it against the current scene state.
func (r ElementRef) Valid() bool { return r.ID != "" }

// element is one arena slot. Core properties are mirrored into typed fields;
// everything else lives in vals.
type element struct {
	id    string
	kind  Kind
	gen   uint32
	alive bool

	vals  map[PropKey]Value
	extra map[string]any

	// Core mirrors.
	x, y, rotate  float64
	width, height float64
	hasWidth      bool
	hasHeight     bool
	show          bool
	antiAlias     bool
	hitTest       bool
	group         string
	cursor        string

	parent   int32 // -1 for the root scope
	children []int32

	// Transform cache.
	transformDirty bool
	world          Matrix
	worldInv       Matrix

	// Derived geometry and paint.
	geom     *geometry
	samplers []Sampler

	res     resourceState
	combine *combineState
}

// resourceState tracks the asynchronously resolved size of text and image
// content.
type resourceState struct {
	seq      uint64
	cancel   context.CancelFunc
	pending  bool
	resolved bool
	width    float64
	height   float64
	mask     *image.Alpha // alpha at the resource's native size
	scaled   *image.Alpha // mask scaled to the content box
}

func newElement(id string, kind Kind, gen uint32) element {
	return element{
		id:             id,
		kind:           kind,
		gen:            gen,
		alive:          true,
		vals:           make(map[PropKey]Value),
		show:           true,
		antiAlias:      true,
		hitTest:        true,
		parent:         -1,
		transformDirty: true,
		world:          Identity,
		worldInv:       Identity,
	}
}

func (e *element) ref(slot int32) ElementRef {
	return ElementRef{ID: e.id, Kind: e.kind, slot: slot, gen: e.gen}
}

// set stores v under k and refreshes the core mirror for k.
func (e *element) set(k PropKey, v Value) {
	e.vals[k] = v
	e.syncCore(k)
}

func (e *element) unset(k PropKey) {
	delete(e.vals, k)
	e.syncCore(k)
}

func (e *element) syncCore(k PropKey) {
	switch k {
	case PropX:
		e.x = e.num(PropX, 0)
	case PropY:
		e.y = e.num(PropY, 0)
	case PropRotate:
		e.rotate = e.num(PropRotate, 0)
	case PropWidth:
		v, ok := e.vals[PropWidth]
		e.width, e.hasWidth = v.num, ok && v.num >= 0
	case PropHeight:
		v, ok := e.vals[PropHeight]
		e.height, e.hasHeight = v.num, ok && v.num >= 0
	case PropShow:
		e.show = e.flag(PropShow, true)
	case PropAntiAlias:
		e.antiAlias = e.flag(PropAntiAlias, true)
	case PropHitTest:
		e.hitTest = e.flag(PropHitTest, true)
	case PropCursor:
		e.cursor = e.str(PropCursor, "")
	case PropGroup:
		e.group = e.str(PropGroup, "")
	}
}

func (e *element) has(k PropKey) bool {
	_, ok := e.vals[k]
	return ok
}

func (e *element) num(k PropKey, def float64) float64 {
	if v, ok := e.vals[k]; ok {
		return v.num
	}
	return def
}

func (e *element) str(k PropKey, def string) string {
	if v, ok := e.vals[k]; ok {
		return v.str
	}
	return def
}

func (e *element) flag(k PropKey, def bool) bool {
	if v, ok := e.vals[k]; ok {
		return v.b
	}
	return def
}

func (e *element) colorSpec(k PropKey) (ColorSpec, bool) {
	v, ok := e.vals[k]
	if !ok {
		return ColorSpec{}, false
	}
	return v.color, true
}

func (e *element) array(k PropKey) ([]float64, bool) {
	v, ok := e.vals[k]
	if !ok {
		return nil, false
	}
	return v.arr, true
}

func (e *element) handler(k PropKey) (HandlerToken, bool) {
	v, ok := e.vals[k]
	if !ok || v.handler == "" {
		return "", false
	}
	return v.handler, true
}

// hasHandlers reports whether any mouse handler property is set.
func (e *element) hasHandlers() bool {
	for k := PropOnLeftMouseUp; k <= PropOnMouseLeave; k++ {
		if _, ok := e.handler(k); ok {
			return true
		}
	}
	return false
}

// matrixProp returns a six-value array property as an affine matrix.
func (e *element) matrixProp(k PropKey) (Matrix, bool) {
	arr, ok := e.array(k)
	if !ok || len(arr) != 6 {
		return Identity, false
	}
	var m Matrix
	copy(m[:], arr)
	return m, true
}

// padding returns [left, top, right, bottom].
func (e *element) padding() [4]float64 {
	arr, ok := e.array(PropPadding)
	if !ok {
		return [4]float64{}
	}
	return normalizePadding(arr)
}

// invalidateGeometry drops derived geometry and paint.
func (e *element) invalidateGeometry() {
	e.geom = nil
	e.samplers = nil
}

func (e *element) invalidatePaint() {
	e.samplers = nil
}
