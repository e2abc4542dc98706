package deskgraph

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, delivered pointer events are forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// Scene owns the element arena, the container tree, group membership and
// every derived cache. All methods except Post must be called from the
// goroutine that drives Update.
type Scene struct {
	opts sceneOptions

	elems  []element
	free   []int32
	byID   map[string]int32
	roots  []int32
	groups map[string][]int32

	mu     sync.Mutex
	posted []func(*Scene)

	loads  *loadQueue
	tweens []*PropertyTween
	store  EntityStore
	debug  bool

	windowOrigin Vec2
	hitBuf       []int32
}

// NewScene creates an empty scene.
func NewScene(opts ...SceneOption) *Scene {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	s := &Scene{
		opts:         o,
		byID:         make(map[string]int32),
		groups:       make(map[string][]int32),
		store:        o.store,
		windowOrigin: o.windowOrigin,
	}
	s.loads = newLoadQueue(s, o.loader, o.maxConcurrentLoads)
	return s
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// SetWindowOrigin records the window's top-left corner in screen
// coordinates. HitTest uses it to fill HitResult.Screen.
func (s *Scene) SetWindowOrigin(p Vec2) {
	s.windowOrigin = p
}

// WindowOrigin returns the window's top-left corner in screen coordinates.
func (s *Scene) WindowOrigin() Vec2 {
	return s.windowOrigin
}

// Post queues fn to run on the scene goroutine during the next Update. It is
// safe to call from any goroutine.
func (s *Scene) Post(fn func(*Scene)) {
	s.mu.Lock()
	s.posted = append(s.posted, fn)
	s.mu.Unlock()
}

// Update runs posted work, starts queued resource loads and advances
// property tweens by dt seconds.
func (s *Scene) Update(dt float64) {
	s.mu.Lock()
	work := s.posted
	s.posted = nil
	s.mu.Unlock()
	for _, fn := range work {
		fn(s)
	}
	s.loads.pump()
	s.updateTweens(dt)
}

// Len returns the number of live elements.
func (s *Scene) Len() int {
	return len(s.byID)
}

// Lookup returns a ref for id.
func (s *Scene) Lookup(id string) (ElementRef, bool) {
	i, ok := s.byID[id]
	if !ok {
		return ElementRef{}, false
	}
	return s.elems[i].ref(i), true
}

// Alive reports whether ref still names the element it was created for.
func (s *Scene) Alive(ref ElementRef) bool {
	if ref.slot < 0 || int(ref.slot) >= len(s.elems) {
		return false
	}
	e := &s.elems[ref.slot]
	return e.alive && e.gen == ref.gen && e.id == ref.ID
}

// Elements returns every element in paint order: each root-scope element in
// insertion order, followed by the elements it contains.
func (s *Scene) Elements() []ElementRef {
	order := s.paintOrder(nil, false)
	out := make([]ElementRef, len(order))
	for n, i := range order {
		out[n] = s.elems[i].ref(i)
	}
	return out
}

// paintOrder appends slots depth-first. Hidden subtrees are skipped unless
// includeHidden is set.
func (s *Scene) paintOrder(buf []int32, includeHidden bool) []int32 {
	var walk func(i int32)
	walk = func(i int32) {
		e := &s.elems[i]
		if !e.show && !includeHidden {
			return
		}
		buf = append(buf, i)
		for _, c := range e.children {
			walk(c)
		}
	}
	for _, i := range s.roots {
		walk(i)
	}
	return buf
}

// GroupMembers returns the members of group in insertion order.
func (s *Scene) GroupMembers(group string) []ElementRef {
	members := s.groups[group]
	out := make([]ElementRef, len(members))
	for n, i := range members {
		out[n] = s.elems[i].ref(i)
	}
	return out
}

// AddElement creates an element, or updates it in place when id already
// exists with the same kind. An empty id gets a generated one. Shapes whose
// type is "combine" are combined from their operands immediately.
func (s *Scene) AddElement(kind Kind, id string, props Props) (ElementRef, error) {
	if kind < KindText || kind > KindRoundLine {
		return ElementRef{}, fmt.Errorf("deskgraph: add element %q: kind %d: %w", id, kind, ErrInvalidValue)
	}
	cp, err := compilePatch(props)
	if err != nil {
		return ElementRef{}, err
	}
	if id == "" {
		if e, ok := cp.lookup(PropID); ok && !e.unset {
			id = e.val.str
		} else {
			id = kind.String() + "-" + uuid.NewString()
		}
	}
	if e, ok := cp.lookup(PropID); ok && !e.unset && e.val.str != id {
		return ElementRef{}, fmt.Errorf("deskgraph: add element %q: id property %q differs: %w", id, e.val.str, ErrInvalidValue)
	}

	if i, ok := s.byID[id]; ok {
		e := &s.elems[i]
		if e.kind != kind {
			return ElementRef{}, fmt.Errorf("deskgraph: add %s %q: exists as %s: %w", kind, id, e.kind, ErrDuplicateKindMismatch)
		}
		if err := s.validatePatch(i, id, kind, cp); err != nil {
			return ElementRef{}, err
		}
		s.applyPatch(i, cp)
		s.afterPatch(i, cp)
		return s.elems[i].ref(i), nil
	}

	if err := s.validatePatch(-1, id, kind, cp); err != nil {
		return ElementRef{}, err
	}
	i := s.alloc(id, kind)
	s.roots = append(s.roots, i)
	s.applyPatch(i, cp)
	s.afterPatch(i, cp)
	if s.debug {
		s.debugCheckDepth(i)
	}
	return s.elems[i].ref(i), nil
}

func (s *Scene) alloc(id string, kind Kind) int32 {
	var i int32
	if n := len(s.free); n > 0 {
		i = s.free[n-1]
		s.free = s.free[:n-1]
		s.elems[i] = newElement(id, kind, s.elems[i].gen+1)
	} else {
		i = int32(len(s.elems))
		s.elems = append(s.elems, newElement(id, kind, 1))
	}
	s.byID[id] = i
	return i
}

// validatePatch checks every cross-element reference in cp against the
// current scene without changing it. slot is -1 for an element that does not
// exist yet.
func (s *Scene) validatePatch(slot int32, id string, kind Kind, cp *compiledPatch) error {
	if e, ok := cp.lookup(PropContainer); ok && !e.unset && e.val.str != "" {
		target, exists := s.byID[e.val.str]
		if e.val.str == id {
			return fmt.Errorf("deskgraph: %q cannot contain itself: %w", id, ErrCyclicContainer)
		}
		if !exists {
			return fmt.Errorf("deskgraph: container %q of %q: %w", e.val.str, id, ErrUnknownReference)
		}
		if slot >= 0 && s.isAncestor(slot, target) {
			return fmt.Errorf("deskgraph: container %q of %q: %w", e.val.str, id, ErrCyclicContainer)
		}
	}
	if kind == KindShape && s.patchedCombine(slot, cp) {
		return s.validateCombineRefs(slot, id, cp)
	}
	return nil
}

// isAncestor reports whether anc is in the container chain of i, or is i.
func (s *Scene) isAncestor(anc, i int32) bool {
	for n := 0; i >= 0 && n <= len(s.elems); n++ {
		if i == anc {
			return true
		}
		i = s.elems[i].parent
	}
	return false
}

// applyPatch writes a validated patch.
func (s *Scene) applyPatch(i int32, cp *compiledPatch) {
	for _, pe := range cp.entries {
		e := &s.elems[i]
		if pe.extra != "" {
			if pe.unset {
				delete(e.extra, pe.extra)
				continue
			}
			if e.extra == nil {
				e.extra = make(map[string]any)
			}
			e.extra[pe.extra] = pe.raw
			continue
		}
		switch pe.key {
		case PropID:
			continue
		case PropContainer:
			target := int32(-1)
			if !pe.unset && pe.val.str != "" {
				target = s.byID[pe.val.str]
			}
			s.setContainer(i, target)
		case PropGroup:
			name := ""
			if !pe.unset {
				name = pe.val.str
			}
			s.setGroup(i, name)
		}
		e = &s.elems[i]
		if pe.unset || (pe.key == PropContainer && pe.val.str == "") {
			e.unset(pe.key)
		} else {
			e.set(pe.key, pe.val)
		}
	}

	e := &s.elems[i]
	switch {
	case cp.flags&flagGeometry != 0:
		e.invalidateGeometry()
	case cp.flags&flagPaint != 0:
		e.invalidatePaint()
	}
	if cp.flags&(flagGeometry|flagTransform) != 0 {
		s.markSubtreeDirty(i)
	}
	if cp.flags&flagResource != 0 {
		s.requestResource(i)
	}
}

// afterPatch runs the work a patch triggers beyond storing values.
func (s *Scene) afterPatch(i int32, cp *compiledPatch) {
	if s.elems[i].kind == KindShape && s.patchedCombine(i, cp) {
		s.buildCombine(i)
	}
}

// setContainer moves slot i to the end of the target scope. target -1 is the
// root scope. Moving to the current container keeps the z-order slot.
func (s *Scene) setContainer(i, target int32) {
	e := &s.elems[i]
	if e.parent == target {
		return
	}
	s.detachFromScope(i)
	e = &s.elems[i]
	e.parent = target
	if target >= 0 {
		p := &s.elems[target]
		p.children = append(p.children, i)
		if s.debug {
			s.debugCheckChildren(target)
		}
	} else {
		s.roots = append(s.roots, i)
	}
	s.markSubtreeDirty(i)
}

func (s *Scene) detachFromScope(i int32) {
	e := &s.elems[i]
	if e.parent >= 0 {
		p := &s.elems[e.parent]
		p.children = removeSlot(p.children, i)
	} else {
		s.roots = removeSlot(s.roots, i)
	}
}

func (s *Scene) setGroup(i int32, name string) {
	e := &s.elems[i]
	if e.group == name {
		return
	}
	if e.group != "" {
		members := removeSlot(s.groups[e.group], i)
		if len(members) == 0 {
			delete(s.groups, e.group)
		} else {
			s.groups[e.group] = members
		}
	}
	if name != "" {
		s.groups[name] = append(s.groups[name], i)
	}
}

func removeSlot(list []int32, i int32) []int32 {
	if n := slices.Index(list, i); n >= 0 {
		return slices.Delete(list, n, n+1)
	}
	return list
}

// RemoveElement removes id. Removing a missing id is a no-op. Elements
// contained in id move to the end of the root scope.
func (s *Scene) RemoveElement(id string) {
	i, ok := s.byID[id]
	if !ok {
		return
	}
	s.removeSlot(i)
}

// RemoveElementsByGroup removes every member of group and forgets the group.
func (s *Scene) RemoveElementsByGroup(group string) {
	members := slices.Clone(s.groups[group])
	delete(s.groups, group)
	for _, i := range members {
		e := &s.elems[i]
		e.group = ""
		s.removeSlot(i)
	}
}

func (s *Scene) removeSlot(i int32) {
	e := &s.elems[i]
	if !e.alive {
		return
	}
	if e.res.cancel != nil {
		e.res.cancel()
	}
	s.setGroup(i, "")

	// Orphan contained elements, preserving their relative order.
	children := slices.Clone(s.elems[i].children)
	for _, c := range children {
		ce := &s.elems[c]
		ce.parent = -1
		ce.unset(PropContainer)
		s.roots = append(s.roots, c)
		s.markSubtreeDirty(c)
	}
	s.detachFromScope(i)

	e = &s.elems[i]
	delete(s.byID, e.id)
	gen := e.gen
	*e = element{gen: gen, parent: -1}
	s.free = append(s.free, i)
}

// ResolveContainerChain returns the containers of id ordered from the root
// scope to the immediate container.
func (s *Scene) ResolveContainerChain(id string) ([]ElementRef, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("deskgraph: resolve container chain of %q: %w", id, ErrUnknownReference)
	}
	var chain []ElementRef
	for p := s.elems[i].parent; p >= 0; p = s.elems[p].parent {
		if p == i || len(chain) > len(s.elems) {
			return nil, fmt.Errorf("deskgraph: resolve container chain of %q: %w", id, ErrCyclicContainer)
		}
		chain = append(chain, s.elems[p].ref(p))
	}
	slices.Reverse(chain)
	return chain, nil
}

// GetProperty returns a property value. ok is false when the element does
// not exist or the property was never set. width and height report the
// effective size when it can be resolved.
func (s *Scene) GetProperty(id, name string) (any, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	e := &s.elems[i]
	k, known := LookupProp(name)
	if !known {
		if equalFold(name, "kind") {
			return e.kind.String(), true
		}
		v, ok := e.extra[name]
		return v, ok
	}
	switch k {
	case PropID:
		return e.id, true
	case PropWidth, PropHeight:
		if v, ok := e.vals[k]; ok {
			return v.num, true
		}
		w, h, ok := s.contentSize(e)
		if !ok {
			return nil, false
		}
		if k == PropWidth {
			return w, true
		}
		return h, true
	}
	v, ok := e.vals[k]
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

// SetProperties merges patch into id. The whole patch is validated first;
// on error nothing changes.
func (s *Scene) SetProperties(id string, patch Props) error {
	i, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("deskgraph: set properties of %q: %w", id, ErrUnknownReference)
	}
	cp, err := compilePatch(patch)
	if err != nil {
		return err
	}
	e := &s.elems[i]
	if pe, ok := cp.lookup(PropID); ok && (pe.unset || pe.val.str != id) {
		return fmt.Errorf("deskgraph: set properties of %q: id is immutable: %w", id, ErrInvalidValue)
	}
	if err := s.validatePatch(i, id, e.kind, cp); err != nil {
		return err
	}
	s.applyPatch(i, cp)
	s.afterPatch(i, cp)
	return nil
}

// SetPropertiesByGroup applies patch to every member of group. The patch is
// converted once and validated against every member before any member
// changes. An unknown group is a no-op.
func (s *Scene) SetPropertiesByGroup(group string, patch Props) error {
	members := slices.Clone(s.groups[group])
	if len(members) == 0 {
		return nil
	}
	cp, err := compilePatch(patch)
	if err != nil {
		return err
	}
	if _, ok := cp.lookup(PropID); ok {
		return fmt.Errorf("deskgraph: set properties of group %q: id is immutable: %w", group, ErrInvalidValue)
	}
	for _, i := range members {
		e := &s.elems[i]
		if err := s.validatePatch(i, e.id, e.kind, cp); err != nil {
			return err
		}
	}
	for _, i := range members {
		if s.elems[i].alive {
			s.applyPatch(i, cp)
		}
	}
	for _, i := range members {
		if s.elems[i].alive {
			s.afterPatch(i, cp)
		}
	}
	return nil
}

// SetDebugMode enables or disables debug diagnostics. When enabled, container
// depth and child count warnings and per-frame paint statistics are logged at
// debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
}
