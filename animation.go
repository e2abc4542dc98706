package deskgraph

import (
	"fmt"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// PropertyTween animates one numeric property of an element. Create one via
// Scene.Tween; the scene advances it from Update. If the element is removed
// (or its id reused by a new element) the tween stops immediately.
type PropertyTween struct {
	tween *gween.Tween
	ref   ElementRef
	key   PropKey
	Done  bool
}

// Tween animates the numeric property name of id from its current value to
// `to` over duration seconds using fn. A nil fn is linear.
func (s *Scene) Tween(id, name string, to, duration float64, fn ease.TweenFunc) (*PropertyTween, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("deskgraph: tween %q of %q: %w", name, id, ErrUnknownReference)
	}
	k, ok := LookupProp(name)
	if !ok || propTable[k].kind != valNumber {
		return nil, fmt.Errorf("deskgraph: tween %q of %q: not a numeric property: %w", name, id, ErrInvalidValue)
	}
	if fn == nil {
		fn = ease.Linear
	}
	e := &s.elems[i]
	from := e.num(k, 0)
	if k == PropWidth || k == PropHeight {
		if w, h, ok := s.contentSize(e); ok && !e.has(k) {
			from = w
			if k == PropHeight {
				from = h
			}
		}
	}
	t := &PropertyTween{
		tween: gween.New(float32(from), float32(to), float32(duration), fn),
		ref:   e.ref(i),
		key:   k,
	}
	s.tweens = append(s.tweens, t)
	return t, nil
}

// update advances the tween by dt seconds and writes the value through the
// normal property path.
func (t *PropertyTween) update(s *Scene, dt float64) {
	if t.Done {
		return
	}
	if !s.Alive(t.ref) {
		t.Done = true
		return
	}
	val, finished := t.tween.Update(float32(dt))
	t.Done = finished
	cp := &compiledPatch{}
	cp.add(t.key, Value{kind: valNumber, num: float64(val)})
	s.applyPatch(t.ref.slot, cp)
}

// Stop ends the tween at its current value.
func (t *PropertyTween) Stop() {
	t.Done = true
}

// updateTweens advances every running tween and drops finished ones.
func (s *Scene) updateTweens(dt float64) {
	if len(s.tweens) == 0 {
		return
	}
	live := s.tweens[:0]
	for _, t := range s.tweens {
		t.update(s, dt)
		if !t.Done {
			live = append(live, t)
		}
	}
	clear(s.tweens[len(live):])
	s.tweens = live
}
