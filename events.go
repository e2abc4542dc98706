package deskgraph

import (
	"time"

	"github.com/google/uuid"
)

// HandlerToken is an opaque reference to a host-side handler. Elements store
// tokens in their mouse handler properties; a Dispatcher owns invocation.
type HandlerToken string

// EventKind identifies a mouse event delivered to an element. Each kind maps
// to one handler property, e.g. EventLeftMouseUp to "onLeftMouseUp".
type EventKind uint8

const (
	EventLeftMouseUp EventKind = iota
	EventLeftMouseDown
	EventLeftDoubleClick
	EventRightMouseUp
	EventRightMouseDown
	EventRightDoubleClick
	EventMiddleMouseUp
	EventMiddleMouseDown
	EventMiddleDoubleClick
	EventX1MouseUp
	EventX1MouseDown
	EventX1DoubleClick
	EventX2MouseUp
	EventX2MouseDown
	EventX2DoubleClick
	EventScrollUp
	EventScrollDown
	EventScrollLeft
	EventScrollRight
	EventMouseOver
	EventMouseLeave

	eventKindCount
)

// Prop returns the handler property of k.
func (k EventKind) Prop() PropKey {
	return PropOnLeftMouseUp + PropKey(k)
}

func (k EventKind) String() string {
	if k < eventKindCount {
		return k.Prop().String()
	}
	return "unknown"
}

// buttonEvent returns the up, down or double-click kind for a button.
func buttonEvent(b MouseButton, offset EventKind) EventKind {
	return EventKind(b)*3 + offset
}

// PointerEventType is the type of a raw host pointer event.
type PointerEventType uint8

const (
	PointerMove PointerEventType = iota
	PointerDown
	PointerUp
	PointerWheel
	PointerLeaveWindow
)

// PointerEvent is a raw pointer event from the window host.
type PointerEvent struct {
	Type             PointerEventType
	Button           MouseButton
	ClientX, ClientY float64
	ScreenX, ScreenY float64
	WheelDelta       Vec2 // positive Y scrolls up, positive X scrolls right
	Time             time.Time
}

// Event is what a registered handler receives.
type Event struct {
	Kind   EventKind
	Hit    HitResult
	Button MouseButton
	Wheel  Vec2
}

// InteractionEvent carries a delivered event to the ECS bridge.
type InteractionEvent struct {
	Kind      EventKind
	ElementID string
	ClientX   float64
	ClientY   float64
	LocalX    float64
	LocalY    float64
	PercentX  float64
	PercentY  float64
	Button    MouseButton
	Wheel     Vec2
}

const defaultDoubleClickInterval = 500 * time.Millisecond

// Dispatcher turns raw pointer events into element events. It owns the
// handler table; the scene only stores tokens.
type Dispatcher struct {
	// DoubleClickInterval is the longest gap between two presses on the same
	// element that still counts as a double click.
	DoubleClickInterval time.Duration

	scene    *Scene
	handlers map[HandlerToken]func(Event)
	now      func() time.Time

	hover     ElementRef
	hovering  bool
	cursor    string
	lastPress [5]pressRecord

	injectQueue []PointerEvent
	runner      *PointerScript
}

type pressRecord struct {
	ref  ElementRef
	at   time.Time
	used bool
}

// NewDispatcher creates a dispatcher for s.
func NewDispatcher(s *Scene) *Dispatcher {
	return &Dispatcher{
		DoubleClickInterval: defaultDoubleClickInterval,
		scene:               s,
		handlers:            make(map[HandlerToken]func(Event)),
		now:                 time.Now,
	}
}

// Register stores fn and returns the token to put in a handler property.
func (d *Dispatcher) Register(fn func(Event)) HandlerToken {
	t := HandlerToken(uuid.NewString())
	d.handlers[t] = fn
	return t
}

// Bind stores fn under a caller-chosen token, replacing any handler already
// bound to it. Declarative documents use named tokens.
func (d *Dispatcher) Bind(t HandlerToken, fn func(Event)) {
	d.handlers[t] = fn
}

// Unregister forgets a handler. Elements still holding the token receive
// nothing.
func (d *Dispatcher) Unregister(t HandlerToken) {
	delete(d.handlers, t)
}

// Cursor returns the cursor for the element last under the pointer.
func (d *Dispatcher) Cursor() string {
	return d.cursor
}

// Handle hit-tests ev and delivers the resulting element events. It returns
// the hit, or nil when the pointer is over nothing.
func (d *Dispatcher) Handle(ev PointerEvent) *HitResult {
	if ev.Time.IsZero() {
		ev.Time = d.now()
	}
	var hit *HitResult
	if ev.Type != PointerLeaveWindow {
		hit = d.scene.HitTestEvent(ev)
	}
	d.updateHover(hit, ev)
	if hit == nil {
		d.cursor = ""
		return nil
	}
	d.cursor = hit.Cursor

	if (ev.Type == PointerDown || ev.Type == PointerUp) && ev.Button > MouseButtonX2 {
		return hit
	}

	switch ev.Type {
	case PointerDown:
		rec := &d.lastPress[ev.Button]
		if !rec.used && rec.ref == hit.Ref && d.scene.Alive(rec.ref) && ev.Time.Sub(rec.at) <= d.DoubleClickInterval {
			d.deliver(buttonEvent(ev.Button, 2), *hit, ev)
			rec.used = true
			break
		}
		*rec = pressRecord{ref: hit.Ref, at: ev.Time}
		d.deliver(buttonEvent(ev.Button, 1), *hit, ev)
	case PointerUp:
		d.deliver(buttonEvent(ev.Button, 0), *hit, ev)
	case PointerWheel:
		switch {
		case ev.WheelDelta.Y > 0:
			d.deliver(EventScrollUp, *hit, ev)
		case ev.WheelDelta.Y < 0:
			d.deliver(EventScrollDown, *hit, ev)
		}
		switch {
		case ev.WheelDelta.X > 0:
			d.deliver(EventScrollRight, *hit, ev)
		case ev.WheelDelta.X < 0:
			d.deliver(EventScrollLeft, *hit, ev)
		}
	}
	return hit
}

// updateHover fires leave on the previous element and over on the new one
// when the element under the pointer changes.
func (d *Dispatcher) updateHover(hit *HitResult, ev PointerEvent) {
	var target ElementRef
	if hit != nil {
		target = hit.Ref
	}
	if d.hovering && target == d.hover {
		return
	}
	if d.hovering && d.scene.Alive(d.hover) {
		if r, ok := d.scene.resultForRef(d.hover, Vec2{ev.ClientX, ev.ClientY}, Vec2{ev.ScreenX, ev.ScreenY}); ok {
			d.deliver(EventMouseLeave, r, ev)
		}
	}
	d.hover, d.hovering = target, hit != nil
	if hit != nil {
		d.deliver(EventMouseOver, *hit, ev)
	}
}

// deliver invokes the handler stored on the hit element for kind and
// forwards the event to the entity store.
func (d *Dispatcher) deliver(kind EventKind, hit HitResult, ev PointerEvent) {
	s := d.scene
	if !s.Alive(hit.Ref) {
		return
	}
	e := &s.elems[hit.Ref.slot]
	if tok, ok := e.handler(kind.Prop()); ok {
		if fn := d.handlers[tok]; fn != nil {
			fn(Event{Kind: kind, Hit: hit, Button: ev.Button, Wheel: ev.WheelDelta})
		}
	}
	if s.store != nil {
		s.store.EmitEvent(InteractionEvent{
			Kind:      kind,
			ElementID: hit.Ref.ID,
			ClientX:   hit.Client.X,
			ClientY:   hit.Client.Y,
			LocalX:    hit.Local.X,
			LocalY:    hit.Local.Y,
			PercentX:  hit.Percent.X,
			PercentY:  hit.Percent.Y,
			Button:    ev.Button,
			Wheel:     ev.WheelDelta,
		})
	}
}

// resultForRef maps a window point into ref's local space without testing
// containment.
func (s *Scene) resultForRef(ref ElementRef, client, screen Vec2) (HitResult, bool) {
	if !s.Alive(ref) {
		return HitResult{}, false
	}
	s.worldTransform(ref.slot)
	local := s.elems[ref.slot].worldInv.Apply(client)
	return s.resultFor(ref.slot, local, client, screen), true
}
