package deskgraph

import (
	"slices"
	"testing"
	"time"
)

// eventLog records every event delivered to the elements it is bound to.
type eventLog struct {
	events []string
	last   Event
}

func (l *eventLog) handler(e Event) {
	l.events = append(l.events, e.Hit.Ref.ID+":"+e.Kind.String())
	l.last = e
}

func (l *eventLog) reset() { l.events = nil }

// allHandlers returns a patch binding every mouse handler property to tok.
func allHandlers(tok HandlerToken) Props {
	p := Props{}
	for k := EventKind(0); k < eventKindCount; k++ {
		p[k.Prop().String()] = tok
	}
	return p
}

func withProps(base, extra Props) Props {
	out := Props{}
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// newEventScene returns a scene with boxes "a" at x 0-50 and "b" at x
// 100-150, both 50 high and wired to the returned log.
func newEventScene(t *testing.T) (*Scene, *Dispatcher, *eventLog) {
	t.Helper()
	s := NewScene()
	d := NewDispatcher(s)
	log := &eventLog{}
	tok := d.Register(log.handler)
	h := allHandlers(tok)
	mustAdd(t, s, KindShape, "a", withProps(h, Props{"width": 50, "height": 50, "fillColor": "white"}))
	mustAdd(t, s, KindShape, "b", withProps(h, Props{"x": 100, "width": 50, "height": 50, "fillColor": "white"}))
	return s, d, log
}

func move(x, y float64) PointerEvent {
	return PointerEvent{Type: PointerMove, ClientX: x, ClientY: y}
}

func assertEvents(t *testing.T, log *eventLog, want ...string) {
	t.Helper()
	if !slices.Equal(log.events, want) {
		t.Errorf("events = %v, want %v", log.events, want)
	}
	log.reset()
}

func TestHoverOverAndLeave(t *testing.T) {
	_, d, log := newEventScene(t)

	d.Handle(move(10, 10))
	assertEvents(t, log, "a:onMouseOver")

	d.Handle(move(20, 20))
	assertEvents(t, log)

	d.Handle(move(120, 10))
	assertEvents(t, log, "a:onMouseLeave", "b:onMouseOver")

	d.Handle(move(75, 10))
	assertEvents(t, log, "b:onMouseLeave")

	d.Handle(PointerEvent{Type: PointerLeaveWindow})
	assertEvents(t, log)

	d.Handle(move(10, 10))
	d.Handle(PointerEvent{Type: PointerLeaveWindow})
	assertEvents(t, log, "a:onMouseOver", "a:onMouseLeave")
}

func TestHoverOnRemovedElementIsSilent(t *testing.T) {
	s, d, log := newEventScene(t)
	d.Handle(move(10, 10))
	log.reset()

	s.RemoveElement("a")
	d.Handle(move(75, 10))
	assertEvents(t, log)
}

func TestButtonEvents(t *testing.T) {
	_, d, log := newEventScene(t)
	d.Handle(move(10, 10))
	log.reset()

	tests := []struct {
		button MouseButton
		down   string
		up     string
	}{
		{MouseButtonLeft, "a:onLeftMouseDown", "a:onLeftMouseUp"},
		{MouseButtonRight, "a:onRightMouseDown", "a:onRightMouseUp"},
		{MouseButtonMiddle, "a:onMiddleMouseDown", "a:onMiddleMouseUp"},
		{MouseButtonX1, "a:onX1MouseDown", "a:onX1MouseUp"},
		{MouseButtonX2, "a:onX2MouseDown", "a:onX2MouseUp"},
	}
	for _, tt := range tests {
		d.Handle(PointerEvent{Type: PointerDown, Button: tt.button, ClientX: 10, ClientY: 10})
		d.Handle(PointerEvent{Type: PointerUp, Button: tt.button, ClientX: 10, ClientY: 10})
		assertEvents(t, log, tt.down, tt.up)
	}
}

func TestUnknownButtonIgnored(t *testing.T) {
	_, d, log := newEventScene(t)
	d.Handle(move(10, 10))
	log.reset()

	hit := d.Handle(PointerEvent{Type: PointerDown, Button: MouseButton(7), ClientX: 10, ClientY: 10})
	if hit == nil || hit.Ref.ID != "a" {
		t.Fatalf("hit = %v, want a", hit)
	}
	d.Handle(PointerEvent{Type: PointerUp, Button: MouseButton(7), ClientX: 10, ClientY: 10})
	assertEvents(t, log)

	d.Handle(PointerEvent{Type: PointerDown, ClientX: 10, ClientY: 10})
	assertEvents(t, log, "a:onLeftMouseDown")
}

func TestDoubleClick(t *testing.T) {
	_, d, log := newEventScene(t)
	now := time.Unix(1000, 0)
	d.now = func() time.Time { return now }
	d.Handle(move(10, 10))
	log.reset()

	press := func(x float64, after time.Duration) {
		now = now.Add(after)
		d.Handle(PointerEvent{Type: PointerDown, ClientX: x, ClientY: 10})
		d.Handle(PointerEvent{Type: PointerUp, ClientX: x, ClientY: 10})
	}

	press(10, 0)
	press(10, 100*time.Millisecond)
	assertEvents(t, log,
		"a:onLeftMouseDown", "a:onLeftMouseUp",
		"a:onLeftDoubleClick", "a:onLeftMouseUp")

	// A third press starts a new sequence.
	press(10, 100*time.Millisecond)
	assertEvents(t, log, "a:onLeftMouseDown", "a:onLeftMouseUp")

	// Too slow.
	press(10, time.Second)
	assertEvents(t, log, "a:onLeftMouseDown", "a:onLeftMouseUp")

	// A second press on another element is a plain press.
	press(120, 50*time.Millisecond)
	assertEvents(t, log, "a:onMouseLeave", "b:onMouseOver", "b:onLeftMouseDown", "b:onLeftMouseUp")
}

func TestWheelEvents(t *testing.T) {
	_, d, log := newEventScene(t)
	d.Handle(move(10, 10))
	log.reset()

	tests := []struct {
		delta Vec2
		want  []string
	}{
		{Vec2{0, 1}, []string{"a:onScrollUp"}},
		{Vec2{0, -2}, []string{"a:onScrollDown"}},
		{Vec2{3, 0}, []string{"a:onScrollRight"}},
		{Vec2{-1, 1}, []string{"a:onScrollUp", "a:onScrollLeft"}},
		{Vec2{}, nil},
	}
	for _, tt := range tests {
		d.Handle(PointerEvent{Type: PointerWheel, ClientX: 10, ClientY: 10, WheelDelta: tt.delta})
		assertEvents(t, log, tt.want...)
	}
	d.Handle(PointerEvent{Type: PointerWheel, ClientX: 10, ClientY: 10, WheelDelta: Vec2{0, 1}})
	if log.last.Wheel != (Vec2{0, 1}) {
		t.Errorf("event wheel = %v, want {0 1}", log.last.Wheel)
	}
}

func TestHandleMissReturnsNil(t *testing.T) {
	_, d, log := newEventScene(t)
	if hit := d.Handle(PointerEvent{Type: PointerDown, ClientX: 75, ClientY: 10}); hit != nil {
		t.Errorf("Handle over empty space = %+v, want nil", hit)
	}
	assertEvents(t, log)
	if d.Cursor() != "" {
		t.Errorf("cursor = %q, want default", d.Cursor())
	}
}

func TestEventCarriesHitCoordinates(t *testing.T) {
	s, d, log := newEventScene(t)
	s.SetWindowOrigin(Vec2{300, 200})
	d.Handle(PointerEvent{Type: PointerDown, ClientX: 110, ClientY: 25, ScreenX: 410, ScreenY: 225})

	e := log.last
	if e.Kind != EventLeftMouseDown || e.Hit.Ref.ID != "b" {
		t.Fatalf("last event = %v on %q", e.Kind, e.Hit.Ref.ID)
	}
	assertNear(t, "local x", e.Hit.Local.X, 10)
	assertNear(t, "percent x", e.Hit.Percent.X, 20)
	assertNear(t, "percent y", e.Hit.Percent.Y, 50)
	assertNear(t, "screen x", e.Hit.Screen.X, 410)
	if d.Cursor() != "hand" {
		t.Errorf("cursor over handler element = %q, want hand", d.Cursor())
	}
}

func TestBindNamedToken(t *testing.T) {
	s := NewScene()
	d := NewDispatcher(s)
	var got []EventKind
	d.Bind("toggle", func(e Event) { got = append(got, e.Kind) })
	mustAdd(t, s, KindShape, "btn", Props{"width": 10, "height": 10, "fillColor": "white", "onLeftMouseUp": "toggle"})

	d.Handle(PointerEvent{Type: PointerUp, ClientX: 5, ClientY: 5})
	if !slices.Equal(got, []EventKind{EventLeftMouseUp}) {
		t.Errorf("got %v, want [onLeftMouseUp]", got)
	}

	// Rebinding replaces the handler.
	var rebound bool
	d.Bind("toggle", func(Event) { rebound = true })
	d.Handle(PointerEvent{Type: PointerUp, ClientX: 5, ClientY: 5})
	if !rebound || len(got) != 1 {
		t.Error("Bind did not replace the handler")
	}

	if v, _ := s.GetProperty("btn", "onLeftMouseUp"); v != HandlerToken("toggle") {
		t.Errorf("stored token = %v (%T)", v, v)
	}
}

func TestUnregister(t *testing.T) {
	s := NewScene()
	d := NewDispatcher(s)
	calls := 0
	tok := d.Register(func(Event) { calls++ })
	mustAdd(t, s, KindShape, "btn", Props{"width": 10, "height": 10, "fillColor": "white", "onLeftMouseDown": tok})

	d.Handle(PointerEvent{Type: PointerDown, ClientX: 5, ClientY: 5})
	d.Unregister(tok)
	d.Handle(PointerEvent{Type: PointerDown, ClientX: 5, ClientY: 5})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

type recordStore struct {
	events []InteractionEvent
}

func (r *recordStore) EmitEvent(e InteractionEvent) {
	r.events = append(r.events, e)
}

func TestEntityStoreReceivesEvents(t *testing.T) {
	store := &recordStore{}
	s := NewScene(WithEntityStore(store))
	d := NewDispatcher(s)
	// No handler properties: the store still sees the events.
	mustAdd(t, s, KindShape, "box", Props{"x": 10, "width": 100, "height": 100, "fillColor": "white"})

	d.Handle(PointerEvent{Type: PointerDown, Button: MouseButtonRight, ClientX: 60, ClientY: 25})

	if len(store.events) != 2 {
		t.Fatalf("store got %d events, want 2", len(store.events))
	}
	over, down := store.events[0], store.events[1]
	if over.Kind != EventMouseOver || down.Kind != EventRightMouseDown {
		t.Errorf("kinds = %v, %v", over.Kind, down.Kind)
	}
	if down.ElementID != "box" || down.Button != MouseButtonRight {
		t.Errorf("down = %+v", down)
	}
	assertNear(t, "local x", down.LocalX, 50)
	assertNear(t, "percent y", down.PercentY, 25)
}

func TestEventKindProps(t *testing.T) {
	if EventLeftMouseUp.Prop() != PropOnLeftMouseUp || EventMouseLeave.Prop() != PropOnMouseLeave {
		t.Error("event kinds are out of step with handler properties")
	}
	if EventX2DoubleClick.String() != "onX2DoubleClick" {
		t.Errorf("String() = %q", EventX2DoubleClick.String())
	}
	if eventKindCount.String() != "unknown" {
		t.Errorf("out of range String() = %q", eventKindCount.String())
	}
}
