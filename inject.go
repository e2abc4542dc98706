package deskgraph

// InjectPointer queues a synthetic pointer event. Queued events are consumed
// one per Update, so a sequence spans several frames like real input.
func (d *Dispatcher) InjectPointer(ev PointerEvent) {
	if ev.ScreenX == 0 && ev.ScreenY == 0 {
		o := d.scene.windowOrigin
		ev.ScreenX, ev.ScreenY = ev.ClientX+o.X, ev.ClientY+o.Y
	}
	d.injectQueue = append(d.injectQueue, ev)
}

// InjectMove queues a pointer move to the window point (x, y).
func (d *Dispatcher) InjectMove(x, y float64) {
	d.InjectPointer(PointerEvent{Type: PointerMove, ClientX: x, ClientY: y})
}

// InjectClick queues a press followed by a release of button at the same
// window point. Consumes two frames.
func (d *Dispatcher) InjectClick(x, y float64, button MouseButton) {
	d.InjectPointer(PointerEvent{Type: PointerDown, Button: button, ClientX: x, ClientY: y})
	d.InjectPointer(PointerEvent{Type: PointerUp, Button: button, ClientX: x, ClientY: y})
}

// InjectWheel queues a wheel event at (x, y).
func (d *Dispatcher) InjectWheel(x, y float64, delta Vec2) {
	d.InjectPointer(PointerEvent{Type: PointerWheel, ClientX: x, ClientY: y, WheelDelta: delta})
}

// InjectDrag queues a full drag sequence: press at (fromX, fromY), linearly
// interpolated moves over frames-2 intermediate frames, and release at
// (toX, toY). The total sequence consumes `frames` frames. Minimum frames is
// 2 (press + release).
func (d *Dispatcher) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	d.InjectPointer(PointerEvent{Type: PointerDown, ClientX: fromX, ClientY: fromY})
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		d.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	d.InjectPointer(PointerEvent{Type: PointerUp, ClientX: toX, ClientY: toY})
}

// Pending returns the number of queued synthetic events.
func (d *Dispatcher) Pending() int {
	return len(d.injectQueue)
}

// Update advances an attached PointerScript and delivers at most one queued
// synthetic event. It reports whether an event was delivered, in which case
// real input should be skipped for the frame.
func (d *Dispatcher) Update() bool {
	if d.runner != nil {
		d.runner.step(d)
	}
	if len(d.injectQueue) == 0 {
		return false
	}
	ev := d.injectQueue[0]
	copy(d.injectQueue, d.injectQueue[1:])
	d.injectQueue = d.injectQueue[:len(d.injectQueue)-1]
	d.Handle(ev)
	return true
}
