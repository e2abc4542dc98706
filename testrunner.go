package deskgraph

import (
	"encoding/json"
	"fmt"
)

// scriptStep represents a single action in a pointer script.
type scriptStep struct {
	Action string  `json:"action"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Button string  `json:"button,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	DeltaX float64 `json:"deltaX,omitempty"`
	DeltaY float64 `json:"deltaY,omitempty"`
	Frames int     `json:"frames,omitempty"`
}

// scriptFile is the top-level JSON structure for a pointer script.
type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// PointerScript sequences injected pointer events across frames for
// automated interaction tests. Attach it with Dispatcher.SetScript.
//
// Steps: {"action": "move"|"click"|"drag"|"wheel"|"wait", ...}
type PointerScript struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadPointerScript parses a JSON pointer script.
func LoadPointerScript(jsonData []byte) (*PointerScript, error) {
	var script scriptFile
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("deskgraph: parse pointer script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("deskgraph: parse pointer script: no steps")
	}
	for n, st := range script.Steps {
		switch st.Action {
		case "move", "click", "drag", "wheel", "wait":
		default:
			return nil, fmt.Errorf("deskgraph: pointer script step %d: unknown action %q", n, st.Action)
		}
		if _, ok := parseButton(st.Button); !ok {
			return nil, fmt.Errorf("deskgraph: pointer script step %d: unknown button %q", n, st.Button)
		}
	}
	return &PointerScript{steps: script.Steps}, nil
}

func parseButton(s string) (MouseButton, bool) {
	switch s {
	case "", "left":
		return MouseButtonLeft, true
	case "right":
		return MouseButtonRight, true
	case "middle":
		return MouseButtonMiddle, true
	case "x1":
		return MouseButtonX1, true
	case "x2":
		return MouseButtonX2, true
	}
	return 0, false
}

// SetScript attaches a script. Its steps run from Update.
func (d *Dispatcher) SetScript(script *PointerScript) {
	d.runner = script
}

// Done reports whether all steps have been executed.
func (r *PointerScript) Done() bool {
	return r.done
}

// step advances the script by one frame.
func (r *PointerScript) step(d *Dispatcher) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(d.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "move":
		d.InjectMove(st.X, st.Y)
	case "click":
		b, _ := parseButton(st.Button)
		d.InjectClick(st.X, st.Y, b)
	case "drag":
		d.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "wheel":
		d.InjectWheel(st.X, st.Y, Vec2{st.DeltaX, st.DeltaY})
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(d.injectQueue) == 0 {
		r.done = true
	}
}
