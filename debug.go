package deskgraph

// paintStats holds per-frame paint metrics.
// Only logged when the scene is in debug mode.
type paintStats struct {
	ops       int
	triangles int
	content   int
}

func (st paintStats) log() {
	Logger().Debug("deskgraph: paint", "ops", st.ops, "triangles", st.triangles, "content", st.content)
}

// debugMaxDepth is the container depth above which a warning is logged.
const debugMaxDepth = 32

func (s *Scene) debugCheckDepth(i int32) {
	depth := 0
	for p := i; p >= 0 && depth <= len(s.elems); p = s.elems[p].parent {
		depth++
	}
	if depth > debugMaxDepth {
		Logger().Warn("deskgraph: container depth exceeds threshold",
			"id", s.elems[i].id, "depth", depth, "threshold", debugMaxDepth)
	}
}

// debugMaxChildCount is the child count above which a warning is logged.
const debugMaxChildCount = 1000

func (s *Scene) debugCheckChildren(i int32) {
	if n := len(s.elems[i].children); n > debugMaxChildCount {
		Logger().Warn("deskgraph: container has many children",
			"id", s.elems[i].id, "children", n, "threshold", debugMaxChildCount)
	}
	s.debugCheckDepth(i)
}
