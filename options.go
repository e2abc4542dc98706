package deskgraph

// SceneOption configures a Scene during creation.
//
// Example:
//
//	scene := deskgraph.NewScene(
//		deskgraph.WithResourceLoader(loader),
//		deskgraph.WithWindowOrigin(deskgraph.Vec2{X: 120, Y: 80}),
//	)
type SceneOption func(*sceneOptions)

type sceneOptions struct {
	epsilon            float64
	flattenTolerance   float64
	loader             ResourceLoader
	maxConcurrentLoads int
	windowOrigin       Vec2
	store              EntityStore
}

const (
	defaultEpsilon            = 1e-6
	defaultFlattenTolerance   = 0.25
	defaultMaxConcurrentLoads = 4
)

func defaultOptions() sceneOptions {
	return sceneOptions{
		epsilon:            defaultEpsilon,
		flattenTolerance:   defaultFlattenTolerance,
		maxConcurrentLoads: defaultMaxConcurrentLoads,
	}
}

// WithEpsilon sets the coordinate tolerance used by shape combination to
// treat near-touching edges as coincident. Values <= 0 are ignored.
func WithEpsilon(eps float64) SceneOption {
	return func(o *sceneOptions) {
		if eps > 0 {
			o.epsilon = eps
		}
	}
}

// WithFlattenTolerance sets the maximum distance between a curve and the
// polyline that replaces it, in outline units. Values <= 0 are ignored.
func WithFlattenTolerance(tol float64) SceneOption {
	return func(o *sceneOptions) {
		if tol > 0 {
			o.flattenTolerance = tol
		}
	}
}

// WithResourceLoader sets the loader used to resolve text and image sizes.
func WithResourceLoader(l ResourceLoader) SceneOption {
	return func(o *sceneOptions) {
		o.loader = l
	}
}

// WithMaxConcurrentLoads bounds the number of resource loads in flight.
func WithMaxConcurrentLoads(n int) SceneOption {
	return func(o *sceneOptions) {
		if n > 0 {
			o.maxConcurrentLoads = n
		}
	}
}

// WithWindowOrigin sets the window's top-left corner in screen coordinates.
func WithWindowOrigin(p Vec2) SceneOption {
	return func(o *sceneOptions) {
		o.windowOrigin = p
	}
}

// WithEntityStore sets the optional ECS bridge for delivered pointer events.
func WithEntityStore(store EntityStore) SceneOption {
	return func(o *sceneOptions) {
		o.store = store
	}
}
