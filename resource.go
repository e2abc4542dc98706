package deskgraph

import (
	"context"
	"image"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// ResourceRequest describes the content of a text or image element whose
// size must be measured.
type ResourceRequest struct {
	ID   string
	Kind Kind

	// Text
	Text       string
	FontFace   string
	FontSize   float64
	FontWeight string

	// Image
	Path string
}

// ResourceInfo is the result of a load. Mask is optional; when present it is
// the image's alpha at its native size and gates image hit-testing.
type ResourceInfo struct {
	Width  float64
	Height float64
	Mask   *image.Alpha
}

// ResourceLoader measures text and decodes images. Load runs on a background
// goroutine and must honor ctx cancellation.
type ResourceLoader interface {
	Load(ctx context.Context, req ResourceRequest) (ResourceInfo, error)
}

// ResourceLoaderFunc adapts a function to ResourceLoader.
type ResourceLoaderFunc func(ctx context.Context, req ResourceRequest) (ResourceInfo, error)

// Load calls f.
func (f ResourceLoaderFunc) Load(ctx context.Context, req ResourceRequest) (ResourceInfo, error) {
	return f(ctx, req)
}

// defaultFontSize is the text size used when fontSize is not set.
const defaultFontSize = 10

type loadJob struct {
	ctx  context.Context
	req  ResourceRequest
	slot int32
	gen  uint32
	seq  uint64
}

// loadQueue runs loads on at most max goroutines. Jobs that do not fit wait
// in pending and start from pump.
type loadQueue struct {
	scene   *Scene
	loader  ResourceLoader
	group   errgroup.Group
	pending []loadJob
}

func newLoadQueue(s *Scene, loader ResourceLoader, max int) *loadQueue {
	q := &loadQueue{scene: s, loader: loader}
	q.group.SetLimit(max)
	return q
}

// submit starts job now if a worker is free, otherwise queues it.
func (q *loadQueue) submit(job loadJob) {
	if !q.group.TryGo(func() error { q.run(job); return nil }) {
		q.pending = append(q.pending, job)
	}
}

// pump starts queued jobs while workers are free. Cancelled jobs are
// skipped.
func (q *loadQueue) pump() {
	n := 0
	for n < len(q.pending) {
		job := q.pending[n]
		if job.ctx.Err() != nil {
			n++
			continue
		}
		if !q.group.TryGo(func() error { q.run(job); return nil }) {
			break
		}
		n++
	}
	if n > 0 {
		q.pending = append(q.pending[:0], q.pending[n:]...)
	}
}

// wait blocks until every started load has finished. Results still need an
// Update to apply.
func (q *loadQueue) wait() {
	_ = q.group.Wait()
}

func (q *loadQueue) run(job loadJob) {
	info, err := q.loader.Load(job.ctx, job.req)
	if job.ctx.Err() != nil {
		return
	}
	q.scene.Post(func(s *Scene) {
		s.applyResource(job, info, err)
	})
}

// requestResource starts a load for a text or image element, cancelling any
// load still in flight for it. Without a loader the element keeps its
// declared size.
func (s *Scene) requestResource(i int32) {
	e := &s.elems[i]
	if e.kind != KindText && e.kind != KindImage {
		return
	}
	if e.res.cancel != nil {
		e.res.cancel()
		e.res.cancel = nil
	}
	if s.loads.loader == nil {
		return
	}
	req := ResourceRequest{ID: e.id, Kind: e.kind}
	if e.kind == KindText {
		req.Text = e.str(PropText, "")
		req.FontFace = e.str(PropFontFace, "")
		req.FontSize = e.num(PropFontSize, defaultFontSize)
		req.FontWeight = e.str(PropFontWeight, "")
	} else {
		req.Path = e.str(PropPath, "")
		if req.Path == "" {
			e.res = resourceState{seq: e.res.seq}
			return
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.res.seq++
	e.res.cancel = cancel
	e.res.pending = true
	s.loads.submit(loadJob{ctx: ctx, req: req, slot: i, gen: e.gen, seq: e.res.seq})
}

// applyResource stores a load result. Results for removed elements, reused
// slots or superseded requests are dropped.
func (s *Scene) applyResource(job loadJob, info ResourceInfo, err error) {
	if int(job.slot) >= len(s.elems) {
		return
	}
	e := &s.elems[job.slot]
	if !e.alive || e.gen != job.gen || e.id != job.req.ID || e.res.seq != job.seq {
		Logger().Debug("deskgraph: dropped stale resource", "id", job.req.ID)
		return
	}
	e.res.cancel = nil
	e.res.pending = false
	e.res.resolved = true
	e.res.scaled = nil
	if err != nil {
		Logger().Warn("deskgraph: resource load failed", "id", job.req.ID, "kind", job.req.Kind, "err", err)
		e.res.width, e.res.height, e.res.mask = 0, 0, nil
	} else {
		e.res.width, e.res.height, e.res.mask = info.Width, info.Height, info.Mask
	}
	e.invalidateGeometry()
	s.markSubtreeDirty(job.slot)
}

// WaitForResources blocks until every load in flight has finished, then
// applies the results. Queued loads are started as workers free up.
func (s *Scene) WaitForResources() {
	for {
		s.loads.wait()
		s.Update(0)
		if len(s.loads.pending) > 0 {
			continue
		}
		s.loads.wait()
		if !s.hasPendingPosts() {
			return
		}
	}
}

func (s *Scene) hasPendingPosts() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posted) > 0
}

// scaledMask returns the resource mask of e resized to the content box, or
// nil when e has no mask.
func (s *Scene) scaledMask(e *element, content Rect) *image.Alpha {
	m := e.res.mask
	if m == nil {
		return nil
	}
	w, h := int(content.Width+0.5), int(content.Height+0.5)
	if w <= 0 || h <= 0 {
		return nil
	}
	if sc := e.res.scaled; sc != nil && sc.Bounds().Dx() == w && sc.Bounds().Dy() == h {
		return sc
	}
	sc := image.NewAlpha(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(sc, sc.Bounds(), m, m.Bounds(), xdraw.Src, nil)
	e.res.scaled = sc
	return sc
}
