package deskgraph

import "math"

// Matrix is a 2D affine transform.
//
//	Layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Matrix [6]float64

// Identity is the identity affine matrix.
var Identity = Matrix{1, 0, 0, 1, 0, 0}

// Translate returns a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{1, 0, 0, 1, x, y}
}

// RotateDegrees returns a rotation matrix for a clockwise-positive angle in
// degrees (Y grows downward). The angle is reduced mod 360 first so that whole
// turns produce the exact identity.
func RotateDegrees(deg float64) Matrix {
	deg = math.Mod(deg, 360)
	if deg == 0 {
		return Identity
	}
	sin, cos := math.Sincos(deg * math.Pi / 180)
	// Snap quarter turns so axis-aligned rotations stay exact.
	switch deg {
	case 90, -270:
		sin, cos = 1, 0
	case 180, -180:
		sin, cos = 0, -1
	case 270, -90:
		sin, cos = -1, 0
	}
	return Matrix{cos, sin, -sin, cos, 0, 0}
}

// Multiply returns m * c (c is applied first).
func (m Matrix) Multiply(c Matrix) Matrix {
	return multiplyAffine(m, c)
}

// Invert returns the inverse of m, or the identity if m is singular.
func (m Matrix) Invert() Matrix {
	return invertAffine(m)
}

// Apply transforms a point.
func (m Matrix) Apply(p Vec2) Vec2 {
	x, y := transformPoint(m, p.X, p.Y)
	return Vec2{x, y}
}

// ApplyVector transforms a direction, ignoring translation.
func (m Matrix) ApplyVector(v Vec2) Vec2 {
	return Vec2{m[0]*v.X + m[2]*v.Y, m[1]*v.X + m[3]*v.Y}
}

// IsIdentity reports whether m equals the identity within 1e-12.
func (m Matrix) IsIdentity() bool {
	for i := range m {
		if math.Abs(m[i]-Identity[i]) > 1e-12 {
			return false
		}
	}
	return true
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
func multiplyAffine(p, c Matrix) Matrix {
	return Matrix{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular (determinant ≈ 0).
func invertAffine(m Matrix) Matrix {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return Identity
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Matrix{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m Matrix, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// computeLocalTransform maps the element's local space into its container's
// content space (or the window when it has no container).
//
// Composition order:
//
//	Translate(-pivot) -> Rotate (or transformMatrix) -> Translate(pivot) -> Translate(X, Y)
//
// The pivot is the center of the element's box.
func (s *Scene) computeLocalTransform(e *element) Matrix {
	pivot := s.boxOf(e).Center()
	var rot Matrix
	if m, ok := e.matrixProp(PropTransformMatrix); ok {
		rot = m
	} else {
		rot = RotateDegrees(e.rotate)
	}
	if rot.IsIdentity() {
		return Translate(e.x, e.y)
	}
	m := Translate(e.x+pivot.X, e.y+pivot.Y).Multiply(rot).Multiply(Translate(-pivot.X, -pivot.Y))
	return m
}

// contentOffset is the translation from a container's local origin to the
// origin its children are positioned against.
func (s *Scene) contentOffset(e *element) Vec2 {
	pad := e.padding()
	return Vec2{pad[0], pad[1]}
}

// worldTransform returns the cached local-to-root matrix for slot i,
// recomputing the chain when any link is dirty.
func (s *Scene) worldTransform(i int32) Matrix {
	e := &s.elems[i]
	if !e.transformDirty {
		return e.world
	}
	local := s.computeLocalTransform(e)
	if e.parent >= 0 {
		p := &s.elems[e.parent]
		off := s.contentOffset(p)
		parent := s.worldTransform(e.parent).Multiply(Translate(off.X, off.Y))
		local = parent.Multiply(local)
	}
	e.world = local
	e.worldInv = invertAffine(local)
	e.transformDirty = false
	return e.world
}

// markSubtreeDirty flags slot i and every element contained in it.
func (s *Scene) markSubtreeDirty(i int32) {
	e := &s.elems[i]
	e.transformDirty = true
	for _, c := range e.children {
		s.markSubtreeDirty(c)
	}
}

// LocalToRoot returns the transform from the element's local space to root
// (window) space. ok is false when the element does not exist.
func (s *Scene) LocalToRoot(id string) (Matrix, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Identity, false
	}
	return s.worldTransform(i), true
}

// RootToLocal converts a root-space point into the element's local space.
func (s *Scene) RootToLocal(id string, p Vec2) (Vec2, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Vec2{}, false
	}
	s.worldTransform(i)
	return s.elems[i].worldInv.Apply(p), true
}

// LocalToRootPoint converts a local point of the element to root space.
func (s *Scene) LocalToRootPoint(id string, p Vec2) (Vec2, bool) {
	m, ok := s.LocalToRoot(id)
	if !ok {
		return Vec2{}, false
	}
	return m.Apply(p), true
}
