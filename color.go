package deskgraph

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// PaintKind distinguishes solid colors from gradients.
type PaintKind uint8

const (
	PaintSolid  PaintKind = iota // single color
	PaintLinear                  // linear gradient along an angle
	PaintRadial                  // radial gradient centered on the paint box
)

// ColorStop is one stop of a gradient. Offset is in [0, 1].
type ColorStop struct {
	Offset float64
	Color  Color
}

// ColorSpec is a parsed color or gradient descriptor.
//
// Accepted forms:
//
//	#RGB  #RGBA  #RRGGBB  #RRGGBBAA
//	rgb(r, g, b)  rgba(r, g, b, a)
//	named colors ("red", "transparent", ...)
//	linearGradient(angle, color [pos%], color [pos%], ...)
//	radialGradient([circle|ellipse,] color [pos%], color [pos%], ...)
//
// rgba alpha is 0-255 when written as an integer and a fraction in [0, 1]
// when written with a decimal point.
type ColorSpec struct {
	Kind   PaintKind
	Solid  Color
	Angle  float64 // degrees, linear only; 0 points along +X
	Circle bool    // radial only; circle instead of box-fitted ellipse
	Stops  []ColorStop

	source string
}

// SolidColor returns a ColorSpec for a single color.
func SolidColor(c Color) ColorSpec {
	return ColorSpec{Kind: PaintSolid, Solid: c}
}

// String returns the descriptor the color was parsed from.
func (cs ColorSpec) String() string {
	if cs.source != "" {
		return cs.source
	}
	if cs.Kind == PaintSolid {
		c := cs.Solid.RGBA()
		return fmt.Sprintf("rgba(%d,%d,%d,%d)", c.R, c.G, c.B, c.A)
	}
	return ""
}

// Visible reports whether any part of the paint has non-zero alpha.
func (cs ColorSpec) Visible() bool {
	if cs.Kind == PaintSolid {
		return cs.Solid.A > 0
	}
	for _, s := range cs.Stops {
		if s.Color.A > 0 {
			return true
		}
	}
	return false
}

// At samples the paint at parametric position t in [0, 1]. Positions outside
// the range pad to the first or last stop. Solid colors ignore t.
func (cs ColorSpec) At(t float64) Color {
	if cs.Kind == PaintSolid || len(cs.Stops) == 0 {
		return cs.Solid
	}
	stops := cs.Stops
	if t <= stops[0].Offset {
		return stops[0].Color
	}
	last := stops[len(stops)-1]
	if t >= last.Offset {
		return last.Color
	}
	i := sort.Search(len(stops), func(i int) bool { return stops[i].Offset > t })
	a, b := stops[i-1], stops[i]
	span := b.Offset - a.Offset
	if span <= 0 {
		return b.Color
	}
	return blendColors(a.Color, b.Color, (t-a.Offset)/span)
}

// blendColors interpolates in sRGB space with straight alpha.
func blendColors(a, b Color, t float64) Color {
	ca := colorful.Color{R: a.R, G: a.G, B: a.B}
	cb := colorful.Color{R: b.R, G: b.G, B: b.B}
	m := ca.BlendRgb(cb, t)
	return Color{R: m.R, G: m.G, B: m.B, A: a.A + (b.A-a.A)*t}
}

// Sampler maps a point in paint-box space to a color.
type Sampler interface {
	ColorAt(p Vec2) Color
}

type solidSampler Color

func (s solidSampler) ColorAt(Vec2) Color { return Color(s) }

type linearSampler struct {
	spec       *ColorSpec
	start, dir Vec2
	invLenSq   float64
}

func (s linearSampler) ColorAt(p Vec2) Color {
	if s.invLenSq == 0 {
		return s.spec.At(0)
	}
	d := p.Sub(s.start)
	return s.spec.At((d.X*s.dir.X + d.Y*s.dir.Y) * s.invLenSq)
}

type radialSampler struct {
	spec   *ColorSpec
	center Vec2
	rx, ry float64
}

func (s radialSampler) ColorAt(p Vec2) Color {
	if s.rx <= 0 || s.ry <= 0 {
		return s.spec.At(1)
	}
	dx := (p.X - s.center.X) / s.rx
	dy := (p.Y - s.center.Y) / s.ry
	return s.spec.At(math.Sqrt(dx*dx + dy*dy))
}

// Resolve binds the paint to a paint box. Linear gradients run between the
// two box edge points along Angle; radial gradients are centered on the box.
func (cs ColorSpec) Resolve(box Rect) Sampler {
	switch cs.Kind {
	case PaintLinear:
		start := gradientEdgePoint(cs.Angle+180, box)
		end := gradientEdgePoint(cs.Angle, box)
		dir := end.Sub(start)
		lenSq := dir.X*dir.X + dir.Y*dir.Y
		s := linearSampler{spec: &cs, start: start, dir: dir}
		if lenSq > 1e-12 {
			s.invLenSq = 1 / lenSq
		}
		return s
	case PaintRadial:
		rx, ry := box.Width/2, box.Height/2
		if cs.Circle {
			r := math.Min(rx, ry)
			rx, ry = r, r
		}
		return radialSampler{spec: &cs, center: box.Center(), rx: rx, ry: ry}
	default:
		return solidSampler(cs.Solid)
	}
}

// gradientEdgePoint returns where a line from the box center at the given
// angle meets the gradient line's perpendicular through the farthest corner.
// The result makes 0° run left to right and 90° top to bottom, with corners
// reaching exactly 0 and 1.
func gradientEdgePoint(angle float64, r Rect) Vec2 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	rad := a * math.Pi / 180
	sin, cos := math.Sincos(rad)
	half := math.Abs(r.Width/2*cos) + math.Abs(r.Height/2*sin)
	c := r.Center()
	return Vec2{c.X + half*cos, c.Y + half*sin}
}

// ParseColorSpec parses a color or gradient descriptor.
func ParseColorSpec(s string) (ColorSpec, error) {
	src := strings.TrimSpace(s)
	lower := strings.ToLower(src)
	switch {
	case strings.HasPrefix(lower, "lineargradient("):
		cs, err := parseGradient(src, PaintLinear)
		cs.source = src
		return cs, err
	case strings.HasPrefix(lower, "radialgradient("):
		cs, err := parseGradient(src, PaintRadial)
		cs.source = src
		return cs, err
	}
	c, err := ParseColor(src)
	if err != nil {
		return ColorSpec{}, err
	}
	return ColorSpec{Kind: PaintSolid, Solid: c, source: src}, nil
}

// ParseColor parses a single solid color.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, fmt.Errorf("deskgraph: empty color: %w", ErrInvalidValue)
	}
	lower := strings.ToLower(s)
	switch {
	case lower[0] == '#':
		return parseHexColor(lower)
	case strings.HasPrefix(lower, "rgba(") || strings.HasPrefix(lower, "rgb("):
		return parseRGBFunc(lower)
	case lower == "transparent" || lower == "none":
		return ColorTransparent, nil
	}
	if c, ok := colornames.Map[lower]; ok {
		return Color{
			R: float64(c.R) / 255,
			G: float64(c.G) / 255,
			B: float64(c.B) / 255,
			A: float64(c.A) / 255,
		}, nil
	}
	return Color{}, fmt.Errorf("deskgraph: color %q: %w", s, ErrInvalidValue)
}

func parseHexColor(s string) (Color, error) {
	hex := s[1:]
	var alpha = 1.0
	switch len(hex) {
	case 3, 6:
	case 4:
		a, err := strconv.ParseUint(hex[3:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("deskgraph: color %q: %w", s, ErrInvalidValue)
		}
		alpha = float64(a*17) / 255
		hex = hex[:3]
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("deskgraph: color %q: %w", s, ErrInvalidValue)
		}
		alpha = float64(a) / 255
		hex = hex[:6]
	default:
		return Color{}, fmt.Errorf("deskgraph: color %q: %w", s, ErrInvalidValue)
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return Color{}, fmt.Errorf("deskgraph: color %q: %w", s, ErrInvalidValue)
	}
	return Color{R: c.R, G: c.G, B: c.B, A: alpha}, nil
}

func parseRGBFunc(s string) (Color, error) {
	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return Color{}, fmt.Errorf("deskgraph: color %q: %w", s, ErrInvalidValue)
	}
	parts := splitTopLevel(s[open+1 : end])
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, fmt.Errorf("deskgraph: color %q: %w", s, ErrInvalidArity)
	}
	var ch [3]float64
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil {
			return Color{}, fmt.Errorf("deskgraph: color %q: %w", s, ErrInvalidValue)
		}
		ch[i] = clamp(v, 0, 255) / 255
	}
	alpha := 1.0
	if len(parts) == 4 {
		v, err := strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return Color{}, fmt.Errorf("deskgraph: color %q: %w", s, ErrInvalidValue)
		}
		if strings.ContainsRune(parts[3], '.') {
			alpha = clamp01(v)
		} else {
			alpha = clamp(v, 0, 255) / 255
		}
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: alpha}, nil
}

func parseGradient(s string, kind PaintKind) (ColorSpec, error) {
	open := strings.IndexByte(s, '(')
	end := strings.LastIndexByte(s, ')')
	if open < 0 || end <= open {
		return ColorSpec{}, fmt.Errorf("deskgraph: gradient %q: %w", s, ErrInvalidValue)
	}
	parts := splitTopLevel(s[open+1 : end])
	cs := ColorSpec{Kind: kind}

	first := 0
	if len(parts) > 0 {
		head := strings.ToLower(strings.ReplaceAll(parts[0], " ", ""))
		switch kind {
		case PaintLinear:
			head = strings.TrimSuffix(head, "deg")
			if a, err := strconv.ParseFloat(head, 64); err == nil {
				cs.Angle = a
				first = 1
			}
		case PaintRadial:
			if head == "circle" || head == "ellipse" {
				cs.Circle = head == "circle"
				first = 1
			}
		}
	}

	explicit := make([]bool, 0, len(parts))
	for _, p := range parts[first:] {
		colorPart, offset, hasOffset := splitStopOffset(p)
		c, err := ParseColor(colorPart)
		if err != nil {
			return ColorSpec{}, fmt.Errorf("deskgraph: gradient stop %q: %w", p, ErrInvalidValue)
		}
		cs.Stops = append(cs.Stops, ColorStop{Offset: offset, Color: c})
		explicit = append(explicit, hasOffset)
	}
	if len(cs.Stops) < 2 {
		return ColorSpec{}, fmt.Errorf("deskgraph: gradient %q needs at least two stops: %w", s, ErrInvalidArity)
	}
	distributeStops(cs.Stops, explicit)
	cs.Solid = cs.Stops[0].Color
	return cs, nil
}

// splitStopOffset separates "color 40%" into the color and 0.4.
func splitStopOffset(p string) (string, float64, bool) {
	p = strings.TrimSpace(p)
	if !strings.HasSuffix(p, "%") {
		return p, 0, false
	}
	i := strings.LastIndexByte(p, ' ')
	if i < 0 {
		return p, 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(p[i+1:], "%"), 64)
	if err != nil {
		return p, 0, false
	}
	return strings.TrimSpace(p[:i]), clamp01(v / 100), true
}

// distributeStops fills in missing offsets: endpoints default to 0 and 1,
// interior runs are spaced evenly between their explicit neighbours, and
// offsets are made non-decreasing.
func distributeStops(stops []ColorStop, explicit []bool) {
	n := len(stops)
	if !explicit[0] {
		stops[0].Offset = 0
		explicit[0] = true
	}
	if !explicit[n-1] {
		stops[n-1].Offset = 1
		explicit[n-1] = true
	}
	prev := 0
	for i := 1; i < n; i++ {
		if !explicit[i] {
			continue
		}
		gap := i - prev
		for j := prev + 1; j < i; j++ {
			stops[j].Offset = stops[prev].Offset + (stops[i].Offset-stops[prev].Offset)*float64(j-prev)/float64(gap)
		}
		prev = i
	}
	for i := 1; i < n; i++ {
		if stops[i].Offset < stops[i-1].Offset {
			stops[i].Offset = stops[i-1].Offset
		}
	}
}

// splitTopLevel splits on commas that are not nested in parentheses and trims
// each part.
func splitTopLevel(s string) []string {
	var parts []string
	depth, last := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(s[last:i]))
				last = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(s[last:]); tail != "" || len(parts) > 0 {
		parts = append(parts, tail)
	}
	return parts
}
