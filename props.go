package deskgraph

import (
	"fmt"
	"math"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"
)

// Props is a property patch keyed by widget-script property name. Values are
// coerced to each property's type when the patch is applied; a nil value
// unsets the property.
type Props map[string]any

// PropKey identifies a known property.
type PropKey uint8

const (
	PropID PropKey = iota
	PropX
	PropY
	PropWidth
	PropHeight
	PropRotate
	PropShow
	PropAntiAlias
	PropGroup
	PropContainer
	PropHitTest
	PropCursor
	PropBackgroundColor
	PropBackgroundColorRadius
	PropBevelType
	PropBevelWidth
	PropBevelColor
	PropBevelColor2
	PropPadding
	PropTransformMatrix
	PropColorMatrix
	PropTooltip

	// Text
	PropText
	PropFontFace
	PropFontSize
	PropFontColor
	PropFontWeight
	PropTextAlign
	PropClipString

	// Image
	PropPath
	PropPreserveAspectRatio
	PropImageTint
	PropImageAlpha
	PropGrayscale
	PropTile

	// Bar and RoundLine
	PropValue
	PropOrientation
	PropBarColor
	PropBarCornerRadius
	PropHitTestBackground

	// Shape
	PropType
	PropFillColor
	PropStrokeColor
	PropStrokeWidth
	PropRadius
	PropRadiusX
	PropRadiusY
	PropStartX
	PropStartY
	PropEndX
	PropEndY
	PropControlX
	PropControlY
	PropControl2X
	PropControl2Y
	PropCurveType
	PropStartAngle
	PropEndAngle
	PropClockwise
	PropPathData
	PropStrokeStartCap
	PropStrokeEndCap
	PropStrokeDashCap
	PropStrokeLineJoin
	PropStrokeMiterLimit
	PropStrokeDashes
	PropStrokeDashOffset
	PropBase
	PropConsume
	PropOps

	// RoundLine
	PropThickness
	PropEndThickness
	PropTotalAngle
	PropCapType
	PropStartCap
	PropEndCap
	PropDashArray
	PropTicks
	PropLineColor
	PropLineColorBg

	// Mouse handlers, in EventKind order.
	PropOnLeftMouseUp
	PropOnLeftMouseDown
	PropOnLeftDoubleClick
	PropOnRightMouseUp
	PropOnRightMouseDown
	PropOnRightDoubleClick
	PropOnMiddleMouseUp
	PropOnMiddleMouseDown
	PropOnMiddleDoubleClick
	PropOnX1MouseUp
	PropOnX1MouseDown
	PropOnX1DoubleClick
	PropOnX2MouseUp
	PropOnX2MouseDown
	PropOnX2DoubleClick
	PropOnScrollUp
	PropOnScrollDown
	PropOnScrollLeft
	PropOnScrollRight
	PropOnMouseOver
	PropOnMouseLeave

	propCount
)

type valueKind uint8

const (
	valNumber valueKind = iota
	valString
	valBool
	valColor
	valArray
	valHandler
	valOps
)

type propFlags uint8

const (
	flagGeometry  propFlags = 1 << iota // rebuild outlines
	flagPaint                           // re-resolve colors
	flagTransform                       // recompute transforms of the subtree
	flagResource                        // request a resource load
)

type propInfo struct {
	name  string
	kind  valueKind
	flags propFlags
	arity []int // allowed lengths for valArray; nil means any non-empty length
	enum  []string
}

const geomPaint = flagGeometry | flagPaint

var propTable = [propCount]propInfo{
	PropID:                    {name: "id", kind: valString},
	PropX:                     {name: "x", kind: valNumber, flags: flagTransform},
	PropY:                     {name: "y", kind: valNumber, flags: flagTransform},
	PropWidth:                 {name: "width", kind: valNumber, flags: geomPaint | flagTransform},
	PropHeight:                {name: "height", kind: valNumber, flags: geomPaint | flagTransform},
	PropRotate:                {name: "rotate", kind: valNumber, flags: flagTransform},
	PropShow:                  {name: "show", kind: valBool},
	PropAntiAlias:             {name: "antiAlias", kind: valBool, flags: flagPaint},
	PropGroup:                 {name: "group", kind: valString},
	PropContainer:             {name: "container", kind: valString, flags: flagTransform},
	PropHitTest:               {name: "hitTest", kind: valBool},
	PropCursor:                {name: "cursor", kind: valString},
	PropBackgroundColor:       {name: "backgroundColor", kind: valColor, flags: geomPaint},
	PropBackgroundColorRadius: {name: "backgroundColorRadius", kind: valNumber, flags: geomPaint},
	PropBevelType:             {name: "bevelType", kind: valString, flags: geomPaint, enum: []string{"none", "raised", "sunken", "emboss", "pillow"}},
	PropBevelWidth:            {name: "bevelWidth", kind: valNumber, flags: geomPaint},
	PropBevelColor:            {name: "bevelColor", kind: valColor, flags: flagPaint},
	PropBevelColor2:           {name: "bevelColor2", kind: valColor, flags: flagPaint},
	PropPadding:               {name: "padding", kind: valArray, flags: geomPaint | flagTransform, arity: []int{1, 2, 4}},
	PropTransformMatrix:       {name: "transformMatrix", kind: valArray, flags: flagTransform, arity: []int{6}},
	PropColorMatrix:           {name: "colorMatrix", kind: valArray, flags: flagPaint, arity: []int{20}},
	PropTooltip:               {name: "tooltip", kind: valString},

	PropText:       {name: "text", kind: valString, flags: geomPaint | flagResource | flagTransform},
	PropFontFace:   {name: "fontFace", kind: valString, flags: geomPaint | flagResource | flagTransform},
	PropFontSize:   {name: "fontSize", kind: valNumber, flags: geomPaint | flagResource | flagTransform},
	PropFontColor:  {name: "fontColor", kind: valColor, flags: flagPaint},
	PropFontWeight: {name: "fontWeight", kind: valString, flags: geomPaint | flagResource | flagTransform},
	PropTextAlign:  {name: "textAlign", kind: valString, flags: flagPaint},
	PropClipString: {name: "clipString", kind: valString, flags: flagPaint},

	PropPath:                {name: "path", kind: valString, flags: geomPaint | flagResource | flagTransform},
	PropPreserveAspectRatio: {name: "preserveAspectRatio", kind: valString, flags: geomPaint},
	PropImageTint:           {name: "imageTint", kind: valColor, flags: flagPaint},
	PropImageAlpha:          {name: "imageAlpha", kind: valNumber, flags: flagPaint},
	PropGrayscale:           {name: "grayscale", kind: valBool, flags: flagPaint},
	PropTile:                {name: "tile", kind: valBool, flags: flagPaint},

	PropValue:             {name: "value", kind: valNumber, flags: geomPaint},
	PropOrientation:       {name: "orientation", kind: valString, flags: geomPaint, enum: []string{"horizontal", "vertical"}},
	PropBarColor:          {name: "barColor", kind: valColor, flags: geomPaint},
	PropBarCornerRadius:   {name: "barCornerRadius", kind: valNumber, flags: geomPaint},
	PropHitTestBackground: {name: "hitTestBackground", kind: valBool, flags: flagGeometry},

	PropType:             {name: "type", kind: valString, flags: geomPaint | flagTransform, enum: []string{"rectangle", "ellipse", "line", "arc", "curve", "path", "combine"}},
	PropFillColor:        {name: "fillColor", kind: valColor, flags: geomPaint},
	PropStrokeColor:      {name: "strokeColor", kind: valColor, flags: geomPaint},
	PropStrokeWidth:      {name: "strokeWidth", kind: valNumber, flags: geomPaint | flagTransform},
	PropRadius:           {name: "radius", kind: valNumber, flags: geomPaint},
	PropRadiusX:          {name: "radiusX", kind: valNumber, flags: geomPaint},
	PropRadiusY:          {name: "radiusY", kind: valNumber, flags: geomPaint},
	PropStartX:           {name: "startX", kind: valNumber, flags: geomPaint | flagTransform},
	PropStartY:           {name: "startY", kind: valNumber, flags: geomPaint | flagTransform},
	PropEndX:             {name: "endX", kind: valNumber, flags: geomPaint | flagTransform},
	PropEndY:             {name: "endY", kind: valNumber, flags: geomPaint | flagTransform},
	PropControlX:         {name: "controlX", kind: valNumber, flags: geomPaint | flagTransform},
	PropControlY:         {name: "controlY", kind: valNumber, flags: geomPaint | flagTransform},
	PropControl2X:        {name: "control2X", kind: valNumber, flags: geomPaint | flagTransform},
	PropControl2Y:        {name: "control2Y", kind: valNumber, flags: geomPaint | flagTransform},
	PropCurveType:        {name: "curveType", kind: valString, flags: geomPaint | flagTransform, enum: []string{"cubic", "quadratic"}},
	PropStartAngle:       {name: "startAngle", kind: valNumber, flags: geomPaint},
	PropEndAngle:         {name: "endAngle", kind: valNumber, flags: geomPaint},
	PropClockwise:        {name: "clockwise", kind: valBool, flags: geomPaint},
	PropPathData:         {name: "pathData", kind: valString, flags: geomPaint | flagTransform},
	PropStrokeStartCap:   {name: "strokeStartCap", kind: valString, flags: geomPaint},
	PropStrokeEndCap:     {name: "strokeEndCap", kind: valString, flags: geomPaint},
	PropStrokeDashCap:    {name: "strokeDashCap", kind: valString, flags: geomPaint},
	PropStrokeLineJoin:   {name: "strokeLineJoin", kind: valString, flags: geomPaint},
	PropStrokeMiterLimit: {name: "strokeMiterLimit", kind: valNumber, flags: geomPaint},
	PropStrokeDashes:     {name: "strokeDashes", kind: valArray, flags: geomPaint},
	PropStrokeDashOffset: {name: "strokeDashOffset", kind: valNumber, flags: geomPaint},
	PropBase:             {name: "base", kind: valString},
	PropConsume:          {name: "consume", kind: valBool},
	PropOps:              {name: "ops", kind: valOps},

	PropThickness:    {name: "thickness", kind: valNumber, flags: geomPaint},
	PropEndThickness: {name: "endThickness", kind: valNumber, flags: geomPaint},
	PropTotalAngle:   {name: "totalAngle", kind: valNumber, flags: geomPaint},
	PropCapType:      {name: "capType", kind: valString, flags: geomPaint},
	PropStartCap:     {name: "startCap", kind: valString, flags: geomPaint},
	PropEndCap:       {name: "endCap", kind: valString, flags: geomPaint},
	PropDashArray:    {name: "dashArray", kind: valArray, flags: geomPaint},
	PropTicks:        {name: "ticks", kind: valNumber, flags: geomPaint},
	PropLineColor:    {name: "lineColor", kind: valColor, flags: geomPaint},
	PropLineColorBg:  {name: "lineColorBg", kind: valColor, flags: geomPaint},

	PropOnLeftMouseUp:       {name: "onLeftMouseUp", kind: valHandler},
	PropOnLeftMouseDown:     {name: "onLeftMouseDown", kind: valHandler},
	PropOnLeftDoubleClick:   {name: "onLeftDoubleClick", kind: valHandler},
	PropOnRightMouseUp:      {name: "onRightMouseUp", kind: valHandler},
	PropOnRightMouseDown:    {name: "onRightMouseDown", kind: valHandler},
	PropOnRightDoubleClick:  {name: "onRightDoubleClick", kind: valHandler},
	PropOnMiddleMouseUp:     {name: "onMiddleMouseUp", kind: valHandler},
	PropOnMiddleMouseDown:   {name: "onMiddleMouseDown", kind: valHandler},
	PropOnMiddleDoubleClick: {name: "onMiddleDoubleClick", kind: valHandler},
	PropOnX1MouseUp:         {name: "onX1MouseUp", kind: valHandler},
	PropOnX1MouseDown:       {name: "onX1MouseDown", kind: valHandler},
	PropOnX1DoubleClick:     {name: "onX1DoubleClick", kind: valHandler},
	PropOnX2MouseUp:         {name: "onX2MouseUp", kind: valHandler},
	PropOnX2MouseDown:       {name: "onX2MouseDown", kind: valHandler},
	PropOnX2DoubleClick:     {name: "onX2DoubleClick", kind: valHandler},
	PropOnScrollUp:          {name: "onScrollUp", kind: valHandler},
	PropOnScrollDown:        {name: "onScrollDown", kind: valHandler},
	PropOnScrollLeft:        {name: "onScrollLeft", kind: valHandler},
	PropOnScrollRight:       {name: "onScrollRight", kind: valHandler},
	PropOnMouseOver:         {name: "onMouseOver", kind: valHandler},
	PropOnMouseLeave:        {name: "onMouseLeave", kind: valHandler},
}

// propByName indexes propTable by lower-cased name.
var propByName = func() map[string]PropKey {
	m := make(map[string]PropKey, propCount)
	for k := PropKey(0); k < propCount; k++ {
		m[strings.ToLower(propTable[k].name)] = k
	}
	// Aliases used by older widget scripts.
	m["hittestenabled"] = PropHitTest
	m["onleftmousedoubleclick"] = PropOnLeftDoubleClick
	m["onrightmousedoubleclick"] = PropOnRightDoubleClick
	m["onmiddlemousedoubleclick"] = PropOnMiddleDoubleClick
	return m
}()

// LookupProp returns the key for a property name (case-insensitive).
func LookupProp(name string) (PropKey, bool) {
	k, ok := propByName[strings.ToLower(name)]
	return k, ok
}

func (k PropKey) String() string {
	if k < propCount {
		return propTable[k].name
	}
	return fmt.Sprintf("PropKey(%d)", uint8(k))
}

// CombineMode is a boolean set operation.
type CombineMode uint8

const (
	CombineUnion     CombineMode = iota // region in either operand
	CombineIntersect                    // region in both operands
	CombineXor                          // region in exactly one operand
)

// ParseCombineMode maps "union", "intersect", "xor" (any case) to a mode.
func ParseCombineMode(s string) (CombineMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "union":
		return CombineUnion, true
	case "intersect", "intersection":
		return CombineIntersect, true
	case "xor":
		return CombineXor, true
	}
	return 0, false
}

func (m CombineMode) String() string {
	switch m {
	case CombineIntersect:
		return "intersect"
	case CombineXor:
		return "xor"
	default:
		return "union"
	}
}

// CombineOp is one step of a combine chain.
type CombineOp struct {
	ID      string
	Mode    CombineMode
	Consume bool
}

// Value is a typed property value.
type Value struct {
	kind    valueKind
	num     float64
	str     string
	b       bool
	arr     []float64
	color   ColorSpec
	handler HandlerToken
	ops     []CombineOp
}

// Interface returns the value in its caller-facing form: float64, string,
// bool, []float64, a color's source string, a HandlerToken or []CombineOp.
func (v Value) Interface() any {
	switch v.kind {
	case valNumber:
		return v.num
	case valString:
		return v.str
	case valBool:
		return v.b
	case valColor:
		return v.color.String()
	case valArray:
		return append([]float64(nil), v.arr...)
	case valHandler:
		return v.handler
	case valOps:
		return append([]CombineOp(nil), v.ops...)
	}
	return nil
}

// patchEntry is one coerced key of a patch.
type patchEntry struct {
	key   PropKey
	extra string // set for unknown keys
	raw   any    // unknown key payload
	val   Value
	unset bool
}

type compiledPatch struct {
	entries []patchEntry
	flags   propFlags
	has     [propCount]bool
}

func (cp *compiledPatch) lookup(k PropKey) (patchEntry, bool) {
	if !cp.has[k] {
		return patchEntry{}, false
	}
	for _, e := range cp.entries {
		if e.extra == "" && e.key == k {
			return e, true
		}
	}
	return patchEntry{}, false
}

func (cp *compiledPatch) add(k PropKey, v Value) {
	cp.entries = append(cp.entries, patchEntry{key: k, val: v})
	cp.has[k] = true
	cp.flags |= propTable[k].flags
}

// compilePatch coerces every key of p. Nothing is applied here, so a failed
// compile leaves the scene untouched.
func compilePatch(p Props) (*compiledPatch, error) {
	cp := &compiledPatch{entries: make([]patchEntry, 0, len(p))}
	for name, raw := range p {
		k, known := LookupProp(name)
		if !known {
			cp.entries = append(cp.entries, patchEntry{extra: name, raw: raw, unset: raw == nil})
			continue
		}
		if cp.has[k] {
			return nil, fmt.Errorf("deskgraph: property %s given under more than one name: %w", propTable[k].name, ErrInvalidValue)
		}
		if raw != nil {
			v, err := coerceValue(k, raw)
			if err != nil {
				return nil, err
			}
			cp.add(k, v)
			continue
		}
		cp.entries = append(cp.entries, patchEntry{key: k, unset: true})
		cp.has[k] = true
		cp.flags |= propTable[k].flags
	}
	return cp, nil
}

func coerceValue(k PropKey, raw any) (Value, error) {
	info := &propTable[k]
	v := Value{kind: info.kind}
	bad := func() (Value, error) {
		return Value{}, fmt.Errorf("deskgraph: property %s: unsupported value %v (%T): %w", info.name, raw, raw, ErrInvalidValue)
	}
	switch info.kind {
	case valNumber:
		n, ok := toFloat(raw)
		if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
			return bad()
		}
		v.num = n
	case valBool:
		switch t := raw.(type) {
		case bool:
			v.b = t
		case string:
			switch strings.ToLower(t) {
			case "true", "1", "yes":
				v.b = true
			case "false", "0", "no", "":
			default:
				return bad()
			}
		default:
			n, ok := toFloat(raw)
			if !ok {
				return bad()
			}
			v.b = n != 0
		}
	case valString:
		switch t := raw.(type) {
		case string:
			v.str = t
		case fmt.Stringer:
			v.str = t.String()
		default:
			n, ok := toFloat(raw)
			if !ok {
				return bad()
			}
			v.str = fmt.Sprint(n)
		}
		if info.enum != nil && !validEnum(info.enum, v.str) {
			return Value{}, fmt.Errorf("deskgraph: property %s: %q is not one of %v: %w", info.name, v.str, info.enum, ErrInvalidValue)
		}
	case valColor:
		switch t := raw.(type) {
		case string:
			cs, err := ParseColorSpec(t)
			if err != nil {
				return Value{}, fmt.Errorf("deskgraph: property %s: %w", info.name, err)
			}
			v.color = cs
		case ColorSpec:
			v.color = t
		case Color:
			v.color = SolidColor(t)
		default:
			return bad()
		}
	case valArray:
		arr, ok := toFloatSlice(raw)
		if !ok {
			return bad()
		}
		if err := checkArity(k, arr); err != nil {
			return Value{}, err
		}
		v.arr = arr
	case valHandler:
		switch t := raw.(type) {
		case HandlerToken:
			v.handler = t
		case string:
			v.handler = HandlerToken(t)
		default:
			return bad()
		}
	case valOps:
		ops, err := toCombineOps(raw)
		if err != nil {
			return Value{}, fmt.Errorf("deskgraph: property %s: %w", info.name, err)
		}
		v.ops = ops
	}
	return v, nil
}

func validEnum(allowed []string, s string) bool {
	for _, a := range allowed {
		if equalFold(a, s) {
			return true
		}
	}
	return false
}

func checkArity(k PropKey, arr []float64) error {
	info := &propTable[k]
	if info.arity != nil {
		for _, n := range info.arity {
			if len(arr) == n {
				return nil
			}
		}
		return fmt.Errorf("deskgraph: property %s takes %v values, got %d: %w", info.name, info.arity, len(arr), ErrInvalidArity)
	}
	if len(arr) == 0 {
		return fmt.Errorf("deskgraph: property %s needs at least one value: %w", info.name, ErrInvalidArity)
	}
	var sum float64
	for _, x := range arr {
		if x < 0 {
			return fmt.Errorf("deskgraph: property %s: negative length %v: %w", info.name, x, ErrInvalidValue)
		}
		sum += x
	}
	if sum <= 0 {
		return fmt.Errorf("deskgraph: property %s: pattern has zero length: %w", info.name, ErrInvalidValue)
	}
	return nil
}

func toFloat(raw any) (float64, bool) {
	switch t := raw.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case string:
		b := []byte(strings.TrimSpace(t))
		n, used := strconv.ParseFloat(b)
		if used == 0 || used != len(b) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// toFloatSlice accepts numeric slices, []any of numbers, or a comma or space
// separated string such as "10, 5".
func toFloatSlice(raw any) ([]float64, bool) {
	switch t := raw.(type) {
	case []float64:
		return append([]float64(nil), t...), true
	case []int:
		out := make([]float64, len(t))
		for i, x := range t {
			out[i] = float64(x)
		}
		return out, true
	case []any:
		out := make([]float64, len(t))
		for i, x := range t {
			n, ok := toFloat(x)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	case string:
		b := []byte(t)
		var out []float64
		i := skipSeparators(b, 0)
		for i < len(b) {
			n, used := strconv.ParseFloat(b[i:])
			if used == 0 {
				return nil, false
			}
			out = append(out, n)
			i = skipSeparators(b, i+used)
		}
		return out, true
	default:
		n, ok := toFloat(raw)
		if !ok {
			return nil, false
		}
		return []float64{n}, true
	}
}

// skipSeparators returns the index of the first byte at or after i that is
// neither whitespace nor a comma.
func skipSeparators(b []byte, i int) int {
	for i < len(b) && strings.IndexByte(" ,\t\r\n", b[i]) >= 0 {
		i++
	}
	return i
}

func toCombineOps(raw any) ([]CombineOp, error) {
	switch t := raw.(type) {
	case []CombineOp:
		return append([]CombineOp(nil), t...), nil
	case []map[string]any:
		out := make([]CombineOp, 0, len(t))
		for _, m := range t {
			op, err := combineOpFromMap(m)
			if err != nil {
				return nil, err
			}
			out = append(out, op)
		}
		return out, nil
	case []any:
		out := make([]CombineOp, 0, len(t))
		for _, x := range t {
			m, ok := x.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("combine op %v is not an object: %w", x, ErrInvalidValue)
			}
			op, err := combineOpFromMap(m)
			if err != nil {
				return nil, err
			}
			out = append(out, op)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported ops value %T: %w", raw, ErrInvalidValue)
}

func combineOpFromMap(m map[string]any) (CombineOp, error) {
	id, _ := m["id"].(string)
	if id == "" {
		return CombineOp{}, fmt.Errorf("combine op without id: %w", ErrInvalidValue)
	}
	op := CombineOp{ID: id}
	if ms, ok := m["mode"].(string); ok {
		mode, ok := ParseCombineMode(ms)
		if !ok {
			return CombineOp{}, fmt.Errorf("combine mode %q: %w", ms, ErrInvalidValue)
		}
		op.Mode = mode
	}
	if c, ok := m["consume"].(bool); ok {
		op.Consume = c
	}
	return op, nil
}

// normalizePadding expands 1, 2 or 4 values to [left, top, right, bottom].
func normalizePadding(arr []float64) [4]float64 {
	switch len(arr) {
	case 1:
		return [4]float64{arr[0], arr[0], arr[0], arr[0]}
	case 2:
		return [4]float64{arr[0], arr[1], arr[0], arr[1]}
	case 4:
		return [4]float64{arr[0], arr[1], arr[2], arr[3]}
	}
	return [4]float64{}
}
