package css

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Style is a set of property declarations. The same type carries specified
// declarations, computed styles and the merged style of a scratch
// container.
type Style struct {
	Properties map[string]string

	// lineHeightFactor is set when line-height was specified unitless, so
	// that descendants inherit the factor rather than the pixel value.
	lineHeightFactor float64
}

func NewStyle() *Style {
	return &Style{Properties: make(map[string]string)}
}

// StyleFromMap copies props into a new Style, expanding shorthands.
func StyleFromMap(props map[string]string) *Style {
	style := NewStyle()
	for k, v := range props {
		expandShorthand(style, strings.ToLower(strings.TrimSpace(k)), strings.TrimSpace(v))
	}
	return style
}

func (s *Style) Get(property string) (string, bool) {
	val, ok := s.Properties[property]
	return val, ok
}

// Value returns the property value or "" when unset.
func (s *Style) Value(property string) string {
	return s.Properties[property]
}

func (s *Style) Set(property, value string) {
	s.Properties[property] = value
}

func (s *Style) Delete(property string) {
	delete(s.Properties, property)
}

func (s *Style) Clone() *Style {
	clone := &Style{
		Properties:       make(map[string]string, len(s.Properties)),
		lineHeightFactor: s.lineHeightFactor,
	}
	for k, v := range s.Properties {
		clone.Properties[k] = v
	}
	return clone
}

// Merge layers styles in increasing priority: later styles overwrite
// earlier ones. Nil layers are skipped.
func Merge(layers ...*Style) *Style {
	merged := NewStyle()
	for _, layer := range layers {
		if layer == nil {
			continue
		}
		for k, v := range layer.Properties {
			merged.Properties[k] = v
		}
	}
	return merged
}

// String serializes the declarations in property order, in the form used
// by a style attribute.
func (s *Style) String() string {
	keys := make([]string, 0, len(s.Properties))
	for k := range s.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s: %s;", k, s.Properties[k])
	}
	return sb.String()
}

func (s *Style) GetLength(property string) (float64, bool) {
	val, ok := s.Get(property)
	if !ok {
		return 0, false
	}
	return ParseLength(val)
}

// ParseLength parses a length value (e.g., "100px" or "100")
func ParseLength(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	val = strings.TrimSuffix(val, "px")
	num, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// ParsePixels accepts only absolute pixel values: "12px", "12.5px" or "0".
func ParsePixels(val string) (float64, bool) {
	val = strings.TrimSpace(val)
	if val == "0" {
		return 0, true
	}
	if !strings.HasSuffix(val, "px") {
		return 0, false
	}
	num, err := strconv.ParseFloat(strings.TrimSuffix(val, "px"), 64)
	if err != nil {
		return 0, false
	}
	return num, true
}

// FormatPixels renders v as a CSS pixel length.
func FormatPixels(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}

// BoxEdge represents the four sides of a box (top, right, bottom, left)
type BoxEdge struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

func (e BoxEdge) Horizontal() float64 { return e.Left + e.Right }

func (e BoxEdge) Vertical() float64 { return e.Top + e.Bottom }

func (s *Style) GetMargin() BoxEdge {
	return s.edge("margin-%s")
}

func (s *Style) GetPadding() BoxEdge {
	return s.edge("padding-%s")
}

func (s *Style) GetBorderWidth() BoxEdge {
	edge := s.edge("border-%s-width")
	// a border without a style is not drawn and takes no space
	for _, side := range []struct {
		name string
		v    *float64
	}{{"top", &edge.Top}, {"right", &edge.Right}, {"bottom", &edge.Bottom}, {"left", &edge.Left}} {
		if st := s.Value("border-" + side.name + "-style"); st == "" || st == "none" || st == "hidden" {
			*side.v = 0
		}
	}
	return edge
}

func (s *Style) edge(pattern string) BoxEdge {
	return BoxEdge{
		Top:    s.getLengthOrZero(fmt.Sprintf(pattern, "top")),
		Right:  s.getLengthOrZero(fmt.Sprintf(pattern, "right")),
		Bottom: s.getLengthOrZero(fmt.Sprintf(pattern, "bottom")),
		Left:   s.getLengthOrZero(fmt.Sprintf(pattern, "left")),
	}
}

func (s *Style) getLengthOrZero(property string) float64 {
	val, ok := s.GetLength(property)
	if !ok {
		return 0
	}
	return val
}

type PositionType string

const (
	PositionStatic   PositionType = "static"
	PositionRelative PositionType = "relative"
	PositionAbsolute PositionType = "absolute"
	PositionFixed    PositionType = "fixed"
)

// GetPosition returns the position type (default: static)
func (s *Style) GetPosition() PositionType {
	switch s.Value("position") {
	case "relative":
		return PositionRelative
	case "absolute":
		return PositionAbsolute
	case "fixed":
		return PositionFixed
	}
	return PositionStatic
}

// IsOutOfFlow reports whether the box is absolutely or fixed positioned.
func (s *Style) IsOutOfFlow() bool {
	pos := s.GetPosition()
	return pos == PositionAbsolute || pos == PositionFixed
}

type DisplayType string

const (
	DisplayBlock       DisplayType = "block"
	DisplayInline      DisplayType = "inline"
	DisplayInlineBlock DisplayType = "inline-block"
	DisplayListItem    DisplayType = "list-item"
	DisplayWebkitBox   DisplayType = "-webkit-box"
	DisplayNone        DisplayType = "none"
)

// GetDisplay returns the display value (default: inline, as for an
// unstyled element).
func (s *Style) GetDisplay() DisplayType {
	switch s.Value("display") {
	case "block", "flex", "grid", "table", "flow-root":
		return DisplayBlock
	case "inline-block", "inline-flex", "inline-table":
		return DisplayInlineBlock
	case "list-item":
		return DisplayListItem
	case "-webkit-box":
		return DisplayWebkitBox
	case "none":
		return DisplayNone
	}
	return DisplayInline
}

// IsBlockLevel reports whether the element participates in block layout.
func (s *Style) IsBlockLevel() bool {
	switch s.GetDisplay() {
	case DisplayBlock, DisplayListItem, DisplayWebkitBox:
		return true
	}
	return false
}

type WhiteSpace string

const (
	WhiteSpaceNormal  WhiteSpace = "normal"
	WhiteSpaceNowrap  WhiteSpace = "nowrap"
	WhiteSpacePre     WhiteSpace = "pre"
	WhiteSpacePreWrap WhiteSpace = "pre-wrap"
	WhiteSpacePreLine WhiteSpace = "pre-line"
)

func (s *Style) GetWhiteSpace() WhiteSpace {
	switch ws := WhiteSpace(s.Value("white-space")); ws {
	case WhiteSpaceNowrap, WhiteSpacePre, WhiteSpacePreWrap, WhiteSpacePreLine:
		return ws
	}
	return WhiteSpaceNormal
}

// CollapsesSpaces reports whether runs of spaces collapse to one.
func (ws WhiteSpace) CollapsesSpaces() bool {
	return ws == WhiteSpaceNormal || ws == WhiteSpaceNowrap || ws == WhiteSpacePreLine
}

// PreservesNewlines reports whether newlines force line breaks.
func (ws WhiteSpace) PreservesNewlines() bool {
	return ws == WhiteSpacePre || ws == WhiteSpacePreWrap || ws == WhiteSpacePreLine
}

// Wraps reports whether lines may break at soft wrap opportunities.
func (ws WhiteSpace) Wraps() bool {
	return ws != WhiteSpaceNowrap && ws != WhiteSpacePre
}

// BreaksAll reports word-break: break-all (or break-word anywhere).
func (s *Style) BreaksAll() bool {
	return s.Value("word-break") == "break-all"
}

// GetFontSize returns the font-size in pixels (default: 16px)
func (s *Style) GetFontSize() float64 {
	if size, ok := s.GetLength("font-size"); ok {
		return size
	}
	return 16.0
}

// IsBold reports a font-weight of bold or 600 and above.
func (s *Style) IsBold() bool {
	switch s.Value("font-weight") {
	case "bold", "bolder", "600", "700", "800", "900":
		return true
	}
	return false
}

func (s *Style) IsItalic() bool {
	fs := s.Value("font-style")
	return fs == "italic" || fs == "oblique"
}

// GetLineHeight returns the pixel line-height. ok is false when the value
// is "normal" or otherwise not a pixel length.
func (s *Style) GetLineHeight() (float64, bool) {
	return ParsePixels(s.Value("line-height"))
}

// UsedLineHeight is the line-height layout uses: the pixel value, or
// 1.2 × font-size for "normal".
func (s *Style) UsedLineHeight() float64 {
	if lh, ok := s.GetLineHeight(); ok {
		return lh
	}
	return s.GetFontSize() * 1.2
}

// LineClamp returns the -webkit-line-clamp row count, or 0 when unset.
func (s *Style) LineClamp() int {
	n, err := strconv.Atoi(strings.TrimSpace(s.Value("-webkit-line-clamp")))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (s *Style) IsHidden() bool {
	return s.Value("visibility") == "hidden"
}

type Color struct {
	R, G, B uint8
	A       float64
}

var namedColors = map[string]Color{
	"red":         {255, 0, 0, 1},
	"green":       {0, 128, 0, 1},
	"blue":        {0, 0, 255, 1},
	"yellow":      {255, 255, 0, 1},
	"white":       {255, 255, 255, 1},
	"black":       {0, 0, 0, 1},
	"gray":        {128, 128, 128, 1},
	"grey":        {128, 128, 128, 1},
	"orange":      {255, 165, 0, 1},
	"purple":      {128, 0, 128, 1},
	"silver":      {192, 192, 192, 1},
	"navy":        {0, 0, 128, 1},
	"teal":        {0, 128, 128, 1},
	"transparent": {0, 0, 0, 0},
}

// ParseColor understands named colors and #rgb/#rrggbb hex notation.
func ParseColor(colorStr string) (Color, bool) {
	colorStr = strings.ToLower(strings.TrimSpace(colorStr))
	if c, ok := namedColors[colorStr]; ok {
		return c, true
	}
	if !strings.HasPrefix(colorStr, "#") {
		return Color{}, false
	}
	hex := colorStr[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, true
}

// GetColor returns the text color (default: black)
func (s *Style) GetColor() Color {
	if c, ok := ParseColor(s.Value("color")); ok {
		return c
	}
	return Color{A: 1}
}

// ParseInlineStyle parses the content of a style attribute.
func ParseInlineStyle(styleAttr string) *Style {
	style := NewStyle()
	for _, decl := range strings.Split(styleAttr, ";") {
		property, value, ok := splitDeclaration(decl)
		if !ok {
			continue
		}
		expandShorthand(style, property, value)
	}
	return style
}

func splitDeclaration(decl string) (property, value string, ok bool) {
	decl = strings.TrimSpace(decl)
	if decl == "" {
		return "", "", false
	}
	parts := strings.SplitN(decl, ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	property = strings.TrimSpace(strings.ToLower(parts[0]))
	value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(parts[1]), "!important"))
	if property == "" || value == "" {
		return "", "", false
	}
	return property, value, true
}

// expandShorthand sets property on style, expanding the box shorthands
// into their longhands.
func expandShorthand(style *Style, property, value string) {
	switch property {
	case "margin", "padding":
		expandBoxProperty(style, property+"-%s", value)
	case "border-width":
		expandBoxProperty(style, "border-%s-width", value)
	case "border-style":
		expandBoxProperty(style, "border-%s-style", value)
	case "border":
		expandBorderProperty(style, value)
	default:
		style.Set(property, value)
	}
}

// expandBoxProperty expands the 1-4 value box shorthand (t r b l).
func expandBoxProperty(style *Style, pattern, value string) {
	parts := strings.Fields(value)
	var t, r, b, l string
	switch len(parts) {
	case 1:
		t, r, b, l = parts[0], parts[0], parts[0], parts[0]
	case 2:
		t, r, b, l = parts[0], parts[1], parts[0], parts[1]
	case 3:
		t, r, b, l = parts[0], parts[1], parts[2], parts[1]
	case 4:
		t, r, b, l = parts[0], parts[1], parts[2], parts[3]
	default:
		return
	}
	style.Set(fmt.Sprintf(pattern, "top"), t)
	style.Set(fmt.Sprintf(pattern, "right"), r)
	style.Set(fmt.Sprintf(pattern, "bottom"), b)
	style.Set(fmt.Sprintf(pattern, "left"), l)
}

// expandBorderProperty expands "1px solid black" into per-side longhands.
func expandBorderProperty(style *Style, value string) {
	for _, part := range strings.Fields(value) {
		switch {
		case part == "none" || part == "solid" || part == "dotted" || part == "dashed" || part == "double":
			expandBoxProperty(style, "border-%s-style", part)
		case isLengthToken(part):
			expandBoxProperty(style, "border-%s-width", part)
		default:
			style.Set("border-color", part)
		}
	}
}

func isLengthToken(s string) bool {
	if s == "0" {
		return true
	}
	for _, unit := range []string{"px", "em", "rem", "pt"} {
		if strings.HasSuffix(s, unit) {
			_, err := strconv.ParseFloat(strings.TrimSuffix(s, unit), 64)
			return err == nil
		}
	}
	return false
}
