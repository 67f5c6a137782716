package layout

import (
	"fmt"
	"strconv"
	"strings"

	"lineclamp/pkg/css"
	"lineclamp/pkg/html"
)

// layoutBlock lays out b with its margin edge at (x, y) inside containing
// block cb. abs is the containing block for absolutely positioned
// descendants. With shrink set an auto width shrinks to fit the content,
// as for floats, inline-blocks and out-of-flow boxes.
func (le *LayoutEngine) layoutBlock(b *Box, cb, abs containingBlock, x, y float64, shrink bool) {
	style := b.Style
	b.Margin = resolveEdge(style, "margin-%s", cb.Width)
	b.Padding = resolveEdge(style, "padding-%s", cb.Width)
	b.Border = style.GetBorderWidth()
	b.LineBoxes = nil
	b.ClampedAt = 0

	available := max(0, cb.Width-b.Margin.Horizontal()-b.Padding.Horizontal()-b.Border.Horizontal())
	width, explicit := le.specifiedWidth(b, cb.Width)
	switch {
	case explicit:
	case shrink:
		width = min(le.maxContentWidth(b), available)
	default:
		width = available
	}
	b.Width = le.clampWidth(b, width, cb.Width)

	if !shrink {
		le.resolveAutoMargins(b, cb.Width)
	}
	b.X = x + b.Margin.Left
	b.Y = y + b.Margin.Top

	height, hasHeight := le.specifiedHeight(b, cb)
	content := b.ContentBox()
	inner := containingBlock{
		Rect:     Rect{X: content.X, Y: content.Y, Width: b.Width, Height: height},
		definite: hasHeight,
	}
	if b.Position != css.PositionStatic {
		abs = containingBlock{Rect: b.paddingBox(), definite: true}
	}

	var contentHeight float64
	switch {
	case isReplaced(b.Node):
	case len(b.Children) > 0:
		contentHeight = le.layoutBlockChildren(b, inner, abs)
	default:
		contentHeight = le.layoutInline(b, inner, abs)
	}
	contentHeight = le.applyLineClamp(b, contentHeight)

	if hasHeight {
		b.Height = height
	} else {
		b.Height = contentHeight
	}
	b.Height = le.clampHeight(b, b.Height, cb)

	if b.Position != css.PositionStatic {
		abs = containingBlock{Rect: b.paddingBox(), definite: true}
	}
	for _, child := range b.OutOfFlow {
		le.layoutOutOfFlow(child, abs, content.X, content.Y)
	}
}

func (b *Box) paddingBox() Rect {
	return Rect{
		X:      b.X + b.Border.Left,
		Y:      b.Y + b.Border.Top,
		Width:  b.Padding.Left + b.Width + b.Padding.Right,
		Height: b.Padding.Top + b.Height + b.Padding.Bottom,
	}
}

// layoutBlockChildren stacks block children vertically, collapsing the
// margins of adjacent siblings, and returns the content height.
func (le *LayoutEngine) layoutBlockChildren(b *Box, cb, abs containingBlock) float64 {
	bottom := cb.Y
	prevMargin := 0.0
	for i, child := range b.Children {
		marginTop := resolveEdge(child.Style, "margin-%s", cb.Width).Top
		y := bottom
		if i > 0 {
			y = bottom - prevMargin + collapseMargins(prevMargin, marginTop) - marginTop
		}
		le.layoutBlock(child, cb, abs, cb.X, y, false)
		bottom = child.Y + child.BorderBox().Height + child.Margin.Bottom
		prevMargin = child.Margin.Bottom
	}
	return bottom - cb.Y
}

func collapseMargins(a, b float64) float64 {
	switch {
	case a >= 0 && b >= 0:
		return max(a, b)
	case a < 0 && b < 0:
		return min(a, b)
	}
	return a + b
}

// layoutOutOfFlow places an absolutely or fixed positioned box. Fixed
// boxes resolve against the viewport. Offsets that are auto keep the
// static position (staticX, staticY).
func (le *LayoutEngine) layoutOutOfFlow(b *Box, abs containingBlock, staticX, staticY float64) {
	cb := abs
	if b.Position == css.PositionFixed {
		cb = le.viewportBlock()
	}
	left, hasLeft := resolveLength(b.Style.Value("left"), cb.Width)
	right, hasRight := resolveLength(b.Style.Value("right"), cb.Width)
	top, hasTop := resolveLength(b.Style.Value("top"), cb.Height)
	bottom, hasBottom := resolveLength(b.Style.Value("bottom"), cb.Height)

	x, y := staticX, staticY
	if hasLeft {
		x = cb.X + left
	}
	if hasTop {
		y = cb.Y + top
	}

	avail := cb
	if hasLeft {
		avail.Width -= left
	}
	if hasRight {
		avail.Width -= right
	}
	avail.Width = max(0, avail.Width)
	le.layoutBlock(b, avail, abs, x, y, !(hasLeft && hasRight))

	var dx, dy float64
	if !hasLeft && hasRight {
		dx = cb.X + cb.Width - right - b.marginBoxWidth() - x
	}
	if !hasTop && hasBottom {
		dy = cb.Y + cb.Height - bottom - b.marginBoxHeight() - y
	}
	shiftBox(b, dx, dy)
}

// applyLineClamp cuts the content height of a -webkit-line-clamp box after
// its Nth line.
func (le *LayoutEngine) applyLineClamp(b *Box, contentHeight float64) float64 {
	style := b.Style
	if style.GetDisplay() != css.DisplayWebkitBox || style.Value("-webkit-box-orient") != "vertical" {
		return contentHeight
	}
	n := style.LineClamp()
	if n <= 0 {
		return contentHeight
	}
	lines := collectLines(b, nil)
	if len(lines) <= n {
		return contentHeight
	}
	b.ClampedAt = n
	last := lines[n-1]
	return last.Y + last.Height - b.ContentBox().Y
}

// collectLines gathers the in-flow line boxes under b in document order.
func collectLines(b *Box, lines []*LineBox) []*LineBox {
	lines = append(lines, b.LineBoxes...)
	for _, child := range b.Children {
		lines = collectLines(child, lines)
	}
	return lines
}

func shiftBox(b *Box, dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	b.X += dx
	b.Y += dy
	for _, lb := range b.LineBoxes {
		lb.X += dx
		lb.Y += dy
		for _, f := range lb.Fragments {
			f.X += dx
			f.Y += dy
			if f.Box != nil {
				shiftBox(f.Box, dx, dy)
			}
		}
	}
	for _, child := range b.Children {
		shiftBox(child, dx, dy)
	}
	for _, child := range b.OutOfFlow {
		if child.Position != css.PositionFixed {
			shiftBox(child, dx, dy)
		}
	}
}

// specifiedWidth returns the content width set by width (and, for images,
// the width attribute).
func (le *LayoutEngine) specifiedWidth(b *Box, cbWidth float64) (float64, bool) {
	w, ok := resolveLength(b.Style.Value("width"), cbWidth)
	if !ok {
		if isReplaced(b.Node) {
			return replacedDimension(b.Node, "width"), true
		}
		return 0, false
	}
	if b.Style.Value("box-sizing") == "border-box" {
		w = max(0, w-b.Padding.Horizontal()-b.Border.Horizontal())
	}
	return w, true
}

func (le *LayoutEngine) specifiedHeight(b *Box, cb containingBlock) (float64, bool) {
	value := b.Style.Value("height")
	if strings.HasSuffix(value, "%") && !cb.definite {
		return 0, false
	}
	h, ok := resolveLength(value, cb.Height)
	if !ok {
		if isReplaced(b.Node) {
			return replacedDimension(b.Node, "height"), true
		}
		return 0, false
	}
	if b.Style.Value("box-sizing") == "border-box" {
		h = max(0, h-b.Padding.Vertical()-b.Border.Vertical())
	}
	return h, true
}

func (le *LayoutEngine) clampWidth(b *Box, w, cbWidth float64) float64 {
	adjust := 0.0
	if b.Style.Value("box-sizing") == "border-box" {
		adjust = b.Padding.Horizontal() + b.Border.Horizontal()
	}
	if maxW, ok := resolveLength(b.Style.Value("max-width"), cbWidth); ok {
		w = min(w, max(0, maxW-adjust))
	}
	if minW, ok := resolveLength(b.Style.Value("min-width"), cbWidth); ok {
		w = max(w, max(0, minW-adjust))
	}
	return w
}

func (le *LayoutEngine) clampHeight(b *Box, h float64, cb containingBlock) float64 {
	adjust := 0.0
	if b.Style.Value("box-sizing") == "border-box" {
		adjust = b.Padding.Vertical() + b.Border.Vertical()
	}
	base := -1.0
	if cb.definite {
		base = cb.Height
	}
	if maxH, ok := resolveLength(b.Style.Value("max-height"), base); ok {
		h = min(h, max(0, maxH-adjust))
	}
	if minH, ok := resolveLength(b.Style.Value("min-height"), base); ok {
		h = max(h, max(0, minH-adjust))
	}
	return h
}

// resolveAutoMargins centres a block with a definite width between auto
// horizontal margins.
func (le *LayoutEngine) resolveAutoMargins(b *Box, cbWidth float64) {
	leftAuto := b.Style.Value("margin-left") == "auto"
	rightAuto := b.Style.Value("margin-right") == "auto"
	if !leftAuto && !rightAuto {
		return
	}
	free := cbWidth - b.Width - b.Padding.Horizontal() - b.Border.Horizontal() - b.Margin.Horizontal()
	if free <= 0 {
		return
	}
	switch {
	case leftAuto && rightAuto:
		b.Margin.Left += free / 2
		b.Margin.Right += free / 2
	case leftAuto:
		b.Margin.Left += free
	default:
		b.Margin.Right += free
	}
}

// resolveLength resolves a pixel length, or a percentage of base when base
// is not negative.
func resolveLength(value string, base float64) (float64, bool) {
	if px, ok := css.ParsePixels(value); ok {
		return px, true
	}
	value = strings.TrimSpace(value)
	if base < 0 || !strings.HasSuffix(value, "%") {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64)
	if err != nil {
		return 0, false
	}
	return f / 100 * base, true
}

func resolveEdge(style *css.Style, pattern string, base float64) css.BoxEdge {
	side := func(name string) float64 {
		v, _ := resolveLength(style.Value(fmt.Sprintf(pattern, name)), base)
		return v
	}
	return css.BoxEdge{Top: side("top"), Right: side("right"), Bottom: side("bottom"), Left: side("left")}
}

func replacedDimension(node *html.Node, attr string) float64 {
	v, ok := node.GetAttribute(attr)
	if !ok {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}
