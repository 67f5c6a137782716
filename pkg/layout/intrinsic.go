package layout

import (
	"math"
)

// maxContentWidth is the content width b would take with no wrapping other
// than forced breaks.
func (le *LayoutEngine) maxContentWidth(b *Box) float64 {
	if isReplaced(b.Node) {
		if w, ok := resolveLength(b.Style.Value("width"), -1); ok {
			return w
		}
		return replacedDimension(b.Node, "width")
	}
	if len(b.Children) > 0 {
		widest := 0.0
		for _, child := range b.Children {
			widest = max(widest, le.outerMaxContent(child))
		}
		return widest
	}
	if len(b.Inline) == 0 {
		return 0
	}

	c := newInlineCollector(le, b, containingBlock{}, containingBlock{}, true)
	c.collect(b.Inline)
	widest := 0.0
	for _, line := range breakLines(c.pieces, math.Inf(1)) {
		widest = max(widest, lineWidth(line))
	}
	return widest
}

// outerMaxContent is the max-content contribution of b to its parent:
// its margin box, with percentages treated as auto.
func (le *LayoutEngine) outerMaxContent(b *Box) float64 {
	margin := resolveEdge(b.Style, "margin-%s", -1)
	padding := resolveEdge(b.Style, "padding-%s", -1)
	border := b.Style.GetBorderWidth()
	edges := margin.Horizontal() + padding.Horizontal() + border.Horizontal()

	w, ok := resolveLength(b.Style.Value("width"), -1)
	if !ok {
		return le.maxContentWidth(b) + edges
	}
	if b.Style.Value("box-sizing") == "border-box" {
		w = max(0, w-padding.Horizontal()-border.Horizontal())
	}
	return w + edges
}
