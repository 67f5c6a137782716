package layout

import (
	"math"

	"lineclamp/pkg/css"
	"lineclamp/pkg/html"
	"lineclamp/pkg/text"
)

// defaultSupported lists the CSS features the engine lays out and paints.
var defaultSupported = map[string]bool{
	"text-overflow":      true,
	"-webkit-line-clamp": true,
	"white-space":        true,
	"word-break":         true,
	"box-sizing":         true,
}

func NewLayoutEngine(viewportWidth, viewportHeight float64) *LayoutEngine {
	le := &LayoutEngine{
		measurer:  text.Default(),
		supported: make(map[string]bool, len(defaultSupported)),
	}
	le.viewport.width = viewportWidth
	le.viewport.height = viewportHeight
	for k, v := range defaultSupported {
		le.supported[k] = v
	}
	return le
}

// SetMeasurer replaces the font measurer used for text.
func (le *LayoutEngine) SetMeasurer(m *text.Measurer) {
	le.measurer = m
}

func (le *LayoutEngine) Measurer() *text.Measurer {
	return le.measurer
}

// Viewport returns the viewport size.
func (le *LayoutEngine) Viewport() (width, height float64) {
	return le.viewport.width, le.viewport.height
}

// Supports reports whether the engine implements a CSS property, in the
// manner of CSS.supports().
func (le *LayoutEngine) Supports(property string) bool {
	return le.supported[property]
}

// SetSupported overrides the capability table, to emulate engines that
// lack a feature.
func (le *LayoutEngine) SetSupported(property string, supported bool) {
	le.supported[property] = supported
}

// Root returns the root box of the most recent layout.
func (le *LayoutEngine) Root() *Box {
	return le.root
}

// BoxFor returns the box generated for an element by the most recent
// layout, or nil for inline elements and elements with display: none.
func (le *LayoutEngine) BoxFor(node *html.Node) *Box {
	return le.boxes[node]
}

// Fragments returns every inline fragment of the most recent layout, in
// document order.
func (le *LayoutEngine) Fragments() []*InlineFragment {
	return le.fragments
}

// StyleOf returns the computed style used by the most recent layout.
func (le *LayoutEngine) StyleOf(node *html.Node) *css.Style {
	return le.styles[node]
}

// OffsetHeight lays out the document and returns the rounded border-box
// height of node. Nodes that generate no box report 0.
func (le *LayoutEngine) OffsetHeight(doc *html.Document, node *html.Node) int {
	le.Layout(doc)
	return int(math.Round(le.rectOf(node).Height))
}

// BoundingClientRect lays out the document and returns node's border box,
// or for inline content the union of its fragments.
func (le *LayoutEngine) BoundingClientRect(doc *html.Document, node *html.Node) Rect {
	le.Layout(doc)
	return le.rectOf(node)
}

// ComputedStyle returns node's computed style. Text nodes report the style
// of their parent element.
func (le *LayoutEngine) ComputedStyle(doc *html.Document, node *html.Node) *css.Style {
	if node.Type != html.ElementNode && node.Parent != nil {
		node = node.Parent
	}
	return css.NewCascade(doc).ComputeNode(node)
}

func (le *LayoutEngine) rectOf(node *html.Node) Rect {
	if node == nil {
		return Rect{}
	}
	if b, ok := le.boxes[node]; ok {
		return b.BorderBox()
	}
	var rect Rect
	found := false
	for _, f := range le.fragments {
		if !node.Contains(f.Node) {
			continue
		}
		r := Rect{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height}
		if !found {
			rect, found = r, true
			continue
		}
		rect = rect.Union(r)
	}
	return rect
}
