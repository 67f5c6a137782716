package layout

import (
	"lineclamp/pkg/css"
	"lineclamp/pkg/html"
	"lineclamp/pkg/text"
)

// Box is a block-level or atomic inline box. X and Y locate the border box;
// Width and Height are the content size.
type Box struct {
	Node     *html.Node // nil for anonymous boxes
	Style    *css.Style
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Margin   css.BoxEdge
	Padding  css.BoxEdge
	Border   css.BoxEdge
	Children []*Box
	Parent   *Box
	Position css.PositionType

	// Inline lists the DOM nodes of the box's inline formatting context.
	// A box has either Inline content or block Children, never both.
	Inline    []*html.Node
	LineBoxes []*LineBox

	// OutOfFlow holds absolutely and fixed positioned children, laid out
	// after the in-flow content.
	OutOfFlow []*Box

	// ClampedAt is the number of visible lines when -webkit-line-clamp cut
	// the content short, and 0 otherwise.
	ClampedAt int
}

// BorderBox returns the box's border box.
func (b *Box) BorderBox() Rect {
	return Rect{
		X:      b.X,
		Y:      b.Y,
		Width:  b.Border.Left + b.Padding.Left + b.Width + b.Padding.Right + b.Border.Right,
		Height: b.Border.Top + b.Padding.Top + b.Height + b.Padding.Bottom + b.Border.Bottom,
	}
}

// ContentBox returns the box's content box.
func (b *Box) ContentBox() Rect {
	return Rect{
		X:      b.X + b.Border.Left + b.Padding.Left,
		Y:      b.Y + b.Border.Top + b.Padding.Top,
		Width:  b.Width,
		Height: b.Height,
	}
}

func (b *Box) marginBoxWidth() float64 {
	return b.Margin.Horizontal() + b.BorderBox().Width
}

func (b *Box) marginBoxHeight() float64 {
	return b.Margin.Vertical() + b.BorderBox().Height
}

// LineBox is one line of an inline formatting context.
type LineBox struct {
	X         float64
	Y         float64
	Width     float64 // advance of the placed content, excluding hanging spaces
	Height    float64
	Fragments []*InlineFragment
}

// InlineFragment is a piece of a line: a run of text from one text node,
// or an atomic inline box.
type InlineFragment struct {
	Node   *html.Node // the text node, or the element of an atomic box
	Style  *css.Style
	Text   string
	X      float64
	Y      float64 // top of the line box
	Width  float64
	Height float64 // height of the line box
	Box    *Box    // set for atomic inlines
}

// Rect is an axis-aligned rectangle in document coordinates.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func (r Rect) IsEmpty() bool {
	return r.Width <= 0 && r.Height <= 0
}

// Union returns the smallest rectangle containing r and o.
func (r Rect) Union(o Rect) Rect {
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.X+r.Width, o.X+o.Width), max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// containingBlock is the rectangle percentages and positions resolve
// against. Height is only meaningful when definite is set.
type containingBlock struct {
	Rect
	definite bool
}

type LayoutEngine struct {
	viewport struct {
		width  float64
		height float64
	}
	measurer  *text.Measurer
	supported map[string]bool

	// results of the most recent Layout call
	cascade   *css.Cascade
	root      *Box
	styles    map[*html.Node]*css.Style
	boxes     map[*html.Node]*Box
	fragments []*InlineFragment
}
