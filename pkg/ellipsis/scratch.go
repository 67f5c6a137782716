package ellipsis

import (
	"fmt"

	"lineclamp/pkg/css"
	"lineclamp/pkg/html"
	"lineclamp/pkg/layout"
)

// Scratch is a hidden container attached to the live document in which
// candidate truncations are laid out and measured.
//
//	<div aria-hidden="true" style="...">
//	  <span aria-hidden="true">content</span>
//	  <span aria-hidden="true">ellipsis suffix</span>
//	</div>
type Scratch struct {
	Container *html.Node
	Content   *html.Node
	Suffix    *html.Node

	// Ellipsis is the marker text node, nil when the symbol is empty.
	Ellipsis *html.Node

	// anchor is the node content is inserted before once reset.
	anchor *html.Node

	doc    *html.Document
	layout *layout.LayoutEngine
	budget int
	probes int
	closed bool
}

// NewScratch builds the container for req and attaches it to the document
// body. The caller must Close it.
func NewScratch(doc *html.Document, req MeasureRequest, le *layout.LayoutEngine) (*Scratch, error) {
	hidden := map[string]string{"aria-hidden": "true"}
	s := &Scratch{
		Container: html.NewElement("div", hidden),
		Content:   html.NewElement("span", hidden),
		Suffix:    html.NewElement("span", hidden),
		doc:       doc,
		layout:    le,
	}
	if err := s.Content.SetInnerHTML(req.Content); err != nil {
		return nil, fmt.Errorf("parsing content: %w", err)
	}
	suffix, err := html.ParseFragment(req.Suffix)
	if err != nil {
		return nil, fmt.Errorf("parsing suffix: %w", err)
	}
	if req.EllipsisSymbol != "" {
		s.Ellipsis = html.NewText(req.EllipsisSymbol)
		s.Suffix.AddChild(s.Ellipsis)
	}
	for _, n := range suffix {
		s.Suffix.AddChild(n)
	}

	s.Container.AddChild(s.Content)
	s.Container.AddChild(s.Suffix)
	doc.Body().AddChild(s.Container)
	return s, nil
}

// SetStyle applies the resolved declarations and the height budget.
func (s *Scratch) SetStyle(style *css.Style, budget int) {
	s.Container.SetAttribute("style", style.String())
	s.budget = budget
}

// OffsetHeight lays out the document and returns the container's rounded
// border-box height.
func (s *Scratch) OffsetHeight() int {
	s.probes++
	return s.layout.OffsetHeight(s.doc, s.Container)
}

// InRange reports whether the container is strictly lower than the budget.
func (s *Scratch) InRange() bool {
	return s.OffsetHeight() < s.budget
}

// Probes is the number of layouts run so far.
func (s *Scratch) Probes() int {
	return s.probes
}

// Reset empties the container down to the ellipsis and suffix nodes,
// moved out of their region, and returns detached copies of the content
// nodes in document order.
func (s *Scratch) Reset() []*html.Node {
	content := s.Content.CloneChildren()
	suffix := s.Suffix.CloneChildren()
	s.Container.RemoveChildren()
	for _, n := range suffix {
		s.Container.AddChild(n)
	}
	s.anchor = nil
	if len(suffix) > 0 {
		s.anchor = suffix[0]
	}
	if s.Ellipsis != nil {
		s.Ellipsis = s.anchor
	}
	return content
}

// Insert places n before the ellipsis, or before the suffix when there is
// no marker.
func (s *Scratch) Insert(n *html.Node) {
	s.Container.InsertBefore(n, s.anchor)
}

// Remove takes n back out of the container.
func (s *Scratch) Remove(n *html.Node) {
	s.Container.RemoveChild(n)
}

// Markup serializes the container's children.
func (s *Scratch) Markup() string {
	return s.Container.Serialize()
}

// Close detaches the container. It is safe to call more than once.
func (s *Scratch) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.Container.Detach()
}
