package layout

import (
	"strings"

	"lineclamp/pkg/css"
	"lineclamp/pkg/html"
)

// Layout computes styles for the document and lays out every box. The
// results stay available through BoxFor, Fragments and Root until the next
// call. It returns the top-level boxes.
func (le *LayoutEngine) Layout(doc *html.Document) []*Box {
	le.cascade = css.NewCascade(doc)
	le.styles = le.cascade.ComputeAll(doc.Root)
	le.boxes = make(map[*html.Node]*Box)
	le.fragments = nil

	rootStyle := le.cascade.ComputeNode(doc.Root)
	rootStyle.Set("display", "block")
	root := &Box{Node: doc.Root, Style: rootStyle, Position: css.PositionStatic}
	le.root = root
	le.boxes[doc.Root] = root
	le.buildChildren(root, doc.Root)

	viewport := le.viewportBlock()
	le.layoutBlock(root, viewport, viewport, 0, 0, false)
	return root.Children
}

func (le *LayoutEngine) viewportBlock() containingBlock {
	return containingBlock{
		Rect:     Rect{Width: le.viewport.width, Height: le.viewport.height},
		definite: true,
	}
}

func (le *LayoutEngine) buildBox(node *html.Node, parent *Box) *Box {
	style := le.styles[node]
	b := &Box{Node: node, Style: style, Parent: parent, Position: style.GetPosition()}
	le.boxes[node] = b
	if !isReplaced(node) {
		le.buildChildren(b, node)
	}
	return b
}

// buildChildren sorts node's children into block boxes, inline content and
// out-of-flow boxes. Inline runs that sit between block siblings are
// wrapped in anonymous block boxes.
func (le *LayoutEngine) buildChildren(b *Box, node *html.Node) {
	var run []*html.Node
	var blocks []*Box
	flush := func() {
		if len(run) > 0 && !le.isCollapsibleWhitespace(run) {
			anon := &Box{
				Style:    css.AnonymousBlockStyle(b.Style),
				Parent:   b,
				Position: css.PositionStatic,
				Inline:   run,
			}
			blocks = append(blocks, anon)
		}
		run = nil
	}

	for _, child := range node.Children {
		switch child.Type {
		case html.TextNode:
			run = append(run, child)
		case html.ElementNode:
			style := le.styles[child]
			if style == nil || style.GetDisplay() == css.DisplayNone {
				continue
			}
			if style.IsOutOfFlow() {
				b.OutOfFlow = append(b.OutOfFlow, le.buildBox(child, b))
				continue
			}
			if style.IsBlockLevel() {
				flush()
				blocks = append(blocks, le.buildBox(child, b))
				continue
			}
			run = append(run, child)
		}
	}

	if len(blocks) == 0 {
		b.Inline = run
		return
	}
	flush()
	b.Children = blocks
}

func (le *LayoutEngine) isCollapsibleWhitespace(run []*html.Node) bool {
	for _, n := range run {
		if n.Type != html.TextNode {
			return false
		}
		if strings.Trim(n.Text, " \t\n\r\f") != "" {
			return false
		}
		if !le.styleForText(n).GetWhiteSpace().CollapsesSpaces() {
			return false
		}
	}
	return true
}

// styleForText returns the style text inside node's parent is set in.
func (le *LayoutEngine) styleForText(node *html.Node) *css.Style {
	if node.Parent != nil {
		if s, ok := le.styles[node.Parent]; ok {
			return s
		}
	}
	return le.root.Style
}

func isReplaced(node *html.Node) bool {
	if node == nil {
		return false
	}
	switch node.TagName {
	case "img", "canvas", "video", "iframe", "svg":
		return true
	}
	return false
}
