package layout

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"lineclamp/pkg/css"
	"lineclamp/pkg/html"
	"lineclamp/pkg/text"
)

type pieceKind int

const (
	pieceText   pieceKind = iota // unbreakable run of text
	pieceSpace                   // white space, collapsible or preserved
	pieceEdge                    // start or end edge of an inline element
	pieceAtomic                  // inline-block, image, or a block inside an inline
	pieceBreak                   // forced line break
)

// piece is one item of the flattened inline content. A line may only
// break after a piece with breakAfter set.
type piece struct {
	kind        pieceKind
	node        *html.Node
	style       *css.Style
	text        string
	width       float64
	breakAfter  bool
	collapsible bool
	box         *Box
	block       bool // block-level box: takes a line of its own
}

func (p *piece) isContent() bool {
	switch p.kind {
	case pieceSpace:
		return !p.collapsible
	case pieceEdge:
		return p.width > 0
	}
	return true
}

// inlineCollector flattens an inline formatting context into pieces.
type inlineCollector struct {
	le        *LayoutEngine
	owner     *Box
	cb        containingBlock
	abs       containingBlock
	intrinsic bool // measuring max-content: atomics are not laid out

	pieces       []*piece
	lastWasSpace bool
}

func newInlineCollector(le *LayoutEngine, owner *Box, cb, abs containingBlock, intrinsic bool) *inlineCollector {
	return &inlineCollector{le: le, owner: owner, cb: cb, abs: abs, intrinsic: intrinsic, lastWasSpace: true}
}

func (c *inlineCollector) collect(nodes []*html.Node) {
	for _, n := range nodes {
		switch n.Type {
		case html.TextNode:
			c.addText(n, c.le.styleForText(n))
		case html.ElementNode:
			c.addElement(n)
		}
	}
}

func (c *inlineCollector) add(p *piece) {
	c.pieces = append(c.pieces, p)
}

func (c *inlineCollector) last() *piece {
	if len(c.pieces) == 0 {
		return nil
	}
	return c.pieces[len(c.pieces)-1]
}

func (c *inlineCollector) addElement(el *html.Node) {
	style := c.le.styles[el]
	if style == nil || style.GetDisplay() == css.DisplayNone || style.IsOutOfFlow() {
		return
	}
	if el.TagName == "br" {
		c.add(&piece{kind: pieceBreak, node: el, style: style})
		c.lastWasSpace = true
		return
	}
	if isReplaced(el) || style.IsBlockLevel() || style.GetDisplay() == css.DisplayInlineBlock {
		c.addAtomic(el, style)
		return
	}

	base := c.cb.Width
	if c.intrinsic {
		base = 0
	}
	margin := resolveEdge(style, "margin-%s", base)
	padding := resolveEdge(style, "padding-%s", base)
	border := style.GetBorderWidth()
	c.add(&piece{kind: pieceEdge, node: el, style: style, width: margin.Left + border.Left + padding.Left})
	c.collect(el.Children)
	c.add(&piece{kind: pieceEdge, node: el, style: style, width: padding.Right + border.Right + margin.Right})
}

func (c *inlineCollector) addAtomic(el *html.Node, style *css.Style) {
	box := c.le.buildBox(el, c.owner)
	block := style.IsBlockLevel()

	var width float64
	if c.intrinsic {
		width = c.le.outerMaxContent(box)
	} else {
		c.le.layoutBlock(box, c.cb, c.abs, 0, 0, !block)
		width = box.marginBoxWidth()
	}

	wraps := c.le.styleForText(el).GetWhiteSpace().Wraps()
	if prev := c.last(); prev != nil && prev.kind != pieceEdge && wraps {
		prev.breakAfter = true
	}
	c.add(&piece{kind: pieceAtomic, node: el, style: style, width: width, box: box, block: block, breakAfter: wraps})
	c.lastWasSpace = false
}

func (c *inlineCollector) addText(node *html.Node, style *css.Style) {
	ws := style.GetWhiteSpace()
	s := node.Text
	for s != "" {
		r, size := utf8.DecodeRuneInString(s)
		switch {
		case r == '\n' || r == '\r':
			s = s[size:]
			if r == '\r' && strings.HasPrefix(s, "\n") {
				s = s[1:]
			}
			if ws.PreservesNewlines() {
				c.add(&piece{kind: pieceBreak, node: node, style: style})
				c.lastWasSpace = true
			} else {
				c.addCollapsibleSpace(node, style, ws)
			}
		case isSpace(r):
			n := 0
			for n < len(s) && isSpace(rune(s[n])) {
				n++
			}
			run := s[:n]
			s = s[n:]
			if ws.CollapsesSpaces() {
				c.addCollapsibleSpace(node, style, ws)
				continue
			}
			for _, ch := range run {
				c.addPreservedSpace(node, style, ws, ch)
			}
		default:
			n := strings.IndexAny(s, " \t\f\n\r")
			if n < 0 {
				n = len(s)
			}
			c.addWord(node, style, ws, s[:n])
			s = s[n:]
		}
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\f'
}

func (c *inlineCollector) addCollapsibleSpace(node *html.Node, style *css.Style, ws css.WhiteSpace) {
	if c.lastWasSpace {
		return
	}
	c.add(&piece{
		kind:        pieceSpace,
		node:        node,
		style:       style,
		text:        " ",
		width:       c.advance(" ", style),
		breakAfter:  ws.Wraps(),
		collapsible: true,
	})
	c.lastWasSpace = true
}

func (c *inlineCollector) addPreservedSpace(node *html.Node, style *css.Style, ws css.WhiteSpace, ch rune) {
	s := " "
	if ch == '\t' {
		s = strings.Repeat(" ", 8)
	}
	c.add(&piece{kind: pieceSpace, node: node, style: style, text: s, width: c.advance(s, style), breakAfter: ws.Wraps()})
	c.lastWasSpace = false
}

// addWord splits a word at its line break opportunities: the Unicode line
// breaking rules, or between any two characters under word-break: break-all.
func (c *inlineCollector) addWord(node *html.Node, style *css.Style, ws css.WhiteSpace, word string) {
	c.lastWasSpace = false
	wraps := ws.Wraps()

	if style.BreaksAll() && wraps {
		clusters := text.Graphemes(word)
		for i, g := range clusters {
			breakAfter := i < len(clusters)-1 && !noBreakBefore(clusters[i+1])
			c.add(&piece{kind: pieceText, node: node, style: style, text: g, width: c.advance(g, style), breakAfter: breakAfter})
		}
		return
	}

	state := -1
	rest := word
	for rest != "" {
		var segment string
		segment, rest, _, state = uniseg.FirstLineSegmentInString(rest, state)
		c.add(&piece{kind: pieceText, node: node, style: style, text: segment, width: c.advance(segment, style), breakAfter: wraps && rest != ""})
	}
}

// noBreakBefore reports closing punctuation, which stays on the line of
// the character before it even under break-all.
func noBreakBefore(g string) bool {
	return strings.ContainsAny(g, ".,:;!?)]}%…、。")
}

func (c *inlineCollector) advance(s string, style *css.Style) float64 {
	return c.le.measurer.Advance(s, FontSpec(style))
}

// FontSpec returns the face text in style is set in.
func FontSpec(style *css.Style) text.FontSpec {
	return text.FontSpec{
		Size:   style.GetFontSize(),
		Bold:   style.IsBold(),
		Italic: style.IsItalic(),
		Mono:   strings.Contains(style.Value("font-family"), "monospace"),
	}
}

// breakLines distributes pieces over lines no wider than width, breaking
// greedily at the last opportunity that fits. A chunk that does not fit an
// empty line overflows it.
func breakLines(pieces []*piece, width float64) [][]*piece {
	var lines [][]*piece
	var cur []*piece

	endLine := func() {
		lines = append(lines, trimTrailingSpaces(cur))
		cur = nil
	}
	place := func(chunk []*piece) {
		if len(chunk) == 0 {
			return
		}
		if hasContent(cur) && lineWidth(append(cur[:len(cur):len(cur)], chunk...)) > width+0.01 {
			endLine()
		}
		if !hasContent(cur) {
			chunk = trimLeadingSpaces(chunk)
		}
		cur = append(cur, chunk...)
	}

	var chunk []*piece
	for _, p := range pieces {
		switch {
		case p.kind == pieceBreak:
			place(chunk)
			chunk = nil
			cur = append(cur, p)
			endLine()
		case p.block:
			place(chunk)
			chunk = nil
			if hasContent(cur) {
				endLine()
			}
			cur = append(cur, p)
			endLine()
		default:
			chunk = append(chunk, p)
			if p.breakAfter {
				place(chunk)
				chunk = nil
			}
		}
	}
	place(chunk)
	if len(cur) > 0 {
		endLine()
	}
	return lines
}

func hasContent(pieces []*piece) bool {
	for _, p := range pieces {
		if p.isContent() {
			return true
		}
	}
	return false
}

// lineWidth is the advance of pieces without trailing white space, which
// hangs past the end of the line.
func lineWidth(pieces []*piece) float64 {
	end := len(pieces)
	for end > 0 && (pieces[end-1].kind == pieceSpace || pieces[end-1].kind == pieceEdge && pieces[end-1].width == 0) {
		end--
	}
	total := 0.0
	for _, p := range pieces[:end] {
		total += p.width
	}
	return total
}

func trimLeadingSpaces(pieces []*piece) []*piece {
	out := pieces[:0:0]
	leading := true
	for _, p := range pieces {
		if leading && p.kind == pieceSpace && p.collapsible {
			continue
		}
		if p.kind != pieceEdge {
			leading = false
		}
		out = append(out, p)
	}
	return out
}

func trimTrailingSpaces(pieces []*piece) []*piece {
	drop := make(map[int]bool)
	for i := len(pieces) - 1; i >= 0; i-- {
		p := pieces[i]
		if p.kind == pieceEdge {
			continue
		}
		if p.kind == pieceSpace && p.collapsible {
			drop[i] = true
			continue
		}
		break
	}
	if len(drop) == 0 {
		return pieces
	}
	out := make([]*piece, 0, len(pieces)-len(drop))
	for i, p := range pieces {
		if !drop[i] {
			out = append(out, p)
		}
	}
	return out
}

// layoutInline lays out b's inline content into line boxes inside cb and
// returns the total line height.
func (le *LayoutEngine) layoutInline(b *Box, cb, abs containingBlock) float64 {
	if len(b.Inline) == 0 {
		return 0
	}
	c := newInlineCollector(le, b, cb, abs, false)
	c.collect(b.Inline)

	y := cb.Y
	for _, pieces := range breakLines(c.pieces, cb.Width) {
		lb := le.placeLine(b, pieces, cb.X, y, cb.Width)
		if lb == nil {
			continue
		}
		b.LineBoxes = append(b.LineBoxes, lb)
		y += lb.Height
	}
	return y - cb.Y
}

// placeLine positions the pieces of one line and records its fragments.
// Lines without content produce no line box.
func (le *LayoutEngine) placeLine(b *Box, pieces []*piece, x, y, width float64) *LineBox {
	if !hasContent(pieces) {
		return nil
	}

	height := b.Style.UsedLineHeight()
	for _, p := range pieces {
		if p.kind == pieceAtomic {
			height = max(height, p.box.marginBoxHeight())
		} else {
			height = max(height, p.style.UsedLineHeight())
		}
	}

	used := lineWidth(pieces)
	lb := &LineBox{X: x, Y: y, Width: used, Height: height}
	cx := x + alignOffset(b.Style.Value("text-align"), width-used)

	var current *InlineFragment
	for _, p := range pieces {
		switch p.kind {
		case pieceText, pieceSpace:
			if current != nil && current.Node == p.node {
				current.Text += p.text
				current.Width += p.width
				break
			}
			current = &InlineFragment{Node: p.node, Style: p.style, Text: p.text, X: cx, Y: y, Width: p.width, Height: height}
			lb.Fragments = append(lb.Fragments, current)
		case pieceAtomic:
			current = nil
			left := cx
			if p.block {
				left = x
			}
			shiftBox(p.box, left-(p.box.X-p.box.Margin.Left), y+height-p.box.marginBoxHeight()-(p.box.Y-p.box.Margin.Top))
			lb.Fragments = append(lb.Fragments, &InlineFragment{Node: p.node, Style: p.style, X: left, Y: y, Width: p.width, Height: height, Box: p.box})
		default:
			current = nil
		}
		cx += p.width
	}
	le.fragments = append(le.fragments, lb.Fragments...)
	return lb
}

func alignOffset(align string, free float64) float64 {
	if free <= 0 || math.IsInf(free, 0) {
		return 0
	}
	switch align {
	case "center":
		return free / 2
	case "right", "end":
		return free
	}
	return 0
}
