package html

import (
	"fmt"
)

type Parser struct {
	tokenizer *Tokenizer
	doc       *Document
	stack     []*Node // open elements, doc.Root at the bottom
}

func NewParser(html string) *Parser {
	return &Parser{
		tokenizer: NewTokenizer(html),
		doc:       NewDocument(),
	}
}

func (p *Parser) Parse() (*Document, error) {
	p.stack = []*Node{p.doc.Root}

	for {
		token, err := p.tokenizer.NextToken()
		if err != nil {
			return nil, fmt.Errorf("tokenizer error: %w", err)
		}
		if token.Type == TokenEOF {
			break
		}

		switch token.Type {
		case TokenStartTag:
			switch token.TagName {
			case "style":
				p.doc.Stylesheets = append(p.doc.Stylesheets, p.tokenizer.ReadRawUntil("style"))
				continue
			case "script":
				p.doc.Scripts = append(p.doc.Scripts, p.tokenizer.ReadRawUntil("script"))
				continue
			}

			if isBlockElement(token.TagName) {
				p.autoCloseP()
			}

			node := NewElement(token.TagName, token.Attributes)
			p.currentParent().AddChild(node)

			if !token.SelfClosing && !isVoidElement(token.TagName) {
				p.push(node)
			}

		case TokenText:
			p.currentParent().AppendText(token.Text)

		case TokenComment:
			p.currentParent().AddChild(&Node{Type: CommentNode, Text: token.Text})

		case TokenEndTag:
			p.closeTag(token.TagName)
		}
	}

	return p.doc, nil
}

func (p *Parser) currentParent() *Node {
	if len(p.stack) == 0 {
		return p.doc.Root
	}
	return p.stack[len(p.stack)-1]
}

func (p *Parser) push(node *Node) {
	p.stack = append(p.stack, node)
}

// closeTag pops the stack down to the matching open element. Unmatched end
// tags are ignored.
func (p *Parser) closeTag(tagName string) {
	for i := len(p.stack) - 1; i >= 1; i-- {
		if p.stack[i].TagName == tagName {
			p.stack = p.stack[:i]
			return
		}
	}
}

// autoCloseP closes an open <p> unless a block container sits above it.
func (p *Parser) autoCloseP() {
	for i := len(p.stack) - 1; i >= 1; i-- {
		if p.stack[i].TagName == "p" {
			p.stack = p.stack[:i]
			return
		}
		if isBlockElement(p.stack[i].TagName) {
			return
		}
	}
}

func isBlockElement(tagName string) bool {
	switch tagName {
	case "address", "article", "aside", "blockquote", "details", "dialog",
		"dd", "div", "dl", "dt", "fieldset", "figcaption", "figure",
		"footer", "form", "h1", "h2", "h3", "h4", "h5", "h6",
		"header", "hgroup", "hr", "li", "main", "nav", "ol",
		"p", "pre", "section", "table", "ul":
		return true
	}
	return false
}

func Parse(html string) (*Document, error) {
	return NewParser(html).Parse()
}

// ParseFragment parses markup as the children of an anonymous element and
// returns the detached top-level nodes. <style> and <script> content inside
// a fragment is dropped.
func ParseFragment(markup string) ([]*Node, error) {
	doc, err := Parse(markup)
	if err != nil {
		return nil, fmt.Errorf("parsing fragment: %w", err)
	}
	nodes := make([]*Node, len(doc.Root.Children))
	copy(nodes, doc.Root.Children)
	doc.Root.RemoveChildren()
	return nodes, nil
}
