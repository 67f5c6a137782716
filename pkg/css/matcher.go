package css

import (
	"strings"

	"lineclamp/pkg/html"
)

// Matches reports whether node matches any selector in the list.
func (s *Selector) Matches(node *html.Node) bool {
	for _, c := range s.Complex {
		if c.Matches(node) {
			return true
		}
	}
	return false
}

// Matches reports whether node matches the complex selector. Matching runs
// right to left, starting from the subject compound.
func (c ComplexSelector) Matches(node *html.Node) bool {
	if node.Type != html.ElementNode || len(c.Parts) == 0 {
		return false
	}
	return matchesFrom(node, c, len(c.Parts)-1)
}

func matchesFrom(node *html.Node, c ComplexSelector, partIndex int) bool {
	if !matchesCompound(node, c.Parts[partIndex]) {
		return false
	}
	if partIndex == 0 {
		return true
	}

	prev := partIndex - 1
	switch c.Combinators[prev] {
	case DescendantCombinator:
		for p := node.Parent; isElement(p); p = p.Parent {
			if matchesFrom(p, c, prev) {
				return true
			}
		}
	case ChildCombinator:
		if isElement(node.Parent) {
			return matchesFrom(node.Parent, c, prev)
		}
	case AdjacentSiblingCombinator:
		if sib := previousElementSibling(node); sib != nil {
			return matchesFrom(sib, c, prev)
		}
	case GeneralSiblingCombinator:
		for sib := previousElementSibling(node); sib != nil; sib = previousElementSibling(sib) {
			if matchesFrom(sib, c, prev) {
				return true
			}
		}
	}
	return false
}

// isElement excludes the synthetic document root from ancestor matching.
func isElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && n.TagName != "document"
}

func matchesCompound(node *html.Node, part CompoundSelector) bool {
	if part.Element != "" && part.Element != "*" && node.TagName != part.Element {
		return false
	}
	if part.ID != "" {
		if id, ok := node.GetAttribute("id"); !ok || id != part.ID {
			return false
		}
	}
	if len(part.Classes) > 0 {
		classes := strings.Fields(node.Attributes["class"])
		for _, required := range part.Classes {
			if !containsString(classes, required) {
				return false
			}
		}
	}
	for _, attr := range part.Attributes {
		if !matchesAttribute(node, attr) {
			return false
		}
	}
	for _, pc := range part.PseudoClasses {
		if !matchesPseudoClass(node, pc) {
			return false
		}
	}
	return true
}

func matchesAttribute(node *html.Node, attr AttributeSelector) bool {
	val, ok := node.GetAttribute(attr.Name)
	if !ok {
		return false
	}
	switch attr.Operator {
	case "":
		return true
	case "=":
		return val == attr.Value
	case "~=":
		return containsString(strings.Fields(val), attr.Value)
	case "|=":
		return val == attr.Value || strings.HasPrefix(val, attr.Value+"-")
	case "^=":
		return attr.Value != "" && strings.HasPrefix(val, attr.Value)
	case "$=":
		return attr.Value != "" && strings.HasSuffix(val, attr.Value)
	case "*=":
		return attr.Value != "" && strings.Contains(val, attr.Value)
	}
	return false
}

// matchesPseudoClass handles the structural pseudo-classes. Dynamic ones
// (:hover, :focus, ...) never match in a static document.
func matchesPseudoClass(node *html.Node, pc string) bool {
	switch pc {
	case "first-child":
		return previousElementSibling(node) == nil
	case "last-child":
		return nextElementSibling(node) == nil
	case "only-child":
		return previousElementSibling(node) == nil && nextElementSibling(node) == nil
	case "empty":
		for _, c := range node.Children {
			if c.Type == html.ElementNode || (c.Type == html.TextNode && c.Text != "") {
				return false
			}
		}
		return true
	case "root":
		return node.TagName == "html"
	}
	return false
}

func previousElementSibling(node *html.Node) *html.Node {
	idx := node.IndexInParent()
	for i := idx - 1; i >= 0; i-- {
		if sib := node.Parent.Children[i]; sib.Type == html.ElementNode {
			return sib
		}
	}
	return nil
}

func nextElementSibling(node *html.Node) *html.Node {
	idx := node.IndexInParent()
	if idx < 0 {
		return nil
	}
	for i := idx + 1; i < len(node.Parent.Children); i++ {
		if sib := node.Parent.Children[i]; sib.Type == html.ElementNode {
			return sib
		}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// QuerySelectorAll returns every element under root (root excluded)
// matching the selector, in document order.
func QuerySelectorAll(root *html.Node, selector string) ([]*html.Node, error) {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	var result []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for _, child := range n.Children {
			if sel.Matches(child) {
				result = append(result, child)
			}
			walk(child)
		}
	}
	walk(root)
	return result, nil
}

// QuerySelector returns the first element under root matching the
// selector, or nil.
func QuerySelector(root *html.Node, selector string) (*html.Node, error) {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	return root.FindFirst(func(n *html.Node) bool {
		return n != root && sel.Matches(n)
	}), nil
}
