package html

import (
	"maps"
	"sort"
	"strings"
)

type Node struct {
	Type       NodeType
	TagName    string
	Attributes map[string]string
	Text       string // text or comment data
	Children   []*Node
	Parent     *Node
}

type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
	CommentNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	}
	return "unknown"
}

// Document is a parsed page. Root is a synthetic "document" element that
// holds the top-level nodes.
type Document struct {
	Root        *Node
	Stylesheets []string // CSS from <style> tags, in document order
	Scripts     []string // JavaScript from <script> tags
}

func NewDocument() *Document {
	return &Document{
		Root: &Node{
			Type:     ElementNode,
			TagName:  "document",
			Children: make([]*Node, 0),
		},
		Stylesheets: make([]string, 0),
		Scripts:     make([]string, 0),
	}
}

// Body returns the <body> element, or the document root when the markup
// had no body.
func (d *Document) Body() *Node {
	if body := d.Root.FindFirst(func(n *Node) bool {
		return n.Type == ElementNode && n.TagName == "body"
	}); body != nil {
		return body
	}
	return d.Root
}

// NewElement creates a detached element node with a copy of attrs.
func NewElement(tag string, attrs map[string]string) *Node {
	attrs = maps.Clone(attrs)
	if attrs == nil {
		attrs = make(map[string]string)
	}
	return &Node{
		Type:       ElementNode,
		TagName:    strings.ToLower(tag),
		Attributes: attrs,
		Children:   make([]*Node, 0),
	}
}

// NewText creates a detached text node.
func NewText(text string) *Node {
	return &Node{Type: TextNode, Text: text}
}

func (n *Node) GetAttribute(name string) (string, bool) {
	if n.Attributes == nil {
		return "", false
	}
	val, ok := n.Attributes[name]
	return val, ok
}

func (n *Node) SetAttribute(name, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	n.Attributes[name] = value
}

// AddChild adds a child node and sets up the parent relationship
func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
}

// AppendText creates a text node and adds it as a child
func (n *Node) AppendText(text string) {
	if text == "" {
		return
	}
	n.AddChild(NewText(text))
}

// RemoveChild removes the given child and returns it, or nil if child is
// not a child of n.
func (n *Node) RemoveChild(child *Node) *Node {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			return child
		}
	}
	return nil
}

// RemoveChildren detaches every child of n.
func (n *Node) RemoveChildren() {
	for _, c := range n.Children {
		c.Parent = nil
	}
	n.Children = make([]*Node, 0)
}

// Detach removes n from its parent, if any.
func (n *Node) Detach() {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// InsertBefore inserts newChild before refChild. A nil or foreign refChild
// appends. newChild is re-parented if it already has a parent.
func (n *Node) InsertBefore(newChild, refChild *Node) *Node {
	if newChild.Parent != nil {
		newChild.Parent.RemoveChild(newChild)
	}
	if refChild == nil {
		n.AddChild(newChild)
		return newChild
	}
	for i, c := range n.Children {
		if c == refChild {
			n.Children = append(n.Children, nil)
			copy(n.Children[i+1:], n.Children[i:])
			n.Children[i] = newChild
			newChild.Parent = n
			return newChild
		}
	}
	n.AddChild(newChild)
	return newChild
}

// CloneNode returns a parentless copy of the node, including descendants
// when deep is true.
func (n *Node) CloneNode(deep bool) *Node {
	clone := &Node{
		Type:     n.Type,
		TagName:  n.TagName,
		Text:     n.Text,
		Children: make([]*Node, 0),
	}
	if n.Attributes != nil {
		clone.Attributes = make(map[string]string, len(n.Attributes))
		for k, v := range n.Attributes {
			clone.Attributes[k] = v
		}
	}
	if deep {
		for _, child := range n.Children {
			clone.AddChild(child.CloneNode(true))
		}
	}
	return clone
}

// CloneChildren deep-clones every child of n, in order.
func (n *Node) CloneChildren() []*Node {
	clones := make([]*Node, 0, len(n.Children))
	for _, child := range n.Children {
		clones = append(clones, child.CloneNode(true))
	}
	return clones
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// IndexInParent returns the index of this node among its parent's children,
// or -1 if it has no parent.
func (n *Node) IndexInParent() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

// FindFirst walks the subtree depth-first and returns the first node
// matching pred.
func (n *Node) FindFirst(pred func(*Node) bool) *Node {
	if pred(n) {
		return n
	}
	for _, child := range n.Children {
		if found := child.FindFirst(pred); found != nil {
			return found
		}
	}
	return nil
}

// TextContent concatenates the text of every descendant text node.
func (n *Node) TextContent() string {
	switch n.Type {
	case TextNode:
		return n.Text
	case CommentNode:
		return ""
	}
	var sb strings.Builder
	for _, child := range n.Children {
		sb.WriteString(child.TextContent())
	}
	return sb.String()
}

// SetTextContent replaces the node's children with a single text node.
func (n *Node) SetTextContent(text string) {
	if n.Type != ElementNode {
		n.Text = text
		return
	}
	n.RemoveChildren()
	n.AppendText(text)
}

// SetInnerHTML replaces the children of n with the parsed fragment.
func (n *Node) SetInnerHTML(markup string) error {
	nodes, err := ParseFragment(markup)
	if err != nil {
		return err
	}
	n.RemoveChildren()
	for _, child := range nodes {
		n.AddChild(child)
	}
	return nil
}

// Serialize returns the innerHTML of this node.
func (n *Node) Serialize() string {
	var sb strings.Builder
	for _, child := range n.Children {
		serializeNode(&sb, child)
	}
	return sb.String()
}

// SerializeOuter returns the outerHTML of this node.
func (n *Node) SerializeOuter() string {
	var sb strings.Builder
	serializeNode(&sb, n)
	return sb.String()
}

// SerializeNodes concatenates the outerHTML of each node.
func SerializeNodes(nodes []*Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		serializeNode(&sb, n)
	}
	return sb.String()
}

func serializeNode(sb *strings.Builder, n *Node) {
	switch n.Type {
	case TextNode:
		if n.Parent != nil && isRawTextElement(n.Parent.TagName) {
			sb.WriteString(n.Text)
			return
		}
		sb.WriteString(escapeHTML(n.Text))
		return
	case CommentNode:
		sb.WriteString("<!--")
		sb.WriteString(n.Text)
		sb.WriteString("-->")
		return
	}

	sb.WriteByte('<')
	sb.WriteString(n.TagName)

	// Sorted for deterministic output
	if len(n.Attributes) > 0 {
		keys := make([]string, 0, len(n.Attributes))
		for k := range n.Attributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteByte(' ')
			sb.WriteString(k)
			sb.WriteString(`="`)
			sb.WriteString(escapeAttr(n.Attributes[k]))
			sb.WriteByte('"')
		}
	}

	sb.WriteByte('>')
	if isVoidElement(n.TagName) {
		return
	}
	for _, child := range n.Children {
		serializeNode(sb, child)
	}
	sb.WriteString("</")
	sb.WriteString(n.TagName)
	sb.WriteByte('>')
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\u00a0", "&nbsp;")
	attrEscaper = strings.NewReplacer("&", "&amp;", `"`, "&quot;", "<", "&lt;", ">", "&gt;")
)

func escapeHTML(s string) string { return textEscaper.Replace(s) }

func escapeAttr(s string) string { return attrEscaper.Replace(s) }

func isVoidElement(tag string) bool {
	switch tag {
	case "br", "hr", "img", "input", "meta", "link", "area", "base",
		"col", "embed", "param", "source", "track", "wbr":
		return true
	}
	return false
}

func isRawTextElement(tag string) bool {
	return tag == "script" || tag == "style"
}
