package js

import (
	"math"
	"strings"
	"unicode"

	"github.com/dop251/goja"

	"lineclamp/pkg/css"
	"lineclamp/pkg/html"
	"lineclamp/pkg/layout"
)

// domContext holds shared state for DOM bindings within a single execution.
// It maintains a node-to-proxy cache so the same JS object is returned for
// the same underlying *html.Node (needed for === identity checks).
type domContext struct {
	vm     *goja.Runtime
	doc    *html.Document
	layout *layout.LayoutEngine
	cache  map[*html.Node]goja.Value
}

func newDOMContext(vm *goja.Runtime, doc *html.Document, le *layout.LayoutEngine) *domContext {
	return &domContext{
		vm:     vm,
		doc:    doc,
		layout: le,
		cache:  make(map[*html.Node]goja.Value),
	}
}

// registerDocument sets up the global `document` object on the goja runtime.
func registerDocument(vm *goja.Runtime, doc *html.Document, le *layout.LayoutEngine) *domContext {
	ctx := newDOMContext(vm, doc, le)

	docObj := vm.NewObject()
	docObj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return goja.Null()
		}
		id := call.Arguments[0].String()
		node := doc.Root.FindFirst(func(n *html.Node) bool {
			v, ok := n.GetAttribute("id")
			return n.Type == html.ElementNode && ok && v == id
		})
		if node == nil {
			return goja.Null()
		}
		return ctx.elementProxy(node)
	})
	docObj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'createElement' on 'Document': 1 argument required"))
		}
		return ctx.elementProxy(html.NewElement(strings.ToLower(call.Arguments[0].String()), nil))
	})
	docObj.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		text := ""
		if len(call.Arguments) > 0 {
			text = call.Arguments[0].String()
		}
		return ctx.elementProxy(html.NewText(text))
	})
	docObj.Set("querySelector", querySelectorFn(ctx, doc.Root))
	docObj.Set("querySelectorAll", querySelectorAllFn(ctx, doc.Root))
	docObj.Set("body", ctx.elementProxy(doc.Body()))

	vm.Set("document", docObj)
	return ctx
}

// elementArray creates a JS array of Element proxies.
func (ctx *domContext) elementArray(nodes []*html.Node) goja.Value {
	values := make([]any, len(nodes))
	for i, n := range nodes {
		values[i] = ctx.elementProxy(n)
	}
	return ctx.vm.NewArray(values...)
}

// elementProxy creates (or retrieves from cache) a JS DynamicObject wrapping an html.Node.
func (ctx *domContext) elementProxy(node *html.Node) goja.Value {
	if v, ok := ctx.cache[node]; ok {
		return v
	}
	v := ctx.vm.NewDynamicObject(&elementAccessor{ctx: ctx, node: node})
	ctx.cache[node] = v
	return v
}

// unwrapNode extracts the *html.Node from a goja value that wraps an elementAccessor.
func (ctx *domContext) unwrapNode(val goja.Value) *html.Node {
	if val == nil || goja.IsNull(val) || goja.IsUndefined(val) {
		return nil
	}
	obj, ok := val.(*goja.Object)
	if !ok {
		return nil
	}
	for node, cached := range ctx.cache {
		if cached.SameAs(obj) {
			return node
		}
	}
	return nil
}

// elementAccessor implements goja.DynamicObject to intercept property access
// on DOM element proxies.
type elementAccessor struct {
	ctx  *domContext
	node *html.Node
}

var elementKeys = []string{
	"tagName", "nodeName", "nodeType", "nodeValue", "id", "className",
	"textContent", "innerHTML", "outerHTML",
	"getAttribute", "setAttribute", "hasAttribute", "removeAttribute",
	"children", "childNodes", "firstChild", "parentElement", "parentNode", "style",
	"appendChild", "removeChild", "insertBefore", "remove", "append", "cloneNode",
	"querySelector", "querySelectorAll", "matches", "closest",
	"offsetHeight", "offsetWidth", "getBoundingClientRect",
}

func (e *elementAccessor) Get(key string) goja.Value {
	vm := e.ctx.vm

	switch key {
	case "nodeType":
		if e.node.Type == html.TextNode {
			return vm.ToValue(3) // Node.TEXT_NODE
		}
		return vm.ToValue(1) // Node.ELEMENT_NODE
	case "nodeName":
		if e.node.Type == html.TextNode {
			return vm.ToValue("#text")
		}
		return vm.ToValue(strings.ToUpper(e.node.TagName))
	case "nodeValue":
		if e.node.Type == html.TextNode {
			return vm.ToValue(e.node.Text)
		}
		return goja.Null()
	case "tagName":
		if e.node.Type == html.TextNode {
			return goja.Undefined()
		}
		return vm.ToValue(strings.ToUpper(e.node.TagName))
	case "id":
		id, _ := e.node.GetAttribute("id")
		return vm.ToValue(id)
	case "className":
		cls, _ := e.node.GetAttribute("class")
		return vm.ToValue(cls)
	case "textContent":
		return vm.ToValue(e.node.TextContent())
	case "innerHTML":
		return vm.ToValue(e.node.Serialize())
	case "outerHTML":
		return vm.ToValue(e.node.SerializeOuter())
	case "getAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return goja.Null()
			}
			val, ok := e.node.GetAttribute(call.Arguments[0].String())
			if !ok {
				return goja.Null()
			}
			return vm.ToValue(val)
		})
	case "setAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				return goja.Undefined()
			}
			e.node.SetAttribute(call.Arguments[0].String(), call.Arguments[1].String())
			return goja.Undefined()
		})
	case "hasAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue(false)
			}
			_, ok := e.node.GetAttribute(call.Arguments[0].String())
			return vm.ToValue(ok)
		})
	case "removeAttribute":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) > 0 && e.node.Attributes != nil {
				delete(e.node.Attributes, call.Arguments[0].String())
			}
			return goja.Undefined()
		})
	case "children":
		var elChildren []*html.Node
		for _, child := range e.node.Children {
			if child.Type == html.ElementNode {
				elChildren = append(elChildren, child)
			}
		}
		return e.ctx.elementArray(elChildren)
	case "childNodes":
		return e.ctx.elementArray(e.node.Children)
	case "firstChild":
		if len(e.node.Children) == 0 {
			return goja.Null()
		}
		return e.ctx.elementProxy(e.node.Children[0])
	case "parentElement", "parentNode":
		if e.node.Parent != nil && e.node.Parent.TagName != "document" {
			return e.ctx.elementProxy(e.node.Parent)
		}
		return goja.Null()
	case "style":
		return newStyleProxy(vm, e.node)

	case "appendChild":
		return vm.ToValue(e.appendChildFn())
	case "removeChild":
		return vm.ToValue(e.removeChildFn())
	case "insertBefore":
		return vm.ToValue(e.insertBeforeFn())
	case "remove":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			e.node.Detach()
			return goja.Undefined()
		})
	case "append":
		return vm.ToValue(e.appendFn())
	case "cloneNode":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			deep := len(call.Arguments) > 0 && call.Arguments[0].ToBoolean()
			return e.ctx.elementProxy(e.node.CloneNode(deep))
		})

	case "querySelector":
		return vm.ToValue(querySelectorFn(e.ctx, e.node))
	case "querySelectorAll":
		return vm.ToValue(querySelectorAllFn(e.ctx, e.node))
	case "matches":
		return vm.ToValue(matchesFn(e.ctx, e.node))
	case "closest":
		return vm.ToValue(closestFn(e.ctx, e.node))

	case "offsetHeight":
		return vm.ToValue(e.ctx.layout.OffsetHeight(e.ctx.doc, e.node))
	case "offsetWidth":
		rect := e.ctx.layout.BoundingClientRect(e.ctx.doc, e.node)
		return vm.ToValue(int(math.Round(rect.Width)))
	case "getBoundingClientRect":
		return vm.ToValue(func(call goja.FunctionCall) goja.Value {
			return rectObject(vm, e.ctx.layout.BoundingClientRect(e.ctx.doc, e.node))
		})
	}
	return goja.Undefined()
}

func (e *elementAccessor) Set(key string, val goja.Value) bool {
	switch key {
	case "textContent":
		e.node.SetTextContent(val.String())
		return true
	case "className":
		e.node.SetAttribute("class", val.String())
		return true
	case "id":
		e.node.SetAttribute("id", val.String())
		return true
	case "innerHTML":
		if err := e.node.SetInnerHTML(val.String()); err != nil {
			panic(e.ctx.vm.NewGoError(err))
		}
		return true
	case "nodeValue":
		if e.node.Type == html.TextNode {
			e.node.Text = val.String()
		}
		return true
	}
	return false
}

func (e *elementAccessor) Has(key string) bool {
	for _, k := range elementKeys {
		if k == key {
			return true
		}
	}
	return false
}

func (e *elementAccessor) Delete(key string) bool {
	return false
}

func (e *elementAccessor) Keys() []string {
	return elementKeys
}

func rectObject(vm *goja.Runtime, r layout.Rect) goja.Value {
	obj := vm.NewObject()
	obj.Set("x", r.X)
	obj.Set("y", r.Y)
	obj.Set("width", r.Width)
	obj.Set("height", r.Height)
	obj.Set("left", r.X)
	obj.Set("top", r.Y)
	obj.Set("right", r.X+r.Width)
	obj.Set("bottom", r.Y+r.Height)
	return obj
}

// newStyleProxy creates a goja DynamicObject that maps JS camelCase
// property access to CSS kebab-case on the node's inline style attribute.
func newStyleProxy(vm *goja.Runtime, node *html.Node) goja.Value {
	return vm.NewDynamicObject(&styleAccessor{vm: vm, node: node})
}

type styleAccessor struct {
	vm   *goja.Runtime
	node *html.Node
}

func (s *styleAccessor) Get(key string) goja.Value {
	if key == "cssText" {
		return s.vm.ToValue(s.style().String())
	}
	return s.vm.ToValue(s.style().Value(camelToKebab(key)))
}

func (s *styleAccessor) Set(key string, val goja.Value) bool {
	if key == "cssText" {
		s.node.SetAttribute("style", val.String())
		return true
	}
	style := s.style()
	style.Set(camelToKebab(key), val.String())
	s.node.SetAttribute("style", style.String())
	return true
}

func (s *styleAccessor) Has(key string) bool {
	return true
}

func (s *styleAccessor) Delete(key string) bool {
	style := s.style()
	style.Delete(camelToKebab(key))
	s.node.SetAttribute("style", style.String())
	return true
}

func (s *styleAccessor) Keys() []string {
	style := s.style()
	keys := make([]string, 0, len(style.Properties))
	for k := range style.Properties {
		keys = append(keys, k)
	}
	return keys
}

func (s *styleAccessor) style() *css.Style {
	attr, _ := s.node.GetAttribute("style")
	return css.ParseInlineStyle(attr)
}

// camelToKebab converts a JS camelCase property name to CSS kebab-case.
// A leading "webkit" becomes the vendor prefix.
func camelToKebab(s string) string {
	if rest, ok := strings.CutPrefix(s, "webkit"); ok && rest != "" && unicode.IsUpper(rune(rest[0])) {
		return "-webkit-" + camelToKebab(strings.ToLower(rest[:1])+rest[1:])
	}
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('-')
			}
			sb.WriteRune(unicode.ToLower(r))
		} else {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// kebabToCamel is the inverse of camelToKebab.
func kebabToCamel(s string) string {
	s = strings.TrimPrefix(s, "-")
	parts := strings.Split(s, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
