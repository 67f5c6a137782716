package js

import (
	"github.com/dop251/goja"

	"lineclamp/pkg/css"
	"lineclamp/pkg/html"
)

// parseSelector parses a selector argument, throwing a SyntaxError into
// the script when it is malformed.
func parseSelector(ctx *domContext, call goja.FunctionCall, method string) *css.Selector {
	if len(call.Arguments) == 0 {
		panic(ctx.vm.NewTypeError("Failed to execute '" + method + "': 1 argument required"))
	}
	sel, err := css.ParseSelector(call.Arguments[0].String())
	if err != nil {
		ctor := ctx.vm.Get("SyntaxError").ToObject(ctx.vm)
		obj, _ := ctx.vm.New(ctor, ctx.vm.ToValue("Failed to execute '"+method+"': "+err.Error()))
		panic(obj)
	}
	return sel
}

// querySelectorFn returns a JS function implementing querySelector.
func querySelectorFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		sel := parseSelector(ctx, call, "querySelector")
		result := root.FindFirst(func(n *html.Node) bool {
			return n != root && sel.Matches(n)
		})
		if result == nil {
			return goja.Null()
		}
		return ctx.elementProxy(result)
	}
}

// querySelectorAllFn returns a JS function implementing querySelectorAll.
func querySelectorAllFn(ctx *domContext, root *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		sel := parseSelector(ctx, call, "querySelectorAll")
		var results []*html.Node
		walkTree(root, func(n *html.Node) bool {
			if n != root && sel.Matches(n) {
				results = append(results, n)
			}
			return false
		})
		return ctx.elementArray(results)
	}
}

// matchesFn returns a JS function implementing element.matches(selector).
func matchesFn(ctx *domContext, node *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		sel := parseSelector(ctx, call, "matches")
		return ctx.vm.ToValue(sel.Matches(node))
	}
}

// closestFn returns a JS function implementing element.closest(selector).
func closestFn(ctx *domContext, node *html.Node) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		sel := parseSelector(ctx, call, "closest")
		for current := node; current != nil; current = current.Parent {
			if current.Type != html.ElementNode || current.TagName == "document" {
				continue
			}
			if sel.Matches(current) {
				return ctx.elementProxy(current)
			}
		}
		return goja.Null()
	}
}

// walkTree performs a DFS walk over the tree. The callback returns true to stop.
func walkTree(node *html.Node, fn func(*html.Node) bool) bool {
	if node.Type == html.ElementNode {
		if fn(node) {
			return true
		}
	}
	for _, child := range node.Children {
		if walkTree(child, fn) {
			return true
		}
	}
	return false
}
