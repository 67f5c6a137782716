package js

import (
	"fmt"

	"github.com/dop251/goja"

	"lineclamp/pkg/html"
)

// nodeArg returns argument i of a DOM mutation call, throwing a TypeError
// named after method when it is missing or not a node.
func (e *elementAccessor) nodeArg(call goja.FunctionCall, method string, i int) *html.Node {
	if len(call.Arguments) <= i {
		panic(e.ctx.vm.NewTypeError(fmt.Sprintf("Failed to execute '%s': %d argument required", method, i+1)))
	}
	n := e.ctx.unwrapNode(call.Arguments[i])
	if n == nil {
		panic(e.ctx.vm.NewTypeError(fmt.Sprintf("Failed to execute '%s': parameter %d is not a Node", method, i+1)))
	}
	return n
}

func (e *elementAccessor) appendChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		child := e.nodeArg(call, "appendChild", 0)
		e.node.AddChild(child)
		return e.ctx.elementProxy(child)
	}
}

func (e *elementAccessor) removeChildFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		removed := e.node.RemoveChild(e.nodeArg(call, "removeChild", 0))
		if removed == nil {
			panic(e.ctx.vm.NewTypeError("Failed to execute 'removeChild': not a child of this node"))
		}
		return e.ctx.elementProxy(removed)
	}
}

// insertBeforeFn implements insertBefore(node, ref). A null or missing
// ref appends.
func (e *elementAccessor) insertBeforeFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		inserted := e.nodeArg(call, "insertBefore", 0)
		var ref *html.Node
		if len(call.Arguments) > 1 {
			ref = e.ctx.unwrapNode(call.Arguments[1])
		}
		e.node.InsertBefore(inserted, ref)
		return e.ctx.elementProxy(inserted)
	}
}

// appendFn implements append(...nodes). Strings become text nodes.
func (e *elementAccessor) appendFn() func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		for _, arg := range call.Arguments {
			switch n := e.ctx.unwrapNode(arg); {
			case n != nil:
				e.node.AddChild(n)
			default:
				e.node.AppendText(arg.String())
			}
		}
		return goja.Undefined()
	}
}
