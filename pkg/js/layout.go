package js

import (
	"github.com/dop251/goja"
)

// registerLayoutGlobals installs getComputedStyle and CSS.supports.
func registerLayoutGlobals(ctx *domContext) {
	vm := ctx.vm
	vm.Set("getComputedStyle", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			panic(vm.NewTypeError("Failed to execute 'getComputedStyle': 1 argument required"))
		}
		node := ctx.unwrapNode(call.Arguments[0])
		if node == nil {
			panic(vm.NewTypeError("Failed to execute 'getComputedStyle': parameter 1 is not an Element"))
		}
		style := ctx.layout.ComputedStyle(ctx.doc, node)
		obj := vm.NewObject()
		for k, v := range style.Properties {
			obj.Set(k, v)
			obj.Set(kebabToCamel(k), v)
		}
		obj.Set("getPropertyValue", func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) == 0 {
				return vm.ToValue("")
			}
			return vm.ToValue(style.Value(call.Arguments[0].String()))
		})
		return obj
	})

	cssObj := vm.NewObject()
	cssObj.Set("supports", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) == 0 {
			return vm.ToValue(false)
		}
		return vm.ToValue(ctx.layout.Supports(call.Arguments[0].String()))
	})
	vm.Set("CSS", cssObj)
}
