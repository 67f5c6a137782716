package js

import (
	"errors"

	"github.com/dop251/goja"

	"lineclamp/pkg/ellipsis"
)

// registerEllipsis installs the global ellipsis(options) function.
//
//	ellipsis({target: "#title", rows: 2, suffix: "<a>more</a>"})
//	// => {isEllipsis: true, content: "...", style: "", mode: "measured"}
//
// An unresolvable target throws a TypeError. Other failures are logged
// and the call returns undefined.
func (e *Engine) registerEllipsis(ctx *domContext) {
	vm := ctx.vm
	vm.Set("ellipsis", func(call goja.FunctionCall) goja.Value {
		var arg goja.Value = goja.Undefined()
		if len(call.Arguments) > 0 {
			arg = call.Arguments[0]
		}
		if goja.IsUndefined(arg) || goja.IsNull(arg) {
			panic(vm.NewTypeError("ellipsis: options with a target are required"))
		}
		opts := e.ellipsisOptions(ctx, arg.ToObject(vm))

		out, err := ellipsis.Ellipsis(ctx.doc, opts)
		var cfgErr *ellipsis.ConfigurationError
		if errors.As(err, &cfgErr) {
			panic(vm.NewTypeError(cfgErr.Error()))
		}
		if err != nil {
			e.logger.Error("ellipsis failed", "error", err)
			return goja.Undefined()
		}

		result := vm.NewObject()
		result.Set("isEllipsis", out.Truncated)
		result.Set("content", out.Markup)
		result.Set("style", out.Style)
		result.Set("mode", out.Mode.String())
		return result
	})
}

func (e *Engine) ellipsisOptions(ctx *domContext, obj *goja.Object) ellipsis.Options {
	opts := ellipsis.Options{Layout: e.layout, Logger: e.logger}

	if target := obj.Get("target"); target != nil {
		if s, ok := target.Export().(string); ok {
			opts.Selector = s
		} else {
			opts.Target = ctx.unwrapNode(target)
		}
	}
	if v := obj.Get("rows"); isSet(v) {
		opts.Rows = int(v.ToInteger())
	}
	if v := obj.Get("ellipsisSymbol"); isSet(v) {
		opts.EllipsisSymbol = v.String()
	}
	if v := obj.Get("content"); isSet(v) {
		content := v.String()
		opts.Content = &content
	}
	if v := obj.Get("suffix"); isSet(v) {
		opts.Suffix = v.String()
	}
	if v := obj.Get("useCss"); isSet(v) {
		useCSS := v.ToBoolean()
		opts.UseCSS = &useCSS
	}
	if v := obj.Get("debug"); isSet(v) {
		opts.Debug = v.ToBoolean()
	}
	if v := obj.Get("patchStyle"); isSet(v) {
		patch := v.ToObject(ctx.vm)
		opts.PatchStyle = make(map[string]string)
		for _, k := range patch.Keys() {
			opts.PatchStyle[camelToKebab(k)] = patch.Get(k).String()
		}
	}
	return opts
}

func isSet(v goja.Value) bool {
	return v != nil && !goja.IsUndefined(v) && !goja.IsNull(v)
}
