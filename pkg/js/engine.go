package js

import (
	"fmt"
	"log/slog"

	"github.com/dop251/goja"

	"lineclamp/pkg/html"
	"lineclamp/pkg/layout"
)

// Engine executes JavaScript against an HTML document's DOM. Layout
// queries (offsetHeight, getComputedStyle, CSS.supports) and the ellipsis
// global are answered by the engine's layout engine.
type Engine struct {
	vm     *goja.Runtime
	layout *layout.LayoutEngine
	logger *slog.Logger
}

// New creates a new JS engine with a fresh goja runtime. A nil layout
// engine gets a 1024x768 viewport; a nil logger uses slog.Default.
func New(le *layout.LayoutEngine, logger *slog.Logger) *Engine {
	if le == nil {
		le = layout.NewLayoutEngine(1024, 768)
	}
	if logger == nil {
		logger = slog.Default()
	}
	vm := goja.New()
	e := &Engine{vm: vm, layout: le, logger: logger}

	c := &consoleAPI{logger: logger}
	c.register(vm)

	return e
}

// Execute runs all scripts from the document against the DOM.
// Scripts are executed in order. Any JS errors are returned but
// callers may choose to log and continue rather than fail.
func (e *Engine) Execute(doc *html.Document) error {
	e.bind(doc)

	for i, script := range doc.Scripts {
		_, err := e.vm.RunString(script)
		if err != nil {
			return fmt.Errorf("script %d: %w", i, err)
		}
	}

	return nil
}

// Run evaluates src against doc and returns the completion value
// exported to Go.
func (e *Engine) Run(doc *html.Document, src string) (any, error) {
	e.bind(doc)
	v, err := e.vm.RunString(src)
	if err != nil {
		return nil, err
	}
	return v.Export(), nil
}

func (e *Engine) bind(doc *html.Document) {
	ctx := registerDocument(e.vm, doc, e.layout)
	registerLayoutGlobals(ctx)
	e.registerEllipsis(ctx)
}
