// Package ellipsis truncates markup to a number of rendered lines and ends
// it with an ellipsis marker and an optional suffix.
//
// When the layout engine can clamp natively the target is given CSS
// truncation declarations instead. Otherwise the content is measured in a
// hidden scratch container attached to the live document, admitting whole
// elements and binary searching text by grapheme until the next addition
// would exceed the height of the requested rows.
package ellipsis

import (
	"fmt"
	"log/slog"
	"strings"

	"lineclamp/pkg/css"
	"lineclamp/pkg/html"
	"lineclamp/pkg/layout"
)

const (
	DefaultRows   = 2
	DefaultSymbol = "..."
)

// Mode says how Ellipsis truncated the target.
type Mode int

const (
	// ModeMeasured means the markup was truncated by measurement.
	ModeMeasured Mode = iota
	// ModeCSS means the target was given CSS truncation declarations.
	ModeCSS
)

func (m Mode) String() string {
	switch m {
	case ModeCSS:
		return "css"
	case ModeMeasured:
		return "measured"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Options configures a call to Ellipsis.
type Options struct {
	// Target is the element to truncate. When nil, Selector is resolved
	// against the document.
	Target   *html.Node
	Selector string

	Rows           int
	EllipsisSymbol string
	// Content replaces the target's markup when set.
	Content    *string
	Suffix     string
	PatchStyle map[string]string
	// UseCSS allows the CSS path. Defaults to true.
	UseCSS *bool

	Debug  bool
	Logger *slog.Logger
	Layout *layout.LayoutEngine
}

// Outcome reports what Ellipsis did to the target.
type Outcome struct {
	Target    *html.Node
	Mode      Mode
	Truncated bool
	Markup    string
	// Style holds the declarations appended to the target in ModeCSS.
	Style    string
	Warnings []StyleWarning
	Stats    Stats
}

// Ellipsis truncates the target of opts to opts.Rows lines.
//
// In ModeCSS only the target's style attribute changes. In ModeMeasured
// the target's children are replaced by the result when it was truncated
// or when the target was empty.
func Ellipsis(doc *html.Document, opts Options) (*Outcome, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	target, err := resolveTarget(doc, opts)
	if err != nil {
		logger.Error("cannot resolve ellipsis target", "selector", opts.Selector, "error", err)
		return nil, err
	}

	rows := opts.Rows
	if rows == 0 {
		rows = DefaultRows
	}
	if rows < 0 {
		return nil, fmt.Errorf("ellipsis: rows must be positive, got %d", rows)
	}
	symbol := opts.EllipsisSymbol
	if symbol == "" {
		symbol = DefaultSymbol
	}
	engine := NewEngine(Config{Debug: opts.Debug, Logger: logger, Layout: opts.Layout})

	useCSS := opts.UseCSS == nil || *opts.UseCSS
	if useCSS && opts.Content == nil && symbol == DefaultSymbol && opts.Suffix == "" && CanUseCSS(engine.Layout(), rows) {
		decls := truncationStyle(rows)
		existing, _ := target.GetAttribute("style")
		target.SetAttribute("style", appendDeclarations(existing, decls))
		logger.Debug("truncating with css", "rows", rows, "style", decls)
		return &Outcome{Target: target, Mode: ModeCSS, Markup: target.Serialize(), Style: decls}, nil
	}

	content := target.Serialize()
	if opts.Content != nil {
		content = *opts.Content
	}
	res, err := engine.Measure(doc, MeasureRequest{
		Target:         target,
		Rows:           rows,
		EllipsisSymbol: symbol,
		Content:        content,
		Suffix:         opts.Suffix,
		PatchStyle:     opts.PatchStyle,
	})
	if err != nil {
		return nil, err
	}

	if res.Truncated || len(target.Children) == 0 {
		if err := target.SetInnerHTML(res.Markup); err != nil {
			return nil, fmt.Errorf("writing result into target: %w", err)
		}
	}
	return &Outcome{
		Target:    target,
		Mode:      ModeMeasured,
		Truncated: res.Truncated,
		Markup:    res.Markup,
		Warnings:  res.Warnings,
		Stats:     res.Stats,
	}, nil
}

func resolveTarget(doc *html.Document, opts Options) (*html.Node, error) {
	if opts.Target != nil {
		return opts.Target, nil
	}
	if opts.Selector == "" {
		return nil, &ConfigurationError{Err: ErrTargetNotFound}
	}
	node, err := css.QuerySelector(doc.Root, opts.Selector)
	if err != nil {
		return nil, &ConfigurationError{Selector: opts.Selector, Err: err}
	}
	if node == nil {
		return nil, &ConfigurationError{Selector: opts.Selector, Err: ErrTargetNotFound}
	}
	return node, nil
}

// CanUseCSS reports whether le can truncate rows lines natively:
// text-overflow for a single line, -webkit-line-clamp otherwise.
func CanUseCSS(le *layout.LayoutEngine, rows int) bool {
	if rows == 1 {
		return le.Supports("text-overflow")
	}
	return le.Supports("-webkit-line-clamp")
}

// truncationStyle returns the declarations that make the engine clamp to
// rows lines itself.
func truncationStyle(rows int) string {
	if rows == 1 {
		return "overflow: hidden; white-space: nowrap; text-overflow: ellipsis; word-break: break-all;"
	}
	return fmt.Sprintf("display: -webkit-box; -webkit-line-clamp: %d; -webkit-box-orient: vertical; overflow: hidden; word-break: break-all;", rows)
}

func appendDeclarations(existing, decls string) string {
	existing = strings.TrimSpace(existing)
	if existing == "" {
		return decls
	}
	if !strings.HasSuffix(existing, ";") {
		existing += ";"
	}
	return existing + " " + decls
}
