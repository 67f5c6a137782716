package ellipsis

import (
	"errors"
	"fmt"
	"log/slog"

	"lineclamp/pkg/html"
	"lineclamp/pkg/layout"
	"lineclamp/pkg/text"
)

// Default viewport for engines created without a layout engine.
const (
	DefaultViewportWidth  = 1024
	DefaultViewportHeight = 768
)

// Config configures an Engine. Zero values select slog.Default() and a
// layout engine with the default viewport.
type Config struct {
	// Debug lays the scratch container out on screen instead of offscreen.
	Debug  bool
	Logger *slog.Logger
	Layout *layout.LayoutEngine
}

// MeasureRequest describes one truncation: Content followed by the
// ellipsis marker and Suffix must fit Rows lines of Target.
type MeasureRequest struct {
	Target         *html.Node
	Rows           int
	EllipsisSymbol string
	Content        string
	Suffix         string
	PatchStyle     map[string]string
}

// MeasureResult is the outcome of Engine.Measure.
type MeasureResult struct {
	Truncated bool
	Markup    string
	Warnings  []StyleWarning
	Stats     Stats
}

// Stats counts the work done by one measurement.
type Stats struct {
	// Probes counts layouts of the scratch container.
	Probes int
	// Admitted counts content nodes kept whole or in part.
	Admitted int
}

// Engine measures how much content fits a number of rows by laying out
// candidates in a scratch container.
type Engine struct {
	config   Config
	resolver *Resolver
}

// NewEngine creates an Engine from cfg.
func NewEngine(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Layout == nil {
		cfg.Layout = layout.NewLayoutEngine(DefaultViewportWidth, DefaultViewportHeight)
	}
	return &Engine{
		config:   cfg,
		resolver: &Resolver{Layout: cfg.Layout, Logger: cfg.Logger},
	}
}

// Layout returns the layout engine probes run on.
func (e *Engine) Layout() *layout.LayoutEngine {
	return e.config.Layout
}

// Measure truncates req.Content so that it, the ellipsis and the suffix
// fit req.Rows lines of the target. The document is left as it was.
func (e *Engine) Measure(doc *html.Document, req MeasureRequest) (MeasureResult, error) {
	if req.Target == nil {
		return MeasureResult{}, &ConfigurationError{Err: ErrTargetNotFound}
	}
	if req.Rows <= 0 {
		return MeasureResult{}, fmt.Errorf("ellipsis: rows must be positive, got %d", req.Rows)
	}

	scratch, err := NewScratch(doc, req, e.config.Layout)
	if err != nil {
		return MeasureResult{}, err
	}
	defer scratch.Close()

	style, budget, warnings := e.resolver.ResolveBudget(doc, req.Target, req.Rows, req.PatchStyle, e.config.Debug)
	scratch.SetStyle(style, budget)
	result := MeasureResult{Warnings: warnings}

	if scratch.InRange() {
		e.config.Logger.Debug("content fits", "rows", req.Rows, "budget", budget)
		result.Markup = req.Content + req.Suffix
		result.Stats.Probes = scratch.Probes()
		return result, nil
	}

	nodes := classify(scratch.Reset())
	result.Stats.Admitted = e.admit(scratch, nodes)
	result.Truncated = true
	result.Markup = scratch.Markup()
	result.Stats.Probes = scratch.Probes()
	e.config.Logger.Debug("content truncated",
		"rows", req.Rows, "budget", budget,
		"admitted", result.Stats.Admitted, "nodes", len(nodes), "probes", result.Stats.Probes)
	return result, nil
}

type ContentKind int

const (
	TextRun ContentKind = iota
	ElementBlock
	OtherNode
)

// ContentNode is a top-level node of the content, classified by how it is
// admitted into the scratch container.
type ContentNode struct {
	Kind ContentKind
	Node *html.Node
}

func classify(nodes []*html.Node) []ContentNode {
	out := make([]ContentNode, 0, len(nodes))
	for _, n := range nodes {
		kind := OtherNode
		switch n.Type {
		case html.TextNode:
			kind = TextRun
		case html.ElementNode:
			kind = ElementBlock
		}
		out = append(out, ContentNode{Kind: kind, Node: n})
	}
	return out
}

var errOverflow = errors.New("overflow")

// admit inserts content nodes before the ellipsis in document order until
// one no longer fits, and returns how many were kept.
func (e *Engine) admit(s *Scratch, nodes []ContentNode) int {
	admitted := 0
	for _, c := range nodes {
		var err error
		switch c.Kind {
		case ElementBlock:
			err = admitElement(s, c.Node)
		case TextRun:
			var whole bool
			whole, err = admitText(s, c.Node)
			if err == nil && !whole {
				return admitted + 1
			}
		default:
			continue
		}
		if err != nil {
			return admitted
		}
		admitted++
	}
	return admitted
}

// admitElement keeps n only if the whole subtree fits.
func admitElement(s *Scratch, n *html.Node) error {
	s.Insert(n)
	if s.InRange() {
		return nil
	}
	s.Remove(n)
	return errOverflow
}

// admitText keeps the longest grapheme prefix of the text node n that
// fits. It reports whether the whole text was kept, and errOverflow when
// not even the first grapheme fits.
func admitText(s *Scratch, n *html.Node) (bool, error) {
	clusters := text.Graphemes(n.Text)
	s.Insert(n)
	if len(clusters) == 0 {
		s.Remove(n)
		return true, nil
	}

	fits := func(k int) bool {
		n.Text = text.Prefix(clusters, k)
		return s.InRange()
	}
	start, end := 0, len(clusters)
	for start < end-1 {
		mid := (start + end) / 2
		if fits(mid) {
			start = mid
		} else {
			end = mid
		}
	}
	k := end
	if !fits(k) {
		k = start
		n.Text = text.Prefix(clusters, k)
	}
	if k == 0 {
		s.Remove(n)
		return false, errOverflow
	}
	return k == len(clusters), nil
}
