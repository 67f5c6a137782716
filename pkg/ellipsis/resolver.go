package ellipsis

import (
	"log/slog"
	"math"

	"lineclamp/pkg/css"
	"lineclamp/pkg/html"
	"lineclamp/pkg/layout"
)

// offscreenStyle keeps the scratch container out of flow and out of sight
// while letting its content grow to its natural height.
func offscreenStyle() *css.Style {
	return css.StyleFromMap(map[string]string{
		"position":           "fixed",
		"left":               "0",
		"top":                "-10000px",
		"z-index":            "-1",
		"visibility":         "hidden",
		"overflow":           "visible",
		"height":             "auto",
		"min-height":         "auto",
		"max-height":         "none",
		"text-overflow":      "clip",
		"white-space":        "normal",
		"-webkit-line-clamp": "none",
		"display":            "block",
	})
}

// debugStyle brings the scratch container on screen.
func debugStyle() *css.Style {
	return css.StyleFromMap(map[string]string{
		"top":        "200px",
		"z-index":    "10",
		"visibility": "visible",
	})
}

// Resolver derives the scratch container style and the height budget from
// the target's computed style.
type Resolver struct {
	Layout *layout.LayoutEngine
	Logger *slog.Logger
}

// ResolveBudget returns the declarations for the scratch container that
// measures on behalf of target, the exclusive height budget for rows lines
// and any declarations that had to be substituted.
//
// Layers apply in increasing priority: computed style, the offscreen
// baseline, the debug override when debug is set, then patch.
func (r *Resolver) ResolveBudget(doc *html.Document, target *html.Node, rows int, patch map[string]string, debug bool) (*css.Style, int, []StyleWarning) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	layers := []*css.Style{r.Layout.ComputedStyle(doc, target), offscreenStyle()}
	if debug {
		layers = append(layers, debugStyle())
	}
	layers = append(layers, css.StyleFromMap(patch))
	style := css.Merge(layers...)

	var warnings []StyleWarning
	if width := style.Value("width"); !isPixels(width) {
		w := r.renderedWidth(doc, target, style)
		style.Set("width", css.FormatPixels(w))
		warnings = append(warnings, StyleWarning{Property: "width", Value: width, Substitute: css.FormatPixels(w)})
		logger.Debug("width frozen to rendered width", "value", width, "width", w)
	}

	lineHeight, ok := css.ParsePixels(style.Value("line-height"))
	if !ok {
		value := style.Value("line-height")
		warnings = append(warnings, StyleWarning{Property: "line-height", Value: value, Substitute: "0px"})
		logger.Warn("line-height is not a pixel length, budget will be too small", "value", value)
		lineHeight = 0
	}

	paddingTop, _ := css.ParsePixels(style.Value("padding-top"))
	paddingBottom, _ := css.ParsePixels(style.Value("padding-bottom"))
	budget := int(math.Round(lineHeight*float64(rows+1) + paddingTop + paddingBottom))
	return style, budget, warnings
}

// renderedWidth is the content width the target currently lays out at,
// in the box-sizing style uses.
func (r *Resolver) renderedWidth(doc *html.Document, target *html.Node, style *css.Style) float64 {
	w := r.Layout.BoundingClientRect(doc, target).Width
	if style.Value("box-sizing") != "border-box" {
		w -= style.GetPadding().Horizontal() + style.GetBorderWidth().Horizontal()
	}
	return max(0, w)
}

func isPixels(value string) bool {
	_, ok := css.ParsePixels(value)
	return ok
}
