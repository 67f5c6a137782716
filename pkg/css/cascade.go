package css

import (
	"sort"
	"strconv"
	"strings"

	"lineclamp/pkg/html"
)

// initialValues is the computed value of every property the engine knows
// about, before any cascade.
var initialValues = map[string]string{
	"display":             "inline",
	"position":            "static",
	"top":                 "auto",
	"left":                "auto",
	"right":               "auto",
	"bottom":              "auto",
	"z-index":             "auto",
	"width":               "auto",
	"height":              "auto",
	"min-width":           "auto",
	"min-height":          "auto",
	"max-width":           "none",
	"max-height":          "none",
	"box-sizing":          "content-box",
	"margin-top":          "0px",
	"margin-right":        "0px",
	"margin-bottom":       "0px",
	"margin-left":         "0px",
	"padding-top":         "0px",
	"padding-right":       "0px",
	"padding-bottom":      "0px",
	"padding-left":        "0px",
	"border-top-width":    "0px",
	"border-right-width":  "0px",
	"border-bottom-width": "0px",
	"border-left-width":   "0px",
	"border-top-style":    "none",
	"border-right-style":  "none",
	"border-bottom-style": "none",
	"border-left-style":   "none",
	"font-size":           "16px",
	"font-family":         "sans-serif",
	"font-weight":         "400",
	"font-style":          "normal",
	"line-height":         "normal",
	"color":               "black",
	"background-color":    "transparent",
	"white-space":         "normal",
	"word-break":          "normal",
	"text-align":          "left",
	"text-overflow":       "clip",
	"overflow":            "visible",
	"visibility":          "visible",
	"-webkit-line-clamp":  "none",
	"-webkit-box-orient":  "horizontal",
}

var inheritedProperties = map[string]bool{
	"color":       true,
	"font-size":   true,
	"font-family": true,
	"font-weight": true,
	"font-style":  true,
	"line-height": true,
	"white-space": true,
	"word-break":  true,
	"text-align":  true,
	"visibility":  true,
}

var lengthProperties = []string{
	"width", "height", "min-width", "min-height", "max-width", "max-height",
	"margin-top", "margin-right", "margin-bottom", "margin-left",
	"padding-top", "padding-right", "padding-bottom", "padding-left",
	"border-top-width", "border-right-width", "border-bottom-width", "border-left-width",
	"top", "right", "bottom", "left",
}

const rootFontSize = 16.0

// applyUserAgentStyles applies default browser styles based on element type
func applyUserAgentStyles(node *html.Node, style *Style) {
	switch node.TagName {
	case "html", "body", "div", "p", "section", "article", "header", "footer",
		"nav", "main", "aside", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6",
		"pre", "blockquote", "form", "figure", "figcaption", "address", "dl",
		"dt", "dd", "hr", "table", "fieldset", "details", "summary":
		style.Set("display", "block")
	case "li":
		style.Set("display", "list-item")
	case "head", "title", "meta", "link", "script", "style", "template":
		style.Set("display", "none")
	}

	switch node.TagName {
	case "body":
		expandBoxProperty(style, "margin-%s", "8px")
	case "p", "ul", "ol", "blockquote", "pre", "dl":
		expandBoxProperty(style, "margin-%s", "1em 0")
	case "h1":
		style.Set("font-size", "2em")
		expandBoxProperty(style, "margin-%s", "0.67em 0")
	case "h2":
		style.Set("font-size", "1.5em")
		expandBoxProperty(style, "margin-%s", "0.83em 0")
	case "h3":
		style.Set("font-size", "1.17em")
		expandBoxProperty(style, "margin-%s", "1em 0")
	case "b", "strong":
		style.Set("font-weight", "bold")
	case "i", "em", "cite":
		style.Set("font-style", "italic")
	case "a":
		style.Set("color", "#0645ad")
	case "code", "kbd", "samp":
		style.Set("font-family", "monospace")
	}
	switch node.TagName {
	case "h1", "h2", "h3", "h4", "h5", "h6", "th":
		style.Set("font-weight", "bold")
	case "pre":
		style.Set("white-space", "pre")
		style.Set("font-family", "monospace")
	case "ul", "ol":
		style.Set("padding-left", "40px")
	}
}

// Cascade computes styles for the nodes of one document.
type Cascade struct {
	sheets []*Stylesheet
}

// NewCascade parses the document's stylesheets.
func NewCascade(doc *html.Document) *Cascade {
	c := &Cascade{}
	for _, cssText := range doc.Stylesheets {
		c.sheets = append(c.sheets, ParseStylesheet(cssText))
	}
	return c
}

// Specified returns the cascaded declarations for an element: user agent
// defaults, then matching rules by specificity and source order, then the
// style attribute.
func (c *Cascade) Specified(node *html.Node) *Style {
	specified := NewStyle()
	applyUserAgentStyles(node, specified)

	matched := make([]Rule, 0)
	for _, sheet := range c.sheets {
		for _, rule := range sheet.Rules {
			if rule.Selector.Matches(node) {
				matched = append(matched, rule)
			}
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Selector.Specificity != matched[j].Selector.Specificity {
			return matched[i].Selector.Specificity < matched[j].Selector.Specificity
		}
		return matched[i].Order < matched[j].Order
	})
	for _, rule := range matched {
		for property, value := range rule.Declarations.Properties {
			specified.Set(property, value)
		}
	}

	if styleAttr, ok := node.GetAttribute("style"); ok {
		for property, value := range ParseInlineStyle(styleAttr).Properties {
			specified.Set(property, value)
		}
	}
	return specified
}

// Compute returns the computed style of an element given its parent's
// computed style (nil for the root). Relative lengths are resolved to
// pixels; percentages and keywords are kept.
func (c *Cascade) Compute(node *html.Node, parent *Style) *Style {
	return computeFrom(c.Specified(node), parent)
}

func computeFrom(specified, parent *Style) *Style {
	computed := NewStyle()
	for k, v := range initialValues {
		computed.Set(k, v)
	}
	if parent != nil {
		for k := range inheritedProperties {
			if v, ok := parent.Get(k); ok {
				computed.Set(k, v)
			}
		}
		computed.lineHeightFactor = parent.lineHeightFactor
	}

	for k, v := range specified.Properties {
		switch v {
		case "inherit":
			if parent != nil {
				if pv, ok := parent.Get(k); ok {
					computed.Set(k, pv)
				}
				continue
			}
			fallthrough
		case "initial":
			if iv, ok := initialValues[k]; ok {
				computed.Set(k, iv)
			} else {
				computed.Delete(k)
			}
		default:
			computed.Set(k, v)
		}
	}

	parentFontSize := rootFontSize
	if parent != nil {
		parentFontSize = parent.GetFontSize()
	}
	fontSize := resolveFontSize(computed.Value("font-size"), parentFontSize)
	computed.Set("font-size", FormatPixels(fontSize))

	if lh, ok := specified.Get("line-height"); ok && lh != "inherit" && lh != "initial" {
		computed.lineHeightFactor = 0
		computed.Set("line-height", resolveLineHeight(computed, lh, fontSize))
	} else if computed.lineHeightFactor > 0 {
		computed.Set("line-height", FormatPixels(computed.lineHeightFactor*fontSize))
	}

	for _, prop := range lengthProperties {
		if v, ok := computed.Get(prop); ok {
			computed.Set(prop, resolveLength(v, fontSize))
		}
	}
	for _, side := range []string{"top", "right", "bottom", "left"} {
		if st := computed.Value("border-" + side + "-style"); st == "none" || st == "hidden" {
			computed.Set("border-"+side+"-width", "0px")
		}
	}

	// absolutely positioned boxes are blockified
	if computed.IsOutOfFlow() {
		switch computed.GetDisplay() {
		case DisplayInline, DisplayInlineBlock:
			computed.Set("display", "block")
		}
	}
	return computed
}

func resolveLineHeight(computed *Style, value string, fontSize float64) string {
	value = strings.TrimSpace(value)
	if value == "normal" {
		return value
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		computed.lineHeightFactor = f
		return FormatPixels(f * fontSize)
	}
	if strings.HasSuffix(value, "%") {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64); err == nil {
			return FormatPixels(f / 100 * fontSize)
		}
		return value
	}
	return resolveLength(value, fontSize)
}

func resolveFontSize(value string, parentFontSize float64) float64 {
	value = strings.TrimSpace(value)
	switch value {
	case "xx-small":
		return 9
	case "x-small":
		return 10
	case "small":
		return 13
	case "medium":
		return 16
	case "large":
		return 18
	case "x-large":
		return 24
	case "xx-large":
		return 32
	case "smaller":
		return parentFontSize / 1.2
	case "larger":
		return parentFontSize * 1.2
	}
	if strings.HasSuffix(value, "%") {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64); err == nil {
			return f / 100 * parentFontSize
		}
		return parentFontSize
	}
	if px, ok := absoluteLength(value, parentFontSize); ok {
		return px
	}
	return parentFontSize
}

// resolveLength converts em, rem and absolute units to pixels; anything
// else (auto, none, percentages) is returned unchanged.
func resolveLength(value string, fontSize float64) string {
	if px, ok := absoluteLength(value, fontSize); ok {
		return FormatPixels(px)
	}
	return value
}

func absoluteLength(value string, emBase float64) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "0" {
		return 0, true
	}
	units := []struct {
		suffix string
		scale  float64
	}{
		{"rem", rootFontSize},
		{"px", 1},
		{"em", emBase},
		{"pt", 4.0 / 3.0},
		{"pc", 16},
		{"in", 96},
		{"cm", 96 / 2.54},
		{"mm", 96 / 25.4},
	}
	for _, u := range units {
		if strings.HasSuffix(value, u.suffix) {
			f, err := strconv.ParseFloat(strings.TrimSuffix(value, u.suffix), 64)
			if err != nil {
				return 0, false
			}
			return f * u.scale, true
		}
	}
	return 0, false
}

// ComputeAll computes styles for every element under root, top-down.
func (c *Cascade) ComputeAll(root *html.Node) map[*html.Node]*Style {
	styles := make(map[*html.Node]*Style)
	c.computeInto(root, nil, styles)
	return styles
}

func (c *Cascade) computeInto(node *html.Node, parent *Style, styles map[*html.Node]*Style) {
	style := parent
	if node.Type == html.ElementNode && node.TagName != "document" {
		style = c.Compute(node, parent)
		styles[node] = style
	}
	for _, child := range node.Children {
		if child.Type == html.ElementNode {
			c.computeInto(child, style, styles)
		}
	}
}

// ComputeNode computes the style of a single element by cascading down
// its ancestor chain.
func (c *Cascade) ComputeNode(node *html.Node) *Style {
	var chain []*html.Node
	for n := node; n != nil; n = n.Parent {
		if n.Type == html.ElementNode && n.TagName != "document" {
			chain = append(chain, n)
		}
	}
	var style *Style
	for i := len(chain) - 1; i >= 0; i-- {
		style = c.Compute(chain[i], style)
	}
	if style == nil {
		return computeFrom(NewStyle(), nil)
	}
	return style
}

// AnonymousBlockStyle returns the computed style of an anonymous block box
// generated inside an element with the given computed style: inherited
// properties come from parent, everything else is initial.
func AnonymousBlockStyle(parent *Style) *Style {
	style := computeFrom(NewStyle(), parent)
	style.Set("display", "block")
	return style
}
