package css

import (
	"strings"
)

// Rule is one complex selector with its declarations. A rule written with
// a selector list becomes one Rule per selector.
type Rule struct {
	Selector     ComplexSelector
	Declarations *Style
	Order        int // source order across the stylesheet, for cascade ties
}

// Stylesheet represents a parsed CSS stylesheet
type Stylesheet struct {
	Rules []Rule
}

// ParseStylesheet parses CSS text. Malformed rules and at-rules are
// skipped, as a browser would.
func ParseStylesheet(css string) *Stylesheet {
	sheet := &Stylesheet{Rules: make([]Rule, 0)}
	css = stripComments(css)

	order := 0
	for _, block := range splitRules(css) {
		brace := strings.IndexByte(block, '{')
		if brace < 0 {
			continue
		}
		prelude := strings.TrimSpace(block[:brace])
		if prelude == "" || strings.HasPrefix(prelude, "@") {
			continue
		}
		sel, err := ParseSelector(prelude)
		if err != nil {
			continue
		}
		body := strings.TrimSuffix(strings.TrimSpace(block[brace+1:]), "}")
		decls := parseDeclarations(body)
		for _, c := range sel.Complex {
			sheet.Rules = append(sheet.Rules, Rule{Selector: c, Declarations: decls, Order: order})
			order++
		}
	}
	return sheet
}

// splitRules splits CSS into top-level "prelude { ... }" blocks.
func splitRules(css string) []string {
	rules := make([]string, 0)
	depth := 0
	start := 0
	for i, ch := range css {
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				if rule := strings.TrimSpace(css[start : i+1]); rule != "" {
					rules = append(rules, rule)
				}
				start = i + 1
			}
			if depth < 0 {
				depth = 0
				start = i + 1
			}
		}
	}
	return rules
}

func stripComments(css string) string {
	var sb strings.Builder
	for {
		start := strings.Index(css, "/*")
		if start < 0 {
			sb.WriteString(css)
			return sb.String()
		}
		sb.WriteString(css[:start])
		end := strings.Index(css[start+2:], "*/")
		if end < 0 {
			return sb.String()
		}
		css = css[start+2+end+2:]
	}
}

func parseDeclarations(body string) *Style {
	style := NewStyle()
	for _, decl := range strings.Split(body, ";") {
		property, value, ok := splitDeclaration(decl)
		if !ok {
			continue
		}
		expandShorthand(style, property, value)
	}
	return style
}
