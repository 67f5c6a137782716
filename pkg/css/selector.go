package css

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	// Combinator tokens swallow the whitespace around them so that a bare
	// run of spaces can stand for the descendant combinator.
	selectorLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "String", Pattern: `"(?:\\.|[^"])*"|'(?:\\.|[^'])*'`},
		{Name: "Hash", Pattern: `#-?[_a-zA-Z0-9][-_a-zA-Z0-9]*`},
		{Name: "Ident", Pattern: `-?[_a-zA-Z][-_a-zA-Z0-9]*`},
		{Name: "Number", Pattern: `[0-9]+`},
		{Name: "MatchOp", Pattern: `[~|^$*]=`},
		{Name: "Comma", Pattern: `\s*,\s*`},
		{Name: "Combinator", Pattern: `\s*[>+~]\s*|\s+`},
		{Name: "Punct", Pattern: `[.*\[\]=:()]`},
	})

	selectorParser = participle.MustBuild[selectorListAST](
		participle.Lexer(selectorLexer),
	)
)

type selectorListAST struct {
	Selectors []*complexAST `parser:"@@ ( Comma @@ )*"`
}

type complexAST struct {
	Head *compoundAST `parser:"@@"`
	Tail []*stepAST   `parser:"@@*"`
}

type stepAST struct {
	Combinator string       `parser:"@Combinator"`
	Compound   *compoundAST `parser:"@@"`
}

type compoundAST struct {
	Type string    `parser:"( @Ident | @'*' )?"`
	Subs []*subAST `parser:"@@*"`
}

type subAST struct {
	ID     string   `parser:"  @Hash"`
	Class  string   `parser:"| '.' @Ident"`
	Attr   *attrAST `parser:"| '[' @@ ']'"`
	Pseudo string   `parser:"| ':' @Ident"`
}

type attrAST struct {
	Name  string `parser:"@Ident"`
	Op    string `parser:"( @( MatchOp | '=' )"`
	Value string `parser:"  @( String | Ident | Number ) )?"`
}

type Combinator int

const (
	DescendantCombinator      Combinator = iota // A B
	ChildCombinator                             // A > B
	AdjacentSiblingCombinator                   // A + B
	GeneralSiblingCombinator                    // A ~ B
)

// AttributeSelector is one [name op value] test.
type AttributeSelector struct {
	Name     string
	Operator string // "" for presence, otherwise =, ~=, |=, ^=, $=, *=
	Value    string
}

// CompoundSelector is a sequence of simple selectors with no combinator,
// e.g. div#main.note[lang].
type CompoundSelector struct {
	Element       string // "" or "*" matches any element
	ID            string
	Classes       []string
	Attributes    []AttributeSelector
	PseudoClasses []string
}

// ComplexSelector is compound selectors joined by combinators;
// Combinators[i] sits between Parts[i] and Parts[i+1].
type ComplexSelector struct {
	Parts       []CompoundSelector
	Combinators []Combinator
	Specificity int
}

// Selector is a parsed selector list.
type Selector struct {
	Raw     string
	Complex []ComplexSelector
}

// ParseSelector parses a comma separated selector list.
func ParseSelector(raw string) (*Selector, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty selector")
	}
	ast, err := selectorParser.ParseString("", trimmed)
	if err != nil {
		return nil, fmt.Errorf("parsing selector %q: %w", raw, err)
	}

	sel := &Selector{Raw: trimmed}
	for _, c := range ast.Selectors {
		complexSel, err := convertComplex(c)
		if err != nil {
			return nil, fmt.Errorf("parsing selector %q: %w", raw, err)
		}
		sel.Complex = append(sel.Complex, complexSel)
	}
	return sel, nil
}

func convertComplex(c *complexAST) (ComplexSelector, error) {
	var out ComplexSelector
	head, err := convertCompound(c.Head)
	if err != nil {
		return out, err
	}
	out.Parts = append(out.Parts, head)
	for _, step := range c.Tail {
		part, err := convertCompound(step.Compound)
		if err != nil {
			return out, err
		}
		out.Parts = append(out.Parts, part)
		out.Combinators = append(out.Combinators, parseCombinator(step.Combinator))
	}
	out.Specificity = specificity(out.Parts)
	return out, nil
}

func convertCompound(c *compoundAST) (CompoundSelector, error) {
	var out CompoundSelector
	if c == nil || (c.Type == "" && len(c.Subs) == 0) {
		return out, fmt.Errorf("empty compound selector")
	}
	out.Element = strings.ToLower(c.Type)
	for _, sub := range c.Subs {
		switch {
		case sub.ID != "":
			out.ID = strings.TrimPrefix(sub.ID, "#")
		case sub.Class != "":
			out.Classes = append(out.Classes, sub.Class)
		case sub.Attr != nil:
			out.Attributes = append(out.Attributes, AttributeSelector{
				Name:     strings.ToLower(sub.Attr.Name),
				Operator: sub.Attr.Op,
				Value:    unquote(sub.Attr.Value),
			})
		case sub.Pseudo != "":
			out.PseudoClasses = append(out.PseudoClasses, strings.ToLower(sub.Pseudo))
		}
	}
	return out, nil
}

func parseCombinator(tok string) Combinator {
	switch strings.TrimSpace(tok) {
	case ">":
		return ChildCombinator
	case "+":
		return AdjacentSiblingCombinator
	case "~":
		return GeneralSiblingCombinator
	}
	return DescendantCombinator
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// specificity packs (ids, classes, types) as a*100 + b*10 + c.
func specificity(parts []CompoundSelector) int {
	total := 0
	for _, p := range parts {
		if p.ID != "" {
			total += 100
		}
		total += 10 * (len(p.Classes) + len(p.Attributes) + len(p.PseudoClasses))
		if p.Element != "" && p.Element != "*" {
			total++
		}
	}
	return total
}

func (s *Selector) String() string {
	return s.Raw
}
