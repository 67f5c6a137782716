package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lineclamp/pkg/html"
)

func parseHTML(t *testing.T, s string) *html.Document {
	t.Helper()
	doc, err := html.Parse(s)
	require.NoError(t, err)
	return doc
}

func TestParseSelectorStructure(t *testing.T) {
	sel, err := ParseSelector(`div#main > p.note.big[lang="en"]:first-child, span`)
	require.NoError(t, err)
	require.Len(t, sel.Complex, 2)

	first := sel.Complex[0]
	require.Len(t, first.Parts, 2)
	assert.Equal(t, []Combinator{ChildCombinator}, first.Combinators)
	assert.Equal(t, "div", first.Parts[0].Element)
	assert.Equal(t, "main", first.Parts[0].ID)
	assert.Equal(t, []string{"note", "big"}, first.Parts[1].Classes)
	assert.Equal(t, []AttributeSelector{{Name: "lang", Operator: "=", Value: "en"}}, first.Parts[1].Attributes)
	assert.Equal(t, []string{"first-child"}, first.Parts[1].PseudoClasses)
	assert.Equal(t, 100+1+1+40, first.Specificity)

	assert.Equal(t, 1, sel.Complex[1].Specificity)
}

func TestParseSelectorCombinators(t *testing.T) {
	tests := []struct {
		input string
		want  []Combinator
	}{
		{"a b", []Combinator{DescendantCombinator}},
		{"a  >  b", []Combinator{ChildCombinator}},
		{"a+b ~ c", []Combinator{AdjacentSiblingCombinator, GeneralSiblingCombinator}},
		{"ul li a", []Combinator{DescendantCombinator, DescendantCombinator}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			sel, err := ParseSelector(tt.input)
			require.NoError(t, err)
			require.Len(t, sel.Complex, 1)
			assert.Equal(t, tt.want, sel.Complex[0].Combinators)
		})
	}
}

func TestParseSelectorErrors(t *testing.T) {
	for _, input := range []string{"", "   ", "div >", "[", "#"} {
		_, err := ParseSelector(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestQuerySelector(t *testing.T) {
	doc := parseHTML(t, `
		<div id="app" class="card">
			<p class="title">Title</p>
			<p class="body" data-kind="long text">Body</p>
			<span>one</span><span>two</span>
		</div>`)

	tests := []struct {
		selector string
		wantTag  string
		wantText string
	}{
		{"#app", "div", ""},
		{".card > .title", "p", "Title"},
		{"div p.body", "p", "Body"},
		{`[data-kind~="long"]`, "p", "Body"},
		{`[data-kind^=long]`, "p", "Body"},
		{"p + span", "span", "one"},
		{"span:last-child", "span", "two"},
		{"span ~ span", "span", "two"},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			node, err := QuerySelector(doc.Root, tt.selector)
			require.NoError(t, err)
			require.NotNil(t, node)
			assert.Equal(t, tt.wantTag, node.TagName)
			if tt.wantText != "" {
				assert.Equal(t, tt.wantText, node.TextContent())
			}
		})
	}

	node, err := QuerySelector(doc.Root, "#missing")
	require.NoError(t, err)
	assert.Nil(t, node)

	all, err := QuerySelectorAll(doc.Root, "p, span")
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestDynamicPseudoClassNeverMatches(t *testing.T) {
	doc := parseHTML(t, `<a href="#">x</a>`)
	node, err := QuerySelector(doc.Root, "a:hover")
	require.NoError(t, err)
	assert.Nil(t, node)
}
