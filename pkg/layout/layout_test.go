package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lineclamp/pkg/css"
	"lineclamp/pkg/html"
)

func parseHTML(t *testing.T, markup string) *html.Document {
	t.Helper()
	doc, err := html.Parse(markup)
	require.NoError(t, err)
	return doc
}

func byID(t *testing.T, doc *html.Document, id string) *html.Node {
	t.Helper()
	node, err := css.QuerySelector(doc.Root, "#"+id)
	require.NoError(t, err)
	require.NotNil(t, node, "no element #%s", id)
	return node
}

// At font-size 13px every glyph of the default face advances 7px.
func TestOffsetHeight(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   int
	}{
		{
			"wraps at spaces",
			`<div id="t" style="width: 70px; font-size: 13px; line-height: 20px">aaaa bbbb cccc</div>`,
			40,
		},
		{
			"long word overflows a single line",
			`<div id="t" style="width: 35px; font-size: 13px; line-height: 10px">abcdefghij</div>`,
			10,
		},
		{
			"break-all splits words",
			`<div id="t" style="width: 35px; font-size: 13px; line-height: 10px; word-break: break-all">abcdefghij</div>`,
			20,
		},
		{
			"nowrap keeps one line",
			`<div id="t" style="width: 35px; font-size: 13px; line-height: 10px; white-space: nowrap">aaaa bbbb cccc</div>`,
			10,
		},
		{
			"pre keeps newlines",
			"<pre id=\"t\" style=\"line-height: 10px\">a\nb\nc</pre>",
			30,
		},
		{
			"normal line height",
			`<div id="t" style="font-size: 20px">word</div>`,
			24,
		},
		{
			"padding and border",
			`<div id="t" style="line-height: 20px; padding: 5px; border: 2px solid black">x</div>`,
			34,
		},
		{
			"explicit height wins",
			`<div id="t" style="line-height: 20px; height: 15px">a<br>b<br>c</div>`,
			15,
		},
		{
			"max-height clamps",
			`<div id="t" style="line-height: 20px; max-height: 30px">a<br>b<br>c</div>`,
			30,
		},
		{
			"lone br is a line",
			`<div id="t" style="line-height: 10px"><br></div>`,
			10,
		},
		{
			"empty block",
			`<div id="t" style="line-height: 10px">   </div>`,
			0,
		},
		{
			"inline-block raises the line",
			`<div id="t" style="line-height: 10px; width: 100px"><span style="display: inline-block; width: 20px; height: 30px"></span>x</div>`,
			30,
		},
		{
			"image attributes",
			`<div id="t" style="line-height: 10px"><img src="a.png" width="16" height="16"></div>`,
			16,
		},
		{
			"inline element spans its lines",
			`<div style="width: 70px; font-size: 13px; line-height: 10px"><span id="t">aaaa bbbb cccc</span></div>`,
			20,
		},
		{
			"display none",
			`<div id="t" style="display: none; line-height: 10px">x</div>`,
			0,
		},
		{
			"text joined across elements does not break",
			`<div id="t" style="position: fixed; width: 100px; font-size: 26px; line-height: 20px">Hello<span>...</span></div>`,
			20,
		},
		{
			"space before the marker is a break opportunity",
			`<div id="t" style="position: fixed; width: 100px; font-size: 26px; line-height: 20px">Hello <span>...</span></div>`,
			40,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseHTML(t, tt.markup)
			le := NewLayoutEngine(800, 600)
			assert.Equal(t, tt.want, le.OffsetHeight(doc, byID(t, doc, "t")))
		})
	}
}

func TestSiblingMarginsCollapse(t *testing.T) {
	doc := parseHTML(t, `
		<div id="outer" style="line-height: 10px; padding: 1px 0">
			<p id="a" style="margin: 10px 0">a</p>
			<p id="b" style="margin: 20px 0">b</p>
		</div>`)
	le := NewLayoutEngine(800, 600)

	assert.Equal(t, 72, le.OffsetHeight(doc, byID(t, doc, "outer")))
	a := le.BoundingClientRect(doc, byID(t, doc, "a"))
	b := le.BoundingClientRect(doc, byID(t, doc, "b"))
	assert.InDelta(t, 20, b.Y-(a.Y+a.Height), 1e-9)
}

func TestLineClamp(t *testing.T) {
	doc := parseHTML(t, `<div id="t" style="display: -webkit-box; -webkit-box-orient: vertical; -webkit-line-clamp: 2;
		width: 70px; font-size: 13px; line-height: 10px">aaaa bbbb cccc dddd eeee ffff</div>`)
	le := NewLayoutEngine(800, 600)
	node := byID(t, doc, "t")

	assert.Equal(t, 20, le.OffsetHeight(doc, node))
	box := le.BoxFor(node)
	require.NotNil(t, box)
	assert.Equal(t, 2, box.ClampedAt)
	assert.Len(t, box.LineBoxes, 3)
}

func TestLineClampNotReached(t *testing.T) {
	doc := parseHTML(t, `<div id="t" style="display: -webkit-box; -webkit-box-orient: vertical; -webkit-line-clamp: 5;
		width: 70px; font-size: 13px; line-height: 10px">aaaa bbbb</div>`)
	le := NewLayoutEngine(800, 600)
	node := byID(t, doc, "t")

	assert.Equal(t, 10, le.OffsetHeight(doc, node))
	assert.Zero(t, le.BoxFor(node).ClampedAt)
}

func TestBoundingClientRect(t *testing.T) {
	doc := parseHTML(t, `<body style="margin: 0"><div id="t" style="width: 50%; padding: 0 10px">x</div></body>`)
	le := NewLayoutEngine(800, 600)

	rect := le.BoundingClientRect(doc, byID(t, doc, "t"))
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 420, Height: rect.Height}, rect)
}

func TestFixedPositioning(t *testing.T) {
	doc := parseHTML(t, `<body>
		<p>in flow</p>
		<div id="t" style="position: fixed; left: 0; top: -10000px; width: 100px; font-size: 26px; line-height: 20px">Hello World</div>
	</body>`)
	le := NewLayoutEngine(800, 600)
	node := byID(t, doc, "t")

	rect := le.BoundingClientRect(doc, node)
	assert.Equal(t, Rect{X: 0, Y: -10000, Width: 100, Height: 40}, rect)
}

func TestFixedShrinksToFit(t *testing.T) {
	doc := parseHTML(t, `<div id="t" style="position: fixed; right: 10px; top: 0; font-size: 13px">abc</div>`)
	le := NewLayoutEngine(800, 600)

	rect := le.BoundingClientRect(doc, byID(t, doc, "t"))
	assert.InDelta(t, 21, rect.Width, 1e-9)
	assert.InDelta(t, 800-10-21, rect.X, 1e-9)
}

func TestFragments(t *testing.T) {
	doc := parseHTML(t, `<body style="margin: 0"><div style="width: 70px; font-size: 13px; line-height: 10px; text-align: right">ab cd</div></body>`)
	le := NewLayoutEngine(800, 600)
	le.Layout(doc)

	frags := le.Fragments()
	require.Len(t, frags, 1)
	assert.Equal(t, "ab cd", frags[0].Text)
	assert.InDelta(t, 35, frags[0].Width, 1e-9)
	assert.InDelta(t, 35, frags[0].X, 1e-9)
}

func TestSupports(t *testing.T) {
	le := NewLayoutEngine(800, 600)
	assert.True(t, le.Supports("text-overflow"))
	assert.True(t, le.Supports("-webkit-line-clamp"))
	assert.False(t, le.Supports("float"))

	le.SetSupported("-webkit-line-clamp", false)
	assert.False(t, le.Supports("-webkit-line-clamp"))
	assert.True(t, NewLayoutEngine(800, 600).Supports("-webkit-line-clamp"), "capability tables are per engine")
}

func TestComputedStyle(t *testing.T) {
	doc := parseHTML(t, `<style>.c { line-height: 1.5; }</style><div class="c" id="t" style="font-size: 10px">text</div>`)
	le := NewLayoutEngine(800, 600)
	node := byID(t, doc, "t")

	style := le.ComputedStyle(doc, node)
	assert.Equal(t, "15px", style.Value("line-height"))
	assert.Equal(t, "block", style.Value("display"))
	assert.Equal(t, style.Value("font-size"), le.ComputedStyle(doc, node.Children[0]).Value("font-size"))
}
