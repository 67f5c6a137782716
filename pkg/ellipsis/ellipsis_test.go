package ellipsis

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lineclamp/pkg/css"
	"lineclamp/pkg/html"
	"lineclamp/pkg/layout"
	"lineclamp/pkg/text"
)

// At font-size 13px every glyph of the default face advances 7px, at 26px
// it advances 14px.

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

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func boolPtr(b bool) *bool { return &b }

func stringPtr(s string) *string { return &s }

func newEngine() *Engine {
	return NewEngine(Config{Logger: quietLogger(), Layout: layout.NewLayoutEngine(800, 600)})
}

const helloDoc = `<body><div id="t" style="width: 100px; line-height: 20px; font-size: 26px">Hello World</div></body>`

func TestEllipsisTruncatesText(t *testing.T) {
	doc := parseHTML(t, helloDoc)
	bodyChildren := len(doc.Body().Children)

	out, err := Ellipsis(doc, Options{Selector: "#t", Rows: 1, UseCSS: boolPtr(false), Logger: quietLogger()})
	require.NoError(t, err)

	assert.Equal(t, ModeMeasured, out.Mode)
	assert.True(t, out.Truncated)
	assert.Equal(t, "Hello...", out.Markup)
	assert.Equal(t, "Hello...", byID(t, doc, "t").Serialize())
	assert.Len(t, doc.Body().Children, bodyChildren, "scratch container must be removed")
	assert.Empty(t, out.Warnings)
}

func TestEllipsisFitsUnchanged(t *testing.T) {
	doc := parseHTML(t, `<body><div id="t" style="width: 100px; line-height: 20px; font-size: 26px">Hi</div></body>`)

	out, err := Ellipsis(doc, Options{Selector: "#t", Rows: 1, UseCSS: boolPtr(false), Logger: quietLogger()})
	require.NoError(t, err)

	assert.False(t, out.Truncated)
	assert.Equal(t, "Hi", out.Markup)
	assert.Equal(t, "Hi", byID(t, doc, "t").Serialize())
}

func TestEllipsisWritesIntoEmptyTarget(t *testing.T) {
	doc := parseHTML(t, `<body><div id="t" style="width: 100px; line-height: 20px; font-size: 26px"></div></body>`)

	out, err := Ellipsis(doc, Options{Selector: "#t", Rows: 1, Content: stringPtr("Hi"), Logger: quietLogger()})
	require.NoError(t, err)

	assert.Equal(t, ModeMeasured, out.Mode)
	assert.False(t, out.Truncated)
	assert.Equal(t, "Hi", byID(t, doc, "t").Serialize())
}

func TestEllipsisKeepsTargetWhenContentFits(t *testing.T) {
	doc := parseHTML(t, `<body><div id="t" style="width: 100px; line-height: 20px; font-size: 26px">old</div></body>`)

	out, err := Ellipsis(doc, Options{Selector: "#t", Rows: 1, Content: stringPtr("Hi"), Logger: quietLogger()})
	require.NoError(t, err)

	assert.Equal(t, "Hi", out.Markup)
	assert.Equal(t, "old", byID(t, doc, "t").Serialize())
}

func TestEllipsisTargetErrors(t *testing.T) {
	doc := parseHTML(t, helloDoc)

	tests := []struct {
		name     string
		opts     Options
		notFound bool
	}{
		{"no target", Options{}, true},
		{"selector matches nothing", Options{Selector: "#missing"}, true},
		{"bad selector", Options{Selector: "div >"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = quietLogger()
			out, err := Ellipsis(doc, tt.opts)
			assert.Nil(t, out)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, tt.opts.Selector, cfgErr.Selector)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrTargetNotFound))
		})
	}
}

func TestEllipsisRejectsNegativeRows(t *testing.T) {
	doc := parseHTML(t, helloDoc)
	_, err := Ellipsis(doc, Options{Selector: "#t", Rows: -1, Logger: quietLogger()})
	assert.Error(t, err)
}

func TestEllipsisCSSSingleLine(t *testing.T) {
	doc := parseHTML(t, `<body><div id="t" style="width: 70px; font-size: 13px; line-height: 10px">aaaa bbbb cccc</div></body>`)
	target := byID(t, doc, "t")

	out, err := Ellipsis(doc, Options{Target: target, Rows: 1, Logger: quietLogger()})
	require.NoError(t, err)

	assert.Equal(t, ModeCSS, out.Mode)
	assert.Equal(t, "aaaa bbbb cccc", target.Serialize())
	style, _ := target.GetAttribute("style")
	assert.Equal(t, "width: 70px; font-size: 13px; line-height: 10px; "+out.Style, style)
	assert.Contains(t, out.Style, "text-overflow: ellipsis")

	le := layout.NewLayoutEngine(800, 600)
	assert.Equal(t, 10, le.OffsetHeight(doc, target))
}

func TestEllipsisCSSLineClamp(t *testing.T) {
	doc := parseHTML(t, `<body><div id="t" style="width: 70px; font-size: 13px; line-height: 10px">aaaa bbbb cccc dddd eeee ffff gggg hhhh</div></body>`)
	target := byID(t, doc, "t")
	le := layout.NewLayoutEngine(800, 600)
	require.Equal(t, 40, le.OffsetHeight(doc, target))

	out, err := Ellipsis(doc, Options{Target: target, Rows: 3, Layout: le, Logger: quietLogger()})
	require.NoError(t, err)

	assert.Equal(t, ModeCSS, out.Mode)
	assert.Contains(t, out.Style, "-webkit-line-clamp: 3")
	assert.Equal(t, 30, le.OffsetHeight(doc, target))
}

func TestEllipsisCSSPathConditions(t *testing.T) {
	unsupported := layout.NewLayoutEngine(800, 600)
	unsupported.SetSupported("-webkit-line-clamp", false)

	tests := []struct {
		name string
		opts Options
		want Mode
	}{
		{"defaults", Options{}, ModeCSS},
		{"css disabled", Options{UseCSS: boolPtr(false)}, ModeMeasured},
		{"custom symbol", Options{EllipsisSymbol: "~"}, ModeMeasured},
		{"suffix", Options{Suffix: "<a>more</a>"}, ModeMeasured},
		{"explicit content", Options{Content: stringPtr("x")}, ModeMeasured},
		{"engine without line clamp", Options{Layout: unsupported}, ModeMeasured},
		{"single line without line clamp", Options{Rows: 1, Layout: unsupported}, ModeCSS},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseHTML(t, helloDoc)
			tt.opts.Selector = "#t"
			tt.opts.Logger = quietLogger()
			out, err := Ellipsis(doc, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Mode)
		})
	}
}

func TestCanUseCSS(t *testing.T) {
	le := layout.NewLayoutEngine(800, 600)
	le.SetSupported("text-overflow", false)
	assert.False(t, CanUseCSS(le, 1))
	assert.True(t, CanUseCSS(le, 2))
}

func TestAppendDeclarations(t *testing.T) {
	assert.Equal(t, "a: b;", appendDeclarations("", "a: b;"))
	assert.Equal(t, "x: y; a: b;", appendDeclarations("x: y", "a: b;"))
	assert.Equal(t, "x: y; a: b;", appendDeclarations(" x: y; ", "a: b;"))
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "css", ModeCSS.String())
	assert.Equal(t, "measured", ModeMeasured.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
}

func TestMeasureAdmitsElementsWhole(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		want     string
		admitted int
	}{
		{"element that does not fit is dropped", "<b>Hello World</b> tail", "...", 0},
		{"element that fits is kept", "<i>Hi</i> there friend", "<i>Hi</i> t...", 2},
		{
			"element kept with no text after it",
			`<span style="display:inline-block;width:50px;height:10px"></span>Some long text`,
			`<span style="display:inline-block;width:50px;height:10px"></span>...`,
			1,
		},
		{"comments are skipped", "<!-- c -->Hello World", "Hello...", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseHTML(t, helloDoc)
			res, err := newEngine().Measure(doc, MeasureRequest{
				Target:         byID(t, doc, "t"),
				Rows:           1,
				EllipsisSymbol: "...",
				Content:        tt.content,
			})
			require.NoError(t, err)
			assert.True(t, res.Truncated)
			assert.Equal(t, tt.want, res.Markup)
			assert.Equal(t, tt.admitted, res.Stats.Admitted)
		})
	}
}

func TestMeasureEmptyPrefix(t *testing.T) {
	doc := parseHTML(t, helloDoc)
	res, err := newEngine().Measure(doc, MeasureRequest{
		Target:         byID(t, doc, "t"),
		Rows:           1,
		EllipsisSymbol: "...",
		Content:        "Hello",
		Suffix:         "<div>more</div>",
	})
	require.NoError(t, err)

	assert.True(t, res.Truncated)
	assert.Equal(t, "...<div>more</div>", res.Markup)
	assert.Zero(t, res.Stats.Admitted)
}

func TestMeasureSingleEllipsisBeforeSuffix(t *testing.T) {
	doc := parseHTML(t, `<body><div id="t" style="width: 70px; font-size: 13px; line-height: 10px"></div></body>`)
	suffix := `<a href="#">more</a>`
	res, err := newEngine().Measure(doc, MeasureRequest{
		Target:         byID(t, doc, "t"),
		Rows:           2,
		EllipsisSymbol: "~~",
		Content:        "aaaa bbbb cccc dddd eeee ffff gggg hhhh",
		Suffix:         suffix,
	})
	require.NoError(t, err)

	require.True(t, res.Truncated)
	assert.Equal(t, 1, strings.Count(res.Markup, "~~"))
	assert.True(t, strings.HasSuffix(res.Markup, "~~"+suffix), res.Markup)
}

func TestMeasureMonotonicOverRows(t *testing.T) {
	content := "aaaa bbbb cccc dddd eeee ffff gggg hhhh"
	prev := -1
	for rows := 1; rows <= 5; rows++ {
		doc := parseHTML(t, `<body><div id="t" style="width: 70px; font-size: 13px; line-height: 10px"></div></body>`)
		res, err := newEngine().Measure(doc, MeasureRequest{
			Target:         byID(t, doc, "t"),
			Rows:           rows,
			EllipsisSymbol: "...",
			Content:        content,
		})
		require.NoError(t, err)

		kept := strings.TrimSuffix(res.Markup, "...")
		if rows == 1 {
			assert.Equal(t, "aaaa bb...", res.Markup)
		}
		assert.Equal(t, rows < 5, res.Truncated, "rows %d", rows)
		assert.True(t, strings.HasPrefix(content, kept), "rows %d: %q", rows, kept)
		assert.GreaterOrEqual(t, text.GraphemeCount(kept), prev, "rows %d", rows)
		prev = text.GraphemeCount(kept)
	}
}

func TestMeasureIsRepeatable(t *testing.T) {
	doc := parseHTML(t, helloDoc)
	target := byID(t, doc, "t")
	engine := newEngine()
	req := MeasureRequest{Target: target, Rows: 1, EllipsisSymbol: "...", Content: target.Serialize()}

	first, err := engine.Measure(doc, req)
	require.NoError(t, err)
	second, err := engine.Measure(doc, req)
	require.NoError(t, err)

	assert.Equal(t, first.Markup, second.Markup)
	assert.Equal(t, "Hello World", target.Serialize(), "measuring leaves the target alone")
}

func TestMeasureGraphemes(t *testing.T) {
	doc := parseHTML(t, `<body><div id="t" style="width: 100px; line-height: 20px; font-size: 26px"></div></body>`)
	res, err := newEngine().Measure(doc, MeasureRequest{
		Target:         byID(t, doc, "t"),
		Rows:           1,
		EllipsisSymbol: "...",
		Content:        strings.Repeat("e\u0301", 5) + " " + strings.Repeat("e\u0301", 2),
	})
	require.NoError(t, err)

	require.True(t, res.Truncated)
	kept := strings.TrimSuffix(res.Markup, "...")
	assert.Equal(t, strings.Repeat("e\u0301", 5), kept, "a combining mark is never split from its base")
}

func TestMeasureRequestErrors(t *testing.T) {
	doc := parseHTML(t, helloDoc)
	engine := newEngine()

	_, err := engine.Measure(doc, MeasureRequest{Rows: 1})
	assert.ErrorIs(t, err, ErrTargetNotFound)

	_, err = engine.Measure(doc, MeasureRequest{Target: byID(t, doc, "t")})
	assert.Error(t, err)
}
