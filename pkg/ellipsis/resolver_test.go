package ellipsis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lineclamp/pkg/layout"
)

func newResolver() *Resolver {
	return &Resolver{Layout: layout.NewLayoutEngine(800, 600), Logger: quietLogger()}
}

func TestResolveBudget(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		rows   int
		want   int
	}{
		{"one row", `<div id="t" style="width: 100px; line-height: 20px">x</div>`, 1, 40},
		{"padding counts", `<div id="t" style="width: 100px; line-height: 20px; padding: 5px">x</div>`, 2, 70},
		{"unitless line height", `<div id="t" style="width: 100px; font-size: 10px; line-height: 1.5">x</div>`, 3, 60},
		{"fractional values round", `<div id="t" style="width: 100px; line-height: 12.3px">x</div>`, 1, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseHTML(t, tt.markup)
			_, budget, warnings := newResolver().ResolveBudget(doc, byID(t, doc, "t"), tt.rows, nil, false)
			assert.Equal(t, tt.want, budget)
			assert.Empty(t, warnings)
		})
	}
}

func TestResolveBudgetFreezesWidth(t *testing.T) {
	doc := parseHTML(t, `<body style="margin: 0"><div id="t" style="width: 50%; padding: 0 10px; line-height: 20px">x</div></body>`)

	style, _, warnings := newResolver().ResolveBudget(doc, byID(t, doc, "t"), 1, nil, false)
	assert.Equal(t, "400px", style.Value("width"))
	require.Len(t, warnings, 1)
	assert.Equal(t, StyleWarning{Property: "width", Value: "50%", Substitute: "400px"}, warnings[0])
}

func TestResolveBudgetLineHeightWarning(t *testing.T) {
	doc := parseHTML(t, `<div id="t" style="width: 100px; line-height: normal; padding-top: 3px">x</div>`)

	_, budget, warnings := newResolver().ResolveBudget(doc, byID(t, doc, "t"), 2, nil, false)
	assert.Equal(t, 3, budget)
	require.Len(t, warnings, 1)
	assert.Equal(t, "line-height", warnings[0].Property)
	assert.Equal(t, "normal", warnings[0].Value)
	assert.Contains(t, warnings[0].String(), "not a pixel length")
}

func TestResolveBudgetLayers(t *testing.T) {
	doc := parseHTML(t, `<div id="t" style="width: 100px; line-height: 20px; visibility: visible; top: 3px">x</div>`)
	target := byID(t, doc, "t")
	r := newResolver()

	style, _, _ := r.ResolveBudget(doc, target, 1, nil, false)
	assert.Equal(t, "fixed", style.Value("position"))
	assert.Equal(t, "hidden", style.Value("visibility"), "baseline overrides computed style")
	assert.Equal(t, "-10000px", style.Value("top"))
	assert.Equal(t, "block", style.Value("display"))
	assert.Equal(t, "100px", style.Value("width"))

	style, _, _ = r.ResolveBudget(doc, target, 1, nil, true)
	assert.Equal(t, "visible", style.Value("visibility"))
	assert.Equal(t, "200px", style.Value("top"))

	style, budget, _ := r.ResolveBudget(doc, target, 1, map[string]string{"top": "5px", "line-height": "30px"}, true)
	assert.Equal(t, "5px", style.Value("top"), "patch overrides the debug layer")
	assert.Equal(t, 60, budget)
}
