package css

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func computeByID(t *testing.T, markup, id string) *Style {
	t.Helper()
	doc := parseHTML(t, markup)
	node, err := QuerySelector(doc.Root, "#"+id)
	require.NoError(t, err)
	require.NotNil(t, node, "no element #%s", id)
	return NewCascade(doc).ComputeNode(node)
}

func TestCascadeSpecificityAndOrder(t *testing.T) {
	style := computeByID(t, `
		<style>
			p { color: red; width: 10px; }
			.x { color: blue; }
			p { color: green; }
			#t { width: 30px; }
		</style>
		<p id="t" class="x" style="padding: 2px 4px">hi</p>`, "t")

	assert.Equal(t, "blue", style.Value("color"), "class beats later element rule")
	assert.Equal(t, "30px", style.Value("width"))
	assert.Equal(t, "2px", style.Value("padding-top"))
	assert.Equal(t, "4px", style.Value("padding-left"))
	assert.Equal(t, "block", style.Value("display"))
}

func TestCascadeInheritance(t *testing.T) {
	style := computeByID(t, `
		<div style="font-size: 20px; line-height: 1.5; color: navy; width: 50%">
			<span id="t" style="font-size: 2em">x</span>
		</div>`, "t")

	assert.Equal(t, "40px", style.Value("font-size"))
	assert.Equal(t, "60px", style.Value("line-height"), "unitless factor re-applied to the child font size")
	assert.Equal(t, "navy", style.Value("color"))
	assert.Equal(t, "auto", style.Value("width"), "width is not inherited")
	assert.Equal(t, "inline", style.Value("display"))
}

func TestCascadeLineHeightUnits(t *testing.T) {
	tests := []struct {
		decl string
		want string
	}{
		{"line-height: 20px", "20px"},
		{"line-height: 1.25em", "20px"},
		{"line-height: 150%", "24px"},
		{"line-height: 2", "32px"},
		{"line-height: normal", "normal"},
	}
	for _, tt := range tests {
		t.Run(tt.decl, func(t *testing.T) {
			style := computeByID(t, `<div id="t" style="font-size: 16px; `+tt.decl+`"></div>`, "t")
			assert.Equal(t, tt.want, style.Value("line-height"))
		})
	}
}

func TestCascadeKeepsRelativeWidth(t *testing.T) {
	style := computeByID(t, `<div id="t" style="width: 50%; padding-top: 1em"></div>`, "t")
	assert.Equal(t, "50%", style.Value("width"))
	assert.Equal(t, "16px", style.Value("padding-top"))
}

func TestCascadeBorderWithoutStyleIsZero(t *testing.T) {
	style := computeByID(t, `<div id="t" style="border-width: 3px"></div>`, "t")
	assert.Equal(t, "0px", style.Value("border-top-width"))

	style = computeByID(t, `<div id="t" style="border: 3px solid black"></div>`, "t")
	assert.Equal(t, "3px", style.Value("border-top-width"))
	assert.Equal(t, 3.0, style.GetBorderWidth().Left)
}

func TestCascadeBlockifiesFixed(t *testing.T) {
	style := computeByID(t, `<span id="t" style="position: fixed">x</span>`, "t")
	assert.Equal(t, "block", style.Value("display"))
}

func TestCascadeUserAgentDefaults(t *testing.T) {
	style := computeByID(t, `<body><p id="t">x</p></body>`, "t")
	assert.Equal(t, "16px", style.Value("margin-top"))

	body := computeByID(t, `<body id="t"></body>`, "t")
	assert.Equal(t, "8px", body.Value("margin-left"))
}
