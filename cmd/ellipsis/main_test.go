package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body><div id="t" style="width: 100px; line-height: 20px; font-size: 26px">Hello World</div></body></html>`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), strings.NewReader(stdin), &stdout, &stderr, args...)
	return stdout.String(), stderr.String(), err
}

func TestMeasureCommand(t *testing.T) {
	input := writeFile(t, t.TempDir(), "page.html", page)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"measured", []string{"--target", "#t", "--rows", "1", "--no-css"}, "Hello...\n"},
		{"suffix", []string{"--target", "#t", "--rows", "1", "--suffix", "!"}, "Hello...!\n"},
		{"fits", []string{"--target", "#t", "--rows", "3", "--no-css"}, "Hello World\n"},
		{"patched line height", []string{"--target", "#t", "--rows", "1", "--no-css", "--patch", "line-height=30px"}, "Hello...\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := run(t, "", append([]string{"measure", input}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stdout)
		})
	}
}

func TestMeasureCSSMode(t *testing.T) {
	input := writeFile(t, t.TempDir(), "page.html", page)
	stdout, _, err := run(t, "", "measure", input, "--target", "#t", "--rows", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "-webkit-line-clamp: 2")
	assert.Contains(t, stdout, ">Hello World</div>")
}

func TestMeasureStdin(t *testing.T) {
	stdout, _, err := run(t, page, "measure", "-", "--target", "div", "--rows", "1", "--no-css")
	require.NoError(t, err)
	assert.Equal(t, "Hello...\n", stdout)
}

func TestMeasureRequestFile(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "page.html", page)
	request := writeFile(t, dir, "request.yaml", `
target: "#t"
rows: 1
css: false
symbol: "~"
viewport: {width: 400, height: 300}
`)

	stdout, _, err := run(t, "", "measure", input, "--request", request)
	require.NoError(t, err)
	assert.Equal(t, "Hello ~\n", stdout)

	stdout, _, err = run(t, "", "measure", input, "--request", request, "--symbol", "...")
	require.NoError(t, err)
	assert.Equal(t, "Hello...\n", stdout, "flags override the request file")
}

func TestMeasureErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "page.html", page)
	badRequest := writeFile(t, dir, "bad.yaml", "target: '#t'\nlines: 2\n")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no target", []string{"measure", input}, "no target"},
		{"missing target", []string{"measure", input, "--target", "#nope"}, "target element not found"},
		{"missing input", []string{"measure", filepath.Join(dir, "nope.html"), "--target", "#t"}, "nope.html"},
		{"unknown request field", []string{"measure", input, "--request", badRequest}, "lines"},
		{"unknown font source", []string{"measure", input, "--target", "#t", "--fonts", "comic"}, "unknown font source"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, stderr, "Error:")
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "page.html", page)
	output := filepath.Join(dir, "out.png")

	_, _, err := run(t, "", "render", input, "--target", "#t", "--width", "320", "--height", "200", "-o", output)
	require.NoError(t, err)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestRenderRequiresOutput(t *testing.T) {
	input := writeFile(t, t.TempDir(), "page.html", page)
	_, _, err := run(t, "", "render", input, "--target", "#t")
	assert.Error(t, err)
}

func TestScriptCommand(t *testing.T) {
	input := writeFile(t, t.TempDir(), "page.html", page+`<script>
		var r = ellipsis({target: "#t", rows: 1, useCss: false});
		console.log("truncated", r.isEllipsis);
	</script>`)

	stdout, stderr, err := run(t, "", "script", input)
	require.NoError(t, err)
	assert.Contains(t, stdout, ">Hello...</div>")
	assert.Contains(t, stderr, "truncated true")
}

// syncBuffer is a bytes.Buffer safe for the watch goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "page.html", page)

	ctx, cancel := context.WithCancel(context.Background())
	var stdout, stderr syncBuffer
	done := make(chan error, 1)
	go func() {
		done <- execute(ctx, strings.NewReader(""), &stdout, &stderr, "watch", input, "--target", "#t", "--rows", "1", "--no-css")
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "Hello...")
	}, 5*time.Second, 20*time.Millisecond)

	writeFile(t, dir, "page.html", strings.Replace(page, "Hello World", "Goodbye World", 1))
	require.Eventually(t, func() bool {
		return strings.Contains(stdout.String(), "Goodbye...")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestRootHelp(t *testing.T) {
	stdout, _, err := run(t, "")
	require.NoError(t, err)
	assert.Contains(t, stdout, "measure")
	assert.Contains(t, stdout, "watch")
}
