package source

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLoader() *Loader {
	return &Loader{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestLoadFileWithLinkedStylesheet(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "site.css"), []byte("p { color: red; }"), 0o644))
	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page, []byte(`<link rel="stylesheet" href="css/site.css">
		<link rel="stylesheet" href="missing.css">
		<style>p { color: blue; }</style><p>x</p>`), 0o644))

	doc, err := quietLoader().Load(page)
	require.NoError(t, err)
	assert.Equal(t, []string{"p { color: red; }", "p { color: blue; }"}, doc.Stylesheets)
}

func TestLoadStdin(t *testing.T) {
	l := quietLoader()
	l.Stdin = strings.NewReader(`<p id="a">from stdin</p>`)

	doc, err := l.Load(Stdin)
	require.NoError(t, err)
	assert.Equal(t, "from stdin", doc.Body().TextContent())

	_, err = quietLoader().Load(Stdin)
	assert.Error(t, err)
}

func TestLoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/doc/index.html":
			fmt.Fprint(w, `<link rel="stylesheet" href="style.css"><p>remote</p>`)
		case "/doc/style.css":
			w.Header().Set("Content-Type", "text/css")
			fmt.Fprint(w, "p { line-height: 20px; }")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	doc, err := quietLoader().Load(srv.URL + "/doc/index.html")
	require.NoError(t, err)
	assert.Equal(t, []string{"p { line-height: 20px; }"}, doc.Stylesheets)

	_, err = quietLoader().Load(srv.URL + "/nope.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestFetchCSSRejectsImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer srv.Close()

	_, err := NewFetcher(srv.URL + "/").FetchCSS("a.css")
	assert.ErrorContains(t, err, "unexpected content type")
}

func TestResolveURL(t *testing.T) {
	assert.Equal(t, "http://example.com/a/c.css", ResolveURL("http://example.com/a/b.html", "c.css"))
	assert.Equal(t, "http://other.org/x", ResolveURL("http://example.com/", "http://other.org/x"))
	assert.True(t, IsNetworkURL("https://example.com"))
	assert.False(t, IsNetworkURL("/tmp/page.html"))
}
