package source

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const userAgent = "lineclamp/1.0 (compatible; Go)"

// httpClient is a shared HTTP client with reasonable timeouts.
var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// Fetcher retrieves resources by URI.
type Fetcher interface {
	Fetch(uri string) (body []byte, contentType string, err error)
}

// DefaultFetcher fetches resources over HTTP/HTTPS or from the local file
// system, resolving relative URIs against a base.
type DefaultFetcher struct {
	base string
}

// NewFetcher creates a DefaultFetcher. base is a URL or a file path; the
// resources of a document are resolved against it.
func NewFetcher(base string) *DefaultFetcher {
	return &DefaultFetcher{base: base}
}

// Fetch retrieves the resource at uri.
func (f *DefaultFetcher) Fetch(uri string) ([]byte, string, error) {
	resolved := f.resolve(uri)
	if IsNetworkURL(resolved) {
		return fetchHTTP(resolved)
	}
	body, err := os.ReadFile(strings.TrimPrefix(resolved, "file://"))
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", resolved, err)
	}
	return body, contentTypeFor(resolved), nil
}

// FetchCSS fetches a stylesheet URI and returns its text content.
// Returns an error if the content type does not look like CSS or text.
func (f *DefaultFetcher) FetchCSS(uri string) (string, error) {
	body, contentType, err := f.Fetch(uri)
	if err != nil {
		return "", err
	}
	ct := strings.ToLower(contentType)
	if ct != "" && !strings.HasPrefix(ct, "text/") && !strings.Contains(ct, "css") {
		return "", fmt.Errorf("unexpected content type for CSS: %s", contentType)
	}
	return string(body), nil
}

func (f *DefaultFetcher) resolve(uri string) string {
	switch {
	case IsNetworkURL(uri), f.base == "":
		return uri
	case IsNetworkURL(f.base):
		return ResolveURL(f.base, uri)
	case filepath.IsAbs(uri):
		return uri
	}
	return filepath.Join(filepath.Dir(f.base), uri)
}

func fetchHTTP(rawURL string) ([]byte, string, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("HTTP %d fetching %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response body: %w", err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".css":
		return "text/css"
	case ".html", ".htm":
		return "text/html"
	}
	return ""
}

// ResolveURL resolves a possibly-relative URI against a base URL.
// If ref is already absolute, it is returned as-is.
func ResolveURL(base, ref string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

// IsNetworkURL returns true if the string looks like an HTTP or HTTPS URL.
func IsNetworkURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
