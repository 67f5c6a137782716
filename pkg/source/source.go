// Package source loads input documents for measurement from a file, a
// URL or standard input, together with their linked stylesheets.
package source

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"lineclamp/pkg/html"
)

// Stdin is the input name that reads the document from standard input.
const Stdin = "-"

// Loader reads and parses input documents.
type Loader struct {
	Stdin  io.Reader
	Logger *slog.Logger
	// Fetcher overrides how the document and its stylesheets are fetched.
	Fetcher Fetcher
}

// Load reads the document named by input and appends the text of every
// <link rel="stylesheet"> to its stylesheets, ahead of inline <style>
// blocks. Stylesheets that cannot be fetched are skipped with a warning.
func (l *Loader) Load(input string) (*html.Document, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	markup, err := l.read(input)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(markup)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", input, err)
	}

	fetcher := l.Fetcher
	if fetcher == nil {
		base := input
		if input == Stdin {
			base = ""
		}
		fetcher = NewFetcher(base)
	}
	var linked []string
	for _, href := range stylesheetLinks(doc.Root) {
		sheet, err := fetchCSS(fetcher, href)
		if err != nil {
			logger.Warn("skipping stylesheet", "href", href, "error", err)
			continue
		}
		linked = append(linked, sheet)
	}
	doc.Stylesheets = append(linked, doc.Stylesheets...)
	return doc, nil
}

func (l *Loader) read(input string) (string, error) {
	if input == Stdin {
		if l.Stdin == nil {
			return "", fmt.Errorf("no standard input to read from")
		}
		b, err := io.ReadAll(l.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading standard input: %w", err)
		}
		return string(b), nil
	}
	var fetcher Fetcher = NewFetcher("")
	if l.Fetcher != nil {
		fetcher = l.Fetcher
	}
	body, _, err := fetcher.Fetch(input)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func fetchCSS(f Fetcher, href string) (string, error) {
	if df, ok := f.(*DefaultFetcher); ok {
		return df.FetchCSS(href)
	}
	body, _, err := f.Fetch(href)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func stylesheetLinks(root *html.Node) []string {
	var hrefs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.TagName == "link" {
			rel, _ := n.GetAttribute("rel")
			href, ok := n.GetAttribute("href")
			if ok && href != "" && strings.EqualFold(strings.TrimSpace(rel), "stylesheet") {
				hrefs = append(hrefs, href)
			}
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)
	return hrefs
}
