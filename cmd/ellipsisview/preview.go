package main

import (
	"image"
	"io"
	"log/slog"

	"lineclamp/pkg/ellipsis"
	"lineclamp/pkg/html"
	"lineclamp/pkg/images"
	"lineclamp/pkg/layout"
	"lineclamp/pkg/render"
)

// preview holds the two renderings shown side by side.
type preview struct {
	original  image.Image
	truncated image.Image
	outcome   *ellipsis.Outcome
}

// previewer paints a page before and after truncation. load returns a
// fresh copy of the page on every call.
type previewer struct {
	load          func() (*html.Document, error)
	images        *images.Cache
	width, height int
}

func (p *previewer) render(selector string, rows int, useCSS bool) (*preview, error) {
	original, err := p.paint(nil)
	if err != nil {
		return nil, err
	}

	var outcome *ellipsis.Outcome
	truncated, err := p.paint(func(doc *html.Document, le *layout.LayoutEngine) error {
		var err error
		outcome, err = ellipsis.Ellipsis(doc, ellipsis.Options{
			Selector: selector,
			Rows:     rows,
			UseCSS:   &useCSS,
			Layout:   le,
			Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &preview{original: original, truncated: truncated, outcome: outcome}, nil
}

func (p *previewer) paint(mutate func(*html.Document, *layout.LayoutEngine) error) (image.Image, error) {
	doc, err := p.load()
	if err != nil {
		return nil, err
	}
	le := layout.NewLayoutEngine(float64(p.width), float64(p.height))
	if mutate != nil {
		if err := mutate(doc, le); err != nil {
			return nil, err
		}
	}
	le.Layout(doc)

	r := render.NewRenderer(p.width, p.height)
	r.SetImages(p.images)
	r.Render(le.Root())
	return r.Image(), nil
}
