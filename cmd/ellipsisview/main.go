// Command ellipsisview shows a page before and after truncating one of its
// elements, with a slider for the number of rows.
//
//	ellipsisview page.html '#title'
package main

import (
	"fmt"
	"image"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"lineclamp/pkg/html"
	"lineclamp/pkg/images"
	"lineclamp/pkg/source"
)

const (
	paneWidth  = 480
	paneHeight = 600
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: ellipsisview <input> <selector>")
		os.Exit(2)
	}
	input, selector := os.Args[1], os.Args[2]

	a := app.New()
	w := a.NewWindow("ellipsis: " + input)
	w.Resize(fyne.NewSize(2*paneWidth+40, paneHeight+80))

	blank := image.NewRGBA(image.Rect(0, 0, paneWidth, paneHeight))
	left := canvas.NewImageFromImage(blank)
	left.FillMode = canvas.ImageFillOriginal
	right := canvas.NewImageFromImage(blank)
	right.FillMode = canvas.ImageFillOriginal

	status := widget.NewLabel("Loading " + input + "...")

	rows := widget.NewSlider(1, 10)
	rows.Step = 1
	rows.SetValue(2)
	useCSS := widget.NewCheck("CSS when supported", nil)

	loader := &source.Loader{}
	pv := &previewer{
		load:   func() (*html.Document, error) { return loader.Load(input) },
		images: images.NewCache(source.NewFetcher(input)),
		width:  paneWidth,
		height: paneHeight,
	}

	refresh := func() {
		status.SetText("Rendering...")
		n, css := int(rows.Value), useCSS.Checked
		go func() {
			p, err := pv.render(selector, n, css)
			fyne.Do(func() {
				if err != nil {
					status.SetText("Error: " + err.Error())
					return
				}
				left.Image = p.original
				left.Refresh()
				right.Image = p.truncated
				right.Refresh()
				status.SetText(fmt.Sprintf("%s  rows=%d  mode=%s  truncated=%v  probes=%d",
					selector, n, p.outcome.Mode, p.outcome.Truncated, p.outcome.Stats.Probes))
			})
		}()
	}
	rows.OnChangeEnded = func(float64) { refresh() }
	useCSS.OnChanged = func(bool) { refresh() }

	controls := container.NewBorder(nil, nil, widget.NewLabel("Rows"), useCSS, rows)
	panes := container.NewGridWithColumns(2, left, right)
	w.SetContent(container.NewBorder(controls, status, nil, nil, panes))

	refresh()
	w.ShowAndRun()
}
