package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"lineclamp/pkg/images"
	"lineclamp/pkg/render"
	"lineclamp/pkg/source"
)

func newRenderCmd(root *rootFlags) *cobra.Command {
	var (
		flags  requestFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "render <input>",
		Short: "Truncate an element and paint the page to a PNG",
		Example: `  ellipsis render page.html --target '#title' -o out.png
  ellipsis render page.html --target '#title' --debug -o - > debug.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			t, err := truncate(cmd.InOrStdin(), root.logger, args[0], req)
			if err != nil {
				return err
			}
			return paint(t, req, args[0], output, cmd.OutOrStdout())
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG file to write, - for standard output")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func paint(t *truncation, req Request, input, output string, stdout io.Writer) error {
	w, h := req.viewport()
	t.layout.Layout(t.doc)

	r := render.NewRenderer(int(w), int(h))
	r.SetMeasurer(t.measurer)
	var fetcher source.Fetcher
	if input != source.Stdin {
		fetcher = source.NewFetcher(input)
	}
	r.SetImages(images.NewCache(fetcher))
	r.Render(t.layout.Root())

	if output == "-" {
		return r.EncodePNG(stdout)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	if err := r.EncodePNG(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", output, err)
	}
	return f.Close()
}
