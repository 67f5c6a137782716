package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"lineclamp/pkg/ellipsis"
	"lineclamp/pkg/html"
	"lineclamp/pkg/layout"
	"lineclamp/pkg/source"
	"lineclamp/pkg/text"
)

func newMeasureCmd(root *rootFlags) *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "measure <input>",
		Short: "Truncate an element and print the resulting markup",
		Long: "Loads <input> (a file, a URL or - for standard input), truncates the target\n" +
			"element and prints its markup. When CSS truncation is used the target's\n" +
			"outer markup, carrying the truncation style, is printed instead.",
		Example: `  ellipsis measure page.html --target '#title' --rows 2
  cat page.html | ellipsis measure - --target p --no-css --suffix '<a>more</a>'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			return measure(cmd.InOrStdin(), cmd.OutOrStdout(), root.logger, args[0], req)
		},
	}
	flags.register(cmd)
	return cmd
}

func measure(stdin io.Reader, out io.Writer, logger *slog.Logger, input string, req Request) error {
	t, err := truncate(stdin, logger, input, req)
	if err != nil {
		return err
	}
	if t.outcome.Mode == ellipsis.ModeCSS {
		_, err = fmt.Fprintln(out, t.outcome.Target.SerializeOuter())
		return err
	}
	_, err = fmt.Fprintln(out, t.outcome.Markup)
	return err
}

// truncation is a loaded document after Ellipsis ran on it.
type truncation struct {
	doc      *html.Document
	layout   *layout.LayoutEngine
	measurer *text.Measurer
	outcome  *ellipsis.Outcome
}

func truncate(stdin io.Reader, logger *slog.Logger, input string, req Request) (*truncation, error) {
	loader := &source.Loader{Stdin: stdin, Logger: logger}
	doc, err := loader.Load(input)
	if err != nil {
		return nil, err
	}

	fonts, err := req.Fonts.config()
	if err != nil {
		return nil, err
	}
	measurer, err := text.NewMeasurer(fonts)
	if err != nil {
		return nil, err
	}
	le := layout.NewLayoutEngine(req.viewport())
	le.SetMeasurer(measurer)

	opts := req.options()
	opts.Layout = le
	opts.Logger = logger
	out, err := ellipsis.Ellipsis(doc, opts)
	if err != nil {
		return nil, err
	}
	logger.Debug("ellipsis applied",
		"target", req.Target, "mode", out.Mode, "truncated", out.Truncated,
		"probes", out.Stats.Probes, "warnings", len(out.Warnings))
	return &truncation{doc: doc, layout: le, measurer: measurer, outcome: out}, nil
}
