package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lineclamp/pkg/ellipsis"
	"lineclamp/pkg/js"
	"lineclamp/pkg/layout"
	"lineclamp/pkg/source"
)

func newScriptCmd(root *rootFlags) *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "script <input>",
		Short: "Run the document's scripts and print the resulting body",
		Long: "Runs every <script> block of <input> in order. Scripts can call\n" +
			"ellipsis({target, rows, suffix, ...}) to truncate elements.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := &source.Loader{Stdin: cmd.InOrStdin(), Logger: root.logger}
			doc, err := loader.Load(args[0])
			if err != nil {
				return err
			}
			le := layout.NewLayoutEngine(float64(width), float64(height))
			if err := js.New(le, root.logger).Execute(doc); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), doc.Body().Serialize())
			return err
		},
	}
	cmd.Flags().IntVar(&width, "width", ellipsis.DefaultViewportWidth, "Viewport width")
	cmd.Flags().IntVar(&height, "height", ellipsis.DefaultViewportHeight, "Viewport height")
	return cmd
}
