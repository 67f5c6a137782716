package main

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

func newWatchCmd(root *rootFlags) *cobra.Command {
	var flags requestFlags

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-run measure every time the input file is written",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			input := args[0]
			out := cmd.OutOrStdout()
			run := func() {
				if err := measure(cmd.InOrStdin(), out, root.logger, input, req); err != nil {
					root.logger.Error("measure failed", "input", input, "error", err)
				}
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("creating watcher: %w", err)
			}
			defer watcher.Close()
			// Editors often replace the file, so watch its directory.
			if err := watcher.Add(filepath.Dir(input)); err != nil {
				return fmt.Errorf("watching %s: %w", input, err)
			}

			run()
			ctx := cmd.Context()
			base := filepath.Base(input)
			for {
				select {
				case <-ctx.Done():
					return nil

				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Base(event.Name) != base {
						continue
					}
					if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
						continue
					}
					root.logger.Debug("input changed", "event", event.Op.String())
					run()

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					root.logger.Warn("watch error", "error", err)
				}
			}
		},
	}
	flags.register(cmd)
	return cmd
}
