// Package cli implements the barscene command-line interface.
//
// # Commands
//
//   - layout: load a dataset, sync the scene and write JSON/SVG/PNG/PDF
//   - select: select a bar and print what it highlights
//   - slice: select a bar and print the row or column cross-section
//   - inspect: browse a scene interactively in the terminal
//   - serve: run the HTTP API
//   - cache: manage the local pipeline cache
//   - completion: generate shell completion scripts
//
// Scene commands share one set of flags bound to [pipeline.Options]. A TOML
// file passed with --config fills the same options; flags given on the
// command line override it:
//
//	# barscene.toml
//	formats = ["svg", "json"]
//	labels = true
//
//	[scene]
//	mode = "item|row"
//
//	[scene.params]
//	thickness_ratio = 1.5
//
//	[styles.sales]
//	base_color = "#336699"
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context and set on the pipeline runner.
package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute builds the root command and runs it with args. The --verbose
// flag switches the shared logger to debug level before any command runs.
func Execute(ctx context.Context, args []string) error {
	var verbose bool

	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	}

	return root.ExecuteContext(ctx)
}
