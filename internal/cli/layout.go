package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barscene/pkg/pipeline"
)

// layoutCommand creates the layout command, which runs the full pipeline
// and writes one file per output format.
func (c *CLI) layoutCommand() *cobra.Command {
	flags := newSceneFlags()

	cmd := &cobra.Command{
		Use:   "layout [dataset]",
		Short: "Lay out a dataset as a bar scene and render it",
		Long: `Lay out a dataset as a bar scene and render it.

The dataset is a CSV, TOML, JSON or XLSX file. CSV holds one series; the
other formats may hold several. The scene is synced once and written in
every format given with -f, next to the input unless -o is set:

  barscene layout sales.csv --header --row-labels -f svg,json --labels

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd, args[0])
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), opts, flags.output, flags.noCache)
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

// runLayout executes the pipeline and writes the artifacts.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	result, err := c.execute(ctx, opts, noCache, "Laying out scene...")
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(basePath(output, opts.Input), opts.Formats, result.Artifacts)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	printSuccess("Layout complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.SeriesCount, result.Stats.BarCount, result.CacheInfo.SyncHit)
	printNewline()
	printNextStep("Inspect", appName+" inspect "+opts.Input)
	return nil
}

// execute runs the pipeline behind a spinner.
func (c *CLI) execute(ctx context.Context, opts pipeline.Options, noCache bool, message string) (*pipeline.Result, error) {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return nil, fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = loggerFromContext(ctx)

	spinner := newSpinner(ctx, message)
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Pipeline failed")
		return nil, err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return result, nil
}
