package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/barscene/pkg/bars"
	"github.com/matzehuels/barscene/pkg/core/layout"
	"github.com/matzehuels/barscene/pkg/core/selection"
	"github.com/matzehuels/barscene/pkg/pipeline"
	"github.com/matzehuels/barscene/pkg/scene"
)

// selectionFlags names the bar to select.
type selectionFlags struct {
	series string
	row    int
	col    int
	write  bool
}

func (f *selectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.series, "series", "s", "", "series of the selected bar (default: first series)")
	cmd.Flags().IntVar(&f.row, "row", 0, "row of the selected bar")
	cmd.Flags().IntVar(&f.col, "col", 0, "column of the selected bar")
	cmd.Flags().BoolVarP(&f.write, "write", "w", false, "also write the rendered outputs")
}

func (f *selectionFlags) selection(slice bool) *scene.Selection {
	return &scene.Selection{Series: f.series, Row: f.row, Col: f.col, Slice: slice}
}

// selectCommand creates the select command.
func (c *CLI) selectCommand() *cobra.Command {
	flags := newSceneFlags()
	var sel selectionFlags

	cmd := &cobra.Command{
		Use:   "select [dataset]",
		Short: "Select a bar and list the bars it highlights",
		Long: `Select a bar and list the bars it highlights.

The selection mode decides what a selection highlights: the bar itself
(item), its row or column, or both. Add "multi" to extend row and
column highlights to every series:

  barscene select sales.csv --row 1 --col 2 --mode item|row`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd, args[0])
			if err != nil {
				return err
			}
			opts.Selection = sel.selection(false)
			return c.runSelect(cmd.Context(), opts, flags, sel.write)
		},
	}

	flags.register(cmd.Flags())
	sel.register(cmd)
	return cmd
}

// sliceCommand creates the slice command.
func (c *CLI) sliceCommand() *cobra.Command {
	flags := newSceneFlags()
	var (
		sel         selectionFlags
		orientation string
		multi       bool
	)

	cmd := &cobra.Command{
		Use:   "slice [dataset]",
		Short: "Select a bar and list its row or column cross-section",
		Long: `Select a bar and list its row or column cross-section.

The slice holds the bars of the selected row or column laid out flat, in
the selected series only or, with --multi-series, in every visible series:

  barscene slice sales.csv --row 1 --col 2 --orientation column`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := sliceMode(orientation, multi)
			if err != nil {
				return err
			}
			opts, err := flags.resolve(cmd, args[0])
			if err != nil {
				return err
			}
			opts.Scene.Mode = mode
			opts.Selection = sel.selection(true)
			opts.SlicePanel = true
			return c.runSelect(cmd.Context(), opts, flags, sel.write)
		},
	}

	flags.register(cmd.Flags())
	sel.register(cmd)
	cmd.Flags().StringVar(&orientation, "orientation", "row", "slice orientation: row or column")
	cmd.Flags().BoolVar(&multi, "multi-series", false, "include every visible series in the slice")
	return cmd
}

// sliceMode returns the selection mode for a slice in the given orientation.
func sliceMode(orientation string, multi bool) (selection.Mode, error) {
	var m selection.Mode
	switch orientation {
	case "row":
		m = selection.ItemRowSlice
	case "column":
		m = selection.ItemColumnSlice
	default:
		return selection.None, fmt.Errorf("invalid orientation %q (must be row or column)", orientation)
	}
	if multi {
		m |= selection.MultiSeries
	}
	return m, nil
}

// runSelect syncs the scene with the selection and prints the result.
func (c *CLI) runSelect(ctx context.Context, opts pipeline.Options, flags *sceneFlags, write bool) error {
	if opts.Selection.Series == "" {
		runner, err := c.newRunner(flags.noCache)
		if err != nil {
			return err
		}
		ds, err := runner.Load(ctx, opts)
		runner.Close()
		if err != nil {
			return err
		}
		if len(ds.Series) > 0 {
			opts.Selection.Series = ds.Series[0].Name
		}
	}

	result, err := c.execute(ctx, opts, flags.noCache, "Syncing scene...")
	if err != nil {
		return err
	}
	f := result.Frame

	if !f.Selection.Valid() {
		printWarning("Bar %s%s was not selected", opts.Selection.Series, opts.Selection.Position())
		printDetail("Mode %s; the bar may be outside the data, hidden or below the zero threshold", f.Selection.Mode)
		return nil
	}

	printSuccess("Selected %s %s", opts.Selection.Series, f.Selection.Coord)
	printKeyValue("Mode", f.Selection.Mode.String())
	if b, ok := f.Bar(f.Selection.Series, f.Selection.Coord); ok {
		printKeyValue("Value", fmt.Sprintf("%g", b.Value))
		printKeyValue("Height", fmt.Sprintf("%.3f", b.Height))
	}
	printNewline()

	if f.Slice != nil {
		fmt.Fprintf(c.Out, "%s %s %d\n", StyleTitle.Render("Slice"), f.Slice.Orientation, f.Slice.Index)
		fmt.Fprintln(c.Out, barTable(f.Slice.Bars))
	} else {
		fmt.Fprintln(c.Out, barTable(highlighted(f)))
	}

	if write {
		paths, err := writeArtifacts(basePath(flags.output, opts.Input), opts.Formats, result.Artifacts)
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		for _, p := range paths {
			printFile(p)
		}
	}
	return nil
}

// highlighted returns the highlighted bars of every visible series.
func highlighted(f bars.Frame) []layout.BarInstance {
	var out []layout.BarInstance
	for _, s := range f.Series {
		for _, b := range s.Bars {
			if b.Highlight != selection.KindNone {
				out = append(out, b)
			}
		}
	}
	return out
}
