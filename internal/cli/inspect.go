package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/barscene/pkg/bars"
	"github.com/matzehuels/barscene/pkg/pipeline"
	"github.com/matzehuels/barscene/pkg/scene"
)

// inspectCommand creates the interactive inspector command.
func (c *CLI) inspectCommand() *cobra.Command {
	flags := newSceneFlags()
	var (
		isScene bool
		save    string
	)

	cmd := &cobra.Command{
		Use:   "inspect [dataset]",
		Short: "Browse a scene and its selection interactively",
		Long: `Browse a scene and its selection interactively.

The inspector shows one series at a time as a grid. Moving the cursor and
pressing enter picks a bar, exactly like a click in a 3D view; r and c pick
the row or column label under the cursor. With --save the final scene,
including its selection, is written as a scene document that
'inspect --scene' opens again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd, args[0])
			if err != nil {
				return err
			}
			d, err := c.loadDocument(cmd.Context(), opts, flags.noCache, isScene)
			if err != nil {
				return err
			}
			return c.runInspect(cmd.Context(), d, save)
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&isScene, "scene", false, "input is a scene document instead of a dataset")
	cmd.Flags().StringVar(&save, "save", "", "write the final scene document to this file")
	return cmd
}

// loadDocument reads a scene document, or loads a dataset and combines it
// with the scene options.
func (c *CLI) loadDocument(ctx context.Context, opts pipeline.Options, noCache, isScene bool) (scene.Document, error) {
	if isScene {
		return scene.ReadFile(opts.Input)
	}
	runner, err := c.newRunner(noCache)
	if err != nil {
		return scene.Document{}, err
	}
	defer runner.Close()

	if err := opts.ValidateForSync(); err != nil {
		return scene.Document{}, err
	}
	p := newProgress(c.Logger)
	ds, err := runner.Load(ctx, opts)
	if err != nil {
		return scene.Document{}, err
	}
	p.done(fmt.Sprintf("Loaded %d series", len(ds.Series)))
	return pipeline.NewDocument(ds, opts), nil
}

// runInspect runs the inspector until the user quits.
func (c *CLI) runInspect(ctx context.Context, d scene.Document, save string) error {
	g, err := d.Build(bars.WithLogger(c.Logger))
	if err != nil {
		return err
	}

	final, err := tea.NewProgram(NewInspectModel(ctx, g), tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	fm, ok := final.(InspectModel)
	if !ok {
		return nil
	}

	if sel := fm.Frame.Selection; sel.Valid() {
		printSuccess("Selected %s %s", sel.Series, sel.Coord)
	} else {
		printDetail("No selection made")
	}

	if save == "" {
		return nil
	}
	out := scene.Capture(d, g)
	out.Frame = &fm.Frame
	if err := scene.WriteFile(out, save); err != nil {
		return fmt.Errorf("save scene: %w", err)
	}
	printFile(save)
	return nil
}
