package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockseg/pkg/grid"
	"github.com/matzehuels/blockseg/pkg/imageio"
	"github.com/matzehuels/blockseg/pkg/pipeline"
)

// gridCommand creates the grid command, which draws block boundaries over an
// image without segmenting it.
func (c *CLI) gridCommand() *cobra.Command {
	var (
		gf     gridFlags
		output string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "grid [image]",
		Short: "Draw the block grid over an image",
		Long: `Draw the block grid over an image.

Use this to pick a block size before segmenting: the image must divide evenly
into blocks, and each block is labeled with its row-col position.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.Input = args[0]
			gf.resolve(cmd, &opts, cfg)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return runGrid(cmd.Context(), opts, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output PNG path (default <name>_seg.grid.png)")
	gf.register(cmd.Flags(), &opts)

	return cmd
}

func runGrid(ctx context.Context, opts pipeline.Options, output string) error {
	prog := newProgress(loggerFromContext(ctx))

	src, err := pipeline.Load(ctx, opts)
	if err != nil {
		return err
	}
	g, err := pipeline.BuildGrid(src, opts)
	if err != nil {
		return err
	}

	data, err := imageio.EncodeBytes(grid.Annotate(src.Image, g), imageio.PNG, imageio.EncodeOptions{})
	if err != nil {
		return err
	}

	path := output
	if path == "" {
		path = artifactPath(basePath("", opts.Input), pipeline.FormatAnnotated)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	prog.done(fmt.Sprintf("Annotated %d blocks", g.Rows*g.Cols))

	printSuccess("Grid drawn")
	printFile(path)
	printDetail("%dx%d blocks of %dx%d px", g.Rows, g.Cols, g.BlockHeight, g.BlockWidth)
	return nil
}
