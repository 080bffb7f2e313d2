package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockseg/pkg/config"
	"github.com/matzehuels/blockseg/pkg/compose"
	"github.com/matzehuels/blockseg/pkg/imageio"
	"github.com/matzehuels/blockseg/pkg/pipeline"
	"github.com/matzehuels/blockseg/pkg/store"
)

// segmentCommand creates the segment command, which runs the full pipeline.
func (c *CLI) segmentCommand() *cobra.Command {
	var (
		gf         gridFlags
		formatsStr string
		output     string
		noCache    bool
		noRecord   bool
		overlay    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "segment [image]",
		Short: "Segment an image into regions of similar blocks",
		Long: `Segment an image into regions of similar blocks.

The image is cut into a grid of equally sized blocks. Starting from the
top-left block, each block's 8 neighbors are compared with SSIM (or CIEDE2000
with --oracle deltae) and neighbors at or above the threshold take over the
block's label color. Blocks no region reached start a new region.

Outputs are written next to the input as <name>_seg.<ext> unless -o is given:
  png, jpeg, gif, bmp, tiff, webp   the labeled image
  json                              the per-block label map
  dot, svg                          the region adjacency graph
  annotated                         the source with the block grid drawn on it

Results are cached locally and every run is recorded (see 'blockseg runs').`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			opts.Input = args[0]
			if cmd.Flags().Changed("format") {
				opts.Formats = parseFormats(formatsStr)
			}
			if overlay && !cmd.Flags().Changed("overlay-opacity") {
				opts.Overlay = compose.DefaultOpacity
			}
			gf.resolve(cmd, &opts, cfg)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return c.runSegment(cmd.Context(), opts, cfg, output, noCache, noRecord)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute labels even if cached")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "do not record the run")

	// Grid and segmentation flags
	gf.register(cmd.Flags(), &opts)
	registerSegmentFlags(cmd.Flags(), &opts)

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): png (default), jpeg, gif, bmp, tiff, webp, json, dot, svg, annotated (comma-separated)")
	cmd.Flags().BoolVar(&opts.SkipMaterialize, "skip-materialize", false, "keep block pixels instead of painting label colors")
	cmd.Flags().BoolVar(&overlay, "overlay", false, "blend the output over the source image")
	cmd.Flags().Float64Var(&opts.Overlay, "overlay-opacity", 0, fmt.Sprintf("opacity of the output when blending (implies --overlay, default %.1f)", compose.DefaultOpacity))
	cmd.Flags().IntVar(&opts.Quality, "quality", imageio.DefaultJPEGQuality, "JPEG quality (1-100)")

	return cmd
}

// runSegment executes the pipeline, writes the artifacts and records the run.
func (c *CLI) runSegment(ctx context.Context, opts pipeline.Options, cfg *config.Config, output string, noCache, noRecord bool) error {
	runner, err := c.newRunner(ctx, noCache, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Segmenting %s...", filepath.Base(opts.Input)))
	spinner.Start()
	restore := trackStages(spinner)

	result, err := runner.Execute(ctx, opts)
	restore()
	if err != nil {
		spinner.StopWithError("Segmentation failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, opts.Input, output)
	if err != nil {
		return err
	}

	var run *store.Run
	if !noRecord {
		run = c.recordRun(ctx, cfg, opts, result)
	}

	printSuccess("Segmentation complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Rows, result.Stats.Cols, result.Segment.Regions, result.CacheInfo.SegmentHit)
	if run != nil {
		printNewline()
		printNextStep("Inspect run", "blockseg runs show "+run.ID)
	}
	return nil
}

// recordRun saves a run record. Store failures are reported, not returned.
func (c *CLI) recordRun(ctx context.Context, cfg *config.Config, opts pipeline.Options, result *pipeline.Result) *store.Run {
	st, err := c.newStore(ctx, cfg)
	if err != nil {
		printWarning("Run not recorded: %v", err)
		return nil
	}
	defer st.Close()

	run := store.NewRun(opts, result)
	if err := st.Save(ctx, run); err != nil {
		printWarning("Run not recorded: %v", err)
		return nil
	}
	c.Logger.Debug("recorded run", "id", run.ID)
	return run
}
