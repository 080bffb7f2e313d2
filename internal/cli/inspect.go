package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockseg/pkg/config"
	"github.com/matzehuels/blockseg/pkg/pipeline"
)

// inspectCommand creates the inspect command, an interactive view of a
// segmented grid.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		gf      gridFlags
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "inspect [image]",
		Short: "Browse a segmented grid interactively",
		Long: `Segment an image and browse the result in the terminal.

Move between blocks to see each block's label, the similarity under which it
was labeled, and its scores against all neighbors.`,
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
			return c.runInspect(cmd.Context(), opts, cfg, noCache)
		},
	}

	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute labels even if cached")
	gf.register(cmd.Flags(), &opts)
	registerSegmentFlags(cmd.Flags(), &opts)

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, opts pipeline.Options, cfg *config.Config, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Segmenting...")
	spinner.Start()
	restore := trackStages(spinner)
	seg, err := c.segmentForInspect(ctx, runner, opts)
	restore()
	if err != nil {
		spinner.StopWithError("Segmentation failed")
		return err
	}
	spinner.Stop()

	m := NewGridModel(seg.Grid, seg.Similarities, opts.Threshold)
	_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}

// segmentForInspect returns a segmentation with neighbor scores attached,
// computing them when the labels came from cache.
func (c *CLI) segmentForInspect(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options) (*pipeline.Segmentation, error) {
	src, err := runner.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	seg, err := runner.Segment(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	if seg.Similarities == nil {
		table, err := pipeline.Precompute(ctx, seg.Grid, opts)
		if err != nil {
			return nil, err
		}
		seg.Similarities = table
	}
	return seg, nil
}
