package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/blockseg/pkg/config"
	"github.com/matzehuels/blockseg/pkg/imageio"
	"github.com/matzehuels/blockseg/pkg/pipeline"
	"github.com/matzehuels/blockseg/pkg/segment"
	"github.com/matzehuels/blockseg/pkg/similarity"
)

// gridFlags binds the flags that select the input and shape the block grid.
type gridFlags struct {
	blockSize int
}

func (f *gridFlags) register(fs *pflag.FlagSet, opts *pipeline.Options) {
	fs.IntVarP(&f.blockSize, "block-size", "b", 0, "block height and width in pixels (shorthand for both)")
	fs.IntVar(&opts.BlockHeight, "block-height", pipeline.DefaultBlockSize, "block height in pixels")
	fs.IntVar(&opts.BlockWidth, "block-width", pipeline.DefaultBlockSize, "block width in pixels")
	fs.BoolVar(&opts.Grayscale, "grayscale", false, "compare blocks in grayscale")
	fs.IntVar(&opts.Page, "page", 0, "page to rasterise for PDF input (zero-based)")
	fs.Float64Var(&opts.DPI, "dpi", imageio.DefaultDPI, "rasterisation resolution for PDF input")
}

// registerSegmentFlags binds the similarity and propagation flags.
func registerSegmentFlags(fs *pflag.FlagSet, opts *pipeline.Options) {
	fs.Float64VarP(&opts.Threshold, "threshold", "t", segment.DefaultThreshold, "minimum similarity for a neighbor to join a region")
	fs.BoolVar(&opts.ColorShading, "color-shading", false, "shade neighbor colors by similarity instead of copying them")
	fs.Float64Var(&opts.ShadeWeight, "shade-weight", segment.DefaultShadeWeight, "brightness change per shading step")
	fs.Float64Var(&opts.ShadingFloor, "shading-floor", segment.DefaultShadingFloor, "acceptance bar for unlabeled neighbors when shading")
	fs.Uint64Var(&opts.Seed, "seed", pipeline.DefaultSeed, "random seed for label colors")
	fs.StringVar(&opts.Oracle, "oracle", pipeline.DefaultOracle, "similarity metric: "+strings.Join(similarity.OracleNames(), ", "))
	fs.IntVar(&opts.Workers, "workers", 0, "parallel similarity workers (0 = all CPUs)")
}

// resolve applies --block-size and the config file to opts. Flags given on
// the command line win over the config file.
func (f *gridFlags) resolve(cmd *cobra.Command, opts *pipeline.Options, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if f.blockSize > 0 && changed("block-size") {
		if !changed("block-height") {
			opts.BlockHeight = f.blockSize
		}
		if !changed("block-width") {
			opts.BlockWidth = f.blockSize
		}
	}
	if cfg == nil {
		return
	}
	cfg.Apply(opts, func(name string) bool {
		if (name == "block-height" || name == "block-width") && changed("block-size") {
			return true
		}
		return changed(name)
	})
}
