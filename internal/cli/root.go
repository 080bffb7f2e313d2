package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockseg/pkg/buildinfo"
)

// RootCommand returns the root cobra command with all subcommands attached.
//
// The --verbose flag is registered by the caller (see cmd/blockseg), which
// adjusts the logger level before any command runs. The logger is attached
// to the command context and accessible to all commands via loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "blockseg segments images into regions of similar blocks",
		Long: `blockseg cuts an image into a grid of equally sized blocks and grows
regions by comparing each block with its 8 neighbors, labeling similar blocks
with a shared color.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/blockseg/config.toml)")

	root.AddCommand(c.segmentCommand())
	root.AddCommand(c.gridCommand())
	root.AddCommand(c.neighborsCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.runsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
