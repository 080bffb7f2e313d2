package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/store"
)

// runsCommand creates the run history command.
func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List and show recorded segmentation runs",
	}

	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsShowCommand())

	return cmd
}

// runsListCommand creates the "runs list" subcommand.
func (c *CLI) runsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			st, err := c.newStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer st.Close()

			runs, err := st.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				printInfo("No runs recorded yet")
				printNextStep("Record one", "blockseg segment <image>")
				return nil
			}
			fmt.Println(runsTable(runs, time.Now()).Render())
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to list")
	return cmd
}

// runsShowCommand creates the "runs show" subcommand.
func (c *CLI) runsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidateRunID(args[0]); err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			st, err := c.newStore(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("open run store: %w", err)
			}
			defer st.Close()

			run, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printRun(run)
			return nil
		},
	}
}

func runsTable(runs []*store.Run, now time.Time) *table.Table {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.Source,
			fmt.Sprintf("%dx%d", r.Rows, r.Cols),
			strconv.Itoa(r.Segment.Regions),
			strconv.FormatFloat(r.Params.Threshold, 'f', -1, 64),
			formatRelativeTime(r.CreatedAt, now),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Source", "Grid", "Regions", "Threshold", "Created").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			if col == 5 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})
}

func printRun(r *store.Run) {
	fmt.Println(StyleTitle.Render("Run " + r.ID))
	printKeyValue("Source", r.Source)
	printKeyValue("Created", r.CreatedAt.Local().Format(time.DateTime))
	printKeyValue("Image", fmt.Sprintf("%dx%d px", r.Width, r.Height))
	printKeyValue("Grid", fmt.Sprintf("%dx%d blocks of %dx%d px", r.Rows, r.Cols, r.Params.BlockHeight, r.Params.BlockWidth))
	printKeyValue("Oracle", r.Params.Oracle)
	printKeyValue("Threshold", strconv.FormatFloat(r.Params.Threshold, 'f', -1, 64))
	if r.Params.ColorShading {
		printKeyValue("Shading", fmt.Sprintf("weight %g, floor %g", r.Params.ShadeWeight, r.Params.ShadingFloor))
	}
	printKeyValue("Seed", strconv.FormatUint(r.Params.Seed, 10))
	printKeyValue("Regions", strconv.Itoa(r.Segment.Regions))
	printKeyValue("Seeds", strconv.Itoa(r.Segment.Seeds))
	printKeyValue("Overwritten", strconv.Itoa(r.Segment.Overwritten))
	printKeyValue("Formats", strings.Join(r.Formats, ", "))
	printKeyValue("Duration", (time.Duration(r.DurationMS) * time.Millisecond).String())
	printDetail("image %s", shortHash(r.ImageHash))
	printDetail("labels %s", shortHash(r.LabelHash))
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
