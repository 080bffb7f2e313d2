package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/grid"
	"github.com/matzehuels/blockseg/pkg/pipeline"
	"github.com/matzehuels/blockseg/pkg/similarity"
)

// neighborsCommand creates the neighbors command, which prints the
// similarity of blocks to their 8 neighbors.
func (c *CLI) neighborsCommand() *cobra.Command {
	var (
		gf  gridFlags
		pos string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "neighbors [image]",
		Short: "Print neighbor similarity scores",
		Long: `Print the similarity of each block to its neighbors.

Scores at or above the threshold are the ones label propagation would accept.
Use --pos row,col to show a single block.`,
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

			var only *grid.Pos
			if pos != "" {
				p, err := parsePos(pos)
				if err != nil {
					return err
				}
				only = &p
			}
			return runNeighbors(cmd.Context(), opts, only)
		},
	}

	cmd.Flags().StringVar(&pos, "pos", "", "only show the block at row,col")
	gf.register(cmd.Flags(), &opts)
	registerSegmentFlags(cmd.Flags(), &opts)

	return cmd
}

func runNeighbors(ctx context.Context, opts pipeline.Options, only *grid.Pos) error {
	prog := newProgress(loggerFromContext(ctx))

	src, err := pipeline.Load(ctx, opts)
	if err != nil {
		return err
	}
	g, err := pipeline.BuildGrid(src, opts)
	if err != nil {
		return err
	}

	positions := make([]grid.Pos, 0, g.Rows*g.Cols)
	if only != nil {
		if _, err := g.At(*only); err != nil {
			return err
		}
		positions = append(positions, *only)
	} else {
		for _, b := range g.Blocks() {
			positions = append(positions, b.Pos)
		}
	}

	var sims similarity.Provider
	if only != nil {
		oracle, err := similarity.NewOracle(opts.Oracle)
		if err != nil {
			return err
		}
		sims = similarity.NewEngine(oracle)
	} else {
		table, err := pipeline.Precompute(ctx, g, opts)
		if err != nil {
			return err
		}
		sims = table
	}

	rows, err := neighborRows(g, sims, positions, opts.Threshold)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Scored %d blocks with %s", len(positions), opts.Oracle))

	fmt.Println(neighborTable(rows).Render())
	return nil
}

// neighborRows flattens the similarity maps of positions into table rows.
func neighborRows(g *grid.Grid, sims similarity.Provider, positions []grid.Pos, threshold float64) ([][]string, error) {
	var rows [][]string
	for _, p := range positions {
		m, err := sims.Similarities(g, p)
		if err != nil {
			return nil, err
		}
		for _, n := range m {
			accept := ""
			if n.Score >= threshold {
				accept = iconSuccess
			}
			rows = append(rows, []string{p.String(), n.Pos.String(), strconv.FormatFloat(n.Score, 'f', 4, 64), accept})
		}
	}
	return rows, nil
}

func neighborTable(rows [][]string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Block", "Neighbor", "Score", "Accept").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(rows) && rows[row][3] != "" {
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
			return lipgloss.NewStyle().Foreground(colorDim)
		})
}

// parsePos parses "row,col" (or "row-col") into a grid position.
func parsePos(s string) (grid.Pos, error) {
	sep := ","
	if !strings.Contains(s, sep) {
		sep = "-"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return grid.Pos{}, errors.New(errors.ErrCodeInvalidInput, "position must be row,col, got %q", s)
	}
	row, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	col, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || row < 0 || col < 0 {
		return grid.Pos{}, errors.New(errors.ErrCodeInvalidInput, "position must be two non-negative integers, got %q", s)
	}
	return grid.Pos{Row: row, Col: col}, nil
}
