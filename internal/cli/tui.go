package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/blockseg/pkg/grid"
	"github.com/matzehuels/blockseg/pkg/similarity"
)

// Grid styles
var (
	gridCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	gridEmptyStyle  = lipgloss.NewStyle().Foreground(colorDim)
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// GridModel - Interactive block browser
// =============================================================================

// GridModel is the bubbletea model for browsing a segmented grid.
// Each block is drawn as a two-column cell in its label color; the panel
// on the right shows the block under the cursor and its neighbor scores.
type GridModel struct {
	Grid      *grid.Grid
	Sims      similarity.Provider
	Threshold float64

	Cursor grid.Pos
	Height int // visible grid rows
	Width  int // visible grid columns
	Offset grid.Pos
}

// NewGridModel creates a grid model with the cursor on the first block.
func NewGridModel(g *grid.Grid, sims similarity.Provider, threshold float64) GridModel {
	return GridModel{
		Grid:      g,
		Sims:      sims,
		Threshold: threshold,
		Height:    20,
		Width:     30,
	}
}

func (m GridModel) Init() tea.Cmd {
	return nil
}

func (m GridModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor.Row > 0 {
				m.Cursor.Row--
			}
		case "down", "j":
			if m.Cursor.Row < m.Grid.Rows-1 {
				m.Cursor.Row++
			}
		case "left", "h":
			if m.Cursor.Col > 0 {
				m.Cursor.Col--
			}
		case "right", "l":
			if m.Cursor.Col < m.Grid.Cols-1 {
				m.Cursor.Col++
			}
		case "home", "g":
			m.Cursor = grid.Pos{}
		}
	case tea.WindowSizeMsg:
		// Leave room for the header and the detail panel.
		m.Height = max(msg.Height-6, 5)
		m.Width = max((msg.Width-44)/2, 5)
	}
	m.Offset = follow(m.Offset, m.Cursor, m.Height, m.Width)
	return m, nil
}

// follow scrolls offset so that cursor stays inside a h×w viewport.
func follow(offset, cursor grid.Pos, h, w int) grid.Pos {
	if cursor.Row < offset.Row {
		offset.Row = cursor.Row
	} else if cursor.Row >= offset.Row+h {
		offset.Row = cursor.Row - h + 1
	}
	if cursor.Col < offset.Col {
		offset.Col = cursor.Col
	} else if cursor.Col >= offset.Col+w {
		offset.Col = cursor.Col - w + 1
	}
	return offset
}

func (m GridModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Segmentation Grid"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("←↑↓→ / hjkl move  g home  q quit"))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, m.gridView(), "  ", m.detailView()))
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%s of %dx%d]", m.Cursor, m.Grid.Rows, m.Grid.Cols)))

	return b.String()
}

func (m GridModel) gridView() string {
	endRow := min(m.Offset.Row+m.Height, m.Grid.Rows)
	endCol := min(m.Offset.Col+m.Width, m.Grid.Cols)

	var b strings.Builder
	for r := m.Offset.Row; r < endRow; r++ {
		for c := m.Offset.Col; c < endCol; c++ {
			p := grid.Pos{Row: r, Col: c}
			blk, err := m.Grid.At(p)
			if err != nil {
				continue
			}
			b.WriteString(cell(blk, p == m.Cursor))
		}
		if r < endRow-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func cell(blk *grid.Block, current bool) string {
	text := "  "
	if current {
		text = "<>"
	}
	if blk.Color == nil {
		if current {
			return gridCursorStyle.Render(text)
		}
		return gridEmptyStyle.Render("··")
	}
	style := lipgloss.NewStyle().Background(lipgloss.Color(blk.Color.Hex()))
	if current {
		style = style.Inherit(gridCursorStyle)
	}
	return style.Render(text)
}

func (m GridModel) detailView() string {
	blk, err := m.Grid.At(m.Cursor)
	if err != nil {
		return StyleWarning.Render(err.Error())
	}

	var b strings.Builder
	b.WriteString(StyleHighlight.Render("Block " + m.Cursor.String()))
	b.WriteString("\n")

	label := "unlabeled"
	if blk.Color != nil {
		label = blk.Color.Hex()
	}
	b.WriteString(fmt.Sprintf("%s %s\n", listDimStyle.Render("label   "), StyleValue.Render(label)))
	b.WriteString(fmt.Sprintf("%s %s\n", listDimStyle.Render("accepted"), StyleNumber.Render(strconv.FormatFloat(blk.LastAccepted, 'f', 4, 64))))

	if m.Sims == nil {
		return b.String()
	}
	sims, err := m.Sims.Similarities(m.Grid, m.Cursor)
	if err != nil {
		b.WriteString(StyleWarning.Render(err.Error()))
		return b.String()
	}

	rows := make([][]string, 0, len(sims))
	for _, n := range sims {
		accept := ""
		if n.Score >= m.Threshold {
			accept = iconSuccess
		}
		rows = append(rows, []string{n.Pos.String(), strconv.FormatFloat(n.Score, 'f', 4, 64), accept})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Neighbor", "Score", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < len(rows) && rows[row][2] != "" {
				return lipgloss.NewStyle().Foreground(colorGreen)
			}
			return lipgloss.NewStyle().Foreground(colorDim)
		})
	b.WriteString(t.Render())
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// formatRelativeTime renders t relative to now ("5m ago"), switching to a
// date after a week.
func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
