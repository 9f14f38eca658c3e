package render

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/matzehuels/tileme/pkg/errors"
	"github.com/matzehuels/tileme/pkg/layout"
)

const (
	glyphs    = "abcdefghijklmnopqrstuvwxyz0123456789"
	emptyCell = '.'
)

// Grid is a block-level view of a layout: one cell per column and row,
// holding the index of the tile that covers it or -1.
type Grid struct {
	Cols  int
	Rows  int
	Cells [][]int
}

// MaxTextCells bounds the number of block cells the text renderer and the
// terminal preview draw. Larger layouts are rejected before the grid is
// allocated.
const MaxTextCells = 1 << 20

// GridSize returns the column and row count of the block grid for l
// without allocating it.
func GridSize(l layout.Layout) (cols, rows int) {
	cols = max(l.TotalCols, 1)
	if r := gridRows(l); r > 0 {
		rows = int(r)
	}
	return cols, rows
}

// gridRows is computed in floating point so a forged height cannot
// overflow the conversion before the size check.
func gridRows(l layout.Layout) float64 {
	var rows float64
	if l.BaseHeight > 0 {
		rows = math.Round(l.Height / l.BaseHeight)
	}
	for _, t := range l.Tiles {
		rows = max(rows, float64(tileRow(l, t))+float64(t.Rows))
	}
	return rows
}

// ValidateGrid reports an error when l has more than MaxTextCells cells.
func ValidateGrid(l layout.Layout) error {
	cells := float64(max(l.TotalCols, 1)) * gridRows(l)
	if math.IsNaN(cells) || cells > MaxTextCells {
		return errors.New(errors.ErrCodeInvalidInput,
			"layout of %d columns and %.0f rows is too large to draw as text (max %d cells)",
			max(l.TotalCols, 1), gridRows(l), MaxTextCells)
	}
	return nil
}

// NewGrid rasterizes a layout to block cells. Tile rows are recovered from
// their pixel offsets, so a centering offset below half a block is fine.
func NewGrid(l layout.Layout) (Grid, error) {
	if err := ValidateGrid(l); err != nil {
		return Grid{}, err
	}
	g := Grid{}
	g.Cols, g.Rows = GridSize(l)

	g.Cells = make([][]int, g.Rows)
	for y := range g.Cells {
		g.Cells[y] = make([]int, g.Cols)
		for x := range g.Cells[y] {
			g.Cells[y][x] = -1
		}
	}
	for i, t := range l.Tiles {
		row := tileRow(l, t)
		for y := max(row, 0); y < row+t.Rows && y < g.Rows; y++ {
			for x := max(t.Column, 0); x < t.Column+t.Cols && x < g.Cols; x++ {
				g.Cells[y][x] = i
			}
		}
	}
	return g, nil
}

func tileRow(l layout.Layout, t layout.Tile) int {
	if l.BaseHeight <= 0 {
		return 0
	}
	return int(math.Floor(t.Y/l.BaseHeight + 0.5))
}

// Glyph returns the character used for tile i; degraded tiles are upper case.
func Glyph(i int, degraded bool) rune {
	r := rune(glyphs[i%len(glyphs)])
	if degraded {
		return unicode.ToUpper(r)
	}
	return r
}

// RenderText draws a layout as a character grid followed by a legend.
// Layouts beyond MaxTextCells are rejected.
func RenderText(l layout.Layout) ([]byte, error) {
	g, err := NewGrid(l)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, row := range g.Cells {
		for _, idx := range row {
			if idx < 0 {
				sb.WriteRune(emptyCell)
				continue
			}
			sb.WriteRune(Glyph(idx, l.Tiles[idx].Degraded))
		}
		sb.WriteByte('\n')
	}

	if len(l.Tiles) > 0 {
		sb.WriteByte('\n')
	}
	for i, t := range l.Tiles {
		fmt.Fprintf(&sb, "%c %s %dx%d", Glyph(i, t.Degraded), t.ID, t.Cols, t.Rows)
		if t.Degraded {
			fmt.Fprintf(&sb, " (forced from %dx%d)", t.RequestedCols, t.RequestedRows)
		}
		sb.WriteByte('\n')
	}
	return []byte(sb.String()), nil
}
