package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tileme/pkg/layout"
	"github.com/matzehuels/tileme/pkg/pipeline"
	"github.com/matzehuels/tileme/pkg/render"
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		lf          layoutFlags
		interactive bool
		step        float64
	)

	cmd := &cobra.Command{
		Use:   "preview <items.{json,toml,yaml}>",
		Short: "Show a tiled item file in the terminal",
		Long: `Preview tiles an item file and draws one colored cell per block.

With -i the preview is interactive: left/right shrink or grow the container
by --step pixels and the items are re-tiled on every change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := layout.ReadItemFile(args[0])
			if err != nil {
				return err
			}
			opts := c.layoutOptions(cmd, lf, file)
			if err := opts.ValidateForTile(); err != nil {
				return err
			}

			if interactive {
				m, err := newPreviewModel(file.Items, opts, step)
				if err != nil {
					return err
				}
				_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
				return err
			}

			l, err := pipeline.TileItems(cmd.Context(), file.Items, opts)
			if err != nil {
				return err
			}
			out, err := previewLayout(l)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			fmt.Fprintln(cmd.OutOrStdout(), formatStats(len(l.Tiles), l.TotalCols, l.Height, l.Degraded, false))
			return nil
		},
	}

	addLayoutFlags(cmd, &lf)
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "resize the container with the arrow keys")
	cmd.Flags().Float64Var(&step, "step", 0, "pixels added or removed per key press (default: one base block)")

	return cmd
}

// cellWidth is the number of terminal columns per block.
const cellWidth = 2

// previewLayout draws l as a grid of colored cells, followed by a legend.
// Each tile shows its glyph in its first cell; forced tiles use an
// uppercase glyph. Layouts too large for a text grid are an error.
func previewLayout(l layout.Layout) (string, error) {
	g, err := render.NewGrid(l)
	if err != nil {
		return "", err
	}
	styles := make([]lipgloss.Style, len(l.Tiles))
	for i, t := range l.Tiles {
		styles[i] = tileStyle(i, t)
	}

	var b strings.Builder
	for y, row := range g.Cells {
		for x, idx := range row {
			if idx < 0 {
				b.WriteString(StyleDim.Render(strings.Repeat("·", cellWidth)))
				continue
			}
			t := l.Tiles[idx]
			text := strings.Repeat(" ", cellWidth)
			if x == t.Column && y == gridRow(g, idx, x) {
				text = string(render.Glyph(idx, t.Degraded)) + strings.Repeat(" ", cellWidth-1)
			}
			b.WriteString(styles[idx].Render(text))
		}
		b.WriteByte('\n')
	}

	if len(l.Tiles) > 0 {
		b.WriteByte('\n')
	}
	for i, t := range l.Tiles {
		name := t.ID
		if t.Label != "" {
			name = t.Label
		}
		line := fmt.Sprintf("%s %s %s", styles[i].Render(" "+string(render.Glyph(i, t.Degraded))+" "),
			StyleValue.Render(name), StyleDim.Render(fmt.Sprintf("%dx%d", t.Cols, t.Rows)))
		if t.Degraded {
			line += " " + StyleWarning.Render(fmt.Sprintf("forced from %dx%d", t.RequestedCols, t.RequestedRows))
		}
		b.WriteString(line + "\n")
	}
	return b.String(), nil
}

// gridRow returns the first grid row holding tile idx in column x.
func gridRow(g render.Grid, idx, x int) int {
	for y := range g.Cells {
		if g.Cells[y][x] == idx {
			return y
		}
	}
	return -1
}

// tileStyle colors a tile with its own color or the default palette.
func tileStyle(i int, t layout.Tile) lipgloss.Style {
	color := t.Color
	if color == "" {
		color = render.DefaultPalette[i%len(render.DefaultPalette)]
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color(color)).
		Foreground(lipgloss.Color("0")).
		Bold(t.Degraded)
}
