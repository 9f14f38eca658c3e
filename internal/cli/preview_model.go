package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/tileme/pkg/layout"
	"github.com/matzehuels/tileme/pkg/pipeline"
	"github.com/matzehuels/tileme/pkg/tiler"
)

// previewHeaderLines is the number of lines above the viewport.
const previewHeaderLines = 4

// previewModel is the bubbletea model for the interactive preview. It owns
// the tiler and re-tiles on every width change.
type previewModel struct {
	items   []layout.ItemSpec
	tiler   *tiler.Tiler
	spacing float64
	step    float64

	layout   layout.Layout
	err      error
	viewport viewport.Model
}

func newPreviewModel(items []layout.ItemSpec, opts pipeline.Options, step float64) (previewModel, error) {
	items, err := layout.NormalizeItems(items)
	if err != nil {
		return previewModel{}, err
	}
	t, err := tiler.New(opts.Width, opts.Config)
	if err != nil {
		return previewModel{}, err
	}
	if step <= 0 {
		step = opts.Config.BaseWidth
	}

	m := previewModel{
		items:    items,
		tiler:    t,
		spacing:  opts.Config.Spacing,
		step:     step,
		viewport: viewport.New(80, 20),
	}
	if err := m.setResult(t.Tile(layout.Requests(items))); err != nil {
		return previewModel{}, err
	}
	return m, nil
}

// setResult stores res and redraws the viewport. A layout that cannot be
// drawn is kept for the stats line and reported in m.err.
func (m *previewModel) setResult(res tiler.Result) error {
	m.layout = layout.FromResult(res, m.items, m.tiler.ContainerWidth(), m.spacing)
	out, err := previewLayout(m.layout)
	if err != nil {
		m.err = err
		m.viewport.SetContent("")
		return err
	}
	m.viewport.SetContent(out)
	return nil
}

// resize re-tiles for a new container width. Widths that cannot be tiled
// are reported and leave the layout unchanged.
func (m *previewModel) resize(width float64) {
	res, err := m.tiler.Resize(width)
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.setResult(res)
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h", "-":
			m.resize(m.tiler.ContainerWidth() - m.step)
			return m, nil
		case "right", "l", "+":
			m.resize(m.tiler.ContainerWidth() + m.step)
			return m, nil
		case "r":
			m.err = nil
			m.setResult(m.tiler.Retile())
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-previewHeaderLines, 3)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("tileme preview"))
	b.WriteString("  ")
	b.WriteString(StyleValue.Render(fmt.Sprintf("%.0fpx", m.tiler.ContainerWidth())))
	b.WriteString("\n")
	b.WriteString(formatStats(len(m.layout.Tiles), m.layout.TotalCols, m.layout.Height, m.layout.Degraded, false))
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(StyleWarning.Render(m.err.Error()))
	} else {
		b.WriteString(StyleDim.Render("←/→ resize  r retile  ↑/↓ scroll  q quit"))
	}
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	return b.String()
}
