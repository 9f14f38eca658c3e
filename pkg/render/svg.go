package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/matzehuels/tileme/pkg/layout"
)

// DefaultPalette colors tiles that do not carry their own color.
var DefaultPalette = []string{
	"#4e79a7", "#f28e2b", "#e15759", "#76b7b2",
	"#59a14f", "#edc948", "#b07aa1", "#ff9da7",
}

const tileCSS = `
    .tile { stroke: #222; stroke-width: 0; }
    .tile.failed { stroke: #c00; stroke-width: 2; stroke-dasharray: 6 3; }
    .tile-text { font-family: sans-serif; fill: #fff; pointer-events: none; }
    a { cursor: pointer; }`

const (
	fontHeightRatio = 0.3
	fontWidthRatio  = 0.85
	fontCharWidth   = 0.55
	fontSizeMin     = 8.0
	fontSizeMax     = 28.0
)

// SVGOption configures SVG output.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	labels     bool
	links      bool
	palette    []string
	background string
}

// WithLabels draws each tile's label (or ID) at its center.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// WithLinks wraps tiles that have a URL in an anchor.
func WithLinks() SVGOption { return func(r *svgRenderer) { r.links = true } }

// WithBackground fills the container with a color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithPalette replaces the default tile colors. An empty palette is ignored.
func WithPalette(colors []string) SVGOption {
	return func(r *svgRenderer) {
		if len(colors) > 0 {
			r.palette = colors
		}
	}
}

// RenderSVG draws a layout as an SVG document, one rect per tile in
// caller order. The canvas is the container width by the layout height.
func RenderSVG(l layout.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{palette: DefaultPalette}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %s %s" width="%.0f" height="%.0f">`+"\n",
		num(l.ContainerWidth), num(l.Height), l.ContainerWidth, l.Height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", tileCSS)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect class="container" x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n",
			num(l.ContainerWidth), num(l.Height), escapeXML(r.background))
	}

	for i, t := range l.Tiles {
		url := ""
		if r.links {
			url = t.URL
		}
		wrapURL(&buf, url, func() {
			r.renderTile(&buf, i, t)
		})
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r *svgRenderer) renderTile(buf *bytes.Buffer, i int, t layout.Tile) {
	class := "tile tiled"
	if t.Degraded {
		class += " failed"
	}
	fill := t.Color
	if fill == "" {
		fill = r.palette[i%len(r.palette)]
	}

	fmt.Fprintf(buf, `  <rect id="tile-%s" class="%s" x="%s" y="%s" width="%s" height="%s" fill="%s" data-cols="%d" data-rows="%d" data-seq="%d"/>`+"\n",
		escapeXML(t.ID), class, num(t.X), num(t.Y), num(t.Width), num(t.Height), escapeXML(fill), t.Cols, t.Rows, t.Seq)

	if !r.labels {
		return
	}
	label := t.Label
	if label == "" {
		label = t.ID
	}
	size := fontSize(t.Width, t.Height, len(label))
	fmt.Fprintf(buf, `  <text class="tile-text" x="%s" y="%s" font-size="%.1f" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
		num(t.X+t.Width/2), num(t.Y+t.Height/2), size, escapeXML(truncateLabel(label, t.Width, size)))
}

func fontSize(availWidth, availHeight float64, textLen int) float64 {
	n := max(1, textLen)
	byHeight := availHeight * fontHeightRatio
	byWidth := (availWidth * fontWidthRatio) / (float64(n) * fontCharWidth)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

func truncateLabel(label string, width, size float64) string {
	maxChars := max(3, int(width*fontWidthRatio/(size*fontCharWidth)))
	runes := []rune(label)
	if len(runes) <= maxChars {
		return label
	}
	return string(runes[:maxChars-2]) + ".."
}

// num formats a coordinate without trailing zeros.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 32)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func wrapURL(buf *bytes.Buffer, url string, fn func()) {
	if url != "" {
		fmt.Fprintf(buf, `  <a href="%s" target="_blank">`+"\n", escapeXML(url))
	}
	fn()
	if url != "" {
		buf.WriteString("  </a>\n")
	}
}
