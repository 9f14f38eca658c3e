package render

import (
	"slices"

	"github.com/matzehuels/tileme/pkg/errors"
	"github.com/matzehuels/tileme/pkg/layout"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatText = "txt"
)

// Formats lists the supported output formats.
var Formats = []string{FormatSVG, FormatJSON, FormatText}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatJSON: "application/json",
	FormatText: "text/plain; charset=utf-8",
}

// Options are the format-independent render settings.
type Options struct {
	Labels     bool     `json:"labels,omitempty"`
	Links      bool     `json:"links,omitempty"`
	Palette    []string `json:"palette,omitempty"`
	Background string   `json:"background,omitempty"`
}

// SVGOptions converts o to SVG renderer options.
func (o Options) SVGOptions() []SVGOption {
	var opts []SVGOption
	if o.Labels {
		opts = append(opts, WithLabels())
	}
	if o.Links {
		opts = append(opts, WithLinks())
	}
	if len(o.Palette) > 0 {
		opts = append(opts, WithPalette(o.Palette))
	}
	if o.Background != "" {
		opts = append(opts, WithBackground(o.Background))
	}
	return opts
}

// ValidateFormat reports an error for unknown formats.
func ValidateFormat(format string) error {
	if !slices.Contains(Formats, format) {
		return errors.New(errors.ErrCodeInvalidFormat, "unknown output format %q (want svg, json or txt)", format)
	}
	return nil
}

// Render produces a layout in the given format.
func Render(l layout.Layout, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		return RenderSVG(l, opts.SVGOptions()...), nil
	case FormatJSON:
		return RenderJSON(l)
	case FormatText:
		return RenderText(l)
	}
	return nil, ValidateFormat(format)
}

// RenderJSON encodes a layout as indented JSON.
func RenderJSON(l layout.Layout) ([]byte, error) {
	return layout.Marshal(l)
}
