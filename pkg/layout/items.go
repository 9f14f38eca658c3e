package layout

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/tileme/pkg/errors"
	"github.com/matzehuels/tileme/pkg/tiler"
)

// Item file formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// ItemSpec describes one item to tile.
type ItemSpec struct {
	ID    string `json:"id,omitempty" toml:"id" yaml:"id,omitempty" bson:"id,omitempty"`
	Cols  int    `json:"cols,omitempty" toml:"cols" yaml:"cols,omitempty" bson:"cols,omitempty"`
	Rows  int    `json:"rows,omitempty" toml:"rows" yaml:"rows,omitempty" bson:"rows,omitempty"`
	Label string `json:"label,omitempty" toml:"label" yaml:"label,omitempty" bson:"label,omitempty"`
	Color string `json:"color,omitempty" toml:"color" yaml:"color,omitempty" bson:"color,omitempty"`
	URL   string `json:"url,omitempty" toml:"url" yaml:"url,omitempty" bson:"url,omitempty"`
}

// Request converts the spec to a tiler request.
func (s ItemSpec) Request() tiler.Request {
	return tiler.Request{ID: s.ID, Cols: s.Cols, Rows: s.Rows}
}

// Requests converts specs to tiler requests, preserving order.
func Requests(items []ItemSpec) []tiler.Request {
	reqs := make([]tiler.Request, len(items))
	for i, it := range items {
		reqs[i] = it.Request()
	}
	return reqs
}

// ItemFile is the content of an item file.
// ContainerWidth and Config are optional; zero values mean "not set".
type ItemFile struct {
	ContainerWidth float64         `json:"container_width,omitempty" toml:"container_width" yaml:"container_width,omitempty"`
	Config         *ConfigOverride `json:"config,omitempty" toml:"config" yaml:"config,omitempty"`
	Items          []ItemSpec      `json:"items" toml:"items" yaml:"items"`
}

// ConfigOverride is the [config] table of an item file. Only the keys
// present in the file are set, so an item file can change the block size
// and keep the spacing from the user's config.
type ConfigOverride struct {
	BaseWidth      *float64 `json:"base_width,omitempty" toml:"base_width" yaml:"base_width,omitempty"`
	BaseHeight     *float64 `json:"base_height,omitempty" toml:"base_height" yaml:"base_height,omitempty"`
	Spacing        *float64 `json:"spacing,omitempty" toml:"spacing" yaml:"spacing,omitempty"`
	MaxFailedTimes *int     `json:"max_failed_times,omitempty" toml:"max_failed_times" yaml:"max_failed_times,omitempty"`
	CenterSpacing  *bool    `json:"center_spacing,omitempty" toml:"center_spacing" yaml:"center_spacing,omitempty"`
}

// Apply returns base with every key set in o replaced. A nil override
// returns base unchanged.
func (o *ConfigOverride) Apply(base tiler.Config) tiler.Config {
	if o == nil {
		return base
	}
	if o.BaseWidth != nil {
		base.BaseWidth = *o.BaseWidth
	}
	if o.BaseHeight != nil {
		base.BaseHeight = *o.BaseHeight
	}
	if o.Spacing != nil {
		base.Spacing = *o.Spacing
	}
	if o.MaxFailedTimes != nil {
		base.MaxFailedTimes = *o.MaxFailedTimes
	}
	if o.CenterSpacing != nil {
		base.CenterSpacing = *o.CenterSpacing
	}
	return base
}

// FormatFromPath infers the item file format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"unknown item file extension %q (want .json, .toml, .yaml or .yml)", filepath.Ext(path))
}

// ReadItemFile reads and normalizes an item file, inferring the format from
// its extension.
func ReadItemFile(path string) (ItemFile, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return ItemFile{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ItemFile{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "item file %s", path)
		}
		return ItemFile{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadItems(f, format)
}

// ReadItems decodes an item file in the given format and normalizes it.
func ReadItems(r io.Reader, format string) (ItemFile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return ItemFile{}, fmt.Errorf("read items: %w", err)
	}

	var file ItemFile
	switch format {
	case FormatJSON:
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
			err = json.Unmarshal(trimmed, &file.Items)
		} else {
			err = json.Unmarshal(data, &file)
		}
	case FormatTOML:
		err = toml.Unmarshal(data, &file)
	case FormatYAML:
		err = yaml.Unmarshal(data, &file)
	default:
		return ItemFile{}, errors.New(errors.ErrCodeInvalidFormat, "unknown item format %q", format)
	}
	if err != nil {
		return ItemFile{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode %s items", format)
	}

	items, err := NormalizeItems(file.Items)
	if err != nil {
		return ItemFile{}, err
	}
	file.Items = items
	return file, nil
}

// NormalizeItems validates item specs and assigns IDs to anonymous items.
// It returns a new slice; the input is not modified.
func NormalizeItems(items []ItemSpec) ([]ItemSpec, error) {
	out := make([]ItemSpec, len(items))
	seen := make(map[string]int, len(items))

	for i, it := range items {
		if err := errors.ValidateItemID(it.ID); err != nil {
			return nil, err
		}
		if err := errors.ValidateSpan("cols", it.Cols); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidItem, err, "item %d", i+1)
		}
		if err := errors.ValidateSpan("rows", it.Rows); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidItem, err, "item %d", i+1)
		}
		if it.ID == "" {
			it.ID = fmt.Sprintf("item-%d", i+1)
		}
		if prev, ok := seen[it.ID]; ok {
			return nil, errors.New(errors.ErrCodeInvalidItem,
				"duplicate item id %q (items %d and %d)", it.ID, prev+1, i+1)
		}
		seen[it.ID] = i
		out[i] = it
	}
	return out, nil
}
