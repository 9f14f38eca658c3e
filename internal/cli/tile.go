package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tileme/pkg/layout"
	"github.com/matzehuels/tileme/pkg/pipeline"
	"github.com/matzehuels/tileme/pkg/render"
)

// layoutFlags are the tiling flags shared by tile and preview.
type layoutFlags struct {
	width          float64
	baseWidth      float64
	baseHeight     float64
	spacing        float64
	maxFailedTimes int
	centerSpacing  bool
}

func addLayoutFlags(cmd *cobra.Command, f *layoutFlags) {
	cmd.Flags().Float64VarP(&f.width, "width", "w", 0, "container width in pixels (default from item file or config, else 800)")
	cmd.Flags().Float64Var(&f.baseWidth, "base-width", 0, "nominal block width in pixels")
	cmd.Flags().Float64Var(&f.baseHeight, "base-height", 0, "nominal block height in pixels")
	cmd.Flags().Float64Var(&f.spacing, "spacing", 0, "pixels deducted from every tile's width and height")
	cmd.Flags().IntVar(&f.maxFailedTimes, "max-failed", 0, "failed attempts before a tile is shrunk to fit")
	cmd.Flags().BoolVar(&f.centerSpacing, "center-spacing", false, "offset tiles by half the spacing")
}

// layoutOptions resolves the tiling options. Later sources win: config
// file, then the item file, then flags the user set explicitly. The item
// file's [config] table overrides only the keys it sets.
func (c *CLI) layoutOptions(cmd *cobra.Command, f layoutFlags, file layout.ItemFile) pipeline.Options {
	opts := pipeline.Options{
		Width:  c.Config.Layout.Width,
		Config: c.Config.Layout.TilerConfig(),
		Logger: c.Logger,
	}
	if file.ContainerWidth > 0 {
		opts.Width = file.ContainerWidth
	}
	opts.Config = file.Config.Apply(opts.Config)

	flags := cmd.Flags()
	if flags.Changed("width") {
		opts.Width = f.width
	}
	if flags.Changed("base-width") {
		opts.Config.BaseWidth = f.baseWidth
	}
	if flags.Changed("base-height") {
		opts.Config.BaseHeight = f.baseHeight
	}
	if flags.Changed("spacing") {
		opts.Config.Spacing = f.spacing
	}
	if flags.Changed("max-failed") {
		opts.Config.MaxFailedTimes = f.maxFailedTimes
	}
	if flags.Changed("center-spacing") {
		opts.Config.CenterSpacing = f.centerSpacing
	}
	return opts
}

// renderFlags are the artifact flags shared by tile and render.
type renderFlags struct {
	output     string
	formats    string
	labels     bool
	links      bool
	background string
	noCache    bool
}

func addRenderFlags(cmd *cobra.Command, f *renderFlags) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output base path (default: input path without extension)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), json, txt (comma-separated)")
	cmd.Flags().BoolVar(&f.labels, "labels", false, "draw tile labels in SVG output")
	cmd.Flags().BoolVar(&f.links, "links", false, "link tiles with a URL in SVG output")
	cmd.Flags().StringVar(&f.background, "background", "", "SVG container background color")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the layout and render cache")
}

func (f renderFlags) options() render.Options {
	return render.Options{Labels: f.labels, Links: f.links, Background: f.background}
}

// layoutSuffix marks layout documents written next to the artifacts.
const layoutSuffix = ".layout"

// artifactPath returns the file an artifact of format is written to. JSON
// output is the layout document itself.
func artifactPath(base, format string) string {
	if format == render.FormatJSON {
		return base + layoutSuffix + ".json"
	}
	return base + "." + format
}

// outputBase derives the base path for artifacts, dropping a ".layout"
// suffix so re-rendering a layout file writes next to its siblings.
func outputBase(output, input string) string {
	return strings.TrimSuffix(basePath(output, input), layoutSuffix)
}

// tileCommand creates the tile command.
func (c *CLI) tileCommand() *cobra.Command {
	var (
		lf      layoutFlags
		rf      renderFlags
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "tile <items.{json,toml,yaml}>",
		Short: "Tile an item file and write the layout and artifacts",
		Long: `Tile packs the items of an item file into a fixed-width container and
writes the layout document (<base>.layout.json) plus the requested formats.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := layout.ReadItemFile(args[0])
			if err != nil {
				return err
			}
			opts := c.layoutOptions(cmd, lf, file)
			opts.Refresh = refresh
			opts.Formats = withLayoutFormat(parseFormats(rf.formats))
			opts.Render = rf.options()
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runTile(cmd.Context(), args[0], file.Items, opts, rf)
		},
	}

	addLayoutFlags(cmd, &lf)
	addRenderFlags(cmd, &rf)
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached layouts")

	return cmd
}

// withLayoutFormat adds json to formats; tile always writes the layout.
func withLayoutFormat(formats []string) []string {
	if slices.Contains(formats, render.FormatJSON) {
		return formats
	}
	return append([]string{render.FormatJSON}, formats...)
}

func (c *CLI) runTile(ctx context.Context, input string, items []layout.ItemSpec, opts pipeline.Options, rf renderFlags) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(rf.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, items, opts)
	if err != nil {
		return err
	}
	prog.done("tiled items", "input", input, "items", len(items))

	l := result.Layout
	printSuccess("Tiled %s", filepath.Base(input))
	printStats(len(l.Tiles), l.TotalCols, l.Height, l.Degraded, result.CacheInfo.LayoutHit)
	if l.Degraded > 0 {
		printWarning("%d tile(s) did not fit and were shrunk", l.Degraded)
	}

	base := outputBase(rf.output, input)
	if err := writeArtifacts(base, result.Artifacts); err != nil {
		return err
	}
	printNextStep("Preview in the terminal", "tileme preview "+input)
	return nil
}

// writeArtifacts writes each artifact next to base, in format order.
func writeArtifacts(base string, artifacts map[string][]byte) error {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	for _, format := range render.Formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := artifactPath(base, format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
