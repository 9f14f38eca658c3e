package cli

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tileme/pkg/layout"
	"github.com/matzehuels/tileme/pkg/pipeline"
)

// renderCommand creates the render command, which draws an existing layout
// document without tiling again.
func (c *CLI) renderCommand() *cobra.Command {
	var rf renderFlags

	cmd := &cobra.Command{
		Use:   "render <layout.json>",
		Short: "Render a layout document to SVG or text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{
				Formats: parseFormats(rf.formats),
				Render:  rf.options(),
				Logger:  c.Logger,
			}
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts, rf)
		},
	}

	addRenderFlags(cmd, &rf)
	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, rf renderFlags) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	l, err := layout.ReadFile(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(rf.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return err
	}
	prog.done("rendered layout", "input", input, "formats", opts.Formats)

	printSuccess("Rendered %s", filepath.Base(input))
	printStats(len(l.Tiles), l.TotalCols, l.Height, l.Degraded, hit)
	return writeArtifacts(outputBase(rf.output, input), artifacts)
}
