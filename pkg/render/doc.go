// Package render turns tiled layouts into output artifacts.
//
// # Formats
//
//   - svg: one rect per tile with class "tile tiled", plus "failed" for
//     tiles that were force-fit. Optional labels, links and background.
//   - json: the layout document itself, see [layout.Layout].
//   - txt: a character grid, one cell per block, followed by a legend.
//     Force-fit tiles are drawn in upper case. Grids above [MaxTextCells]
//     cells are rejected.
//
// [Render] dispatches by format name:
//
//	svg, err := render.Render(l, render.FormatSVG, render.Options{Labels: true})
//
// [NewGrid] exposes the block grid used by the text renderer; the terminal
// preview in the CLI draws from it as well.
package render
