// Package pkg holds the tileme libraries.
//
// # Overview
//
// tileme packs items of different block sizes into a fixed-width container.
// The container is cut into equal columns; each item spans a number of
// columns and rows and is placed into the lowest gap it fits, left to
// right. Items that keep failing to fit are shrunk to the widest gap
// available, keeping their aspect ratio where they can.
//
// # Architecture
//
//	items (JSON, TOML, YAML)
//	         ↓
//	    [layout] package (item specs, normalization)
//	         ↓
//	    [tiler] package (column ledger, deferral queue, forced fits)
//	         ↓
//	    [layout] package (pixel geometry, layout documents)
//	         ↓
//	    [render] package (SVG, text grid, JSON)
//
// [pipeline] runs these steps with caching from [cache]. [server] exposes
// them over HTTP, with live tilers kept in [session] and finished layouts
// archived in [storage].
//
// # Quick Start
//
//	import (
//	    "fmt"
//
//	    "github.com/matzehuels/tileme/pkg/tiler"
//	)
//
//	t, _ := tiler.New(800, tiler.DefaultConfig())
//	res := t.Tile([]tiler.Request{
//	    {ID: "hero", Cols: 2, Rows: 2},
//	    {ID: "a"},
//	    {ID: "b"},
//	})
//	fmt.Println(res.RequiredHeight) // 400
//
// # Main Packages
//
// [tiler] - The packing algorithm. A Tiler keeps the per-column height
// ledger between calls, so items can be appended, the container resized
// and the whole set re-tiled.
//
// [layout] - Item specs and layout documents. Converts tiler results to
// pixel positions with the configured spacing.
//
// [render] - SVG, text and JSON renderings of a layout.
//
// [pipeline] - Tile and render with layout and artifact caching.
//
// [cache] - Cache backends (null, memory, file, Redis) and key derivation.
//
// [session] - Resumable tiler state with memory, file and Redis stores.
//
// [storage] - Layout archive backed by memory or MongoDB.
//
// [server] - HTTP API for layouts and sessions.
//
// [errors] - Coded errors shared across packages.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [buildinfo] - Version information set at build time.
//
// [tiler]: https://pkg.go.dev/github.com/matzehuels/tileme/pkg/tiler
// [layout]: https://pkg.go.dev/github.com/matzehuels/tileme/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/tileme/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tileme/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/tileme/pkg/cache
// [session]: https://pkg.go.dev/github.com/matzehuels/tileme/pkg/session
// [storage]: https://pkg.go.dev/github.com/matzehuels/tileme/pkg/storage
// [server]: https://pkg.go.dev/github.com/matzehuels/tileme/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/tileme/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/tileme/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/tileme/pkg/buildinfo
package pkg
