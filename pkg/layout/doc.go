// Package layout defines the file and wire formats around the tiler.
//
// # Item Files
//
// Items to tile are described by [ItemSpec] values. An item file may be
// JSON, TOML or YAML and optionally carries the container width and tiler
// configuration alongside the items:
//
//	container_width = 800
//
//	[config]
//	base_width = 200
//	base_height = 200
//	spacing = 1
//
//	[[items]]
//	id = "hero"
//	cols = 2
//	rows = 2
//
//	[[items]]
//	id = "news"
//
// JSON files may also be a bare array of items. Missing cols/rows default
// to 1 and items without an id are named item-1, item-2, ... in file order.
//
// # Layout Documents
//
// A [Layout] is the serialized outcome of a tiling pass: the container
// geometry and one [Tile] per item with its pixel rectangle. Layouts are
// what the CLI writes to layout.json, what the HTTP API returns and what
// the archive stores. JSON and BSON tags are kept in sync.
package layout
