// Package layout models a placed layout: objects on a tile grid, the
// prototype catalog that gives each object its size and behavior, and the
// change notifications the products engine listens to.
//
// A [Grid] is both the spatial index ("what occupies this tile?") and the
// object store. Mutations go through the grid ([Grid.Rotate],
// [Grid.SetRecipe], [Grid.Move], [Grid.Remove]) so that subscribers
// registered with [Grid.Subscribe] or [Grid.Watch] observe every change.
//
// # Catalog
//
// [DefaultCatalog] knows the built-in prototypes. Additional prototypes and
// recipe outputs can be merged from TOML with [Catalog.Load]:
//
//	[[prototype]]
//	name = "express_belt"
//	kind = "belt"
//
//	[recipe]
//	"oil-processing" = ["petroleum-gas", "light-oil", "heavy-oil"]
//
// # Files
//
// Layouts are stored as JSON; see [ReadJSON] for the format.
package layout
