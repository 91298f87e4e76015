// Package products computes which items flow through every connection
// point of every object in a layout, and keeps the answer current as the
// layout is edited.
//
// # Model
//
// Each object owns one or more nodes in a [Graph]: an inserter or an
// assembler owns one, a belt owns two (left and right lane). A node's value
// is a [Set] of item names. A node with a fixed override (an assembler's
// recipe output) is a source; every other node takes the union of the
// values of the nodes feeding it. There is no notion of rate, capacity or
// conflicting inputs.
//
// # Incremental resolution
//
// Edits never compute values. [Graph.Connect], [Graph.Disconnect],
// [Graph.ReplaceOutputs], [Graph.ReplaceInputs] and [Graph.SetFixed] only
// mark the nodes whose inputs actually changed as dirty. [Graph.Resolve]
// walks a dirty node's dirty ancestry, recomputes it, and emits one
// [Change] per recomputed node. Clean nodes answer from cache.
//
// # Engine
//
// [Engine] connects the graph to a layout. When an object is created,
// rotated, reconfigured or moved, the engine rewires the object and every
// object within two tiles of it using the [Rule] for each object's kind,
// then resolves what became dirty:
//
//	grid := layout.NewGrid(nil)
//	engine, _ := products.ForGrid(grid)
//	engine.Observe(products.ObserverFunc(func(c products.Change) {
//	    fmt.Println(c.Label, c.Items)
//	}))
//	grid.Place("transport_belt", geom.Pt(0, 0), geom.East)
//
// Bulk edits go through a [Batch] so that resolution runs once:
//
//	b := engine.Suspend()
//	for _, obj := range objects {
//	    b.ObjectCreated(obj)
//	}
//	err := b.Resume()
//
// # Cycles
//
// Loops in the graph are legal layouts but have no well-defined union. When
// resolution closes a loop, the closing edge contributes the previous value
// of the node it leads to, the rest of the sweep continues, and a
// [*CycleError] describing the loop is returned.
//
// # Concurrency
//
// Engine and Graph are single-threaded. Observers run inside resolution and
// must not edit the graph.
package products
