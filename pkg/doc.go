// Package pkg provides the core libraries for Beltflow.
//
// # Overview
//
// Beltflow tracks which items flow through a factory layout. Every
// connection point of every placed object is a node in a directed graph;
// items travel along edges and each node holds the union of what reaches
// it. When the layout changes, only the nodes whose inputs changed are
// resolved again. The pkg directory is organized into these areas:
//
//  1. [geom] - Points, tiles and the 8-unit direction scale
//  2. [layout] - Prototype catalog, the grid of placed objects, layout files
//  3. [products] - The products graph and the engine that keeps it current
//  4. [render] - DOT, SVG, PDF and PNG output of the products graph
//  5. [cache] - File, Redis and null caches for rendered artifacts
//
// # Architecture
//
// The typical data flow through Beltflow:
//
//	Layout JSON + catalog TOML
//	         ↓
//	    [layout] package (grid of objects, change notifications)
//	         ↓
//	    [products] package (wire nodes, resolve dirty nodes)
//	         ↓
//	    [render/nodelink] package (DOT + Graphviz layout)
//	         ↓
//	    Text/JSON report, DOT/SVG/PDF/PNG output
//
// # Quick Start
//
// Place a machine, an inserter and a belt, then read what the belt carries:
//
//	import (
//	    "github.com/matzehuels/beltflow/pkg/geom"
//	    "github.com/matzehuels/beltflow/pkg/layout"
//	    "github.com/matzehuels/beltflow/pkg/products"
//	)
//
//	grid := layout.NewGrid(nil)
//	grid.Add(layout.Object{Name: "assembling_machine", Position: geom.Pt(0, -2), Recipe: "iron-gear"})
//	grid.Add(layout.Object{Name: "inserter", Position: geom.Pt(0, 0), Direction: geom.North})
//	belt, _ := grid.Add(layout.Object{Name: "transport_belt", Position: geom.Pt(0, 1), Direction: geom.East})
//
//	engine, _ := products.ForGrid(grid)
//	got, _ := engine.Products()
//	fmt.Println(got[belt.ID]) // [{iron-gear} {}]
//
// Later edits to the grid (rotate, move, remove, change recipe) are picked up
// by the attached engine automatically.
//
// # Supporting Packages
//
//   - [errors] - Coded errors shared by every package and mapped to HTTP status
//   - [observability] - Hooks for sweep, cache and request metrics
//   - [buildinfo] - Version information set at build time
package pkg
