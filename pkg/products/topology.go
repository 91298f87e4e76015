package products

import (
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/beltflow/pkg/geom"
	"github.com/matzehuels/beltflow/pkg/layout"
)

// Relative names a tile next to an object, as seen by the object.
type Relative int

const (
	Front Relative = iota
	Back
	Left
	Right
	FrontRight
	FrontLeft
)

// relativeOffsets are unit offsets for an object facing north.
var relativeOffsets = [...]geom.Point{
	Front:      {X: 0, Y: -1},
	Back:       {X: 0, Y: 1},
	Left:       {X: -1, Y: 0},
	Right:      {X: 1, Y: 0},
	FrontRight: {X: 1, Y: -1},
	FrontLeft:  {X: -1, Y: -1},
}

// Offset returns the offset of the tile `tiles` steps away in direction r
// for an object facing dir.
func (r Relative) Offset(dir geom.Direction, tiles int) geom.Point {
	return relativeOffsets[r].Scale(float64(tiles)).Rotate(dir)
}

// rescan rewires obj and then every other object within scanRadius tiles
// of its footprint centered at center, in ID order.
func (e *Engine) rescan(obj *layout.Object, center geom.Point) {
	e.rewire(obj)

	lo, hi := geom.Footprint(center, obj.Size())
	seen := make(map[int]*layout.Object)
	for x := lo.X - scanRadius; x <= hi.X+scanRadius; x++ {
		for y := lo.Y - scanRadius; y <= hi.Y+scanRadius; y++ {
			if o, ok := e.space.At(geom.Tile{X: x, Y: y}.Center()); ok && o.ID != obj.ID {
				seen[o.ID] = o
			}
		}
	}
	for _, id := range slices.Sorted(maps.Keys(seen)) {
		e.rewire(seen[id])
	}
}

func (e *Engine) rewire(obj *layout.Object) {
	rule, ok := e.rules[obj.Kind()]
	if !ok {
		return
	}
	rule.Wire(Wiring{e: e}, obj)
}

// nodesFor returns obj's nodes, creating them if needed. If the rule now
// wants a different number of nodes the old ones are discarded first.
// Existing nodes only get their metadata refreshed.
func (e *Engine) nodesFor(obj *layout.Object) []NodeID {
	rule, ok := e.rules[obj.Kind()]
	if !ok {
		return nil
	}
	count := rule.NodeCount(obj)
	nodes := e.objects[obj.ID]
	if nodes != nil && len(nodes) != count {
		e.discard(obj.ID)
		nodes = nil
	}

	metas := nodeMetas(obj, count)
	if nodes == nil {
		nodes = make([]NodeID, count)
		for i := range nodes {
			nodes[i] = e.graph.AddNode(metas[i])
		}
		e.objects[obj.ID] = nodes
		e.names[obj.ID] = obj.Name
		return nodes
	}
	for i, id := range nodes {
		e.graph.nodes[id].meta = metas[i]
	}
	return nodes
}

func nodeMetas(obj *layout.Object, count int) []Meta {
	proto := obj.Prototype()
	metas := make([]Meta, count)
	for i := range metas {
		m := Meta{ObjectID: obj.ID, Index: i, Label: obj.Name}
		if count > 1 {
			m.Label = fmt.Sprintf("%s-%d", obj.Name, i)
		}
		if proto.NodeOffset != nil {
			off := *proto.NodeOffset
			if i%2 == 1 {
				off.X = -off.X
			}
			anchor := obj.Position.Add(off.Rotate(obj.Direction))
			m.Anchor = &anchor
		}
		if proto.NodeDelta != nil {
			delta := proto.NodeDelta.Rotate(obj.Direction)
			m.Delta = &delta
		}
		metas[i] = m
	}
	return metas
}

func (e *Engine) discard(objectID int) {
	for _, id := range e.objects[objectID] {
		e.graph.RemoveNode(id)
	}
	delete(e.objects, objectID)
	delete(e.names, objectID)
}

// Wiring is the view of the engine a [Rule] uses to rewire one object.
type Wiring struct {
	e *Engine
}

// Nodes returns obj's nodes, creating them per obj's own rule. It returns
// nil for objects whose kind has no rule.
func (w Wiring) Nodes(obj *layout.Object) []NodeID {
	return w.e.nodesFor(obj)
}

// Find returns the object `tiles` steps from obj in direction r.
func (w Wiring) Find(obj *layout.Object, r Relative, tiles int) (*layout.Object, bool) {
	return w.e.space.At(obj.Position.Add(r.Offset(obj.Direction, tiles)))
}

// ReplaceOutputs makes src feed exactly dst.
func (w Wiring) ReplaceOutputs(src NodeID, dst ...NodeID) {
	w.check(w.e.graph.ReplaceOutputs(src, dst...))
}

// ReplaceInputs makes dst fed by exactly src.
func (w Wiring) ReplaceInputs(dst NodeID, src ...NodeID) {
	w.check(w.e.graph.ReplaceInputs(dst, src...))
}

// SetFixed sets a node's override; an empty set clears it.
func (w Wiring) SetFixed(id NodeID, items Set) {
	w.check(w.e.graph.SetFixed(id, items))
}

// RecipeOutputs returns what recipe produces according to the catalog.
func (w Wiring) RecipeOutputs(recipe string) Set {
	return NewSet(w.e.catalog.RecipeOutputs(recipe)...)
}

// Node IDs handed to rules come from nodesFor, so a failure here means a
// rule kept an ID across a discard.
func (w Wiring) check(err error) {
	if err != nil {
		w.e.logger.Error("rewire failed", "err", err)
	}
}
