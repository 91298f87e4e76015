package products

import (
	"maps"
	"slices"

	"github.com/matzehuels/beltflow/pkg/geom"
)

// NodeID identifies a node within one [Graph]. IDs are never reused, so a
// stale ID of a discarded node can be detected instead of aliasing a new one.
type NodeID uint64

// Meta describes where a node belongs. The graph never interprets it; it is
// passed through to [Change] events for presentation.
type Meta struct {
	ObjectID int    // owning object
	Index    int    // position among the object's nodes, left to right
	Label    string // "<name>" or "<name>-<index>"

	// Anchor is where the first item icon goes and Delta the step between
	// icons. Both are nil for objects that are not drawn with icons.
	Anchor *geom.Point
	Delta  *geom.Point
}

// Node is one connection point of one placed object.
type Node struct {
	id   NodeID
	meta Meta

	inbound  map[NodeID]struct{}
	outbound map[NodeID]struct{}

	fixed    Set // override; non-empty makes the node a source
	input    Set // union of inbound resolved values
	resolved Set // fixed if non-empty, else input
}

func newNode(id NodeID, meta Meta) *Node {
	return &Node{
		id:       id,
		meta:     meta,
		inbound:  make(map[NodeID]struct{}),
		outbound: make(map[NodeID]struct{}),
		fixed:    Set{},
		input:    Set{},
		resolved: Set{},
	}
}

// ID returns the node's identifier.
func (n *Node) ID() NodeID { return n.id }

// Meta returns the node's placement metadata.
func (n *Node) Meta() Meta { return n.meta }

// Fixed returns a copy of the node's override set.
func (n *Node) Fixed() Set { return n.fixed.Clone() }

// Input returns a copy of the union of the node's inputs as of its last
// resolution.
func (n *Node) Input() Set { return n.input.Clone() }

// Resolved returns a copy of the node's value as of its last resolution.
// Use [Graph.Resolve] to bring it up to date first.
func (n *Node) Resolved() Set { return n.resolved.Clone() }

// Inbound returns the IDs of the nodes feeding n, in ascending order.
func (n *Node) Inbound() []NodeID { return slices.Sorted(maps.Keys(n.inbound)) }

// Outbound returns the IDs of the nodes n feeds, in ascending order.
func (n *Node) Outbound() []NodeID { return slices.Sorted(maps.Keys(n.outbound)) }
