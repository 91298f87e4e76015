package products

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrUnknownNode is returned when a node ID does not exist in the graph,
	// either because it was never created or because it was discarded.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnstable is returned by [Graph.ResolveDirty] when values inside a
	// cycle keep changing.
	ErrUnstable = errors.New("products did not settle")

	// ErrAsymmetricEdge is returned by [Graph.CheckSymmetry] when an edge is
	// recorded on one endpoint only. It indicates graph corruption.
	ErrAsymmetricEdge = errors.New("asymmetric edge")
)

// Edge is a directed connection: items resolved at From flow into To.
type Edge struct {
	From NodeID
	To   NodeID
}

// Graph is the products dependency graph: an arena of nodes with symmetric
// inbound/outbound adjacency and a dirty set of nodes awaiting resolution.
//
// Every mutator is idempotent and only marks a node dirty when it actually
// changes something, so rewiring an unchanged neighborhood costs no
// resolution work. The zero value is not usable; use [NewGraph].
//
// Graph is not safe for concurrent use, and observers must not mutate the
// graph from inside a resolution.
type Graph struct {
	nodes map[NodeID]*Node
	next  NodeID
	dirty map[NodeID]struct{}

	resolutions int
	emit        func(*Node)
}

// NewGraph creates an empty graph. onResolve, if non-nil, is called once for
// every node whose value is freshly resolved.
func NewGraph(onResolve func(*Node)) *Graph {
	if onResolve == nil {
		onResolve = func(*Node) {}
	}
	return &Graph{
		nodes: make(map[NodeID]*Node),
		next:  1,
		dirty: make(map[NodeID]struct{}),
		emit:  onResolve,
	}
}

// AddNode creates a node and marks it dirty.
func (g *Graph) AddNode(meta Meta) NodeID {
	id := g.next
	g.next++
	g.nodes[id] = newNode(id, meta)
	g.dirty[id] = struct{}{}
	return id
}

// RemoveNode severs every edge of the node, dirtying each former target,
// and forgets the node. Removing an unknown node is a no-op.
func (g *Graph) RemoveNode(id NodeID) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	for src := range n.inbound {
		g.disconnect(g.nodes[src], n)
	}
	for dst := range n.outbound {
		g.disconnect(n, g.nodes[dst])
	}
	delete(g.dirty, id)
	delete(g.nodes, id)
}

// Node returns the node with the given ID.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node ID in ascending order.
func (g *Graph) Nodes() []NodeID { return slices.Sorted(maps.Keys(g.nodes)) }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Edges returns every edge ordered by source, then target.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for _, id := range g.Nodes() {
		for _, dst := range g.nodes[id].Outbound() {
			edges = append(edges, Edge{From: id, To: dst})
		}
	}
	return edges
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	count := 0
	for _, n := range g.nodes {
		count += len(n.outbound)
	}
	return count
}

// IsDirty reports whether the node awaits resolution.
func (g *Graph) IsDirty(id NodeID) bool {
	_, ok := g.dirty[id]
	return ok
}

// DirtyCount returns the number of nodes awaiting resolution.
func (g *Graph) DirtyCount() int { return len(g.dirty) }

// Connect adds the edge src→dst. It is a no-op if the edge exists;
// otherwise dst is marked dirty.
func (g *Graph) Connect(src, dst NodeID) error {
	s, d, err := g.pair(src, dst)
	if err != nil {
		return err
	}
	g.connect(s, d)
	return nil
}

// Disconnect removes the edge src→dst. It is a no-op if the edge does not
// exist; otherwise dst is marked dirty.
func (g *Graph) Disconnect(src, dst NodeID) error {
	s, d, err := g.pair(src, dst)
	if err != nil {
		return err
	}
	g.disconnect(s, d)
	return nil
}

// ReplaceOutputs makes src's outbound edges exactly desired.
func (g *Graph) ReplaceOutputs(src NodeID, desired ...NodeID) error {
	s, targets, err := g.lookup(src, desired)
	if err != nil {
		return err
	}
	for id := range s.outbound {
		if !slices.Contains(desired, id) {
			g.disconnect(s, g.nodes[id])
		}
	}
	for _, d := range targets {
		g.connect(s, d)
	}
	return nil
}

// ReplaceInputs makes dst's inbound edges exactly desired.
func (g *Graph) ReplaceInputs(dst NodeID, desired ...NodeID) error {
	d, sources, err := g.lookup(dst, desired)
	if err != nil {
		return err
	}
	for id := range d.inbound {
		if !slices.Contains(desired, id) {
			g.disconnect(g.nodes[id], d)
		}
	}
	for _, s := range sources {
		g.connect(s, d)
	}
	return nil
}

// SetFixed replaces the node's override. The node is marked dirty only if
// the membership of the override changed.
func (g *Graph) SetFixed(id NodeID, items Set) error {
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	if n.fixed.Equal(items) {
		return nil
	}
	n.fixed = items.Clone()
	g.dirty[id] = struct{}{}
	return nil
}

// CheckSymmetry verifies that every outbound edge is mirrored by an inbound
// edge and vice versa, and that no edge references a missing node.
func (g *Graph) CheckSymmetry() error {
	for _, id := range g.Nodes() {
		n := g.nodes[id]
		for dst := range n.outbound {
			d, ok := g.nodes[dst]
			if !ok {
				return fmt.Errorf("%w: %d→%d targets a missing node", ErrAsymmetricEdge, id, dst)
			}
			if _, ok := d.inbound[id]; !ok {
				return fmt.Errorf("%w: %d→%d missing on target", ErrAsymmetricEdge, id, dst)
			}
		}
		for src := range n.inbound {
			s, ok := g.nodes[src]
			if !ok {
				return fmt.Errorf("%w: %d→%d sources a missing node", ErrAsymmetricEdge, src, id)
			}
			if _, ok := s.outbound[id]; !ok {
				return fmt.Errorf("%w: %d→%d missing on source", ErrAsymmetricEdge, src, id)
			}
		}
	}
	return nil
}

func (g *Graph) connect(src, dst *Node) {
	if _, ok := src.outbound[dst.id]; ok {
		return
	}
	src.outbound[dst.id] = struct{}{}
	dst.inbound[src.id] = struct{}{}
	g.dirty[dst.id] = struct{}{}
}

func (g *Graph) disconnect(src, dst *Node) {
	if _, ok := src.outbound[dst.id]; !ok {
		return
	}
	delete(src.outbound, dst.id)
	delete(dst.inbound, src.id)
	g.dirty[dst.id] = struct{}{}
}

func (g *Graph) pair(src, dst NodeID) (*Node, *Node, error) {
	s, ok := g.nodes[src]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownNode, src)
	}
	d, ok := g.nodes[dst]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownNode, dst)
	}
	return s, d, nil
}

// lookup validates every ID before the caller mutates anything.
func (g *Graph) lookup(id NodeID, others []NodeID) (*Node, []*Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	resolved := make([]*Node, len(others))
	for i, o := range others {
		if resolved[i], ok = g.nodes[o]; !ok {
			return nil, nil, fmt.Errorf("%w: %d", ErrUnknownNode, o)
		}
	}
	return n, resolved, nil
}
