package products

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	bferrors "github.com/matzehuels/beltflow/pkg/errors"
)

// CycleError reports a loop found while resolving. Path lists the nodes of
// the loop in flow order, starting and ending with the same node.
type CycleError struct {
	Path   []NodeID
	Labels []string
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = fmt.Sprintf("%s(%d)", e.Labels[i], id)
	}
	return "products cycle: " + strings.Join(parts, " → ")
}

// key identifies the loop regardless of which node the walk entered it at.
func (e *CycleError) key() string {
	loop := e.Path[:len(e.Path)-1]
	first := 0
	for i, id := range loop {
		if id < loop[first] {
			first = i
		}
	}
	var b strings.Builder
	for i := range loop {
		fmt.Fprintf(&b, "%d>", loop[(first+i)%len(loop)])
	}
	return b.String()
}

// Code returns the error code for this error type.
func (e *CycleError) Code() bferrors.Code { return bferrors.ErrCodeCycle }

// Resolve brings the node's value up to date and returns it.
//
// A clean node returns its cached value without visiting its ancestry or
// emitting anything. A dirty node is removed from the dirty set, its dirty
// ancestors are resolved first, then its input becomes the union of its
// inbound values and its resolved value becomes its override if set, else
// its input. Each freshly resolved node is emitted exactly once. When a
// node's value changes, the nodes it feeds become dirty; [Graph.ResolveDirty]
// picks them up.
//
// The walk uses an explicit stack, so long chains do not grow the goroutine
// stack. When a walk reaches a node that is still being resolved, the edge
// closes a loop: that edge contributes the node's previous value, and a
// [*CycleError] is returned alongside the result.
func (g *Graph) Resolve(id NodeID) (Set, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	if _, dirty := g.dirty[id]; !dirty {
		return n.resolved.Clone(), nil
	}

	var cycles []error
	active := map[NodeID]int{} // node -> stack index while in progress
	push := func(stack []resolveFrame, n *Node) []resolveFrame {
		delete(g.dirty, n.id)
		active[n.id] = len(stack)
		return append(stack, resolveFrame{node: n, pending: n.Inbound()})
	}

	stack := push(nil, n)
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if len(top.pending) > 0 {
			next := top.pending[0]
			top.pending = top.pending[1:]
			if at, busy := active[next]; busy {
				cycles = append(cycles, cycleAt(stack, at))
				continue
			}
			if _, dirty := g.dirty[next]; dirty {
				stack = push(stack, g.nodes[next])
			}
			continue
		}
		done := top.node
		stack = stack[:len(stack)-1]
		delete(active, done.id)
		g.settle(done, active)
	}
	return n.resolved.Clone(), errors.Join(cycles...)
}

// ResolveDirty resolves dirty nodes until none are left and returns how
// many resolutions ran. Resolving a node whose value changed dirties its
// consumers, so a sweep may take several rounds. A loop walked in more than
// one round is reported once; a sweep that is still producing changes after a
// bounded number of rounds stops with [ErrUnstable].
func (g *Graph) ResolveDirty() (int, error) {
	start := g.resolutions
	limit := 4 * (len(g.nodes) + 1)

	var errs []error
	seen := make(map[string]bool)
	for round := 0; len(g.dirty) > 0; round++ {
		if round >= limit {
			errs = append(errs, fmt.Errorf("%w: %d nodes still dirty after %d rounds", ErrUnstable, len(g.dirty), round))
			break
		}
		ids := make([]NodeID, 0, len(g.dirty))
		for id := range g.dirty {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		for _, id := range ids {
			_, err := g.Resolve(id)
			cycles := Cycles(err)
			if len(cycles) == 0 {
				if err != nil {
					errs = append(errs, err)
				}
				continue
			}
			for _, c := range cycles {
				if key := c.key(); !seen[key] {
					seen[key] = true
					errs = append(errs, c)
				}
			}
		}
	}
	return g.resolutions - start, errors.Join(errs...)
}

func (g *Graph) settle(n *Node, active map[NodeID]int) {
	input := make(Set)
	for src := range n.inbound {
		input.addAll(g.nodes[src].resolved)
	}
	n.input = input

	prev := n.resolved
	if len(n.fixed) > 0 {
		n.resolved = n.fixed.Clone()
	} else {
		n.resolved = input.Clone()
	}
	if !prev.Equal(n.resolved) {
		// Consumers still on the stack read the new value when they settle.
		for dst := range n.outbound {
			if _, busy := active[dst]; !busy {
				g.dirty[dst] = struct{}{}
			}
		}
	}
	g.resolutions++
	g.emit(n)
}

// resolveFrame is one node on the resolution stack with the inbound IDs it
// has yet to visit.
type resolveFrame struct {
	node    *Node
	pending []NodeID
}

// cycleAt builds the loop closed by an edge from stack[start] into the top
// frame. Each frame is fed by the frame above it, so walking down from the
// top gives flow order.
func cycleAt(stack []resolveFrame, start int) *CycleError {
	first := stack[start].node
	e := &CycleError{
		Path:   []NodeID{first.id},
		Labels: []string{first.meta.Label},
	}
	for i := len(stack) - 1; i >= start; i-- {
		n := stack[i].node
		e.Path = append(e.Path, n.id)
		e.Labels = append(e.Labels, n.meta.Label)
	}
	return e
}
