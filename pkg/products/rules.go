package products

import (
	"github.com/matzehuels/beltflow/pkg/geom"
	"github.com/matzehuels/beltflow/pkg/layout"
)

// Lane indices for two-node objects, left to right when facing along the
// direction of travel.
const (
	LaneLeft  = 0
	LaneRight = 1
)

// Rule is the wiring behavior of one object kind.
//
// NodeCount must depend only on the object, and Wire must be idempotent:
// it is called for an object whenever anything near it changes, and must
// leave the graph untouched when nothing relevant did.
type Rule interface {
	NodeCount(obj *layout.Object) int
	Wire(w Wiring, obj *layout.Object)
}

// DefaultRules returns the rules for the built-in kinds.
func DefaultRules() map[layout.Kind]Rule {
	return map[layout.Kind]Rule{
		layout.KindInserter:  InserterRule{},
		layout.KindAssembler: AssemblerRule{},
		layout.KindBelt:      BeltRule{},
	}
}

// InserterRule moves items from an assembler in front of the inserter onto
// one lane of a belt behind it. The reach comes from the prototype.
type InserterRule struct{}

func (InserterRule) NodeCount(*layout.Object) int { return 1 }

func (InserterRule) Wire(w Wiring, obj *layout.Object) {
	node := w.Nodes(obj)[0]
	w.SetFixed(node, nil)
	reach := max(obj.Prototype().Reach, 1)

	var outputs []NodeID
	if target, ok := w.Find(obj, Back, reach); ok && target.Kind() == layout.KindBelt {
		lanes := w.Nodes(target)
		side := LaneRight
		if target.Direction == geom.RotateCW(obj.Direction, 1) || target.Direction == geom.RotateCW(obj.Direction, 2) {
			side = LaneLeft
		}
		if side < len(lanes) {
			outputs = append(outputs, lanes[side])
		}
	}
	w.ReplaceOutputs(node, outputs...)

	var inputs []NodeID
	if source, ok := w.Find(obj, Front, reach); ok && source.Kind() == layout.KindAssembler {
		inputs = append(inputs, w.Nodes(source)[0])
	}
	w.ReplaceInputs(node, inputs...)
}

// AssemblerRule makes the assembler a source of its recipe's outputs.
type AssemblerRule struct{}

func (AssemblerRule) NodeCount(*layout.Object) int { return 1 }

func (AssemblerRule) Wire(w Wiring, obj *layout.Object) {
	node := w.Nodes(obj)[0]
	w.SetFixed(node, w.RecipeOutputs(obj.Recipe))
}

// BeltRule carries each lane straight onto the matching lane of the next
// belt, when that belt faces the same way.
//
// TODO: side-loading and curves, where the next belt faces a different way.
type BeltRule struct{}

func (BeltRule) NodeCount(*layout.Object) int { return 2 }

func (BeltRule) Wire(w Wiring, obj *layout.Object) {
	lanes := w.Nodes(obj)
	for _, n := range lanes {
		w.SetFixed(n, nil)
	}

	var next []NodeID
	if target, ok := w.Find(obj, Front, 1); ok && target.Kind() == layout.KindBelt && target.Direction == obj.Direction {
		next = w.Nodes(target)
	}
	for i, n := range lanes {
		if i < len(next) {
			w.ReplaceOutputs(n, next[i])
		} else {
			w.ReplaceOutputs(n)
		}
	}
}
