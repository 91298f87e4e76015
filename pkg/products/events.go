package products

import "github.com/matzehuels/beltflow/pkg/geom"

// Change is emitted once for every node whose value was just resolved.
type Change struct {
	ObjectID int
	Index    int
	Label    string
	Items    Set
	Anchor   *geom.Point
	Delta    *geom.Point
}

func newChange(n *Node) Change {
	return Change{
		ObjectID: n.meta.ObjectID,
		Index:    n.meta.Index,
		Label:    n.meta.Label,
		Items:    n.resolved.Clone(),
		Anchor:   n.meta.Anchor,
		Delta:    n.meta.Delta,
	}
}

// Icon is one item drawn at a position.
type Icon struct {
	Item     string
	Position geom.Point
}

// Icons lays the items out in name order, starting at the anchor and
// stepping by the delta. It returns nil when the node has no anchor.
func (c Change) Icons() []Icon {
	if c.Anchor == nil || len(c.Items) == 0 {
		return nil
	}
	var delta geom.Point
	if c.Delta != nil {
		delta = *c.Delta
	}
	items := c.Items.Sorted()
	icons := make([]Icon, len(items))
	for i, it := range items {
		icons[i] = Icon{Item: it, Position: c.Anchor.Add(delta.Scale(float64(i)))}
	}
	return icons
}

// Observer receives change notifications. Observers run synchronously
// inside resolution and must not call back into the engine's mutators.
type Observer interface {
	OnChange(Change)
}

// ObserverFunc adapts a function to [Observer].
type ObserverFunc func(Change)

// OnChange calls f(c).
func (f ObserverFunc) OnChange(c Change) { f(c) }

// ChannelObserver forwards changes to a buffered channel. When the buffer
// is full the change is dropped and counted, so a slow reader never blocks
// resolution.
type ChannelObserver struct {
	C       chan Change
	Dropped int
}

// NewChannelObserver creates an observer with the given buffer size.
func NewChannelObserver(size int) *ChannelObserver {
	return &ChannelObserver{C: make(chan Change, size)}
}

// OnChange implements [Observer].
func (o *ChannelObserver) OnChange(c Change) {
	select {
	case o.C <- c:
	default:
		o.Dropped++
	}
}
