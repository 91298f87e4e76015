package layout

import (
	"fmt"

	"github.com/matzehuels/beltflow/pkg/geom"
)

// Object is one placed entity. Objects are owned by a [Grid]; mutate them
// through the grid so that subscribers are notified.
type Object struct {
	ID        int
	Name      string
	Position  geom.Point
	Direction geom.Direction
	Recipe    string

	proto Prototype
}

// Kind returns the flow kind of the object's prototype.
func (o *Object) Kind() Kind { return o.proto.Kind }

// Size returns the object's footprint in tiles.
func (o *Object) Size() geom.Point { return o.proto.Size }

// Prototype returns the catalog entry the object was placed from.
func (o *Object) Prototype() Prototype { return o.proto }

func (o *Object) String() string {
	return fmt.Sprintf("%s#%d@%v", o.Name, o.ID, o.Position)
}

// EventType identifies what changed about an object.
type EventType int

const (
	EventCreated EventType = iota
	EventRemoved
	EventDirection
	EventRecipe
	EventMoved
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventRemoved:
		return "removed"
	case EventDirection:
		return "direction"
	case EventRecipe:
		return "recipe"
	case EventMoved:
		return "moved"
	}
	return "unknown"
}

// Event is delivered to grid subscribers and object watchers after the
// change has been applied.
type Event struct {
	Type   EventType
	Object *Object
	// From is the previous position for EventMoved.
	From geom.Point
}
