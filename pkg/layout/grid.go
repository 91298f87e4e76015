package layout

import (
	"maps"
	"slices"

	"github.com/matzehuels/beltflow/pkg/errors"
	"github.com/matzehuels/beltflow/pkg/geom"
)

// Grid is an in-memory layout: it owns objects, indexes them by the tiles
// they cover, and notifies subscribers when they change.
//
// Grid is not safe for concurrent use. Notifications are delivered
// synchronously, after the change is applied, in subscription order.
type Grid struct {
	catalog *Catalog
	objects map[int]*Object
	tiles   map[geom.Tile]*Object
	nextID  int

	nextSub   int
	listeners map[int]func(Event)
	watchers  map[int]map[int]func(Event) // object ID -> subscription ID -> handler
}

// NewGrid creates an empty grid using catalog for prototype lookups.
// A nil catalog means [DefaultCatalog].
func NewGrid(catalog *Catalog) *Grid {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Grid{
		catalog:   catalog,
		objects:   make(map[int]*Object),
		tiles:     make(map[geom.Tile]*Object),
		nextID:    1,
		listeners: make(map[int]func(Event)),
		watchers:  make(map[int]map[int]func(Event)),
	}
}

// Catalog returns the grid's prototype catalog.
func (g *Grid) Catalog() *Catalog { return g.catalog }

// Place adds a new object with the next free ID.
func (g *Grid) Place(name string, pos geom.Point, dir geom.Direction) (*Object, error) {
	return g.Add(Object{Name: name, Position: pos, Direction: dir})
}

// Add inserts o into the grid. A zero ID is replaced with the next free ID.
// It fails if the prototype is unknown, the ID is taken, or any tile of the
// footprint is occupied.
func (g *Grid) Add(o Object) (*Object, error) {
	proto, ok := g.catalog.Prototype(o.Name)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownPrototype, "unknown prototype %q", o.Name)
	}
	if o.ID == 0 {
		o.ID = g.nextID
	}
	if _, exists := g.objects[o.ID]; exists {
		return nil, errors.New(errors.ErrCodeDuplicateObject, "object %d already exists", o.ID)
	}
	o.Direction = o.Direction.Normalize()
	o.proto = proto

	obj := &o
	if err := g.index(obj); err != nil {
		return nil, err
	}
	g.objects[obj.ID] = obj
	if obj.ID >= g.nextID {
		g.nextID = obj.ID + 1
	}
	g.emit(Event{Type: EventCreated, Object: obj})
	return obj, nil
}

// Remove deletes the object with the given ID. Watchers of the object are
// notified and then dropped.
func (g *Grid) Remove(id int) error {
	obj, ok := g.objects[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "object %d not found", id)
	}
	g.unindex(obj)
	delete(g.objects, id)
	g.emit(Event{Type: EventRemoved, Object: obj})
	delete(g.watchers, id)
	return nil
}

// Rotate sets the object's facing.
func (g *Grid) Rotate(id int, dir geom.Direction) error {
	obj, ok := g.objects[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "object %d not found", id)
	}
	dir = dir.Normalize()
	if obj.Direction == dir {
		return nil
	}
	obj.Direction = dir
	g.emit(Event{Type: EventDirection, Object: obj})
	return nil
}

// SetRecipe sets the object's recipe.
func (g *Grid) SetRecipe(id int, recipe string) error {
	obj, ok := g.objects[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "object %d not found", id)
	}
	if obj.Recipe == recipe {
		return nil
	}
	obj.Recipe = recipe
	g.emit(Event{Type: EventRecipe, Object: obj})
	return nil
}

// Move relocates the object. The target footprint must be free of other
// objects.
func (g *Grid) Move(id int, pos geom.Point) error {
	obj, ok := g.objects[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "object %d not found", id)
	}
	from := obj.Position
	if from == pos {
		return nil
	}
	g.unindex(obj)
	obj.Position = pos
	if err := g.index(obj); err != nil {
		obj.Position = from
		_ = g.index(obj)
		return err
	}
	g.emit(Event{Type: EventMoved, Object: obj, From: from})
	return nil
}

// At returns the object covering the tile that contains p.
func (g *Grid) At(p geom.Point) (*Object, bool) {
	obj, ok := g.tiles[p.Tile()]
	return obj, ok
}

// Object looks up an object by ID.
func (g *Grid) Object(id int) (*Object, bool) {
	obj, ok := g.objects[id]
	return obj, ok
}

// Objects returns all objects ordered by ID.
func (g *Grid) Objects() []*Object {
	ids := slices.Sorted(maps.Keys(g.objects))
	out := make([]*Object, len(ids))
	for i, id := range ids {
		out[i] = g.objects[id]
	}
	return out
}

// Len returns the number of objects.
func (g *Grid) Len() int { return len(g.objects) }

// Subscribe registers fn for every event on every object. The returned
// function cancels the subscription.
func (g *Grid) Subscribe(fn func(Event)) (cancel func()) {
	id := g.nextSub
	g.nextSub++
	g.listeners[id] = fn
	return func() { delete(g.listeners, id) }
}

// Watch registers fn for events on a single object. Watchers run before
// grid-wide subscribers and are dropped when the object is removed.
func (g *Grid) Watch(objectID int, fn func(Event)) (cancel func()) {
	id := g.nextSub
	g.nextSub++
	if g.watchers[objectID] == nil {
		g.watchers[objectID] = make(map[int]func(Event))
	}
	g.watchers[objectID][id] = fn
	return func() {
		if w := g.watchers[objectID]; w != nil {
			delete(w, id)
			if len(w) == 0 {
				delete(g.watchers, objectID)
			}
		}
	}
}

func (g *Grid) emit(ev Event) {
	if w := g.watchers[ev.Object.ID]; w != nil {
		for _, id := range slices.Sorted(maps.Keys(w)) {
			if fn, ok := w[id]; ok {
				fn(ev)
			}
		}
	}
	for _, id := range slices.Sorted(maps.Keys(g.listeners)) {
		if fn, ok := g.listeners[id]; ok {
			fn(ev)
		}
	}
}

func (g *Grid) index(obj *Object) error {
	lo, hi := geom.Footprint(obj.Position, obj.proto.Size)
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			if other, taken := g.tiles[geom.Tile{X: x, Y: y}]; taken && other != obj {
				return errors.New(errors.ErrCodeOccupied, "%s overlaps %s at (%d, %d)", obj, other, x, y)
			}
		}
	}
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			g.tiles[geom.Tile{X: x, Y: y}] = obj
		}
	}
	return nil
}

func (g *Grid) unindex(obj *Object) {
	lo, hi := geom.Footprint(obj.Position, obj.proto.Size)
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			t := geom.Tile{X: x, Y: y}
			if g.tiles[t] == obj {
				delete(g.tiles, t)
			}
		}
	}
}
