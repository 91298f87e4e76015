package products

import (
	"io"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/beltflow/pkg/geom"
	"github.com/matzehuels/beltflow/pkg/layout"
	"github.com/matzehuels/beltflow/pkg/observability"
)

// Space answers "what occupies this point?" for neighbor lookups.
type Space interface {
	At(p geom.Point) (*layout.Object, bool)
}

// scanRadius is how many tiles beyond its footprint a changed object can
// affect. A long-handed inserter reaches two tiles.
const scanRadius = 2

// Engine keeps the products of every object in a layout up to date as the
// layout changes.
//
// Object notifications rewire the changed object and every object within
// [scanRadius] tiles of it, then resolve whatever became dirty. Wrap several
// notifications in [Engine.Suspend] / [Batch.Resume] to resolve once.
//
// Engine is not safe for concurrent use; observers must not call back into
// it.
type Engine struct {
	space   Space
	catalog *layout.Catalog
	graph   *Graph
	rules   map[layout.Kind]Rule

	objects map[int][]NodeID
	names   map[int]string

	depth   int
	batchID string
	lastErr error

	observers map[int]Observer
	nextObs   int
	hooks     observability.EngineHooks
	logger    *log.Logger

	watches map[int]func()
	detach  func()
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for sweep diagnostics. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver registers an observer at construction.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.Observe(o) }
}

// WithHooks overrides the globally registered engine hooks.
func WithHooks(h observability.EngineHooks) Option {
	return func(e *Engine) {
		if h != nil {
			e.hooks = h
		}
	}
}

// WithCatalog sets the catalog used to look up recipe outputs. By default
// the space's catalog is used if it has one, else [layout.DefaultCatalog].
func WithCatalog(c *layout.Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// WithRule installs or replaces the wiring rule for a kind.
func WithRule(kind layout.Kind, r Rule) Option {
	return func(e *Engine) { e.rules[kind] = r }
}

// New creates an engine that looks up neighbors in space.
func New(space Space, opts ...Option) *Engine {
	e := &Engine{
		space:     space,
		rules:     DefaultRules(),
		objects:   make(map[int][]NodeID),
		names:     make(map[int]string),
		observers: make(map[int]Observer),
		hooks:     observability.Engine(),
		logger:    log.New(io.Discard),
		watches:   make(map[int]func()),
	}
	if c, ok := space.(interface{ Catalog() *layout.Catalog }); ok {
		e.catalog = c.Catalog()
	}
	e.graph = NewGraph(e.notify)
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		e.catalog = layout.DefaultCatalog()
	}
	return e
}

// ForGrid creates an engine over grid and attaches it, wiring every object
// already placed in one batch.
func ForGrid(grid *layout.Grid, opts ...Option) (*Engine, error) {
	e := New(grid, opts...)
	return e, e.Attach(grid)
}

// Graph exposes the underlying graph for inspection and export.
func (e *Engine) Graph() *Graph { return e.graph }

// Observe registers o for change notifications. The returned function
// removes it.
func (e *Engine) Observe(o Observer) (cancel func()) {
	id := e.nextObs
	e.nextObs++
	e.observers[id] = o
	return func() { delete(e.observers, id) }
}

// Err returns the error from the most recent sweep, if any. Sweeps started
// by grid notifications have no caller to return to, so their errors are
// kept here and logged.
func (e *Engine) Err() error { return e.lastErr }

// NodesOf returns the node IDs owned by an object, left to right.
func (e *Engine) NodesOf(objectID int) []NodeID {
	return slices.Clone(e.objects[objectID])
}

// ObjectCreated wires a new object and resolves the result.
func (e *Engine) ObjectCreated(obj *layout.Object) error {
	b := e.Suspend()
	_ = b.ObjectCreated(obj)
	return b.Resume()
}

// ObjectChanged rewires an object whose facing or recipe changed.
func (e *Engine) ObjectChanged(obj *layout.Object) error {
	b := e.Suspend()
	_ = b.ObjectChanged(obj)
	return b.Resume()
}

// ObjectMoved rewires both the old and the new neighborhood of an object.
func (e *Engine) ObjectMoved(obj *layout.Object, from geom.Point) error {
	b := e.Suspend()
	_ = b.ObjectMoved(obj, from)
	return b.Resume()
}

// ObjectRemoved discards an object's nodes and resolves the fallout.
func (e *Engine) ObjectRemoved(obj *layout.Object) error {
	b := e.Suspend()
	_ = b.ObjectRemoved(obj)
	return b.Resume()
}

// Attach subscribes the engine to grid notifications and wires every
// object already in the grid within a single batch. Attaching again
// replaces the previous subscription.
func (e *Engine) Attach(grid *layout.Grid) error {
	e.Detach()
	b := e.Suspend()
	for _, obj := range grid.Objects() {
		e.watch(grid, obj)
		_ = b.ObjectCreated(obj)
	}
	cancel := grid.Subscribe(func(ev layout.Event) {
		switch ev.Type {
		case layout.EventCreated:
			e.watch(grid, ev.Object)
			e.report(e.ObjectCreated(ev.Object))
		case layout.EventRemoved:
			e.unwatch(ev.Object.ID)
			e.report(e.ObjectRemoved(ev.Object))
		}
	})
	e.detach = func() {
		cancel()
		for _, id := range slices.Sorted(maps.Keys(e.watches)) {
			e.unwatch(id)
		}
	}
	return b.Resume()
}

// Detach stops listening to the attached grid. The graph is kept.
func (e *Engine) Detach() {
	if e.detach != nil {
		e.detach()
		e.detach = nil
	}
}

func (e *Engine) watch(grid *layout.Grid, obj *layout.Object) {
	e.unwatch(obj.ID)
	e.watches[obj.ID] = grid.Watch(obj.ID, func(ev layout.Event) {
		switch ev.Type {
		case layout.EventDirection, layout.EventRecipe:
			e.report(e.ObjectChanged(ev.Object))
		case layout.EventMoved:
			e.report(e.ObjectMoved(ev.Object, ev.From))
		}
	})
}

func (e *Engine) unwatch(id int) {
	if cancel, ok := e.watches[id]; ok {
		cancel()
		delete(e.watches, id)
	}
}

func (e *Engine) report(err error) {
	if err != nil {
		e.logger.Warn("products resolution incomplete", "err", err)
	}
}

// Products resolves every node still dirty and returns, for each object,
// its nodes' values left to right. It settles the whole graph first, so the
// result inside an open batch is what resuming the batch would produce.
func (e *Engine) Products() (map[int][]Set, error) {
	_, err := e.graph.ResolveDirty()
	out := make(map[int][]Set, len(e.objects))
	for id, nodes := range e.objects {
		sets := make([]Set, len(nodes))
		for i, n := range nodes {
			sets[i] = e.graph.nodes[n].resolved.Clone()
		}
		out[id] = sets
	}
	return out, err
}

// ObjectProducts is the resolved state of one object.
type ObjectProducts struct {
	ObjectID int            `json:"id"`
	Name     string         `json:"name"`
	Nodes    []NodeProducts `json:"nodes"`
}

// NodeProducts is the resolved state of one node.
type NodeProducts struct {
	Index  int         `json:"index"`
	Label  string      `json:"label"`
	Items  Set         `json:"items"`
	Fixed  bool        `json:"fixed,omitempty"`
	Anchor *geom.Point `json:"anchor,omitempty"`
}

// Snapshot resolves everything and returns a report ordered by object ID.
func (e *Engine) Snapshot() ([]ObjectProducts, error) {
	products, err := e.Products()
	out := make([]ObjectProducts, 0, len(products))
	for _, id := range slices.Sorted(maps.Keys(products)) {
		op := ObjectProducts{ObjectID: id, Name: e.names[id]}
		for i, nid := range e.objects[id] {
			n := e.graph.nodes[nid]
			op.Nodes = append(op.Nodes, NodeProducts{
				Index:  i,
				Label:  n.meta.Label,
				Items:  products[id][i],
				Fixed:  len(n.fixed) > 0,
				Anchor: n.meta.Anchor,
			})
		}
		out = append(out, op)
	}
	return out, err
}

func (e *Engine) notify(n *Node) {
	if len(e.observers) == 0 {
		return
	}
	c := newChange(n)
	for _, id := range slices.Sorted(maps.Keys(e.observers)) {
		e.observers[id].OnChange(c)
	}
}

func (e *Engine) sweep(batch string) error {
	dirty := e.graph.DirtyCount()
	if dirty == 0 {
		e.lastErr = nil
		return nil
	}
	e.hooks.OnSweepStart(batch, dirty)
	start := time.Now()
	resolved, err := e.graph.ResolveDirty()
	elapsed := time.Since(start)

	for _, c := range Cycles(err) {
		e.hooks.OnCycle(batch, c.Labels)
		e.logger.Warn("products cycle", "batch", batch, "path", c.Labels)
	}
	e.logger.Debug("resolved products", "batch", batch, "dirty", dirty, "resolved", resolved, "elapsed", elapsed)
	e.hooks.OnSweepComplete(batch, resolved, elapsed, err)
	e.lastErr = err
	return err
}

// Cycles extracts every [*CycleError] from an error returned by the engine.
func Cycles(err error) []*CycleError {
	var out []*CycleError
	var walk func(error)
	walk = func(err error) {
		switch x := err.(type) {
		case nil:
		case *CycleError:
			out = append(out, x)
		case interface{ Unwrap() []error }:
			for _, inner := range x.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(x.Unwrap())
		}
	}
	walk(err)
	return out
}
