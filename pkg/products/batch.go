package products

import (
	"errors"

	"github.com/google/uuid"

	"github.com/matzehuels/beltflow/pkg/geom"
	"github.com/matzehuels/beltflow/pkg/layout"
)

// ErrBatchClosed is returned when a batch is used after Resume.
var ErrBatchClosed = errors.New("batch already resumed")

// Batch collects topology edits without resolving them. Edits still mark
// nodes dirty; the outermost Resume resolves everything that is dirty in
// one sweep. Batches nest: an inner Resume only closes the inner batch.
type Batch struct {
	e      *Engine
	id     string
	closed bool
}

// Suspend opens a batch. Resolution is deferred until every open batch has
// been resumed.
func (e *Engine) Suspend() *Batch {
	if e.depth == 0 {
		e.batchID = uuid.NewString()
	}
	e.depth++
	return &Batch{e: e, id: e.batchID}
}

// Suspended reports whether a batch is open.
func (e *Engine) Suspended() bool { return e.depth > 0 }

// ID returns the identifier shared by this batch and every batch nested in
// the same outermost batch. It appears in logs and hook calls.
func (b *Batch) ID() string { return b.id }

// ObjectCreated wires a new object and its neighborhood.
func (b *Batch) ObjectCreated(obj *layout.Object) error {
	if b.closed {
		return ErrBatchClosed
	}
	b.e.rescan(obj, obj.Position)
	return nil
}

// ObjectChanged rewires an object whose facing or recipe changed, along
// with its neighborhood.
func (b *Batch) ObjectChanged(obj *layout.Object) error {
	if b.closed {
		return ErrBatchClosed
	}
	b.e.rescan(obj, obj.Position)
	return nil
}

// ObjectMoved rewires the neighborhood the object left and the one it
// entered.
func (b *Batch) ObjectMoved(obj *layout.Object, from geom.Point) error {
	if b.closed {
		return ErrBatchClosed
	}
	b.e.rescan(obj, from)
	b.e.rescan(obj, obj.Position)
	return nil
}

// ObjectRemoved discards the object's nodes. Every former neighbor of
// those nodes becomes dirty.
func (b *Batch) ObjectRemoved(obj *layout.Object) error {
	if b.closed {
		return ErrBatchClosed
	}
	b.e.discard(obj.ID)
	return nil
}

// Resume closes the batch. Closing the outermost batch resolves every dirty
// node and returns any cycle errors found.
func (b *Batch) Resume() error {
	if b.closed {
		return ErrBatchClosed
	}
	b.closed = true
	b.e.depth--
	if b.e.depth > 0 {
		return nil
	}
	return b.e.sweep(b.id)
}
