package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/beltflow/pkg/errors"
	"github.com/matzehuels/beltflow/pkg/geom"
)

func TestGrid_PlaceAndLookup(t *testing.T) {
	g := NewGrid(nil)

	asm, err := g.Place("assembling_machine", geom.Pt(0, -2), geom.North)
	require.NoError(t, err)
	ins, err := g.Place("inserter", geom.Pt(0, 0), geom.North)
	require.NoError(t, err)

	assert.Equal(t, 1, asm.ID)
	assert.Equal(t, 2, ins.ID)
	assert.Equal(t, KindAssembler, asm.Kind())

	for _, p := range []geom.Point{geom.Pt(-1, -3), geom.Pt(1, -1), geom.Pt(0.3, -2.4)} {
		got, ok := g.At(p)
		require.True(t, ok, "At(%v)", p)
		assert.Same(t, asm, got)
	}
	got, ok := g.At(geom.Pt(0, 0))
	require.True(t, ok)
	assert.Same(t, ins, got)

	_, ok = g.At(geom.Pt(0, 1))
	assert.False(t, ok)
}

func TestGrid_AddErrors(t *testing.T) {
	g := NewGrid(nil)
	_, err := g.Place("assembling_machine", geom.Pt(0, 0), geom.North)
	require.NoError(t, err)

	_, err = g.Place("inserter", geom.Pt(1, 1), geom.North)
	assert.True(t, errors.Is(err, errors.ErrCodeOccupied), "overlap: %v", err)

	_, err = g.Place("rocket_silo", geom.Pt(10, 10), geom.North)
	assert.True(t, errors.Is(err, errors.ErrCodeUnknownPrototype), "prototype: %v", err)

	_, err = g.Add(Object{ID: 1, Name: "inserter", Position: geom.Pt(5, 5)})
	assert.True(t, errors.Is(err, errors.ErrCodeDuplicateObject), "duplicate: %v", err)
}

func TestGrid_Events(t *testing.T) {
	g := NewGrid(nil)

	var all []EventType
	cancel := g.Subscribe(func(ev Event) { all = append(all, ev.Type) })
	defer cancel()

	obj, err := g.Place("transport_belt", geom.Pt(0, 0), geom.North)
	require.NoError(t, err)

	var watched []EventType
	g.Watch(obj.ID, func(ev Event) { watched = append(watched, ev.Type) })

	require.NoError(t, g.Rotate(obj.ID, geom.East))
	require.NoError(t, g.Rotate(obj.ID, geom.East)) // no change, no event
	require.NoError(t, g.SetRecipe(obj.ID, "x"))
	require.NoError(t, g.Move(obj.ID, geom.Pt(3, 0)))
	require.NoError(t, g.Remove(obj.ID))

	assert.Equal(t, []EventType{EventCreated, EventDirection, EventRecipe, EventMoved, EventRemoved}, all)
	assert.Equal(t, []EventType{EventDirection, EventRecipe, EventMoved, EventRemoved}, watched)

	_, ok := g.At(geom.Pt(3, 0))
	assert.False(t, ok)
	assert.True(t, errors.Is(g.Remove(obj.ID), errors.ErrCodeNotFound))
}

func TestGrid_MoveBlocked(t *testing.T) {
	g := NewGrid(nil)
	a, _ := g.Place("inserter", geom.Pt(0, 0), geom.North)
	_, _ = g.Place("inserter", geom.Pt(1, 0), geom.North)

	err := g.Move(a.ID, geom.Pt(1, 0))
	assert.True(t, errors.Is(err, errors.ErrCodeOccupied))

	got, ok := g.At(geom.Pt(0, 0))
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, geom.Pt(0, 0), a.Position)
}

func TestGrid_WatchCancel(t *testing.T) {
	g := NewGrid(nil)
	obj, _ := g.Place("inserter", geom.Pt(0, 0), geom.North)

	calls := 0
	cancel := g.Watch(obj.ID, func(Event) { calls++ })
	require.NoError(t, g.Rotate(obj.ID, geom.South))
	cancel()
	require.NoError(t, g.Rotate(obj.ID, geom.West))

	assert.Equal(t, 1, calls)
}
