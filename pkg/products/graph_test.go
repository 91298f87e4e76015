package products

import (
	"errors"
	"testing"
)

func newTestGraph(t *testing.T, n int) (*Graph, []NodeID) {
	t.Helper()
	g := NewGraph(nil)
	ids := make([]NodeID, n)
	for i := range ids {
		ids[i] = g.AddNode(Meta{ObjectID: i + 1, Label: string(rune('a' + i))})
	}
	if _, err := g.ResolveDirty(); err != nil {
		t.Fatalf("ResolveDirty() error: %v", err)
	}
	return g, ids
}

func TestGraph_AddNodeIsDirty(t *testing.T) {
	g := NewGraph(nil)
	id := g.AddNode(Meta{})
	if !g.IsDirty(id) {
		t.Error("new node should be dirty")
	}
}

func TestGraph_ConnectIdempotent(t *testing.T) {
	g, ids := newTestGraph(t, 2)
	a, b := ids[0], ids[1]

	if err := g.Connect(a, b); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if !g.IsDirty(b) {
		t.Error("first Connect should dirty the target")
	}
	if g.IsDirty(a) {
		t.Error("Connect should not dirty the source")
	}
	g.ResolveDirty()

	if err := g.Connect(a, b); err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if g.IsDirty(b) {
		t.Error("repeated Connect should not dirty the target")
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestGraph_DisconnectIdempotent(t *testing.T) {
	g, ids := newTestGraph(t, 2)
	a, b := ids[0], ids[1]

	if err := g.Disconnect(a, b); err != nil {
		t.Fatalf("Disconnect() error: %v", err)
	}
	if g.IsDirty(b) {
		t.Error("Disconnect of a missing edge should not dirty")
	}

	g.Connect(a, b)
	g.ResolveDirty()
	g.Disconnect(a, b)
	if !g.IsDirty(b) {
		t.Error("Disconnect should dirty the target")
	}
	g.ResolveDirty()
	g.Disconnect(a, b)
	if g.IsDirty(b) {
		t.Error("repeated Disconnect should not dirty")
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
}

func TestGraph_ReplaceOutputs(t *testing.T) {
	g, ids := newTestGraph(t, 4)
	src, b, c, d := ids[0], ids[1], ids[2], ids[3]

	g.ReplaceOutputs(src, b, c)
	g.ResolveDirty()

	if err := g.ReplaceOutputs(src, c, d); err != nil {
		t.Fatalf("ReplaceOutputs() error: %v", err)
	}
	n, _ := g.Node(src)
	if got := n.Outbound(); len(got) != 2 || got[0] != c || got[1] != d {
		t.Errorf("Outbound() = %v, want [%d %d]", got, c, d)
	}
	if !g.IsDirty(b) || !g.IsDirty(d) {
		t.Error("dropped and added targets should be dirty")
	}
	if g.IsDirty(c) {
		t.Error("kept target should stay clean")
	}

	g.ResolveDirty()
	g.ReplaceOutputs(src, c, d)
	if g.DirtyCount() != 0 {
		t.Errorf("unchanged ReplaceOutputs dirtied %d nodes", g.DirtyCount())
	}

	g.ReplaceOutputs(src)
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d after clearing outputs, want 0", g.EdgeCount())
	}
}

func TestGraph_ReplaceInputs(t *testing.T) {
	g, ids := newTestGraph(t, 3)
	a, b, dst := ids[0], ids[1], ids[2]

	g.ReplaceInputs(dst, a)
	g.ResolveDirty()
	g.ReplaceInputs(dst, b)

	n, _ := g.Node(dst)
	if got := n.Inbound(); len(got) != 1 || got[0] != b {
		t.Errorf("Inbound() = %v, want [%d]", got, b)
	}
	if !g.IsDirty(dst) {
		t.Error("target should be dirty")
	}
	g.ResolveDirty()
	g.ReplaceInputs(dst, b)
	if g.IsDirty(dst) {
		t.Error("unchanged ReplaceInputs should not dirty")
	}
}

func TestGraph_SetFixed(t *testing.T) {
	g, ids := newTestGraph(t, 1)
	a := ids[0]

	g.SetFixed(a, NewSet("iron-gear"))
	if !g.IsDirty(a) {
		t.Error("SetFixed should dirty on change")
	}
	g.ResolveDirty()

	g.SetFixed(a, NewSet("iron-gear"))
	if g.IsDirty(a) {
		t.Error("SetFixed with equal membership should not dirty")
	}
	g.SetFixed(a, nil)
	if !g.IsDirty(a) {
		t.Error("clearing the override should dirty")
	}
}

func TestGraph_UnknownNode(t *testing.T) {
	g, ids := newTestGraph(t, 1)
	missing := NodeID(999)

	checks := map[string]error{
		"Connect":        g.Connect(ids[0], missing),
		"Disconnect":     g.Disconnect(missing, ids[0]),
		"ReplaceOutputs": g.ReplaceOutputs(ids[0], missing),
		"ReplaceInputs":  g.ReplaceInputs(missing),
		"SetFixed":       g.SetFixed(missing, nil),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrUnknownNode) {
			t.Errorf("%s error = %v, want ErrUnknownNode", name, err)
		}
	}
	if _, err := g.Resolve(missing); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("Resolve error = %v, want ErrUnknownNode", err)
	}
	if g.EdgeCount() != 0 {
		t.Error("failed ReplaceOutputs must not leave partial edges")
	}
}

func TestGraph_RemoveNode(t *testing.T) {
	g, ids := newTestGraph(t, 3)
	a, b, c := ids[0], ids[1], ids[2]
	g.Connect(a, b)
	g.Connect(b, c)
	g.ResolveDirty()

	g.RemoveNode(b)

	if _, ok := g.Node(b); ok {
		t.Error("removed node still present")
	}
	if g.IsDirty(b) {
		t.Error("removed node should not stay dirty")
	}
	if !g.IsDirty(c) {
		t.Error("former target should be dirty")
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
	if err := g.CheckSymmetry(); err != nil {
		t.Errorf("CheckSymmetry() = %v", err)
	}
	g.RemoveNode(b) // no-op
}

func TestGraph_SymmetryAfterMutations(t *testing.T) {
	g, ids := newTestGraph(t, 6)
	ops := []func(){
		func() { g.Connect(ids[0], ids[1]) },
		func() { g.Connect(ids[1], ids[2]) },
		func() { g.ReplaceOutputs(ids[0], ids[3], ids[4]) },
		func() { g.ReplaceInputs(ids[4], ids[1], ids[2], ids[5]) },
		func() { g.Disconnect(ids[1], ids[2]) },
		func() { g.Connect(ids[5], ids[5]) },
		func() { g.RemoveNode(ids[3]) },
		func() { g.ReplaceOutputs(ids[5]) },
	}
	for i, op := range ops {
		op()
		if err := g.CheckSymmetry(); err != nil {
			t.Fatalf("after op %d: CheckSymmetry() = %v", i, err)
		}
	}
}

func TestGraph_CheckSymmetryDetectsCorruption(t *testing.T) {
	g, ids := newTestGraph(t, 2)
	n, _ := g.Node(ids[0])
	n.outbound[ids[1]] = struct{}{}

	if err := g.CheckSymmetry(); !errors.Is(err, ErrAsymmetricEdge) {
		t.Errorf("CheckSymmetry() = %v, want ErrAsymmetricEdge", err)
	}
}
