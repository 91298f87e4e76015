package cli

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/beltflow/pkg/geom"
	"github.com/matzehuels/beltflow/pkg/layout"
	"github.com/matzehuels/beltflow/pkg/products"
)

func gearGrid(t *testing.T) *layout.Grid {
	t.Helper()
	g := layout.NewGrid(nil)
	for _, o := range []layout.Object{
		{Name: "assembling_machine", Position: geom.Pt(0, -2), Recipe: "iron-gear"},
		{Name: "inserter", Position: geom.Pt(0, 0), Direction: geom.North},
		{Name: "transport_belt", Position: geom.Pt(0, 1), Direction: geom.East},
	} {
		if _, err := g.Add(o); err != nil {
			t.Fatalf("Add(%s): %v", o.Name, err)
		}
	}
	return g
}

func newTestWatch(t *testing.T) watchModel {
	t.Helper()
	grid := gearGrid(t)
	engine, err := products.ForGrid(grid)
	if err != nil {
		t.Fatalf("ForGrid: %v", err)
	}
	t.Cleanup(engine.Detach)
	return newWatchModel(grid, engine, filepath.Join(t.TempDir(), "layout.json"))
}

func press(m watchModel, keys ...tea.KeyMsg) watchModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(watchModel)
	}
	return m
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func beltLeft(t *testing.T, m watchModel) products.Set {
	t.Helper()
	got, err := m.engine.Products()
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	return got[3][0]
}

func TestWatch_RotateInserter(t *testing.T) {
	m := newTestWatch(t)
	if !beltLeft(t, m).Has("iron-gear") {
		t.Fatalf("belt left lane = %v, want iron-gear", beltLeft(t, m))
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyDown}, runeKey("r"))

	ins, _ := m.grid.Object(2)
	if ins.Direction != geom.East {
		t.Errorf("inserter facing %v, want east", ins.Direction)
	}
	if beltLeft(t, m).Len() != 0 {
		t.Errorf("belt left lane = %v, want empty", beltLeft(t, m))
	}
	if m.touched == 0 {
		t.Error("rotation should re-resolve at least one node")
	}
	if !strings.Contains(m.status, "re-resolved") {
		t.Errorf("status = %q", m.status)
	}

	m = press(m, runeKey("R"))
	if !beltLeft(t, m).Has("iron-gear") {
		t.Error("rotating back should restore the belt")
	}
}

func TestWatch_CycleRecipe(t *testing.T) {
	m := newTestWatch(t)
	if got := m.recipes; len(got) != 2 || got[0] != "" || got[1] != "iron-gear" {
		t.Fatalf("recipes = %q", got)
	}

	m = press(m, runeKey("n"))
	asm, _ := m.grid.Object(1)
	if asm.Recipe != "" {
		t.Errorf("recipe = %q, want empty", asm.Recipe)
	}
	if beltLeft(t, m).Len() != 0 {
		t.Errorf("belt left lane = %v, want empty", beltLeft(t, m))
	}

	m = press(m, runeKey("p"))
	if asm.Recipe != "iron-gear" {
		t.Errorf("recipe = %q, want iron-gear", asm.Recipe)
	}
}

func TestWatch_RemoveClampsCursor(t *testing.T) {
	m := newTestWatch(t)
	m = press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, runeKey("x"))

	if m.grid.Len() != 2 {
		t.Fatalf("objects = %d, want 2", m.grid.Len())
	}
	if m.Cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.Cursor)
	}

	// Down past the end is a no-op.
	m = press(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.Cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.Cursor)
	}
}

func TestWatch_Save(t *testing.T) {
	m := newTestWatch(t)
	m = press(m, tea.KeyMsg{Type: tea.KeyDown}, runeKey("r"), runeKey("w"))

	if m.saved != m.path {
		t.Fatalf("saved = %q, want %q", m.saved, m.path)
	}
	g, err := layout.ImportJSON(m.path, nil)
	if err != nil {
		t.Fatalf("ImportJSON: %v", err)
	}
	ins, ok := g.Object(2)
	if !ok || ins.Direction != geom.East {
		t.Errorf("saved inserter = %v", ins)
	}
}

func TestWatch_Quit(t *testing.T) {
	m := newTestWatch(t)
	_, cmd := m.Update(runeKey("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestWatch_View(t *testing.T) {
	m := newTestWatch(t)
	view := m.View()
	for _, want := range []string{"Products", "assembling_machine", "inserter", "transport_belt", "{iron-gear}", "[1/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
