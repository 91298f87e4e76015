package layout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/beltflow/pkg/errors"
	"github.com/matzehuels/beltflow/pkg/geom"
)

func TestReadJSON(t *testing.T) {
	src := `{"objects": [
		{"id": 4, "name": "assembling_machine", "x": 0, "y": -2, "recipe": "iron-gear"},
		{"name": "inserter", "x": 0, "y": 0},
		{"id": 9, "name": "transport_belt", "x": 0, "y": 1, "direction": 2}
	]}`
	g, err := ReadJSON(strings.NewReader(src), nil)
	if err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	if g.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", g.Len())
	}
	ins, ok := g.Object(5)
	if !ok || ins.Name != "inserter" {
		t.Errorf("Object(5) = %v, want the inserter", ins)
	}
	belt, _ := g.Object(9)
	if belt.Direction != geom.East {
		t.Errorf("belt Direction = %v, want east", belt.Direction)
	}
}

func TestReadJSON_Errors(t *testing.T) {
	if _, err := ReadJSON(strings.NewReader(`{`), nil); !errors.Is(err, errors.ErrCodeInvalidLayout) {
		t.Errorf("malformed JSON error = %v, want INVALID_LAYOUT", err)
	}
	_, err := ReadJSON(strings.NewReader(`{"objects":[{"name":"nope","x":0,"y":0}]}`), nil)
	if !errors.Is(err, errors.ErrCodeUnknownPrototype) {
		t.Errorf("error = %v, want UNKNOWN_PROTOTYPE", err)
	}
}

func TestWriteJSON_RoundTrip(t *testing.T) {
	g := NewGrid(nil)
	_, _ = g.Place("transport_belt", geom.Pt(2, 3), geom.West)
	a, _ := g.Place("assembling_machine", geom.Pt(10, 10), geom.North)
	_ = g.SetRecipe(a.ID, "copper-cable")

	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		t.Fatalf("WriteJSON error: %v", err)
	}
	back, err := ReadJSON(&buf, nil)
	if err != nil {
		t.Fatalf("ReadJSON error: %v", err)
	}
	got, _ := back.Object(a.ID)
	if got.Recipe != "copper-cable" || got.Position != geom.Pt(10, 10) {
		t.Errorf("round trip = %+v", got)
	}
	belt, _ := back.Object(1)
	if belt.Direction != geom.West {
		t.Errorf("belt direction = %v, want west", belt.Direction)
	}
}
