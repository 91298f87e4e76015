package products

import (
	"encoding/json"
	"testing"
)

func TestNewSet_DropsEmpty(t *testing.T) {
	s := NewSet("b", "", "a", "b")
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
	if s.Has("") {
		t.Error("empty item should be dropped")
	}
	if got := s.String(); got != "{a, b}" {
		t.Errorf("String() = %q, want %q", got, "{a, b}")
	}
}

func TestSet_Equal(t *testing.T) {
	tests := []struct {
		name string
		a, b Set
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil and empty", nil, NewSet(), true},
		{"same items", NewSet("x", "y"), NewSet("y", "x"), true},
		{"subset", NewSet("x"), NewSet("x", "y"), false},
		{"disjoint", NewSet("x"), NewSet("y"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSet_CloneIsIndependent(t *testing.T) {
	var nilSet Set
	if c := nilSet.Clone(); c == nil {
		t.Error("Clone() of nil should be an empty set")
	}

	s := NewSet("x")
	c := s.Clone()
	c["y"] = struct{}{}
	if s.Has("y") {
		t.Error("mutating a clone changed the original")
	}
}

func TestSet_JSON(t *testing.T) {
	data, err := json.Marshal(NewSet("plate", "gear"))
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if string(data) != `["gear","plate"]` {
		t.Errorf("Marshal() = %s", data)
	}

	data, _ = json.Marshal(Set(nil))
	if string(data) != `[]` {
		t.Errorf("Marshal(nil) = %s, want []", data)
	}

	var s Set
	if err := json.Unmarshal([]byte(`["a","","b"]`), &s); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if !s.Equal(NewSet("a", "b")) {
		t.Errorf("Unmarshal() = %v", s)
	}
}
