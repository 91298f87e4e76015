package geom

import "testing"

func TestRotate(t *testing.T) {
	front := Pt(0, -1)
	tests := []struct {
		dir  Direction
		want Point
	}{
		{North, Pt(0, -1)},
		{East, Pt(1, 0)},
		{South, Pt(0, 1)},
		{West, Pt(-1, 0)},
		{Direction(10), Pt(1, 0)},
	}
	for _, tt := range tests {
		if got := front.Rotate(tt.dir); got != tt.want {
			t.Errorf("Rotate(%v) = %v, want %v", tt.dir, got, tt.want)
		}
	}
}

func TestRotateCW(t *testing.T) {
	tests := []struct {
		dir   Direction
		steps int
		want  Direction
	}{
		{North, 1, East},
		{North, 2, South},
		{West, 1, North},
		{North, -1, West},
		{South, 4, South},
	}
	for _, tt := range tests {
		if got := RotateCW(tt.dir, tt.steps); got != tt.want {
			t.Errorf("RotateCW(%v, %d) = %v, want %v", tt.dir, tt.steps, got, tt.want)
		}
	}
}

func TestTile(t *testing.T) {
	tests := []struct {
		p    Point
		want Tile
	}{
		{Pt(0, 0), Tile{0, 0}},
		{Pt(0.4, -0.4), Tile{0, 0}},
		{Pt(-0.6, 1.6), Tile{-1, 2}},
		{Pt(0.5, 0.5), Tile{1, 1}},
	}
	for _, tt := range tests {
		if got := tt.p.Tile(); got != tt.want {
			t.Errorf("%v.Tile() = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{"north": North, "e": East, "4": South, "west": West} {
		got, err := ParseDirection(in)
		if err != nil {
			t.Fatalf("ParseDirection(%q) error: %v", in, err)
		}
		if got != want {
			t.Errorf("ParseDirection(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseDirection("up"); err == nil {
		t.Error("ParseDirection(\"up\") should fail")
	}
}

func TestFootprint(t *testing.T) {
	tests := []struct {
		c, size Point
		lo, hi  Tile
	}{
		{Pt(0, 0), Pt(1, 1), Tile{0, 0}, Tile{0, 0}},
		{Pt(0, 0), Pt(3, 3), Tile{-1, -1}, Tile{1, 1}},
		{Pt(0.5, 0.5), Pt(2, 2), Tile{0, 0}, Tile{1, 1}},
		{Pt(4, -2), Pt(3, 1), Tile{3, -2}, Tile{5, -2}},
	}
	for _, tt := range tests {
		lo, hi := Footprint(tt.c, tt.size)
		if lo != tt.lo || hi != tt.hi {
			t.Errorf("Footprint(%v, %v) = %v..%v, want %v..%v", tt.c, tt.size, lo, hi, tt.lo, tt.hi)
		}
	}
}
