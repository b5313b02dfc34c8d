package mandel

import "testing"

func TestEscapeTime(t *testing.T) {
	tests := []struct {
		name    string
		c       complex128
		maxIter int
		want    int
	}{
		{"origin never escapes", 0, 1000, NotEscaped},
		{"origin with one iteration", 0, 1, NotEscaped},
		{"two escapes at once", 2, 50, 1},
		{"minus two escapes at once", -2, 50, 1},
		{"one escapes on second step", 1, 50, 2},
		{"half escapes on fifth step", 0.5, 50, 5},
		{"half with too small budget", 0.5, 4, NotEscaped},
		{"minus one cycles", -1, 500, NotEscaped},
		{"i cycles", 1i, 500, NotEscaped},
		{"far away", 10 + 10i, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeTime(tt.c, tt.maxIter); got != tt.want {
				t.Errorf("EscapeTime(%v, %d) = %d, want %d", tt.c, tt.maxIter, got, tt.want)
			}
		})
	}
}

func TestEscapeTimeDeterministic(t *testing.T) {
	grid, err := NewGrid(FullWindow, 20)
	if err != nil {
		t.Fatal(err)
	}
	for pos := 0; pos < grid.Pixels(); pos++ {
		c := grid.Point(pos)
		first := EscapeTime(c, 200)
		for range 3 {
			if got := EscapeTime(c, 200); got != first {
				t.Fatalf("pixel %d: EscapeTime flipped from %d to %d", pos, first, got)
			}
		}
		if first < 0 || first > 200 {
			t.Fatalf("pixel %d: %d outside [0,200]", pos, first)
		}
	}
}
