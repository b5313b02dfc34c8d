package mandel

import (
	"errors"
	"slices"
	"testing"
)

func renderAll(t *testing.T, grid Grid, iterations int, p Partition) []int {
	t.Helper()
	buf := make([]int, p.Len())
	for pos := p.Start; pos < p.End; pos++ {
		buf[pos-p.Start] = EscapeTime(grid.Point(pos), iterations)
	}
	return buf
}

func TestGatherIsIndependentOfWorkerCount(t *testing.T) {
	grid, err := NewGrid(FullWindow, 7)
	if err != nil {
		t.Fatal(err)
	}
	whole := renderAll(t, grid, 80, Partition{End: grid.Pixels()})

	for _, workers := range []int{1, 2, 3, 5, 8, 13} {
		parts, err := Partitions(grid.Pixels(), workers)
		if err != nil {
			t.Fatal(err)
		}
		g, err := NewGather(grid, parts)
		if err != nil {
			t.Fatal(err)
		}
		// buffers arrive in reverse rank order
		for i := len(parts) - 1; i >= 0; i-- {
			if err := g.Put(parts[i].Rank, renderAll(t, grid, 80, parts[i])); err != nil {
				t.Fatal(err)
			}
		}
		img, err := g.Image()
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(img, whole) {
			t.Errorf("%d workers: image differs from the single worker one", workers)
		}
	}
}

func TestGatherRefusesIncompleteImage(t *testing.T) {
	grid, err := NewGrid(FullWindow, 2)
	if err != nil {
		t.Fatal(err)
	}
	parts, err := Partitions(grid.Pixels(), 3)
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewGather(grid, parts)
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Put(0, make([]int, parts[0].Len())); err != nil {
		t.Fatal(err)
	}
	if err := g.Put(2, make([]int, parts[2].Len())); err != nil {
		t.Fatal(err)
	}

	img, err := g.Image()
	if !errors.Is(err, ErrIncomplete) || img != nil {
		t.Fatalf("Image() = %v, %v; want nil, ErrIncomplete", img, err)
	}
	if got := g.Missing(); !slices.Equal(got, []int{1}) {
		t.Errorf("Missing() = %v, want [1]", got)
	}
}

func TestGatherPutErrors(t *testing.T) {
	grid, err := NewGrid(FullWindow, 2)
	if err != nil {
		t.Fatal(err)
	}
	parts, err := Partitions(grid.Pixels(), 2)
	if err != nil {
		t.Fatal(err)
	}
	g, err := NewGather(grid, parts)
	if err != nil {
		t.Fatal(err)
	}

	if err := g.Put(2, make([]int, 12)); !errors.Is(err, ErrBadBuffer) {
		t.Errorf("unknown rank: %v", err)
	}
	if err := g.Put(0, make([]int, 11)); !errors.Is(err, ErrBadBuffer) {
		t.Errorf("short buffer: %v", err)
	}
	if err := g.Put(0, make([]int, 12)); err != nil {
		t.Fatal(err)
	}
	if err := g.Put(0, make([]int, 12)); !errors.Is(err, ErrBadBuffer) {
		t.Errorf("duplicate rank: %v", err)
	}
}

func TestNewGatherRejectsGaps(t *testing.T) {
	grid, err := NewGrid(FullWindow, 2)
	if err != nil {
		t.Fatal(err)
	}
	parts := []Partition{{Rank: 0, Start: 0, End: 10}, {Rank: 1, Start: 12, End: 24}}
	if _, err := NewGather(grid, parts); !errors.Is(err, ErrPartition) {
		t.Errorf("gap accepted: %v", err)
	}
	parts = []Partition{{Rank: 0, Start: 0, End: 20}}
	if _, err := NewGather(grid, parts); !errors.Is(err, ErrPartition) {
		t.Errorf("short cover accepted: %v", err)
	}
}
