package mandel

import (
	"errors"
	"fmt"
)

var (
	ErrIncomplete = errors.New("not every worker reported its buffer")
	ErrBadBuffer  = errors.New("bad worker buffer")
)

// Gather collects the local buffers of every rank and assembles them into the
// global image. A Gather belongs to the coordinator alone and is not safe for
// concurrent use; workers only ever see their own buffers.
type Gather struct {
	grid  Grid
	parts []Partition
	bufs  [][]int
}

// NewGather prepares a gather for parts, which must be the rank-ordered
// decomposition of grid returned by Partitions.
func NewGather(grid Grid, parts []Partition) (*Gather, error) {
	next := 0
	for i, p := range parts {
		if p.Rank != i || p.Start != next || p.End < p.Start {
			return nil, fmt.Errorf("%w: %s does not follow pixel %d", ErrPartition, p, next)
		}
		next = p.End
	}
	if next != grid.Pixels() {
		return nil, fmt.Errorf("%w: partitions cover %d of %d pixels", ErrPartition, next, grid.Pixels())
	}
	return &Gather{
		grid:  grid,
		parts: parts,
		bufs:  make([][]int, len(parts)),
	}, nil
}

// Put records the buffer computed by rank.
func (g *Gather) Put(rank int, buf []int) error {
	if rank < 0 || rank >= len(g.parts) {
		return fmt.Errorf("%w: unknown rank %d", ErrBadBuffer, rank)
	}
	if g.bufs[rank] != nil {
		return fmt.Errorf("%w: rank %d reported twice", ErrBadBuffer, rank)
	}
	if want := g.parts[rank].Len(); len(buf) != want {
		return fmt.Errorf("%w: rank %d sent %d values, want %d", ErrBadBuffer, rank, len(buf), want)
	}
	g.bufs[rank] = buf
	return nil
}

// Missing returns the ranks that have not reported yet.
func (g *Gather) Missing() []int {
	var missing []int
	for rank, b := range g.bufs {
		if b == nil {
			missing = append(missing, rank)
		}
	}
	return missing
}

// Image concatenates the buffers in rank order. It refuses to build an image
// while any rank is missing.
func (g *Gather) Image() ([]int, error) {
	if missing := g.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing ranks %v", ErrIncomplete, missing)
	}
	img := make([]int, g.grid.Pixels())
	for rank, b := range g.bufs {
		copy(img[g.parts[rank].Start:], b)
	}
	return img, nil
}
