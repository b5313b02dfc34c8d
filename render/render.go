// Package render is the shared-memory executor: it fills a partition's local
// buffer on a fixed pool of goroutines.
package render

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync/atomic"

	mandel "github.com/marben/dist_mandel"
	"golang.org/x/sync/errgroup"
)

// Schedule decides how the pixels of a partition are handed to the goroutines.
type Schedule int

const (
	// Static gives every goroutine one contiguous sub-range up front.
	Static Schedule = iota
	// Dynamic lets goroutines pull fixed-size chunks until none are left.
	Dynamic
	// Guided is Dynamic with chunks that shrink as the remaining work does.
	Guided
)

var scheduleNames = [...]string{
	Static:  "STATIC",
	Dynamic: "DYNAMIC",
	Guided:  "GUIDED",
}

func (s Schedule) String() string {
	if s < 0 || int(s) >= len(scheduleNames) {
		return fmt.Sprintf("Schedule(%d)", int(s))
	}
	return scheduleNames[s]
}

// ParseSchedule accepts the names printed by String, in any case.
func ParseSchedule(name string) (Schedule, error) {
	for s, n := range scheduleNames {
		if strings.EqualFold(name, n) {
			return Schedule(s), nil
		}
	}
	return 0, fmt.Errorf("unknown schedule %q (known: static, dynamic, guided)", name)
}

// DefaultChunk is the chunk size used when RendererImpl.Chunk is not set.
const DefaultChunk = 256

// RendererImpl evaluates a partition on Threads goroutines. Each pixel is
// claimed by exactly one goroutine, which writes only that pixel's slot.
type RendererImpl struct {
	// Threads <= 0 means runtime.GOMAXPROCS(0).
	Threads int

	Schedule Schedule

	// Chunk is the number of pixels a Dynamic claim takes and the smallest
	// claim Guided makes. <= 0 means DefaultChunk.
	Chunk int

	// OnPartitionRender is called before rendering starts, if set.
	OnPartitionRender func(p mandel.Partition)
}

var _ mandel.Renderer = RendererImpl{}

// RenderPartition implements mandel.Renderer.
func (imp RendererImpl) RenderPartition(ctx context.Context, job mandel.Job) (mandel.Values, error) {
	if job.Iterations < 1 {
		return nil, fmt.Errorf("iterations must be positive, got %d", job.Iterations)
	}
	p := job.Partition
	if p.Start < 0 || p.End > job.Grid.Pixels() || p.End < p.Start {
		return nil, fmt.Errorf("%s outside grid of %d pixels", p, job.Grid.Pixels())
	}
	if imp.OnPartitionRender != nil {
		imp.OnPartitionRender(p)
	}

	buf := make(mandel.Values, p.Len())
	if len(buf) == 0 {
		return buf, nil
	}

	threads := imp.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	threads = min(threads, len(buf))
	chunk := imp.Chunk
	if chunk <= 0 {
		chunk = DefaultChunk
	}

	var c claimer
	switch imp.Schedule {
	case Static:
		// the sub-ranges are relative to the buffer, not to the grid
		slices, err := mandel.Partitions(len(buf), threads)
		if err != nil {
			return nil, fmt.Errorf("split %s across %d threads: %w", p, threads, err)
		}
		c = &staticClaims{slices: slices}
	case Dynamic:
		c = &dynamicClaims{n: int64(len(buf)), chunk: int64(chunk)}
	case Guided:
		c = &guidedClaims{n: int64(len(buf)), threads: int64(threads), min: int64(chunk)}
	default:
		return nil, fmt.Errorf("unknown schedule %v", imp.Schedule)
	}

	g, ctx := errgroup.WithContext(ctx)
	for range threads {
		g.Go(func() error {
			for {
				start, end, ok := c.claim()
				if !ok {
					return nil
				}
				if err := renderRange(ctx, job.Grid, job.Iterations, p.Start, buf[start:end], start); err != nil {
					return err
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buf, nil
}

// claimer hands out disjoint [start, end) ranges of the buffer until it is covered.
type claimer interface {
	claim() (start, end int, ok bool)
}

// staticClaims gives out its precomputed sub-ranges once each.
type staticClaims struct {
	next   atomic.Int64
	slices []mandel.Partition
}

func (c *staticClaims) claim() (int, int, bool) {
	i := c.next.Add(1) - 1
	if i >= int64(len(c.slices)) {
		return 0, 0, false
	}
	s := c.slices[i]
	return s.Start, s.End, true
}

type dynamicClaims struct {
	next     atomic.Int64
	n, chunk int64
}

func (c *dynamicClaims) claim() (int, int, bool) {
	start := c.next.Add(c.chunk) - c.chunk
	if start >= c.n {
		return 0, 0, false
	}
	return int(start), int(min(start+c.chunk, c.n)), true
}

type guidedClaims struct {
	next            atomic.Int64
	n, threads, min int64
}

func (c *guidedClaims) claim() (int, int, bool) {
	for {
		start := c.next.Load()
		if start >= c.n {
			return 0, 0, false
		}
		size := max((c.n-start)/c.threads, c.min)
		end := min(start+size, c.n)
		if c.next.CompareAndSwap(start, end) {
			return int(start), int(end), true
		}
	}
}

// how many pixels are evaluated between two context checks
const checkEvery = 4096

// renderRange fills out, which holds the values of grid pixels
// base+off .. base+off+len(out).
func renderRange(ctx context.Context, grid mandel.Grid, iterations, base int, out []int, off int) error {
	for i := range out {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		out[i] = mandel.EscapeTime(grid.Point(base+off+i), iterations)
	}
	return nil
}
