package mandel

import (
	"context"
	"fmt"
)

// Job is everything a worker needs to compute its share of the image.
type Job struct {
	Grid       Grid
	Iterations int
	Workers    int
	Partition  Partition
}

// Validate checks that the job describes a real partition of a real grid.
// The grid is derived again from its window and resolution, so a job that
// crossed a process boundary cannot smuggle in a foreign geometry.
func (j Job) Validate() error {
	grid, err := NewGrid(j.Grid.Window, j.Grid.Resolution)
	if err != nil {
		return fmt.Errorf("job grid: %w", err)
	}
	if grid != j.Grid {
		return fmt.Errorf("job grid %dx%d step %g disagrees with its window", j.Grid.Width, j.Grid.Height, j.Grid.Step)
	}
	want, err := PartitionOf(grid.Pixels(), j.Workers, j.Partition.Rank)
	if err != nil {
		return fmt.Errorf("job partition: %w", err)
	}
	if want != j.Partition {
		return fmt.Errorf("job %s disagrees with %s", j.Partition, want)
	}
	if j.Iterations < 1 {
		return fmt.Errorf("job iterations %d not positive", j.Iterations)
	}
	return nil
}

//go:generate go run github.com/marben/irpc/cmd/irpc api.go

// Renderer computes the local buffer of one partition:
// buf[pos-Start] = EscapeTime(Grid.Point(pos), Iterations) for pos in [Start, End).
type Renderer interface {
	RenderPartition(ctx context.Context, job Job) (Values, error)
}

// RenderFunc adapts a plain function to Renderer.
type RenderFunc func(ctx context.Context, job Job) (Values, error)

func (f RenderFunc) RenderPartition(ctx context.Context, job Job) (Values, error) {
	return f(ctx, job)
}
