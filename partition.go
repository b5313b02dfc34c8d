package mandel

import (
	"errors"
	"fmt"
)

// Partition is the half-open range [Start, End) of linearized pixel indices
// owned by one worker.
type Partition struct {
	Rank  int
	Start int
	End   int
}

// Len is the number of pixels in the partition.
func (p Partition) Len() int {
	return p.End - p.Start
}

func (p Partition) String() string {
	return fmt.Sprintf("rank %d [%d,%d)", p.Rank, p.Start, p.End)
}

var ErrPartition = errors.New("invalid partition")

// PartitionOf returns the contiguous range owned by rank when total pixels are
// split across workers. Every rank gets total/workers pixels; the last rank
// also takes the total%workers remainder so the ranges always cover [0, total).
func PartitionOf(total, workers, rank int) (Partition, error) {
	switch {
	case total < 0:
		return Partition{}, fmt.Errorf("%w: negative pixel count %d", ErrPartition, total)
	case workers <= 0:
		return Partition{}, fmt.Errorf("%w: worker count %d is not positive", ErrPartition, workers)
	case workers > total:
		return Partition{}, fmt.Errorf("%w: %d workers for %d pixels leaves some of them idle", ErrPartition, workers, total)
	case rank < 0 || rank >= workers:
		return Partition{}, fmt.Errorf("%w: rank %d outside [0,%d)", ErrPartition, rank, workers)
	}

	per := total / workers
	p := Partition{
		Rank:  rank,
		Start: rank * per,
		End:   (rank + 1) * per,
	}
	if rank == workers-1 {
		p.End = total
	}
	return p, nil
}

// Partitions returns the partitions of every rank, in rank order.
func Partitions(total, workers int) ([]Partition, error) {
	if _, err := PartitionOf(total, workers, 0); err != nil {
		return nil, err
	}
	parts := make([]Partition, workers)
	for rank := range parts {
		p, err := PartitionOf(total, workers, rank)
		if err != nil {
			return nil, err
		}
		parts[rank] = p
	}
	return parts, nil
}
