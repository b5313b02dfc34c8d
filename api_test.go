package mandel

import (
	"context"
	"errors"
	"net"
	"slices"
	"strings"
	"testing"

	"github.com/marben/irpc"
)

func testJob(t *testing.T, workers, rank int) Job {
	t.Helper()
	grid, err := NewGrid(FullWindow, 4)
	if err != nil {
		t.Fatal(err)
	}
	p, err := PartitionOf(grid.Pixels(), workers, rank)
	if err != nil {
		t.Fatal(err)
	}
	return Job{Grid: grid, Iterations: 30, Workers: workers, Partition: p}
}

func TestJobValidate(t *testing.T) {
	if err := testJob(t, 3, 1).Validate(); err != nil {
		t.Fatalf("valid job: %v", err)
	}

	tests := []struct {
		name   string
		mangle func(j *Job)
	}{
		{"height", func(j *Job) { j.Grid.Height++ }},
		{"step", func(j *Job) { j.Grid.Step *= 2 }},
		{"resolution", func(j *Job) { j.Grid.Resolution = 0 }},
		{"partition end", func(j *Job) { j.Partition.End++ }},
		{"rank", func(j *Job) { j.Partition.Rank = 2 }},
		{"workers", func(j *Job) { j.Workers = 0 }},
		{"iterations", func(j *Job) { j.Iterations = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := testJob(t, 3, 1)
			tt.mangle(&j)
			if err := j.Validate(); err == nil {
				t.Errorf("job %+v accepted", j)
			}
		})
	}
}

// pipeRenderer serves impl on one end of a pipe and returns a client on the other.
func pipeRenderer(t *testing.T, impl Renderer) *RendererIrpcClient {
	t.Helper()
	a, b := net.Pipe()
	server := irpc.NewEndpoint(a, irpc.WithEndpointServices(NewRendererIrpcService(impl)))
	client := irpc.NewEndpoint(b)
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	c, err := NewRendererIrpcClient(client)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRendererOverIrpc(t *testing.T) {
	var seen Job
	c := pipeRenderer(t, RenderFunc(func(_ context.Context, job Job) (Values, error) {
		seen = job
		buf := make(Values, job.Partition.Len())
		for i := range buf {
			buf[i] = EscapeTime(job.Grid.Point(job.Partition.Start+i), job.Iterations)
		}
		return buf, nil
	}))

	job := testJob(t, 3, 2)
	got, err := c.RenderPartition(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	if seen != job {
		t.Errorf("remote saw %+v, want %+v", seen, job)
	}
	want := make([]int, job.Partition.Len())
	for i := range want {
		want[i] = EscapeTime(job.Grid.Point(job.Partition.Start+i), job.Iterations)
	}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRendererOverIrpcError(t *testing.T) {
	c := pipeRenderer(t, RenderFunc(func(context.Context, Job) (Values, error) {
		return nil, errors.New("out of memory")
	}))
	_, err := c.RenderPartition(context.Background(), testJob(t, 1, 0))
	if err == nil || !strings.Contains(err.Error(), "out of memory") {
		t.Errorf("error = %v, want the remote error text", err)
	}
}

func TestValuesUnmarshalRejectsOversizedFrame(t *testing.T) {
	frame, err := Values{1, 2, 3}.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	// announce more values than any grid can hold
	for i := 4; i < 12; i++ {
		frame[i] = 0xff
	}
	var v Values
	if err := v.UnmarshalBinary(frame); err == nil {
		t.Errorf("decoded %d values from a forged frame", len(v))
	}
}
