package cluster

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync/atomic"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	mandel "github.com/marben/dist_mandel"
	"github.com/marben/dist_mandel/wire"
	"github.com/marben/irpc"
)

// Worker is the process side of the protocol: it joins a coordinator and
// serves its RenderPartition calls until the coordinator closes the
// connection.
type Worker struct {
	// URL of the coordinator's websocket endpoint, e.g. ws://localhost:8081/ws.
	URL      string
	Renderer mandel.Renderer
}

var errNoAssignment = errors.New("coordinator closed the run without assigning a partition")

// Run returns nil only if the coordinator finished the run normally after
// this worker rendered its partition.
func (w Worker) Run(ctx context.Context) error {
	conn, _, err := websocket.Dial(ctx, w.URL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", w.URL, err)
	}
	defer conn.CloseNow()

	host, _ := os.Hostname()
	if err := wsjson.Write(ctx, conn, wire.Hello{Version: wire.Version, Host: host, PID: os.Getpid()}); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}

	var rendered atomic.Bool
	svc := mandel.NewRendererIrpcService(mandel.RenderFunc(func(ctx context.Context, job mandel.Job) (mandel.Values, error) {
		if err := job.Validate(); err != nil {
			return nil, err
		}
		log.Printf("assigned %s of %d (%dx%d, %d iterations)", job.Partition, job.Workers,
			job.Grid.Width, job.Grid.Height, job.Iterations)
		buf, err := w.Renderer.RenderPartition(ctx, job)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", job.Partition, err)
		}
		rendered.Store(true)
		log.Printf("rendered %s", job.Partition)
		return buf, nil
	}))

	ep := irpc.NewEndpoint(websocket.NetConn(ctx, conn, websocket.MessageBinary), irpc.WithEndpointServices(svc))
	defer ep.Close()

	select {
	case <-ep.Context().Done():
	case <-ctx.Done():
		return context.Cause(ctx)
	}
	if err := ctx.Err(); err != nil {
		return context.Cause(ctx)
	}

	// a normal close reaches the endpoint as the counterpart hanging up
	cause := context.Cause(ep.Context())
	if !errors.Is(cause, irpc.ErrEndpointClosedByCounterpart) {
		return fmt.Errorf("coordinator ended the run: %w", cause)
	}
	if !rendered.Load() {
		return errNoAssignment
	}
	return nil
}
