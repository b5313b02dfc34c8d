//go:build !js

// Package cluster is the message-passing executor: a coordinator that computes
// rank 0 itself, hands the other partitions to worker processes connected over
// websocket and gathers their buffers in rank order.
package cluster

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	mandel "github.com/marben/dist_mandel"
	"github.com/marben/dist_mandel/wire"
	"github.com/marben/irpc"
	"golang.org/x/sync/errgroup"
)

const readHeaderTimeout = 5 * time.Second

var ErrAborted = errors.New("run aborted")

// Coordinator drives one run across Workers ranks.
type Coordinator struct {
	Grid       mandel.Grid
	Iterations int

	// Workers is the group size including the coordinator, which owns rank 0.
	Workers int

	// Renderer computes rank 0.
	Renderer mandel.Renderer

	// Timeout bounds waiting for workers to join and for each result.
	// Zero means no limit.
	Timeout time.Duration

	m      sync.Mutex
	active int
}

type peer struct {
	conn     *websocket.Conn
	ep       *irpc.Endpoint
	renderer *mandel.RendererIrpcClient
	hello    wire.Hello
	rank     int
}

// abort closes the connection with a status the worker reports as a failed
// run. The endpoint would otherwise close it normally.
func (p *peer) abort() {
	p.conn.Close(websocket.StatusInternalError, ErrAborted.Error())
	p.ep.Close()
}

func (p *peer) finish() error {
	err := p.conn.Close(websocket.StatusNormalClosure, "done")
	p.ep.Close()
	return err
}

func (c *Coordinator) job(p mandel.Partition) mandel.Job {
	return mandel.Job{
		Grid:       c.Grid,
		Iterations: c.Iterations,
		Workers:    c.Workers,
		Partition:  p,
	}
}

func (c *Coordinator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}

// Run executes the whole run and returns the assembled image. Either every
// rank contributes its buffer or Run fails, every worker is told to abort and
// no image is returned.
func (c *Coordinator) Run(ctx context.Context, l *Listener) ([]int, error) {
	parts, err := mandel.Partitions(c.Grid.Pixels(), c.Workers)
	if err != nil {
		return nil, err
	}
	gather, err := mandel.NewGather(c.Grid, parts)
	if err != nil {
		return nil, err
	}
	if c.Renderer == nil {
		return nil, errors.New("coordinator has no renderer")
	}

	peers, err := c.join(ctx, l)
	if err != nil {
		abort(peers)
		return nil, fmt.Errorf("join: %w", err)
	}
	log.Printf("all %d workers joined", len(peers))

	bufs := make([]mandel.Values, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		buf, err := c.Renderer.RenderPartition(gctx, c.job(parts[0]))
		if err != nil {
			return fmt.Errorf("rank 0: %w", err)
		}
		bufs[0] = buf
		return nil
	})
	for _, p := range peers {
		g.Go(func() error {
			buf, err := c.exchange(gctx, p, c.job(parts[p.rank]))
			if err != nil {
				return fmt.Errorf("rank %d (%s pid %d): %w", p.rank, p.hello.Host, p.hello.PID, err)
			}
			bufs[p.rank] = buf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		abort(peers)
		return nil, err
	}

	for rank, buf := range bufs {
		if err := gather.Put(rank, buf); err != nil {
			abort(peers)
			return nil, err
		}
	}
	img, err := gather.Image()
	if err != nil {
		abort(peers)
		return nil, err
	}

	for _, p := range peers {
		if err := p.finish(); err != nil {
			log.Printf("close rank %d: %v", p.rank, err)
		}
	}
	return img, nil
}

// join waits for Workers-1 workers to connect and introduce themselves.
// Ranks follow connection order. The endpoints live until Run closes them,
// so they are bound to ctx and not to the join deadline.
func (c *Coordinator) join(ctx context.Context, l *Listener) ([]*peer, error) {
	jctx, cancel := c.withTimeout(ctx)
	defer cancel()

	peers := make([]*peer, 0, c.Workers-1)
	for len(peers) < c.Workers-1 {
		conn, err := l.Accept(jctx)
		if err != nil {
			return peers, fmt.Errorf("%d of %d workers joined: %w", len(peers), c.Workers-1, err)
		}

		var hello wire.Hello
		if err := wsjson.Read(jctx, conn, &hello); err != nil {
			log.Printf("worker hello: %v", err)
			conn.CloseNow()
			continue
		}
		if hello.Version != wire.Version {
			log.Printf("worker %s pid %d speaks version %d, want %d", hello.Host, hello.PID, hello.Version, wire.Version)
			conn.Close(websocket.StatusPolicyViolation, "protocol version mismatch")
			continue
		}

		ep := irpc.NewEndpoint(websocket.NetConn(ctx, conn, websocket.MessageBinary))
		renderer, err := mandel.NewRendererIrpcClient(ep)
		if err != nil {
			conn.Close(websocket.StatusInternalError, "no renderer client")
			ep.Close()
			return peers, fmt.Errorf("renderer client: %w", err)
		}

		p := &peer{conn: conn, ep: ep, renderer: renderer, hello: hello, rank: len(peers) + 1}
		peers = append(peers, p)
		log.Printf("worker %s pid %d joined as rank %d", hello.Host, hello.PID, p.rank)
	}
	return peers, nil
}

// exchange has p render its partition and checks the buffer it returns.
// A worker that does not answer within Timeout is cut off.
func (c *Coordinator) exchange(ctx context.Context, p *peer, job mandel.Job) (mandel.Values, error) {
	c.incActiveWorker()
	defer c.decActiveWorkers()

	rctx, cancel := c.withTimeout(ctx)
	defer cancel()
	// the call alone only waits for the worker to give up on its own
	stop := context.AfterFunc(rctx, p.abort)
	defer stop()

	buf, err := p.renderer.RenderPartition(rctx, job)
	if err != nil {
		if rerr := rctx.Err(); rerr != nil {
			return nil, fmt.Errorf("render %s: %w: %v", job.Partition, rerr, err)
		}
		return nil, fmt.Errorf("render %s: %w", job.Partition, err)
	}
	if len(buf) != job.Partition.Len() {
		return nil, fmt.Errorf("%w: got %d values for %s", mandel.ErrBadBuffer, len(buf), job.Partition)
	}
	log.Printf("received %s", job.Partition)
	return buf, nil
}

// abort tells every worker the run is over without a result.
func abort(peers []*peer) {
	var wg sync.WaitGroup
	for _, p := range peers {
		wg.Go(p.abort)
	}
	wg.Wait()
}

func (c *Coordinator) incActiveWorker() {
	c.m.Lock()
	c.active++
	w := c.active
	c.m.Unlock()

	log.Printf("workers rendering: %d", w)
}

func (c *Coordinator) decActiveWorkers() {
	c.m.Lock()
	c.active--
	w := c.active
	c.m.Unlock()

	log.Printf("workers rendering: %d", w)
}
