// cliclient is a worker process of the distributed Mandelbrot matrix.
// It joins the coordinator and serves its RenderPartition call with all local
// cores.

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	mandel "github.com/marben/dist_mandel"
	"github.com/marben/dist_mandel/cluster"
	"github.com/marben/dist_mandel/render"
)

// main is the entry point for the worker.
// It runs the worker logic and logs any fatal errors.
func main() {
	url := flag.String("url", "ws://localhost:8081/ws", "websocket endpoint of the coordinator")
	threads := flag.Int("threads", 0, "goroutines rendering the partition (0: GOMAXPROCS)")
	scheduleName := flag.String("schedule", "dynamic", "how pixels are handed to the goroutines: static, dynamic or guided")
	flag.Parse()

	log.SetPrefix("[worker " + *url + "] ")
	if *threads < 0 {
		log.Fatalf("FATAL: -threads must not be negative, got %d", *threads)
	}
	schedule, err := render.ParseSchedule(*scheduleName)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	w := cluster.Worker{
		URL: *url,
		Renderer: render.RendererImpl{
			Threads:           *threads,
			Schedule:          schedule,
			OnPartitionRender: func(p mandel.Partition) { log.Printf("Rendering %s", p) },
		},
	}
	if err := w.Run(ctx); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	log.Printf("done")
}
