package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	mandel "github.com/marben/dist_mandel"
	"github.com/marben/dist_mandel/cluster"
	"github.com/marben/dist_mandel/config"
	"github.com/marben/dist_mandel/matrix"
	"github.com/marben/dist_mandel/render"
	"github.com/marben/dist_mandel/runlog"
)

// main is the entry point of the coordinator.
// The coordinator computes rank 0 itself; every other rank is rendered by a
// cliclient process connected over websocket.
func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Printf("run: %v", err)
		os.Exit(config.ExitCode(err))
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	workers := fs.Int("workers", 1, "number of ranks, coordinator included")
	threads := fs.Int("threads", 0, "goroutines rendering rank 0 (0: GOMAXPROCS)")
	addr := fs.String("addr", ":8081", "listen address of the websocket endpoint")
	spawn := fs.String("spawn", "", "path of the cliclient binary; if set, workers-1 local worker processes are started")
	static := fs.String("static", "", "directory with the wasm worker page to serve on /")
	timeout := fs.Duration("timeout", time.Minute, "limit for workers to join and for each result (0: none)")
	verify := fs.Bool("verify", false, "read the written matrix back and compare it with the image")
	window := fs.String("window", "full", fmt.Sprintf("region of the plane, one of %v", mandel.WindowNames()))
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [flags] <output_file> <iterations> <resolution>\n", fs.Name())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %v", config.ErrUsage, err)
	}

	cfg, err := config.Parse(fs.Args())
	if err != nil {
		fs.Usage()
		return err
	}
	cfg.Workers = *workers
	cfg.Threads = *threads
	if cfg.Window, err = mandel.WindowByName(*window); err != nil {
		return fmt.Errorf("%w: %v", config.ErrUsage, err)
	}
	grid, err := cfg.Validate()
	if err != nil {
		return err
	}

	log.Printf("Number of nodes: %d", cfg.Workers)
	log.Printf("Resolution: %d (%dx%d pixels, step %g)", cfg.Resolution, grid.Width, grid.Height, grid.Step)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	img, elapsed, err := coordinate(ctx, cfg, grid, *addr, *spawn, *static, *timeout)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrCoordination, err)
	}
	log.Printf("Time elapsed: %.2f seconds.", elapsed.Seconds())

	if err := matrix.WriteFile(cfg.Output, img, grid.Width); err != nil {
		return fmt.Errorf("%w: %w", config.ErrWrite, err)
	}
	log.Printf("matrix saved to %q", cfg.Output)
	if *verify {
		if err := matrix.Verify(cfg.Output, img, grid.Width); err != nil {
			return fmt.Errorf("%w: %w", config.ErrWrite, err)
		}
		log.Printf("verified %q", cfg.Output)
	}

	rec := runlog.Record{
		Time:       time.Now(),
		Program:    filepath.Base(os.Args[0]),
		Iterations: cfg.Iterations,
		Resolution: cfg.Resolution,
		Width:      grid.Width,
		Height:     grid.Height,
		Step:       grid.Step,
		Scheduling: "MPI",
		Workers:    cfg.Workers,
		Elapsed:    elapsed,
	}
	if err := runlog.Save(cfg.Output, "_cluster_", rec); err != nil {
		log.Printf("run metadata: %v", err)
	}
	return nil
}

// coordinate serves the websocket endpoint for as long as the run lasts and
// gathers the image.
func coordinate(ctx context.Context, cfg config.Config, grid mandel.Grid, addr, spawn, static string, timeout time.Duration) ([]int, time.Duration, error) {
	tcpListener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, 0, fmt.Errorf("net.Listen: %w", err)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l := cluster.NewListener(ctx)
	defer l.Close()
	go func() {
		if err := cluster.Serve(ctx, tcpListener, l, static); err != nil {
			log.Printf("websocket server: %v", err)
		}
	}()

	url := "ws://" + tcpListener.Addr().String() + "/ws"
	log.Printf("waiting for %d workers on %s", cfg.Workers-1, url)

	var procs *cluster.Procs
	if spawn != "" && cfg.Workers > 1 {
		procs, err = cluster.Spawn(ctx, spawn, url, cfg.Workers-1)
		if err != nil {
			return nil, 0, err
		}
	}

	coord := &cluster.Coordinator{
		Grid:       grid,
		Iterations: cfg.Iterations,
		Workers:    cfg.Workers,
		Renderer:   render.RendererImpl{Threads: cfg.Threads},
		Timeout:    timeout,
	}

	start := time.Now()
	img, err := coord.Run(ctx, l)
	elapsed := time.Since(start)

	if procs != nil {
		if err != nil {
			procs.Kill()
		}
		if werr := procs.Wait(); werr != nil {
			log.Printf("workers: %v", werr)
		}
	}
	if err != nil {
		return nil, 0, err
	}
	return img, elapsed, nil
}
