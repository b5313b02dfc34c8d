// local computes the Mandelbrot matrix in one process, splitting the grid
// across a pool of goroutines. With -threads 1 it is the sequential program.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	mandel "github.com/marben/dist_mandel"
	"github.com/marben/dist_mandel/config"
	"github.com/marben/dist_mandel/matrix"
	"github.com/marben/dist_mandel/render"
	"github.com/marben/dist_mandel/runlog"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Printf("run: %v", err)
		os.Exit(config.ExitCode(err))
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("local", flag.ContinueOnError)
	threads := fs.Int("threads", runtime.GOMAXPROCS(0), "number of goroutines")
	window := fs.String("window", "full", fmt.Sprintf("region of the plane, one of %v", mandel.WindowNames()))
	scheduleName := fs.String("schedule", "static", "how pixels are handed to the goroutines: static, dynamic or guided")
	chunk := fs.Int("chunk", render.DefaultChunk, "pixels per dynamic claim, smallest guided claim")
	verify := fs.Bool("verify", false, "read the written matrix back and compare it with the image")
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
	if *threads <= 0 {
		return fmt.Errorf("%w: got %d", config.ErrThreads, *threads)
	}
	cfg.Threads = *threads
	schedule, err := render.ParseSchedule(*scheduleName)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrUsage, err)
	}
	if *chunk <= 0 {
		return fmt.Errorf("%w: -chunk must be positive, got %d", config.ErrUsage, *chunk)
	}
	if cfg.Window, err = mandel.WindowByName(*window); err != nil {
		return fmt.Errorf("%w: %v", config.ErrUsage, err)
	}
	grid, err := cfg.Validate()
	if err != nil {
		return err
	}

	log.Printf("Calculating Mandelbrot set with %d threads (%v) with %d iterations (%dx%d)",
		cfg.Threads, schedule, cfg.Iterations, grid.Width, grid.Height)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	renderer := render.RendererImpl{Threads: cfg.Threads, Schedule: schedule, Chunk: *chunk}
	job := mandel.Job{
		Grid:       grid,
		Iterations: cfg.Iterations,
		Workers:    1,
		Partition:  mandel.Partition{Start: 0, End: grid.Pixels()},
	}

	start := time.Now()
	img, err := renderer.RenderPartition(ctx, job)
	if err != nil {
		return fmt.Errorf("%w: %w", config.ErrCoordination, err)
	}
	elapsed := time.Since(start)
	log.Printf("Time elapsed: %v seconds.", elapsed.Seconds())

	if err := matrix.WriteFile(cfg.Output, img, grid.Width); err != nil {
		return fmt.Errorf("%w: %w", config.ErrWrite, err)
	}
	log.Printf("Writing to file: %s", cfg.Output)
	if *verify {
		if err := matrix.Verify(cfg.Output, img, grid.Width); err != nil {
			return fmt.Errorf("%w: %w", config.ErrWrite, err)
		}
		log.Printf("verified %s", cfg.Output)
	}

	scheduling, suffix := schedule.String(), "_threads_"
	if cfg.Threads == 1 {
		scheduling, suffix = "", "_seq_"
	}
	rec := runlog.Record{
		Time:       time.Now(),
		Program:    filepath.Base(os.Args[0]),
		Iterations: cfg.Iterations,
		Resolution: cfg.Resolution,
		Width:      grid.Width,
		Height:     grid.Height,
		Step:       grid.Step,
		Scheduling: scheduling,
		Workers:    cfg.Threads,
		Elapsed:    elapsed,
	}
	if err := runlog.Save(cfg.Output, suffix, rec); err != nil {
		log.Printf("run metadata: %v", err)
	}
	return nil
}
