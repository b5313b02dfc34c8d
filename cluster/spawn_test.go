//go:build !js

package cluster

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/exec"
	"slices"
	"strings"
	"testing"
	"time"

	mandel "github.com/marben/dist_mandel"
	"github.com/marben/dist_mandel/render"
)

// Spawn is tested against the test binary itself: with helperEnv set it
// runs as a worker process instead of running the tests.
const helperEnv = "DIST_MANDEL_HELPER_WORKER"

func TestMain(m *testing.M) {
	switch os.Getenv(helperEnv) {
	case "":
		os.Exit(m.Run())
	case "hang":
		select {}
	default:
		os.Exit(helperWorker(os.Args[1:]))
	}
}

func helperWorker(args []string) int {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)
	url := fs.String("url", "", "coordinator websocket url")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	w := Worker{URL: *url, Renderer: render.RendererImpl{Threads: 2}}
	if err := w.Run(context.Background()); err != nil {
		log.Printf("helper worker: %v", err)
		return 1
	}
	return 0
}

func testBinary(t *testing.T) string {
	t.Helper()
	bin, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	return bin
}

func TestSpawnedWorkersRender(t *testing.T) {
	t.Setenv(helperEnv, "worker")
	l, url := startListener(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	grid := testGrid(t, 5)
	want, err := render.RendererImpl{Threads: 1}.RenderPartition(ctx, mandel.Job{
		Grid:       grid,
		Iterations: 50,
		Workers:    1,
		Partition:  mandel.Partition{End: grid.Pixels()},
	})
	if err != nil {
		t.Fatal(err)
	}

	ps, err := Spawn(ctx, testBinary(t), url, 2)
	if err != nil {
		t.Fatal(err)
	}
	c := &Coordinator{Grid: grid, Iterations: 50, Workers: 3, Renderer: render.RendererImpl{}, Timeout: 20 * time.Second}
	img, err := c.Run(ctx, l)
	if err != nil {
		ps.Kill()
		ps.Wait()
		t.Fatal(err)
	}
	if err := ps.Wait(); err != nil {
		t.Errorf("Wait = %v, want every worker to exit cleanly", err)
	}
	if !slices.Equal(img, []int(want)) {
		t.Error("image differs from the single process one")
	}
}

func TestSpawnWaitReportsFailedWorkers(t *testing.T) {
	t.Setenv(helperEnv, "worker")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// nothing listens there, so both workers fail to dial
	ps, err := Spawn(ctx, testBinary(t), "ws://127.0.0.1:1/ws", 2)
	if err != nil {
		t.Fatal(err)
	}
	err = ps.Wait()
	var exit *exec.ExitError
	if !errors.As(err, &exit) || exit.ExitCode() != 1 {
		t.Fatalf("Wait = %v, want exit status 1", err)
	}
	if n := strings.Count(err.Error(), "worker pid"); n != 2 {
		t.Errorf("Wait reported %d failed workers, want 2: %v", n, err)
	}
}

func TestSpawnKill(t *testing.T) {
	t.Setenv(helperEnv, "hang")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	ps, err := Spawn(ctx, testBinary(t), "ws://127.0.0.1:1/ws", 3)
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- ps.Wait() }()

	ps.Kill()
	select {
	case err := <-done:
		if err == nil {
			t.Error("killed workers exited cleanly")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("workers still running after Kill")
	}
}

func TestSpawnStopsWithContext(t *testing.T) {
	t.Setenv(helperEnv, "hang")
	ctx, cancel := context.WithCancel(context.Background())

	ps, err := Spawn(ctx, testBinary(t), "ws://127.0.0.1:1/ws", 1)
	if err != nil {
		t.Fatal(err)
	}
	cancel()
	if err := ps.Wait(); err == nil {
		t.Error("worker exited cleanly after its context was cancelled")
	}
}

func TestSpawnMissingBinary(t *testing.T) {
	_, err := Spawn(context.Background(), "/nonexistent/mandel-worker", "ws://127.0.0.1:1/ws", 2)
	if err == nil {
		t.Fatal("Spawn started a binary that does not exist")
	}
}
