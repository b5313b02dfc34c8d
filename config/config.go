// Package config validates a run's parameters before any parallel work is
// dispatched and maps failures to process exit codes.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	mandel "github.com/marben/dist_mandel"
)

var (
	ErrUsage        = errors.New("usage")
	ErrIterations   = errors.New("iterations must be a positive integer")
	ErrResolution   = errors.New("resolution must be a positive integer")
	ErrOutput       = errors.New("output file is not writable")
	ErrThreads      = errors.New("threads must be a positive integer")
	ErrWorkers      = errors.New("workers must be a positive integer no larger than the pixel count")
	ErrCoordination = errors.New("parallel run failed")
	ErrWrite        = errors.New("writing the matrix failed")
)

// Exit codes, one per failure class.
const (
	ExitOK = iota
	ExitUsage
	ExitIterations
	ExitResolution
	ExitOutput
	ExitWorkers
	ExitCoordination
	ExitWrite
)

// ExitCode maps an error returned by Parse, Validate or a run to the status
// the process should exit with.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, ErrIterations):
		return ExitIterations
	case errors.Is(err, ErrResolution):
		return ExitResolution
	case errors.Is(err, ErrOutput):
		return ExitOutput
	case errors.Is(err, ErrThreads), errors.Is(err, ErrWorkers):
		return ExitWorkers
	case errors.Is(err, ErrWrite):
		return ExitWrite
	default:
		return ExitCoordination
	}
}

// Config holds the parameters of one run.
type Config struct {
	Output     string
	Iterations int
	Resolution int

	// Threads is the goroutine count of the shared-memory executor, 0 for GOMAXPROCS.
	Threads int
	// Workers is the size of the message-passing group, coordinator included.
	Workers int

	Window mandel.Window
}

// Parse reads the positional arguments <output_file> <iterations> <resolution>.
// Threads, Workers and Window are left for the caller's flags; Window defaults
// to mandel.FullWindow and Workers to 1.
func Parse(args []string) (Config, error) {
	if len(args) != 3 {
		return Config{}, fmt.Errorf("%w: want <output_file> <iterations> <resolution>, got %d arguments", ErrUsage, len(args))
	}
	if args[0] == "" {
		return Config{}, fmt.Errorf("%w: empty output file", ErrUsage)
	}
	iterations, err := positive(args[1], ErrIterations)
	if err != nil {
		return Config{}, err
	}
	resolution, err := positive(args[2], ErrResolution)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Output:     args[0],
		Iterations: iterations,
		Resolution: resolution,
		Workers:    1,
		Window:     mandel.FullWindow,
	}, nil
}

func positive(s string, kind error) (int, error) {
	v, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q is too large", kind, s)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", kind, s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: got %d", kind, v)
	}
	return v, nil
}

// Validate checks every precondition of a run and returns the grid it will
// compute. Nothing is written to disk.
func (c Config) Validate() (mandel.Grid, error) {
	if c.Iterations <= 0 {
		return mandel.Grid{}, fmt.Errorf("%w: got %d", ErrIterations, c.Iterations)
	}
	grid, err := mandel.NewGrid(c.Window, c.Resolution)
	if err != nil {
		return mandel.Grid{}, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	if c.Threads < 0 {
		return mandel.Grid{}, fmt.Errorf("%w: got %d", ErrThreads, c.Threads)
	}
	if c.Workers <= 0 || c.Workers > grid.Pixels() {
		return mandel.Grid{}, fmt.Errorf("%w: got %d for %d pixels", ErrWorkers, c.Workers, grid.Pixels())
	}
	if err := CheckOutput(c.Output); err != nil {
		return mandel.Grid{}, err
	}
	return grid, nil
}

// CheckOutput verifies that a file can be created at path without touching
// path itself.
func CheckOutput(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrOutput)
	}
	dir := filepath.Dir(path)
	st, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: directory %s: %v", ErrOutput, dir, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrOutput, dir)
	}
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrOutput, path)
	}

	f, err := os.CreateTemp(dir, ".writable-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutput, err)
	}
	f.Close()
	os.Remove(f.Name())
	return nil
}
