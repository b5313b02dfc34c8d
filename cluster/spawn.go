//go:build !js

package cluster

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Procs are worker processes started by Spawn.
type Procs struct {
	cmds []*exec.Cmd
}

// Spawn starts n copies of the worker binary at bin, each told to join url.
// The processes are killed when ctx is done.
func Spawn(ctx context.Context, bin, url string, n int) (*Procs, error) {
	ps := &Procs{}
	for i := range n {
		cmd := exec.CommandContext(ctx, bin, "-url", url)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			ps.Kill()
			ps.Wait()
			return nil, fmt.Errorf("start worker %d: %w", i+1, err)
		}
		ps.cmds = append(ps.cmds, cmd)
	}
	return ps, nil
}

// Wait waits for every process and reports the ones that failed.
func (ps *Procs) Wait() error {
	var errs []error
	for _, cmd := range ps.cmds {
		if err := cmd.Wait(); err != nil {
			errs = append(errs, fmt.Errorf("worker pid %d: %w", cmd.Process.Pid, err))
		}
	}
	return errors.Join(errs...)
}

// Kill terminates every process that is still running.
func (ps *Procs) Kill() {
	for _, cmd := range ps.cmds {
		if cmd.Process != nil {
			cmd.Process.Kill()
		}
	}
}
