// Package proc runs external programs.
package proc

import (
	"context"
	"fmt"
	"os/exec"
)

// Runner executes commands. Tests substitute a recorder.
type Runner interface {
	// Run waits for the command to exit and returns its combined output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	// Start launches the command and returns without waiting for it.
	Start(name string, args ...string) error
}

// Exec runs commands with os/exec.
type Exec struct{}

// Run implements Runner.
func (Exec) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Start implements Runner. The child is released so it outlives the switcher.
func (Exec) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	return cmd.Process.Release()
}
