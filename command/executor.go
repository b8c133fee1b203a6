package command

import (
	"context"
	"os/exec"
)

// Executor creates exec.Cmd instances. Tests swap it to resolve commands
// against a directory of fake binaries.
type Executor interface {
	// CommandContext creates a new context-aware exec.Cmd instance.
	CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd

	// LookPath resolves name the way CommandContext will.
	LookPath(name string) (string, error)
}

// RealExecutor is the production implementation of the Executor interface,
// which uses the standard os/exec package to create commands.
type RealExecutor struct{}

// CommandContext creates a standard context-aware exec.Cmd.
func (e *RealExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, args...)
}

// LookPath searches PATH for name.
func (e *RealExecutor) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
