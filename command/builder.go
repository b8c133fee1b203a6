package command

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/grovetools/ninjawatch/errors"
)

// SafeBuilder provides command construction with validation. Builds and
// watchers block for as long as they need to; only the caller's context
// stops them.
type SafeBuilder struct {
	validators map[string]func(string) error
	executor   Executor
}

// NewSafeBuilder creates a new SafeBuilder instance with a RealExecutor
func NewSafeBuilder() *SafeBuilder {
	return NewSafeBuilderWithExecutor(&RealExecutor{})
}

// NewSafeBuilderWithExecutor creates a new SafeBuilder with a custom Executor
func NewSafeBuilderWithExecutor(exec Executor) *SafeBuilder {
	return &SafeBuilder{
		validators: makeDefaultValidators(),
		executor:   exec,
	}
}

// makeDefaultValidators returns the default set of validators
func makeDefaultValidators() map[string]func(string) error {
	return map[string]func(string) error{
		"executable": validateExecutable,
		"watchPath":  validateWatchPath,
	}
}

// validateExecutable rejects names that could only work through a shell.
func validateExecutable(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("executable name cannot be empty")
	}
	if strings.ContainsAny(name, ";|&$`\n") {
		return fmt.Errorf("invalid executable name: %s", name)
	}
	return nil
}

// validateWatchPath ensures a path can be passed as a single argv entry.
func validateWatchPath(path string) error {
	if path == "" {
		return fmt.Errorf("watch path cannot be empty")
	}
	if strings.ContainsAny(path, "\x00\n") {
		return fmt.Errorf("watch path contains invalid characters: %q", path)
	}
	return nil
}

// Command represents a validated command configuration
type Command struct {
	ctx      context.Context
	name     string
	args     []string
	executor Executor
}

// Build creates a new command with validation
func (sb *SafeBuilder) Build(ctx context.Context, name string, args ...string) (*Command, error) {
	if err := validateExecutable(name); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid command").
			WithDetail("command", name)
	}

	return &Command{
		ctx:      ctx,
		name:     name,
		args:     args,
		executor: sb.executor,
	}, nil
}

// Validate validates specific arguments
func (sb *SafeBuilder) Validate(argType string, value string) error {
	validator, exists := sb.validators[argType]
	if !exists {
		return fmt.Errorf("no validator for argument type: %s", argType)
	}

	return validator(value)
}

// LookPath resolves an executable through the builder's executor.
func (sb *SafeBuilder) LookPath(name string) (string, error) {
	path, err := sb.executor.LookPath(name)
	if err != nil {
		return "", errors.CommandNotFound(name, err)
	}
	return path, nil
}

// String renders the command line for logs.
func (c *Command) String() string {
	return strings.TrimSpace(c.name + " " + strings.Join(c.args, " "))
}

// Exec creates and returns an exec.Cmd bound to the command's context.
func (c *Command) Exec() *exec.Cmd {
	return c.executor.CommandContext(c.ctx, c.name, c.args...) //nolint:gosec // SafeBuilder provides validation
}

// Run runs the command with the given output streams and waits for it.
func (c *Command) Run(stdout, stderr io.Writer) error {
	cmd := c.Exec()
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// Output runs the command and returns its standard output.
func (c *Command) Output(stderr io.Writer) ([]byte, error) {
	cmd := c.Exec()
	cmd.Stderr = stderr
	return cmd.Output()
}
