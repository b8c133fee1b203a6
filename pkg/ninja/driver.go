// Package ninja runs a ninja-compatible build driver: the user's build and
// the "-t deps" listing of the inputs that build depended on.
package ninja

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/grovetools/ninjawatch/command"
	"github.com/grovetools/ninjawatch/errors"
	"github.com/grovetools/ninjawatch/logging"
	"github.com/sirupsen/logrus"
)

// Driver invokes the build driver executable.
type Driver struct {
	name    string
	builder *command.SafeBuilder
	stdout  io.Writer
	stderr  io.Writer
	logger  *logrus.Entry
}

// Option configures a Driver.
type Option func(*Driver)

// WithOutput redirects the driver's output streams.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(d *Driver) {
		d.stdout = stdout
		d.stderr = stderr
	}
}

// New creates a Driver for the executable name (usually "ninja" or "samu").
func New(name string, builder *command.SafeBuilder, opts ...Option) *Driver {
	d := &Driver{
		name:    name,
		builder: builder,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		logger:  logging.NewLogger("ninja"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Name returns the driver executable.
func (d *Driver) Name() string {
	return d.name
}

// Build runs the driver with args passed through unchanged. Its exit status
// is not an error: a failed build is still watched. A driver that cannot be
// started is.
func (d *Driver) Build(ctx context.Context, args []string) error {
	cmd, err := d.builder.Build(ctx, d.name, args...)
	if err != nil {
		return err
	}

	d.logger.WithField("cmd", cmd.String()).Debug("Running build")
	runErr := cmd.Run(d.stdout, d.stderr)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if runErr == nil {
		return nil
	}
	if command.NotFound(runErr) {
		return errors.CommandNotFound(d.name, runErr)
	}

	if code, ok := command.ExitCode(runErr); ok {
		d.logger.WithField("exit_code", code).Debug("Build failed")
	} else {
		d.logger.WithError(runErr).Debug("Build did not exit normally")
	}
	return nil
}

// Deps runs "<driver> [-C dir] -t deps" and returns the raw output lines.
// Any failure to produce the listing yields DepsUnavailable and no lines.
func (d *Driver) Deps(ctx context.Context, dir string) ([]string, command.Outcome) {
	args := make([]string, 0, 4)
	if dir != "" {
		args = append(args, "-C", dir)
	}
	args = append(args, "-t", "deps")

	cmd, err := d.builder.Build(ctx, d.name, args...)
	if err != nil {
		d.logger.WithError(err).Debug("Invalid deps command")
		return nil, command.DepsUnavailable
	}

	out, err := cmd.Output(d.stderr)
	if err != nil {
		d.logger.WithError(err).WithField("cmd", cmd.String()).Debug("Dependency listing failed")
		return nil, command.DepsUnavailable
	}

	lines, err := splitLines(out)
	if err != nil {
		d.logger.WithError(err).WithField("cmd", cmd.String()).Warn("Dependency listing could not be read")
		return nil, command.DepsUnavailable
	}
	return lines, command.Success
}

// maxLineSize bounds a single line of the deps listing.
const maxLineSize = 1024 * 1024

func splitLines(out []byte) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
