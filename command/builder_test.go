package command_test

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/ninjawatch/command"
	"github.com/grovetools/ninjawatch/errors"
	"github.com/grovetools/ninjawatch/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeBuilder_Validate(t *testing.T) {
	sb := command.NewSafeBuilder()

	tests := []struct {
		name    string
		argType string
		input   string
		wantErr bool
	}{
		{"plain executable", "executable", "ninja", false},
		{"absolute executable", "executable", "/usr/bin/samu", false},
		{"empty executable", "executable", "", true},
		{"shell injection", "executable", "ninja; rm -rf /", true},
		{"watch path", "watchPath", "/src/main.c", false},
		{"watch path with spaces", "watchPath", "/src/my file.c", false},
		{"empty watch path", "watchPath", "", true},
		{"watch path with newline", "watchPath", "/src/a\nb", true},
		{"unknown validator", "projectName", "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sb.Validate(tt.argType, tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q, %q) error = %v, wantErr %v", tt.argType, tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestSafeBuilder_Build(t *testing.T) {
	sb := command.NewSafeBuilder()
	ctx := context.Background()

	t.Run("valid command", func(t *testing.T) {
		cmd, err := sb.Build(ctx, "ninja", "-C", "build", "-t", "deps")
		require.NoError(t, err)
		assert.Equal(t, "ninja -C build -t deps", cmd.String())
	})

	t.Run("empty command name", func(t *testing.T) {
		_, err := sb.Build(ctx, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	})
}

func TestCommandRunsThroughExecutor(t *testing.T) {
	testutil.RequirePOSIXShell(t)

	bin := t.TempDir()
	testutil.WriteExecutable(t, bin, "ninja", `echo "args=$*"; echo "warning" >&2`)

	sb := command.NewSafeBuilderWithExecutor(&testutil.FakeExecutor{Dir: bin})
	cmd, err := sb.Build(context.Background(), "ninja", "-t", "deps")
	require.NoError(t, err)

	var stderr bytes.Buffer
	out, err := cmd.Output(&stderr)
	require.NoError(t, err)
	assert.Equal(t, "args=-t deps", strings.TrimSpace(string(out)))
	assert.Equal(t, "warning", strings.TrimSpace(stderr.String()))
}

func TestCommandStopsWithContext(t *testing.T) {
	testutil.RequirePOSIXShell(t)

	bin := t.TempDir()
	testutil.WriteExecutable(t, bin, "slow", "exec sleep 5")

	ctx, cancel := context.WithCancel(context.Background())
	sb := command.NewSafeBuilderWithExecutor(&testutil.FakeExecutor{Dir: bin})
	cmd, err := sb.Build(ctx, "slow")
	require.NoError(t, err)

	time.AfterFunc(100*time.Millisecond, cancel)
	start := time.Now()
	err = cmd.Run(nil, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestSafeBuilder_LookPath(t *testing.T) {
	testutil.RequirePOSIXShell(t)

	bin := t.TempDir()
	testutil.WriteExecutable(t, bin, "inotifywait", "exit 0")
	sb := command.NewSafeBuilderWithExecutor(&testutil.FakeExecutor{Dir: bin})

	_, err := sb.LookPath("inotifywait")
	require.NoError(t, err)

	_, err = sb.LookPath("fswatch")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeCommandNotFound))
}

func TestExitCode(t *testing.T) {
	testutil.RequirePOSIXShell(t)

	code, ok := command.ExitCode(nil)
	assert.True(t, ok)
	assert.Equal(t, 0, code)

	err := exec.Command("sh", "-c", "exit 3").Run()
	code, ok = command.ExitCode(err)
	assert.True(t, ok)
	assert.Equal(t, 3, code)

	_, ok = command.ExitCode(exec.ErrNotFound)
	assert.False(t, ok)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "success", command.Success.String())
	assert.Equal(t, "deps-unavailable", command.DepsUnavailable.String())
	assert.Equal(t, "watch-failed", command.WatchFailed.String())
}

func TestNotFound(t *testing.T) {
	assert.False(t, command.NotFound(nil))
	assert.True(t, command.NotFound(exec.Command("ninjawatch-no-such-binary").Run()))
	assert.True(t, command.NotFound(exec.Command("/nonexistent/ninja").Run()))

	testutil.RequirePOSIXShell(t)
	assert.False(t, command.NotFound(exec.Command("sh", "-c", "exit 1").Run()))
}
