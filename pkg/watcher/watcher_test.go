package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/grovetools/ninjawatch/command"
	"github.com/grovetools/ninjawatch/errors"
	"github.com/grovetools/ninjawatch/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEventLine(t *testing.T) {
	tests := []struct {
		line string
		want Event
	}{
		{"/src/main.c MODIFY", Event{Path: "/src/main.c", Op: "MODIFY"}},
		{"/src/my file.c MODIFY\n", Event{Path: "/src/my file.c", Op: "MODIFY"}},
		{"/src/ MODIFY,ISDIR", Event{Path: "/src/", Op: "MODIFY,ISDIR"}},
		{"/src/main.c", Event{Path: "/src/main.c"}},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := parseEventLine(tt.line)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.TrimSpace(tt.line), got.String())
		})
	}
}

func TestArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"-q", "--format", "%w%f %e", "-e", "modify", "/src/a.c", "/src"},
		Args([]string{"/src/a.c", "/src"}))
}

func TestNew(t *testing.T) {
	builder := command.NewSafeBuilder()

	w, err := New("", "", builder)
	require.NoError(t, err)
	assert.Equal(t, "inotifywait", w.Name())

	w, err = New(BackendInotifywait, "/opt/bin/inotifywait", builder)
	require.NoError(t, err)
	assert.Equal(t, "/opt/bin/inotifywait", w.Name())

	w, err = New(BackendFsnotify, "", builder)
	require.NoError(t, err)
	assert.Equal(t, BackendFsnotify, w.Name())

	_, err = New("kqueue", "", builder)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func newFakeInotify(t *testing.T, body string) (*Inotify, string) {
	t.Helper()
	testutil.RequirePOSIXShell(t)

	bin := t.TempDir()
	testutil.WriteExecutable(t, bin, "inotifywait", body)
	return NewInotify("inotifywait", command.NewSafeBuilderWithExecutor(&testutil.FakeExecutor{Dir: bin})), bin
}

func TestInotify_Wait(t *testing.T) {
	t.Run("reports the event line", func(t *testing.T) {
		w, bin := newFakeInotify(t, `printf '%s\n' "$@" > "$(dirname "$0")/args"; echo "/src/my file.c MODIFY"`)

		event, outcome := w.Wait(context.Background(), []string{"/src/my file.c", "/src"})
		assert.Equal(t, command.Success, outcome)
		assert.Equal(t, Event{Path: "/src/my file.c", Op: "MODIFY"}, event)

		args, err := os.ReadFile(filepath.Join(bin, "args"))
		require.NoError(t, err)
		assert.Equal(t, "-q\n--format\n%w%f %e\n-e\nmodify\n/src/my file.c\n/src\n", string(args))
	})

	t.Run("non-zero exit", func(t *testing.T) {
		w, _ := newFakeInotify(t, `echo "Couldn't watch /gone: No such file or directory" >&2; exit 1`)

		event, outcome := w.Wait(context.Background(), []string{"/gone"})
		assert.Equal(t, command.WatchFailed, outcome)
		assert.Equal(t, Event{}, event)
	})

	t.Run("no output", func(t *testing.T) {
		w, _ := newFakeInotify(t, "exit 0")

		_, outcome := w.Wait(context.Background(), []string{"/src"})
		assert.Equal(t, command.WatchFailed, outcome)
	})

	t.Run("unwatchable path", func(t *testing.T) {
		w, bin := newFakeInotify(t, `touch "$(dirname "$0")/ran"; echo "/src MODIFY"`)

		_, outcome := w.Wait(context.Background(), []string{"/src/a\nb.c"})
		assert.Equal(t, command.WatchFailed, outcome)
		assert.NoFileExists(t, filepath.Join(bin, "ran"))
	})

	t.Run("missing executable", func(t *testing.T) {
		testutil.RequirePOSIXShell(t)
		w := NewInotify("inotifywait", command.NewSafeBuilderWithExecutor(&testutil.FakeExecutor{Dir: t.TempDir()}))

		_, outcome := w.Wait(context.Background(), []string{"/src"})
		assert.Equal(t, command.WatchFailed, outcome)
	})

	t.Run("cancelled", func(t *testing.T) {
		w, _ := newFakeInotify(t, "exec sleep 5")
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, outcome := w.Wait(ctx, []string{"/src"})
		assert.Equal(t, command.WatchFailed, outcome)
		assert.Less(t, time.Since(start), 4*time.Second)
	})
}

func TestNotify_Wait(t *testing.T) {
	t.Run("first write", func(t *testing.T) {
		dir := t.TempDir()
		file := testutil.WriteFile(t, filepath.Join(dir, "main.c"), "int x;\n")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(50 * time.Millisecond)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					_ = os.WriteFile(file, []byte("int y;\n"), 0644)
				}
			}
		}()

		event, outcome := NewNotify().Wait(ctx, []string{file})
		require.Equal(t, command.Success, outcome)
		assert.Equal(t, file, event.Path)
		assert.Equal(t, "MODIFY", event.Op)
	})

	t.Run("missing path", func(t *testing.T) {
		_, outcome := NewNotify().Wait(context.Background(), []string{filepath.Join(t.TempDir(), "gone.c")})
		assert.Equal(t, command.WatchFailed, outcome)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_, outcome := NewNotify().Wait(ctx, []string{t.TempDir()})
		assert.Equal(t, command.WatchFailed, outcome)
	})
}
