package deps

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/grovetools/ninjawatch/command"
	"github.com/grovetools/ninjawatch/errors"
	"github.com/grovetools/ninjawatch/pkg/meson"
	"github.com/grovetools/ninjawatch/pkg/ninja"
	"github.com/grovetools/ninjawatch/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	lines   []string
	outcome command.Outcome
	gotDir  string
	calls   int
}

func (f *fakeLister) Deps(_ context.Context, dir string) ([]string, command.Outcome) {
	f.calls++
	f.gotDir = dir
	return f.lines, f.outcome
}

func assertWellFormed(t *testing.T, ws WatchSet) {
	t.Helper()

	seen := make(map[string]bool)
	for _, p := range ws.Paths() {
		assert.False(t, seen[p], "duplicate path %s", p)
		seen[p] = true
	}

	parents := make(map[string]bool)
	for _, f := range ws.Files {
		assert.True(t, filepath.IsAbs(f), "relative path %s", f)
		parents[filepath.Dir(f)] = true
	}
	for _, d := range ws.Dirs {
		assert.True(t, parents[d], "%s is not the parent of any file", d)
	}
}

func TestCollect_CProject(t *testing.T) {
	p := testutil.NewMesonProject(t, "c")
	p.Source(t, "main.c", "int main(void) { return 0; }\n")
	p.Source(t, "include/util.h", "\n")

	lister := &fakeLister{lines: []string{
		"main.o: #deps 3, deps mtime 1700000000 (VALID)",
		"    ../main.c",
		"    ../include/util.h",
		"    /usr/include/stdio.h",
		"util.o: #deps 2, deps mtime 1700000000 (VALID)",
		"    ../include/util.h",
		"    ../README.txt",
		"",
	}}

	ws, outcome, err := NewCollector(lister, p.BuildDir).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, command.Success, outcome)
	assertWellFormed(t, ws)

	assert.ElementsMatch(t, []string{
		filepath.Join(p.SourceDir, "include", "util.h"),
		filepath.Join(p.SourceDir, "main.c"),
		filepath.Join(p.SourceDir, "meson.build"),
		"/usr/include/stdio.h",
	}, ws.Files)
	assert.ElementsMatch(t, []string{
		p.SourceDir,
		filepath.Join(p.SourceDir, "include"),
		"/usr/include",
	}, ws.Dirs)
}

func TestCollect_ListingFailed(t *testing.T) {
	t.Run("valid project", func(t *testing.T) {
		p := testutil.NewMesonProject(t, "c")
		lister := &fakeLister{lines: []string{"../main.c"}, outcome: command.DepsUnavailable}

		ws, outcome, err := NewCollector(lister, p.BuildDir).Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, command.DepsUnavailable, outcome)
		assert.True(t, ws.Empty())
		assert.Empty(t, ws.Paths())
		assert.Equal(t, 1, lister.calls)
	})

	t.Run("no build tree", func(t *testing.T) {
		lister := &fakeLister{outcome: command.DepsUnavailable}

		ws, outcome, err := NewCollector(lister, t.TempDir()).Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, command.DepsUnavailable, outcome)
		assert.True(t, ws.Empty())
	})
}

func TestCollect_NoLanguagesKnown(t *testing.T) {
	build := t.TempDir()
	testutil.WriteFile(t, filepath.Join(build, "build.ninja"), "rule build\n  command = true\n")
	lister := &fakeLister{lines: []string{"    main.c"}}

	ws, outcome, err := NewCollector(lister, build).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, command.Success, outcome)
	assert.True(t, ws.Empty())
}

func TestCollect_SpecialFilesOnly(t *testing.T) {
	p := testutil.NewMesonProject(t, "c")

	ws, _, err := NewCollector(&fakeLister{}, p.BuildDir).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(p.SourceDir, "meson.build")}, ws.Files)
	assert.Equal(t, []string{p.SourceDir}, ws.Dirs)
}

func TestCollect_Errors(t *testing.T) {
	t.Run("unknown language", func(t *testing.T) {
		p := testutil.NewMesonProject(t, "cobol")

		_, _, err := NewCollector(&fakeLister{}, p.BuildDir).Collect(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeUnknownLanguage))
	})

	t.Run("missing build descriptor", func(t *testing.T) {
		_, _, err := NewCollector(&fakeLister{}, t.TempDir()).Collect(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeDescriptorNotFound))
	})
}

func TestCollect_Options(t *testing.T) {
	p := testutil.NewMesonProject(t, "zig")
	p.Source(t, "subprojects/dep/meson.build", "project('dep', 'c')\n")
	p.Source(t, "build.zig.zon", ".{}\n")

	lister := &fakeLister{lines: []string{"../main.zig"}}
	table := meson.NewTable(map[string]meson.Language{
		"zig": {Extensions: []string{".zig"}, SpecialFiles: []string{"build.zig.zon"}},
	})

	c := NewCollector(lister, p.BuildDir,
		WithTable(table),
		WithExclude([]string{"subprojects"}),
		WithDepsDir("build"),
	)
	ws, _, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "build", lister.gotDir)
	assert.Equal(t, []string{
		filepath.Join(p.SourceDir, "build.zig.zon"),
		filepath.Join(p.SourceDir, "main.zig"),
		filepath.Join(p.SourceDir, "meson.build"),
	}, ws.Files)
}

// Runs a fake ninja through the real driver, end to end.
func TestCollect_RustProject(t *testing.T) {
	testutil.RequirePOSIXShell(t)

	p := testutil.NewMesonProject(t, "rust")
	cargo := p.Source(t, "Cargo.toml", "[package]\nname = \"demo\"\n")
	mainRs := p.Source(t, "src/main.rs", "fn main() {}\n")
	notes := p.Source(t, "notes.txt", "todo\n")

	bin := t.TempDir()
	testutil.WriteExecutable(t, bin, "ninja", `cat <<'DEPS'
demo: #deps 3, deps mtime 1700000000 (VALID)
    ../src/main.rs
    ../notes.txt
    ../Cargo.toml
DEPS`)
	driver := ninja.New("ninja", command.NewSafeBuilderWithExecutor(&testutil.FakeExecutor{Dir: bin}))

	ws, outcome, err := NewCollector(driver, p.BuildDir).Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, command.Success, outcome)
	assertWellFormed(t, ws)

	paths := ws.Paths()
	assert.Contains(t, paths, cargo)
	assert.Contains(t, paths, mainRs)
	assert.Contains(t, paths, filepath.Dir(cargo))
	assert.Contains(t, paths, filepath.Dir(mainRs))
	assert.NotContains(t, paths, notes)
}
