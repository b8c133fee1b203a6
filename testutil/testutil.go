package testutil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// RequirePOSIXShell skips the test on platforms where fake binaries written
// as shell scripts cannot run.
func RequirePOSIXShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake executables are shell scripts")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// WriteExecutable writes a /bin/sh script named name into dir.
func WriteExecutable(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// FakeExecutor resolves every command name inside Dir instead of PATH.
// It satisfies command.Executor.
type FakeExecutor struct {
	Dir string
}

// CommandContext runs Dir/name.
func (f *FakeExecutor) CommandContext(ctx context.Context, name string, args ...string) *exec.Cmd {
	return exec.CommandContext(ctx, filepath.Join(f.Dir, filepath.Base(name)), args...)
}

// LookPath succeeds only for executables present in Dir.
func (f *FakeExecutor) LookPath(name string) (string, error) {
	path := filepath.Join(f.Dir, filepath.Base(name))
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.Mode()&0111 == 0 {
		return "", fmt.Errorf("%s is not executable", path)
	}
	return path, nil
}

// MesonProject is an on-disk source tree with a configured build directory.
type MesonProject struct {
	SourceDir string
	BuildDir  string
}

// NewMesonProject creates <tmp>/src/meson.build declaring languages and
// <tmp>/src/build/build.ninja pointing back at it through the regenerate
// build statement meson emits.
func NewMesonProject(t *testing.T, languages ...string) *MesonProject {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	p := &MesonProject{
		SourceDir: filepath.Join(root, "src"),
		BuildDir:  filepath.Join(root, "src", "build"),
	}

	quoted := make([]string, 0, len(languages)+1)
	quoted = append(quoted, "'demo'")
	for _, lang := range languages {
		quoted = append(quoted, fmt.Sprintf("'%s'", lang))
	}
	WriteFile(t, filepath.Join(p.SourceDir, "meson.build"),
		fmt.Sprintf("project(%s,\n  version: '0.1')\n", strings.Join(quoted, ", ")))

	WriteFile(t, filepath.Join(p.BuildDir, "build.ninja"), strings.Join([]string{
		"ninja_required_version = 1.8.2",
		"",
		"rule REGENERATE_BUILD",
		" command = /usr/bin/meson --internal regenerate " + p.SourceDir + " " + p.BuildDir,
		" description = Regenerating build files.",
		" generator = 1",
		"",
		"build reconfigure: REGENERATE_BUILD PHONY",
		" pool = console",
		"",
		"build build.ninja: REGENERATE_BUILD ../meson.build meson-private/coredata.dat",
		" pool = console",
		"",
	}, "\n"))

	return p
}

// Source writes a file relative to the source dir and returns its path.
func (p *MesonProject) Source(t *testing.T, rel, content string) string {
	t.Helper()
	return WriteFile(t, filepath.Join(p.SourceDir, rel), content)
}
