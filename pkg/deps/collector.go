// Package deps turns the build driver's dependency listing into the set of
// files and directories to watch.
package deps

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grovetools/ninjawatch/command"
	"github.com/grovetools/ninjawatch/logging"
	"github.com/grovetools/ninjawatch/pkg/meson"
	"github.com/sirupsen/logrus"
)

// Lister lists the inputs of the last build, one per line.
type Lister interface {
	Deps(ctx context.Context, dir string) ([]string, command.Outcome)
}

// WatchSet is the result of one collection. Every entry of Dirs is the
// parent of at least one entry of Files.
type WatchSet struct {
	Files []string
	Dirs  []string
}

// Empty reports whether there is nothing to watch.
func (w WatchSet) Empty() bool {
	return len(w.Files) == 0 && len(w.Dirs) == 0
}

// Paths returns the files followed by the directories.
func (w WatchSet) Paths() []string {
	paths := make([]string, 0, len(w.Files)+len(w.Dirs))
	paths = append(paths, w.Files...)
	paths = append(paths, w.Dirs...)
	return paths
}

// Collector computes watch sets for one build root.
type Collector struct {
	lister    Lister
	table     *meson.Table
	buildRoot string
	depsDir   string
	exclude   []string
	logger    *logrus.Entry
}

// Option configures a Collector.
type Option func(*Collector)

// WithTable replaces the built-in language table.
func WithTable(table *meson.Table) Option {
	return func(c *Collector) {
		c.table = table
	}
}

// WithExclude skips matching paths while searching for special files.
func WithExclude(patterns []string) Option {
	return func(c *Collector) {
		c.exclude = patterns
	}
}

// WithDepsDir passes "-C dir" to the dependency listing.
func WithDepsDir(dir string) Option {
	return func(c *Collector) {
		c.depsDir = dir
	}
}

// NewCollector creates a Collector. buildRoot should be absolute.
func NewCollector(lister Lister, buildRoot string, opts ...Option) *Collector {
	c := &Collector{
		lister:    lister,
		table:     meson.DefaultTable(),
		buildRoot: buildRoot,
		logger:    logging.NewLogger("deps"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect lists the build's dependencies, keeps those written in one of the
// project's languages, adds the project's special files and returns them
// together with their parent directories.
//
// A failed listing yields an empty set with DepsUnavailable. Errors are
// reserved for an unreadable build tree or an unknown language.
func (c *Collector) Collect(ctx context.Context) (WatchSet, command.Outcome, error) {
	lines, outcome := c.lister.Deps(ctx, c.depsDir)
	if outcome != command.Success {
		return WatchSet{}, outcome, nil
	}

	md, err := meson.LoadMetadata(c.buildRoot)
	if err != nil {
		return WatchSet{}, command.Success, err
	}
	c.logger.WithFields(logrus.Fields{
		"source_root": md.SourceRoot,
		"languages":   md.Languages,
	}).Debug("Loaded project metadata")

	exts, err := c.table.FileExtensions(md.Languages)
	if err != nil {
		return WatchSet{}, command.Success, err
	}
	names, err := c.table.SpecialFiles(md.Languages)
	if err != nil {
		return WatchSet{}, command.Success, err
	}

	files := make(map[string]bool)
	for _, line := range lines {
		dep := strings.TrimSpace(line)
		if dep == "" || !hasSuffix(dep, exts) {
			continue
		}
		if !filepath.IsAbs(dep) {
			dep = filepath.Join(c.buildRoot, dep)
		}
		files[filepath.Clean(dep)] = true
	}

	if md.SourceRoot != "" {
		special, err := meson.FindSpecialFiles(md.SourceRoot, names, c.exclude)
		if err != nil {
			return WatchSet{}, command.Success, err
		}
		for _, path := range special {
			files[path] = true
		}
	}

	return newWatchSet(files), command.Success, nil
}

func hasSuffix(path string, exts []string) bool {
	for _, ext := range exts {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func newWatchSet(files map[string]bool) WatchSet {
	dirs := make(map[string]bool)
	ws := WatchSet{Files: make([]string, 0, len(files))}
	for file := range files {
		ws.Files = append(ws.Files, file)
		dirs[filepath.Dir(file)] = true
	}
	for dir := range dirs {
		// a dependency can name a directory that is also another's parent
		if files[dir] {
			continue
		}
		ws.Dirs = append(ws.Dirs, dir)
	}
	sort.Strings(ws.Files)
	sort.Strings(ws.Dirs)
	return ws
}
