package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/grovetools/ninjawatch/cli"
	"github.com/grovetools/ninjawatch/command"
	"github.com/grovetools/ninjawatch/config"
	"github.com/grovetools/ninjawatch/errors"
	"github.com/grovetools/ninjawatch/logging"
	"github.com/grovetools/ninjawatch/pkg/deps"
	"github.com/grovetools/ninjawatch/pkg/loop"
	"github.com/grovetools/ninjawatch/pkg/meson"
	"github.com/grovetools/ninjawatch/pkg/ninja"
	"github.com/grovetools/ninjawatch/pkg/watcher"
	"github.com/grovetools/ninjawatch/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Runtime holds the process-level collaborators of the root command.
type Runtime struct {
	Executor command.Executor
	// Interrupts replaces os.Interrupt delivery when set.
	Interrupts <-chan os.Signal
	Getwd      func() (string, error)
}

// NewRootCmd creates the ninjawatch command for a real process.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithRuntime(Runtime{})
}

// NewRootCmdWithRuntime creates the ninjawatch command with rt's collaborators.
func NewRootCmdWithRuntime(rt Runtime) *cobra.Command {
	if rt.Executor == nil {
		rt.Executor = &command.RealExecutor{}
	}
	if rt.Getwd == nil {
		rt.Getwd = os.Getwd
	}

	cmd := cli.NewStandardCommand(
		"ninjawatch [ninja args...]",
		"Rebuild a ninja build whenever one of its inputs changes",
	)
	cmd.Long = `Runs ninja with the given arguments, asks it which files the build
depended on, and waits until one of them (or a meson.build, Cargo.toml, ...
in the source tree) is modified. Then it builds again.

Every argument is passed to ninja unchanged. -C selects the build directory.
Press Ctrl-C once to restart, twice to quit.

` + version.GetInfo().String() + `

Examples:
  # rebuild the build directory in the current directory
  ninjawatch
  # rebuild the "test" target of ./build with 8 jobs
  ninjawatch -C build -j8 test`

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		inv := cli.SplitArgs(args)
		if inv.Help {
			return cmd.Help()
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return run(ctx, rt, inv)
	}

	return cmd
}

func run(ctx context.Context, rt Runtime, inv cli.Invocation) error {
	cwd, err := rt.Getwd()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to get current directory")
	}
	buildRoot := inv.BuildRoot(cwd)

	cfg, err := config.LoadFromWithLogger(buildRoot, logging.NewLogger("config"))
	if err != nil {
		return err
	}

	var logCfg logging.Config
	if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	logging.Init(logCfg)

	logger := logging.NewLogger("ninjawatch")
	logger.WithFields(logrus.Fields(version.GetInfo().Fields())).Debug("Starting")

	timing, err := cfg.Timing.Parse()
	if err != nil {
		return errors.ConfigInvalid(err.Error())
	}

	builder := command.NewSafeBuilderWithExecutor(rt.Executor)
	driver := ninja.New(cfg.Driver, builder)

	collector := deps.NewCollector(driver, buildRoot,
		deps.WithTable(languageTable(cfg.Languages, logger)),
		deps.WithExclude(cfg.Exclude),
		deps.WithDepsDir(inv.Dir),
	)

	w, err := watcher.New(cfg.Watcher.Backend, cfg.Watcher.Command, builder)
	if err != nil {
		return err
	}
	if cfg.Watcher.Backend == config.BackendInotifywait {
		if _, err := builder.LookPath(w.Name()); err != nil {
			logger.WithField("program", w.Name()).
				Warn("Watcher not found, install inotify-tools or set watcher.backend: fsnotify")
		}
	}

	logger.WithFields(logrus.Fields{
		"build_root": buildRoot,
		"driver":     cfg.Driver,
		"watcher":    w.Name(),
		"debounce":   timing.Debounce.String(),
		"retry":      timing.Retry.String(),
	}).Debug("Configured")

	l := loop.New(driver, collector, w, inv.Args, loop.WithDelays(timing.Debounce, timing.Retry))

	interrupts := rt.Interrupts
	if interrupts == nil {
		ch := make(chan os.Signal, 2)
		signal.Notify(ch, os.Interrupt)
		defer signal.Stop(ch)
		interrupts = ch
	}

	return loop.NewSupervisor(l, interrupts, loop.WithGrace(timing.Grace)).Run(ctx)
}

// languageTable merges the configured languages over the built-in table.
func languageTable(languages map[string]config.LanguageConfig, logger *logrus.Entry) *meson.Table {
	builtin := meson.DefaultTable()
	extra := make(map[string]meson.Language, len(languages))
	for name, lang := range languages {
		extra[name] = meson.Language{
			Extensions:   lang.Extensions,
			SpecialFiles: lang.SpecialFiles,
		}

		fields := logrus.Fields{
			"language":      name,
			"extensions":    lang.Extensions,
			"special_files": lang.SpecialFiles,
		}
		if builtin.Known(name) {
			logger.WithFields(fields).Debug("Extending built-in language")
		} else {
			logger.WithFields(fields).Info("Adding language from configuration")
		}
	}
	return meson.NewTable(extra)
}
