package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Backend names accepted by watcher.backend.
const (
	BackendInotifywait = "inotifywait"
	BackendFsnotify    = "fsnotify"
)

// Defaults applied by SetDefaults.
const (
	DefaultDriver         = "ninja"
	DefaultWatcherCommand = "inotifywait"
	DefaultDebounce       = "500ms"
	DefaultRetry          = "5s"
	DefaultGrace          = "1s"
)

// Config is the decoded ninjawatch.yml / ninjawatch.toml document.
type Config struct {
	// Driver is the build driver executable, invoked with the passthrough arguments.
	Driver string `yaml:"driver,omitempty" jsonschema:"description=Build driver executable (default: ninja)"`

	Watcher WatcherConfig `yaml:"watcher,omitempty" jsonschema:"description=How ninjawatch blocks until a dependency changes"`

	Timing TimingConfig `yaml:"timing,omitempty" jsonschema:"description=Delays used by the rebuild loop"`

	// Languages extends or overrides the static language table.
	Languages map[string]LanguageConfig `yaml:"languages,omitempty" jsonschema:"description=Extra watched extensions and special files per language"`

	// Exclude lists dockerignore-style patterns skipped while searching for special files.
	Exclude []string `yaml:"exclude,omitempty" jsonschema:"description=Patterns excluded from the special file search"`

	// Extensions holds top-level sections owned by other packages (e.g. "logging").
	Extensions map[string]interface{} `yaml:",inline" jsonschema:"-"`
}

// WatcherConfig selects the wait-for-change backend.
type WatcherConfig struct {
	Backend string `yaml:"backend,omitempty" jsonschema:"enum=inotifywait,enum=fsnotify,description=Watcher backend (default: inotifywait)"`
	Command string `yaml:"command,omitempty" jsonschema:"description=External watcher executable used by the inotifywait backend"`
}

// TimingConfig holds Go duration strings.
type TimingConfig struct {
	Debounce string `yaml:"debounce,omitempty" jsonschema:"description=Delay after a change before rebuilding (default: 500ms)"`
	Retry    string `yaml:"retry,omitempty" jsonschema:"description=Delay before retrying when nothing can be watched (default: 5s)"`
	Grace    string `yaml:"grace,omitempty" jsonschema:"description=Window in which a second interrupt quits (default: 1s)"`
}

// Timing is the parsed form of TimingConfig.
type Timing struct {
	Debounce time.Duration
	Retry    time.Duration
	Grace    time.Duration
}

// Parse converts the duration strings. Empty strings parse as zero.
func (t TimingConfig) Parse() (Timing, error) {
	var out Timing
	fields := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"timing.debounce", t.Debounce, &out.Debounce},
		{"timing.retry", t.Retry, &out.Retry},
		{"timing.grace", t.Grace, &out.Grace},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return Timing{}, fmt.Errorf("%s: %w", f.name, err)
		}
		if d < 0 {
			return Timing{}, fmt.Errorf("%s: negative duration %s", f.name, f.raw)
		}
		*f.dst = d
	}
	return out, nil
}

// LanguageConfig adds entries to the language table.
type LanguageConfig struct {
	Extensions   []string `yaml:"extensions,omitempty" jsonschema:"description=File suffixes watched for this language"`
	SpecialFiles []string `yaml:"special_files,omitempty" jsonschema:"description=Exact file names searched for anywhere in the source tree"`
}

// SetDefaults fills every unset field.
func (c *Config) SetDefaults() {
	if c.Driver == "" {
		c.Driver = DefaultDriver
	}
	if c.Watcher.Backend == "" {
		c.Watcher.Backend = BackendInotifywait
	}
	if c.Watcher.Command == "" {
		c.Watcher.Command = DefaultWatcherCommand
	}
	if c.Timing.Debounce == "" {
		c.Timing.Debounce = DefaultDebounce
	}
	if c.Timing.Retry == "" {
		c.Timing.Retry = DefaultRetry
	}
	if c.Timing.Grace == "" {
		c.Timing.Grace = DefaultGrace
	}
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.SetDefaults()
	return cfg
}

// UnmarshalExtension decodes a top-level section owned by another package
// into target. A missing section leaves target untouched.
func (c *Config) UnmarshalExtension(key string, target interface{}) error {
	extensionConfig, ok := c.Extensions[key]
	if !ok {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(extensionConfig); err != nil {
		return fmt.Errorf("failed to decode extension config for '%s': %w", key, err)
	}

	return nil
}
