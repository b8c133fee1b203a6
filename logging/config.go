package logging

// Config defines the structure for the "logging" section of ninjawatch.yml.
type Config struct {
	// Level is the minimum log level to output (e.g., "debug", "info", "warn", "error").
	// Can be overridden by the NINJAWATCH_LOG_LEVEL environment variable.
	Level string `yaml:"level"`

	// ReportCaller, if true, includes the file, line, and function name in the log output.
	// Can be enabled with the NINJAWATCH_LOG_CALLER=true environment variable.
	ReportCaller bool `yaml:"report_caller"`

	// File configures logging to a file in addition to stderr.
	File FileSinkConfig `yaml:"file"`

	// Format configures the appearance of the log output.
	Format FormatConfig `yaml:"format"`
}

// FileSinkConfig configures the file logging sink.
type FileSinkConfig struct {
	Enabled bool `yaml:"enabled"`
	// Path is the full path to the log file. Defaults to
	// <state dir>/ninjawatch-<date>.log when enabled without a path.
	Path string `yaml:"path"`
}

// FormatConfig controls the log output format.
type FormatConfig struct {
	// Preset can be "default" (text) or "json".
	Preset string `yaml:"preset"`
	// Timestamps adds a timestamp to text output.
	Timestamps bool `yaml:"timestamps"`
	// DisableComponent hides the component name from text output.
	DisableComponent bool `yaml:"disable_component"`
}
