package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovetools/ninjawatch/pkg/paths"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	activeConfig Config
	output       io.Writer = os.Stderr
	fileSink     *os.File
	// fileMu serializes writes from every component's hook.
	fileMu sync.Mutex
)

// Init installs the logging configuration decoded from ninjawatch.yml.
// Loggers created earlier are rebuilt on their next NewLogger call.
func Init(cfg Config) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	activeConfig = cfg
	loggers = make(map[string]*logrus.Entry)
	if fileSink != nil {
		fileSink.Close()
		fileSink = nil
	}
}

// SetOutput redirects every logger created afterwards. Tests use this to capture output.
func SetOutput(w io.Writer) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	output = w
	loggers = make(map[string]*logrus.Entry)
}

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()
	logCfg := activeConfig

	// Configure Level
	levelStr := "info"
	if env := os.Getenv("NINJAWATCH_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("NINJAWATCH_LOG_CALLER") == "true" || logCfg.ReportCaller {
		logger.SetReportCaller(true)
	}

	var fileFormatter logrus.Formatter
	switch logCfg.Format.Preset {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
		fileFormatter = &logrus.JSONFormatter{}
	default:
		logger.SetFormatter(NewTextFormatter(logCfg.Format, output, outputProfile(output)))
	}
	logger.SetOutput(output)

	if logCfg.File.Enabled {
		if file := openFileSink(logCfg.File.Path); file != nil {
			if fileFormatter == nil {
				fileFormatter = NewTextFormatter(logCfg.Format, file, termenv.Ascii)
			}
			logger.AddHook(&fileHook{w: file, formatter: fileFormatter})
		} else {
			fmt.Fprintf(output, "%s failed to open log file, logging to stderr only\n", Prefix)
		}
	}

	entry := logger.WithField("component", component)
	if logCfg.Format.Preset == "json" {
		entry = entry.WithField("tool", ToolName)
	}
	loggers[component] = entry
	return entry
}

// fileHook copies every entry to the log file. The file gets its own
// formatter so terminal colours never reach it.
type fileHook struct {
	w         io.Writer
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	fileMu.Lock()
	defer fileMu.Unlock()
	_, err = h.w.Write(line)
	return err
}

// openFileSink opens (once) the shared log file. Callers hold loggersMu.
func openFileSink(path string) *os.File {
	if fileSink != nil {
		return fileSink
	}

	if path == "" {
		dir := paths.StateDir()
		if dir == "" {
			return nil
		}
		path = filepath.Join(dir, fmt.Sprintf("ninjawatch-%s.log", time.Now().Format("2006-01-02")))
	}
	path = expandPath(path)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil
	}
	fileSink = file
	return fileSink
}

// expandPath expands tilde in file paths
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
