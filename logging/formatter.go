package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
)

const (
	// ToolName identifies ninjawatch in every diagnostic.
	ToolName = "ninjawatch"
	// Prefix starts every text log line.
	Prefix = ToolName + ":"
)

// outputProfile picks the colour profile of the main log output.
var outputProfile = ColorProfile

// TextFormatter is a custom logrus formatter.
type TextFormatter struct {
	Config FormatConfig

	levelStyles map[logrus.Level]lipgloss.Style
	component   lipgloss.Style
}

// NewTextFormatter builds a formatter rendering colours for out with profile.
func NewTextFormatter(cfg FormatConfig, out io.Writer, profile termenv.Profile) *TextFormatter {
	renderer := lipgloss.NewRenderer(out)
	renderer.SetColorProfile(profile)

	return &TextFormatter{
		Config: cfg,
		levelStyles: map[logrus.Level]lipgloss.Style{
			logrus.PanicLevel: renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			logrus.FatalLevel: renderer.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
			logrus.ErrorLevel: renderer.NewStyle().Foreground(lipgloss.Color("9")),
			logrus.WarnLevel:  renderer.NewStyle().Foreground(lipgloss.Color("11")),
			logrus.InfoLevel:  renderer.NewStyle().Foreground(lipgloss.Color("10")),
			logrus.DebugLevel: renderer.NewStyle().Foreground(lipgloss.Color("12")),
			logrus.TraceLevel: renderer.NewStyle().Foreground(lipgloss.Color("8")),
		},
		component: renderer.NewStyle().Foreground(lipgloss.Color("14")),
	}
}

// ColorProfile disables colour for anything that is not an interactive terminal.
func ColorProfile(out io.Writer) termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	f, ok := out.(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).EnvColorProfile()
}

// Format renders a single log entry.
func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	b.WriteString(Prefix)
	b.WriteString(" ")

	if f.Config.Timestamps {
		b.WriteString(entry.Time.Format("2006-01-02 15:04:05"))
		b.WriteString(" ")
	}

	// Map logrus level strings to shorter versions for consistency
	levelStr := entry.Level.String()
	if levelStr == "warning" {
		levelStr = "warn"
	}
	level := fmt.Sprintf("[%s]", strings.ToUpper(levelStr))
	if style, ok := f.levelStyles[entry.Level]; ok {
		level = style.Render(level)
	}
	b.WriteString(level)

	if component, ok := entry.Data["component"]; ok && !f.Config.DisableComponent {
		b.WriteString(fmt.Sprintf(" [%s]", f.component.Render(fmt.Sprintf("%v", component))))
	}

	if entry.HasCaller() {
		fileName := filepath.Base(entry.Caller.File)
		funcName := filepath.Base(entry.Caller.Function)
		b.WriteString(fmt.Sprintf(" [%s:%d %s]", fileName, entry.Caller.Line, funcName))
	}

	b.WriteString(" ")
	b.WriteString(entry.Message)

	// Remaining fields, sorted for stable output
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if key != "component" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(fmt.Sprintf(" %s=%v", key, entry.Data[key]))
	}

	b.WriteString("\n")
	return []byte(b.String()), nil
}
