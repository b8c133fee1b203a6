package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/grovetools/ninjawatch/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const maxWidth = 72
const minWidth = 40

var (
	colorOrange = lipgloss.AdaptiveColor{Light: "#CC6B4E", Dark: "#FFA066"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "#4F7CAC", Dark: "#7FB4CA"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "#5B8BBE", Dark: "#7E9CD8"}
	colorViolet = lipgloss.AdaptiveColor{Light: "#674D7A", Dark: "#957FB8"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#C34043", Dark: "#FF5D62"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#8A8980", Dark: "#727169"}
)

// palette holds the help styles for one output stream.
type palette struct {
	title   lipgloss.Style
	section lipgloss.Style
	command lipgloss.Style
	sub     lipgloss.Style
	flag    lipgloss.Style
	italic  lipgloss.Style
	muted   lipgloss.Style
	errTag  lipgloss.Style
}

func newPalette(out io.Writer) palette {
	r := lipgloss.NewRenderer(out)
	r.SetColorProfile(logging.ColorProfile(out))
	return palette{
		title:   r.NewStyle().Bold(true).Foreground(colorOrange),
		section: r.NewStyle().Italic(true).Foreground(colorOrange),
		command: r.NewStyle().Bold(true).Foreground(colorBlue),
		sub:     r.NewStyle().Foreground(colorCyan),
		flag:    r.NewStyle().Foreground(colorViolet),
		italic:  r.NewStyle().Italic(true),
		muted:   r.NewStyle().Foreground(colorMuted),
		errTag:  r.NewStyle().Bold(true).Foreground(colorRed),
	}
}

// getTerminalWidth returns the terminal width capped at maxWidth.
func getTerminalWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok {
		return maxWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width < minWidth {
		return maxWidth
	}
	if width > maxWidth {
		return maxWidth
	}
	return width
}

// wrapText wraps text to the specified width, preserving existing line breaks.
func wrapText(text string, width int) string {
	if width <= 0 {
		width = maxWidth
	}

	var result []string
	for _, paragraph := range strings.Split(text, "\n") {
		if len(paragraph) <= width {
			result = append(result, paragraph)
			continue
		}

		var line string
		for _, word := range strings.Fields(paragraph) {
			if line == "" {
				line = word
			} else if len(line)+1+len(word) <= width {
				line += " " + word
			} else {
				result = append(result, line)
				line = word
			}
		}
		if line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}

// SetStyledHelp applies the styled help to a command.
func SetStyledHelp(cmd *cobra.Command) {
	cmd.SetHelpFunc(styledHelpFunc)
	cmd.SetUsageFunc(styledUsageFunc)
}

// styledUsageFunc prints nothing; errors are reported by the ErrorHandler.
func styledUsageFunc(cmd *cobra.Command) error {
	return nil
}

// PrintError prints a styled error message to stderr with help hint.
func PrintError(cmd *cobra.Command, err error) {
	p := newPalette(cmd.ErrOrStderr())
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", p.errTag.Render("Error:"), err.Error())
	fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", p.muted.Render(fmt.Sprintf("Run '%s --help' for usage.", cmd.CommandPath())))
}

// parseDescription splits a command's long description into main text and examples.
func parseDescription(long string) (description string, examples string) {
	markers := []string{"\nExamples:\n", "\nExample:\n", "\nEXAMPLES:\n", "\nEXAMPLE:\n"}
	for _, marker := range markers {
		if idx := strings.Index(long, marker); idx != -1 {
			return strings.TrimSpace(long[:idx]), strings.TrimSpace(long[idx+len(marker):])
		}
	}
	return long, ""
}

// renderExamples styles example lines with muted comments and styled commands.
func renderExamples(w io.Writer, p palette, examples string, cmdPath string) {
	rootCmd := strings.Split(cmdPath, " ")[0]

	for _, line := range strings.Split(examples, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			fmt.Fprintln(w)
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			fmt.Fprintln(w, " "+p.muted.Render(trimmed))
		} else {
			fmt.Fprintln(w, " "+styleCommandLine(trimmed, rootCmd, p))
		}
	}
}

// styleCommandLine applies styling to different parts of a command example.
func styleCommandLine(line, rootCmd string, p palette) string {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return line
	}

	var result []string
	for i, part := range parts {
		switch {
		case i == 0 && part == rootCmd:
			result = append(result, p.command.Render(part))
		case strings.HasPrefix(part, "-"):
			result = append(result, p.flag.Render(part))
		case i > 0 && (parts[i-1] == "-C" || parts[i-1] == "-t"):
			result = append(result, p.sub.Render(part))
		default:
			result = append(result, part)
		}
	}
	return "  " + strings.Join(result, " ")
}

func styledHelpFunc(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()
	p := newPalette(w)

	width := getTerminalWidth(w) - 2

	fmt.Fprintln(w, " "+p.title.Render(strings.ToUpper(cmd.CommandPath())))

	var description, examples string
	if cmd.Long != "" {
		description, examples = parseDescription(cmd.Long)
	} else {
		description = cmd.Short
	}

	if cmd.Short != "" {
		for _, line := range strings.Split(wrapText(cmd.Short, width), "\n") {
			fmt.Fprintln(w, " "+p.italic.Render(line))
		}
	}
	if description != "" && description != cmd.Short {
		fmt.Fprintln(w)
		for _, line := range strings.Split(wrapText(description, width), "\n") {
			fmt.Fprintln(w, " "+line)
		}
	}

	if cmd.Runnable() {
		fmt.Fprintln(w, "\n "+p.section.Render("USAGE"))
		fmt.Fprintf(w, " %s\n", cmd.UseLine())
	}

	var visibleFlags []*pflag.Flag
	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Hidden {
			visibleFlags = append(visibleFlags, f)
		}
	})

	if len(visibleFlags) > 0 {
		fmt.Fprintln(w, "\n "+p.section.Render("FLAGS"))
		maxFlagLen := 0
		for _, f := range visibleFlags {
			if n := len(formatFlagName(f)); n > maxFlagLen {
				maxFlagLen = n
			}
		}
		for _, f := range visibleFlags {
			flagStr := formatFlagName(f)
			padding := strings.Repeat(" ", maxFlagLen-len(flagStr))
			usage := f.Usage
			if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "[]" {
				usage += p.muted.Render(fmt.Sprintf(" (default: %s)", f.DefValue))
			}
			fmt.Fprintf(w, " %s%s  %s\n", p.flag.Render(flagStr), padding, usage)
		}
	}

	exampleText := cmd.Example
	if exampleText == "" {
		exampleText = examples
	}
	if exampleText != "" {
		fmt.Fprintln(w, "\n "+p.section.Render("EXAMPLES"))
		renderExamples(w, p, exampleText, cmd.CommandPath())
	}
}

// formatFlagName returns a formatted flag string like "-C, --directory" or "--flag".
func formatFlagName(f *pflag.Flag) string {
	if f.Shorthand != "" {
		return fmt.Sprintf("-%s, --%s", f.Shorthand, f.Name)
	}
	return fmt.Sprintf("    --%s", f.Name)
}
