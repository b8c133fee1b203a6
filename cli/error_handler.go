package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/grovetools/ninjawatch/errors"
)

// ErrorHandler provides user-friendly error messages
type ErrorHandler struct {
	Verbose bool
	Out     io.Writer
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(verbose bool) *ErrorHandler {
	return &ErrorHandler{
		Verbose: verbose,
		Out:     os.Stderr,
	}
}

// Handle prints a hint for err based on its code and returns err unchanged.
func (h *ErrorHandler) Handle(err error) error {
	if err == nil {
		return nil
	}
	out := h.Out
	detail := func(key string) interface{} {
		if nwErr, ok := errors.As(err); ok {
			return nwErr.Details[key]
		}
		return nil
	}

	switch errors.GetCode(err) {
	case errors.ErrCodeDescriptorNotFound:
		fmt.Fprintf(out, "Error: %s does not exist.\n", detail("path"))
		fmt.Fprintf(out, "Run from a meson build directory, or pass -C <builddir>.\n")

	case errors.ErrCodeDescriptorUnreadable:
		fmt.Fprintf(out, "Error: cannot read %s.\n", detail("path"))

	case errors.ErrCodeUnknownLanguage:
		fmt.Fprintf(out, "Error: project language '%s' has no known file extensions.\n", detail("language"))
		fmt.Fprintf(out, "Declare it under 'languages' in ninjawatch.yml.\n")

	case errors.ErrCodeCommandNotFound:
		fmt.Fprintf(out, "Error: '%s' was not found on PATH.\n", detail("command"))
		fmt.Fprintf(out, "Install it or set 'driver' in ninjawatch.yml.\n")

	case errors.ErrCodeConfigNotFound, errors.ErrCodeConfigInvalid:
		fmt.Fprintf(out, "Error: %v\n", err)
		fmt.Fprintf(out, "Check NINJAWATCH_CONFIG and ninjawatch.yml.\n")

	default:
		fmt.Fprintf(out, "Error: %v\n", err)
	}

	if h.Verbose {
		if nwErr, ok := errors.As(err); ok {
			fmt.Fprintf(out, "\nError details:\n%s\n", nwErr.ToJSON())
		}
	}
	return err
}
