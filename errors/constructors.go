package errors

import (
	"fmt"
)

// ConfigNotFound creates a configuration not found error
func ConfigNotFound(path string) *NinjaWatchError {
	return New(ErrCodeConfigNotFound, fmt.Sprintf("configuration file not found: %s", path)).
		WithDetail("path", path)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *NinjaWatchError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}

// DescriptorNotFound reports a missing build.ninja or meson.build.
func DescriptorNotFound(path string, cause error) *NinjaWatchError {
	return Wrap(cause, ErrCodeDescriptorNotFound, fmt.Sprintf("build descriptor not found: %s", path)).
		WithDetail("path", path)
}

// DescriptorUnreadable reports a descriptor that exists but cannot be read.
func DescriptorUnreadable(path string, cause error) *NinjaWatchError {
	return Wrap(cause, ErrCodeDescriptorUnreadable, fmt.Sprintf("failed to read build descriptor: %s", path)).
		WithDetail("path", path)
}

// UnknownLanguage creates an error for a language missing from the extension table
func UnknownLanguage(language string) *NinjaWatchError {
	return New(ErrCodeUnknownLanguage, fmt.Sprintf("unknown project language '%s'", language)).
		WithDetail("language", language)
}

// WalkFailed wraps a failure while searching the source tree.
func WalkFailed(root string, cause error) *NinjaWatchError {
	return Wrap(cause, ErrCodeWalkFailed, fmt.Sprintf("failed to walk source tree: %s", root)).
		WithDetail("root", root)
}

// CommandNotFound reports an executable that is not on PATH.
func CommandNotFound(name string, cause error) *NinjaWatchError {
	return Wrap(cause, ErrCodeCommandNotFound, fmt.Sprintf("command not found: %s", name)).
		WithDetail("command", name)
}
