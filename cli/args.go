package cli

import (
	"path/filepath"
	"strings"
)

// Invocation is what the tool reads from the driver's argument list.
type Invocation struct {
	// Args is the full argument list, forwarded unchanged.
	Args []string
	// Dir is the value of the last -C, if any.
	Dir string
	// Help is set when -h or --help appears before "--".
	Help bool
}

// SplitArgs scans args for -C DIR, -CDIR, -h and --help. Scanning stops at
// "--". Nothing is removed from args.
func SplitArgs(args []string) Invocation {
	inv := Invocation{Args: args}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return inv
		case arg == "-h" || arg == "--help":
			inv.Help = true
		case arg == "-C":
			if i+1 < len(args) {
				inv.Dir = args[i+1]
				i++
			}
		case strings.HasPrefix(arg, "-C"):
			inv.Dir = arg[2:]
		}
	}
	return inv
}

// BuildRoot returns the absolute directory the driver builds in.
func (inv Invocation) BuildRoot(cwd string) string {
	if inv.Dir == "" {
		return filepath.Clean(cwd)
	}
	if filepath.IsAbs(inv.Dir) {
		return filepath.Clean(inv.Dir)
	}
	return filepath.Join(cwd, inv.Dir)
}
