package cli

import (
	"github.com/spf13/cobra"
)

// NewStandardCommand creates a command whose arguments all belong to the
// build driver. Cobra does no flag parsing; SplitArgs picks out what the
// tool itself needs. The flags declared here only document that in --help.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:                use,
		Short:              short,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
	}

	cmd.Flags().StringP("directory", "C", "", "Change to DIR before doing anything (passed to the driver)")
	cmd.Flags().BoolP("help", "h", false, "Show this help")

	SetStyledHelp(cmd)

	return cmd
}
