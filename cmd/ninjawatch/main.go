package main

import (
	"os"
	"strings"

	"github.com/grovetools/ninjawatch/cli"
	"github.com/grovetools/ninjawatch/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()

	if err := rootCmd.Execute(); err != nil {
		verbose := strings.EqualFold(os.Getenv("NINJAWATCH_LOG_LEVEL"), "debug")
		_ = cli.NewErrorHandler(verbose).Handle(err)
		os.Exit(1)
	}
}
