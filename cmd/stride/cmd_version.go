package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is the framework version, overridable at build time via
// -ldflags "-X main.Version=...".
var Version = "0.1.0"

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stride %s (%s/%s, %s)\n", Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
	},
}
