package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sheetz version and build details",
	Run: func(cmd *cobra.Command, args []string) {
		short, _ := cmd.Flags().GetBool("short")
		v := resolveVersion(version, readModuleVersion())
		if short {
			fmt.Println(v)
			return
		}
		fmt.Printf("sheetz %s (%s, %s/%s)\n", v, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

// resolveVersion prefers the stamped version, then the module version
// recorded by `go install`.
func resolveVersion(stamped, module string) string {
	switch {
	case stamped != "":
		return stamped
	case module != "" && module != "(devel)":
		return module
	}
	return "(devel)"
}

func readModuleVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	return info.Main.Version
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version number")
}
