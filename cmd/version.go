package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

const versionLongDescription = `Print the ocdsmap build version, its module path, the Go toolchain it was
built with, and the OCDS version written into release packages by default.`

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the ocdsmap version",
		Long:  versionLongDescription,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println("ocds version\t", defaultOCDSVersion)

			info, ok := debug.ReadBuildInfo()
			if !ok || info.Main.Version == "" {
				cmd.Println("ocdsmap version\t unknown")
				return
			}

			cmd.Println("ocdsmap version\t", info.Main.Version)
			cmd.Println("module\t\t", info.Main.Path)
			cmd.Println("go version\t", info.GoVersion)
		},
	}
}

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func init() {
	rootCmd.AddCommand(versionCmd)
}
