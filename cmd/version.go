package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Actual values are set at build time with -ldflags "-X".
var (
	version = "unknown"
	commit  = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if commit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s (%s)\n", app, version, commit)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s version: %s\n", app, version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
