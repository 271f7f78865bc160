package root

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command for the broker node CLI. Subcommands (instance,
// announce, tempurl) are attached here.
var rootCmd = &cobra.Command{
	Use:           "swift-broker",
	Short:         "Swift service broker node CLI",
	Long:          "Operational commands for the Swift object storage broker node (instance lifecycle, capacity announcements, temp URL signing).",
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// Root returns the mutable root command for wiring from subpackages.
func Root() *cobra.Command {
	return rootCmd
}
