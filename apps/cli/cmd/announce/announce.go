package announcecmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/hydranodes/swift-broker/apps/cli/runtime"
)

// Command prints the node's capacity announcement.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "announce",
		Short: "Print the node's available capacity",
		Long:  "Count the provisioned instances in the record store and print the capacity announcement the node would publish.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			node, err := runtime.Build(ctx)
			if err != nil {
				return err
			}
			defer node.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(node.Service.Announcement())
		},
	}
}
