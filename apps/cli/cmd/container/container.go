package containercmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hydranodes/swift-broker/apps/cli/runtime"
	"github.com/hydranodes/swift-broker/domains/instances/be/openstack"
	"github.com/hydranodes/swift-broker/domains/instances/be/service"
)

// Command groups container helpers. All of them authenticate with an issued
// credential, never with the node's admin principal.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "container",
		Short: "Container utilities (create, ACL toggles) using an issued credential",
	}

	cmd.AddCommand(containerCommand("create", "Create a container in the instance's account",
		func(cmd *cobra.Command, account *openstack.Account, name string) error {
			if err := account.CreateContainer(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Container created: %s\n", name)
			return nil
		}))
	cmd.AddCommand(containerCommand("public", "Open the container's read ACL to unauthenticated access",
		func(cmd *cobra.Command, account *openstack.Account, name string) error {
			if err := account.MakeContainerPublic(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Container public: %s\n", name)
			return nil
		}))
	cmd.AddCommand(containerCommand("private", "Revert the container's read ACL to authenticated access",
		func(cmd *cobra.Command, account *openstack.Account, name string) error {
			if err := account.MakeContainerPrivate(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Container private: %s\n", name)
			return nil
		}))
	return cmd
}

func containerCommand(use, short string, run func(cmd *cobra.Command, account *openstack.Account, name string) error) *cobra.Command {
	var (
		credentialPath string
		name           string
	)

	c := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			credential, err := runtime.LoadCredential(cmd.InOrStdin(), credentialPath)
			if err != nil {
				return err
			}

			connector, logger, err := runtime.BuildConnector()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			account, err := connector.ConnectAccount(cmd.Context(), service.StorageCredentials{
				Username:   credential.UserName,
				Password:   credential.Password,
				TenantID:   credential.TenantID,
				TenantName: credential.TenantName,
			})
			if err != nil {
				return fmt.Errorf("connect storage: %w", err)
			}

			return run(cmd, account, name)
		},
	}

	c.Flags().StringVar(&credentialPath, "credential", "", "Path to the credential JSON (\"-\" for stdin)")
	c.Flags().StringVar(&name, "name", "", "Container name")
	_ = c.MarkFlagRequired("credential")
	_ = c.MarkFlagRequired("name")
	return c
}
