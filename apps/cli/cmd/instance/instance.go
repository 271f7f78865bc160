package instancecmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hydranodes/swift-broker/apps/cli/runtime"
)

// Command groups the instance lifecycle operations.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instance",
		Short: "Instance lifecycle (provision/bind/unbind/unprovision)",
	}

	cmd.AddCommand(provisionCommand())
	cmd.AddCommand(bindCommand())
	cmd.AddCommand(unbindCommand())
	cmd.AddCommand(unprovisionCommand())
	return cmd
}

func provisionCommand() *cobra.Command {
	var plan string

	c := &cobra.Command{
		Use:   "provision",
		Short: "Provision a new storage instance and print its first credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			node, err := runtime.Build(ctx)
			if err != nil {
				return err
			}
			defer node.Close()

			credential, err := node.Service.Provision(ctx, plan)
			if err != nil {
				return fmt.Errorf("provision: %w", err)
			}
			return printJSON(cmd, credential)
		},
	}

	c.Flags().StringVar(&plan, "plan", "free", "Service plan for the new instance")
	return c
}

func bindCommand() *cobra.Command {
	var name string

	c := &cobra.Command{
		Use:   "bind",
		Short: "Mint a fresh credential for an existing instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			node, err := runtime.Build(ctx)
			if err != nil {
				return err
			}
			defer node.Close()

			credential, err := node.Service.Bind(ctx, name)
			if err != nil {
				return fmt.Errorf("bind: %w", err)
			}
			return printJSON(cmd, credential)
		},
	}

	c.Flags().StringVar(&name, "name", "", "Instance name")
	_ = c.MarkFlagRequired("name")
	return c
}

func unbindCommand() *cobra.Command {
	var credentialPath string

	c := &cobra.Command{
		Use:   "unbind",
		Short: "Revoke a previously issued credential",
		Long:  "Revoke a previously issued credential by deleting its backend user. Reads the credential JSON printed by provision/bind from a file, or from stdin when the path is \"-\".",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			credential, err := runtime.LoadCredential(cmd.InOrStdin(), credentialPath)
			if err != nil {
				return err
			}

			node, err := runtime.Build(ctx)
			if err != nil {
				return err
			}
			defer node.Close()

			if _, err := node.Service.Unbind(ctx, credential); err != nil {
				return fmt.Errorf("unbind: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Credential revoked. User: %s (%s)\n", credential.UserName, credential.UserID)
			return nil
		},
	}

	c.Flags().StringVar(&credentialPath, "credential", "", "Path to the credential JSON (\"-\" for stdin)")
	_ = c.MarkFlagRequired("credential")
	return c
}

func unprovisionCommand() *cobra.Command {
	var name string

	c := &cobra.Command{
		Use:   "unprovision",
		Short: "Tear down an instance's backend tenant, users and storage account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			node, err := runtime.Build(ctx)
			if err != nil {
				return err
			}
			defer node.Close()

			if _, err := node.Service.Unprovision(ctx, name); err != nil {
				return fmt.Errorf("unprovision: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Instance unprovisioned: %s\n", name)
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "Instance name")
	_ = c.MarkFlagRequired("name")
	return c
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
