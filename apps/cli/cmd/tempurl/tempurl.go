package tempurlcmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hydranodes/swift-broker/domains/instances/be/openstack"
)

// Command signs a temporary object URL with an account meta key. Pure local
// computation; no backend connection is needed.
func Command() *cobra.Command {
	var (
		objectURL string
		metaKey   string
		ttl       time.Duration
		expiresAt int64
	)

	c := &cobra.Command{
		Use:   "tempurl",
		Short: "Sign a time-limited GET URL for one object",
		RunE: func(cmd *cobra.Command, args []string) error {
			expires := time.Now().Add(ttl)
			if expiresAt > 0 {
				expires = time.Unix(expiresAt, 0)
			}

			signed, err := openstack.SignTemporaryURL(objectURL, expires, metaKey)
			if err != nil {
				return fmt.Errorf("sign temp url: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	c.Flags().StringVar(&objectURL, "url", "", "Public object URL (https://host/v1/AUTH_tenant/container/object)")
	c.Flags().StringVar(&metaKey, "key", "", "Account temp URL meta key (account_meta_key from the credential)")
	c.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Validity window from now")
	c.Flags().Int64Var(&expiresAt, "expires", 0, "Absolute expiry as a Unix timestamp (overrides --ttl)")

	_ = c.MarkFlagRequired("url")
	_ = c.MarkFlagRequired("key")
	return c
}
