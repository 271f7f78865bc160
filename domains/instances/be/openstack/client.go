package openstack

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/gophercloud/gophercloud/v2"
	osclient "github.com/gophercloud/gophercloud/v2/openstack"
)

// Config carries the connection parameters shared by the identity and
// storage clients.
type Config struct {
	AuthURL     string
	Username    string
	Password    string
	DomainName  string
	ProjectName string
	Region      string
	// InsecureTLS skips certificate verification; for backends behind a
	// self-signed certificate.
	InsecureTLS bool
}

// adminAuthOptions builds auth options for the node's admin principal.
func (c Config) adminAuthOptions() gophercloud.AuthOptions {
	return gophercloud.AuthOptions{
		IdentityEndpoint: c.AuthURL,
		Username:         c.Username,
		Password:         c.Password,
		DomainName:       c.DomainName,
		TenantName:       c.ProjectName,
		AllowReauth:      true,
	}
}

// newProvider authenticates against Keystone and returns a provider client.
func newProvider(ctx context.Context, cfg Config, opts gophercloud.AuthOptions) (*gophercloud.ProviderClient, error) {
	provider, err := osclient.NewClient(opts.IdentityEndpoint)
	if err != nil {
		return nil, fmt.Errorf("new openstack client: %w", err)
	}

	if cfg.InsecureTLS {
		provider.HTTPClient = http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}

	if err := osclient.Authenticate(ctx, provider, opts); err != nil {
		return nil, fmt.Errorf("authenticate against %s: %w", opts.IdentityEndpoint, err)
	}
	return provider, nil
}

func isNotFound(err error) bool {
	return gophercloud.ResponseCodeIs(err, http.StatusNotFound)
}
