package openstack

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gophercloud/gophercloud/v2"
	osclient "github.com/gophercloud/gophercloud/v2/openstack"
	"github.com/gophercloud/gophercloud/v2/openstack/objectstorage/v1/accounts"
	"github.com/gophercloud/gophercloud/v2/openstack/objectstorage/v1/containers"
	"go.uber.org/zap"

	"github.com/hydranodes/swift-broker/domains/instances/be/service"
)

// Connector opens Swift connections authenticated as freshly minted backend
// users scoped to one tenant.
type Connector struct {
	cfg    Config
	logger *zap.Logger
}

// NewConnector constructs a Connector.
func NewConnector(cfg Config, logger *zap.Logger) *Connector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connector{cfg: cfg, logger: logger}
}

func (c *Connector) Connect(ctx context.Context, creds service.StorageCredentials) (service.StorageAccount, error) {
	return c.ConnectAccount(ctx, creds)
}

// ConnectAccount is Connect returning the concrete account handle, for
// callers that need the container operations beyond the service contract.
func (c *Connector) ConnectAccount(ctx context.Context, creds service.StorageCredentials) (*Account, error) {
	opts := gophercloud.AuthOptions{
		IdentityEndpoint: c.cfg.AuthURL,
		Username:         creds.Username,
		Password:         creds.Password,
		DomainName:       c.cfg.DomainName,
		AllowReauth:      true,
		Scope: &gophercloud.AuthScope{
			ProjectID: creds.TenantID,
		},
	}

	provider, err := newProvider(ctx, c.cfg, opts)
	if err != nil {
		return nil, service.NewBackendError("connect storage", err)
	}

	client, err := osclient.NewObjectStorageV1(provider, gophercloud.EndpointOpts{Region: c.cfg.Region})
	if err != nil {
		return nil, service.NewBackendError("connect storage", err)
	}

	return &Account{
		client: client,
		logger: c.logger.With(zap.String("tenant_id", creds.TenantID)),
	}, nil
}

// Account is a live Swift connection scoped to one tenant's storage account.
type Account struct {
	client *gophercloud.ServiceClient
	logger *zap.Logger
}

// SetMetaKeyAndQuota writes the temp-URL signing key and the byte quota as
// account metadata in one update, then reads the account back to confirm the
// key took effect.
func (a *Account) SetMetaKeyAndQuota(ctx context.Context, metaKey string, quotaBytes int64) error {
	a.logger.Info("setting account meta key and quota", zap.Int64("quota_bytes", quotaBytes))

	_, err := accounts.Update(ctx, a.client, accounts.UpdateOpts{
		TempURLKey: metaKey,
		Metadata: map[string]string{
			"Quota-Bytes": strconv.FormatInt(quotaBytes, 10),
		},
	}).Extract()
	if err != nil {
		return service.NewBackendError("set account metadata", err)
	}

	metadata, err := a.Metadata(ctx)
	if err != nil {
		return err
	}
	if got := metadataValue(metadata, "Temp-Url-Key"); got != metaKey {
		return service.NewBackendError("set account metadata",
			fmt.Errorf("temp URL key readback mismatch (got %q)", got))
	}
	return nil
}

// Metadata reads the account metadata headers.
func (a *Account) Metadata(ctx context.Context) (map[string]string, error) {
	metadata, err := accounts.Get(ctx, a.client, accounts.GetOpts{}).ExtractMetadata()
	if err != nil {
		return nil, service.NewBackendError("get account metadata", err)
	}
	return metadata, nil
}

// Delete removes the storage account. This deletes every container and
// object under it; the backend only allows it for tenant members holding
// the operator role.
func (a *Account) Delete(ctx context.Context) error {
	a.logger.Info("deleting storage account")

	url := strings.TrimSuffix(a.client.Endpoint, "/")
	resp, err := a.client.Request(ctx, http.MethodDelete, url, &gophercloud.RequestOpts{
		OkCodes: []int{http.StatusNoContent},
	})
	if err != nil {
		return service.NewBackendError("delete account", err)
	}
	defer resp.Body.Close()
	return nil
}

// CreateContainer creates a container under the account.
func (a *Account) CreateContainer(ctx context.Context, name string) error {
	_, err := containers.Create(ctx, a.client, name, containers.CreateOpts{}).Extract()
	if err != nil {
		return service.NewBackendError("create container", err)
	}
	return nil
}

// MakeContainerPublic opens the container's read ACL to unauthenticated
// access; MakeContainerPrivate reverts it.
func (a *Account) MakeContainerPublic(ctx context.Context, name string) error {
	return a.setContainerReadACL(ctx, name, ".r:*,.rlistings")
}

func (a *Account) MakeContainerPrivate(ctx context.Context, name string) error {
	return a.setContainerReadACL(ctx, name, "")
}

func (a *Account) setContainerReadACL(ctx context.Context, name, acl string) error {
	_, err := containers.Update(ctx, a.client, name, containers.UpdateOpts{
		ContainerRead: &acl,
	}).Extract()
	if err != nil {
		return service.NewBackendError("update container acl", err)
	}
	return nil
}

func metadataValue(metadata map[string]string, key string) string {
	for k, v := range metadata {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// Ensure interface compliance.
var _ service.StorageConnector = (*Connector)(nil)
var _ service.StorageAccount = (*Account)(nil)
