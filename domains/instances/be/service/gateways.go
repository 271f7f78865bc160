package service

import "context"

// Tenant is a backend-side isolation boundary (Keystone project).
type Tenant struct {
	ID   string
	Name string
}

// User is a backend identity scoped to a tenant.
type User struct {
	ID   string
	Name string
}

// Role is a backend role definition.
type Role struct {
	ID   string
	Name string
}

// IdentityGateway is the thin typed interface to the identity backend.
// Find* operations report absence with a nil result instead of an error so
// the orchestrator can branch on it; every mutating operation surfaces a
// *BackendError on remote failure.
type IdentityGateway interface {
	FindTenant(ctx context.Context, id string) (*Tenant, error)
	CreateTenant(ctx context.Context, name string) (Tenant, error)
	DeleteTenant(ctx context.Context, id string) error
	CreateUser(ctx context.Context, tenant Tenant, name, password string) (User, error)
	FindUser(ctx context.Context, id string) (*User, error)
	DeleteUser(ctx context.Context, id string) error
	// DeleteUsersByTenant deletes every user belonging to the tenant whose
	// name ends with nameSuffix; an empty suffix deletes them all.
	DeleteUsersByTenant(ctx context.Context, tenantID, nameSuffix string) error
	FindRole(ctx context.Context, id string) (*Role, error)
	AssignRole(ctx context.Context, roleID string, user User, tenant Tenant) error
}

// StorageCredentials identifies one backend user scoped to one tenant for
// opening a storage connection.
type StorageCredentials struct {
	Username   string
	Password   string
	TenantID   string
	TenantName string
}

// StorageAccount is a live connection to one tenant's storage account.
type StorageAccount interface {
	// SetMetaKeyAndQuota writes the temp-URL signing key and the byte quota
	// as account metadata in one update, verified by a follow-up read.
	SetMetaKeyAndQuota(ctx context.Context, metaKey string, quotaBytes int64) error
	Metadata(ctx context.Context) (map[string]string, error)
	Delete(ctx context.Context) error
}

// StorageConnector opens storage connections on behalf of freshly minted
// backend users. Connections authenticate as the given user, never as the
// node's admin principal.
type StorageConnector interface {
	Connect(ctx context.Context, creds StorageCredentials) (StorageAccount, error)
}
