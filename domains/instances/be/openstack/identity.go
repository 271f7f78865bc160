package openstack

import (
	"context"
	"fmt"
	"strings"

	"github.com/gophercloud/gophercloud/v2"
	osclient "github.com/gophercloud/gophercloud/v2/openstack"
	"github.com/gophercloud/gophercloud/v2/openstack/identity/v3/projects"
	"github.com/gophercloud/gophercloud/v2/openstack/identity/v3/roles"
	"github.com/gophercloud/gophercloud/v2/openstack/identity/v3/users"
	"go.uber.org/zap"

	"github.com/hydranodes/swift-broker/domains/instances/be/service"
)

const tenantDescription = "Swift service broker tenant"

// Identity is the Keystone-backed implementation of the identity gateway.
// It holds a single admin-scoped service client; per-instance users never
// authenticate through it.
type Identity struct {
	client *gophercloud.ServiceClient
	logger *zap.Logger
}

// NewIdentity authenticates the node's admin principal against Keystone and
// returns the gateway.
func NewIdentity(ctx context.Context, cfg Config, logger *zap.Logger) (*Identity, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	provider, err := newProvider(ctx, cfg, cfg.adminAuthOptions())
	if err != nil {
		return nil, err
	}

	client, err := osclient.NewIdentityV3(provider, gophercloud.EndpointOpts{Region: cfg.Region})
	if err != nil {
		return nil, fmt.Errorf("new identity v3 client: %w", err)
	}

	return &Identity{client: client, logger: logger}, nil
}

func (i *Identity) FindTenant(ctx context.Context, id string) (*service.Tenant, error) {
	project, err := projects.Get(ctx, i.client, id).Extract()
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, service.NewBackendError("find tenant", err)
	}
	return &service.Tenant{ID: project.ID, Name: project.Name}, nil
}

func (i *Identity) CreateTenant(ctx context.Context, name string) (service.Tenant, error) {
	i.logger.Info("creating tenant", zap.String("name", name))

	project, err := projects.Create(ctx, i.client, projects.CreateOpts{
		Name:        name,
		Description: tenantDescription,
	}).Extract()
	if err != nil {
		return service.Tenant{}, service.NewBackendError("create tenant", err)
	}
	return service.Tenant{ID: project.ID, Name: project.Name}, nil
}

func (i *Identity) DeleteTenant(ctx context.Context, id string) error {
	i.logger.Info("deleting tenant", zap.String("tenant_id", id))

	if err := projects.Delete(ctx, i.client, id).ExtractErr(); err != nil {
		return service.NewBackendError("delete tenant", err)
	}
	return nil
}

func (i *Identity) CreateUser(ctx context.Context, tenant service.Tenant, name, password string) (service.User, error) {
	i.logger.Info("creating user",
		zap.String("name", name),
		zap.String("tenant_id", tenant.ID))

	user, err := users.Create(ctx, i.client, users.CreateOpts{
		Name:             name,
		Password:         password,
		DefaultProjectID: tenant.ID,
	}).Extract()
	if err != nil {
		return service.User{}, service.NewBackendError("create user", err)
	}
	return service.User{ID: user.ID, Name: user.Name}, nil
}

func (i *Identity) FindUser(ctx context.Context, id string) (*service.User, error) {
	user, err := users.Get(ctx, i.client, id).Extract()
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, service.NewBackendError("find user", err)
	}
	return &service.User{ID: user.ID, Name: user.Name}, nil
}

func (i *Identity) DeleteUser(ctx context.Context, id string) error {
	i.logger.Info("deleting user", zap.String("user_id", id))

	if err := users.Delete(ctx, i.client, id).ExtractErr(); err != nil {
		return service.NewBackendError("delete user", err)
	}
	return nil
}

// DeleteUsersByTenant deletes every user holding a role assignment on the
// tenant whose name ends with nameSuffix; an empty suffix matches all of
// them.
func (i *Identity) DeleteUsersByTenant(ctx context.Context, tenantID, nameSuffix string) error {
	pages, err := roles.ListAssignments(i.client, roles.ListAssignmentsOpts{
		ScopeProjectID: tenantID,
	}).AllPages(ctx)
	if err != nil {
		return service.NewBackendError("list tenant role assignments", err)
	}

	assignments, err := roles.ExtractRoleAssignments(pages)
	if err != nil {
		return service.NewBackendError("list tenant role assignments", err)
	}

	seen := make(map[string]struct{})
	for _, assignment := range assignments {
		userID := assignment.User.ID
		if userID == "" {
			continue
		}
		if _, done := seen[userID]; done {
			continue
		}
		seen[userID] = struct{}{}

		user, err := users.Get(ctx, i.client, userID).Extract()
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return service.NewBackendError("find tenant user", err)
		}
		if nameSuffix != "" && !strings.HasSuffix(user.Name, nameSuffix) {
			continue
		}

		i.logger.Info("deleting tenant user",
			zap.String("tenant_id", tenantID),
			zap.String("user_id", userID),
			zap.String("name", user.Name))
		if err := users.Delete(ctx, i.client, userID).ExtractErr(); err != nil {
			return service.NewBackendError("delete tenant user", err)
		}
	}
	return nil
}

func (i *Identity) FindRole(ctx context.Context, id string) (*service.Role, error) {
	role, err := roles.Get(ctx, i.client, id).Extract()
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, service.NewBackendError("find role", err)
	}
	return &service.Role{ID: role.ID, Name: role.Name}, nil
}

func (i *Identity) AssignRole(ctx context.Context, roleID string, user service.User, tenant service.Tenant) error {
	i.logger.Info("assigning role",
		zap.String("role_id", roleID),
		zap.String("user_id", user.ID),
		zap.String("tenant_id", tenant.ID))

	err := roles.Assign(ctx, i.client, roleID, roles.AssignOpts{
		UserID:    user.ID,
		ProjectID: tenant.ID,
	}).ExtractErr()
	if err != nil {
		return service.NewBackendError("assign role", err)
	}
	return nil
}

// Ensure interface compliance.
var _ service.IdentityGateway = (*Identity)(nil)
