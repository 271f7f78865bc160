package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hydranodes/swift-broker/platform/go/secrets"
)

// Instance is the domain model for one provisioned storage account. An
// instance is either fully absent or fully backed by a tenant and account
// metadata on the backend; the orchestrator never leaves a record without
// its tenant beyond the duration of a single failed operation.
type Instance struct {
	Name           string
	TenantID       string
	TenantName     string
	AccountMetaKey string
}

// Credential is the ephemeral result of provision/bind. It is never
// persisted; every bind mints a brand-new backend user.
type Credential struct {
	Name             string `json:"name"`
	AuthURL          string `json:"authentication_uri"`
	UserName         string `json:"user_name"`
	UserID           string `json:"user_id"`
	Password         string `json:"password"`
	TenantName       string `json:"tenant_name"`
	TenantID         string `json:"tenant_id"`
	AvailabilityZone string `json:"availability_zone"`
	AuthVersion      string `json:"authentication_version"`
	AccountMetaKey   string `json:"account_meta_key"`
	SelfSignedSSL    bool   `json:"self_signed_ssl"`
	ServiceType      string `json:"service_type"`
}

// Announcement reports the node's remaining capacity.
type Announcement struct {
	AvailableCapacity int64 `json:"available_capacity"`
	CapacityUnit      int64 `json:"capacity_unit"`
}

// Repository abstracts persistence of instance records.
type Repository interface {
	Get(ctx context.Context, name string) (Instance, error)
	Put(ctx context.Context, instance Instance) error
	Delete(ctx context.Context, name string) error
	All(ctx context.Context) ([]Instance, error)
}

// Config carries the backend connection parameters embedded in issued
// credentials plus the provisioning knobs.
type Config struct {
	AuthURL          string
	AvailabilityZone string
	AuthVersion      string
	ServiceType      string
	SelfSignedSSL    bool
	OperatorRoleID   string
	NameSuffix       string
	Plans            []string
	QuotaBytes       int64
}

// Service is the provisioning orchestrator. It owns the lifecycle of every
// instance record and of every backend tenant/user it creates. Operations on
// distinct instance names may run concurrently; the capacity tracker is the
// only shared mutable state.
type Service struct {
	repo     Repository
	identity IdentityGateway
	storage  StorageConnector
	capacity *CapacityTracker
	cfg      Config
	logger   *zap.Logger
}

// New constructs a Service with required dependencies.
func New(repo Repository, identity IdentityGateway, storage StorageConnector, capacity *CapacityTracker, cfg Config, logger *zap.Logger) *Service {
	if repo == nil {
		panic("instance repo is required")
	}
	if identity == nil {
		panic("identity gateway is required")
	}
	if storage == nil {
		panic("storage connector is required")
	}
	if capacity == nil {
		panic("capacity tracker is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		identity: identity,
		storage:  storage,
		capacity: capacity,
		cfg:      cfg,
		logger:   logger,
	}
}

// InitializeCapacity counts existing instance records and seeds the capacity
// tracker. Called once at startup, before the node announces itself.
func (s *Service) InitializeCapacity(ctx context.Context) error {
	records, err := s.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("list instances: %w", err)
	}
	return s.capacity.Initialize(len(records))
}

// Announcement reports available capacity and the capacity unit.
func (s *Service) Announcement() Announcement {
	available, unit := s.capacity.Snapshot()
	return Announcement{AvailableCapacity: available, CapacityUnit: unit}
}

// VerifyOperatorRole checks that the configured swift-operator role exists on
// the identity backend. Run at startup to fail fast on misconfiguration.
func (s *Service) VerifyOperatorRole(ctx context.Context) error {
	role, err := s.identity.FindRole(ctx, s.cfg.OperatorRoleID)
	if err != nil {
		return err
	}
	if role == nil {
		return fmt.Errorf("operator role %s not found", s.cfg.OperatorRoleID)
	}
	return nil
}

// Provision allocates a backend tenant, account metadata and the first
// credential for a new instance. Any failure before the record is persisted
// triggers a best-effort rollback of whatever was partially created; the
// original error is always the one returned.
func (s *Service) Provision(ctx context.Context, plan string) (Credential, error) {
	if !s.planSupported(plan) {
		return Credential{}, fmt.Errorf("%w: %q", ErrInvalidPlan, plan)
	}

	instance := Instance{Name: secrets.RandomName()}
	instance.TenantName = fmt.Sprintf("%s.swift.tenant@%s", instance.Name, s.cfg.NameSuffix)

	s.logger.Info("provisioning instance",
		zap.String("instance", instance.Name),
		zap.String("plan", plan))

	tenant, err := s.identity.CreateTenant(ctx, instance.TenantName)
	if err != nil {
		s.rollback(ctx, instance, err)
		return Credential{}, err
	}
	instance.TenantID = tenant.ID
	instance.AccountMetaKey = secrets.RandomPassword(secrets.DefaultPasswordLength)

	if err := s.repo.Put(ctx, instance); err != nil {
		s.rollback(ctx, instance, err)
		return Credential{}, fmt.Errorf("%w: %s: %v", ErrInstanceSaveFailed, instance.Name, err)
	}

	// Reserved only after the record is persisted so a failed provision
	// cannot leak a unit.
	if err := s.capacity.Reserve(); err != nil {
		s.rollback(ctx, instance, err)
		if delErr := s.repo.Delete(ctx, instance.Name); delErr != nil {
			s.logger.Error("could not remove record after capacity refusal",
				zap.String("instance", instance.Name), zap.Error(delErr))
		}
		return Credential{}, err
	}

	return s.mintCredential(ctx, instance)
}

// Bind mints a brand-new backend user with the operator role for the
// instance's tenant and returns a credential for it. Repeated binds never
// reuse or invalidate prior users.
func (s *Service) Bind(ctx context.Context, name string) (Credential, error) {
	instance, err := s.getInstance(ctx, name)
	if err != nil {
		return Credential{}, err
	}
	return s.mintCredential(ctx, instance)
}

// Unbind deletes the backend user identified by the credential.
func (s *Service) Unbind(ctx context.Context, credential Credential) (bool, error) {
	s.logger.Debug("unbinding credential",
		zap.String("instance", credential.Name),
		zap.String("user_id", credential.UserID))

	if err := s.identity.DeleteUser(ctx, credential.UserID); err != nil {
		return false, err
	}
	return true, nil
}

// Unprovision tears down the instance's backend tenant, users and storage
// account, then deletes the persisted record and releases its capacity unit.
// An empty name is an explicit no-op, not an error.
func (s *Service) Unprovision(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return true, nil
	}

	instance, err := s.getInstance(ctx, name)
	if err != nil {
		return false, err
	}

	s.logger.Info("unprovisioning instance", zap.String("instance", instance.Name))

	if err := s.teardown(ctx, instance); err != nil {
		return false, err
	}
	if err := s.repo.Delete(ctx, instance.Name); err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrInstanceDestroyFailed, instance.Name, err)
	}

	s.capacity.Release()
	return true, nil
}

func (s *Service) planSupported(plan string) bool {
	for _, p := range s.cfg.Plans {
		if p == plan {
			return true
		}
	}
	return false
}

func (s *Service) getInstance(ctx context.Context, name string) (Instance, error) {
	instance, err := s.repo.Get(ctx, name)
	if err != nil {
		// Only a genuinely absent record maps to ErrInstanceNotFound; a store
		// outage must keep its own detail so callers don't treat the instance
		// as already gone.
		if errors.Is(err, ErrInstanceNotFound) {
			return Instance{}, fmt.Errorf("%w: %s", ErrInstanceNotFound, name)
		}
		return Instance{}, fmt.Errorf("get instance %s: %w", name, err)
	}
	return instance, nil
}

type operatorUser struct {
	User     User
	Password string
}

// createOperatorUser mints a new backend user scoped to the tenant and
// assigns it the swift-operator role. Used by bind and by teardown: the
// node's admin principal is not allowed to delete a storage account, only a
// member of the tenant holding the operator role is.
func (s *Service) createOperatorUser(ctx context.Context, tenant Tenant) (operatorUser, error) {
	name := fmt.Sprintf("%s.swift.user@%s", secrets.RandomName(), s.cfg.NameSuffix)
	password := secrets.RandomPassword(secrets.DefaultPasswordLength)

	user, err := s.identity.CreateUser(ctx, tenant, name, password)
	if err != nil {
		return operatorUser{}, err
	}
	if err := s.identity.AssignRole(ctx, s.cfg.OperatorRoleID, user, tenant); err != nil {
		return operatorUser{}, err
	}
	return operatorUser{User: user, Password: password}, nil
}

// mintCredential creates an operator user for the instance's tenant, pushes
// the account meta key and quota onto the storage account, and assembles the
// credential handed back to the caller.
func (s *Service) mintCredential(ctx context.Context, instance Instance) (Credential, error) {
	tenant, err := s.identity.FindTenant(ctx, instance.TenantID)
	if err != nil {
		return Credential{}, err
	}
	if tenant == nil {
		return Credential{}, NewBackendError("find tenant",
			fmt.Errorf("tenant %s for instance %s does not exist", instance.TenantID, instance.Name))
	}

	op, err := s.createOperatorUser(ctx, *tenant)
	if err != nil {
		return Credential{}, err
	}

	account, err := s.storage.Connect(ctx, StorageCredentials{
		Username:   op.User.Name,
		Password:   op.Password,
		TenantID:   tenant.ID,
		TenantName: tenant.Name,
	})
	if err != nil {
		return Credential{}, err
	}

	// Always overwritten to the same value; idempotent across binds.
	if err := account.SetMetaKeyAndQuota(ctx, instance.AccountMetaKey, s.cfg.QuotaBytes); err != nil {
		return Credential{}, err
	}

	return Credential{
		Name:             instance.Name,
		AuthURL:          s.cfg.AuthURL,
		UserName:         op.User.Name,
		UserID:           op.User.ID,
		Password:         op.Password,
		TenantName:       tenant.Name,
		TenantID:         tenant.ID,
		AvailabilityZone: s.cfg.AvailabilityZone,
		AuthVersion:      s.cfg.AuthVersion,
		AccountMetaKey:   instance.AccountMetaKey,
		SelfSignedSSL:    s.cfg.SelfSignedSSL,
		ServiceType:      s.cfg.ServiceType,
	}, nil
}

// teardown removes the instance's backend state: storage account first (as a
// throwaway operator user), then the tenant's users, then the tenant itself.
// The ordering is mandatory; reversing it strands state that can no longer
// be authenticated against. Idempotent at the tenant-absent check so a
// failed unprovision can be retried.
func (s *Service) teardown(ctx context.Context, instance Instance) error {
	tenant, err := s.identity.FindTenant(ctx, instance.TenantID)
	if err != nil {
		return err
	}
	if tenant == nil {
		s.logger.Info("tenant already absent, skipping backend teardown",
			zap.String("instance", instance.Name),
			zap.String("tenant_id", instance.TenantID))
		return nil
	}

	op, err := s.createOperatorUser(ctx, *tenant)
	if err != nil {
		return err
	}

	account, err := s.storage.Connect(ctx, StorageCredentials{
		Username:   op.User.Name,
		Password:   op.Password,
		TenantID:   tenant.ID,
		TenantName: tenant.Name,
	})
	if err != nil {
		return err
	}

	if err := account.Delete(ctx); err != nil {
		return err
	}

	// Verification read only; the backend usually reports a recently-deleted
	// marker here but its timing varies, so nothing is asserted.
	if meta, err := account.Metadata(ctx); err != nil {
		s.logger.Warn("could not read account metadata after delete",
			zap.String("instance", instance.Name), zap.Error(err))
	} else {
		s.logger.Debug("account metadata after delete",
			zap.String("instance", instance.Name), zap.Any("metadata", meta))
	}

	// Also removes the operator user minted above.
	if err := s.identity.DeleteUsersByTenant(ctx, tenant.ID, s.cfg.NameSuffix); err != nil {
		return err
	}
	if err := s.identity.DeleteTenant(ctx, tenant.ID); err != nil {
		return err
	}
	return nil
}

// rollback reverses a partially executed provisioning saga. Failures here
// are logged and swallowed so they never mask the original error.
func (s *Service) rollback(ctx context.Context, instance Instance, cause error) {
	s.logger.Error("provisioning failed, cleaning up",
		zap.String("instance", instance.Name),
		zap.Error(cause))

	// No tenant ID means tenant creation itself failed; there is nothing on
	// the backend to reverse, and the gateway cannot look up an empty ID.
	if instance.TenantID == "" {
		return
	}

	if err := s.teardown(ctx, instance); err != nil {
		s.logger.Error("could not clean up instance",
			zap.String("instance", instance.Name),
			zap.Error(err))
	}
}
