// Package runtime assembles a fully wired broker node for the CLI commands:
// configuration, logging, the record store and the OpenStack gateways.
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hydranodes/swift-broker/domains/instances/be/openstack"
	"github.com/hydranodes/swift-broker/domains/instances/be/repo"
	"github.com/hydranodes/swift-broker/domains/instances/be/service"
	"github.com/hydranodes/swift-broker/platform/go/config"
	"github.com/hydranodes/swift-broker/platform/go/logging"
	"github.com/hydranodes/swift-broker/platform/go/persistence"
)

// Node bundles the wired service with the resources it holds open.
type Node struct {
	Cfg     config.Config
	Logger  *zap.Logger
	Service *service.Service

	pool *pgxpool.Pool
}

// Build loads configuration from the environment, connects to the record
// store and the identity backend, verifies the operator role and seeds the
// capacity tracker from the existing records. The caller owns the returned
// Node and must Close it.
func Build(ctx context.Context) (*Node, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(logging.Config{Component: "swift-node", Level: cfg.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: cfg.DatabaseURL})
	if err != nil {
		return nil, fmt.Errorf("init pool: %w", err)
	}

	store, err := persistence.NewInstanceStore(ctx, pool, cfg.InstanceSchema)
	if err != nil {
		persistence.ClosePool(pool)
		return nil, fmt.Errorf("init instance store: %w", err)
	}
	instanceRepo := repo.NewPostgresRepository(store)

	osCfg := openstack.Config{
		AuthURL:     cfg.AuthURL,
		Username:    cfg.AdminUsername,
		Password:    cfg.AdminPassword,
		DomainName:  cfg.AdminDomain,
		ProjectName: cfg.AdminProject,
		Region:      cfg.Region,
		InsecureTLS: cfg.SelfSignedSSL,
	}

	identity, err := openstack.NewIdentity(ctx, osCfg, logger)
	if err != nil {
		persistence.ClosePool(pool)
		return nil, fmt.Errorf("connect identity backend: %w", err)
	}
	connector := openstack.NewConnector(osCfg, logger)

	tracker := service.NewCapacityTracker(cfg.TotalCapacity, cfg.CapacityUnit)
	svc := service.New(instanceRepo, identity, connector, tracker, service.Config{
		AuthURL:          cfg.AuthURL,
		AvailabilityZone: cfg.AvailabilityZone,
		AuthVersion:      cfg.AuthVersion,
		ServiceType:      cfg.ServiceType,
		SelfSignedSSL:    cfg.SelfSignedSSL,
		OperatorRoleID:   cfg.OperatorRoleID,
		NameSuffix:       cfg.NameSuffix,
		Plans:            cfg.Plans,
		QuotaBytes:       cfg.QuotaBytes,
	}, logger)

	if err := svc.VerifyOperatorRole(ctx); err != nil {
		persistence.ClosePool(pool)
		return nil, fmt.Errorf("verify operator role: %w", err)
	}
	if err := svc.InitializeCapacity(ctx); err != nil {
		persistence.ClosePool(pool)
		return nil, fmt.Errorf("initialize capacity: %w", err)
	}

	return &Node{Cfg: cfg, Logger: logger, Service: svc, pool: pool}, nil
}

// Close releases the node's resources.
func (n *Node) Close() {
	persistence.ClosePool(n.pool)
	_ = n.Logger.Sync()
}

// BuildConnector wires only the configuration, logger and storage connector.
// For commands that act with an already issued credential and need neither
// the record store nor the identity backend.
func BuildConnector() (*openstack.Connector, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewLogger(logging.Config{Component: "swift-node", Level: cfg.LogLevel})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	connector := openstack.NewConnector(openstack.Config{
		AuthURL:     cfg.AuthURL,
		Username:    cfg.AdminUsername,
		Password:    cfg.AdminPassword,
		DomainName:  cfg.AdminDomain,
		ProjectName: cfg.AdminProject,
		Region:      cfg.Region,
		InsecureTLS: cfg.SelfSignedSSL,
	}, logger)
	return connector, logger, nil
}

// LoadCredential reads a credential JSON document (as printed by
// provision/bind) from the given path, or from in when the path is "-".
func LoadCredential(in io.Reader, path string) (service.Credential, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(in)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return service.Credential{}, fmt.Errorf("read credential: %w", err)
	}

	var credential service.Credential
	if err := json.Unmarshal(raw, &credential); err != nil {
		return service.Credential{}, fmt.Errorf("parse credential: %w", err)
	}
	if credential.UserID == "" {
		return service.Credential{}, fmt.Errorf("credential has no user_id")
	}
	return credential, nil
}
