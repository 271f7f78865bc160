package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the node configuration, loaded once at startup from the
// environment. OS_* variables follow the usual OpenStack client naming so the
// node can share credentials with the standard tooling.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Instance record store.
	DatabaseURL    string `env:"DATABASE_URL,required"`
	InstanceSchema string `env:"INSTANCE_SCHEMA" envDefault:"broker"`

	// Identity backend (Keystone) admin credentials.
	AuthURL       string `env:"OS_AUTH_URL,required"`
	AdminUsername string `env:"OS_USERNAME,required"`
	AdminPassword string `env:"OS_PASSWORD,required"`
	AdminDomain   string `env:"OS_DOMAIN_NAME" envDefault:"Default"`
	AdminProject  string `env:"OS_PROJECT_NAME"`
	Region        string `env:"OS_REGION_NAME"`

	// Storage backend (Swift) connection parameters handed out in credentials.
	AvailabilityZone string `env:"SWIFT_AVAILABILITY_ZONE" envDefault:"nova"`
	AuthVersion      string `env:"SWIFT_AUTH_VERSION" envDefault:"v3"`
	ServiceType      string `env:"SWIFT_SERVICE_TYPE" envDefault:"object-store"`
	SelfSignedSSL    bool   `env:"SWIFT_SELF_SIGNED_SSL" envDefault:"false"`

	// Provisioning parameters.
	OperatorRoleID string   `env:"SWIFT_OPERATOR_ROLE_ID,required"`
	NameSuffix     string   `env:"SWIFT_NAME_SUFFIX,required"`
	Plans          []string `env:"SWIFT_PLANS" envDefault:"free"`
	QuotaBytes     int64    `env:"SWIFT_QUOTA_BYTES" envDefault:"10737418240"`
	TotalCapacity  int64    `env:"SWIFT_CAPACITY" envDefault:"200"`
	CapacityUnit   int64    `env:"SWIFT_CAPACITY_UNIT" envDefault:"1"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.CapacityUnit <= 0 {
		return Config{}, fmt.Errorf("capacity unit must be positive, got %d", cfg.CapacityUnit)
	}
	if len(cfg.Plans) == 0 {
		return Config{}, fmt.Errorf("at least one plan is required")
	}
	return cfg, nil
}
