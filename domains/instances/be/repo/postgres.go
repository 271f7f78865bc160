package repo

import (
	"context"
	"errors"

	"github.com/hydranodes/swift-broker/domains/instances/be/service"
	"github.com/hydranodes/swift-broker/platform/go/persistence"
)

// PostgresRepository adapts the pgx-backed instance store to the service
// repository contract.
type PostgresRepository struct {
	store *persistence.InstanceStore
}

// NewPostgresRepository constructs a PostgresRepository.
func NewPostgresRepository(store *persistence.InstanceStore) *PostgresRepository {
	if store == nil {
		panic("instance store is required")
	}
	return &PostgresRepository{store: store}
}

func (r *PostgresRepository) Get(ctx context.Context, name string) (service.Instance, error) {
	rec, err := r.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return service.Instance{}, service.ErrInstanceNotFound
		}
		return service.Instance{}, err
	}
	return toInstance(rec), nil
}

func (r *PostgresRepository) Put(ctx context.Context, instance service.Instance) error {
	_, err := r.store.Put(ctx, persistence.InstanceRecord{
		Name:           instance.Name,
		TenantID:       instance.TenantID,
		TenantName:     instance.TenantName,
		AccountMetaKey: instance.AccountMetaKey,
	})
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, name string) error {
	if err := r.store.Delete(ctx, name); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return service.ErrInstanceNotFound
		}
		return err
	}
	return nil
}

func (r *PostgresRepository) All(ctx context.Context) ([]service.Instance, error) {
	records, err := r.store.All(ctx)
	if err != nil {
		return nil, err
	}

	instances := make([]service.Instance, 0, len(records))
	for _, rec := range records {
		instances = append(instances, toInstance(rec))
	}
	return instances, nil
}

func toInstance(rec persistence.InstanceRecord) service.Instance {
	return service.Instance{
		Name:           rec.Name,
		TenantID:       rec.TenantID,
		TenantName:     rec.TenantName,
		AccountMetaKey: rec.AccountMetaKey,
	}
}

// Ensure interface compliance.
var _ service.Repository = (*PostgresRepository)(nil)
