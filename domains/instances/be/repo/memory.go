package repo

import (
	"context"
	"sort"
	"sync"

	"github.com/hydranodes/swift-broker/domains/instances/be/service"
)

// MemoryRepository is a simple in-memory implementation suitable for tests
// and early development.
type MemoryRepository struct {
	mu     sync.RWMutex
	byName map[string]service.Instance
}

// NewMemoryRepository constructs a MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byName: make(map[string]service.Instance)}
}

func (r *MemoryRepository) Get(ctx context.Context, name string) (service.Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instance, ok := r.byName[name]
	if !ok {
		return service.Instance{}, service.ErrInstanceNotFound
	}
	return instance, nil
}

func (r *MemoryRepository) Put(ctx context.Context, instance service.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[instance.Name] = instance
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[name]; !ok {
		return service.ErrInstanceNotFound
	}
	delete(r.byName, name)
	return nil
}

func (r *MemoryRepository) All(ctx context.Context) ([]service.Instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	instances := make([]service.Instance, 0, len(r.byName))
	for _, instance := range r.byName {
		instances = append(instances, instance)
	}
	sort.Slice(instances, func(i, j int) bool { return instances[i].Name < instances[j].Name })
	return instances, nil
}

// Ensure interface compliance.
var _ service.Repository = (*MemoryRepository)(nil)
