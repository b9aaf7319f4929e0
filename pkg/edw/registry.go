package edw

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/de-tools/edw-harness/pkg/models/domain"
)

// Registry manages provider factories keyed by cloud and service type
type Registry interface {
	// Register adds a new provider factory
	Register(key domain.ResourceKey, factory ProviderFactory) error
	// New builds the resource handle for spec using the matching factory
	New(ctx context.Context, spec domain.ResourceSpec, opts ...Option) (*Resource, error)
	// Keys returns the registered keys, sorted
	Keys() []domain.ResourceKey
}

type registry struct {
	mu        sync.RWMutex
	factories map[domain.ResourceKey]ProviderFactory
}

// NewRegistry creates a new provider registry
func NewRegistry() Registry {
	return &registry{
		factories: make(map[domain.ResourceKey]ProviderFactory),
	}
}

func (r *registry) Register(key domain.ResourceKey, factory ProviderFactory) error {
	if key.Cloud == "" || key.ServiceType == "" {
		return fmt.Errorf("cloud and service type cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("provider %q is already registered", key)
	}

	r.factories[key] = factory
	return nil
}

func (r *registry) New(ctx context.Context, spec domain.ResourceSpec, opts ...Option) (*Resource, error) {
	r.mu.RLock()
	factory, exists := r.factories[spec.Key()]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("provider %q is not registered", spec.Key())
	}

	provider, err := factory(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider %s: %w", spec.Key(), err)
	}
	return NewResource(spec, provider, opts...), nil
}

func (r *registry) Keys() []domain.ResourceKey {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]domain.ResourceKey, 0, len(r.factories))
	for key := range r.factories {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
