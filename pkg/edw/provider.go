package edw

import (
	"context"

	"github.com/de-tools/edw-harness/pkg/models/domain"
)

// Provider is implemented once per warehouse product. Lifecycle safety rules are
// enforced by Resource, not by providers.
type Provider interface {
	// IsUserManaged must depend on the ResourceSpec alone.
	IsUserManaged() bool
	Create(ctx context.Context) error
	Exists(ctx context.Context) (bool, error)
	Delete(ctx context.Context) error
	// ClientSetup describes what a client machine needs to query the warehouse.
	ClientSetup(benchmark string) ClientSetup
	// RunnerArguments returns the flag fragment appended to query runner invocations.
	RunnerArguments() string
	// Metadata returns provider specific provenance entries.
	Metadata() map[string]string
}

// Verifier is implemented by providers able to check connectivity on demand.
type Verifier interface {
	Verify(ctx context.Context) error
}

// Restorer is implemented by providers that can re-attach to a warehouse created
// earlier, given the metadata recorded for it. Restore returns an error matching
// ErrNothingToRestore when the metadata names no warehouse or the warehouse is gone.
type Restorer interface {
	Restore(ctx context.Context, metadata map[string]string) error
}

// Unmanaged is the fallback for providers without a provisioning implementation.
// Embed it and override what the provider supports.
type Unmanaged struct{}

func (Unmanaged) IsUserManaged() bool {
	return true
}

func (Unmanaged) Create(context.Context) error {
	return ErrNotImplemented
}

// Exists trusts the externally supplied connection.
func (Unmanaged) Exists(context.Context) (bool, error) {
	return true, nil
}

func (Unmanaged) Delete(context.Context) error {
	return ErrNotImplemented
}

func (Unmanaged) Metadata() map[string]string {
	return map[string]string{}
}

// ProviderFactory builds a provider for a spec.
type ProviderFactory func(ctx context.Context, spec domain.ResourceSpec) (Provider, error)
