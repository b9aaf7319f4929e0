package edw

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/de-tools/edw-harness/pkg/models/domain"
	"github.com/de-tools/edw-harness/pkg/remote"
	"github.com/rs/zerolog"
)

const (
	MetadataProvider       = "provider"
	MetadataServiceType    = "service_type"
	MetadataConnection     = "connection"
	MetadataManagementMode = "management_mode"
)

// Recorder receives an event after every lifecycle call.
type Recorder interface {
	Record(ctx context.Context, event domain.LifecycleEvent) error
}

type Option func(*Resource)

func WithRecorder(r Recorder) Option {
	return func(res *Resource) {
		res.recorders = append(res.recorders, r)
	}
}

func withClock(now func() time.Time) Option {
	return func(res *Resource) {
		res.now = now
	}
}

// Resource is the handle a benchmark run holds for one warehouse. The management
// mode is fixed at construction; Create and Delete never reach the provider for
// user-managed warehouses.
//
// State checks and transitions happen under one lock, so concurrent Create calls
// reach the provider at most once. Create and Delete should still not overlap.
type Resource struct {
	spec        domain.ResourceSpec
	provider    Provider
	userManaged bool
	recorders   []Recorder
	now         func() time.Time

	mu    sync.Mutex
	state domain.ResourceState
}

func NewResource(spec domain.ResourceSpec, provider Provider, opts ...Option) *Resource {
	r := &Resource{
		spec:        spec,
		provider:    provider,
		userManaged: provider.IsUserManaged(),
		now:         time.Now,
		state:       domain.ResourceStateUnprovisioned,
	}
	if r.userManaged {
		r.state = domain.ResourceStateReady
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resource) Spec() domain.ResourceSpec {
	return r.spec
}

func (r *Resource) Provider() Provider {
	return r.provider
}

func (r *Resource) IsUserManaged() bool {
	return r.userManaged
}

func (r *Resource) ManagementMode() domain.ManagementMode {
	if r.userManaged {
		return domain.ManagementModeUser
	}
	return domain.ManagementModeHarness
}

func (r *Resource) State() domain.ResourceState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Resource) setState(s domain.ResourceState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// transition moves from one state to another under a single lock and returns the
// state it found.
func (r *Resource) transition(from, to domain.ResourceState) (domain.ResourceState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != from {
		return r.state, false
	}
	r.state = to
	return from, true
}

func (r *Resource) Create(ctx context.Context) (err error) {
	start := r.now()
	defer func() { r.record(ctx, domain.OperationCreate, start, err) }()

	if r.userManaged {
		return fmt.Errorf("create %s: %w", r.spec.Key(), ErrUserManaged)
	}
	if state, ok := r.transition(domain.ResourceStateUnprovisioned, domain.ResourceStateProvisioning); !ok {
		return fmt.Errorf("create %s in state %s: %w", r.spec.Key(), state, ErrInvalidState)
	}

	if err := r.provider.Create(ctx); err != nil {
		r.setState(domain.ResourceStateUnprovisioned)
		if errors.Is(err, ErrNotImplemented) {
			return fmt.Errorf("create %s: %w", r.spec.Key(), err)
		}
		return &ProvisioningError{Key: r.spec.Key(), Err: err}
	}
	r.setState(domain.ResourceStateReady)
	return nil
}

// Exists reports whether the warehouse is reachable. User-managed warehouses are
// always considered ready. Exists never changes the resource state.
func (r *Resource) Exists(ctx context.Context) (ok bool, err error) {
	start := r.now()
	defer func() { r.record(ctx, domain.OperationExists, start, err) }()

	if r.userManaged {
		return true, nil
	}
	ok, err = r.provider.Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", r.spec.Key(), err)
	}
	return ok, nil
}

func (r *Resource) Delete(ctx context.Context) (err error) {
	start := r.now()
	defer func() { r.record(ctx, domain.OperationDelete, start, err) }()

	if r.userManaged {
		return fmt.Errorf("delete %s: %w", r.spec.Key(), ErrUserManaged)
	}
	if state := r.State(); state != domain.ResourceStateReady {
		return fmt.Errorf("delete %s in state %s: %w", r.spec.Key(), state, ErrInvalidState)
	}

	if err := r.provider.Delete(ctx); err != nil {
		if errors.Is(err, ErrNotImplemented) {
			return fmt.Errorf("delete %s: %w", r.spec.Key(), err)
		}
		return &TeardownError{Key: r.spec.Key(), Err: err}
	}
	r.setState(domain.ResourceStateTornDown)
	return nil
}

func (r *Resource) InstallAndAuthenticate(ctx context.Context, client remote.Client, benchmark string) (err error) {
	start := r.now()
	defer func() { r.record(ctx, domain.OperationInstall, start, err) }()

	return InstallAndAuthenticate(ctx, client, benchmark, r.provider.ClientSetup(benchmark))
}

func (r *Resource) BuildRunnerArguments() string {
	return r.provider.RunnerArguments()
}

// GetMetadata returns provenance entries. Provider entries are added to the base
// set and never replace a base key.
func (r *Resource) GetMetadata() map[string]string {
	md := map[string]string{
		MetadataProvider:       string(r.spec.Cloud),
		MetadataServiceType:    string(r.spec.ServiceType),
		MetadataConnection:     r.spec.Connection,
		MetadataManagementMode: string(r.ManagementMode()),
	}
	for k, v := range r.provider.Metadata() {
		if _, taken := md[k]; taken {
			continue
		}
		md[k] = v
	}
	return md
}

// Restore re-attaches an unprovisioned handle to a warehouse the harness created in
// an earlier process and marks it ready. User-managed resources are already ready.
func (r *Resource) Restore(ctx context.Context, metadata map[string]string) error {
	if r.userManaged {
		return nil
	}
	rs, ok := r.provider.(Restorer)
	if !ok {
		return fmt.Errorf("restore %s: %w", r.spec.Key(), ErrNotImplemented)
	}
	if state, ok := r.transition(domain.ResourceStateUnprovisioned, domain.ResourceStateProvisioning); !ok {
		return fmt.Errorf("restore %s in state %s: %w", r.spec.Key(), state, ErrInvalidState)
	}
	if err := rs.Restore(ctx, metadata); err != nil {
		r.setState(domain.ResourceStateUnprovisioned)
		return fmt.Errorf("restore %s: %w", r.spec.Key(), err)
	}
	r.setState(domain.ResourceStateReady)
	return nil
}

// Verify runs the provider's connectivity check when it has one.
func (r *Resource) Verify(ctx context.Context) error {
	v, ok := r.provider.(Verifier)
	if !ok {
		return fmt.Errorf("verify %s: %w", r.spec.Key(), ErrNotImplemented)
	}
	return v.Verify(ctx)
}

func (r *Resource) record(ctx context.Context, op domain.LifecycleOperation, start time.Time, opErr error) {
	if len(r.recorders) == 0 {
		return
	}

	now := r.now()
	event := domain.LifecycleEvent{
		ResourceID:  r.spec.ResourceID(),
		Cloud:       r.spec.Cloud,
		ServiceType: r.spec.ServiceType,
		Operation:   op,
		State:       r.State(),
		Duration:    now.Sub(start),
		RecordedAt:  now,
	}
	if opErr != nil {
		msg := opErr.Error()
		event.Error = &msg
	}

	logger := zerolog.Ctx(ctx)
	for _, rec := range r.recorders {
		if err := rec.Record(ctx, event); err != nil {
			logger.Warn().Err(err).
				Str("resource", event.ResourceID).
				Str("operation", string(op)).
				Msg("failed to record lifecycle event")
		}
	}
}
