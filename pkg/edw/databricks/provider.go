// Package databricks implements a Databricks SQL warehouse provider. With a
// warehouse id in the ResourceSpec the warehouse is user managed; without one the harness
// creates a warehouse for the run and deletes it during teardown.
package databricks

import (
	"context"
	"errors"
	"fmt"

	"github.com/databricks/databricks-sdk-go/apierr"
	"github.com/databricks/databricks-sdk-go/config"
	"github.com/de-tools/edw-harness/pkg/edw"
	"github.com/de-tools/edw-harness/pkg/models/domain"
	cfgregistry "github.com/de-tools/edw-harness/pkg/services/config"
	"github.com/rs/zerolog"
)

const (
	DefaultConfigFile = "databrickscfg"
	configStagingDir  = "~/"

	stateRunning  = "RUNNING"
	stateDeleting = "DELETING"
	stateDeleted  = "DELETED"

	defaultClusterSize  = "2X-Small"
	defaultAutoStopMins = 10

	MetadataProfile       = "databricks_profile"
	MetadataWarehouseID   = "databricks_warehouse_id"
	MetadataWarehouseSize = "databricks_warehouse_size"
)

var Key = domain.ResourceKey{Cloud: domain.CloudAWS, ServiceType: domain.ServiceTypeDatabricksSQL}

// connector resolves the workspace credentials and client on first use.
type connector func(ctx context.Context) (WarehouseAPI, *config.Config, error)

type Provider struct {
	spec      domain.ResourceSpec
	api       WarehouseAPI
	workspace *config.Config
	connect   connector
	open      opener

	// set once the harness has created a warehouse
	warehouse *domain.WarehouseMetadata
}

func NewProvider(spec domain.ResourceSpec, api WarehouseAPI, workspace *config.Config) (*Provider, error) {
	if spec.Connection == "" {
		return nil, fmt.Errorf("databricks profile name is required")
	}
	if api == nil {
		return nil, fmt.Errorf("warehouse api is nil")
	}
	return &Provider{
		spec:      spec,
		api:       api,
		workspace: workspace,
		open:      openWarehouse,
	}, nil
}

func newLazyProvider(spec domain.ResourceSpec, connect connector) (*Provider, error) {
	if spec.Connection == "" {
		return nil, fmt.Errorf("databricks profile name is required")
	}
	return &Provider{
		spec:    spec,
		connect: connect,
		open:    openWarehouse,
	}, nil
}

// ProviderFactory defers reading the databricks config file (the override file when
// one is configured) until a call needs the workspace. Client setup and runner
// arguments work on a machine that has no profile yet.
func ProviderFactory(_ context.Context, spec domain.ResourceSpec) (edw.Provider, error) {
	return newLazyProvider(spec, func(ctx context.Context) (WarehouseAPI, *config.Config, error) {
		return connectProfile(ctx, spec)
	})
}

func connectProfile(ctx context.Context, spec domain.ResourceSpec) (WarehouseAPI, *config.Config, error) {
	path := cfgregistry.DefaultDatabricksConfigLocation
	if spec.ConfigOverrideFile != "" {
		path = spec.ConfigOverrideFile
	}

	registry, err := cfgregistry.NewRegistry(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load databricks config: %w", err)
	}
	cfg, err := registry.GetConfig(ctx, spec.Connection)
	if err != nil {
		return nil, nil, err
	}

	api, err := NewWarehouseAPI(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create workspace client: %w", err)
	}
	return api, cfg, nil
}

func (p *Provider) client(ctx context.Context) (WarehouseAPI, error) {
	if p.api != nil {
		return p.api, nil
	}
	if p.connect == nil {
		return nil, fmt.Errorf("warehouse api is nil")
	}

	api, cfg, err := p.connect(ctx)
	if err != nil {
		return nil, err
	}
	p.api, p.workspace = api, cfg
	return api, nil
}

func Register(registry edw.Registry) error {
	return registry.Register(Key, ProviderFactory)
}

func (p *Provider) IsUserManaged() bool {
	return p.spec.WarehouseID != ""
}

func (p *Provider) warehouseID() string {
	if p.spec.WarehouseID != "" {
		return p.spec.WarehouseID
	}
	if p.warehouse != nil {
		return p.warehouse.ID
	}
	return ""
}

func (p *Provider) settings() domain.ProvisioningSettings {
	s := p.spec.Provisioning
	if s.Name == "" {
		s.Name = fmt.Sprintf("edw-bench-%s", p.spec.Connection)
	}
	if s.ClusterSize == "" {
		s.ClusterSize = defaultClusterSize
	}
	if s.MaxNumClusters == 0 {
		s.MaxNumClusters = 1
	}
	if s.MinNumClusters == 0 {
		s.MinNumClusters = 1
	}
	if s.AutoStopMins == 0 {
		s.AutoStopMins = defaultAutoStopMins
	}
	return s
}

func (p *Provider) Create(ctx context.Context) error {
	settings := p.settings()
	zerolog.Ctx(ctx).Info().
		Str("name", settings.Name).
		Str("size", settings.ClusterSize).
		Msg("creating databricks sql warehouse")

	api, err := p.client(ctx)
	if err != nil {
		return err
	}
	info, err := api.Create(ctx, settings)
	if err != nil {
		return err
	}
	p.warehouse = info
	return nil
}

func (p *Provider) Exists(ctx context.Context) (bool, error) {
	id := p.warehouseID()
	if id == "" {
		return false, nil
	}

	api, err := p.client(ctx)
	if err != nil {
		return false, err
	}
	info, err := api.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return info.State == stateRunning, nil
}

func (p *Provider) Delete(ctx context.Context) error {
	if p.warehouse == nil {
		return fmt.Errorf("no warehouse was created for profile %s", p.spec.Connection)
	}

	api, err := p.client(ctx)
	if err != nil {
		return err
	}
	zerolog.Ctx(ctx).Info().Str("warehouse_id", p.warehouse.ID).Msg("deleting databricks sql warehouse")
	if err := api.Delete(ctx, p.warehouse.ID); err != nil {
		return err
	}
	p.warehouse = nil
	return nil
}

// Restore picks up the warehouse recorded under MetadataWarehouseID. A warehouse
// that was deleted outside the harness counts as nothing to restore.
func (p *Provider) Restore(ctx context.Context, metadata map[string]string) error {
	id := metadata[MetadataWarehouseID]
	if id == "" {
		return fmt.Errorf("no warehouse recorded for profile %s: %w", p.spec.Connection, edw.ErrNothingToRestore)
	}

	api, err := p.client(ctx)
	if err != nil {
		return err
	}
	info, err := api.Get(ctx, id)
	if errors.Is(err, apierr.ErrResourceDoesNotExist) {
		return fmt.Errorf("warehouse %s no longer exists: %w", id, edw.ErrNothingToRestore)
	}
	if err != nil {
		return err
	}
	if info.State == stateDeleting || info.State == stateDeleted {
		return fmt.Errorf("warehouse %s is %s: %w", id, info.State, edw.ErrNothingToRestore)
	}
	p.warehouse = info
	return nil
}

func (p *Provider) ClientSetup(_ string) edw.ClientSetup {
	return edw.ClientSetup{
		Packages: []string{"databricks-cli", "openjdk"},
		Config: edw.ConfigSetup{
			OverrideFile:    p.spec.ConfigOverrideFile,
			DefaultArtifact: DefaultConfigFile,
			StagingDir:      configStagingDir,
			Location:        cfgregistry.DefaultDatabricksConfigLocation,
		},
	}
}

func (p *Provider) RunnerArguments() string {
	return fmt.Sprintf("--profile %s", p.spec.Connection)
}

func (p *Provider) Metadata() map[string]string {
	md := map[string]string{
		MetadataProfile: p.spec.Connection,
	}
	if id := p.warehouseID(); id != "" {
		md[MetadataWarehouseID] = id
	}
	if p.warehouse != nil {
		md[MetadataWarehouseSize] = p.warehouse.Size
	}
	return md
}
