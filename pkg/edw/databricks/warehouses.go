package databricks

import (
	"context"
	"errors"
	"fmt"

	"github.com/databricks/databricks-sdk-go"
	"github.com/databricks/databricks-sdk-go/config"
	dbsql "github.com/databricks/databricks-sdk-go/service/sql"
	"github.com/de-tools/edw-harness/pkg/adapters"
	"github.com/de-tools/edw-harness/pkg/models/domain"
	"github.com/rs/zerolog"
)

// WarehouseAPI is the subset of the Databricks SQL warehouses API the provider uses.
type WarehouseAPI interface {
	// Create blocks until the warehouse is running.
	Create(ctx context.Context, settings domain.ProvisioningSettings) (*domain.WarehouseMetadata, error)
	Get(ctx context.Context, id string) (*domain.WarehouseMetadata, error)
	Delete(ctx context.Context, id string) error
}

type sdkWarehouses struct {
	api dbsql.WarehousesInterface
}

func NewWarehouseAPI(cfg *config.Config) (WarehouseAPI, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	client, err := databricks.NewWorkspaceClient((*databricks.Config)(cfg))
	if err != nil {
		return nil, err
	}
	return &sdkWarehouses{api: client.Warehouses}, nil
}

func (s *sdkWarehouses) Create(ctx context.Context, settings domain.ProvisioningSettings) (*domain.WarehouseMetadata, error) {
	logger := zerolog.Ctx(ctx)

	wait, err := s.api.Create(ctx, adapters.MapProvisioningSettingsToCreateRequest(settings))
	if err != nil {
		return nil, err
	}

	info, err := wait.Get()
	if err != nil {
		// the warehouse exists but never became ready; drop it so nothing leaks
		logger.Warn().Err(err).Str("warehouse_id", wait.Id).Msg("warehouse did not start, deleting it")
		if delErr := s.api.DeleteById(ctx, wait.Id); delErr != nil {
			return nil, errors.Join(err, fmt.Errorf("cleanup of warehouse %s failed: %w", wait.Id, delErr))
		}
		return nil, err
	}
	return adapters.MapWarehouseResponseToMetadata(info), nil
}

func (s *sdkWarehouses) Get(ctx context.Context, id string) (*domain.WarehouseMetadata, error) {
	info, err := s.api.GetById(ctx, id)
	if err != nil {
		return nil, err
	}
	return adapters.MapWarehouseResponseToMetadata(info), nil
}

func (s *sdkWarehouses) Delete(ctx context.Context, id string) error {
	return s.api.DeleteById(ctx, id)
}
