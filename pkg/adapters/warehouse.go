package adapters

import (
	"github.com/databricks/databricks-sdk-go/service/sql"
	"github.com/de-tools/edw-harness/pkg/models/domain"
)

// MapProvisioningSettingsToCreateRequest builds the SQL warehouse request for a harness managed warehouse
func MapProvisioningSettingsToCreateRequest(settings domain.ProvisioningSettings) sql.CreateWarehouseRequest {
	return sql.CreateWarehouseRequest{
		Name:           settings.Name,
		ClusterSize:    settings.ClusterSize,
		MinNumClusters: settings.MinNumClusters,
		MaxNumClusters: settings.MaxNumClusters,
		AutoStopMins:   settings.AutoStopMins,
	}
}

func MapWarehouseResponseToMetadata(warehouse *sql.GetWarehouseResponse) *domain.WarehouseMetadata {
	if warehouse == nil {
		return nil
	}
	return &domain.WarehouseMetadata{
		ID:             warehouse.Id,
		Name:           warehouse.Name,
		State:          string(warehouse.State),
		Size:           warehouse.ClusterSize,
		AutoStopMins:   warehouse.AutoStopMins,
		MinNumClusters: warehouse.MinNumClusters,
		MaxNumClusters: warehouse.MaxNumClusters,
	}
}
