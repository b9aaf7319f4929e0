package domain

import (
	"fmt"
	"time"
)

type CloudProvider string

const (
	CloudAWS   CloudProvider = "AWS"
	CloudAzure CloudProvider = "Azure"
	CloudGCP   CloudProvider = "GCP"
)

type ServiceType string

const (
	ServiceTypeSnowflakeAWS   ServiceType = "snowflake_aws"
	ServiceTypeSnowflakeAzure ServiceType = "snowflake_azure"
	ServiceTypeDatabricksSQL  ServiceType = "databricks_sql"
)

// ResourceKey identifies the provider implementation responsible for a spec.
type ResourceKey struct {
	Cloud       CloudProvider
	ServiceType ServiceType
}

func (k ResourceKey) String() string {
	return fmt.Sprintf("%s:%s", k.Cloud, k.ServiceType)
}

// ProvisioningSettings is only consulted by providers that can create warehouses.
type ProvisioningSettings struct {
	Name           string
	ClusterSize    string
	MinNumClusters int
	MaxNumClusters int
	AutoStopMins   int
}

// ResourceSpec describes how to reach or provision a warehouse. It is built once
// from configuration and passed by value.
type ResourceSpec struct {
	Cloud              CloudProvider
	ServiceType        ServiceType
	Connection         string
	ConfigOverrideFile string
	WarehouseID        string
	Provisioning       ProvisioningSettings
}

func (s ResourceSpec) Key() ResourceKey {
	return ResourceKey{Cloud: s.Cloud, ServiceType: s.ServiceType}
}

// ResourceID is the identifier used for provenance records.
func (s ResourceSpec) ResourceID() string {
	return fmt.Sprintf("%s/%s", s.ServiceType, s.Connection)
}

type ManagementMode string

const (
	ManagementModeUser    ManagementMode = "user_managed"
	ManagementModeHarness ManagementMode = "harness_managed"
)

type ResourceState string

const (
	ResourceStateUnprovisioned ResourceState = "unprovisioned"
	ResourceStateProvisioning  ResourceState = "provisioning"
	ResourceStateReady         ResourceState = "ready"
	ResourceStateTornDown      ResourceState = "torn_down"
)

type LifecycleOperation string

const (
	OperationCreate  LifecycleOperation = "create"
	OperationExists  LifecycleOperation = "exists"
	OperationDelete  LifecycleOperation = "delete"
	OperationInstall LifecycleOperation = "install"
)

// LifecycleEvent is emitted after every lifecycle call on a resource.
type LifecycleEvent struct {
	ResourceID  string
	Cloud       CloudProvider
	ServiceType ServiceType
	Operation   LifecycleOperation
	State       ResourceState
	Error       *string
	Duration    time.Duration
	RecordedAt  time.Time
}

func (e LifecycleEvent) Outcome() string {
	if e.Error != nil {
		return "failure"
	}
	return "success"
}
