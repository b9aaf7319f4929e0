package databricks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/databricks/databricks-sdk-go/apierr"
	"github.com/databricks/databricks-sdk-go/config"
	"github.com/de-tools/edw-harness/pkg/edw"
	"github.com/de-tools/edw-harness/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWarehouseAPI struct {
	mock.Mock
}

func (m *mockWarehouseAPI) Create(ctx context.Context, settings domain.ProvisioningSettings) (*domain.WarehouseMetadata, error) {
	args := m.Called(ctx, settings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WarehouseMetadata), args.Error(1)
}

func (m *mockWarehouseAPI) Get(ctx context.Context, id string) (*domain.WarehouseMetadata, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WarehouseMetadata), args.Error(1)
}

func (m *mockWarehouseAPI) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func benchSpec() domain.ResourceSpec {
	return domain.ResourceSpec{
		Cloud:       domain.CloudAWS,
		ServiceType: domain.ServiceTypeDatabricksSQL,
		Connection:  "bench",
	}
}

func workspaceConfig() *config.Config {
	return &config.Config{Host: "https://dbc-1.cloud.databricks.com/", Token: "dapi123"}
}

func newResource(t *testing.T, spec domain.ResourceSpec, api WarehouseAPI) (*edw.Resource, *Provider) {
	t.Helper()
	p, err := NewProvider(spec, api, workspaceConfig())
	require.NoError(t, err)
	return edw.NewResource(spec, p), p
}

func TestDatabricks_HarnessManagedLifecycle(t *testing.T) {
	// Given
	ctx := context.Background()
	api := new(mockWarehouseAPI)
	res, _ := newResource(t, benchSpec(), api)
	expectedSettings := domain.ProvisioningSettings{
		Name:           "edw-bench-bench",
		ClusterSize:    "2X-Small",
		MinNumClusters: 1,
		MaxNumClusters: 1,
		AutoStopMins:   10,
	}
	api.On("Create", mock.Anything, expectedSettings).
		Return(&domain.WarehouseMetadata{ID: "wh-1", Size: "2X-Small", State: "RUNNING"}, nil)
	api.On("Get", mock.Anything, "wh-1").
		Return(&domain.WarehouseMetadata{ID: "wh-1", State: "RUNNING"}, nil).Once()
	api.On("Delete", mock.Anything, "wh-1").Return(nil)

	// When / Then
	assert.False(t, res.IsUserManaged())

	exists, err := res.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists, "nothing provisioned yet")

	require.NoError(t, res.Create(ctx))
	exists, err = res.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	md := res.GetMetadata()
	assert.Equal(t, "wh-1", md[MetadataWarehouseID])
	assert.Equal(t, "2X-Small", md[MetadataWarehouseSize])
	assert.Equal(t, "harness_managed", md[edw.MetadataManagementMode])

	require.NoError(t, res.Delete(ctx))
	assert.Equal(t, domain.ResourceStateTornDown, res.State())
	_, hasID := res.GetMetadata()[MetadataWarehouseID]
	assert.False(t, hasID)
	api.AssertExpectations(t)
}

func TestDatabricks_CreateFailure(t *testing.T) {
	// Given
	ctx := context.Background()
	api := new(mockWarehouseAPI)
	res, _ := newResource(t, benchSpec(), api)
	api.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("RESOURCE_EXHAUSTED"))

	// When
	err := res.Create(ctx)

	// Then
	var provErr *edw.ProvisioningError
	require.ErrorAs(t, err, &provErr)
	exists, existsErr := res.Exists(ctx)
	require.NoError(t, existsErr)
	assert.False(t, exists)
	api.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestDatabricks_StoppedWarehouseDoesNotExist(t *testing.T) {
	ctx := context.Background()
	api := new(mockWarehouseAPI)
	res, _ := newResource(t, benchSpec(), api)
	api.On("Create", mock.Anything, mock.Anything).Return(&domain.WarehouseMetadata{ID: "wh-1"}, nil)
	api.On("Get", mock.Anything, "wh-1").Return(&domain.WarehouseMetadata{ID: "wh-1", State: "STOPPED"}, nil)

	require.NoError(t, res.Create(ctx))
	exists, err := res.Exists(ctx)

	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDatabricks_ExistingWarehouseIsUserManaged(t *testing.T) {
	// Given
	ctx := context.Background()
	api := new(mockWarehouseAPI)
	spec := benchSpec()
	spec.WarehouseID = "existing"
	res, _ := newResource(t, spec, api)

	// When
	createErr := res.Create(ctx)
	deleteErr := res.Delete(ctx)
	exists, existsErr := res.Exists(ctx)

	// Then
	assert.True(t, res.IsUserManaged())
	assert.ErrorIs(t, createErr, edw.ErrUserManaged)
	assert.ErrorIs(t, deleteErr, edw.ErrUserManaged)
	require.NoError(t, existsErr)
	assert.True(t, exists)
	assert.Empty(t, api.Calls)
	assert.Equal(t, "existing", res.GetMetadata()[MetadataWarehouseID])
}

func TestDatabricks_ClientSetupAndArguments(t *testing.T) {
	p, err := NewProvider(benchSpec(), new(mockWarehouseAPI), nil)
	require.NoError(t, err)

	setup := p.ClientSetup("edw_benchmark")

	assert.Equal(t, []string{"databricks-cli", "openjdk"}, setup.Packages)
	assert.Equal(t, "~/.databrickscfg", setup.Config.Location)
	assert.Equal(t, DefaultConfigFile, setup.Config.DefaultArtifact)
	assert.Empty(t, setup.Config.OverrideFile)
	assert.Equal(t, "--profile bench", p.RunnerArguments())
}

func TestNewProvider_Validation(t *testing.T) {
	_, err := NewProvider(domain.ResourceSpec{}, new(mockWarehouseAPI), nil)
	assert.Error(t, err)

	_, err = NewProvider(benchSpec(), nil, nil)
	assert.Error(t, err)
}

func TestDatabricks_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("reachable", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New()
		require.NoError(t, err)
		sqlMock.ExpectQuery(regexp.QuoteMeta(pingQuery)).
			WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

		spec := benchSpec()
		spec.WarehouseID = "abc123"
		p, err := NewProvider(spec, new(mockWarehouseAPI), workspaceConfig())
		require.NoError(t, err)
		var gotHost, gotPath string
		p.open = func(host, httpPath, _ string) (*sql.DB, error) {
			gotHost, gotPath = host, httpPath
			return db, nil
		}

		require.NoError(t, p.Verify(ctx))
		assert.Equal(t, "dbc-1.cloud.databricks.com", gotHost)
		assert.Equal(t, "/sql/1.0/warehouses/abc123", gotPath)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})

	t.Run("no warehouse", func(t *testing.T) {
		p, err := NewProvider(benchSpec(), new(mockWarehouseAPI), workspaceConfig())
		require.NoError(t, err)

		assert.EqualError(t, p.Verify(ctx), "no warehouse to verify for profile bench")
	})
}

func TestDatabricks_RestoreThenDelete(t *testing.T) {
	// Given
	ctx := context.Background()
	api := new(mockWarehouseAPI)
	res, _ := newResource(t, benchSpec(), api)
	api.On("Get", mock.Anything, "wh-7").
		Return(&domain.WarehouseMetadata{ID: "wh-7", Size: "Small", State: "RUNNING"}, nil)
	api.On("Delete", mock.Anything, "wh-7").Return(nil)

	// When
	require.NoError(t, res.Restore(ctx, map[string]string{MetadataWarehouseID: "wh-7"}))
	err := res.Delete(ctx)

	// Then
	require.NoError(t, err)
	assert.Equal(t, domain.ResourceStateTornDown, res.State())
	api.AssertExpectations(t)
}

func TestDatabricks_RestoreWithoutRecordedWarehouse(t *testing.T) {
	res, _ := newResource(t, benchSpec(), new(mockWarehouseAPI))

	err := res.Restore(context.Background(), map[string]string{})

	assert.EqualError(t, err, "restore AWS:databricks_sql: no warehouse recorded for profile bench: nothing to restore")
	assert.ErrorIs(t, err, edw.ErrNothingToRestore)
}

func TestDatabricks_RestoreWarehouseGone(t *testing.T) {
	tests := []struct {
		name string
		info *domain.WarehouseMetadata
		err  error
	}{
		{name: "deleted state", info: &domain.WarehouseMetadata{ID: "wh-7", State: "DELETED"}},
		{name: "being deleted", info: &domain.WarehouseMetadata{ID: "wh-7", State: "DELETING"}},
		{name: "unknown id", err: fmt.Errorf("get warehouse: %w", apierr.ErrResourceDoesNotExist)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Given
			api := new(mockWarehouseAPI)
			res, _ := newResource(t, benchSpec(), api)
			api.On("Get", mock.Anything, "wh-7").Return(tc.info, tc.err)

			// When
			err := res.Restore(context.Background(), map[string]string{MetadataWarehouseID: "wh-7"})

			// Then
			assert.ErrorIs(t, err, edw.ErrNothingToRestore)
			assert.Equal(t, domain.ResourceStateUnprovisioned, res.State())
		})
	}
}

func TestDatabricks_RestoreTransientFailure(t *testing.T) {
	api := new(mockWarehouseAPI)
	res, _ := newResource(t, benchSpec(), api)
	api.On("Get", mock.Anything, "wh-7").Return(nil, errors.New("503 temporarily unavailable"))

	err := res.Restore(context.Background(), map[string]string{MetadataWarehouseID: "wh-7"})

	require.Error(t, err)
	assert.NotErrorIs(t, err, edw.ErrNothingToRestore)
	assert.Equal(t, domain.ResourceStateUnprovisioned, res.State())
}

func TestProviderFactory_DefersWorkspaceResolution(t *testing.T) {
	// Given
	ctx := context.Background()
	spec := benchSpec()
	spec.ConfigOverrideFile = filepath.Join(t.TempDir(), "databrickscfg")

	// When
	p, err := ProviderFactory(ctx, spec)

	// Then
	require.NoError(t, err)
	res := edw.NewResource(spec, p)
	assert.Equal(t, "--profile bench", res.BuildRunnerArguments())
	assert.Equal(t, spec.ConfigOverrideFile, p.ClientSetup("tpcds").Config.OverrideFile)
	assert.Equal(t, "bench", res.GetMetadata()[MetadataProfile])

	exists, err := res.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	createErr := res.Create(ctx)
	var provErr *edw.ProvisioningError
	require.ErrorAs(t, createErr, &provErr)
	assert.ErrorContains(t, createErr, "failed to load databricks config")
}

func TestDatabricks_ConnectsOnce(t *testing.T) {
	// Given
	ctx := context.Background()
	api := new(mockWarehouseAPI)
	connects := 0
	p, err := newLazyProvider(benchSpec(), func(context.Context) (WarehouseAPI, *config.Config, error) {
		connects++
		return api, workspaceConfig(), nil
	})
	require.NoError(t, err)
	res := edw.NewResource(benchSpec(), p)
	api.On("Create", mock.Anything, mock.Anything).Return(&domain.WarehouseMetadata{ID: "wh-1"}, nil)
	api.On("Get", mock.Anything, "wh-1").Return(&domain.WarehouseMetadata{ID: "wh-1", State: "RUNNING"}, nil)

	// When
	require.NoError(t, res.Create(ctx))
	exists, err := res.Exists(ctx)

	// Then
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 1, connects)
	assert.Equal(t, "dbc-1.cloud.databricks.com", hostname(p.workspace.Host))
}
