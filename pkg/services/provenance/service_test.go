package provenance

import (
	"context"
	"testing"
	"time"

	"github.com/de-tools/edw-harness/pkg/models/domain"
	"github.com/de-tools/edw-harness/pkg/store/duckdb"
	"github.com/de-tools/edw-harness/pkg/store/duckdb/provenance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) *Service {
	t.Helper()
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := provenance.NewStore(db)
	require.NoError(t, err)
	svc, err := NewService(db, store)
	require.NoError(t, err)
	return svc
}

func TestService_Record(t *testing.T) {
	// Given
	ctx := context.Background()
	svc := newService(t)
	at := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	failure := "unreachable"

	// When
	require.NoError(t, svc.Record(ctx, domain.LifecycleEvent{
		ResourceID:  "snowflake_aws/acct1",
		Cloud:       domain.CloudAWS,
		ServiceType: domain.ServiceTypeSnowflakeAWS,
		Operation:   domain.OperationInstall,
		State:       domain.ResourceStateReady,
		Error:       &failure,
		Duration:    1200 * time.Millisecond,
		RecordedAt:  at,
	}))

	// Then
	events, err := svc.Events(ctx, "snowflake_aws/acct1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "install", events[0].Operation)
	assert.Equal(t, int64(1200), events[0].DurationMs)
	require.NotNil(t, events[0].Error)
	assert.Equal(t, "unreachable", *events[0].Error)

	resources, err := svc.Resources(ctx)
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "ready", resources[0].State)
}

func TestService_SaveMetadata(t *testing.T) {
	// Given
	ctx := context.Background()
	svc := newService(t)
	require.NoError(t, svc.SaveMetadata(ctx, "databricks_sql/bench", map[string]string{
		"provider":                "AWS",
		"databricks_warehouse_id": "wh-1",
	}))

	// When
	err := svc.SaveMetadata(ctx, "databricks_sql/bench", map[string]string{
		"provider": "AWS",
	})

	// Then
	require.NoError(t, err)
	md, err := svc.Metadata(ctx, "databricks_sql/bench")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"provider": "AWS"}, md)
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(nil, nil)
	assert.Error(t, err)
}
