package duckdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB_BootsSchema(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "duckdb-test-*")
	require.NoError(t, err)

	defer func() {
		err := os.RemoveAll(tmpDir)
		if err != nil {
			t.Errorf("failed to cleanup test directory: %v", err)
		}
	}()

	dbPath := filepath.Join(tmpDir, "test.db")
	db, err := NewDB(Settings{
		DbPath: dbPath,
	})
	require.NoError(t, err)
	require.NotNil(t, db)

	defer func() {
		err := db.Close()
		if err != nil {
			t.Errorf("failed to close database connection: %v", err)
		}
	}()

	_, err = db.Exec(
		`INSERT INTO lifecycle_events (resource, cloud, service_type, operation, state) VALUES (?, ?, ?, ?, ?)`,
		"snowflake_aws/acct1", "AWS", "snowflake_aws", "exists", "ready",
	)
	require.NoError(t, err)

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM lifecycle_events WHERE resource = ?", "snowflake_aws/acct1").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = db.Exec(
		`INSERT INTO resource_metadata (resource, meta_key, meta_value) VALUES (?, ?, ?)`,
		"snowflake_aws/acct1", "connection", "acct1",
	)
	require.NoError(t, err)
}
