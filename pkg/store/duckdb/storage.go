package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const LifecycleEventsSchema = `
	CREATE TABLE IF NOT EXISTS lifecycle_events (
		resource VARCHAR NOT NULL,
		cloud VARCHAR NOT NULL,
		service_type VARCHAR NOT NULL,
		operation VARCHAR NOT NULL,
		state VARCHAR NOT NULL,
		error VARCHAR,
		duration_ms BIGINT NOT NULL DEFAULT 0,
		recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`
const ResourceMetadataSchema = `
	CREATE TABLE IF NOT EXISTS resource_metadata (
		resource VARCHAR NOT NULL,
		meta_key VARCHAR NOT NULL,
		meta_value VARCHAR,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (resource, meta_key)
	);
`

var bootQueries = []string{
	LifecycleEventsSchema,
	ResourceMetadataSchema,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
