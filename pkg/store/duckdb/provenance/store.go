package provenance

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/edw-harness/pkg/models/store"
	"github.com/de-tools/edw-harness/pkg/store/duckdb"
	"github.com/rs/zerolog"
)

type Store interface {
	AddEvent(ctx context.Context, event store.LifecycleEvent) error
	ListEvents(ctx context.Context, resource string) ([]store.LifecycleEvent, error)
	ListResources(ctx context.Context) ([]store.ResourceSummary, error)
	PutMetadata(ctx context.Context, entries []store.MetadataEntry) error
	DeleteMetadata(ctx context.Context, resource string, keys []string) error
	GetMetadata(ctx context.Context, resource string) ([]store.MetadataEntry, error)
}

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db: db,
	}, nil
}

func (s *defaultStore) AddEvent(ctx context.Context, event store.LifecycleEvent) error {
	query := `
		INSERT INTO lifecycle_events
			(resource, cloud, service_type, operation, state, error, duration_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	var errText sql.NullString
	if event.Error != nil {
		errText = sql.NullString{String: *event.Error, Valid: true}
	}

	_, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, query,
		event.Resource, event.Cloud, event.ServiceType, event.Operation, event.State,
		errText, event.DurationMs, event.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("insert lifecycle event failed: %w", err)
	}
	return nil
}

func (s *defaultStore) ListEvents(ctx context.Context, resource string) ([]store.LifecycleEvent, error) {
	logger := zerolog.Ctx(ctx)

	query := `
		SELECT resource, cloud, service_type, operation, state, error, duration_ms, recorded_at
		FROM lifecycle_events
		WHERE resource = ?
		ORDER BY recorded_at
	`
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, query, resource)
	if err != nil {
		return nil, fmt.Errorf("lifecycle events query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close lifecycle events rows")
		}
	}(rows)

	events := []store.LifecycleEvent{}
	for rows.Next() {
		var (
			e       store.LifecycleEvent
			errText sql.NullString
		)
		if err := rows.Scan(&e.Resource, &e.Cloud, &e.ServiceType, &e.Operation, &e.State,
			&errText, &e.DurationMs, &e.RecordedAt); err != nil {
			return nil, err
		}
		if errText.Valid {
			msg := errText.String
			e.Error = &msg
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (s *defaultStore) ListResources(ctx context.Context) ([]store.ResourceSummary, error) {
	logger := zerolog.Ctx(ctx)

	query := `
		SELECT
			resource,
			cloud,
			service_type,
			arg_max(state, recorded_at) AS state,
			COUNT(*) AS event_count,
			MAX(recorded_at) AS last_seen_at
		FROM lifecycle_events
		GROUP BY resource, cloud, service_type
		ORDER BY resource
	`
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("resources query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close resources rows")
		}
	}(rows)

	summaries := []store.ResourceSummary{}
	for rows.Next() {
		var r store.ResourceSummary
		if err := rows.Scan(&r.Resource, &r.Cloud, &r.ServiceType, &r.State, &r.EventCount, &r.LastSeenAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, r)
	}
	return summaries, rows.Err()
}

func (s *defaultStore) PutMetadata(ctx context.Context, entries []store.MetadataEntry) error {
	query := `
		INSERT OR REPLACE INTO resource_metadata (resource, meta_key, meta_value, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`
	conn := duckdb.Conn(ctx, s.db)
	for _, e := range entries {
		if _, err := conn.ExecContext(ctx, query, e.Resource, e.Key, e.Value); err != nil {
			return fmt.Errorf("upsert metadata %s/%s failed: %w", e.Resource, e.Key, err)
		}
	}
	return nil
}

func (s *defaultStore) DeleteMetadata(ctx context.Context, resource string, keys []string) error {
	query := "DELETE FROM resource_metadata WHERE resource = ? AND meta_key = ?"
	conn := duckdb.Conn(ctx, s.db)
	for _, key := range keys {
		if _, err := conn.ExecContext(ctx, query, resource, key); err != nil {
			return fmt.Errorf("delete metadata %s/%s failed: %w", resource, key, err)
		}
	}
	return nil
}

func (s *defaultStore) GetMetadata(ctx context.Context, resource string) ([]store.MetadataEntry, error) {
	logger := zerolog.Ctx(ctx)

	query := `
		SELECT resource, meta_key, meta_value
		FROM resource_metadata
		WHERE resource = ?
		ORDER BY meta_key
	`
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, query, resource)
	if err != nil {
		return nil, fmt.Errorf("metadata query failed: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close metadata rows")
		}
	}(rows)

	entries := []store.MetadataEntry{}
	for rows.Next() {
		var e store.MetadataEntry
		if err := rows.Scan(&e.Resource, &e.Key, &e.Value); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
