package provenance

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/edw-harness/pkg/adapters"
	"github.com/de-tools/edw-harness/pkg/models/domain"
	"github.com/de-tools/edw-harness/pkg/models/store"
	"github.com/de-tools/edw-harness/pkg/store/duckdb"
	"github.com/de-tools/edw-harness/pkg/store/duckdb/provenance"
	"github.com/rs/zerolog"
)

// Service keeps the lifecycle history and the last known metadata of every resource.
// It satisfies edw.Recorder.
type Service struct {
	db    *sql.DB
	store provenance.Store
}

func NewService(db *sql.DB, store provenance.Store) (*Service, error) {
	if db == nil || store == nil {
		return nil, fmt.Errorf("provenance service requires a database and a store")
	}
	return &Service{db: db, store: store}, nil
}

func (s *Service) Record(ctx context.Context, event domain.LifecycleEvent) error {
	return s.store.AddEvent(ctx, adapters.MapDomainEventToStore(event))
}

// SaveMetadata replaces the stored metadata snapshot of a resource.
func (s *Service) SaveMetadata(ctx context.Context, resource string, metadata map[string]string) (err error) {
	logger := zerolog.Ctx(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to instantiate transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Warn().Err(rbErr).Msg("failed to rollback metadata transaction")
			}
		}
	}()

	ctxWithTx := duckdb.WithTransaction(ctx, tx)
	current, err := s.store.GetMetadata(ctxWithTx, resource)
	if err != nil {
		return err
	}
	var stale []string
	for _, e := range current {
		if _, ok := metadata[e.Key]; !ok {
			stale = append(stale, e.Key)
		}
	}
	if err = s.store.DeleteMetadata(ctxWithTx, resource, stale); err != nil {
		return err
	}
	if err = s.store.PutMetadata(ctxWithTx, adapters.MapMetadataToStore(resource, metadata)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Service) Resources(ctx context.Context) ([]store.ResourceSummary, error) {
	return s.store.ListResources(ctx)
}

func (s *Service) Events(ctx context.Context, resource string) ([]store.LifecycleEvent, error) {
	return s.store.ListEvents(ctx, resource)
}

func (s *Service) Metadata(ctx context.Context, resource string) (map[string]string, error) {
	entries, err := s.store.GetMetadata(ctx, resource)
	if err != nil {
		return nil, err
	}
	return adapters.MapStoreMetadataToMap(entries), nil
}
