package commands

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/de-tools/edw-harness/pkg/edw"
	"github.com/de-tools/edw-harness/pkg/models/domain"
	"github.com/de-tools/edw-harness/pkg/observability"
	"github.com/de-tools/edw-harness/pkg/runtime/terminal/export"
	"github.com/de-tools/edw-harness/pkg/services/config"
	"github.com/de-tools/edw-harness/pkg/services/provenance"
	"github.com/de-tools/edw-harness/pkg/store/duckdb"
	provenancestore "github.com/de-tools/edw-harness/pkg/store/duckdb/provenance"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Overrides are resource flags that take precedence over the harness file.
type Overrides struct {
	Cloud              string
	ServiceType        string
	Connection         string
	ConfigOverrideFile string
	WarehouseID        string
}

func (o Overrides) apply(spec domain.ResourceSpec) domain.ResourceSpec {
	if o.Cloud != "" {
		spec.Cloud = domain.CloudProvider(o.Cloud)
	}
	if o.ServiceType != "" {
		spec.ServiceType = domain.ServiceType(o.ServiceType)
	}
	if o.Connection != "" {
		spec.Connection = o.Connection
	}
	if o.ConfigOverrideFile != "" {
		spec.ConfigOverrideFile = o.ConfigOverrideFile
	}
	if o.WarehouseID != "" {
		spec.WarehouseID = o.WarehouseID
	}
	return spec
}

// Env holds the dependencies shared by all commands. Open populates it before a
// command runs and Close releases it afterwards.
type Env struct {
	ConfigPath      string
	MetricsTextfile string
	Overrides       Overrides

	Registry edw.Registry
	Reporter *export.Reporter
	LogOut   io.Writer

	Config     *config.Config
	Provenance *provenance.Service
	Metrics    *observability.LifecycleMetrics

	db       *sql.DB
	gatherer *prometheus.Registry
	logger   zerolog.Logger
}

// BindFlags registers the persistent flags of the root command.
func (e *Env) BindFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVarP(&e.ConfigPath, "config", "c", "", "Path to the harness config file")
	flags.StringVar(&e.MetricsTextfile, "metrics-textfile", "", "Write lifecycle metrics to this file on exit")
	flags.StringVar(&e.Overrides.Cloud, "cloud", "", "Cloud the warehouse runs in (AWS, Azure, GCP)")
	flags.StringVar(&e.Overrides.ServiceType, "service-type", "", "Warehouse product (e.g. snowflake_aws, databricks_sql)")
	flags.StringVar(&e.Overrides.Connection, "connection", "", "Named connection or profile")
	flags.StringVar(&e.Overrides.ConfigOverrideFile, "config-override-file", "", "Client config file to push instead of the default")
	flags.StringVar(&e.Overrides.WarehouseID, "warehouse-id", "", "Existing warehouse to use as is")
}

func (e *Env) Open(ctx context.Context) (context.Context, error) {
	cfg, err := config.LoadConfig(e.ConfigPath)
	if err != nil {
		return ctx, err
	}
	e.Config = cfg

	out := e.LogOut
	if out == nil {
		out = os.Stderr
	}
	if cfg.Log.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out}
	}
	e.logger = zerolog.New(out).Level(cfg.Log.ZerologLevel()).With().Timestamp().Logger()
	ctx = e.logger.WithContext(ctx)

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: config.ExpandHome(cfg.Store.DbPath)})
	if err != nil {
		return ctx, fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	e.db = db

	store, err := provenancestore.NewStore(db)
	if err != nil {
		return ctx, fmt.Errorf("failed to create provenance store: %w", err)
	}
	e.Provenance, err = provenance.NewService(db, store)
	if err != nil {
		return ctx, err
	}

	e.gatherer = prometheus.NewRegistry()
	e.Metrics, err = observability.NewLifecycleMetrics(e.gatherer)
	if err != nil {
		return ctx, fmt.Errorf("failed to register metrics: %w", err)
	}
	return ctx, nil
}

// Close flushes metrics and closes the database. It is safe to call more than once.
func (e *Env) Close() error {
	if e.MetricsTextfile != "" && e.gatherer != nil {
		if err := prometheus.WriteToTextfile(e.MetricsTextfile, e.gatherer); err != nil {
			e.logger.Warn().Err(err).Str("path", e.MetricsTextfile).Msg("failed to write metrics")
		}
		e.gatherer = nil
	}
	if e.db == nil {
		return nil
	}
	db := e.db
	e.db = nil
	return db.Close()
}

func (e *Env) Spec() domain.ResourceSpec {
	return e.Overrides.apply(e.Config.Edw.ToSpec())
}

// Resource builds the handle for the configured warehouse with every recorder attached.
func (e *Env) Resource(ctx context.Context) (*edw.Resource, error) {
	spec := e.Spec()
	if spec.ServiceType == "" {
		return nil, fmt.Errorf("service type is not configured")
	}
	return e.Registry.New(ctx, spec, edw.WithRecorder(e.Provenance), edw.WithRecorder(e.Metrics))
}

// Restore re-attaches to a warehouse created by an earlier run. Without recorded
// metadata, or when the recorded warehouse is gone, the resource stays unprovisioned.
// Any other failure is returned: the warehouse may still be running.
func (e *Env) Restore(ctx context.Context, res *edw.Resource) error {
	if res.IsUserManaged() {
		return nil
	}
	logger := zerolog.Ctx(ctx)
	id := res.Spec().ResourceID()

	md, err := e.Provenance.Metadata(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load recorded metadata for %s: %w", id, err)
	}
	if len(md) == 0 {
		return nil
	}

	err = res.Restore(ctx, md)
	switch {
	case err == nil:
		logger.Debug().Str("resource", id).Msg("resource restored")
		return nil
	case errors.Is(err, edw.ErrNothingToRestore):
		logger.Debug().Err(err).Str("resource", id).Msg("nothing to restore")
		return nil
	case errors.Is(err, edw.ErrNotImplemented):
		logger.Warn().Err(err).Str("resource", id).Msg("recorded resource cannot be re-attached")
		return nil
	default:
		return fmt.Errorf("failed to restore recorded %s: %w", id, err)
	}
}

func (e *Env) SaveMetadata(ctx context.Context, res *edw.Resource) {
	if err := e.Provenance.SaveMetadata(ctx, res.Spec().ResourceID(), res.GetMetadata()); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to save resource metadata")
	}
}
