package snowflake

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/edw-harness/pkg/models/domain"
	"github.com/de-tools/edw-harness/pkg/services/config"
	"github.com/rs/zerolog"
	sf "github.com/snowflakedb/gosnowflake"
)

const versionQuery = "SELECT CURRENT_VERSION()"

type VerifyOption func(*verifier)

// WithConfigPath reads connections from path instead of the resource's override file
// or the local snowsql config.
func WithConfigPath(path string) VerifyOption {
	return func(v *verifier) {
		v.configPath = path
	}
}

// WithOpener replaces sql.Open, mainly for tests.
func WithOpener(open func(dsn string) (*sql.DB, error)) VerifyOption {
	return func(v *verifier) {
		v.open = open
	}
}

type verifier struct {
	connection string
	configPath string
	open       func(dsn string) (*sql.DB, error)
}

func newVerifier(spec domain.ResourceSpec, opts ...VerifyOption) *verifier {
	v := &verifier{
		connection: spec.Connection,
		configPath: DefaultConfigLocation,
		open: func(dsn string) (*sql.DB, error) {
			return sql.Open("snowflake", dsn)
		},
	}
	if spec.ConfigOverrideFile != "" {
		v.configPath = spec.ConfigOverrideFile
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *verifier) verify(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	conns, err := config.LoadSnowSQLConnections(v.configPath)
	if err != nil {
		return err
	}
	cfg, err := conns.Config(v.connection)
	if err != nil {
		return err
	}

	dsn, err := sf.DSN(cfg)
	if err != nil {
		return fmt.Errorf("failed to create DSN: %w", err)
	}

	db, err := v.open(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close snowflake connection")
		}
	}()

	var version string
	if err := db.QueryRowContext(ctx, versionQuery).Scan(&version); err != nil {
		return fmt.Errorf("snowflake connection %s unreachable: %w", v.connection, err)
	}

	logger.Info().
		Str("connection", v.connection).
		Str("version", version).
		Msg("snowflake connection verified")
	return nil
}
