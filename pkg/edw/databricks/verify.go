package databricks

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sqldriver "github.com/databricks/databricks-sql-go"
	"github.com/rs/zerolog"
)

const (
	warehouseHTTPPath = "/sql/1.0/warehouses/"
	pingQuery         = "SELECT 1"
)

type opener func(host, httpPath, token string) (*sql.DB, error)

func openWarehouse(host, httpPath, token string) (*sql.DB, error) {
	connector, err := sqldriver.NewConnector(
		sqldriver.WithServerHostname(host),
		sqldriver.WithPort(443),
		sqldriver.WithHTTPPath(httpPath),
		sqldriver.WithAccessToken(token),
	)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

func hostname(host string) string {
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return strings.TrimSuffix(host, "/")
}

// Verify runs a trivial statement on the warehouse through the SQL driver.
func (p *Provider) Verify(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	id := p.warehouseID()
	if id == "" {
		return fmt.Errorf("no warehouse to verify for profile %s", p.spec.Connection)
	}
	if _, err := p.client(ctx); err != nil {
		return err
	}
	if p.workspace == nil {
		return fmt.Errorf("workspace config for profile %s is missing", p.spec.Connection)
	}

	db, err := p.open(hostname(p.workspace.Host), warehouseHTTPPath+id, p.workspace.Token)
	if err != nil {
		return fmt.Errorf("failed to connect to Databricks: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close databricks connection")
		}
	}()

	var one int
	if err := db.QueryRowContext(ctx, pingQuery).Scan(&one); err != nil {
		return fmt.Errorf("warehouse %s unreachable: %w", id, err)
	}

	logger.Info().Str("warehouse_id", id).Msg("databricks warehouse verified")
	return nil
}
