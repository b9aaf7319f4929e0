package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/edw-harness/pkg/server"
	"github.com/de-tools/edw-harness/pkg/services/config"
	"github.com/de-tools/edw-harness/pkg/services/provenance"
	"github.com/de-tools/edw-harness/pkg/store/duckdb"
	provenancestore "github.com/de-tools/edw-harness/pkg/store/duckdb/provenance"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Serve recorded warehouse lifecycle history",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the harness config file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return err
	}

	logger := zerolog.New(os.Stdout).Level(cfg.Log.ZerologLevel()).With().Timestamp().Logger()

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: config.ExpandHome(cfg.Store.DbPath),
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	defer db.Close()

	store, err := provenancestore.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create provenance store: %w", err)
	}
	svc, err := provenance.NewService(db, store)
	if err != nil {
		return err
	}

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		return fmt.Errorf("missing SERVER_HOST or SERVER_PORT")
	}

	logger.Info().Str("db", cfg.Store.DbPath).Msg("provenance store opened")

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Provenance: svc,
			Gatherer:   prometheus.DefaultGatherer,
		},
	})
	return webAPI.Start()
}
