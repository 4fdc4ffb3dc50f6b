// Command server runs the vorlage API server.
//
// Configuration is loaded from a YAML file and environment variables:
//
//	VORLAGE_CONFIG          - Config file path (default: ./config.yaml, /etc/vorlage/config.yaml)
//	VORLAGE_PORT            - Listen port (default: 8080)
//	VORLAGE_STORAGE         - Storage type: "memory" or "postgres" (default: "memory")
//	VORLAGE_POSTGRES_DSN    - PostgreSQL connection string
//	VORLAGE_SESSION_TTL     - Session cookie lifetime (default: 720h)
//	VORLAGE_RATE_LIMIT      - Per-user requests per minute, 0 disables (default: 0)
//	VORLAGE_LOGIN_RATE_LIMIT - Per-address login/register attempts per minute (default: 0)
//	VORLAGE_DEBUG           - Debug categories: auth, storage, schema, transport, config, all
//	VORLAGE_LOG_LEVEL       - ERROR, WARN, INFO, DEBUG, TRACE (default: INFO)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/vorlage-dev/vorlage/pkg/config"
	"github.com/vorlage-dev/vorlage/pkg/debug"
	"github.com/vorlage-dev/vorlage/pkg/storage"
	"github.com/vorlage-dev/vorlage/pkg/storage/memory"
	"github.com/vorlage-dev/vorlage/pkg/storage/postgres"
	transporthttp "github.com/vorlage-dev/vorlage/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	debug.Init(cfg.Observability.Logging.Debug, cfg.Observability.Logging.Level)
	logger := slog.Default()

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	srv := transporthttp.NewServer(store,
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transporthttp.WithSessionTTL(cfg.Auth.SessionTTL),
		transporthttp.WithSecureCookies(cfg.Auth.SecureCookies),
		transporthttp.WithMetrics(cfg.Observability.Metrics.Enabled),
		transporthttp.WithRateLimit(cfg.Auth.RequestsPerMinute),
		transporthttp.WithLoginRateLimit(cfg.Auth.LoginRequestsPerMinute),
		transporthttp.WithLogger(logger),
	)

	return srv.ListenAndServe()
}

func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Type {
	case "postgres":
		slog.Info("storage enabled", "type", "postgres")
		return postgres.New(context.Background(), postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
	default:
		slog.Info("storage enabled", "type", "memory")
		return memory.New(), nil
	}
}
