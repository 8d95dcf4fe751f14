package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)
	"go.uber.org/zap"

	"github.com/venturekb/venture-engine/pkg/config"
	"github.com/venturekb/venture-engine/pkg/database"
	"github.com/venturekb/venture-engine/pkg/logging"
	"github.com/venturekb/venture-engine/pkg/repositories"
	"github.com/venturekb/venture-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.URL())))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.Knowledge.MigrationsPath, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	sqlDB.Close()

	ventureRepo := repositories.NewVentureRepository()
	entityRepo := repositories.NewEntityRepository()
	evidenceRepo := repositories.NewEvidenceRepository()
	relationRepo := repositories.NewRelationRepository()
	eventRepo := repositories.NewEventRepository()
	txManager := database.NewTxManager()

	// Services are constructed at startup so wiring errors surface
	// immediately. Transports attach on top of these.
	_ = services.NewVentureService(ventureRepo, logger)
	_ = services.NewEntityService(entityRepo, evidenceRepo, relationRepo, eventRepo, txManager, logger)
	_ = services.NewGraphService(entityRepo, relationRepo, eventRepo, txManager, logger)
	_ = services.NewActivityService(eventRepo, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": cfg.Version,
		})
	})

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("starting venture-engine", zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
