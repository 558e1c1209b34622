package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/software-catalog/internal/config"
	"github.com/ignite/software-catalog/internal/pkg/logger"
	"github.com/ignite/software-catalog/internal/repository"
	"github.com/ignite/software-catalog/internal/repository/postgres"
	"github.com/ignite/software-catalog/internal/service/catalogimport"
	"github.com/ignite/software-catalog/internal/worker"
)

// The worker drains the async import queue. Several instances may run
// side by side; each job is guarded by a Redis lock.
func main() {
	configPath := "config/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		configPath = v
	}
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Env, logger.ParseLevel(cfg.Log.Level))
	defer logger.Sync()

	if cfg.Redis.URL == "" {
		log.Fatal("REDIS_URL is required for the import worker")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	audit, err := repository.NewAuditRecorder(ctx, cfg, db)
	if err != nil {
		log.Fatalf("Failed to initialize audit log: %v", err)
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	importer := catalogimport.NewService(postgres.NewCatalogRepo(db), audit, catalogimport.Options{
		RejectDuplicateNames: cfg.Import.RejectDuplicateNames,
		MaxRows:              cfg.Import.MaxRows,
	})
	queue := worker.NewImportQueue(rdb, cfg.Import.JobTTL())
	w := worker.NewImportWorker(queue, importer)
	go worker.NewJobRecoveryWorker(queue, 0, 0).Start(ctx)

	if err := w.Run(ctx); err != nil {
		logger.Error("import worker failed", "error", err)
		os.Exit(1)
	}
}
