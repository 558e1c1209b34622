package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/software-catalog/internal/api"
	"github.com/ignite/software-catalog/internal/assist"
	"github.com/ignite/software-catalog/internal/auth"
	"github.com/ignite/software-catalog/internal/config"
	"github.com/ignite/software-catalog/internal/pkg/logger"
	"github.com/ignite/software-catalog/internal/pkg/ratelimit"
	"github.com/ignite/software-catalog/internal/repository"
	"github.com/ignite/software-catalog/internal/repository/postgres"
	"github.com/ignite/software-catalog/internal/service/catalog"
	"github.com/ignite/software-catalog/internal/service/catalogimport"
	"github.com/ignite/software-catalog/internal/storage"
	"github.com/ignite/software-catalog/internal/worker"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

// extractHost returns host:port of a DSN without credentials, for logging.
func extractHost(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

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

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("database connected", "host", extractHost(cfg.Database.URL))

	audit, err := repository.NewAuditRecorder(ctx, cfg, db)
	if err != nil {
		log.Fatalf("Failed to initialize audit log: %v", err)
	}
	logger.Info("audit log ready", "backend", cfg.Audit.Backend)

	catalogRepo := postgres.NewCatalogRepo(db)
	importer := catalogimport.NewService(catalogRepo, audit, catalogimport.Options{
		RejectDuplicateNames: cfg.Import.RejectDuplicateNames,
		MaxRows:              cfg.Import.MaxRows,
	})

	archive, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize upload archive: %v", err)
	}
	logger.Info("upload archive ready", "type", cfg.Storage.Type)

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://%s:%d", host, cfg.Server.Port)
	}
	authManager := auth.NewAuthManager(&cfg.Auth, cfg.Server.BaseURL)
	authManager.CleanupExpiredSessions(ctx, 10*time.Minute)
	switch {
	case cfg.Auth.DevMode:
		logger.Warn("DEV MODE: admin API is open, every request acts as " + auth.DevActor)
	case cfg.Auth.GoogleClientID == "":
		logger.Warn("auth: no Google client configured, admin login is unavailable")
	default:
		logger.Info("auth: Google OAuth enabled", "domain", cfg.Auth.AllowedDomain, "admins", len(cfg.Auth.AdminEmails))
	}

	deps := api.Deps{
		Importer:       importer,
		Catalog:        catalog.NewService(catalogRepo, audit),
		Archive:        archive,
		Auth:           authManager,
		Import:         cfg.Import,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	if cfg.Assist.Enabled {
		awsCfg, err := storage.LoadAWSConfig(ctx, cfg.Assist.Region, cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to load AWS config for Bedrock: %v", err)
		}
		drafter := assist.NewDrafter(bedrockruntime.NewFromConfig(awsCfg), cfg.Assist.ModelID, cfg.Assist.MaxTokens, true)
		if cfg.Assist.UserPrompt != "" {
			if err := drafter.SetUserPrompt(cfg.Assist.UserPrompt); err != nil {
				log.Fatalf("Invalid assist.user_prompt: %v", err)
			}
		}
		deps.Drafter = drafter
		logger.Info("description assistant enabled", "model", cfg.Assist.ModelID)
	}

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}

		if cfg.Import.RowsPerMinute > 0 || cfg.Import.RowsPerDay > 0 {
			deps.Limiter = ratelimit.New(rdb, "import_rows",
				ratelimit.Window{Period: time.Minute, Limit: cfg.Import.RowsPerMinute},
				ratelimit.Window{Period: 24 * time.Hour, Limit: cfg.Import.RowsPerDay},
			)
			logger.Info("import row limits enabled", "per_minute", cfg.Import.RowsPerMinute, "per_day", cfg.Import.RowsPerDay)
		}

		queue := worker.NewImportQueue(rdb, cfg.Import.JobTTL())
		deps.Queue = queue
		deps.Health = api.NewHealthChecker(db, rdb)

		if cfg.Import.InlineWorker {
			w := worker.NewImportWorker(queue, importer)
			go func() {
				if err := w.Run(ctx); err != nil {
					logger.Error("import worker stopped", "error", err)
				}
			}()
			go worker.NewJobRecoveryWorker(queue, 0, 0).Start(ctx)
			logger.Info("async import enabled with inline worker")
		} else {
			logger.Info("async import enabled, jobs are processed by cmd/worker")
		}
	} else {
		deps.Health = api.NewHealthChecker(db, nil)
		logger.Info("async import disabled (no Redis configured)")
	}

	server := api.NewServer(cfg.Server, deps)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, cfg.Server.Port)
		logger.Info("server listening", "addr", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
}
