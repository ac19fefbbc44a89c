// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pawmatch-workers/internal/api"
	"pawmatch-workers/internal/candidates"
	appaws "pawmatch-workers/internal/common/aws"
	"pawmatch-workers/internal/common/camunda"
	"pawmatch-workers/internal/common/config"
	"pawmatch-workers/internal/common/database"
	"pawmatch-workers/internal/common/logger"
	"pawmatch-workers/internal/common/observability"
	"pawmatch-workers/internal/matching"
	"pawmatch-workers/internal/matchstore"
	"pawmatch-workers/internal/rankcache"

	em "pawmatch-workers/internal/workers/matching/explain-match"
	ns "pawmatch-workers/internal/workers/matching/notify-shortlist"
	rc "pawmatch-workers/internal/workers/matching/rank-candidates"
	sc "pawmatch-workers/internal/workers/matching/score-candidate"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// pingFunc adapts a health check to database.Pinger.
type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func workerTimeout(cfg *config.Config, taskType string) time.Duration {
	return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewFromOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(camunda.ClientConfigFrom(cfg.Camunda))
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	store := matchstore.New(pg.DB, log)
	if err := store.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("match log schema setup failed", zap.Error(err))
	}

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis ---
	// The rank cache degrades to direct scoring, so an unreachable Redis is
	// logged and startup continues.
	redis := database.NewRedis(cfg.Database.Redis)
	defer redis.Close()
	if err := redis.Ping(ctx); err != nil {
		zapLog.Warn("redis unreachable, rank cache will miss", zap.Error(err))
	} else {
		zapLog.Info("Redis connected successfully")
	}

	engine := matching.NewEngine(matching.WithParallelism(cfg.Matching.Parallelism))
	searcher := candidates.NewSearcher(esClient.Client, cfg.Matching.CandidateIndex, log)

	// --- Matching workers ---
	scoreHandler := sc.NewHandler(&sc.Config{Timeout: workerTimeout(cfg, sc.TaskType)}, engine, log)
	explainHandler := em.NewHandler(&em.Config{Timeout: workerTimeout(cfg, em.TaskType)}, log)

	rankOpts := rc.HandlerOptions{
		Config:        rc.ConfigFrom(cfg),
		Engine:        engine,
		Candidates:    searcher,
		Observability: obs,
		Logger:        log,
	}
	if cfg.Matching.CacheEnabled {
		rankOpts.Cache = rankcache.New(redis.Client, cfg.Matching.CacheTTL, log)
	}
	if cfg.Matching.PersistMatches {
		rankOpts.Recorder = store
	}
	rankHandler, err := rc.NewHandler(rankOpts)
	if err != nil {
		zapLog.Fatal("failed to create rank-candidates handler", zap.Error(err))
	}

	notifyOpts := ns.HandlerOptions{Config: ns.ConfigFrom(cfg), Logger: log}
	if cfg.Notifications.Email.Enabled || cfg.Notifications.Events.Enabled {
		awsCfg, err := appaws.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config load failed", zap.Error(err))
		}
		if cfg.Notifications.Email.Enabled {
			notifyOpts.SES = appaws.NewSESClient(awsCfg)
		}
		if cfg.Notifications.Events.Enabled {
			notifyOpts.SNS = appaws.NewSNSClient(awsCfg)
		}
	}
	notifyHandler, err := ns.NewHandler(notifyOpts)
	if err != nil {
		zapLog.Fatal("failed to create notify-shortlist handler", zap.Error(err))
	}

	workers := camunda.StartWorkers(camundaClient.GetClient(), cfg, []camunda.Registration{
		{TaskType: sc.TaskType, Handler: scoreHandler},
		{TaskType: rc.TaskType, Handler: rankHandler},
		{TaskType: em.TaskType, Handler: explainHandler},
		{TaskType: ns.TaskType, Handler: notifyHandler},
	}, zapLog)
	zapLog.Info("Matching workers registered", zap.Int("count", len(workers)))

	// --- HTTP: matching API, health and metrics ---
	server := api.NewServer(api.Options{
		Score:   scoreHandler,
		Rank:    rankHandler,
		Explain: explainHandler,
		History: store,
		Dependencies: map[string]database.Pinger{
			"postgres":      pg,
			"elasticsearch": esClient,
			"redis":         redis,
			"zeebe":         pingFunc(camundaClient.HealthCheck),
		},
		Logger: log,
	})
	httpServer := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      server.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}

	camunda.StopWorkers(workers, zapLog)

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
