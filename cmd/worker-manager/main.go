// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"volunteer-workers/internal/common/camunda"
	"volunteer-workers/internal/common/config"
	"volunteer-workers/internal/common/database"
	"volunteer-workers/internal/common/logger"
	"volunteer-workers/internal/common/observability"
	"volunteer-workers/internal/location"
	"volunteer-workers/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("starting worker manager", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs := observability.New(cfg.Observability, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, camunda.ConfigFrom(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe connect failed", zap.Error(err))
	}
	defer zeebe.Close()

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	// --- Elasticsearch ---
	var es *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return es.Ping(ctx)
	}, 15, 2*time.Second, log, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}

	// --- Redis ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()

	regions, err := location.LoadRegionTable(cfg.Locations.RegionTablePath)
	if err != nil {
		zapLog.Fatal("region table load failed", zap.Error(err))
	}
	countries, states := regions.Len()
	log.Info("region table loaded", map[string]interface{}{
		"path":      cfg.Locations.RegionTablePath,
		"countries": countries,
		"states":    states,
	})

	if cfg.Locations.VolunteerSource == config.VolunteerSourceElasticsearch {
		index := cfg.Database.Elasticsearch.VolunteerIndex
		if ok, err := es.IndexExists(ctx, index); err != nil || !ok {
			log.Warn("volunteer index not available", map[string]interface{}{
				"index": index,
				"error": fmt.Sprint(err),
			})
		}
	}

	deps := &dependencies{
		cfg:     cfg,
		db:      pg.DB,
		es:      es.Client,
		redis:   redis,
		regions: regions,
		log:     log,
	}
	regs, err := buildRegistrations(ctx, deps)
	if err != nil {
		zapLog.Fatal("worker setup failed", zap.Error(err))
	}

	checkCatalog(cfg.Registry.Path, regs, log)

	workers := make([]*camunda.CamundaWorker, 0, len(regs))
	for _, reg := range regs {
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), reg, obs, log))
	}
	log.Info("workers registered", map[string]interface{}{"count": len(workers)})

	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.App.HealthPort),
		Handler: newServeMux(map[string]func(context.Context) error{
			"zeebe":         zeebe.HealthCheck,
			"postgres":      pg.Ping,
			"redis":         redis.Ping,
			"elasticsearch": es.Ping,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping workers", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("health server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	log.Info("worker manager stopped", nil)
}

// checkCatalog warns about enabled workers the activity registry does not
// describe. A missing or invalid catalog is logged and otherwise ignored.
func checkCatalog(path string, regs []camunda.Registration, log logger.Logger) {
	catalog, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry unavailable", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return
	}

	taskTypes := make([]string, len(regs))
	for i, r := range regs {
		taskTypes[i] = r.TaskType
	}
	for _, tt := range catalog.Missing(taskTypes) {
		log.Warn("enabled worker missing from activity registry", map[string]interface{}{
			"taskType": tt,
			"path":     path,
		})
	}
}
