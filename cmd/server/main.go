package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"bizhealth/internal/anomaly"
	anomalymetrics "bizhealth/internal/anomaly/metrics"
	jwttoken "bizhealth/internal/jwt_token"
	"bizhealth/internal/normalize"
	"bizhealth/internal/pipeline"
	"bizhealth/internal/platform/config"
	"bizhealth/internal/platform/httpserver"
	"bizhealth/internal/platform/kafka"
	"bizhealth/internal/platform/logger"
	"bizhealth/internal/platform/metrics"
	"bizhealth/internal/platform/postgres"
	"bizhealth/internal/platform/redis"
	"bizhealth/internal/quality"
	qualitymetrics "bizhealth/internal/quality/metrics"
	"bizhealth/internal/storage"
	httptransport "bizhealth/internal/transport/http"
	audit "bizhealth/pkg/platform/audit"
	"bizhealth/pkg/platform/audit/publisher"
	"bizhealth/pkg/platform/audit/worker"
	kafkasink "bizhealth/pkg/platform/audit/publishers/kafka"
	pgstore "bizhealth/pkg/platform/audit/store/postgres"
	redisstore "bizhealth/pkg/platform/audit/store/redis"
)

// infra holds the optional backing services. Any field may be nil.
type infra struct {
	db    *sql.DB
	redis *redis.Client
	kafka *kafka.Client
}

func (i infra) close(log *slog.Logger) {
	if i.kafka != nil {
		i.kafka.Close()
	}
	if i.redis != nil {
		if err := i.redis.Close(); err != nil {
			log.Warn("closing redis", "error", err)
		}
	}
	if i.db != nil {
		if err := i.db.Close(); err != nil {
			log.Warn("closing postgres", "error", err)
		}
	}
}

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service
// packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	deps, err := connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect backing services", "error", err)
		os.Exit(1)
	}
	defer deps.close(log)

	sinks, readers, lister, err := buildSinks(ctx, cfg, deps, log)
	if err != nil {
		log.Error("failed to prepare audit sinks", "error", err)
		deps.close(log)
		os.Exit(1)
	}
	pub := publisher.NewPublisher(append(sinks,
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics(reg)),
	)...)
	queue := worker.NewWorker(pub, worker.DefaultBuffer, log)

	out := storage.NewFileStore(cfg.Quality.OutputDir)
	qualitySvc := quality.NewService(out,
		quality.WithConfig(quality.Config{
			StrictMode:         cfg.Quality.StrictMode,
			CriticalDimensions: cfg.Quality.CriticalDimensions,
		}),
		quality.WithPublisher(queue),
		quality.WithReader(readers),
		quality.WithConsole(os.Stderr),
		quality.WithLogger(log),
		quality.WithMetrics(qualitymetrics.New(reg)),
	)
	anomalySvc := anomaly.NewService(
		anomaly.NewFileArtifacts(cfg.Anomaly.ArtifactsDir, anomaly.DefaultArtifactNames()),
		out,
		anomaly.WithPublisher(queue),
		anomaly.WithLogger(log),
		anomaly.WithMetrics(anomalymetrics.New(reg)),
		anomaly.WithConcurrency(cfg.Anomaly.ScanConcurrency),
	)
	runs := pipeline.New(qualitySvc, anomalySvc, log)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	checks := map[string]httptransport.HealthCheck{}
	if deps.db != nil {
		checks["postgres"] = deps.db.PingContext
	}
	if deps.redis != nil {
		checks["redis"] = deps.redis.Health
	}
	if deps.kafka != nil {
		checks["kafka"] = deps.kafka.Health
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Normalize: normalize.Default(),
		Audits:    qualitySvc,
		Lister:    lister,
		Runs:      runs,
		Anomalies: anomalySvc,
		Validator: jwttoken.NewJWTServiceAdapter(jwtService),
		Gatherer:  reg,
		Metrics:   metrics.New(reg),
		Checks:    checks,
		Logger:    log,
	})

	queueDone := make(chan struct{})
	go func() {
		defer close(queueDone)
		_ = queue.Run(ctx)
	}()

	srv := httpserver.New(cfg.Addr, router, log)
	go func() {
		log.Info("starting bizhealth scoring API",
			"addr", cfg.Addr,
			"strict_mode", cfg.Quality.StrictMode,
			"output_dir", cfg.Quality.OutputDir,
			"sinks", pub.Sinks(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	<-queueDone
	queue.Drain(shutdownCtx)
}

func connect(ctx context.Context, cfg config.Server, log *slog.Logger) (infra, error) {
	var deps infra
	var err error

	if deps.db, err = postgres.Open(ctx, cfg.Postgres); err != nil {
		return deps, err
	}
	if deps.redis, err = redis.New(ctx, cfg.Redis); err != nil {
		deps.close(log)
		return infra{}, err
	}
	if deps.kafka, err = kafka.New(ctx, cfg.Kafka); err != nil {
		deps.close(log)
		return infra{}, err
	}
	log.Info("backing services",
		"postgres", deps.db != nil,
		"redis", deps.redis != nil,
		"kafka", deps.kafka != nil,
	)
	return deps, nil
}

// buildSinks turns the connected services into audit sinks. The redis cache
// is consulted before postgres on reads; listing needs postgres.
func buildSinks(ctx context.Context, cfg config.Server, deps infra, log *slog.Logger) ([]publisher.Option, audit.ChainReader, httptransport.AuditLister, error) {
	var (
		opts    []publisher.Option
		readers audit.ChainReader
		lister  httptransport.AuditLister
	)
	if deps.redis != nil {
		cache := redisstore.New(deps.redis.Client, cfg.Redis.TTL)
		opts = append(opts, publisher.WithSink(cache))
		readers = append(readers, cache)
	}
	if deps.db != nil {
		store := pgstore.New(deps.db)
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, publisher.WithSink(store))
		readers = append(readers, store)
		lister = store
	}
	if deps.kafka != nil {
		topics := kafkasink.Topics{
			QualityAudit:  cfg.Kafka.AuditTopic,
			AnomalyReport: cfg.Kafka.AnomalyTopic,
		}
		if err := kafkasink.EnsureTopics(ctx, deps.kafka.Admin, topics, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
			log.Warn("could not ensure kafka topics", "error", err)
		}
		opts = append(opts, publisher.WithSink(kafkasink.New(deps.kafka.Client, topics)))
	}
	return opts, readers, lister, nil
}
