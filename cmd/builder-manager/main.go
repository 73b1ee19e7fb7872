// cmd/builder-manager/main.go
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"application-builder/internal/builder/analytics"
	"application-builder/internal/builder/jobs"
	"application-builder/internal/builder/portfolio"
	"application-builder/internal/builder/session"
	"application-builder/internal/builder/submission"
	"application-builder/internal/builder/wizard"
	"application-builder/internal/common/camunda"
	"application-builder/internal/common/config"
	"application-builder/internal/common/database"
	"application-builder/internal/common/logger"
	"application-builder/internal/common/messaging"
	"application-builder/internal/common/observability"
	"application-builder/internal/server"
	"application-builder/pkg/registry"

	car "application-builder/internal/workers/application/create-application-record"
)

const idleEvictionInterval = 5 * time.Minute

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
			log.Warn(operationName+" failed, retrying", map[string]interface{}{
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

// connections holds every client opened at startup so shutdown can close
// them in one place.
type connections struct {
	pg     *sql.DB
	es     *elasticsearch.Client
	redis  *redis.Client
	zeebe  *camunda.Client
	amqp   *messaging.AMQPPublisher
	checks *database.Checks
}

func (c *connections) close(log logger.Logger) {
	if c.amqp != nil {
		if err := c.amqp.Close(); err != nil {
			log.Warn("error closing amqp channel", map[string]interface{}{"error": err.Error()})
		}
	}
	if c.zeebe != nil {
		if err := c.zeebe.Close(); err != nil {
			log.Warn("error closing zeebe client", map[string]interface{}{"error": err.Error()})
		}
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
	if c.pg != nil {
		_ = c.pg.Close()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()
	log := logger.Wrap(zapLog).WithFields(map[string]interface{}{"service": cfg.App.Name})

	log.Info("starting builder manager", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	ctx := context.Background()
	conns, err := connect(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("startup failed", zap.Error(err))
	}

	reg, err := registry.LoadOrDefault(cfg.Builder.RegistryPath)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}

	ranker := portfolio.NewDefaultRanker()
	records := car.NewHandler(&car.Config{
		Timeout: config.GetDuration(config.GetWorkerConfig(cfg, car.TaskType).Timeout),
	}, conns.pg, log)

	submitter, err := newSubmitter(cfg, conns, records, log)
	if err != nil {
		zapLog.Fatal("submitter init failed", zap.Error(err))
	}

	var store session.Store = session.NewMemoryStore()
	if cfg.Builder.StoreDriver == "redis" {
		store = session.NewRedisStore(conns.redis, cfg.Builder.SessionTTLDuration())
	}

	var jobProvider jobs.Provider = jobs.NewElasticsearchProvider(conns.es, cfg.Database.Elasticsearch.JobsIndex)
	if conns.redis != nil {
		jobProvider = jobs.NewCachedProvider(jobProvider, conns.redis, cfg.Builder.JobCacheTTLDuration(), log)
	}

	tracker := analytics.NewTracker(store, log)
	manager := session.NewManager(session.ManagerOptions{
		Store:         store,
		Jobs:          jobProvider,
		Submitter:     submitter,
		Ranker:        ranker,
		Tracker:       tracker,
		Observability: obs,
		TTL:           cfg.Builder.SessionTTLDuration(),
		Logger:        log,
	})

	// --- Zeebe Workers ---
	var workers *camunda.Workers
	if conns.zeebe != nil {
		workers = camunda.NewWorkers(conns.zeebe, log)
		for _, r := range registrations(cfg, conns, ranker, records, reg, log) {
			workers.Start(r, config.GetWorkerConfig(cfg, r.TaskType))
		}
		log.Info("workers registered", map[string]interface{}{"count": workers.Count()})
	}

	// --- HTTP API ---
	apiOpts := server.Options{
		Manager: manager,
		Ranker:  ranker,
		Checks:  conns.checks,
		Logger:  log,
		Tracker: tracker,
	}
	// only the remote application service can change submitted applications
	if svc, ok := submitter.(server.ApplicationService); ok {
		apiOpts.Applications = svc
	}
	api := server.New(apiOpts)
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      api.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info("http server listening", map[string]interface{}{"addr": httpServer.Addr})
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	evictCtx, stopEviction := context.WithCancel(ctx)
	go evictIdleSessions(evictCtx, manager, cfg.Builder.SessionTTLDuration(), log)

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Info("shutdown signal received", nil)

	stopEviction()
	if workers != nil {
		workers.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", map[string]interface{}{"error": err.Error()})
	}

	conns.close(log)
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Warn("observability shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	log.Info("builder manager stopped", nil)
}

func connect(ctx context.Context, cfg *config.Config, log logger.Logger) (*connections, error) {
	conns := &connections{checks: database.NewChecks()}

	err := retryWithBackoff(func() error {
		var err error
		conns.pg, err = database.OpenPostgres(ctx, cfg.Database.Postgres)
		return err
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		return nil, err
	}
	conns.checks.Register("postgres", database.PostgresCheck(conns.pg))

	err = retryWithBackoff(func() error {
		var err error
		conns.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return database.ElasticsearchCheck(conns.es)(ctx)
	}, 15, 2*time.Second, log, "Elasticsearch connection")
	if err != nil {
		conns.close(log)
		return nil, err
	}
	conns.checks.Register("elasticsearch", database.ElasticsearchCheck(conns.es))

	if cfg.Database.Redis.Address != "" {
		client := database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return database.RedisCheck(client)(ctx)
		}, 10, 2*time.Second, log, "Redis connection")
		if err != nil {
			_ = client.Close()
			conns.close(log)
			return nil, err
		}
		conns.redis = client
		conns.checks.Register("redis", database.RedisCheck(client))
	}

	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			conns.zeebe, err = camunda.NewClient(ctx, camunda.ConfigFrom(cfg.Camunda))
			return err
		}, 10, 2*time.Second, log, "Zeebe client initialization")
		if err != nil {
			conns.close(log)
			return nil, err
		}
		conns.checks.Register("zeebe", conns.zeebe.HealthCheck)
	}

	if cfg.Messaging.AMQP.Enabled {
		amqp := cfg.Messaging.AMQP
		err = retryWithBackoff(func() error {
			var err error
			conns.amqp, err = messaging.Dial(amqp.URL, amqp.Exchange, amqp.RoutingKey, log)
			return err
		}, 10, 2*time.Second, log, "RabbitMQ connection")
		if err != nil {
			conns.close(log)
			return nil, err
		}
	}

	log.Info("all connections established", nil)
	return conns, nil
}

// newSubmitter picks the submission backend. Record mode writes through the
// create-application-record handler and announces the result; api mode
// delegates everything to the application service.
func newSubmitter(cfg *config.Config, conns *connections, records *car.Handler, log logger.Logger) (wizard.Submitter, error) {
	switch cfg.Builder.SubmissionMode {
	case "api":
		api := cfg.Builder.SubmissionAPI
		return submission.NewAPIClient(api.BaseURL, api.APIKey, config.GetDuration(api.Timeout), log), nil
	case "record":
		var publishers []submission.EventPublisher
		if conns.amqp != nil {
			publishers = append(publishers, conns.amqp)
		}
		if conns.zeebe != nil && cfg.Camunda.SubmittedProcessID != "" {
			publishers = append(publishers, camunda.NewProcessStarter(conns.zeebe, cfg.Camunda.SubmittedProcessID, log))
		}
		return submission.NewRecordSubmitter(records, log, publishers...), nil
	default:
		return nil, fmt.Errorf("unknown submission mode %q", cfg.Builder.SubmissionMode)
	}
}

func evictIdleSessions(ctx context.Context, manager *session.Manager, idle time.Duration, log logger.Logger) {
	ticker := time.NewTicker(idleEvictionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := manager.EvictIdle(idle); n > 0 {
				log.Debug("evicted idle sessions", map[string]interface{}{"count": n, "remaining": manager.Len()})
			}
		}
	}
}
