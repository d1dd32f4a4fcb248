// Command server runs the peripheral sync node: the HTTP API for local
// registrations, the periodic reconciliation sweeper and, on the queue path,
// the confirmation consumer.
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

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"hcen/internal/jwt_token"
	"hcen/internal/platform/config"
	"hcen/internal/platform/httpserver"
	"hcen/internal/platform/kafka/consumer"
	"hcen/internal/platform/kafka/producer"
	"hcen/internal/platform/logger"
	httpmetrics "hcen/internal/platform/metrics"
	"hcen/internal/platform/redis"
	"hcen/internal/sync/adapter"
	"hcen/internal/sync/central"
	"hcen/internal/sync/correlator"
	"hcen/internal/sync/handler"
	"hcen/internal/sync/metrics"
	"hcen/internal/sync/scheduler"
	"hcen/internal/sync/service"
	"hcen/internal/sync/store/dedup"
	"hcen/internal/sync/store/document"
	"hcen/internal/sync/store/schema"
	"hcen/internal/sync/store/user"
	httptransport "hcen/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: postgres when a DSN is configured, in-memory otherwise so the
	// service still runs in development without a database.
	var (
		users     user.Store
		documents document.Store
		db        *sql.DB
	)
	if cfg.Postgres.DSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("ping postgres: %w", err)
		}
		if err := schema.Apply(ctx, db); err != nil {
			return err
		}
		users = user.NewPostgres(db)
		documents = document.NewPostgres(db)
	} else {
		log.Warn("no postgres DSN configured, using in-memory stores")
		users = user.NewMemory()
		documents = document.NewMemory()
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	var processed dedup.Store
	if redisClient != nil {
		defer redisClient.Close()
		processed = dedup.NewRedis(redisClient.Client, cfg.Sync.DedupTTL)
	} else {
		log.Warn("no redis configured, confirmation dedup is in-memory")
		processed = dedup.NewMemory(cfg.Sync.DedupTTL)
	}

	m := metrics.New()
	centralClient := central.New(cfg.Central.BaseURL, log)

	docAdapter := adapter.NewDocumentSync(documents, centralClient, log)

	// The user adapter is a deployment choice; both paths end in the same
	// sentinel discipline.
	var userAdapter adapter.UserAdapter
	var kafkaProducer *producer.Producer
	switch cfg.Sync.UserAdapter {
	case "queue":
		kafkaProducer, err = producer.New(cfg.Kafka.Brokers, log)
		if err != nil {
			return fmt.Errorf("connect kafka: %w", err)
		}
		defer kafkaProducer.Close()
		if err := kafkaProducer.EnsureTopics(ctx, 3, cfg.Kafka.RegistrationTopic, cfg.Kafka.ConfirmationTopic); err != nil {
			return fmt.Errorf("ensure topics: %w", err)
		}
		userAdapter = adapter.NewQueue(kafkaProducer, centralClient, cfg.Kafka.RegistrationTopic, log)
	case "rest":
		userAdapter = adapter.NewREST(centralClient, log)
	default:
		return fmt.Errorf("unknown user adapter %q (want rest or queue)", cfg.Sync.UserAdapter)
	}

	svc, err := service.New(users, documents, userAdapter, docAdapter, m, service.WithLogger(log))
	if err != nil {
		return fmt.Errorf("build sync service: %w", err)
	}

	sweeper := scheduler.New(svc, cfg.Sync.SweepInterval, m.SweepDuration, log)

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, "hcen-peripheral", "hcen-api")
	syncHandler := handler.New(svc, sweeper, log, jwttoken.NewJWTServiceAdapter(jwtService))

	health := map[string]httptransport.HealthChecker{}
	if db != nil {
		health["postgres"] = dbHealth{db}
	}
	if redisClient != nil {
		health["redis"] = redisClient
	}

	srv := httpserver.New(cfg.Server.Addr, httptransport.NewRouter(httpmetrics.New(), health, syncHandler))

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting http server", "addr", cfg.Server.Addr, "user_adapter", userAdapter.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	group.Go(func() error {
		err := sweeper.Run(groupCtx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	// The confirmation consumer only makes sense on the queue path.
	if cfg.Sync.UserAdapter == "queue" {
		confirmations := correlator.New(users, documents, processed, m, log)
		kafkaConsumer, err := consumer.New(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup,
			[]string{cfg.Kafka.ConfirmationTopic}, confirmations, log)
		if err != nil {
			return fmt.Errorf("connect kafka consumer: %w", err)
		}
		group.Go(func() error {
			err := kafkaConsumer.Run(groupCtx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}

	return group.Wait()
}

// dbHealth adapts *sql.DB to the health checker contract.
type dbHealth struct {
	db *sql.DB
}

func (h dbHealth) Health(ctx context.Context) error {
	return h.db.PingContext(ctx)
}
