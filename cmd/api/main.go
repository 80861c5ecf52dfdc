package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/availability-api/internal/config"
	availabilityHandler "github.com/jwalitptl/availability-api/internal/handler/availability"
	"github.com/jwalitptl/availability-api/internal/handler/health"
	"github.com/jwalitptl/availability-api/internal/middleware"
	"github.com/jwalitptl/availability-api/internal/repository"
	"github.com/jwalitptl/availability-api/internal/repository/memory"
	"github.com/jwalitptl/availability-api/internal/repository/postgres"
	"github.com/jwalitptl/availability-api/internal/router"
	"github.com/jwalitptl/availability-api/internal/service/availability"
	"github.com/jwalitptl/availability-api/internal/service/calendar"
	"github.com/jwalitptl/availability-api/pkg/lock"
	"github.com/jwalitptl/availability-api/pkg/logger"
	"github.com/jwalitptl/availability-api/pkg/messaging"
	"github.com/jwalitptl/availability-api/pkg/messaging/redis"
	"github.com/jwalitptl/availability-api/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics("availability", "", registry)

	healthH := health.NewHandler(registry)

	// Slot store
	var store repository.SlotRepository
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		if cfg.Database.Migrate {
			if err := postgres.RunMigrations(db.DB); err != nil {
				log.Fatal().Err(err).Msg("failed to run migrations")
			}
		}
		store = postgres.NewSlotRepository(db)
	default:
		store = memory.NewSlotRepository()
	}
	store = repository.NewInstrumentedSlotRepository(store, m)
	if hc, ok := store.(repository.HealthChecker); ok {
		healthH.AddCheck("store", hc)
	}

	// Events and mutation lock
	var (
		broker messaging.Broker = messaging.NewNopBroker()
		locker lock.Locker      = lock.NewLocalLock()
	)
	if cfg.Redis.Enabled {
		client, err := redis.NewClient(ctx, redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   3,
			RetryBackoff: 100 * time.Millisecond,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		broker = redis.NewRedisBroker(client, log.Logger)
		locker = lock.NewRedisLock(client)
		healthH.AddCheck("redis", health.CheckFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
		go logEvents(ctx, broker, cfg.Redis.Channel)
	}
	defer broker.Close()

	gen := calendar.NewGenerator(calendar.WorkingHours{
		Start: cfg.Calendar.WorkdayStartHour,
		End:   cfg.Calendar.WorkdayEndHour,
	})

	svc := availability.NewService(
		store,
		gen,
		locker,
		messaging.NewChannelPublisher(broker, cfg.Redis.Channel),
		m,
		availability.Config{
			DefaultTimezone: cfg.Calendar.DefaultTimezone,
			CopyOffsetDays:  cfg.Calendar.CopyOffsetDays,
			SessionTTL:      cfg.Sessions.TTL,
			SessionCleanup:  cfg.Sessions.CleanupInterval,
			LockTTL:         cfg.Redis.LockTTL,
		},
		log.Logger,
	)

	// Setup router
	r := router.NewRouter(
		availabilityHandler.NewHandler(svc),
		healthH,
		router.RouterConfig{
			RateLimit:      rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:      cfg.RateLimit.Burst,
			CORSConfig:     middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins...),
			RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			MetricsPrefix:  "availability_http",
			Registerer:     registry,
			Logger:         log.Logger,
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("store", cfg.Database.Driver).Bool("redis", cfg.Redis.Enabled).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

// logEvents writes every published slot event to the log at debug level.
func logEvents(ctx context.Context, broker messaging.Broker, channel string) {
	msgs, err := broker.Subscribe(ctx, channel)
	if err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("failed to subscribe to slot events")
		return
	}
	for payload := range msgs {
		log.Debug().Str("channel", channel).RawJSON("event", payload).Msg("slot event")
	}
}
