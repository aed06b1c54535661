package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"complia/internal/dispatch"
	"complia/internal/history"
	historyhandler "complia/internal/history/handler"
	"complia/internal/jwttoken"
	"complia/internal/platform/config"
	"complia/internal/platform/httpserver"
	"complia/internal/platform/kafka"
	"complia/internal/platform/logger"
	"complia/internal/platform/middleware"
	platformredis "complia/internal/platform/redis"
	"complia/internal/registry"
	"complia/internal/schedule"
	schedulehandler "complia/internal/schedule/handler"
	"complia/internal/schedule/lock"
	schedulemetrics "complia/internal/schedule/metrics"
	"complia/internal/schedule/notify"
	"complia/internal/tenantcfg"
	tenantcfghandler "complia/internal/tenantcfg/handler"
	"complia/internal/validation"
	validationhandler "complia/internal/validation/handler"
	validationmetrics "complia/internal/validation/metrics"
)

const (
	jwtIssuer   = "complia"
	jwtAudience = "complia-admin"
)

// main wires the dependency graph and keeps the server lifecycle small.
// Business logic lives in the internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := registry.NewBuiltin()

	table := dispatch.NewTable()
	if err := registerEvaluators(table); err != nil {
		log.Error("evaluator registration failed", "error", err)
		os.Exit(1)
	}
	table.Freeze()
	log.Info("validator dispatch table frozen", "bindings", table.Bound())

	thresholds := validation.DefaultThresholds()
	if cfg.IRRThresholds != "" {
		var err error
		thresholds, err = validation.ParseThresholds(cfg.IRRThresholds)
		if err != nil {
			log.Error("invalid IRR threshold override", "error", err)
			os.Exit(1)
		}
	}

	var (
		tenantStore   tenantcfg.Store
		historyStore  history.Store
		scheduleStore schedule.Store
	)
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			log.Error("postgres open failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("postgres ping failed", "error", err)
			os.Exit(1)
		}
		tenantStore = tenantcfg.NewPostgresStore(db)
		historyStore = history.NewPostgresStore(db)
		scheduleStore = schedule.NewPostgresStore(db)
		log.Info("using postgres stores")
	} else {
		tenantStore = tenantcfg.NewInMemory()
		historyStore = history.NewInMemory()
		scheduleStore = schedule.NewInMemory()
		log.Warn("no postgres DSN configured, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	var locker lock.Locker = lock.NewMemoryLocker()
	if redisClient != nil {
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient)
		log.Info("using redis scheduler lock")
	}

	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		log.Error("kafka connection failed", "error", err)
		os.Exit(1)
	}
	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if producer != nil {
		defer producer.Close()
		notifier = notify.Multi{
			notify.NewKafkaNotifier(producer, cfg.Kafka.NotifyTopic, log),
			notify.NewLogNotifier(log),
		}
		log.Info("publishing schedule notifications to kafka", "topic", cfg.Kafka.NotifyTopic)
	}

	tenantService := tenantcfg.NewService(tenantStore, reg, log)

	validationService := validation.NewService(reg, table, tenantService,
		validation.NewAggregator(thresholds),
		validation.WithLogger(log),
		validation.WithMetrics(validationmetrics.New()),
		validation.WithSink(validation.NewLogSink(log)),
		validation.WithConcurrency(cfg.EvaluatorConcurrency),
		validation.WithEvaluatorTimeout(cfg.EvaluatorTimeout),
	)

	historyService := history.NewService(historyStore, tenantService, log)
	scheduleService := schedule.NewService(scheduleStore, reg, log)

	runner := schedule.NewRunner(scheduleStore, validationService, historyService,
		schedule.WithLogger(log),
		schedule.WithMetrics(schedulemetrics.New()),
		schedule.WithLocker(locker),
		schedule.WithNotifier(notifier),
		schedule.WithInterval(cfg.SchedulerTick),
	)
	runnerDone := make(chan struct{})
	if cfg.SchedulerEnabled {
		go func() {
			defer close(runnerDone)
			if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("scheduler runner stopped", "error", err)
			}
		}()
		log.Info("scheduler runner started", "tick", cfg.SchedulerTick)
	} else {
		close(runnerDone)
		log.Info("scheduler runner disabled")
	}

	tokens := jwttoken.NewService(cfg.JWTSigningKey, jwtIssuer, jwtAudience)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.RequestContext)
	router.Use(chimiddleware.Recoverer)

	validationhandler.New(validationService, historyService, log).Register(router)
	historyhandler.New(historyService, log).Register(router)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(tokens, log))
		tenantcfghandler.NewHandler(tenantService, log).Register(r)
		schedulehandler.New(scheduleService, log).Register(r)
	})

	router.Get("/healthz", healthHandler(redisClient))
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting complia server", "addr", cfg.Addr)
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
	<-runnerDone
}

// registerEvaluators binds regulation evaluators before the table is frozen.
// Deployments plug their sector evaluators in here; unbound regulations
// surface as FAIL results with explanatory evidence at validation time.
func registerEvaluators(_ *dispatch.Table) error {
	return nil
}

func healthHandler(redisClient *platformredis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
