package main

import (
	"context"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/hsinyuliao/salonbook/internal/auth"
	"github.com/hsinyuliao/salonbook/internal/config"
	"github.com/hsinyuliao/salonbook/internal/db"
	"github.com/hsinyuliao/salonbook/internal/handlers"
	"github.com/hsinyuliao/salonbook/internal/httpx"
	"github.com/hsinyuliao/salonbook/internal/kafkax"
	"github.com/hsinyuliao/salonbook/internal/otelx"
	"github.com/hsinyuliao/salonbook/internal/outbox"
	"github.com/hsinyuliao/salonbook/internal/runtime"
	"github.com/hsinyuliao/salonbook/internal/storage"
	"github.com/hsinyuliao/salonbook/internal/token"
)

func main() {
	_ = godotenv.Load()

	service := config.String("SERVICE_NAME", "salonbook")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	secret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}
	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	if err := pool.Migrate(ctx, config.String("MIGRATION_FILE", "db/migrations/001_init.sql")); err != nil {
		logger.Warn("migration skipped", "err", err)
	} else {
		logger.Info("migration applied")
	}

	codec := token.NewCodec(secret)
	members := storage.NewMemberRepository(pool)
	appts := storage.NewAppointmentRepository(pool)
	schedules := storage.NewScheduleRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go publisher.Run(ctx)

	authHandler := handlers.NewAuthHandler(codec, pool, members, outboxRepo, logger)
	memberHandler := handlers.NewMemberHandler(members, logger)
	apptHandler := handlers.NewAppointmentHandler(appts, outboxRepo, logger)
	scheduleHandler := handlers.NewScheduleHandler(schedules, logger)

	requireAuth := auth.RequireAuth(codec, logger)

	// Login and registration are the brute-force surface; they get their
	// own limiter, distributed when Redis is configured.
	var limit httpx.Middleware
	rlLimit := config.Int("AUTH_RATE_LIMIT", 10)
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		limit = httpx.NewRedisRateLimiter(rdb, rlLimit, time.Minute, "salonbook:auth").Middleware(logger)
	} else {
		limit = httpx.NewRateLimiter(rlLimit, time.Minute).Middleware()
	}

	readyChecks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}
	if kafkaBrokers != "" {
		readyChecks = append(readyChecks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
	}
	mux := runtime.NewBaseMuxWithReady(readyChecks...)

	mux.Handle("/login", limit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("/register", limit(http.HandlerFunc(authHandler.Register)))
	mux.HandleFunc("/logout", authHandler.Logout)
	mux.Handle("/session", requireAuth(http.HandlerFunc(authHandler.Session)))
	mux.Handle("/appointment", requireAuth(apptHandler))
	mux.Handle("/members", requireAuth(http.HandlerFunc(memberHandler.List)))
	mux.Handle("PATCH /members/{id}", requireAuth(http.HandlerFunc(memberHandler.Patch)))
	mux.Handle("/scheduleConfig", requireAuth(http.HandlerFunc(scheduleHandler.Get)))
	mux.Handle("PATCH /scheduleConfig/{id}", requireAuth(http.HandlerFunc(scheduleHandler.Patch)))

	requestTimeout := time.Duration(config.Int("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(config.Strings("CORS_ORIGINS")),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(requestTimeout),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, service)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
