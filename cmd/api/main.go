// @title          AnTruaNao API
// @version        2.0
// @description    Lunch orders, per-member week totals and VNPay reconciliation.
// @BasePath       /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
	limiter "github.com/ulule/limiter/v3"
	limiterredis "github.com/ulule/limiter/v3/drivers/store/redis"

	_ "github.com/NALLOO/AnTruaNao-V2/docs"
	"github.com/NALLOO/AnTruaNao-V2/internal/admin"
	"github.com/NALLOO/AnTruaNao-V2/internal/config"
	"github.com/NALLOO/AnTruaNao-V2/internal/database"
	"github.com/NALLOO/AnTruaNao-V2/internal/ledger"
	"github.com/NALLOO/AnTruaNao-V2/internal/notification"
	"github.com/NALLOO/AnTruaNao-V2/internal/obs"
	"github.com/NALLOO/AnTruaNao-V2/internal/order"
	"github.com/NALLOO/AnTruaNao-V2/internal/payment"
	"github.com/NALLOO/AnTruaNao-V2/internal/reconcile"
	"github.com/NALLOO/AnTruaNao-V2/internal/user"
	"github.com/NALLOO/AnTruaNao-V2/internal/vnpay"
	"github.com/NALLOO/AnTruaNao-V2/internal/week"
	mw "github.com/NALLOO/AnTruaNao-V2/pkg/middleware"
	"github.com/NALLOO/AnTruaNao-V2/pkg/response"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := obs.NewLogger("json", "info")
		bootLogger.Fatal().Err(err).Msg("load config")
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := obs.SetupTracing(cfg.TracingStdout)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise tracing")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error().Err(err).Msg("shutdown tracer")
		}
	}()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("run migrations")
	}
	logger.Info().Msg("database ready")

	var (
		ledgerCache  ledger.Cache
		limiterStore limiter.Store
	)
	if redisClient := connectRedis(ctx, cfg.RedisURL, logger); redisClient != nil {
		defer redisClient.Close()
		ledgerCache = ledger.NewRedisCache(redisClient, cfg.LedgerCacheTTL)
		limiterStore, err = limiterredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "antruanao:login"})
		if err != nil {
			logger.Fatal().Err(err).Msg("create limiter store")
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.NewMetrics(cfg.MetricsNamespace, registry)

	// Admin sessions
	sessions := admin.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL)
	requireAdmin := mw.RequireAdmin(sessions)
	optionalAdmin := mw.OptionalAdmin(sessions)

	// User feature
	userService := user.NewService(user.NewRepository(db))
	userHandler := user.NewHandler(userService, logger)

	// Week feature
	weekRepo := week.NewRepository(db, cfg.Location)
	weekService := week.NewService(weekRepo, cfg.Location)

	// Order feature
	orderService := order.NewService(db, order.NewRepository(db), weekRepo)
	orderHandler := order.NewHandler(orderService, logger)

	// Payment feature
	paymentService := payment.NewService(payment.NewRepository(db))
	paymentHandler := payment.NewHandler(paymentService, logger)

	// Ledger
	ledgerService := ledger.NewService(weekService, orderService, paymentService, ledgerCache, logger)
	weekHandler := week.NewHandler(weekService, ledgerService, logger)

	// Payment gateway
	gatewayConfig := vnpay.Config{
		TmnCode:    cfg.VNPay.TmnCode,
		HashSecret: cfg.VNPay.HashSecret,
		PayURL:     cfg.VNPay.PayURL,
		ReturnURL:  cfg.VNPay.ReturnURL,
		Locale:     cfg.VNPay.Locale,
		Location:   cfg.Location,
	}
	if err := gatewayConfig.Validate(); err != nil {
		logger.Warn().Err(err).Msg("payment gateway not configured, payment links are disabled")
	}
	gateway := vnpay.NewClient(gatewayConfig)

	notificationService := notification.NewService(notification.NewRepository(db))
	notificationHandler := notification.NewHandler(notificationService, logger)

	checkout := reconcile.NewCheckout(userService, weekService, ledgerService, paymentService, gateway, cfg.Location, metrics, logger)
	matcher := reconcile.NewMatcher(userService, weekService, ledgerService, paymentService, cfg.Location, logger).
		WithRecorder(notificationService).
		WithMetrics(metrics)
	if cfg.VNPay.VerifySignature {
		matcher.WithVerifier(gateway)
	} else {
		logger.Warn().Msg("gateway signature verification is disabled")
	}
	reconcileHandler := reconcile.NewHandler(matcher, checkout, logger)
	ledgerHandler := ledger.NewHandler(ledgerService, checkout, logger)

	// Admin feature
	adminService := admin.NewService(admin.NewRepository(db), sessions)
	dispatcher := admin.NewDispatcher(weekService, userService, orderService, paymentService)
	adminHandler := admin.NewHandler(adminService, sessions, dispatcher, admin.CookieOptions{Secure: cfg.CookieSecure}, logger)
	loginLimit, err := admin.NewLoginLimiter(cfg.LoginRateLimit, limiterStore)
	if err != nil {
		logger.Fatal().Err(err).Msg("create login limiter")
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "UNAVAILABLE", "database unreachable")
			return
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", adminHandler.AuthRoutes(requireAdmin, loginLimit))
		r.Mount("/users", userHandler.Routes(requireAdmin))
		r.With(optionalAdmin).Get("/dashboard", ledgerHandler.Dashboard)
		r.Get("/pay", reconcileHandler.Pay)
		r.Mount("/vnpay", reconcileHandler.Routes())
		r.Mount("/admin", adminHandler.CommandRoutes(requireAdmin))

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Mount("/weeks", weekHandler.Routes())
			r.Mount("/orders", orderHandler.Routes())
			r.Mount("/payments", paymentHandler.Routes())
			r.Mount("/ledger", ledgerHandler.Routes())
			r.Mount("/notifications", notificationHandler.Routes())
		})
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// connectRedis returns nil when no URL is configured or the server is
// unreachable; the ledger then recomputes on every read.
func connectRedis(ctx context.Context, url string, logger zerolog.Logger) *redis.Client {
	if url == "" {
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid REDIS_URL, ledger cache disabled")
		return nil
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable, ledger cache disabled")
		_ = client.Close()
		return nil
	}
	return client
}
