// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/redaid/internal/app/coordinator"
	blogsfeature "github.com/dalemusser/redaid/internal/app/features/blogs"
	requestsfeature "github.com/dalemusser/redaid/internal/app/features/donationrequests"
	auditfeature "github.com/dalemusser/redaid/internal/app/features/auditlog"
	errorsfeature "github.com/dalemusser/redaid/internal/app/features/errors"
	fundsfeature "github.com/dalemusser/redaid/internal/app/features/funds"
	healthfeature "github.com/dalemusser/redaid/internal/app/features/health"
	homefeature "github.com/dalemusser/redaid/internal/app/features/home"
	paymentsfeature "github.com/dalemusser/redaid/internal/app/features/payments"
	statsfeature "github.com/dalemusser/redaid/internal/app/features/stats"
	usersfeature "github.com/dalemusser/redaid/internal/app/features/users"
	"github.com/dalemusser/redaid/internal/app/store/audit"
	blogstore "github.com/dalemusser/redaid/internal/app/store/blogs"
	requeststore "github.com/dalemusser/redaid/internal/app/store/donationrequests"
	fundstore "github.com/dalemusser/redaid/internal/app/store/funds"
	userstore "github.com/dalemusser/redaid/internal/app/store/users"
	"github.com/dalemusser/redaid/internal/app/system/auditlog"
	"github.com/dalemusser/redaid/internal/app/system/auth"
	"github.com/dalemusser/redaid/internal/app/system/identity"
	"github.com/dalemusser/redaid/internal/app/system/idempotency"
	"github.com/dalemusser/redaid/internal/app/system/metrics"
	"github.com/dalemusser/redaid/internal/app/system/ratelimit"
	"github.com/dalemusser/redaid/internal/app/system/tasks"
	"github.com/dalemusser/redaid/internal/app/system/timeouts"
	"github.com/dalemusser/redaid/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// jobs is the background scheduler started by BuildHandler and stopped by
// Shutdown.
var jobs *tasks.Scheduler

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// RedAid builds the identity gate, the donation coordinator and the
// Prometheus registry, starts the background jobs, and mounts the JSON API.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	// Metrics live on a private registry so tests and multiple builds never
	// collide on the global one.
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	verifier, err := identity.NewFirebaseVerifier(context.Background(), appCfg.FirebaseCredentialsB64, appCfg.FirebaseProjectID, logger)
	if err != nil {
		logger.Error("firebase init failed", zap.Error(err))
		return nil, err
	}

	users := userstore.New(db)
	requests := requeststore.New(db)
	blogs := blogstore.New(db)
	funds := fundstore.New(db)
	events := audit.New(db)

	gate := auth.NewGate(verifier, users, m, logger)
	errLog := errorsfeature.NewErrorLogger(logger)
	auditLog := auditlog.New(events, logger, auditlog.Config{
		Admin:    appCfg.AuditAdmin,
		Donation: appCfg.AuditDonation,
	})

	sched := tasks.NewScheduler(logger, timeouts.Long())
	sched.Add(tasks.AuditPurgeJob(events, appCfg.AuditRetention, logger))

	opts := []coordinator.Option{coordinator.WithMetrics(m)}
	switch appCfg.IdempotencyBackend {
	case IdemMongo:
		store := idempotency.NewMongoStore(db)
		opts = append(opts, coordinator.WithIdempotency(store))
		sched.Add(tasks.IdempotencyPurgeJob(store, appCfg.IdempotencyTTL, logger))
	case IdemRedis:
		opts = append(opts, coordinator.WithIdempotency(idempotency.NewRedisStore(deps.Redis, appCfg.IdempotencyTTL)))
	}
	coord := coordinator.New(requests, users, txn.NewMongo(deps.MongoClient, logger), logger, opts...)

	limiter := ratelimit.New(appCfg.PublicRateLimit, appCfg.PublicRateWindow)
	sched.Add(tasks.RateLimitSweepJob(limiter, appCfg.PublicRateWindow*2))

	// Payments stay mounted without a key; the handler answers 500 so the
	// client sees the same failure it would on a Stripe outage.
	var gateway paymentsfeature.Gateway
	if appCfg.StripeSecretKey != "" {
		gateway = paymentsfeature.NewStripeGateway(appCfg.StripeSecretKey)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Redis, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	// Users and public donor search
	usersHandler := usersfeature.NewHandler(users, errLog, auditLog, logger)
	r.Mount("/users", usersfeature.Routes(usersHandler, gate, limiter.Middleware))
	usersfeature.MountDonorRoutes(r, usersHandler)

	// Donation request lifecycle
	requestsHandler := requestsfeature.NewHandler(coord, errLog, auditLog, logger)
	r.Mount("/donation-requests", requestsfeature.Routes(requestsHandler, gate))
	r.Mount("/donation", requestsfeature.StatusRoutes(requestsHandler, gate))

	blogsHandler := blogsfeature.NewHandler(blogs, errLog, auditLog, logger)
	r.Mount("/blogs", blogsfeature.Routes(blogsHandler, gate))

	fundsHandler := fundsfeature.NewHandler(funds, errLog, logger)
	r.Mount("/funds", fundsfeature.Routes(fundsHandler, gate))

	statsHandler := statsfeature.NewHandler(users, requests, funds, errLog, logger)
	r.Mount("/stats", statsfeature.Routes(statsHandler, gate))

	auditHandler := auditfeature.NewHandler(events, errLog, logger)
	r.Mount("/audit", auditfeature.Routes(auditHandler, gate))

	paymentsHandler := paymentsfeature.NewHandler(gateway, logger)
	paymentsfeature.MountRoutes(r, paymentsHandler, limiter.Middleware)

	sched.Start(context.Background())
	jobs = sched

	logger.Info("routes mounted",
		zap.String("env", coreCfg.Env),
		zap.String("idempotency", appCfg.IdempotencyBackend),
		zap.Bool("payments", gateway != nil))

	return r, nil
}
