package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/jobboard/docs"
	"github.com/tazhibayda/jobboard/internal/config"
	api "github.com/tazhibayda/jobboard/internal/http"
	"github.com/tazhibayda/jobboard/internal/identity"
	"github.com/tazhibayda/jobboard/internal/log"
	"github.com/tazhibayda/jobboard/internal/metrics"
	"github.com/tazhibayda/jobboard/internal/queue"
	"github.com/tazhibayda/jobboard/internal/ratelimit"
	"github.com/tazhibayda/jobboard/internal/repo"
	"github.com/tazhibayda/jobboard/internal/search"
	"github.com/tazhibayda/jobboard/internal/security"
	"github.com/tazhibayda/jobboard/internal/service"
	"github.com/tazhibayda/jobboard/internal/storage"
)

const serviceName = "jobboard"

// @title Job Board API
// @version 1.0
// @description Job listings, applications and company accounts.
// @schemes http https
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	logger, err := log.Init(cfg.LogProduction)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.DDEnabled {
		tracer.Start(tracer.WithService(serviceName))
		defer tracer.Stop()
	}
	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := store.EnsureIndexes(ctx); err != nil {
		logger.Fatal("mongo indexes", zap.Error(err))
	}

	sessions, err := security.NewSessionTokens(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		logger.Fatal("session tokens", zap.Error(err))
	}
	if cfg.IdentityJWKSURL == "" {
		logger.Fatal("IDENTITY_JWKS_URL is required")
	}
	jwks := security.NewFetcher(cfg.IdentityJWKSURL, cfg.IdentityIssuer,
		time.Duration(cfg.JWKSCacheSeconds)*time.Second)

	var limiter ratelimit.Limiter = ratelimit.NewMemory(cfg.RateLimitPerMin, time.Minute)
	if cfg.RedisAddr != "" {
		rdb := repo.NewRedis(cfg.RedisAddr)
		if err := rdb.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, limiting in memory", zap.Error(err))
		} else {
			defer rdb.Close()
			limiter = ratelimit.NewRedis(rdb.C, "rl", cfg.RateLimitPerMin, time.Minute)
		}
	}

	pub := queue.NewNoop()
	if cfg.RabbitURL != "" {
		if pub, err = queue.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange); err != nil {
			logger.Fatal("rabbit publisher", zap.Error(err))
		}
	}
	defer pub.Close()

	var objects service.ObjectStore = storage.Disabled{}
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCS(ctx, cfg.GCSBucket)
		if err != nil {
			logger.Fatal("gcs client", zap.Error(err))
		}
		defer gcs.Close()
		objects = gcs
	} else {
		logger.Warn("GCS_BUCKET not set, uploads are disabled")
	}

	var index service.JobIndex
	if cfg.MeiliHost != "" {
		m, err := search.NewMeili(cfg.MeiliHost, cfg.MeiliAPIKey)
		if err != nil {
			logger.Warn("meilisearch unavailable, searching mongo", zap.Error(err))
		} else {
			index = m
		}
	}

	var profiles service.ProfileSource
	if cfg.IdentitySecretKey != "" {
		profiles = identity.NewClient(cfg.IdentityAPIURL, cfg.IdentitySecretKey)
	}

	events := &service.Events{Pub: pub, Exchange: cfg.RabbitExchange, Log: logger}
	h := &api.Handler{
		Identity: service.NewIdentityResolver(store, profiles),
		Apps:     service.NewApplicationService(store, store, store, events, logger),
		Resumes:  service.NewResumeService(store, objects, cfg.MaxResumeBytes, logger),
		Companies: service.NewCompanyService(service.CompanyDeps{
			Companies: store, Jobs: store, Apps: store, Users: store,
			Tokens: sessions, Objects: objects, Index: index, Events: events, Log: logger,
		}),
		Jobs: service.NewJobCatalog(store, index, logger),
		DB:   store,
		Log:  logger,
	}

	docs.SwaggerInfo.BasePath = "/"
	r := api.NewRouter(h, api.RouterDeps{
		Identity:       jwks,
		Sessions:       sessions,
		Limiter:        limiter,
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		ServiceName:    serviceName,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.ListenAndServe() }()
	logger.Info("jobboard listening", zap.String("port", cfg.Port))

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 15*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
