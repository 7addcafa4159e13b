package main

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/strata-api/strata/handlers"
	"github.com/strata-api/strata/internal/config"
	"github.com/strata-api/strata/internal/database"
	"github.com/strata-api/strata/internal/hooks"
	"github.com/strata-api/strata/internal/pipeline"
	"github.com/strata-api/strata/internal/ratelimit"
	"github.com/strata-api/strata/internal/resource"
	"github.com/strata-api/strata/internal/storage"
	"github.com/strata-api/strata/pkg/logger"
	"github.com/strata-api/strata/pkg/metrics"
	"github.com/strata-api/strata/pkg/middleware"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	domain, err := resource.LoadDomain(cfg.Pipeline.DomainFile)
	if err != nil {
		logger.Fatalf("failed to load domain: %v", err)
	}
	logger.Infof("domain loaded: %d resource(s): %v", len(domain), domain.Names())

	// storage: Mongo when configured, in-memory otherwise
	var store storage.Store
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectMongo(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err != nil {
			logger.Fatalf("cannot connect to MongoDB: %v", err)
		}
		defer client.Disconnect(context.Background())
		store = storage.NewMongo(client.Database(cfg.MongoDB.Database))
		logger.Infof("connected to MongoDB database %q", cfg.MongoDB.Database)
	} else {
		store = storage.NewMemory()
		logger.Warnf("MONGODB_URI not set, using in-memory storage")
	}

	// shared counter store; rate limiting stays off without it
	var limiter *ratelimit.Limiter
	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s), rate limiting disabled: %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			limiter = ratelimit.New(client)
			logger.Infof("connected to Redis for rate limiting: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	registry := hooks.NewRegistry()

	p := pipeline.New(store, domain, pipeline.Options{
		Hooks:           registry,
		Limiter:         limiter,
		InsertLimit:     pipeline.MethodLimit(cfg.RateLimit.Insert),
		ReplaceLimit:    pipeline.MethodLimit(cfg.RateLimit.Replace),
		SingularInserts: cfg.Pipeline.SingularInserts,
	})

	if cfg.Server.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.Identity(cfg.Auth.JWTSecret))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	promReg := prometheus.NewRegistry()
	metrics.RegisterCollectors(promReg)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	handlers.RegisterResourceRoutes(r, p)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Infof("listening on %s", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
}
