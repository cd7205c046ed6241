package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"crystalfootball/internal/access"
	"crystalfootball/internal/auth"
	"crystalfootball/internal/cache"
	"crystalfootball/internal/config"
	cronrunner "crystalfootball/internal/cron"
	"crystalfootball/internal/db"
	"crystalfootball/internal/handler"
	"crystalfootball/internal/logger"
	gormrepository "crystalfootball/internal/repository/gorm"
	"crystalfootball/internal/service"
)

func main() {
	cfgPath := os.Getenv("CF_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("CF_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	cacheStore, err := buildCache(cfg.Cache)
	if err != nil {
		logger.Fatal("cache init failed", zap.Error(err))
	}

	checker := &access.Checker{Repo: store, Logger: logger}
	subscriptionSvc := &service.SubscriptionService{Repo: store, Logger: logger}
	receiptSvc := &service.ReceiptService{Repo: store, Subs: subscriptionSvc, Logger: logger}
	betslipSvc := &service.BetslipService{Repo: store, Logger: logger}
	feedSvc := &service.FeedService{Repo: store, Logger: logger, Limit: cfg.Betslips.FeedLimit}
	analyticsSvc := &service.AnalyticsService{
		Repo:   store,
		Cache:  cacheStore,
		Config: cfg.Analytics,
		Logger: logger,
		TTL:    cfg.Cache.TTL,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	jwt := auth.JWT{Secret: []byte(cfg.Auth.JWTSecret), TokenTTL: cfg.Auth.TokenTTL}
	if cfg.Auth.Disabled {
		logger.Warn("auth disabled; all requests pass unauthenticated")
	}
	engine.Use(auth.RequireAuth(jwt, cfg.Auth.Disabled))
	adminOnly := auth.RequireAdmin()
	subscriberOnly := auth.RequireSubscriber(checker)

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	packageHandler := &handler.PackageHandler{Repo: store, Admin: adminOnly}
	packageHandler.Register(engine)
	receiptHandler := &handler.ReceiptHandler{Svc: receiptSvc, Admin: adminOnly}
	receiptHandler.Register(engine)
	subscriptionHandler := &handler.SubscriptionHandler{Svc: subscriptionSvc, Checker: checker}
	subscriptionHandler.Register(engine)
	betslipHandler := &handler.BetslipHandler{
		Feed:       feedSvc,
		Svc:        betslipSvc,
		Repo:       store,
		Subscriber: subscriberOnly,
		Admin:      adminOnly,
	}
	betslipHandler.Register(engine)
	analyticsHandler := &handler.AnalyticsHandler{
		Svc:        analyticsSvc,
		Subscriber: subscriberOnly,
		Admin:      adminOnly,
	}
	analyticsHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		if _, err := cronRunner.Add(cfg.Cron.SubscriptionSweep, func(ctx context.Context) {
			if _, err := subscriptionSvc.SweepExpired(ctx); err != nil {
				logger.Warn("subscription sweep failed", zap.Error(err))
			}
		}); err != nil {
			logger.Warn("cron register subscription sweep failed", zap.Error(err))
		}
		if _, err := cronRunner.Add(cfg.Cron.AnalyticsRefresh, func(ctx context.Context) {
			if err := analyticsSvc.Refresh(ctx); err != nil {
				logger.Warn("analytics refresh failed", zap.Error(err))
			}
		}); err != nil {
			logger.Warn("cron register analytics refresh failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown failed", zap.Error(err))
	}
}

func buildCache(cfg config.CacheConfig) (cache.Store, error) {
	if strings.EqualFold(cfg.Backend, "redis") {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return cache.NewRedisStore(opt), nil
	}
	return cache.NewMemoryStore(), nil
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
