package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/gogotex/gogotex/backend/auth-widget/handlers"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/config"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/database"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/identity"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/oidc"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/session"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/tokenstore"
	"github.com/gogotex/gogotex/backend/auth-widget/internal/widget"
	"github.com/gogotex/gogotex/backend/auth-widget/pkg/logger"
	"github.com/gogotex/gogotex/backend/auth-widget/pkg/metrics"
	"github.com/gogotex/gogotex/backend/auth-widget/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL is read again from config once loaded (it may come from .env)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level)
	logger.Infof("config loaded: idp=%s store=%s oidc=%v", cfg.Identity.BaseURL, cfg.Store.Backend, cfg.Identity.Issuer != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := tokenstore.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open session store: %v", err)
	}
	defer closeStore()

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	notices := &handlers.NoticeBoard{}
	ctrl := session.New(
		identity.NewClient(cfg.Identity.BaseURL, &http.Client{Timeout: cfg.Identity.Timeout}),
		store,
		session.WithRefreshSkew(cfg.Session.RefreshSkew),
		session.WithNotifier(func(n session.Notice) {
			if n.IsError() {
				logger.Warnf("notice: %s", n.Message)
			} else {
				logger.Debugf("notice: %s", n.Message)
			}
			notices.Post(n)
		}),
	)
	if err := ctrl.Restore(ctx); err != nil {
		logger.Warnf("could not restore session: %v", err)
	}

	verifier := buildVerifier(ctx, cfg)

	var limiterRedis *redis.Client
	if cfg.RateLimit.Enabled && cfg.RateLimit.Backend == "redis" {
		limiterRedis, err = database.ConnectRedis(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Timeout)
		if err != nil {
			logger.Warnf("rate limiter falls back to memory: %v", err)
			limiterRedis = nil
		} else {
			defer limiterRedis.Close()
		}
	}

	gin.SetMode(ginMode(cfg.Server.Environment))
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.CORS(cfg.Server.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// ready when the session store answers
	r.GET("/ready", func(c *gin.Context) {
		rctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		deps := gin.H{"store": true}
		status := http.StatusOK
		if _, err := store.Get(rctx); err != nil {
			deps["store"] = false
			status = http.StatusServiceUnavailable
		}
		if limiterRedis != nil {
			ok := limiterRedis.Ping(rctx).Err() == nil
			deps["rate_limit_redis"] = ok
			if !ok {
				status = http.StatusServiceUnavailable
			}
		}
		label := "ready"
		if status != http.StatusOK {
			label = "not_ready"
		}
		c.JSON(status, gin.H{"status": label, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	var limit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if limiterRedis != nil {
			limit = middleware.RedisRateLimitMiddleware(limiterRedis, cfg.Redis.Prefix, cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.Window)
		} else {
			limit = middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}
	handlers.NewSessionHandler(ctrl, widget.NewForm(), verifier, notices).Register(r, limit)
	handlers.RegisterSwagger(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting auth widget host on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

// buildVerifier prefers signature verification against the configured issuer
// and falls back to decoding the payload.
func buildVerifier(ctx context.Context, cfg *config.Config) middleware.Verifier {
	if cfg.Identity.Issuer != "" && !cfg.Identity.Insecure {
		ver, err := oidc.NewVerifier(ctx, cfg.Identity.Issuer, cfg.Identity.ClientID)
		if err == nil {
			return ver
		}
		logger.Warnf("failed to initialize OIDC verifier: %v", err)
	}
	logger.Warn("using insecure token decoding for /session/me")
	return oidc.NewInsecureVerifier()
}

func ginMode(env string) string {
	switch env {
	case "production":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	}
	return gin.DebugMode
}
