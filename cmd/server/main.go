package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mtngoatgit/mobile-voice-dev-assistant/common/id"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/common/logger"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/common/otel"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/core/config"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/core/db"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/http/middleware"
	httprouter "github.com/mtngoatgit/mobile-voice-dev-assistant/internal/http/router"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/provider"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/queue"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/service/issue_tracker"
	"github.com/mtngoatgit/mobile-voice-dev-assistant/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(config.ServiceTypeServer)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel, cfg.Env)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "voiceplan server starting", "env", cfg.Env, "tracker", cfg.Tracker.Provider)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	tracker, err := issue_tracker.New(cfg.Tracker)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create issue tracker client", "error", err)
		os.Exit(1)
	}
	if !tracker.IsConfigured() {
		slog.WarnContext(ctx, "issue tracker token missing, plan creation will be rejected", "tracker", tracker.Name())
	}

	var (
		recorders service.MultiRecorder
		history   store.SessionStore
	)

	if cfg.DB.Enabled() {
		database, err := db.New(ctx, cfg.DB)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer database.Close()
		slog.InfoContext(ctx, "database connected")

		history = store.NewSessionStore(database)
		recorders = append(recorders, history)
	} else {
		slog.InfoContext(ctx, "session history disabled (no DATABASE_URL)")
	}

	if cfg.Outcomes.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Outcomes.RedisURL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}

		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "redis connected", "stream", cfg.Outcomes.Stream)

		publisher := queue.NewRedisOutcomePublisher(redisClient, cfg.Outcomes.Stream, slog.Default())
		defer publisher.Close()
		recorders = append(recorders, publisher)
	}

	var recorder service.OutcomeRecorder
	if len(recorders) > 0 {
		recorder = recorders
	}

	services := service.NewServices(service.ServicesConfig{
		Registry: provider.NewRegistry(config.LoadProviders, nil),
		Tracker:  tracker,
		Recorder: recorder,
		History:  history,
		Defaults: cfg.Defaults,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Generation can take up to PLAN_TIMEOUT, plus issue creation.
		WriteTimeout: cfg.Defaults.PlanTimeout + 60*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, httprouter.RouterConfig{
		PlanTimeout: cfg.Defaults.PlanTimeout,
	})

	return router
}

const banner = `
 _   _  ___ (_) ___ ___ _ __ | | __ _ _ __
| | | |/ _ \| |/ __/ _ \ '_ \| |/ _' | '_ \
 \ V /| (_) | | (_|  __/ |_) | | (_| | | | |
  \_/  \___/|_|\___\___| .__/|_|\__,_|_| |_|
                       |_|
`
