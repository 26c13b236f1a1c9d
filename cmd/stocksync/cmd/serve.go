package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mhollis/stocksync/api/openapi"
	"github.com/mhollis/stocksync/internal/alert"
	"github.com/mhollis/stocksync/internal/api/handlers"
	apimw "github.com/mhollis/stocksync/internal/api/middleware"
	"github.com/mhollis/stocksync/internal/config"
	"github.com/mhollis/stocksync/internal/engine"
	"github.com/mhollis/stocksync/internal/history"
	"github.com/mhollis/stocksync/internal/notify"
	"github.com/mhollis/stocksync/internal/provider"
	"github.com/mhollis/stocksync/internal/relation"
	"github.com/mhollis/stocksync/internal/upload"
	"github.com/mhollis/stocksync/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and scheduler",
	RunE:  runServe,
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	initCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	store, err := newStore(initCtx, cfg)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	defer closeStore(store, log)

	limiter := provider.NewRateLimiter(
		cfg.Provider.RateLimit.PerSecond,
		cfg.Provider.RateLimit.Burst,
		cfg.Provider.RateLimit.DailyLimit,
	)
	soap := provider.NewSOAPClient(
		cfg.Provider.Endpoint,
		provider.Credentials{AccountID: cfg.Provider.AccountID, APIKey: cfg.Provider.APIKey},
		provider.WithRateLimiter(limiter),
		provider.WithHTTPClient(&http.Client{Timeout: cfg.Provider.CallTimeout}),
	)
	fetcher := provider.NewFetcher(soap,
		provider.WithPageSize(cfg.Provider.PageSize),
		provider.WithFetcherLogger(log),
	)

	resolver := relation.NewResolver()
	histSvc := history.NewService(store, history.WithServiceLogger(log))

	evaluator := alert.NewEvaluator(alert.Thresholds{
		Critical:       cfg.Alerts.CriticalThreshold,
		Warning:        cfg.Alerts.WarningThreshold,
		ScaleWithStock: cfg.Alerts.ScaleWithStock,
		Overrides:      cfg.Alerts.Overrides,
	})

	registry := notify.NewRegistry()
	registry.Register(notify.NewEmailProvider(cfg.Notifications.Email), cfg.Notifications.Email.Enabled)
	registry.Register(notify.NewSlackProvider(cfg.Notifications.Slack), cfg.Notifications.Slack.Enabled)
	registry.Register(notify.NewSMSProvider(cfg.Notifications.SMS), cfg.Notifications.SMS.Enabled)
	registry.Register(notify.NewWebhookProvider(cfg.Notifications.Webhook), cfg.Notifications.Webhook.Enabled)
	dispatcher := alert.NewDispatcher(registry, alert.WithDispatcherLogger(log))

	eng := engine.NewEngine(fetcher, resolver, histSvc, store, evaluator, dispatcher,
		engine.WithLogger(log),
		engine.WithDedupPolicy(cfg.Provider.DedupPolicy),
		engine.WithRetentionDays(cfg.Schedule.RetentionDays),
	)

	pipeline := upload.NewPipeline(soap,
		upload.WithBatchSize(cfg.Upload.BatchSize),
		upload.WithBatchPause(cfg.Upload.BatchPause),
		upload.WithResultSink(store),
		upload.WithPipelineLogger(log),
	)

	sched, err := engine.NewScheduler(eng, engine.Cadences{
		SyncInterval:    cfg.Schedule.SyncInterval,
		DailySnapshot:   cfg.Schedule.DailySnapshot,
		WeeklySnapshot:  cfg.Schedule.WeeklySnapshot,
		MonthlySnapshot: cfg.Schedule.MonthlySnapshot,
	}, log)
	if err != nil {
		return fmt.Errorf("building scheduler: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(apimw.RequestLog(log))
	e.Use(apimw.Recovery(log))
	e.Use(apimw.Metrics())

	api := humaecho.New(e, huma.DefaultConfig("Stocksync API", "1.0.0"))

	handlers.RegisterSyncRoutes(api, handlers.NewSyncHandler(eng))
	handlers.RegisterHistoryRoutes(api, handlers.NewHistoryHandler(histSvc))
	handlers.RegisterSnapshotRoutes(api, handlers.NewSnapshotsHandler(store, histSvc, eng))
	handlers.RegisterUploadRoutes(api, handlers.NewUploadsHandler(pipeline, store))
	handlers.RegisterAlertRoutes(api, handlers.NewAlertsHandler(store, dispatcher))

	hh := handlers.NewHealthHandler(store)
	e.GET("/healthz", hh.Healthz)
	e.GET("/readyz", hh.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	openapi.RegisterRoutes(e)

	sched.Start()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr, "backend", cfg.Store.Backend)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	stopCtx := sched.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		log.Warn("scheduler jobs still running at shutdown")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func newStore(ctx context.Context, cfg *config.Config) (history.Store, error) {
	caps := history.Caps{
		MaxHistory:   cfg.Store.MaxHistory,
		MaxSnapshots: cfg.Store.MaxSnapshots,
		MaxUploads:   cfg.Store.MaxUploads,
		MaxAlerts:    cfg.Store.MaxAlertBuffer,
	}

	switch cfg.Store.Backend {
	case "postgres":
		st, err := history.NewPostgresStore(ctx, cfg.Database.DSN(), caps)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		return st, nil
	case "redis":
		return history.NewRedisStore(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, caps)
	default:
		return history.NewMemoryStore(caps), nil
	}
}

func closeStore(store history.Store, log *slog.Logger) {
	switch st := store.(type) {
	case *history.PostgresStore:
		st.Close()
	case *history.RedisStore:
		if err := st.Close(); err != nil {
			log.Warn("closing redis store", "err", err)
		}
	}
}
