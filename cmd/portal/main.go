package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skynest/internal/api"
	"skynest/internal/auth"
	"skynest/internal/backend"
	"skynest/internal/config"
	"skynest/internal/database"
	"skynest/internal/domain"
	"skynest/internal/events"
	"skynest/internal/google"
	"skynest/internal/logging"
	"skynest/internal/metrics"
	"skynest/internal/models"
	"skynest/internal/notify"
	"skynest/internal/repository"
	"skynest/internal/service"
	"skynest/internal/wizard"
	"skynest/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.Database.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	if err := os.MkdirAll(cfg.Exports.Path, 0o755); err != nil {
		return fmt.Errorf("create exports dir: %w", err)
	}

	redisClient := initRedis(ctx, cfg, &logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}
	stateRepo := initStateRepository(cfg, redisClient, &logger)

	backendClient := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout,
		backend.WithLogger(logging.Component(&logger, "backend")),
	)
	if redisClient != nil {
		backendClient.UseRedisCache(redisClient, cfg.Backend.CacheTTL)
	}

	var syncWorker domain.SyncWorker
	if sheetsService := initGoogleSheets(ctx, cfg, &logger); sheetsService != nil {
		sheetsService.StartCacheRefresh(ctx, 30*time.Minute)
		w := worker.NewSheetsWorker(db, sheetsService, redisClient, worker.DefaultRetryPolicy(), logging.Component(&logger, "sheets-worker"))
		go w.Start(ctx)
		syncWorker = w
	}

	eventBus := events.NewEventBus()
	waitNotifications := events.RegisterAll(ctx, eventBus, events.Sinks{
		Activity: db,
		Notifier: notify.New(cfg.Telegram, logging.Component(&logger, "notify")),
		Sync:     syncWorker,
	}, &logger)
	defer waitNotifications()

	backup := database.NewBackupService(cfg.Database.Path, cfg.Backup, &logger)
	go backup.Start(ctx)
	go purgeActivity(ctx, db, cfg.Database.ActivityRetention, &logger)

	sessions := auth.NewSessionManager(cfg.Portal.Session)
	services := service.New(service.Deps{
		Backend:   backendClient,
		Events:    eventBus,
		Activity:  db,
		Sync:      syncWorker,
		Sessions:  sessions,
		ExportDir: cfg.Exports.Path,
		Logger:    &logger,
	})
	bookingWizard := wizard.New(stateRepo, backendClient, eventBus, cfg.Portal.Wizard.MaxNights, logging.Component(&logger, "wizard"))

	httpServer := api.NewHTTPServer(cfg.Portal, api.HTTPDeps{
		Services: services,
		Wizard:   bookingWizard,
		Sessions: sessions,
		Limits:   stateRepo,
		Logger:   &logger,
	})

	var grpcServer *api.GRPCServer
	if cfg.Portal.GRPC.Enabled {
		grpcServer, err = api.NewGRPCServer(cfg.Portal, opsDashboards(cfg, services, &logger), &logger)
		if err != nil {
			logger.Error().Err(err).Msg("create grpc server")
			return err
		}
	}

	startMetrics(ctx, cfg, &logger)

	return startServers(ctx, grpcServer, httpServer, cfg, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "portal-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, wizard state and limits fall back to memory")
	} else {
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	}
	return redisClient
}

func initStateRepository(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.StateRepository {
	memory := repository.NewMemoryStateRepository(cfg.Portal.Wizard.TTL)
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisStateRepository(redisClient, cfg.Portal.Wizard.TTL)
	return repository.NewFailoverStateRepository(primary, memory, logger)
}

func initGoogleSheets(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.SheetsService {
	if !cfg.Google.Enabled() {
		return nil
	}

	sheetsService, err := google.NewSheetsService(ctx, cfg.Google, logging.Component(logger, "sheets"))
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without sheets")
		return nil
	}
	if err := sheetsService.TestConnection(ctx); err != nil {
		email, _ := google.ServiceAccountEmail(cfg.Google.GoogleCredentialsFile)
		logger.Warn().Err(err).Str("share_with", email).Msg("google sheets connection test failed, continuing without sheets")
		return nil
	}

	logger.Info().Msg("google sheets connected")
	return sheetsService
}

// opsDashboards builds dashboards for the gRPC API with the service token,
// since those calls carry no user session.
func opsDashboards(cfg *config.Config, services *service.Services, logger *zerolog.Logger) api.DashboardProvider {
	if cfg.Backend.ServiceToken == "" {
		logger.Warn().Msg("backend service_token is empty, gRPC dashboards will call the backend anonymously")
	}
	return tokenDashboards{token: cfg.Backend.ServiceToken, dashboards: services.Dashboard}
}

type tokenDashboards struct {
	token      string
	dashboards *service.DashboardService
}

func (d tokenDashboards) For(ctx context.Context, user models.User) (*service.Dashboard, error) {
	return d.dashboards.For(backend.ContextWithToken(ctx, d.token), user)
}

func purgeActivity(ctx context.Context, db *database.DB, retention time.Duration, logger *zerolog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		n, err := db.PurgeActivity(ctx, time.Now().Add(-retention))
		if err != nil {
			logger.Error().Err(err).Msg("purge activity log")
		} else if n > 0 {
			logger.Info().Int64("deleted", n).Msg("activity log purged")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	if grpcServer != nil {
		go func() {
			if err := grpcServer.Serve(); err != nil {
				logger.Error().Err(err).Msg("grpc server stopped")
			}
		}()
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Int("http_port", cfg.Portal.HTTP.Port).Bool("grpc", grpcServer != nil).Msg("portal started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if grpcServer != nil {
		grpcServer.Shutdown(shutdownCtx)
	}
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("portal stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
