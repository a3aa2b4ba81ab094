package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bhargav676/intern/adapters"
	"github.com/bhargav676/intern/adapters/influx"
	"github.com/bhargav676/intern/adapters/kafka"
	"github.com/bhargav676/intern/adapters/llm"
	"github.com/bhargav676/intern/adapters/mongo"
	"github.com/bhargav676/intern/adapters/notify"
	"github.com/bhargav676/intern/adapters/redis"
	"github.com/bhargav676/intern/domain/repositories"
	"github.com/bhargav676/intern/internal/api"
	"github.com/bhargav676/intern/internal/auth"
	"github.com/bhargav676/intern/internal/config"
	"github.com/bhargav676/intern/internal/websocket"
	"github.com/bhargav676/intern/usecase"
)

type storage struct {
	users    repositories.UserRepository
	devices  repositories.DeviceRepository
	readings repositories.ReadingRepository
	pinger   repositories.Pinger
	close    func(ctx context.Context)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.LogLevel == "debug" {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStorage(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}

	// Push channel and event fan-out
	hub := websocket.NewHub(cfg.Server.CORSOrigins, logger)
	go hub.Run(ctx)

	alerts := adapters.NewAlertLog()
	local := usecase.NewFanOut(logger).Add("websocket", hub).Add("alerts", alerts)
	events := usecase.NewFanOut(logger).Add("websocket", hub).Add("alerts", alerts)
	health := usecase.NewHealthMonitor(store.pinger, cfg.Server.HealthInterval, logger)
	var closers []func()

	if cfg.Redis.Addr != "" {
		bridge := redis.NewBridge(redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB), cfg.Redis.Channel, local, logger)
		go func() {
			if err := bridge.Run(ctx); err != nil {
				logger.Error("Redis bridge stopped", zap.Error(err))
			}
		}()
		events.AddAsync("redis", bridge)
		health.Watch("redis", bridge)
		closers = append(closers, func() { _ = bridge.Close() })
	}
	if len(cfg.Kafka.Brokers) > 0 {
		outbox := kafka.NewOutbox(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		events.AddAsync("kafka", outbox)
		closers = append(closers, func() { _ = outbox.Close() })
	}
	if cfg.InfluxDB.URL != "" {
		mirror := influx.NewMirror(cfg.InfluxDB.URL, cfg.InfluxDB.Token, cfg.InfluxDB.Org, cfg.InfluxDB.Bucket, logger)
		events.AddAsync("influxdb", mirror)
		health.Watch("influxdb", mirror)
		closers = append(closers, mirror.Close)
	}

	// Out-of-band notification
	notifier := notify.Multi{notify.NewEmailNotifier(cfg.SMTP, logger)}
	if cfg.Webhook.URL != "" {
		notifier = append(notifier, notify.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout, logger))
	}

	var advisor repositories.Advisor = llm.NewStaticAdvisor()
	if cfg.Gemini.APIKey != "" {
		gemini, err := llm.NewGeminiAdvisor(ctx, cfg.Gemini, logger)
		if err != nil {
			logger.Warn("Gemini advisor unavailable, using static guidance", zap.Error(err))
		} else {
			advisor = llm.Fallback{Primary: gemini, Secondary: advisor, Logger: logger}
		}
	}

	// Initialize usecase services
	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	userService := usecase.NewUserService(store.users, store.readings, tokens, notifier, logger)
	ingestService := usecase.NewIngestService(
		auth.Chain{auth.NewAccessIDResolver(store.users)},
		store.devices, store.readings, notifier, advisor, events, logger)

	if err := userService.BootstrapAdmin(ctx, cfg.Admin); err != nil {
		logger.Fatal("Failed to seed admin account", zap.Error(err))
	}

	health.Start()

	e := api.NewServer(cfg.Server, logger)
	api.InitRoutes(e, api.Services{
		Sessions: auth.NewSessionResolver(tokens),
		Ingest:   ingestService,
		Users:    userService,
		Readings: usecase.NewReadingService(store.readings, store.users, logger),
		Devices:  usecase.NewDeviceService(store.devices, store.readings, logger),
		Health:   health,
		Alerts:   alerts,
		Hub:      hub,
	}, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Water quality server started",
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Backend))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	health.Stop()
	ingestService.Wait()
	userService.Wait()
	events.Close()
	cancel()
	for _, c := range closers {
		c()
	}
	store.close(shutdownCtx)

	logger.Info("Server exited")
}

func openStorage(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*storage, error) {
	if cfg.Backend == "memory" {
		logger.Warn("Using in-memory storage, data is lost on restart")
		readings := adapters.NewMemoryReadingRepository()
		return &storage{
			users:    adapters.NewMemoryUserRepository(),
			devices:  adapters.NewMemoryDeviceRepository(),
			readings: readings,
			pinger:   readings,
			close:    func(context.Context) {},
		}, nil
	}

	client, err := mongo.NewClient(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &storage{
		users:    mongo.NewUserRepository(client.Database, logger),
		devices:  mongo.NewDeviceRepository(client.Database, logger),
		readings: mongo.NewReadingRepository(client.Database, logger),
		pinger:   client,
		close:    func(ctx context.Context) { _ = client.Close(ctx) },
	}, nil
}
