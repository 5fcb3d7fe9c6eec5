package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ctchen222/tictactoe-ai/internal/api/service"
	"ctchen222/tictactoe-ai/internal/bot"
	"ctchen222/tictactoe-ai/internal/config"
	"ctchen222/tictactoe-ai/internal/db"
	"ctchen222/tictactoe-ai/internal/events"
	"ctchen222/tictactoe-ai/internal/logger"
	"ctchen222/tictactoe-ai/internal/repository"
	"ctchen222/tictactoe-ai/internal/server"
	"ctchen222/tictactoe-ai/internal/session"
	"ctchen222/tictactoe-ai/internal/telemetry"

	"github.com/gin-gonic/gin"
)

const serviceVersion = "0.1.0"

func main() {
	configPath := flag.String("config", "config.yml", "path to the YAML config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), config.Usage())
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	// Initialize telemetry
	shutdown, err := telemetry.Init(ctx, telemetry.Options{
		Enabled:        cfg.Otel.Enabled,
		Endpoint:       cfg.Otel.Endpoint,
		ServiceName:    cfg.Otel.ServiceName,
		ServiceVersion: serviceVersion,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(os.Stdout, cfg.SlogLevel(), cfg.Otel.Enabled)
	if cfg.SlogLevel() != slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create repositories
	var (
		repo      session.Repository
		publisher events.Publisher
	)
	switch cfg.Storage {
	case config.StorageRedis:
		rdb, err := db.NewRedisClient(ctx, db.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer rdb.Close()

		redisPublisher := events.NewRedisPublisher(rdb)
		repo = repository.NewSessionRepository(rdb, cfg.SessionTTL)
		publisher = redisPublisher

		go func() {
			err := redisPublisher.Subscribe(ctx, func(ctx context.Context, ev events.Event) {
				slog.DebugContext(ctx, "Event received", "event.type", ev.Type, "event.payload", string(ev.Payload))
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				slog.ErrorContext(ctx, "Event subscriber stopped", "error", err)
			}
		}()

	default:
		memRepo := repository.NewMemorySessionRepository()
		go memRepo.ExpireEvery(ctx, time.Minute, cfg.SessionTTL)
		repo = memRepo
		publisher = events.NewLogPublisher(nil)
	}
	slog.InfoContext(ctx, "Session storage ready", "storage", cfg.Storage, "session.ttl", cfg.SessionTTL)

	// Create services
	sessions := session.NewService(repo, bot.NewEngine(nil), publisher,
		session.WithDefaultDifficulty(bot.Difficulty(cfg.DefaultDifficulty)))
	tokens := service.NewTokenService(cfg.TokenSecret, cfg.SessionTTL)

	// Create the Gin-based server
	srv := server.NewServer(sessions, tokens)

	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "http server started", "http.addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("ListenAndServe: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exiting")
	return nil
}
