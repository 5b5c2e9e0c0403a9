package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Soumyadip-03/TrackLy-sub002/internal/config"
	internalhttp "github.com/Soumyadip-03/TrackLy-sub002/internal/http"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/jobs"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/notify"
	"github.com/Soumyadip-03/TrackLy-sub002/internal/repository"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel).With().Str("service", "trackly-server").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("db connection failed")
	}
	defer pool.Close()
	store := repository.NewStore(pool)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable, token revocation disabled")
			redisClient = nil
		}
		cancel()
	}

	var email notify.EmailService
	if cfg.SendgridAPIKey != "" {
		email = notify.NewSendgridService(cfg.SendgridAPIKey, cfg.EmailFromName, cfg.EmailFrom, logger)
	} else {
		email = notify.NewConsoleService(logger)
	}

	jobs.StartReminderJob(ctx, cfg, store, email, logger)

	server := internalhttp.NewServer(cfg, store, redisClient, email)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(parsed).With().Timestamp().Logger()
}
