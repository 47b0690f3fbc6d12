package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ruminaider/salon-sync/internal/assets"
	"github.com/ruminaider/salon-sync/internal/logging"
	"github.com/ruminaider/salon-sync/internal/paths"
	"github.com/ruminaider/salon-sync/internal/ratelimit"
	"github.com/ruminaider/salon-sync/internal/repository"
	"github.com/ruminaider/salon-sync/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveMemory bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the salon backend API",
	Long:  "Run the REST API that stores customer health profiles and newsletter subscriptions. Uses Postgres (DB_CONN) unless --memory is set; Redis (REDIS_ADDR) enables newsletter rate limiting.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := logging.NewServer(cfg.Server.LogLevel)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var repo server.Repository
		if serveMemory || cfg.Server.DBConn == "" {
			logger.Warn("using in-memory storage; data is lost on exit")
			repo = repository.NewMemory()
		} else {
			pg, err := repository.Open(ctx, repository.Config{DSN: cfg.Server.DBConn}, logger)
			if err != nil {
				return err
			}
			defer pg.Close()
			if err := pg.EnsureSchema(ctx); err != nil {
				return err
			}
			repo = pg
		}

		var limiter ratelimit.Limiter
		if cfg.Server.RedisAddr != "" {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.Server.RedisAddr,
				Password: cfg.Server.RedisPass,
			})
			defer rdb.Close()
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Warn("redis unavailable; rate limiting fails open", zap.Error(err))
			}
			rl := ratelimit.DefaultConfig()
			rl.Limit = cfg.Server.RateLimit
			limiter = ratelimit.NewRedis(rdb, rl)
		}

		uploadDir := cfg.Server.UploadDir
		if uploadDir == "" {
			uploadDir = paths.UploadDir()
		}
		store, err := assets.NewDiskStore(uploadDir, cfg.Server.PublicBaseURL, logger)
		if err != nil {
			return err
		}

		api := server.New(repo, store, limiter, logger, server.Config{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			MaxUploadBytes: cfg.Server.MaxUploadBytes,
			TrustProxy:     cfg.Server.TrustProxy,
		})
		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           api.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("salon API listening", zap.String("addr", cfg.Server.Addr), zap.String("upload_dir", uploadDir))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "store data in memory instead of Postgres")
}
