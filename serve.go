package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"photoshare/filestore"
	"photoshare/handlers"
	"photoshare/logger"
	"photoshare/middleware"
	"photoshare/routes"
)

var serveMemory bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Close()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.IsRelease() {
			gin.SetMode(gin.ReleaseMode)
		} else {
			gin.SetMode(gin.DebugMode)
		}

		a, err := newApp(ctx, cfg, serveMemory)
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		limiter := middleware.NewIPRateLimiter(cfg.LoginRateLimit)
		go limiter.RunCleanup(ctx, 5*time.Minute)

		h := handlers.New(a.services, handlers.Options{
			SessionTTL:     cfg.SessionTTL,
			SecureCookie:   cfg.IsRelease(),
			MaxUploadBytes: cfg.MaxUploadBytes,
		})
		opts := routes.Options{CORSOrigins: cfg.CORSOrigins, LoginLimiter: limiter}
		if disk, ok := a.files.(*filestore.DiskStorage); ok {
			opts.ImageDir = disk.Dir()
		}
		router := routes.SetupRouter(h, a.sessions, opts)

		server := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Log.Info("Server listening", zap.String("port", cfg.Port))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
		}

		logger.Log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Forced shutdown", zap.Error(err))
			return err
		}
		logger.Log.Info("Server stopped gracefully")
		return nil
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "Keep users, photos and favorites in memory instead of MongoDB")
}
