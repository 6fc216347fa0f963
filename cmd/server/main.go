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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"socialtrends/internal/api"
	"socialtrends/internal/config"
	"socialtrends/internal/dashboard"
	"socialtrends/internal/engine"
	"socialtrends/internal/logging"
	"socialtrends/internal/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Log.Level, cfg.Development())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	// 1. Initialize Echo (starts instantly)
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.Server.CorsOrigins}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogMethod:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency))
			return nil
		},
	}))

	// 2. Wire the dataset source. Pages block on it until the first load ends;
	// /healthz reports 503 meanwhile.
	source := engine.NewSource(cfg.Data.Path, log)
	pages := dashboard.NewController(source, render.NewPNG(), log)
	h := api.NewHandler(pages, source, log)
	h.RegisterRoutes(e)

	// 3. Warm the cache in the background
	go func() {
		log.Info("BACKGROUND: loading dataset", zap.String("path", source.Path()))
		t0 := time.Now()
		if _, err := source.Load(); err != nil {
			return
		}
		log.Info("BACKGROUND: dataset ready", zap.Duration("took", time.Since(t0)))
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      e,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 4. Start server
	go func() {
		log.Info("server listening", zap.String("addr", cfg.Server.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}
