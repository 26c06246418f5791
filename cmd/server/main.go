package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"csvdash/internal/api"
	"csvdash/internal/config"
	"csvdash/internal/log"
	"csvdash/internal/session"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := cfg.Logger(log.ComponentApp)
	log.SetDefault(logger)

	// 1. Initialize Echo (Starts Instantly)
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	if len(cfg.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{AllowOrigins: cfg.CORSOrigins}))
	}
	e.Use(api.RequestLogger(logger))

	// 2. Empty session: data endpoints answer 503 until a file is loaded
	s := session.New(logger)
	api.NewHandler(s, api.Options{
		TopGroupColumn: cfg.TopGroupColumn,
		TopValueColumn: cfg.TopValueColumn,
		TopN:           cfg.TopN,
		ChartWidth:     cfg.ChartWidth,
		ChartHeight:    cfg.ChartHeight,
		DataDir:        cfg.DataDir,
	}, logger).RegisterRoutes(e)

	// 3. Load the configured file in the background
	if cfg.DataFile != "" {
		go func() {
			logger.Info("background load started", "path", cfg.DataFile)
			t0 := time.Now()
			if err := s.Load(cfg.DataFile); err != nil {
				logger.Error("background load failed", "path", cfg.DataFile, "error", err)
				return
			}
			logger.Info("background load complete", "path", cfg.DataFile, "elapsed", time.Since(t0))
		}()
	}

	// 4. Start Server
	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	logger.Info("server ready", "addr", addr, "data_file", cfg.DataFile, "data_dir", cfg.DataDir)
	if err := e.Start(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
