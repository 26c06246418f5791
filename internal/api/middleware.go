package api

import (
	"log/slog"

	"csvdash/internal/log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// RequestLogger logs one line per request through logger, at warn for 4xx
// and error for 5xx.
func RequestLogger(logger *log.Logger) echo.MiddlewareFunc {
	logger = logger.WithComponent(log.ComponentHTTP)
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			switch {
			case v.Status >= 500:
				level = slog.LevelError
			case v.Status >= 400:
				level = slog.LevelWarn
			}
			args := []any{"component", logger.Component(), "method", v.Method, "uri", v.URI,
				"status", v.Status, "latency_ms", v.Latency.Milliseconds()}
			if v.Error != nil {
				args = append(args, "error", v.Error)
			}
			logger.Logger.Log(c.Request().Context(), level, "request", args...)
			return nil
		},
	})
}
