package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"csvdash/internal/log"
)

type Config struct {
	// HTTP Server
	Host        string
	Port        string
	CORSOrigins []string

	// Files POST /api/load may open; empty disables it
	DataDir string

	// Input / output
	DataFile  string
	OutputDir string

	// Logging
	LogLevel  string
	LogFormat string

	// Top categories report
	TopGroupColumn string
	TopValueColumn string
	TopN           int

	// Chart size in pixels
	ChartWidth  int
	ChartHeight int
}

func Load() *Config {
	return &Config{
		Host:        getEnv("HOST", "127.0.0.1"),
		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnvList("CORS_ORIGINS"),

		DataDir: getEnv("DATA_DIR", ""),

		DataFile:  getEnv("DATA_FILE", ""),
		OutputDir: getEnv("OUTPUT_DIR", "."),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", log.FormatText),

		TopGroupColumn: getEnv("TOP_GROUP_COLUMN", "location"),
		TopValueColumn: getEnv("TOP_VALUE_COLUMN", "total_cases"),
		TopN:           getEnvInt("TOP_N", 5),

		ChartWidth:  getEnvInt("CHART_WIDTH", 1024),
		ChartHeight: getEnvInt("CHART_HEIGHT", 600),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.Host == "" {
		errors = append(errors, "host cannot be empty")
	}
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			errors = append(errors, "invalid CORS origin '*': list the allowed origins explicitly")
		}
	}

	if c.DataDir != "" {
		if info, err := os.Stat(c.DataDir); err != nil || !info.IsDir() {
			errors = append(errors, fmt.Sprintf("data directory '%s' does not exist", c.DataDir))
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}
	if c.LogFormat != log.FormatText && c.LogFormat != log.FormatJSON {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be one of [text json]", c.LogFormat))
	}

	if c.OutputDir == "" {
		errors = append(errors, "output directory cannot be empty")
	}

	if c.TopN < 1 {
		errors = append(errors, fmt.Sprintf("invalid top n %d: must be at least 1", c.TopN))
	}

	if c.ChartWidth < 100 || c.ChartWidth > 8192 {
		errors = append(errors, fmt.Sprintf("invalid chart width %d: must be between 100 and 8192", c.ChartWidth))
	}
	if c.ChartHeight < 100 || c.ChartHeight > 8192 {
		errors = append(errors, fmt.Sprintf("invalid chart height %d: must be between 100 and 8192", c.ChartHeight))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Logger builds the application logger from the logging settings.
// Validate has already rejected unknown levels.
func (c *Config) Logger(component string) *log.Logger {
	level, _ := log.ParseLevel(c.LogLevel)
	cfg := log.DefaultConfig()
	cfg.Level = level
	cfg.Format = c.LogFormat
	cfg.Component = component
	return log.New(cfg)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var values []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
