// Package config loads the service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is the full service configuration.
type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	AMQP     AMQPConfig
	Logging  LoggingConfig
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Port          int
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	EnableMetrics bool
}

// DatabaseConfig toggles persistence; connection details are loaded by the
// database package itself.
type DatabaseConfig struct {
	Enabled bool
}

// AMQPConfig configures event publishing. An empty URL disables it.
type AMQPConfig struct {
	URL      string
	Exchange string
}

// LoggingConfig configures logrus.
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads the configuration. A .env file in the working directory is
// loaded first when present; real environment variables win.
func Load(logger *logrus.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment only")
	}

	config := &Config{
		HTTP: HTTPConfig{
			Port:          getEnvInt("HTTP_PORT", 8080),
			ReadTimeout:   getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			EnableMetrics: getEnvBool("HTTP_ENABLE_METRICS", true),
		},
		Database: DatabaseConfig{
			Enabled: getEnvBool("DB_ENABLED", false),
		},
		AMQP: AMQPConfig{
			URL:      getEnv("AMQP_URL", ""),
			Exchange: getEnv("AMQP_EXCHANGE", "careintake.events"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"http_port":  config.HTTP.Port,
		"db_enabled": config.Database.Enabled,
		"amqp":       config.AMQP.URL != "",
		"log_level":  config.Logging.Level,
	}).Info("Configuration loaded")

	return config, nil
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTP.Port)
	}
	if c.HTTP.ReadTimeout <= 0 || c.HTTP.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP timeouts must be positive")
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format %q (want text or json)", c.Logging.Format)
	}
	return nil
}

// ConfigureLogger applies the logging section to a logrus logger.
func (c *Config) ConfigureLogger(logger *logrus.Logger) {
	level, err := logrus.ParseLevel(c.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if c.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
