package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures configuration values for the service.
type Config struct {
	HTTPPort          int           `yaml:"http_port"`
	SQLiteDSN         string        `yaml:"sqlite_dsn"`
	AdminPasswordHash string        `yaml:"admin_password_hash"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// Load builds the configuration from an optional YAML file named by
// KDYVODA_CONFIG_FILE, then overlays KDYVODA_* environment variables.
// Environment values always win over file values.
//
// AdminPasswordHash is optional; when empty the administrative surface is
// disabled rather than unprotected.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		SQLiteDSN:       "file:kdyvoda.db",
		ShutdownTimeout: 10 * time.Second,
	}

	if path := strings.TrimSpace(os.Getenv("KDYVODA_CONFIG_FILE")); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("KDYVODA_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "KDYVODA_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("KDYVODA_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if hash := strings.TrimSpace(os.Getenv("KDYVODA_ADMIN_PASSWORD_HASH")); hash != "" {
		cfg.AdminPasswordHash = hash
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("KDYVODA_SHUTDOWN_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "KDYVODA_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(body, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if cfg.HTTPPort <= 0 {
		return fmt.Errorf("config file %s: http_port must be positive", path)
	}
	return nil
}
