package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port string
	Env  string

	Redis   RedisConfig
	Monitor MonitorConfig
}

// RedisConfig contains Redis connection parameters for the snapshot store.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// MonitorConfig drives the capacity monitor worker: how often it ticks and
// which warehouses it polls, each with its own probability of reporting
// free capacity on a given tick.
type MonitorConfig struct {
	CheckInterval time.Duration
	Warehouses    []WarehouseConfig
}

// WarehouseConfig describes one warehouse known to the capacity monitor.
// ID is the short name products reference in their listing selection.
type WarehouseConfig struct {
	ID          string
	Name        string
	Probability float64
}

// defaultWarehouses mirrors the warehouses offered during product approval.
var defaultWarehouses = []WarehouseConfig{
	{ID: "Prague", Name: "Prague Central", Probability: 0.4},
	{ID: "Brno", Name: "Brno Distribution", Probability: 0.3},
	{ID: "Ostrava", Name: "Ostrava Hub", Probability: 0.3},
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// Capacity monitor
	var err error
	if cfg.Monitor.CheckInterval, err = parseDurationEnv("CAPACITY_CHECK_INTERVAL", "10s"); err != nil {
		return nil, fmt.Errorf("invalid CAPACITY_CHECK_INTERVAL: %w", err)
	}
	if cfg.Monitor.Warehouses, err = parseWarehousesEnv("CAPACITY_WAREHOUSES"); err != nil {
		return nil, fmt.Errorf("invalid CAPACITY_WAREHOUSES: %w", err)
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be > 0")
	}
	return d, nil
}

// parseWarehousesEnv parses a warehouse list in the form
// "id:name:probability,id:name:probability". An empty variable yields the
// built-in default warehouse set.
func parseWarehousesEnv(key string) ([]WarehouseConfig, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultWarehouses, nil
	}

	var warehouses []WarehouseConfig
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("entry %q must be id:name:probability", entry)
		}
		p, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("entry %q has invalid probability: %w", entry, err)
		}
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("entry %q probability must be between 0 and 1", entry)
		}
		warehouses = append(warehouses, WarehouseConfig{ID: parts[0], Name: parts[1], Probability: p})
	}
	return warehouses, nil
}
