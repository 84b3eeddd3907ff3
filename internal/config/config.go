// Package config loads service configuration from an optional YAML file
// plus environment overrides. Environment variables always win, so deploys
// can tweak a single knob without editing the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	yaml "gopkg.in/yaml.v3"

	"routeopt/internal/solver"
)

type Config struct {
	// Port the HTTP API listens on.
	Port string `yaml:"port"`
	// DatabaseURL selects the postgres store; empty means in-memory.
	DatabaseURL string `yaml:"databaseUrl"`
	// RedisURL selects the Redis event broker; empty means in-process.
	RedisURL string `yaml:"redisUrl"`

	Traffic TrafficConfig `yaml:"traffic"`
	// Tuning holds the solver tunables; zero values fall back to stock.
	Tuning solver.Tuning `yaml:"tuning"`
}

// TrafficConfig configures the external travel-time provider client.
type TrafficConfig struct {
	// URL of the provider; empty disables live traffic lookups.
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
	// RPS and Burst bound the request rate against the provider.
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// Load reads the file named by CONFIG_FILE (if set), then applies
// environment overrides. A missing CONFIG_FILE value is fine; a named file
// that cannot be read or parsed is not.
func Load() (Config, error) {
	cfg := Config{
		Port:    "8080",
		Traffic: TrafficConfig{Timeout: 5 * time.Second, RPS: 10, Burst: 20},
	}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("TRAFFIC_URL"); v != "" {
		cfg.Traffic.URL = v
	}
	if v := os.Getenv("TRAFFIC_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Traffic.Timeout = d
		}
	}
	if v := os.Getenv("TRAFFIC_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Traffic.RPS = f
		}
	}
	if v := os.Getenv("TRAFFIC_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Traffic.Burst = n
		}
	}
}
