// Package config loads runtime settings from the environment, optionally
// seeded from a .env file, plus an optional YAML file of generator weights.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Katzler/shapeshifter/pkg/scheduler"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrInvalidWeights = errors.New("invalid scheduler weights")

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Log       LogConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port    string
	GinMode string
}

// DatabaseConfig selects Postgres when URL is set, SQLite at Path otherwise.
type DatabaseConfig struct {
	URL           string
	Path          string
	MaxWorkspaces int
}

type AuthConfig struct {
	JWTSecret        string
	APIMasterSecret  string
	AdminUsername    string
	AdminPassword    string
	TokenTTL         time.Duration
	DefaultRateLimit int
}

type LogConfig struct {
	Level  string
	Format string
}

type SchedulerConfig struct {
	WeightsFile string
	Weights     scheduler.Weights
}

// envPaths are tried in order; the first that exists is loaded.
var envPaths = []string{".env", "../.env", "../../.env"}

// LoadEnvFile loads the first .env found. Variables already set in the
// environment win.
func LoadEnvFile() {
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads .env and the environment.
func Load() (*Config, error) {
	LoadEnvFile()
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (*Config, error) {
	ttl, err := time.ParseDuration(getEnv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8000"),
			GinMode: getEnv("GIN_MODE", "release"),
		},
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			Path:          getEnv("DATA_PATH", "shapeshifter.db"),
			MaxWorkspaces: getEnvInt("MAX_WORKSPACES", 20),
		},
		Auth: AuthConfig{
			JWTSecret:        os.Getenv("JWT_SECRET"),
			APIMasterSecret:  os.Getenv("API_MASTER_SECRET"),
			AdminUsername:    getEnv("ADMIN_USERNAME", "admin"),
			AdminPassword:    getEnv("ADMIN_PASSWORD", "admin123"),
			TokenTTL:         ttl,
			DefaultRateLimit: getEnvInt("DEFAULT_RATE_LIMIT", 10000),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
		Scheduler: SchedulerConfig{
			WeightsFile: os.Getenv("SCHEDULER_WEIGHTS_FILE"),
			Weights:     scheduler.DefaultWeights(),
		},
	}

	if cfg.Scheduler.WeightsFile != "" {
		w, err := LoadWeights(cfg.Scheduler.WeightsFile)
		if err != nil {
			return nil, err
		}
		cfg.Scheduler.Weights = w
	}
	return cfg, nil
}

// LoadWeights reads generator weights from a YAML file. Keys left out keep
// their default values.
func LoadWeights(path string) (scheduler.Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scheduler.Weights{}, fmt.Errorf("read weights file: %w", err)
	}
	return ParseWeights(data)
}

func ParseWeights(data []byte) (scheduler.Weights, error) {
	w := scheduler.DefaultWeights()
	if err := yaml.Unmarshal(data, &w); err != nil {
		return scheduler.Weights{}, fmt.Errorf("%w: %v", ErrInvalidWeights, err)
	}
	if w.FarUnderRatio > w.UnderRatio || w.OverRatio > w.FarOverRatio {
		return scheduler.Weights{}, fmt.Errorf("%w: ratio thresholds out of order", ErrInvalidWeights)
	}
	if w.Available < w.Neutral {
		return scheduler.Weights{}, fmt.Errorf("%w: available weight below neutral", ErrInvalidWeights)
	}
	return w, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
