package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Port           string
	Environment    string
	LogLevel       string
	AllowedOrigins []string

	// Database
	DatabaseURL string
	MaxDBConns  int
	AutoMigrate bool

	// View cache, disabled when RedisURL is empty
	RedisURL     string
	ViewCacheTTL time.Duration

	// Credentials
	BcryptCost int
}

type configFile struct {
	Service struct {
		Port           string   `yaml:"port"`
		Environment    string   `yaml:"environment"`
		LogLevel       string   `yaml:"log_level"`
		AllowedOrigins []string `yaml:"allowed_origins"`
		BcryptCost     int      `yaml:"bcrypt_cost"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL         string `yaml:"postgres_url"`
		MaxDBConns          int    `yaml:"max_db_conns"`
		AutoMigrate         *bool  `yaml:"auto_migrate"`
		RedisURL            string `yaml:"redis_url"`
		ViewCacheTTLSeconds int    `yaml:"view_cache_ttl_seconds"`
	} `yaml:"dependencies"`
}

// Load reads defaults, then the optional YAML file at path, then environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:           "8080",
		Environment:    "development",
		LogLevel:       "info",
		AllowedOrigins: []string{"*"},
		MaxDBConns:     20,
		AutoMigrate:    true,
		ViewCacheTTL:   5 * time.Minute,
		BcryptCost:     10,
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err == nil {
			if err := applyFile(cfg, raw); err != nil {
				return nil, err
			}
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.AllowedOrigins = getEnvCSV("ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.MaxDBConns = getEnvInt("DB_MAX_CONNS", cfg.MaxDBConns)
	cfg.AutoMigrate = getEnvBool("AUTO_MIGRATE", cfg.AutoMigrate)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.ViewCacheTTL = time.Duration(getEnvInt("VIEW_CACHE_TTL_SECONDS", int(cfg.ViewCacheTTL.Seconds()))) * time.Second
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", cfg.BcryptCost)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}

func applyFile(cfg *Config, raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if f.Service.Port != "" {
		cfg.Port = f.Service.Port
	}
	if f.Service.Environment != "" {
		cfg.Environment = f.Service.Environment
	}
	if f.Service.LogLevel != "" {
		cfg.LogLevel = f.Service.LogLevel
	}
	if len(f.Service.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = trimNonEmpty(f.Service.AllowedOrigins)
	}
	if f.Service.BcryptCost > 0 {
		cfg.BcryptCost = f.Service.BcryptCost
	}
	if f.Dependencies.PostgresURL != "" {
		cfg.DatabaseURL = f.Dependencies.PostgresURL
	}
	if f.Dependencies.MaxDBConns > 0 {
		cfg.MaxDBConns = f.Dependencies.MaxDBConns
	}
	if f.Dependencies.AutoMigrate != nil {
		cfg.AutoMigrate = *f.Dependencies.AutoMigrate
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if f.Dependencies.ViewCacheTTLSeconds > 0 {
		cfg.ViewCacheTTL = time.Duration(f.Dependencies.ViewCacheTTLSeconds) * time.Second
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return fallback
	}
}

func getEnvCSV(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(value, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
