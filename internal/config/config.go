package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable names recognized by the portal.
const (
	EnvConfigPath    = "CONFIG_PATH"
	EnvPort          = "PORT"
	EnvEnvironment   = "APP_ENV"
	EnvAuthorizedIPs = "AUTHORIZED_IPS"
	EnvIdentityDSN   = "IDENTITY_DB_DSN"
	EnvBusinessDSN   = "BUSINESS_DB_DSN"
	EnvStaticDir     = "STATIC_DIR"

	EnvRedisAddr     = "RATE_LIMIT_REDIS_ADDR"
	EnvRedisPassword = "RATE_LIMIT_REDIS_PASSWORD"
	EnvRedisDB       = "RATE_LIMIT_REDIS_DB"
	EnvRedisPrefix   = "RATE_LIMIT_REDIS_PREFIX"
)

// Defaults applied when neither file nor environment provide a value.
const (
	DefaultPort        = 3000
	DefaultEnvironment = "development"
	DefaultStaticDir   = "./apps"
)

// ErrMissingIdentityDSN indicates no identity store DSN was configured.
var ErrMissingIdentityDSN = errors.New("missing identity store dsn (set `identity-database-dsn` or env IDENTITY_DB_DSN)")

// ErrMissingBusinessDSN indicates no business store DSN was configured.
var ErrMissingBusinessDSN = errors.New("missing business store dsn (set `business-database-dsn` or env BUSINESS_DB_DSN)")

// RateLimitConfig holds the optional Redis backend settings for the login
// rate limiter. When Addr is empty the in-memory limiter is used alone.
type RateLimitConfig struct {
	RedisAddr     string `yaml:"redis-addr"`
	RedisPassword string `yaml:"redis-password"`
	RedisDB       int    `yaml:"redis-db"`
	RedisPrefix   string `yaml:"redis-prefix"`
}

// Config holds the resolved portal configuration.
type Config struct {
	Port          int             `yaml:"port"`
	Environment   string          `yaml:"environment"`
	AuthorizedIPs []string        `yaml:"authorized-ips"`
	IdentityDSN   string          `yaml:"identity-database-dsn"`
	BusinessDSN   string          `yaml:"business-database-dsn"`
	StaticDir     string          `yaml:"static-dir"`
	RateLimit     RateLimitConfig `yaml:"rate-limit"`
}

// IsProduction reports whether the portal runs in production mode, which
// redacts internal error details from client responses.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the YAML config file when present and applies environment
// overrides on top. Environment always wins.
func Load(configPath string) (Config, error) {
	cfg := Config{
		Port:        DefaultPort,
		Environment: DefaultEnvironment,
		StaticDir:   DefaultStaticDir,
	}

	data, errRead := os.ReadFile(ResolveConfigPath(configPath))
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	}

	applyEnv(&cfg)

	cfg.IdentityDSN = strings.TrimSpace(cfg.IdentityDSN)
	cfg.BusinessDSN = strings.TrimSpace(cfg.BusinessDSN)
	if cfg.IdentityDSN == "" {
		return Config{}, ErrMissingIdentityDSN
	}
	if cfg.BusinessDSN == "" {
		return Config{}, ErrMissingBusinessDSN
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	cfg.AuthorizedIPs = cleanIPList(cfg.AuthorizedIPs)
	if strings.TrimSpace(cfg.StaticDir) == "" {
		cfg.StaticDir = DefaultStaticDir
	}
	return cfg, nil
}

// applyEnv overrides file values with environment variables.
func applyEnv(cfg *Config) {
	if raw := strings.TrimSpace(os.Getenv(EnvPort)); raw != "" {
		if port, errParse := strconv.Atoi(raw); errParse == nil {
			cfg.Port = port
		}
	}
	if raw := strings.TrimSpace(os.Getenv(EnvEnvironment)); raw != "" {
		cfg.Environment = raw
	}
	if raw := strings.TrimSpace(os.Getenv(EnvAuthorizedIPs)); raw != "" {
		cfg.AuthorizedIPs = ParseIPList(raw)
	}
	if raw := strings.TrimSpace(os.Getenv(EnvIdentityDSN)); raw != "" {
		cfg.IdentityDSN = raw
	}
	if raw := strings.TrimSpace(os.Getenv(EnvBusinessDSN)); raw != "" {
		cfg.BusinessDSN = raw
	}
	if raw := strings.TrimSpace(os.Getenv(EnvStaticDir)); raw != "" {
		cfg.StaticDir = raw
	}
	if raw := strings.TrimSpace(os.Getenv(EnvRedisAddr)); raw != "" {
		cfg.RateLimit.RedisAddr = raw
	}
	if raw := strings.TrimSpace(os.Getenv(EnvRedisPassword)); raw != "" {
		cfg.RateLimit.RedisPassword = raw
	}
	if raw := strings.TrimSpace(os.Getenv(EnvRedisDB)); raw != "" {
		if dbIndex, errParse := strconv.Atoi(raw); errParse == nil && dbIndex >= 0 {
			cfg.RateLimit.RedisDB = dbIndex
		}
	}
	if raw := strings.TrimSpace(os.Getenv(EnvRedisPrefix)); raw != "" {
		cfg.RateLimit.RedisPrefix = raw
	}
}

// ParseIPList splits a comma-separated address list, trimming blanks.
func ParseIPList(raw string) []string {
	parts := strings.Split(raw, ",")
	return cleanIPList(parts)
}

func cleanIPList(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		ip := strings.TrimSpace(part)
		if ip == "" {
			continue
		}
		out = append(out, ip)
	}
	return out
}
