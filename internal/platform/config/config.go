// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full process configuration.
type Config struct {
	Server   Server
	Log      Log
	Database Database
	Redis    RedisConfig
	Verifier Verifier
	Kafka    Kafka
	Outbox   Outbox
	Policies Policies
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	JWTSigningKey   string
	ShutdownTimeout time.Duration
}

type Log struct {
	Level  string
	Format string
}

// Database is empty-URL tolerant: no URL means the in-memory store.
type Database struct {
	URL          string
	Driver       string
	MaxOpenConns int
	PingTimeout  time.Duration
	// TxTimeout bounds a unit of work, remote verification included.
	TxTimeout time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Verifier struct {
	GitHubAPIURL     string
	GitHubToken      string
	GitLabAPIURL     string
	GitLabToken      string
	BitbucketAPIURL  string
	Timeout          time.Duration
	CacheTTL         time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

type Kafka struct {
	Brokers []string
	Topic   string
}

type Outbox struct {
	PollInterval time.Duration
	BatchSize    int
}

// Policies are applied to every newly onboarded project.
type Policies struct {
	PullRequest     string
	RetryLimitType  string
	RetryLimitValue int
}

// FromEnv loads .env when present, then reads every variable. All parse
// errors are reported together.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Load(os.Getenv)
}

// Load builds a Config from getenv, which makes it testable without touching
// the process environment.
func Load(getenv func(string) string) (Config, error) {
	e := &env{getenv: getenv}

	cfg := Config{
		Server: Server{
			Addr:            e.str("REVIEW_GENIE_ADDR", ":8000"),
			JWTSigningKey:   e.str("JWT_SIGNING_KEY", ""),
			ShutdownTimeout: e.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: Log{
			Level:  strings.ToLower(e.str("LOG_LEVEL", "info")),
			Format: strings.ToLower(e.str("LOG_FORMAT", "json")),
		},
		Database: Database{
			URL:          e.str("DATABASE_URL", ""),
			Driver:       strings.ToLower(e.str("DATABASE_DRIVER", "postgres")),
			MaxOpenConns: e.integer("DATABASE_MAX_OPEN_CONNS", 10),
			PingTimeout:  e.duration("DATABASE_PING_TIMEOUT", 5*time.Second),
			TxTimeout:    e.duration("DATABASE_TX_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			URL:          e.str("REDIS_URL", ""),
			PoolSize:     e.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: e.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  e.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  e.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: e.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Verifier: Verifier{
			GitHubAPIURL:     e.str("GITHUB_API_URL", ""),
			GitHubToken:      e.str("GITHUB_TOKEN", ""),
			GitLabAPIURL:     e.str("GITLAB_API_URL", ""),
			GitLabToken:      e.str("GITLAB_TOKEN", ""),
			BitbucketAPIURL:  e.str("BITBUCKET_API_URL", ""),
			Timeout:          e.duration("VERIFIER_TIMEOUT", 5*time.Second),
			CacheTTL:         e.duration("VERIFICATION_CACHE_TTL", 10*time.Minute),
			BreakerThreshold: e.integer("VERIFIER_BREAKER_THRESHOLD", 5),
			BreakerCooldown:  e.duration("VERIFIER_BREAKER_COOLDOWN", 30*time.Second),
		},
		Kafka: Kafka{
			Brokers: e.list("KAFKA_BROKERS"),
			Topic:   e.str("KAFKA_TOPIC", "review-genie.projects"),
		},
		Outbox: Outbox{
			PollInterval: e.duration("OUTBOX_POLL_INTERVAL", 2*time.Second),
			BatchSize:    e.integer("OUTBOX_BATCH_SIZE", 100),
		},
		Policies: Policies{
			PullRequest:     e.str("DEFAULT_PR_POLICY", "all"),
			RetryLimitType:  e.str("DEFAULT_RETRY_LIMIT_TYPE", "count"),
			RetryLimitValue: e.integer("DEFAULT_RETRY_LIMIT_VALUE", 2),
		},
	}

	switch cfg.Database.Driver {
	case "postgres", "pgx":
	default:
		e.fail("DATABASE_DRIVER", fmt.Errorf("unsupported driver %q", cfg.Database.Driver))
	}
	if cfg.Database.TxTimeout <= cfg.Verifier.Timeout {
		e.fail("DATABASE_TX_TIMEOUT", fmt.Errorf("%s must exceed VERIFIER_TIMEOUT %s", cfg.Database.TxTimeout, cfg.Verifier.Timeout))
	}
	switch cfg.Log.Format {
	case "json", "text":
	default:
		e.fail("LOG_FORMAT", fmt.Errorf("unsupported format %q", cfg.Log.Format))
	}

	if err := errors.Join(e.errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type env struct {
	getenv func(string) string
	errs   []error
}

func (e *env) fail(key string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
}

func (e *env) str(key, fallback string) string {
	if v := strings.TrimSpace(e.getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (e *env) integer(key string, fallback int) int {
	raw := strings.TrimSpace(e.getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return v
}

func (e *env) duration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(e.getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return v
}

func (e *env) list(key string) []string {
	var out []string
	for _, part := range strings.Split(e.getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
