// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a development-friendly default.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
}

// Central configures the client for the national registry.
type Central struct {
	BaseURL string
}

// Kafka configures the queue transport for the asynchronous sync path.
type Kafka struct {
	Brokers           []string
	RegistrationTopic string
	ConfirmationTopic string
	ConsumerGroup     string
}

// Postgres configures the relational store.
type Postgres struct {
	DSN string
}

// RedisConfig configures the confirmation dedup store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Sync tunes the synchronization subsystem itself.
type Sync struct {
	// UserAdapter selects the user sync transport: "rest" or "queue".
	UserAdapter   string
	SweepInterval time.Duration
	DedupTTL      time.Duration
}

// Config is the full runtime configuration.
type Config struct {
	Server   Server
	Central  Central
	Kafka    Kafka
	Postgres Postgres
	Redis    RedisConfig
	Sync     Sync
}

// FromEnv builds the configuration from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr: envOr("HCEN_ADDR", ":8080"),
			// Development default; must be overridden in production.
			JWTSigningKey: envOr("HCEN_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		},
		Central: Central{
			BaseURL: envOr("HCEN_CENTRAL_URL", "http://localhost:9090"),
		},
		Kafka: Kafka{
			Brokers:           strings.Split(envOr("HCEN_KAFKA_BROKERS", "localhost:9092"), ","),
			RegistrationTopic: envOr("HCEN_KAFKA_REGISTRATION_TOPIC", "hcen.registro-usuario"),
			ConfirmationTopic: envOr("HCEN_KAFKA_CONFIRMATION_TOPIC", "hcen.confirmaciones"),
			ConsumerGroup:     envOr("HCEN_KAFKA_CONSUMER_GROUP", "hcen-sync"),
		},
		Postgres: Postgres{
			DSN: envOr("HCEN_POSTGRES_DSN", ""),
		},
		Redis: RedisConfig{
			URL:          envOr("HCEN_REDIS_URL", ""),
			PoolSize:     envInt("HCEN_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("HCEN_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("HCEN_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("HCEN_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("HCEN_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Sync: Sync{
			UserAdapter:   envOr("HCEN_SYNC_USER_ADAPTER", "rest"),
			SweepInterval: envDuration("HCEN_SYNC_SWEEP_INTERVAL", 5*time.Minute),
			DedupTTL:      envDuration("HCEN_SYNC_DEDUP_TTL", 24*time.Hour),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
