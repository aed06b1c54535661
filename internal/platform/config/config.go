package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration. Built from the environment so
// main stays lean.
type Server struct {
	Addr          string
	JWTSigningKey string

	// Evaluator fan-out limits for the validation orchestrator.
	EvaluatorConcurrency int
	EvaluatorTimeout     time.Duration

	// Scheduler settings.
	SchedulerEnabled bool
	SchedulerTick    time.Duration

	// IRRThresholds optionally overrides the default risk bands, e.g.
	// "R1:95,R2:85,R3:70". R4 is always the floor band.
	IRRThresholds string

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// PostgresConfig selects the persistent store. Empty DSN means the in-memory
// stores are used.
type PostgresConfig struct {
	DSN string
}

// RedisConfig configures the cross-instance scheduler lock. Empty URL means
// Redis is not configured and the in-process lock is used.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the notification producer. Empty broker list means
// notifications are logged instead of published.
type KafkaConfig struct {
	Brokers     []string
	NotifyTopic string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := envOr("COMPLIA_ADDR", ":8080")

	jwtSigningKey := os.Getenv("COMPLIA_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:                 addr,
		JWTSigningKey:        jwtSigningKey,
		EvaluatorConcurrency: envInt("COMPLIA_EVALUATOR_CONCURRENCY", 8),
		EvaluatorTimeout:     envDuration("COMPLIA_EVALUATOR_TIMEOUT", 10*time.Second),
		SchedulerEnabled:     os.Getenv("COMPLIA_SCHEDULER_DISABLED") != "true",
		SchedulerTick:        envDuration("COMPLIA_SCHEDULER_TICK", time.Minute),
		IRRThresholds:        os.Getenv("COMPLIA_IRR_THRESHOLDS"),
		Postgres: PostgresConfig{
			DSN: os.Getenv("COMPLIA_POSTGRES_DSN"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("COMPLIA_REDIS_URL"),
			PoolSize:     envInt("COMPLIA_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("COMPLIA_REDIS_MIN_IDLE", 2),
			DialTimeout:  envDuration("COMPLIA_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("COMPLIA_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("COMPLIA_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:     splitNonEmpty(os.Getenv("COMPLIA_KAFKA_BROKERS")),
			NotifyTopic: envOr("COMPLIA_KAFKA_NOTIFY_TOPIC", "complia.validation.notifications"),
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
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
