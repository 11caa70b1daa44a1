package config

import (
	"os"
	"strconv"
	"time"

	"bizhealth/internal/quality"
	bhstrings "bizhealth/pkg/platform/strings"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
	LogLevel      string

	Quality  Quality
	Anomaly  Anomaly
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

// Quality configures the dimension quality tracker and its outputs.
type Quality struct {
	StrictMode         bool
	CriticalDimensions []string
	OutputDir          string
}

// Anomaly configures the cross-phase anomaly detector.
type Anomaly struct {
	ArtifactsDir    string
	ScanConcurrency int
}

// PostgresConfig is optional; an empty URL disables the durable sink.
type PostgresConfig struct {
	URL             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig is optional; an empty URL disables the audit cache.
type RedisConfig struct {
	URL          string
	TTL          time.Duration
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig is optional; no brokers disables event streaming.
type KafkaConfig struct {
	Brokers           []string
	AuditTopic        string
	AnomalyTopic      string
	Partitions        int32
	ReplicationFactor int16
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	critical := bhstrings.SplitCodes(os.Getenv("BH_CRITICAL_DIMENSIONS"), true)
	if len(critical) == 0 {
		critical = quality.DefaultCriticalDimensions()
	}

	jwtSigningKey := os.Getenv("BH_JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          envOr("BH_HTTP_ADDR", ":8080"),
		JWTSigningKey: jwtSigningKey,
		JWTIssuer:     envOr("BH_JWT_ISSUER", "bizhealth"),
		JWTAudience:   envOr("BH_JWT_AUDIENCE", "bizhealth-scoring"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		Quality: Quality{
			StrictMode:         os.Getenv("BH_STRICT_MODE") == "true",
			CriticalDimensions: critical,
			OutputDir:          envOr("BH_OUTPUT_DIR", "./output/audits"),
		},
		Anomaly: Anomaly{
			ArtifactsDir:    envOr("BH_ARTIFACTS_DIR", "./output/runs"),
			ScanConcurrency: envInt("BH_SCAN_CONCURRENCY", 4),
		},
		Postgres: PostgresConfig{
			URL:             os.Getenv("BH_DATABASE_URL"),
			MaxOpenConns:    envInt("BH_DATABASE_MAX_CONNS", 10),
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			URL:          os.Getenv("BH_REDIS_URL"),
			TTL:          envDuration("BH_REDIS_TTL", 24*time.Hour),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:           bhstrings.SplitCodes(os.Getenv("BH_KAFKA_BROKERS"), false),
			AuditTopic:        envOr("BH_KAFKA_AUDIT_TOPIC", "bizhealth.quality-audits"),
			AnomalyTopic:      envOr("BH_KAFKA_ANOMALY_TOPIC", "bizhealth.anomaly-reports"),
			Partitions:        3,
			ReplicationFactor: 1,
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
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
