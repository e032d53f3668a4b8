package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "demandas/pkg/platform/strings"
)

// Config captures every process level setting. Zero-value backends
// (empty DATABASE_URL, REDIS_URL or KAFKA_BROKERS) fall back to in-memory
// implementations.
type Config struct {
	Server       Server
	LogLevel     string
	DatabaseURL  string
	Redis        RedisConfig
	Kafka        KafkaConfig
	Form         FormConfig
	Outbox       OutboxConfig
	Ops          OpsConfig
	Notification NotificationConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	JWTSigningKey  string
	JWTIssuer      string
	JWTAudience    string
	RequestTimeout time.Duration
}

// RedisConfig drives the go-redis client backing form sessions.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig drives the audit event producer.
type KafkaConfig struct {
	Brokers     []string
	AuditTopic  string
	ClientID    string
	Partitions  int32
	Replication int16
	Timeout     time.Duration
}

// FormConfig holds form session settings.
type FormConfig struct {
	RulesPath  string
	SessionTTL time.Duration
}

// OutboxConfig drives the audit outbox worker.
type OutboxConfig struct {
	Interval  time.Duration
	BatchSize int
}

// OpsConfig drives the sampled operations tracker.
type OpsConfig struct {
	SampleRate float64
	BufferSize int
}

// NotificationConfig holds the notification display policy.
type NotificationConfig struct {
	Duration time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var p parser
	cfg := Config{
		Server: Server{
			Addr:           p.str("DEMANDAS_ADDR", ":8080"),
			JWTSigningKey:  p.str("JWT_SIGNING_KEY", ""),
			JWTIssuer:      p.str("JWT_ISSUER", "demandas"),
			JWTAudience:    p.str("JWT_AUDIENCE", "demandas-api"),
			RequestTimeout: p.duration("REQUEST_TIMEOUT", 15*time.Second),
		},
		LogLevel:    p.str("LOG_LEVEL", "info"),
		DatabaseURL: p.str("DATABASE_URL", ""),
		Redis: RedisConfig{
			URL:          p.str("REDIS_URL", ""),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:     p.list("KAFKA_BROKERS"),
			AuditTopic:  p.str("KAFKA_AUDIT_TOPIC", "demandas.audit"),
			ClientID:    p.str("KAFKA_CLIENT_ID", "demandas"),
			Partitions:  int32(p.integer("KAFKA_AUDIT_PARTITIONS", 3)),
			Replication: int16(p.integer("KAFKA_AUDIT_REPLICATION", 1)),
			Timeout:     p.duration("KAFKA_TIMEOUT", 10*time.Second),
		},
		Form: FormConfig{
			RulesPath:  p.str("FORM_RULES_PATH", ""),
			SessionTTL: p.duration("FORM_SESSION_TTL", 2*time.Hour),
		},
		Outbox: OutboxConfig{
			Interval:  p.duration("OUTBOX_INTERVAL", time.Second),
			BatchSize: p.integer("OUTBOX_BATCH_SIZE", 100),
		},
		Ops: OpsConfig{
			SampleRate: p.float("OPS_SAMPLE_RATE", 1),
			BufferSize: p.integer("OPS_BUFFER_SIZE", 1024),
		},
		Notification: NotificationConfig{
			Duration: p.duration("NOTIFICATION_DURATION", 3*time.Second),
		},
	}
	if p.err != nil {
		return Config{}, p.err
	}
	if cfg.Server.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.Server.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	if cfg.Form.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("FORM_SESSION_TTL must be positive")
	}
	if cfg.Ops.SampleRate < 0 || cfg.Ops.SampleRate > 1 {
		return Config{}, fmt.Errorf("OPS_SAMPLE_RATE must be within [0,1]")
	}
	return cfg, nil
}

// parser keeps the first conversion error so FromEnv reads top to bottom.
type parser struct {
	err error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) list(key string) []string {
	return platformstrings.SplitList(os.Getenv(key), ",")
}

func (p *parser) integer(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return f
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return d
}

func (p *parser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("parse %s: %w", key, err)
	}
}
