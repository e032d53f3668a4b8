package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"DEMANDAS_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "JWT_SIGNING_KEY", "NOTIFICATION_DURATION", "FORM_SESSION_TTL"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 3*time.Second, cfg.Notification.Duration)
	assert.Equal(t, 2*time.Hour, cfg.Form.SessionTTL)
	assert.NotEmpty(t, cfg.Server.JWTSigningKey)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("DEMANDAS_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")
	t.Setenv("KAFKA_AUDIT_TOPIC", "audit.v2")
	t.Setenv("REDIS_POOL_SIZE", "32")
	t.Setenv("NOTIFICATION_DURATION", "5s")
	t.Setenv("FORM_RULES_PATH", "/etc/demandas/rules.yaml")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "audit.v2", cfg.Kafka.AuditTopic)
	assert.Equal(t, 32, cfg.Redis.PoolSize)
	assert.Equal(t, 5*time.Second, cfg.Notification.Duration)
	assert.Equal(t, "/etc/demandas/rules.yaml", cfg.Form.RulesPath)
}

func TestFromEnvRejectsMalformedValues(t *testing.T) {
	t.Run("duration", func(t *testing.T) {
		t.Setenv("FORM_SESSION_TTL", "two hours")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "FORM_SESSION_TTL")
	})

	t.Run("sample rate out of range", func(t *testing.T) {
		t.Setenv("OPS_SAMPLE_RATE", "1.5")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "OPS_SAMPLE_RATE")
	})
}
