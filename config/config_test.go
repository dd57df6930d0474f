package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "KAFKA_BROKERS", "KAFKA_CONSUMER_GROUP", "CATALOG_RECONCILE", "GEMINI_MODEL", "MAX_SESSIONS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, 10000, cfg.Server.MaxSessions)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "catalog-events", cfg.Kafka.TopicCatalog)
	assert.Empty(t, cfg.Kafka.ConsumerGroup)
	assert.Equal(t, "last-write-wins", cfg.Catalog.Reconcile)
	assert.Equal(t, "gemini-2.5-flash", cfg.Curator.Model)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("TRACE_SAMPLE_RATIO", "0.25")
	t.Setenv("CATALOG_RECONCILE", "preserve-local")
	t.Setenv("ADMIN_EMAIL", "curator@umarshands.test")

	cfg := Load()

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 0.25, cfg.Observ.SampleRatio)
	assert.Equal(t, "preserve-local", cfg.Catalog.Reconcile)
	assert.Equal(t, "curator@umarshands.test", cfg.Auth.AdminEmail)
}

func TestLoad_BadSampleRatioFallsBack(t *testing.T) {
	t.Setenv("TRACE_SAMPLE_RATIO", "lots")

	assert.Equal(t, 1.0, Load().Observ.SampleRatio)
}
