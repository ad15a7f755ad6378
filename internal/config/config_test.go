package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "CWA-TEST-KEY"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CWA_API_KEY", testAPIKey)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, testAPIKey, cfg.CWAAPIKey)
	assert.Equal(t, "https://opendata.cwa.gov.tw/api/v1/rest/datastore", cfg.CWABaseURL)
	assert.Equal(t, "W-C0034-005", cfg.CWATyphoonDataset)
	assert.Equal(t, "https://www.cwa.gov.tw/rss/Data/cwa_warning.xml", cfg.CWAWarningsFeedURL)
	assert.Equal(t, 25*time.Second, cfg.CWATimeout)
	assert.Less(t, cfg.CWATimeout, HTTPWriteTimeout)
	assert.False(t, cfg.KafkaEnabled)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "cwa-warnings", cfg.KafkaWarningsTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("CWA_API_KEY", testAPIKey)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("CWA_API_BASE_URL", "http://localhost:8081/datastore/")
	t.Setenv("CWA_TYPHOON_DATASET", "W-C0058-001")
	t.Setenv("CWA_WARNINGS_FEED_URL", "http://localhost:8081/warning.xml")
	t.Setenv("CWA_TIMEOUT", "3s")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_WARNINGS_TOPIC", "custom-warnings")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:8081/datastore", cfg.CWABaseURL)
	assert.Equal(t, "W-C0058-001", cfg.CWATyphoonDataset)
	assert.Equal(t, "http://localhost:8081/warning.xml", cfg.CWAWarningsFeedURL)
	assert.Equal(t, 3*time.Second, cfg.CWATimeout)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-warnings", cfg.KafkaWarningsTopic)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	t.Setenv("CWA_API_KEY", "")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CWA_API_KEY")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("CWA_API_KEY", testAPIKey)
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidCWATimeout(t *testing.T) {
	t.Setenv("CWA_API_KEY", testAPIKey)
	t.Setenv("CWA_TIMEOUT", "bad")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CWA_TIMEOUT")
}

func TestLoad_NegativeCWATimeout(t *testing.T) {
	t.Setenv("CWA_API_KEY", testAPIKey)
	t.Setenv("CWA_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CWA_TIMEOUT")
}

func TestLoad_KafkaEnabledWithoutBrokers(t *testing.T) {
	t.Setenv("CWA_API_KEY", testAPIKey)
	t.Setenv("KAFKA_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "KAFKA_BROKERS")
}

func TestLoad_KafkaExplicitlyDisabled(t *testing.T) {
	t.Setenv("CWA_API_KEY", testAPIKey)
	t.Setenv("KAFKA_BROKERS", "localhost:9092")
	t.Setenv("KAFKA_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.KafkaEnabled)
}

func TestLoad_CWATimeoutBounds(t *testing.T) {
	for _, v := range []string{"30s", "1m"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("CWA_API_KEY", testAPIKey)
			t.Setenv("CWA_TIMEOUT", v)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "CWA_TIMEOUT")
		})
	}
}

func TestLoad_CWATimeoutZeroDisables(t *testing.T) {
	t.Setenv("CWA_API_KEY", testAPIKey)
	t.Setenv("CWA_TIMEOUT", "0s")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), cfg.CWATimeout)
}
