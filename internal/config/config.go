package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// HTTPWriteTimeout bounds how long a handler may take to write its response.
// A non-zero CWA_TIMEOUT must be below it.
const HTTPWriteTimeout = 30 * time.Second

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// CWA upstream configuration.
	CWAAPIKey          string
	CWABaseURL         string
	CWATyphoonDataset  string
	CWAWarningsFeedURL string
	CWATimeout         time.Duration // 0 disables the client timeout

	// Optional Kafka fan-out of matched warnings.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaWarningsTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cwaTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("CWA_TIMEOUT", "25s"))
	if err != nil {
		return nil, errors.New("invalid CWA_TIMEOUT")
	}
	if cwaTimeout < 0 || cwaTimeout >= HTTPWriteTimeout {
		return nil, fmt.Errorf("invalid CWA_TIMEOUT: must be below %s", HTTPWriteTimeout)
	}

	var brokers []string
	if s := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); s != "" {
		brokers = sharedcfg.ParseBrokers(s)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":5000"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CWAAPIKey:          os.Getenv("CWA_API_KEY"),
		CWABaseURL:         strings.TrimRight(sharedcfg.EnvOrDefault("CWA_API_BASE_URL", "https://opendata.cwa.gov.tw/api/v1/rest/datastore"), "/"),
		CWATyphoonDataset:  sharedcfg.EnvOrDefault("CWA_TYPHOON_DATASET", "W-C0034-005"),
		CWAWarningsFeedURL: sharedcfg.EnvOrDefault("CWA_WARNINGS_FEED_URL", "https://www.cwa.gov.tw/rss/Data/cwa_warning.xml"),
		CWATimeout:         cwaTimeout,

		KafkaEnabled:       kafkaEnabled,
		KafkaBrokers:       brokers,
		KafkaWarningsTopic: sharedcfg.EnvOrDefault("KAFKA_WARNINGS_TOPIC", "cwa-warnings"),
	}

	if cfg.CWAAPIKey == "" {
		return nil, errors.New("CWA_API_KEY is required")
	}
	if cfg.CWABaseURL == "" {
		return nil, errors.New("CWA_API_BASE_URL is required")
	}
	if cfg.CWATyphoonDataset == "" {
		return nil, errors.New("CWA_TYPHOON_DATASET is required")
	}
	if cfg.CWAWarningsFeedURL == "" {
		return nil, errors.New("CWA_WARNINGS_FEED_URL is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaWarningsTopic == "" {
		return nil, errors.New("KAFKA_WARNINGS_TOPIC is required when Kafka is enabled")
	}

	return cfg, nil
}
