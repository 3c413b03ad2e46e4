package config

import (
	"errors"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	CacheRoot       string
	MobilityPath    string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka sink for weekly inflows.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaInflowTopic string

	// SQLite sink for weekly inflows. Empty disables it.
	InflowDBPath string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CacheRoot:       sharedcfg.EnvOrDefault("CACHE_ROOT", "cache"),
		MobilityPath:    os.Getenv("MOBILITY_PATH"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaInflowTopic: sharedcfg.EnvOrDefault("KAFKA_INFLOW_TOPIC", "mobility-weekly-inflows"),

		InflowDBPath: os.Getenv("INFLOW_DB_PATH"),
	}

	if cfg.CacheRoot == "" {
		return nil, errors.New("CACHE_ROOT is required")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaInflowTopic == "" {
			return nil, errors.New("KAFKA_INFLOW_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}
