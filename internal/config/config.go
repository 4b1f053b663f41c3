package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds all tool settings, populated from environment variables.
// Per-deployment settings (coordinates, serial numbers, instrument lists)
// live in the YAML mooring configuration instead; see Mooring.
type Config struct {
	// RawRoot and ProcRoot anchor the path conventions: raw JSON records
	// under RawRoot, NetCDF output under ProcRoot.
	RawRoot  string
	ProcRoot string

	LogLevel  string
	LogFormat string

	// MetricsAddr, when set, serves /healthz and /metrics during batch runs.
	MetricsAddr     string
	ShutdownTimeout time.Duration

	// Calibration asset repository.
	CalAssetURL string
	CalTimeout  time.Duration

	// OOI RDB API, used by the template generator.
	RDBHost    string
	RDBToken   string
	RDBTimeout time.Duration

	// Optional Kafka notifier announcing freshly written datasets.
	KafkaBrokers     []string
	KafkaNotifyTopic string
	NotifyEnabled    bool
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	calTimeout, err := parseDuration("CAL_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	rdbTimeout, err := parseDuration("RDB_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	notifyEnabled := len(brokers) > 0
	if v := os.Getenv("NOTIFY_ENABLED"); v != "" {
		notifyEnabled = v == "true"
	}

	cfg := &Config{
		RawRoot:          envOrDefault("RAW_ROOT", "/home/ooiuser/data/raw"),
		ProcRoot:         envOrDefault("PROC_ROOT", "/home/ooiuser/data/proc"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		LogFormat:        envOrDefault("LOG_FORMAT", "json"),
		MetricsAddr:      os.Getenv("METRICS_ADDR"),
		ShutdownTimeout:  shutdownTimeout,
		CalAssetURL:      os.Getenv("CAL_URL"),
		CalTimeout:       calTimeout,
		RDBHost:          envOrDefault("RDB_HOST", "ooi-rdb.whoi.edu"),
		RDBToken:         os.Getenv("RDB_TOKEN"),
		RDBTimeout:       rdbTimeout,
		KafkaBrokers:     brokers,
		KafkaNotifyTopic: envOrDefault("KAFKA_NOTIFY_TOPIC", "dataset-updates"),
		NotifyEnabled:    notifyEnabled,
	}

	if cfg.NotifyEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("NOTIFY_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.NotifyEnabled && cfg.KafkaNotifyTopic == "" {
		return nil, errors.New("KAFKA_NOTIFY_TOPIC is required when notification is enabled")
	}

	return cfg, nil
}

// envOrDefault returns the named environment variable, or the fallback when
// unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseDuration reads a positive duration from the environment.
func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

// parseBrokers splits a comma-separated broker list, trimming whitespace and
// dropping empty entries.
func parseBrokers(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}
