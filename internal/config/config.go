// Package config builds the service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // zone database for minimal container images

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// DisplayTimeZone renders row dates and interprets zoneless date strings.
	DisplayTimeZone *time.Location
	// ResourcesFile optionally overrides the built-in resource catalog.
	ResourcesFile string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	cfg := &Config{
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic: sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-earthquakes"),
		KafkaSinkTopic:   sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "earthquake-display-rows"),
		KafkaGroupID:     sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "quake-report"),
		HTTPAddr:         sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:         sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ResourcesFile:    os.Getenv("RESOURCES_FILE"),
	}

	var err error
	if cfg.ShutdownTimeout, err = sharedcfg.ParseShutdownTimeout(); err != nil {
		return nil, err
	}
	if cfg.BatchSize, err = sharedcfg.ParseBatchSize(); err != nil {
		return nil, err
	}
	if cfg.BatchFlushInterval, err = sharedcfg.ParseBatchFlushInterval(); err != nil {
		return nil, err
	}
	if cfg.DisplayTimeZone, err = ParseTimeZone(sharedcfg.EnvOrDefault("DISPLAY_TIMEZONE", "UTC")); err != nil {
		return nil, fmt.Errorf("DISPLAY_TIMEZONE: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch {
	case len(c.KafkaBrokers) == 0:
		return errors.New("KAFKA_BROKERS is required")
	case c.KafkaSourceTopic == "":
		return errors.New("KAFKA_SOURCE_TOPIC is required")
	case c.KafkaSinkTopic == "":
		return errors.New("KAFKA_SINK_TOPIC is required")
	case c.KafkaSourceTopic == c.KafkaSinkTopic:
		return errors.New("KAFKA_SINK_TOPIC must differ from KAFKA_SOURCE_TOPIC")
	}
	return nil
}

// ParseTimeZone resolves an IANA zone name such as "America/Los_Angeles".
// "Local" selects the host zone; an empty name means UTC.
func ParseTimeZone(name string) (*time.Location, error) {
	tz, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", name, err)
	}
	return tz, nil
}
