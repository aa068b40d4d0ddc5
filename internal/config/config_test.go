package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	want := Config{
		KafkaBrokers:       []string{"localhost:9092"},
		KafkaSourceTopic:   "raw-earthquakes",
		KafkaSinkTopic:     "earthquake-display-rows",
		KafkaGroupID:       "quake-report",
		HTTPAddr:           ":8080",
		LogLevel:           "info",
		LogFormat:          "json",
		ShutdownTimeout:    10 * time.Second,
		BatchSize:          50,
		BatchFlushInterval: 500 * time.Millisecond,
		DisplayTimeZone:    time.UTC,
	}
	assert.Equal(t, want, *cfg)
}

func TestLoad_Overrides(t *testing.T) {
	env := map[string]string{
		"KAFKA_BROKERS":        "broker1:9092,broker2:9092",
		"KAFKA_SOURCE_TOPIC":   "quakes-in",
		"KAFKA_SINK_TOPIC":     "quakes-out",
		"KAFKA_GROUP_ID":       "formatter-2",
		"HTTP_ADDR":            ":9090",
		"LOG_LEVEL":            "debug",
		"LOG_FORMAT":           "text",
		"SHUTDOWN_TIMEOUT":     "30s",
		"BATCH_SIZE":           "100",
		"BATCH_FLUSH_INTERVAL": "1s",
		"DISPLAY_TIMEZONE":     "Etc/GMT+8",
		"RESOURCES_FILE":       "/etc/quake/resources.yaml",
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "quakes-in", cfg.KafkaSourceTopic)
	assert.Equal(t, "quakes-out", cfg.KafkaSinkTopic)
	assert.Equal(t, "formatter-2", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, time.Second, cfg.BatchFlushInterval)
	assert.Equal(t, "Etc/GMT+8", cfg.DisplayTimeZone.String())
	assert.Equal(t, "/etc/quake/resources.yaml", cfg.ResourcesFile)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "not-a-duration"}, "SHUTDOWN_TIMEOUT"},
		{"batch size", map[string]string{"BATCH_SIZE": "0"}, "BATCH_SIZE"},
		{"flush interval", map[string]string{"BATCH_FLUSH_INTERVAL": "soon"}, "BATCH_FLUSH_INTERVAL"},
		{"time zone", map[string]string{"DISPLAY_TIMEZONE": "Mars/Olympus_Mons"}, "DISPLAY_TIMEZONE"},
		{"same topics", map[string]string{"KAFKA_SOURCE_TOPIC": "quakes", "KAFKA_SINK_TOPIC": "quakes"}, "must differ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseTimeZone(t *testing.T) {
	tz, err := ParseTimeZone("America/Los_Angeles")
	require.NoError(t, err)
	assert.Equal(t, "America/Los_Angeles", tz.String())

	tz, err = ParseTimeZone("")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, tz)

	_, err = ParseTimeZone("Nowhere/Special")
	assert.ErrorContains(t, err, `invalid time zone "Nowhere/Special"`)
}
