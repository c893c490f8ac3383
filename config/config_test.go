package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	// Load works off the global viper, so each test starts clean.
	viper.Reset()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(contents), 0o644))
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeConfig(t, `
app:
  environment: develop
  host: localhost
capture:
  storage_dir: /var/lib/voice-capture/chunks
  chunk_interval_seconds: 60
  sample_rate: 44100
  channels: 2
database:
  path: /var/lib/voice-capture/voice.db
server:
  port: "9090"
  workers: 4
rabbitmq:
  enabled: true
  host: mq.internal
  port: 5672
  user: guest
  pass: guest
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "develop", cfg.App.Environment)
	assert.Equal(t, "/var/lib/voice-capture/chunks", cfg.Capture.StorageDir)
	assert.Equal(t, time.Minute, cfg.Capture.ChunkInterval)
	assert.Equal(t, 44100, cfg.Capture.SampleRate)
	assert.Equal(t, 2, cfg.Capture.Channels)
	assert.Equal(t, "/var/lib/voice-capture/voice.db", cfg.DBPath)
	assert.Equal(t, "9090", cfg.Server.HttpPort)
	assert.Equal(t, 4, cfg.Server.Workers)

	require.NotNil(t, cfg.Queue)
	assert.True(t, cfg.Queue.Enabled)
	assert.Equal(t, "mq.internal", cfg.Queue.Host)
	assert.Equal(t, "topic", cfg.Queue.Kind, "exchange kind defaults to topic")

	assert.Nil(t, cfg.Storage, "object storage stays off unless minio is enabled")
	assert.False(t, cfg.Archive.Enabled)
}

func TestLoadDefaults(t *testing.T) {
	dir := writeConfig(t, `
app:
  environment: develop
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "voice-capture.db", cfg.DBPath, "a config that omits the database path still gets durable storage")
	assert.Equal(t, 180*time.Second, cfg.Capture.ChunkInterval)
	assert.Equal(t, 16000, cfg.Capture.SampleRate)
	assert.Equal(t, 1, cfg.Capture.Channels)
	assert.Equal(t, "wav", cfg.Capture.Format)
	assert.Equal(t, "synthetic", cfg.Capture.Source)
	assert.Equal(t, "8080", cfg.Server.HttpPort)
	assert.Equal(t, 2, cfg.Server.Workers)
}
