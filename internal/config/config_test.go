package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefault(t *testing.T) {
	cfg, err := LoadDefault()
	require.NoError(t, err)

	assert.Equal(t, "qrguard-lab", cfg.App.Name)
	assert.Equal(t, 8090, cfg.Server.HTTPPort)
	assert.Equal(t, 9090, cfg.Server.GRPCPort)
	assert.Equal(t, DefaultThreshold, cfg.Scoring.Threshold)
	assert.Equal(t, DefaultPaymentLinkPrefix, cfg.Payment.LinkPrefix)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, 10*time.Minute, cfg.Cache.AssessmentTTL)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Empty(t, cfg.Auth.APIKeys)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  http_port: 18090
scoring:
  threshold: 0.7
  weights_file: /etc/qrguard-lab/weights.yaml
cache:
  assessment_ttl: 90s
auth:
  api_keys: ["k1", "k2"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 18090, cfg.Server.HTTPPort)
	assert.Equal(t, 0.7, cfg.Scoring.Threshold)
	assert.Equal(t, "/etc/qrguard-lab/weights.yaml", cfg.Scoring.WeightsFile)
	assert.Equal(t, 90*time.Second, cfg.Cache.AssessmentTTL)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Auth.APIKeys)
	// untouched sections keep defaults
	assert.Equal(t, DefaultPaymentLinkPrefix, cfg.Payment.LinkPrefix)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("QRGUARD_SCORING_THRESHOLD", "0.25")
	t.Setenv("QRGUARD_REDIS_ENABLED", "true")
	t.Setenv("QRGUARD_REDIS_HOST", "cache.internal")

	cfg, err := LoadDefault()
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.Scoring.Threshold)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "explicit missing file")

	_, err = Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err, "malformed file")

	_, err = Load(writeConfig(t, "scoring:\n  threshold: 1.5\n"))
	assert.ErrorContains(t, err, "scoring.threshold")

	_, err = Load(writeConfig(t, "payment:\n  link_prefix: \"\"\n"))
	assert.ErrorContains(t, err, "payment.link_prefix")
}
