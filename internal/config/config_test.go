package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VOYAGER_DATA_DIR", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8010, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, int64(250), cfg.MonthlyQuotaCap)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
	assert.Equal(t, 90*time.Second, cfg.PollDeadline)
	assert.Equal(t, 4, cfg.StalenessThreshold)
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("VOYAGER_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9100")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("POLL_INTERVAL", "500ms")
	t.Setenv("SERP_API_MONTHLY_CAP", "50")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, int64(50), cfg.MonthlyQuotaCap)
}

func TestValidateRejectsBadPollerTuning(t *testing.T) {
	cfg := &Config{PollInterval: time.Second, PollDeadline: time.Minute, StalenessThreshold: 1}
	require.NoError(t, cfg.Validate())

	cfg.PollDeadline = 0
	require.Error(t, cfg.Validate())

	cfg.PollDeadline = time.Minute
	cfg.StalenessThreshold = 0
	require.Error(t, cfg.Validate())
}

func TestStaticPath(t *testing.T) {
	cfg := &Config{DataDir: "/srv/voyager/data"}
	assert.Equal(t, "/srv/voyager/data/award-sweet-spots.json", cfg.StaticPath("award-sweet-spots.json"))
}
