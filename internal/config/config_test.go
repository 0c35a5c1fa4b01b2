package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("security.jwtsecret", "s3cret")

	cfg, err := decode(v)

	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, cfg.Security.TrialWindow)
	assert.Equal(t, 24*time.Hour, cfg.Security.SessionTTL)
	assert.Equal(t, "s3cret", cfg.Security.NoticeSecret)
	assert.Contains(t, cfg.Storage.VideoExtensions, "mp4")
	assert.Contains(t, cfg.Storage.AttachmentExtensions, "svg")
	assert.Equal(t, int64(512<<20), cfg.Storage.MaxUploadBytes)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, "admin", cfg.Bootstrap.AdminUsername)
}

func TestDecode_Overrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("security.jwtsecret", "s3cret")
	v.Set("security.noticesecret", "other")
	v.Set("security.trialwindow", "30s")
	v.Set("storage.videoextensions", "mp4,webm")

	cfg, err := decode(v)

	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Security.TrialWindow)
	assert.Equal(t, "other", cfg.Security.NoticeSecret)
	assert.Equal(t, []string{"mp4", "webm"}, cfg.Storage.VideoExtensions)
}

func TestDecode_RequiresJWTSecret(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	_, err := decode(v)

	assert.Error(t, err)
}
