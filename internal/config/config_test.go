package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, 8080, cfg.HTTP.Port)
	require.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)

	require.Equal(t, "eduhub-media", cfg.Storage.Bucket)
	require.Equal(t, 15*time.Minute, cfg.Storage.PresignTTL)

	require.Equal(t, 15*time.Minute, cfg.Security.JWTAccessTTL)
	require.Equal(t, 30*24*time.Hour, cfg.Security.RefreshTTL)

	require.Equal(t, 12, cfg.Gallery.PageSize)
	require.Equal(t, 30, cfg.Gallery.ImageLimit)
	require.Equal(t, 4, cfg.Gallery.EagerResolve)
	require.Equal(t, 3, cfg.Gallery.ResolveAttempts)
	require.Equal(t, time.Second, cfg.Gallery.RetryDelay)
}

func TestLoadReadsEnvironmentOverrides(t *testing.T) {
	t.Setenv("EDUHUB_HTTP_PORT", "9090")
	t.Setenv("EDUHUB_GALLERY_IMAGELIMIT", "10")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.HTTP.Port)
	require.Equal(t, 10, cfg.Gallery.ImageLimit)
}
