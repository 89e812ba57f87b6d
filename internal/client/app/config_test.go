package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PASSAGE_AUTH_URL", "")
	t.Setenv("PASSAGE_EMULATOR", "")
	t.Setenv("PASSAGE_DATA_FILE", "")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "")
	t.Setenv("LOG_FORMAT", "")

	cfg := LoadConfig()
	require.False(t, cfg.Emulator)
	require.Equal(t, "/tmp/xdg/passage/passage.db", cfg.DataFile)
	require.Equal(t, "text", cfg.LogFormat)
	require.Equal(t, 5*time.Second, cfg.ShutdownGracePeriod)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PASSAGE_AUTH_URL", "https://auth.example.com")
	t.Setenv("PASSAGE_API_KEY", "anon")
	t.Setenv("PASSAGE_EMULATOR", "true")
	t.Setenv("PASSAGE_DATA_FILE", ":memory:")
	t.Setenv("SHUTDOWN_GRACE_PERIOD", "not-a-duration")

	cfg := LoadConfig()
	require.Equal(t, "https://auth.example.com", cfg.AuthURL)
	require.Equal(t, "anon", cfg.APIKey)
	require.True(t, cfg.Emulator)
	require.Equal(t, ":memory:", cfg.DataFile)
	require.Equal(t, 5*time.Second, cfg.ShutdownGracePeriod, "unparsable values fall back")
}
