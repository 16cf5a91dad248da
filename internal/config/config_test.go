package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_NAME", "ADDR", "TURN_TIMEOUT", "DATABASE_URL"} {
		t.Setenv(key, "") // register restore, then clear entirely
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "battlegrid", cfg.ServerName)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, 10*time.Second, cfg.TurnTimeout)
	require.Empty(t, cfg.DatabaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_NAME", "arena1")
	t.Setenv("TURN_TIMEOUT", "30s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "arena1", cfg.ServerName)
	require.Equal(t, 30*time.Second, cfg.TurnTimeout)
}
