package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "mysql", cfg.StoreDriver)
	assert.Equal(t, "placeholder", cfg.IdentityMode)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL())
	assert.Equal(t, 10*time.Minute, cfg.SweepInterval)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SWEEP_INTERVAL", "90s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "mongo", cfg.StoreDriver)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 90*time.Second, cfg.SweepInterval)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("IDENTITY_MODE=jwt\nJWT_TTL_MIN=5\n"), 0o600))
	t.Cleanup(func() {
		_ = os.Unsetenv("IDENTITY_MODE")
		_ = os.Unsetenv("JWT_TTL_MIN")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "jwt", cfg.IdentityMode)
	assert.Equal(t, 5*time.Minute, cfg.JWTTTL())
}
