package config

import (
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EnvOverridesFile(t *testing.T) {
	t.Setenv("SECRETKEY_TOKEN", "from-env")
	t.Setenv("DATABASE_URI", "sqlite:///tmp/accounts.db")
	t.Setenv("DATABASE_TIMEOUT", "2s")
	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("AUTH_BCRYPTCOST", "12")
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.SecretKey.Token)
	assert.Equal(t, "sqlite:///tmp/accounts.db", cfg.Database.URI)
	assert.Equal(t, 2*time.Second, cfg.Database.Timeout)
	assert.Equal(t, 8081, cfg.HTTP.Port)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, runtime.NumCPU(), cfg.Auth.HashConcurrency)
	assert.Equal(t, "credsvc", cfg.Env.ServiceName)
}

func TestNew_LegacyAliases(t *testing.T) {
	t.Setenv("SECRETKEY_TOKEN", "")
	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("PORT", "5000")
	unsetEnv(t, "DATABASE_URI")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/userDB")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "legacy-secret", cfg.SecretKey.Token)
	assert.Equal(t, 5000, cfg.HTTP.Port)
	assert.Equal(t, "mongodb://localhost:27017/userDB", cfg.Database.URI)
}

func TestNew_DatabaseURIBeatsMongoAlias(t *testing.T) {
	t.Setenv("DATABASE_URI", "sqlite:///tmp/accounts.db")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017/userDB")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "sqlite:///tmp/accounts.db", cfg.Database.URI)
}

func TestNew_FileURIWithoutAliases(t *testing.T) {
	unsetEnv(t, "DATABASE_URI")
	unsetEnv(t, "MONGODB_URI")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, "memory://", cfg.Database.URI)
}

// unsetEnv removes key for the duration of the test and restores it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()

	// t.Setenv registers the restore; the value is then removed entirely.
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}

	applyDefaults(cfg)

	assert.Equal(t, defaultPort, cfg.HTTP.Port)
	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, defaultDatabaseURI, cfg.Database.URI)
	assert.Equal(t, defaultDatabaseTimeout, cfg.Database.Timeout)
	assert.Equal(t, defaultBcryptCost, cfg.Auth.BcryptCost)
	assert.Positive(t, cfg.Auth.HashConcurrency)
	assert.Empty(t, cfg.SecretKey.Token)
	assert.False(t, cfg.Metrics.Enabled)
}

func TestBuildReplicasFromEnv(t *testing.T) {
	t.Setenv("DATABASE_REPLICAS_0_URI", "postgres://replica-a/credsvc")
	t.Setenv("DATABASE_REPLICAS_1_URI", "postgres://replica-b/credsvc")

	assert.Equal(t, []string{"postgres://replica-a/credsvc", "postgres://replica-b/credsvc"}, buildReplicasFromEnv())
}
