package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "GO_ENV", "LOG_LEVEL", "DB_DRIVER", "DATABASE_URL",
		"POSTGRES_PORT", "MYSQL_PORT", "MYSQL_PASSWORD",
		"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME",
		"REDIS_ADDR", "REDIS_DB", "CACHE_TTL", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 5432, cfg.PostgresPort)
	assert.Equal(t, 25, cfg.DBMaxOpenConns)
	assert.Equal(t, 15*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "", cfg.RedisAddr)
	assert.False(t, cfg.IsProd())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", ":9090")
	t.Setenv("GO_ENV", "prod")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("MYSQL_PASSWORD", "secret")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.True(t, cfg.IsProd())
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad driver":     {"DB_DRIVER": "oracle"},
		"bad port":       {"POSTGRES_PORT": "abc"},
		"bad ttl":        {"CACHE_TTL": "soon"},
		"mysql no pass":  {"DB_DRIVER": "mysql"},
		"zero open conn": {"DB_MAX_OPEN_CONNS": "0"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	//godotenvは既存の変数を上書きしない
	require.NoError(t, os.Unsetenv("PORT"))
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(p, []byte("PORT=7070\n"), 0o600))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), p))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Port)
}

func TestLoadDotEnv_Malformed(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(p, []byte("POSTGRES_PASSWORD=\"unterminated\n"), 0o600))

	err := LoadDotEnv(p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), p)
}

func TestLoadDotEnv_NoneFound(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "a.env"), filepath.Join(dir, "b.env")))
}
