package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Auth.APIKey)
	assert.Equal(t, "X-API-Key", cfg.Auth.HeaderName)
	assert.Equal(t, DatabaseDriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "chat_history.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Second, cfg.SessionsTTL())
	assert.Equal(t, "llama3.2:3b", cfg.LLM.Model)
	assert.Equal(t, 4000, cfg.LLM.ChunkSize)
	assert.Equal(t, 200, cfg.LLM.ChunkOverlap)
	assert.Equal(t, time.Duration(0), cfg.LLMTimeout())
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.Equal(t, 4, cfg.Redis.PoolSize)
	assert.Equal(t, "pdfchat:", cfg.Redis.KeyPrefix)
	assert.Zero(t, cfg.LLM.MaxConcurrency)
}

func TestLoad_RedisAndConcurrencyFromEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("API_KEY", "secret")
	t.Setenv("REDIS_POOL_SIZE", "8")
	t.Setenv("REDIS_KEY_PREFIX", "staging:")
	t.Setenv("LLM_MAX_CONCURRENCY", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Redis.PoolSize)
	assert.Equal(t, "staging:", cfg.Redis.KeyPrefix)
	assert.Equal(t, 2, cfg.LLM.MaxConcurrency)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
port = 9000

[auth]
api_key = "from-file"

[database]
path = "/tmp/from-file.db"

[cache]
backend = "redis"
sessions_ttl_seconds = 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_PATH", "/tmp/from-env.db")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, "from-file", cfg.Auth.APIKey)
	assert.Equal(t, "/tmp/from-env.db", cfg.Database.Path)
	assert.Equal(t, CacheBackendRedis, cfg.Cache.Backend)
	assert.Equal(t, 10*time.Second, cfg.SessionsTTL())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: true},
		{name: "unknown cache backend", mutate: func(c *Config) { c.Cache.Backend = "memcached" }, wantErr: true},
		{name: "mysql driver", mutate: func(c *Config) { c.Database.Driver = DatabaseDriverMySQL }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Auth.APIKey = "secret"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.Database.MySQL.Password = "pw"
	assert.Equal(t, "root:pw@tcp(127.0.0.1:3306)/pdfchat?parseTime=true&loc=Local&charset=utf8mb4", cfg.MySQLDSN())
}
