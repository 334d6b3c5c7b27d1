package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DatabaseDriverSQLite = "sqlite"
	DatabaseDriverMySQL  = "mysql"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Auth     AuthConfig     `toml:"auth"`
	LLM      LLMConfig      `toml:"llm"`
	Database DatabaseConfig `toml:"database"`
	Cache    CacheConfig    `toml:"cache"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
}

type AppConfig struct {
	Name        string `toml:"name"`
	Env         string `toml:"env"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	GinMode     string `toml:"gin_mode"`
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
	MaxUploadMB int    `toml:"max_upload_mb"`
}

// AuthConfig holds the shared secret every API request must carry.
type AuthConfig struct {
	APIKey     string `toml:"api_key"`
	HeaderName string `toml:"header_name"`
}

type LLMConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	ChunkSize      int    `toml:"chunk_size"`
	ChunkOverlap   int    `toml:"chunk_overlap"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	MaxConcurrency int    `toml:"max_concurrency"`
}

type DatabaseConfig struct {
	Driver string      `toml:"driver"`
	Path   string      `toml:"path"`
	MySQL  MySQLConfig `toml:"mysql"`
}

type MySQLConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	DB       string `toml:"db"`
	Params   string `toml:"params"`
}

type CacheConfig struct {
	Backend            string `toml:"backend"`
	SessionsTTLSeconds int    `toml:"sessions_ttl_seconds"`
	DocumentCapacity   int    `toml:"document_capacity"`
}

type RedisConfig struct {
	Addr      string `toml:"addr"`
	Password  string `toml:"password"`
	DB        int    `toml:"db"`
	PoolSize  int    `toml:"pool_size"`
	KeyPrefix string `toml:"key_prefix"`
}

// RabbitMQConfig enables session event publishing when URL is set.
type RabbitMQConfig struct {
	URL         string `toml:"url"`
	EventsQueue string `toml:"events_queue"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Auth.APIKey == "" {
		return errors.New("API_KEY environment variable is not set")
	}
	switch c.Database.Driver {
	case DatabaseDriverSQLite, DatabaseDriverMySQL:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("unsupported cache backend %q", c.Cache.Backend)
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) MySQLDSN() string {
	m := c.Database.MySQL
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", m.User, m.Password, m.Host, m.Port, m.DB, m.Params)
}

func (c *Config) SessionsTTL() time.Duration {
	return time.Duration(c.Cache.SessionsTTLSeconds) * time.Second
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.App.MaxUploadMB) << 20
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "pdfchat",
			Env:         "dev",
			Host:        "0.0.0.0",
			Port:        8080,
			GinMode:     "debug",
			LogLevel:    "info",
			LogFormat:   "text",
			MaxUploadMB: 20,
		},
		Auth: AuthConfig{
			HeaderName: "X-API-Key",
		},
		LLM: LLMConfig{
			BaseURL:      "http://127.0.0.1:11434/v1",
			APIKey:       "ollama",
			Model:        "llama3.2:3b",
			ChunkSize:    4000,
			ChunkOverlap: 200,
		},
		Database: DatabaseConfig{
			Driver: DatabaseDriverSQLite,
			Path:   "chat_history.db",
			MySQL: MySQLConfig{
				Host:   "127.0.0.1",
				Port:   3306,
				User:   "root",
				DB:     "pdfchat",
				Params: "parseTime=true&loc=Local&charset=utf8mb4",
			},
		},
		Cache: CacheConfig{
			Backend:            CacheBackendMemory,
			SessionsTTLSeconds: 5,
			DocumentCapacity:   256,
		},
		Redis: RedisConfig{
			Addr:      "127.0.0.1:6379",
			PoolSize:  4,
			KeyPrefix: "pdfchat:",
		},
		RabbitMQ: RabbitMQConfig{
			EventsQueue: "pdfchat.session.events",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)
	cfg.App.LogLevel = getEnv("LOG_LEVEL", cfg.App.LogLevel)
	cfg.App.LogFormat = getEnv("LOG_FORMAT", cfg.App.LogFormat)
	cfg.App.MaxUploadMB = getEnvAsInt("APP_MAX_UPLOAD_MB", cfg.App.MaxUploadMB)

	cfg.Auth.APIKey = getEnv("API_KEY", cfg.Auth.APIKey)

	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.ChunkSize = getEnvAsInt("LLM_CHUNK_SIZE", cfg.LLM.ChunkSize)
	cfg.LLM.ChunkOverlap = getEnvAsInt("LLM_CHUNK_OVERLAP", cfg.LLM.ChunkOverlap)
	cfg.LLM.TimeoutSeconds = getEnvAsInt("LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSeconds)
	cfg.LLM.MaxConcurrency = getEnvAsInt("LLM_MAX_CONCURRENCY", cfg.LLM.MaxConcurrency)

	cfg.Database.Driver = getEnv("DATABASE_DRIVER", cfg.Database.Driver)
	cfg.Database.Path = getEnv("DATABASE_PATH", cfg.Database.Path)
	cfg.Database.MySQL.Host = getEnv("MYSQL_HOST", cfg.Database.MySQL.Host)
	cfg.Database.MySQL.Port = getEnvAsInt("MYSQL_PORT", cfg.Database.MySQL.Port)
	cfg.Database.MySQL.User = getEnv("MYSQL_USER", cfg.Database.MySQL.User)
	cfg.Database.MySQL.Password = getEnv("MYSQL_PASSWORD", cfg.Database.MySQL.Password)
	cfg.Database.MySQL.DB = getEnv("MYSQL_DB", cfg.Database.MySQL.DB)
	cfg.Database.MySQL.Params = getEnv("MYSQL_PARAMS", cfg.Database.MySQL.Params)

	cfg.Cache.Backend = getEnv("CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.SessionsTTLSeconds = getEnvAsInt("CACHE_SESSIONS_TTL_SECONDS", cfg.Cache.SessionsTTLSeconds)
	cfg.Cache.DocumentCapacity = getEnvAsInt("CACHE_DOCUMENT_CAPACITY", cfg.Cache.DocumentCapacity)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.PoolSize = getEnvAsInt("REDIS_POOL_SIZE", cfg.Redis.PoolSize)
	cfg.Redis.KeyPrefix = getEnv("REDIS_KEY_PREFIX", cfg.Redis.KeyPrefix)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.EventsQueue = getEnv("RABBITMQ_EVENTS_QUEUE", cfg.RabbitMQ.EventsQueue)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
