package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"pdfchat/internal/ai"
	"pdfchat/internal/app"
	"pdfchat/internal/cache"
	"pdfchat/internal/config"
	mysqlClient "pdfchat/internal/platform/mysql"
	rabbitmqClient "pdfchat/internal/platform/rabbitmq"
	redisClient "pdfchat/internal/platform/redis"
	sqliteClient "pdfchat/internal/platform/sqlite"
	"pdfchat/internal/repository"
	"pdfchat/internal/summarizer"
)

type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	DB          *gorm.DB
	Redis       *redis.Client
	MQConn      *amqp.Connection
	ChatService *app.ChatService

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}
	return Build(ctx, cfg)
}

// Build opens every configured dependency and wires the chat service. On
// error, whatever was already opened is closed.
func Build(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	a := &App{
		Config:    cfg,
		Logger:    NewLogger(cfg.App.LogLevel, cfg.App.LogFormat),
		StartedAt: time.Now(),
	}
	slog.SetDefault(a.Logger)
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.DB, err = openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := repository.AutoMigrate(a.DB); err != nil {
		return nil, err
	}

	sessionRepo := repository.NewSessionRepository(a.DB)
	messageRepo := repository.NewMessageRepository(a.DB)

	var snapshot app.SessionsSnapshot
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		a.Redis, err = redisClient.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		snapshot = cache.NewRedisSessionsCache(a.Redis, cfg.Redis.KeyPrefix, sessionRepo.List, cfg.SessionsTTL())
	default:
		snapshot = cache.NewSessionsCache(sessionRepo.List, cfg.SessionsTTL(), time.Now)
	}

	var events app.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		a.MQConn, err = rabbitmqClient.New(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.EventsQueue)
		if err != nil {
			return nil, err
		}
		events = rabbitmqClient.NewEventPublisher(a.MQConn, cfg.RabbitMQ.EventsQueue)
	}

	llm := ai.NewLLM(
		ai.NewOpenAICompatibleClient(cfg.LLMTimeout()),
		ai.ChatConfig{BaseURL: cfg.LLM.BaseURL, APIKey: cfg.LLM.APIKey, Model: cfg.LLM.Model},
	)
	pdfSummarizer := summarizer.New(llm, summarizer.Options{
		ChunkSize:      cfg.LLM.ChunkSize,
		ChunkOverlap:   cfg.LLM.ChunkOverlap,
		MaxConcurrency: cfg.LLM.MaxConcurrency,
	})

	a.ChatService = app.NewChatService(
		sessionRepo,
		messageRepo,
		snapshot,
		cache.NewDocumentCache(cfg.Cache.DocumentCapacity),
		pdfSummarizer,
		events,
	)

	a.Logger.Info("dependencies ready",
		"database", cfg.Database.Driver,
		"sessions_cache", cfg.Cache.Backend,
		"events", a.MQConn != nil,
		"model", cfg.LLM.Model,
	)
	return a, nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	switch cfg.Database.Driver {
	case config.DatabaseDriverMySQL:
		return mysqlClient.New(ctx, cfg.MySQLDSN())
	default:
		return sqliteClient.New(ctx, cfg.Database.Path)
	}
}

func NewLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func (a *App) Close() error {
	var closeErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil && !a.MQConn.IsClosed() {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
