package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Dependencies lists what the health check probes. Redis and MQConn are nil
// when the corresponding feature is disabled.
type Dependencies struct {
	AppName   string
	Env       string
	StartedAt time.Time
	DB        *gorm.DB
	Redis     *redis.Client
	MQConn    *amqp.Connection
}

type HealthHandler struct {
	deps Dependencies
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Enabled bool   `json:"enabled"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(deps Dependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := h.checkDatabase(ctx)
	redisStatus := h.checkRedis(ctx)
	rmqStatus := h.checkRabbitMQ()

	allOK := dbStatus.OK && (redisStatus.OK || !redisStatus.Enabled) && (rmqStatus.OK || !rmqStatus.Enabled)
	statusCode := http.StatusOK
	if !allOK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":        h.deps.AppName,
		"env":        h.deps.Env,
		"uptime_sec": int(time.Since(h.deps.StartedAt).Seconds()),
		"dependencies": gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
			"rabbitmq": rmqStatus,
		},
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) dependencyStatus {
	if h.deps.DB == nil {
		return dependencyStatus{Enabled: true, Message: "not configured"}
	}
	sqlDB, err := h.deps.DB.DB()
	if err != nil {
		return dependencyStatus{Enabled: true, Message: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dependencyStatus{Enabled: true, Message: err.Error()}
	}
	return dependencyStatus{OK: true, Enabled: true}
}

func (h *HealthHandler) checkRedis(ctx context.Context) dependencyStatus {
	if h.deps.Redis == nil {
		return dependencyStatus{}
	}
	if err := h.deps.Redis.Ping(ctx).Err(); err != nil {
		return dependencyStatus{Enabled: true, Message: err.Error()}
	}
	return dependencyStatus{OK: true, Enabled: true}
}

func (h *HealthHandler) checkRabbitMQ() dependencyStatus {
	if h.deps.MQConn == nil {
		return dependencyStatus{}
	}
	if h.deps.MQConn.IsClosed() {
		return dependencyStatus{Enabled: true, Message: "connection closed"}
	}
	return dependencyStatus{OK: true, Enabled: true}
}
