package http

import (
	"github.com/gin-gonic/gin"

	"pdfchat/internal/bootstrap"
	"pdfchat/internal/transport/http/handler"
	"pdfchat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(app.Logger), gin.Recovery(), middleware.CORS())

	healthHandler := handler.NewHealthHandler(handler.Dependencies{
		AppName:   app.Config.App.Name,
		Env:       app.Config.App.Env,
		StartedAt: app.StartedAt,
		DB:        app.DB,
		Redis:     app.Redis,
		MQConn:    app.MQConn,
	})
	router.GET("/healthz", healthHandler.Check)

	chatHandler := handler.NewChatHandler(app.ChatService, app.Config.MaxUploadBytes())

	api := router.Group("/")
	api.Use(middleware.APIKey(app.Config.Auth.HeaderName, app.Config.Auth.APIKey))
	api.POST("/summarize", chatHandler.Summarize)
	api.POST("/chat", chatHandler.Chat)
	api.GET("/sessions", chatHandler.ListSessions)
	api.GET("/history/:session_id", chatHandler.GetHistory)
	api.GET("/reload_session/:session_id", chatHandler.ReloadSession)

	return router
}
