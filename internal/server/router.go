package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ECE496-Team-DASH/DashRAG/internal/handlers"
)

type RouterConfig struct {
	SessionHandler  *handlers.SessionHandler
	DocumentHandler *handlers.DocumentHandler
	MessageHandler  *handlers.MessageHandler
	SSEHandler      *handlers.SSEHandler
	AllowOrigins    []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Sessions
		api.POST("/sessions", cfg.SessionHandler.Create)
		api.GET("/sessions", cfg.SessionHandler.List)
		api.GET("/sessions/:sessionID", cfg.SessionHandler.Get)
		api.DELETE("/sessions/:sessionID", cfg.SessionHandler.Delete)

		// Documents
		api.GET("/sessions/:sessionID/documents", cfg.DocumentHandler.List)
		api.POST("/sessions/:sessionID/documents/upload", cfg.DocumentHandler.Upload)
		api.POST("/sessions/:sessionID/documents/arxiv", cfg.DocumentHandler.AddPaper)
		api.GET("/documents/:documentID", cfg.DocumentHandler.Get)
		api.GET("/papers/search", cfg.DocumentHandler.SearchPapers)

		// Messages
		api.GET("/sessions/:sessionID/messages", cfg.MessageHandler.List)
		api.POST("/sessions/:sessionID/messages", cfg.MessageHandler.Create)
		api.POST("/sessions/:sessionID/messages/stream", cfg.MessageHandler.Stream)

		// SSE
		api.GET("/sessions/:sessionID/events", cfg.SSEHandler.Stream)
	}

	return router
}
