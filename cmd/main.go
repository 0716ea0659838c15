package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ECE496-Team-DASH/DashRAG/internal/db"
	"github.com/ECE496-Team-DASH/DashRAG/internal/graphrag"
	"github.com/ECE496-Team-DASH/DashRAG/internal/handlers"
	"github.com/ECE496-Team-DASH/DashRAG/internal/jobs"
	"github.com/ECE496-Team-DASH/DashRAG/internal/logger"
	"github.com/ECE496-Team-DASH/DashRAG/internal/repos"
	"github.com/ECE496-Team-DASH/DashRAG/internal/server"
	"github.com/ECE496-Team-DASH/DashRAG/internal/services"
	"github.com/ECE496-Team-DASH/DashRAG/internal/sse"
	"github.com/ECE496-Team-DASH/DashRAG/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	dataRoot := utils.GetEnv("DATA_ROOT", "./data", log)
	engineURL := utils.GetEnv("GRAPHRAG_ENGINE_URL", "http://localhost:8600", log)
	engineProvider := utils.GetEnv("GRAPHRAG_PROVIDER", "openai", log)
	engineTimeoutMin := utils.GetEnvAsInt("GRAPHRAG_TIMEOUT_MINUTES", 30, log)
	workerConcurrency := utils.GetEnvAsInt("WORKER_CONCURRENCY", 4, log)
	maxUploadMB := utils.GetEnvAsInt("MAX_UPLOAD_MB", 100, log)
	maxSearchResults := utils.GetEnvAsInt("ARXIV_MAX_RESULTS", 25, log)
	allowOrigins := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log)

	if err := os.MkdirAll(dataRoot, 0o755); err != nil {
		log.Error("Could not create data root", "path", dataRoot, "error", err)
		os.Exit(1)
	}

	// Database
	dbService, err := db.NewDatabaseService(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err = dbService.AutoMigrateAll(); err != nil {
		log.Error("Auto migration failed", "error", err)
		os.Exit(1)
	}
	gormDB := dbService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	sessionRepo := repos.NewSessionRepo(gormDB, log)
	documentRepo := repos.NewDocumentRepo(gormDB, log)
	messageRepo := repos.NewMessageRepo(gormDB, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewHub(log)

	// Services
	log.Info("Setting up Services from main...")
	engineFactory := graphrag.NewHTTPFactory(graphrag.Config{
		BaseURL:  engineURL,
		Provider: graphrag.Provider(engineProvider),
		Timeout:  time.Duration(engineTimeoutMin) * time.Minute,
	}, log)
	textExtractService := services.NewTextExtractService(log)
	paperService := services.NewPaperService(log, maxSearchResults)
	notifier := services.NewDocumentNotifier(log, sseHub)
	sessionService := services.NewSessionService(gormDB, log, dataRoot, sessionRepo, documentRepo, messageRepo)
	documentService := services.NewDocumentService(log, dataRoot, maxUploadMB, sessionRepo, documentRepo)
	messageService := services.NewMessageService(log, dataRoot, sessionRepo, documentRepo, messageRepo, engineFactory)

	// Jobs
	log.Info("Setting up job runner from main...")
	runner := jobs.NewRunner(log, dataRoot, documentRepo, messageRepo, engineFactory, textExtractService, paperService, notifier)
	pool := jobs.NewPool(log, runner, workerConcurrency)

	// Handlers
	log.Info("Setting up handlers from main...")
	sessionHandler := handlers.NewSessionHandler(log, sessionService)
	documentHandler := handlers.NewDocumentHandler(log, documentService, paperService, pool)
	messageHandler := handlers.NewMessageHandler(log, messageService, pool)
	sseHandler := handlers.NewSSEHandler(log, sseHub)

	// Router
	log.Info("Setting up router from main...")
	var origins []string
	if allowOrigins != "" {
		origins = strings.Split(allowOrigins, ",")
	}
	router := server.NewRouter(server.RouterConfig{
		SessionHandler:  sessionHandler,
		DocumentHandler: documentHandler,
		MessageHandler:  messageHandler,
		SSEHandler:      sseHandler,
		AllowOrigins:    origins,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
