package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/familytree/internal/handlers"
	"github.com/alimgiray/familytree/internal/middleware"
	"github.com/alimgiray/familytree/internal/repositories"
	"github.com/alimgiray/familytree/internal/services"
	"github.com/alimgiray/familytree/internal/workers"
	"github.com/alimgiray/familytree/pkg/config"
	"github.com/alimgiray/familytree/pkg/database"
	"github.com/alimgiray/familytree/pkg/logger"
	"github.com/alimgiray/familytree/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.AppConfig

	logger.Init(cfg.Log.Level, cfg.Log.Format)

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	if err := database.Init(cfg.Database.Path); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Photo storage
	photoStore, closeStore, err := newPhotoStore(context.Background(), cfg.Storage)
	if err != nil {
		logger.Fatalf("Failed to initialize photo storage: %v", err)
	}
	defer closeStore()

	// Initialize dependencies
	userRepo := repositories.NewUserRepository(database.DB)
	personRepo := repositories.NewPersonRepository(database.DB)
	noteRepo := repositories.NewNoteRepository(database.DB)

	feedService := services.NewFeedService(personRepo, noteRepo, cfg.Feed.Workers)
	photoService := services.NewPhotoService(photoStore, cfg.Storage.MaxPhotoBytes)
	familyService := services.NewFamilyService(personRepo, noteRepo, photoService, feedService)
	noteService := services.NewNoteService(noteRepo, personRepo, feedService)
	userService := services.NewUserService(userRepo)
	exportService := services.NewExportService()

	var githubService *services.GitHubService
	if cfg.GitHub.Enabled() {
		githubService = services.NewGitHubService(cfg.GitHub)
	}

	// Initialize worker manager
	workerManager := workers.NewWorkerManager(feedService)

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	// Apply middleware
	router.Use(middleware.SessionMiddleware())

	if cfg.Storage.Backend == "local" {
		router.Static(cfg.Storage.PublicBaseURL, cfg.Storage.LocalDir)
	}

	// Setup routes
	setupRoutes(router, routeDeps{
		auth:    handlers.NewAuthHandler(userService, githubService),
		members: handlers.NewMemberHandler(familyService),
		notes:   handlers.NewNoteHandler(noteService),
		feed:    handlers.NewFeedHandler(feedService),
		export:  handlers.NewExportHandler(familyService, noteService, exportService),
		health:  handlers.NewHealthHandler(workerManager.GetWorkerStatus),
	})

	// Start workers
	if err := workerManager.StartAll(); err != nil {
		logger.Fatalf("Failed to start workers: %v", err)
	}

	// Setup server
	server := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		// Write timeout is left to handlers so the feed websocket can stay open
	}

	// Graceful shutdown
	go func() {
		logger.Infof("Server starting on :%s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.WriteTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shut down: %v", err)
	}

	workerManager.StopAll()
	logger.Info("Server stopped")
}

type routeDeps struct {
	auth    *handlers.AuthHandler
	members *handlers.MemberHandler
	notes   *handlers.NoteHandler
	feed    *handlers.FeedHandler
	export  *handlers.ExportHandler
	health  *handlers.HealthHandler
}

func setupRoutes(router *gin.Engine, h routeDeps) {
	router.GET("/health", h.health.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", h.auth.Register)
		auth.POST("/login", h.auth.Login)
		auth.POST("/anonymous", h.auth.Anonymous)
		auth.POST("/guest", h.auth.Guest)
		auth.POST("/logout", h.auth.Logout)
		auth.GET("/github", h.auth.GitHubLogin)
		auth.GET("/github/callback", h.auth.GitHubCallback)
	}

	// Protected routes
	api := router.Group("/api")
	api.Use(middleware.AuthRequired())
	{
		api.GET("/me", h.auth.Me)
		api.POST("/me/welcome", h.auth.DismissWelcome)

		api.GET("/members", h.members.List)
		api.POST("/members", h.members.Create)
		api.PUT("/members/:id", h.members.Update)
		api.DELETE("/members/:id", h.members.Delete)
		api.GET("/tree", h.members.Tree)

		api.GET("/notes", h.notes.List)
		api.POST("/notes", h.notes.Create)
		api.PUT("/notes/:id", h.notes.Update)
		api.DELETE("/notes/:id", h.notes.Delete)

		api.GET("/feed", h.feed.Stream)
		api.GET("/export.xlsx", h.export.Workbook)
	}

	router.NoRoute(handlers.NewNotFoundHandler().NotFound)
}

// newPhotoStore builds the configured photo backend and its cleanup function
func newPhotoStore(ctx context.Context, cfg config.StorageConfig) (services.ObjectStore, func(), error) {
	switch cfg.Backend {
	case "gcs":
		store, err := storage.NewGCSStore(ctx, cfg.Bucket, cfg.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { store.Close() }, nil
	case "local":
		store, err := storage.NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
