package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"hack-portal.backend/internal/config"
	"hack-portal.backend/internal/infrastructure/identity"
	"hack-portal.backend/internal/infrastructure/jobs"
	"hack-portal.backend/internal/infrastructure/repositories"
	"hack-portal.backend/internal/infrastructure/storage"
	"hack-portal.backend/internal/interfaces/http/handlers"
	"hack-portal.backend/internal/interfaces/http/middleware"
	"hack-portal.backend/internal/usecases"
	"hack-portal.backend/pkg/logger"
	"hack-portal.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	newSessionStore = redis.NewSessionStore
	runServer       = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis
	if err := initRedis(cfg.Redis.URL, cfg.Redis.PASSWORD); err != nil {
		logger.Error(context.Background(), "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(context.Background(), "Redis initialized")

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("⚠️ Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("✅ Connected to PostgreSQL via GORM")
	}

	// Initialize collaborator clients
	identityClient := identity.NewClient(cfg.Identity.BaseURL, cfg.Identity.AnonKey, cfg.Identity.Timeout)
	storageClient := storage.NewClient(cfg.Storage.BaseURL, cfg.Storage.ServiceKey, cfg.Storage.Timeout)

	// Initialize Session Store
	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	// Initialize repositories
	profileRepo := repositories.NewProfileRepository(db)
	applicationRepo := repositories.NewApplicationRepository(db)

	// Initialize usecases
	sessionResolver := usecases.NewSessionResolver(identityClient, cfg.Identity.JWTSecret)
	gateway := usecases.NewGateway(sessionResolver, profileRepo)
	profileUsecase := usecases.NewProfileUsecase(profileRepo)
	applicationUsecase := usecases.NewApplicationUsecase(applicationRepo)
	adminUsecase := usecases.NewAdminUsecase(applicationRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(identityClient, profileUsecase, sessionStore, cfg.Identity.OAuthRedirectURL)
	profileHandler := handlers.NewProfileHandler(profileUsecase)
	applicationHandler := handlers.NewApplicationHandler(applicationUsecase, storageClient, cfg.Storage.ResumeBucket)
	adminHandler := handlers.NewAdminHandler(adminUsecase, applicationUsecase, storageClient)

	// Create gateway middleware
	gatewayMiddleware := middleware.GatewayMiddleware(gateway, sessionStore)

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	statsJob := jobs.NewStatsSnapshotJob(adminUsecase)
	go statsJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:        authHandler,
		profileHandler:     profileHandler,
		applicationHandler: applicationHandler,
		adminHandler:       adminHandler,
		gatewayMiddleware:  gatewayMiddleware,
	})

	// Print all registered routes for debugging
	log.Println("📋 Registered Routes:")
	for _, route := range r.Routes() {
		log.Printf("   %s %s", route.Method, route.Path)
	}

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("🛑 Shutting down server...")
		statsJob.Stop()
		cancel()
	}()

	// Start server
	log.Printf("🚀 Hack Portal Backend starting on port %s", cfg.Server.Port)
	log.Printf("📚 API: http://localhost:%s/api/v1", cfg.Server.Port)
	log.Printf("❤️ Health: http://localhost:%s/health", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
