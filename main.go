package main

import (
	"fmt"
	"log"
	"os"

	"mdrive/config"
	"mdrive/database"
	"mdrive/handlers"
	"mdrive/logger"
	"mdrive/middleware"
	"mdrive/models"
	"mdrive/repositories"
	"mdrive/services"
	"mdrive/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	log.Println("starting mdrive service")

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	logger.SetLevel(cfg.Log.Level)

	if err := database.InitMySQL(&cfg.Database); err != nil {
		log.Fatalf("init mysql failed: %v", err)
	}

	if err := database.DB.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.File{},
	); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}
	log.Println("database migration completed")

	if err := database.InitRedis(&cfg.Redis); err != nil {
		log.Fatalf("init redis failed: %v", err)
	}

	blobStore, err := buildBlobStore(cfg)
	if err != nil {
		log.Fatalf("init blob store failed: %v", err)
	}

	repoContainer := repositories.NewGormRepositories(database.DB, database.RedisClient).BuildContainer()
	serviceContainer := services.NewContainer(repoContainer, blobStore)
	handlers.SetServices(serviceContainer)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestLogger())
	if cfg.RateLimit.Enabled {
		r.Use(middleware.NewRateLimiter(cfg.RateLimit).Middleware())
	}
	if cfg.Storage.Driver == "local" {
		r.Static("/static", cfg.Storage.BasePath)
	}
	setupRoutes(r, repoContainer)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("server listening on http://%s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server start failed: %v", err)
	}
}

func buildBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.Storage.Driver {
	case "s3":
		return storage.NewS3Store(cfg.Storage.S3), nil
	case "local":
		if err := os.MkdirAll(cfg.Storage.BasePath, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
		return storage.NewLocalStore(cfg.Storage.BasePath, cfg.Storage.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func setupRoutes(r *gin.Engine, repos repositories.Container) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	api.GET("/health", handlers.HealthCheck)

	auth := api.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
	}

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(repos.TokenBlacklist))
	{
		protected.POST("/auth/logout", handlers.Logout)
		protected.GET("/auth/profile", handlers.GetProfile)

		protected.GET("/user/storage", handlers.GetStorage)
		protected.PATCH("/user/profile", handlers.UpdateUsername)
		protected.DELETE("/user/profile", handlers.DeleteAccount)

		protected.POST("/folders", handlers.CreateFolder)
		protected.GET("/folders/contents", handlers.GetFolderContents)
		protected.GET("/folders/:id/breadcrumbs", handlers.GetBreadcrumbs)
		protected.PUT("/folders/:id", handlers.RenameFolder)
		protected.PUT("/folders/:id/move", handlers.MoveFolder)
		protected.DELETE("/folders/:id", handlers.DeleteFolder)

		protected.POST("/files/upload", handlers.UploadFile)
		protected.PUT("/files/:id/rename", handlers.RenameFile)
		protected.PUT("/files/:id/move", handlers.MoveFile)
		protected.DELETE("/files/:id", handlers.DeleteFile)

		protected.GET("/search", handlers.Search)
	}
}
