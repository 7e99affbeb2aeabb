package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"chirp/config"
	"chirp/database"
	"chirp/handlers"
	"chirp/routes"
	"chirp/store/mongostore"
)

func main() {
	log.Println("Starting Chirp API server...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; relying on environment")
	}

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set")
	}

	// ===== CONNECT TO MONGODB WITH RETRY =====
	log.Println("Connecting to MongoDB...")

	var dbErr error
	for i := 1; i <= 3; i++ {
		if err := database.Connect(cfg.MongoURI, cfg.MongoDatabase); err != nil {
			dbErr = err
			log.Printf("MongoDB connection attempt %d failed: %v", i, err)
			time.Sleep(2 * time.Second)
			continue
		}
		dbErr = nil
		break
	}
	if dbErr != nil {
		log.Fatal("Failed to connect to MongoDB: ", dbErr)
	}
	defer database.Disconnect()

	// ===== GIN MODE =====
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ===== WIRING =====
	tweetStore := mongostore.NewTweetStore(database.DB)
	userStore := mongostore.NewUserStore(database.DB)

	authHandler := handlers.NewAuthHandler(userStore, cfg.JWTSecret)
	authHandler.ConfigureGitHub(cfg.GitHubClientID, cfg.GitHubClientSecret, cfg.GitHubRedirectURL)

	var imageUploader handlers.ImageUploader
	if cfg.CloudinaryURL != "" {
		uploader, err := handlers.NewCloudinaryUploader(cfg.CloudinaryURL)
		if err != nil {
			log.Fatal("Cloudinary configuration error: ", err)
		}
		imageUploader = uploader
	} else {
		log.Println("CLOUDINARY_URL not set - image uploads disabled")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("Invalid REDIS_URL: ", err)
		}
		redisClient = redis.NewClient(opts)
	} else {
		log.Println("REDIS_URL not set - rate limiting disabled")
	}

	router := routes.SetupRouter(routes.Deps{
		JWTSecret: cfg.JWTSecret,
		Tweets:    handlers.NewTweetHandler(tweetStore),
		Auth:      authHandler,
		Upload:    handlers.NewUploadHandler(imageUploader),
		Redis:     redisClient,
	})

	// ===== SERVER =====
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}

	log.Println("Server stopped gracefully")
}
