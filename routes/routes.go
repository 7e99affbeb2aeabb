package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"chirp/handlers"
	"chirp/middleware"
)

type Deps struct {
	JWTSecret string
	Tweets    *handlers.TweetHandler
	Auth      *handlers.AuthHandler
	Upload    *handlers.UploadHandler
	Redis     *redis.Client
}

func SetupRouter(d Deps) *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:8080"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	api.Use(middleware.RateLimit(d.Redis, 60, time.Minute))

	// Public routes (no auth required)
	api.POST("/signup", d.Auth.Signup)
	api.POST("/login", d.Auth.Login)
	api.GET("/auth/github/url", d.Auth.GitHubAuthURL)
	api.GET("/auth/github/callback", d.Auth.GitHubCallback)

	// The global feed is a public read, but ?checkLimit=true needs the
	// caller's identity.
	api.GET("/tweets", middleware.OptionalAuth(d.JWTSecret), d.Tweets.List)
	api.GET("/tweets/search", d.Tweets.Search)
	api.POST("/upload", d.Upload.Upload)

	// Protected routes group
	protected := api.Group("")
	protected.Use(middleware.RequireAuth(d.JWTSecret))

	protected.POST("/tweets", d.Tweets.Create)
	protected.DELETE("/tweets/:id", d.Tweets.Delete)
	protected.GET("/tweets/profile", d.Tweets.Profile)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
