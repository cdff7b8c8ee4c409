package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"user-management-server/internal/auth"
	"user-management-server/internal/config"
	"user-management-server/internal/handlers"
	"user-management-server/internal/middleware"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) error {
	keys := auth.NewKeys(cfg)
	codec, err := auth.NewTokenCodec(cfg, keys)
	if err != nil {
		return err
	}
	manager := auth.NewSessionManager(db, cfg, codec)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg, manager, keys)
	userHandler := handlers.NewUserHandler(db)

	// Auth routes; logout is the only one requiring an access token
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/token", authHandler.Token)
		authRoutes.POST("/validate", authHandler.Validate)
		authRoutes.POST("/refresh", authHandler.Refresh)
		authRoutes.POST("/logout", middleware.AuthMiddleware(manager), authHandler.Logout)
		authRoutes.GET("/public-key", authHandler.PublicKey)
	}

	// User routes, all authenticated
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AuthMiddleware(manager))
	{
		userRoutes.GET("/me", userHandler.GetProfile)
		userRoutes.PUT("/me", userHandler.UpdateProfile)
		userRoutes.POST("/password/change", userHandler.ChangePassword)

		// Admin-only routes
		adminRoutes := userRoutes.Group("")
		adminRoutes.Use(middleware.AdminMiddleware())
		{
			adminRoutes.GET("", userHandler.ListUsers)
			adminRoutes.GET("/:id", userHandler.GetUserByID)
			adminRoutes.PUT("/:id", userHandler.UpdateUser)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})

	return nil
}
