package router

import (
	"net/http"

	"user-fixture-service/internal/adapter/gin/handler"
	"user-fixture-service/internal/adapter/gin/middleware"
	"user-fixture-service/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	limiter *ratelimit.Limiter,
	serviceName string,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.RateLimiter(limiter))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	})

	v1 := router.Group("/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("", userHandler.AddUser)
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.FetchUser)
		}
		v1.GET("/emails/validate", userHandler.ValidateEmail)
		v1.POST("/names/format", userHandler.FormatName)
		v1.GET("/config", userHandler.LoadConfig)
	}

	return router
}
