package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"nbcards/internal/api/middleware"
	"nbcards/internal/auth"
	"nbcards/internal/cards"
)

// RegisterRoutes 注册 API 路由。公开名片页不做鉴权，后台管理路由走 JWT。
func RegisterRoutes(
	router *gin.Engine,
	cardService *cards.Service,
	authService *auth.AuthService,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
) {
	cardHandler := NewCardHandler(cardService)
	dashboardHandler := NewDashboardHandler(cardService, redisClient, logger)
	authHandler := NewAuthHandler(authService, redisClient, logger)
	authMiddleware := middleware.AuthMiddleware(authService)

	v1 := router.Group("/v1")
	{
		v1.POST("/auth/login", authHandler.Login)
		v1.GET("/profiles/:slug", cardHandler.PublicProfile)

		cardGroup := v1.Group("/cards")
		cardGroup.Use(authMiddleware)
		{
			cardGroup.POST("", cardHandler.CreateCard)
			cardGroup.GET("", cardHandler.ListCards)
			cardGroup.GET("/:id", cardHandler.GetCard)
			cardGroup.PUT("/:id", cardHandler.UpdateCard)
			cardGroup.DELETE("/:id", cardHandler.DeleteCard)
		}

		dashboardGroup := v1.Group("/dashboard")
		dashboardGroup.Use(authMiddleware)
		{
			dashboardGroup.GET("/stats", dashboardHandler.Stats)
			dashboardGroup.GET("/weekly", dashboardHandler.Weekly)
		}
	}
}
