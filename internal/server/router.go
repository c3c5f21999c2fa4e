package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/glimpse-social/glimpse-backend/internal/handlers"
)

type RouterConfig struct {
	FeedHandler   *handlers.FeedHandler
	MomentHandler *handlers.MomentHandler
	UserHandler   *handlers.UserHandler
	AdminHandler  *handlers.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/feed", cfg.FeedHandler.GetFeed)
		api.GET("/explore", cfg.FeedHandler.GetExplore)

		api.POST("/moments", cfg.MomentHandler.CreateMoment)
		api.DELETE("/moments/:id", cfg.MomentHandler.DeleteMoment)

		api.POST("/users", cfg.UserHandler.CreateUser)
		api.POST("/users/:id/refresh-profile", cfg.UserHandler.RefreshProfile)

		api.POST("/admin/score-cache/clear", cfg.AdminHandler.ClearScoreCache)
	}

	return router
}
