package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(handler *Handler) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(CORS())
	router.Use(gin.Logger())
	router.Use(ActingUser())

	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/repos", handler.ListRepositories)

		projects := v1.Group("/projects")
		{
			projects.GET("", handler.FindProjects)
			projects.POST("", handler.CreateProject)
			projects.POST("/batch", handler.CreateAllProjects)
			projects.DELETE("/batch", handler.DeleteAllProjects)
			projects.GET("/:id", handler.FindProject)
			projects.DELETE("/:id", handler.DeleteProject)
		}
	}

	return router
}
