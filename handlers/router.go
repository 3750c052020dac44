package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter wires the HTTP routes
func NewRouter(allowedOrigins []string, jwtSecret string, video *VideoHandler, library *LibraryHandler) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api := router.Group("/api", Authenticate(jwtSecret))
	{
		api.POST("/sessions", video.CreateSession)
		api.GET("/sessions/:id", video.GetSession)
		api.POST("/sessions/:id/pick", video.Pick)
		api.POST("/sessions/:id/merge", video.Merge)

		api.GET("/jobs/:job_id", video.GetStatus)
		api.DELETE("/jobs/:job_id", video.Cancel)
		api.GET("/jobs/:job_id/download", video.Download)

		api.GET("/library", library.List)
		api.GET("/library/:id/play", library.Play)
		api.POST("/record", library.Record)

		api.GET("/authorization", library.GetAuthorization)
		api.PUT("/authorization", library.SetAuthorization)
	}

	return router
}
