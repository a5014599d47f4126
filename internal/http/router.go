package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/lumeo-social/lumeo-backend/internal/http/handlers"
	httpMW "github.com/lumeo-social/lumeo-backend/internal/http/middleware"
)

type RouterConfig struct {
	AuthMiddleware *httpMW.AuthMiddleware
	AllowedOrigins []string

	FeedHandler        *httpH.FeedHandler
	InteractionHandler *httpH.InteractionHandler
	PreferenceHandler  *httpH.PreferenceHandler
	SocialHandler      *httpH.SocialHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.Default()
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Feed
		if cfg.FeedHandler != nil {
			protected.GET("/feed", cfg.FeedHandler.GetFeed)
		}

		// Interactions
		if cfg.InteractionHandler != nil {
			protected.POST("/interactions", cfg.InteractionHandler.Track)
		}

		// Preferences
		if cfg.PreferenceHandler != nil {
			protected.GET("/preferences", cfg.PreferenceHandler.Get)
			protected.PATCH("/preferences", cfg.PreferenceHandler.Update)
		}

		// Social graph
		if cfg.SocialHandler != nil {
			protected.POST("/users/:id/follow", cfg.SocialHandler.Follow)
			protected.DELETE("/users/:id/follow", cfg.SocialHandler.Unfollow)
			protected.PUT("/me/location", cfg.SocialHandler.UpdateLocation)
		}
	}

	return r
}
