package app

import (
	httpx "github.com/lumeo-social/lumeo-backend/internal/http"
	httpH "github.com/lumeo-social/lumeo-backend/internal/http/handlers"
	httpMW "github.com/lumeo-social/lumeo-backend/internal/http/middleware"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

type Handlers struct {
	Feed        *httpH.FeedHandler
	Interaction *httpH.InteractionHandler
	Preference  *httpH.PreferenceHandler
	Social      *httpH.SocialHandler
	Health      *httpH.HealthHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Feed:        httpH.NewFeedHandler(services.Feed),
		Interaction: httpH.NewInteractionHandler(services.Feed),
		Preference:  httpH.NewPreferenceHandler(services.Feed),
		Social:      httpH.NewSocialHandler(services.Social),
		Health:      httpH.NewHealthHandler(),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}

func wireServer(cfg Config, handlers Handlers, middleware Middleware) *httpx.Server {
	return httpx.NewServer(httpx.RouterConfig{
		AuthMiddleware: middleware.Auth,
		AllowedOrigins: cfg.AllowedOrigins,

		FeedHandler:        handlers.Feed,
		InteractionHandler: handlers.Interaction,
		PreferenceHandler:  handlers.Preference,
		SocialHandler:      handlers.Social,

		HealthHandler: handlers.Health,
	})
}
