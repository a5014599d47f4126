package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/lumeo-social/lumeo-backend/internal/http/handlers"
	"github.com/lumeo-social/lumeo-backend/internal/http/middleware"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

func newTestAuthMiddleware(t *testing.T) *middleware.AuthMiddleware {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return middleware.NewAuthMiddleware(log, "testsecret")
}

func TestNewServerRoutesHealthcheck(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer(RouterConfig{HealthHandler: handlers.NewHealthHandler()})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	srv.Engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("healthcheck status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestNewServerProtectedRoutesRejectMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer(RouterConfig{
		AuthMiddleware: newTestAuthMiddleware(t),
		FeedHandler:    &handlers.FeedHandler{},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/feed", nil)
	srv.Engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated feed status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
