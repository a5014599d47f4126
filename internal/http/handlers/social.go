package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/http/response"
	"github.com/lumeo-social/lumeo-backend/internal/platform/errs"
	"github.com/lumeo-social/lumeo-backend/internal/services"
)

type SocialHandler struct {
	socialService services.SocialService
}

func NewSocialHandler(socialService services.SocialService) *SocialHandler {
	return &SocialHandler{socialService: socialService}
}

// POST /users/:id/follow
func (sh *SocialHandler) Follow(c *gin.Context) {
	sh.mutateEdge(c, sh.socialService.Follow)
}

// DELETE /users/:id/follow
func (sh *SocialHandler) Unfollow(c *gin.Context) {
	sh.mutateEdge(c, sh.socialService.Unfollow)
}

func (sh *SocialHandler) mutateEdge(c *gin.Context, op func(ctx context.Context, userID, targetID uuid.UUID) error) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errs.ErrUnauthorized)
		return
	}
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_user_id", err)
		return
	}
	if err := op(c.Request.Context(), userID, targetID); err != nil {
		if errors.Is(err, errs.ErrInvalidArgument) {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		response.RespondError(c, http.StatusBadRequest, "follow_update_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// PUT /me/location
// body: { "lat": ..., "lon": ..., "city": "...", "country": "..." }
func (sh *SocialHandler) UpdateLocation(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errs.ErrUnauthorized)
		return
	}
	var req domain.GeoPoint
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := sh.socialService.UpdateLocation(c.Request.Context(), userID, &req); err != nil {
		if errors.Is(err, errs.ErrInvalidArgument) {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		response.RespondError(c, http.StatusBadRequest, "update_location_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
