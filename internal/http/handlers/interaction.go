package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/http/response"
	"github.com/lumeo-social/lumeo-backend/internal/platform/errs"
	"github.com/lumeo-social/lumeo-backend/internal/services"
)

type InteractionHandler struct {
	feedService services.FeedService
}

func NewInteractionHandler(feedService services.FeedService) *InteractionHandler {
	return &InteractionHandler{feedService: feedService}
}

// POST /interactions
// body: { "target_type": "post", "target_id": "...", "interaction_type": "like", "metadata": {...} }
func (ih *InteractionHandler) Track(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errs.ErrUnauthorized)
		return
	}

	var req struct {
		TargetType      string                      `json:"target_type"`
		TargetID        uuid.UUID                   `json:"target_id"`
		InteractionType string                      `json:"interaction_type"`
		Metadata        *domain.InteractionMetadata `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.TargetType == "" {
		req.TargetType = domain.TargetTypePost
	}

	err := ih.feedService.TrackInteraction(c.Request.Context(), userID, req.TargetType, req.TargetID, req.InteractionType, req.Metadata)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidArgument) {
			response.RespondError(c, http.StatusBadRequest, "invalid_interaction", err)
			return
		}
		response.RespondError(c, http.StatusBadRequest, "track_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
