package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumeo-social/lumeo-backend/internal/http/response"
	"github.com/lumeo-social/lumeo-backend/internal/platform/errs"
	"github.com/lumeo-social/lumeo-backend/internal/services"
)

type PreferenceHandler struct {
	feedService services.FeedService
}

func NewPreferenceHandler(feedService services.FeedService) *PreferenceHandler {
	return &PreferenceHandler{feedService: feedService}
}

// GET /preferences
func (ph *PreferenceHandler) Get(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errs.ErrUnauthorized)
		return
	}
	prefs, err := ph.feedService.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "preferences_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}

// PATCH /preferences
// body: partial services.PreferenceUpdate
func (ph *PreferenceHandler) Update(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errs.ErrUnauthorized)
		return
	}
	var req services.PreferenceUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	prefs, err := ph.feedService.UpdatePreferences(c.Request.Context(), userID, req)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidArgument) {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		response.RespondError(c, http.StatusBadRequest, "update_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}
