package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/http/response"
	"github.com/lumeo-social/lumeo-backend/internal/platform/errs"
	"github.com/lumeo-social/lumeo-backend/internal/platform/requestdata"
	"github.com/lumeo-social/lumeo-backend/internal/services"
)

type FeedHandler struct {
	feedService services.FeedService
}

func NewFeedHandler(feedService services.FeedService) *FeedHandler {
	return &FeedHandler{feedService: feedService}
}

// GET /feed?limit=20&page=1&diversity=0.5&lat=..&lon=..
func (fh *FeedHandler) GetFeed(c *gin.Context) {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errs.ErrUnauthorized)
		return
	}

	opts := services.FeedOptions{
		Limit:           intQuery(c, "limit", 0),
		Page:            intQuery(c, "page", 0),
		DiversityFactor: floatQuery(c, "diversity", 0.5),
		IncludeAds:      c.Query("ads") == "true",
	}
	if loc, ok := geoQuery(c); ok {
		opts.Location = loc
	}

	page, err := fh.feedService.GetFeed(c.Request.Context(), userID, opts)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			response.RespondError(c, http.StatusNotFound, "user_not_found", err)
			return
		}
		response.RespondError(c, http.StatusBadRequest, "feed_failed", err)
		return
	}
	response.RespondOK(c, page)
}

func currentUserID(c *gin.Context) uuid.UUID {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		return uuid.Nil
	}
	return rd.UserID
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func floatQuery(c *gin.Context, key string, fallback float64) float64 {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func geoQuery(c *gin.Context) (*domain.GeoPoint, bool) {
	latRaw, lonRaw := c.Query("lat"), c.Query("lon")
	if latRaw == "" || lonRaw == "" {
		return nil, false
	}
	lat, latErr := strconv.ParseFloat(latRaw, 64)
	lon, lonErr := strconv.ParseFloat(lonRaw, 64)
	if latErr != nil || lonErr != nil {
		return nil, false
	}
	return &domain.GeoPoint{Lat: lat, Lon: lon}, true
}
