package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContentScoreFreshness is how long a cached content score record stays
// valid before lazy recompute.
const ContentScoreFreshness = 30 * 24 * time.Hour

type ContentScores struct {
	Popularity float64 `json:"popularity"`
	Engagement float64 `json:"engagement"`
	Quality    float64 `json:"quality"`
	Recency    float64 `json:"recency"`
	Virality   float64 `json:"virality"`
	Relevance  float64 `json:"relevance"`
	Diversity  float64 `json:"diversity"`
}

type ContentMetrics struct {
	Views            int64   `json:"views"`
	Likes            int64   `json:"likes"`
	Comments         int64   `json:"comments"`
	Shares           int64   `json:"shares"`
	Saves            int64   `json:"saves"`
	ClickThroughRate float64 `json:"click_through_rate"`
	AvgDwellTime     float64 `json:"avg_dwell_time"`
}

// ContentScoreRecord is the cached per-item quality/engagement summary,
// recomputed lazily when absent or stale. It lives in the content score
// store, not in postgres.
type ContentScoreRecord struct {
	ItemID         uuid.UUID      `json:"item_id"`
	AuthorID       uuid.UUID      `json:"author_id"`
	Scores         ContentScores  `json:"scores"`
	Metrics        ContentMetrics `json:"metrics"`
	LastCalculated time.Time      `json:"last_calculated"`
}

// Stale reports whether the record needs recompute at the given time.
func (r *ContentScoreRecord) Stale(now time.Time) bool {
	if r == nil {
		return true
	}
	return now.Sub(r.LastCalculated) > ContentScoreFreshness
}

// NeutralContentScore is the fixed substitute used when a score lookup
// fails; scoring degrades instead of failing the request.
func NeutralContentScore(itemID, authorID uuid.UUID) *ContentScoreRecord {
	return &ContentScoreRecord{
		ItemID:   itemID,
		AuthorID: authorID,
		Scores: ContentScores{
			Popularity: 0.5,
			Engagement: 0.5,
			Quality:    0.5,
			Recency:    0.5,
			Virality:   0.5,
			Relevance:  0.5,
			Diversity:  0.5,
		},
		LastCalculated: time.Now().UTC(),
	}
}
