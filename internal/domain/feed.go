package domain

import (
	"time"

	"github.com/google/uuid"
)

type GeoPoint struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	City    string  `json:"city,omitempty"`
	Country string  `json:"country,omitempty"`
}

// RankingContext carries everything one ranking request needs. Built fresh
// per request, never persisted.
type RankingContext struct {
	UserID             uuid.UUID
	FollowingIDs       map[uuid.UUID]struct{}
	FollowerIDs        map[uuid.UUID]struct{}
	Preferences        *PreferenceRecord
	RecentInteractions []*InteractionRecord
	InteractedPostIDs  map[uuid.UUID]struct{}

	// AuthorEngagement is the user's average historical interaction weight
	// per author, derived from the recent window.
	AuthorEngagement map[uuid.UUID]float64
	// MutualCounts and FriendEngagement are filled between candidate
	// retrieval and scoring; both tolerate absence.
	MutualCounts     map[uuid.UUID]int64
	FriendEngagement map[uuid.UUID]int64

	TimeOfDay int
	DayOfWeek int
	Location  *GeoPoint
	Now       time.Time
}

// Following reports whether the context user follows the given author.
func (rc *RankingContext) Following(authorID uuid.UUID) bool {
	_, ok := rc.FollowingIDs[authorID]
	return ok
}

// FollowedBy reports whether the given author follows the context user.
func (rc *RankingContext) FollowedBy(authorID uuid.UUID) bool {
	_, ok := rc.FollowerIDs[authorID]
	return ok
}

type ScoreBreakdown struct {
	Social     float64 `json:"social"`
	Behavioral float64 `json:"behavioral"`
	Content    float64 `json:"content"`
	Location   float64 `json:"location"`
	Temporal   float64 `json:"temporal"`
}

// ScoredPost is a transient join of a candidate post with its relevance
// score; its lifetime is one ranking request.
type ScoredPost struct {
	Post      *Post          `json:"post"`
	Score     float64        `json:"score"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

type FeedMetadata struct {
	TotalCandidates  int  `json:"total_candidates"`
	DiversityApplied bool `json:"diversity_applied"`
	Page             int  `json:"page"`
	Limit            int  `json:"limit"`
	Fallback         bool `json:"fallback,omitempty"`
}

type FeedPage struct {
	Items    []*ScoredPost `json:"items"`
	Metadata FeedMetadata  `json:"metadata"`
}
