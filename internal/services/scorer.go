package services

import (
	"context"
	"math"

	scorestore "github.com/lumeo-social/lumeo-backend/internal/data/scores"
	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

// Fixed combination weights of the engine. Per-user tuning happens inside
// the sub-scores via the preference record coefficients, never here.
const (
	weightSocial     = 0.30
	weightBehavioral = 0.25
	weightContent    = 0.20
	weightLocation   = 0.15
	weightTemporal   = 0.10
)

const locationNeutralScore = 0.1

// Scorer computes the normalized relevance score for one candidate. Pure
// apart from the lazy content-score lookup; a failed lookup substitutes the
// neutral default instead of failing the candidate.
type Scorer interface {
	Score(ctx context.Context, post *domain.Post, rc *domain.RankingContext) *domain.ScoredPost
}

type scorer struct {
	log    *logger.Logger
	scores scorestore.Store
}

func NewScorer(log *logger.Logger, scores scorestore.Store) Scorer {
	return &scorer{log: log.With("service", "Scorer"), scores: scores}
}

func (s *scorer) Score(ctx context.Context, post *domain.Post, rc *domain.RankingContext) *domain.ScoredPost {
	breakdown := domain.ScoreBreakdown{
		Social:     s.socialScore(post, rc),
		Behavioral: s.behavioralScore(post, rc),
		Content:    s.contentScore(ctx, post, rc),
		Location:   s.locationScore(post, rc),
		Temporal:   s.temporalScore(post, rc),
	}
	total := clamp01(weightSocial*breakdown.Social +
		weightBehavioral*breakdown.Behavioral +
		weightContent*breakdown.Content +
		weightLocation*breakdown.Location +
		weightTemporal*breakdown.Temporal)

	return &domain.ScoredPost{Post: post, Score: total, Breakdown: breakdown}
}

func (s *scorer) socialScore(post *domain.Post, rc *domain.RankingContext) float64 {
	score := 0.0
	switch {
	case rc.Following(post.AuthorID):
		score = 0.8
	case rc.FollowedBy(post.AuthorID):
		score = 0.6
	}
	score += math.Min(0.3, float64(rc.MutualCounts[post.AuthorID])*0.05)
	score += math.Min(0.4, float64(rc.FriendEngagement[post.ID])*0.1)
	return clamp01(score * rc.Preferences.SocialWeight)
}

func (s *scorer) behavioralScore(post *domain.Post, rc *domain.RankingContext) float64 {
	typeScore := math.Max(0, rc.Preferences.PostTypeScore(post.Type))

	topicSum := 0.0
	for _, kw := range post.TopicList() {
		topicSum += math.Max(0, rc.Preferences.TopicScore(kw))
	}

	authorEngagement := clamp01(rc.AuthorEngagement[post.AuthorID])

	return clamp01(0.3*typeScore + 0.2*topicSum + 0.5*authorEngagement)
}

func (s *scorer) contentScore(ctx context.Context, post *domain.Post, rc *domain.RankingContext) float64 {
	rec, err := s.scores.Get(ctx, post)
	if err != nil || rec == nil {
		s.log.Debug("content score lookup failed, using neutral default",
			"post_id", post.ID, "error", err)
		rec = domain.NeutralContentScore(post.ID, post.AuthorID)
	}

	recency := math.Exp(-post.AgeHours(rc.Now)/24) * rc.Preferences.RecencyWeight

	return clamp01(0.3*rec.Scores.Quality +
		0.3*rec.Scores.Engagement +
		0.2*rec.Scores.Popularity +
		0.2*recency)
}

func (s *scorer) locationScore(post *domain.Post, rc *domain.RankingContext) float64 {
	postLoc := post.Location()
	if rc.Location == nil || postLoc == nil {
		// Absent location is neutral, not zero.
		return locationNeutralScore
	}

	score := 0.0
	switch d := rc.Location.DistanceKm(*postLoc); {
	case d < 10:
		score = 0.8
	case d < 50:
		score = 0.6
	case d < 200:
		score = 0.3
	}
	if postLoc.City != "" && postLoc.City == rc.Location.City {
		score += 0.5
	}
	return clamp01(score * rc.Preferences.LocationWeight)
}

func (s *scorer) temporalScore(post *domain.Post, rc *domain.RankingContext) float64 {
	hourActivity := 0.0
	if hours := rc.Preferences.Hours(); rc.TimeOfDay >= 0 && rc.TimeOfDay < len(hours) {
		hourActivity = math.Max(0, hours[rc.TimeOfDay].Activity)
	}
	dayActivity := 0.0
	if days := rc.Preferences.Days(); rc.DayOfWeek >= 0 && rc.DayOfWeek < len(days) {
		dayActivity = math.Max(0, days[rc.DayOfWeek].Activity)
	}

	freshness := math.Max(0, 1-post.AgeHours(rc.Now)/168)

	return clamp01(0.3*hourActivity + 0.3*dayActivity + 0.4*freshness)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
