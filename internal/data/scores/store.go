package scores

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lumeo-social/lumeo-backend/internal/data/repos/feedback"
	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/platform/dbctx"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

const keyPrefix = "content_score:"

// Store is the content score accessor: cached per-item score records,
// recomputed lazily when absent or stale.
type Store interface {
	Get(ctx context.Context, post *domain.Post) (*domain.ContentScoreRecord, error)
}

type redisStore struct {
	rdb          *goredis.Client
	interactions feedback.InteractionRepo
	log          *logger.Logger
}

// NewStore builds the accessor. A nil redis client is tolerated: scores are
// then recomputed on every lookup.
func NewStore(rdb *goredis.Client, interactions feedback.InteractionRepo, baseLog *logger.Logger) Store {
	return &redisStore{
		rdb:          rdb,
		interactions: interactions,
		log:          baseLog.With("store", "ContentScoreStore"),
	}
}

func (s *redisStore) Get(ctx context.Context, post *domain.Post) (*domain.ContentScoreRecord, error) {
	if post == nil {
		return nil, fmt.Errorf("post required")
	}
	now := time.Now().UTC()

	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, keyPrefix+post.ID.String()).Bytes()
		if err == nil {
			var rec domain.ContentScoreRecord
			if jsonErr := json.Unmarshal(raw, &rec); jsonErr == nil && !rec.Stale(now) {
				return &rec, nil
			}
		} else if err != goredis.Nil {
			s.log.Warn("content score cache read failed", "post_id", post.ID, "error", err)
		}
	}

	rec := s.recompute(ctx, post, now)

	if s.rdb != nil {
		raw, err := json.Marshal(rec)
		if err == nil {
			if err := s.rdb.Set(ctx, keyPrefix+post.ID.String(), raw, domain.ContentScoreFreshness).Err(); err != nil {
				s.log.Warn("content score cache write failed", "post_id", post.ID, "error", err)
			}
		}
	}
	return rec, nil
}

func (s *redisStore) recompute(ctx context.Context, post *domain.Post, now time.Time) *domain.ContentScoreRecord {
	stats := &feedback.ItemStats{}
	if s.interactions != nil {
		got, err := s.interactions.ItemStats(dbctx.Context{Ctx: ctx}, post.ID)
		if err != nil {
			s.log.Warn("item stats lookup failed, using counters only", "post_id", post.ID, "error", err)
		} else if got != nil {
			stats = got
		}
	}
	return computeRecord(post, stats, now)
}

func computeRecord(post *domain.Post, stats *feedback.ItemStats, now time.Time) *domain.ContentScoreRecord {
	views := post.ViewCount
	if views < 1 {
		views = 1
	}

	engagement := clamp01(float64(post.EngagementCount()) / float64(views))
	popularity := clamp01(math.Log10(1+float64(post.ViewCount)) / 6)
	virality := clamp01(10 * float64(post.ShareCount) / float64(views))
	recency := math.Exp(-post.AgeHours(now) / 24)

	ctr := 0.0
	if stats.Views > 0 {
		ctr = clamp01(float64(stats.Clicks) / float64(stats.Views))
	}
	dwell := clamp01(stats.AvgDwellTime / 60)
	quality := clamp01(0.5*engagement + 0.3*ctr + 0.2*dwell)

	return &domain.ContentScoreRecord{
		ItemID:   post.ID,
		AuthorID: post.AuthorID,
		Scores: domain.ContentScores{
			Popularity: popularity,
			Engagement: engagement,
			Quality:    quality,
			Recency:    recency,
			Virality:   virality,
			Relevance:  0.5,
			Diversity:  0.5,
		},
		Metrics: domain.ContentMetrics{
			Views:            post.ViewCount,
			Likes:            post.LikeCount,
			Comments:         post.CommentCount,
			Shares:           post.ShareCount,
			Saves:            post.SaveCount,
			ClickThroughRate: ctr,
			AvgDwellTime:     stats.AvgDwellTime,
		},
		LastCalculated: now,
	}
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
