package scores

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lumeo-social/lumeo-backend/internal/data/repos/feedback"
	"github.com/lumeo-social/lumeo-backend/internal/domain"
)

func TestComputeRecordScoresAreBounded(t *testing.T) {
	now := time.Now().UTC()
	post := &domain.Post{
		ID:         uuid.New(),
		AuthorID:   uuid.New(),
		ViewCount:  100000,
		LikeCount:  90000,
		ShareCount: 80000,
		CreatedAt:  now.Add(-time.Hour),
	}
	stats := &feedback.ItemStats{Views: 100, Clicks: 500, AvgDwellTime: 900}

	rec := computeRecord(post, stats, now)
	for name, v := range map[string]float64{
		"popularity": rec.Scores.Popularity,
		"engagement": rec.Scores.Engagement,
		"quality":    rec.Scores.Quality,
		"recency":    rec.Scores.Recency,
		"virality":   rec.Scores.Virality,
	} {
		if v < 0 || v > 1 {
			t.Fatalf("%s = %v, out of [0,1]", name, v)
		}
	}
}

func TestComputeRecordRecencyDecay(t *testing.T) {
	now := time.Now().UTC()
	dayOld := &domain.Post{ID: uuid.New(), CreatedAt: now.Add(-24 * time.Hour)}

	rec := computeRecord(dayOld, &feedback.ItemStats{}, now)
	if math.Abs(rec.Scores.Recency-math.Exp(-1)) > 1e-9 {
		t.Fatalf("recency at 24h = %v, want e^-1", rec.Scores.Recency)
	}
}

func TestComputeRecordZeroViewsDoesNotDivideByZero(t *testing.T) {
	now := time.Now().UTC()
	post := &domain.Post{ID: uuid.New(), LikeCount: 5, CreatedAt: now}

	rec := computeRecord(post, &feedback.ItemStats{}, now)
	if math.IsNaN(rec.Scores.Engagement) || math.IsInf(rec.Scores.Engagement, 0) {
		t.Fatalf("engagement = %v with zero views", rec.Scores.Engagement)
	}
	if rec.Scores.Engagement != 1 {
		t.Fatalf("engagement = %v, want clamped to 1", rec.Scores.Engagement)
	}
}

func TestComputeRecordNeutralFields(t *testing.T) {
	now := time.Now().UTC()
	rec := computeRecord(&domain.Post{ID: uuid.New(), CreatedAt: now}, &feedback.ItemStats{}, now)

	if rec.Scores.Relevance != 0.5 || rec.Scores.Diversity != 0.5 {
		t.Fatalf("relevance/diversity = %v/%v, want 0.5 fixed", rec.Scores.Relevance, rec.Scores.Diversity)
	}
	if rec.Stale(now) {
		t.Fatal("fresh record reported stale")
	}
	if !rec.Stale(now.Add(domain.ContentScoreFreshness + time.Hour)) {
		t.Fatal("expired record not reported stale")
	}
}
