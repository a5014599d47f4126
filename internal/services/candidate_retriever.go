package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lumeo-social/lumeo-backend/internal/data/repos/content"
	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/platform/dbctx"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

// Per-source bounds. Tunable constants of the engine, not per-user.
const (
	socialSourceLimit   = 100
	popularSourceLimit  = 50
	nearbySourceLimit   = 30
	topicSourceLimit    = 40
	trendingSourceLimit = 20

	nearbyRadiusKm  = 50.0
	topicSourceTopK = 10

	socialSourceWindow   = 7 * 24 * time.Hour
	trendingSourceWindow = 24 * time.Hour

	defaultSourceTimeout = 800 * time.Millisecond
)

// CandidateRetriever fans out to the candidate sources concurrently and
// merges the results. A source failure or timeout degrades that source to an
// empty contribution. Retrieve errors only when every source failed, so the
// caller can serve the chronological fallback instead of an empty page.
type CandidateRetriever interface {
	Retrieve(ctx context.Context, rc *domain.RankingContext) ([]*domain.Post, error)
}

type candidateRetriever struct {
	log           *logger.Logger
	posts         content.PostRepo
	sourceTimeout time.Duration
}

func NewCandidateRetriever(log *logger.Logger, posts content.PostRepo, sourceTimeout time.Duration) CandidateRetriever {
	if sourceTimeout <= 0 {
		sourceTimeout = defaultSourceTimeout
	}
	return &candidateRetriever{
		log:           log.With("service", "CandidateRetriever"),
		posts:         posts,
		sourceTimeout: sourceTimeout,
	}
}

type candidateSource struct {
	name  string
	fetch func(dbc dbctx.Context) ([]*domain.Post, error)
}

func (cr *candidateRetriever) Retrieve(ctx context.Context, rc *domain.RankingContext) ([]*domain.Post, error) {
	sources := cr.sources(rc)
	results := make([][]*domain.Post, len(sources))
	srcErrs := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			srcCtx, cancel := context.WithTimeout(gctx, cr.sourceTimeout)
			defer cancel()
			posts, err := src.fetch(dbctx.Context{Ctx: srcCtx})
			if err != nil {
				cr.log.Warn("candidate source failed, contributing empty set",
					"source", src.name, "user_id", rc.UserID, "error", err)
				srcErrs[i] = fmt.Errorf("%s: %w", src.name, err)
				return nil
			}
			results[i] = posts
			return nil
		})
	}
	// Per-source errors are recorded above; Wait only surfaces ctx cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, err := range srcErrs {
		if err != nil {
			failed++
		}
	}
	if len(sources) > 0 && failed == len(sources) {
		return nil, fmt.Errorf("all candidate sources failed: %w", errors.Join(srcErrs...))
	}

	return cr.merge(rc, results), nil
}

func (cr *candidateRetriever) sources(rc *domain.RankingContext) []candidateSource {
	now := rc.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	followedIDs := setToSlice(rc.FollowingIDs)
	sources := []candidateSource{
		{name: "social", fetch: func(dbc dbctx.Context) ([]*domain.Post, error) {
			return cr.posts.FindBySocialGraph(dbc, followedIDs, now.Add(-socialSourceWindow), socialSourceLimit)
		}},
		{name: "popularity", fetch: func(dbc dbctx.Context) ([]*domain.Post, error) {
			return cr.posts.FindPopular(dbc, popularSourceLimit)
		}},
		{name: "topic_affinity", fetch: func(dbc dbctx.Context) ([]*domain.Post, error) {
			keywords := topAffinityKeywords(rc.Preferences, topicSourceTopK)
			return cr.posts.FindByTopics(dbc, keywords, topicSourceLimit)
		}},
		{name: "trending", fetch: func(dbc dbctx.Context) ([]*domain.Post, error) {
			return cr.posts.FindTrending(dbc, now.Add(-trendingSourceWindow), trendingSourceLimit)
		}},
	}
	// The locality source only runs when a location is known; a skipped
	// source must not count as a successful one.
	if rc.Location != nil {
		loc := *rc.Location
		sources = append(sources, candidateSource{
			name: "locality",
			fetch: func(dbc dbctx.Context) ([]*domain.Post, error) {
				return cr.posts.FindNear(dbc, loc, nearbyRadiusKm, nearbySourceLimit)
			},
		})
	}
	return sources
}

// merge unions the source results with first-seen-wins dedup by post id and
// drops anything the user already interacted with in the recent window.
func (cr *candidateRetriever) merge(rc *domain.RankingContext, results [][]*domain.Post) []*domain.Post {
	seen := make(map[uuid.UUID]struct{})
	var out []*domain.Post
	for _, posts := range results {
		for _, p := range posts {
			if p == nil {
				continue
			}
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			if _, interacted := rc.InteractedPostIDs[p.ID]; interacted {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

func setToSlice(set map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// topAffinityKeywords returns the highest-scoring positive topic keywords.
func topAffinityKeywords(prefs *domain.PreferenceRecord, k int) []string {
	if prefs == nil || k <= 0 {
		return nil
	}
	topics := prefs.Topics()
	positive := topics[:0]
	for _, t := range topics {
		if t.Score > 0 {
			positive = append(positive, t)
		}
	}
	sort.SliceStable(positive, func(i, j int) bool {
		return positive[i].Score > positive[j].Score
	})
	if len(positive) > k {
		positive = positive[:k]
	}
	out := make([]string, 0, len(positive))
	for _, t := range positive {
		out = append(out, t.Keyword)
	}
	return out
}
