package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumeo-social/lumeo-backend/internal/data/graph"
	"github.com/lumeo-social/lumeo-backend/internal/data/repos/feedback"
	userrepo "github.com/lumeo-social/lumeo-backend/internal/data/repos/user"
	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/platform/dbctx"
	"github.com/lumeo-social/lumeo-backend/internal/platform/errs"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

const (
	recentInteractionWindow = 7 * 24 * time.Hour
	recentInteractionLimit  = 1000
)

// ContextBuilder assembles the per-request RankingContext. It fails only
// when the user identity cannot be resolved; every other input degrades to
// an empty contribution.
type ContextBuilder interface {
	Build(ctx context.Context, userID uuid.UUID, loc *domain.GeoPoint) (*domain.RankingContext, error)
}

type contextBuilder struct {
	log          *logger.Logger
	users        userrepo.UserRepo
	graph        graph.SocialGraph
	prefs        feedback.PreferenceRepo
	interactions feedback.InteractionRepo
}

func NewContextBuilder(log *logger.Logger, users userrepo.UserRepo, socialGraph graph.SocialGraph, prefs feedback.PreferenceRepo, interactions feedback.InteractionRepo) ContextBuilder {
	return &contextBuilder{
		log:          log.With("service", "ContextBuilder"),
		users:        users,
		graph:        socialGraph,
		prefs:        prefs,
		interactions: interactions,
	}
}

func (cb *contextBuilder) Build(ctx context.Context, userID uuid.UUID, loc *domain.GeoPoint) (*domain.RankingContext, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required: %w", errs.ErrInvalidArgument)
	}
	dbc := dbctx.Context{Ctx: ctx}

	found, err := cb.users.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("resolve user %s: %w", userID, err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, fmt.Errorf("resolve user %s: %w", userID, errs.ErrNotFound)
	}
	theUser := found[0]

	now := time.Now().UTC()
	rc := &domain.RankingContext{
		UserID:            userID,
		FollowingIDs:      map[uuid.UUID]struct{}{},
		FollowerIDs:       map[uuid.UUID]struct{}{},
		InteractedPostIDs: map[uuid.UUID]struct{}{},
		AuthorEngagement:  map[uuid.UUID]float64{},
		MutualCounts:      map[uuid.UUID]int64{},
		FriendEngagement:  map[uuid.UUID]int64{},
		TimeOfDay:         now.Hour(),
		DayOfWeek:         int(now.Weekday()),
		Now:               now,
	}

	if following, err := cb.graph.FollowingIDs(ctx, userID); err != nil {
		cb.log.Warn("following lookup failed, continuing with empty set", "user_id", userID, "error", err)
	} else {
		for _, id := range following {
			rc.FollowingIDs[id] = struct{}{}
		}
	}
	if followers, err := cb.graph.FollowerIDs(ctx, userID); err != nil {
		cb.log.Warn("follower lookup failed, continuing with empty set", "user_id", userID, "error", err)
	} else {
		for _, id := range followers {
			rc.FollowerIDs[id] = struct{}{}
		}
	}

	prefs, err := cb.prefs.GetOrCreate(dbc, userID)
	if err != nil {
		cb.log.Warn("preference lookup failed, scoring with defaults", "user_id", userID, "error", err)
		prefs = domain.NewDefaultPreferenceRecord(userID)
	}
	rc.Preferences = prefs

	since := now.Add(-recentInteractionWindow)
	recent, err := cb.interactions.RecentByUser(dbc, userID, since, recentInteractionLimit)
	if err != nil {
		cb.log.Warn("recent interaction lookup failed, continuing with empty window", "user_id", userID, "error", err)
		recent = nil
	}
	rc.RecentInteractions = recent
	for _, rec := range recent {
		if rec.TargetType == domain.TargetTypePost {
			rc.InteractedPostIDs[rec.TargetID] = struct{}{}
		}
	}

	if counts, err := cb.interactions.AuthorEngagement(dbc, userID, since); err != nil {
		cb.log.Warn("author engagement lookup failed", "user_id", userID, "error", err)
	} else {
		rc.AuthorEngagement = foldAuthorEngagement(counts)
	}

	switch {
	case loc != nil:
		rc.Location = loc
	default:
		rc.Location = theUser.LastKnownLocation()
	}

	return rc, nil
}

// foldAuthorEngagement reduces (author, type, count) buckets to an average
// interaction weight per author, clamped to [0,1].
func foldAuthorEngagement(counts []feedback.AuthorInteractionCount) map[uuid.UUID]float64 {
	sums := make(map[uuid.UUID]float64)
	totals := make(map[uuid.UUID]int64)
	for _, c := range counts {
		if c.Count <= 0 {
			continue
		}
		sums[c.AuthorID] += interactionWeight(c.InteractionType) * float64(c.Count)
		totals[c.AuthorID] += c.Count
	}
	out := make(map[uuid.UUID]float64, len(sums))
	for id, sum := range sums {
		out[id] = clamp01(sum / float64(totals[id]))
	}
	return out
}
