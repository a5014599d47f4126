package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumeo-social/lumeo-backend/internal/data/graph"
	"github.com/lumeo-social/lumeo-backend/internal/data/repos/content"
	"github.com/lumeo-social/lumeo-backend/internal/data/repos/feedback"
	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/platform/dbctx"
	"github.com/lumeo-social/lumeo-backend/internal/platform/errs"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100

	// Bound for the detached learning write issued after a response.
	recordShownTimeout = 5 * time.Second
)

// feedStage tracks where a ranking request is in the pipeline. Fallback is
// the single terminal failure state; no stage is retried.
type feedStage int

const (
	stageBuildingContext feedStage = iota
	stageRetrievingCandidates
	stageScoring
	stageDiversifying
	stagePaginating
	stageDone
	stageFallback
)

func (s feedStage) String() string {
	switch s {
	case stageBuildingContext:
		return "building_context"
	case stageRetrievingCandidates:
		return "retrieving_candidates"
	case stageScoring:
		return "scoring"
	case stageDiversifying:
		return "diversifying"
	case stagePaginating:
		return "paginating"
	case stageDone:
		return "done"
	case stageFallback:
		return "fallback"
	}
	return "unknown"
}

type FeedOptions struct {
	Limit           int
	Page            int
	IncludeAds      bool
	DiversityFactor float64
	Location        *domain.GeoPoint
}

type PreferenceUpdate struct {
	SocialWeight       *float64                  `json:"social_weight,omitempty"`
	LocationWeight     *float64                  `json:"location_weight,omitempty"`
	RecencyWeight      *float64                  `json:"recency_weight,omitempty"`
	TopicAffinities    []domain.TopicAffinity    `json:"topic_affinities,omitempty"`
	PostTypeAffinities []domain.PostTypeAffinity `json:"post_type_affinities,omitempty"`
}

// FeedService is the engine's public surface. GetFeed always returns a feed,
// primary or fallback; the only surfaced error is an unresolvable user.
type FeedService interface {
	GetFeed(ctx context.Context, userID uuid.UUID, opts FeedOptions) (*domain.FeedPage, error)
	TrackInteraction(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID, interactionType string, md *domain.InteractionMetadata) error
	GetPreferences(ctx context.Context, userID uuid.UUID) (*domain.PreferenceRecord, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, update PreferenceUpdate) (*domain.PreferenceRecord, error)
}

type feedService struct {
	log          *logger.Logger
	builder      ContextBuilder
	retriever    CandidateRetriever
	scorer       Scorer
	learner      PreferenceLearner
	graph        graph.SocialGraph
	posts        content.PostRepo
	prefs        feedback.PreferenceRepo
	interactions feedback.InteractionRepo
}

func NewFeedService(
	log *logger.Logger,
	builder ContextBuilder,
	retriever CandidateRetriever,
	scorer Scorer,
	learner PreferenceLearner,
	socialGraph graph.SocialGraph,
	posts content.PostRepo,
	prefs feedback.PreferenceRepo,
	interactions feedback.InteractionRepo,
) FeedService {
	return &feedService{
		log:          log.With("service", "FeedService"),
		builder:      builder,
		retriever:    retriever,
		scorer:       scorer,
		learner:      learner,
		graph:        socialGraph,
		posts:        posts,
		prefs:        prefs,
		interactions: interactions,
	}
}

func (fs *feedService) GetFeed(ctx context.Context, userID uuid.UUID, opts FeedOptions) (*domain.FeedPage, error) {
	opts = normalizeFeedOptions(opts)

	rc, err := fs.builder.Build(ctx, userID, opts.Location)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrInvalidArgument) {
			// The one fatal failure: the user cannot be resolved.
			return nil, err
		}
		return fs.fallback(ctx, userID, nil, opts, stageBuildingContext, err), nil
	}

	page, stage, err := fs.runPipeline(ctx, rc, opts)
	if err != nil {
		return fs.fallback(ctx, userID, rc, opts, stage, err), nil
	}
	return page, nil
}

// runPipeline executes the primary ranking pipeline. Panics are absorbed
// here so the caller contract (always a feed, never a pipeline error)
// holds structurally.
func (fs *feedService) runPipeline(ctx context.Context, rc *domain.RankingContext, opts FeedOptions) (page *domain.FeedPage, stage feedStage, err error) {
	stage = stageRetrievingCandidates
	defer func() {
		if r := recover(); r != nil {
			page = nil
			err = fmt.Errorf("pipeline panic at %s: %v", stage, r)
		}
	}()

	candidates, err := fs.retriever.Retrieve(ctx, rc)
	if err != nil {
		return nil, stage, fmt.Errorf("retrieve candidates: %w", err)
	}

	stage = stageScoring
	fs.enrichSocialSignals(ctx, rc, candidates)

	scored := make([]*domain.ScoredPost, 0, len(candidates))
	for _, candidate := range candidates {
		scored = append(scored, fs.scorer.Score(ctx, candidate, rc))
	}
	sortByScoreDesc(scored)

	stage = stageDiversifying
	scored = Diversify(scored, opts.DiversityFactor)

	stage = stagePaginating
	items := paginate(scored, opts.Page, opts.Limit)

	stage = stageDone
	fs.recordShownAsync(rc.UserID, items)

	return &domain.FeedPage{
		Items: items,
		Metadata: domain.FeedMetadata{
			TotalCandidates:  len(candidates),
			DiversityApplied: opts.DiversityFactor > 0,
			Page:             opts.Page,
			Limit:            opts.Limit,
		},
	}, stage, nil
}

// enrichSocialSignals batches the mutual-connection and friend-engagement
// lookups between retrieval and scoring. Both are best-effort.
func (fs *feedService) enrichSocialSignals(ctx context.Context, rc *domain.RankingContext, candidates []*domain.Post) {
	if len(candidates) == 0 {
		return
	}

	authorSet := make(map[uuid.UUID]struct{})
	postIDs := make([]uuid.UUID, 0, len(candidates))
	for _, c := range candidates {
		authorSet[c.AuthorID] = struct{}{}
		postIDs = append(postIDs, c.ID)
	}

	if mutuals, err := fs.graph.MutualCounts(ctx, rc.UserID, setToSlice(authorSet)); err != nil {
		fs.log.Warn("mutual count lookup failed, scoring without it", "user_id", rc.UserID, "error", err)
	} else {
		rc.MutualCounts = mutuals
	}

	if len(rc.FollowingIDs) > 0 {
		friends := setToSlice(rc.FollowingIDs)
		if eng, err := fs.interactions.FriendEngagement(dbctx.Context{Ctx: ctx}, postIDs, friends); err != nil {
			fs.log.Warn("friend engagement lookup failed, scoring without it", "user_id", rc.UserID, "error", err)
		} else {
			rc.FriendEngagement = eng
		}
	}
}

// fallback serves the reverse-chronological feed. It absorbs its own
// errors: an empty fallback page is still a response, never an exception.
func (fs *feedService) fallback(ctx context.Context, userID uuid.UUID, rc *domain.RankingContext, opts FeedOptions, stage feedStage, cause error) *domain.FeedPage {
	fs.log.Warn("feed pipeline failed, serving chronological fallback",
		"user_id", userID, "stage", stage.String(), "error", cause)

	var followedIDs []uuid.UUID
	if rc != nil {
		followedIDs = setToSlice(rc.FollowingIDs)
	}

	offset := (opts.Page - 1) * opts.Limit
	posts, err := fs.posts.FindChronological(dbctx.Context{Ctx: ctx}, followedIDs, opts.Limit, offset)
	if err != nil {
		fs.log.Error("fallback feed query failed, serving empty page", "user_id", userID, "error", err)
		posts = nil
	}

	items := make([]*domain.ScoredPost, 0, len(posts))
	for _, p := range posts {
		items = append(items, &domain.ScoredPost{Post: p})
	}
	return &domain.FeedPage{
		Items: items,
		Metadata: domain.FeedMetadata{
			TotalCandidates: len(items),
			Page:            opts.Page,
			Limit:           opts.Limit,
			Fallback:        true,
		},
	}
}

// recordShownAsync decouples the learning write from the response path.
// Loss of a learning update is acceptable; loss of the served feed is not.
func (fs *feedService) recordShownAsync(userID uuid.UUID, items []*domain.ScoredPost) {
	if len(items) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordShownTimeout)
		defer cancel()
		if err := fs.learner.RecordShown(ctx, userID, items); err != nil {
			fs.log.Warn("record shown failed", "user_id", userID, "error", err)
		}
	}()
}

func (fs *feedService) TrackInteraction(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID, interactionType string, md *domain.InteractionMetadata) error {
	err := fs.learner.RecordInteraction(ctx, userID, targetType, targetID, interactionType, md)
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrInvalidArgument) {
		return err
	}
	// Internal learning failures are logged, never surfaced; the caller's
	// action already happened.
	fs.log.Warn("interaction tracking failed", "user_id", userID,
		"target_id", targetID, "type", interactionType, "error", err)
	return nil
}

func (fs *feedService) GetPreferences(ctx context.Context, userID uuid.UUID) (*domain.PreferenceRecord, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required: %w", errs.ErrInvalidArgument)
	}
	return fs.prefs.GetOrCreate(dbctx.Context{Ctx: ctx}, userID)
}

func (fs *feedService) UpdatePreferences(ctx context.Context, userID uuid.UUID, update PreferenceUpdate) (*domain.PreferenceRecord, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required: %w", errs.ErrInvalidArgument)
	}
	return fs.prefs.UpdateWithLock(dbctx.Context{Ctx: ctx}, userID, func(prefs *domain.PreferenceRecord) error {
		if update.SocialWeight != nil {
			prefs.SocialWeight = clampWeight(*update.SocialWeight)
		}
		if update.LocationWeight != nil {
			prefs.LocationWeight = clampWeight(*update.LocationWeight)
		}
		if update.RecencyWeight != nil {
			prefs.RecencyWeight = clampWeight(*update.RecencyWeight)
		}
		if update.TopicAffinities != nil {
			topics := update.TopicAffinities
			if len(topics) > domain.MaxTopicAffinities {
				topics = topics[:domain.MaxTopicAffinities]
			}
			prefs.SetTopics(topics)
		}
		if update.PostTypeAffinities != nil {
			prefs.SetPostTypes(update.PostTypeAffinities)
		}
		return nil
	})
}

func normalizeFeedOptions(opts FeedOptions) FeedOptions {
	if opts.Limit <= 0 {
		opts.Limit = defaultFeedLimit
	}
	if opts.Limit > maxFeedLimit {
		opts.Limit = maxFeedLimit
	}
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.DiversityFactor < 0 {
		opts.DiversityFactor = 0
	}
	if opts.DiversityFactor > 1 {
		opts.DiversityFactor = 1
	}
	return opts
}

func paginate(items []*domain.ScoredPost, page, limit int) []*domain.ScoredPost {
	start := (page - 1) * limit
	if start >= len(items) {
		return []*domain.ScoredPost{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func clampWeight(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 2 {
		return 2
	}
	return v
}
