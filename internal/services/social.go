package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/lumeo-social/lumeo-backend/internal/data/graph"
	userrepo "github.com/lumeo-social/lumeo-backend/internal/data/repos/user"
	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/platform/dbctx"
	"github.com/lumeo-social/lumeo-backend/internal/platform/errs"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

// SocialService mutates the caller's social graph and location. Follow
// edges live in neo4j; the follow itself also counts as a strong learning
// signal.
type SocialService interface {
	Follow(ctx context.Context, userID, targetID uuid.UUID) error
	Unfollow(ctx context.Context, userID, targetID uuid.UUID) error
	UpdateLocation(ctx context.Context, userID uuid.UUID, loc *domain.GeoPoint) error
}

type socialService struct {
	log     *logger.Logger
	graph   graph.SocialGraph
	users   userrepo.UserRepo
	learner PreferenceLearner
}

func NewSocialService(log *logger.Logger, socialGraph graph.SocialGraph, users userrepo.UserRepo, learner PreferenceLearner) SocialService {
	return &socialService{
		log:     log.With("service", "SocialService"),
		graph:   socialGraph,
		users:   users,
		learner: learner,
	}
}

func (ss *socialService) Follow(ctx context.Context, userID, targetID uuid.UUID) error {
	if userID == uuid.Nil || targetID == uuid.Nil || userID == targetID {
		return fmt.Errorf("valid distinct user ids required: %w", errs.ErrInvalidArgument)
	}
	if err := ss.graph.Follow(ctx, userID, targetID); err != nil {
		return fmt.Errorf("create follow edge: %w", err)
	}
	if err := ss.learner.RecordInteraction(ctx, userID, domain.TargetTypeUser, targetID, domain.InteractionFollow, nil); err != nil {
		// The edge is the durable fact; a lost learning signal is tolerable.
		ss.log.Warn("follow learning signal failed", "user_id", userID, "target_id", targetID, "error", err)
	}
	return nil
}

func (ss *socialService) Unfollow(ctx context.Context, userID, targetID uuid.UUID) error {
	if userID == uuid.Nil || targetID == uuid.Nil {
		return fmt.Errorf("valid user ids required: %w", errs.ErrInvalidArgument)
	}
	if err := ss.graph.Unfollow(ctx, userID, targetID); err != nil {
		return fmt.Errorf("remove follow edge: %w", err)
	}
	return nil
}

func (ss *socialService) UpdateLocation(ctx context.Context, userID uuid.UUID, loc *domain.GeoPoint) error {
	if userID == uuid.Nil || loc == nil {
		return fmt.Errorf("user id and location required: %w", errs.ErrInvalidArgument)
	}
	if err := ss.users.UpdateLastLocation(dbctx.Context{Ctx: ctx}, userID, loc); err != nil {
		return fmt.Errorf("update last location: %w", err)
	}
	return nil
}
