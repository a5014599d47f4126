package app

import (
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
	"github.com/lumeo-social/lumeo-backend/internal/services"
)

type Services struct {
	ContextBuilder services.ContextBuilder
	Retriever      services.CandidateRetriever
	Scorer         services.Scorer
	Learner        services.PreferenceLearner
	Feed           services.FeedService
	Social         services.SocialService
}

func wireServices(log *logger.Logger, cfg Config, repos Repos) Services {
	log.Info("Wiring services...")
	builder := services.NewContextBuilder(log, repos.User, repos.SocialGraph, repos.Preference, repos.Interaction)
	retriever := services.NewCandidateRetriever(log, repos.Post, cfg.SourceTimeout)
	scorer := services.NewScorer(log, repos.Scores)
	learner := services.NewPreferenceLearner(log, repos.Interaction, repos.Preference, repos.Post)
	feed := services.NewFeedService(log, builder, retriever, scorer, learner,
		repos.SocialGraph, repos.Post, repos.Preference, repos.Interaction)
	social := services.NewSocialService(log, repos.SocialGraph, repos.User, learner)
	return Services{
		ContextBuilder: builder,
		Retriever:      retriever,
		Scorer:         scorer,
		Learner:        learner,
		Feed:           feed,
		Social:         social,
	}
}
