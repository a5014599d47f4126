package app

import (
	"gorm.io/gorm"

	"github.com/lumeo-social/lumeo-backend/internal/data/graph"
	"github.com/lumeo-social/lumeo-backend/internal/data/repos/content"
	"github.com/lumeo-social/lumeo-backend/internal/data/repos/feedback"
	userrepo "github.com/lumeo-social/lumeo-backend/internal/data/repos/user"
	"github.com/lumeo-social/lumeo-backend/internal/data/scores"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

type Repos struct {
	User        userrepo.UserRepo
	Post        content.PostRepo
	Preference  feedback.PreferenceRepo
	Interaction feedback.InteractionRepo

	SocialGraph graph.SocialGraph
	Scores      scores.Store
}

func wireRepos(db *gorm.DB, log *logger.Logger, clients Clients) Repos {
	log.Info("Wiring repos...")
	interactions := feedback.NewInteractionRepo(db, log)
	return Repos{
		User:        userrepo.NewUserRepo(db, log),
		Post:        content.NewPostRepo(db, log),
		Preference:  feedback.NewPreferenceRepo(db, log),
		Interaction: interactions,
		SocialGraph: graph.NewNeo4jSocialGraph(clients.Neo4j, log),
		Scores:      scores.NewStore(clients.Redis, interactions, log),
	}
}
