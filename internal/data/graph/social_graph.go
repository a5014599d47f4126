package graph

import (
	"context"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
	"github.com/lumeo-social/lumeo-backend/internal/platform/neo4jdb"
)

// SocialGraph resolves FOLLOWS edges. All methods degrade to empty results
// when the graph backend is unavailable; a missing graph is a degraded feed,
// not a failed one.
type SocialGraph interface {
	FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	FollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// MutualCounts returns, per author, how many of the user's followings
	// follow that author. One batched query per ranking request.
	MutualCounts(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	Follow(ctx context.Context, userID, targetID uuid.UUID) error
	Unfollow(ctx context.Context, userID, targetID uuid.UUID) error
}

type neo4jSocialGraph struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewNeo4jSocialGraph(client *neo4jdb.Client, baseLog *logger.Logger) SocialGraph {
	return &neo4jSocialGraph{client: client, log: baseLog.With("repo", "SocialGraph")}
}

func (g *neo4jSocialGraph) available() bool {
	return g != nil && g.client != nil && g.client.Driver != nil
}

func (g *neo4jSocialGraph) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return g.client.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: g.client.Database,
	})
}

func (g *neo4jSocialGraph) idQuery(ctx context.Context, query string, userID uuid.UUID) ([]uuid.UUID, error) {
	if !g.available() || userID == uuid.Nil {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := g.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	res, err := session.Run(ctx, query, map[string]any{"id": userID.String()})
	if err != nil {
		return nil, err
	}

	var out []uuid.UUID
	for res.Next(ctx) {
		raw, ok := res.Record().Get("id")
		if !ok {
			continue
		}
		s, ok := raw.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, res.Err()
}

func (g *neo4jSocialGraph) FollowingIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return g.idQuery(ctx,
		`MATCH (u:User {id: $id})-[:FOLLOWS]->(v:User) RETURN v.id AS id`,
		userID)
}

func (g *neo4jSocialGraph) FollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return g.idQuery(ctx,
		`MATCH (v:User)-[:FOLLOWS]->(u:User {id: $id}) RETURN v.id AS id`,
		userID)
}

func (g *neo4jSocialGraph) MutualCounts(ctx context.Context, userID uuid.UUID, authorIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64)
	if !g.available() || userID == uuid.Nil || len(authorIDs) == 0 {
		return out, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	ids := make([]string, 0, len(authorIDs))
	for _, id := range authorIDs {
		ids = append(ids, id.String())
	}

	session := g.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	res, err := session.Run(ctx, `
		UNWIND $author_ids AS aid
		MATCH (u:User {id: $id})-[:FOLLOWS]->(m:User)-[:FOLLOWS]->(a:User {id: aid})
		RETURN aid AS id, count(DISTINCT m) AS mutuals`,
		map[string]any{"id": userID.String(), "author_ids": ids})
	if err != nil {
		return nil, err
	}

	for res.Next(ctx) {
		rec := res.Record()
		rawID, ok1 := rec.Get("id")
		rawCount, ok2 := rec.Get("mutuals")
		if !ok1 || !ok2 {
			continue
		}
		s, ok := rawID.(string)
		if !ok {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			continue
		}
		if n, ok := rawCount.(int64); ok {
			out[id] = n
		}
	}
	return out, res.Err()
}

func (g *neo4jSocialGraph) Follow(ctx context.Context, userID, targetID uuid.UUID) error {
	return g.writeEdge(ctx, `
		MERGE (u:User {id: $id})
		MERGE (v:User {id: $target})
		MERGE (u)-[:FOLLOWS]->(v)`,
		userID, targetID)
}

func (g *neo4jSocialGraph) Unfollow(ctx context.Context, userID, targetID uuid.UUID) error {
	return g.writeEdge(ctx, `
		MATCH (u:User {id: $id})-[f:FOLLOWS]->(v:User {id: $target})
		DELETE f`,
		userID, targetID)
}

func (g *neo4jSocialGraph) writeEdge(ctx context.Context, query string, userID, targetID uuid.UUID) error {
	if !g.available() || userID == uuid.Nil || targetID == uuid.Nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	session := g.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.Run(ctx, query, map[string]any{
		"id":     userID.String(),
		"target": targetID.String(),
	})
	return err
}
