package content

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lumeo-social/lumeo-backend/internal/data/repos/testutil"
	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/platform/dbctx"
)

func rankOf(posts []*domain.Post, id uuid.UUID) int {
	for i, p := range posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func TestFindPopularOrdersByEngagement(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewPostRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	author := testutil.SeedUser(t, tx, &domain.User{ID: uuid.New()})
	quiet := testutil.SeedPost(t, tx, &domain.Post{ID: uuid.New(), AuthorID: author.ID, LikeCount: 1})
	// shares weigh 3x likes in the engagement order
	viral := testutil.SeedPost(t, tx, &domain.Post{ID: uuid.New(), AuthorID: author.ID, ShareCount: 50})

	got, err := repo.FindPopular(dbc, 1000)
	if err != nil {
		t.Fatalf("find popular: %v", err)
	}
	viralRank, quietRank := rankOf(got, viral.ID), rankOf(got, quiet.ID)
	if viralRank < 0 || quietRank < 0 {
		t.Fatalf("seeded posts missing from result (ranks %d, %d)", viralRank, quietRank)
	}
	if viralRank > quietRank {
		t.Fatalf("viral post ranked %d below quiet post %d", viralRank, quietRank)
	}
}

func TestFindBySocialGraphFiltersAuthorAndWindow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewPostRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	followed := testutil.SeedUser(t, tx, &domain.User{ID: uuid.New()})
	stranger := testutil.SeedUser(t, tx, &domain.User{ID: uuid.New()})
	now := time.Now().UTC()

	recent := testutil.SeedPost(t, tx, &domain.Post{ID: uuid.New(), AuthorID: followed.ID, CreatedAt: now.Add(-time.Hour)})
	old := testutil.SeedPost(t, tx, &domain.Post{ID: uuid.New(), AuthorID: followed.ID, CreatedAt: now.Add(-30 * 24 * time.Hour)})
	other := testutil.SeedPost(t, tx, &domain.Post{ID: uuid.New(), AuthorID: stranger.ID, CreatedAt: now.Add(-time.Hour)})
	private := testutil.SeedPost(t, tx, &domain.Post{ID: uuid.New(), AuthorID: followed.ID, CreatedAt: now.Add(-time.Hour), Visibility: domain.VisibilityPrivate})

	got, err := repo.FindBySocialGraph(dbc, []uuid.UUID{followed.ID}, now.Add(-7*24*time.Hour), 100)
	if err != nil {
		t.Fatalf("find by social graph: %v", err)
	}
	if rankOf(got, recent.ID) < 0 {
		t.Fatal("recent followed post missing")
	}
	for _, p := range got {
		if p.ID == old.ID || p.ID == other.ID || p.ID == private.ID {
			t.Fatalf("post %s must be excluded", p.ID)
		}
	}
}

func TestFindNearRespectsRadius(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewPostRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	author := testutil.SeedUser(t, tx, &domain.User{ID: uuid.New()})
	nycLat, nycLon := 40.7128, -74.0060
	bkLat, bkLon := 40.6782, -73.9442   // ~8 km away
	bosLat, bosLon := 42.3601, -71.0589 // ~300 km away

	near := testutil.SeedPost(t, tx, &domain.Post{ID: uuid.New(), AuthorID: author.ID, Lat: &bkLat, Lon: &bkLon})
	far := testutil.SeedPost(t, tx, &domain.Post{ID: uuid.New(), AuthorID: author.ID, Lat: &bosLat, Lon: &bosLon})

	got, err := repo.FindNear(dbc, domain.GeoPoint{Lat: nycLat, Lon: nycLon}, 50, 30)
	if err != nil {
		t.Fatalf("find near: %v", err)
	}
	if rankOf(got, near.ID) < 0 {
		t.Fatal("nearby post missing")
	}
	if rankOf(got, far.ID) >= 0 {
		t.Fatal("post beyond the radius returned")
	}
}

func TestFindByTopicsMatchesAnyKeyword(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewPostRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	author := testutil.SeedUser(t, tx, &domain.User{ID: uuid.New()})
	kw := "it_" + uuid.NewString()[:8]

	tagged := &domain.Post{ID: uuid.New(), AuthorID: author.ID}
	tagged.SetTopicList([]string{kw, "other"})
	testutil.SeedPost(t, tx, tagged)

	untagged := &domain.Post{ID: uuid.New(), AuthorID: author.ID}
	untagged.SetTopicList([]string{"unrelated"})
	testutil.SeedPost(t, tx, untagged)

	got, err := repo.FindByTopics(dbc, []string{kw, "missing"}, 40)
	if err != nil {
		t.Fatalf("find by topics: %v", err)
	}
	if rankOf(got, tagged.ID) < 0 {
		t.Fatal("tagged post missing")
	}
	if rankOf(got, untagged.ID) >= 0 {
		t.Fatal("untagged post returned")
	}
}

func TestFindChronologicalIncludesFollowedNonPublic(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewPostRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	followed := testutil.SeedUser(t, tx, &domain.User{ID: uuid.New()})
	stranger := testutil.SeedUser(t, tx, &domain.User{ID: uuid.New()})
	now := time.Now().UTC()

	connectionsOnly := testutil.SeedPost(t, tx, &domain.Post{
		ID: uuid.New(), AuthorID: followed.ID, Visibility: domain.VisibilityConnections, CreatedAt: now,
	})
	strangerPrivate := testutil.SeedPost(t, tx, &domain.Post{
		ID: uuid.New(), AuthorID: stranger.ID, Visibility: domain.VisibilityPrivate, CreatedAt: now,
	})

	got, err := repo.FindChronological(dbc, []uuid.UUID{followed.ID}, 1000, 0)
	if err != nil {
		t.Fatalf("find chronological: %v", err)
	}
	if rankOf(got, connectionsOnly.ID) < 0 {
		t.Fatal("followed author's non-public post missing")
	}
	if rankOf(got, strangerPrivate.ID) >= 0 {
		t.Fatal("stranger's private post returned")
	}
	for i := 1; i < len(got); i++ {
		if got[i].CreatedAt.After(got[i-1].CreatedAt) {
			t.Fatalf("result not reverse chronological at %d", i)
		}
	}
}

func TestIncrementCounterValidatesColumn(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewPostRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	author := testutil.SeedUser(t, tx, &domain.User{ID: uuid.New()})
	post := testutil.SeedPost(t, tx, &domain.Post{ID: uuid.New(), AuthorID: author.ID})

	if err := repo.IncrementCounter(dbc, post.ID, "like_count"); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := repo.IncrementCounter(dbc, post.ID, "id; DROP TABLE post"); err != nil {
		t.Fatalf("unknown column must be a no-op, got %v", err)
	}

	got, err := repo.GetByIDs(dbc, []uuid.UUID{post.ID})
	if err != nil || len(got) != 1 {
		t.Fatalf("re-read post: %v (%d rows)", err, len(got))
	}
	if got[0].LikeCount != 1 {
		t.Fatalf("like count = %d, want 1", got[0].LikeCount)
	}
}
