package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lumeo-social/lumeo-backend/internal/data/repos/feedback"
	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/platform/dbctx"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}

func testPost(authorID uuid.UUID, createdAt time.Time, topics ...string) *domain.Post {
	p := &domain.Post{
		ID:         uuid.New(),
		AuthorID:   authorID,
		Type:       domain.PostTypeText,
		Visibility: domain.VisibilityPublic,
		CreatedAt:  createdAt,
	}
	p.SetTopicList(topics)
	return p
}

func testContext(userID uuid.UUID) *domain.RankingContext {
	return &domain.RankingContext{
		UserID:            userID,
		FollowingIDs:      map[uuid.UUID]struct{}{},
		FollowerIDs:       map[uuid.UUID]struct{}{},
		InteractedPostIDs: map[uuid.UUID]struct{}{},
		AuthorEngagement:  map[uuid.UUID]float64{},
		MutualCounts:      map[uuid.UUID]int64{},
		FriendEngagement:  map[uuid.UUID]int64{},
		Preferences:       domain.NewDefaultPreferenceRecord(userID),
		Now:               time.Now().UTC(),
	}
}

type fakePostRepo struct {
	social   func(authorIDs []uuid.UUID, since time.Time, limit int) ([]*domain.Post, error)
	popular  func(limit int) ([]*domain.Post, error)
	near     func(loc domain.GeoPoint, radiusKm float64, limit int) ([]*domain.Post, error)
	byTopics func(keywords []string, limit int) ([]*domain.Post, error)
	trending func(since time.Time, limit int) ([]*domain.Post, error)
	chrono   func(authorIDs []uuid.UUID, limit, offset int) ([]*domain.Post, error)
	byIDs    func(ids []uuid.UUID) ([]*domain.Post, error)

	mu         sync.Mutex
	increments map[uuid.UUID][]string
}

func (f *fakePostRepo) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*domain.Post, error) {
	if f.byIDs == nil {
		return nil, nil
	}
	return f.byIDs(ids)
}

func (f *fakePostRepo) FindBySocialGraph(_ dbctx.Context, authorIDs []uuid.UUID, since time.Time, limit int) ([]*domain.Post, error) {
	if f.social == nil {
		return nil, nil
	}
	return f.social(authorIDs, since, limit)
}

func (f *fakePostRepo) FindPopular(_ dbctx.Context, limit int) ([]*domain.Post, error) {
	if f.popular == nil {
		return nil, nil
	}
	return f.popular(limit)
}

func (f *fakePostRepo) FindNear(_ dbctx.Context, loc domain.GeoPoint, radiusKm float64, limit int) ([]*domain.Post, error) {
	if f.near == nil {
		return nil, nil
	}
	return f.near(loc, radiusKm, limit)
}

func (f *fakePostRepo) FindByTopics(_ dbctx.Context, keywords []string, limit int) ([]*domain.Post, error) {
	if f.byTopics == nil {
		return nil, nil
	}
	return f.byTopics(keywords, limit)
}

func (f *fakePostRepo) FindTrending(_ dbctx.Context, since time.Time, limit int) ([]*domain.Post, error) {
	if f.trending == nil {
		return nil, nil
	}
	return f.trending(since, limit)
}

func (f *fakePostRepo) FindChronological(_ dbctx.Context, authorIDs []uuid.UUID, limit, offset int) ([]*domain.Post, error) {
	if f.chrono == nil {
		return nil, nil
	}
	return f.chrono(authorIDs, limit, offset)
}

func (f *fakePostRepo) IncrementCounter(_ dbctx.Context, postID uuid.UUID, column string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.increments == nil {
		f.increments = map[uuid.UUID][]string{}
	}
	f.increments[postID] = append(f.increments[postID], column)
	return nil
}

type fakeSocialGraph struct {
	following []uuid.UUID
	followers []uuid.UUID
	mutuals   map[uuid.UUID]int64
	err       error
}

func (f *fakeSocialGraph) FollowingIDs(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return f.following, f.err
}

func (f *fakeSocialGraph) FollowerIDs(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return f.followers, f.err
}

func (f *fakeSocialGraph) MutualCounts(context.Context, uuid.UUID, []uuid.UUID) (map[uuid.UUID]int64, error) {
	return f.mutuals, f.err
}

func (f *fakeSocialGraph) Follow(context.Context, uuid.UUID, uuid.UUID) error   { return f.err }
func (f *fakeSocialGraph) Unfollow(context.Context, uuid.UUID, uuid.UUID) error { return f.err }

type fakeUserRepo struct {
	users []*domain.User
	err   error
}

func (f *fakeUserRepo) GetByIDs(dbctx.Context, []uuid.UUID) ([]*domain.User, error) {
	return f.users, f.err
}

func (f *fakeUserRepo) UpdateLastLocation(dbctx.Context, uuid.UUID, *domain.GeoPoint) error {
	return f.err
}

type fakePreferenceRepo struct {
	mu  sync.Mutex
	rec *domain.PreferenceRecord
	err error
}

func (f *fakePreferenceRepo) GetOrCreate(_ dbctx.Context, userID uuid.UUID) (*domain.PreferenceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rec == nil {
		f.rec = domain.NewDefaultPreferenceRecord(userID)
	}
	return f.rec, nil
}

func (f *fakePreferenceRepo) UpdateWithLock(_ dbctx.Context, userID uuid.UUID, fn func(*domain.PreferenceRecord) error) (*domain.PreferenceRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rec == nil {
		f.rec = domain.NewDefaultPreferenceRecord(userID)
	}
	if err := fn(f.rec); err != nil {
		return nil, err
	}
	return f.rec, nil
}

type fakeInteractionRepo struct {
	mu      sync.Mutex
	created []*domain.InteractionRecord

	recent       []*domain.InteractionRecord
	authorCounts []feedback.AuthorInteractionCount
	friendEng    map[uuid.UUID]int64
	stats        *feedback.ItemStats
	err          error
}

func (f *fakeInteractionRepo) Create(_ dbctx.Context, rows []*domain.InteractionRecord) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, rows...)
	return nil
}

func (f *fakeInteractionRepo) createdRecords() []*domain.InteractionRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.InteractionRecord, len(f.created))
	copy(out, f.created)
	return out
}

func (f *fakeInteractionRepo) RecentByUser(dbctx.Context, uuid.UUID, time.Time, int) ([]*domain.InteractionRecord, error) {
	return f.recent, f.err
}

func (f *fakeInteractionRepo) AuthorEngagement(dbctx.Context, uuid.UUID, time.Time) ([]feedback.AuthorInteractionCount, error) {
	return f.authorCounts, f.err
}

func (f *fakeInteractionRepo) FriendEngagement(dbctx.Context, []uuid.UUID, []uuid.UUID) (map[uuid.UUID]int64, error) {
	return f.friendEng, f.err
}

func (f *fakeInteractionRepo) ItemStats(dbctx.Context, uuid.UUID) (*feedback.ItemStats, error) {
	return f.stats, f.err
}

type fakeScoreStore struct {
	rec *domain.ContentScoreRecord
	err error
}

func (f *fakeScoreStore) Get(_ context.Context, post *domain.Post) (*domain.ContentScoreRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.rec != nil {
		return f.rec, nil
	}
	return domain.NeutralContentScore(post.ID, post.AuthorID), nil
}
