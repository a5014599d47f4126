package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/platform/errs"
)

func newTestLearner(t *testing.T, posts *fakePostRepo, interactions *fakeInteractionRepo, prefs *fakePreferenceRepo) PreferenceLearner {
	t.Helper()
	return NewPreferenceLearner(testLogger(t), interactions, prefs, posts)
}

func TestRecordInteractionRejectsUnknownType(t *testing.T) {
	learner := newTestLearner(t, &fakePostRepo{}, &fakeInteractionRepo{}, &fakePreferenceRepo{})

	err := learner.RecordInteraction(context.Background(), uuid.New(), domain.TargetTypePost, uuid.New(), "poke", nil)
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestRecordInteractionAppendsAndLearns(t *testing.T) {
	userID := uuid.New()
	post := testPost(uuid.New(), time.Now().UTC().Add(-time.Hour), "golang", "distsys")
	post.Type = domain.PostTypeVideo

	postsRepo := &fakePostRepo{
		byIDs: func([]uuid.UUID) ([]*domain.Post, error) {
			return []*domain.Post{post}, nil
		},
	}
	interactions := &fakeInteractionRepo{}
	prefs := &fakePreferenceRepo{}
	learner := newTestLearner(t, postsRepo, interactions, prefs)

	if err := learner.RecordInteraction(context.Background(), userID, domain.TargetTypePost, post.ID, domain.InteractionLike, nil); err != nil {
		t.Fatalf("record interaction: %v", err)
	}

	created := interactions.createdRecords()
	if len(created) != 1 {
		t.Fatalf("created %d records, want 1", len(created))
	}
	rec := created[0]
	if rec.InteractionType != domain.InteractionLike || rec.TargetID != post.ID || rec.UserID != userID {
		t.Fatalf("unexpected record %+v", rec)
	}
	if md := rec.DecodedMetadata(); md == nil {
		t.Fatal("record missing metadata time fields")
	}

	if cols := postsRepo.increments[post.ID]; len(cols) != 1 || cols[0] != "like_count" {
		t.Fatalf("counter increments = %v, want [like_count]", cols)
	}

	// like weight 0.3: topics +0.03, post type +0.015.
	if got := prefs.rec.TopicScore("golang"); !approx(got, 0.3*topicStep) {
		t.Fatalf("topic score = %v, want %v", got, 0.3*topicStep)
	}
	if got := prefs.rec.PostTypeScore(domain.PostTypeVideo); !approx(got, 0.3*postTypeStep) {
		t.Fatalf("post type score = %v, want %v", got, 0.3*postTypeStep)
	}
}

func TestNegativeInteractionLowersAffinity(t *testing.T) {
	userID := uuid.New()
	post := testPost(uuid.New(), time.Now().UTC(), "spam")
	postsRepo := &fakePostRepo{
		byIDs: func([]uuid.UUID) ([]*domain.Post, error) {
			return []*domain.Post{post}, nil
		},
	}
	prefs := &fakePreferenceRepo{}
	learner := newTestLearner(t, postsRepo, &fakeInteractionRepo{}, prefs)

	if err := learner.RecordInteraction(context.Background(), userID, domain.TargetTypePost, post.ID, domain.InteractionReport, nil); err != nil {
		t.Fatalf("record interaction: %v", err)
	}
	if got := prefs.rec.TopicScore("spam"); got >= 0 {
		t.Fatalf("topic score after report = %v, want negative", got)
	}
}

func TestTopicCapDropsNewKeywords(t *testing.T) {
	userID := uuid.New()
	full := make([]domain.TopicAffinity, domain.MaxTopicAffinities)
	for i := range full {
		full[i] = domain.TopicAffinity{Keyword: fmt.Sprintf("topic-%d", i), Score: 0.5, Frequency: 1}
	}
	prefs := &fakePreferenceRepo{rec: domain.NewDefaultPreferenceRecord(userID)}
	prefs.rec.SetTopics(full)

	post := testPost(uuid.New(), time.Now().UTC(), "brand-new", "topic-0")
	postsRepo := &fakePostRepo{
		byIDs: func([]uuid.UUID) ([]*domain.Post, error) {
			return []*domain.Post{post}, nil
		},
	}
	learner := newTestLearner(t, postsRepo, &fakeInteractionRepo{}, prefs)

	if err := learner.RecordInteraction(context.Background(), userID, domain.TargetTypePost, post.ID, domain.InteractionLike, nil); err != nil {
		t.Fatalf("record interaction: %v", err)
	}

	topics := prefs.rec.Topics()
	if len(topics) != domain.MaxTopicAffinities {
		t.Fatalf("topic count = %d, want capped at %d", len(topics), domain.MaxTopicAffinities)
	}
	if got := prefs.rec.TopicScore("brand-new"); got != 0 {
		t.Fatalf("over-cap keyword tracked with score %v, want dropped", got)
	}
	if got := prefs.rec.TopicScore("topic-0"); !approx(got, 0.5+0.3*topicStep) {
		t.Fatalf("existing keyword score = %v, want bumped to %v", got, 0.5+0.3*topicStep)
	}
}

func TestRecordShownAppendsOnePerItem(t *testing.T) {
	userID := uuid.New()
	items := []*domain.ScoredPost{
		{Post: testPost(uuid.New(), time.Now().UTC(), "golang")},
		{Post: testPost(uuid.New(), time.Now().UTC(), "golang")},
		{Post: testPost(uuid.New(), time.Now().UTC(), "cooking")},
	}
	interactions := &fakeInteractionRepo{}
	prefs := &fakePreferenceRepo{}
	learner := newTestLearner(t, &fakePostRepo{}, interactions, prefs)

	if err := learner.RecordShown(context.Background(), userID, items); err != nil {
		t.Fatalf("record shown: %v", err)
	}

	created := interactions.createdRecords()
	if len(created) != len(items) {
		t.Fatalf("created %d records, want %d", len(created), len(items))
	}
	for i, rec := range created {
		if rec.InteractionType != domain.InteractionShown {
			t.Fatalf("record %d type = %q, want %q", i, rec.InteractionType, domain.InteractionShown)
		}
		md := rec.DecodedMetadata()
		if md == nil || md.FeedPosition == nil || *md.FeedPosition != i {
			t.Fatalf("record %d missing feed position %d", i, i)
		}
	}

	// Shown exposure nudges, proportional to share of the page.
	if got := prefs.rec.TopicScore("golang"); !approx(got, 2.0/3.0*shownTopicStep) {
		t.Fatalf("golang exposure score = %v, want %v", got, 2.0/3.0*shownTopicStep)
	}
}

func approx(got, want float64) bool {
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
