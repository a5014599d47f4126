package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumeo-social/lumeo-backend/internal/data/repos/content"
	"github.com/lumeo-social/lumeo-backend/internal/data/repos/feedback"
	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/platform/dbctx"
	"github.com/lumeo-social/lumeo-backend/internal/platform/errs"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

// interactionWeights maps an observed action to its learning weight.
var interactionWeights = map[string]float64{
	domain.InteractionView:    0.1,
	domain.InteractionLike:    0.3,
	domain.InteractionComment: 0.5,
	domain.InteractionShare:   0.7,
	domain.InteractionSave:    0.6,
	domain.InteractionClick:   0.4,
	domain.InteractionFollow:  0.8,
	domain.InteractionHide:    -0.5,
	domain.InteractionReport:  -1.0,
}

const defaultInteractionWeight = 0.1

func interactionWeight(interactionType string) float64 {
	if w, ok := interactionWeights[interactionType]; ok {
		return w
	}
	return defaultInteractionWeight
}

// Increment steps. Small on purpose: scores accumulate over many
// interactions and stay effectively damped toward [-1, 1].
const (
	topicStep    = 0.1
	postTypeStep = 0.05
	hourStep     = 0.02

	shownHourStep  = 0.01
	shownDayStep   = 0.01
	shownTypeStep  = 0.02
	shownTopicStep = 0.01
)

var interactionCounterColumns = map[string]string{
	domain.InteractionView:    "view_count",
	domain.InteractionLike:    "like_count",
	domain.InteractionComment: "comment_count",
	domain.InteractionShare:   "share_count",
	domain.InteractionSave:    "save_count",
}

// PreferenceLearner consumes tracked interactions and incrementally updates
// the per-user preference record.
type PreferenceLearner interface {
	RecordInteraction(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID, interactionType string, md *domain.InteractionMetadata) error
	// RecordShown nudges the preference histograms toward what was actually
	// surfaced, once per ranking response.
	RecordShown(ctx context.Context, userID uuid.UUID, items []*domain.ScoredPost) error
}

type preferenceLearner struct {
	log          *logger.Logger
	interactions feedback.InteractionRepo
	prefs        feedback.PreferenceRepo
	posts        content.PostRepo
}

func NewPreferenceLearner(log *logger.Logger, interactions feedback.InteractionRepo, prefs feedback.PreferenceRepo, posts content.PostRepo) PreferenceLearner {
	return &preferenceLearner{
		log:          log.With("service", "PreferenceLearner"),
		interactions: interactions,
		prefs:        prefs,
		posts:        posts,
	}
}

func (pl *preferenceLearner) RecordInteraction(ctx context.Context, userID uuid.UUID, targetType string, targetID uuid.UUID, interactionType string, md *domain.InteractionMetadata) error {
	if userID == uuid.Nil || targetID == uuid.Nil {
		return fmt.Errorf("user and target ids required: %w", errs.ErrInvalidArgument)
	}
	if targetType != domain.TargetTypePost && targetType != domain.TargetTypeUser {
		return fmt.Errorf("unknown target type %q: %w", targetType, errs.ErrInvalidArgument)
	}
	if !domain.ValidInteractionType(interactionType) {
		return fmt.Errorf("unknown interaction type %q: %w", interactionType, errs.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	if md == nil {
		md = &domain.InteractionMetadata{}
	}
	md.TimeOfDay = now.Hour()
	md.DayOfWeek = int(now.Weekday())

	record := &domain.InteractionRecord{
		ID:              uuid.New(),
		UserID:          userID,
		TargetType:      targetType,
		TargetID:        targetID,
		InteractionType: interactionType,
		CreatedAt:       now,
	}
	record.SetMetadata(md)

	dbc := dbctx.Context{Ctx: ctx}
	if err := pl.interactions.Create(dbc, []*domain.InteractionRecord{record}); err != nil {
		return fmt.Errorf("append interaction: %w", err)
	}

	if targetType != domain.TargetTypePost {
		return nil
	}

	weight := interactionWeight(interactionType)

	// Keep the raw counters fed so popularity/trending sources see the action.
	if column, ok := interactionCounterColumns[interactionType]; ok {
		if err := pl.posts.IncrementCounter(dbc, targetID, column); err != nil {
			pl.log.Warn("counter increment failed", "post_id", targetID, "column", column, "error", err)
		}
	}

	found, err := pl.posts.GetByIDs(dbc, []uuid.UUID{targetID})
	if err != nil || len(found) == 0 || found[0] == nil {
		// Without the post we cannot attribute topics or type; the appended
		// interaction record alone is still a valid observation.
		if err != nil {
			pl.log.Warn("post lookup failed during learning", "post_id", targetID, "error", err)
		}
		return nil
	}
	post := found[0]

	_, err = pl.prefs.UpdateWithLock(dbc, userID, func(prefs *domain.PreferenceRecord) error {
		applyInteraction(prefs, post, weight, now.Hour())
		return nil
	})
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	return nil
}

// applyInteraction folds one weighted post interaction into the record.
func applyInteraction(prefs *domain.PreferenceRecord, post *domain.Post, weight float64, hour int) {
	bumpTopics(prefs, post.TopicList(), weight*topicStep, 1)
	bumpPostType(prefs, post.Type, weight*postTypeStep)
	bumpHour(prefs, hour, weight*hourStep)
}

func (pl *preferenceLearner) RecordShown(ctx context.Context, userID uuid.UUID, items []*domain.ScoredPost) error {
	if userID == uuid.Nil || len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()

	records := make([]*domain.InteractionRecord, 0, len(items))
	for i, item := range items {
		if item == nil || item.Post == nil {
			continue
		}
		pos := i
		md := &domain.InteractionMetadata{
			FeedPosition: &pos,
			TimeOfDay:    now.Hour(),
			DayOfWeek:    int(now.Weekday()),
		}
		record := &domain.InteractionRecord{
			ID:              uuid.New(),
			UserID:          userID,
			TargetType:      domain.TargetTypePost,
			TargetID:        item.Post.ID,
			InteractionType: domain.InteractionShown,
			CreatedAt:       now,
		}
		record.SetMetadata(md)
		records = append(records, record)
	}

	dbc := dbctx.Context{Ctx: ctx}
	if err := pl.interactions.Create(dbc, records); err != nil {
		return fmt.Errorf("append shown records: %w", err)
	}

	typeCounts := make(map[string]int)
	topicCounts := make(map[string]int)
	totalTopics := 0
	for _, item := range items {
		if item == nil || item.Post == nil {
			continue
		}
		typeCounts[item.Post.Type]++
		for _, t := range item.Post.TopicList() {
			topicCounts[t]++
			totalTopics++
		}
	}

	n := float64(len(items))
	_, err := pl.prefs.UpdateWithLock(dbc, userID, func(prefs *domain.PreferenceRecord) error {
		bumpHour(prefs, now.Hour(), shownHourStep)
		bumpDay(prefs, int(now.Weekday()), shownDayStep)
		for postType, count := range typeCounts {
			bumpPostType(prefs, postType, float64(count)/n*shownTypeStep)
		}
		if totalTopics > 0 {
			for topic, count := range topicCounts {
				bumpTopics(prefs, []string{topic}, float64(count)/float64(totalTopics)*shownTopicStep, 0)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	return nil
}

// bumpTopics increments matching topic affinities, creating new entries if
// absent. New topics past the cap are dropped, never evicted.
func bumpTopics(prefs *domain.PreferenceRecord, keywords []string, delta float64, freqStep int64) {
	if len(keywords) == 0 || delta == 0 {
		return
	}
	topics := prefs.Topics()
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		found := false
		for i := range topics {
			if topics[i].Keyword == kw {
				topics[i].Score += delta
				topics[i].Frequency += freqStep
				found = true
				break
			}
		}
		if !found && len(topics) < domain.MaxTopicAffinities {
			topics = append(topics, domain.TopicAffinity{
				Keyword:   kw,
				Score:     delta,
				Frequency: maxInt64(freqStep, 1),
			})
		}
	}
	prefs.SetTopics(topics)
}

func bumpPostType(prefs *domain.PreferenceRecord, postType string, delta float64) {
	if postType == "" || delta == 0 {
		return
	}
	types := prefs.PostTypes()
	for i := range types {
		if types[i].Type == postType {
			types[i].Score += delta
			prefs.SetPostTypes(types)
			return
		}
	}
	prefs.SetPostTypes(append(types, domain.PostTypeAffinity{Type: postType, Score: delta}))
}

func bumpHour(prefs *domain.PreferenceRecord, hour int, delta float64) {
	hours := prefs.Hours()
	if hour < 0 || hour >= len(hours) {
		return
	}
	hours[hour].Activity += delta
	prefs.SetHours(hours)
}

func bumpDay(prefs *domain.PreferenceRecord, day int, delta float64) {
	days := prefs.Days()
	if day < 0 || day >= len(days) {
		return
	}
	days[day].Activity += delta
	prefs.SetDays(days)
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
