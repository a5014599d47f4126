package feedback

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/platform/dbctx"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

// AuthorInteractionCount is one (author, interaction type) bucket of the
// user's recent history, joined through the target posts.
type AuthorInteractionCount struct {
	AuthorID        uuid.UUID `gorm:"column:author_id"`
	InteractionType string    `gorm:"column:interaction_type"`
	Count           int64     `gorm:"column:count"`
}

// ItemStats aggregates the interaction log for one content item.
type ItemStats struct {
	Views        int64   `gorm:"column:views"`
	Clicks       int64   `gorm:"column:clicks"`
	AvgDwellTime float64 `gorm:"column:avg_dwell_time"`
}

type InteractionRepo interface {
	// Create appends records; rows are never updated or deleted here.
	Create(dbc dbctx.Context, rows []*domain.InteractionRecord) error
	RecentByUser(dbc dbctx.Context, userID uuid.UUID, since time.Time, limit int) ([]*domain.InteractionRecord, error)
	AuthorEngagement(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]AuthorInteractionCount, error)
	FriendEngagement(dbc dbctx.Context, postIDs, friendIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	ItemStats(dbc dbctx.Context, targetID uuid.UUID) (*ItemStats, error)
}

type interactionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInteractionRepo(db *gorm.DB, baseLog *logger.Logger) InteractionRepo {
	return &interactionRepo{db: db, log: baseLog.With("repo", "InteractionRepo")}
}

func (r *interactionRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *interactionRepo) Create(dbc dbctx.Context, rows []*domain.InteractionRecord) error {
	if len(rows) == 0 {
		return nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.CreatedAt.IsZero() {
			row.CreatedAt = time.Now().UTC()
		}
	}
	return r.tx(dbc).Create(&rows).Error
}

func (r *interactionRepo) RecentByUser(dbc dbctx.Context, userID uuid.UUID, since time.Time, limit int) ([]*domain.InteractionRecord, error) {
	var results []*domain.InteractionRecord
	if userID == uuid.Nil || limit <= 0 {
		return results, nil
	}
	if err := r.tx(dbc).
		Where("user_id = ?", userID).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *interactionRepo) AuthorEngagement(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]AuthorInteractionCount, error) {
	var rows []AuthorInteractionCount
	if userID == uuid.Nil {
		return rows, nil
	}
	if err := r.tx(dbc).
		Table("interaction_record AS i").
		Select("p.author_id AS author_id, i.interaction_type AS interaction_type, COUNT(*) AS count").
		Joins("JOIN post p ON p.id = i.target_id").
		Where("i.user_id = ?", userID).
		Where("i.target_type = ?", domain.TargetTypePost).
		Where("i.created_at >= ?", since).
		Group("p.author_id, i.interaction_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *interactionRepo) FriendEngagement(dbc dbctx.Context, postIDs, friendIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64)
	if len(postIDs) == 0 || len(friendIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		TargetID uuid.UUID `gorm:"column:target_id"`
		Count    int64     `gorm:"column:count"`
	}
	if err := r.tx(dbc).
		Model(&domain.InteractionRecord{}).
		Select("target_id, COUNT(*) AS count").
		Where("target_type = ?", domain.TargetTypePost).
		Where("target_id IN ?", postIDs).
		Where("user_id IN ?", friendIDs).
		Where("interaction_type IN ?", []string{
			domain.InteractionLike, domain.InteractionComment,
			domain.InteractionShare, domain.InteractionSave,
		}).
		Group("target_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TargetID] = row.Count
	}
	return out, nil
}

func (r *interactionRepo) ItemStats(dbc dbctx.Context, targetID uuid.UUID) (*ItemStats, error) {
	if targetID == uuid.Nil {
		return &ItemStats{}, nil
	}
	var stats ItemStats
	if err := r.tx(dbc).
		Model(&domain.InteractionRecord{}).
		Select(
			"COUNT(*) FILTER (WHERE interaction_type = 'view') AS views, "+
				"COUNT(*) FILTER (WHERE interaction_type = 'click') AS clicks, "+
				"COALESCE(AVG((metadata->>'dwell_time')::float), 0) AS avg_dwell_time").
		Where("target_type = ?", domain.TargetTypePost).
		Where("target_id = ?", targetID).
		Scan(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
