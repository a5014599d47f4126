package content

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/platform/dbctx"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

// PostRepo exposes one narrow query per candidate source plus the
// chronological fallback; the candidate retriever depends only on these.
type PostRepo interface {
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Post, error)
	FindBySocialGraph(dbc dbctx.Context, authorIDs []uuid.UUID, since time.Time, limit int) ([]*domain.Post, error)
	FindPopular(dbc dbctx.Context, limit int) ([]*domain.Post, error)
	FindNear(dbc dbctx.Context, loc domain.GeoPoint, radiusKm float64, limit int) ([]*domain.Post, error)
	FindByTopics(dbc dbctx.Context, keywords []string, limit int) ([]*domain.Post, error)
	FindTrending(dbc dbctx.Context, since time.Time, limit int) ([]*domain.Post, error)
	FindChronological(dbc dbctx.Context, authorIDs []uuid.UUID, limit, offset int) ([]*domain.Post, error)
	IncrementCounter(dbc dbctx.Context, postID uuid.UUID, column string) error
}

type postRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostRepo(db *gorm.DB, baseLog *logger.Logger) PostRepo {
	return &postRepo{db: db, log: baseLog.With("repo", "PostRepo")}
}

const engagementOrder = "like_count + comment_count * 2 + share_count * 3 + save_count * 2 DESC"

func (r *postRepo) tx(dbc dbctx.Context) *gorm.DB {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx)
}

func (r *postRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Post, error) {
	var results []*domain.Post
	if len(ids) == 0 {
		return results, nil
	}
	if err := r.tx(dbc).
		Preload("Author").
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *postRepo) FindBySocialGraph(dbc dbctx.Context, authorIDs []uuid.UUID, since time.Time, limit int) ([]*domain.Post, error) {
	var results []*domain.Post
	if len(authorIDs) == 0 || limit <= 0 {
		return results, nil
	}
	if err := r.tx(dbc).
		Preload("Author").
		Where("author_id IN ?", authorIDs).
		Where("visibility IN ?", []string{domain.VisibilityPublic, domain.VisibilityConnections}).
		Where("created_at >= ?", since).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *postRepo) FindPopular(dbc dbctx.Context, limit int) ([]*domain.Post, error) {
	var results []*domain.Post
	if limit <= 0 {
		return results, nil
	}
	if err := r.tx(dbc).
		Preload("Author").
		Where("visibility = ?", domain.VisibilityPublic).
		Order(engagementOrder).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FindNear prefilters with a degree bounding box and applies the exact
// great-circle cutoff in Go.
func (r *postRepo) FindNear(dbc dbctx.Context, loc domain.GeoPoint, radiusKm float64, limit int) ([]*domain.Post, error) {
	var rows []*domain.Post
	if limit <= 0 || radiusKm <= 0 {
		return rows, nil
	}

	latDelta := radiusKm / 111.0
	lonDelta := radiusKm / (111.0 * math.Max(0.01, math.Cos(loc.Lat*math.Pi/180)))

	if err := r.tx(dbc).
		Preload("Author").
		Where("visibility = ?", domain.VisibilityPublic).
		Where("lat IS NOT NULL AND lon IS NOT NULL").
		Where("lat BETWEEN ? AND ?", loc.Lat-latDelta, loc.Lat+latDelta).
		Where("lon BETWEEN ? AND ?", loc.Lon-lonDelta, loc.Lon+lonDelta).
		Order("created_at DESC").
		Limit(limit * 2).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	results := make([]*domain.Post, 0, limit)
	for _, p := range rows {
		pl := p.Location()
		if pl == nil || loc.DistanceKm(*pl) > radiusKm {
			continue
		}
		results = append(results, p)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (r *postRepo) FindByTopics(dbc dbctx.Context, keywords []string, limit int) ([]*domain.Post, error) {
	var results []*domain.Post
	if len(keywords) == 0 || limit <= 0 {
		return results, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keywords)), ",")
	args := make([]interface{}, 0, len(keywords))
	for _, kw := range keywords {
		args = append(args, kw)
	}

	if err := r.tx(dbc).
		Preload("Author").
		Where("visibility = ?", domain.VisibilityPublic).
		Where("jsonb_exists_any(topics, ARRAY["+placeholders+"])", args...).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *postRepo) FindTrending(dbc dbctx.Context, since time.Time, limit int) ([]*domain.Post, error) {
	var results []*domain.Post
	if limit <= 0 {
		return results, nil
	}
	if err := r.tx(dbc).
		Preload("Author").
		Where("visibility = ?", domain.VisibilityPublic).
		Where("created_at >= ?", since).
		Order(engagementOrder).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FindChronological backs the fallback feed: followed-or-public posts in
// reverse chronological order.
func (r *postRepo) FindChronological(dbc dbctx.Context, authorIDs []uuid.UUID, limit, offset int) ([]*domain.Post, error) {
	var results []*domain.Post
	if limit <= 0 {
		return results, nil
	}
	if offset < 0 {
		offset = 0
	}

	q := r.tx(dbc).Preload("Author")
	if len(authorIDs) > 0 {
		q = q.Where("visibility = ? OR author_id IN ?", domain.VisibilityPublic, authorIDs)
	} else {
		q = q.Where("visibility = ?", domain.VisibilityPublic)
	}

	if err := q.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

var counterColumns = map[string]struct{}{
	"view_count":    {},
	"like_count":    {},
	"comment_count": {},
	"share_count":   {},
	"save_count":    {},
}

func (r *postRepo) IncrementCounter(dbc dbctx.Context, postID uuid.UUID, column string) error {
	if postID == uuid.Nil {
		return nil
	}
	if _, ok := counterColumns[column]; !ok {
		return nil
	}
	return r.tx(dbc).
		Model(&domain.Post{}).
		Where("id = ?", postID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}
