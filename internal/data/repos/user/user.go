package user

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/platform/dbctx"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

type UserRepo interface {
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.User, error)
	UpdateLastLocation(dbc dbctx.Context, userID uuid.UUID, loc *domain.GeoPoint) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.User, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}

	var results []*domain.User
	if len(ids) == 0 {
		return results, nil
	}

	if err := t.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userRepo) UpdateLastLocation(dbc dbctx.Context, userID uuid.UUID, loc *domain.GeoPoint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if userID == uuid.Nil || loc == nil {
		return nil
	}

	return t.WithContext(dbc.Ctx).
		Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"last_lat":     loc.Lat,
			"last_lon":     loc.Lon,
			"last_city":    loc.City,
			"last_country": loc.Country,
		}).Error
}
