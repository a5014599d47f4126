package feedback

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/platform/dbctx"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

type PreferenceRepo interface {
	// GetOrCreate returns the user's preference record, creating the zeroed
	// default on first access.
	GetOrCreate(dbc dbctx.Context, userID uuid.UUID) (*domain.PreferenceRecord, error)
	// UpdateWithLock runs fn against a row-locked copy of the record and
	// persists the result. Concurrent bursts degrade to last-writer-wins.
	UpdateWithLock(dbc dbctx.Context, userID uuid.UUID, fn func(*domain.PreferenceRecord) error) (*domain.PreferenceRecord, error)
}

type preferenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPreferenceRepo(db *gorm.DB, baseLog *logger.Logger) PreferenceRepo {
	return &preferenceRepo{db: db, log: baseLog.With("repo", "PreferenceRepo")}
}

func (r *preferenceRepo) GetOrCreate(dbc dbctx.Context, userID uuid.UUID) (*domain.PreferenceRecord, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required")
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}

	var row domain.PreferenceRecord
	err := t.WithContext(dbc.Ctx).Where("user_id = ?", userID).First(&row).Error
	if err == nil {
		return &row, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := domain.NewDefaultPreferenceRecord(userID)
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(created).Error; err != nil {
		return nil, err
	}

	// Re-read in case a concurrent request created the row first.
	if err := t.WithContext(dbc.Ctx).Where("user_id = ?", userID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *preferenceRepo) UpdateWithLock(dbc dbctx.Context, userID uuid.UUID, fn func(*domain.PreferenceRecord) error) (*domain.PreferenceRecord, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id required")
	}
	if fn == nil {
		return nil, fmt.Errorf("update fn required")
	}

	if _, err := r.GetOrCreate(dbc, userID); err != nil {
		return nil, err
	}

	run := func(tx *gorm.DB) (*domain.PreferenceRecord, error) {
		var row domain.PreferenceRecord
		if err := tx.WithContext(dbc.Ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).
			First(&row).Error; err != nil {
			return nil, err
		}
		if err := fn(&row); err != nil {
			return nil, err
		}
		row.LastUpdated = time.Now().UTC()
		if err := tx.WithContext(dbc.Ctx).Save(&row).Error; err != nil {
			return nil, err
		}
		return &row, nil
	}

	if dbc.Tx != nil {
		return run(dbc.Tx)
	}

	var out *domain.PreferenceRecord
	if err := r.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		row, err := run(tx)
		if err != nil {
			return err
		}
		out = row
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}
