// Package testutil provides the shared postgres harness for repo
// integration tests. Tests skip unless TEST_POSTGRES_DSN points at a
// throwaway database.
package testutil

import (
	"os"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lumeo-social/lumeo-backend/internal/domain"
	"github.com/lumeo-social/lumeo-backend/internal/platform/logger"
)

func Logger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

// DB opens the integration database and migrates the schema. Skips the test
// when TEST_POSTGRES_DSN is unset.
func DB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("set TEST_POSTGRES_DSN to run postgres integration tests")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		t.Fatalf("uuid-ossp extension: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Post{},
		&domain.PreferenceRecord{},
		&domain.InteractionRecord{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// Tx returns a transaction that rolls back when the test finishes, so tests
// never leak rows into the shared database.
func Tx(t *testing.T, db *gorm.DB) *gorm.DB {
	t.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() { tx.Rollback() })
	return tx
}

// SeedUser inserts a minimal user row.
func SeedUser(t *testing.T, tx *gorm.DB, u *domain.User) *domain.User {
	t.Helper()
	if u.Email == "" {
		u.Email = u.ID.String() + "@example.test"
	}
	if u.Handle == "" {
		u.Handle = "u_" + u.ID.String()[:8]
	}
	if err := tx.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedPost inserts a post row.
func SeedPost(t *testing.T, tx *gorm.DB, p *domain.Post) *domain.Post {
	t.Helper()
	if p.Type == "" {
		p.Type = domain.PostTypeText
	}
	if p.Visibility == "" {
		p.Visibility = domain.VisibilityPublic
	}
	if len(p.Topics) == 0 {
		p.SetTopicList(nil)
	}
	if err := tx.Create(p).Error; err != nil {
		t.Fatalf("seed post: %v", err)
	}
	return p
}
