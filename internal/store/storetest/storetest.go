// Package storetest opens throwaway in-memory databases for tests.
package storetest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/petermazzocco/thumbnail-mixer/internal/store"
	"github.com/petermazzocco/thumbnail-mixer/models"
)

// Open returns a migrated in-memory sqlite database private to t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := store.Open("sqlite", dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	// One connection keeps concurrent lookups from tripping shared-cache table locks.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// SeedUser inserts a user with the given open id.
func SeedUser(t testing.TB, db *gorm.DB, openID string) *models.User {
	t.Helper()
	user := &models.User{OpenID: openID, Name: openID, Email: openID + "@example.com", Role: models.RoleUser}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return user
}

// SeedThumbnail inserts a thumbnail owned by userID.
func SeedThumbnail(t testing.TB, db *gorm.DB, userID uint, name string) *models.Thumbnail {
	t.Helper()
	thumbnail := &models.Thumbnail{
		UserID:   userID,
		FileName: name,
		FileKey:  fmt.Sprintf("thumbnails/%d/%s", userID, name),
		FileURL:  fmt.Sprintf("https://cdn.example.com/thumbnails/%d/%s", userID, name),
		MimeType: models.DefaultMimeType,
		FileSize: 1024,
	}
	if err := db.Omit("Analyses", "User").Create(thumbnail).Error; err != nil {
		t.Fatalf("failed to seed thumbnail: %v", err)
	}
	return thumbnail
}
