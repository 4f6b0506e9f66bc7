package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/petermazzocco/thumbnail-mixer/models"
)

// UserRepository defines data access for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// UpsertOnSignIn creates the user on first sign-in or refreshes the
	// profile and LastSignedIn on later ones.
	UpsertOnSignIn(ctx context.Context, user *models.User) error
}

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

func (r *GORMUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return &user, nil
}

func (r *GORMUserRepository) UpsertOnSignIn(ctx context.Context, user *models.User) error {
	if user.OpenID == "" {
		return fmt.Errorf("user open id is required")
	}
	now := time.Now()
	user.LastSignedIn = now
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "open_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email", "login_method", "last_signed_in", "updated_at"}),
	}).Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", user.OpenID, err)
	}

	// The conflict path does not report the existing primary key on every dialect.
	if err := r.db.WithContext(ctx).Where("open_id = ?", user.OpenID).First(user).Error; err != nil {
		return fmt.Errorf("failed to reload user %s: %w", user.OpenID, err)
	}
	return nil
}
