package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/petermazzocco/thumbnail-mixer/models"
)

// MixRepository defines data access for mixes.
type MixRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Mix, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Mix, error)
	Create(ctx context.Context, mix *models.Mix) error
}

// GORMMixRepository is a GORM implementation of MixRepository.
type GORMMixRepository struct {
	db *gorm.DB
}

func NewGORMMixRepository(db *gorm.DB) *GORMMixRepository {
	return &GORMMixRepository{db: db}
}

func (r *GORMMixRepository) GetByID(ctx context.Context, id uint) (*models.Mix, error) {
	var mix models.Mix
	if err := r.db.WithContext(ctx).First(&mix, id).Error; err != nil {
		return nil, notFound(err, "mix", id)
	}
	return &mix, nil
}

func (r *GORMMixRepository) ListByUser(ctx context.Context, userID uint) ([]models.Mix, error) {
	mixes := []models.Mix{}
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&mixes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list mixes for user %d: %w", userID, err)
	}
	return mixes, nil
}

func (r *GORMMixRepository) Create(ctx context.Context, mix *models.Mix) error {
	if mix.BlendingMethod == "" {
		mix.BlendingMethod = models.DefaultBlendingMethod
	}
	if mix.SourceThumbIDs == nil {
		mix.SourceThumbIDs = []uint{}
	}
	if err := r.db.WithContext(ctx).Omit("User").Create(mix).Error; err != nil {
		return fmt.Errorf("failed to create mix: %w", err)
	}
	return nil
}
