package store

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/petermazzocco/thumbnail-mixer/models"
)

// ThumbnailRepository defines data access for thumbnails and their analyses.
type ThumbnailRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Thumbnail, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Thumbnail, error)
	Create(ctx context.Context, thumbnail *models.Thumbnail) error
	// SaveAnalysis inserts the analysis and refreshes the thumbnail's legacy
	// analysis column in one transaction.
	SaveAnalysis(ctx context.Context, analysis *models.Analysis) error
	LatestAnalysis(ctx context.Context, thumbnailID uint) (*models.Analysis, error)
}

// GORMThumbnailRepository is a GORM implementation of ThumbnailRepository.
type GORMThumbnailRepository struct {
	db *gorm.DB
}

func NewGORMThumbnailRepository(db *gorm.DB) *GORMThumbnailRepository {
	return &GORMThumbnailRepository{db: db}
}

func analysesByID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (r *GORMThumbnailRepository) GetByID(ctx context.Context, id uint) (*models.Thumbnail, error) {
	var thumbnail models.Thumbnail
	err := r.db.WithContext(ctx).Preload("Analyses", analysesByID).First(&thumbnail, id).Error
	if err != nil {
		return nil, notFound(err, "thumbnail", id)
	}
	return &thumbnail, nil
}

func (r *GORMThumbnailRepository) ListByUser(ctx context.Context, userID uint) ([]models.Thumbnail, error) {
	thumbnails := []models.Thumbnail{}
	err := r.db.WithContext(ctx).
		Preload("Analyses", analysesByID).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&thumbnails).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list thumbnails for user %d: %w", userID, err)
	}
	return thumbnails, nil
}

func (r *GORMThumbnailRepository) Create(ctx context.Context, thumbnail *models.Thumbnail) error {
	if thumbnail.MimeType == "" {
		thumbnail.MimeType = models.DefaultMimeType
	}
	if err := r.db.WithContext(ctx).Omit("Analyses", "User").Create(thumbnail).Error; err != nil {
		return fmt.Errorf("failed to create thumbnail: %w", err)
	}
	thumbnail.Analyses = []models.Analysis{}
	return nil
}

func (r *GORMThumbnailRepository) SaveAnalysis(ctx context.Context, analysis *models.Analysis) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Thumbnail").Create(analysis).Error; err != nil {
			return fmt.Errorf("failed to create analysis: %w", err)
		}

		legacy, err := json.Marshal(analysis)
		if err != nil {
			return fmt.Errorf("failed to encode analysis: %w", err)
		}
		res := tx.Model(&models.Thumbnail{}).
			Where("id = ?", analysis.ThumbnailID).
			Update("analysis", datatypes.JSON(legacy))
		if res.Error != nil {
			return fmt.Errorf("failed to update thumbnail %d analysis: %w", analysis.ThumbnailID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("thumbnail %d: %w", analysis.ThumbnailID, ErrNotFound)
		}
		return nil
	})
}

func (r *GORMThumbnailRepository) LatestAnalysis(ctx context.Context, thumbnailID uint) (*models.Analysis, error) {
	var analysis models.Analysis
	err := r.db.WithContext(ctx).
		Where("thumbnail_id = ?", thumbnailID).
		Order("id DESC").
		First(&analysis).Error
	if err != nil {
		return nil, notFound(err, "analysis for thumbnail", thumbnailID)
	}
	return &analysis, nil
}
