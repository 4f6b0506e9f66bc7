package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/petermazzocco/thumbnail-mixer/internal/events"
	"github.com/petermazzocco/thumbnail-mixer/internal/llm"
	"github.com/petermazzocco/thumbnail-mixer/internal/storage"
	"github.com/petermazzocco/thumbnail-mixer/internal/store"
	"github.com/petermazzocco/thumbnail-mixer/models"
)

// ProbeFunc reports the pixel dimensions of an encoded image.
type ProbeFunc func(data []byte) (width, height int, err error)

// ThumbnailAnalysis is the structured answer of the analysis prompt.
type ThumbnailAnalysis struct {
	DominantColors  []string             `json:"dominantColors"`
	TextElements    []models.TextElement `json:"textElements"`
	Composition     string               `json:"composition"`
	EngagementScore int                  `json:"engagementScore"`
	Suggestions     []string             `json:"suggestions"`
}

// rawAnalysis mirrors the response schema; pointers detect missing fields.
type rawAnalysis struct {
	DominantColors  *[]string             `json:"dominantColors"`
	TextElements    *[]models.TextElement `json:"textElements"`
	Composition     *string               `json:"composition"`
	EngagementScore *float64              `json:"engagementScore"`
	Suggestions     *[]string             `json:"suggestions"`
}

func (r rawAnalysis) normalize() (*ThumbnailAnalysis, error) {
	if r.DominantColors == nil || r.TextElements == nil || r.Composition == nil ||
		r.EngagementScore == nil || r.Suggestions == nil {
		return nil, fmt.Errorf("%w: analysis is missing required fields", llm.ErrMalformedResponse)
	}
	return &ThumbnailAnalysis{
		DominantColors:  *r.DominantColors,
		TextElements:    *r.TextElements,
		Composition:     *r.Composition,
		EngagementScore: int(math.Round(*r.EngagementScore)),
		Suggestions:     *r.Suggestions,
	}, nil
}

// UploadInput is a single uploaded image file.
type UploadInput struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ThumbnailService handles thumbnail uploads, lookups and analysis.
type ThumbnailService struct {
	thumbnails store.ThumbnailRepository
	completer  llm.Completer
	objects    storage.Store
	probe      ProbeFunc
	publisher  events.Publisher
	log        *slog.Logger
}

func NewThumbnailService(
	thumbnails store.ThumbnailRepository,
	completer llm.Completer,
	objects storage.Store,
	probe ProbeFunc,
	publisher events.Publisher,
	log *slog.Logger,
) *ThumbnailService {
	return &ThumbnailService{
		thumbnails: thumbnails,
		completer:  completer,
		objects:    objects,
		probe:      probe,
		publisher:  publisher,
		log:        log,
	}
}

// List returns the caller's thumbnails with their analyses.
func (s *ThumbnailService) List(ctx context.Context, userID uint) ([]models.Thumbnail, error) {
	return s.thumbnails.ListByUser(ctx, userID)
}

// Get returns a thumbnail owned by userID.
func (s *ThumbnailService) Get(ctx context.Context, userID, id uint) (*models.Thumbnail, error) {
	thumbnail, err := s.thumbnails.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if thumbnail.UserID != userID {
		return nil, ErrNotFound
	}
	return thumbnail, nil
}

// Upload stores the image and records it for userID.
func (s *ThumbnailService) Upload(ctx context.Context, userID uint, in UploadInput) (*models.Thumbnail, error) {
	thumbnail := &models.Thumbnail{
		UserID:   userID,
		FileName: in.FileName,
		MimeType: in.ContentType,
		FileSize: int64(len(in.Data)),
	}

	if s.probe != nil {
		width, height, err := s.probe(in.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		thumbnail.Width, thumbnail.Height = &width, &height
	}

	thumbnail.FileKey = storage.ThumbnailKey(userID, in.FileName)
	url, err := s.objects.Put(ctx, thumbnail.FileKey, bytes.NewReader(in.Data), in.ContentType)
	if err != nil {
		return nil, err
	}
	thumbnail.FileURL = url

	if err := s.thumbnails.Create(ctx, thumbnail); err != nil {
		return nil, err
	}
	s.log.Info("thumbnail uploaded", "thumbnail_id", thumbnail.ID, "user_id", userID, "key", thumbnail.FileKey)

	events.Notify(s.log, s.publisher, events.ThumbnailUploaded, map[string]any{
		"thumbnailId": thumbnail.ID,
		"userId":      userID,
		"fileUrl":     thumbnail.FileURL,
	})
	return thumbnail, nil
}

// Analyze asks the model to describe the thumbnail and persists the answer.
// Nothing is written unless the model answer parses completely.
func (s *ThumbnailService) Analyze(ctx context.Context, userID, thumbnailID uint) (*ThumbnailAnalysis, error) {
	thumbnail, err := s.Get(ctx, userID, thumbnailID)
	if err != nil {
		return nil, err
	}

	completion, err := s.completer.Complete(ctx, analyzeRequest(thumbnail.FileURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	var raw rawAnalysis
	if err := completion.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	result, err := raw.normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	analysis := &models.Analysis{
		ThumbnailID:     thumbnail.ID,
		DominantColors:  result.DominantColors,
		TextElements:    result.TextElements,
		Composition:     &result.Composition,
		EngagementScore: &result.EngagementScore,
		Suggestions:     result.Suggestions,
	}
	if err := s.thumbnails.SaveAnalysis(ctx, analysis); err != nil {
		return nil, err
	}
	s.log.Info("thumbnail analyzed", "thumbnail_id", thumbnail.ID, "analysis_id", analysis.ID, "score", result.EngagementScore)

	events.Notify(s.log, s.publisher, events.ThumbnailAnalyzed, map[string]any{
		"thumbnailId":     thumbnail.ID,
		"analysisId":      analysis.ID,
		"engagementScore": result.EngagementScore,
	})
	return result, nil
}
