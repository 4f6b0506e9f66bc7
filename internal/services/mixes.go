package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/petermazzocco/thumbnail-mixer/internal/events"
	"github.com/petermazzocco/thumbnail-mixer/internal/llm"
	"github.com/petermazzocco/thumbnail-mixer/internal/store"
	"github.com/petermazzocco/thumbnail-mixer/models"
)

// MixSuggestions is the model's blending advice plus the analyses it saw,
// in request order. Thumbnails without an analysis have a nil entry.
type MixSuggestions struct {
	Suggestions  string             `json:"suggestions"`
	AnalysisData []*models.Analysis `json:"analysisData"`
}

type CreateMixInput struct {
	Name           string
	Description    *string
	SourceThumbIDs []uint
	BlendingMethod string
	RAGSuggestions *string
}

// MixService handles mixes and mix suggestions.
type MixService struct {
	mixes      store.MixRepository
	thumbnails store.ThumbnailRepository
	completer  llm.Completer
	publisher  events.Publisher
	log        *slog.Logger
}

func NewMixService(
	mixes store.MixRepository,
	thumbnails store.ThumbnailRepository,
	completer llm.Completer,
	publisher events.Publisher,
	log *slog.Logger,
) *MixService {
	return &MixService{
		mixes:      mixes,
		thumbnails: thumbnails,
		completer:  completer,
		publisher:  publisher,
		log:        log,
	}
}

func (s *MixService) List(ctx context.Context, userID uint) ([]models.Mix, error) {
	return s.mixes.ListByUser(ctx, userID)
}

// Get returns a mix owned by userID.
func (s *MixService) Get(ctx context.Context, userID, id uint) (*models.Mix, error) {
	mix, err := s.mixes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if mix.UserID != userID {
		return nil, ErrNotFound
	}
	return mix, nil
}

// Create stores a mix for userID. Source thumbnail IDs are kept as given.
func (s *MixService) Create(ctx context.Context, userID uint, in CreateMixInput) (*models.Mix, error) {
	mix := &models.Mix{
		UserID:         userID,
		Name:           in.Name,
		Description:    in.Description,
		SourceThumbIDs: in.SourceThumbIDs,
		BlendingMethod: in.BlendingMethod,
	}
	if mix.BlendingMethod == "" {
		mix.BlendingMethod = models.DefaultBlendingMethod
	}
	if in.RAGSuggestions != nil {
		blob, err := json.Marshal(*in.RAGSuggestions)
		if err != nil {
			return nil, fmt.Errorf("failed to encode suggestions: %w", err)
		}
		rag := datatypes.JSON(blob)
		mix.RAGSuggestions = &rag
	}

	if err := s.mixes.Create(ctx, mix); err != nil {
		return nil, err
	}
	s.log.Info("mix created", "mix_id", mix.ID, "user_id", userID, "sources", len(mix.SourceThumbIDs))

	events.Notify(s.log, s.publisher, events.MixCreated, map[string]any{
		"mixId":          mix.ID,
		"userId":         userID,
		"sourceThumbIds": mix.SourceThumbIDs,
	})
	return mix, nil
}

// Suggest asks the model how to blend the given thumbnails. All thumbnails
// must belong to userID. Nothing is persisted.
func (s *MixService) Suggest(ctx context.Context, userID uint, thumbnailIDs []uint) (*MixSuggestions, error) {
	thumbnails := make([]*models.Thumbnail, len(thumbnailIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range thumbnailIDs {
		g.Go(func() error {
			thumbnail, err := s.thumbnails.GetByID(gctx, id)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return ErrNotFound
				}
				return err
			}
			thumbnails[i] = thumbnail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, thumbnail := range thumbnails {
		if thumbnail.UserID != userID {
			return nil, ErrNotFound
		}
	}

	analyses := make([]*models.Analysis, len(thumbnailIDs))
	g, gctx = errgroup.WithContext(ctx)
	for i, id := range thumbnailIDs {
		g.Go(func() error {
			analysis, err := s.thumbnails.LatestAnalysis(gctx, id)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return nil
				}
				return err
			}
			analyses[i] = analysis
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	req, err := mixRequest(analyses)
	if err != nil {
		return nil, err
	}
	completion, err := s.completer.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	return &MixSuggestions{
		Suggestions:  completion.Text(),
		AnalysisData: analyses,
	}, nil
}
