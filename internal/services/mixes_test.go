package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/petermazzocco/thumbnail-mixer/internal/llm"
	"github.com/petermazzocco/thumbnail-mixer/internal/services"
	"github.com/petermazzocco/thumbnail-mixer/internal/store"
	"github.com/petermazzocco/thumbnail-mixer/models"
)

func ptr[T any](v T) *T { return &v }

func TestMixService_CreateDefaultsBlendingMethod(t *testing.T) {
	mixes := new(MockMixRepository)
	svc := services.NewMixService(mixes, nil, nil, nil, discardLogger())
	ctx := context.Background()

	mixes.On("Create", ctx, mock.MatchedBy(func(m *models.Mix) bool {
		return m.UserID == 4 && m.Name == "combo" &&
			m.BlendingMethod == models.DefaultBlendingMethod &&
			assert.ObjectsAreEqual([]uint{1, 2, 3}, []uint(m.SourceThumbIDs)) &&
			m.RAGSuggestions == nil
	})).Return(nil).Once()

	mix, err := svc.Create(ctx, 4, services.CreateMixInput{Name: "combo", SourceThumbIDs: []uint{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, "smart", mix.BlendingMethod)
	mixes.AssertExpectations(t)
}

func TestMixService_CreateStoresSuggestionsBlob(t *testing.T) {
	mixes := new(MockMixRepository)
	svc := services.NewMixService(mixes, nil, nil, nil, discardLogger())
	ctx := context.Background()
	mixes.On("Create", ctx, mock.Anything).Return(nil).Once()

	mix, err := svc.Create(ctx, 4, services.CreateMixInput{
		Name:           "combo",
		BlendingMethod: "overlay",
		RAGSuggestions: ptr("use red"),
	})
	require.NoError(t, err)
	assert.Equal(t, "overlay", mix.BlendingMethod)
	require.NotNil(t, mix.RAGSuggestions)
	var text string
	require.NoError(t, json.Unmarshal(*mix.RAGSuggestions, &text))
	assert.Equal(t, "use red", text)
}

func TestMixService_Get(t *testing.T) {
	mixes := new(MockMixRepository)
	svc := services.NewMixService(mixes, nil, nil, nil, discardLogger())
	ctx := context.Background()

	mixes.On("GetByID", ctx, uint(1)).Return(&models.Mix{ID: 1, UserID: 4}, nil)
	mixes.On("GetByID", ctx, uint(2)).Return(&models.Mix{ID: 2, UserID: 5}, nil)
	mixes.On("GetByID", ctx, uint(3)).Return(nil, store.ErrNotFound)

	_, err := svc.Get(ctx, 4, 1)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, 4, 2)
	assert.ErrorIs(t, err, services.ErrNotFound)
	_, err = svc.Get(ctx, 4, 3)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestMixService_SuggestWithMissingAnalysis(t *testing.T) {
	thumbs := new(MockThumbnailRepository)
	mixes := new(MockMixRepository)
	completer := new(MockCompleter)
	svc := services.NewMixService(mixes, thumbs, completer, nil, discardLogger())
	ctx := context.Background()

	analysis := &models.Analysis{
		ID:              7,
		ThumbnailID:     1,
		DominantColors:  []string{"#000000"},
		TextElements:    []models.TextElement{{Text: "HI", Position: "center"}},
		Composition:     ptr("centered"),
		EngagementScore: ptr(6),
	}
	thumbs.On("GetByID", mock.Anything, uint(1)).Return(&models.Thumbnail{ID: 1, UserID: 4}, nil).Once()
	thumbs.On("GetByID", mock.Anything, uint(2)).Return(&models.Thumbnail{ID: 2, UserID: 4}, nil).Once()
	thumbs.On("LatestAnalysis", mock.Anything, uint(1)).Return(analysis, nil).Once()
	thumbs.On("LatestAnalysis", mock.Anything, uint(2)).Return(nil, store.ErrNotFound).Once()

	var prompt string
	completer.On("Complete", ctx, mock.MatchedBy(func(req llm.Request) bool {
		return req.Schema == nil && len(req.Messages) == 2
	})).Run(func(args mock.Arguments) {
		prompt = args.Get(1).(llm.Request).Messages[1].Text
	}).Return(encodedString("Use black and keep text centered."), nil).Once()

	result, err := svc.Suggest(ctx, 4, []uint{1, 2})
	require.NoError(t, err)

	assert.Equal(t, "Use black and keep text centered.", result.Suggestions)
	require.Len(t, result.AnalysisData, 2)
	assert.Same(t, analysis, result.AnalysisData[0])
	assert.Nil(t, result.AnalysisData[1])

	assert.Contains(t, prompt, `{"dominantColors":["#000000"],"textElements":[{"text":"HI","position":"center"}],"composition":"centered","engagementScore":6}`)
	assert.Contains(t, prompt, `{"dominantColors":[],"textElements":[]}`)
	assert.Contains(t, prompt, "Expected engagement improvement")

	thumbs.AssertNotCalled(t, "SaveAnalysis", mock.Anything, mock.Anything)
	mixes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	thumbs.AssertExpectations(t)
	completer.AssertExpectations(t)
}

func TestMixService_SuggestRejectsForeignThumbnail(t *testing.T) {
	thumbs := new(MockThumbnailRepository)
	completer := new(MockCompleter)
	svc := services.NewMixService(nil, thumbs, completer, nil, discardLogger())

	thumbs.On("GetByID", mock.Anything, uint(1)).Return(&models.Thumbnail{ID: 1, UserID: 4}, nil)
	thumbs.On("GetByID", mock.Anything, uint(2)).Return(&models.Thumbnail{ID: 2, UserID: 8}, nil)

	_, err := svc.Suggest(context.Background(), 4, []uint{1, 2})
	assert.ErrorIs(t, err, services.ErrNotFound)
	thumbs.AssertNotCalled(t, "LatestAnalysis", mock.Anything, mock.Anything)
	completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestMixService_SuggestFailsOnAnyLookupError(t *testing.T) {
	thumbs := new(MockThumbnailRepository)
	completer := new(MockCompleter)
	svc := services.NewMixService(nil, thumbs, completer, nil, discardLogger())

	thumbs.On("GetByID", mock.Anything, uint(1)).Return(&models.Thumbnail{ID: 1, UserID: 4}, nil).Maybe()
	thumbs.On("GetByID", mock.Anything, uint(2)).Return(nil, store.ErrNotFound)

	_, err := svc.Suggest(context.Background(), 4, []uint{1, 2})
	assert.ErrorIs(t, err, services.ErrNotFound)

	thumbs2 := new(MockThumbnailRepository)
	svc = services.NewMixService(nil, thumbs2, completer, nil, discardLogger())
	thumbs2.On("GetByID", mock.Anything, uint(1)).Return(nil, errors.New("connection reset"))
	_, err = svc.Suggest(context.Background(), 4, []uint{1})
	assert.ErrorContains(t, err, "connection reset")
	assert.False(t, errors.Is(err, services.ErrNotFound))
	completer.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestMixService_SuggestPropagatesUpstreamError(t *testing.T) {
	thumbs := new(MockThumbnailRepository)
	completer := new(MockCompleter)
	svc := services.NewMixService(nil, thumbs, completer, nil, discardLogger())

	thumbs.On("GetByID", mock.Anything, uint(1)).Return(&models.Thumbnail{ID: 1, UserID: 4}, nil)
	thumbs.On("LatestAnalysis", mock.Anything, uint(1)).Return(nil, store.ErrNotFound)
	completer.On("Complete", mock.Anything, mock.Anything).Return(nil, errors.New("timeout"))

	_, err := svc.Suggest(context.Background(), 4, []uint{1})
	assert.ErrorIs(t, err, services.ErrUpstream)
	assert.True(t, strings.Contains(err.Error(), "timeout"))
}
