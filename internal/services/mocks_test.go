package services_test

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/petermazzocco/thumbnail-mixer/internal/llm"
	"github.com/petermazzocco/thumbnail-mixer/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockThumbnailRepository is a mock implementation of store.ThumbnailRepository.
type MockThumbnailRepository struct {
	mock.Mock
}

func (m *MockThumbnailRepository) GetByID(ctx context.Context, id uint) (*models.Thumbnail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Thumbnail), args.Error(1)
}

func (m *MockThumbnailRepository) ListByUser(ctx context.Context, userID uint) ([]models.Thumbnail, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Thumbnail), args.Error(1)
}

func (m *MockThumbnailRepository) Create(ctx context.Context, thumbnail *models.Thumbnail) error {
	return m.Called(ctx, thumbnail).Error(0)
}

func (m *MockThumbnailRepository) SaveAnalysis(ctx context.Context, analysis *models.Analysis) error {
	return m.Called(ctx, analysis).Error(0)
}

func (m *MockThumbnailRepository) LatestAnalysis(ctx context.Context, thumbnailID uint) (*models.Analysis, error) {
	args := m.Called(ctx, thumbnailID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Analysis), args.Error(1)
}

// MockMixRepository is a mock implementation of store.MixRepository.
type MockMixRepository struct {
	mock.Mock
}

func (m *MockMixRepository) GetByID(ctx context.Context, id uint) (*models.Mix, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Mix), args.Error(1)
}

func (m *MockMixRepository) ListByUser(ctx context.Context, userID uint) ([]models.Mix, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Mix), args.Error(1)
}

func (m *MockMixRepository) Create(ctx context.Context, mix *models.Mix) error {
	return m.Called(ctx, mix).Error(0)
}

// MockCompleter is a mock implementation of llm.Completer.
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, req llm.Request) (*llm.Completion, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.Completion), args.Error(1)
}

// MockStore is a mock implementation of storage.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, body, contentType)
	return args.String(0), args.Error(1)
}

// MockPublisher is a mock implementation of events.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(routingKey string, payload any) error {
	return m.Called(routingKey, payload).Error(0)
}
