package events_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/petermazzocco/thumbnail-mixer/internal/events"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(routingKey string, payload any) error {
	return m.Called(routingKey, payload).Error(0)
}

func TestNotify_NilPublisherIsSkipped(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	assert.NotPanics(t, func() {
		events.Notify(log, nil, events.MixCreated, map[string]any{"id": 1})
	})
	assert.Empty(t, buf.String())
}

func TestNotify_LogsPublishFailure(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	pub := new(mockPublisher)
	pub.On("Publish", events.ThumbnailAnalyzed, mock.Anything).Return(errors.New("channel closed")).Once()

	events.Notify(log, pub, events.ThumbnailAnalyzed, map[string]any{"id": 1})

	pub.AssertExpectations(t)
	assert.Contains(t, buf.String(), "failed to publish event")
	assert.Contains(t, buf.String(), "routing_key=thumbnail.analyzed")
}
