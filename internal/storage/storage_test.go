package storage_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/petermazzocco/thumbnail-mixer/internal/storage"
)

type mockS3 struct {
	mock.Mock
}

func (m *mockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func TestThumbnailKey(t *testing.T) {
	key := storage.ThumbnailKey(7, "my thumb.png")
	assert.True(t, strings.HasPrefix(key, "thumbnails/7/"), key)
	assert.True(t, strings.HasSuffix(key, "_my thumb.png"), key)

	assert.NotEqual(t, storage.ThumbnailKey(7, "a.png"), storage.ThumbnailKey(7, "a.png"))

	traversal := storage.ThumbnailKey(7, "../../etc/passwd")
	assert.True(t, strings.HasSuffix(traversal, "_passwd"), traversal)
	assert.NotContains(t, traversal, "..")

	windows := storage.ThumbnailKey(7, `C:\Users\me\pic.jpg`)
	assert.True(t, strings.HasSuffix(windows, "_pic.jpg"), windows)
}

func TestCleanURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/a%20b.png", storage.CleanURL("https://cdn.example.com/a b.png"))
}

func TestS3Store_Put(t *testing.T) {
	client := new(mockS3)
	store := storage.NewS3Store(client, "thumbs", "https://pub.example.com/%s")

	client.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		body, _ := io.ReadAll(in.Body)
		return aws.ToString(in.Bucket) == "thumbs" &&
			aws.ToString(in.Key) == "thumbnails/1/x_a b.png" &&
			aws.ToString(in.ContentType) == "image/png" &&
			string(body) == "png-bytes"
	})).Return(&s3.PutObjectOutput{ETag: aws.String("etag")}, nil).Once()

	url, err := store.Put(context.Background(), "thumbnails/1/x_a b.png", strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://pub.example.com/thumbnails/1/x_a%20b.png", url)
	client.AssertExpectations(t)
}

func TestS3Store_PutError(t *testing.T) {
	client := new(mockS3)
	store := storage.NewS3Store(client, "thumbs", "https://pub.example.com/%s")
	client.On("PutObject", mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()

	_, err := store.Put(context.Background(), "k", strings.NewReader(""), "image/png")
	assert.ErrorContains(t, err, "failed to upload k")
}

func TestSupabaseStore_PublicURL(t *testing.T) {
	store := storage.NewSupabaseStore("https://proj.supabase.co/", "key", "thumbnails")
	assert.Equal(t,
		"https://proj.supabase.co/storage/v1/object/public/thumbnails/thumbnails/3/id_a%20b.jpg",
		store.PublicURL("thumbnails/3/id_a b.jpg"))
}

func TestSupabaseStore_PutHonorsCanceledContext(t *testing.T) {
	store := storage.NewSupabaseStore("https://proj.supabase.co", "key", "thumbnails")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := store.Put(ctx, "k", strings.NewReader(""), "image/jpeg")
	assert.ErrorIs(t, err, context.Canceled)
}
