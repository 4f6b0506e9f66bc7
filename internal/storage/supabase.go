package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	supastorage "github.com/supabase-community/storage-go"
)

// SupabaseStore writes to a public Supabase Storage bucket.
type SupabaseStore struct {
	client  *supastorage.Client
	bucket  string
	baseURL string
}

func NewSupabaseStore(supabaseURL, serviceRoleKey, bucket string) *SupabaseStore {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	return &SupabaseStore{
		client:  supastorage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil),
		bucket:  bucket,
		baseURL: baseURL,
	}
}

// Put uploads body. storage-go has no context support, so ctx only guards
// the start of the call.
func (s *SupabaseStore) Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	upsert := false
	_, err := s.client.UploadFile(s.bucket, key, body, supastorage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

func (s *SupabaseStore) PublicURL(key string) string {
	return CleanURL(fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, key))
}
