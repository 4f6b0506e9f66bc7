// Package storage puts uploaded thumbnails into object storage and returns
// their public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Store writes objects and reports where the public can read them.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// ThumbnailKey builds the object key for a user's upload.
func ThumbnailKey(userID uint, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" {
		name = "upload"
	}
	return fmt.Sprintf("thumbnails/%d/%s_%s", userID, uuid.NewString(), name)
}

// CleanURL escapes spaces and normalizes the URL when it parses.
func CleanURL(urlStr string) string {
	urlStr = strings.ReplaceAll(urlStr, " ", "%20")
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return urlStr
	}
	return parsedURL.String()
}
