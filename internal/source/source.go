// Package source provides access to the cloud file store holding the
// videos to process. It defines the Source interface (port) with
// adapters for Google Drive and S3-compatible stores.
package source

import (
	"context"
	"path"
	"strings"
)

// Item is one candidate video enumerated from the store.
type Item struct {
	// ID is the stable identifier assigned by the store.
	ID string
	// Name is the display name; used to derive local file names.
	Name string
	// MimeType is the reported content type.
	MimeType string
	// ViewLink is a browser URL for the item, when the store provides one.
	ViewLink string
}

// Source enumerates candidate videos and fetches their content.
type Source interface {
	// ListVideos returns the currently visible video items.
	ListVideos(ctx context.Context) ([]Item, error)

	// Fetch downloads the item's bytes to destPath.
	Fetch(ctx context.Context, item Item, destPath string) error
}

// videoExtensions covers the container formats accepted when the store
// has no MIME metadata (object stores key by name only).
var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".avi":  true,
	".webm": true,
	".m4v":  true,
}

// IsVideoKey reports whether an object key looks like a video file.
func IsVideoKey(key string) bool {
	return videoExtensions[strings.ToLower(path.Ext(key))]
}
