// Package mediasource defines what the poster display needs from a media
// server.
package mediasource

//go:generate mockgen -source=source.go -destination=mocks/mock_source.go -package=mocks

import (
	"context"

	"github.com/isaacrego/plex-poster-display/config"
	"github.com/isaacrego/plex-poster-display/models"
)

// Source is a connection to one media server.
type Source interface {
	// Sessions lists active playback sessions.
	Sessions(ctx context.Context) ([]models.Session, error)
	// Libraries lists movie and show libraries.
	Libraries(ctx context.Context) ([]models.Library, error)
	// LibraryItems returns every movie or show in a library, across all pages.
	LibraryItems(ctx context.Context, key string) ([]models.ArtworkItem, error)
	// ImageURL resolves an image reference to an absolute URL, or "" when ref is empty.
	ImageURL(ref string) string
	// FetchImage downloads the image behind ref.
	FetchImage(ctx context.Context, ref string) ([]byte, error)
	// TestConnection probes the server and reports a human readable result.
	TestConnection(ctx context.Context) (bool, string)
}

// Factory builds a Source for a connection. Settings can change between
// calls, so callers build a fresh Source per use.
type Factory func(conn config.Connection) Source
