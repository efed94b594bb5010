package services

import (
	"context"

	"github.com/photomirror/photomirror/internal/models"
)

// TokenProvider yields a bearer access token for remote API calls.
// Implementations must be safe for concurrent use.
type TokenProvider interface {
	// Token returns a valid access token, refreshing a stale one
	// transparently when a refresh token is available.
	Token(ctx context.Context) (string, error)
	// ForceRefresh discards any cached access token and obtains a fresh
	// one. Concurrent callers share a single refresh round trip.
	ForceRefresh(ctx context.Context) (string, error)
}

// RemoteClient is the surface of the remote photo library the sync
// scheduler and album commands depend on. Errors are classified with
// the shared sentinels: auth failures wrap shared.ErrAuth, retryable
// conditions wrap shared.ErrTransient or shared.ErrRateLimit.
type RemoteClient interface {
	// ListMediaItems fetches one page of media items starting at cursor.
	// An empty cursor means the first page.
	ListMediaItems(ctx context.Context, cursor string, pageSize int) (*models.Page, error)
	// ListAlbums fetches all albums, following pagination internally.
	ListAlbums(ctx context.Context) ([]models.Album, error)
	// ListAlbumItems returns the ids of the media items in an album.
	ListAlbumItems(ctx context.Context, albumID string) ([]string, error)

	CreateAlbum(ctx context.Context, title string) (*models.Album, error)
	RenameAlbum(ctx context.Context, albumID, title string) error
	DeleteAlbum(ctx context.Context, albumID string) error
	AddToAlbum(ctx context.Context, albumID string, itemIDs []string) error

	// DownloadThumbnail fetches thumbnail bytes for a media item.
	DownloadThumbnail(ctx context.Context, item *models.MediaItem) ([]byte, error)
}
