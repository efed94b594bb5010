package models

import (
	"fmt"
	"time"

	"github.com/photomirror/photomirror/internal/shared"
)

// MediaItem mirrors a single remote photo or video.
//
// The id is assigned by the remote service and immutable once created.
// BaseURL is an ephemeral download reference refreshed on every sync;
// IsFavorite is locally mutable independent of sync.
type MediaItem struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Description  string    `json:"description,omitempty"`
	MimeType     string    `json:"mime_type"`
	Width        int64     `json:"width"`
	Height       int64     `json:"height"`
	CreationTime time.Time `json:"creation_time"`
	BaseURL      string    `json:"base_url"`
	IsFavorite   bool      `json:"is_favorite"`
	CameraMake   string    `json:"camera_make,omitempty"`
	CameraModel  string    `json:"camera_model,omitempty"`
}

// Validate checks the fields the cache store depends on.
func (m *MediaItem) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("%w: media item id is required", shared.ErrInvalidInput)
	}
	if m.Filename == "" {
		return fmt.Errorf("%w: media item filename is required", shared.ErrInvalidInput)
	}
	if m.MimeType == "" {
		return fmt.Errorf("%w: media item mime type is required", shared.ErrInvalidInput)
	}
	return nil
}

// Album mirrors a remote album. CoverItemID is a weak reference to a
// MediaItem; it carries no ownership and may point at an item that has not
// been synced yet.
type Album struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CoverItemID string `json:"cover_item_id,omitempty"`
}

// Validate checks the fields the cache store depends on.
func (a *Album) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: album id is required", shared.ErrInvalidInput)
	}
	if a.Title == "" {
		return fmt.Errorf("%w: album title is required", shared.ErrInvalidInput)
	}
	return nil
}

// FaceBox is one detected face bounding box with coordinates normalized to
// the 0-1 range relative to the image dimensions.
type FaceBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Name   string  `json:"name,omitempty"`
}

// Validate rejects boxes outside the normalized coordinate space.
func (f *FaceBox) Validate() error {
	for _, v := range []float64{f.X, f.Y, f.Width, f.Height} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: face box coordinates must be normalized to 0-1", shared.ErrInvalidInput)
		}
	}
	return nil
}

// FaceExport pairs a media item with its face tags for JSON export/import.
type FaceExport struct {
	MediaItemID string    `json:"media_item_id"`
	Faces       []FaceBox `json:"faces"`
}

// SyncState is the singleton resumption record: the timestamp of the last
// successful sync and the opaque page cursor to resume an interrupted pull.
type SyncState struct {
	LastSynced  time.Time `json:"last_synced"`
	PageCursor  string    `json:"page_cursor,omitempty"`
	TotalSynced int64     `json:"total_synced"`
}

// Stats reports cached entity counts.
type Stats struct {
	Albums     int64 `json:"albums"`
	MediaItems int64 `json:"media_items"`
}

// Filter selects media items from the cache store. Zero-valued options are
// ignored; set options compose with logical AND.
type Filter struct {
	Text         string     // matches filename or description, case-insensitive
	FavoriteOnly bool
	Start        *time.Time // inclusive
	End          *time.Time // inclusive
	MimeType     string
	CameraMake   string
	CameraModel  string
	HasFaces     bool
	AlbumID      string
	Limit        int
}

// Page is one page of remote media items plus the cursor for the next one.
// An empty NextCursor means the listing is exhausted.
type Page struct {
	Items      []MediaItem
	NextCursor string
}
