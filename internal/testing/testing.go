// package testing contains shared testing utilities
package testing

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/photomirror/photomirror/internal/models"
)

// MockRemote is a test double for [services.RemoteClient]. Behavior is
// injected per method; unset methods return empty results. Call counts
// are tracked atomically so tests can assert on them after concurrent
// use.
type MockRemote struct {
	ListMediaItemsFn    func(ctx context.Context, cursor string, pageSize int) (*models.Page, error)
	ListAlbumsFn        func(ctx context.Context) ([]models.Album, error)
	ListAlbumItemsFn    func(ctx context.Context, albumID string) ([]string, error)
	CreateAlbumFn       func(ctx context.Context, title string) (*models.Album, error)
	RenameAlbumFn       func(ctx context.Context, albumID, title string) error
	DeleteAlbumFn       func(ctx context.Context, albumID string) error
	AddToAlbumFn        func(ctx context.Context, albumID string, itemIDs []string) error
	DownloadThumbnailFn func(ctx context.Context, item *models.MediaItem) ([]byte, error)

	ListMediaItemsCalls atomic.Int32
	DownloadCalls       atomic.Int32
}

func (m *MockRemote) ListMediaItems(ctx context.Context, cursor string, pageSize int) (*models.Page, error) {
	m.ListMediaItemsCalls.Add(1)
	if m.ListMediaItemsFn != nil {
		return m.ListMediaItemsFn(ctx, cursor, pageSize)
	}
	return &models.Page{}, nil
}

func (m *MockRemote) ListAlbums(ctx context.Context) ([]models.Album, error) {
	if m.ListAlbumsFn != nil {
		return m.ListAlbumsFn(ctx)
	}
	return nil, nil
}

func (m *MockRemote) ListAlbumItems(ctx context.Context, albumID string) ([]string, error) {
	if m.ListAlbumItemsFn != nil {
		return m.ListAlbumItemsFn(ctx, albumID)
	}
	return nil, nil
}

func (m *MockRemote) CreateAlbum(ctx context.Context, title string) (*models.Album, error) {
	if m.CreateAlbumFn != nil {
		return m.CreateAlbumFn(ctx, title)
	}
	return &models.Album{ID: "mock-album", Title: title}, nil
}

func (m *MockRemote) RenameAlbum(ctx context.Context, albumID, title string) error {
	if m.RenameAlbumFn != nil {
		return m.RenameAlbumFn(ctx, albumID, title)
	}
	return nil
}

func (m *MockRemote) DeleteAlbum(ctx context.Context, albumID string) error {
	if m.DeleteAlbumFn != nil {
		return m.DeleteAlbumFn(ctx, albumID)
	}
	return nil
}

func (m *MockRemote) AddToAlbum(ctx context.Context, albumID string, itemIDs []string) error {
	if m.AddToAlbumFn != nil {
		return m.AddToAlbumFn(ctx, albumID, itemIDs)
	}
	return nil
}

func (m *MockRemote) DownloadThumbnail(ctx context.Context, item *models.MediaItem) ([]byte, error) {
	m.DownloadCalls.Add(1)
	if m.DownloadThumbnailFn != nil {
		return m.DownloadThumbnailFn(ctx, item)
	}
	return nil, nil
}

// FailSequence returns successive errors from errs on each call, then
// nil forever. Use it to script "fail N times then succeed" remotes.
type FailSequence struct {
	mu   sync.Mutex
	errs []error
}

func NewFailSequence(errs ...error) *FailSequence {
	return &FailSequence{errs: errs}
}

func (f *FailSequence) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

// MockTokens is a test double for [services.TokenProvider].
type MockTokens struct {
	TokenFn        func(ctx context.Context) (string, error)
	ForceRefreshFn func(ctx context.Context) (string, error)

	RefreshCalls atomic.Int32
}

func (m *MockTokens) Token(ctx context.Context) (string, error) {
	if m.TokenFn != nil {
		return m.TokenFn(ctx)
	}
	return "mock-token", nil
}

func (m *MockTokens) ForceRefresh(ctx context.Context) (string, error) {
	m.RefreshCalls.Add(1)
	if m.ForceRefreshFn != nil {
		return m.ForceRefreshFn(ctx)
	}
	return "mock-token", nil
}

// Item builds a minimal valid media item for tests.
func Item(id string) models.MediaItem {
	return models.MediaItem{ID: id, Filename: id + ".jpg", MimeType: "image/jpeg"}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}
