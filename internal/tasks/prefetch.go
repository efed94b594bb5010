package tasks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/photomirror/photomirror/internal/cache"
	"github.com/photomirror/photomirror/internal/models"
	"github.com/photomirror/photomirror/internal/services"
	"github.com/photomirror/photomirror/internal/shared"
)

// Prefetcher fills the on-disk thumbnail cache. At most `workers`
// downloads run at once, duplicate requests for the same item collapse
// into a single fetch, and one item failing never stops the rest of the
// batch.
type Prefetcher struct {
	store    *cache.Store
	remote   services.RemoteClient
	cacheDir string
	workers  int
	logger   *log.Logger
	inflight singleflight.Group
}

func NewPrefetcher(store *cache.Store, remote services.RemoteClient, cacheDir string, workers int, logger *log.Logger) *Prefetcher {
	if workers <= 0 {
		workers = 1
	}
	return &Prefetcher{
		store:    store,
		remote:   remote,
		cacheDir: cacheDir,
		workers:  workers,
		logger:   shared.WithLogger(logger, "component", "prefetch"),
	}
}

// ThumbnailPath returns the cache path for an item id.
func (p *Prefetcher) ThumbnailPath(itemID string) string {
	return filepath.Join(p.cacheDir, "thumbnails", itemID+".jpg")
}

// PrefetchMissing fetches thumbnails for every cached item that has
// none yet.
func (p *Prefetcher) PrefetchMissing(ctx context.Context) (fetched, failed int, err error) {
	items, err := p.store.QueryItems(models.Filter{})
	if err != nil {
		return 0, 0, err
	}
	return p.Prefetch(ctx, items)
}

// Prefetch downloads and stores thumbnails for items, skipping ones
// already present on disk. It returns the number fetched and the number
// of per-item failures. The returned error is non-nil only when the
// context was canceled; per-item failures are logged and counted, not
// propagated.
func (p *Prefetcher) Prefetch(ctx context.Context, items []models.MediaItem) (fetched, failed int, err error) {
	if err := os.MkdirAll(filepath.Join(p.cacheDir, "thumbnails"), 0o755); err != nil {
		return 0, 0, fmt.Errorf("creating thumbnail cache dir: %w", err)
	}

	var nFetched, nFailed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i := range items {
		item := items[i]
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			ok, err := p.fetchOne(ctx, &item)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				nFailed.Add(1)
				p.logger.Warn("thumbnail fetch failed", "item", item.ID, "error", err)
				return nil
			}
			if ok {
				nFetched.Add(1)
			}
			return nil
		})
	}

	waitErr := g.Wait()
	return int(nFetched.Load()), int(nFailed.Load()), waitErr
}

// fetchOne ensures one item's thumbnail is on disk and recorded in the
// store. It reports whether a download actually happened. Concurrent
// calls for the same item share a single download.
func (p *Prefetcher) fetchOne(ctx context.Context, item *models.MediaItem) (bool, error) {
	path := p.ThumbnailPath(item.ID)

	recorded, err := p.store.ThumbnailPath(item.ID)
	if err != nil {
		return false, err
	}
	if recorded != "" {
		if _, err := os.Stat(recorded); err == nil {
			return false, nil
		}
		// Recorded but missing on disk: refetch.
	}

	_, err, _ = p.inflight.Do(item.ID, func() (any, error) {
		raw, err := p.remote.DownloadThumbnail(ctx, item)
		if err != nil {
			return nil, err
		}

		img, err := imaging.Decode(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("decoding thumbnail for %s: %w", item.ID, err)
		}
		if err := imaging.Save(img, path, imaging.JPEGQuality(85)); err != nil {
			return nil, fmt.Errorf("saving thumbnail for %s: %w", item.ID, err)
		}

		if err := p.store.SetThumbnailPath(item.ID, path); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
