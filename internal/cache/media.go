package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/photomirror/photomirror/internal/models"
	"github.com/photomirror/photomirror/internal/shared"
)

const mediaItemColumns = `id, filename, description, mime_type, width, height, creation_time, base_url, is_favorite, camera_make, camera_model`

// searchContent is the normalized text the search index holds for an item.
func searchContent(item *models.MediaItem) string {
	return strings.ToLower(strings.TrimSpace(item.Filename + " " + item.Description))
}

// upsertMediaItemTx writes one item and its search-index entry inside tx.
// The favorite flag is only set on first insert; sync updates must not
// clobber a locally toggled favorite.
func upsertMediaItemTx(tx *sql.Tx, item *models.MediaItem) error {
	_, err := tx.Exec(`
		INSERT INTO media_items (`+mediaItemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			description = excluded.description,
			mime_type = excluded.mime_type,
			width = excluded.width,
			height = excluded.height,
			creation_time = excluded.creation_time,
			base_url = excluded.base_url,
			camera_make = excluded.camera_make,
			camera_model = excluded.camera_model
	`,
		item.ID,
		item.Filename,
		nullable(item.Description),
		item.MimeType,
		item.Width,
		item.Height,
		item.CreationTime.UTC().Unix(),
		item.BaseURL,
		item.IsFavorite,
		nullable(item.CameraMake),
		nullable(item.CameraModel),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to upsert media item %s: %v", shared.ErrStorage, item.ID, err)
	}

	_, err = tx.Exec(`
		INSERT INTO search_index (media_item_id, content) VALUES (?, ?)
		ON CONFLICT(media_item_id) DO UPDATE SET content = excluded.content
	`, item.ID, searchContent(item))
	if err != nil {
		return fmt.Errorf("%w: failed to update search index for %s: %v", shared.ErrStorage, item.ID, err)
	}
	return nil
}

// UpsertMediaItems inserts or updates a batch of items in one transaction.
// The batch is atomic: a failure on any row rolls back every row, search
// index entries included.
func (s *Store) UpsertMediaItems(items []models.MediaItem) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		for i := range items {
			if err := items[i].Validate(); err != nil {
				return err
			}
			if err := upsertMediaItemTx(tx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// ApplyPage commits one page of synced items together with the resumption
// cursor, so a crash between pages resumes from the last committed cursor
// without skipping or re-pulling beyond idempotent upserts.
func (s *Store) ApplyPage(items []models.MediaItem, nextCursor string) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		for i := range items {
			if err := items[i].Validate(); err != nil {
				return err
			}
			if err := upsertMediaItemTx(tx, &items[i]); err != nil {
				return err
			}
		}
		_, err := tx.Exec(
			"UPDATE sync_state SET page_cursor = ?, total_synced = total_synced + ? WHERE id = 1",
			nullable(nextCursor), len(items),
		)
		if err != nil {
			return fmt.Errorf("%w: failed to advance sync cursor: %v", shared.ErrStorage, err)
		}
		return nil
	})
}

// GetItem retrieves a single media item by id.
func (s *Store) GetItem(id string) (*models.MediaItem, error) {
	row := s.db.QueryRow("SELECT "+mediaItemColumns+" FROM media_items WHERE id = ?", id)
	item, err := scanMediaItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: media item %s", shared.ErrNotFound, id)
	}
	return item, err
}

// SetFavorite toggles the locally mutable favorite flag on one item.
func (s *Store) SetFavorite(id string, favorite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE media_items SET is_favorite = ? WHERE id = ?", favorite, id)
	if err != nil {
		return fmt.Errorf("%w: failed to update favorite: %v", shared.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to read update result: %v", shared.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: media item %s", shared.ErrNotFound, id)
	}
	return nil
}

// DeleteItem removes a media item; associations, face tags, thumbnail
// records, and the search-index entry go with it via cascading deletes.
func (s *Store) DeleteItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM media_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete media item: %v", shared.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: media item %s", shared.ErrNotFound, id)
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMediaItem(row rowScanner) (*models.MediaItem, error) {
	var (
		item                      models.MediaItem
		description, make_, model sql.NullString
		creationTime              int64
	)
	err := row.Scan(
		&item.ID,
		&item.Filename,
		&description,
		&item.MimeType,
		&item.Width,
		&item.Height,
		&creationTime,
		&item.BaseURL,
		&item.IsFavorite,
		&make_,
		&model,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: failed to scan media item: %v", shared.ErrStorage, err)
	}
	item.Description = text(description)
	item.CameraMake = text(make_)
	item.CameraModel = text(model)
	item.CreationTime = time.Unix(creationTime, 0).UTC()
	return &item, nil
}
