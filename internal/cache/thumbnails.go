package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/photomirror/photomirror/internal/shared"
)

// SetThumbnailPath records where a prefetched thumbnail landed on disk so
// later requests are served without re-fetching.
func (s *Store) SetThumbnailPath(itemID, path string) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		if err := requireRow(tx, "media_items", itemID); err != nil {
			return err
		}
		_, err := tx.Exec(
			"INSERT OR REPLACE INTO thumbnails (media_item_id, path, fetched_at) VALUES (?, ?, ?)",
			itemID, path, time.Now().UTC().Unix(),
		)
		if err != nil {
			return fmt.Errorf("%w: failed to record thumbnail path: %v", shared.ErrStorage, err)
		}
		return nil
	})
}

// ThumbnailPath returns the recorded local path for an item's thumbnail, or
// an empty string when none has been fetched yet.
func (s *Store) ThumbnailPath(itemID string) (string, error) {
	var path string
	err := s.db.QueryRow("SELECT path FROM thumbnails WHERE media_item_id = ?", itemID).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: failed to query thumbnail path: %v", shared.ErrStorage, err)
	}
	return path, nil
}
