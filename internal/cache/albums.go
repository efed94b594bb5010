package cache

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/photomirror/photomirror/internal/models"
	"github.com/photomirror/photomirror/internal/shared"
)

// UpsertAlbums inserts or updates a batch of albums in one transaction.
func (s *Store) UpsertAlbums(albums []models.Album) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		for i := range albums {
			if err := albums[i].Validate(); err != nil {
				return err
			}
			_, err := tx.Exec(`
				INSERT INTO albums (id, title, cover_item_id) VALUES (?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					title = excluded.title,
					cover_item_id = excluded.cover_item_id
			`, albums[i].ID, albums[i].Title, nullable(albums[i].CoverItemID))
			if err != nil {
				return fmt.Errorf("%w: failed to upsert album %s: %v", shared.ErrStorage, albums[i].ID, err)
			}
		}
		return nil
	})
}

// RenameAlbum updates an album title.
func (s *Store) RenameAlbum(id, title string) error {
	if title == "" {
		return fmt.Errorf("%w: album title is required", shared.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE albums SET title = ? WHERE id = ?", title, id)
	if err != nil {
		return fmt.Errorf("%w: failed to rename album: %v", shared.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: album %s", shared.ErrNotFound, id)
	}
	return nil
}

// DeleteAlbum removes an album. Its associations cascade away with it; the
// referenced media items stay cached.
func (s *Store) DeleteAlbum(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM albums WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("%w: failed to delete album: %v", shared.ErrStorage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: album %s", shared.ErrNotFound, id)
	}
	return nil
}

// GetAlbum retrieves a single album by id.
func (s *Store) GetAlbum(id string) (*models.Album, error) {
	var (
		album models.Album
		cover sql.NullString
	)
	err := s.db.QueryRow("SELECT id, title, cover_item_id FROM albums WHERE id = ?", id).
		Scan(&album.ID, &album.Title, &cover)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: album %s", shared.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query album: %v", shared.ErrStorage, err)
	}
	album.CoverItemID = text(cover)
	return &album, nil
}

// ListAlbums returns every cached album ordered by title.
func (s *Store) ListAlbums() ([]models.Album, error) {
	rows, err := s.db.Query("SELECT id, title, cover_item_id FROM albums ORDER BY title, id")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query albums: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var albums []models.Album
	for rows.Next() {
		var (
			album models.Album
			cover sql.NullString
		)
		if err := rows.Scan(&album.ID, &album.Title, &cover); err != nil {
			return nil, fmt.Errorf("%w: failed to scan album: %v", shared.ErrStorage, err)
		}
		album.CoverItemID = text(cover)
		albums = append(albums, album)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate albums: %v", shared.ErrStorage, err)
	}
	return albums, nil
}

// AddToAlbum associates a media item with an album. Both referenced rows
// must already exist; re-adding an existing association is a no-op.
func (s *Store) AddToAlbum(albumID, itemID string) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		if err := requireRow(tx, "albums", albumID); err != nil {
			return err
		}
		if err := requireRow(tx, "media_items", itemID); err != nil {
			return err
		}
		_, err := tx.Exec(
			"INSERT OR IGNORE INTO album_media_items (album_id, media_item_id) VALUES (?, ?)",
			albumID, itemID,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to associate item with album: %v", shared.ErrStorage, err)
		}
		return nil
	})
}

// RemoveFromAlbum drops the association between an item and an album.
func (s *Store) RemoveFromAlbum(albumID, itemID string) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		if err := requireRow(tx, "albums", albumID); err != nil {
			return err
		}
		if err := requireRow(tx, "media_items", itemID); err != nil {
			return err
		}
		_, err := tx.Exec(
			"DELETE FROM album_media_items WHERE album_id = ? AND media_item_id = ?",
			albumID, itemID,
		)
		if err != nil {
			return fmt.Errorf("%w: failed to remove item from album: %v", shared.ErrStorage, err)
		}
		return nil
	})
}

// ReplaceAlbumItems rewrites an album's membership to exactly the given item
// set. Used by sync to mirror remote album contents in one transaction.
func (s *Store) ReplaceAlbumItems(albumID string, itemIDs []string) error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		if err := requireRow(tx, "albums", albumID); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM album_media_items WHERE album_id = ?", albumID); err != nil {
			return fmt.Errorf("%w: failed to clear album membership: %v", shared.ErrStorage, err)
		}
		for _, itemID := range itemIDs {
			if err := requireRow(tx, "media_items", itemID); err != nil {
				return err
			}
			_, err := tx.Exec(
				"INSERT OR IGNORE INTO album_media_items (album_id, media_item_id) VALUES (?, ?)",
				albumID, itemID,
			)
			if err != nil {
				return fmt.Errorf("%w: failed to associate item with album: %v", shared.ErrStorage, err)
			}
		}
		return nil
	})
}

// requireRow fails with ErrConstraint when the referenced id is absent, so
// association writes reject dangling references before touching anything.
func requireRow(tx *sql.Tx, table, id string) error {
	var exists bool
	err := tx.QueryRow("SELECT EXISTS(SELECT 1 FROM "+table+" WHERE id = ?)", id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: failed to check %s: %v", shared.ErrStorage, table, err)
	}
	if !exists {
		return fmt.Errorf("%w: no row %q in %s", shared.ErrConstraint, id, table)
	}
	return nil
}
