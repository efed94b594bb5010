package cache

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/photomirror/photomirror/internal/models"
	"github.com/photomirror/photomirror/internal/shared"
)

// Store provides transactional CRUD and filtered queries over the local
// photo-library mirror. It is safe for concurrent use.
type Store struct {
	db *sql.DB

	// mu serializes all mutations. SQLite would serialize them anyway, but
	// the explicit lock keeps multi-statement transactions from ever
	// contending for the connection mid-flight.
	mu sync.Mutex
}

// NewStore creates a Store over an open database connection. The caller is
// expected to have applied migrations (shared.RunMigrations) first.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for the migration runner and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// withWriteTx runs fn inside a write transaction under the store's write
// lock. Any error from fn rolls the whole transaction back.
func (s *Store) withWriteTx(fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrStorage, err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %v", shared.ErrStorage, err)
	}
	return nil
}

// Stats returns cached album and item counts. Both are COUNT(*) over rowid
// tables, so no payload rows are scanned.
func (s *Store) Stats() (models.Stats, error) {
	var st models.Stats
	if err := s.db.QueryRow("SELECT COUNT(*) FROM albums").Scan(&st.Albums); err != nil {
		return st, fmt.Errorf("%w: failed to count albums: %v", shared.ErrStorage, err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM media_items").Scan(&st.MediaItems); err != nil {
		return st, fmt.Errorf("%w: failed to count media items: %v", shared.ErrStorage, err)
	}
	return st, nil
}

// Clear removes all mirrored entities and resets the sync state, in one
// transaction. Used before a full re-sync.
func (s *Store) Clear() error {
	return s.withWriteTx(func(tx *sql.Tx) error {
		for _, table := range []string{
			"album_media_items", "albums", "faces", "thumbnails", "search_index", "media_items",
		} {
			if _, err := tx.Exec("DELETE FROM " + table); err != nil {
				return fmt.Errorf("%w: failed to clear %s: %v", shared.ErrStorage, table, err)
			}
		}
		if _, err := tx.Exec("UPDATE sync_state SET last_synced = 0, page_cursor = NULL, total_synced = 0 WHERE id = 1"); err != nil {
			return fmt.Errorf("%w: failed to reset sync state: %v", shared.ErrStorage, err)
		}
		return nil
	})
}

// nullable maps an empty string to NULL for optional text columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// text reads back a nullable text column.
func text(v sql.NullString) string {
	if v.Valid {
		return v.String
	}
	return ""
}
