package cache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/photomirror/photomirror/internal/models"
	"github.com/photomirror/photomirror/internal/shared"
)

// SyncState reads the singleton resumption record.
func (s *Store) SyncState() (models.SyncState, error) {
	var (
		st         models.SyncState
		lastSynced int64
		cursor     sql.NullString
	)
	err := s.db.QueryRow("SELECT last_synced, page_cursor, total_synced FROM sync_state WHERE id = 1").
		Scan(&lastSynced, &cursor, &st.TotalSynced)
	if err != nil {
		return st, fmt.Errorf("%w: failed to read sync state: %v", shared.ErrStorage, err)
	}
	st.LastSynced = time.Unix(lastSynced, 0).UTC()
	st.PageCursor = text(cursor)
	return st, nil
}

// MarkSyncComplete records a successful full sync: timestamp updated, cursor
// cleared so the next cycle starts a fresh listing.
func (s *Store) MarkSyncComplete(ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"UPDATE sync_state SET last_synced = ?, page_cursor = NULL WHERE id = 1",
		ts.UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to mark sync complete: %v", shared.ErrStorage, err)
	}
	return nil
}
