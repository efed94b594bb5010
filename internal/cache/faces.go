package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/photomirror/photomirror/internal/models"
	"github.com/photomirror/photomirror/internal/shared"
)

// ReplaceFaces stores the face tags for one item, replacing any tags from an
// earlier detection pass. Tags are stored verbatim as supplied.
func (s *Store) ReplaceFaces(itemID string, boxes []models.FaceBox) error {
	for i := range boxes {
		if err := boxes[i].Validate(); err != nil {
			return err
		}
	}

	data, err := json.Marshal(boxes)
	if err != nil {
		return fmt.Errorf("%w: failed to encode face boxes: %v", shared.ErrInvalidInput, err)
	}

	return s.withWriteTx(func(tx *sql.Tx) error {
		if err := requireRow(tx, "media_items", itemID); err != nil {
			return err
		}
		_, err := tx.Exec(
			"INSERT OR REPLACE INTO faces (media_item_id, boxes_json) VALUES (?, ?)",
			itemID, string(data),
		)
		if err != nil {
			return fmt.Errorf("%w: failed to store face tags: %v", shared.ErrStorage, err)
		}
		return nil
	})
}

// GetFaces returns the face tags for one item. An item with no detection
// pass yields an empty slice, not an error.
func (s *Store) GetFaces(itemID string) ([]models.FaceBox, error) {
	var data string
	err := s.db.QueryRow("SELECT boxes_json FROM faces WHERE media_item_id = ?", itemID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query face tags: %v", shared.ErrStorage, err)
	}

	var boxes []models.FaceBox
	if err := json.Unmarshal([]byte(data), &boxes); err != nil {
		return nil, fmt.Errorf("%w: failed to decode face tags: %v", shared.ErrStorage, err)
	}
	return boxes, nil
}
