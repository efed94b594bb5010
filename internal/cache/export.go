package cache

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/photomirror/photomirror/internal/models"
	"github.com/photomirror/photomirror/internal/shared"
)

// ExportItems writes every cached media item to a JSON file.
func (s *Store) ExportItems(path string) error {
	items, err := s.QueryItems(models.Filter{})
	if err != nil {
		return err
	}
	return writeJSONFile(path, items)
}

// ExportAlbums writes every cached album to a JSON file.
func (s *Store) ExportAlbums(path string) error {
	albums, err := s.ListAlbums()
	if err != nil {
		return err
	}
	return writeJSONFile(path, albums)
}

// ExportFaces writes all face tags to a JSON file, grouped per item.
func (s *Store) ExportFaces(path string) error {
	rows, err := s.db.Query("SELECT media_item_id, boxes_json FROM faces ORDER BY media_item_id")
	if err != nil {
		return fmt.Errorf("%w: failed to query face tags: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var exports []models.FaceExport
	for rows.Next() {
		var (
			entry models.FaceExport
			data  string
		)
		if err := rows.Scan(&entry.MediaItemID, &data); err != nil {
			return fmt.Errorf("%w: failed to scan face tags: %v", shared.ErrStorage, err)
		}
		if err := json.Unmarshal([]byte(data), &entry.Faces); err != nil {
			return fmt.Errorf("%w: failed to decode face tags: %v", shared.ErrStorage, err)
		}
		exports = append(exports, entry)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: failed to iterate face tags: %v", shared.ErrStorage, err)
	}
	return writeJSONFile(path, exports)
}

// ImportItems loads media items from a JSON export into the store as one
// atomic batch.
func (s *Store) ImportItems(path string) error {
	var items []models.MediaItem
	if err := readJSONFile(path, &items); err != nil {
		return err
	}
	return s.UpsertMediaItems(items)
}

// ImportFaces loads face tags from a JSON export. Items referenced by the
// export must already exist in the store.
func (s *Store) ImportFaces(path string) error {
	var exports []models.FaceExport
	if err := readJSONFile(path, &exports); err != nil {
		return err
	}
	for _, entry := range exports {
		if err := s.ReplaceFaces(entry.MediaItemID, entry.Faces); err != nil {
			return err
		}
	}
	return nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read import file: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: failed to parse import file: %v", shared.ErrInvalidInput, err)
	}
	return nil
}
