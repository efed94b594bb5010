package cache

import (
	"fmt"
	"strings"

	"github.com/photomirror/photomirror/internal/models"
	"github.com/photomirror/photomirror/internal/shared"
)

// QueryItems returns media items matching the filter. Set options compose
// with AND; results come back in creation time descending order with id as
// the tiebreak, so repeated queries paginate reproducibly.
func (s *Store) QueryItems(filter models.Filter) ([]models.MediaItem, error) {
	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString("SELECT m.id, m.filename, m.description, m.mime_type, m.width, m.height, m.creation_time, m.base_url, m.is_favorite, m.camera_make, m.camera_model FROM media_items m")

	if filter.Text != "" {
		sb.WriteString(" JOIN search_index si ON si.media_item_id = m.id")
	}
	if filter.AlbumID != "" {
		sb.WriteString(" JOIN album_media_items ami ON ami.media_item_id = m.id AND ami.album_id = ?")
		args = append(args, filter.AlbumID)
	}
	if filter.HasFaces {
		sb.WriteString(" JOIN faces f ON f.media_item_id = m.id")
	}

	sb.WriteString(" WHERE 1=1")

	if filter.Text != "" {
		sb.WriteString(" AND si.content LIKE ?")
		args = append(args, "%"+strings.ToLower(filter.Text)+"%")
	}
	if filter.FavoriteOnly {
		sb.WriteString(" AND m.is_favorite = 1")
	}
	if filter.Start != nil {
		sb.WriteString(" AND m.creation_time >= ?")
		args = append(args, filter.Start.UTC().Unix())
	}
	if filter.End != nil {
		sb.WriteString(" AND m.creation_time <= ?")
		args = append(args, filter.End.UTC().Unix())
	}
	if filter.MimeType != "" {
		sb.WriteString(" AND m.mime_type = ?")
		args = append(args, filter.MimeType)
	}
	if filter.CameraMake != "" {
		sb.WriteString(" AND m.camera_make = ?")
		args = append(args, filter.CameraMake)
	}
	if filter.CameraModel != "" {
		sb.WriteString(" AND m.camera_model = ?")
		args = append(args, filter.CameraModel)
	}

	sb.WriteString(" ORDER BY m.creation_time DESC, m.id ASC")

	if filter.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query media items: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var items []models.MediaItem
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate media items: %v", shared.ErrStorage, err)
	}
	return items, nil
}
