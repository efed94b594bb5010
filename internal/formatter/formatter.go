// package formatter renders cached media items and albums to CSV, Markdown
// and plain text for the list and export commands.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/photomirror/photomirror/internal/models"
)

// ItemsToCSV converts media items to CSV with columns:
// ID, Filename, MimeType, Width, Height, CreationTime, Favorite, CameraMake, CameraModel
func ItemsToCSV(items []models.MediaItem) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Filename", "MimeType", "Width", "Height", "CreationTime", "Favorite", "CameraMake", "CameraModel"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{
			item.ID,
			item.Filename,
			item.MimeType,
			strconv.FormatInt(item.Width, 10),
			strconv.FormatInt(item.Height, 10),
			item.CreationTime.UTC().Format(time.RFC3339),
			strconv.FormatBool(item.IsFavorite),
			item.CameraMake,
			item.CameraModel,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// AlbumsToCSV converts albums to CSV with columns: ID, Title, CoverItemID
func AlbumsToCSV(albums []models.Album) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Title", "CoverItemID"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, album := range albums {
		if err := writer.Write([]string{album.ID, album.Title, album.CoverItemID}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ItemsToMarkdown converts media items to a Markdown listing under a title.
func ItemsToMarkdown(title string, items []models.MediaItem) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Items**: %d\n\n", len(items)))

	for i, item := range items {
		star := ""
		if item.IsFavorite {
			star = " ★"
		}
		camera := ""
		if item.CameraMake != "" || item.CameraModel != "" {
			camera = fmt.Sprintf(" (%s %s)", item.CameraMake, item.CameraModel)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s%s\n",
			i+1, item.Filename, item.CreationTime.UTC().Format("2006-01-02"), camera, star))
	}

	return buf.Bytes()
}

// ItemsToText converts media items to a plain text listing.
func ItemsToText(items []models.MediaItem) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Items: %d\n\n", len(items)))
	for i, item := range items {
		fav := ""
		if item.IsFavorite {
			fav = " [favorite]"
		}
		buf.WriteString(fmt.Sprintf("%d. %s  %s  %dx%d%s\n",
			i+1, item.ID, item.Filename, item.Width, item.Height, fav))
	}

	return buf.Bytes()
}

// AlbumsToText converts albums to a plain text listing.
func AlbumsToText(albums []models.Album) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Albums: %d\n\n", len(albums)))
	for i, album := range albums {
		buf.WriteString(fmt.Sprintf("%d. %s  %s\n", i+1, album.ID, album.Title))
	}

	return buf.Bytes()
}

// ToJSON marshals any value with indentation for CLI output.
func ToJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return data, nil
}

// WriteItemsCSV writes a CSV export of items to path.
func WriteItemsCSV(items []models.MediaItem, path string) error {
	data, err := ItemsToCSV(items)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}
