package formatter

import (
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/photomirror/photomirror/internal/models"
)

func sampleItems() []models.MediaItem {
	return []models.MediaItem{
		{
			ID:           "item-1",
			Filename:     "beach.jpg",
			MimeType:     "image/jpeg",
			Width:        4032,
			Height:       3024,
			CreationTime: time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
			IsFavorite:   true,
			CameraMake:   "Canon",
			CameraModel:  "EOS R5",
		},
		{
			ID:           "item-2",
			Filename:     "mountain.png",
			MimeType:     "image/png",
			CreationTime: time.Date(2024, 6, 2, 11, 0, 0, 0, time.UTC),
		},
	}
}

func TestItemsToCSV(t *testing.T) {
	data, err := ItemsToCSV(sampleItems())
	if err != nil {
		t.Fatalf("ItemsToCSV() error = %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("parsing CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(records))
	}
	if records[0][0] != "ID" || records[0][1] != "Filename" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][0] != "item-1" || records[1][6] != "true" {
		t.Errorf("first row = %v", records[1])
	}
	if records[2][5] != "2024-06-02T11:00:00Z" {
		t.Errorf("creation time = %q", records[2][5])
	}
}

func TestAlbumsToCSV(t *testing.T) {
	albums := []models.Album{
		{ID: "a1", Title: "Trips", CoverItemID: "item-1"},
	}
	data, err := AlbumsToCSV(albums)
	if err != nil {
		t.Fatalf("AlbumsToCSV() error = %v", err)
	}
	if !strings.Contains(string(data), "a1,Trips,item-1") {
		t.Errorf("output = %q", data)
	}
}

func TestItemsToMarkdown(t *testing.T) {
	out := string(ItemsToMarkdown("Library", sampleItems()))

	if !strings.HasPrefix(out, "# Library\n") {
		t.Errorf("missing title: %q", out)
	}
	if !strings.Contains(out, "**Items**: 2") {
		t.Errorf("missing count: %q", out)
	}
	if !strings.Contains(out, "beach.jpg") || !strings.Contains(out, "★") {
		t.Errorf("missing favorite marker: %q", out)
	}
}

func TestItemsToText(t *testing.T) {
	out := string(ItemsToText(sampleItems()))

	if !strings.Contains(out, "Items: 2") {
		t.Errorf("missing count: %q", out)
	}
	if !strings.Contains(out, "4032x3024") {
		t.Errorf("missing dimensions: %q", out)
	}
	if !strings.Contains(out, "[favorite]") {
		t.Errorf("missing favorite marker: %q", out)
	}
}

func TestAlbumsToText(t *testing.T) {
	out := string(AlbumsToText([]models.Album{{ID: "a1", Title: "Food"}}))
	if !strings.Contains(out, "Albums: 1") || !strings.Contains(out, "Food") {
		t.Errorf("output = %q", out)
	}
}

func TestToJSON(t *testing.T) {
	data, err := ToJSON(sampleItems())
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	if !strings.Contains(string(data), `"id": "item-1"`) {
		t.Errorf("output = %q", data)
	}
}
