package cache

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/photomirror/photomirror/internal/models"
	"github.com/photomirror/photomirror/internal/shared"
)

func TestExportImportItems(t *testing.T) {
	store := setupTestDB(t)
	items := []models.MediaItem{testItem("m1"), testItem("m2")}
	items[0].Description = "first"
	if err := store.UpsertMediaItems(items); err != nil {
		t.Fatalf("UpsertMediaItems() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "items.json")
	if err := store.ExportItems(path); err != nil {
		t.Fatalf("ExportItems() error = %v", err)
	}

	fresh := setupTestDB(t)
	if err := fresh.ImportItems(path); err != nil {
		t.Fatalf("ImportItems() error = %v", err)
	}

	got, err := fresh.GetItem("m1")
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if got.Description != "first" {
		t.Errorf("Description = %q, want first", got.Description)
	}
	stats, _ := fresh.Stats()
	if stats.MediaItems != 2 {
		t.Errorf("MediaItems = %d, want 2", stats.MediaItems)
	}

	// Imported items are searchable.
	found, err := fresh.QueryItems(models.Filter{Text: "first"})
	if err != nil {
		t.Fatalf("QueryItems() error = %v", err)
	}
	if len(found) != 1 {
		t.Errorf("search found %d items, want 1", len(found))
	}
}

func TestExportAlbums(t *testing.T) {
	store := setupTestDB(t)
	if err := store.UpsertAlbums([]models.Album{{ID: "a1", Title: "Trips"}}); err != nil {
		t.Fatalf("UpsertAlbums() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "albums.json")
	if err := store.ExportAlbums(path); err != nil {
		t.Fatalf("ExportAlbums() error = %v", err)
	}

	var albums []models.Album
	if err := readJSONFile(path, &albums); err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if len(albums) != 1 || albums[0].Title != "Trips" {
		t.Errorf("albums = %+v", albums)
	}
}

func TestExportImportFaces(t *testing.T) {
	store := setupTestDB(t)
	if err := store.UpsertMediaItems([]models.MediaItem{testItem("m1")}); err != nil {
		t.Fatalf("UpsertMediaItems() error = %v", err)
	}
	boxes := []models.FaceBox{{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.4, Name: "Ada"}}
	if err := store.ReplaceFaces("m1", boxes); err != nil {
		t.Fatalf("ReplaceFaces() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "faces.json")
	if err := store.ExportFaces(path); err != nil {
		t.Fatalf("ExportFaces() error = %v", err)
	}

	fresh := setupTestDB(t)
	if err := fresh.UpsertMediaItems([]models.MediaItem{testItem("m1")}); err != nil {
		t.Fatalf("UpsertMediaItems() error = %v", err)
	}
	if err := fresh.ImportFaces(path); err != nil {
		t.Fatalf("ImportFaces() error = %v", err)
	}

	got, err := fresh.GetFaces("m1")
	if err != nil {
		t.Fatalf("GetFaces() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "Ada" {
		t.Errorf("faces = %+v", got)
	}

	t.Run("import needs the referenced item", func(t *testing.T) {
		empty := setupTestDB(t)
		if err := empty.ImportFaces(path); !errors.Is(err, shared.ErrConstraint) {
			t.Errorf("error = %v, want %v", err, shared.ErrConstraint)
		}
	})
}

func TestImportRejectsMalformedFile(t *testing.T) {
	store := setupTestDB(t)
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := writeJSONFile(path, "not an array"); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if err := store.ImportItems(path); !errors.Is(err, shared.ErrInvalidInput) {
		t.Errorf("error = %v, want %v", err, shared.ErrInvalidInput)
	}
}
