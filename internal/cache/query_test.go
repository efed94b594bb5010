package cache

import (
	"testing"
	"time"

	"github.com/photomirror/photomirror/internal/models"
)

func seedQueryFixtures(t *testing.T, store *Store) {
	t.Helper()

	day := func(d int) time.Time {
		return time.Date(2024, 6, d, 12, 0, 0, 0, time.UTC)
	}
	items := []models.MediaItem{
		{ID: "m1", Filename: "beach.jpg", Description: "sunny beach day", MimeType: "image/jpeg", CreationTime: day(1), CameraMake: "Canon", CameraModel: "EOS R5"},
		{ID: "m2", Filename: "city.png", MimeType: "image/png", CreationTime: day(2), CameraMake: "Sony"},
		{ID: "m3", Filename: "beach-sunset.jpg", MimeType: "image/jpeg", CreationTime: day(3), CameraMake: "Canon", CameraModel: "EOS R6"},
		{ID: "m4", Filename: "clip.mp4", MimeType: "video/mp4", CreationTime: day(3)},
	}
	if err := store.UpsertMediaItems(items); err != nil {
		t.Fatalf("seeding items: %v", err)
	}

	if err := store.SetFavorite("m2", true); err != nil {
		t.Fatalf("SetFavorite() error = %v", err)
	}
	if err := store.UpsertAlbums([]models.Album{{ID: "a1", Title: "Beaches"}}); err != nil {
		t.Fatalf("UpsertAlbums() error = %v", err)
	}
	for _, id := range []string{"m1", "m3"} {
		if err := store.AddToAlbum("a1", id); err != nil {
			t.Fatalf("AddToAlbum() error = %v", err)
		}
	}
	if err := store.ReplaceFaces("m1", []models.FaceBox{{X: 0.2, Y: 0.2, Width: 0.3, Height: 0.3}}); err != nil {
		t.Fatalf("ReplaceFaces() error = %v", err)
	}
}

func queryIDs(t *testing.T, store *Store, filter models.Filter) []string {
	t.Helper()
	items, err := store.QueryItems(filter)
	if err != nil {
		t.Fatalf("QueryItems(%+v) error = %v", filter, err)
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestQueryItems(t *testing.T) {
	store := setupTestDB(t)
	seedQueryFixtures(t, store)

	t.Run("deterministic order newest first with id tiebreak", func(t *testing.T) {
		got := queryIDs(t, store, models.Filter{})
		want := []string{"m3", "m4", "m2", "m1"}
		if !equalIDs(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
	})

	t.Run("text matches filename case-insensitively", func(t *testing.T) {
		got := queryIDs(t, store, models.Filter{Text: "BEACH"})
		if !equalIDs(got, []string{"m3", "m1"}) {
			t.Errorf("ids = %v", got)
		}
	})

	t.Run("text matches description", func(t *testing.T) {
		got := queryIDs(t, store, models.Filter{Text: "sunny"})
		if !equalIDs(got, []string{"m1"}) {
			t.Errorf("ids = %v", got)
		}
	})

	t.Run("favorite only", func(t *testing.T) {
		got := queryIDs(t, store, models.Filter{FavoriteOnly: true})
		if !equalIDs(got, []string{"m2"}) {
			t.Errorf("ids = %v", got)
		}
	})

	t.Run("date range is inclusive", func(t *testing.T) {
		start := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 6, 2, 23, 59, 59, 0, time.UTC)
		got := queryIDs(t, store, models.Filter{Start: &start, End: &end})
		if !equalIDs(got, []string{"m2"}) {
			t.Errorf("ids = %v", got)
		}
	})

	t.Run("mime type", func(t *testing.T) {
		got := queryIDs(t, store, models.Filter{MimeType: "video/mp4"})
		if !equalIDs(got, []string{"m4"}) {
			t.Errorf("ids = %v", got)
		}
	})

	t.Run("camera make and model compose", func(t *testing.T) {
		got := queryIDs(t, store, models.Filter{CameraMake: "Canon"})
		if !equalIDs(got, []string{"m3", "m1"}) {
			t.Errorf("make only: ids = %v", got)
		}
		got = queryIDs(t, store, models.Filter{CameraMake: "Canon", CameraModel: "EOS R5"})
		if !equalIDs(got, []string{"m1"}) {
			t.Errorf("make+model: ids = %v", got)
		}
	})

	t.Run("has faces", func(t *testing.T) {
		got := queryIDs(t, store, models.Filter{HasFaces: true})
		if !equalIDs(got, []string{"m1"}) {
			t.Errorf("ids = %v", got)
		}
	})

	t.Run("album membership", func(t *testing.T) {
		got := queryIDs(t, store, models.Filter{AlbumID: "a1"})
		if !equalIDs(got, []string{"m3", "m1"}) {
			t.Errorf("ids = %v", got)
		}
	})

	t.Run("all options AND together", func(t *testing.T) {
		got := queryIDs(t, store, models.Filter{
			Text:     "beach",
			MimeType: "image/jpeg",
			AlbumID:  "a1",
			HasFaces: true,
		})
		if !equalIDs(got, []string{"m1"}) {
			t.Errorf("ids = %v", got)
		}
	})

	t.Run("limit truncates deterministically", func(t *testing.T) {
		got := queryIDs(t, store, models.Filter{Limit: 2})
		if !equalIDs(got, []string{"m3", "m4"}) {
			t.Errorf("ids = %v", got)
		}
	})

	t.Run("no match yields empty not error", func(t *testing.T) {
		got := queryIDs(t, store, models.Filter{Text: "nonexistent"})
		if len(got) != 0 {
			t.Errorf("ids = %v", got)
		}
	})
}
