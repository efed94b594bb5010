package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/photomirror/photomirror/internal/models"
	"github.com/photomirror/photomirror/internal/shared"
)

func page1Item(baseURL string) models.MediaItem {
	return models.MediaItem{ID: "item-1", Filename: "beach.jpg", BaseURL: baseURL}
}

func testClient(t *testing.T, handler http.Handler) (*PhotosClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewPhotosClient(srv.URL, StaticTokenProvider{AccessToken: "test-token"}, log.New(io.Discard))
	return client, srv
}

func TestListMediaItems(t *testing.T) {
	t.Run("parses a page and its cursor", func(t *testing.T) {
		client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("Authorization = %q, want bearer token", got)
			}
			if got := r.URL.Query().Get("pageToken"); got != "cursor-1" {
				t.Errorf("pageToken = %q, want cursor-1", got)
			}
			w.Write([]byte(`{
				"mediaItems": [{
					"id": "item-1",
					"filename": "beach.jpg",
					"mimeType": "image/jpeg",
					"baseUrl": "https://cdn.example/item-1",
					"mediaMetadata": {
						"creationTime": "2024-06-01T10:00:00Z",
						"width": "4032",
						"height": "3024",
						"photo": {"cameraMake": "Canon", "cameraModel": "EOS R5"}
					}
				}],
				"nextPageToken": "cursor-2"
			}`))
		}))

		page, err := client.ListMediaItems(context.Background(), "cursor-1", 50)
		if err != nil {
			t.Fatalf("ListMediaItems() error = %v", err)
		}
		if len(page.Items) != 1 {
			t.Fatalf("got %d items, want 1", len(page.Items))
		}
		item := page.Items[0]
		if item.ID != "item-1" || item.Filename != "beach.jpg" {
			t.Errorf("item = %+v", item)
		}
		if item.Width != 4032 || item.Height != 3024 {
			t.Errorf("dimensions = %dx%d, want 4032x3024", item.Width, item.Height)
		}
		if item.CameraMake != "Canon" || item.CameraModel != "EOS R5" {
			t.Errorf("camera = %q %q", item.CameraMake, item.CameraModel)
		}
		if page.NextCursor != "cursor-2" {
			t.Errorf("NextCursor = %q, want cursor-2", page.NextCursor)
		}
	})

	t.Run("final page has empty cursor", func(t *testing.T) {
		client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"mediaItems": []}`))
		}))

		page, err := client.ListMediaItems(context.Background(), "", 50)
		if err != nil {
			t.Fatalf("ListMediaItems() error = %v", err)
		}
		if page.NextCursor != "" {
			t.Errorf("NextCursor = %q, want empty", page.NextCursor)
		}
	})
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   error
	}{
		{"401 maps to auth", http.StatusUnauthorized, shared.ErrAuth},
		{"403 maps to auth", http.StatusForbidden, shared.ErrAuth},
		{"429 maps to rate limit", http.StatusTooManyRequests, shared.ErrRateLimit},
		{"404 maps to not found", http.StatusNotFound, shared.ErrNotFound},
		{"500 maps to transient", http.StatusInternalServerError, shared.ErrTransient},
		{"503 maps to transient", http.StatusServiceUnavailable, shared.ErrTransient},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			}))

			_, err := client.ListMediaItems(context.Background(), "", 50)
			if !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

type countingProvider struct {
	refreshes atomic.Int32
}

func (c *countingProvider) Token(ctx context.Context) (string, error) {
	return "stale", nil
}

func (c *countingProvider) ForceRefresh(ctx context.Context) (string, error) {
	c.refreshes.Add(1)
	return "fresh", nil
}

func TestAuthRetry(t *testing.T) {
	t.Run("401 triggers one forced refresh and retry", func(t *testing.T) {
		provider := &countingProvider{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "Bearer fresh" {
				w.Write([]byte(`{"mediaItems": []}`))
				return
			}
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewPhotosClient(srv.URL, provider, log.New(io.Discard))
		_, err := client.ListMediaItems(context.Background(), "", 50)
		if err != nil {
			t.Fatalf("ListMediaItems() error = %v", err)
		}
		if got := provider.refreshes.Load(); got != 1 {
			t.Errorf("refreshes = %d, want 1", got)
		}
	})

	t.Run("persistent 401 surfaces auth error", func(t *testing.T) {
		provider := &countingProvider{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewPhotosClient(srv.URL, provider, log.New(io.Discard))
		_, err := client.ListMediaItems(context.Background(), "", 50)
		if !errors.Is(err, shared.ErrAuth) {
			t.Errorf("error = %v, want %v", err, shared.ErrAuth)
		}
		if got := provider.refreshes.Load(); got != 1 {
			t.Errorf("refreshes = %d, want exactly 1", got)
		}
	})
}

func TestListAlbums(t *testing.T) {
	t.Run("follows pagination", func(t *testing.T) {
		var calls atomic.Int32
		client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				w.Write([]byte(`{"albums": [{"id": "a1", "title": "Hikes", "coverPhotoMediaItemId": "item-9"}], "nextPageToken": "p2"}`))
				return
			}
			if got := r.URL.Query().Get("pageToken"); got != "p2" {
				t.Errorf("pageToken = %q, want p2", got)
			}
			w.Write([]byte(`{"albums": [{"id": "a2", "title": "Food"}]}`))
		}))

		albums, err := client.ListAlbums(context.Background())
		if err != nil {
			t.Fatalf("ListAlbums() error = %v", err)
		}
		if len(albums) != 2 {
			t.Fatalf("got %d albums, want 2", len(albums))
		}
		if albums[0].CoverItemID != "item-9" {
			t.Errorf("CoverItemID = %q, want item-9", albums[0].CoverItemID)
		}
	})
}

func TestCreateAlbum(t *testing.T) {
	client, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Write([]byte(`{"id": "created-1", "title": "Trips"}`))
	}))

	album, err := client.CreateAlbum(context.Background(), "Trips")
	if err != nil {
		t.Fatalf("CreateAlbum() error = %v", err)
	}
	if album.ID != "created-1" || album.Title != "Trips" {
		t.Errorf("album = %+v", album)
	}
}

func TestDownloadThumbnail(t *testing.T) {
	t.Run("fetches bytes from the base url variant", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "=w256-h256-c") {
				t.Errorf("path = %q, want sizing variant suffix", r.URL.Path)
			}
			w.Write([]byte("jpeg-bytes"))
		}))
		defer srv.Close()

		client := NewPhotosClient(srv.URL, StaticTokenProvider{AccessToken: "t"}, log.New(io.Discard))
		item := page1Item(srv.URL + "/item-1")
		got, err := client.DownloadThumbnail(context.Background(), &item)
		if err != nil {
			t.Fatalf("DownloadThumbnail() error = %v", err)
		}
		if string(got) != "jpeg-bytes" {
			t.Errorf("body = %q", got)
		}
	})

	t.Run("missing base url is invalid input", func(t *testing.T) {
		client := NewPhotosClient("http://unused", StaticTokenProvider{AccessToken: "t"}, log.New(io.Discard))
		item := page1Item("")
		_, err := client.DownloadThumbnail(context.Background(), &item)
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("error = %v, want %v", err, shared.ErrInvalidInput)
		}
	})
}
