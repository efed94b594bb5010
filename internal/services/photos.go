package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/photomirror/photomirror/internal/models"
	"github.com/photomirror/photomirror/internal/shared"
)

const (
	defaultBaseURL    = "https://photoslibrary.googleapis.com/v1"
	defaultTimeout    = 30 * time.Second
	maxAlbumPageSize  = 50
	thumbnailVariant  = "=w256-h256-c"
	maxResponseLength = 16 << 20
)

// PhotosClient talks to the remote photo library over HTTP. It satisfies
// RemoteClient and classifies transport and status failures with the
// shared error sentinels so callers can decide retry behavior with
// errors.Is alone.
type PhotosClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenProvider
	logger  *log.Logger
}

// NewPhotosClient builds a client against baseURL (empty selects the
// production endpoint) using tokens for authorization.
func NewPhotosClient(baseURL string, tokens TokenProvider, logger *log.Logger) *PhotosClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &PhotosClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
		tokens:  tokens,
		logger:  logger,
	}
}

type mediaMetadataPayload struct {
	CreationTime time.Time `json:"creationTime"`
	Width        string    `json:"width"`
	Height       string    `json:"height"`
	Photo        struct {
		CameraMake  string `json:"cameraMake"`
		CameraModel string `json:"cameraModel"`
	} `json:"photo"`
}

type mediaItemPayload struct {
	ID            string               `json:"id"`
	Filename      string               `json:"filename"`
	Description   string               `json:"description"`
	MimeType      string               `json:"mimeType"`
	BaseURL       string               `json:"baseUrl"`
	MediaMetadata mediaMetadataPayload `json:"mediaMetadata"`
}

type albumPayload struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	CoverMediaItemID string `json:"coverPhotoMediaItemId"`
}

func (p *mediaItemPayload) toModel() models.MediaItem {
	width, _ := strconv.ParseInt(p.MediaMetadata.Width, 10, 64)
	height, _ := strconv.ParseInt(p.MediaMetadata.Height, 10, 64)
	return models.MediaItem{
		ID:           p.ID,
		Filename:     p.Filename,
		Description:  p.Description,
		MimeType:     p.MimeType,
		Width:        width,
		Height:       height,
		CreationTime: p.MediaMetadata.CreationTime,
		BaseURL:      p.BaseURL,
		CameraMake:   p.MediaMetadata.Photo.CameraMake,
		CameraModel:  p.MediaMetadata.Photo.CameraModel,
	}
}

// classifyStatus maps an HTTP status to a shared sentinel.
func classifyStatus(status int, body []byte) error {
	msg := string(bytes.TrimSpace(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: remote returned %d: %s", shared.ErrAuth, status, msg)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: remote returned 429: %s", shared.ErrRateLimit, msg)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: remote returned 404: %s", shared.ErrNotFound, msg)
	case status >= 500:
		return fmt.Errorf("%w: remote returned %d: %s", shared.ErrTransient, status, msg)
	default:
		return fmt.Errorf("remote returned unexpected status %d: %s", status, msg)
	}
}

// classifyTransport maps a transport-level failure to a shared sentinel.
// Timeouts and temporary network faults are retryable.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", shared.ErrTransient, err)
	}
	return fmt.Errorf("%w: %v", shared.ErrTransient, err)
}

// do performs an authorized request and returns the response body. A 401
// triggers a single forced token refresh and one retry, matching the
// behavior expected of OAuth bearer clients.
func (c *PhotosClient) do(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	body, err := c.doOnce(ctx, method, path, query, payload, false)
	if err != nil && errors.Is(err, shared.ErrAuth) {
		c.logger.Debug("auth failure, retrying with refreshed token", "path", path)
		return c.doOnce(ctx, method, path, query, payload, true)
	}
	return body, err
}

func (c *PhotosClient) doOnce(ctx context.Context, method, path string, query url.Values, payload any, forceRefresh bool) ([]byte, error) {
	var token string
	var err error
	if forceRefresh {
		token, err = c.tokens.ForceRefresh(ctx)
	} else {
		token, err = c.tokens.Token(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: obtaining access token: %v", shared.ErrAuth, err)
	}

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseLength))
	if err != nil {
		return nil, classifyTransport(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(resp.StatusCode, raw)
	}
	return raw, nil
}

// ListMediaItems fetches one page of the library starting at cursor.
func (c *PhotosClient) ListMediaItems(ctx context.Context, cursor string, pageSize int) (*models.Page, error) {
	query := url.Values{}
	query.Set("pageSize", strconv.Itoa(pageSize))
	if cursor != "" {
		query.Set("pageToken", cursor)
	}

	raw, err := c.do(ctx, http.MethodGet, "/mediaItems", query, nil)
	if err != nil {
		return nil, err
	}

	var payload struct {
		MediaItems    []mediaItemPayload `json:"mediaItems"`
		NextPageToken string             `json:"nextPageToken"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding media items page: %w", err)
	}

	page := &models.Page{NextCursor: payload.NextPageToken}
	for i := range payload.MediaItems {
		page.Items = append(page.Items, payload.MediaItems[i].toModel())
	}
	return page, nil
}

// ListAlbums fetches all albums, following pagination internally.
func (c *PhotosClient) ListAlbums(ctx context.Context) ([]models.Album, error) {
	var albums []models.Album
	cursor := ""
	for {
		query := url.Values{}
		query.Set("pageSize", strconv.Itoa(maxAlbumPageSize))
		if cursor != "" {
			query.Set("pageToken", cursor)
		}

		raw, err := c.do(ctx, http.MethodGet, "/albums", query, nil)
		if err != nil {
			return nil, err
		}

		var payload struct {
			Albums        []albumPayload `json:"albums"`
			NextPageToken string         `json:"nextPageToken"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("decoding albums page: %w", err)
		}

		for _, a := range payload.Albums {
			albums = append(albums, models.Album{
				ID:          a.ID,
				Title:       a.Title,
				CoverItemID: a.CoverMediaItemID,
			})
		}

		cursor = payload.NextPageToken
		if cursor == "" {
			return albums, nil
		}
	}
}

// ListAlbumItems returns the ids of the media items in an album.
func (c *PhotosClient) ListAlbumItems(ctx context.Context, albumID string) ([]string, error) {
	var ids []string
	cursor := ""
	for {
		body := map[string]any{
			"albumId":  albumID,
			"pageSize": 100,
		}
		if cursor != "" {
			body["pageToken"] = cursor
		}

		raw, err := c.do(ctx, http.MethodPost, "/mediaItems:search", nil, body)
		if err != nil {
			return nil, err
		}

		var payload struct {
			MediaItems    []mediaItemPayload `json:"mediaItems"`
			NextPageToken string             `json:"nextPageToken"`
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("decoding album items page: %w", err)
		}

		for _, item := range payload.MediaItems {
			ids = append(ids, item.ID)
		}

		cursor = payload.NextPageToken
		if cursor == "" {
			return ids, nil
		}
	}
}

// CreateAlbum creates a remote album and returns its assigned identity.
func (c *PhotosClient) CreateAlbum(ctx context.Context, title string) (*models.Album, error) {
	body := map[string]any{
		"album": map[string]string{"title": title},
	}
	raw, err := c.do(ctx, http.MethodPost, "/albums", nil, body)
	if err != nil {
		return nil, err
	}

	var payload albumPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decoding created album: %w", err)
	}
	return &models.Album{
		ID:          payload.ID,
		Title:       payload.Title,
		CoverItemID: payload.CoverMediaItemID,
	}, nil
}

// RenameAlbum updates an album title remotely.
func (c *PhotosClient) RenameAlbum(ctx context.Context, albumID, title string) error {
	query := url.Values{}
	query.Set("updateMask", "title")
	body := map[string]string{"title": title}
	_, err := c.do(ctx, http.MethodPatch, "/albums/"+url.PathEscape(albumID), query, body)
	return err
}

// DeleteAlbum removes an album remotely.
func (c *PhotosClient) DeleteAlbum(ctx context.Context, albumID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/albums/"+url.PathEscape(albumID), nil, nil)
	return err
}

// AddToAlbum appends media items to an album.
func (c *PhotosClient) AddToAlbum(ctx context.Context, albumID string, itemIDs []string) error {
	body := map[string]any{"mediaItemIds": itemIDs}
	_, err := c.do(ctx, http.MethodPost, "/albums/"+url.PathEscape(albumID)+":batchAddMediaItems", nil, body)
	return err
}

// DownloadThumbnail fetches thumbnail bytes for a media item using its
// base URL with a sizing variant suffix.
func (c *PhotosClient) DownloadThumbnail(ctx context.Context, item *models.MediaItem) ([]byte, error) {
	if item.BaseURL == "" {
		return nil, fmt.Errorf("%w: media item %q has no base url", shared.ErrInvalidInput, item.ID)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: obtaining access token: %v", shared.ErrAuth, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.BaseURL+thumbnailVariant, nil)
	if err != nil {
		return nil, fmt.Errorf("building thumbnail request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseLength))
	if err != nil {
		return nil, classifyTransport(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, raw)
	}
	return raw, nil
}
