package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/photomirror/photomirror/internal/shared"
)

// FileTokenProvider implements TokenProvider on top of oauth2. Refreshed
// tokens are persisted back to a JSON file so sessions survive restarts.
// A ReuseTokenSource caches the access token until expiry, and forced
// refreshes are deduplicated so concurrent 401 handlers share one round
// trip to the token endpoint.
type FileTokenProvider struct {
	conf *oauth2.Config
	path string

	mu      sync.Mutex
	current *oauth2.Token
	source  oauth2.TokenSource

	refresh singleflight.Group
}

// NewFileTokenProvider loads a persisted token from path and prepares a
// refreshing source. The file must exist: run the login flow first.
func NewFileTokenProvider(auth shared.AuthConfig, path string) (*FileTokenProvider, error) {
	tok, err := readTokenFile(path)
	if err != nil {
		return nil, err
	}
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token file %s has no refresh token", shared.ErrNoRefreshToken, path)
	}

	conf := &oauth2.Config{
		ClientID:     auth.ClientID,
		ClientSecret: auth.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: auth.TokenURL},
	}

	p := &FileTokenProvider{conf: conf, path: path, current: tok}
	p.source = oauth2.ReuseTokenSource(tok, conf.TokenSource(context.Background(), tok))
	return p, nil
}

// Token returns a valid access token, refreshing when the cached one has
// expired. Newly refreshed tokens are written back to disk.
func (p *FileTokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tok, err := p.source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	if err := p.persistLocked(tok); err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

// ForceRefresh discards the cached access token and fetches a fresh one.
// Concurrent callers are collapsed into a single refresh.
func (p *FileTokenProvider) ForceRefresh(ctx context.Context) (string, error) {
	v, err, _ := p.refresh.Do("refresh", func() (any, error) {
		p.mu.Lock()
		defer p.mu.Unlock()

		stale := &oauth2.Token{
			RefreshToken: p.current.RefreshToken,
			Expiry:       time.Now().Add(-time.Hour),
		}
		p.source = oauth2.ReuseTokenSource(nil, p.conf.TokenSource(ctx, stale))

		tok, err := p.source.Token()
		if err != nil {
			return "", fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
		}
		if err := p.persistLocked(tok); err != nil {
			return "", err
		}
		return tok.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// persistLocked writes the token file when the access token changed.
// Callers must hold p.mu.
func (p *FileTokenProvider) persistLocked(tok *oauth2.Token) error {
	if tok.AccessToken == p.current.AccessToken {
		return nil
	}
	// The token endpoint may omit the refresh token on renewal.
	if tok.RefreshToken == "" {
		tok.RefreshToken = p.current.RefreshToken
	}
	p.current = tok
	return WriteTokenFile(p.path, tok)
}

func readTokenFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no token at %s, run auth login first", shared.ErrAuth, path)
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parsing token file %s: %w", path, err)
	}
	return &tok, nil
}

// WriteTokenFile persists an OAuth token as JSON with owner-only
// permissions, creating parent directories as needed.
func WriteTokenFile(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// StaticTokenProvider serves a fixed access token. It backs the "none"
// token store and tests.
type StaticTokenProvider struct {
	AccessToken string
}

func (s StaticTokenProvider) Token(ctx context.Context) (string, error) {
	if s.AccessToken == "" {
		return "", fmt.Errorf("%w: no access token configured", shared.ErrAuth)
	}
	return s.AccessToken, nil
}

func (s StaticTokenProvider) ForceRefresh(ctx context.Context) (string, error) {
	return s.Token(ctx)
}
