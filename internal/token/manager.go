package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"ledgersync/internal/store"

	"golang.org/x/sync/singleflight"
)

// ErrNoToken is returned when no usable token exists for a user. It is
// an absence state, not a failure: callers skip their run instead of
// crashing the job runner.
var ErrNoToken = errors.New("no token available")

// ManagerConfig holds the OAuth client settings for token refresh.
type ManagerConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	DefaultScope string
}

// Manager serves valid tokens from memory, refreshing expired ones
// against the provider's token endpoint and writing them back to the
// credential store. Construct one per process and inject by reference.
type Manager struct {
	creds      store.CredentialStore
	config     ManagerConfig
	httpClient *http.Client
	log        *slog.Logger

	// now is swappable for tests.
	now func() time.Time

	mu    sync.Mutex
	cache map[string]Token

	// group collapses concurrent refreshes for the same user into one
	// in-flight attempt.
	group singleflight.Group
}

// NewManager creates a token manager backed by the given credential store.
func NewManager(creds store.CredentialStore, config ManagerConfig, log *slog.Logger) *Manager {
	return &Manager{
		creds:  creds,
		config: config,
		log:    log,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		now:   time.Now,
		cache: make(map[string]Token),
	}
}

// CurrentToken returns a token guaranteed valid for at least the expiry
// margin. Cached tokens are served without any network or database
// access; otherwise the credential store is consulted and an expired
// token gets exactly one refresh attempt. Returns ErrNoToken when no
// usable token exists.
func (m *Manager) CurrentToken(ctx context.Context, userID string) (Token, error) {
	if userID == "" {
		return Token{}, fmt.Errorf("user id is required")
	}

	m.mu.Lock()
	cached, ok := m.cache[userID]
	m.mu.Unlock()
	if ok && !cached.ExpiredAt(m.now()) {
		return cached, nil
	}

	v, err, _ := m.group.Do(userID, func() (interface{}, error) {
		return m.loadOrRefresh(ctx, userID)
	})
	if err != nil {
		return Token{}, err
	}
	return v.(Token), nil
}

// loadOrRefresh runs under singleflight: at most one caller per user
// executes the load -> maybe refresh -> persist sequence at a time.
func (m *Manager) loadOrRefresh(ctx context.Context, userID string) (Token, error) {
	// Re-check the cache: a concurrent caller may have refreshed while
	// we waited on the flight group.
	m.mu.Lock()
	cached, ok := m.cache[userID]
	m.mu.Unlock()
	if ok && !cached.ExpiredAt(m.now()) {
		return cached, nil
	}

	cred, err := m.creds.GetCredential(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			// Database trouble on the hot path degrades to absence so the
			// job runner keeps going.
			m.log.Error("failed to load credential", "user_id", userID, "error", err)
		}
		return Token{}, ErrNoToken
	}

	tok, err := Unmarshal(cred.TokenData)
	if err != nil {
		m.log.Error("stored token data is invalid", "user_id", userID, "error", err)
		return Token{}, ErrNoToken
	}

	if !tok.ExpiredAt(m.now()) {
		m.setCache(userID, tok)
		return tok, nil
	}

	refreshed, err := m.refresh(ctx, tok)
	if err != nil {
		// The stale token is discarded; expired material is never handed out.
		m.log.Warn("token refresh failed", "user_id", userID, "error", err)
		return Token{}, ErrNoToken
	}

	if err := m.persist(ctx, refreshed, userID); err != nil {
		// The refreshed token is still valid for this caller; the next
		// lookup will fall back to the store and refresh again.
		m.log.Error("failed to persist refreshed token", "user_id", userID, "error", err)
		return refreshed, nil
	}

	m.setCache(userID, refreshed)
	m.log.Info("token refreshed", "user_id", userID, "expires_at", refreshed.ExpiresAt)
	return refreshed, nil
}

// StoreToken normalizes a raw provider token response and upserts it
// for the user. The cache is only updated after the store write
// succeeds, so cache and store never disagree.
func (m *Manager) StoreToken(ctx context.Context, payload Payload, userID string) (Token, error) {
	if userID == "" {
		return Token{}, fmt.Errorf("user id is required")
	}

	tok := Normalize(payload, m.now(), m.config.DefaultScope)
	if err := m.persist(ctx, tok, userID); err != nil {
		return Token{}, err
	}

	m.setCache(userID, tok)
	return tok, nil
}

// Invalidate removes the user's token from cache and store. Invalidating
// an absent token is a no-op success.
func (m *Manager) Invalidate(ctx context.Context, userID string) error {
	m.mu.Lock()
	delete(m.cache, userID)
	m.mu.Unlock()

	if err := m.creds.DeleteCredential(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return nil
}

func (m *Manager) persist(ctx context.Context, tok Token, userID string) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to serialize token: %w", err)
	}
	return m.creds.UpsertCredential(ctx, &store.Credential{
		UserID:    userID,
		TokenData: data,
		ExpiresAt: tok.ExpiresAt,
	})
}

func (m *Manager) setCache(userID string, tok Token) {
	m.mu.Lock()
	m.cache[userID] = tok
	m.mu.Unlock()
}

// refresh exchanges the stored refresh token for a new token. Exactly
// one attempt is made; retry policy belongs to the caller (in practice,
// the next scheduled firing).
func (m *Manager) refresh(ctx context.Context, old Token) (Token, error) {
	if old.RefreshToken == "" {
		return Token{}, fmt.Errorf("no refresh token available")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {old.RefreshToken},
		"client_id":     {m.config.ClientID},
		"client_secret": {m.config.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("token endpoint request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Token{}, fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, body)
	}

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Token{}, fmt.Errorf("failed to decode token response: %w", err)
	}

	return Normalize(payload, m.now(), m.config.DefaultScope), nil
}
