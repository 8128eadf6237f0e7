package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/mokili/momo/core"
	"github.com/mokili/momo/ports"
)

const (
	tokenEndpoint = "collection/token/"

	// tokenExpiryBuffer renews tokens one minute before they really expire
	tokenExpiryBuffer = 60 * time.Second
)

// cachedToken is the immutable snapshot the credential manager caches.
// A refresh replaces the whole snapshot; it is never mutated in place.
type cachedToken struct {
	Token     core.AccessToken `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// AuthService owns the access-token lifecycle: acquisition, caching and
// expiry-aware renewal. Reads take a lock-free atomic snapshot; the
// refresh path is guarded by a mutex with a re-check after acquiring
// it, so at most one refresh is in flight per instance.
type AuthService struct {
	settings  Settings
	transport ports.Transport
	store     ports.TokenStore
	logger    *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	cached atomic.Pointer[cachedToken]
}

// AuthOption customizes an AuthService
type AuthOption func(*AuthService)

// WithTokenStore shares the cached token through an external store
func WithTokenStore(store ports.TokenStore) AuthOption {
	return func(s *AuthService) {
		s.store = store
	}
}

// WithAuthLogger sets the service logger
func WithAuthLogger(logger *zap.Logger) AuthOption {
	return func(s *AuthService) {
		s.logger = logger
	}
}

// WithClock overrides the time source, used by expiry tests
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) {
		s.now = now
	}
}

// NewAuthService creates a new credential manager
func NewAuthService(settings Settings, transport ports.Transport, opts ...AuthOption) *AuthService {
	s := &AuthService{
		settings:  settings,
		transport: transport,
		logger:    zap.NewNop(),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Token returns a valid access token, refreshing it when the cached one
// expired. Concurrent callers during a refresh all receive the token
// produced by that single refresh.
func (s *AuthService) Token(ctx context.Context) (core.AccessToken, error) {
	if token, ok := s.validCached(); ok {
		return token, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check after acquiring the lock: another caller may have
	// refreshed while this one was blocked.
	if token, ok := s.validCached(); ok {
		return token, nil
	}

	if token, ok := s.adoptShared(ctx); ok {
		return token, nil
	}

	return s.refreshLocked(ctx)
}

// Refresh unconditionally fetches a new token from the provider
func (s *AuthService) Refresh(ctx context.Context) (core.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.refreshLocked(ctx)
}

// Invalidate clears the cached token so the next Token call refreshes.
// It is safe to call concurrently with Token.
func (s *AuthService) Invalidate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached.Store(nil)

	if s.store != nil {
		if err := s.store.Delete(ctx, s.storeKey()); err != nil {
			s.logger.Warn("failed to delete shared token", zap.Error(err))
		}
	}

	s.logger.Debug("token cache cleared")
}

// validCached returns the cached token when it has not expired yet
func (s *AuthService) validCached() (core.AccessToken, bool) {
	cached := s.cached.Load()
	if cached == nil || !s.now().Before(cached.ExpiresAt) {
		return core.AccessToken{}, false
	}
	return cached.Token, true
}

// adoptShared tries to reuse a still-valid token published by another
// instance through the token store. Store failures fall through to a
// fresh fetch.
func (s *AuthService) adoptShared(ctx context.Context) (core.AccessToken, bool) {
	if s.store == nil {
		return core.AccessToken{}, false
	}

	raw, err := s.store.Get(ctx, s.storeKey())
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			s.logger.Warn("failed to read shared token", zap.Error(err))
		}
		return core.AccessToken{}, false
	}

	var cached cachedToken
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		s.logger.Warn("failed to decode shared token", zap.Error(err))
		return core.AccessToken{}, false
	}

	if !cached.Token.Valid() || !s.now().Before(cached.ExpiresAt) {
		return core.AccessToken{}, false
	}

	s.cached.Store(&cached)
	s.logger.Debug("adopted shared access token", zap.Time("expires_at", cached.ExpiresAt))

	return cached.Token, true
}

// refreshLocked contacts the token endpoint. The caller must hold mu.
func (s *AuthService) refreshLocked(ctx context.Context) (core.AccessToken, error) {
	s.logger.Info("requesting new access token")

	resp, err := s.transport.Execute(ctx, ports.Request{
		Method: http.MethodPost,
		URL:    s.settings.BaseURL + tokenEndpoint,
		Headers: map[string]string{
			"Authorization":             s.basicAuthHeader(),
			"Ocp-Apim-Subscription-Key": s.settings.SubscriptionKey,
			"Content-Type":              "application/json",
		},
	})
	if err != nil {
		return core.AccessToken{}, &core.AuthError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("authentication failed", zap.Int("status", resp.StatusCode))
		return core.AccessToken{}, &core.AuthError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}

	var token core.AccessToken
	if err := json.Unmarshal(resp.Body, &token); err != nil {
		return core.AccessToken{}, &core.AuthError{Err: err}
	}

	if !token.Valid() {
		return core.AccessToken{}, &core.AuthError{Err: core.ErrTokenInvalid}
	}

	now := s.now()
	lifetime := token.Lifetime(now) - tokenExpiryBuffer
	if lifetime < 0 {
		lifetime = 0
	}

	cached := &cachedToken{Token: token, ExpiresAt: now.Add(lifetime)}
	s.cached.Store(cached)
	s.publishShared(ctx, cached, lifetime)

	s.logger.Info("access token obtained", zap.Time("expires_at", cached.ExpiresAt))

	return token, nil
}

// publishShared writes the fresh snapshot to the token store
func (s *AuthService) publishShared(ctx context.Context, cached *cachedToken, ttl time.Duration) {
	if s.store == nil || ttl <= 0 {
		return
	}

	raw, err := json.Marshal(cached)
	if err != nil {
		s.logger.Warn("failed to encode shared token", zap.Error(err))
		return
	}

	if err := s.store.Set(ctx, s.storeKey(), string(raw), ttl); err != nil {
		s.logger.Warn("failed to publish shared token", zap.Error(err))
	}
}

func (s *AuthService) storeKey() string {
	return s.settings.APIUser
}

func (s *AuthService) basicAuthHeader() string {
	credentials := s.settings.APIUser + ":" + s.settings.APIKey
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}
