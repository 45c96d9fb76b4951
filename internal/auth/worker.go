// Package auth obtains bearer tokens for the configured service worker
// via the client-credentials grant.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-credential-nodes/pkg/config"
)

// ErrTokenUnavailable wraps any failure to obtain a worker token. Nodes
// treat it as an auth acquisition error: immediate failure, no remote call.
var ErrTokenUnavailable = errors.New("worker token unavailable")

// expiryLeeway is subtracted from the token lifetime so a token is never
// handed out moments before it expires mid-call.
const expiryLeeway = 30 * time.Second

// WorkerTokenSource obtains and caches access tokens for the worker
// credentials. Safe for concurrent use.
type WorkerTokenSource struct {
	cfg        *config.WorkerConfig
	logger     *zap.Logger
	httpClient *http.Client

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now func() time.Time
}

// NewWorkerTokenSource creates a token source for the given worker.
func NewWorkerTokenSource(cfg *config.WorkerConfig, logger *zap.Logger) *WorkerTokenSource {
	return &WorkerTokenSource{
		cfg:        cfg,
		logger:     logger.Named("auth"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

// Token returns a cached token, fetching a new one when the cache is
// empty or within the expiry leeway.
func (s *WorkerTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiresAt) {
		return s.token, nil
	}

	token, expiresAt, err := s.fetch(ctx)
	if err != nil {
		s.logger.Error("Failed to obtain worker token", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrTokenUnavailable, err)
	}

	s.token = token
	s.expiresAt = expiresAt
	return token, nil
}

func (s *WorkerTokenSource) fetch(ctx context.Context) (string, time.Time, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.cfg.ClientID, s.cfg.ClientSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to parse token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", time.Time{}, errors.New("token response missing access_token")
	}

	return payload.AccessToken, s.expiry(payload.AccessToken, payload.ExpiresIn), nil
}

// expiry derives the cache deadline from the token's exp claim when it
// parses as a JWT, falling back to the expires_in field.
func (s *WorkerTokenSource) expiry(token string, expiresIn int) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			return exp.Time.Add(-expiryLeeway)
		}
	}

	if expiresIn > 0 {
		return s.now().Add(time.Duration(expiresIn)*time.Second - expiryLeeway)
	}

	// No expiry information at all: use the token once.
	return s.now()
}
