package usp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// PeriodicTokenRefresher implements TokenRefresher by POSTing to a token
// endpoint and caching the result until shortly before it expires, the way
// the ancestor SDK's TokenManager caches a bearer token.
type PeriodicTokenRefresher struct {
	endpoint      string
	headers       map[string]string
	refreshBuffer time.Duration
	httpClient    *http.Client

	cached    string
	expiresAt time.Time
}

// NewPeriodicTokenRefresher builds a refresher that POSTs an empty JSON
// body to endpoint and expects {"token": "...", "expiresAt": <unix-ms>}.
func NewPeriodicTokenRefresher(endpoint string, headers map[string]string, refreshBuffer time.Duration) *PeriodicTokenRefresher {
	return &PeriodicTokenRefresher{
		endpoint:      endpoint,
		headers:       headers,
		refreshBuffer: refreshBuffer,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Token returns a cached bearer token if it is not within refreshBuffer of
// expiring, otherwise fetches a new one.
func (t *PeriodicTokenRefresher) Token(ctx context.Context) (string, error) {
	if t.cached != "" && time.Now().Before(t.expiresAt.Add(-t.refreshBuffer)) {
		return t.cached, nil
	}
	return t.refresh(ctx)
}

func (t *PeriodicTokenRefresher) refresh(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewBufferString("{}"))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token refresh failed: %s", resp.Status)
	}

	var payload struct {
		Token     string  `json:"token"`
		ExpiresAt float64 `json:"expiresAt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if payload.Token == "" {
		return "", fmt.Errorf("token response contained no token")
	}

	t.cached = payload.Token
	t.expiresAt = time.UnixMilli(int64(payload.ExpiresAt))

	return t.cached, nil
}

// DecodeBearerTokenExpiry parses the exp claim out of a JWT bearer token
// without validating its signature, so a caller can decide whether to
// refresh before reusing cached AuthorizationToken data.
func DecodeBearerTokenExpiry(token string) (time.Time, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	_, _, err := parser.ParseUnverified(token, claims)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse bearer token: %w", err)
	}

	expFloat, ok := claims["exp"].(float64)
	if !ok {
		return time.Time{}, fmt.Errorf("bearer token has no exp claim")
	}

	return time.Unix(int64(expFloat), 0), nil
}
