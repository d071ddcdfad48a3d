package usp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestPeriodicTokenRefresher_FetchesAndCaches(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{
			"token":     "abc123",
			"expiresAt": float64(time.Now().Add(time.Hour).UnixMilli()),
		})
	}))
	defer ts.Close()

	refresher := NewPeriodicTokenRefresher(ts.URL, nil, time.Minute)

	token, err := refresher.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "abc123" {
		t.Fatalf("token = %q, want %q", token, "abc123")
	}

	if _, err := refresher.Token(context.Background()); err != nil {
		t.Fatalf("second Token call: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected the cached token to be reused, server was hit %d times", calls)
	}
}

func TestPeriodicTokenRefresher_RefetchesWithinBuffer(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{
			"token":     "token-from-call",
			"expiresAt": float64(time.Now().Add(5 * time.Second).UnixMilli()),
		})
	}))
	defer ts.Close()

	refresher := NewPeriodicTokenRefresher(ts.URL, nil, time.Minute)

	if _, err := refresher.Token(context.Background()); err != nil {
		t.Fatalf("first Token: %v", err)
	}
	if _, err := refresher.Token(context.Background()); err != nil {
		t.Fatalf("second Token: %v", err)
	}

	if calls != 2 {
		t.Fatalf("expected a refresh when the cached token is within the refresh buffer, server was hit %d times", calls)
	}
}

func TestPeriodicTokenRefresher_NonOKStatusIsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	refresher := NewPeriodicTokenRefresher(ts.URL, nil, time.Minute)
	if _, err := refresher.Token(context.Background()); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestDecodeBearerTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("any-secret-unverified"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	got, err := DecodeBearerTokenExpiry(signed)
	if err != nil {
		t.Fatalf("DecodeBearerTokenExpiry: %v", err)
	}
	if !got.Equal(exp) {
		t.Fatalf("got %v, want %v", got, exp)
	}
}

func TestDecodeBearerTokenExpiry_MalformedToken(t *testing.T) {
	if _, err := DecodeBearerTokenExpiry("not-a-jwt"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}
}
