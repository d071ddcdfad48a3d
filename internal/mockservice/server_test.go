package mockservice

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHandleHealth(t *testing.T) {
	srv := New()
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestReplayTurn_OnZeroLengthAudioFrame(t *testing.T) {
	srv := New()
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	dialURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/speech/recognition/interactive/cognitiveservices/v1"
	conn, _, err := websocket.DefaultDialer.Dial(dialURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	contextFrame := []byte("Path: speech.context\r\nX-RequestId: abcd1234abcd1234abcd1234abcd1234\r\n\r\n{}")
	if err := conn.WriteMessage(websocket.TextMessage, contextFrame); err != nil {
		t.Fatalf("write context frame: %v", err)
	}

	audioEndFrame := []byte("Path: audio\r\nX-RequestId: abcd1234abcd1234abcd1234abcd1234\r\n\r\n")
	if err := conn.WriteMessage(websocket.BinaryMessage, audioEndFrame); err != nil {
		t.Fatalf("write zero-length audio frame: %v", err)
	}

	var paths []string
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < 4; i++ {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read reply %d: %v", i, err)
		}
		headers, _ := parseFrame(raw)
		paths = append(paths, headers["Path"])
	}

	want := []string{"turn.start", "speech.hypothesis", "speech.phrase", "turn.end"}
	for i, p := range want {
		if paths[i] != p {
			t.Fatalf("paths[%d] = %q, want %q (full: %v)", i, paths[i], p, paths)
		}
	}
}

func TestParseFrame_RoundTripsHeadersAndBody(t *testing.T) {
	raw := []byte("Path: turn.end\r\nX-RequestId: rid-1\r\n\r\n{\"ok\":true}")
	headers, body := parseFrame(raw)

	if headers["Path"] != "turn.end" || headers["X-RequestId"] != "rid-1" {
		t.Fatalf("headers = %+v", headers)
	}
	if string(body) != `{"ok":true}` {
		t.Fatalf("body = %q", body)
	}
}

func TestParseFrame_NoSeparatorReturnsWholeBodyNoHeaders(t *testing.T) {
	raw := []byte("not a framed message")
	headers, body := parseFrame(raw)
	if len(headers) != 0 {
		t.Fatalf("expected no headers, got %+v", headers)
	}
	if string(body) != string(raw) {
		t.Fatalf("expected body to equal the raw input, got %q", body)
	}
}
