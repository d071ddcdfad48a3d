// Package mockservice implements a small USP-speaking WebSocket service
// for exercising pkg/usp's Connect → Queue → Dispatch → Shutdown path
// without a live cloud endpoint.
package mockservice

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Server accepts one USP connection per upgrade and replays a canned
// turn: turn.start, speech.hypothesis, speech.phrase, turn.end — echoing
// whatever request-id the client assigned on its audio/context turn.
type Server struct {
	upgrader websocket.Upgrader
}

// New returns a Server ready to be mounted on a chi router.
func New() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Router returns the chi.Router the mock service listens on.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/speech/recognition/{mode}/cognitiveservices/v1", s.handleUpgrade)
	r.Get("/healthz", s.handleHealth)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	session := &mockSession{conn: conn}
	session.run()
}

// mockSession tracks the one piece of state this fixture needs: the
// request-id of the turn currently in flight, taken from the most recent
// framed message the client sent with a non-empty X-RequestId.
type mockSession struct {
	conn *websocket.Conn
	rid  string
}

func (s *mockSession) run() {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		headers, body := parseFrame(raw)
		path := headers["Path"]
		if rid := headers["X-RequestId"]; rid != "" {
			s.rid = rid
		}

		if path == "audio" {
			s.onAudioChunk(body)
		}
	}
}

func (s *mockSession) onAudioChunk(body []byte) {
	if len(body) == 0 {
		s.replayTurn()
		return
	}
}

func (s *mockSession) replayTurn() {
	rid := s.rid
	if rid == "" {
		return
	}

	s.send("turn.start", rid, map[string]any{"Context": map[string]any{"Tag": "mock-turn"}})
	s.send("speech.hypothesis", rid, map[string]any{"Offset": 0, "Duration": 1000, "Text": "hello"})
	s.send("speech.phrase", rid, map[string]any{
		"Offset": 0, "Duration": 2000, "RecognitionStatus": "Success", "DisplayText": "hello world",
	})
	s.send("turn.end", rid, map[string]any{})
}

func (s *mockSession) send(path, rid string, payload map[string]any) {
	body, _ := json.Marshal(payload)
	headers := map[string]string{
		"Path":         path,
		"X-RequestId":  rid,
		"Content-Type": "application/json",
	}
	var sb strings.Builder
	for k, v := range headers {
		sb.WriteString(k)
		sb.WriteString(": ")
		sb.WriteString(v)
		sb.WriteString("\r\n")
	}
	sb.WriteString("\r\n")

	frame := append([]byte(sb.String()), body...)
	s.conn.WriteMessage(websocket.TextMessage, frame)
}

func parseFrame(raw []byte) (map[string]string, []byte) {
	headers := make(map[string]string)
	sep := []byte("\r\n\r\n")
	idx := bytes.Index(raw, sep)
	if idx < 0 {
		return headers, raw
	}

	headerBlock := string(raw[:idx])
	body := raw[idx+len(sep):]
	for _, line := range strings.Split(headerBlock, "\r\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ": ", 2)
		if len(parts) != 2 {
			continue
		}
		headers[parts[0]] = parts[1]
	}

	return headers, body
}
