// Package transport provides concrete Transport collaborator
// implementations for pkg/usp.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rojolang/usp-go/pkg/usp"
)

// GorillaTransport implements usp.Transport over a gorilla/websocket
// connection, grounded in the ancestor SDK's WebSocketClient: a dialer,
// a header-based handshake, and a single read loop feeding the inbound
// dispatcher.
type GorillaTransport struct {
	mu   sync.Mutex
	conn *websocket.Conn

	onData  usp.TransportDataFunc
	onError usp.TransportErrorFunc

	streamMu sync.Mutex
	streams  map[usp.RequestID]bool

	dnsCache usp.DNSCache

	readOnce sync.Once
	closed   chan struct{}
}

// NewGorillaTransport dials url with headers and returns a live transport,
// matching the usp.Client-shaped constructor signature Connection.Connect
// expects.
func NewGorillaTransport(cfg *usp.Client, url string, headers map[string]string) (usp.Transport, error) {
	h := make(http.Header)
	for k, v := range headers {
		h.Set(k, v)
	}

	dialer := websocket.DefaultDialer
	conn, resp, err := dialer.Dial(url, h)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return nil, fmt.Errorf("dial failed (http status %d): %w", status, err)
	}

	return &GorillaTransport{
		conn:    conn,
		streams: make(map[usp.RequestID]bool),
		closed:  make(chan struct{}),
	}, nil
}

// Open is a no-op for GorillaTransport: the dial already happened in the
// constructor, matching how the ancestor's performConnection dials before
// the message loop starts.
func (t *GorillaTransport) Open(ctx context.Context, url string, headers map[string]string) error {
	return nil
}

func (t *GorillaTransport) SetCallbacks(onData usp.TransportDataFunc, onError usp.TransportErrorFunc) {
	t.mu.Lock()
	t.onData = onData
	t.onError = onError
	t.mu.Unlock()
}

// SetDnsCache attaches cache; GorillaTransport itself does not resolve
// hosts directly (the stdlib dialer does), so this only retains the
// reference for parity with collaborators that do consult it.
func (t *GorillaTransport) SetDnsCache(cache usp.DNSCache) {
	t.mu.Lock()
	t.dnsCache = cache
	t.mu.Unlock()
}

// DoWork reads one inbound frame and dispatches it; it blocks briefly on
// the socket read and returns promptly on any activity or a short idle
// timeout, so the worker pump's poll loop stays responsive to Shutdown.
func (t *GorillaTransport) DoWork(ctx context.Context) error {
	t.conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))

	msgType, body, err := t.conn.ReadMessage()
	if err != nil {
		if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
			return nil
		}
		t.emitError(err)
		return nil
	}

	headers, payload := splitFramedMessage(msgType, body)

	t.mu.Lock()
	onData := t.onData
	t.mu.Unlock()
	if onData != nil {
		onData(headers, payload)
	}

	return nil
}

func (t *GorillaTransport) emitError(err error) {
	t.mu.Lock()
	onError := t.onError
	t.mu.Unlock()
	if onError == nil {
		return
	}

	reason := usp.TransportRemoteClosed
	if websocket.IsUnexpectedCloseError(err) {
		reason = usp.TransportRemoteClosed
	} else if _, ok := err.(*websocket.CloseError); !ok {
		reason = usp.TransportWebSocketError
	}

	onError(reason, 0, err.Error())
}

// MessageWrite sends one complete text frame; framing headers are
// serialized as a leading header block the mock service and this
// transport agree on (Path/X-RequestId/Content-Type lines, blank line,
// body) mirroring a simplified USP text-frame encoding.
func (t *GorillaTransport) MessageWrite(path string, rid usp.RequestID, payload []byte) error {
	headers := map[string]string{
		"Path":         path,
		"Content-Type": "application/json",
	}
	if rid != "" {
		headers["X-RequestId"] = string(rid)
	}
	frame := encodeFrame(headers, payload)

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, frame)
}

func (t *GorillaTransport) StreamPrepare(requestID usp.RequestID) error {
	t.streamMu.Lock()
	t.streams[requestID] = true
	t.streamMu.Unlock()
	return nil
}

func (t *GorillaTransport) StreamWrite(requestID usp.RequestID, chunk []byte) error {
	frame := encodeFrame(map[string]string{
		"Path":         "audio",
		"X-RequestId":  string(requestID),
		"Content-Type": "audio/x-wav",
	}, chunk)

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// StreamFlush closes the outbound audio stream for requestID by writing a
// zero-length audio frame, the signal the service (and internal/
// mockservice) uses to detect end-of-turn on the wire.
func (t *GorillaTransport) StreamFlush(requestID usp.RequestID) error {
	t.streamMu.Lock()
	delete(t.streams, requestID)
	t.streamMu.Unlock()

	frame := encodeFrame(map[string]string{
		"Path":        "audio",
		"X-RequestId": string(requestID),
	}, nil)

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteMessage(websocket.BinaryMessage, frame)
}

func (t *GorillaTransport) Destroy() error {
	t.readOnce.Do(func() { close(t.closed) })
	return t.conn.Close()
}
