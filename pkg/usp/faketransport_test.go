package usp

import (
	"context"
	"sync"
)

// fakeTransport is a hand-written in-memory Transport, grounded in
// spec.md's "not a mock framework" guidance for the collaborator surface:
// tests substitute this directly rather than reaching for a generated or
// reflection-based mock.
type fakeTransport struct {
	mu sync.Mutex

	onData  TransportDataFunc
	onError TransportErrorFunc

	messages []fakeMessage
	streams  map[RequestID][][]byte
	flushed  []RequestID

	failMessageWrite  bool
	failStreamPrepare bool
	failStreamWrite   bool
	failStreamFlush   bool

	doWorkErr   error
	doWorkCalls int
}

type fakeMessage struct {
	path string
	rid  RequestID
	body []byte
}

func newFakeTransport(cfg *Client, url string, headers map[string]string) (Transport, error) {
	return &fakeTransport{streams: make(map[RequestID][][]byte)}, nil
}

func (f *fakeTransport) Open(ctx context.Context, url string, headers map[string]string) error {
	return nil
}

func (f *fakeTransport) MessageWrite(path string, rid RequestID, payload []byte) error {
	if f.failMessageWrite {
		return errFakeTransport
	}
	f.mu.Lock()
	f.messages = append(f.messages, fakeMessage{path: path, rid: rid, body: payload})
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) StreamPrepare(requestID RequestID) error {
	if f.failStreamPrepare {
		return errFakeTransport
	}
	f.mu.Lock()
	f.streams[requestID] = nil
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) StreamWrite(requestID RequestID, chunk []byte) error {
	if f.failStreamWrite {
		return errFakeTransport
	}
	f.mu.Lock()
	f.streams[requestID] = append(f.streams[requestID], chunk)
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) StreamFlush(requestID RequestID) error {
	if f.failStreamFlush {
		return errFakeTransport
	}
	f.mu.Lock()
	f.flushed = append(f.flushed, requestID)
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) DoWork(ctx context.Context) error {
	f.mu.Lock()
	f.doWorkCalls++
	err := f.doWorkErr
	f.mu.Unlock()
	return err
}

func (f *fakeTransport) Destroy() error { return nil }

func (f *fakeTransport) SetCallbacks(onData TransportDataFunc, onError TransportErrorFunc) {
	f.mu.Lock()
	f.onData = onData
	f.onError = onError
	f.mu.Unlock()
}

func (f *fakeTransport) SetDnsCache(cache DNSCache) {}

// deliver feeds one inbound frame straight to the dispatcher, bypassing
// DoWork's read loop entirely.
func (f *fakeTransport) deliver(headers map[string]string, body []byte) {
	f.mu.Lock()
	onData := f.onData
	f.mu.Unlock()
	if onData != nil {
		onData(headers, body)
	}
}

type fakeTransportError struct{ s string }

func (e *fakeTransportError) Error() string { return e.s }

var errFakeTransport = &fakeTransportError{s: "fake transport failure"}

// newTestConnection builds a Connection wired to a fresh fakeTransport and
// marks it connected, bypassing the network-facing parts of Connect so
// send/dispatch tests can drive the collaborator surface directly.
func newTestConnection(cb *Callbacks) (*Connection, *fakeTransport) {
	cfg := &Client{
		Endpoint:     EndpointSpeech,
		Region:       "westus",
		Language:     "en-US",
		AuthKind:     AuthSubscriptionKey,
		AuthData:     "secret",
		ConnectionID: "testconn",
		Callbacks:    cb,
	}

	conn := NewConnection(cfg, newFakeTransport, nil, nil)
	ft, _ := newFakeTransport(cfg, "wss://example", nil)
	conn.transport = ft.(*fakeTransport)
	conn.transport.SetCallbacks(conn.onTransportData, conn.onTransportError)
	conn.rids = newRequestIDRegistry(cfg.ConnectionID, nil)
	conn.connected = true
	conn.callbacks = cb

	return conn, ft.(*fakeTransport)
}
