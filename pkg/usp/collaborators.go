package usp

import "context"

// Transport is the collaborator interface a Connection drives: a duplex
// channel to the service that knows nothing about USP message grammar. The
// gorilla/websocket-backed implementation lives in pkg/usp/transport.
type Transport interface {
	// Open dials the given URL with the given headers and blocks until the
	// handshake completes or fails.
	Open(ctx context.Context, url string, headers map[string]string) error

	// MessageWrite sends one complete message on path. rid is empty for a
	// Config message and set for everything else (spec.md §6).
	MessageWrite(path string, rid RequestID, payload []byte) error

	// StreamPrepare begins a new outbound binary stream identified by
	// requestID; StreamWrite appends a chunk, StreamFlush closes it.
	StreamPrepare(requestID RequestID) error
	StreamWrite(requestID RequestID, chunk []byte) error
	StreamFlush(requestID RequestID) error

	// DoWork performs one unit of transport-level work (reading an inbound
	// frame, flushing outbound buffers) and returns promptly; the Worker
	// Pump calls it in a loop.
	DoWork(ctx context.Context) error

	// Destroy tears down the underlying socket and releases resources.
	Destroy() error

	// SetCallbacks registers the Connection's inbound-data and
	// transport-error handlers, invoked synchronously from within DoWork.
	SetCallbacks(onData TransportDataFunc, onError TransportErrorFunc)

	// SetDnsCache attaches a DNS cache on platforms that want one
	// (spec.md §4.8 step 7); implementations may treat this as a no-op.
	SetDnsCache(cache DNSCache)
}

// TransportDataFunc receives one fully-framed inbound message.
type TransportDataFunc func(headers map[string]string, body []byte)

// TransportErrorReason classifies why a Transport failed, mirroring the
// ancestor implementation's TransportError::ErrorType.
type TransportErrorReason int

const (
	TransportRemoteClosed TransportErrorReason = iota
	TransportConnectionFailure
	TransportWebSocketUpgrade
	TransportWebSocketSendFrame
	TransportWebSocketError
	TransportDNSFailure
	TransportUnknown
)

// TransportErrorFunc receives a transport-level failure; httpStatus is only
// meaningful when reason is TransportWebSocketUpgrade.
type TransportErrorFunc func(reason TransportErrorReason, httpStatus int, detail string)

// DNSCache resolves and caches hostnames, the collaborator SetDnsCache wires
// into a Transport in the ancestor implementation.
type DNSCache interface {
	Resolve(ctx context.Context, host string) ([]string, error)
}

// TelemetrySink receives structured per-connection telemetry events. A nil
// sink is valid; Connection guards every call site.
type TelemetrySink interface {
	WriteTelemetry(connectionID string, event string, fields map[string]any)
}

// TokenRefresher supplies a fresh AuthorizationToken secret, consulted once
// by Connect before headers are built (token.go); the connection does not
// ask for a new token after it is established.
type TokenRefresher interface {
	Token(ctx context.Context) (string, error)
}
