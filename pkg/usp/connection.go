package usp

import (
	"context"
	"sync"
	"time"
)

// Connection is the façade described in spec.md §4.8: it owns a Transport,
// an optional telemetry sink, an optional DNS cache, the request-id
// registry, and the worker pump, and serializes all of it behind one mutex.
type Connection struct {
	mu sync.Mutex

	cfg       *Client
	connected bool

	transport Transport
	telemetry TelemetrySink
	dnsCache  DNSCache

	rids            *requestIDRegistry
	speechRequestID RequestID
	audioOffset     int64
	audioStartedAt  time.Time

	callbacks *Callbacks

	haveWork chan struct{}
	workerDone chan struct{}
	connectedCh chan struct{}

	newTransport func(cfg *Client, url string, headers map[string]string) (Transport, error)
	newTelemetry func(cfg *Client) (TelemetrySink, error)
	newDNSCache  func(cfg *Client) DNSCache
}

// NewConnection constructs an unconnected façade around cfg. newTransport
// and newTelemetry are injected so tests can substitute fakes without
// importing the transport/telemetry packages (avoiding an import cycle,
// since those packages depend on this one for the Transport/TelemetrySink
// interfaces).
func NewConnection(cfg *Client, newTransport func(cfg *Client, url string, headers map[string]string) (Transport, error), newTelemetry func(cfg *Client) (TelemetrySink, error), newDNSCache func(cfg *Client) DNSCache) *Connection {
	return &Connection{
		cfg:          cfg,
		callbacks:    cfg.Callbacks,
		haveWork:     make(chan struct{}, 1),
		newTransport: newTransport,
		newTelemetry: newTelemetry,
		newDNSCache:  newDNSCache,
	}
}

// Connect builds the URL and headers, creates the transport and telemetry
// sink, installs callbacks, starts the worker, and blocks until the worker
// reports the connection live (spec.md §4.8).
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected || c.transport != nil {
		c.mu.Unlock()
		return newLogicError("connection already established")
	}

	if issues := c.cfg.Validate(); len(issues) > 0 {
		c.mu.Unlock()
		return newInvalidArgument(issues[0]).AddDetail("issues", issues)
	}

	if c.cfg.AuthKind == AuthAuthorizationToken && c.cfg.TokenRefresher != nil {
		token, terr := c.cfg.TokenRefresher.Token(ctx)
		if terr != nil {
			c.mu.Unlock()
			return newRuntimeFault("failed to obtain authorization token").AddDetail("cause", terr.Error())
		}
		c.cfg.AuthData = token
	}

	if c.cfg.AuthKind == AuthAuthorizationToken && c.cfg.AuthData != "" {
		if expiry, terr := DecodeBearerTokenExpiry(c.cfg.AuthData); terr == nil && !expiry.After(time.Now()) {
			Log().Warn("connecting with an already-expired bearer token, expired at " + expiry.Format(time.RFC3339))
		}
	}

	headers, err := BuildHeaders(c.cfg)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	dialURL, err := BuildConnectionURL(c.cfg)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	if c.newTelemetry != nil {
		telemetry, terr := c.newTelemetry(c.cfg)
		if terr != nil {
			c.mu.Unlock()
			return newRuntimeFault("failed to create telemetry sink").AddDetail("cause", terr.Error())
		}
		c.telemetry = telemetry
	}

	c.rids = newRequestIDRegistry(c.cfg.ConnectionID, c.telemetry)

	if c.telemetry != nil {
		c.telemetry.WriteTelemetry(c.cfg.ConnectionID, "device_startup", map[string]any{
			"connection_id": c.cfg.ConnectionID,
		})
	}

	transport, err := c.newTransport(c.cfg, dialURL, headers)
	if err != nil {
		c.mu.Unlock()
		return newRuntimeFault("failed to create transport").AddDetail("cause", err.Error())
	}
	c.transport = transport

	if c.newDNSCache != nil {
		c.dnsCache = c.newDNSCache(c.cfg)
		transport.SetDnsCache(c.dnsCache)
	}

	transport.SetCallbacks(c.onTransportData, c.onTransportError)

	c.connectedCh = make(chan struct{})
	c.workerDone = make(chan struct{})
	c.mu.Unlock()

	go c.runWorker(ctx)

	select {
	case <-c.connectedCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown clears callbacks, flips connected to false, wakes the worker and
// returns immediately without waiting for it to exit (spec.md §4.8).
func (c *Connection) Shutdown() {
	c.mu.Lock()
	c.callbacks = nil
	c.connected = false
	c.mu.Unlock()
	c.signalWork()
}

// noteProtocolViolation forwards a tolerated wire-grammar violation to the
// telemetry sink, if any; the deeper status-string violations raised inside
// the parsing helpers in dispatch.go are logged only (see DESIGN.md).
func (c *Connection) noteProtocolViolation(reason string) {
	c.mu.Lock()
	telemetry := c.telemetry
	connectionID := c.cfg.ConnectionID
	c.mu.Unlock()
	if telemetry != nil {
		telemetry.WriteTelemetry(connectionID, "protocol_violation", map[string]any{"reason": reason})
	}
}

func (c *Connection) signalWork() {
	select {
	case c.haveWork <- struct{}{}:
	default:
	}
}

// Invoke releases the connection mutex for the duration of f and reacquires
// it afterward, matching the serialization contract in spec.md §5: user
// callbacks never run while the mutex is held. Callers must hold c.mu.
func (c *Connection) Invoke(f func()) {
	c.mu.Unlock()
	defer c.mu.Lock()
	f()
}

const workerPollInterval = 200 * time.Millisecond
