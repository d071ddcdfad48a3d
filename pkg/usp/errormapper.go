package usp

import "fmt"

// onTransportError is installed as the transport's error callback
// (spec.md §4.7). It classifies the failure, invokes OnError, then marks
// the connection terminal — transport errors never trigger an internal
// reconnect; the caller owns that decision.
func (c *Connection) onTransportError(reason TransportErrorReason, httpStatus int, detail string) {
	kind, message := mapTransportError(reason, httpStatus, detail)

	c.mu.Lock()
	cb := c.callbacks
	c.connected = false
	c.mu.Unlock()

	if cb != nil && cb.OnError != nil {
		uerr := &UserError{Recoverable: true, Kind: kind, Message: message}
		Log().LogUserError(uerr)
		cb.OnError(uerr.Recoverable, uerr.Kind, uerr.Message)
	}

	c.signalWork()
}

func mapTransportError(reason TransportErrorReason, httpStatus int, detail string) (ErrorKind, string) {
	switch reason {
	case TransportRemoteClosed:
		return ErrorConnection, fmt.Sprintf("the connection was closed by the remote host: %s", detail)
	case TransportConnectionFailure:
		return ErrorConnection, fmt.Sprintf("connection failed; check network connectivity, firewall rules, and the configured region: %s", detail)
	case TransportWebSocketUpgrade:
		switch httpStatus {
		case 400:
			return ErrorBadRequest, "the service rejected the request as malformed (HTTP 400)"
		case 401, 403:
			return ErrorAuthentication, fmt.Sprintf("authentication was rejected by the service (HTTP %d)", httpStatus)
		case 429:
			return ErrorTooManyRequests, "the service is throttling this connection (HTTP 429)"
		default:
			return ErrorConnection, fmt.Sprintf("the WebSocket upgrade failed with HTTP status %d", httpStatus)
		}
	case TransportWebSocketSendFrame:
		return ErrorConnection, fmt.Sprintf("failed to send a WebSocket frame: %s", detail)
	case TransportWebSocketError:
		return ErrorConnection, fmt.Sprintf("a WebSocket error occurred: %s", detail)
	case TransportDNSFailure:
		return ErrorConnection, fmt.Sprintf("DNS resolution failed: %s", detail)
	default:
		return ErrorConnection, "unknown transport error"
	}
}
