package transport

import (
	"bytes"
	"strings"

	"github.com/gorilla/websocket"
)

// encodeFrame serializes a simplified USP text framing: one "Key: value"
// line per header in insertion order is not guaranteed (map iteration),
// but the mock service and GorillaTransport agree on case-sensitive key
// lookup, so order does not matter; a blank line separates headers from
// the body.
func encodeFrame(headers map[string]string, body []byte) []byte {
	var buf bytes.Buffer
	for k, v := range headers {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	buf.Write(body)
	return buf.Bytes()
}

// splitFramedMessage parses a frame produced by encodeFrame back into its
// header map and body. The error_code USP concept (spec.md §4.6) is
// modeled as "no error" for any frame that parses cleanly off this
// transport; a genuinely errored response is instead reported through
// onTransportError.
func splitFramedMessage(msgType int, raw []byte) (map[string]string, []byte) {
	headers := make(map[string]string)
	if msgType == websocket.BinaryMessage {
		// Binary frames carry the same header block, but Content-Type is
		// typically audio/*; parse identically.
	}

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
