package usp

import "time"

// QueueMessage enqueues a non-audio outbound message (spec.md §4.4). It is a
// silent no-op once the connection is down.
func (c *Connection) QueueMessage(path string, data []byte, kind MessageKind) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	if data == nil {
		return newInvalidArgument("data must not be nil")
	}
	if path == "" {
		return newInvalidArgument("path must not be empty")
	}

	if kind == MessageContext && c.speechRequestID != "" {
		return newLogicError("a turn is already in progress")
	}

	var rid RequestID
	if kind != MessageConfig {
		rid = c.rids.Create()
		if kind == MessageContext {
			c.speechRequestID = rid
		}
	}

	if err := c.transport.MessageWrite(path, rid, data); err != nil {
		return newRuntimeFault("transport failed to write message").AddDetail("cause", err.Error())
	}
	c.signalWork()

	return nil
}

// QueueAudioSegment streams one chunk of audio for the current turn
// (spec.md §4.4). size == 0 delegates to QueueAudioEnd.
func (c *Connection) QueueAudioSegment(data []byte) error {
	if len(data) == 0 {
		return c.QueueAudioEnd()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	if data == nil {
		return newInvalidArgument("data must not be nil")
	}

	if c.audioOffset == 0 {
		if c.speechRequestID == "" {
			c.speechRequestID = c.rids.Create()
		}
		if err := c.transport.StreamPrepare(c.speechRequestID); err != nil {
			return newRuntimeFault("transport failed to prepare audio stream").AddDetail("cause", err.Error())
		}
		c.audioStartedAt = time.Now()
	}

	if err := c.transport.StreamWrite(c.speechRequestID, data); err != nil {
		return newRuntimeFault("transport failed to write audio chunk").AddDetail("cause", err.Error())
	}

	c.audioOffset += int64(len(data))
	c.signalWork()

	return nil
}

// QueueAudioEnd flushes and terminates the current audio stream
// (spec.md §4.4).
func (c *Connection) QueueAudioEnd() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected || c.audioOffset == 0 {
		return nil
	}

	if err := c.transport.StreamFlush(c.speechRequestID); err != nil {
		return newRuntimeFault("transport failed to flush audio stream").AddDetail("cause", err.Error())
	}
	duration := time.Since(c.audioStartedAt)
	c.audioOffset = 0
	c.audioStartedAt = time.Time{}

	if c.telemetry != nil {
		c.telemetry.WriteTelemetry(c.cfg.ConnectionID, "audio_end", map[string]any{
			"request_id":       string(c.speechRequestID),
			"duration_seconds": duration.Seconds(),
		})
	}
	c.signalWork()

	return nil
}
