package usp

import "time"

// CreateLoggingErrorHandler returns an OnError callback that logs every
// error through the package logger before optionally forwarding it.
func CreateLoggingErrorHandler(next func(recoverable bool, kind ErrorKind, message string)) func(bool, ErrorKind, string) {
	return func(recoverable bool, kind ErrorKind, message string) {
		Log().LogUserError(&UserError{Recoverable: recoverable, Kind: kind, Message: message})
		if next != nil {
			next(recoverable, kind, message)
		}
	}
}

// CreatePhraseOnlyHandler adapts an OnSpeechPhrase callback so it only
// fires for a Success recognition status, the common case for callers that
// don't care about NoMatch/timeout phrases.
func CreatePhraseOnlyHandler(callback func(SpeechPhrase)) func(SpeechPhrase) {
	return func(p SpeechPhrase) {
		if p.RecognitionStatus == RecognitionSuccess && callback != nil {
			callback(p)
		}
	}
}

// CreateTranscriptHandler merges OnSpeechHypothesis and OnSpeechPhrase into
// a single (text, isFinal) callback, the shape most CLI/demo consumers want.
func CreateTranscriptHandler(callback func(text string, isFinal bool)) (func(SpeechHypothesis), func(SpeechPhrase)) {
	onHypothesis := func(h SpeechHypothesis) {
		if callback != nil {
			callback(h.Text, false)
		}
	}
	onPhrase := func(p SpeechPhrase) {
		if callback == nil || p.RecognitionStatus != RecognitionSuccess {
			return
		}
		callback(p.DisplayText, true)
	}
	return onHypothesis, onPhrase
}

// ChainErrorCallbacks runs every non-nil handler in sequence for each error.
func ChainErrorCallbacks(handlers ...func(bool, ErrorKind, string)) func(bool, ErrorKind, string) {
	return func(recoverable bool, kind ErrorKind, message string) {
		for _, h := range handlers {
			if h != nil {
				h(recoverable, kind, message)
			}
		}
	}
}

// ChainTurnEndCallbacks runs every non-nil handler in sequence for each
// turn.end event.
func ChainTurnEndCallbacks(handlers ...func(TurnEnd)) func(TurnEnd) {
	return func(e TurnEnd) {
		for _, h := range handlers {
			if h != nil {
				h(e)
			}
		}
	}
}

// CreateRateLimitedAudioSender wraps QueueAudioSegment so callers driving a
// live microphone loop can push chunks no more often than minInterval,
// coalescing chunks that arrive faster than that into the next send.
func CreateRateLimitedAudioSender(conn *Connection, minInterval time.Duration) func([]byte) error {
	var last time.Time
	var pending []byte

	return func(chunk []byte) error {
		pending = append(pending, chunk...)
		if time.Since(last) < minInterval {
			return nil
		}
		last = time.Now()
		toSend := pending
		pending = nil
		return conn.QueueAudioSegment(toSend)
	}
}
