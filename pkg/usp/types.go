package usp

import "time"

// EndpointKind selects which service profile the URL Builder targets.
type EndpointKind int

const (
	EndpointSpeech EndpointKind = iota
	EndpointTranslation
	EndpointIntent
	EndpointCDSDK
	EndpointCustomEndpoint
)

// RecognitionMode influences the connection URL for the Speech endpoint only.
type RecognitionMode int

const (
	ModeInteractive RecognitionMode = iota
	ModeConversation
	ModeDictation
)

func (m RecognitionMode) string() string {
	switch m {
	case ModeConversation:
		return "conversation"
	case ModeDictation:
		return "dictation"
	default:
		return "interactive"
	}
}

// OutputFormat controls whether speech.phrase carries DisplayText or NBest.
type OutputFormat int

const (
	FormatSimple OutputFormat = iota
	FormatDetailed
)

func (f OutputFormat) string() string {
	if f == FormatDetailed {
		return "detailed"
	}
	return "simple"
}

// AuthKind selects which header the Header Builder attaches.
type AuthKind int

const (
	AuthSubscriptionKey AuthKind = iota
	AuthAuthorizationToken
	AuthSearchDelegationRPSToken
)

// MessageKind classifies an outbound message for request-id assignment.
type MessageKind int

const (
	MessageConfig MessageKind = iota
	MessageContext
	MessageAgent
	MessageSsml
	MessageOther
)

// ConnectionState is the one-way lifecycle of a Connection (spec.md §9).
type ConnectionState string

const (
	StateConnecting ConnectionState = "connecting"
	StateConnected  ConnectionState = "connected"
	StateTerminated ConnectionState = "terminated"
)

// RequestID is a 32-hex-char GUID without dashes, identifying a turn or
// an out-of-turn outbound message.
type RequestID string

// --- Inbound event payloads -------------------------------------------------

// SpeechStartDetected carries the offset of detected speech onset.
type SpeechStartDetected struct {
	Raw    string
	Offset int64
}

// SpeechEndDetected carries the offset of detected speech end; Offset is
// zero when the service omits the field.
type SpeechEndDetected struct {
	Raw    string
	Offset int64
}

// SpeechHypothesis is an interim, low-latency recognition result.
type SpeechHypothesis struct {
	Raw      string
	Offset   int64
	Duration int64
	Text     string
}

// SpeechFragment is a stabilized partial result between hypotheses and phrase.
type SpeechFragment struct {
	Raw      string
	Offset   int64
	Duration int64
	Text     string
}

// SpeechPhrase is the final recognition result for one utterance.
type SpeechPhrase struct {
	Raw               string
	Offset            int64
	Duration          int64
	RecognitionStatus RecognitionStatus
	DisplayText       string
}

// TurnStart announces the beginning of a speech turn.
type TurnStart struct {
	Raw string
	Tag string
}

// TurnEnd announces the end of a speech turn; the request-id that ended is
// carried so callers can correlate without inspecting headers themselves.
type TurnEnd struct {
	RequestID RequestID
}

// TranslationResult is the decoded Translation sub-object of a translation.*
// message.
type TranslationResult struct {
	Status        TranslationStatus
	FailureReason string
	Translations  map[string]string
}

// TranslationHypothesis is an interim translation result.
type TranslationHypothesis struct {
	Raw         string
	Offset      int64
	Duration    int64
	Text        string
	Translation TranslationResult
}

// TranslationPhrase is the final translation result for one utterance.
type TranslationPhrase struct {
	Raw               string
	Offset            int64
	Duration          int64
	Text              string
	Translation       TranslationResult
	RecognitionStatus RecognitionStatus
}

// TranslationSynthesis carries one chunk of synthesized audio for a
// translation turn.
type TranslationSynthesis struct {
	Audio []byte
}

// TranslationSynthesisEnd announces the end of a synthesis stream.
type TranslationSynthesisEnd struct {
	Status        SynthesisStatus
	FailureReason string
}

// UserMessage is the passthrough event for any Path the dispatcher does not
// recognize.
type UserMessage struct {
	Path        string
	ContentType string
	Buffer      []byte
}

// Timestamp is an offset from connection creation, held as a time.Duration.
// No code in this package produces or consumes one.
type Timestamp = time.Duration
