package usp

import (
	"encoding/json"
)

// RecognitionStatus is the decoded value of a speech.* message's
// RecognitionStatus field (spec.md §4.6).
type RecognitionStatus string

const (
	RecognitionSuccess               RecognitionStatus = "Success"
	RecognitionNoMatch               RecognitionStatus = "NoMatch"
	RecognitionInitialSilenceTimeout RecognitionStatus = "InitialSilenceTimeout"
	RecognitionInitialBabbleTimeout  RecognitionStatus = "InitialBabbleTimeout"
	RecognitionError                 RecognitionStatus = "Error"
	RecognitionEndOfDictation        RecognitionStatus = "EndOfDictation"
	RecognitionTooManyRequests       RecognitionStatus = "TooManyRequests"
	RecognitionBadRequest            RecognitionStatus = "BadRequest"
	RecognitionForbidden             RecognitionStatus = "Forbidden"
	RecognitionServiceUnavailable    RecognitionStatus = "ServiceUnavailable"
	RecognitionInvalidMessage        RecognitionStatus = "InvalidMessage"
)

var recognitionStatusTable = map[string]RecognitionStatus{
	"Success":               RecognitionSuccess,
	"NoMatch":               RecognitionNoMatch,
	"InitialSilenceTimeout": RecognitionInitialSilenceTimeout,
	"BabbleTimeout":         RecognitionInitialBabbleTimeout,
	"Error":                 RecognitionError,
	"EndOfDictation":        RecognitionEndOfDictation,
	"TooManyRequests":       RecognitionTooManyRequests,
	"BadRequest":            RecognitionBadRequest,
	"Forbidden":             RecognitionForbidden,
	"ServiceUnavailable":    RecognitionServiceUnavailable,
}

func parseRecognitionStatus(raw string, path string, rid string) RecognitionStatus {
	if s, ok := recognitionStatusTable[raw]; ok {
		return s
	}
	Log().LogProtocolViolation("unrecognized RecognitionStatus value: "+raw, path, rid)
	return RecognitionInvalidMessage
}

// TranslationStatus is the decoded value of a translation.* message's
// Translation.TranslationStatus field.
type TranslationStatus string

const (
	TranslationSuccess        TranslationStatus = "Success"
	TranslationError          TranslationStatus = "Error"
	TranslationInvalidMessage TranslationStatus = "InvalidMessage"
)

func parseTranslationStatus(raw string, path string, rid string) TranslationStatus {
	switch raw {
	case "Success":
		return TranslationSuccess
	case "Error":
		return TranslationError
	default:
		Log().LogProtocolViolation("unrecognized TranslationStatus value: "+raw, path, rid)
		return TranslationInvalidMessage
	}
}

// SynthesisStatus is the decoded value of translation.synthesis.end's
// SynthesisStatus field.
type SynthesisStatus string

const (
	SynthesisSuccess        SynthesisStatus = "Success"
	SynthesisError          SynthesisStatus = "Error"
	SynthesisInvalidMessage SynthesisStatus = "InvalidMessage"
)

func parseSynthesisStatus(raw string, present bool, path string, rid string) SynthesisStatus {
	if !present {
		Log().LogProtocolViolation("missing SynthesisStatus", path, rid)
		return SynthesisInvalidMessage
	}
	switch raw {
	case "Success":
		return SynthesisSuccess
	case "Error":
		return SynthesisError
	default:
		Log().LogProtocolViolation("unrecognized SynthesisStatus value: "+raw, path, rid)
		return SynthesisInvalidMessage
	}
}

// wireNBest mirrors one element of the NBest array in a speech.phrase body.
type wireNBest struct {
	Confidence float64 `json:"Confidence"`
	Display    string  `json:"Display"`
}

// wireTranslation mirrors the Translation sub-object carried by
// translation.hypothesis and translation.phrase bodies.
type wireTranslation struct {
	TranslationStatus *string               `json:"TranslationStatus"`
	FailureReason     string                `json:"FailureReason"`
	Translations      []wireTranslationItem `json:"Translations"`
}

type wireTranslationItem struct {
	Language string `json:"Language"`
	Text     string `json:"Text"`
}

// wireSpeechBody mirrors the JSON body shared by every speech.* and
// translation.* path; fields absent on a given path simply decode to zero
// values.
type wireSpeechBody struct {
	Offset            int64            `json:"Offset"`
	Duration          int64            `json:"Duration"`
	Text              string           `json:"Text"`
	DisplayText       string           `json:"DisplayText"`
	RecognitionStatus string           `json:"RecognitionStatus"`
	NBest             []wireNBest      `json:"NBest"`
	Context           *wireContext     `json:"Context"`
	Translation       *wireTranslation `json:"Translation"`
	SynthesisStatus   *string          `json:"SynthesisStatus"`
	FailureReason     string           `json:"FailureReason"`
}

type wireContext struct {
	Tag string `json:"Tag"`
}

// retrieveTranslations walks a wireTranslation's Translations array,
// inserting lang→text entries. Entries with both fields empty are dropped
// with a protocol-violation log; an empty resulting map is itself logged
// but not fatal (spec.md §4.6).
func retrieveTranslations(t *wireTranslation, path, rid string) map[string]string {
	out := make(map[string]string)
	if t == nil {
		Log().LogProtocolViolation("translation result has no translations", path, rid)
		return out
	}
	for _, item := range t.Translations {
		if item.Language == "" && item.Text == "" {
			Log().LogProtocolViolation("empty translation entry skipped", path, rid)
			continue
		}
		out[item.Language] = item.Text
	}
	if len(out) == 0 {
		Log().LogProtocolViolation("translation result produced an empty map", path, rid)
	}
	return out
}

// retrieveTranslationResult decodes the Translation sub-object. With
// expectStatus (translation.phrase's Success path) it reads
// TranslationStatus from the wire; without it (translation.hypothesis) the
// status is forced to TranslationSuccess.
func retrieveTranslationResult(t *wireTranslation, expectStatus bool, path, rid string) TranslationResult {
	result := TranslationResult{}

	if expectStatus {
		if t == nil || t.TranslationStatus == nil {
			result.Status = TranslationInvalidMessage
			result.FailureReason = "missing Translation.TranslationStatus"
			Log().LogProtocolViolation(result.FailureReason, path, rid)
			return result
		}
		result.Status = parseTranslationStatus(*t.TranslationStatus, path, rid)
		result.FailureReason = t.FailureReason
		if result.Status == TranslationSuccess {
			result.Translations = retrieveTranslations(t, path, rid)
		}
		return result
	}

	result.Status = TranslationSuccess
	result.Translations = retrieveTranslations(t, path, rid)
	return result
}

// onTransportData is the Inbound Dispatcher, installed as the transport's
// data callback (spec.md §4.6). It runs on the transport's own I/O
// goroutine and must be reentrancy-safe against the connection mutex,
// which it never holds while invoking a user callback.
func (c *Connection) onTransportData(headers map[string]string, body []byte) {
	path := headers["Path"]
	rid := headers["X-RequestId"]
	contentType := headers["Content-Type"]

	if path == "" {
		Log().LogProtocolViolation("missing Path header", path, rid)
		c.noteProtocolViolation("missing_path_header")
		return
	}
	if rid == "" {
		Log().LogProtocolViolation("missing X-RequestId header", path, rid)
		c.noteProtocolViolation("missing_request_id_header")
		return
	}

	c.mu.Lock()
	active := c.rids.IsActive(RequestID(rid))
	if !active {
		c.mu.Unlock()
		Log().LogProtocolViolation("unknown X-RequestId", path, rid)
		c.noteProtocolViolation("unknown_request_id")
		return
	}
	if len(body) != 0 && contentType == "" {
		c.mu.Unlock()
		Log().LogProtocolViolation("missing Content-Type header on non-empty body", path, rid)
		c.noteProtocolViolation("missing_content_type")
		return
	}
	cb := c.callbacks
	c.mu.Unlock()

	if path == "audio" {
		if cb != nil && cb.OnTranslationSynthesis != nil {
			cb.OnTranslationSynthesis(TranslationSynthesis{Audio: body})
		}
		return
	}

	var wb wireSpeechBody
	if len(body) != 0 {
		if err := json.Unmarshal(body, &wb); err != nil {
			Log().LogProtocolViolation("malformed JSON body: "+err.Error(), path, rid)
			return
		}
	}

	switch path {
	case "speech.startDetected":
		if cb != nil && cb.OnSpeechStartDetected != nil {
			cb.OnSpeechStartDetected(SpeechStartDetected{Raw: string(body), Offset: wb.Offset})
		}

	case "speech.endDetected":
		if cb != nil && cb.OnSpeechEndDetected != nil {
			cb.OnSpeechEndDetected(SpeechEndDetected{Raw: string(body), Offset: wb.Offset})
		}

	case "turn.start":
		tag := ""
		if wb.Context != nil {
			tag = wb.Context.Tag
		}
		if cb != nil && cb.OnTurnStart != nil {
			cb.OnTurnStart(TurnStart{Raw: string(body), Tag: tag})
		}

	case "turn.end":
		c.mu.Lock()
		if c.speechRequestID == RequestID(rid) {
			c.speechRequestID = ""
		}
		c.rids.Remove(RequestID(rid))
		telemetry := c.telemetry
		connectionID := c.cfg.ConnectionID
		c.mu.Unlock()
		if telemetry != nil {
			telemetry.WriteTelemetry(connectionID, "turn_end", map[string]any{"request_id": rid})
		}
		if cb != nil && cb.OnTurnEnd != nil {
			cb.OnTurnEnd(TurnEnd{RequestID: RequestID(rid)})
		}

	case "speech.hypothesis":
		if cb != nil && cb.OnSpeechHypothesis != nil {
			cb.OnSpeechHypothesis(SpeechHypothesis{Raw: string(body), Offset: wb.Offset, Duration: wb.Duration, Text: wb.Text})
		}

	case "speech.fragment":
		if cb != nil && cb.OnSpeechFragment != nil {
			cb.OnSpeechFragment(SpeechFragment{Raw: string(body), Offset: wb.Offset, Duration: wb.Duration, Text: wb.Text})
		}

	case "speech.phrase":
		status := parseRecognitionStatus(wb.RecognitionStatus, path, rid)
		switch status {
		case RecognitionSuccess:
			display := wb.DisplayText
			if display == "" && len(wb.NBest) > 0 {
				best := wb.NBest[0]
				for _, n := range wb.NBest[1:] {
					if n.Confidence > best.Confidence {
						best = n
					}
				}
				display = best.Display
			}
			if cb != nil && cb.OnSpeechPhrase != nil {
				cb.OnSpeechPhrase(SpeechPhrase{Raw: string(body), Offset: wb.Offset, Duration: wb.Duration, RecognitionStatus: status, DisplayText: display})
			}
		case RecognitionInitialSilenceTimeout, RecognitionInitialBabbleTimeout, RecognitionNoMatch, RecognitionEndOfDictation:
			if cb != nil && cb.OnSpeechPhrase != nil {
				cb.OnSpeechPhrase(SpeechPhrase{Raw: string(body), Offset: wb.Offset, Duration: wb.Duration, RecognitionStatus: status})
			}
		default:
			emitRecognitionStatusError(cb, status)
		}

	case "translation.hypothesis":
		translation := retrieveTranslationResult(wb.Translation, false, path, rid)
		if cb != nil && cb.OnTranslationHypothesis != nil {
			cb.OnTranslationHypothesis(TranslationHypothesis{Raw: string(body), Offset: wb.Offset, Duration: wb.Duration, Text: wb.Text, Translation: translation})
		}

	case "translation.phrase":
		status := parseRecognitionStatus(wb.RecognitionStatus, path, rid)
		switch status {
		case RecognitionSuccess:
			translation := retrieveTranslationResult(wb.Translation, true, path, rid)
			if translation.Status == TranslationSuccess && cb != nil && cb.OnTranslationPhrase != nil {
				cb.OnTranslationPhrase(TranslationPhrase{Raw: string(body), Offset: wb.Offset, Duration: wb.Duration, Text: wb.Text, Translation: translation, RecognitionStatus: status})
			}
		case RecognitionInitialSilenceTimeout, RecognitionInitialBabbleTimeout, RecognitionNoMatch, RecognitionEndOfDictation:
			translation := TranslationResult{Status: TranslationSuccess}
			if cb != nil && cb.OnTranslationPhrase != nil {
				cb.OnTranslationPhrase(TranslationPhrase{Raw: string(body), Offset: wb.Offset, Duration: wb.Duration, Text: wb.Text, Translation: translation, RecognitionStatus: status})
			}
		default:
			emitRecognitionStatusError(cb, status)
		}

	case "translation.synthesis.end":
		rawStatus := ""
		present := wb.SynthesisStatus != nil
		if present {
			rawStatus = *wb.SynthesisStatus
		}
		status := parseSynthesisStatus(rawStatus, present, path, rid)
		if status == SynthesisSuccess {
			if cb != nil && cb.OnTranslationSynthesisEnd != nil {
				cb.OnTranslationSynthesisEnd(TranslationSynthesisEnd{Status: status, FailureReason: wb.FailureReason})
			}
		} else {
			msg := "translation synthesis failed"
			if wb.FailureReason != "" {
				msg = msg + ": " + wb.FailureReason
			}
			if cb != nil && cb.OnError != nil {
				uerr := &UserError{Recoverable: false, Kind: ErrorService, Message: msg}
				Log().LogUserError(uerr)
				cb.OnError(uerr.Recoverable, uerr.Kind, uerr.Message)
			}
		}

	default:
		if cb != nil && cb.OnUserMessage != nil {
			cb.OnUserMessage(UserMessage{Path: path, ContentType: contentType, Buffer: body})
		}
	}
}

// emitRecognitionStatusError routes a non-benign RecognitionStatus through
// the Error Mapper (spec.md §4.7).
func emitRecognitionStatusError(cb *Callbacks, status RecognitionStatus) {
	kind, ok := recognitionErrorKind(status)
	if !ok {
		Log().LogUserError(&UserError{Kind: ErrorRuntime, Message: "invoke error callback for non-error recognition status"})
		return
	}
	if cb != nil && cb.OnError != nil {
		uerr := &UserError{Recoverable: false, Kind: kind, Message: "recognition failed with status " + string(status)}
		Log().LogUserError(uerr)
		cb.OnError(uerr.Recoverable, uerr.Kind, uerr.Message)
	}
}

func recognitionErrorKind(status RecognitionStatus) (ErrorKind, bool) {
	switch status {
	case RecognitionError:
		return ErrorService, true
	case RecognitionTooManyRequests:
		return ErrorTooManyRequests, true
	case RecognitionBadRequest:
		return ErrorBadRequest, true
	case RecognitionForbidden:
		return ErrorForbidden, true
	case RecognitionServiceUnavailable:
		return ErrorServiceUnavail, true
	case RecognitionInvalidMessage:
		return ErrorService, true
	default:
		return "", false
	}
}
