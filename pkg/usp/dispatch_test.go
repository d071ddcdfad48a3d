package usp

import "testing"

func headersFor(path, rid string) map[string]string {
	return map[string]string{"Path": path, "X-RequestId": rid, "Content-Type": "application/json"}
}

func TestDispatch_SpeechPhraseNBestPicksMaxConfidence(t *testing.T) {
	var got SpeechPhrase
	conn, ft := newTestConnection(&Callbacks{
		OnSpeechPhrase: func(p SpeechPhrase) { got = p },
	})
	rid := conn.rids.Create()

	body := []byte(`{"RecognitionStatus":"Success","Offset":0,"Duration":1000,"NBest":[
		{"Confidence":0.4,"Display":"low"},
		{"Confidence":0.9,"Display":"high"},
		{"Confidence":0.7,"Display":"mid"}
	]}`)
	ft.deliver(headersFor("speech.phrase", string(rid)), body)

	if got.DisplayText != "high" {
		t.Fatalf("DisplayText = %q, want %q", got.DisplayText, "high")
	}
}

func TestDispatch_SpeechPhrasePrefersDisplayTextOverNBest(t *testing.T) {
	var got SpeechPhrase
	conn, ft := newTestConnection(&Callbacks{
		OnSpeechPhrase: func(p SpeechPhrase) { got = p },
	})
	rid := conn.rids.Create()

	body := []byte(`{"RecognitionStatus":"Success","DisplayText":"literal","NBest":[{"Confidence":0.9,"Display":"from nbest"}]}`)
	ft.deliver(headersFor("speech.phrase", string(rid)), body)

	if got.DisplayText != "literal" {
		t.Fatalf("DisplayText = %q, want %q", got.DisplayText, "literal")
	}
}

func TestDispatch_SpeechEndDetectedMissingOffsetDefaultsZero(t *testing.T) {
	var got SpeechEndDetected
	var called bool
	conn, ft := newTestConnection(&Callbacks{
		OnSpeechEndDetected: func(e SpeechEndDetected) { got = e; called = true },
	})
	rid := conn.rids.Create()

	ft.deliver(headersFor("speech.endDetected", string(rid)), []byte(`{}`))

	if !called {
		t.Fatal("expected OnSpeechEndDetected to be invoked")
	}
	if got.Offset != 0 {
		t.Fatalf("Offset = %d, want 0", got.Offset)
	}
}

func TestDispatch_TranslationSynthesisEndMissingStatusIsInvalidMessage(t *testing.T) {
	var kind ErrorKind
	var called bool
	conn, ft := newTestConnection(&Callbacks{
		OnError: func(recoverable bool, k ErrorKind, message string) { kind = k; called = true },
	})
	rid := conn.rids.Create()

	ft.deliver(headersFor("translation.synthesis.end", string(rid)), []byte(`{}`))

	if !called {
		t.Fatal("expected OnError to be invoked when SynthesisStatus is missing")
	}
	if kind != ErrorService {
		t.Fatalf("kind = %q, want %q", kind, ErrorService)
	}
}

func TestDispatch_UnknownRequestIDProducesNoCallback(t *testing.T) {
	called := false
	conn, ft := newTestConnection(&Callbacks{
		OnSpeechPhrase: func(p SpeechPhrase) { called = true },
	})
	_ = conn

	ft.deliver(headersFor("speech.phrase", "0000000000000000000000000000ff"), []byte(`{"RecognitionStatus":"Success"}`))

	if called {
		t.Fatal("expected no callback for an unregistered request-id")
	}
}

func TestDispatch_TurnEndRemovesRequestIDAndResetsSpeechRequestID(t *testing.T) {
	var turnEnded bool
	conn, ft := newTestConnection(&Callbacks{
		OnTurnEnd: func(e TurnEnd) { turnEnded = true },
	})
	rid := conn.rids.Create()
	conn.speechRequestID = rid

	ft.deliver(headersFor("turn.end", string(rid)), []byte(`{}`))

	if !turnEnded {
		t.Fatal("expected OnTurnEnd to be invoked")
	}
	if conn.rids.IsActive(rid) {
		t.Fatal("expected turn.end to remove the request-id from the active set")
	}
	if conn.speechRequestID != "" {
		t.Fatalf("expected speechRequestID reset after turn.end, got %q", conn.speechRequestID)
	}
}

func TestDispatch_MissingPathOrRequestIDHeaderIsTolerated(t *testing.T) {
	called := false
	_, ft := newTestConnection(&Callbacks{
		OnUserMessage: func(m UserMessage) { called = true },
	})

	ft.deliver(map[string]string{"X-RequestId": "abc"}, []byte(`{}`))
	ft.deliver(map[string]string{"Path": "custom.event"}, []byte(`{}`))

	if called {
		t.Fatal("expected no callback when Path or X-RequestId is missing")
	}
}

func TestParseRecognitionStatus_KnownAndUnknown(t *testing.T) {
	cases := map[string]RecognitionStatus{
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
		"SomeUnknownStatus":     RecognitionInvalidMessage,
	}

	for raw, want := range cases {
		if got := parseRecognitionStatus(raw, "speech.phrase", "rid"); got != want {
			t.Errorf("parseRecognitionStatus(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestParseTranslationStatus_KnownAndUnknown(t *testing.T) {
	cases := map[string]TranslationStatus{
		"Success": TranslationSuccess,
		"Error":   TranslationError,
		"bogus":   TranslationInvalidMessage,
	}
	for raw, want := range cases {
		if got := parseTranslationStatus(raw, "translation.phrase", "rid"); got != want {
			t.Errorf("parseTranslationStatus(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestParseSynthesisStatus_AbsentIsInvalidMessage(t *testing.T) {
	if got := parseSynthesisStatus("", false, "translation.synthesis.end", "rid"); got != SynthesisInvalidMessage {
		t.Fatalf("got %q, want %q", got, SynthesisInvalidMessage)
	}
	if got := parseSynthesisStatus("Success", true, "translation.synthesis.end", "rid"); got != SynthesisSuccess {
		t.Fatalf("got %q, want %q", got, SynthesisSuccess)
	}
}

func TestDispatch_NonSuccessTranslationPhraseSuppressedOnMapFailure(t *testing.T) {
	called := false
	conn, ft := newTestConnection(&Callbacks{
		OnTranslationPhrase: func(p TranslationPhrase) { called = true },
	})
	rid := conn.rids.Create()

	// RecognitionStatus Success but Translation.TranslationStatus missing:
	// retrieveTranslationResult reports InvalidMessage, so the callback must
	// be suppressed rather than handed a half-populated TranslationPhrase.
	body := []byte(`{"RecognitionStatus":"Success","Translation":{"Translations":[{"Language":"fr-FR","Text":"bonjour"}]}}`)
	ft.deliver(headersFor("translation.phrase", string(rid)), body)

	if called {
		t.Fatal("expected no OnTranslationPhrase callback when TranslationStatus is missing")
	}
}

func TestDispatch_UnknownRequestIDNotifiesProtocolViolationTelemetry(t *testing.T) {
	rt := &recordingTelemetry{}
	conn, ft := newTestConnection(nil)
	conn.telemetry = rt

	ft.deliver(headersFor("speech.phrase", "0000000000000000000000000000ff"), []byte(`{"RecognitionStatus":"Success"}`))

	if len(rt.events) != 1 || rt.events[0] != "protocol_violation" {
		t.Fatalf("expected one protocol_violation telemetry event, got %+v", rt.events)
	}
}

func TestDispatch_AudioPathRoutesToTranslationSynthesis(t *testing.T) {
	var got []byte
	conn, ft := newTestConnection(&Callbacks{
		OnTranslationSynthesis: func(s TranslationSynthesis) { got = s.Audio },
	})
	rid := conn.rids.Create()

	payload := []byte{1, 2, 3, 4}
	ft.deliver(map[string]string{"Path": "audio", "X-RequestId": string(rid), "Content-Type": "audio/x-wav"}, payload)

	if len(got) != len(payload) {
		t.Fatalf("got %v, want %v", got, payload)
	}
}
