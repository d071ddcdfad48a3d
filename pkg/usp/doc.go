// Package usp provides a Go client for the Unified Speech Protocol: a
// full-duplex streaming WebSocket connection to a cloud speech service for
// recognition, intent, and translation scenarios.
//
// # Overview
//
// The usp package provides:
//   - Pure URL and header construction per endpoint kind
//   - A request-id registry that authenticates inbound traffic
//   - An outbound send API for control messages and streamed audio
//   - A background worker pump draining the transport
//   - An inbound dispatcher decoding wire messages into typed events
//   - An error mapper turning transport and service failures into a
//     single classified, recoverability-tagged callback
//
// # Quick Start
//
//	cfg := usp.NewClient()
//	cfg.Endpoint = usp.EndpointSpeech
//	cfg.Region = "westus"
//	cfg.AuthKind = usp.AuthSubscriptionKey
//	cfg.AuthData = os.Getenv("USP_SUBSCRIPTION_KEY")
//	cfg.Callbacks = &usp.Callbacks{
//		OnSpeechPhrase: func(p usp.SpeechPhrase) {
//			fmt.Println(p.DisplayText)
//		},
//		OnError: func(recoverable bool, kind usp.ErrorKind, message string) {
//			log.Printf("usp error (%s): %s", kind, message)
//		},
//	}
//
//	conn := usp.NewConnection(cfg, transport.NewGorillaTransport, telemetry.NewPrometheusSink("usp"), nil)
//	if err := conn.Connect(context.Background()); err != nil {
//		log.Fatal(err)
//	}
//	defer conn.Shutdown()
//
// # Configuration
//
// Client carries everything the URL Builder and Header Builder need:
// endpoint kind, region, recognition mode, output format, and
// authentication material. NewClient seeds a Client from USP_* environment
// variables the way the ancestor SDK seeds VocalsConfig from VOCALS_*
// variables.
//
// # Sending Audio
//
// QueueAudioSegment streams raw PCM audio for the current turn; passing a
// zero-length slice is equivalent to calling QueueAudioEnd.
// internal/wavreader decodes a WAV file into PCM chunks for cmd/usp-probe's
// connect subcommand, and internal/mockservice replays a canned turn for
// exercising this path without a live cloud endpoint.
//
// # Thread Safety
//
// A Connection is safe for concurrent use: all sends and all state
// mutations are serialized by an internal mutex, and user callbacks are
// always invoked with that mutex released.
//
// # Dependencies
//
// This package depends on:
//   - github.com/gorilla/websocket: WebSocket transport (pkg/usp/transport)
//   - github.com/rs/zerolog: Structured logging
//   - github.com/google/uuid: Request-id generation
//   - github.com/golang-jwt/jwt/v4: Bearer token expiry inspection
//   - github.com/joho/godotenv: Environment variable loading
//   - github.com/prometheus/client_golang: Telemetry sink (pkg/usp/telemetry)
package usp
