package usp

import (
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Endpoint constants, grounded in the literal scenarios of spec.md §8.
const (
	protocolPrefix = "wss://"

	unifiedSpeechHostnameSuffix = ".stt.speech.microsoft.com"
	unifiedSpeechPathPrefix     = "/speech/recognition/"
	unifiedSpeechPathSuffix     = "/cognitiveservices/v1"
	outputFormatQueryParam      = "format="
	deploymentIDQueryParam      = "cid="
	langQueryParam              = "language="

	translationHostnameSuffix = ".s2s.speech.microsoft.com"
	translationPath           = "/speech/translation/cognitiveservices/v1"
	translationFrom           = "from="
	translationTo             = "to="
	translationFeatures       = "features="
	translationRequireVoice   = "texttospeech"
	translationVoiceParam     = "voice="

	luisHostname    = "speech.platform.bing.com"
	luisPathPrefix1 = "/speech/recognition/"
	luisPathPrefix2 = "/intent/cognitiveservices/v1?intentRegion="
	luisPathSuffix  = ""

	cdSDKURL = "wss://speech.platform.bing.com/cortana/api/v1?environment=Home&language=en-US"
)

// Client is the immutable-after-Connect configuration for a Connection
// (spec.md §3 "Client configuration").
type Client struct {
	Endpoint    EndpointKind
	RecoMode    RecognitionMode
	OutFormat   OutputFormat
	Region      string
	IntentRegion string
	Language    string
	ModelID     string // custom deployment id
	CustomEndpointURL string

	TranslationSourceLanguage  string
	TranslationTargetLanguages string // comma-separated
	TranslationVoice           string

	AuthKind AuthKind
	AuthData string

	ConnectionID string

	// TokenRefresher, if set, is consulted for a fresh AuthorizationToken
	// secret before Connect builds headers (see token.go).
	TokenRefresher TokenRefresher

	Callbacks *Callbacks
}

// Callbacks is the user-facing callback surface (spec.md §6).
type Callbacks struct {
	OnSpeechStartDetected     func(SpeechStartDetected)
	OnSpeechEndDetected       func(SpeechEndDetected)
	OnSpeechHypothesis        func(SpeechHypothesis)
	OnSpeechFragment          func(SpeechFragment)
	OnSpeechPhrase            func(SpeechPhrase)
	OnTurnStart               func(TurnStart)
	OnTurnEnd                 func(TurnEnd)
	OnTranslationHypothesis   func(TranslationHypothesis)
	OnTranslationPhrase       func(TranslationPhrase)
	OnTranslationSynthesis    func(TranslationSynthesis)
	OnTranslationSynthesisEnd func(TranslationSynthesisEnd)
	OnUserMessage             func(UserMessage)
	OnError                   func(recoverable bool, kind ErrorKind, message string)
}

// NewClient returns a Client seeded with a fresh connection-id and values
// loaded from USP_* environment variables, the way the ancestor SDK's
// VocalsConfig.loadFromEnv seeds defaults from VOCALS_* variables.
func NewClient() *Client {
	_ = godotenv.Load()

	c := &Client{
		Endpoint:     EndpointSpeech,
		RecoMode:     ModeInteractive,
		OutFormat:    FormatSimple,
		ConnectionID: strings.ReplaceAll(uuid.NewString(), "-", ""),
	}

	if v := os.Getenv("USP_REGION"); v != "" {
		c.Region = v
	}
	if v := os.Getenv("USP_LANGUAGE"); v != "" {
		c.Language = v
	}
	if v := os.Getenv("USP_CUSTOM_ENDPOINT_URL"); v != "" {
		c.CustomEndpointURL = v
	}
	if v := os.Getenv("USP_AUTH_DATA"); v != "" {
		c.AuthData = v
	}
	if v := os.Getenv("USP_AUTH_KIND"); v != "" {
		switch strings.ToLower(v) {
		case "token", "authorizationtoken":
			c.AuthKind = AuthAuthorizationToken
		case "rpstoken", "searchdelegationrpstoken":
			c.AuthKind = AuthSearchDelegationRPSToken
		default:
			c.AuthKind = AuthSubscriptionKey
		}
	}

	return c
}

// Validate returns the accumulated list of configuration problems, mirroring
// the ancestor SDK's VocalsConfig.Validate() — called internally by Connect,
// but exposed so callers can pre-flight a config before connecting.
func (c *Client) Validate() []string {
	var issues []string

	if c.AuthData == "" {
		issues = append(issues, "no valid authentication mechanism was specified")
	}

	switch c.Endpoint {
	case EndpointSpeech, EndpointTranslation, EndpointIntent, EndpointCDSDK, EndpointCustomEndpoint:
	default:
		issues = append(issues, "unknown endpoint kind")
	}

	if c.Endpoint == EndpointCustomEndpoint && c.CustomEndpointURL == "" {
		issues = append(issues, "custom endpoint selected but CustomEndpointURL is empty")
	}

	return issues
}
