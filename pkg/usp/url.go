package usp

import (
	"net/url"
	"strings"
)

// BuildConnectionURL is the pure URL Builder: it derives the dial target
// from cfg alone and never touches the network, mirroring the ancestor
// implementation's ConstructConnectionUrl().
func BuildConnectionURL(cfg *Client) (string, error) {
	var sb strings.Builder
	custom := cfg.CustomEndpointURL != ""

	if custom {
		sb.WriteString(cfg.CustomEndpointURL)
	} else {
		switch cfg.Endpoint {
		case EndpointSpeech:
			sb.WriteString(protocolPrefix)
			sb.WriteString(cfg.Region)
			sb.WriteString(unifiedSpeechHostnameSuffix)
			sb.WriteString(unifiedSpeechPathPrefix)
			sb.WriteString(cfg.RecoMode.string())
			sb.WriteString(unifiedSpeechPathSuffix)
		case EndpointTranslation:
			sb.WriteString(protocolPrefix)
			sb.WriteString(cfg.Region)
			sb.WriteString(translationHostnameSuffix)
			sb.WriteString(translationPath)
		case EndpointIntent:
			sb.WriteString(protocolPrefix)
			sb.WriteString(luisHostname)
			sb.WriteString(luisPathPrefix1)
			sb.WriteString(cfg.IntentRegion)
			sb.WriteString(luisPathPrefix2)
			sb.WriteString("interactive")
			sb.WriteString(luisPathSuffix)
		case EndpointCDSDK:
			sb.WriteString(cdSDKURL)
			return sb.String(), nil
		default:
			return "", newInvalidArgument("unknown endpoint kind").AddDetail("endpoint", int(cfg.Endpoint))
		}
	}

	built := sb.String()

	hasParam := func(s, key string) bool {
		return strings.Contains(s, key)
	}
	appendParam := func(s, kv string) string {
		if strings.Contains(s, "?") {
			return s + "&" + kv
		}
		return s + "?" + kv
	}

	if !(custom && hasParam(built, outputFormatQueryParam)) {
		built = appendParam(built, outputFormatQueryParam+cfg.OutFormat.string())
	}

	switch cfg.Endpoint {
	case EndpointSpeech:
		if !custom || !hasParam(built, deploymentIDQueryParam) {
			if cfg.ModelID != "" {
				built = appendParam(built, deploymentIDQueryParam+cfg.ModelID)
			} else if cfg.Language != "" && (!custom || !hasParam(built, langQueryParam)) {
				built = appendParam(built, langQueryParam+cfg.Language)
			}
		}
	case EndpointIntent:
		if cfg.Language != "" && !(custom && hasParam(built, langQueryParam)) {
			built = appendParam(built, langQueryParam+cfg.Language)
		}
	case EndpointTranslation:
		if !(custom && hasParam(built, translationFrom)) {
			built = appendParam(built, translationFrom+url.QueryEscape(cfg.TranslationSourceLanguage))
		}
		if !(custom && hasParam(built, translationTo)) {
			for _, target := range strings.Split(cfg.TranslationTargetLanguages, ",") {
				built = appendParam(built, translationTo+url.QueryEscape(target))
			}
		}
		if cfg.TranslationVoice != "" {
			if !(custom && hasParam(built, translationFeatures)) {
				built = appendParam(built, translationFeatures+translationRequireVoice)
			}
			if !(custom && hasParam(built, translationVoiceParam)) {
				built = appendParam(built, translationVoiceParam+url.QueryEscape(cfg.TranslationVoice))
			}
		}
	case EndpointCDSDK:
		// no further query parameters
	}

	return built, nil
}
