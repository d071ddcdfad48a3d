package usp

const productUserAgent = "usp-go/1.0"

// BuildHeaders is the Header Builder / Authenticator: it derives the
// connection-time HTTP headers from cfg alone (spec.md §4.2).
func BuildHeaders(cfg *Client) (map[string]string, error) {
	headers := make(map[string]string)

	if cfg.Endpoint == EndpointCDSDK {
		headers["X-Output-AudioCodec"] = "riff-16khz-16bit-mono-pcm"
		headers["User-Agent"] = productUserAgent
	}

	switch cfg.AuthKind {
	case AuthSubscriptionKey:
		headers["Ocp-Apim-Subscription-Key"] = cfg.AuthData
	case AuthAuthorizationToken:
		headers["Authorization"] = "Bearer " + cfg.AuthData
	case AuthSearchDelegationRPSToken:
		headers["X-Search-DelegationRPSToken"] = cfg.AuthData
	default:
		return nil, newRuntimeFault("unknown authentication kind")
	}

	return headers, nil
}
