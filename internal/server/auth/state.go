package auth

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
)

type oauthState struct {
	Redirect string `json:"redirect"`
}

// EncodeState packs the post-login redirect into the OAuth state parameter.
func EncodeState(redirect string) string {
	b, _ := json.Marshal(oauthState{Redirect: redirect})
	return base64.RawURLEncoding.EncodeToString(b)
}

// ResolveRedirect returns the redirect carried in state if its origin is one
// of origins, otherwise the first origin.
func ResolveRedirect(state string, origins []string) string {
	fallback := "/"
	if len(origins) > 0 {
		fallback = origins[0]
	}

	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(state, "="))
	if err != nil {
		return fallback
	}
	var s oauthState
	if err := json.Unmarshal(raw, &s); err != nil || s.Redirect == "" {
		return fallback
	}

	origin, ok := originOf(s.Redirect)
	if !ok {
		return fallback
	}
	for _, o := range origins {
		if allowed, ok := originOf(o); ok && allowed == origin {
			return s.Redirect
		}
	}
	return fallback
}

func originOf(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), true
}
