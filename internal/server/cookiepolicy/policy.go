// Package cookiepolicy decides SameSite, Secure and Domain for the cookies
// the server sets, based on where it is deployed.
package cookiepolicy

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
)

// BlacklistedDomains are public hosting suffixes on which a cookie cannot be
// scoped to a shared parent domain.
var BlacklistedDomains = []string{
	".vercel.app",
	".herokuapp.com",
	".netlify.app",
	".render.com",
	".onrender.com",
	".surge.sh",
	".firebaseapp.com",
	".web.app",
	".pages.dev",
	".workers.dev",
	".glitch.me",
	".now.sh",
	".github.io",
	".gitlab.io",
	".bitbucket.io",
	".stackblitz.io",
	".repl.co",
	".supabase.co",
	".railway.app",
	".ngrok-free.app",
}

var ipv4Re = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)

type Settings struct {
	CookieDomain string
	APIURL       string
}

type Policy struct {
	SameSite http.SameSite
	Secure   bool
	Domain   string
}

// Resolve computes the cookie policy for s. It never fails; on any internal
// error it falls back to a lax, insecure, host-only policy.
func Resolve(s Settings) (p Policy) {
	defer func() {
		if recover() != nil {
			p = Policy{SameSite: http.SameSiteLaxMode}
		}
	}()

	if s.CookieDomain == "" {
		return local(s.APIURL)
	}

	domain := strings.TrimPrefix(s.CookieDomain, ".")
	if domain == "localhost" || domain == "127.0.0.1" || ipv4Re.MatchString(domain) {
		return local(s.APIURL)
	}

	if isBlacklisted(domain) {
		return Policy{SameSite: http.SameSiteNoneMode, Secure: true, Domain: apiHost(s.APIURL)}
	}

	return Policy{SameSite: http.SameSiteLaxMode, Secure: true, Domain: s.CookieDomain}
}

// Apply copies the policy attributes onto c.
func (p Policy) Apply(c *http.Cookie) *http.Cookie {
	c.SameSite = p.SameSite
	c.Secure = p.Secure
	c.Domain = p.Domain
	return c
}

func local(apiURL string) Policy {
	return Policy{SameSite: http.SameSiteLaxMode, Domain: apiHost(apiURL)}
}

func isBlacklisted(domain string) bool {
	for _, suffix := range BlacklistedDomains {
		if strings.HasSuffix(domain, strings.TrimPrefix(suffix, ".")) {
			return true
		}
	}
	return false
}

func apiHost(apiURL string) string {
	if apiURL == "" {
		return "localhost"
	}
	u, err := url.Parse(apiURL)
	if err != nil || u.Hostname() == "" {
		return apiURL
	}
	return u.Hostname()
}
