// Package csrf implements double-submit-cookie CSRF protection. The token is
// stored in an httpOnly cookie and must be echoed in the x-csrf-token header
// on every state-changing request.
package csrf

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/cookiepolicy"
)

const (
	CookieName = "csrf-token"
	HeaderName = "x-csrf-token"
	TokenTTL   = time.Hour

	tokenSize = 32
)

const ErrMessage = "Invalid CSRF token. Perhaps your browser blocked 3rd-party cookies. " +
	"Please allow 3rd-party cookies or try a different browser. If the problem persists, please contact support."

type Service struct {
	secret []byte
	policy cookiepolicy.Policy
}

func NewService(secret string, policy cookiepolicy.Policy) *Service {
	return &Service{secret: []byte(secret), policy: policy}
}

// GenerateToken returns the token already held in the request cookie if it is
// valid, otherwise issues a new one and sets the cookie on w.
func (s *Service) GenerateToken(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(CookieName); err == nil && s.verify(c.Value) {
		return c.Value, nil
	}

	random, err := common.MakeRandHexString(tokenSize)
	if err != nil {
		return "", err
	}
	token := random + "|" + s.sign(random)

	http.SetCookie(w, s.policy.Apply(&http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TokenTTL / time.Second),
		HttpOnly: true,
	}))
	return token, nil
}

// ValidateRequest reports whether the cookie and header carry the same
// correctly signed token.
func (s *Service) ValidateRequest(r *http.Request) bool {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return false
	}
	header := r.Header.Get(HeaderName)
	if header == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(c.Value), []byte(header)) != 1 {
		return false
	}
	return s.verify(c.Value)
}

// Middleware rejects unsafe requests without a valid token pair. Safe methods
// and the exempt paths pass through. onError renders the 403.
func (s *Service) Middleware(onError func(http.ResponseWriter, *http.Request, error), exempt ...string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if !s.ValidateRequest(r) {
				onError(w, r, common.Forbidden(ErrMessage))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Service) sign(random string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(random))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Service) verify(token string) bool {
	random, sig, ok := strings.Cut(token, "|")
	if !ok || random == "" || sig == "" {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(s.sign(random)))
}
